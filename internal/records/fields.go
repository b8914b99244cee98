package records

import "bytes"

// Fields is an insertion-ordered mapping from field name to Value.
type Fields struct {
	names  []string
	values map[string]Value
}

func NewFields() *Fields {
	return &Fields{values: make(map[string]Value)}
}

// Set stores value under name. Replacing an existing name keeps its position.
func (f *Fields) Set(name string, value Value) {
	if f.values == nil {
		f.values = make(map[string]Value)
	}
	if _, exists := f.values[name]; !exists {
		f.names = append(f.names, name)
	}
	f.values[name] = value
}

func (f *Fields) Get(name string) (Value, bool) {
	if f == nil {
		return Value{}, false
	}
	v, ok := f.values[name]
	return v, ok
}

func (f *Fields) Len() int {
	if f == nil {
		return 0
	}
	return len(f.names)
}

// Names returns field names in insertion order.
func (f *Fields) Names() []string {
	if f == nil {
		return nil
	}
	return append([]string(nil), f.names...)
}

// Each visits fields in insertion order.
func (f *Fields) Each(fn func(name string, value Value)) {
	if f == nil {
		return
	}
	for _, name := range f.names {
		fn(name, f.values[name])
	}
}

// Equal compares contents, ignoring order. A nil Fields equals an empty one.
func (f *Fields) Equal(other *Fields) bool {
	if f.Len() != other.Len() {
		return false
	}
	for _, name := range f.Names() {
		theirs, ok := other.Get(name)
		if !ok {
			return false
		}
		if !f.values[name].Equal(theirs) {
			return false
		}
	}
	return true
}

// MarshalJSON implements json.Marshaler, preserving field order.
func (f *Fields) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	f.writeJSON(&buf)
	return buf.Bytes(), nil
}

func (f *Fields) writeJSON(buf *bytes.Buffer) {
	buf.WriteByte('{')
	if f != nil {
		for i, name := range f.names {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeString(buf, name)
			buf.WriteByte(':')
			f.values[name].writeJSON(buf)
		}
	}
	buf.WriteByte('}')
}
