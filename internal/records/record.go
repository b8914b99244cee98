package records

import (
	"bytes"
	"encoding/json"
	"sort"
)

// Reserved column names that never appear in a FieldSet.
const (
	ColumnID          = "id"
	ColumnCreatedTime = "createdTime"
)

// Record is one identifier-keyed entry of an export.
type Record struct {
	ID          string
	CreatedTime string
	Fields      *Fields
}

// Equal compares id, creation time, and fields.
func (r *Record) Equal(other *Record) bool {
	if r == nil || other == nil {
		return r == other
	}
	return r.ID == other.ID && r.CreatedTime == other.CreatedTime && r.Fields.Equal(other.Fields)
}

// Collection holds records keyed by id in first-seen order.
type Collection struct {
	order []string
	byID  map[string]*Record
}

func NewCollection() *Collection {
	return &Collection{byID: make(map[string]*Record)}
}

// Put stores r. A record with an id already present replaces the earlier one
// at its original position; replaced reports whether that happened.
func (c *Collection) Put(r *Record) (replaced bool) {
	if r.Fields == nil {
		r.Fields = NewFields()
	}
	if _, exists := c.byID[r.ID]; exists {
		replaced = true
	} else {
		c.order = append(c.order, r.ID)
	}
	c.byID[r.ID] = r
	return replaced
}

func (c *Collection) Get(id string) (*Record, bool) {
	r, ok := c.byID[id]
	return r, ok
}

func (c *Collection) Len() int {
	if c == nil {
		return 0
	}
	return len(c.order)
}

// IDs returns record ids in output order.
func (c *Collection) IDs() []string {
	if c == nil {
		return nil
	}
	return append([]string(nil), c.order...)
}

// Records returns records in output order.
func (c *Collection) Records() []*Record {
	if c == nil {
		return nil
	}
	out := make([]*Record, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}

// FieldSet returns the sorted union of field names across all records,
// excluding the reserved id and createdTime names.
func (c *Collection) FieldSet() []string {
	seen := make(map[string]struct{})
	for _, r := range c.Records() {
		r.Fields.Each(func(name string, _ Value) {
			if name == ColumnID || name == ColumnCreatedTime {
				return
			}
			seen[name] = struct{}{}
		})
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Equal reports whether both collections hold the same ids with equal
// records, ignoring order.
func (c *Collection) Equal(other *Collection) bool {
	if c.Len() != other.Len() {
		return false
	}
	for _, r := range c.Records() {
		theirs, ok := other.Get(r.ID)
		if !ok || !r.Equal(theirs) {
			return false
		}
	}
	return true
}

// MarshalJSON writes the id-keyed output shape:
// {"<id>": {"createdTime": "...", "fields": {...}}, ...}.
func (c *Collection) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, r := range c.Records() {
		if i > 0 {
			buf.WriteByte(',')
		}
		writeString(&buf, r.ID)
		buf.WriteString(`:{"createdTime":`)
		writeString(&buf, r.CreatedTime)
		buf.WriteString(`,"fields":`)
		r.Fields.writeJSON(&buf)
		buf.WriteByte('}')
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// EncodeJSON renders the collection with the given indent (for example two
// spaces) and a trailing newline.
func EncodeJSON(c *Collection, indent string) ([]byte, error) {
	compact, err := c.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return IndentJSON(compact, indent)
}

// IndentJSON re-indents a valid JSON document, keeping key order. An empty
// indent produces compact output.
func IndentJSON(doc []byte, indent string) ([]byte, error) {
	var compact bytes.Buffer
	if err := json.Compact(&compact, doc); err != nil {
		return nil, err
	}
	if indent == "" {
		compact.WriteByte('\n')
		return compact.Bytes(), nil
	}
	var out bytes.Buffer
	if err := json.Indent(&out, compact.Bytes(), "", indent); err != nil {
		return nil, err
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}
