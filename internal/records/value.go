package records

import (
	"bytes"
	"encoding/json"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindList
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "boolean"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return "null"
	}
}

// Value is a single field value. The zero Value is null.
type Value struct {
	kind   Kind
	text   string
	flag   bool
	list   []Value
	fields *Fields
}

func Null() Value { return Value{} }

func String(s string) Value { return Value{kind: KindString, text: s} }

// Number wraps a JSON number literal. The literal is written back verbatim.
func Number(n json.Number) Value { return Value{kind: KindNumber, text: string(n)} }

func Bool(b bool) Value { return Value{kind: KindBool, flag: b} }

func List(items ...Value) Value {
	return Value{kind: KindList, list: append([]Value(nil), items...)}
}

func Map(fields *Fields) Value {
	if fields == nil {
		fields = NewFields()
	}
	return Value{kind: KindMap, fields: fields}
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNull() bool { return v.kind == KindNull }

// Str returns the string payload; ok is false for other kinds.
func (v Value) Str() (string, bool) {
	return v.text, v.kind == KindString
}

// Items returns a copy of the list payload.
func (v Value) Items() []Value {
	if v.kind != KindList {
		return nil
	}
	return append([]Value(nil), v.list...)
}

// Object returns the map payload, or nil for other kinds.
func (v Value) Object() *Fields {
	if v.kind != KindMap {
		return nil
	}
	return v.fields
}

// Text renders the value as a table cell: strings as-is, numbers by their
// JSON literal, booleans as true/false, null as empty, and lists or maps as
// compact JSON.
func (v Value) Text() string {
	switch v.kind {
	case KindString, KindNumber:
		return v.text
	case KindBool:
		if v.flag {
			return "true"
		}
		return "false"
	case KindList, KindMap:
		var buf bytes.Buffer
		v.writeJSON(&buf)
		return buf.String()
	default:
		return ""
	}
}

// Equal reports deep equality. Map comparison ignores key order.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindString, KindNumber:
		return v.text == other.text
	case KindBool:
		return v.flag == other.flag
	case KindList:
		if len(v.list) != len(other.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(other.list[i]) {
				return false
			}
		}
		return true
	case KindMap:
		return v.fields.Equal(other.fields)
	default:
		return true
	}
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	v.writeJSON(&buf)
	return buf.Bytes(), nil
}

func (v Value) writeJSON(buf *bytes.Buffer) {
	switch v.kind {
	case KindString:
		writeString(buf, v.text)
	case KindNumber:
		buf.WriteString(v.text)
	case KindBool:
		if v.flag {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case KindList:
		buf.WriteByte('[')
		for i, item := range v.list {
			if i > 0 {
				buf.WriteByte(',')
			}
			item.writeJSON(buf)
		}
		buf.WriteByte(']')
	case KindMap:
		v.fields.writeJSON(buf)
	default:
		buf.WriteString("null")
	}
}

// writeString encodes s as a JSON string without HTML escaping so exported
// text stays readable.
func writeString(buf *bytes.Buffer, s string) {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	// Encode appends a newline.
	buf.Truncate(buf.Len() - 1)
}
