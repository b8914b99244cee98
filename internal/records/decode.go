package records

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Stats summarizes a parse.
type Stats struct {
	Records    int
	Skipped    int
	Duplicates int
}

// ParseExport reads the export shape {"records": [{"id", "createdTime",
// "fields"}, ...]} from strictly valid JSON text.
//
// Syntax errors are returned as *json.SyntaxError (wrapped) so callers can
// recover the failure offset. Entries that are not objects, lack an id, or
// carry a non-object fields value are skipped and counted.
func ParseExport(text string) (*Collection, Stats, error) {
	var stats Stats
	root, err := ParseValue(text)
	if err != nil {
		return nil, stats, err
	}
	obj := root.Object()
	if obj == nil {
		return nil, stats, fmt.Errorf("%w: top-level value is a %s, want an object", ErrUnexpectedShape, root.Kind())
	}
	list, ok := obj.Get("records")
	if !ok || list.IsNull() {
		return nil, stats, fmt.Errorf("%w: records key is absent", ErrNoRecords)
	}
	if list.Kind() != KindList {
		return nil, stats, fmt.Errorf("%w: records is a %s, want a list", ErrUnexpectedShape, list.Kind())
	}

	coll := NewCollection()
	for _, item := range list.Items() {
		rec, ok := recordFromValue(item)
		if !ok {
			stats.Skipped++
			continue
		}
		if coll.Put(rec) {
			stats.Duplicates++
		}
	}
	stats.Records = coll.Len()
	if coll.Len() == 0 {
		return nil, stats, fmt.Errorf("%w: records list is empty", ErrNoRecords)
	}
	return coll, stats, nil
}

func recordFromValue(v Value) (*Record, bool) {
	obj := v.Object()
	if obj == nil {
		return nil, false
	}
	id, ok := scalarText(obj, ColumnID)
	if !ok || id == "" {
		return nil, false
	}
	created, _ := scalarText(obj, ColumnCreatedTime)
	rec := &Record{ID: id, CreatedTime: created, Fields: NewFields()}
	if fields, ok := obj.Get("fields"); ok && !fields.IsNull() {
		if fields.Kind() != KindMap {
			return nil, false
		}
		rec.Fields = fields.Object()
	}
	return rec, true
}

func scalarText(obj *Fields, key string) (string, bool) {
	v, ok := obj.Get(key)
	if !ok {
		return "", false
	}
	switch v.Kind() {
	case KindString, KindNumber:
		return v.Text(), true
	}
	return "", false
}

// ParseValue decodes one strictly valid JSON document into a Value, keeping
// object key order.
func ParseValue(text string) (Value, error) {
	// Unmarshal validates the whole document first and reports the failure
	// offset; the token pass below assumes valid input.
	var raw json.RawMessage
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return Value{}, fmt.Errorf("parse json: %w", err)
	}
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	v, err := decodeValue(dec)
	if err != nil {
		return Value{}, fmt.Errorf("decode json: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Value{}, fmt.Errorf("decode json: unexpected data after top-level value")
	}
	return v, nil
}

func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			fields := NewFields()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return Value{}, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return Value{}, fmt.Errorf("object key is %T", keyTok)
				}
				v, err := decodeValue(dec)
				if err != nil {
					return Value{}, err
				}
				fields.Set(key, v)
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}
			return Map(fields), nil
		case '[':
			var items []Value
			for dec.More() {
				v, err := decodeValue(dec)
				if err != nil {
					return Value{}, err
				}
				items = append(items, v)
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}
			return List(items...), nil
		}
		return Value{}, fmt.Errorf("unexpected delimiter %q", rune(t))
	case string:
		return String(t), nil
	case json.Number:
		return Number(t), nil
	case bool:
		return Bool(t), nil
	case nil:
		return Null(), nil
	}
	return Value{}, fmt.Errorf("unexpected token %T", tok)
}
