package records

import (
	"fmt"
	"strings"

	"recfix/internal/csvcodec"
)

// CSVOptions controls how a table is read.
type CSVOptions struct {
	// Columns replaces the header names when non-empty.
	Columns []string
	// NoHeader treats the first line as data. Only meaningful with Columns.
	NoHeader bool
	// DecodeStructured stores cells holding a JSON array or object as the
	// decoded list or map instead of a string.
	DecodeStructured bool
}

// Header returns the table header for c: id, createdTime, then the FieldSet.
func Header(c *Collection) []string {
	return append([]string{ColumnID, ColumnCreatedTime}, c.FieldSet()...)
}

// ToCSV renders the collection as CSV text with a trailing newline.
// Missing fields become empty cells.
func ToCSV(c *Collection) string {
	header := Header(c)
	fieldNames := header[2:]

	var b strings.Builder
	b.WriteString(csvcodec.FormatRow(header))
	b.WriteByte('\n')
	row := make([]string, len(header))
	for _, r := range c.Records() {
		row[0] = r.ID
		row[1] = r.CreatedTime
		for i, name := range fieldNames {
			v, _ := r.Fields.Get(name)
			row[i+2] = v.Text()
		}
		b.WriteString(csvcodec.FormatRow(row))
		b.WriteByte('\n')
	}
	return b.String()
}

// FromCSV builds a collection from CSV text.
//
// The first id column identifies records; id and createdTime are matched after
// trimming spaces, while field names are kept exactly as written. Rows with an
// empty id are skipped. Non-empty cells are stored as strings with " | "
// turned back into a newline. With DecodeStructured, cells holding a JSON
// array or object become lists or maps, so string values that look like JSON
// do not survive a round trip.
func FromCSV(text string, opts CSVOptions) (*Collection, Stats, error) {
	var stats Stats
	lines := csvcodec.SplitLines(text)
	if len(lines) == 0 {
		return nil, stats, fmt.Errorf("%w: no lines", ErrNoRecords)
	}

	var header []string
	if len(opts.Columns) > 0 {
		header = append([]string(nil), opts.Columns...)
		if !opts.NoHeader {
			lines = lines[1:]
		}
	} else {
		header = csvcodec.SplitRow(lines[0])
		lines = lines[1:]
	}
	reserved := make([]bool, len(header))
	idCol, createdCol := -1, -1
	for i, raw := range header {
		name := strings.TrimSpace(raw)
		reserved[i] = name == ColumnID || name == ColumnCreatedTime
		switch {
		case name == ColumnID && idCol < 0:
			idCol = i
		case name == ColumnCreatedTime && createdCol < 0:
			createdCol = i
		}
	}
	if idCol < 0 {
		return nil, stats, fmt.Errorf("%w: header is %q", ErrMissingIDColumn, strings.Join(header, ","))
	}

	coll := NewCollection()
	for _, line := range lines {
		cells := csvcodec.SplitRow(line)
		id := strings.TrimSpace(cellAt(cells, idCol))
		if id == "" {
			stats.Skipped++
			continue
		}
		rec := &Record{
			ID:          id,
			CreatedTime: csvcodec.RestoreNewlines(cellAt(cells, createdCol)),
			Fields:      NewFields(),
		}
		for i, name := range header {
			if reserved[i] || strings.TrimSpace(name) == "" {
				continue
			}
			raw := cellAt(cells, i)
			if raw == "" {
				continue
			}
			rec.Fields.Set(name, cellValue(raw, opts.DecodeStructured))
		}
		if coll.Put(rec) {
			stats.Duplicates++
		}
	}
	stats.Records = coll.Len()
	if coll.Len() == 0 {
		return nil, stats, fmt.Errorf("%w: no data rows", ErrNoRecords)
	}
	return coll, stats, nil
}

func cellAt(cells []string, i int) string {
	if i < 0 || i >= len(cells) {
		return ""
	}
	return cells[i]
}

func cellValue(raw string, structured bool) Value {
	if structured && (raw[0] == '[' || raw[0] == '{') {
		if v, err := ParseValue(raw); err == nil {
			return v
		}
	}
	return String(csvcodec.RestoreNewlines(raw))
}
