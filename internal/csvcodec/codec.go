package csvcodec

import "strings"

// NewlineMarker stands in for an embedded newline in a serialized cell.
const NewlineMarker = " | "

// SplitRow splits one CSV line into cells.
//
// A quote toggles quoting, except that a doubled quote inside a quoted
// section yields one literal quote. Commas outside quotes end a cell. The
// final cell is kept when it is non-empty or when at least one cell has
// already been emitted, so "a," yields two cells and "" yields none.
func SplitRow(line string) []string {
	var (
		fields   []string
		cur      strings.Builder
		inQuotes bool
	)
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '"':
			if inQuotes && i+1 < len(line) && line[i+1] == '"' {
				cur.WriteByte('"')
				i++
				continue
			}
			inQuotes = !inQuotes
		case c == ',' && !inQuotes:
			fields = append(fields, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}
	if cur.Len() > 0 || len(fields) > 0 {
		fields = append(fields, cur.String())
	}
	return fields
}

// EscapeCell prepares a value for a CSV line. Newlines are replaced with
// NewlineMarker; the result is quoted when it contains a comma, a quote, or a
// line break.
func EscapeCell(value string) string {
	value = strings.ReplaceAll(value, "\n", NewlineMarker)
	if !strings.ContainsAny(value, ",\"\n\r") {
		return value
	}
	return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
}

// JoinFields joins already-escaped cells into one line.
func JoinFields(cells []string) string {
	return strings.Join(cells, ",")
}

// FormatRow escapes every value and joins the result.
func FormatRow(values []string) string {
	cells := make([]string, len(values))
	for i, v := range values {
		cells[i] = EscapeCell(v)
	}
	return JoinFields(cells)
}

// RestoreNewlines reverses the NewlineMarker convention.
func RestoreNewlines(cell string) string {
	if !strings.Contains(cell, NewlineMarker) {
		return cell
	}
	return strings.ReplaceAll(cell, NewlineMarker, "\n")
}

// SplitLines breaks a document into logical CSV lines. A newline inside a
// quoted section belongs to the current line. A trailing carriage return is
// stripped from each line and empty lines are dropped.
func SplitLines(text string) []string {
	var (
		lines    []string
		start    int
		inQuotes bool
	)
	emit := func(end int) {
		line := strings.TrimSuffix(text[start:end], "\r")
		if line != "" {
			lines = append(lines, line)
		}
	}
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '"':
			inQuotes = !inQuotes
		case '\n':
			if inQuotes {
				continue
			}
			emit(i)
			start = i + 1
		}
	}
	if start < len(text) {
		emit(len(text))
	}
	return lines
}
