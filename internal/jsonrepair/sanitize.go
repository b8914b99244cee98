package jsonrepair

import "strings"

// Stats counts the rewrites performed by a sanitize pass.
type Stats struct {
	Newlines        int `json:"newlines"`
	CarriageReturns int `json:"carriage_returns"`
	Tabs            int `json:"tabs"`
	Blanked         int `json:"blanked"`
	Backslashes     int `json:"backslashes"`
}

// Total returns the number of rewritten characters.
func (s Stats) Total() int {
	return s.Newlines + s.CarriageReturns + s.Tabs + s.Blanked + s.Backslashes
}

// Changed reports whether the pass rewrote anything.
func (s Stats) Changed() bool {
	return s.Total() > 0
}

// Sanitize rewrites input so that every string literal is valid JSON with
// respect to escaping. It never fails.
func Sanitize(input string) string {
	out, _ := SanitizeWithStats(input)
	return out
}

// SanitizeWithStats is Sanitize plus a count of what was rewritten.
//
// The scan is byte oriented: every character the state machine reacts to is
// ASCII, and UTF-8 continuation bytes never collide with them, so multi-byte
// characters are copied through untouched.
func SanitizeWithStats(input string) (string, Stats) {
	var (
		b        strings.Builder
		stats    Stats
		inString bool
	)
	b.Grow(len(input) + len(input)/16)

	for i := 0; i < len(input); i++ {
		c := input[i]
		switch {
		case c == '"':
			inString = !inString
			b.WriteByte(c)
		case c == '\\' && inString:
			if i+1 >= len(input) {
				// Nothing left to inspect.
				b.WriteByte(c)
				continue
			}
			if isEscapeTarget(input[i+1]) {
				b.WriteByte(c)
				b.WriteByte(input[i+1])
				i++
				continue
			}
			// The following character stays in the stream and is handled on
			// the next iteration.
			b.WriteString(`\\`)
			stats.Backslashes++
		case c < 0x20 && inString:
			switch c {
			case '\n':
				b.WriteString(`\n`)
				stats.Newlines++
			case '\r':
				b.WriteString(`\r`)
				stats.CarriageReturns++
			case '\t':
				b.WriteString(`\t`)
				stats.Tabs++
			default:
				b.WriteByte(' ')
				stats.Blanked++
			}
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), stats
}

func isEscapeTarget(c byte) bool {
	switch c {
	case 'n', 'r', 't', '"', '\\', '/', 'u', 'b', 'f':
		return true
	}
	return false
}
