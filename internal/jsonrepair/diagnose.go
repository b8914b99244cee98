package jsonrepair

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"
)

// WindowRadius is the number of characters shown on each side of a parse
// failure.
const WindowRadius = 100

// Diagnostic locates a strict-parse failure in sanitized text.
type Diagnostic struct {
	// Offset is the character (not byte) offset of the failing character in
	// the sanitized text.
	Offset          int
	Char            rune
	AtEnd           bool
	OriginalWindow  string
	SanitizedWindow string
}

// Diagnose converts a parser byte offset into a Diagnostic. byteOffset follows
// encoding/json semantics: the failure happened after reading that many bytes,
// so the offending byte is the one just before it. truncated marks an
// end-of-input failure, which the parser reports with the offset equal to the
// text length; such failures are located past the last character.
func Diagnose(original, sanitized string, byteOffset int64, truncated bool) Diagnostic {
	pos := int(byteOffset) - 1
	if truncated && byteOffset >= int64(len(sanitized)) {
		pos = len(sanitized)
	}
	if pos < 0 {
		pos = 0
	}
	if pos > len(sanitized) {
		pos = len(sanitized)
	}
	for pos > 0 && pos < len(sanitized) && !utf8.RuneStart(sanitized[pos]) {
		pos--
	}

	d := Diagnostic{Offset: utf8.RuneCountInString(sanitized[:pos])}
	if pos >= len(sanitized) {
		d.AtEnd = true
	} else {
		d.Char, _ = utf8.DecodeRuneInString(sanitized[pos:])
	}
	d.SanitizedWindow = window(sanitized, d.Offset, WindowRadius)
	d.OriginalWindow = window(original, d.Offset, WindowRadius)
	return d
}

// DiagnoseSyntax builds a Diagnostic from an encoding/json syntax error.
func DiagnoseSyntax(original, sanitized string, err *json.SyntaxError) Diagnostic {
	return Diagnose(original, sanitized, err.Offset, err.Error() == unexpectedEnd)
}

const unexpectedEnd = "unexpected end of JSON input"

// CodePoint renders the failing character as U+XXXX.
func (d Diagnostic) CodePoint() string {
	if d.AtEnd {
		return "EOF"
	}
	return fmt.Sprintf("U+%04X", d.Char)
}

// String renders the multi-line operator report.
func (d Diagnostic) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "parse failure at character %d", d.Offset)
	if d.AtEnd {
		b.WriteString(" (end of input)\n")
	} else {
		fmt.Fprintf(&b, ": %q (code %d, %s)\n", d.Char, d.Char, d.CodePoint())
	}
	b.WriteString("--- original ---\n")
	b.WriteString(d.OriginalWindow)
	b.WriteString("\n--- sanitized ---\n")
	b.WriteString(d.SanitizedWindow)
	b.WriteByte('\n')
	return b.String()
}

// window returns up to radius characters either side of the character at
// offset. Offsets past the end clamp to the text length.
func window(text string, offset, radius int) string {
	runes := []rune(text)
	if offset > len(runes) {
		offset = len(runes)
	}
	start := offset - radius
	if start < 0 {
		start = 0
	}
	end := offset + radius
	if end > len(runes) {
		end = len(runes)
	}
	return string(runes[start:end])
}
