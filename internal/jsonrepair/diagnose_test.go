package jsonrepair_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"recfix/internal/jsonrepair"
)

func TestDiagnoseLocatesSyntaxError(t *testing.T) {
	original := `{"a": 1,}`
	sanitized := jsonrepair.Sanitize(original)
	var v any
	err := json.Unmarshal([]byte(sanitized), &v)
	var syntaxErr *json.SyntaxError
	if !errors.As(err, &syntaxErr) {
		t.Fatalf("expected syntax error, got %v", err)
	}

	d := jsonrepair.DiagnoseSyntax(original, sanitized, syntaxErr)
	if d.Char != '}' {
		t.Fatalf("expected failing char '}', got %q", d.Char)
	}
	if d.Offset != 8 {
		t.Fatalf("expected offset 8, got %d", d.Offset)
	}
	if d.CodePoint() != "U+007D" {
		t.Fatalf("unexpected code point %s", d.CodePoint())
	}
	report := d.String()
	for _, fragment := range []string{"character 8", "code 125", "--- original ---", "--- sanitized ---"} {
		if !strings.Contains(report, fragment) {
			t.Fatalf("expected %q in report:\n%s", fragment, report)
		}
	}
}

func TestDiagnoseCountsCharactersNotBytes(t *testing.T) {
	sanitized := `{"é":x}`
	// 'x' is at byte 6 (é is two bytes) but character 5.
	d := jsonrepair.Diagnose(sanitized, sanitized, 7, false)
	if d.Char != 'x' || d.Offset != 5 {
		t.Fatalf("got char %q offset %d", d.Char, d.Offset)
	}
}

func TestDiagnoseWindowIsBounded(t *testing.T) {
	text := strings.Repeat("a", 300) + "!" + strings.Repeat("b", 300)
	d := jsonrepair.Diagnose(text, text, 301, false)
	if d.Char != '!' {
		t.Fatalf("expected '!', got %q", d.Char)
	}
	if got := len([]rune(d.SanitizedWindow)); got != 2*jsonrepair.WindowRadius {
		t.Fatalf("window length = %d", got)
	}
	if !strings.HasPrefix(d.SanitizedWindow[jsonrepair.WindowRadius:], "!") {
		t.Fatalf("window not centred on failure: %q", d.SanitizedWindow)
	}
}

func TestDiagnoseAtEndOfInput(t *testing.T) {
	for _, sanitized := range []string{`{"records":[`, `{"a":`, `{"a": "unterminated}`} {
		t.Run(sanitized, func(t *testing.T) {
			var v any
			err := json.Unmarshal([]byte(sanitized), &v)
			var syntaxErr *json.SyntaxError
			if !errors.As(err, &syntaxErr) {
				t.Fatalf("expected syntax error, got %v", err)
			}

			d := jsonrepair.DiagnoseSyntax(sanitized, sanitized, syntaxErr)
			if !d.AtEnd {
				t.Fatalf("expected AtEnd for offset %d, got %+v", syntaxErr.Offset, d)
			}
			if d.Offset != len([]rune(sanitized)) {
				t.Fatalf("offset = %d, want %d", d.Offset, len([]rune(sanitized)))
			}
			if d.CodePoint() != "EOF" {
				t.Fatalf("unexpected code point %q", d.CodePoint())
			}
			if !strings.Contains(d.String(), "end of input") {
				t.Fatalf("unexpected report %q", d.String())
			}
		})
	}
}

func TestDiagnoseLastCharacterIsNotEndOfInput(t *testing.T) {
	sanitized := `{"a":1]`
	d := jsonrepair.Diagnose(sanitized, sanitized, int64(len(sanitized)), false)
	if d.AtEnd || d.Char != ']' {
		t.Fatalf("expected failure on the final ']', got %+v", d)
	}
}
