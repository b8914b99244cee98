package textutil

import (
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// DecodeText converts raw file content to a string, honouring a leading byte
// order mark and dropping it from the result.
func DecodeText(raw []byte) (string, error) {
	if utf8.Valid(raw) && !hasBOM(raw) {
		return string(raw), nil
	}
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, _, err := transform.Bytes(decoder, raw)
	if err != nil {
		return "", fmt.Errorf("decode text: %w", err)
	}
	return string(out), nil
}

func hasBOM(raw []byte) bool {
	switch {
	case len(raw) >= 3 && raw[0] == 0xEF && raw[1] == 0xBB && raw[2] == 0xBF:
		return true
	case len(raw) >= 2 && raw[0] == 0xFF && raw[1] == 0xFE:
		return true
	case len(raw) >= 2 && raw[0] == 0xFE && raw[1] == 0xFF:
		return true
	}
	return false
}
