package textutil

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var unsafeTokenChars = regexp.MustCompile(`[^a-z0-9_-]+`)

// SanitizeToken turns value into a lowercase token safe for file names. Runs
// of other characters collapse to one underscore; blank results become
// "unknown".
func SanitizeToken(value string) string {
	lowered := cases.Lower(language.Und).String(strings.TrimSpace(value))
	token := strings.Trim(unsafeTokenChars.ReplaceAllString(lowered, "_"), "_-")
	if token == "" {
		return "unknown"
	}
	return token
}

// Label turns an identifier such as "json_to_csv" into display text
// ("Json To Csv").
func Label(value string) string {
	value = strings.TrimSpace(strings.NewReplacer("_", " ", "-", " ").Replace(value))
	if value == "" {
		return ""
	}
	return cases.Title(language.English).String(value)
}
