// Package convert turns one export file into its other representation.
//
// A document whose first non-whitespace character is '{' takes the JSON path:
// the text is sanitized, strictly parsed, reshaped by id, and written as CSV.
// Anything else takes the CSV path and is written as id-keyed JSON. Repair
// runs the sanitizer alone and writes re-indented JSON in the original shape.
//
// File access goes through the Source and Sink interfaces. Output is fully
// assembled in memory before the single Sink write, so a failed conversion
// never leaves a partial file behind. Errors carry the markers from the
// services package; a strict-parse failure additionally carries a *ParseError
// with the character-level diagnostic.
package convert
