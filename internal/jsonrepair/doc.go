// Package jsonrepair turns "JSON-like" export text into strict JSON.
//
// Record exports frequently arrive with raw control characters (literal
// newlines, tabs, carriage returns) inside string literals and with stray
// backslashes that do not begin a valid escape. Sanitize walks the document
// once with a two-state scanner (outside a string, inside a string) and
// rewrites only in-string content: control characters become their JSON
// escapes (or a single space), and invalid escape leads are doubled.
// Everything outside string literals is copied byte for byte.
//
// The scanner does not validate structure. Unbalanced quotes and other
// malformations pass through and surface as parse errors downstream; Diagnose
// builds the operator-facing snippet for those failures.
package jsonrepair
