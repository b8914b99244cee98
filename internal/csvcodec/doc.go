// Package csvcodec splits and joins single comma-delimited lines.
//
// The rules are deliberately narrower than encoding/csv: one delimiter (comma),
// one quote character (double quote, doubled to escape), and a multi-line
// convention in which embedded newlines are written as " | " so each record
// stays on one physical line. SplitRow tolerates ad hoc quoting in hand-edited
// files instead of rejecting it.
package csvcodec
