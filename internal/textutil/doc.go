// Package textutil decodes raw export bytes into text and provides small
// string helpers shared by the CLI and the conversion pipeline.
//
// Exports arrive as UTF-8, UTF-8 with a byte order mark, or UTF-16 with a
// byte order mark (spreadsheet tools on Windows emit the last two). DecodeText
// normalizes all three to a Go string; invalid UTF-8 sequences become U+FFFD.
package textutil
