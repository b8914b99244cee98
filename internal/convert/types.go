package convert

import (
	"context"
	"fmt"

	"recfix/internal/config"
	"recfix/internal/jsonrepair"
	"recfix/internal/records"
)

// Direction names a conversion path.
type Direction string

const (
	DirectionJSONToCSV Direction = "json_to_csv"
	DirectionCSVToJSON Direction = "csv_to_json"
	DirectionRepair    Direction = "repair"
)

// Source supplies raw file content.
type Source interface {
	Read(ctx context.Context, path string) ([]byte, error)
}

// Sink stores a finished output document, replacing any existing content.
type Sink interface {
	Write(ctx context.Context, path string, data []byte) error
}

// Options controls output placement and formatting.
type Options struct {
	OutputDir    string
	CSVSuffix    string
	JSONSuffix   string
	RepairSuffix string
	Indent       string
	PreviewIDs   int
	CSV          records.CSVOptions
}

// OptionsFromConfig maps configuration onto converter options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		OutputDir:    cfg.Output.Dir,
		CSVSuffix:    cfg.Output.CSVSuffix,
		JSONSuffix:   cfg.Output.JSONSuffix,
		RepairSuffix: cfg.Output.RepairSuffix,
		Indent:       cfg.Output.Indent,
		PreviewIDs:   cfg.Output.PreviewIDs,
		CSV: records.CSVOptions{
			Columns:          append([]string(nil), cfg.CSV.Columns...),
			NoHeader:         cfg.CSV.NoHeader,
			DecodeStructured: cfg.CSV.DecodeStructured,
		},
	}
}

// Document is the in-memory result of converting one text.
type Document struct {
	Text       string
	Direction  Direction
	Stats      records.Stats
	Repair     jsonrepair.Stats
	IDs        []string
	Collection *records.Collection
}

// Result describes a converted file.
type Result struct {
	Input      string           `json:"input"`
	Output     string           `json:"output"`
	Direction  Direction        `json:"direction"`
	Records    int              `json:"records"`
	Skipped    int              `json:"skipped"`
	Duplicates int              `json:"duplicates"`
	PreviewIDs []string         `json:"preview_ids"`
	Repair     jsonrepair.Stats `json:"repair"`
}

// ParseError reports sanitized text that still fails strict parsing.
type ParseError struct {
	Diagnostic jsonrepair.Diagnostic
	Err        error
}

func (e *ParseError) Error() string {
	if e.Diagnostic.AtEnd {
		return fmt.Sprintf("%v (at end of input, character %d)", e.Err, e.Diagnostic.Offset)
	}
	return fmt.Sprintf("%v (character %d, %q %s)", e.Err, e.Diagnostic.Offset, e.Diagnostic.Char, e.Diagnostic.CodePoint())
}

func (e *ParseError) Unwrap() error { return e.Err }
