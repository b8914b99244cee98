package convert

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"unicode"

	"recfix/internal/fileutil"
	"recfix/internal/jsonrepair"
	"recfix/internal/logging"
	"recfix/internal/records"
	"recfix/internal/services"
	"recfix/internal/textutil"
)

// Converter runs conversions against an injected Source and Sink.
type Converter struct {
	source Source
	sink   Sink
	opts   Options
	logger *slog.Logger
}

// New builds a Converter. A nil logger discards output.
func New(source Source, sink Sink, opts Options, logger *slog.Logger) *Converter {
	return &Converter{
		source: source,
		sink:   sink,
		opts:   opts,
		logger: logging.NewComponentLogger(logger, "convert"),
	}
}

// Sniff picks the conversion direction from the first non-whitespace
// character of text.
func Sniff(text string) Direction {
	trimmed := strings.TrimLeftFunc(text, unicode.IsSpace)
	if strings.HasPrefix(trimmed, "{") {
		return DirectionJSONToCSV
	}
	return DirectionCSVToJSON
}

// Convert converts the file at path to the derived output path.
func (c *Converter) Convert(ctx context.Context, path string) (Result, error) {
	return c.ConvertTo(ctx, path, "")
}

// ConvertTo converts the file at path and writes it to output, or to the
// derived output path when output is empty.
func (c *Converter) ConvertTo(ctx context.Context, path, output string) (Result, error) {
	text, err := c.read(ctx, path)
	if err != nil {
		return Result{Input: path}, err
	}
	doc, err := c.convertText(path, text)
	if err != nil {
		return Result{Input: path, Direction: Sniff(text)}, err
	}
	return c.finish(ctx, path, output, doc)
}

// Repair sanitizes the JSON file at path and writes the re-indented result
// next to it with the repair suffix. The document shape is kept as is.
func (c *Converter) Repair(ctx context.Context, path string) (Result, error) {
	return c.RepairTo(ctx, path, "")
}

// RepairTo is Repair with an explicit output path.
func (c *Converter) RepairTo(ctx context.Context, path, output string) (Result, error) {
	text, err := c.read(ctx, path)
	if err != nil {
		return Result{Input: path, Direction: DirectionRepair}, err
	}
	doc, err := c.repairText(path, text)
	if err != nil {
		return Result{Input: path, Direction: DirectionRepair}, err
	}
	return c.finish(ctx, path, output, doc)
}

// ConvertDocument converts text in memory without touching any file.
func (c *Converter) ConvertDocument(text string) (Document, error) {
	return c.convertText("", text)
}

// RepairDocument sanitizes and re-indents JSON text in memory.
func (c *Converter) RepairDocument(text string) (Document, error) {
	return c.repairText("", text)
}

// OutputPath derives where the output for input goes.
func (c *Converter) OutputPath(input string, direction Direction) string {
	var suffix, ext string
	switch direction {
	case DirectionJSONToCSV:
		suffix, ext = c.opts.CSVSuffix, ".csv"
	case DirectionCSVToJSON:
		suffix, ext = c.opts.JSONSuffix, ".json"
	default:
		suffix, ext = c.opts.RepairSuffix, ".json"
	}
	out := fileutil.ReplaceExt(input, suffix, ext)
	if c.opts.OutputDir != "" {
		out = filepath.Join(c.opts.OutputDir, filepath.Base(out))
	}
	return out
}

func (c *Converter) read(ctx context.Context, path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", services.Wrap(services.ErrMissingInput, "", "read", "no input path given", nil)
	}
	raw, err := c.source.Read(ctx, path)
	if err != nil {
		return "", services.Wrap(services.ErrUnreadableFile, path, "read", "", err)
	}
	text, err := textutil.DecodeText(raw)
	if err != nil {
		return "", services.Wrap(services.ErrUnreadableFile, path, "decode", "", err)
	}
	return text, nil
}

func (c *Converter) finish(ctx context.Context, input, output string, doc Document) (Result, error) {
	if output == "" {
		output = c.OutputPath(input, doc.Direction)
	}
	res := Result{
		Input:      input,
		Output:     output,
		Direction:  doc.Direction,
		Records:    doc.Stats.Records,
		Skipped:    doc.Stats.Skipped,
		Duplicates: doc.Stats.Duplicates,
		PreviewIDs: preview(doc.IDs, c.opts.PreviewIDs),
		Repair:     doc.Repair,
	}
	if samePath(input, output) {
		res.Output = ""
		return res, services.Wrap(services.ErrWriteFailed, input, "write", "output path equals input path "+output, nil)
	}
	if err := c.sink.Write(ctx, output, []byte(doc.Text)); err != nil {
		res.Output = ""
		return res, services.Wrap(services.ErrWriteFailed, input, "write", output, err)
	}

	c.logger.Info("conversion complete",
		logging.String(logging.FieldFile, input),
		logging.String("output", output),
		logging.String(logging.FieldDirection, string(doc.Direction)),
		logging.Int("records", res.Records),
		logging.Int("skipped", res.Skipped),
		logging.String(logging.FieldEventType, "conversion_complete"),
	)
	if res.Skipped > 0 || res.Duplicates > 0 {
		logging.WarnWithContext(c.logger, "rows dropped during conversion", "rows_dropped",
			logging.String(logging.FieldFile, input),
			logging.Int("skipped", res.Skipped),
			logging.Int("duplicates", res.Duplicates),
			logging.String(logging.FieldErrorHint, "check for records without an id or with repeated ids"),
			logging.String(logging.FieldImpact, "output holds fewer records than the input"),
		)
	}
	return res, nil
}

func (c *Converter) convertText(file, text string) (Document, error) {
	direction := Sniff(text)
	if direction == DirectionJSONToCSV {
		return c.jsonToCSV(file, text)
	}
	return c.csvToJSON(file, text)
}

func (c *Converter) jsonToCSV(file, text string) (Document, error) {
	sanitized, repair := jsonrepair.SanitizeWithStats(text)
	c.logRepair(file, repair)

	coll, stats, err := records.ParseExport(sanitized)
	if err != nil {
		return Document{}, classifyJSONError(file, text, sanitized, err)
	}
	return Document{
		Text:       records.ToCSV(coll),
		Direction:  DirectionJSONToCSV,
		Stats:      stats,
		Repair:     repair,
		IDs:        coll.IDs(),
		Collection: coll,
	}, nil
}

func (c *Converter) csvToJSON(file, text string) (Document, error) {
	coll, stats, err := records.FromCSV(text, c.opts.CSV)
	switch {
	case errors.Is(err, records.ErrMissingIDColumn):
		return Document{}, services.Wrap(services.ErrMissingIDColumn, file, "parse csv", "", err)
	case errors.Is(err, records.ErrNoRecords):
		return Document{}, services.Wrap(services.ErrEmptySource, file, "parse csv", "", err)
	case err != nil:
		return Document{}, services.Wrap(services.ErrMalformed, file, "parse csv", "", err)
	}
	out, err := records.EncodeJSON(coll, c.opts.Indent)
	if err != nil {
		return Document{}, services.Wrap(services.ErrConversion, file, "encode json", "", err)
	}
	return Document{
		Text:       string(out),
		Direction:  DirectionCSVToJSON,
		Stats:      stats,
		IDs:        coll.IDs(),
		Collection: coll,
	}, nil
}

func (c *Converter) repairText(file, text string) (Document, error) {
	if strings.TrimSpace(text) == "" {
		return Document{}, services.Wrap(services.ErrEmptySource, file, "repair", "input is empty", nil)
	}
	sanitized, repair := jsonrepair.SanitizeWithStats(text)
	c.logRepair(file, repair)

	root, err := records.ParseValue(sanitized)
	if err != nil {
		return Document{}, classifyJSONError(file, text, sanitized, err)
	}
	out, err := records.IndentJSON([]byte(sanitized), c.opts.Indent)
	if err != nil {
		return Document{}, services.Wrap(services.ErrConversion, file, "indent json", "", err)
	}
	doc := Document{Text: string(out), Direction: DirectionRepair, Repair: repair}
	if list, ok := root.Object().Get("records"); ok {
		for _, item := range list.Items() {
			if id, ok := item.Object().Get(records.ColumnID); ok && id.Text() != "" {
				doc.IDs = append(doc.IDs, id.Text())
			}
		}
		doc.Stats.Records = len(list.Items())
	}
	return doc, nil
}

func (c *Converter) logRepair(file string, stats jsonrepair.Stats) {
	if !stats.Changed() {
		return
	}
	c.logger.Debug("sanitized control characters",
		logging.String(logging.FieldFile, file),
		logging.Int("newlines", stats.Newlines),
		logging.Int("carriage_returns", stats.CarriageReturns),
		logging.Int("tabs", stats.Tabs),
		logging.Int("blanked", stats.Blanked),
		logging.Int("backslashes", stats.Backslashes),
	)
}

func classifyJSONError(file, original, sanitized string, err error) error {
	var syntaxErr *json.SyntaxError
	switch {
	case errors.As(err, &syntaxErr):
		perr := &ParseError{
			Diagnostic: jsonrepair.DiagnoseSyntax(original, sanitized, syntaxErr),
			Err:        syntaxErr,
		}
		return services.Wrap(services.ErrMalformed, file, "parse json", "", perr)
	case errors.Is(err, records.ErrNoRecords):
		return services.Wrap(services.ErrEmptySource, file, "parse json", "", err)
	default:
		return services.Wrap(services.ErrMalformed, file, "parse json", "", err)
	}
}

func preview(ids []string, n int) []string {
	if n <= 0 || len(ids) == 0 {
		return nil
	}
	if len(ids) > n {
		ids = ids[:n]
	}
	return append([]string(nil), ids...)
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}
