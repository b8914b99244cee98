package batch

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"recfix/internal/config"
	"recfix/internal/convert"
	"recfix/internal/history"
	"recfix/internal/logging"
	"recfix/internal/services"
)

// Mode selects the operation applied to each file.
type Mode int

const (
	// ModeConvert sniffs each file and converts it to the other format.
	ModeConvert Mode = iota
	// ModeRepair sanitizes JSON files and writes the repaired copy.
	ModeRepair
)

func (m Mode) String() string {
	if m == ModeRepair {
		return "repair"
	}
	return "convert"
}

// Recorder persists conversion outcomes. *history.Store satisfies it.
type Recorder interface {
	Record(ctx context.Context, entry history.Entry) (history.Entry, error)
	Prune(ctx context.Context, retain int) (int64, error)
}

// Options tunes a Runner.
type Options struct {
	// Workers bounds concurrent conversions. Values below one mean one.
	Workers int
	// Retain caps the history rows kept after a run. Zero keeps everything.
	Retain int
}

// OptionsFromConfig maps configuration onto runner options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{Workers: cfg.Batch.Workers, Retain: cfg.History.Retain}
}

// Item is one file to process. Output overrides the derived output path.
type Item struct {
	Path   string
	Output string
}

// Items builds items for paths with derived outputs.
func Items(paths ...string) []Item {
	items := make([]Item, 0, len(paths))
	for _, path := range paths {
		items = append(items, Item{Path: path})
	}
	return items
}

// Outcome is the result of one file.
type Outcome struct {
	Item   Item
	Result convert.Result
	Status history.Status
	Err    error
}

// Report collects the outcomes of a run in input order.
type Report struct {
	RunID    string
	Outcomes []Outcome
	Summary  history.Summary
}

// Failed reports whether any file ended in an error that should fail the
// process. Skipped empty sources do not count.
func (r Report) Failed() bool {
	for _, o := range r.Outcomes {
		if services.IsFatal(o.Err) {
			return true
		}
	}
	return false
}

// Runner drives conversions for a batch of files.
type Runner struct {
	conv     *convert.Converter
	recorder Recorder
	opts     Options
	logger   *slog.Logger
}

// NewRunner builds a Runner. recorder may be nil to skip history.
func NewRunner(conv *convert.Converter, recorder Recorder, opts Options, logger *slog.Logger) *Runner {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Runner{
		conv:     conv,
		recorder: recorder,
		opts:     opts,
		logger:   logging.NewComponentLogger(logger, "batch"),
	}
}

// Run processes items and returns a report. An empty runID gets a fresh
// uuid. Cancelling ctx stops scheduling further files; files already
// running finish and the context error is returned with the partial report.
func (r *Runner) Run(ctx context.Context, runID string, mode Mode, items []Item) (Report, error) {
	if runID == "" {
		runID = uuid.NewString()
	}
	report := Report{RunID: runID}
	if len(items) == 0 {
		return report, services.Wrap(services.ErrMissingInput, "", mode.String(), "no input files", nil)
	}
	ctx = services.WithRunID(ctx, runID)

	r.logger.Info("batch started",
		logging.String("batch_id", runID),
		logging.String("mode", mode.String()),
		logging.Int("files", len(items)),
		logging.Int("workers", r.opts.Workers),
		logging.String(logging.FieldEventType, "batch_started"),
	)

	outcomes := make([]Outcome, len(items))
	scheduled := make([]bool, len(items))
	g := new(errgroup.Group)
	g.SetLimit(r.opts.Workers)
	for i, item := range items {
		if ctx.Err() != nil {
			break
		}
		scheduled[i] = true
		g.Go(func() error {
			outcomes[i] = r.runOne(ctx, runID, mode, item)
			return nil
		})
	}
	_ = g.Wait()

	for i, o := range outcomes {
		if !scheduled[i] {
			continue
		}
		report.Outcomes = append(report.Outcomes, o)
		report.Summary.Total++
		switch o.Status {
		case history.StatusConverted:
			report.Summary.Converted++
		case history.StatusSkipped:
			report.Summary.Skipped++
		default:
			report.Summary.Failed++
		}
	}

	r.prune(ctx)

	r.logger.Info("batch finished",
		logging.String("batch_id", runID),
		logging.Int("converted", report.Summary.Converted),
		logging.Int("skipped", report.Summary.Skipped),
		logging.Int("failed", report.Summary.Failed),
		logging.String(logging.FieldEventType, "batch_finished"),
	)
	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, nil
}

func (r *Runner) runOne(ctx context.Context, runID string, mode Mode, item Item) Outcome {
	ctx = services.WithFile(ctx, item.Path)
	logger := logging.WithContext(ctx, r.logger)
	started := time.Now()

	var (
		res convert.Result
		err error
	)
	if mode == ModeRepair {
		res, err = r.conv.RepairTo(ctx, item.Path, item.Output)
	} else {
		res, err = r.conv.ConvertTo(ctx, item.Path, item.Output)
	}
	if res.Input == "" {
		res.Input = item.Path
	}

	outcome := Outcome{Item: item, Result: res, Status: history.StatusConverted, Err: err}
	if err != nil {
		outcome.Status = services.FailureStatus(err)
		r.logFailure(logger, res, err)
	}

	r.record(ctx, logger, history.Entry{
		RunID:       runID,
		Input:       res.Input,
		Output:      res.Output,
		Direction:   string(res.Direction),
		Records:     res.Records,
		Skipped:     res.Skipped,
		Status:      outcome.Status,
		Error:       errorText(err),
		StartedAt:   started,
		CompletedAt: time.Now(),
	})
	return outcome
}

func (r *Runner) logFailure(logger *slog.Logger, res convert.Result, err error) {
	if res.Direction != "" {
		logger = logger.With(logging.String(logging.FieldDirection, string(res.Direction)))
	}
	if !services.IsFatal(err) {
		logging.WarnWithContext(logger, "file skipped", "file_skipped",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "the file holds no records; check the export"),
			logging.String(logging.FieldImpact, "no output written for this file"),
		)
		return
	}

	attrs := []logging.Attr{
		logging.Error(err),
		logging.Alert("conversion_failed"),
	}
	var perr *convert.ParseError
	if errors.As(err, &perr) {
		attrs = append(attrs,
			logging.Int("char_offset", perr.Diagnostic.Offset),
			logging.String("code_point", perr.Diagnostic.CodePoint()),
			logging.String(logging.FieldErrorHint, "inspect the text around the reported character"),
		)
	} else {
		attrs = append(attrs, logging.String(logging.FieldErrorHint, hintFor(err)))
	}
	logging.ErrorWithContext(logger, "conversion failed", "conversion_failed", attrs...)
}

func (r *Runner) record(ctx context.Context, logger *slog.Logger, entry history.Entry) {
	if r.recorder == nil {
		return
	}
	// history writes must survive a cancelled batch
	if _, err := r.recorder.Record(context.WithoutCancel(ctx), entry); err != nil {
		logging.WarnWithContext(logger, "history record failed", "history_record_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check state_dir permissions"),
			logging.String(logging.FieldImpact, "conversion missing from history"),
		)
	}
}

func (r *Runner) prune(ctx context.Context) {
	if r.recorder == nil || r.opts.Retain <= 0 {
		return
	}
	removed, err := r.recorder.Prune(context.WithoutCancel(ctx), r.opts.Retain)
	if err != nil {
		logging.WarnWithContext(r.logger, "history prune failed", "history_prune_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "history keeps more rows than configured"),
		)
		return
	}
	if removed > 0 {
		r.logger.Debug("history pruned", logging.Int64("removed", removed))
	}
}

func hintFor(err error) string {
	switch {
	case errors.Is(err, services.ErrUnreadableFile):
		return "check the path exists and is readable"
	case errors.Is(err, services.ErrMissingIDColumn):
		return "add an id column or pass --columns"
	case errors.Is(err, services.ErrWriteFailed):
		return "check the output directory is writable and differs from the input"
	case errors.Is(err, services.ErrMalformed):
		return "the document is not a records export"
	default:
		return "see `recfix logs` for the full run log"
	}
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
