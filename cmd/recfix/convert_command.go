package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"recfix/internal/batch"
	"recfix/internal/config"
	"recfix/internal/convert"
	"recfix/internal/fileutil"
	"recfix/internal/history"
	"recfix/internal/services"
)

type runFlags struct {
	output   string
	outDir   string
	jobs     int
	columns  []string
	noHeader bool
	decode   bool
	json     bool
}

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "convert <path>...",
		Short: "Convert record exports between JSON and CSV",
		Long: "Convert each file to the other format. Files starting with '{' are read as JSON\n" +
			"exports and written as CSV; everything else is read as CSV and written as JSON.",
		Args: missingInputArgs("convert"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, ctx, batch.ModeConvert, args, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Output path (single input only)")
	cmd.Flags().StringVar(&flags.outDir, "out-dir", "", "Directory for outputs instead of beside each input")
	cmd.Flags().IntVar(&flags.jobs, "jobs", 0, "Files to convert in parallel (default from config)")
	cmd.Flags().StringSliceVar(&flags.columns, "columns", nil, "Column names to use instead of the CSV header")
	cmd.Flags().BoolVar(&flags.noHeader, "no-header", false, "Treat the first CSV line as data (requires --columns)")
	cmd.Flags().BoolVar(&flags.decode, "decode-structured", false, "Decode CSV cells holding JSON arrays or objects")
	cmd.Flags().BoolVar(&flags.json, "json", false, "Output results as JSON")
	return cmd
}

func newRepairCommand(ctx *commandContext) *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "repair <path>...",
		Short: "Escape raw control characters in JSON exports",
		Long:  "Sanitize each JSON file and write a re-indented copy with the repair suffix (default _FIXED).",
		Args:  missingInputArgs("repair"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, ctx, batch.ModeRepair, args, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Output path (single input only)")
	cmd.Flags().StringVar(&flags.outDir, "out-dir", "", "Directory for outputs instead of beside each input")
	cmd.Flags().IntVar(&flags.jobs, "jobs", 0, "Files to repair in parallel (default from config)")
	cmd.Flags().BoolVar(&flags.json, "json", false, "Output results as JSON")
	return cmd
}

func runBatch(cmd *cobra.Command, ctx *commandContext, mode batch.Mode, args []string, flags runFlags) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	if flags.output != "" && len(args) > 1 {
		return errors.New("--output accepts a single input; use --out-dir for several files")
	}
	opts, workers, err := resolveRunOptions(cfg, flags)
	if err != nil {
		return err
	}

	logger, err := ctx.ensureLogger()
	if err != nil {
		return err
	}
	var recorder batch.Recorder
	if store := ctx.openHistory(cfg, logger); store != nil {
		defer store.Close()
		recorder = store
	}

	fs := fileutil.FS{}
	conv := convert.New(fs, fs, opts, logger)
	runner := batch.NewRunner(conv, recorder, batch.Options{Workers: workers, Retain: cfg.History.Retain}, logger)

	items := batch.Items(args...)
	if flags.output != "" {
		output, err := config.ExpandPath(flags.output)
		if err != nil {
			return err
		}
		items[0].Output = output
	}

	report, runErr := runner.Run(cmd.Context(), ctx.runID, mode, items)
	printDiagnostics(cmd.ErrOrStderr(), report)
	if flags.json {
		if err := writeJSON(cmd, newReportView(report)); err != nil {
			return err
		}
	} else {
		printReport(cmd.OutOrStdout(), report)
	}
	if runErr != nil {
		return runErr
	}
	if report.Failed() {
		return fmt.Errorf("%s of %d failed", pluralize(report.Summary.Failed, "file"), report.Summary.Total)
	}
	return nil
}

func resolveRunOptions(cfg *config.Config, flags runFlags) (convert.Options, int, error) {
	opts := convert.OptionsFromConfig(cfg)
	if strings.TrimSpace(flags.outDir) != "" {
		dir, err := config.ExpandPath(flags.outDir)
		if err != nil {
			return opts, 0, err
		}
		opts.OutputDir = dir
	}
	if len(flags.columns) > 0 {
		opts.CSV.Columns = nil
		for _, col := range flags.columns {
			opts.CSV.Columns = append(opts.CSV.Columns, strings.TrimSpace(col))
		}
	}
	if flags.noHeader {
		opts.CSV.NoHeader = true
	}
	if flags.decode {
		opts.CSV.DecodeStructured = true
	}
	if opts.CSV.NoHeader && len(opts.CSV.Columns) == 0 {
		return opts, 0, services.Wrap(services.ErrConfiguration, "", "csv options", "--no-header requires --columns", nil)
	}

	workers := cfg.Batch.Workers
	if flags.jobs < 0 {
		return opts, 0, fmt.Errorf("--jobs must be non-negative, got %d", flags.jobs)
	}
	if flags.jobs > 0 {
		workers = flags.jobs
	}
	return opts, workers, nil
}

func printDiagnostics(w io.Writer, report batch.Report) {
	for _, o := range report.Outcomes {
		var perr *convert.ParseError
		if errors.As(o.Err, &perr) {
			fmt.Fprintf(w, "%s: %s", o.Item.Path, perr.Diagnostic.String())
		}
	}
}

func printReport(w io.Writer, report batch.Report) {
	colorize := isTerminal(w)
	rows := make([][]string, 0, len(report.Outcomes))
	for _, o := range report.Outcomes {
		rows = append(rows, []string{
			o.Item.Path,
			string(o.Result.Direction),
			strconv.Itoa(o.Result.Records),
			strconv.Itoa(o.Result.Skipped),
			statusLabel(o.Status, colorize),
			outcomeDetail(o),
		})
	}
	printTable(w, []column{
		left("File"), left("Direction"), right("Records"), right("Skipped"), left("Status"), left("Output"),
	}, rows)
	for _, o := range report.Outcomes {
		if len(o.Result.PreviewIDs) > 0 {
			fmt.Fprintf(w, "%s: first ids %s\n", o.Item.Path, strings.Join(o.Result.PreviewIDs, ", "))
		}
	}
	fmt.Fprintf(w, "Run %s: %d converted, %d skipped, %d failed\n",
		report.RunID, report.Summary.Converted, report.Summary.Skipped, report.Summary.Failed)
}

func outcomeDetail(o batch.Outcome) string {
	if o.Err != nil {
		return o.Err.Error()
	}
	return o.Result.Output
}

type outcomeView struct {
	convert.Result
	Status history.Status `json:"status"`
	Error  string         `json:"error,omitempty"`
}

type reportView struct {
	RunID    string          `json:"run_id"`
	Outcomes []outcomeView   `json:"outcomes"`
	Summary  history.Summary `json:"summary"`
}

func newReportView(report batch.Report) reportView {
	view := reportView{RunID: report.RunID, Summary: report.Summary, Outcomes: make([]outcomeView, 0, len(report.Outcomes))}
	for _, o := range report.Outcomes {
		ov := outcomeView{Result: o.Result, Status: o.Status}
		if o.Err != nil {
			ov.Error = o.Err.Error()
		}
		view.Outcomes = append(view.Outcomes, ov)
	}
	return view
}
