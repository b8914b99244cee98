package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"recfix/internal/batch"
	"recfix/internal/config"
	"recfix/internal/convert"
	"recfix/internal/fileutil"
	"recfix/internal/watch"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Convert exports as they appear in a directory",
		Long: "Watch a directory and convert every new or rewritten .json or .csv file into\n" +
			"the output directory. Runs until interrupted; one watcher per state directory.",
		Args: missingInputArgs("watch"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 1 {
				return fmt.Errorf("watch takes one directory, got %d", len(args))
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			dir, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			if strings.TrimSpace(outDir) != "" {
				if outDir, err = config.ExpandPath(outDir); err != nil {
					return err
				}
			}
			opts := watch.OptionsFromConfig(cfg, dir, outDir)

			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			var recorder batch.Recorder
			if store := ctx.openHistory(cfg, logger); store != nil {
				defer store.Close()
				recorder = store
			}

			convOpts := convert.OptionsFromConfig(cfg)
			convOpts.OutputDir = opts.OutputDir
			fs := fileutil.FS{}
			conv := convert.New(fs, fs, convOpts, logger)
			runner := batch.NewRunner(conv, recorder, batch.OptionsFromConfig(cfg), logger)

			out := cmd.OutOrStdout()
			opts.OnReady = func() {
				fmt.Fprintf(out, "Watching %s, writing to %s (Ctrl+C to stop)\n", opts.Dir, opts.OutputDir)
			}
			opts.OnReport = func(report batch.Report) {
				printDiagnostics(cmd.ErrOrStderr(), report)
				for _, o := range report.Outcomes {
					fmt.Fprintf(out, "%s %s: %s\n", statusLabel(o.Status, isTerminal(out)), o.Item.Path, outcomeDetail(o))
				}
			}

			w, err := watch.New(opts, runner, logger)
			if err != nil {
				return err
			}
			return w.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&outDir, "out-dir", "", "Directory for converted files (default watch.output_dir)")
	return cmd
}
