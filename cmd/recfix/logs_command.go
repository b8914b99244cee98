package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"recfix/internal/logging"
	"recfix/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var lines int
	var pathOnly bool

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the newest run log",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cfg.Paths.LogDir == "" {
				return fmt.Errorf("log_dir is not configured; runs log to stderr only")
			}
			path, err := logs.Latest(cfg.Paths.LogDir, logging.RunLogPattern)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if pathOnly {
				fmt.Fprintln(out, path)
				return nil
			}
			tail, err := logs.LastLines(path, lines)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "==> %s <==\n", path)
			for _, line := range tail {
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Trailing lines to show (0 for all)")
	cmd.Flags().BoolVar(&pathOnly, "path", false, "Print only the log file path")
	return cmd
}
