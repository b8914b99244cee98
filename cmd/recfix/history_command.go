package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"recfix/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOutput bool

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded conversions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listHistory(cmd, ctx, limit, jsonOutput)
		},
	}
	historyCmd.PersistentFlags().IntVar(&limit, "limit", 20, "Maximum entries to show (0 for all)")
	historyCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded conversions, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listHistory(cmd, ctx, limit, jsonOutput)
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove all recorded conversions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistory(ctx, func(store *history.Store) error {
				removed, err := store.Clear(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d history entries\n", removed)
				return nil
			})
		},
	}

	historyCmd.AddCommand(listCmd, clearCmd)
	return historyCmd
}

func withHistory(ctx *commandContext, fn func(*history.Store) error) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	store, err := history.Open(cfg)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer store.Close()
	return fn(store)
}

func listHistory(cmd *cobra.Command, ctx *commandContext, limit int, jsonOutput bool) error {
	return withHistory(ctx, func(store *history.Store) error {
		entries, err := store.List(cmd.Context(), limit)
		if err != nil {
			return err
		}
		summary, err := store.Summarize(cmd.Context())
		if err != nil {
			return err
		}
		if jsonOutput {
			if entries == nil {
				entries = []history.Entry{}
			}
			return writeJSON(cmd, struct {
				Entries []history.Entry `json:"entries"`
				Summary history.Summary `json:"summary"`
			}{entries, summary})
		}
		printHistory(cmd.OutOrStdout(), entries, summary)
		return nil
	})
}

func printHistory(w io.Writer, entries []history.Entry, summary history.Summary) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No conversions recorded")
		return
	}
	colorize := isTerminal(w)
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		detail := e.Output
		if e.Error != "" {
			detail = e.Error
		}
		rows = append(rows, []string{
			strconv.FormatInt(e.ID, 10),
			e.CompletedAt.Local().Format("2006-01-02 15:04:05"),
			shortRunID(e.RunID),
			e.Input,
			e.Direction,
			strconv.Itoa(e.Records),
			statusLabel(e.Status, colorize),
			detail,
		})
	}
	printTable(w, []column{
		right("ID"), left("Completed"), left("Run"), left("Input"),
		left("Direction"), right("Records"), left("Status"), left("Output"),
	}, rows)
	fmt.Fprintf(w, "%d total: %d converted, %d skipped, %d failed\n",
		summary.Total, summary.Converted, summary.Skipped, summary.Failed)
}

func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
