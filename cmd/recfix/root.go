package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string

	ctx := newCommandContext(&configFlag)

	rootCmd := &cobra.Command{
		Use:   "recfix",
		Short: "Repair record exports and convert them between JSON and CSV",
		Long:  `recfix repairs JSON record exports whose strings contain raw control
characters and converts them to CSV, or turns an edited CSV back into
id-keyed JSON. The format is chosen from the first character of each file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")

	rootCmd.AddCommand(
		newConvertCommand(ctx),
		newRepairCommand(ctx),
		newSanitizeCommand(),
		newWatchCommand(ctx),
		newHistoryCommand(ctx),
		newLogsCommand(ctx),
		newConfigCommand(ctx),
	)

	return rootCmd
}
