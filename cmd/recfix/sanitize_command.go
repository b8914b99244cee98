package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"recfix/internal/jsonrepair"
	"recfix/internal/services"
	"recfix/internal/textutil"
)

func newSanitizeCommand() *cobra.Command {
	var showStats bool

	cmd := &cobra.Command{
		Use:         "sanitize [path]",
		Short:       "Escape raw control characters in JSON text (stdin to stdout)",
		Args:        cobra.MaximumNArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				raw  []byte
				err  error
				name = "stdin"
			)
			if len(args) == 1 {
				name = args[0]
				raw, err = os.ReadFile(name)
			} else {
				raw, err = io.ReadAll(cmd.InOrStdin())
			}
			if err != nil {
				return services.Wrap(services.ErrUnreadableFile, name, "read", "", err)
			}
			text, err := textutil.DecodeText(raw)
			if err != nil {
				return services.Wrap(services.ErrUnreadableFile, name, "decode", "", err)
			}

			sanitized, stats := jsonrepair.SanitizeWithStats(text)
			if _, err := io.WriteString(cmd.OutOrStdout(), sanitized); err != nil {
				return services.Wrap(services.ErrWriteFailed, name, "write", "stdout", err)
			}
			if showStats {
				fmt.Fprintf(cmd.ErrOrStderr(), "escaped %d newlines, %d carriage returns, %d tabs; blanked %d; doubled %d backslashes\n",
					stats.Newlines, stats.CarriageReturns, stats.Tabs, stats.Blanked, stats.Backslashes)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showStats, "stats", false, "Report what was escaped on stderr")
	return cmd
}
