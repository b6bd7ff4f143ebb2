// Command server runs the tutoring admin backend: the HTTP API and the
// one-shot batch commands that share its configuration.
package main

import (
	"github.com/spf13/cobra"

	_ "github.com/JonMunkholm/tutoradmin/internal/core/tables" // Register all tables
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "tutoradmin",
		Short:         "Tutoring office records, form intake and attendance",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		NewServeCommand(),
		NewSyncCommand(),
		NewRecalculateCommand(),
		NewScheduleCommand(),
		NewRebuildHeadersCommand(),
		NewTablesCommand(),
	)
	return root
}

func main() {
	exitOnError(newRootCommand().Execute())
}
