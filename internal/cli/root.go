// Package cli wires the scribe commands: the batch pipeline, artefact
// regeneration from saved analyses, live dictation and the dashboard server.
package cli

import (
	"github.com/spf13/cobra"

	"clinical-scribe/internal/observability/logging"
)

// NewRootCmd creates the root command for scribe.
func NewRootCmd() *cobra.Command {
	var logLevel, logFormat string

	rootCmd := &cobra.Command{
		Use:           "scribe",
		Short:         "Clinical documentation pipeline for GP encounters",
		Long:          "scribe transcribes GP consultation recordings, extracts medical entities and generates SOAP notes, decision support prompts and patient artefacts.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Init(logging.Config{Level: logLevel, Format: logFormat})
		},
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "log format (json, console)")

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newSoapCmd())
	rootCmd.AddCommand(newDecisionCmd())
	rootCmd.AddCommand(newArtefactsCmd())
	rootCmd.AddCommand(newLiveCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}
