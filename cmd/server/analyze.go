package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"netita/server/config"
)

func analyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <url>",
		Short: "Analyze a single imoti.net listing",
		Long:  `Runs the listing analysis once and prints the result as JSON.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}
			// Keep stdout for the result.
			logger.SetOutput(cmd.ErrOrStderr())

			result, err := newAnalyzer(cfg, logger).Analyze(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}
}
