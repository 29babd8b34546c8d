package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "netita-server",
		Short: "Netita property catalog and imoti.net listing analyzer",
		Long: `Serves the property catalog API and analyzes imoti.net listings against
district price benchmarks. Configuration is read from the environment and an optional .env file.`,
		SilenceUsage: true,
		RunE:         runServe,
	}
	cmd.AddCommand(analyzeCmd())
	return cmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
