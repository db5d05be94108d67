package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "scconsole",
		Short: "Operator console for remote-control sessions",
		Long: `scconsole joins a remote-control session as the operator endpoint.

It speaks the binary session protocol over WebSocket, decodes the
incoming desktop stream, adapts stream quality to the measured
latency, and reconnects automatically when the connection drops.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		connectCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		os.Exit(1)
	}
}
