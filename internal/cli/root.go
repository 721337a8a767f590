package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"checkctl/internal/app"
)

var rootCmd = &cobra.Command{
	Use:   "checkctl",
	Short: "checkctl – ten million shared checkboxes",
	Long:  "checkctl renders a shared grid of ten million checkboxes in the terminal,\nsynced live with every other connected viewer.",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default action: launch the TUI
		return app.Start()
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
