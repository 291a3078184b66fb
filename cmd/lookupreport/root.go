package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for lookupreport.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lookupreport",
		Short: "Turn lookup API responses into plain-text reports",
		Long: `lookupreport converts JSON responses from independently operated lookup APIs
into stable, human-readable text reports.

It locates the data inside the response envelope, picks a layout for the
lookup category and prints an aligned report. Upstream endpoints are read
from the .lookupreport configuration file (see "lookupreport init").`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .lookupreport in current or home directory)")
	cmd.PersistentFlags().String("data-dir", "",
		"Directory holding the history database (default: XDG data directory)")

	cmd.AddCommand(NewRenderCmd())
	cmd.AddCommand(NewExplainCmd())
	cmd.AddCommand(NewLookupCmd())
	cmd.AddCommand(NewCategoriesCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
