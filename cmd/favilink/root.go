// Package main provides the entry point for the favilink CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for favilink.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "favilink",
		Short: "Decorate static-site links with favicons",
		Long: `Favilink post-processes the rendered HTML of a static site, splicing a
small favicon image into every external link so readers can see where a
link leads before they click it.

Icons are resolved through local files, a CDN, and a favicon rendering
service, memoized across builds, and only rendered for domains that
appear often enough across the whole site to aid recognition.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewBuildCmd())
	cmd.AddCommand(NewStatsCmd())
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

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}
