package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/favilink/favilink/internal/config"
)

//go:embed templates/favilink.yaml
var rulesTemplate embed.FS

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new favilink rules file",
		Long: `Init creates a new .favilink rules file in the current directory.

The generated file includes:
- The site domain and threshold settings
- Commented examples for blacklists, whitelists, and hostname rewrites
- Documentation for all available options

Examples:
  # Create .favilink in the current directory
  favilink init

  # Create the rules file at a specific path
  favilink init -o myrules.yaml

  # Force overwrite an existing file
  favilink init -f`,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultRulesFile,
		"Output file path for the rules file")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing rules file")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("rules file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	content, err := rulesTemplate.ReadFile("templates/favilink.yaml")
	if err != nil {
		return fmt.Errorf("failed to read rules template: %w", err)
	}

	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write rules file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created rules file: %s\n", outputPath)
	fmt.Fprintln(out, "\nEdit this file to configure site-specific settings such as:")
	fmt.Fprintln(out, "  - Domains whose favicons should never render")
	fmt.Fprintln(out, "  - Hostname rewrites and preserved subdomains")
	fmt.Fprintln(out, "  - The minimum usage count before an icon appears")

	return nil
}
