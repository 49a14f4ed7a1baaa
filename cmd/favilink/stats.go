package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/favilink/favilink/internal/config"
	"github.com/favilink/favilink/internal/database"
	"github.com/favilink/favilink/internal/favicon"
	"github.com/favilink/favilink/internal/log"
	"github.com/favilink/favilink/internal/model"
	"github.com/favilink/favilink/internal/report"
)

// NewStatsCmd creates the stats command.
func NewStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats <site-dir>",
		Short: "Report favicon usage for a site",
		Long: `Stats reads the persisted tally and URL cache left behind by a build and
reports which favicons the site uses, how often, and which ones the
inclusion gate lets render.

When a resolution log database is available, the report also breaks down
how each domain's favicon was found (local file, CDN, download service).

Examples:
  # Plain-text report on the terminal
  favilink stats ./public

  # Markdown report, including gated-out favicons
  favilink stats --markdown --verbose ./public

  # Write the report to a file
  favilink stats --markdown -o favicon-report.md ./public`,
		Args: cobra.ExactArgs(1),
		RunE: runStatsCmd,
	}

	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown instead of plain text")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().StringP("rules", "c", "",
		"Rules file path (default: .favilink in site, current, or home directory)")
	cmd.Flags().IntP("min-count", "n", config.DefaultMinCount,
		"Minimum corpus-wide occurrences before a favicon is rendered")
	cmd.Flags().String("db-dir", "",
		"Directory of the SQLite resolution log")

	return cmd
}

// runStatsCmd executes the stats command.
func runStatsCmd(cmd *cobra.Command, args []string) error {
	cfg := config.NewConfig()
	cfg.SiteDir = args[0]

	var err error
	if cfg.MinCount, err = cmd.Flags().GetInt("min-count"); err != nil {
		return err
	}
	if cfg.DBDir, err = cmd.Flags().GetString("db-dir"); err != nil {
		return err
	}
	rulesFlag, err := cmd.Flags().GetString("rules")
	if err != nil {
		return err
	}
	if err := loadRules(cfg, rulesFlag); err != nil {
		return err
	}
	cfg.ApplyDefaults()

	verbose := getVerboseFlag(cmd)
	logger := log.NewDedupLogger(os.Stderr, verbose)

	usage, err := assembleUsageReport(cmd, cfg)
	if err != nil {
		return err
	}
	if len(usage.Entries) == 0 {
		logger.Warn("no persisted tally found; run `favilink build` first", "dir", cfg.SiteDir)
	}

	writer, cleanup, err := statsWriter(cmd, verbose)
	if err != nil {
		return err
	}
	defer cleanup()

	if _, err := writer.Write(usage); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// assembleUsageReport builds the usage report from the persisted tally,
// URL cache, and (when available) the resolution log.
func assembleUsageReport(cmd *cobra.Command, cfg *config.Config) (*model.UsageReport, error) {
	counter := favicon.NewCounter(cfg.CountCachePath)
	if err := counter.Load(); err != nil {
		return nil, fmt.Errorf("failed to load tally: %w", err)
	}

	cache := favicon.NewURLCache(cfg.URLCachePath)
	if err := cache.Load(); err != nil {
		return nil, fmt.Errorf("failed to load URL cache: %w", err)
	}

	gate := favicon.NewGate(counter, effectiveMinCount(cfg), cfg.Rules.Blacklist, cfg.Rules.Whitelist)

	usage := &model.UsageReport{
		SiteDir:     cfg.SiteDir,
		GeneratedAt: time.Now(),
	}
	for _, e := range counter.Snapshot() {
		entry := model.UsageEntry{Key: e.Key, Count: e.Count}

		switch {
		case favicon.IsSentinel(e.Key + ".svg"):
			entry.Value = e.Key + ".svg"
		default:
			if v, ok := cache.Get(e.Key + ".png"); ok && v != favicon.FailedValue {
				entry.Value = v
			}
		}
		entry.Included = entry.Value != "" && gate.Include(e.Key+".png", entry.Value)

		usage.Entries = append(usage.Entries, entry)
	}

	if cfg.DBDir != "" {
		tiers, err := tierCounts(cmd, cfg.DBDir)
		if err != nil {
			return nil, err
		}
		usage.TierCounts = tiers
	}
	return usage, nil
}

// tierCounts queries the resolution log; a missing database is reported
// as an error because the user asked for it explicitly.
func tierCounts(cmd *cobra.Command, dbDir string) (map[string]int, error) {
	rlog, err := database.Open(dbDir, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open resolution log: %w", err)
	}
	defer rlog.Close() //nolint:errcheck // Read-only usage

	return rlog.CountByTier(cmd.Context())
}

// statsWriter picks the output format and destination from the flags.
func statsWriter(cmd *cobra.Command, verbose bool) (report.Writer, func(), error) {
	markdown, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, nil, err
	}
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return nil, nil, err
	}

	var out io.Writer = cmd.OutOrStdout()
	cleanup := func() {}
	if outputPath != "" {
		if dir := filepath.Dir(outputPath); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
			}
		}
		f, err := os.Create(outputPath) //nolint:gosec // User-provided output path is intentional
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create output file: %w", err)
		}
		out = f
		cleanup = func() { _ = f.Close() } //nolint:errcheck // Best effort close
	}

	if markdown {
		return report.NewMarkdownWriter(out), cleanup, nil
	}
	return report.NewSimpleWriter(out, report.WithVerbose(verbose)), cleanup, nil
}
