package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/favilink/favilink/internal/config"
	"github.com/favilink/favilink/internal/database"
	"github.com/favilink/favilink/internal/favicon"
	"github.com/favilink/favilink/internal/log"
	"github.com/favilink/favilink/internal/model"
	"github.com/favilink/favilink/internal/pipeline"
	"github.com/favilink/favilink/internal/populate"
)

// NewBuildCmd creates the build command.
func NewBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build <site-dir>",
		Short: "Decorate a rendered site with favicons",
		Long: `Build runs the full favicon pipeline over the rendered HTML under the
given directory.

The pipeline is two strictly ordered sweeps plus housekeeping:
  1. count:    tally favicon usage across every document
  2. insert:   resolve icons and splice the frequent ones into the links
  3. populate: fill favicon inventory placeholders
  4. flush:    persist the URL cache for the next build

Resolution outcomes are memoized in dotfiles under the site directory,
so repeat builds only touch the network for domains seen for the first
time.

Examples:
  # Decorate the rendered site under ./public
  favilink build --base-url https://example.com ./public

  # With an asset CDN serving pre-converted SVG/AVIF icon variants
  favilink build --base-url https://example.com --cdn https://cdn.example.com ./public

  # Record resolution outcomes for the stats command
  favilink build --base-url https://example.com --db-dir ~/.local/share/favilink ./public`,
		Args: cobra.ExactArgs(1),
		RunE: runBuildCmd,
	}

	cmd.Flags().StringP("base-url", "u", "",
		"Canonical origin of the site, e.g. https://example.com (required)")
	cmd.Flags().String("cdn", "",
		"Asset CDN base URL serving SVG/AVIF favicon variants")
	cmd.Flags().String("service", config.DefaultFaviconService,
		"Favicon rendering service URL template (%s receives the domain)")
	cmd.Flags().IntP("min-count", "n", config.DefaultMinCount,
		"Minimum corpus-wide occurrences before a favicon is rendered")
	cmd.Flags().IntP("concurrency", "b", config.DefaultConcurrency,
		"Number of documents processed in parallel")
	cmd.Flags().Duration("probe-timeout", config.DefaultProbeTimeout,
		"Timeout for each CDN existence probe")
	cmd.Flags().Duration("download-timeout", config.DefaultDownloadTimeout,
		"Timeout for each favicon service download")
	cmd.Flags().StringP("rules", "c", "",
		"Rules file path (default: .favilink in site, current, or home directory)")
	cmd.Flags().String("db-dir", "",
		"Directory for the SQLite resolution log (empty disables recording)")

	return cmd
}

// runBuildCmd executes the build command.
func runBuildCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	verbose := getVerboseFlag(cmd)
	logger := log.NewDedupLogger(os.Stderr, verbose)
	slog.SetDefault(logger)

	// Graceful shutdown on interrupt: the current sweep stops between
	// documents and the cache still flushes what it has.
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runBuild(ctx, cmd, cfg, logger)
}

// buildConfig assembles the configuration from flags and the rules file.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.SiteDir = args[0]

	var err error
	if cfg.BaseURL, err = cmd.Flags().GetString("base-url"); err != nil {
		return nil, err
	}
	if cfg.CDNBaseURL, err = cmd.Flags().GetString("cdn"); err != nil {
		return nil, err
	}
	if cfg.FaviconServiceURL, err = cmd.Flags().GetString("service"); err != nil {
		return nil, err
	}
	if cfg.MinCount, err = cmd.Flags().GetInt("min-count"); err != nil {
		return nil, err
	}
	if cfg.Concurrency, err = cmd.Flags().GetInt("concurrency"); err != nil {
		return nil, err
	}
	if cfg.ProbeTimeout, err = cmd.Flags().GetDuration("probe-timeout"); err != nil {
		return nil, err
	}
	if cfg.DownloadTimeout, err = cmd.Flags().GetDuration("download-timeout"); err != nil {
		return nil, err
	}
	if cfg.DBDir, err = cmd.Flags().GetString("db-dir"); err != nil {
		return nil, err
	}
	cfg.SaveToDB = cfg.DBDir != ""
	cfg.Verbose = getVerboseFlag(cmd)

	rulesFlag, err := cmd.Flags().GetString("rules")
	if err != nil {
		return nil, err
	}
	if err := loadRules(cfg, rulesFlag); err != nil {
		return nil, err
	}

	cfg.ApplyDefaults()
	return cfg, nil
}

// loadRules locates and loads the rules file into the configuration.
// An explicitly specified file must exist; a missing default file means
// built-in rules apply.
func loadRules(cfg *config.Config, rulesFlag string) error {
	path := config.FindRulesFile(rulesFlag, cfg.SiteDir)
	if path == "" {
		if rulesFlag != "" {
			return fmt.Errorf("%w: %s", config.ErrRulesNotFound, rulesFlag)
		}
		return nil
	}

	rules, err := config.LoadRulesFile(path)
	if err != nil {
		if errors.Is(err, config.ErrRulesNotFound) && rulesFlag == "" {
			return nil
		}
		return fmt.Errorf("failed to load rules file %s: %w", path, err)
	}

	cfg.RulesFilePath = path
	cfg.Rules = rules
	return nil
}

// siteDomain returns the domain links to which use the site logo: the
// rules file's domain when set, otherwise the base URL's host.
func siteDomain(cfg *config.Config) string {
	if cfg.Rules.Domain != "" {
		return cfg.Rules.Domain
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// effectiveMinCount applies the rules file's threshold override.
func effectiveMinCount(cfg *config.Config) int {
	if cfg.Rules.MinCount > 0 {
		return cfg.Rules.MinCount
	}
	return cfg.MinCount
}

// runBuild wires the components and executes the pipeline.
func runBuild(ctx context.Context, cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) error {
	docs, err := model.DiscoverDocuments(cfg.SiteDir)
	if err != nil {
		return fmt.Errorf("failed to discover documents: %w", err)
	}
	if len(docs) == 0 {
		logger.Warn("no HTML documents found", "dir", cfg.SiteDir)
		return nil
	}

	classifier, err := favicon.NewClassifier(cfg.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}

	rewrites := make([]favicon.Rewrite, 0, len(cfg.Rules.Rewrites))
	for _, r := range cfg.Rules.Rewrites {
		rewrites = append(rewrites, favicon.Rewrite{Pattern: r.Pattern, Domain: r.Domain})
	}
	norm, err := favicon.NewNormalizer(siteDomain(cfg), rewrites, cfg.Rules.PreserveSubdomains)
	if err != nil {
		return fmt.Errorf("invalid rules: %w", err)
	}

	counter := favicon.NewCounter(cfg.CountCachePath, favicon.WithCounterLogger(logger))

	cache := favicon.NewURLCache(cfg.URLCachePath, favicon.WithCacheLogger(logger))
	if err := cache.Load(); err != nil {
		logger.Warn("starting with empty URL cache", "error", err)
	}

	resolverOpts := []favicon.ResolverOption{
		favicon.WithServiceURL(cfg.FaviconServiceURL),
		favicon.WithBlacklist(cfg.Rules.Blacklist),
		favicon.WithProbeTimeout(cfg.ProbeTimeout),
		favicon.WithDownloadTimeout(cfg.DownloadTimeout),
		favicon.WithResolverLogger(logger),
	}
	if cfg.CDNBaseURL != "" {
		resolverOpts = append(resolverOpts, favicon.WithCDNBaseURL(cfg.CDNBaseURL))
	}
	if cfg.SaveToDB {
		rlog, err := database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open resolution log: %w", err)
		}
		defer func() {
			if err := rlog.Close(); err != nil {
				logger.Warn("failed to close resolution log", "error", err)
			}
		}()
		resolverOpts = append(resolverOpts, favicon.WithRecorder(rlog))
	}

	client := &http.Client{Timeout: cfg.DownloadTimeout}
	resolver := favicon.NewResolver(client, cache, norm, cfg.SiteDir, resolverOpts...)

	gate := favicon.NewGate(counter, effectiveMinCount(cfg), cfg.Rules.Blacklist, cfg.Rules.Whitelist)

	populator := populate.New(counter, cache, gate,
		populate.WithProber(resolver),
		populate.WithLogger(logger),
	)

	steps := []pipeline.Step{
		pipeline.NewCountStep(classifier, norm, counter, cfg.Concurrency, logger),
		pipeline.NewInsertStep(classifier, norm, counter, resolver, gate, cfg.Concurrency, logger),
		pipeline.NewPopulateStep(populator),
		pipeline.NewFlushStep(cache),
	}

	build := model.NewBuild(docs)
	if err := pipeline.New(steps, pipeline.WithLogger(logger)).Execute(ctx, build); err != nil {
		// Flush what we have so interrupted builds still save their probes.
		if flushErr := cache.Flush(); flushErr != nil {
			logger.Warn("failed to flush URL cache", "error", flushErr)
		}
		return err
	}

	printSummary(cmd, build)
	return nil
}

// printSummary writes the build summary to stdout.
func printSummary(cmd *cobra.Command, build *model.Build) {
	stats := build.Stats()
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "documents counted:   %d\n", stats.DocumentsCounted)
	fmt.Fprintf(out, "documents decorated: %d\n", stats.DocumentsInserted)
	fmt.Fprintf(out, "icons inserted:      %d\n", stats.IconsInserted)
	fmt.Fprintf(out, "links skipped:       %d\n", stats.LinksSkipped)
	fmt.Fprintf(out, "failures:            %d\n", stats.Failures)
	fmt.Fprintf(out, "elapsed:             %s\n", stats.Elapsed.Round(time.Millisecond))
	for _, f := range build.Failures {
		fmt.Fprintf(out, "  failure: %s\n", f)
	}
}
