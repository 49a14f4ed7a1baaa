package config

import (
	"net/url"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These defaults are chosen so that a plain `favilink build <dir>` works on
// a conventional static-site layout without a rules file.
const (
	// DefaultMinCount is the minimum number of times a favicon must appear
	// across the whole corpus before it is worth rendering. Showing an icon
	// for a domain linked once adds visual noise without aiding recognition;
	// six occurrences is where recognition starts paying for the clutter.
	DefaultMinCount = 6

	// DefaultConcurrency is the number of documents processed in parallel
	// within a sweep. Resolution is network-bound, so modest parallelism
	// hides probe latency without hammering the CDN or favicon service.
	DefaultConcurrency = 8

	// DefaultProbeTimeout bounds each CDN existence check. Probes are
	// HEAD requests against a CDN; anything slower than a few seconds is
	// as good as a miss, because the next tier can still succeed.
	DefaultProbeTimeout = 10 * time.Second

	// DefaultDownloadTimeout bounds a favicon download from the rendering
	// service. Downloads are small images but the service can be slow to
	// render an icon it has not cached on its side.
	DefaultDownloadTimeout = 30 * time.Second

	// DefaultFaviconService is the URL template for the third-party favicon
	// rendering service. The %s placeholder receives the root domain.
	DefaultFaviconService = "https://www.google.com/s2/favicons?domain=%s&sz=32"

	// DefaultStaticSubdir is the directory under the site root that holds
	// static assets, including downloaded favicons.
	DefaultStaticSubdir = "static"

	// DefaultCountCacheName is the file name of the persisted frequency
	// tally, relative to the site root.
	DefaultCountCacheName = ".favicon-counts"

	// DefaultURLCacheName is the file name of the persisted URL cache,
	// relative to the site root.
	DefaultURLCacheName = ".favicon-urls"

	// AppName is the application name used for XDG directory paths.
	AppName = "favilink"
)

// Config holds all options for one pipeline invocation.
// It is populated from CLI flags plus the optional rules file and passed
// through the application by dependency injection rather than global state.
//
// Design decision: A single flat struct, mirroring how the options are set
// on the command line. The rules file covers the site-specific pieces
// (blacklists, rewrites) and is carried here as a parsed Rules value.
type Config struct {
	// SiteDir is the root directory of the rendered site. Both sweeps walk
	// this directory for .html files, and downloaded favicons are written
	// under its static subtree.
	SiteDir string

	// BaseURL is the canonical origin of the site (e.g. https://example.com).
	// Relative links are resolved against it, and its host maps to the
	// site-logo sentinel instead of an external favicon.
	BaseURL string

	// CDNBaseURL is the asset CDN that serves pre-converted SVG/AVIF
	// variants at paths derived from the local favicon path. Empty disables
	// the CDN tiers; local files and the download service still work.
	CDNBaseURL string

	// FaviconServiceURL is the URL template of the favicon rendering
	// service, with %s receiving the root domain.
	FaviconServiceURL string

	// MinCount is the minimum corpus-wide occurrence count for a
	// non-whitelisted favicon to be rendered.
	MinCount int

	// Concurrency is the number of documents processed in parallel.
	Concurrency int

	// ProbeTimeout bounds each CDN existence probe.
	ProbeTimeout time.Duration

	// DownloadTimeout bounds each favicon service download.
	DownloadTimeout time.Duration

	// Verbose enables slog.LevelDebug output; otherwise only warnings and
	// errors are logged.
	Verbose bool

	// RulesFilePath is the path to the rules file. If empty, the tool
	// searches for .favilink in the site directory, the current directory,
	// and the user's home directory, in that order.
	RulesFilePath string

	// Rules holds the parsed site rules (blacklist, whitelist, rewrites).
	// Never nil after configuration loading; defaults apply when no rules
	// file exists.
	Rules *Rules

	// CountCachePath is the location of the persisted frequency tally.
	// Defaults to DefaultCountCacheName under the site directory.
	CountCachePath string

	// URLCachePath is the location of the persisted URL cache.
	// Defaults to DefaultURLCacheName under the site directory.
	URLCachePath string

	// DBDir is the directory for the SQLite resolution log. When empty,
	// resolutions are not recorded.
	DBDir string

	// SaveToDB indicates whether resolver outcomes are recorded to the
	// resolution log. Set automatically when DBDir is configured.
	SaveToDB bool
}

// NewConfig creates a Config with default values. Callers override fields
// from CLI flags, then call Validate.
func NewConfig() *Config {
	return &Config{
		FaviconServiceURL: DefaultFaviconService,
		MinCount:          DefaultMinCount,
		Concurrency:       DefaultConcurrency,
		ProbeTimeout:      DefaultProbeTimeout,
		DownloadTimeout:   DefaultDownloadTimeout,
		Rules:             DefaultRules(),
	}
}

// XDGDataDir returns the XDG data directory for favilink, used as the
// default location of the resolution log.
// On Linux: ~/.local/share/favilink
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// ApplyDefaults fills the derived paths that depend on SiteDir.
// It must be called after SiteDir is set and before the caches are opened.
func (c *Config) ApplyDefaults() {
	if c.CountCachePath == "" && c.SiteDir != "" {
		c.CountCachePath = filepath.Join(c.SiteDir, DefaultCountCacheName)
	}
	if c.URLCachePath == "" && c.SiteDir != "" {
		c.URLCachePath = filepath.Join(c.SiteDir, DefaultURLCacheName)
	}
	if c.Rules == nil {
		c.Rules = DefaultRules()
	}
}

// StaticDir returns the static asset directory under the site root.
func (c *Config) StaticDir() string {
	return filepath.Join(c.SiteDir, DefaultStaticSubdir)
}

// Validate checks the configuration and returns a specific error describing
// the first problem found. Fixing one error often makes others irrelevant,
// so we do not collect them.
func (c *Config) Validate() error {
	if c.SiteDir == "" {
		return ErrNoSiteDir
	}

	if c.BaseURL == "" {
		return ErrNoBaseURL
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ErrInvalidBaseURL
	}

	// MinCount of zero means every favicon renders, which is valid for
	// small sites; negative makes no sense.
	if c.MinCount < 0 {
		return ErrInvalidMinCount
	}

	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}

	if c.ProbeTimeout <= 0 || c.DownloadTimeout <= 0 {
		return ErrInvalidTimeout
	}

	return nil
}
