package favicon

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/favilink/favilink/internal/model"
)

// maxDownloadSize caps a favicon download. Favicons are tiny; anything
// bigger is the service misbehaving.
const maxDownloadSize = 1 << 20 // 1MB

// Recorder receives the outcome of every resolution. The resolution log
// database implements it; a nil recorder disables recording.
type Recorder interface {
	Record(ctx context.Context, res *model.Resolution) error
}

// Resolver turns hostnames into displayable favicon paths or URLs.
//
// Resolution tries, in order: the blacklist short-circuit, the memoized
// cache, a local SVG, the CDN SVG variant, a local PNG, the CDN AVIF
// variant, and finally a download from the favicon rendering service.
// The first success wins and every terminal outcome (including permanent
// failure) is memoized, so the network is touched at most once per key
// per process.
//
// Design decision: We require an external http.Client rather than creating
// one internally because:
//  1. Probe and download behavior is testable with a stub transport
//  2. Connection pooling is shared across all resolutions
//  3. The caller owns global transport policy (proxies, TLS)
type Resolver struct {
	// client performs CDN probes and service downloads.
	client *http.Client

	// cache memoizes outcomes; shared with the gate and populator.
	cache *URLCache

	// norm maps hostnames to favicon keys.
	norm *Normalizer

	// siteDir is the site root; favicon keys are site-relative paths.
	siteDir string

	// cdnBase is the asset CDN origin; empty disables the CDN tiers.
	cdnBase string

	// serviceURL is the download service template with a %s for the domain.
	serviceURL string

	// blacklist short-circuits resolution before any I/O.
	blacklist []string

	// probeTimeout bounds each CDN existence check.
	probeTimeout time.Duration

	// downloadTimeout bounds each service download.
	downloadTimeout time.Duration

	// recorder receives resolution outcomes; may be nil.
	recorder Recorder

	logger *slog.Logger

	// inflight coalesces concurrent resolutions of the same key so a key
	// is probed at most once even when many documents hit it in parallel.
	mu       sync.Mutex
	inflight map[string]chan struct{}
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithCDNBaseURL enables the CDN probe tiers against the given origin.
func WithCDNBaseURL(base string) ResolverOption {
	return func(r *Resolver) {
		r.cdnBase = strings.TrimSuffix(base, "/")
	}
}

// WithServiceURL sets the favicon rendering service URL template.
// The template must contain a %s placeholder for the domain.
func WithServiceURL(tmpl string) ResolverOption {
	return func(r *Resolver) {
		r.serviceURL = tmpl
	}
}

// WithBlacklist sets substrings that suppress resolution entirely.
func WithBlacklist(blacklist []string) ResolverOption {
	return func(r *Resolver) {
		r.blacklist = blacklist
	}
}

// WithProbeTimeout bounds each CDN existence probe.
func WithProbeTimeout(d time.Duration) ResolverOption {
	return func(r *Resolver) {
		r.probeTimeout = d
	}
}

// WithDownloadTimeout bounds each favicon service download.
func WithDownloadTimeout(d time.Duration) ResolverOption {
	return func(r *Resolver) {
		r.downloadTimeout = d
	}
}

// WithRecorder sets the resolution outcome recorder.
func WithRecorder(rec Recorder) ResolverOption {
	return func(r *Resolver) {
		r.recorder = rec
	}
}

// WithResolverLogger sets a custom logger for the resolver.
func WithResolverLogger(logger *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// NewResolver creates a Resolver writing downloaded favicons under siteDir.
func NewResolver(client *http.Client, cache *URLCache, norm *Normalizer, siteDir string, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		client:          client,
		cache:           cache,
		norm:            norm,
		siteDir:         siteDir,
		serviceURL:      "https://www.google.com/s2/favicons?domain=%s&sz=32",
		probeTimeout:    10 * time.Second,
		downloadTimeout: 30 * time.Second,
		logger:          slog.Default(),
		inflight:        make(map[string]chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the best available favicon representation for hostname,
// or "" when none could be found. Network and filesystem failures are
// absorbed into the "" result; the only error Resolve returns is context
// cancellation.
func (r *Resolver) Resolve(ctx context.Context, hostname string) (string, error) {
	start := time.Now()

	domain, sentinel := r.norm.RootDomain(hostname)
	if sentinel {
		r.record(ctx, hostname, SiteLogoPath, model.TierSentinel, SiteLogoPath, start)
		return SiteLogoPath, nil
	}
	key := FaviconDirPath + sanitizeDomain(domain) + ".png"

	// Blacklisted domains never reach the network.
	if r.blacklisted(key) || r.blacklisted(domain) {
		r.record(ctx, hostname, key, model.TierBlacklist, "", start)
		return "", nil
	}

	if value, ok := r.cache.Get(key); ok {
		r.record(ctx, hostname, key, model.TierCache, cacheValue(value), start)
		return cacheValue(value), nil
	}

	// Coalesce concurrent resolutions of the same key: followers wait for
	// the leader and then answer from the cache.
	release, leader := r.acquire(key)
	if !leader {
		select {
		case <-release:
		case <-ctx.Done():
			return "", ctx.Err()
		}
		value, _ := r.cache.Get(key)
		return cacheValue(value), nil
	}
	defer r.releaseKey(key)

	value, tier := r.resolveTiers(ctx, key, domain)
	r.record(ctx, hostname, key, tier, value, start)

	if err := ctx.Err(); err != nil {
		return "", err
	}
	return value, nil
}

// resolveTiers walks the fallback chain for a key not yet in the cache.
// Returns the resolved value ("" on failure) and the tier that decided.
func (r *Resolver) resolveTiers(ctx context.Context, key, domain string) (string, string) {
	svgKey := strings.TrimSuffix(key, ".png") + ".svg"
	avifKey := strings.TrimSuffix(key, ".png") + ".avif"

	// Local SVG beats everything: hand-curated icons live on disk.
	if fileExists(r.localPath(svgKey)) {
		r.cache.Set(key, svgKey)
		return svgKey, model.TierLocalSVG
	}

	if r.cdnBase != "" && r.probe(ctx, r.cdnBase+svgKey) {
		url := r.cdnBase + svgKey
		r.cache.Set(key, url)
		return url, model.TierCDNSVG
	}

	// A local raster hit is used for this build but deliberately not
	// persisted: local files come and go between builds and re-checking
	// them is free.
	if fileExists(r.localPath(key)) {
		r.cache.SetSession(key, key)
		return key, model.TierLocalPNG
	}

	if r.cdnBase != "" && r.probe(ctx, r.cdnBase+avifKey) {
		url := r.cdnBase + avifKey
		r.cache.Set(key, url)
		return url, model.TierCDNAVIF
	}

	if err := r.download(ctx, fmt.Sprintf(r.serviceURL, domain), r.localPath(key)); err != nil {
		r.logger.Debug("favicon download failed", "domain", domain, "error", err)
	} else {
		r.cache.Set(key, key)
		return key, model.TierDownload
	}

	// A cancelled context makes every tier above fail without telling us
	// anything about the domain. The failure sentinel is permanent, so it
	// must only record genuine exhaustion, never an interrupted build.
	if ctx.Err() != nil {
		return "", model.TierFailed
	}

	r.cache.SetFailed(key)
	return "", model.TierFailed
}

// CheckCDNSVG probes the CDN for an SVG variant of the given .png key and
// updates the cache on success. The container populator uses it to upgrade
// PNG-only entries after the build.
func (r *Resolver) CheckCDNSVG(ctx context.Context, pngKey string) (string, bool) {
	if r.cdnBase == "" {
		return "", false
	}
	svgKey := strings.TrimSuffix(CacheKey(pngKey), ".png") + ".svg"
	url := r.cdnBase + svgKey
	if !r.probe(ctx, url) {
		return "", false
	}
	r.cache.Set(pngKey, url)
	return url, true
}

// probe checks whether a URL exists on the CDN. Any transport error or
// non-200 status is "not found", never a fault.
func (r *Resolver) probe(ctx context.Context, url string) bool {
	ctx, cancel := context.WithTimeout(ctx, r.probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

// download fetches a favicon from the rendering service and writes it to
// dest. An empty response (by header or by written size) is a validation
// failure: the partial file is removed and ErrEmptyDownload returned.
func (r *Resolver) download(ctx context.Context, url, dest string) error {
	ctx, cancel := context.WithTimeout(ctx, r.downloadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("favicon service returned %d: %w", resp.StatusCode, ErrNotFound)
	}
	if resp.ContentLength == 0 {
		return ErrEmptyDownload
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0750); err != nil {
		return fmt.Errorf("failed to create favicon directory: %w", err)
	}

	f, err := os.Create(dest) //nolint:gosec // Destination is derived from the sanitized domain
	if err != nil {
		return fmt.Errorf("failed to create favicon file: %w", err)
	}

	written, copyErr := io.Copy(f, io.LimitReader(resp.Body, maxDownloadSize))
	closeErr := f.Close()

	if copyErr != nil || closeErr != nil || written == 0 {
		// Remove whatever partial file we left behind.
		_ = os.Remove(dest) //nolint:errcheck // Best effort cleanup
		if copyErr != nil {
			return fmt.Errorf("failed to write favicon: %w", copyErr)
		}
		if closeErr != nil {
			return fmt.Errorf("failed to close favicon: %w", closeErr)
		}
		return ErrEmptyDownload
	}

	return nil
}

// acquire registers interest in a key. The second result is true for the
// leader, who must call releaseKey when done; followers get a channel that
// closes when the leader finishes.
func (r *Resolver) acquire(key string) (<-chan struct{}, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ch, ok := r.inflight[key]; ok {
		return ch, false
	}
	ch := make(chan struct{})
	r.inflight[key] = ch
	return ch, true
}

// releaseKey signals followers and forgets the in-flight entry.
func (r *Resolver) releaseKey(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ch, ok := r.inflight[key]; ok {
		close(ch)
		delete(r.inflight, key)
	}
}

// record reports a resolution outcome to the recorder, if any.
func (r *Resolver) record(ctx context.Context, hostname, key, tier, value string, start time.Time) {
	if r.recorder == nil {
		return
	}
	res := &model.Resolution{
		Hostname:  hostname,
		Key:       key,
		Tier:      tier,
		Value:     value,
		Duration:  time.Since(start),
		Timestamp: time.Now(),
	}
	if err := r.recorder.Record(ctx, res); err != nil {
		r.logger.Debug("failed to record resolution", "hostname", hostname, "error", err)
	}
}

// blacklisted reports whether s contains any blacklist substring.
func (r *Resolver) blacklisted(s string) bool {
	for _, b := range r.blacklist {
		if b != "" && strings.Contains(s, b) {
			return true
		}
	}
	return false
}

// localPath maps a site-relative favicon path to a filesystem path.
func (r *Resolver) localPath(faviconPath string) string {
	return filepath.Join(r.siteDir, filepath.FromSlash(strings.TrimPrefix(faviconPath, "/")))
}

// cacheValue maps the stored failure sentinel to the empty "no favicon"
// result callers expect.
func cacheValue(v string) string {
	if v == FailedValue {
		return ""
	}
	return v
}

// fileExists reports whether path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
