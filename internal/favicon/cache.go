package favicon

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/favilink/favilink/internal/fileutil"
)

// URLCache memoizes favicon resolution outcomes across builds.
// Keys are .png-normalized favicon paths (see CacheKey); values are the
// resolved URL/path or FailedValue for a permanent failure. Caching
// failures is as important as caching successes: it is what holds the
// at-most-one-network-probe-per-key invariant across builds.
//
// Entries recorded with SetSession are visible to Get for the current
// process but are not flushed to disk. Local-file hits use this: a local
// file is cheap to re-check and its presence is not stable information
// worth persisting across builds.
type URLCache struct {
	mu sync.Mutex

	// entries are the persisted resolutions.
	entries map[string]string

	// session are resolutions valid for this build only.
	session map[string]string

	// path is the backing comma-delimited file.
	path string

	logger *slog.Logger
}

// URLCacheOption configures a URLCache.
type URLCacheOption func(*URLCache)

// WithCacheLogger sets a custom logger for the cache.
func WithCacheLogger(logger *slog.Logger) URLCacheOption {
	return func(uc *URLCache) {
		uc.logger = logger
	}
}

// NewURLCache creates an empty URLCache backed by the file at path.
// Call Load to populate it from a previous build.
func NewURLCache(path string, opts ...URLCacheOption) *URLCache {
	uc := &URLCache{
		entries: make(map[string]string),
		session: make(map[string]string),
		path:    path,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Get returns the cached resolution for the favicon at the given path.
// Persisted entries win over session entries; ok is false on a miss.
func (uc *URLCache) Get(faviconPath string) (value string, ok bool) {
	key := CacheKey(faviconPath)
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if v, ok := uc.entries[key]; ok {
		return v, true
	}
	if v, ok := uc.session[key]; ok {
		return v, true
	}
	return "", false
}

// Set records a resolution to be persisted at the next Flush.
// A success is never overwritten by a failure: two concurrent resolutions
// of the same key may both reach the network, and the losing failure must
// not clobber the winning success.
func (uc *URLCache) Set(faviconPath, value string) {
	key := CacheKey(faviconPath)
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if existing, ok := uc.entries[key]; ok && existing != FailedValue && value == FailedValue {
		return
	}
	uc.entries[key] = value
}

// SetFailed records a permanent resolution failure for the favicon.
func (uc *URLCache) SetFailed(faviconPath string) {
	uc.Set(faviconPath, FailedValue)
}

// SetSession records a resolution valid for this build only. It is not
// written to the backing file by Flush.
func (uc *URLCache) SetSession(faviconPath, value string) {
	key := CacheKey(faviconPath)
	uc.mu.Lock()
	defer uc.mu.Unlock()
	uc.session[key] = value
}

// Len returns the number of persisted entries.
func (uc *URLCache) Len() int {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return len(uc.entries)
}

// Entries returns a copy of the persisted entries.
func (uc *URLCache) Entries() map[string]string {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	out := make(map[string]string, len(uc.entries))
	for k, v := range uc.entries {
		out[k] = v
	}
	return out
}

// Load populates the cache from the backing file. A missing file is a
// fresh start, not an error. Malformed lines are skipped.
func (uc *URLCache) Load() error {
	f, err := os.Open(uc.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to open favicon URL cache: %w", err)
	}
	defer f.Close()

	loaded := make(map[string]string)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		key, value, ok := strings.Cut(line, ",")
		if !ok || key == "" || value == "" {
			uc.logger.Debug("skipping malformed cache line", "line", line)
			continue
		}
		loaded[key] = value
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read favicon URL cache: %w", err)
	}

	uc.mu.Lock()
	uc.entries = loaded
	uc.mu.Unlock()
	return nil
}

// Flush rewrites the backing file with every persisted entry, sorted by
// key for stable diffs, using write-to-temp-then-rename. Session entries
// are deliberately excluded.
func (uc *URLCache) Flush() error {
	uc.mu.Lock()
	keys := make([]string, 0, len(uc.entries))
	for k := range uc.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		sb.WriteString(k)
		sb.WriteByte(',')
		sb.WriteString(uc.entries[k])
		sb.WriteByte('\n')
	}
	uc.mu.Unlock()

	if err := fileutil.WriteFileAtomic(uc.path, []byte(sb.String()), 0644); err != nil {
		return fmt.Errorf("failed to flush favicon URL cache: %w", err)
	}
	return nil
}
