package favicon

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/favilink/favilink/internal/fileutil"
)

// Counter tallies how many times each favicon would be used across the
// whole corpus. The counting sweep fills it before any favicon is actually
// inserted; the insertion sweep reads the persisted tally back.
//
// Keys are extension-stripped favicon paths (see CountKey), so the same
// logical favicon counts once regardless of format.
//
// Design decision: The counter is an explicitly constructed value passed
// into the pipeline steps, not package state. A fresh Counter per build run
// is what guarantees counts never leak between runs.
type Counter struct {
	mu     sync.Mutex
	counts map[string]int

	// path is the backing tab-delimited file.
	path string

	logger *slog.Logger
}

// CounterOption configures a Counter.
type CounterOption func(*Counter)

// WithCounterLogger sets a custom logger for the counter.
func WithCounterLogger(logger *slog.Logger) CounterOption {
	return func(c *Counter) {
		c.logger = logger
	}
}

// NewCounter creates an empty Counter backed by the file at path.
func NewCounter(path string, opts ...CounterOption) *Counter {
	c := &Counter{
		counts: make(map[string]int),
		path:   path,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Tally increments the count for the favicon at the given path.
func (c *Counter) Tally(faviconPath string) {
	key := CountKey(faviconPath)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[key]++
}

// Count returns the tally for the favicon at the given path, zero if the
// favicon was never counted.
func (c *Counter) Count(faviconPath string) int {
	key := CountKey(faviconPath)
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[key]
}

// Len returns the number of distinct favicon keys tallied.
func (c *Counter) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.counts)
}

// Entry is one row of the tally.
type Entry struct {
	// Key is the extension-stripped favicon path.
	Key string

	// Count is the number of corpus-wide occurrences.
	Count int
}

// Snapshot returns the tally sorted by descending count, ties broken
// alphabetically by key. This is the persisted order, chosen so the file
// diffs meaningfully between builds.
func (c *Counter) Snapshot() []Entry {
	c.mu.Lock()
	entries := make([]Entry, 0, len(c.counts))
	for key, count := range c.counts {
		entries = append(entries, Entry{Key: key, Count: count})
	}
	c.mu.Unlock()

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Key < entries[j].Key
	})
	return entries
}

// Persist writes the full tally to the backing file, tab-delimited, via
// write-to-temp-then-rename so no reader ever observes a half-written
// tally. Called after every document in the counting sweep, so a crashed
// build still leaves a usable (if partial) tally behind.
func (c *Counter) Persist() error {
	var sb strings.Builder
	for _, e := range c.Snapshot() {
		sb.WriteString(strconv.Itoa(e.Count))
		sb.WriteByte('\t')
		sb.WriteString(e.Key)
		sb.WriteByte('\n')
	}

	if err := fileutil.WriteFileAtomic(c.path, []byte(sb.String()), 0644); err != nil {
		return fmt.Errorf("failed to persist favicon counts: %w", err)
	}
	return nil
}

// Load replaces the in-memory tally with the contents of the backing file.
// A missing file leaves the counter empty, which is not an error: the
// counting sweep simply has not run. Malformed lines are skipped with a
// debug log rather than failing the whole load.
func (c *Counter) Load() error {
	f, err := os.Open(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to open favicon counts: %w", err)
	}
	defer f.Close()

	loaded := make(map[string]int)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		countStr, key, ok := strings.Cut(line, "\t")
		if !ok || key == "" {
			c.logger.Debug("skipping malformed count line", "line", line)
			continue
		}
		count, err := strconv.Atoi(countStr)
		if err != nil {
			c.logger.Debug("skipping malformed count line", "line", line)
			continue
		}
		loaded[key] = count
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read favicon counts: %w", err)
	}

	c.mu.Lock()
	c.counts = loaded
	c.mu.Unlock()
	return nil
}
