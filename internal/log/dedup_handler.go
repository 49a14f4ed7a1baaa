package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
)

// maxFingerprints caps the number of remembered records. Beyond the cap the
// handler stops deduplicating rather than growing without bound; a corpus
// producing that many distinct warnings has bigger problems than log volume.
const maxFingerprints = 8192

// DedupHandler wraps an slog.Handler and drops records identical to one
// already emitted. Identity is the level, the message, and the rendered
// attribute list, so "favicon download failed domain=example.com" is
// suppressed on repetition while the same message for another domain still
// gets through.
type DedupHandler struct {
	// handler is the underlying slog handler that receives first-seen records.
	handler slog.Handler

	// attrs holds attributes added via WithAttrs; they participate in the
	// fingerprint so scoped loggers do not collide.
	attrs []slog.Attr

	mu   *sync.Mutex
	seen map[string]struct{}
}

// NewDedupHandler creates a DedupHandler wrapping the given handler.
// If handler is nil, slog.Default().Handler() is used.
func NewDedupHandler(handler slog.Handler) *DedupHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &DedupHandler{
		handler: handler,
		mu:      &sync.Mutex{},
		seen:    make(map[string]struct{}),
	}
}

// Enabled reports whether the handler handles records at the given level.
// It delegates to the underlying handler.
func (h *DedupHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle emits the record unless an identical one was already emitted.
func (h *DedupHandler) Handle(ctx context.Context, r slog.Record) error {
	fp := h.fingerprint(r)

	h.mu.Lock()
	if _, dup := h.seen[fp]; dup {
		h.mu.Unlock()
		return nil
	}
	if len(h.seen) < maxFingerprints {
		h.seen[fp] = struct{}{}
	}
	h.mu.Unlock()

	return h.handler.Handle(ctx, r)
}

// WithAttrs returns a new handler with the given attributes added.
// The seen set is shared, so scoped loggers still deduplicate globally.
func (h *DedupHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &DedupHandler{
		handler: h.handler.WithAttrs(attrs),
		attrs:   merged,
		mu:      h.mu,
		seen:    h.seen,
	}
}

// WithGroup returns a new handler with the given group name.
func (h *DedupHandler) WithGroup(name string) slog.Handler {
	return &DedupHandler{
		handler: h.handler.WithGroup(name),
		attrs:   h.attrs,
		mu:      h.mu,
		seen:    h.seen,
	}
}

// fingerprint renders a stable identity string for the record.
func (h *DedupHandler) fingerprint(r slog.Record) string {
	var sb strings.Builder
	sb.WriteString(r.Level.String())
	sb.WriteByte('|')
	sb.WriteString(r.Message)
	for _, a := range h.attrs {
		fmt.Fprintf(&sb, "|%s=%v", a.Key, a.Value.Any())
	}
	r.Attrs(func(a slog.Attr) bool {
		fmt.Fprintf(&sb, "|%s=%v", a.Key, a.Value.Any())
		return true
	})
	return sb.String()
}

// NewDedupLogger creates a *slog.Logger writing text output to w with
// duplicate suppression.
//
// Parameters:
//   - w: the io.Writer to write log output to (typically os.Stderr)
//   - verbose: if true, sets log level to Debug; otherwise Warn
func NewDedupLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	textHandler := slog.NewTextHandler(w, opts)
	return slog.New(NewDedupHandler(textHandler))
}
