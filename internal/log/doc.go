// Package log provides structured logging helpers for the favicon pipeline.
//
// The pipeline visits the same hostnames over and over: a corpus with three
// hundred links to an unresolvable domain would emit three hundred identical
// warnings. DedupHandler wraps any slog.Handler and suppresses records that
// repeat an already-emitted (level, message, attributes) combination, so the
// log shows each distinct problem once.
//
// Design decision: We use a handler wrapper rather than a custom logger
// because:
//  1. It integrates seamlessly with standard slog APIs
//  2. It works with any underlying handler (text, JSON, etc.)
//  3. Components keep accepting a plain *slog.Logger
package log
