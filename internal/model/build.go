package model

import (
	"sync"
	"time"
)

// Build accumulates the state of one pipeline run over a document corpus.
// A fresh Build is created per invocation; nothing leaks between runs.
//
// Design decision: Counters are guarded by a mutex rather than atomics
// because steps update several fields together and the update rate is one
// per document, not per link.
type Build struct {
	// Documents is the ordered list of HTML file paths in the corpus.
	Documents []string

	// StartedAt records when the build began.
	StartedAt time.Time

	// PerformedSteps lists the names of the pipeline steps that ran.
	PerformedSteps []string

	mu sync.Mutex

	// DocumentsCounted is the number of documents processed by the
	// counting sweep.
	DocumentsCounted int

	// DocumentsInserted is the number of documents processed by the
	// insertion sweep.
	DocumentsInserted int

	// IconsInserted is the total number of favicon elements spliced in.
	IconsInserted int

	// LinksSkipped is the number of links the classifier skipped.
	LinksSkipped int

	// Failures records per-document errors that did not abort the build.
	Failures []string
}

// NewBuild creates a Build for the given document corpus.
func NewBuild(documents []string) *Build {
	return &Build{
		Documents: documents,
		StartedAt: time.Now(),
	}
}

// AddCounted records one document completed by the counting sweep.
func (b *Build) AddCounted() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.DocumentsCounted++
}

// AddInserted records one document completed by the insertion sweep,
// along with the number of icons spliced into it.
func (b *Build) AddInserted(icons int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.DocumentsInserted++
	b.IconsInserted += icons
}

// AddSkipped records links the classifier skipped.
func (b *Build) AddSkipped(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.LinksSkipped += n
}

// AddFailure records a non-fatal per-document failure.
func (b *Build) AddFailure(msg string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Failures = append(b.Failures, msg)
}

// Stats returns a consistent snapshot of the build counters.
func (b *Build) Stats() BuildStats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return BuildStats{
		DocumentsCounted:  b.DocumentsCounted,
		DocumentsInserted: b.DocumentsInserted,
		IconsInserted:     b.IconsInserted,
		LinksSkipped:      b.LinksSkipped,
		Failures:          len(b.Failures),
		Elapsed:           time.Since(b.StartedAt),
	}
}

// BuildStats is a point-in-time summary of a build.
type BuildStats struct {
	DocumentsCounted  int
	DocumentsInserted int
	IconsInserted     int
	LinksSkipped      int
	Failures          int
	Elapsed           time.Duration
}
