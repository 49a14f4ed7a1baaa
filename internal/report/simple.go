package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/favilink/favilink/internal/model"
)

// SimpleWriter outputs human-readable text reports for terminal display.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
//  1. It works in all terminals without compatibility issues
//  2. It's easier to pipe to files or other tools
//  3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// verbose includes gated-out favicons in the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose includes favicons that did not pass the gate.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the usage report in human-readable format.
func (w *SimpleWriter) Write(report *model.UsageReport) (int, error) {
	var sb strings.Builder

	sb.WriteString("Favicon usage for ")
	sb.WriteString(report.SiteDir)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 60))
	sb.WriteString("\n\n")

	fmt.Fprintf(&sb, "Distinct favicons:      %d\n", len(report.Entries))
	fmt.Fprintf(&sb, "Shown after gating:     %d\n", report.IncludedCount())
	fmt.Fprintf(&sb, "Total decorated links:  %d\n\n", report.TotalLinks())

	for _, e := range report.Entries {
		if !e.Included && !w.verbose {
			continue
		}
		marker := " "
		if !e.Included {
			marker = "-"
		}
		fmt.Fprintf(&sb, "%s %5d  %s\n", marker, e.Count, e.Key)
	}

	if len(report.TierCounts) > 0 {
		sb.WriteString("\nResolution tiers:\n")
		tiers := make([]string, 0, len(report.TierCounts))
		for tier := range report.TierCounts {
			tiers = append(tiers, tier)
		}
		sort.Strings(tiers)
		for _, tier := range tiers {
			fmt.Fprintf(&sb, "  %-12s %d\n", tier, report.TierCounts[tier])
		}
	}

	return w.output.Write([]byte(sb.String()))
}
