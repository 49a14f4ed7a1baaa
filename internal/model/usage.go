package model

import "time"

// UsageEntry is one favicon in a usage report.
type UsageEntry struct {
	// Key is the extension-stripped favicon key.
	Key string

	// Value is the resolved path or URL, empty when unresolved.
	Value string

	// Count is the corpus-wide usage count from the persisted tally.
	Count int

	// Included reports whether the inclusion gate lets this favicon render.
	Included bool
}

// UsageReport summarizes the persisted favicon state of a site for the
// stats command. Entries come from the tally and URL cache; TierCounts is
// only present when a resolution log database is available.
type UsageReport struct {
	// SiteDir is the site root the report describes.
	SiteDir string

	// GeneratedAt is when the report was assembled.
	GeneratedAt time.Time

	// Entries lists every tallied favicon, sorted by descending count.
	Entries []UsageEntry

	// TierCounts maps resolution tier names to hostname counts.
	TierCounts map[string]int
}

// TotalLinks returns the sum of all usage counts.
func (r *UsageReport) TotalLinks() int {
	total := 0
	for _, e := range r.Entries {
		total += e.Count
	}
	return total
}

// IncludedCount returns how many favicons pass the inclusion gate.
func (r *UsageReport) IncludedCount() int {
	included := 0
	for _, e := range r.Entries {
		if e.Included {
			included++
		}
	}
	return included
}
