package favicon

import "strings"

// CountSource supplies corpus-wide usage counts for favicon keys.
// *Counter implements it.
type CountSource interface {
	Count(faviconPath string) int
}

// Gate decides whether a resolved favicon appears in output at all.
// Icons below the frequency threshold are suppressed so one-off links do
// not bloat the page with images nobody recognizes; the blacklist and
// whitelist override the threshold in either direction.
type Gate struct {
	// blacklist excludes favicons unconditionally, by substring.
	blacklist []string

	// whitelist includes favicons regardless of count, by substring or
	// suffix over the resolved value.
	whitelist []string

	// minCount is the inclusion threshold for everything else.
	minCount int

	// counts is the corpus tally filled by the counting sweep.
	counts CountSource
}

// NewGate creates a Gate reading usage counts from counts.
func NewGate(counts CountSource, minCount int, blacklist, whitelist []string) *Gate {
	return &Gate{
		blacklist: blacklist,
		whitelist: whitelist,
		minCount:  minCount,
		counts:    counts,
	}
}

// Include reports whether the favicon identified by key, resolved to the
// given path or URL, should be inserted. The blacklist has absolute
// precedence; sentinels and whitelisted values bypass the count threshold.
func (g *Gate) Include(key, resolved string) bool {
	for _, b := range g.blacklist {
		if b == "" {
			continue
		}
		if strings.Contains(key, b) || strings.Contains(resolved, b) {
			return false
		}
	}

	if IsSentinel(resolved) {
		return true
	}
	for _, w := range g.whitelist {
		if w == "" {
			continue
		}
		if strings.Contains(resolved, w) || strings.HasSuffix(resolved, w) {
			return true
		}
	}

	return g.counts.Count(key) >= g.minCount
}
