package model

import "time"

// Resolution tiers, in the order the resolver tries them. The tier names
// are stored verbatim in the resolution log, so they are part of the
// on-disk contract and should not be renamed casually.
const (
	TierSentinel  = "sentinel"  // own-domain / special link kinds, no lookup
	TierBlacklist = "blacklist" // short-circuited before any I/O
	TierCache     = "cache"     // prior outcome reused
	TierLocalSVG  = "local_svg"
	TierCDNSVG    = "cdn_svg"
	TierLocalPNG  = "local_png"
	TierCDNAVIF   = "cdn_avif"
	TierDownload  = "download"
	TierFailed    = "failed" // every tier exhausted
)

// Resolution records the outcome of resolving one hostname to a favicon.
type Resolution struct {
	// Hostname is the hostname the resolver was asked about.
	Hostname string

	// Key is the canonical favicon key for the hostname.
	Key string

	// Tier names which resolution tier produced the outcome.
	Tier string

	// Value is the resolved favicon path or URL; empty on failure.
	Value string

	// Duration is how long the resolution took, including network probes.
	Duration time.Duration

	// Timestamp is when the resolution completed.
	Timestamp time.Time
}
