package config

// Rules holds the site-specific favicon policy loaded from the rules file.
// All lists are immutable for the duration of a build.
type Rules struct {
	// Domain is the site's own domain (without scheme). Links to it, with
	// or without a www. prefix, use the site-logo sentinel. When set it
	// overrides the host of Config.BaseURL.
	Domain string `yaml:"domain,omitempty"`

	// MinCount overrides the global minimum occurrence count when positive.
	MinCount int `yaml:"minCount,omitempty"`

	// Blacklist contains substrings; a favicon path or resolved URL
	// containing any of them is never rendered. Matching is deliberately
	// substring-based, not segment-based, and takes precedence over
	// everything else.
	Blacklist []string `yaml:"blacklist,omitempty"`

	// Whitelist contains substrings/suffixes; a resolved favicon matching
	// any of them is always rendered regardless of its count.
	Whitelist []string `yaml:"whitelist,omitempty"`

	// Rewrites are ordered hostname rewrites checked before generic root
	// extraction. The first matching pattern wins.
	Rewrites []Rewrite `yaml:"rewrites,omitempty"`

	// PreserveSubdomains lists hostnames (exact, or suffix when starting
	// with a dot) that keep their full subdomain instead of collapsing to
	// the registrable root. Distinct products under one root get distinct
	// favicons this way.
	PreserveSubdomains []string `yaml:"preserveSubdomains,omitempty"`
}

// Rewrite aliases hostnames matching a regular expression to a canonical
// domain, e.g. a vendor subdomain to its parent brand.
type Rewrite struct {
	// Pattern is a regular expression matched against the full hostname.
	Pattern string `yaml:"pattern"`

	// Domain is the canonical domain to use when the pattern matches.
	Domain string `yaml:"domain"`
}

// DefaultRules returns the built-in rules applied when no rules file
// exists. The rewrites and preserved subdomains cover the aliases that
// show up on practically every site; a rules file extends them.
func DefaultRules() *Rules {
	return &Rules{
		Rewrites: []Rewrite{
			{Pattern: `(^|\.)youtu\.be$`, Domain: "youtube.com"},
			{Pattern: `(^|\.)m\.wikipedia\.org$`, Domain: "wikipedia.org"},
			{Pattern: `^gist\.github\.com$`, Domain: "github.com"},
			{Pattern: `^np\.reddit\.com$`, Domain: "reddit.com"},
		},
		PreserveSubdomains: []string{
			"docs.google.com",
			"drive.google.com",
			"scholar.google.com",
			"colab.research.google.com",
			".stackexchange.com",
		},
	}
}

// Merge overlays non-zero fields from override onto r and returns the
// result. List fields append rather than replace, so a rules file extends
// the defaults instead of silently discarding them.
func (r *Rules) Merge(override *Rules) *Rules {
	if override == nil {
		return r
	}

	result := *r
	if override.Domain != "" {
		result.Domain = override.Domain
	}
	if override.MinCount > 0 {
		result.MinCount = override.MinCount
	}
	result.Blacklist = append(result.Blacklist, override.Blacklist...)
	result.Whitelist = append(result.Whitelist, override.Whitelist...)
	result.Rewrites = append(result.Rewrites, override.Rewrites...)
	result.PreserveSubdomains = append(result.PreserveSubdomains, override.PreserveSubdomains...)

	return &result
}
