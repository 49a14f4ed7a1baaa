package favicon

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// Rewrite aliases hostnames matching a pattern to a canonical domain.
// Rewrites are checked in order before generic root extraction, so a
// vendor subdomain can share its parent brand's favicon.
type Rewrite struct {
	// Pattern is matched against the full hostname (after www. stripping).
	Pattern string

	// Domain is the canonical domain substituted on match.
	Domain string
}

// compiledRewrite pairs a compiled pattern with its target domain.
type compiledRewrite struct {
	pattern *regexp.Regexp
	domain  string
}

// Normalizer maps hostnames to canonical favicon keys.
// It is pure and deterministic: the same hostname always yields the same
// key, which is what makes the two-sweep count/insert protocol coherent.
type Normalizer struct {
	// siteDomain is the site's own domain; links to it use the site logo.
	siteDomain string

	// rewrites are ordered special-case hostname aliases.
	rewrites []compiledRewrite

	// preserve lists hostnames kept whole instead of collapsed to their
	// registrable root. Entries starting with a dot match as suffixes.
	preserve []string
}

// NewNormalizer creates a Normalizer for the given site domain.
// Rewrite patterns are compiled up front; an invalid pattern is a
// configuration error and fails construction.
func NewNormalizer(siteDomain string, rewrites []Rewrite, preserve []string) (*Normalizer, error) {
	compiled := make([]compiledRewrite, 0, len(rewrites))
	for _, r := range rewrites {
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid rewrite pattern %q: %w", r.Pattern, err)
		}
		compiled = append(compiled, compiledRewrite{pattern: re, domain: r.Domain})
	}

	return &Normalizer{
		siteDomain: strings.TrimPrefix(strings.ToLower(siteDomain), "www."),
		rewrites:   compiled,
		preserve:   preserve,
	}, nil
}

// FaviconKey maps a hostname to its canonical favicon key path, or to the
// site-logo sentinel for the site's own domain.
func (n *Normalizer) FaviconKey(hostname string) string {
	domain, sentinel := n.RootDomain(hostname)
	if sentinel {
		return SiteLogoPath
	}
	return FaviconDirPath + sanitizeDomain(domain) + ".png"
}

// RootDomain maps a hostname to the domain its favicon is keyed by.
// The boolean result is true when the hostname is the site itself (or
// localhost) and the site-logo sentinel applies instead of a domain.
func (n *Normalizer) RootDomain(hostname string) (string, bool) {
	host := strings.ToLower(strings.TrimSuffix(hostname, "."))

	if host == "localhost" || host == n.siteDomain || host == "www."+n.siteDomain {
		return "", true
	}

	host = strings.TrimPrefix(host, "www.")

	// Special-case aliases win over everything below.
	for _, r := range n.rewrites {
		if r.pattern.MatchString(host) {
			return r.domain, false
		}
	}

	// Preserved subdomains keep their full hostname so distinct products
	// under one root get distinct favicons.
	for _, p := range n.preserve {
		if strings.HasPrefix(p, ".") {
			if strings.HasSuffix(host, p) {
				return host, false
			}
			continue
		}
		if host == p {
			return host, false
		}
	}

	// Generic case: collapse to the registrable root. The public suffix
	// list handles multi-part TLDs (co.uk, com.au) correctly; on failure
	// the raw hostname is better than nothing.
	root, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host, false
	}
	return root, false
}

// sanitizeDomain makes a domain safe for use as a file name.
func sanitizeDomain(domain string) string {
	return strings.ReplaceAll(domain, ".", "_")
}
