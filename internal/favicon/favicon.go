package favicon

import "strings"

// FaviconDirPath is the site-relative directory that holds per-domain
// favicon files. Keys under this prefix have the form <domain>.png with
// dots replaced by underscores.
const FaviconDirPath = "/static/images/external-favicons/"

// Sentinel favicon paths for special link kinds. Sentinels bypass
// resolution entirely and are implicitly whitelisted by the gate.
const (
	// MailPath decorates mailto: links.
	MailPath = "/static/images/favicons/mail.svg"

	// AnchorPath decorates links to another section of the same page.
	AnchorPath = "/static/images/favicons/anchor.svg"

	// RSSPath decorates links to RSS feeds.
	RSSPath = "/static/images/favicons/rss.svg"

	// SiteLogoPath decorates links to the site's own domain.
	SiteLogoPath = "/static/images/favicons/logo.svg"
)

// FailedValue is the sentinel stored in the URL cache when every resolution
// tier was exhausted. Caching the failure is what keeps a dead domain from
// being re-probed on every build.
const FailedValue = "DEFAULT"

// formatExtensions are the interchangeable favicon file formats. The same
// logical favicon may exist in several of them, so counting and cache
// lookups strip the extension first.
var formatExtensions = []string{".png", ".svg", ".avif"}

// IsSentinel reports whether path is one of the special sentinel paths.
func IsSentinel(path string) bool {
	switch path {
	case MailPath, AnchorPath, RSSPath, SiteLogoPath:
		return true
	}
	return false
}

// CountKey normalizes a favicon path for counting by stripping the format
// extension, so /a/b/example_com.png and /a/b/example_com.svg tally to the
// same key.
func CountKey(path string) string {
	for _, ext := range formatExtensions {
		if strings.HasSuffix(path, ext) {
			return strings.TrimSuffix(path, ext)
		}
	}
	return path
}

// CacheKey normalizes a favicon path to its canonical .png form for URL
// cache lookups.
func CacheKey(path string) string {
	return CountKey(path) + ".png"
}
