package favicon

import (
	"net/url"
	"path"
	"strings"

	"golang.org/x/net/html"

	"github.com/favilink/favilink/internal/dom"
)

// Kind categorizes a hyperlink for favicon purposes.
type Kind int

const (
	// KindSkip marks links that get no favicon at all.
	KindSkip Kind = iota

	// KindMail marks mailto: links.
	KindMail

	// KindAnchor marks same-page section links.
	KindAnchor

	// KindRSS marks links to RSS feeds.
	KindRSS

	// KindExternal marks links to an external domain (or to the site's own
	// domain via an absolute URL).
	KindExternal
)

// String returns the kind name for logging and reports.
func (k Kind) String() string {
	switch k {
	case KindMail:
		return "mail"
	case KindAnchor:
		return "anchor"
	case KindRSS:
		return "rss"
	case KindExternal:
		return "external"
	default:
		return "skip"
	}
}

// Classification is the classifier's verdict on one anchor element.
type Classification struct {
	// Kind is the favicon category.
	Kind Kind

	// Href is the link target, normalized to an absolute URL for external
	// links.
	Href string

	// Host is the hostname of an external link; empty for other kinds.
	Host string
}

// headingTags are the elements whose child anchor links are never
// decorated; a favicon inside a heading fights the heading's own styling.
var headingTags = map[string]bool{
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

// assetExtensions are file extensions of binary assets that links may point
// at directly. Such links show the asset itself, so a site favicon next to
// them is misleading. Matched case-insensitively against the URL path,
// ignoring query string and fragment.
var assetExtensions = map[string]bool{
	// images
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true,
	".avif": true, ".svg": true, ".ico": true, ".bmp": true, ".tiff": true,
	// video
	".mp4": true, ".webm": true, ".mov": true, ".avi": true, ".mkv": true,
	// audio
	".mp3": true, ".ogg": true, ".wav": true, ".flac": true, ".m4a": true, ".opus": true,
}

// footnoteRefPrefix identifies generated footnote back-references, which
// are same-page links but deliberately undecorated.
const footnoteRefPrefix = "#user-content-fn"

// samePageClass marks links that earlier processing already identified as
// pointing at the current page.
const samePageClass = "same-page-link"

// iconClass is the class carried by favicon image elements. Used both when
// creating icons and when detecting that a link already has one.
const iconClass = "favicon"

// Classifier maps anchor elements to favicon categories.
// It is a pure function of the anchor and its immediate parent context;
// the base URL only serves to absolutize relative external links.
type Classifier struct {
	base *url.URL
}

// NewClassifier creates a Classifier resolving relative links against the
// site's canonical origin.
func NewClassifier(baseURL string) (*Classifier, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	return &Classifier{base: u}, nil
}

// Classify categorizes one anchor element. Rules are checked in priority
// order; the first match wins.
func (c *Classifier) Classify(a *html.Node) Classification {
	skip := Classification{Kind: KindSkip}

	// A link that already carries a favicon is never decorated twice.
	if hasFaviconChild(a) {
		return skip
	}

	if !dom.HasAttr(a, "href") {
		return skip
	}
	href := dom.Attr(a, "href")

	if strings.Contains(href, "mailto:") {
		return Classification{Kind: KindMail, Href: href}
	}

	if strings.HasPrefix(href, "#") {
		if strings.HasPrefix(href, footnoteRefPrefix) || inHeading(a) {
			return skip
		}
		return Classification{Kind: KindAnchor, Href: href}
	}

	if strings.HasSuffix(href, "/rss.xml") {
		return Classification{Kind: KindRSS, Href: href}
	}

	if dom.HasClass(a, samePageClass) || pointsAtAsset(href) {
		return skip
	}

	resolved := c.absolutize(href)
	if resolved == nil || resolved.Hostname() == "" {
		return skip
	}

	return Classification{
		Kind: KindExternal,
		Href: resolved.String(),
		Host: resolved.Hostname(),
	}
}

// absolutize resolves a possibly-relative href against the site origin.
// Returns nil for unparseable hrefs; the caller treats that as a skip.
func (c *Classifier) absolutize(href string) *url.URL {
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return nil
	}
	return c.base.ResolveReference(u)
}

// hasFaviconChild reports whether the node already contains a favicon
// image anywhere in its subtree.
func hasFaviconChild(n *html.Node) bool {
	found := false
	dom.Walk(n, func(c *html.Node) bool {
		if c != n && dom.IsElement(c, "img") && dom.HasClass(c, iconClass) {
			found = true
			return false
		}
		return !found
	})
	return found
}

// inHeading reports whether the anchor's parent is a heading element.
func inHeading(a *html.Node) bool {
	p := a.Parent
	return p != nil && p.Type == html.ElementNode && headingTags[p.Data]
}

// pointsAtAsset reports whether the href targets a binary asset by
// extension, ignoring query string and fragment.
func pointsAtAsset(href string) bool {
	u, err := url.Parse(href)
	if err != nil {
		// Strip manually when the URL does not parse.
		if i := strings.IndexAny(href, "?#"); i >= 0 {
			href = href[:i]
		}
		return assetExtensions[strings.ToLower(path.Ext(href))]
	}
	return assetExtensions[strings.ToLower(path.Ext(u.Path))]
}
