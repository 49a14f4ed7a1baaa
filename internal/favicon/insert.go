package favicon

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/favilink/favilink/internal/dom"
)

// spanClass wraps the icon together with the last few characters of the
// link text so a line break never strands the icon alone on its own line.
const spanClass = "favicon-span"

// closeTextClass is the modifier class added to an icon that follows a
// glyph protruding into the top-right corner, letting CSS tuck the icon
// closer to the text.
const closeTextClass = "close-text"

// maxTailChars is how many trailing characters of the link text travel
// into the no-break span with the icon.
const maxTailChars = 4

// zoomableTags are inline decorators the splice recurses into: when a link
// ends with <code>…</code>, the icon belongs inside the code styling, not
// dangling after it.
var zoomableTags = map[string]bool{
	"em": true, "strong": true, "code": true, "i": true, "b": true,
	"u": true, "del": true, "ins": true, "abbr": true, "sub": true,
	"sup": true, "small": true, "mark": true, "s": true,
}

// protrudingRunes are glyphs whose shape leans into the top-right corner,
// where the icon sits. An icon after one of these gets closeTextClass.
var protrudingRunes = map[rune]bool{
	'!': true, '?': true, ')': true, ']': true, '}': true, '»': true,
	'"': true, '\'': true, '’': true, '”': true, '`': true,
}

// NewIconNode builds a favicon <img> element for the given source.
func NewIconNode(src string) *html.Node {
	return &html.Node{
		Type: html.ElementNode,
		Data: "img",
		Attr: []html.Attribute{
			{Key: "class", Val: iconClass},
			{Key: "src", Val: src},
			{Key: "alt", Val: ""},
			{Key: "loading", Val: "lazy"},
		},
	}
}

// InsertIcon splices a favicon image for src into the link element. Pure
// tree mutation, no I/O.
//
// The icon is not simply appended: the splice recurses into a trailing
// zoomable decorator, and when the link ends in text it wraps the final
// few characters together with the icon in a no-break span so the icon
// cannot be orphaned at a line break.
func InsertIcon(link *html.Node, src string) {
	splice(link, NewIconNode(src))
}

func splice(n *html.Node, icon *html.Node) {
	last := dom.LastNonEmptyChild(n)

	switch {
	case last == nil:
		n.AppendChild(icon)

	case last.Type == html.ElementNode && zoomableTags[last.Data]:
		splice(last, icon)

	case last.Type == html.TextNode:
		spliceAfterText(n, last, icon)

	default:
		// Image or other non-text last child: the icon goes straight after.
		n.AppendChild(icon)
	}
}

// spliceAfterText moves the final characters of the text node plus the
// icon into a wrapping span. The original text node is trimmed, or removed
// entirely when the tail consumed all of it. Trailing whitespace is kept
// out of the span but reattached after it so spacing around the link
// survives.
func spliceAfterText(parent, text *html.Node, icon *html.Node) {
	trimmed := strings.TrimRight(text.Data, " \t\n")
	trailing := text.Data[len(trimmed):]
	runes := []rune(trimmed)
	tailLen := maxTailChars
	if len(runes) < tailLen {
		tailLen = len(runes)
	}
	head := string(runes[:len(runes)-tailLen])
	tail := string(runes[len(runes)-tailLen:])

	if tailLen > 0 && protrudingRunes[runes[len(runes)-1]] {
		dom.AddClass(icon, closeTextClass)
	}

	span := &html.Node{
		Type: html.ElementNode,
		Data: "span",
		Attr: []html.Attribute{{Key: "class", Val: spanClass}},
	}
	if tail != "" {
		span.AppendChild(&html.Node{Type: html.TextNode, Data: tail})
	}
	span.AppendChild(icon)

	next := text.NextSibling
	if head == "" {
		parent.RemoveChild(text)
	} else {
		text.Data = head
	}
	if next != nil {
		parent.InsertBefore(span, next)
	} else {
		parent.AppendChild(span)
	}
	if trailing != "" {
		ws := &html.Node{Type: html.TextNode, Data: trailing}
		if next != nil {
			parent.InsertBefore(ws, next)
		} else {
			parent.AppendChild(ws)
		}
	}
}
