package dom

import (
	"bytes"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Attr returns the value of the named attribute, or "" if absent.
func Attr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// HasAttr reports whether the node carries the named attribute, even if
// its value is empty.
func HasAttr(n *html.Node, key string) bool {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return true
		}
	}
	return false
}

// SetAttr sets the named attribute, replacing an existing value.
func SetAttr(n *html.Node, key, val string) {
	for i, attr := range n.Attr {
		if attr.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// Classes returns the node's class list as a slice.
func Classes(n *html.Node) []string {
	return strings.Fields(Attr(n, "class"))
}

// HasClass reports whether the node's class attribute contains the given
// class name as a whole token.
func HasClass(n *html.Node, class string) bool {
	for _, c := range Classes(n) {
		if c == class {
			return true
		}
	}
	return false
}

// AddClass appends a class to the node's class attribute unless it is
// already present.
func AddClass(n *html.Node, class string) {
	if HasClass(n, class) {
		return
	}
	existing := Attr(n, "class")
	if existing == "" {
		SetAttr(n, "class", class)
		return
	}
	SetAttr(n, "class", existing+" "+class)
}

// IsElement reports whether the node is an element with the given tag name.
func IsElement(n *html.Node, tag string) bool {
	return n != nil && n.Type == html.ElementNode && n.Data == tag
}

// Walk visits every node in the tree rooted at n in document order.
// If fn returns false, the children of the current node are not visited.
func Walk(n *html.Node, fn func(*html.Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		Walk(c, fn)
	}
}

// FindByID returns the first element with the given id, or nil.
func FindByID(root *html.Node, id string) *html.Node {
	var found *html.Node
	Walk(root, func(n *html.Node) bool {
		if found != nil {
			return false
		}
		if n.Type == html.ElementNode && Attr(n, "id") == id {
			found = n
			return false
		}
		return true
	})
	return found
}

// FindByClass returns every element carrying the given class token.
func FindByClass(root *html.Node, class string) []*html.Node {
	var found []*html.Node
	Walk(root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && HasClass(n, class) {
			found = append(found, n)
		}
		return true
	})
	return found
}

// FindElements returns every element with the given tag name.
func FindElements(root *html.Node, tag string) []*html.Node {
	var found []*html.Node
	Walk(root, func(n *html.Node) bool {
		if IsElement(n, tag) {
			found = append(found, n)
		}
		return true
	})
	return found
}

// LastNonEmptyChild returns the last child of n that is either an element
// or a text node with non-whitespace content. Whitespace-only text nodes
// and comments between the real content and the end of the node are
// skipped.
func LastNonEmptyChild(n *html.Node) *html.Node {
	for c := n.LastChild; c != nil; c = c.PrevSibling {
		switch c.Type {
		case html.ElementNode:
			return c
		case html.TextNode:
			if strings.TrimSpace(c.Data) != "" {
				return c
			}
		}
	}
	return nil
}

// RemoveChildren detaches every child of n.
func RemoveChildren(n *html.Node) {
	for n.FirstChild != nil {
		n.RemoveChild(n.FirstChild)
	}
}

// TextContent returns the concatenated text of the tree rooted at n.
func TextContent(n *html.Node) string {
	var sb strings.Builder
	Walk(n, func(c *html.Node) bool {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
		return true
	})
	return sb.String()
}

// Parse parses an HTML document from r.
func Parse(r io.Reader) (*html.Node, error) {
	return html.Parse(r)
}

// Render serializes the tree rooted at n back to HTML bytes.
func Render(n *html.Node) ([]byte, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
