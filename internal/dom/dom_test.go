package dom

import (
	"strings"
	"testing"

	"golang.org/x/net/html"
)

func parse(t *testing.T, fragment string) *html.Node {
	t.Helper()

	root, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		t.Fatalf("failed to parse: %v", err)
	}
	return root
}

func TestAttr(t *testing.T) {
	t.Parallel()

	root := parse(t, `<div id="main" class="a b"></div>`)
	div := FindByID(root, "main")
	if div == nil {
		t.Fatal("div not found")
	}

	t.Run("returns attribute value", func(t *testing.T) {
		t.Parallel()

		if got := Attr(div, "class"); got != "a b" {
			t.Errorf("class = %q", got)
		}
	})

	t.Run("missing attribute is empty", func(t *testing.T) {
		t.Parallel()

		if got := Attr(div, "href"); got != "" {
			t.Errorf("href = %q, want empty", got)
		}
	})
}

func TestSetAttr(t *testing.T) {
	t.Parallel()

	t.Run("replaces an existing value", func(t *testing.T) {
		t.Parallel()

		root := parse(t, `<p id="x"></p>`)
		p := FindByID(root, "x")
		SetAttr(p, "id", "y")
		if Attr(p, "id") != "y" {
			t.Errorf("id = %q, want y", Attr(p, "id"))
		}
		if len(p.Attr) != 1 {
			t.Errorf("attr duplicated: %v", p.Attr)
		}
	})
}

func TestClasses(t *testing.T) {
	t.Parallel()

	root := parse(t, `<span class="favicon close-text"></span>`)
	span := FindElements(root, "span")[0]

	t.Run("HasClass matches whole tokens only", func(t *testing.T) {
		t.Parallel()

		if !HasClass(span, "favicon") {
			t.Error("favicon class not found")
		}
		if HasClass(span, "close") {
			t.Error("partial token matched")
		}
	})

	t.Run("AddClass is idempotent", func(t *testing.T) {
		t.Parallel()

		root := parse(t, `<span class="favicon"></span>`)
		s := FindElements(root, "span")[0]
		AddClass(s, "close-text")
		AddClass(s, "close-text")
		if got := Attr(s, "class"); got != "favicon close-text" {
			t.Errorf("class = %q", got)
		}
	})
}

func TestLastNonEmptyChild(t *testing.T) {
	t.Parallel()

	t.Run("skips trailing whitespace-only text", func(t *testing.T) {
		t.Parallel()

		root := parse(t, "<p><em>x</em>\n  </p>")
		p := FindElements(root, "p")[0]
		last := LastNonEmptyChild(p)
		if last == nil || !IsElement(last, "em") {
			t.Errorf("last = %v, want em element", last)
		}
	})

	t.Run("returns trailing text node with content", func(t *testing.T) {
		t.Parallel()

		root := parse(t, "<p><em>x</em> tail</p>")
		p := FindElements(root, "p")[0]
		last := LastNonEmptyChild(p)
		if last == nil || last.Type != html.TextNode {
			t.Fatalf("last = %v, want text node", last)
		}
		if last.Data != " tail" {
			t.Errorf("data = %q", last.Data)
		}
	})

	t.Run("empty element has no last child", func(t *testing.T) {
		t.Parallel()

		root := parse(t, "<p>   </p>")
		p := FindElements(root, "p")[0]
		if got := LastNonEmptyChild(p); got != nil {
			t.Errorf("last = %v, want nil", got)
		}
	})
}

func TestFindByClass(t *testing.T) {
	t.Parallel()

	root := parse(t, `<div class="box"></div><div class="box big"></div><div class="boxer"></div>`)
	if got := len(FindByClass(root, "box")); got != 2 {
		t.Errorf("found %d elements, want 2", got)
	}
}

func TestTextContent(t *testing.T) {
	t.Parallel()

	root := parse(t, `<p>a<em>b</em>c</p>`)
	p := FindElements(root, "p")[0]
	if got := TextContent(p); got != "abc" {
		t.Errorf("text = %q, want abc", got)
	}
}

func TestRemoveChildren(t *testing.T) {
	t.Parallel()

	root := parse(t, `<ul><li>1</li><li>2</li></ul>`)
	ul := FindElements(root, "ul")[0]
	RemoveChildren(ul)
	if ul.FirstChild != nil {
		t.Error("children remain after RemoveChildren")
	}
}

func TestRender(t *testing.T) {
	t.Parallel()

	root := parse(t, `<p>hello</p>`)
	out, err := Render(FindElements(root, "p")[0])
	if err != nil {
		t.Fatalf("failed to render: %v", err)
	}
	if string(out) != "<p>hello</p>" {
		t.Errorf("rendered = %q", out)
	}
}
