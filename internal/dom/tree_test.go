package dom

import (
	"strings"
	"testing"

	"golang.org/x/net/html"
)

func mustParse(t *testing.T, markup string) *html.Node {
	t.Helper()
	root, err := Parse(markup)
	if err != nil {
		t.Fatalf("Parse(%q): %v", markup, err)
	}
	return root
}

func mustInner(t *testing.T, n *html.Node) string {
	t.Helper()
	out, err := InnerHTML(n)
	if err != nil {
		t.Fatalf("InnerHTML: %v", err)
	}
	return out
}

// ---------------------------------------------------------------------------
// Parse / serialize
// ---------------------------------------------------------------------------

func TestParse_RoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "paragraph",
			input: `<p>hello</p>`,
			want:  `<p>hello</p>`,
		},
		{
			name:  "no html or body wrapper",
			input: `<h1 id="a">Title</h1><p>x</p>`,
			want:  `<h1 id="a">Title</h1><p>x</p>`,
		},
		{
			name:  "bare text",
			input: `just text`,
			want:  `just text`,
		},
		{
			name:  "empty",
			input: ``,
			want:  ``,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			root := mustParse(t, tt.input)
			if root.Data != "div" {
				t.Errorf("root tag = %q, want div", root.Data)
			}
			if got := mustInner(t, root); got != tt.want {
				t.Errorf("InnerHTML = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTextContent(t *testing.T) {
	t.Parallel()

	root := mustParse(t, `<p>The <a href="#">link</a> is <em>great</em>.</p>`)
	if got := TextContent(root); got != "The link is great." {
		t.Errorf("TextContent = %q", got)
	}
}

// ---------------------------------------------------------------------------
// Attributes
// ---------------------------------------------------------------------------

func TestAttrHelpers(t *testing.T) {
	t.Parallel()

	root := mustParse(t, `<a class="ck-cta-button big" data-href="x">go</a>`)
	a := root.FirstChild

	if v, ok := Attr(a, "data-href"); !ok || v != "x" {
		t.Errorf("Attr(data-href) = %q, %v", v, ok)
	}
	if _, ok := Attr(a, "href"); ok {
		t.Error("Attr(href) found on element without href")
	}
	if !HasClass(a, "ck-cta-button") || !HasClass(a, "big") {
		t.Error("HasClass missed a class")
	}
	if HasClass(a, "ck-cta") {
		t.Error("HasClass matched a class prefix")
	}

	SetAttr(a, "href", "https://a.example")
	SetAttr(a, "href", "https://b.example")
	if v, _ := Attr(a, "href"); v != "https://b.example" {
		t.Errorf("href = %q after second SetAttr", v)
	}
	count := 0
	for _, attr := range a.Attr {
		if attr.Key == "href" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("href attribute present %d times, want 1", count)
	}
}

// ---------------------------------------------------------------------------
// Lookup and structure
// ---------------------------------------------------------------------------

func TestElementByID(t *testing.T) {
	t.Parallel()

	root := mustParse(t, `<div><p id="a">one</p><p id="b">two</p></div><p id="b">dup</p>`)

	if n := ElementByID(root, "b"); n == nil || TextContent(n) != "two" {
		t.Errorf("ElementByID(b) should return the first match in document order")
	}
	if n := ElementByID(root, "missing"); n != nil {
		t.Errorf("ElementByID(missing) = %v, want nil", n)
	}
}

func TestExtractChildren(t *testing.T) {
	t.Parallel()

	root := mustParse(t, `<a href="x">some <b>bold</b> text</a>`)
	a := root.FirstChild

	frag := ExtractChildren(a)

	if a.FirstChild != nil {
		t.Error("element still has children after extraction")
	}
	if frag.Parent != nil {
		t.Error("fragment should be detached")
	}
	if got := mustInner(t, frag); got != `some <b>bold</b> text` {
		t.Errorf("fragment = %q", got)
	}
}

func TestContainsAndTopLevel(t *testing.T) {
	t.Parallel()

	root := mustParse(t, `<p><em>x</em></p>`)
	em := root.FirstChild.FirstChild
	other := mustParse(t, `<p>y</p>`)

	if !Contains(root, em) {
		t.Error("Contains(root, em) = false")
	}
	if !Contains(root, root) {
		t.Error("a node contains itself")
	}
	if Contains(root, other.FirstChild) {
		t.Error("Contains matched a node from another tree")
	}
	if TopLevel(em) != root {
		t.Error("TopLevel(em) != root")
	}
}

func TestReplaceAndPrepend(t *testing.T) {
	t.Parallel()

	root := mustParse(t, `<p id="a">one</p><p>two</p>`)
	first := root.FirstChild

	Prepend(first, NewElement("span", html.Attribute{Key: "class", Val: "ins"}))
	if got := mustInner(t, root); got != `<p id="a"><span class="ins"></span>one</p><p>two</p>` {
		t.Errorf("after Prepend = %q", got)
	}

	if !Replace(first, NewElement("hr")) {
		t.Fatal("Replace returned false for attached node")
	}
	if got := mustInner(t, root); got != `<hr/><p>two</p>` {
		t.Errorf("after Replace = %q", got)
	}
	if Replace(first, NewElement("hr")) {
		t.Error("Replace of a detached node should report false")
	}
}

func TestClone(t *testing.T) {
	t.Parallel()

	root := mustParse(t, `<p class="c">a<b>b</b></p>`)
	index := map[*html.Node]*html.Node{}
	c := Clone(root, index)

	if mustInner(t, c) != mustInner(t, root) {
		t.Error("clone serializes differently")
	}
	b := root.FirstChild.LastChild
	if index[b] == nil || index[b] == b {
		t.Error("index should map originals to distinct copies")
	}
	SetAttr(index[root.FirstChild], "class", "changed")
	if strings.Contains(mustInner(t, root), "changed") {
		t.Error("mutating the clone changed the original")
	}
}
