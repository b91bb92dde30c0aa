// Package dom provides the tree and range primitives the rewrite passes are
// built on.
//
// The content tree is a golang.org/x/net/html node tree rooted at a detached
// <div> that plays the part of the rendering surface. Nodes keep their
// identity across passes: a rewrite moves or replaces nodes, it never
// re-parses the tree.
package dom

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Parse parses an HTML fragment into a fresh root <div>.
// The markup is assumed to be sanitized upstream.
func Parse(markup string) (*html.Node, error) {
	root := NewElement("div")

	// A separate context node keeps the parser in "in body" mode without
	// attaching anything to it.
	context := &html.Node{Type: html.ElementNode, DataAtom: atom.Div, Data: "div"}
	nodes, err := html.ParseFragment(strings.NewReader(markup), context)
	if err != nil {
		return nil, err
	}
	for _, n := range nodes {
		root.AppendChild(n)
	}
	return root, nil
}

// NewElement creates a detached element node.
func NewElement(tag string, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Lookup([]byte(tag)),
		Data:     tag,
		Attr:     attrs,
	}
}

// NewFragment creates a detached container used to hold nodes moved out of
// the live tree.
func NewFragment() *html.Node {
	return &html.Node{Type: html.DocumentNode}
}

// InnerHTML serializes the children of n.
func InnerHTML(n *html.Node) (string, error) {
	var buf strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

// OuterHTML serializes n including its own tag.
func OuterHTML(n *html.Node) (string, error) {
	var buf strings.Builder
	if err := html.Render(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// TextContent concatenates every text node below n in document order.
func TextContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var buf strings.Builder
	Walk(n, func(c *html.Node) bool {
		if c.Type == html.TextNode {
			buf.WriteString(c.Data)
		}
		return true
	})
	return buf.String()
}

// Walk visits n and its descendants depth-first in document order.
// Returning false from fn skips the children of the visited node.
// fn must not detach the node it is visiting.
func Walk(n *html.Node, fn func(*html.Node) bool) {
	if !fn(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		Walk(c, fn)
	}
}

// Attr returns the value of the attribute key on n.
func Attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets or replaces the attribute key on n.
func SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// HasClass reports whether the class attribute of n contains class.
func HasClass(n *html.Node, class string) bool {
	v, ok := Attr(n, "class")
	if !ok {
		return false
	}
	for _, c := range strings.Fields(v) {
		if c == class {
			return true
		}
	}
	return false
}

// ElementByID returns the first element below root (root included) whose id
// attribute equals id, or nil.
func ElementByID(root *html.Node, id string) *html.Node {
	var found *html.Node
	Walk(root, func(n *html.Node) bool {
		if found != nil {
			return false
		}
		if n.Type == html.ElementNode {
			if v, ok := Attr(n, "id"); ok && v == id {
				found = n
				return false
			}
		}
		return true
	})
	return found
}

// Contains reports whether n is ancestor itself or one of its descendants.
func Contains(ancestor, n *html.Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p == ancestor {
			return true
		}
	}
	return false
}

// TopLevel returns the outermost ancestor of n (n itself when detached).
func TopLevel(n *html.Node) *html.Node {
	for n.Parent != nil {
		n = n.Parent
	}
	return n
}

// ExtractChildren moves every child of el into a new detached fragment and
// returns it. el is left empty.
func ExtractChildren(el *html.Node) *html.Node {
	frag := NewFragment()
	MoveChildren(frag, el)
	return frag
}

// MoveChildren appends all children of src to dst, preserving order.
func MoveChildren(dst, src *html.Node) {
	for c := src.FirstChild; c != nil; c = src.FirstChild {
		src.RemoveChild(c)
		dst.AppendChild(c)
	}
}

// Replace swaps old for replacement in old's parent. It reports false when
// old is detached.
func Replace(old, replacement *html.Node) bool {
	parent := old.Parent
	if parent == nil {
		return false
	}
	parent.InsertBefore(replacement, old)
	parent.RemoveChild(old)
	return true
}

// Prepend inserts child as the first child of parent.
func Prepend(parent, child *html.Node) {
	if parent.FirstChild == nil {
		parent.AppendChild(child)
		return
	}
	parent.InsertBefore(child, parent.FirstChild)
}

// ElementChildren returns the direct element children of n.
func ElementChildren(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, c)
		}
	}
	return out
}

// Clone returns a deep copy of n. When index is non-nil it records the copy
// of every original node, keyed by the original.
func Clone(n *html.Node, index map[*html.Node]*html.Node) *html.Node {
	c := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
	}
	if len(n.Attr) > 0 {
		c.Attr = make([]html.Attribute, len(n.Attr))
		copy(c.Attr, n.Attr)
	}
	if index != nil {
		index[n] = c
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		c.AppendChild(Clone(child, index))
	}
	return c
}
