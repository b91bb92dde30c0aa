package dom

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// Sentinel errors for range operations.
var (
	ErrNotTextNode      = errors.New("range boundary is not a text node")
	ErrOffsetOutOfRange = errors.New("range offset out of bounds")
	ErrRangeDetached    = errors.New("range is not attached to a parent")
	ErrRangeNotWrapped  = errors.New("range spans several text nodes")
	ErrRangeOrder       = errors.New("range end precedes start")
)

// Boundary is a position inside a text node, as a byte offset into its data.
type Boundary struct {
	Node   *html.Node
	Offset int
}

// Range is a span of text between two boundaries, in document order.
// Offsets are relative to the tree as it was when the range was computed.
type Range struct {
	Start Boundary
	End   Boundary
}

// TextRange builds a range inside a single text node.
func TextRange(n *html.Node, start, end int) (Range, error) {
	if n == nil || n.Type != html.TextNode {
		return Range{}, ErrNotTextNode
	}
	if start < 0 || end > len(n.Data) {
		return Range{}, fmt.Errorf("%w: [%d,%d) in %d bytes", ErrOffsetOutOfRange, start, end, len(n.Data))
	}
	if end < start {
		return Range{}, fmt.Errorf("%w: [%d,%d)", ErrRangeOrder, start, end)
	}
	return Range{Start: Boundary{n, start}, End: Boundary{n, end}}, nil
}

// Collapsed reports whether the range is empty.
func (r Range) Collapsed() bool {
	return r.Start.Node == r.End.Node && r.Start.Offset == r.End.Offset
}

// SingleNode reports whether both boundaries sit in the same text node.
func (r Range) SingleNode() bool {
	return r.Start.Node == r.End.Node
}

// Text returns the text covered by the range.
func (r Range) Text() string {
	var buf strings.Builder
	for _, sub := range SplitRange(r) {
		buf.WriteString(sub.Start.Node.Data[sub.Start.Offset:sub.End.Offset])
	}
	return buf.String()
}

// SplitRange breaks r into sub-ranges that each cover part of exactly one
// text node, in document order. Empty pieces are dropped.
func SplitRange(r Range) []Range {
	if r.Start.Node == nil || r.End.Node == nil {
		return nil
	}
	if r.SingleNode() {
		if r.Collapsed() {
			return nil
		}
		return []Range{r}
	}

	var (
		out     []Range
		started bool
		done    bool
	)
	Walk(TopLevel(r.Start.Node), func(n *html.Node) bool {
		if done {
			return false
		}
		if n.Type != html.TextNode {
			return true
		}
		switch {
		case n == r.Start.Node:
			started = true
			if r.Start.Offset < len(n.Data) {
				out = append(out, Range{Start: Boundary{n, r.Start.Offset}, End: Boundary{n, len(n.Data)}})
			}
		case n == r.End.Node:
			done = true
			if r.End.Offset > 0 {
				out = append(out, Range{Start: Boundary{n, 0}, End: Boundary{n, r.End.Offset}})
			}
		case started && n.Data != "":
			out = append(out, Range{Start: Boundary{n, 0}, End: Boundary{n, len(n.Data)}})
		}
		return true
	})
	return out
}

// WrapRange moves the text covered by a single-node range into wrapper and
// puts wrapper where the text was. The text node is split around the range;
// the original node keeps the leading text so ranges that end earlier in the
// same node stay valid.
func WrapRange(r Range, wrapper *html.Node) (*html.Node, error) {
	if !r.SingleNode() {
		return nil, ErrRangeNotWrapped
	}
	n := r.Start.Node
	if n == nil || n.Type != html.TextNode {
		return nil, ErrNotTextNode
	}
	if n.Parent == nil {
		return nil, ErrRangeDetached
	}
	start, end := r.Start.Offset, r.End.Offset
	if start < 0 || end > len(n.Data) || end < start {
		return nil, fmt.Errorf("%w: [%d,%d) in %d bytes", ErrOffsetOutOfRange, start, end, len(n.Data))
	}

	parent := n.Parent
	before, middle, after := n.Data[:start], n.Data[start:end], n.Data[end:]

	wrapper.AppendChild(&html.Node{Type: html.TextNode, Data: middle})
	parent.InsertBefore(wrapper, n.NextSibling)
	if after != "" {
		parent.InsertBefore(&html.Node{Type: html.TextNode, Data: after}, wrapper.NextSibling)
	}

	if before == "" {
		parent.RemoveChild(n)
	} else {
		n.Data = before
	}
	return wrapper, nil
}
