package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// TextQuote selects text by its exact content, optionally disambiguated by
// the text immediately before and after it.
type TextQuote struct {
	Exact  string
	Prefix string
	Suffix string
}

// textSpan records where a text node's data sits in the flattened text.
type textSpan struct {
	node  *html.Node
	start int
}

// QuoteToRange anchors q against the text of root. The quote may cross
// element boundaries. When several places match, the first one whose
// surrounding text agrees with Prefix and Suffix wins.
func QuoteToRange(root *html.Node, q TextQuote) (Range, bool) {
	if q.Exact == "" {
		return Range{}, false
	}

	var (
		spans []textSpan
		buf   strings.Builder
	)
	Walk(root, func(n *html.Node) bool {
		if n.Type == html.TextNode && n.Data != "" {
			spans = append(spans, textSpan{node: n, start: buf.Len()})
			buf.WriteString(n.Data)
		}
		return true
	})
	text := buf.String()

	for from := 0; from <= len(text); {
		idx := strings.Index(text[from:], q.Exact)
		if idx < 0 {
			return Range{}, false
		}
		start := from + idx
		end := start + len(q.Exact)
		if strings.HasSuffix(text[:start], q.Prefix) && strings.HasPrefix(text[end:], q.Suffix) {
			return Range{
				Start: locate(spans, start, false),
				End:   locate(spans, end, true),
			}, true
		}
		from = start + 1
	}
	return Range{}, false
}

// locate maps a flattened offset back to a text node. An offset that falls
// exactly between two nodes belongs to the earlier node when it ends a range
// and to the later node when it starts one.
func locate(spans []textSpan, offset int, isEnd bool) Boundary {
	for i, s := range spans {
		end := s.start + len(s.node.Data)
		if offset < s.start || offset > end {
			continue
		}
		if offset == end && !isEnd && i+1 < len(spans) {
			continue
		}
		return Boundary{Node: s.node, Offset: offset - s.start}
	}
	last := spans[len(spans)-1]
	return Boundary{Node: last.node, Offset: len(last.node.Data)}
}
