package rewrite

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/alnah/go-contentbody/internal/dom"
)

// Substitution wraps every match of Search in a component.
type Substitution struct {
	Search    string
	Component string
	Props     map[string]any

	// MatchAll wraps every occurrence instead of only the first one.
	MatchAll bool
}

// SubstringPass highlights literal substrings of text nodes.
//
// Longer search strings are applied first, so "AI safety" claims its text
// before "AI" gets a chance to match inside it. Text already moved into a
// slot is out of the tree and cannot be matched again.
type SubstringPass struct {
	Label         string
	Substitutions []Substitution

	// ForceMatchAll overrides MatchAll on every substitution (glossaries).
	ForceMatchAll bool

	Description string
	Logger      *zap.Logger

	// wrap defaults to dom.WrapRange.
	wrap func(dom.Range, *html.Node) (*html.Node, error)
}

type textMatch struct {
	rng     dom.Range
	isFirst bool
}

// Name implements Pass.
func (p *SubstringPass) Name() string {
	if p.Label != "" {
		return p.Label
	}
	return "substrings"
}

// Apply implements Pass. Errors are handled per search string and never
// returned, so one bad entry does not cost the others their highlights.
func (p *SubstringPass) Apply(ctx context.Context, doc *Doc) error {
	log := p.Logger
	if log == nil {
		log = zap.NewNop()
	}

	for _, sub := range orderSubstitutions(p.Substitutions) {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := p.applyOne(doc, sub); err != nil {
			log.Error("highlighting substring failed",
				zap.String("pass", p.Name()),
				zap.String("search", sub.Search),
				zap.String("content", describe(p.Description)),
				zap.Error(err))
		}
	}
	return nil
}

func (p *SubstringPass) applyOne(doc *Doc, sub Substitution) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrPassPanic, r)
		}
	}()

	search := strings.TrimSpace(sub.Search)
	matchAll := sub.MatchAll || p.ForceMatchAll
	matches := collectMatches(doc.Root, search, matchAll)
	wrap := p.wrap
	if wrap == nil {
		wrap = dom.WrapRange
	}

	// Back to front: wrapping splits text nodes, and only the part after the
	// wrapped range moves.
	for i := len(matches) - 1; i >= 0; i-- {
		m := matches[i]
		span, err := wrap(m.rng, dom.NewElement("span"))
		if err != nil {
			return err
		}
		props := maps.Clone(sub.Props)
		if props == nil {
			props = make(map[string]any, 2)
		}
		props["isFirstOccurrence"] = m.isFirst
		props["searchString"] = search

		if _, err := doc.Registry.Replace(span, Value{
			Component: sub.Component,
			Props:     props,
			Content:   dom.ExtractChildren(span),
		}); err != nil {
			return err
		}
	}
	return nil
}

// collectMatches finds search in text nodes in document order. Placeholders
// are skipped so wrapped content is never matched twice.
func collectMatches(root *html.Node, search string, matchAll bool) []textMatch {
	if search == "" {
		return nil
	}

	var (
		out  []textMatch
		done bool
	)
	dom.Walk(root, func(n *html.Node) bool {
		if done || IsPlaceholder(n) {
			return false
		}
		if n.Type != html.TextNode {
			return true
		}
		for from := 0; from <= len(n.Data); {
			idx := strings.Index(n.Data[from:], search)
			if idx < 0 {
				break
			}
			start := from + idx
			rng, err := dom.TextRange(n, start, start+len(search))
			if err != nil {
				break
			}
			out = append(out, textMatch{rng: rng, isFirst: len(out) == 0})
			if !matchAll {
				done = true
				return false
			}
			from = start + len(search)
		}
		return true
	})
	return out
}

// orderSubstitutions drops blank and duplicate search strings (first entry
// wins) and sorts the rest longest first. Equal lengths keep input order.
func orderSubstitutions(subs []Substitution) []Substitution {
	seen := make(map[string]bool, len(subs))
	out := make([]Substitution, 0, len(subs))
	for _, s := range subs {
		key := strings.TrimSpace(s.Search)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	slices.SortStableFunc(out, func(a, b Substitution) int {
		return utf8.RuneCountInString(strings.TrimSpace(b.Search)) - utf8.RuneCountInString(strings.TrimSpace(a.Search))
	})
	return out
}
