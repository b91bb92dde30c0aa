package contentbody

import (
	"golang.org/x/net/html"

	"github.com/alnah/go-contentbody/internal/dom"
	"github.com/alnah/go-contentbody/internal/rewrite"
)

type (
	// Value is what a rendering boundary mounts into a placeholder.
	Value = rewrite.Value

	// Slot pairs a placeholder in the tree with its Value.
	Slot = rewrite.Slot

	// ClickHook asks the host to report an event when a node is clicked.
	ClickHook = rewrite.ClickHook

	// Layout is one measurement of the content surface.
	Layout = rewrite.Layout

	// Measurer lays markup out on a real rendering surface.
	Measurer = rewrite.Measurer

	// Range is a span of text nodes in the tree.
	Range = dom.Range

	// TextQuote anchors a range by its text and surrounding context.
	TextQuote = dom.TextQuote
)

// ReplacementSpec asks for every match of SearchString to be wrapped in
// Component. Only the first match is wrapped unless MatchAllOccurrences is set.
type ReplacementSpec struct {
	SearchString        string         `yaml:"searchString"`
	Component           string         `yaml:"component"`
	Props               map[string]any `yaml:"props,omitempty"`
	MatchAllOccurrences bool           `yaml:"matchAllOccurrences,omitempty"`
}

// Input is everything a body renders from.
type Input struct {
	// HTML is sanitized markup. It is trusted as is.
	HTML string

	// ReplacedSubstrings are curated highlights, such as inline reactions.
	ReplacedSubstrings []ReplacementSpec

	// Glossary terms are matched after highlights, every occurrence.
	Glossary []ReplacementSpec

	// IDInsertions prepends a value inside the element with each id.
	IDInsertions map[string]Value

	ClassName string

	// Description names the content in log messages, e.g. "post abc123".
	Description string

	NoHoverPreviewPrefetch bool
	Nofollow               bool
}

// Rendered is a read-only view of a built body. Root and the slot contents
// belong to the body and must not be modified.
type Rendered struct {
	ClassName string

	// RenderIndex counts rebuilds since mount. Hosts key their surface on
	// it so a rebuild replaces the surface instead of patching it.
	RenderIndex int

	Root   *html.Node
	Markup string
	Slots  []Slot
	Hooks  []ClickHook
}

func toSubstitutions(specs []ReplacementSpec) []rewrite.Substitution {
	if len(specs) == 0 {
		return nil
	}
	out := make([]rewrite.Substitution, len(specs))
	for i, s := range specs {
		out[i] = rewrite.Substitution{
			Search:    s.SearchString,
			Component: s.Component,
			Props:     s.Props,
			MatchAll:  s.MatchAllOccurrences,
		}
	}
	return out
}
