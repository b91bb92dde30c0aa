package rewrite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/net/html"

	"github.com/alnah/go-contentbody/internal/dom"
)

func highlight(search string, matchAll bool) Substitution {
	return Substitution{
		Search:    search,
		Component: "InlineReactHoverableHighlight",
		Props:     map[string]any{"quote": search},
		MatchAll:  matchAll,
	}
}

func applySubstrings(t *testing.T, doc *Doc, pass *SubstringPass) {
	t.Helper()
	require.NoError(t, pass.Apply(context.Background(), doc))
}

func TestSubstringPass_LongestSearchStringWins(t *testing.T) {
	t.Parallel()

	doc := newDoc(t, `<p>AI safety work and AI policy</p>`)
	applySubstrings(t, doc, &SubstringPass{Substitutions: []Substitution{
		highlight("AI", false),
		highlight("AI safety", false),
	}})

	assert.Equal(t,
		`<p><span data-slot="slot-0"></span> work and <span data-slot="slot-1"></span> policy</p>`,
		render(t, doc.Root))

	slots := doc.Registry.Slots()
	require.Len(t, slots, 2)
	assert.Equal(t, "AI safety", render(t, slots[0].Value.Content))
	assert.Equal(t, "AI safety", slots[0].Value.Props["searchString"])
	assert.Equal(t, "AI", render(t, slots[1].Value.Content))
}

func TestSubstringPass_FirstOccurrenceOnly(t *testing.T) {
	t.Parallel()

	doc := newDoc(t, `<p>cat cat cat</p><p>cat</p>`)
	applySubstrings(t, doc, &SubstringPass{Substitutions: []Substitution{highlight("cat", false)}})

	require.Equal(t, 1, doc.Registry.Len())
	assert.Equal(t, `<p><span data-slot="slot-0"></span> cat cat</p><p>cat</p>`, render(t, doc.Root))
	assert.Equal(t, true, doc.Registry.Slots()[0].Value.Props["isFirstOccurrence"])
}

func TestSubstringPass_MatchAll(t *testing.T) {
	t.Parallel()

	doc := newDoc(t, `<p>cat cat cat</p>`)
	applySubstrings(t, doc, &SubstringPass{Substitutions: []Substitution{highlight("cat", true)}})

	slots := doc.Registry.Slots()
	require.Len(t, slots, 3)

	firsts := 0
	for _, s := range slots {
		assert.Equal(t, "cat", render(t, s.Value.Content))
		if s.Value.Props["isFirstOccurrence"] == true {
			firsts++
			assert.Same(t, doc.Root.FirstChild.FirstChild, s.Placeholder,
				"the first occurrence flag belongs to the earliest match in document order")
		}
	}
	assert.Equal(t, 1, firsts)
}

func TestSubstringPass_ForceMatchAll(t *testing.T) {
	t.Parallel()

	doc := newDoc(t, `<p>prior and prior</p>`)
	applySubstrings(t, doc, &SubstringPass{
		Substitutions: []Substitution{highlight("prior", false)},
		ForceMatchAll: true,
	})

	assert.Equal(t, 2, doc.Registry.Len())
}

func TestSubstringPass_TrimsAndIsCaseSensitive(t *testing.T) {
	t.Parallel()

	doc := newDoc(t, `<p>Cat cat</p>`)
	applySubstrings(t, doc, &SubstringPass{Substitutions: []Substitution{highlight("  cat ", true)}})

	require.Equal(t, 1, doc.Registry.Len())
	assert.Equal(t, `<p>Cat <span data-slot="slot-0"></span></p>`, render(t, doc.Root))
}

func TestSubstringPass_NoWordBoundary(t *testing.T) {
	t.Parallel()

	doc := newDoc(t, `<p>concatenate</p>`)
	applySubstrings(t, doc, &SubstringPass{Substitutions: []Substitution{highlight("cat", false)}})

	assert.Equal(t, `<p>con<span data-slot="slot-0"></span>enate</p>`, render(t, doc.Root))
}

func TestSubstringPass_SkipsBlankAndDuplicateSearches(t *testing.T) {
	t.Parallel()

	doc := newDoc(t, `<p>x y</p>`)
	first := highlight("x", false)
	dup := highlight(" x", false)
	dup.Component = "Other"
	applySubstrings(t, doc, &SubstringPass{Substitutions: []Substitution{
		highlight("   ", true),
		first,
		dup,
	}})

	slots := doc.Registry.Slots()
	require.Len(t, slots, 1)
	assert.Equal(t, "InlineReactHoverableHighlight", slots[0].Value.Component)
}

func TestSubstringPass_DoesNotRematchWrappedContent(t *testing.T) {
	t.Parallel()

	doc := newDoc(t, `<p>alignment</p>`)
	pass := &SubstringPass{Substitutions: []Substitution{highlight("alignment", true)}}
	applySubstrings(t, doc, pass)
	applySubstrings(t, doc, pass)

	assert.Equal(t, 1, doc.Registry.Len())
}

func TestSubstringPass_Deterministic(t *testing.T) {
	t.Parallel()

	const markup = `<p>AI safety, <em>AI</em> and AI safety again</p>`
	subs := []Substitution{highlight("AI", true), highlight("AI safety", true)}

	run := func() ([]string, string) {
		doc := newDoc(t, markup)
		applySubstrings(t, doc, &SubstringPass{Substitutions: subs})
		var contents []string
		for _, s := range doc.Registry.Slots() {
			contents = append(contents, s.Value.Props["searchString"].(string)+"="+render(t, s.Value.Content))
		}
		return contents, render(t, doc.Root)
	}

	c1, m1 := run()
	c2, m2 := run()
	assert.Equal(t, c1, c2)
	assert.Equal(t, m1, m2)
}

func TestOrderSubstitutions(t *testing.T) {
	t.Parallel()

	got := orderSubstitutions([]Substitution{
		{Search: "ab"},
		{Search: "abcd"},
		{Search: "cd"},
		{Search: "é"},
	})

	var order []string
	for _, s := range got {
		order = append(order, s.Search)
	}
	assert.Equal(t, []string{"abcd", "ab", "cd", "é"}, order)
}

func TestSubstringPass_FailingSearchStringSkipped(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		fail    func()
		wantErr error
	}{
		{name: "error", fail: nil, wantErr: dom.ErrRangeDetached},
		{name: "panic", fail: func() { panic("boom") }, wantErr: ErrPassPanic},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			core, logs := observer.New(zapcore.ErrorLevel)
			doc := newDoc(t, `<p>first broken last</p>`)
			pass := &SubstringPass{
				Label:         "highlights",
				Substitutions: []Substitution{highlight("first", false), highlight("broken", false), highlight("last", false)},
				Description:   "post 7",
				Logger:        zap.New(core),
				wrap: func(r dom.Range, wrapper *html.Node) (*html.Node, error) {
					if r.Text() == "broken" {
						if tt.fail != nil {
							tt.fail()
						}
						return nil, dom.ErrRangeDetached
					}
					return dom.WrapRange(r, wrapper)
				},
			}
			applySubstrings(t, doc, pass)

			assert.Equal(t, `<p><span data-slot="slot-0"></span> broken <span data-slot="slot-1"></span></p>`, render(t, doc.Root))
			require.Equal(t, 2, doc.Registry.Len())
			assert.Equal(t, "first", render(t, doc.Registry.Slots()[0].Value.Content))
			assert.Equal(t, "last", render(t, doc.Registry.Slots()[1].Value.Content))

			entries := logs.FilterMessage("highlighting substring failed").All()
			require.Len(t, entries, 1)
			fields := entries[0].ContextMap()
			assert.Equal(t, "broken", fields["search"])
			assert.Equal(t, "post 7", fields["content"])
			assert.Equal(t, "highlights", fields["pass"])
			assert.Contains(t, fields["error"], tt.wantErr.Error())
		})
	}
}
