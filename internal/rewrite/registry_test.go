package rewrite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/alnah/go-contentbody/internal/dom"
)

func newDoc(t *testing.T, markup string) *Doc {
	t.Helper()
	root, err := dom.Parse(markup)
	require.NoError(t, err)
	return NewDoc(root)
}

func render(t *testing.T, n *html.Node) string {
	t.Helper()
	out, err := dom.InnerHTML(n)
	require.NoError(t, err)
	return out
}

func TestRegistry_Replace(t *testing.T) {
	t.Parallel()

	doc := newDoc(t, `<p>keep <b>this</b></p>`)
	b := doc.Root.FirstChild.LastChild

	ph, err := doc.Registry.Replace(b, Value{Component: "Bold", Content: dom.ExtractChildren(b)})
	require.NoError(t, err)

	assert.Equal(t, `<p>keep <span data-slot="slot-0"></span></p>`, render(t, doc.Root))
	assert.True(t, IsPlaceholder(ph))

	slot, ok := doc.Registry.Lookup(ph)
	require.True(t, ok)
	assert.Equal(t, "slot-0", slot.ID)
	assert.Equal(t, "this", render(t, slot.Value.Content))

	owner, ok := doc.Registry.Owner(slot.Value.Content)
	require.True(t, ok)
	assert.Same(t, ph, owner.Placeholder)
}

func TestRegistry_ReplaceDetached(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	_, err := r.Replace(dom.NewElement("p"), Value{Component: "X"})
	assert.ErrorIs(t, err, dom.ErrRangeDetached)
	assert.Zero(t, r.Len())
}

func TestRegistry_InsertPrepends(t *testing.T) {
	t.Parallel()

	doc := newDoc(t, `<p id="a">text</p>`)
	doc.Registry.Insert(doc.Root.FirstChild, Value{Component: "SideCommentIcon"})

	assert.Equal(t, `<p id="a"><span data-slot="slot-0"></span>text</p>`, render(t, doc.Root))
}

func TestRegistry_SlotsIsACopy(t *testing.T) {
	t.Parallel()

	doc := newDoc(t, `<p id="a">text</p>`)
	props := map[string]any{"n": 1}
	doc.Registry.Insert(doc.Root.FirstChild, Value{Component: "X", Props: props})

	slots := doc.Registry.Slots()
	slots[0].ID = "changed"
	props["n"] = 2

	again := doc.Registry.Slots()
	assert.Equal(t, "slot-0", again[0].ID)
	assert.Equal(t, 1, again[0].Value.Props["n"], "registry must not share the caller's props map")
}

func TestRegistry_Reset(t *testing.T) {
	t.Parallel()

	doc := newDoc(t, `<p id="a">text</p>`)
	ph := doc.Registry.Insert(doc.Root.FirstChild, Value{Component: "X"})
	doc.Registry.Reset()

	assert.Zero(t, doc.Registry.Len())
	_, ok := doc.Registry.Lookup(ph)
	assert.False(t, ok)
}
