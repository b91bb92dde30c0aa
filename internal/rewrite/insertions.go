package rewrite

import (
	"context"
	"maps"
	"slices"

	"github.com/alnah/go-contentbody/internal/dom"
)

// InsertionPass prepends a slot inside elements addressed by id, e.g. side
// comment markers on paragraphs. Ids that do not resolve are skipped.
type InsertionPass struct {
	Insertions map[string]Value
}

// Name implements Pass.
func (p *InsertionPass) Name() string { return "id-insertions" }

// Apply implements Pass. Ids are visited in sorted order so slot order is
// stable across builds.
func (p *InsertionPass) Apply(_ context.Context, doc *Doc) error {
	for _, id := range slices.Sorted(maps.Keys(p.Insertions)) {
		container := dom.ElementByID(doc.Root, id)
		if container == nil {
			continue
		}
		doc.Registry.Insert(container, p.Insertions[id])
	}
	return nil
}
