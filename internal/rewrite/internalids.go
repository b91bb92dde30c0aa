package rewrite

import (
	"context"

	"golang.org/x/net/html"

	"github.com/alnah/go-contentbody/internal/dom"
)

// InternalIDAttr stages an id the editor wants exposed for deep links.
const InternalIDAttr = "data-internal-id"

// InternalIDPass exposes data-internal-id as a real id. An element that
// already has a different id keeps it and gets a child wrapper carrying the
// internal id around its content. An internal id that already resolves in
// the tree is skipped, so the first claimant keeps it.
type InternalIDPass struct{}

// Name implements Pass.
func (InternalIDPass) Name() string { return "internal-ids" }

// Apply implements Pass.
func (InternalIDPass) Apply(_ context.Context, doc *Doc) error {
	for _, el := range doc.Find("[" + InternalIDAttr + "]") {
		if !doc.Attached(el) {
			continue
		}
		internalID, _ := dom.Attr(el, InternalIDAttr)
		if internalID == "" || dom.ElementByID(doc.Root, internalID) != nil {
			continue
		}

		if id, _ := dom.Attr(el, "id"); id == "" {
			dom.SetAttr(el, "id", internalID)
			continue
		}
		wrapper := dom.NewElement("span", html.Attribute{Key: "id", Val: internalID})
		dom.MoveChildren(wrapper, el)
		el.AppendChild(wrapper)
	}
	return nil
}
