package rewrite

import (
	"context"
	"slices"

	"github.com/alnah/go-contentbody/internal/dom"
)

// CTAClass marks call-to-action buttons produced by the editor.
const CTAClass = "ck-cta-button"

// CTAClickEvent is reported when a call-to-action button is clicked.
const CTAClickEvent = "ctaButtonClicked"

// CTAPass promotes the staged data-href of call-to-action buttons to a real
// href and asks the host to instrument their clicks. Nothing is replaced.
type CTAPass struct {
	// ValidateURL sanitizes data-href before it becomes the href.
	ValidateURL func(string) string
}

// Name implements Pass.
func (p *CTAPass) Name() string { return "cta-buttons" }

// Apply implements Pass.
func (p *CTAPass) Apply(_ context.Context, doc *Doc) error {
	for _, button := range doc.Find("." + CTAClass) {
		dataHref, ok := dom.Attr(button, "data-href")
		if ok && dataHref != "" {
			href := dataHref
			if p.ValidateURL != nil {
				href = p.ValidateURL(dataHref)
			}
			dom.SetAttr(button, "href", href)
		}

		if slices.ContainsFunc(doc.Hooks, func(h ClickHook) bool { return h.Node == button }) {
			continue
		}
		doc.Hooks = append(doc.Hooks, ClickHook{
			Node:  button,
			Event: CTAClickEvent,
			Props: map[string]any{"href": dataHref},
		})
	}
	return nil
}
