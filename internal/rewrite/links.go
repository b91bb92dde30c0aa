package rewrite

import (
	"context"

	"golang.org/x/net/html"

	"github.com/alnah/go-contentbody/internal/dom"
)

// LinkPass turns links into hover-preview slots that keep the link's children.
type LinkPass struct {
	// Exclude reports hrefs that must stay plain links.
	Exclude     func(href string) bool
	NoPrefetch  bool
	Description string
}

// Name implements Pass.
func (p *LinkPass) Name() string { return "hoverable-links" }

// Apply implements Pass.
func (p *LinkPass) Apply(_ context.Context, doc *Doc) error {
	for _, a := range doc.Find("a") {
		if !doc.Attached(a) {
			continue
		}
		href, _ := dom.Attr(a, "href")
		if href == "" || dom.HasClass(a, CTAClass) {
			continue
		}
		if p.Exclude != nil && p.Exclude(href) {
			continue
		}

		props := map[string]any{
			"href":                     href,
			"contentSourceDescription": p.Description,
			"noPrefetch":               p.NoPrefetch,
		}
		if id, ok := dom.Attr(a, "id"); ok {
			props["id"] = id
		}
		if rel, ok := dom.Attr(a, "rel"); ok {
			props["rel"] = rel
		}

		if _, err := doc.Registry.Replace(a, Value{
			Component: "HoverPreviewLink",
			Props:     props,
			Content:   dom.ExtractChildren(a),
		}); err != nil {
			return err
		}
	}
	return nil
}

// forwardAttributes copies attributes into props, renaming class to className.
func forwardAttributes(attrs []html.Attribute) map[string]string {
	out := make(map[string]string, len(attrs))
	for _, a := range attrs {
		if a.Key == "class" {
			out["className"] = a.Val
			continue
		}
		out[a.Key] = a.Val
	}
	return out
}
