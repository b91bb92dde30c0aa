package rewrite

import (
	"context"

	"github.com/alnah/go-contentbody/internal/dom"
)

// FootnotePass collapses the footnotes section into a single expandable slot.
type FootnotePass struct {
	Enabled bool
}

// Name implements Pass.
func (p *FootnotePass) Name() string { return "collapse-footnotes" }

// Apply implements Pass.
func (p *FootnotePass) Apply(_ context.Context, doc *Doc) error {
	if !p.Enabled {
		return nil
	}
	found := doc.Find(".footnotes")
	if len(found) == 0 {
		return nil
	}
	footnotes := found[0]

	inner, err := dom.InnerHTML(footnotes)
	if err != nil {
		return err
	}

	// The notes move into the slot content inside a canonical <section>, so
	// slots created in them by earlier passes are still projected.
	content := dom.NewFragment()
	if footnotes.Data == "section" {
		dom.MoveChildren(content, footnotes)
	} else {
		inner = "<section>" + inner + "</section>"
		section := dom.NewElement("section")
		dom.MoveChildren(section, footnotes)
		content.AppendChild(section)
	}

	_, err = doc.Registry.Replace(footnotes, Value{
		Component: "CollapsedFootnotes",
		Props: map[string]any{
			"footnotesHtml": inner,
			"attributes":    forwardAttributes(footnotes.Attr),
		},
		Content: content,
	})
	return err
}
