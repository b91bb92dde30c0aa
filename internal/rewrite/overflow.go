package rewrite

import (
	"context"
	"errors"
	"fmt"

	"github.com/alnah/go-contentbody/internal/dom"
)

// ErrLayoutMismatch means a measurement does not describe the current tree.
var ErrLayoutMismatch = errors.New("layout does not match content blocks")

// overflowTolerance absorbs sub-pixel rounding between scroll and client widths.
const overflowTolerance = 1.0

// Layout is a measurement of the content surface.
type Layout struct {
	// ContainerWidth is the client width of the root. Zero means the surface
	// was not laid out (for example a background tab).
	ContainerWidth float64

	// BlockWidths holds the scroll width of each element child of the root,
	// in document order.
	BlockWidths []float64
}

// Measurer lays out markup on a real rendering surface.
type Measurer interface {
	Measure(ctx context.Context, markup string) (Layout, error)
}

// OverflowPass wraps top-level blocks wider than the container, such as wide
// tables and formulas, in a horizontal scroller. Without a Measurer there is
// no layout to inspect and the pass does nothing.
type OverflowPass struct {
	Measurer Measurer
}

// Name implements Pass.
func (p *OverflowPass) Name() string { return "scrollable-blocks" }

// Apply implements Pass.
func (p *OverflowPass) Apply(ctx context.Context, doc *Doc) error {
	if p.Measurer == nil {
		return nil
	}

	markup, err := dom.InnerHTML(doc.Root)
	if err != nil {
		return err
	}
	layout, err := p.Measurer.Measure(ctx, markup)
	if err != nil {
		return err
	}

	blocks := dom.ElementChildren(doc.Root)
	if len(layout.BlockWidths) != len(blocks) {
		return fmt.Errorf("%w: %d widths for %d blocks", ErrLayoutMismatch, len(layout.BlockWidths), len(blocks))
	}
	if layout.ContainerWidth <= 0 {
		return nil
	}

	for i, block := range blocks {
		if layout.BlockWidths[i] <= layout.ContainerWidth+overflowTolerance {
			continue
		}
		if _, err := doc.Registry.Replace(block, Value{
			Component: "HorizScrollBlock",
			Content:   dom.ExtractChildren(block),
		}); err != nil {
			return err
		}
	}
	return nil
}
