// Package rewrite implements the structural rewrite passes that decorate a
// sanitized content tree, and the pipeline that runs them in order.
//
// Passes either mutate elements in place or swap them for placeholders
// recorded in a Registry. A failing pass never takes the content down with
// it: failures are recovered, logged and reported, and the next pass runs on
// whatever tree the failed one left behind.
package rewrite

import (
	"context"
	"errors"
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/alnah/go-contentbody/internal/dom"
)

// ErrPassPanic wraps a panic recovered from a pass.
var ErrPassPanic = errors.New("rewrite pass panicked")

// ClickHook asks the host to report Event with Props when Node is clicked.
type ClickHook struct {
	Node  *html.Node
	Event string
	Props map[string]any
}

// Doc is the mutable state a pipeline run works on.
type Doc struct {
	Root     *html.Node
	Registry *Registry
	Hooks    []ClickHook
}

// NewDoc wraps root with an empty registry.
func NewDoc(root *html.Node) *Doc {
	return &Doc{Root: root, Registry: NewRegistry()}
}

// Find selects live elements below the root with a CSS selector. The
// selection is a snapshot; passes that replace elements must check that a
// node is still attached before touching it.
func (d *Doc) Find(selector string) []*html.Node {
	return goquery.NewDocumentFromNode(d.Root).Find(selector).Nodes
}

// Attached reports whether n is still part of the live tree.
func (d *Doc) Attached(n *html.Node) bool {
	return dom.Contains(d.Root, n)
}

// Pass is one scan-and-mutate operation over the tree.
type Pass interface {
	Name() string
	Apply(ctx context.Context, doc *Doc) error
}

// Pipeline runs passes in a fixed order.
type Pipeline struct {
	Passes      []Pass
	Logger      *zap.Logger
	Description string
}

// Run applies every pass to doc. A pass that fails or panics is logged and
// skipped; the returned error aggregates those failures for diagnostics and
// is never a reason to withhold the content.
func (p *Pipeline) Run(ctx context.Context, doc *Doc) (err error) {
	log := p.logger()
	defer func() {
		if r := recover(); r != nil {
			err = multierr.Append(err, fmt.Errorf("%w: pipeline: %v", ErrPassPanic, r))
			log.Error("content rewrite aborted", zap.String("content", p.describe()), zap.Any("panic", r))
		}
	}()

	for _, pass := range p.Passes {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return multierr.Append(err, ctxErr)
		}
		if passErr := runPass(ctx, pass, doc); passErr != nil {
			log.Error("content rewrite pass failed",
				zap.String("pass", pass.Name()),
				zap.String("content", p.describe()),
				zap.Error(passErr))
			err = multierr.Append(err, fmt.Errorf("%s: %w", pass.Name(), passErr))
		}
	}
	return err
}

func runPass(ctx context.Context, pass Pass, doc *Doc) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrPassPanic, r)
		}
	}()
	return pass.Apply(ctx, doc)
}

func (p *Pipeline) logger() *zap.Logger {
	if p.Logger == nil {
		return zap.NewNop()
	}
	return p.Logger
}

func (p *Pipeline) describe() string {
	return describe(p.Description)
}

func describe(description string) string {
	if description == "" {
		return "content block"
	}
	return description
}
