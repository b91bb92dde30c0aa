package contentbody

import (
	"context"
	"reflect"
	"strings"
	"sync"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/alnah/go-contentbody/internal/dom"
	"github.com/alnah/go-contentbody/internal/rewrite"
)

// Body is one mounted content block: its tree, its slots and the inputs they
// were built from. A Body is safe for concurrent use, but builds are
// serialized; a host that wants parallel builds uses one Body per block.
type Body struct {
	cfg bodyConfig

	mu          sync.Mutex
	input       Input
	mounted     bool
	doc         *rewrite.Doc
	renderIndex int
	err         error
}

// New creates an unmounted Body. The first Update mounts it.
func New(opts ...Option) *Body {
	b := &Body{cfg: defaultBodyConfig()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Update hands the body its current inputs and reports whether the tree was
// rebuilt. The first call always builds. Later calls rebuild only when the
// markup or the highlight or glossary specs differ from the previous inputs;
// other fields take effect without touching the tree.
func (b *Body) Update(ctx context.Context, in Input) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	rebuild := !b.mounted || needsRebuild(b.input, in)
	b.input = in
	if !rebuild {
		return false
	}

	if b.mounted {
		b.renderIndex++
	}
	b.build(ctx)
	b.mounted = true
	return true
}

// specOptions compare props of any host type, unexported fields included.
var specOptions = []cmp.Option{
	cmpopts.EquateEmpty(),
	cmp.Exporter(func(reflect.Type) bool { return true }),
}

// needsRebuild compares the inputs a tree is built from. Props it cannot
// compare count as changed.
func needsRebuild(prev, next Input) (changed bool) {
	if prev.HTML != next.HTML {
		return true
	}
	defer func() {
		if r := recover(); r != nil {
			changed = true
		}
	}()
	return !cmp.Equal(prev.ReplacedSubstrings, next.ReplacedSubstrings, specOptions...) ||
		!cmp.Equal(prev.Glossary, next.Glossary, specOptions...)
}

func (b *Body) build(ctx context.Context) {
	log := b.cfg.logger
	if b.doc != nil {
		b.doc.Registry.Reset()
	}
	b.err = nil

	root, err := dom.Parse(b.input.HTML)
	if err != nil {
		// Fail open: show the markup undecorated.
		log.Error("parsing content failed",
			zap.String("content", b.description()),
			zap.Error(err))
		root = dom.NewElement("div")
		root.AppendChild(&html.Node{Type: html.RawNode, Data: b.input.HTML})
		b.doc = rewrite.NewDoc(root)
		b.err = err
		return
	}
	b.doc = rewrite.NewDoc(root)

	// Nothing to decorate
	if strings.TrimSpace(b.input.HTML) == "" {
		return
	}

	pipeline := &rewrite.Pipeline{
		Passes:      rewrite.StandardPasses(b.passConfig()),
		Logger:      log,
		Description: b.input.Description,
	}
	b.err = pipeline.Run(ctx, b.doc)
	log.Debug("content built",
		zap.String("content", b.description()),
		zap.Int("slots", b.doc.Registry.Len()),
		zap.Int("renderIndex", b.renderIndex))
}

func (b *Body) passConfig() rewrite.Config {
	return rewrite.Config{
		Highlights:        toSubstitutions(b.input.ReplacedSubstrings),
		Glossary:          toSubstitutions(b.input.Glossary),
		Insertions:        b.input.IDInsertions,
		Nofollow:          b.input.Nofollow,
		CollapseFootnotes: b.cfg.collapseFootnotes,
		NoPrefetch:        b.input.NoHoverPreviewPrefetch,
		ValidateURL:       b.cfg.validateURL,
		ExcludeLink:       b.cfg.excludeLink,
		Measurer:          b.cfg.measurer,
		Description:       b.input.Description,
		Logger:            b.cfg.logger,
	}
}

func (b *Body) description() string {
	if b.input.Description == "" {
		return "content block"
	}
	return b.input.Description
}

// Rendered returns the current state for a rendering boundary. Before the
// first Update it is empty.
func (b *Body) Rendered() Rendered {
	b.mu.Lock()
	defer b.mu.Unlock()

	r := Rendered{
		ClassName:   b.input.ClassName,
		RenderIndex: b.renderIndex,
	}
	if b.doc == nil {
		return r
	}

	markup, err := dom.InnerHTML(b.doc.Root)
	if err != nil {
		b.cfg.logger.Error("serializing content failed",
			zap.String("content", b.description()),
			zap.Error(err))
	}
	r.Root = b.doc.Root
	r.Markup = markup
	r.Slots = b.doc.Registry.Slots()
	r.Hooks = append([]ClickHook(nil), b.doc.Hooks...)
	return r
}

// Err returns the failures of the last build, or nil. They were already
// logged; the content was rendered regardless.
func (b *Body) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.err
}

// Root returns the root of the rendering surface, nil before mount.
func (b *Body) Root() *html.Node {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.doc == nil {
		return nil
	}
	return b.doc.Root
}

// ContainsNode reports whether n is part of the rendered surface. Nodes
// inside a slot's content count: they are displayed at the slot's
// placeholder.
func (b *Body) ContainsNode(n *html.Node) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.doc == nil || n == nil {
		return false
	}

	// Each hop leaves one slot; more hops than slots means a cycle.
	for hops := 0; hops <= b.doc.Registry.Len(); hops++ {
		top := n
		for top.Parent != nil {
			top = top.Parent
		}
		if top == b.doc.Root {
			return true
		}
		slot, ok := b.doc.Registry.Owner(top)
		if !ok {
			return false
		}
		n = slot.Placeholder
	}
	return false
}

// Text returns the text of the rendered surface, slot content included.
// It is meant for diagnostics, not display.
func (b *Body) Text() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.doc == nil {
		return ""
	}

	var sb strings.Builder
	b.writeText(&sb, b.doc.Root, 0)
	return sb.String()
}

func (b *Body) writeText(sb *strings.Builder, n *html.Node, depth int) {
	if depth > maxProjectionDepth {
		return
	}
	dom.Walk(n, func(c *html.Node) bool {
		if rewrite.IsPlaceholder(c) {
			if slot, ok := b.doc.Registry.Lookup(c); ok && slot.Value.Content != nil {
				b.writeText(sb, slot.Value.Content, depth+1)
			}
			return false
		}
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
		return true
	})
}

// RangeForQuote finds the text a quote was taken from in the live tree.
// Text moved into slots is not searched.
func (b *Body) RangeForQuote(q TextQuote) (Range, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.doc == nil {
		return Range{}, false
	}
	return dom.QuoteToRange(b.doc.Root, q)
}
