package contentbody

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"sync"

	"golang.org/x/net/html"

	"github.com/alnah/go-contentbody/internal/assets"
	"github.com/alnah/go-contentbody/internal/dom"
	"github.com/alnah/go-contentbody/internal/rewrite"
)

// maxProjectionDepth bounds slot nesting (a highlight in a link in a
// scrolling block is three levels).
const maxProjectionDepth = 32

// slotView is what a component template executes against.
type slotView struct {
	ID      string
	Props   map[string]any
	Content template.HTML
}

// Projector renders a built body to a single HTML string by projecting each
// slot value into its placeholder. It stands in for the host's component
// framework: each component is an html/template, looked up by name.
//
// Components without a template render their preserved content, so an
// unknown component degrades to the undecorated text.
type Projector struct {
	loader assets.Loader

	mu        sync.Mutex
	templates map[string]*template.Template
	missing   map[string]bool
}

// NewProjector creates a Projector using the built-in component templates.
// A non-empty dir overrides them with {dir}/components/{Component}.html.
func NewProjector(dir string) (*Projector, error) {
	resolver, err := assets.NewResolver(dir)
	if err != nil {
		return nil, err
	}
	return newProjector(resolver), nil
}

func newProjector(loader assets.Loader) *Projector {
	return &Projector{
		loader:    loader,
		templates: make(map[string]*template.Template),
		missing:   make(map[string]bool),
	}
}

// Register sets the template of a component, replacing any loaded one.
func (p *Projector) Register(component, text string) error {
	tmpl, err := parseComponent(component, text)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.templates[component] = tmpl
	delete(p.missing, component)
	return nil
}

// Project renders r with every slot value in place.
func (p *Projector) Project(r Rendered) (string, error) {
	if r.Root == nil {
		return "", nil
	}
	slots := make(map[*html.Node]Slot, len(r.Slots))
	for _, s := range r.Slots {
		slots[s.Placeholder] = s
	}
	return p.renderFragment(r.Root, slots, 0)
}

// renderFragment renders the children of n, leaving n and its placeholders
// untouched: slots are projected into a clone.
func (p *Projector) renderFragment(n *html.Node, slots map[*html.Node]Slot, depth int) (string, error) {
	if depth > maxProjectionDepth {
		return "", fmt.Errorf("%w: more than %d levels", ErrProjectionDepth, maxProjectionDepth)
	}

	index := make(map[*html.Node]*html.Node)
	clone := dom.Clone(n, index)

	var projected []*html.Node
	dom.Walk(n, func(orig *html.Node) bool {
		if rewrite.IsPlaceholder(orig) {
			projected = append(projected, orig)
			return false
		}
		return true
	})

	for _, orig := range projected {
		slot, ok := slots[orig]
		if !ok {
			continue
		}
		out, err := p.renderSlot(slot, slots, depth+1)
		if err != nil {
			return "", err
		}
		dom.Replace(index[orig], &html.Node{Type: html.RawNode, Data: out})
	}
	return dom.InnerHTML(clone)
}

func (p *Projector) renderSlot(slot Slot, slots map[*html.Node]Slot, depth int) (string, error) {
	var content string
	if slot.Value.Content != nil {
		var err error
		if content, err = p.renderFragment(slot.Value.Content, slots, depth); err != nil {
			return "", err
		}
	}

	tmpl, err := p.template(slot.Value.Component)
	if err != nil {
		return "", err
	}
	if tmpl == nil {
		return content, nil
	}

	var buf bytes.Buffer
	// #nosec G203 -- content was rendered from the sanitized tree
	view := slotView{ID: slot.ID, Props: slot.Value.Props, Content: template.HTML(content)}
	if err := tmpl.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrTemplateExecute, slot.Value.Component, err)
	}
	return buf.String(), nil
}

// template returns the template of component, loading it on first use, or
// nil when the component has none.
func (p *Projector) template(component string) (*template.Template, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if tmpl, ok := p.templates[component]; ok {
		return tmpl, nil
	}
	if p.missing[component] || p.loader == nil {
		return nil, nil
	}

	text, err := p.loader.LoadComponent(component)
	if err != nil {
		if assets.IsNotFound(err) || errors.Is(err, assets.ErrInvalidAssetName) {
			p.missing[component] = true
			return nil, nil
		}
		return nil, err
	}
	tmpl, err := parseComponent(component, text)
	if err != nil {
		return nil, err
	}
	p.templates[component] = tmpl
	return tmpl, nil
}

func parseComponent(component, text string) (*template.Template, error) {
	tmpl, err := template.New(component).Option("missingkey=zero").Funcs(template.FuncMap{
		"trusted": trustedHTML,
	}).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrTemplateParse, component, err)
	}
	return tmpl, nil
}

// trustedHTML marks markup taken from the sanitized input as safe.
func trustedHTML(v any) template.HTML {
	s, _ := v.(string)
	return template.HTML(s) // #nosec G203 -- props carry sanitized markup
}
