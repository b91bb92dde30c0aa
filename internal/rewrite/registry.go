package rewrite

import (
	"maps"
	"strconv"

	"golang.org/x/net/html"

	"github.com/alnah/go-contentbody/internal/dom"
)

// SlotAttr marks placeholder nodes in the tree.
const SlotAttr = "data-slot"

// Value is what the rendering boundary mounts into a placeholder: a named
// component, its props, and the original children it must keep showing.
type Value struct {
	Component string
	Props     map[string]any

	// Content is a detached fragment holding the nodes moved out of the tree
	// for this value, or nil when the value does not wrap existing content.
	Content *html.Node
}

// Slot pairs a placeholder node in the tree with the value projected into it.
type Slot struct {
	ID          string
	Placeholder *html.Node
	Value       Value
}

// Registry owns the slots created for one content tree, in creation order.
type Registry struct {
	slots []Slot
	byPH  map[*html.Node]int
	byFr  map[*html.Node]int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byPH: make(map[*html.Node]int),
		byFr: make(map[*html.Node]int),
	}
}

// Replace swaps target for a new placeholder and records v for it.
func (r *Registry) Replace(target *html.Node, v Value) (*html.Node, error) {
	if target.Parent == nil {
		return nil, dom.ErrRangeDetached
	}
	ph := r.newPlaceholder()
	dom.Replace(target, ph)
	r.add(ph, v)
	return ph, nil
}

// Insert prepends a new placeholder inside container and records v for it.
func (r *Registry) Insert(container *html.Node, v Value) *html.Node {
	ph := r.newPlaceholder()
	dom.Prepend(container, ph)
	r.add(ph, v)
	return ph
}

// Slots returns a copy of the slots in creation order.
func (r *Registry) Slots() []Slot {
	out := make([]Slot, len(r.slots))
	copy(out, r.slots)
	return out
}

// Len returns the number of slots.
func (r *Registry) Len() int { return len(r.slots) }

// Lookup returns the slot whose placeholder is n.
func (r *Registry) Lookup(n *html.Node) (Slot, bool) {
	i, ok := r.byPH[n]
	if !ok {
		return Slot{}, false
	}
	return r.slots[i], true
}

// Owner returns the slot whose Content fragment is frag.
func (r *Registry) Owner(frag *html.Node) (Slot, bool) {
	i, ok := r.byFr[frag]
	if !ok {
		return Slot{}, false
	}
	return r.slots[i], true
}

// Reset drops every slot.
func (r *Registry) Reset() {
	r.slots = nil
	clear(r.byPH)
	clear(r.byFr)
}

// IsPlaceholder reports whether n is a slot placeholder.
func IsPlaceholder(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	_, ok := dom.Attr(n, SlotAttr)
	return ok
}

func (r *Registry) newPlaceholder() *html.Node {
	id := "slot-" + strconv.Itoa(len(r.slots))
	return dom.NewElement("span", html.Attribute{Key: SlotAttr, Val: id})
}

func (r *Registry) add(ph *html.Node, v Value) {
	id, _ := dom.Attr(ph, SlotAttr)
	v.Props = maps.Clone(v.Props)
	r.slots = append(r.slots, Slot{ID: id, Placeholder: ph, Value: v})
	r.byPH[ph] = len(r.slots) - 1
	if v.Content != nil {
		r.byFr[v.Content] = len(r.slots) - 1
	}
}
