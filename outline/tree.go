// Package outline holds the live outline tree and the machinery that keeps
// it in sync with a symbol provider: identity keys, rendering, patch
// application, derived visual state and message routing.
package outline

import "log"

// RootKey is the key of the synthetic root node.
const RootKey = "outline-root"

// Tree owns the live outline: the root node plus the renderer, applier and
// reactor wired to one attribute bus. It must only be used from the panel's
// event loop.
type Tree struct {
	Root *RenderedNode

	settings *Settings
	bus      *Bus
	renderer *Renderer
	applier  *Applier
	reactor  *Reactor
	logger   *log.Logger
}

// NewTree creates an empty outline. Navigation requests go to poster.
func NewTree(settings *Settings, poster Poster, logger *log.Logger) *Tree {
	if logger == nil {
		logger = log.Default()
	}
	if settings == nil {
		settings = NewSettings(DefaultConfig())
	}
	bus := NewBus()
	t := &Tree{
		settings: settings,
		bus:      bus,
		reactor:  NewReactor(settings, bus),
		logger:   logger,
	}
	t.renderer = NewRenderer(settings, bus, poster, logger)
	t.applier = NewApplier(t.renderer, settings, logger)
	t.Root = &RenderedNode{Key: RootKey, Leaf: true, Expand: true}
	bus.observe(t.Root)
	return t
}

// Settings returns the holder the tree reads its configuration from.
func (t *Tree) Settings() *Settings { return t.settings }

// Bus returns the attribute bus so other observers can subscribe.
func (t *Tree) Bus() *Bus { return t.bus }

// Resolve maps a selector to a live node. Each step picks the first child
// with the given key.
func (t *Tree) Resolve(selector string) (*RenderedNode, bool) {
	keys, err := ParseSelector(selector)
	if err != nil {
		return nil, false
	}
	node := t.Root
	for _, key := range keys {
		node = matchByKey(node.Children, key)
		if node == nil {
			return nil, false
		}
	}
	return node, true
}

// BatchResult counts what happened to a patch batch.
type BatchResult struct {
	Applied int
	Skipped int
	Failed  int
}

// ApplyBatch applies patches strictly in order, resolving every selector
// against the tree as it is at that moment. Patches whose selector does not
// resolve are skipped without side effects.
func (t *Tree) ApplyBatch(patches []Patch) BatchResult {
	var res BatchResult
	debug := t.settings.Load().Debug
	for _, patch := range patches {
		target, ok := t.Resolve(patch.Selector)
		if !ok {
			res.Skipped++
			if debug {
				t.logger.Printf("[outline] skip %s patch: selector %q not found", patch.Type, patch.Selector)
			}
			continue
		}
		if err := t.applier.Apply(patch, target, target); err != nil {
			res.Failed++
			t.logger.Printf("[outline] %v", err)
			continue
		}
		res.Applied++
	}
	return res
}

// Sweep re-derives depth dependent visual state for the whole tree.
func (t *Tree) Sweep() {
	t.reactor.Sweep(t.Root)
}

// Find returns the first node in document order whose key matches.
func (t *Tree) Find(key string) *RenderedNode {
	var found *RenderedNode
	t.Root.Walk(func(n *RenderedNode) bool {
		if n != t.Root && n.Key == key {
			found = n
			return false
		}
		return true
	})
	return found
}

// FindClass returns the first node in document order carrying class c.
func (t *Tree) FindClass(c Class) *RenderedNode {
	var found *RenderedNode
	t.Root.Walk(func(n *RenderedNode) bool {
		if n != t.Root && n.Visual.Classes.Has(c) {
			found = n
			return false
		}
		return true
	})
	return found
}

// MaxRenderedDepth is the depth of the deepest node currently in the tree.
func (t *Tree) MaxRenderedDepth() int {
	deepest := 0
	t.Root.Walk(func(n *RenderedNode) bool {
		if n.Depth > deepest {
			deepest = n.Depth
		}
		return true
	})
	return deepest
}
