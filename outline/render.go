package outline

import "log"

// Renderer materializes SymbolNodes into live RenderedNodes.
type Renderer struct {
	settings *Settings
	bus      *Bus
	poster   Poster
	logger   *log.Logger
}

// NewRenderer wires a renderer to the settings it reads, the bus new nodes
// are observed on and the host that receives navigation requests.
func NewRenderer(settings *Settings, bus *Bus, poster Poster, logger *log.Logger) *Renderer {
	if logger == nil {
		logger = log.Default()
	}
	return &Renderer{settings: settings, bus: bus, poster: poster, logger: logger}
}

// Render builds the subtree for sym at depth. Children are rendered at
// depth+1 in their original order. Nodes at or beyond the max depth start
// collapsed whatever their own expand flag says.
func (r *Renderer) Render(sym SymbolNode, depth int) *RenderedNode {
	cfg := r.settings.Load()
	node := &RenderedNode{
		Key:    sym.Key(),
		Kind:   sym.Kind,
		Name:   sym.Name,
		Detail: sym.Detail,
		Expand: sym.Expand && !cfg.Collapsed(depth),
		InView: sym.InView,
		Focus:  sym.Focus,
		Range:  sym.Range,
		Leaf:   len(sym.Children) == 0,
		Depth:  depth,
	}
	for _, child := range sym.Children {
		c := r.Render(child, depth+1)
		c.parent = node
		node.Children = append(node.Children, c)
	}

	node.onToggle = func() {
		node.setExpand(!node.Expand)
	}
	node.onActivate = func() {
		if r.poster == nil {
			return
		}
		if err := r.poster.Post(NewGotoMessage(node.Range.Start)); err != nil {
			r.logger.Printf("[outline] goto %s: %v", node.Key, err)
		}
	}

	r.bus.observe(node)
	return node
}
