package outline

import (
	"fmt"
	"log"
)

// Applier executes single patches against already resolved nodes. It only
// touches data attributes and tree shape; visual state is left to the Reactor.
type Applier struct {
	renderer *Renderer
	settings *Settings
	logger   *log.Logger
}

// NewApplier returns an applier that renders inserted nodes with renderer.
func NewApplier(renderer *Renderer, settings *Settings, logger *log.Logger) *Applier {
	if logger == nil {
		logger = log.Default()
	}
	return &Applier{renderer: renderer, settings: settings, logger: logger}
}

// Apply runs patch against target. container owns the sibling list the
// structural operations work on; for tree patches it is target itself.
// Unknown patch types are ignored.
func (a *Applier) Apply(patch Patch, target, container *RenderedNode) error {
	if target == nil || container == nil {
		return nil
	}
	switch patch.Type {
	case PatchUpdate:
		return a.update(patch, target)
	case PatchMove:
		a.move(patch, container)
	case PatchInsert:
		a.insert(patch, container)
		target.Leaf = false
		target.setExpand(true)
	case PatchDelete:
		a.delete(patch, container)
		target.Leaf = len(container.Children) == 0
	default:
		a.debugf("ignoring patch type %q on %s", patch.Type, patch.Selector)
	}
	return nil
}

func (a *Applier) update(patch Patch, target *RenderedNode) error {
	if err := target.SetAttr(patch.Property, patch.StringValue()); err != nil {
		return fmt.Errorf("update %s.%s: %w", target.Key, patch.Property, err)
	}
	return nil
}

// move relocates existing children. Nodes and the anchor are matched against
// the sibling list as it was before the patch, and each node is placed right
// before the anchor in turn, so the patch order becomes the final order.
func (a *Applier) move(patch Patch, container *RenderedNode) {
	siblings := snapshot(container.Children)
	before := MatchKey(siblings, patch.Before)
	for i := range patch.Nodes {
		node := MatchKey(siblings, &patch.Nodes[i])
		if node == nil {
			a.debugf("move: %s not found", patch.Nodes[i].Key())
			continue
		}
		container.insertBefore(node, before)
	}
}

func (a *Applier) insert(patch Patch, container *RenderedNode) {
	before := MatchKey(container.Children, patch.Before)
	depth := container.Depth + 1
	for _, sym := range patch.Nodes {
		container.insertBefore(a.renderer.Render(sym, depth), before)
	}
}

func (a *Applier) delete(patch Patch, container *RenderedNode) {
	siblings := snapshot(container.Children)
	for i := range patch.Nodes {
		node := MatchKey(siblings, &patch.Nodes[i])
		if node == nil {
			a.debugf("delete: %s not found", patch.Nodes[i].Key())
			continue
		}
		container.removeChild(node)
	}
}

func (a *Applier) debugf(format string, args ...any) {
	if a.settings.Load().Debug {
		a.logger.Printf("[outline] "+format, args...)
	}
}

func snapshot(nodes []*RenderedNode) []*RenderedNode {
	out := make([]*RenderedNode, len(nodes))
	copy(out, nodes)
	return out
}
