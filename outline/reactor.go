package outline

import "strconv"

// observedAttrs are the attributes with visual consequences.
var observedAttrs = []Attr{
	AttrDetail,
	AttrExpand,
	AttrInView,
	AttrFocus,
	AttrDiagnosticType,
	AttrDiagnosticCount,
}

// Reactor translates stored attributes into Visual state. It never changes
// tree shape or data attributes.
type Reactor struct {
	settings *Settings
}

// NewReactor subscribes a reactor to bus.
func NewReactor(settings *Settings, bus *Bus) *Reactor {
	r := &Reactor{settings: settings}
	bus.Subscribe(r.React)
	return r
}

// React derives the visual consequence of one attribute change.
func (r *Reactor) React(change AttributeChange) {
	n := change.Node
	if n == nil {
		return
	}
	v := &n.Visual
	switch change.Attr {
	case AttrDetail:
		v.DetailText = n.Detail
	case AttrExpand:
		r.syncExpand(n, r.settings.Load())
	case AttrInView:
		v.Classes.Toggle(ClassInView, n.InView)
	case AttrFocus:
		v.Classes.Toggle(ClassFocus, n.Focus)
	case AttrDiagnosticType:
		v.Classes.Toggle(ClassDiagnosticError, n.DiagnosticType == "error")
		v.Classes.Toggle(ClassDiagnosticWarning, n.DiagnosticType == "warning")
	case AttrDiagnosticCount:
		count := n.DiagnosticCount
		v.Badge = diagnosticBadge(count)
		if count == -1 {
			v.BadgeTitle = "Contains elements with problems"
		} else {
			v.BadgeTitle = strconv.Itoa(count) + " problems in this element"
		}
		v.Classes.Toggle(ClassHasDiagnostic, count != 0)
		v.Classes.Toggle(ClassDiagnosticInChildren, count == -1)
	}
}

// Sweep re-evaluates the expand class of every node under root against the
// current max depth. It must run whenever the max depth changes because no
// attribute write announces that.
func (r *Reactor) Sweep(root *RenderedNode) {
	cfg := r.settings.Load()
	root.Walk(func(n *RenderedNode) bool {
		r.syncExpand(n, cfg)
		return true
	})
}

func (r *Reactor) syncExpand(n *RenderedNode, cfg Config) {
	n.Visual.Classes.Toggle(ClassExpand, n.Expand && !cfg.Collapsed(n.Depth))
}

func diagnosticBadge(count int) string {
	switch {
	case count > 9:
		return "9+"
	case count == -1, count == 0:
		return ""
	default:
		return strconv.Itoa(count)
	}
}
