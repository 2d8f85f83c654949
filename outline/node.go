package outline

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Attr names one writable attribute of a RenderedNode.
type Attr int

const (
	AttrUnknown Attr = iota
	AttrDetail
	AttrExpand
	AttrInView
	AttrFocus
	AttrRange
	AttrDiagnosticType
	AttrDiagnosticCount
)

var attrNames = map[Attr]string{
	AttrDetail:          "detail",
	AttrExpand:          "expand",
	AttrInView:          "inView",
	AttrFocus:           "focus",
	AttrRange:           "range",
	AttrDiagnosticType:  "diagnosticType",
	AttrDiagnosticCount: "diagnosticCount",
}

func (a Attr) String() string {
	if name, ok := attrNames[a]; ok {
		return name
	}
	return "unknown"
}

// ParseAttr maps a wire property name onto an Attr. Matching ignores case so
// both "inView" and the dataset spelling "inview" resolve.
func ParseAttr(name string) Attr {
	for attr, known := range attrNames {
		if strings.EqualFold(known, name) {
			return attr
		}
	}
	return AttrUnknown
}

// Class is one derived visual flag of a rendered node.
type Class uint16

const (
	ClassExpand Class = 1 << iota
	ClassInView
	ClassFocus
	ClassDiagnosticError
	ClassDiagnosticWarning
	ClassHasDiagnostic
	ClassDiagnosticInChildren
)

var classNames = []struct {
	class Class
	name  string
}{
	{ClassExpand, "expand"},
	{ClassInView, "in-view"},
	{ClassFocus, "focus"},
	{ClassDiagnosticError, "diagnostic-error"},
	{ClassDiagnosticWarning, "diagnostic-warning"},
	{ClassHasDiagnostic, "has-diagnostic"},
	{ClassDiagnosticInChildren, "diagnostic-in-children"},
}

// ParseClass resolves a class name such as "in-view".
func ParseClass(name string) (Class, bool) {
	for _, entry := range classNames {
		if entry.name == name {
			return entry.class, true
		}
	}
	return 0, false
}

// ClassSet holds the visual classes currently applied to a node.
type ClassSet Class

// Has reports whether c is set.
func (s ClassSet) Has(c Class) bool { return Class(s)&c != 0 }

// Toggle sets or clears c.
func (s *ClassSet) Toggle(c Class, on bool) {
	if on {
		*s = ClassSet(Class(*s) | c)
		return
	}
	*s = ClassSet(Class(*s) &^ c)
}

// Names lists the set classes in a stable order.
func (s ClassSet) Names() []string {
	var names []string
	for _, entry := range classNames {
		if s.Has(entry.class) {
			names = append(names, entry.name)
		}
	}
	return names
}

// Visual is the presentational state derived from a node's attributes. Only
// the Reactor writes it.
type Visual struct {
	Classes    ClassSet
	DetailText string
	Badge      string
	BadgeTitle string
}

// RenderedNode is the live counterpart of a SymbolNode. Its Key never
// changes; attributes change through SetAttr so observers see every write.
type RenderedNode struct {
	Key  string
	Kind SymbolKind
	Name string

	Detail          string
	Expand          bool
	InView          bool
	Focus           bool
	Range           Range
	DiagnosticType  string
	DiagnosticCount int
	// Extra keeps properties this build does not know about.
	Extra map[string]string

	Leaf     bool
	Depth    int
	Children []*RenderedNode
	Visual   Visual

	parent     *RenderedNode
	bus        *Bus
	onToggle   func()
	onActivate func()
}

// Parent returns the node owning this node's sibling list.
func (n *RenderedNode) Parent() *RenderedNode { return n.parent }

// Toggle runs the node's expand toggle behavior. Only this node changes.
func (n *RenderedNode) Toggle() {
	if n != nil && n.onToggle != nil {
		n.onToggle()
	}
}

// Activate runs the node's label behavior (navigation request).
func (n *RenderedNode) Activate() {
	if n != nil && n.onActivate != nil {
		n.onActivate()
	}
}

// SetAttr writes one attribute from its wire form. A nil value clears the
// attribute. Every successful write is published on the node's bus.
func (n *RenderedNode) SetAttr(name string, value *string) error {
	attr := ParseAttr(name)
	raw := ""
	if value != nil {
		raw = *value
	}
	switch attr {
	case AttrDetail:
		n.Detail = raw
	case AttrExpand:
		n.Expand = raw == "true"
	case AttrInView:
		n.InView = raw == "true"
	case AttrFocus:
		n.Focus = raw == "true"
	case AttrDiagnosticType:
		n.DiagnosticType = raw
	case AttrDiagnosticCount:
		count := 0
		if raw != "" {
			parsed, err := strconv.Atoi(strings.TrimSpace(raw))
			if err != nil {
				return fmt.Errorf("diagnostic count %q: %w", raw, err)
			}
			count = parsed
		}
		n.DiagnosticCount = count
	case AttrRange:
		var rng Range
		if raw != "" {
			if err := json.Unmarshal([]byte(raw), &rng); err != nil {
				return fmt.Errorf("range %q: %w", raw, err)
			}
		}
		n.Range = rng
	default:
		if n.Extra == nil {
			n.Extra = make(map[string]string)
		}
		if value == nil {
			delete(n.Extra, name)
		} else {
			n.Extra[name] = raw
		}
	}
	n.bus.publish(AttributeChange{Node: n, Attr: attr, Name: name})
	return nil
}

// setExpand is the typed shortcut used by the applier and toggle behavior.
func (n *RenderedNode) setExpand(open bool) {
	value := strconv.FormatBool(open)
	_ = n.SetAttr(AttrExpand.String(), &value)
}

func (n *RenderedNode) indexOf(child *RenderedNode) int {
	for i, c := range n.Children {
		if c == child {
			return i
		}
	}
	return -1
}

func (n *RenderedNode) removeChild(child *RenderedNode) bool {
	idx := n.indexOf(child)
	if idx < 0 {
		return false
	}
	n.Children = append(n.Children[:idx], n.Children[idx+1:]...)
	child.parent = nil
	return true
}

// insertBefore places child before anchor, or at the end when anchor is nil
// or no longer one of n's children.
func (n *RenderedNode) insertBefore(child, anchor *RenderedNode) {
	if anchor == child {
		// Inserting a node before itself keeps it where it is.
		anchor = nil
		if i := n.indexOf(child); i >= 0 && i+1 < len(n.Children) {
			anchor = n.Children[i+1]
		}
	}
	if child.parent != nil {
		child.parent.removeChild(child)
	}
	idx := len(n.Children)
	if anchor != nil {
		if i := n.indexOf(anchor); i >= 0 {
			idx = i
		}
	}
	n.Children = append(n.Children, nil)
	copy(n.Children[idx+1:], n.Children[idx:])
	n.Children[idx] = child
	child.parent = n
}

// Walk visits n and its descendants depth-first in document order. Returning
// false from fn stops the walk.
func (n *RenderedNode) Walk(fn func(*RenderedNode) bool) bool {
	if n == nil {
		return true
	}
	if !fn(n) {
		return false
	}
	for _, child := range n.Children {
		if !child.Walk(fn) {
			return false
		}
	}
	return true
}
