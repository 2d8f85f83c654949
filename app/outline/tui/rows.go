package tui

import (
	"strings"

	"github.com/lexcodex/outlinemap/outline"
)

// row is one visible line of the outline.
type row struct {
	node  *outline.RenderedNode
	depth int
}

// visibleRows flattens the nodes a reader can currently see: a node's children
// show only while it carries the expand class. A non-empty filter instead
// shows every node whose name matches, together with its ancestors.
func visibleRows(root *outline.RenderedNode, filter string) []row {
	var rows []row
	if root == nil {
		return rows
	}
	filter = strings.ToLower(strings.TrimSpace(filter))
	for _, child := range root.Children {
		if filter == "" {
			rows = appendVisible(rows, child, 0)
		} else {
			rows, _ = appendMatching(rows, child, 0, filter)
		}
	}
	return rows
}

func appendVisible(rows []row, node *outline.RenderedNode, depth int) []row {
	rows = append(rows, row{node: node, depth: depth})
	if node.Leaf || !node.Visual.Classes.Has(outline.ClassExpand) {
		return rows
	}
	for _, child := range node.Children {
		rows = appendVisible(rows, child, depth+1)
	}
	return rows
}

func appendMatching(rows []row, node *outline.RenderedNode, depth int, filter string) ([]row, bool) {
	mark := len(rows)
	rows = append(rows, row{node: node, depth: depth})
	matched := strings.Contains(strings.ToLower(node.Name), filter)
	for _, child := range node.Children {
		var childMatched bool
		rows, childMatched = appendMatching(rows, child, depth+1, filter)
		matched = matched || childMatched
	}
	if !matched {
		return rows[:mark], false
	}
	return rows, true
}

// indexOf returns the row showing node, or the row of its nearest visible
// ancestor, or -1.
func indexOf(rows []row, node *outline.RenderedNode) int {
	for n := node; n != nil; n = n.Parent() {
		for i, r := range rows {
			if r.node == n {
				return i
			}
		}
	}
	return -1
}
