package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lexcodex/outlinemap/outline"
)

// View composes the outline body, the filter or help line and the status bar.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	var bottom string
	if m.filtering || m.filter.Value() != "" {
		bottom = filterBarStyle.Width(m.width).Render(m.filter.View())
	} else {
		bottom = m.help.View(m.keys)
	}
	status := m.status.View(m.width, m.toast)
	return lipgloss.JoinVertical(lipgloss.Left, m.body.View(), bottom, status)
}

func (m Model) renderRows() string {
	if len(m.rows) == 0 {
		if m.filter.Value() != "" {
			return welcomeStyle.Render("No symbols match the filter.")
		}
		return welcomeStyle.Render("Waiting for symbols...")
	}
	pal := newPalette(m.tree.Settings().Load())
	lines := make([]string, 0, len(m.rows))
	for i, r := range m.rows {
		line := renderRow(pal, r)
		if i == m.cursor {
			line = cursorStyle.Width(max(m.width, lipgloss.Width(line))).Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// renderRow draws one node: in-view gutter, indentation, expand indicator,
// kind icon, name, detail and diagnostic badge.
func renderRow(pal palette, r row) string {
	node := r.node
	classes := node.Visual.Classes
	var sb strings.Builder

	if classes.Has(outline.ClassInView) {
		sb.WriteString(pal.gutter.Render("▌"))
	} else {
		sb.WriteString(" ")
	}
	sb.WriteString(strings.Repeat("  ", r.depth))
	sb.WriteString(indicatorStyle.Render(expandIndicator(node)))
	sb.WriteString(" ")
	sb.WriteString(pal.name(node).Render(iconFor(node.Kind) + " " + node.Name))

	if node.Visual.DetailText != "" {
		sb.WriteString(" ")
		sb.WriteString(detailStyle.Render(node.Visual.DetailText))
	}
	if badge := renderBadge(node); badge != "" {
		sb.WriteString(" ")
		sb.WriteString(badge)
	}
	return sb.String()
}

func expandIndicator(node *outline.RenderedNode) string {
	switch {
	case node.Leaf:
		return " "
	case node.Visual.Classes.Has(outline.ClassExpand):
		return "▾"
	default:
		return "▸"
	}
}

func renderBadge(node *outline.RenderedNode) string {
	classes := node.Visual.Classes
	if !classes.Has(outline.ClassHasDiagnostic) {
		return ""
	}
	style := warningStyle
	if classes.Has(outline.ClassDiagnosticError) {
		style = errorStyle
	}
	if classes.Has(outline.ClassDiagnosticInChildren) {
		return style.Render("●")
	}
	return style.Render(node.Visual.Badge)
}

// RenderPlain draws the whole outline without styling or collapse state, one
// node per line. Collapsed nodes are marked with '+'.
func RenderPlain(tree *outline.Tree) string {
	var sb strings.Builder
	var walk func(nodes []*outline.RenderedNode, depth int)
	walk = func(nodes []*outline.RenderedNode, depth int) {
		for _, node := range nodes {
			sb.WriteString(strings.Repeat("  ", depth))
			switch {
			case node.Leaf:
				sb.WriteString("- ")
			case node.Visual.Classes.Has(outline.ClassExpand):
				sb.WriteString("v ")
			default:
				sb.WriteString("+ ")
			}
			sb.WriteString(string(node.Kind))
			sb.WriteString(" ")
			sb.WriteString(node.Name)
			if node.Visual.DetailText != "" {
				sb.WriteString(" (" + node.Visual.DetailText + ")")
			}
			if names := node.Visual.Classes.Names(); len(names) > 0 {
				sb.WriteString(" [" + strings.Join(names, " ") + "]")
			}
			if node.Visual.Badge != "" {
				sb.WriteString(" {" + node.Visual.Badge + "}")
			}
			sb.WriteString("\n")
			walk(node.Children, depth+1)
		}
	}
	walk(tree.Root.Children, 0)
	return sb.String()
}
