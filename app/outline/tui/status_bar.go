package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lexcodex/outlinemap/outline"
)

// StatusBar renders the outlined file, provider state, depth limit and
// cursor position, with any notification on the right.
type StatusBar struct {
	title    string
	provider string
	depth    outline.Config
	rows     int
	cursor   int
}

func (s StatusBar) View(width int, toast string) string {
	depth := "unlimited"
	if s.depth.Limited() {
		depth = fmt.Sprintf("%d", s.depth.MaxDepth)
	}
	left := fmt.Sprintf("%s | %s | depth %s", truncate(s.title, 30), s.provider, depth)
	right := fmt.Sprintf("%d/%d", min(s.cursor+1, s.rows), s.rows)
	if toast != "" {
		right = toastStyle.Render(toast) + " | " + right
	}
	padding := width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if padding < 0 {
		padding = 0
	}
	return statusStyle.Render(left + strings.Repeat(" ", padding) + right)
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:1]
	}
	return "…" + s[len(s)-n+1:]
}
