package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/lexcodex/outlinemap/outline"
)

var (
	colorPrimary = lipgloss.Color("39")
	colorWarning = lipgloss.Color("220")
	colorError   = lipgloss.Color("196")
	colorDim     = lipgloss.Color("241")

	indicatorStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	detailStyle = lipgloss.NewStyle().
			Foreground(colorDim).
			Italic(true)

	cursorStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("237"))

	errorStyle = lipgloss.NewStyle().
			Foreground(colorError)

	warningStyle = lipgloss.NewStyle().
			Foreground(colorWarning)

	statusStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255")).
			Padding(0, 1)

	toastStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	filterBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("237")).
			Padding(0, 1)

	welcomeStyle = lipgloss.NewStyle().
			Foreground(colorDim).
			Italic(true)
)

// palette resolves the configured colors into styles for one render pass.
type palette struct {
	cfg    outline.Config
	focus  lipgloss.Style
	gutter lipgloss.Style
}

func newPalette(cfg outline.Config) palette {
	p := palette{
		cfg:    cfg,
		focus:  lipgloss.NewStyle().Bold(true).Underline(true),
		gutter: lipgloss.NewStyle().Foreground(colorDim),
	}
	if color, ok := cfg.Colors[outline.ColorFocusingItem]; ok {
		p.focus = p.focus.Foreground(lipgloss.Color(color))
	}
	if color, ok := cfg.Colors[outline.ColorVisibleRange]; ok {
		p.gutter = p.gutter.Foreground(lipgloss.Color(color))
	}
	return p
}

// name styles a symbol name by kind, then by its focus and diagnostic state.
func (p palette) name(node *outline.RenderedNode) lipgloss.Style {
	style := lipgloss.NewStyle()
	if color, ok := p.cfg.KindColor(node.Kind); ok {
		style = style.Foreground(lipgloss.Color(color))
	}
	classes := node.Visual.Classes
	switch {
	case classes.Has(outline.ClassDiagnosticError):
		style = style.Foreground(colorError)
	case classes.Has(outline.ClassDiagnosticWarning):
		style = style.Foreground(colorWarning)
	}
	if classes.Has(outline.ClassFocus) {
		style = p.focus
	}
	return style
}

// iconGlyphs maps icon names to a single terminal glyph.
var iconGlyphs = map[string]string{
	"folder":                "▤",
	"tag":                   "#",
	"symbol-file":           "F",
	"symbol-module":         "M",
	"symbol-namespace":      "N",
	"symbol-package":        "P",
	"symbol-class":          "C",
	"symbol-method":         "m",
	"symbol-property":       "p",
	"symbol-field":          "f",
	"symbol-constructor":    "c",
	"symbol-enum":           "E",
	"symbol-interface":      "I",
	"symbol-function":       "ƒ",
	"symbol-variable":       "v",
	"symbol-constant":       "κ",
	"symbol-string":         "s",
	"symbol-number":         "n",
	"symbol-boolean":        "b",
	"symbol-array":          "a",
	"symbol-object":         "o",
	"symbol-key":            "k",
	"symbol-null":           "∅",
	"symbol-enum-member":    "e",
	"symbol-struct":         "S",
	"symbol-event":          "!",
	"symbol-operator":       "±",
	"symbol-type-parameter": "T",
}

func iconFor(kind outline.SymbolKind) string {
	if glyph, ok := iconGlyphs[outline.MapIcon(kind)]; ok {
		return glyph
	}
	return "•"
}
