package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexcodex/outlinemap/outline"
)

func TestDecorateOwnAndChildren(t *testing.T) {
	nodes := []outline.SymbolNode{
		node(outline.KindClass, "F", 0, 10,
			node(outline.KindMethod, "G", 2, 4)),
		node(outline.KindClass, "H", 11, 12),
	}

	decor := Decorate(nodes, []Diagnostic{{Line: 3, Severity: SeverityError}})
	assert.Equal(t, Decoration{Type: "error", Count: 1}, decor[pathKey([]string{"Class-F", "Method-G"})])
	assert.Equal(t, Decoration{Type: "error", Count: -1}, decor[pathKey([]string{"Class-F"})])
	assert.Equal(t, Decoration{}, decor[pathKey([]string{"Class-H"})])

	decor = Decorate(nodes, []Diagnostic{
		{Line: 3, Severity: SeverityError},
		{Line: 7, Severity: SeverityWarning},
		{Line: 8, Severity: SeverityWarning},
	})
	assert.Equal(t, Decoration{Type: "warning", Count: 2}, decor[pathKey([]string{"Class-F"})])
}

func TestDiffDecorationsDrivesBadges(t *testing.T) {
	nodes := []outline.SymbolNode{
		node(outline.KindClass, "F", 0, 10,
			node(outline.KindMethod, "G", 2, 4)),
	}
	tree := outline.NewTree(nil, nil, quietLogger())
	applyAll(t, tree, Diff(nil, nodes))

	decor := Decorate(nodes, []Diagnostic{{Line: 3, Severity: SeverityWarning}})
	applyAll(t, tree, DiffDecorations(nodes, nil, decor))

	f := tree.Find("Class-F")
	require.Equal(t, "", f.Visual.Badge)
	require.Equal(t, "Contains elements with problems", f.Visual.BadgeTitle)
	require.True(t, f.Visual.Classes.Has(outline.ClassDiagnosticInChildren))
	require.True(t, f.Visual.Classes.Has(outline.ClassDiagnosticWarning))

	g := tree.Find("Method-G")
	require.Equal(t, "1", g.Visual.Badge)
	require.True(t, g.Visual.Classes.Has(outline.ClassHasDiagnostic))

	applyAll(t, tree, DiffDecorations(nodes, decor, Decorate(nodes, nil)))
	require.False(t, f.Visual.Classes.Has(outline.ClassHasDiagnostic))
	require.False(t, f.Visual.Classes.Has(outline.ClassDiagnosticWarning))
	require.Equal(t, "", g.Visual.Badge)
	require.Empty(t, g.DiagnosticType)
}

func TestDiffDecorationsUnchangedIsEmpty(t *testing.T) {
	nodes := []outline.SymbolNode{node(outline.KindClass, "F", 0, 10)}
	decor := Decorate(nodes, []Diagnostic{{Line: 1, Severity: SeverityError}})
	require.Empty(t, DiffDecorations(nodes, decor, decor))
}
