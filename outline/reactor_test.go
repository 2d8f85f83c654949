package outline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setCount(t *testing.T, tree *Tree, sel string, count int) {
	t.Helper()
	res := tree.ApplyBatch([]Patch{NewUpdatePatch(sel, AttrDiagnosticCount, count)})
	require.Equal(t, 1, res.Applied)
}

func TestDiagnosticBadge(t *testing.T) {
	tree := newTestTree(t, sym(KindClass, "A"))
	a := tree.Root.Children[0]
	sel := SelectorFor("Class-A")

	setCount(t, tree, sel, 15)
	assert.Equal(t, "9+", a.Visual.Badge)
	assert.Equal(t, "15 problems in this element", a.Visual.BadgeTitle)
	assert.True(t, a.Visual.Classes.Has(ClassHasDiagnostic))
	assert.False(t, a.Visual.Classes.Has(ClassDiagnosticInChildren))

	setCount(t, tree, sel, -1)
	assert.Equal(t, "", a.Visual.Badge)
	assert.Equal(t, "Contains elements with problems", a.Visual.BadgeTitle)
	assert.True(t, a.Visual.Classes.Has(ClassHasDiagnostic))
	assert.True(t, a.Visual.Classes.Has(ClassDiagnosticInChildren))

	setCount(t, tree, sel, 3)
	assert.Equal(t, "3", a.Visual.Badge)
	assert.False(t, a.Visual.Classes.Has(ClassDiagnosticInChildren))

	setCount(t, tree, sel, 0)
	assert.Equal(t, "", a.Visual.Badge)
	assert.False(t, a.Visual.Classes.Has(ClassHasDiagnostic))
	assert.False(t, a.Visual.Classes.Has(ClassDiagnosticInChildren))
}

func TestDiagnosticTypeIsExclusive(t *testing.T) {
	tree := newTestTree(t, sym(KindClass, "A"))
	a := tree.Root.Children[0]
	sel := SelectorFor("Class-A")

	tree.ApplyBatch([]Patch{NewUpdatePatch(sel, AttrDiagnosticType, "error")})
	assert.True(t, a.Visual.Classes.Has(ClassDiagnosticError))
	assert.False(t, a.Visual.Classes.Has(ClassDiagnosticWarning))

	tree.ApplyBatch([]Patch{NewUpdatePatch(sel, AttrDiagnosticType, "warning")})
	assert.False(t, a.Visual.Classes.Has(ClassDiagnosticError))
	assert.True(t, a.Visual.Classes.Has(ClassDiagnosticWarning))

	tree.ApplyBatch([]Patch{NewUpdatePatch(sel, AttrDiagnosticType, nil)})
	assert.False(t, a.Visual.Classes.Has(ClassDiagnosticError))
	assert.False(t, a.Visual.Classes.Has(ClassDiagnosticWarning))
}

func TestInitialVisualStateDerivedOnRender(t *testing.T) {
	node := sym(KindClass, "A")
	node.Detail = "struct"
	node.InView = true
	node.Focus = true
	tree := newTestTree(t, node)
	a := tree.Root.Children[0]

	assert.Equal(t, "struct", a.Visual.DetailText)
	assert.Equal(t, []string{"expand", "in-view", "focus"}, a.Visual.Classes.Names())
	assert.Equal(t, "", a.Visual.Badge)
}

func TestExpandBeyondMaxDepthRevealedBySweep(t *testing.T) {
	settings := NewSettings(Config{MaxDepth: 1})
	tree := NewTree(settings, nil, quietLogger())
	tree.ApplyBatch([]Patch{{
		Selector: RootSelector,
		Type:     PatchInsert,
		Nodes:    []SymbolNode{sym(KindClass, "A", sym(KindMethod, "m"))},
	}})
	a := tree.Root.Children[0]
	require.False(t, a.Expand)

	tree.ApplyBatch([]Patch{NewUpdatePatch(SelectorFor("Class-A"), AttrExpand, true)})
	require.True(t, a.Expand)
	require.False(t, a.Visual.Classes.Has(ClassExpand))

	a.Toggle()
	a.Toggle()
	require.True(t, a.Expand)
	require.False(t, a.Visual.Classes.Has(ClassExpand))

	settings.Store(Config{MaxDepth: 2})
	require.False(t, a.Visual.Classes.Has(ClassExpand))
	tree.Sweep()
	require.True(t, a.Visual.Classes.Has(ClassExpand))

	settings.Store(Config{MaxDepth: 1})
	tree.Sweep()
	require.False(t, a.Visual.Classes.Has(ClassExpand))
	require.True(t, a.Expand)
}

func TestClassSet(t *testing.T) {
	var s ClassSet
	s.Toggle(ClassFocus, true)
	s.Toggle(ClassInView, true)
	s.Toggle(ClassFocus, false)
	assert.Equal(t, []string{"in-view"}, s.Names())

	class, ok := ParseClass("diagnostic-in-children")
	assert.True(t, ok)
	assert.Equal(t, ClassDiagnosticInChildren, class)
	_, ok = ParseClass("Class-Foo")
	assert.False(t, ok)
}
