package provider

import (
	"io"
	"log"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lexcodex/outlinemap/outline"
)

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func node(kind outline.SymbolKind, name string, start, end int, children ...outline.SymbolNode) outline.SymbolNode {
	return outline.SymbolNode{
		Kind:     kind,
		Name:     name,
		Expand:   true,
		Range:    outline.Range{Start: outline.Position{Line: start}, End: outline.Position{Line: end}},
		Children: children,
	}
}

// shape is the comparable projection of an outline used by the tests.
type shape struct {
	Key      string
	Detail   string
	Range    outline.Range
	InView   bool
	Focus    bool
	Children []shape
}

func shapeOfSymbols(nodes []outline.SymbolNode) []shape {
	var out []shape
	for _, n := range nodes {
		out = append(out, shape{
			Key:      n.Key(),
			Detail:   n.Detail,
			Range:    n.Range,
			InView:   n.InView,
			Focus:    n.Focus,
			Children: shapeOfSymbols(n.Children),
		})
	}
	return out
}

func shapeOfTree(nodes []*outline.RenderedNode) []shape {
	var out []shape
	for _, n := range nodes {
		out = append(out, shape{
			Key:      n.Key,
			Detail:   n.Detail,
			Range:    n.Range,
			InView:   n.InView,
			Focus:    n.Focus,
			Children: shapeOfTree(n.Children),
		})
	}
	return out
}

func applyAll(t *testing.T, tree *outline.Tree, patches []outline.Patch) {
	t.Helper()
	res := tree.ApplyBatch(patches)
	require.Zero(t, res.Failed)
	require.Zero(t, res.Skipped)
}

func TestDiffTransformsTree(t *testing.T) {
	old := []outline.SymbolNode{
		node(outline.KindClass, "A", 0, 10,
			node(outline.KindMethod, "a1", 1, 2),
			node(outline.KindMethod, "a2", 3, 4)),
		node(outline.KindClass, "B", 11, 12),
		node(outline.KindClass, "C", 13, 20,
			node(outline.KindField, "c1", 14, 14)),
	}
	next := []outline.SymbolNode{
		node(outline.KindClass, "C", 0, 8,
			node(outline.KindField, "c1", 1, 1),
			node(outline.KindField, "c2", 2, 2)),
		node(outline.KindFunction, "X", 9, 9),
		node(outline.KindClass, "A", 10, 20,
			node(outline.KindMethod, "a2", 11, 12)),
		node(outline.KindClass, "D", 21, 22),
	}
	next[2].Detail = "renamed"
	next[0].Children[1].Focus = true

	tree := outline.NewTree(nil, nil, quietLogger())
	applyAll(t, tree, Diff(nil, old))
	require.Equal(t, shapeOfSymbols(old), shapeOfTree(tree.Root.Children))

	applyAll(t, tree, Diff(old, next))
	require.Equal(t, shapeOfSymbols(next), shapeOfTree(tree.Root.Children))
	require.True(t, tree.Find("Class-A").Leaf == false)
	require.Equal(t, "renamed", tree.Find("Class-A").Visual.DetailText)
}

func TestDiffToEmptyAndBack(t *testing.T) {
	old := []outline.SymbolNode{node(outline.KindClass, "A", 0, 1), node(outline.KindClass, "B", 2, 3)}

	tree := outline.NewTree(nil, nil, quietLogger())
	applyAll(t, tree, Diff(nil, old))
	applyAll(t, tree, Diff(old, nil))
	require.Empty(t, tree.Root.Children)
	require.True(t, tree.Root.Leaf)

	applyAll(t, tree, Diff(nil, old))
	require.Equal(t, shapeOfSymbols(old), shapeOfTree(tree.Root.Children))
}

func TestDiffIdenticalIsEmpty(t *testing.T) {
	old := []outline.SymbolNode{node(outline.KindClass, "A", 0, 5, node(outline.KindMethod, "m", 1, 2))}
	require.Empty(t, Diff(old, old))
}

func TestDiffLeavesExpandAlone(t *testing.T) {
	old := []outline.SymbolNode{node(outline.KindClass, "A", 0, 5, node(outline.KindMethod, "m", 1, 2))}
	next := []outline.SymbolNode{node(outline.KindClass, "A", 0, 5, node(outline.KindMethod, "m", 1, 2))}
	next[0].Expand = false
	require.Empty(t, Diff(old, next))
}

func TestDiffMovesOnlyWhenOrderChanges(t *testing.T) {
	old := []outline.SymbolNode{node(outline.KindClass, "A", 0, 1), node(outline.KindClass, "B", 2, 3)}
	next := []outline.SymbolNode{node(outline.KindClass, "A", 0, 1), node(outline.KindClass, "N", 2, 2), node(outline.KindClass, "B", 3, 4)}

	patches := Diff(old, next)
	for _, p := range patches {
		require.NotEqual(t, outline.PatchMove, p.Type)
	}
	require.Equal(t, outline.PatchInsert, patches[0].Type)
	require.Equal(t, "Class-B", patches[0].Before.Key())
}

func TestUniqueKeepsFirst(t *testing.T) {
	first := node(outline.KindFunction, "init", 0, 1)
	first.Detail = "first"
	second := node(outline.KindFunction, "init", 2, 3)
	second.Detail = "second"
	parent := node(outline.KindModule, "m", 0, 9, first, second)

	out := Unique([]outline.SymbolNode{parent, node(outline.KindModule, "m", 10, 11)})
	require.Len(t, out, 1)
	require.Len(t, out[0].Children, 1)
	require.Equal(t, "first", out[0].Children[0].Detail)
}
