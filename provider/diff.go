package provider

import (
	"slices"

	"github.com/lexcodex/outlinemap/outline"
)

// Diff returns the patches that turn the outline old into next. Both are
// expected to have unique keys per sibling list (see Unique).
//
// Per sibling list the order is: delete vanished nodes, reorder the surviving
// ones, insert new ones before the next surviving node, update changed
// attributes, then recurse into surviving nodes.
func Diff(old, next []outline.SymbolNode) []outline.Patch {
	var patches []outline.Patch
	diffLevel(&patches, nil, old, next)
	return patches
}

func diffLevel(out *[]outline.Patch, path []string, old, next []outline.SymbolNode) {
	selector := outline.SelectorFor(path...)
	oldByKey := indexByKey(old)
	nextByKey := indexByKey(next)

	var deleted []outline.SymbolNode
	var oldCommon []string
	for _, node := range old {
		if _, ok := nextByKey[node.Key()]; ok {
			oldCommon = append(oldCommon, node.Key())
		} else {
			deleted = append(deleted, stub(node))
		}
	}
	if len(deleted) > 0 {
		*out = append(*out, outline.Patch{Selector: selector, Type: outline.PatchDelete, Nodes: deleted})
	}

	var newCommon []string
	var moved []outline.SymbolNode
	for _, node := range next {
		if _, ok := oldByKey[node.Key()]; ok {
			newCommon = append(newCommon, node.Key())
			moved = append(moved, stub(node))
		}
	}
	if !slices.Equal(oldCommon, newCommon) {
		*out = append(*out, outline.Patch{Selector: selector, Type: outline.PatchMove, Nodes: moved})
	}

	var run []outline.SymbolNode
	flush := func(before *outline.SymbolNode) {
		if len(run) == 0 {
			return
		}
		*out = append(*out, outline.Patch{Selector: selector, Type: outline.PatchInsert, Nodes: run, Before: before})
		run = nil
	}
	for _, node := range next {
		if _, ok := oldByKey[node.Key()]; ok {
			anchor := stub(node)
			flush(&anchor)
			continue
		}
		run = append(run, node)
	}
	flush(nil)

	for _, node := range next {
		prev, ok := oldByKey[node.Key()]
		if !ok {
			continue
		}
		childPath := append(slices.Clone(path), node.Key())
		diffAttrs(out, outline.SelectorFor(childPath...), prev, node)
		diffLevel(out, childPath, prev.Children, node.Children)
	}
}

// diffAttrs compares the provider-owned attributes. Expand is left alone once
// a node exists so user toggles survive refreshes.
func diffAttrs(out *[]outline.Patch, selector string, prev, node outline.SymbolNode) {
	if prev.Detail != node.Detail {
		*out = append(*out, outline.NewUpdatePatch(selector, outline.AttrDetail, node.Detail))
	}
	if prev.Range != node.Range {
		*out = append(*out, outline.NewUpdatePatch(selector, outline.AttrRange, node.Range))
	}
	if prev.InView != node.InView {
		*out = append(*out, outline.NewUpdatePatch(selector, outline.AttrInView, node.InView))
	}
	if prev.Focus != node.Focus {
		*out = append(*out, outline.NewUpdatePatch(selector, outline.AttrFocus, node.Focus))
	}
}

// Unique drops every sibling whose key already appeared earlier in the same
// list, recursively. The panel matches by first key, so later duplicates
// could never be addressed.
func Unique(nodes []outline.SymbolNode) []outline.SymbolNode {
	seen := make(map[string]bool, len(nodes))
	out := make([]outline.SymbolNode, 0, len(nodes))
	for _, node := range nodes {
		if seen[node.Key()] {
			continue
		}
		seen[node.Key()] = true
		node.Children = Unique(node.Children)
		out = append(out, node)
	}
	return out
}

func indexByKey(nodes []outline.SymbolNode) map[string]outline.SymbolNode {
	idx := make(map[string]outline.SymbolNode, len(nodes))
	for _, node := range nodes {
		if _, ok := idx[node.Key()]; !ok {
			idx[node.Key()] = node
		}
	}
	return idx
}

// stub is the identity-only form of a node used for references in patches.
func stub(node outline.SymbolNode) outline.SymbolNode {
	return outline.SymbolNode{Kind: node.Kind, Name: node.Name}
}
