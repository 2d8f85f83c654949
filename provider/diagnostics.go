package provider

import (
	"strings"

	"github.com/lexcodex/outlinemap/outline"
)

// Severity mirrors the LSP diagnostic severities the panel distinguishes.
type Severity int

const (
	SeverityError   Severity = 1
	SeverityWarning Severity = 2
)

// Diagnostic is the part of an LSP diagnostic the outline needs.
type Diagnostic struct {
	Line     int
	Severity Severity
}

// Decoration is the diagnostic summary shown on one node. Count is -1 when
// only descendants have problems.
type Decoration struct {
	Type  string
	Count int
}

// Decorate summarizes diags per node. Keys are node paths as built by
// pathKey. Nodes without problems get the zero Decoration.
func Decorate(nodes []outline.SymbolNode, diags []Diagnostic) map[string]Decoration {
	out := make(map[string]Decoration)
	decorateLevel(out, nil, nodes, diags)
	return out
}

// decorateLevel fills out for nodes and returns the worst severity seen in
// the level, 0 when clean.
func decorateLevel(out map[string]Decoration, path []string, nodes []outline.SymbolNode, diags []Diagnostic) Severity {
	var worst Severity
	for _, node := range nodes {
		nodePath := append(append([]string(nil), path...), node.Key())
		var inside []Diagnostic
		for _, d := range diags {
			if d.Line >= node.Range.Start.Line && d.Line <= node.Range.End.Line {
				inside = append(inside, d)
			}
		}
		childWorst := decorateLevel(out, nodePath, node.Children, inside)

		var own []Diagnostic
		for _, d := range inside {
			if !inAnyChild(node.Children, d.Line) {
				own = append(own, d)
			}
		}
		var dec Decoration
		ownWorst := worstOf(own)
		switch {
		case len(own) > 0:
			dec = Decoration{Type: severityName(ownWorst), Count: len(own)}
		case childWorst != 0:
			dec = Decoration{Type: severityName(childWorst), Count: -1}
		}
		out[pathKey(nodePath)] = dec
		worst = worse(worst, worse(ownWorst, childWorst))
	}
	return worst
}

// DiffDecorations emits update patches for nodes of next whose decoration
// differs from old. Nodes missing from old count as undecorated.
func DiffDecorations(next []outline.SymbolNode, old, updated map[string]Decoration) []outline.Patch {
	var patches []outline.Patch
	walkPaths(nil, next, func(path []string) {
		key := pathKey(path)
		prev, cur := old[key], updated[key]
		selector := outline.SelectorFor(path...)
		if prev.Type != cur.Type {
			var value any
			if cur.Type != "" {
				value = cur.Type
			}
			patches = append(patches, outline.NewUpdatePatch(selector, outline.AttrDiagnosticType, value))
		}
		if prev.Count != cur.Count {
			patches = append(patches, outline.NewUpdatePatch(selector, outline.AttrDiagnosticCount, cur.Count))
		}
	})
	return patches
}

func walkPaths(path []string, nodes []outline.SymbolNode, fn func([]string)) {
	for _, node := range nodes {
		nodePath := append(append([]string(nil), path...), node.Key())
		fn(nodePath)
		walkPaths(nodePath, node.Children, fn)
	}
}

func inAnyChild(children []outline.SymbolNode, line int) bool {
	for _, child := range children {
		if line >= child.Range.Start.Line && line <= child.Range.End.Line {
			return true
		}
	}
	return false
}

func worstOf(diags []Diagnostic) Severity {
	var worst Severity
	for _, d := range diags {
		worst = worse(worst, d.Severity)
	}
	return worst
}

// worse picks the more severe of two severities; 0 means none and LSP uses
// smaller numbers for more severe levels.
func worse(a, b Severity) Severity {
	switch {
	case a == 0:
		return b
	case b == 0:
		return a
	case b < a:
		return b
	default:
		return a
	}
}

func severityName(s Severity) string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return "info"
	}
}

func pathKey(path []string) string {
	return strings.Join(path, "\x00")
}
