package provider

import (
	"cmp"
	"slices"

	"go.lsp.dev/protocol"

	"github.com/lexcodex/outlinemap/outline"
)

// kindOf maps an LSP symbol kind number onto its outline name.
func kindOf(kind protocol.SymbolKind) outline.SymbolKind {
	idx := int(kind) - 1
	if idx < 0 || idx >= int(protocol.SymbolKindTypeParameter) {
		return outline.KindObject
	}
	return outline.SymbolKinds[idx]
}

func convertRange(r protocol.Range) outline.Range {
	return outline.Range{
		Start: outline.Position{Line: int(r.Start.Line), Character: int(r.Start.Character)},
		End:   outline.Position{Line: int(r.End.Line), Character: int(r.End.Character)},
	}
}

// convertSymbols turns LSP document symbols into outline nodes ordered by
// position. Every node starts expanded; the panel applies its depth limit.
func convertSymbols(symbols []protocol.DocumentSymbol) []outline.SymbolNode {
	nodes := make([]outline.SymbolNode, 0, len(symbols))
	for _, sym := range symbols {
		nodes = append(nodes, outline.SymbolNode{
			Kind:     kindOf(sym.Kind),
			Name:     sym.Name,
			Detail:   sym.Detail,
			Range:    convertRange(sym.Range),
			Expand:   true,
			Children: convertSymbols(sym.Children),
		})
	}
	slices.SortStableFunc(nodes, func(a, b outline.SymbolNode) int {
		if c := cmp.Compare(a.Range.Start.Line, b.Range.Start.Line); c != 0 {
			return c
		}
		return cmp.Compare(a.Range.Start.Character, b.Range.Start.Character)
	})
	return nodes
}

func convertDiagnostics(diags []protocol.Diagnostic) []Diagnostic {
	out := make([]Diagnostic, 0, len(diags))
	for _, d := range diags {
		out = append(out, Diagnostic{Line: int(d.Range.Start.Line), Severity: Severity(d.Severity)})
	}
	return out
}

// focusPath returns the key path of the innermost node containing pos.
func focusPath(nodes []outline.SymbolNode, pos outline.Position) []string {
	for _, node := range nodes {
		if node.Range.Contains(pos) {
			return append([]string{node.Key()}, focusPath(node.Children, pos)...)
		}
	}
	return nil
}

// withFocus returns a copy of nodes where only the node at path is focused.
func withFocus(nodes []outline.SymbolNode, path []string) []outline.SymbolNode {
	out := make([]outline.SymbolNode, len(nodes))
	for i, node := range nodes {
		onPath := len(path) > 0 && node.Key() == path[0]
		node.Focus = onPath && len(path) == 1
		var rest []string
		if onPath {
			rest = path[1:]
		}
		node.Children = withFocus(node.Children, rest)
		out[i] = node
	}
	return out
}
