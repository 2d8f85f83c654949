package outline

// IdentityKey derives the sibling-unique key of a node from its kind and
// name. The same pair always yields the same key.
func IdentityKey(kind SymbolKind, name string) string {
	return string(kind) + "-" + name
}

// MatchKey returns the first sibling whose key matches node, or nil when node
// is nil or nothing matches. Callers treat nil as "append at the end".
//
// Siblings are expected to have unique keys. When an upstream diff produces a
// collision the first occurrence wins.
func MatchKey(siblings []*RenderedNode, node *SymbolNode) *RenderedNode {
	if node == nil {
		return nil
	}
	return matchByKey(siblings, node.Key())
}

func matchByKey(siblings []*RenderedNode, key string) *RenderedNode {
	for _, sibling := range siblings {
		if sibling.Key == key {
			return sibling
		}
	}
	return nil
}
