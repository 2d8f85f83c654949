package outline

import (
	"strings"
	"unicode"
)

// SymbolKind is the textual symbol kind carried on the wire ("Class",
// "Method", ...). Provider-specific kinds use the "__om_" prefix.
type SymbolKind string

const (
	KindFile          SymbolKind = "File"
	KindModule        SymbolKind = "Module"
	KindNamespace     SymbolKind = "Namespace"
	KindPackage       SymbolKind = "Package"
	KindClass         SymbolKind = "Class"
	KindMethod        SymbolKind = "Method"
	KindProperty      SymbolKind = "Property"
	KindField         SymbolKind = "Field"
	KindConstructor   SymbolKind = "Constructor"
	KindEnum          SymbolKind = "Enum"
	KindInterface     SymbolKind = "Interface"
	KindFunction      SymbolKind = "Function"
	KindVariable      SymbolKind = "Variable"
	KindConstant      SymbolKind = "Constant"
	KindString        SymbolKind = "String"
	KindNumber        SymbolKind = "Number"
	KindBoolean       SymbolKind = "Boolean"
	KindArray         SymbolKind = "Array"
	KindObject        SymbolKind = "Object"
	KindKey           SymbolKind = "Key"
	KindNull          SymbolKind = "Null"
	KindEnumMember    SymbolKind = "EnumMember"
	KindStruct        SymbolKind = "Struct"
	KindEvent         SymbolKind = "Event"
	KindOperator      SymbolKind = "Operator"
	KindTypeParameter SymbolKind = "TypeParameter"

	KindTag    SymbolKind = "__om_Tag__"
	KindRegion SymbolKind = "__om_Region__"
)

// SymbolKinds lists every kind in LSP order (index+1 is the LSP SymbolKind
// number) followed by the custom kinds.
var SymbolKinds = []SymbolKind{
	KindFile, KindModule, KindNamespace, KindPackage, KindClass, KindMethod,
	KindProperty, KindField, KindConstructor, KindEnum, KindInterface,
	KindFunction, KindVariable, KindConstant, KindString, KindNumber,
	KindBoolean, KindArray, KindObject, KindKey, KindNull, KindEnumMember,
	KindStruct, KindEvent, KindOperator, KindTypeParameter,
	KindTag, KindRegion,
}

// Position is a zero-based line/character location in the outlined document.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Range spans a symbol in the outlined document.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Contains reports whether pos falls within the range (inclusive).
func (r Range) Contains(pos Position) bool {
	if pos.Line < r.Start.Line || pos.Line > r.End.Line {
		return false
	}
	if pos.Line == r.Start.Line && pos.Character < r.Start.Character {
		return false
	}
	if pos.Line == r.End.Line && pos.Character > r.End.Character {
		return false
	}
	return true
}

// SymbolNode is one outline entry as produced by the symbol provider. The
// panel only ever reads it.
type SymbolNode struct {
	Kind     SymbolKind   `json:"kind"`
	Name     string       `json:"name"`
	Detail   string       `json:"detail"`
	Range    Range        `json:"range"`
	Expand   bool         `json:"expand"`
	InView   bool         `json:"inView"`
	Focus    bool         `json:"focus"`
	Children []SymbolNode `json:"children"`
}

// Key returns the node's identity key.
func (s SymbolNode) Key() string {
	return IdentityKey(s.Kind, s.Name)
}

// CamelToDash converts "EnumMember" into "enum-member".
func CamelToDash(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) && unicode.IsLetter(runes[i-1]) {
			b.WriteByte('-')
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// MapIcon returns the codicon name used for a kind.
func MapIcon(kind SymbolKind) string {
	switch kind {
	case KindRegion:
		return "folder"
	case KindTag:
		return "tag"
	}
	return "symbol-" + CamelToDash(string(kind))
}
