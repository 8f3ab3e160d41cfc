package model

// DefinitionKind enumerates the definition variants spec.md §3 names.
type DefinitionKind string

const (
	KindClass     DefinitionKind = "class"
	KindInterface DefinitionKind = "interface"
	KindMethod    DefinitionKind = "method"
	KindFunction  DefinitionKind = "function"
	KindVariable  DefinitionKind = "variable"
	KindTypeAlias DefinitionKind = "type_alias"
)

// ImportKind enumerates the import forms the extractor must produce.
type ImportKind string

const (
	ImportDefault    ImportKind = "default"
	ImportNamed      ImportKind = "named"
	ImportNamespace  ImportKind = "namespace"
	ImportSideEffect ImportKind = "side-effect"
)

// ExportKind enumerates the export forms the extractor must produce.
type ExportKind string

const (
	ExportNamed    ExportKind = "named"
	ExportDefault  ExportKind = "default"
	ExportReExport ExportKind = "re-export"
)

// SymbolTag discriminates the tagged Symbol variant when serialized or
// stored in a flat slice, mirroring the teacher's definitions/references
// split in internal/core/symbol.go but generalized to the three spec.md
// variants.
type SymbolTag string

const (
	TagDefinition SymbolTag = "definition"
	TagImport     SymbolTag = "import"
	TagExport     SymbolTag = "export"
)

// Parameter is one entry of Definition.Parameters.
type Parameter struct {
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

// ImportedName is one entry of Import.Imports or Export.Exports.
type ImportedName struct {
	Name  string `json:"name"`
	Alias string `json:"alias,omitempty"`
}

// Definition is the class/interface/method/function/variable/type_alias
// symbol variant.
type Definition struct {
	Kind       DefinitionKind `json:"kind"`
	Name       string         `json:"name"`
	Container  string         `json:"container,omitempty"` // name of enclosing sibling definition, if any
	Signature  string         `json:"signature"`
	Parameters []Parameter    `json:"parameters,omitempty"`
	ReturnType string         `json:"returnType,omitempty"`
	Modifiers  []string       `json:"modifiers,omitempty"`
	Doc        string         `json:"doc,omitempty"`
	Range      Range          `json:"range"`
}

// Import is a single import statement.
type Import struct {
	Source       string         `json:"source"`
	Kind         ImportKind     `json:"kind"`
	Imports      []ImportedName `json:"imports,omitempty"`
	Alias        string         `json:"alias,omitempty"`
	IsTypeOnly   bool           `json:"isTypeOnly,omitempty"`
	Range        Range          `json:"range"`
}

// Export is a single export statement.
type Export struct {
	Kind       ExportKind     `json:"kind"`
	Exports    []ImportedName `json:"exports,omitempty"`
	Source     string         `json:"source,omitempty"` // populated for re-export
	IsTypeOnly bool           `json:"isTypeOnly,omitempty"`
	Range      Range          `json:"range"`
}

// Symbol is the tagged union of Definition/Import/Export. Exactly one of
// Def/Imp/Exp is non-nil, selected by Tag. A struct-of-pointers rather than
// an interface keeps the type JSON-marshalable without custom codecs and
// keeps symbol slices contiguous in memory, the way the teacher keeps
// types.Symbol a flat struct rather than an interface hierarchy.
type Symbol struct {
	Tag SymbolTag   `json:"tag"`
	Def *Definition `json:"def,omitempty"`
	Imp *Import     `json:"imp,omitempty"`
	Exp *Export     `json:"exp,omitempty"`
}

// Range returns the symbol's range regardless of variant.
func (s Symbol) Range() Range {
	switch s.Tag {
	case TagDefinition:
		return s.Def.Range
	case TagImport:
		return s.Imp.Range
	case TagExport:
		return s.Exp.Range
	}
	return Range{}
}

// Name returns a display name for the symbol, used by symbol lookup and
// trigram/filename scoring alike.
func (s Symbol) Name() string {
	switch s.Tag {
	case TagDefinition:
		return s.Def.Name
	case TagImport:
		return s.Imp.Source
	case TagExport:
		if len(s.Exp.Exports) > 0 {
			return s.Exp.Exports[0].Name
		}
		return s.Exp.Source
	}
	return ""
}

func DefSymbol(d Definition) Symbol { return Symbol{Tag: TagDefinition, Def: &d} }
func ImpSymbol(i Import) Symbol     { return Symbol{Tag: TagImport, Imp: &i} }
func ExpSymbol(e Export) Symbol     { return Symbol{Tag: TagExport, Exp: &e} }
