package parser

import (
	"fmt"
	"path/filepath"
	"sync"

	tree_sitter_zig "github.com/tree-sitter-grammars/tree-sitter-zig/bindings/go"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_csharp "github.com/tree-sitter/tree-sitter-c-sharp/bindings/go"
	tree_sitter_cpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_php "github.com/tree-sitter/tree-sitter-php/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// Document is a parsed file: a concrete syntax tree with byte-addressable
// nodes, per spec.md §6's Parser Port contract. Content is retained so
// callers can slice node byte ranges without re-reading the file.
type Document struct {
	Tree       *tree_sitter.Tree
	LanguageID string
	Content    []byte
}

// RootNode returns the tree's root node, nil if the document was disposed.
func (d *Document) RootNode() *tree_sitter.Node {
	if d.Tree == nil {
		return nil
	}
	root := d.Tree.RootNode()
	return &root
}

// Dispose releases the native tree-sitter tree. Callers must call this
// once they are done walking the document.
func (d *Document) Dispose() {
	if d.Tree != nil {
		d.Tree.Close()
		d.Tree = nil
	}
}

// Port is the Parser Port of spec.md §6: parse source into a concrete
// syntax tree with byte-addressable nodes, independent of which concrete
// grammar library backs it.
type Port interface {
	ParseFile(path string, content []byte) (*Document, error)
	GetLanguageForFile(path string) (languageID string, ok bool)
	SupportsQueries(languageID string) bool
	Warmup(languages []string)
}

// languageSetup registers one grammar's parser and symbol-extraction
// query for every extension it covers. Registered lazily (spec.md §9:
// "the parser ... become explicit dependencies injected into
// components"), the same per-language init-function idiom as the
// teacher's parser_language_setup.go, minus the object model
// (TreeSitterParser/types.*) that came along with it there.
type languageSetup struct {
	languageID string
	extensions []string
	query      string
	language   func() *tree_sitter.Language
}

var languageSetups = []languageSetup{
	{
		languageID: "go",
		extensions: []string{".go"},
		language:   func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_go.Language()) },
		query: `
			(function_declaration name: (identifier) @function.name) @function
			(method_declaration
				receiver: (parameter_list) @method.receiver
				name: (field_identifier) @method.name) @method
			(type_declaration
				(type_spec name: (type_identifier) @type.name)) @type
			(func_literal) @function
			(import_spec path: (interpreted_string_literal) @import.path) @import
		`,
	},
	{
		languageID: "javascript",
		extensions: []string{".js", ".jsx"},
		language:   func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_javascript.Language()) },
		query: `
			(function_declaration name: (identifier) @function.name) @function
			(generator_function_declaration name: (identifier) @function.name) @function
			(variable_declarator
				name: (identifier) @function.name
				value: [(arrow_function) (function_expression) (generator_function)]) @function
			(method_definition name: (property_identifier) @method.name) @method
			(class_declaration name: (identifier) @class.name) @class
			(export_statement declaration: (_) @export)
			(import_statement source: (string) @import.source) @import
		`,
	},
	{
		languageID: "typescript",
		extensions: []string{".ts", ".tsx"},
		language: func() *tree_sitter.Language {
			return tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript())
		},
		query: `
			(function_declaration name: (identifier) @function.name) @function
			(generator_function_declaration name: (identifier) @function.name) @function
			(method_definition name: (property_identifier) @method.name) @method
			(function_expression name: (identifier) @function.name) @function
			(class_declaration name: (type_identifier) @class.name) @class
			(interface_declaration name: (type_identifier) @interface.name) @interface
			(type_alias_declaration name: (type_identifier) @type.name) @type
			(enum_declaration name: (identifier) @enum.name) @enum
			(export_statement declaration: (_) @export)
			(import_statement source: (string) @import.source) @import
		`,
	},
	{
		languageID: "python",
		extensions: []string{".py"},
		language:   func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_python.Language()) },
		query: `
			(class_definition
				body: (block
					(function_definition name: (identifier) @method.name))) @method
			(function_definition name: (identifier) @function.name) @function
			(class_definition name: (identifier) @class.name) @class
			(import_statement) @import
			(import_from_statement) @import
		`,
	},
	{
		languageID: "rust",
		extensions: []string{".rs"},
		language:   func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_rust.Language()) },
		query: `
			(impl_item
				body: (declaration_list
					(function_item name: (identifier) @method.name))) @method
			(trait_item
				body: (declaration_list
					(function_item name: (identifier) @method.name))) @method
			(function_item name: (identifier) @function.name) @function
			(struct_item name: (type_identifier) @type.name) @type
			(enum_item name: (type_identifier) @enum.name) @enum
			(trait_item name: (type_identifier) @interface.name) @interface
			(type_item name: (type_identifier) @type.name) @type
			(use_declaration) @import
		`,
	},
	{
		languageID: "java",
		extensions: []string{".java"},
		language:   func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_java.Language()) },
		query: `
			(method_declaration name: (identifier) @method.name) @method
			(class_declaration name: (identifier) @class.name) @class
			(record_declaration name: (identifier) @class.name) @class
			(interface_declaration name: (identifier) @interface.name) @interface
			(enum_declaration name: (identifier) @enum.name) @enum
			(import_declaration) @import
		`,
	},
	{
		languageID: "cpp",
		extensions: []string{".cpp", ".cc", ".cxx", ".c", ".h", ".hpp"},
		language:   func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_cpp.Language()) },
		query: `
			(function_definition declarator: (function_declarator declarator: (identifier) @function.name)) @function
			(class_specifier name: (type_identifier) @class.name) @class
			(struct_specifier name: (type_identifier) @type.name) @type
			(enum_specifier name: (type_identifier) @enum.name) @enum
			(preproc_include) @import
			(using_declaration) @import
		`,
	},
	{
		languageID: "csharp",
		extensions: []string{".cs"},
		language:   func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_csharp.Language()) },
		query: `
			(method_declaration name: (identifier) @method.name) @method
			(class_declaration name: (identifier) @class.name) @class
			(interface_declaration name: (identifier) @interface.name) @interface
			(struct_declaration name: (identifier) @type.name) @type
			(enum_declaration name: (identifier) @enum.name) @enum
			(using_directive (qualified_name) @import.path) @import
			(using_directive (identifier) @import.path) @import
		`,
	},
	{
		languageID: "zig",
		extensions: []string{".zig"},
		language:   func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_zig.Language()) },
		query: `
			(function_declaration (identifier) @function.name) @function
			(variable_declaration
				(identifier) @type.name
				(struct_declaration) @type)
			(variable_declaration
				(identifier) @type.name
				(union_declaration) @type)
		`,
	},
	{
		languageID: "php",
		extensions: []string{".php", ".phtml"},
		language:   func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_php.LanguagePHP()) },
		query: `
			(class_declaration name: (name) @class.name) @class
			(interface_declaration name: (name) @interface.name) @interface
			(trait_declaration name: (name) @class.name) @class
			(enum_declaration name: (name) @enum.name) @enum
			(function_definition name: (name) @function.name) @function
			(method_declaration name: (name) @method.name) @method
			(namespace_use_declaration) @import
		`,
	},
}

// extensionLanguage maps a file extension to the languageSetups index
// registered for it, built once at package init.
var extensionLanguage = func() map[string]int {
	m := make(map[string]int)
	for i, s := range languageSetups {
		for _, ext := range s.extensions {
			m[ext] = i
		}
	}
	return m
}()

// TreeSitterPort is the real-grammar Port implementation: one
// tree-sitter parser and one capture query per language, constructed
// lazily on first use per extension (mirrors the teacher's
// ensureParserInitialized "30% memory reduction" lazy-init path,
// scaled down from a standalone TreeSitterParser type to live directly
// on the Port, since the object model it used to hang off of
// (internal/types, internal/core) is not part of this module).
type TreeSitterPort struct {
	mu          sync.Mutex
	parsers     map[string]*tree_sitter.Parser
	queries     map[string]*tree_sitter.Query
	initialized map[int]bool
}

// NewTreeSitterPort constructs a Port with no grammars loaded yet; each
// is initialized on first ParseFile/Query/Warmup call for its extension.
func NewTreeSitterPort() *TreeSitterPort {
	return &TreeSitterPort{
		parsers:     make(map[string]*tree_sitter.Parser),
		queries:     make(map[string]*tree_sitter.Query),
		initialized: make(map[int]bool),
	}
}

var _ Port = (*TreeSitterPort)(nil)

func (p *TreeSitterPort) GetLanguageForFile(path string) (string, bool) {
	idx, ok := extensionLanguage[filepath.Ext(path)]
	if !ok {
		return "", false
	}
	return languageSetups[idx].languageID, true
}

func (p *TreeSitterPort) SupportsQueries(languageID string) bool {
	for _, s := range languageSetups {
		if s.languageID == languageID {
			return true
		}
	}
	return false
}

// Warmup forces lazy initialization of the named languages' grammars and
// queries ahead of time, so the first real parse of a cold language does
// not pay init cost on the request path.
func (p *TreeSitterPort) Warmup(languages []string) {
	want := make(map[string]bool, len(languages))
	for _, l := range languages {
		want[l] = true
	}
	for i, s := range languageSetups {
		if want[s.languageID] {
			p.ensureInitialized(i)
		}
	}
}

// ensureInitialized lazily compiles the parser and query for
// languageSetups[idx], the same lazy-init-behind-a-lock shape as the
// teacher's ensureParserInitialized, collapsed to a single mutex since
// the Port contract has no read-heavy path worth a separate fast path.
func (p *TreeSitterPort) ensureInitialized(idx int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized[idx] {
		return true
	}
	setup := languageSetups[idx]

	language := setup.language()
	parser := tree_sitter.NewParser()
	if err := parser.SetLanguage(language); err != nil {
		return false
	}

	// Tree-sitter Go bindings can hand back a typed-nil error on query
	// compile failure, so the nil check on query itself is what matters.
	query, _ := tree_sitter.NewQuery(language, setup.query)

	for _, ext := range setup.extensions {
		p.parsers[ext] = parser
		if query != nil {
			p.queries[ext] = query
		}
	}
	p.initialized[idx] = true
	return true
}

func (p *TreeSitterPort) parserFor(ext string) *tree_sitter.Parser {
	idx, ok := extensionLanguage[ext]
	if !ok {
		return nil
	}
	if !p.ensureInitialized(idx) {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.parsers[ext]
}

// ParseFile parses content for path, lazily initializing that language's
// grammar and query on first use.
func (p *TreeSitterPort) ParseFile(path string, content []byte) (*Document, error) {
	ext := filepath.Ext(path)
	ts := p.parserFor(ext)
	if ts == nil {
		return nil, fmt.Errorf("no grammar registered for extension %q", ext)
	}

	// Tree-sitter mutates the input buffer via CGO; defensive copy, same
	// copy-on-parse discipline the teacher's ParseFileEnhanced uses.
	buf := make([]byte, len(content))
	copy(buf, content)

	tree := ts.Parse(buf, nil)
	if tree == nil {
		return nil, fmt.Errorf("parse failed for %s", path)
	}
	languageID, _ := p.GetLanguageForFile(path)
	return &Document{
		Tree:       tree,
		LanguageID: languageID,
		Content:    buf,
	}, nil
}

// Query returns the precompiled tree-sitter query registered for ext, if
// any (used by internal/symbol to run capture-based extraction without
// recompiling queries per file).
func (p *TreeSitterPort) Query(ext string) *tree_sitter.Query {
	idx, ok := extensionLanguage[ext]
	if !ok {
		return nil
	}
	p.ensureInitialized(idx)
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.queries[ext]
}
