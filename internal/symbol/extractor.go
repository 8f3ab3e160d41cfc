// Package symbol is the Symbol Extractor (spec.md §4.2): given a parsed
// document from the Parser Port, it walks the capture query already
// registered for that language and emits the tagged Definition/Import/
// Export variants of internal/model, ordered by range.startByte.
//
// Grounded on the teacher's per-language capture queries in
// internal/parser/parser_language_setup.go (setupGo, setupJavaScript,
// setupTypeScript, setupPython) and the capture-dispatch loop in
// internal/parser/parser.go's extractBasicSymbolsStringRef — the queries
// and capture names are reused verbatim; this package owns the
// captures-to-model.Symbol mapping instead of the teacher's lossy
// types.Symbol/types.Import shape, so byte ranges, signatures, doc
// comments and import/export kinds match spec.md §3 exactly.
package symbol

import (
	"sort"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/smart-context/internal/model"
	"github.com/standardbeagle/smart-context/internal/parser"
)

// Extractor runs capture queries over a parsed Document and produces the
// file's symbol list.
type Extractor struct {
	port *parser.TreeSitterPort
}

// NewExtractor constructs an Extractor backed by port.
func NewExtractor(port *parser.TreeSitterPort) *Extractor {
	return &Extractor{port: port}
}

// containerNodeTypes are the definition node types that may host a nested
// definition as their container (spec.md §3: "container refers to a
// sibling definition ... whose range strictly encloses it").
var containerNodeTypes = map[string]bool{
	"class_declaration":        true,
	"class_definition":         true,
	"interface_declaration":    true,
	"struct_type":              true,
	"type_declaration":         true,
	"impl_item":                true,
}

// Extract parses content for path via the port and returns its symbols
// sorted by range.startByte, per the §3 ordering invariant.
func (e *Extractor) Extract(path string, content []byte) ([]model.Symbol, error) {
	doc, err := e.port.ParseFile(path, content)
	if err != nil {
		return nil, err
	}
	defer doc.Dispose()

	ext := extOf(path)
	query := e.port.Query(ext)
	if query == nil {
		return nil, nil
	}

	root := doc.RootNode()
	qc := tree_sitter.NewQueryCursor()
	defer qc.Close()
	matches := qc.Matches(query, *root, doc.Content)
	captureNames := query.CaptureNames()

	var symbols []model.Symbol
	for {
		match := matches.Next()
		if match == nil {
			break
		}
		names := collectNames(match, captureNames, doc.Content)

		for _, c := range match.Captures {
			capture := captureNames[c.Index]
			node := c.Node

			switch capture {
			case "function", "method", "class", "interface", "type", "enum":
				sym := e.buildDefinition(capture, &node, doc.Content, names)
				symbols = append(symbols, sym)
			case "import":
				sym := e.buildImport(&node, doc.Content, ext, names)
				symbols = append(symbols, sym)
			case "export":
				sym := e.buildExport(&node, doc.Content)
				symbols = append(symbols, sym)
			}
		}
	}

	assignContainers(symbols)
	sort.SliceStable(symbols, func(i, j int) bool {
		return symbols[i].Range().StartByte < symbols[j].Range().StartByte
	})
	return symbols, nil
}

func extOf(path string) string {
	i := strings.LastIndexByte(path, '.')
	if i < 0 {
		return ""
	}
	return path[i:]
}

func collectNames(match *tree_sitter.QueryMatch, captureNames []string, content []byte) map[string]string {
	out := make(map[string]string, 4)
	for _, c := range match.Captures {
		name := captureNames[c.Index]
		if strings.HasSuffix(name, ".name") || strings.HasSuffix(name, ".source") || strings.HasSuffix(name, ".path") {
			out[name] = nodeText(&c.Node, content)
		}
	}
	return out
}

func nodeText(n *tree_sitter.Node, content []byte) string {
	return string(content[n.StartByte():n.EndByte()])
}

func makeRange(n *tree_sitter.Node) model.Range {
	start := n.StartPosition()
	end := n.EndPosition()
	return model.Range{
		StartLine: int(start.Row) + 1,
		EndLine:   int(end.Row) + 1,
		StartByte: int(n.StartByte()),
		EndByte:   int(n.EndByte()),
	}
}

// assignContainers walks the flat symbol list and sets Def.Container to
// the name of the nearest enclosing definition whose range strictly
// contains this one, per spec.md §3.
func assignContainers(symbols []model.Symbol) {
	defs := make([]*model.Definition, 0, len(symbols))
	for i := range symbols {
		if symbols[i].Def != nil {
			defs = append(defs, symbols[i].Def)
		}
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Range.Len() > defs[j].Range.Len() })

	for _, sym := range defs {
		var best *model.Definition
		for _, candidate := range defs {
			if candidate == sym {
				continue
			}
			if candidate.Range.Contains(sym.Range) && candidate.Range.Len() < orMax(best) {
				best = candidate
			}
		}
		if best != nil {
			sym.Container = best.Name
		}
	}
}

func orMax(d *model.Definition) int {
	if d == nil {
		return int(^uint(0) >> 1)
	}
	return d.Range.Len()
}
