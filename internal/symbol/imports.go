package symbol

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/smart-context/internal/model"
)

// buildImport converts a captured import node into a model.Symbol
// carrying an Import, classifying its kind from the statement's clause
// shape per language (spec.md §4.2: "all forms ... must be produced").
func (e *Extractor) buildImport(node *tree_sitter.Node, content []byte, ext string, names map[string]string) model.Symbol {
	switch ext {
	case ".js", ".jsx", ".ts", ".tsx":
		return buildJSImport(node, content)
	case ".go":
		return buildGoImport(node, content, names)
	case ".py":
		return buildPythonImport(node, content)
	default:
		source := firstOf(names, "import.source", "import.path")
		return model.ImpSymbol(model.Import{
			Source: unquote(source),
			Kind:   model.ImportNamed,
			Range:  makeRange(node),
		})
	}
}

func firstOf(m map[string]string, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			return v
		}
	}
	return ""
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') || (s[0] == '`' && s[len(s)-1] == '`') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

func buildGoImport(node *tree_sitter.Node, content []byte, names map[string]string) model.Symbol {
	source := unquote(firstOf(names, "import.path"))
	alias := ""
	if n := node.ChildByFieldName("name"); n != nil {
		alias = nodeText(n, content)
	}
	kind := model.ImportSideEffect
	if alias == "_" {
		kind = model.ImportSideEffect
	} else if alias != "" {
		kind = model.ImportDefault
	} else {
		kind = model.ImportDefault
	}
	return model.ImpSymbol(model.Import{
		Source: source,
		Kind:   kind,
		Alias:  alias,
		Range:  makeRange(node),
	})
}

// buildJSImport inspects an import_statement's clause to classify it as
// default, named (with aliases), namespace, or side-effect, and flags
// isTypeOnly for TypeScript `import type`.
func buildJSImport(node *tree_sitter.Node, content []byte) model.Symbol {
	source := ""
	if n := node.ChildByFieldName("source"); n != nil {
		source = unquote(nodeText(n, content))
	}

	imp := model.Import{
		Source: source,
		Kind:   model.ImportSideEffect,
		Range:  makeRange(node),
	}

	text := nodeText(node, content)
	if strings.HasPrefix(strings.TrimSpace(text), "import type") {
		imp.IsTypeOnly = true
	}

	count := node.ChildCount()
	var names []model.ImportedName
	for i := uint(0); i < count; i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "import_clause":
			names = append(names, jsClauseNames(child, content)...)
			if hasChildOfKind(child, "namespace_import") {
				imp.Kind = model.ImportNamespace
			} else if hasChildOfKind(child, "named_imports") {
				imp.Kind = model.ImportNamed
			} else if child.ChildByFieldName("name") != nil || firstChildKind(child) == "identifier" {
				imp.Kind = model.ImportDefault
			}
		case "identifier":
			// default import without an explicit import_clause wrapper
			imp.Kind = model.ImportDefault
			names = append(names, model.ImportedName{Name: nodeText(child, content)})
		}
	}
	imp.Imports = names
	return model.ImpSymbol(imp)
}

func firstChildKind(n *tree_sitter.Node) string {
	if n.ChildCount() == 0 {
		return ""
	}
	c := n.Child(0)
	if c == nil {
		return ""
	}
	return c.Kind()
}

func hasChildOfKind(n *tree_sitter.Node, kind string) bool {
	count := n.ChildCount()
	for i := uint(0); i < count; i++ {
		c := n.Child(i)
		if c != nil && c.Kind() == kind {
			return true
		}
	}
	return false
}

func jsClauseNames(clause *tree_sitter.Node, content []byte) []model.ImportedName {
	var out []model.ImportedName
	count := clause.ChildCount()
	for i := uint(0); i < count; i++ {
		child := clause.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "identifier":
			out = append(out, model.ImportedName{Name: nodeText(child, content)})
		case "named_imports":
			out = append(out, jsSpecifierNames(child, content)...)
		case "namespace_import":
			if n := lastNamedChild(child); n != nil {
				out = append(out, model.ImportedName{Name: nodeText(n, content)})
			}
		}
	}
	return out
}

func jsSpecifierNames(named *tree_sitter.Node, content []byte) []model.ImportedName {
	var out []model.ImportedName
	count := named.ChildCount()
	for i := uint(0); i < count; i++ {
		spec := named.Child(i)
		if spec == nil || spec.Kind() != "import_specifier" {
			continue
		}
		nameNode := spec.ChildByFieldName("name")
		aliasNode := spec.ChildByFieldName("alias")
		entry := model.ImportedName{}
		if nameNode != nil {
			entry.Name = nodeText(nameNode, content)
		}
		if aliasNode != nil {
			entry.Alias = nodeText(aliasNode, content)
		}
		if entry.Name != "" {
			out = append(out, entry)
		}
	}
	return out
}

func lastNamedChild(n *tree_sitter.Node) *tree_sitter.Node {
	count := n.ChildCount()
	var last *tree_sitter.Node
	for i := uint(0); i < count; i++ {
		c := n.Child(i)
		if c != nil && c.IsNamed() {
			last = c
		}
	}
	return last
}

func buildPythonImport(node *tree_sitter.Node, content []byte) model.Symbol {
	text := nodeText(node, content)
	imp := model.Import{Kind: model.ImportDefault, Range: makeRange(node)}

	if node.Kind() == "import_from_statement" {
		if n := node.ChildByFieldName("module_name"); n != nil {
			imp.Source = nodeText(n, content)
		}
		imp.Kind = model.ImportNamed
		count := node.ChildCount()
		for i := uint(0); i < count; i++ {
			c := node.Child(i)
			if c == nil {
				continue
			}
			switch c.Kind() {
			case "dotted_name":
				if imp.Source != "" && nodeText(c, content) != imp.Source {
					imp.Imports = append(imp.Imports, model.ImportedName{Name: nodeText(c, content)})
				}
			case "aliased_import":
				nameNode := c.ChildByFieldName("name")
				aliasNode := c.ChildByFieldName("alias")
				entry := model.ImportedName{}
				if nameNode != nil {
					entry.Name = nodeText(nameNode, content)
				}
				if aliasNode != nil {
					entry.Alias = nodeText(aliasNode, content)
				}
				if entry.Name != "" {
					imp.Imports = append(imp.Imports, entry)
				}
			case "wildcard_import":
				imp.Kind = model.ImportNamespace
			}
		}
	} else {
		// plain "import x[.y][as z]"
		if n := node.ChildByFieldName("name"); n != nil {
			imp.Source = nodeText(n, content)
		} else {
			fields := strings.Fields(strings.TrimPrefix(text, "import"))
			if len(fields) > 0 {
				imp.Source = strings.TrimSuffix(fields[0], ",")
			}
		}
	}
	return model.ImpSymbol(imp)
}

// buildExport converts a captured export_statement into a model.Symbol
// carrying an Export. The teacher's query captures the whole statement
// as @export; this classifies default vs. named vs. re-export from its
// shape.
func (e *Extractor) buildExport(node *tree_sitter.Node, content []byte) model.Symbol {
	parent := node.Parent()
	stmt := node
	if parent != nil && parent.Kind() == "export_statement" {
		stmt = parent
	}
	text := nodeText(stmt, content)

	exp := model.Export{Kind: model.ExportNamed, Range: makeRange(stmt)}
	if strings.Contains(text, "export default") {
		exp.Kind = model.ExportDefault
	}
	if n := stmt.ChildByFieldName("source"); n != nil {
		exp.Kind = model.ExportReExport
		exp.Source = unquote(nodeText(n, content))
	}
	if strings.HasPrefix(strings.TrimSpace(text), "export type") {
		exp.IsTypeOnly = true
	}

	if name := declarationName(node, content); name != "" {
		exp.Exports = []model.ImportedName{{Name: name}}
	}
	return model.ExpSymbol(exp)
}

func declarationName(node *tree_sitter.Node, content []byte) string {
	if n := node.ChildByFieldName("name"); n != nil {
		return nodeText(n, content)
	}
	count := node.ChildCount()
	for i := uint(0); i < count; i++ {
		c := node.Child(i)
		if c == nil {
			continue
		}
		if n := c.ChildByFieldName("name"); n != nil {
			return nodeText(n, content)
		}
	}
	return ""
}
