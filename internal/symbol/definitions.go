package symbol

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/smart-context/internal/model"
)

var captureToKind = map[string]model.DefinitionKind{
	"function":  model.KindFunction,
	"method":    model.KindMethod,
	"class":     model.KindClass,
	"interface": model.KindInterface,
	"type":      model.KindTypeAlias,
	"enum":      model.KindClass,
}

// buildDefinition converts a captured definition node into a
// model.Symbol carrying a Definition, filling signature/container/
// modifiers/doc per spec.md §4.2.
func (e *Extractor) buildDefinition(capture string, node *tree_sitter.Node, content []byte, names map[string]string) model.Symbol {
	kind := captureToKind[capture]
	name := names[capture+".name"]
	if name == "" {
		if n := node.ChildByFieldName("name"); n != nil {
			name = nodeText(n, content)
		}
	}

	def := model.Definition{
		Kind:      kind,
		Name:      name,
		Signature: signatureOf(node, content),
		Range:     makeRange(node),
		Modifiers: modifiersOf(node, content),
		Doc:       docCommentOf(node, content),
	}
	if kind == model.KindFunction || kind == model.KindMethod {
		def.Parameters = parametersOf(node, content)
		def.ReturnType = returnTypeOf(node, content)
	}
	return model.DefSymbol(def)
}

// signatureOf returns the definition text up to the body's opening byte,
// trimmed of trailing whitespace, matching "the definition text up to
// the body opening (if any)".
func signatureOf(node *tree_sitter.Node, content []byte) string {
	body := node.ChildByFieldName("body")
	start := node.StartByte()
	end := node.EndByte()
	if body != nil {
		end = body.StartByte()
	}
	text := string(content[start:end])
	return strings.TrimRight(text, " \t\r\n")
}

func parametersOf(node *tree_sitter.Node, content []byte) []model.Parameter {
	params := node.ChildByFieldName("parameters")
	if params == nil {
		return nil
	}
	var out []model.Parameter
	count := params.ChildCount()
	for i := uint(0); i < count; i++ {
		child := params.Child(i)
		if child == nil || !child.IsNamed() {
			continue
		}
		kind := child.Kind()
		if kind == "comment" {
			continue
		}
		name := ""
		if n := child.ChildByFieldName("name"); n != nil {
			name = nodeText(n, content)
		} else if child.Kind() == "identifier" {
			name = nodeText(child, content)
		}
		if name == "" {
			continue
		}
		typ := ""
		if t := child.ChildByFieldName("type"); t != nil {
			typ = nodeText(t, content)
		}
		out = append(out, model.Parameter{Name: name, Type: typ})
	}
	return out
}

func returnTypeOf(node *tree_sitter.Node, content []byte) string {
	if t := node.ChildByFieldName("return_type"); t != nil {
		return nodeText(t, content)
	}
	if t := node.ChildByFieldName("result"); t != nil {
		return nodeText(t, content)
	}
	return ""
}

// modifiersOf detects the "export" modifier (node's parent is an export
// statement) plus any language modifier keywords found among the node's
// immediate non-named children (public/private/static/async/...).
func modifiersOf(node *tree_sitter.Node, content []byte) []string {
	var mods []string
	if parent := node.Parent(); parent != nil {
		switch parent.Kind() {
		case "export_statement":
			mods = append(mods, "export")
		}
	}
	count := node.ChildCount()
	for i := uint(0); i < count; i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "public", "private", "protected", "static", "async", "abstract", "readonly", "override":
			mods = append(mods, child.Kind())
		}
	}
	return mods
}

// docCommentOf walks the node's immediately preceding siblings for
// contiguous comment nodes, matching "documentation extracted from the
// preceding trivia" (spec.md §4.2).
func docCommentOf(node *tree_sitter.Node, content []byte) string {
	parent := node.Parent()
	if parent == nil {
		return ""
	}
	count := int(parent.ChildCount())
	idx := -1
	for i := 0; i < count; i++ {
		if parent.Child(uint(i)) != nil && sameNode(parent.Child(uint(i)), node) {
			idx = i
			break
		}
	}
	if idx <= 0 {
		return ""
	}
	var lines []string
	for i := idx - 1; i >= 0; i-- {
		sib := parent.Child(uint(i))
		if sib == nil || sib.Kind() != "comment" {
			break
		}
		lines = append([]string{nodeText(sib, content)}, lines...)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func sameNode(a, b *tree_sitter.Node) bool {
	return a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte() && a.Kind() == b.Kind()
}
