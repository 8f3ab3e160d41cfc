package symbol

import (
	"strings"

	"github.com/standardbeagle/smart-context/internal/model"
)

const placeholder = "/* ... */"

// Skeleton replaces each top-level definition (one with no Container)
// with its Signature followed by a single placeholder body (spec.md
// §4.2). A class or interface is folded like any other definition: its
// members, including nested method signatures, do not appear in the
// skeleton. Object literals,
// control-flow blocks outside a definition, and short top-level
// expressions are left untouched since those never appear as the
// folded range of a Definition symbol.
//
// It operates on the already-extracted Definition ranges rather than
// re-walking the parse tree: each Definition's Signature already holds
// the text up to the body opening, so folding is "signature +
// placeholder + closing brace" reconstructed from the original byte
// range, grounded on the teacher's BlockBoundary-driven folding in
// internal/display (block Start/End pairs used to elide bodies for
// terminal preview).
func Skeleton(content []byte, symbols []model.Symbol) string {
	defs := make([]*model.Definition, 0, len(symbols))
	for i := range symbols {
		if symbols[i].Tag == model.TagDefinition {
			defs = append(defs, symbols[i].Def)
		}
	}
	if len(defs) == 0 {
		return string(content)
	}

	// Keep only top-level (no container) definitions; nested ones are
	// already covered by their parent's fold.
	var topLevel []*model.Definition
	for _, d := range defs {
		if d.Container == "" {
			topLevel = append(topLevel, d)
		}
	}

	var b strings.Builder
	cursor := 0
	for _, d := range topLevel {
		r := d.Range
		if r.StartByte < cursor || r.StartByte > len(content) || r.EndByte > len(content) {
			continue
		}
		b.Write(content[cursor:r.StartByte])
		b.WriteString(d.Signature)
		if r.EndByte > r.StartByte+len(d.Signature) {
			b.WriteString(" { " + placeholder + " }")
		}
		cursor = r.EndByte
	}
	if cursor < len(content) {
		b.Write(content[cursor:])
	}
	return b.String()
}
