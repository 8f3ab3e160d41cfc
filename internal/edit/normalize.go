package edit

import "strings"

// normalizeLineEndings reconciles \r\n|\r|\n to \n, per spec.md §4.7 step 1
// ("for line endings ... all reconciled"). Applied to both file content and
// targetString/context strings before any matching happens.
func normalizeLineEndings(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return s
}

// normalizeQuotes folds curly/smart quote variants to their straight ASCII
// equivalents, the "quote style in single-line contexts" normalization
// spec.md §4.7 gates behind normalization=structural.
func normalizeQuotes(s string) string {
	replacer := strings.NewReplacer(
		"“", "\"", "”", "\"",
		"‘", "'", "’", "'",
	)
	return replacer.Replace(s)
}

// normalizeForMatch applies the full step-1 pipeline to one string (file
// content or targetString/context) ahead of candidate generation.
func normalizeForMatch(s string, mode Normalization) string {
	s = normalizeLineEndings(s)
	if mode == NormalizationStructural {
		s = normalizeQuotes(s)
	}
	return s
}

// decodeOverEscapes decodes common over-escapes (\", \', \\, and a literal
// "\n" outside any quoted string) in a replacement string, to match typical
// transport encodings that double-escape content before it reaches this
// module (spec.md §4.7: "decoded unless they occur inside a quoted string
// in the replacement").
func decodeOverEscapes(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inQuote := byte(0)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inQuote != 0 {
			b.WriteByte(c)
			if c == inQuote && (i == 0 || s[i-1] != '\\') {
				inQuote = 0
			}
			continue
		}
		if c == '"' || c == '\'' || c == '`' {
			inQuote = c
			b.WriteByte(c)
			continue
		}
		if c == '\\' && i+1 < len(s) {
			next := s[i+1]
			switch next {
			case '"', '\'', '`', '\\':
				b.WriteByte(next)
				i++
				continue
			case 'n':
				b.WriteByte('\n')
				i++
				continue
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}
