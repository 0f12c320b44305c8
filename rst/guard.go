package rst

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"rstc/ast"
)

// Adjacent inline runs can merge into unintended markup once rendered. A
// zero-width escaped space keeps them apart without adding visible text.

func separator() ast.Inline {
	return &ast.RawInline{Format: "rst", Text: "\\ "}
}

// isComplex reports whether an inline renders with its own open and close
// delimiters and so is sensitive to what sits right next to it.
func isComplex(in ast.Inline) bool {
	switch in := in.(type) {
	case *ast.Emph, *ast.Underline, *ast.Strong, *ast.Strikeout,
		*ast.Superscript, *ast.Subscript, *ast.SmallCaps,
		*ast.Link, *ast.Image, *ast.Code, *ast.Math:
		return true
	case *ast.Cite:
		return len(in.Inlines) > 0 && isComplex(in.Inlines[0])
	case *ast.Span:
		return len(in.Inlines) > 0 && isComplex(in.Inlines[0])
	}
	return false
}

const (
	safeAfterComplex  = `-.,:;!?\/'")]}>` + "–—"
	safeBeforeComplex = `-:/'"<([{` + "–—"
)

func okAfterComplex(in ast.Inline) bool {
	switch in := in.(type) {
	case *ast.Space, *ast.SoftBreak, *ast.LineBreak:
		return true
	case *ast.Str:
		r, _ := utf8.DecodeRuneInString(in.Text)
		if r == utf8.RuneError {
			return false
		}
		return unicode.IsSpace(r) || strings.ContainsRune(safeAfterComplex, r)
	}
	return false
}

func okBeforeComplex(in ast.Inline) bool {
	switch in := in.(type) {
	case *ast.Space, *ast.SoftBreak, *ast.LineBreak:
		return true
	case *ast.Str:
		r, _ := utf8.DecodeLastRuneInString(in.Text)
		if r == utf8.RuneError {
			return false
		}
		return unicode.IsSpace(r) || strings.ContainsRune(safeBeforeComplex, r)
	}
	return false
}

var bracketPairs = map[rune]rune{
	'\'': '\'',
	'"':  '"',
	'(':  ')',
	'[':  ']',
	'{':  '}',
	'<':  '>',
}

// joinsBracketPair reports whether two plain runs meet on a matching
// bracketing pair, which readers would take for a quote or delimiter pair.
func joinsBracketPair(prev, cur ast.Inline) bool {
	ps, ok := prev.(*ast.Str)
	if !ok || ps.Text == "" {
		return false
	}
	cs, ok := cur.(*ast.Str)
	if !ok || cs.Text == "" {
		return false
	}
	open, _ := utf8.DecodeLastRuneInString(ps.Text)
	first, _ := utf8.DecodeRuneInString(cs.Text)
	closing, ok := bracketPairs[open]
	return ok && first == closing
}

func needSeparator(prev, cur ast.Inline) bool {
	if isComplex(prev) && !okAfterComplex(cur) {
		return true
	}
	if isComplex(cur) && !okBeforeComplex(prev) {
		return true
	}
	return joinsBracketPair(prev, cur)
}

// insertSeparators puts a zero-width separator between every adjacent pair
// whose unseparated concatenation would be misparsed. Runs on the already
// flattened list, right before rendering.
func insertSeparators(inlines []ast.Inline) []ast.Inline {
	if len(inlines) < 2 {
		return inlines
	}
	out := make([]ast.Inline, 0, len(inlines))
	for i, in := range inlines {
		if i > 0 && needSeparator(inlines[i-1], in) {
			out = append(out, separator())
		}
		out = append(out, in)
	}
	return out
}
