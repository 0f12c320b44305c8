package rst

import (
	"reflect"

	"rstc/ast"
)

// reStructuredText inline markup does not nest, so nested styling trees
// have to be flattened to a sequence before rendering. Transforms applied
// here, in order: flatten every top node, pull edge spaces out of styled
// wrappers, drop elements left without content, drop spaces stranded after
// display math.

// Flatten normalizes one inline list for rendering. Nested lists inside
// the surviving wrappers are normalized when they are rendered themselves.
func Flatten(inlines []ast.Inline) []ast.Inline {
	var flat []ast.Inline
	for _, in := range inlines {
		flat = append(flat, flattenInline(in)...)
	}
	flat = liftEdgeSpaces(flat)
	flat = dropEmpty(flat)
	return dropSpaceAfterDisplayMath(flat)
}

func flattenInline(outer ast.Inline) []ast.Inline {
	contents, ok := ast.InlineChildren(outer)
	if !ok || len(contents) == 0 {
		return []ast.Inline{outer}
	}

	// the fold below only understands one nesting level, so every child
	// has to be flat before its pair rule runs; opaque wrappers keep
	// their content untouched
	if !isOpaque(outer) {
		var pre []ast.Inline
		for _, in := range contents {
			pre = append(pre, flattenInline(in)...)
		}
		contents = pre
	}

	var flat []ast.Inline
	for _, in := range contents {
		switch {
		case isOpaque(outer) || isOpaque(in):
			// quoted text and plain spans do not render as markup, any
			// nesting inside them is fine
			flat = appendToLast(flat, outer, []ast.Inline{in})
		case isLinkedImage(outer, in):
			flat = appendToLast(flat, outer, []ast.Inline{in})
		case isLink(in):
			// a link cannot sit inside styling markup, promote it
			flat = append(flat, in)
		case isEmph(outer) && isStrong(in):
			// strong wins over surrounding emphasis
			flat = append(flat, in)
		default:
			// overlapping styles cannot be represented, the inner style
			// is dropped and its content spliced into the outer one
			if children, ok := ast.InlineChildren(in); ok {
				flat = appendToLast(flat, outer, children)
			} else {
				flat = appendToLast(flat, outer, []ast.Inline{in})
			}
		}
	}
	return flat
}

// appendToLast wraps toAppend into outer's style and adds it to flat,
// merging with the previous element when that one carries the very same
// style so that identical wrappers never end up back to back.
func appendToLast(flat []ast.Inline, outer ast.Inline, toAppend []ast.Inline) []ast.Inline {
	if len(flat) > 0 {
		last := flat[len(flat)-1]
		if sameWrapper(last, outer) {
			prev, _ := ast.InlineChildren(last)
			merged := make([]ast.Inline, 0, len(prev)+len(toAppend))
			merged = append(merged, prev...)
			merged = append(merged, toAppend...)
			flat[len(flat)-1] = ast.WithInlineChildren(last, merged)
			return flat
		}
	}
	return append(flat, ast.WithInlineChildren(outer, toAppend))
}

// sameWrapper compares two inlines modulo children.
func sameWrapper(a, b ast.Inline) bool {
	return reflect.DeepEqual(ast.WithInlineChildren(a, nil), ast.WithInlineChildren(b, nil))
}

func isOpaque(in ast.Inline) bool {
	switch in := in.(type) {
	case *ast.Quoted:
		return true
	case *ast.Span:
		return len(in.Classes) == 0
	}
	return false
}

func isLinkedImage(outer, in ast.Inline) bool {
	if _, ok := outer.(*ast.Link); !ok {
		return false
	}
	_, ok := in.(*ast.Image)
	return ok
}

func isLink(in ast.Inline) bool {
	_, ok := in.(*ast.Link)
	return ok
}

func isEmph(in ast.Inline) bool {
	_, ok := in.(*ast.Emph)
	return ok
}

func isStrong(in ast.Inline) bool {
	_, ok := in.(*ast.Strong)
	return ok
}

func isStyled(in ast.Inline) bool {
	switch in.(type) {
	case *ast.Emph, *ast.Underline, *ast.Strong, *ast.Strikeout,
		*ast.Superscript, *ast.Subscript, *ast.SmallCaps:
		return true
	}
	return false
}

// liftEdgeSpaces moves leading and trailing spaces out of styled wrappers,
// styled markup may not start or end with whitespace.
func liftEdgeSpaces(inlines []ast.Inline) []ast.Inline {
	var out []ast.Inline
	for _, in := range inlines {
		if !isStyled(in) {
			out = append(out, in)
			continue
		}
		children, _ := ast.InlineChildren(in)
		var trailing bool
		for len(children) > 0 {
			if _, ok := children[0].(*ast.Space); ok {
				out = append(out, &ast.Space{})
				children = children[1:]
				continue
			}
			break
		}
		for len(children) > 0 {
			if _, ok := children[len(children)-1].(*ast.Space); ok {
				trailing = true
				children = children[:len(children)-1]
				continue
			}
			break
		}
		out = append(out, ast.WithInlineChildren(in, children))
		if trailing {
			out = append(out, &ast.Space{})
		}
	}
	return out
}

func dropEmpty(inlines []ast.Inline) []ast.Inline {
	out := inlines[:0]
	for _, in := range inlines {
		if s, ok := in.(*ast.Str); ok && s.Text == "" {
			continue
		}
		if isStyled(in) {
			if children, _ := ast.InlineChildren(in); len(children) == 0 {
				continue
			}
		}
		out = append(out, in)
	}
	return out
}

// dropSpaceAfterDisplayMath removes the space stranded after display math,
// which renders as its own directive block anyway.
func dropSpaceAfterDisplayMath(inlines []ast.Inline) []ast.Inline {
	var out []ast.Inline
	for i, in := range inlines {
		if i > 0 {
			if m, ok := inlines[i-1].(*ast.Math); ok && m.Type == ast.DisplayMath {
				if _, ok := in.(*ast.Space); ok {
					continue
				}
			}
		}
		out = append(out, in)
	}
	return out
}
