package rst

import (
	"strings"
	"unicode"
)

// Inline markup boundary categories as docutils defines them: open/close
// punctuation, initial/final quotes, dashes and other punctuation. Pinned
// here so escaping does not drift with Unicode table updates elsewhere.
var markupBoundary = []*unicode.RangeTable{
	unicode.Ps,
	unicode.Pe,
	unicode.Pi,
	unicode.Pf,
	unicode.Pd,
	unicode.Po,
}

func isMarkupChar(r rune) bool {
	return r == '*' || r == '_' || r == '|' || r == '`'
}

// canPrecedeMarkup reports whether r may legally sit right before an inline
// markup start string.
func canPrecedeMarkup(r rune) bool {
	if unicode.IsSpace(r) {
		return true
	}
	switch r {
	case '-', ':', '/', '\'', '"', '<', '(', '[', '{':
		return true
	}
	return unicode.IsOneOf(markupBoundary, r)
}

// canFollowMarkup reports whether r may legally sit right after an inline
// markup end string.
func canFollowMarkup(r rune) bool {
	if unicode.IsSpace(r) {
		return true
	}
	switch r {
	case '-', '.', ',', ':', ';', '!', '?', '\\', '/', '\'', '"', ')', ']', '}', '>':
		return true
	}
	return unicode.IsOneOf(markupBoundary, r)
}

func isAlphaNum(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// escapeText makes literal text safe against being reparsed as markup. Text
// with no special characters is returned as is, which is the common case.
// With smart on, characters which readers turn into typographic
// substitutions (quotes, em-dashes, ellipses) are escaped as well.
func escapeText(s string, smart bool) string {
	needsEscape := func(r rune) bool {
		if r == '\\' || isMarkupChar(r) {
			return true
		}
		return smart && (r == '\'' || r == '"' || r == '-' || r == '.')
	}
	if !strings.ContainsFunc(s, needsEscape) {
		return s
	}

	rs := []rune(s)
	var sb strings.Builder
	sb.Grow(len(s) + len(s)/4)

	canStart := true
	for i := 0; i < len(rs); i++ {
		c := rs[i]
		switch {
		case c == '\\':
			sb.WriteString(`\\`)
			canStart = false
		case smart && (c == '\'' || c == '"'):
			sb.WriteByte('\\')
			sb.WriteRune(c)
			canStart = false
		case smart && c == '-' && i+1 < len(rs) && rs[i+1] == '-':
			// break up "--" so it does not become a dash; the second
			// hyphen is rescanned on the next step
			sb.WriteString(`\-`)
			canStart = false
		case smart && c == '.' && i+2 < len(rs) && rs[i+1] == '.' && rs[i+2] == '.':
			sb.WriteString(`\.`)
			canStart = false
		case isMarkupChar(c) && i == len(rs)-1:
			// markup characters cannot close unescaped at end of text
			sb.WriteByte('\\')
			sb.WriteRune(c)
		case isMarkupChar(c):
			next := rs[i+1]
			esc := (!canStart && canFollowMarkup(next)) || (canStart && !unicode.IsSpace(next))
			if c == '_' && !isAlphaNum(next) {
				esc = true
			}
			if esc {
				sb.WriteByte('\\')
			}
			sb.WriteRune(c)
			canStart = false
		case canPrecedeMarkup(c):
			sb.WriteRune(c)
			canStart = true
		default:
			sb.WriteRune(c)
			canStart = false
		}
	}
	return sb.String()
}
