// Package layout provides the text measurement and composition primitives
// shared by format writers: display-width aware measurement, indenting,
// hanging prefixes and greedy wrapping.
package layout

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// LineWidth returns the display width of a single line.
func LineWidth(s string) int {
	return runewidth.StringWidth(s)
}

// Width returns the widest display width across the lines of s.
func Width(s string) int {
	max := 0
	for _, line := range strings.Split(s, "\n") {
		if w := runewidth.StringWidth(line); w > max {
			max = w
		}
	}
	return max
}

// Indent prefixes every non-empty line of s with n spaces.
func Indent(s string, n int) string {
	if n <= 0 || s == "" {
		return s
	}
	return Hang(s, strings.Repeat(" ", n), strings.Repeat(" ", n))
}

// Hang prefixes the first line of s with first and every following
// non-empty line with rest. Used for list items and directive bodies.
func Hang(s, first, rest string) string {
	lines := strings.Split(s, "\n")
	var sb strings.Builder
	for i, line := range lines {
		if i > 0 {
			sb.WriteByte('\n')
		}
		switch {
		case i == 0:
			sb.WriteString(first)
			sb.WriteString(line)
		case line != "":
			sb.WriteString(rest)
			sb.WriteString(line)
		}
	}
	return sb.String()
}

// Pad right-pads a single line with spaces to the given display width.
func Pad(s string, width int) string {
	if gap := width - runewidth.StringWidth(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}

// Wrap re-flows each line of s to the given display width, breaking only at
// plain spaces. A space preceded by a backslash is an escaped-space markup
// token and is never treated as a break point, so zero-width separators
// survive wrapping intact. Width <= 0 disables wrapping.
func Wrap(s string, width int) string {
	if width <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	var out []string
	for _, line := range lines {
		out = append(out, wrapLine(line, width)...)
	}
	return strings.Join(out, "\n")
}

func wrapLine(line string, width int) []string {
	words := splitWords(line)
	if len(words) == 0 {
		return []string{line}
	}
	var (
		out []string
		cur strings.Builder
		w   int
	)
	for _, word := range words {
		ww := runewidth.StringWidth(word)
		if w > 0 && w+1+ww > width {
			out = append(out, cur.String())
			cur.Reset()
			w = 0
		}
		if w > 0 {
			cur.WriteByte(' ')
			w++
		}
		cur.WriteString(word)
		w += ww
	}
	out = append(out, cur.String())
	return out
}

// splitWords splits at plain spaces, keeping backslash-escaped spaces
// glued to the word they belong to.
func splitWords(line string) []string {
	var (
		words []string
		cur   strings.Builder
		esc   bool
	)
	for _, r := range line {
		if r == ' ' && !esc {
			if cur.Len() > 0 {
				words = append(words, cur.String())
				cur.Reset()
			}
			continue
		}
		esc = r == '\\' && !esc
		cur.WriteRune(r)
	}
	if cur.Len() > 0 {
		words = append(words, cur.String())
	}
	return words
}

// ChompRight trims trailing whitespace from every line and trailing blank
// lines from the block.
func ChompRight(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	out := strings.Join(lines, "\n")
	return strings.TrimRight(out, "\n")
}
