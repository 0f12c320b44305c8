package rst

import (
	"fmt"
	"net/url"
	"reflect"
	"strings"

	"go.uber.org/zap"

	"rstc/ast"
	"rstc/config"
	"rstc/layout"
)

// inlineListToRST renders one inline list, first normalizing it through
// the flatten and separator passes.
func (w *Writer) inlineListToRST(inlines []ast.Inline) (string, error) {
	var sb strings.Builder
	for _, in := range insertSeparators(Flatten(inlines)) {
		s, err := w.inlineToRST(in)
		if err != nil {
			return "", err
		}
		sb.WriteString(s)
	}
	return sb.String(), nil
}

func (w *Writer) inlineToRST(inline ast.Inline) (string, error) {
	if err := w.enter(); err != nil {
		return "", err
	}
	defer w.leave()

	switch in := inline.(type) {
	case *ast.Str:
		return escapeText(in.Text, w.opts.Smart), nil
	case *ast.Emph:
		return w.wrapInlines(in.Inlines, "*", "*")
	case *ast.Underline:
		// no underline markup, keep the content
		return w.inlineListToRST(in.Inlines)
	case *ast.Strong:
		return w.wrapInlines(in.Inlines, "**", "**")
	case *ast.Strikeout:
		return w.wrapInlines(in.Inlines, "[STRIKEOUT:", "]")
	case *ast.Superscript:
		return w.wrapInlines(in.Inlines, ":sup:`", "`")
	case *ast.Subscript:
		return w.wrapInlines(in.Inlines, ":sub:`", "`")
	case *ast.SmallCaps:
		return w.inlineListToRST(in.Inlines)
	case *ast.Quoted:
		return w.quotedToRST(in)
	case *ast.Cite:
		return w.inlineListToRST(in.Inlines)
	case *ast.Code:
		return "``" + in.Text + "``", nil
	case *ast.Space:
		return " ", nil
	case *ast.SoftBreak:
		if w.opts.Wrap == config.WrapModePreserve {
			return "\n", nil
		}
		return " ", nil
	case *ast.LineBreak:
		return "\n", nil
	case *ast.Math:
		return w.mathToRST(in), nil
	case *ast.RawInline:
		return w.rawInlineToRST(in), nil
	case *ast.Link:
		return w.linkToRST(in)
	case *ast.Image:
		label, err := w.registerImage(in, nil)
		if err != nil {
			return "", err
		}
		return "|" + label + "|", nil
	case *ast.Note:
		w.notes = append([][]ast.Block{in.Blocks}, w.notes...)
		return fmt.Sprintf(" [%d]_", len(w.notes)), nil
	case *ast.Span:
		return w.inlineListToRST(in.Inlines)
	}
	w.log.Warn("Skipping inline of unknown kind", zap.String("kind", fmt.Sprintf("%T", inline)))
	return "", nil
}

func (w *Writer) wrapInlines(inlines []ast.Inline, open, closing string) (string, error) {
	contents, err := w.inlineListToRST(inlines)
	if err != nil {
		return "", err
	}
	return open + contents + closing, nil
}

func (w *Writer) quotedToRST(q *ast.Quoted) (string, error) {
	contents, err := w.inlineListToRST(q.Inlines)
	if err != nil {
		return "", err
	}
	// with smart punctuation the reader curls plain quotes back, without
	// it we have to emit typographic quotes ourselves
	if w.opts.Smart {
		if q.Type == ast.SingleQuote {
			return "'" + contents + "'", nil
		}
		return "\"" + contents + "\"", nil
	}
	if q.Type == ast.SingleQuote {
		return "‘" + contents + "’", nil
	}
	return "“" + contents + "”", nil
}

func (w *Writer) mathToRST(m *ast.Math) string {
	w.hasMath = true
	if m.Type == ast.InlineMath {
		return ":math:`" + m.Text + "`"
	}
	if strings.Contains(m.Text, "\n") {
		return "\n\n.. math::\n\n" + layout.Indent(m.Text, 3) + "\n\n"
	}
	return "\n\n.. math:: " + m.Text + "\n\n"
}

func (w *Writer) rawInlineToRST(r *ast.RawInline) string {
	switch strings.ToLower(r.Format) {
	case "rst":
		return r.Text
	case "tex", "latex":
		w.hasRawTeX = true
		return ":raw-latex:`" + r.Text + "`"
	}
	w.log.Warn("Skipping raw inline of unsupported format", zap.String("format", r.Format))
	return ""
}

func isURI(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.Scheme != ""
}

func (w *Writer) linkToRST(l *ast.Link) (string, error) {
	// a link around a bare image becomes a clickable substitution
	if img, ok := soleImage(l.Inlines); ok {
		target := l.Target
		label, err := w.registerImage(img, &target)
		if err != nil {
			return "", err
		}
		return "|" + label + "|", nil
	}

	// bare URI and mail autolinks render as themselves
	if len(l.Inlines) == 1 {
		if s, ok := l.Inlines[0].(*ast.Str); ok && isURI(l.Target.URL) {
			if text := strings.TrimPrefix(l.Target.URL, "mailto:"); s.Text == text {
				return text, nil
			}
		}
	}

	label := trimInlines(l.Inlines)
	linktext, err := w.inlineListToRST(label)
	if err != nil {
		return "", err
	}
	if !w.opts.ReferenceLinks {
		return "`" + linktext + " <" + l.Target.URL + ">`__", nil
	}

	if entry := w.findLink(label); entry != nil {
		if entry.target == l.Target {
			return "`" + linktext + "`_", nil
		}
		// the label is taken by a different target, synthesize a fresh one
		// instead of colliding
		base := ast.Stringify(label)
		for n := 1; ; n++ {
			synthetic := []ast.Inline{&ast.Str{Text: fmt.Sprintf("%s-%d", base, n)}}
			if taken := w.findLink(synthetic); taken != nil {
				if taken.target == l.Target {
					return "`" + ast.Stringify(synthetic) + "`_", nil
				}
				continue
			}
			w.links = append([]linkEntry{{label: synthetic, target: l.Target}}, w.links...)
			return "`" + ast.Stringify(synthetic) + "`_", nil
		}
	}

	w.links = append([]linkEntry{{label: label, target: l.Target}}, w.links...)
	return "`" + linktext + "`_", nil
}

func (w *Writer) findLink(label []ast.Inline) *linkEntry {
	for i := range w.links {
		if reflect.DeepEqual(w.links[i].label, label) {
			return &w.links[i]
		}
	}
	return nil
}

// registerImage records an image substitution and returns its rendered
// label. Identical occurrences share one entry, an empty alt text or a
// label already bound to a different image gets a generated name.
func (w *Writer) registerImage(img *ast.Image, link *ast.Target) (string, error) {
	label := img.Inlines
	existing := w.findImage(label)
	if existing != nil && existing.attr.Equal(img.Attr) &&
		existing.target == img.Target && sameTarget(existing.link, link) {
		return w.inlineListToRST(existing.label)
	}
	if ast.Stringify(label) == "" || existing != nil {
		for {
			label = []ast.Inline{&ast.Str{Text: fmt.Sprintf("image%d", w.imageCounter)}}
			w.imageCounter++
			if w.findImage(label) == nil {
				break
			}
		}
	}
	w.images = append([]imageEntry{{
		label:  label,
		attr:   img.Attr,
		target: img.Target,
		link:   link,
	}}, w.images...)
	return w.inlineListToRST(label)
}

func (w *Writer) findImage(label []ast.Inline) *imageEntry {
	for i := range w.images {
		if reflect.DeepEqual(w.images[i].label, label) {
			return &w.images[i]
		}
	}
	return nil
}

func sameTarget(a, b *ast.Target) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// trimInlines drops leading and trailing whitespace tokens, link labels
// may not start or end with whitespace.
func trimInlines(inlines []ast.Inline) []ast.Inline {
	start, end := 0, len(inlines)
	for start < end && isWhitespaceInline(inlines[start]) {
		start++
	}
	for end > start && isWhitespaceInline(inlines[end-1]) {
		end--
	}
	return inlines[start:end]
}

func isWhitespaceInline(in ast.Inline) bool {
	switch in.(type) {
	case *ast.Space, *ast.SoftBreak:
		return true
	}
	return false
}
