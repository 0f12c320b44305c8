package rst

import (
	"strconv"
	"strings"

	"rstc/layout"
)

// The registries are filled front-to-back during traversal, so reversing
// restores document order before the final sections are written out.

func reversed[T any](s []T) []T {
	out := make([]T, len(s))
	for i, v := range s {
		out[len(s)-1-i] = v
	}
	return out
}

// refsToRST renders the trailing reference sections: footnotes, link
// targets, image substitutions.
func (w *Writer) refsToRST() (string, error) {
	notes, err := w.notesToRST()
	if err != nil {
		return "", err
	}
	links, err := w.linksToRST()
	if err != nil {
		return "", err
	}
	images, err := w.imagesToRST()
	if err != nil {
		return "", err
	}
	return joinBlocks([]string{notes, links, images}, "\n\n"), nil
}

func (w *Writer) notesToRST() (string, error) {
	var out []string
	for i, note := range reversed(w.notes) {
		contents, err := w.blockListToRST(note, false)
		if err != nil {
			return "", err
		}
		marker := ".. [" + strconv.Itoa(i+1) + "]"
		out = append(out, marker+"\n"+layout.Indent(contents, 3))
	}
	return strings.Join(out, "\n\n"), nil
}

func (w *Writer) linksToRST() (string, error) {
	var out []string
	for _, entry := range reversed(w.links) {
		label, err := w.inlineListToRST(entry.label)
		if err != nil {
			return "", err
		}
		if strings.Contains(label, ":") {
			label = "`" + label + "`"
		}
		out = append(out, ".. _"+label+": "+entry.target.URL)
	}
	return strings.Join(out, "\n"), nil
}

func (w *Writer) imagesToRST() (string, error) {
	var out []string
	for _, entry := range reversed(w.images) {
		label, err := w.inlineListToRST(entry.label)
		if err != nil {
			return "", err
		}

		var fields []string
		if entry.target.Title != "" {
			fields = append(fields, ":alt: "+entry.target.Title)
		}
		if entry.attr.ID != "" {
			fields = append(fields, ":name: "+entry.attr.ID)
		}
		if align, ok := alignmentClass(entry.attr.Classes); ok {
			fields = append(fields, ":align: "+align)
		}
		fields = append(fields, dimensionFields(&entry.attr)...)
		if entry.link != nil {
			fields = append(fields, ":target: "+entry.link.URL)
		}

		s := ".. |" + label + "| image:: " + entry.target.URL
		if len(fields) > 0 {
			s += "\n" + layout.Indent(strings.Join(fields, "\n"), 3)
		}
		out = append(out, s)
	}
	return strings.Join(out, "\n\n"), nil
}
