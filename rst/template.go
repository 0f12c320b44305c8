package rst

import (
	"fmt"
	"strings"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"
	"go.uber.org/zap"

	"rstc/ast"
	"rstc/layout"
)

// DefaultTemplate frames the rendered body with the optional document
// prologue: title block, table of contents, section numbering and the
// raw-latex role declaration when the body used it.
const DefaultTemplate = `{{- if .Titleblock }}{{ .Titleblock }}

{{ end -}}
{{- if .TOC }}.. contents::
   :depth: {{ .TOCDepth }}

{{ end -}}
{{- if .NumberSections }}.. sectnum::

{{ end -}}
{{- if .RawTeX }}.. role:: raw-latex(raw)
   :format: latex

{{ end -}}
{{ .Body }}
`

// TemplateData is the metadata map handed to the output template.
type TemplateData struct {
	Body           string
	Titleblock     string
	TOC            bool
	TOCDepth       int
	NumberSections bool
	Math           bool
	RawTeX         bool
}

// ExecuteTemplate merges rendered output into the given template text.
func ExecuteTemplate(text string, data TemplateData) (string, error) {
	tmpl, err := template.New("rst").Funcs(sprig.TxtFuncMap()).Parse(text)
	if err != nil {
		return "", fmt.Errorf("unable to parse output template: %w", err)
	}
	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("unable to execute output template: %w", err)
	}
	return sb.String(), nil
}

// Write renders the whole document to finished reStructuredText using the
// given template, or the default one when text is empty.
func Write(doc *ast.Document, text string, opts Options, log *zap.Logger) (string, error) {
	if text == "" {
		text = DefaultTemplate
	}

	w := New(opts, log)
	titleblock, err := w.titleBlock(doc.Meta)
	if err != nil {
		return "", err
	}
	body, err := w.Render(doc)
	if err != nil {
		return "", err
	}
	return ExecuteTemplate(text, TemplateData{
		Body:           body,
		Titleblock:     titleblock,
		TOC:            opts.TableOfContents,
		TOCDepth:       opts.TOCDepth,
		NumberSections: opts.NumberSections,
		Math:           w.HasMath(),
		RawTeX:         w.HasRawTeX(),
	})
}

// titleBlock renders the bibliographic head: the title between full-width
// borders plus author and date fields.
func (w *Writer) titleBlock(meta ast.Meta) (string, error) {
	title, err := w.inlineListToRST(meta.Inlines("title"))
	if err != nil {
		return "", err
	}

	var parts []string
	if title != "" {
		width := layout.LineWidth(title)
		if width < 1 {
			width = 1
		}
		border := strings.Repeat("=", width)
		parts = append(parts, border+"\n"+title+"\n"+border)
	}

	var fields []string
	authors, err := w.metaAuthors(meta)
	if err != nil {
		return "", err
	}
	switch len(authors) {
	case 0:
	case 1:
		fields = append(fields, ":Author: "+authors[0])
	default:
		fields = append(fields, ":Authors: "+strings.Join(authors, "; "))
	}
	if date, err := w.inlineListToRST(meta.Inlines("date")); err != nil {
		return "", err
	} else if date != "" {
		fields = append(fields, ":Date: "+date)
	}
	if len(fields) > 0 {
		parts = append(parts, strings.Join(fields, "\n"))
	}
	return strings.Join(parts, "\n\n"), nil
}

func (w *Writer) metaAuthors(meta ast.Meta) ([]string, error) {
	var values []ast.MetaValue
	switch v := meta["author"].(type) {
	case nil:
		return nil, nil
	case ast.MetaList:
		values = v
	default:
		values = []ast.MetaValue{v}
	}

	var authors []string
	for _, v := range values {
		var inlines []ast.Inline
		switch v := v.(type) {
		case ast.MetaString:
			inlines = []ast.Inline{&ast.Str{Text: string(v)}}
		case ast.MetaInlines:
			inlines = v
		default:
			continue
		}
		s, err := w.inlineListToRST(inlines)
		if err != nil {
			return nil, err
		}
		if s != "" {
			authors = append(authors, s)
		}
	}
	return authors, nil
}
