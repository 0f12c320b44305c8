package ast

import (
	"encoding/json"
	"fmt"
	"io"
)

// Documents arrive in the JSON serialization produced by pandoc: every
// element is a {"t": tag, "c": contents} pair, attributes and targets are
// positional arrays. We check the API major version and tolerate minor
// differences; unknown tags fail the decode so malformed input is not
// silently dropped.

const supportedAPIMajor = 1

type envelope struct {
	T string          `json:"t"`
	C json.RawMessage `json:"c"`
}

// Decode reads one pandoc-JSON document.
func Decode(r io.Reader) (*Document, error) {
	var raw struct {
		APIVersion []int                      `json:"pandoc-api-version"`
		Meta       map[string]json.RawMessage `json:"meta"`
		Blocks     []json.RawMessage          `json:"blocks"`
	}
	dec := json.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("unable to decode document: %w", err)
	}
	if len(raw.APIVersion) == 0 || raw.APIVersion[0] != supportedAPIMajor {
		return nil, fmt.Errorf("unsupported document API version %v", raw.APIVersion)
	}

	doc := &Document{Meta: make(Meta, len(raw.Meta))}
	for k, v := range raw.Meta {
		mv, err := decodeMetaValue(v)
		if err != nil {
			return nil, fmt.Errorf("metadata %q: %w", k, err)
		}
		doc.Meta[k] = mv
	}

	blocks, err := decodeBlocks(raw.Blocks)
	if err != nil {
		return nil, err
	}
	doc.Blocks = blocks
	return doc, nil
}

func split(raw json.RawMessage, want int, what string) ([]json.RawMessage, error) {
	var parts []json.RawMessage
	if err := json.Unmarshal(raw, &parts); err != nil {
		return nil, fmt.Errorf("%s: %w", what, err)
	}
	if want >= 0 && len(parts) != want {
		return nil, fmt.Errorf("%s: expected %d components, got %d", what, want, len(parts))
	}
	return parts, nil
}

func decodeBlocks(raws []json.RawMessage) ([]Block, error) {
	blocks := make([]Block, 0, len(raws))
	for _, raw := range raws {
		b, err := decodeBlock(raw)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}

func decodeBlockss(raw json.RawMessage, what string) ([][]Block, error) {
	items, err := split(raw, -1, what)
	if err != nil {
		return nil, err
	}
	result := make([][]Block, 0, len(items))
	for _, item := range items {
		var raws []json.RawMessage
		if err := json.Unmarshal(item, &raws); err != nil {
			return nil, fmt.Errorf("%s item: %w", what, err)
		}
		blocks, err := decodeBlocks(raws)
		if err != nil {
			return nil, err
		}
		result = append(result, blocks)
	}
	return result, nil
}

func decodeInlines(raw json.RawMessage, what string) ([]Inline, error) {
	raws, err := split(raw, -1, what)
	if err != nil {
		return nil, err
	}
	inlines := make([]Inline, 0, len(raws))
	for _, r := range raws {
		in, err := decodeInline(r)
		if err != nil {
			return nil, err
		}
		inlines = append(inlines, in)
	}
	return inlines, nil
}

func decodeAttr(raw json.RawMessage) (Attr, error) {
	parts, err := split(raw, 3, "attr")
	if err != nil {
		return Attr{}, err
	}
	var attr Attr
	if err := json.Unmarshal(parts[0], &attr.ID); err != nil {
		return Attr{}, fmt.Errorf("attr id: %w", err)
	}
	if err := json.Unmarshal(parts[1], &attr.Classes); err != nil {
		return Attr{}, fmt.Errorf("attr classes: %w", err)
	}
	var kvs [][2]string
	if err := json.Unmarshal(parts[2], &kvs); err != nil {
		return Attr{}, fmt.Errorf("attr key-values: %w", err)
	}
	for _, kv := range kvs {
		attr.KVs = append(attr.KVs, KV{Key: kv[0], Value: kv[1]})
	}
	return attr, nil
}

func decodeTarget(raw json.RawMessage) (Target, error) {
	var t [2]string
	if err := json.Unmarshal(raw, &t); err != nil {
		return Target{}, fmt.Errorf("target: %w", err)
	}
	return Target{URL: t[0], Title: t[1]}, nil
}

func decodeTag(raw json.RawMessage, what string) (string, error) {
	var e envelope
	if err := json.Unmarshal(raw, &e); err != nil {
		return "", fmt.Errorf("%s: %w", what, err)
	}
	return e.T, nil
}

func decodeInline(raw json.RawMessage) (Inline, error) {
	var e envelope
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, fmt.Errorf("inline: %w", err)
	}
	wrapped := func() ([]Inline, error) { return decodeInlines(e.C, e.T) }
	switch e.T {
	case "Str":
		var s string
		if err := json.Unmarshal(e.C, &s); err != nil {
			return nil, fmt.Errorf("Str: %w", err)
		}
		return &Str{Text: s}, nil
	case "Emph":
		ins, err := wrapped()
		if err != nil {
			return nil, err
		}
		return &Emph{Inlines: ins}, nil
	case "Underline":
		ins, err := wrapped()
		if err != nil {
			return nil, err
		}
		return &Underline{Inlines: ins}, nil
	case "Strong":
		ins, err := wrapped()
		if err != nil {
			return nil, err
		}
		return &Strong{Inlines: ins}, nil
	case "Strikeout":
		ins, err := wrapped()
		if err != nil {
			return nil, err
		}
		return &Strikeout{Inlines: ins}, nil
	case "Superscript":
		ins, err := wrapped()
		if err != nil {
			return nil, err
		}
		return &Superscript{Inlines: ins}, nil
	case "Subscript":
		ins, err := wrapped()
		if err != nil {
			return nil, err
		}
		return &Subscript{Inlines: ins}, nil
	case "SmallCaps":
		ins, err := wrapped()
		if err != nil {
			return nil, err
		}
		return &SmallCaps{Inlines: ins}, nil
	case "Quoted":
		parts, err := split(e.C, 2, "Quoted")
		if err != nil {
			return nil, err
		}
		qt, err := decodeTag(parts[0], "quote type")
		if err != nil {
			return nil, err
		}
		ins, err := decodeInlines(parts[1], "Quoted")
		if err != nil {
			return nil, err
		}
		return &Quoted{Type: QuoteType(qt), Inlines: ins}, nil
	case "Cite":
		parts, err := split(e.C, 2, "Cite")
		if err != nil {
			return nil, err
		}
		citations, err := decodeCitations(parts[0])
		if err != nil {
			return nil, err
		}
		ins, err := decodeInlines(parts[1], "Cite")
		if err != nil {
			return nil, err
		}
		return &Cite{Citations: citations, Inlines: ins}, nil
	case "Code":
		parts, err := split(e.C, 2, "Code")
		if err != nil {
			return nil, err
		}
		attr, err := decodeAttr(parts[0])
		if err != nil {
			return nil, err
		}
		var text string
		if err := json.Unmarshal(parts[1], &text); err != nil {
			return nil, fmt.Errorf("Code: %w", err)
		}
		return &Code{Attr: attr, Text: text}, nil
	case "Space":
		return &Space{}, nil
	case "SoftBreak":
		return &SoftBreak{}, nil
	case "LineBreak":
		return &LineBreak{}, nil
	case "Math":
		parts, err := split(e.C, 2, "Math")
		if err != nil {
			return nil, err
		}
		mt, err := decodeTag(parts[0], "math type")
		if err != nil {
			return nil, err
		}
		var text string
		if err := json.Unmarshal(parts[1], &text); err != nil {
			return nil, fmt.Errorf("Math: %w", err)
		}
		return &Math{Type: MathType(mt), Text: text}, nil
	case "RawInline":
		parts, err := split(e.C, 2, "RawInline")
		if err != nil {
			return nil, err
		}
		var format, text string
		if err := json.Unmarshal(parts[0], &format); err != nil {
			return nil, fmt.Errorf("RawInline format: %w", err)
		}
		if err := json.Unmarshal(parts[1], &text); err != nil {
			return nil, fmt.Errorf("RawInline text: %w", err)
		}
		return &RawInline{Format: format, Text: text}, nil
	case "Link", "Image":
		parts, err := split(e.C, 3, e.T)
		if err != nil {
			return nil, err
		}
		attr, err := decodeAttr(parts[0])
		if err != nil {
			return nil, err
		}
		ins, err := decodeInlines(parts[1], e.T)
		if err != nil {
			return nil, err
		}
		target, err := decodeTarget(parts[2])
		if err != nil {
			return nil, err
		}
		if e.T == "Link" {
			return &Link{Attr: attr, Inlines: ins, Target: target}, nil
		}
		return &Image{Attr: attr, Inlines: ins, Target: target}, nil
	case "Note":
		var raws []json.RawMessage
		if err := json.Unmarshal(e.C, &raws); err != nil {
			return nil, fmt.Errorf("Note: %w", err)
		}
		blocks, err := decodeBlocks(raws)
		if err != nil {
			return nil, err
		}
		return &Note{Blocks: blocks}, nil
	case "Span":
		parts, err := split(e.C, 2, "Span")
		if err != nil {
			return nil, err
		}
		attr, err := decodeAttr(parts[0])
		if err != nil {
			return nil, err
		}
		ins, err := decodeInlines(parts[1], "Span")
		if err != nil {
			return nil, err
		}
		return &Span{Attr: attr, Inlines: ins}, nil
	}
	return nil, fmt.Errorf("unknown inline element %q", e.T)
}

func decodeCitations(raw json.RawMessage) ([]Citation, error) {
	var raws []struct {
		ID      string            `json:"citationId"`
		Prefix  []json.RawMessage `json:"citationPrefix"`
		Suffix  []json.RawMessage `json:"citationSuffix"`
		Mode    envelope          `json:"citationMode"`
		NoteNum int               `json:"citationNoteNum"`
		Hash    int               `json:"citationHash"`
	}
	if err := json.Unmarshal(raw, &raws); err != nil {
		return nil, fmt.Errorf("citations: %w", err)
	}
	citations := make([]Citation, 0, len(raws))
	for _, r := range raws {
		prefix, err := decodeBatch(r.Prefix)
		if err != nil {
			return nil, err
		}
		suffix, err := decodeBatch(r.Suffix)
		if err != nil {
			return nil, err
		}
		citations = append(citations, Citation{
			ID:      r.ID,
			Prefix:  prefix,
			Suffix:  suffix,
			Mode:    CitationMode(r.Mode.T),
			NoteNum: r.NoteNum,
			Hash:    r.Hash,
		})
	}
	return citations, nil
}

func decodeBatch(raws []json.RawMessage) ([]Inline, error) {
	inlines := make([]Inline, 0, len(raws))
	for _, r := range raws {
		in, err := decodeInline(r)
		if err != nil {
			return nil, err
		}
		inlines = append(inlines, in)
	}
	return inlines, nil
}

func decodeBlock(raw json.RawMessage) (Block, error) {
	var e envelope
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, fmt.Errorf("block: %w", err)
	}
	switch e.T {
	case "Plain":
		ins, err := decodeInlines(e.C, "Plain")
		if err != nil {
			return nil, err
		}
		return &Plain{Inlines: ins}, nil
	case "Para":
		ins, err := decodeInlines(e.C, "Para")
		if err != nil {
			return nil, err
		}
		return &Para{Inlines: ins}, nil
	case "LineBlock":
		raws, err := split(e.C, -1, "LineBlock")
		if err != nil {
			return nil, err
		}
		lines := make([][]Inline, 0, len(raws))
		for _, r := range raws {
			line, err := decodeInlines(r, "LineBlock line")
			if err != nil {
				return nil, err
			}
			lines = append(lines, line)
		}
		return &LineBlock{Lines: lines}, nil
	case "CodeBlock":
		parts, err := split(e.C, 2, "CodeBlock")
		if err != nil {
			return nil, err
		}
		attr, err := decodeAttr(parts[0])
		if err != nil {
			return nil, err
		}
		var text string
		if err := json.Unmarshal(parts[1], &text); err != nil {
			return nil, fmt.Errorf("CodeBlock: %w", err)
		}
		return &CodeBlock{Attr: attr, Text: text}, nil
	case "RawBlock":
		parts, err := split(e.C, 2, "RawBlock")
		if err != nil {
			return nil, err
		}
		var format, text string
		if err := json.Unmarshal(parts[0], &format); err != nil {
			return nil, fmt.Errorf("RawBlock format: %w", err)
		}
		if err := json.Unmarshal(parts[1], &text); err != nil {
			return nil, fmt.Errorf("RawBlock text: %w", err)
		}
		return &RawBlock{Format: format, Text: text}, nil
	case "BlockQuote":
		var raws []json.RawMessage
		if err := json.Unmarshal(e.C, &raws); err != nil {
			return nil, fmt.Errorf("BlockQuote: %w", err)
		}
		blocks, err := decodeBlocks(raws)
		if err != nil {
			return nil, err
		}
		return &BlockQuote{Blocks: blocks}, nil
	case "OrderedList":
		parts, err := split(e.C, 2, "OrderedList")
		if err != nil {
			return nil, err
		}
		attrs, err := decodeListAttrs(parts[0])
		if err != nil {
			return nil, err
		}
		items, err := decodeBlockss(parts[1], "OrderedList")
		if err != nil {
			return nil, err
		}
		return &OrderedList{Attr: attrs, Items: items}, nil
	case "BulletList":
		items, err := decodeBlockss(e.C, "BulletList")
		if err != nil {
			return nil, err
		}
		return &BulletList{Items: items}, nil
	case "DefinitionList":
		raws, err := split(e.C, -1, "DefinitionList")
		if err != nil {
			return nil, err
		}
		items := make([]Definition, 0, len(raws))
		for _, r := range raws {
			parts, err := split(r, 2, "definition")
			if err != nil {
				return nil, err
			}
			term, err := decodeInlines(parts[0], "definition term")
			if err != nil {
				return nil, err
			}
			defs, err := decodeBlockss(parts[1], "definition body")
			if err != nil {
				return nil, err
			}
			items = append(items, Definition{Term: term, Definitions: defs})
		}
		return &DefinitionList{Items: items}, nil
	case "Header":
		parts, err := split(e.C, 3, "Header")
		if err != nil {
			return nil, err
		}
		var level int
		if err := json.Unmarshal(parts[0], &level); err != nil {
			return nil, fmt.Errorf("Header level: %w", err)
		}
		attr, err := decodeAttr(parts[1])
		if err != nil {
			return nil, err
		}
		ins, err := decodeInlines(parts[2], "Header")
		if err != nil {
			return nil, err
		}
		return &Header{Attr: attr, Level: level, Inlines: ins}, nil
	case "HorizontalRule":
		return &HorizontalRule{}, nil
	case "Table":
		return decodeTable(e.C)
	case "Figure":
		parts, err := split(e.C, 3, "Figure")
		if err != nil {
			return nil, err
		}
		attr, err := decodeAttr(parts[0])
		if err != nil {
			return nil, err
		}
		caption, err := decodeCaption(parts[1])
		if err != nil {
			return nil, err
		}
		var raws []json.RawMessage
		if err := json.Unmarshal(parts[2], &raws); err != nil {
			return nil, fmt.Errorf("Figure: %w", err)
		}
		blocks, err := decodeBlocks(raws)
		if err != nil {
			return nil, err
		}
		return &Figure{Attr: attr, Caption: caption, Blocks: blocks}, nil
	case "Div":
		parts, err := split(e.C, 2, "Div")
		if err != nil {
			return nil, err
		}
		attr, err := decodeAttr(parts[0])
		if err != nil {
			return nil, err
		}
		var raws []json.RawMessage
		if err := json.Unmarshal(parts[1], &raws); err != nil {
			return nil, fmt.Errorf("Div: %w", err)
		}
		blocks, err := decodeBlocks(raws)
		if err != nil {
			return nil, err
		}
		return &Div{Attr: attr, Blocks: blocks}, nil
	}
	return nil, fmt.Errorf("unknown block element %q", e.T)
}

func decodeListAttrs(raw json.RawMessage) (ListAttrs, error) {
	parts, err := split(raw, 3, "list attributes")
	if err != nil {
		return ListAttrs{}, err
	}
	var attrs ListAttrs
	if err := json.Unmarshal(parts[0], &attrs.Start); err != nil {
		return ListAttrs{}, fmt.Errorf("list start: %w", err)
	}
	style, err := decodeTag(parts[1], "list style")
	if err != nil {
		return ListAttrs{}, err
	}
	delim, err := decodeTag(parts[2], "list delimiter")
	if err != nil {
		return ListAttrs{}, err
	}
	attrs.Style = ListNumberStyle(style)
	attrs.Delimiter = ListNumberDelim(delim)
	return attrs, nil
}

func decodeCaption(raw json.RawMessage) (Caption, error) {
	parts, err := split(raw, 2, "caption")
	if err != nil {
		return Caption{}, err
	}
	var caption Caption
	if string(parts[0]) != "null" {
		caption.Short, err = decodeInlines(parts[0], "short caption")
		if err != nil {
			return Caption{}, err
		}
	}
	var raws []json.RawMessage
	if err := json.Unmarshal(parts[1], &raws); err != nil {
		return Caption{}, fmt.Errorf("caption body: %w", err)
	}
	caption.Long, err = decodeBlocks(raws)
	if err != nil {
		return Caption{}, err
	}
	return caption, nil
}

func decodeColSpec(raw json.RawMessage) (ColSpec, error) {
	parts, err := split(raw, 2, "column spec")
	if err != nil {
		return ColSpec{}, err
	}
	align, err := decodeTag(parts[0], "column alignment")
	if err != nil {
		return ColSpec{}, err
	}
	var width envelope
	if err := json.Unmarshal(parts[1], &width); err != nil {
		return ColSpec{}, fmt.Errorf("column width: %w", err)
	}
	spec := ColSpec{Align: Alignment(align), Width: ColWidth{Default: true}}
	if width.T == "ColWidth" {
		spec.Width.Default = false
		if err := json.Unmarshal(width.C, &spec.Width.Width); err != nil {
			return ColSpec{}, fmt.Errorf("column width value: %w", err)
		}
	}
	return spec, nil
}

func decodeRows(raw json.RawMessage, what string) ([]TableRow, error) {
	raws, err := split(raw, -1, what)
	if err != nil {
		return nil, err
	}
	rows := make([]TableRow, 0, len(raws))
	for _, r := range raws {
		parts, err := split(r, 2, "table row")
		if err != nil {
			return nil, err
		}
		var row TableRow
		if row.Attr, err = decodeAttr(parts[0]); err != nil {
			return nil, err
		}
		cellRaws, err := split(parts[1], -1, "table cells")
		if err != nil {
			return nil, err
		}
		for _, c := range cellRaws {
			cell, err := decodeCell(c)
			if err != nil {
				return nil, err
			}
			row.Cells = append(row.Cells, cell)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func decodeCell(raw json.RawMessage) (TableCell, error) {
	parts, err := split(raw, 5, "table cell")
	if err != nil {
		return TableCell{}, err
	}
	var cell TableCell
	if cell.Attr, err = decodeAttr(parts[0]); err != nil {
		return TableCell{}, err
	}
	align, err := decodeTag(parts[1], "cell alignment")
	if err != nil {
		return TableCell{}, err
	}
	cell.Align = Alignment(align)
	if err := json.Unmarshal(parts[2], &cell.RowSpan); err != nil {
		return TableCell{}, fmt.Errorf("cell row span: %w", err)
	}
	if err := json.Unmarshal(parts[3], &cell.ColSpan); err != nil {
		return TableCell{}, fmt.Errorf("cell col span: %w", err)
	}
	var raws []json.RawMessage
	if err := json.Unmarshal(parts[4], &raws); err != nil {
		return TableCell{}, fmt.Errorf("cell blocks: %w", err)
	}
	if cell.Blocks, err = decodeBlocks(raws); err != nil {
		return TableCell{}, err
	}
	return cell, nil
}

func decodeHeadFoot(raw json.RawMessage, what string) (TableHeadFoot, error) {
	parts, err := split(raw, 2, what)
	if err != nil {
		return TableHeadFoot{}, err
	}
	var hf TableHeadFoot
	if hf.Attr, err = decodeAttr(parts[0]); err != nil {
		return TableHeadFoot{}, err
	}
	if hf.Rows, err = decodeRows(parts[1], what); err != nil {
		return TableHeadFoot{}, err
	}
	return hf, nil
}

func decodeTable(raw json.RawMessage) (Block, error) {
	parts, err := split(raw, 6, "Table")
	if err != nil {
		return nil, err
	}
	var table Table
	if table.Attr, err = decodeAttr(parts[0]); err != nil {
		return nil, err
	}
	if table.Caption, err = decodeCaption(parts[1]); err != nil {
		return nil, err
	}
	specRaws, err := split(parts[2], -1, "column specs")
	if err != nil {
		return nil, err
	}
	for _, r := range specRaws {
		spec, err := decodeColSpec(r)
		if err != nil {
			return nil, err
		}
		table.Columns = append(table.Columns, spec)
	}
	if table.Head, err = decodeHeadFoot(parts[3], "table head"); err != nil {
		return nil, err
	}
	bodyRaws, err := split(parts[4], -1, "table bodies")
	if err != nil {
		return nil, err
	}
	for _, r := range bodyRaws {
		bodyParts, err := split(r, 4, "table body")
		if err != nil {
			return nil, err
		}
		var body TableBody
		if body.Attr, err = decodeAttr(bodyParts[0]); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(bodyParts[1], &body.RowHeadColumns); err != nil {
			return nil, fmt.Errorf("table body head columns: %w", err)
		}
		if body.Head, err = decodeRows(bodyParts[2], "table body head"); err != nil {
			return nil, err
		}
		if body.Body, err = decodeRows(bodyParts[3], "table body"); err != nil {
			return nil, err
		}
		table.Bodies = append(table.Bodies, body)
	}
	if table.Foot, err = decodeHeadFoot(parts[5], "table foot"); err != nil {
		return nil, err
	}
	return &table, nil
}
