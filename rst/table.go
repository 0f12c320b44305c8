package rst

import (
	"strconv"
	"strings"

	"rstc/ast"
	"rstc/config"
	"rstc/layout"
)

// Tables render through one of three strategies: the compact simple form
// when the table has no width hints and fits the configured columns, the
// list-table directive when configured to prefer it (it survives any cell
// content), and the grid form as the universal fallback.

// tableData is the table reduced to what the strategies need: one header
// row, body rows and per-column width fractions. Cell spans are not
// representable and are ignored.
type tableData struct {
	caption []ast.Inline
	widths  []float64
	header  [][]ast.Block
	rows    [][][]ast.Block
	ncols   int
}

func collectTable(t *ast.Table) tableData {
	d := tableData{ncols: len(t.Columns)}

	d.caption = t.Caption.Short
	if len(d.caption) == 0 {
		for _, b := range t.Caption.Long {
			switch b := b.(type) {
			case *ast.Plain:
				d.caption = append(d.caption, b.Inlines...)
			case *ast.Para:
				if len(d.caption) > 0 {
					d.caption = append(d.caption, &ast.Space{})
				}
				d.caption = append(d.caption, b.Inlines...)
			}
		}
	}

	d.widths = make([]float64, d.ncols)
	for i, spec := range t.Columns {
		if !spec.Width.Default {
			d.widths[i] = spec.Width.Width
		}
	}

	cells := func(row ast.TableRow) [][]ast.Block {
		out := make([][]ast.Block, d.ncols)
		for i := 0; i < d.ncols; i++ {
			if i < len(row.Cells) {
				out[i] = row.Cells[i].Blocks
			}
		}
		return out
	}

	if len(t.Head.Rows) > 0 {
		d.header = cells(t.Head.Rows[0])
	}
	for _, body := range t.Bodies {
		for _, row := range body.Head {
			d.rows = append(d.rows, cells(row))
		}
		for _, row := range body.Body {
			d.rows = append(d.rows, cells(row))
		}
	}
	for _, row := range t.Foot.Rows {
		d.rows = append(d.rows, cells(row))
	}
	return d
}

func (d *tableData) hasWidths() bool {
	for _, w := range d.widths {
		if w > 0 {
			return true
		}
	}
	return false
}

func (d *tableData) hasHeader() bool {
	for _, cell := range d.header {
		if len(cell) > 0 {
			return true
		}
	}
	return false
}

func (w *Writer) tableToRST(t *ast.Table) (string, error) {
	d := collectTable(t)
	if d.ncols == 0 {
		return "", nil
	}

	if w.opts.PreferListTables {
		return w.listTable(&d)
	}

	var (
		tbl string
		err error
	)
	if !d.hasWidths() && d.ncols > 1 {
		tbl, err = w.simpleTable(&d)
		if err == nil && layout.Width(tbl) > w.opts.Columns {
			tbl, err = w.gridTable(&d)
		}
	} else {
		tbl, err = w.gridTable(&d)
	}
	if err != nil {
		return "", err
	}

	if len(d.caption) > 0 {
		caption, err := w.inlineListToRST(d.caption)
		if err != nil {
			return "", err
		}
		return ".. table:: " + caption + "\n\n" + layout.Indent(tbl, 3), nil
	}
	return tbl, nil
}

// cellToLines renders one cell under the given options.
func (w *Writer) cellToLines(blocks []ast.Block, opts Options) ([]string, error) {
	s, err := w.scoped(opts, func() (string, error) {
		return w.blockListToRST(blocks, false)
	})
	if err != nil {
		return nil, err
	}
	if s == "" {
		return nil, nil
	}
	return strings.Split(s, "\n"), nil
}

// simpleTable lays columns out side by side padded to content width, with
// `=` rule lines above and below and after the header row.
func (w *Writer) simpleTable(d *tableData) (string, error) {
	cellOpts := w.opts
	cellOpts.Wrap = config.WrapModeNone

	renderRow := func(row [][]ast.Block) ([]string, error) {
		cells := make([]string, d.ncols)
		for i, blocks := range row {
			lines, err := w.cellToLines(blocks, cellOpts)
			if err != nil {
				return nil, err
			}
			cells[i] = strings.Join(lines, " ")
		}
		// an empty first cell would make the row look like a rule line
		if cells[0] == "" {
			cells[0] = "\\ "
		}
		return cells, nil
	}

	var (
		header []string
		rows   [][]string
		err    error
	)
	if d.hasHeader() {
		if header, err = renderRow(d.header); err != nil {
			return "", err
		}
	}
	for _, row := range d.rows {
		cells, err := renderRow(row)
		if err != nil {
			return "", err
		}
		rows = append(rows, cells)
	}

	widths := make([]int, d.ncols)
	measure := func(cells []string) {
		for i, c := range cells {
			if lw := layout.LineWidth(c); lw > widths[i] {
				widths[i] = lw
			}
		}
	}
	measure(header)
	for _, row := range rows {
		measure(row)
	}
	for i := range widths {
		if widths[i] < 1 {
			widths[i] = 1
		}
	}

	rule := make([]string, d.ncols)
	for i, cw := range widths {
		rule[i] = strings.Repeat("=", cw)
	}
	line := func(cells []string) string {
		padded := make([]string, d.ncols)
		for i, c := range cells {
			padded[i] = layout.Pad(c, widths[i])
		}
		return strings.TrimRight(strings.Join(padded, " "), " ")
	}

	var out []string
	out = append(out, strings.Join(rule, " "))
	if header != nil {
		out = append(out, line(header), strings.Join(rule, " "))
	}
	for _, row := range rows {
		out = append(out, line(row))
	}
	out = append(out, strings.Join(rule, " "))
	return strings.Join(out, "\n"), nil
}

// gridTable draws the full box layout. With width hints present the hints
// set the column character widths and cells wrap to fit, otherwise columns
// take their content width.
func (w *Writer) gridTable(d *tableData) (string, error) {
	charWidths := make([]int, d.ncols)
	cellOpts := w.opts
	if d.hasWidths() {
		cellOpts.Wrap = config.WrapModeAuto
		for i, frac := range d.widths {
			cw := int(frac*float64(w.opts.Columns)) - 3
			if cw < 1 {
				cw = 1
			}
			charWidths[i] = cw
		}
	}

	renderRow := func(row [][]ast.Block) ([][]string, error) {
		cells := make([][]string, d.ncols)
		for i, blocks := range row {
			opts := cellOpts
			if charWidths[i] > 0 {
				opts.Columns = charWidths[i]
			}
			lines, err := w.cellToLines(blocks, opts)
			if err != nil {
				return nil, err
			}
			cells[i] = lines
		}
		return cells, nil
	}

	var (
		header [][]string
		rows   [][][]string
	)
	if d.hasHeader() {
		var err error
		if header, err = renderRow(d.header); err != nil {
			return "", err
		}
	}
	for _, row := range d.rows {
		cells, err := renderRow(row)
		if err != nil {
			return "", err
		}
		rows = append(rows, cells)
	}

	if !d.hasWidths() {
		measure := func(cells [][]string) {
			for i, lines := range cells {
				for _, line := range lines {
					if lw := layout.LineWidth(line); lw > charWidths[i] {
						charWidths[i] = lw
					}
				}
			}
		}
		measure(header)
		for _, row := range rows {
			measure(row)
		}
	}
	for i := range charWidths {
		if charWidths[i] < 1 {
			charWidths[i] = 1
		}
	}

	border := func(fill byte) string {
		var sb strings.Builder
		sb.WriteByte('+')
		for _, cw := range charWidths {
			sb.WriteString(strings.Repeat(string(fill), cw+2))
			sb.WriteByte('+')
		}
		return sb.String()
	}

	rowLines := func(cells [][]string) []string {
		height := 1
		for _, lines := range cells {
			if len(lines) > height {
				height = len(lines)
			}
		}
		out := make([]string, height)
		for ln := 0; ln < height; ln++ {
			var sb strings.Builder
			sb.WriteByte('|')
			for i, lines := range cells {
				text := ""
				if ln < len(lines) {
					text = lines[ln]
				}
				sb.WriteByte(' ')
				sb.WriteString(layout.Pad(text, charWidths[i]))
				sb.WriteString(" |")
			}
			out[ln] = sb.String()
		}
		return out
	}

	var out []string
	out = append(out, border('-'))
	if header != nil {
		out = append(out, rowLines(header)...)
		out = append(out, border('='))
	}
	for _, row := range rows {
		out = append(out, rowLines(row)...)
		out = append(out, border('-'))
	}
	return strings.Join(out, "\n"), nil
}

// listTable emits the list-table directive, each row a bullet item of
// per-cell bullet items. Any block content survives this form.
func (w *Writer) listTable(d *tableData) (string, error) {
	head := ".. list-table::"
	if len(d.caption) > 0 {
		caption, err := w.inlineListToRST(d.caption)
		if err != nil {
			return "", err
		}
		head += " " + caption
	}

	var fields []string
	if d.hasHeader() {
		fields = append(fields, ":header-rows: 1")
	}
	if d.hasWidths() {
		percents := make([]string, d.ncols)
		for i, frac := range d.widths {
			percents[i] = itoaRound(frac * 100)
		}
		fields = append(fields, ":widths: "+strings.Join(percents, " "))
	}

	var rows [][][]ast.Block
	if d.hasHeader() {
		rows = append(rows, d.header)
	}
	rows = append(rows, d.rows...)

	var items []string
	for _, row := range rows {
		var cells []string
		for _, blocks := range row {
			contents, err := w.blockListToRST(blocks, false)
			if err != nil {
				return "", err
			}
			cells = append(cells, layout.Hang(contents, "- ", "  "))
		}
		items = append(items, layout.Hang(strings.Join(cells, "\n"), "* ", "  "))
	}

	out := head
	if len(fields) > 0 {
		out += "\n" + layout.Indent(strings.Join(fields, "\n"), 3)
	}
	if len(items) > 0 {
		out += "\n\n" + layout.Indent(strings.Join(items, "\n"), 3)
	}
	return out, nil
}

func itoaRound(f float64) string {
	n := int(f + 0.5)
	if n < 1 {
		n = 1
	}
	return strconv.Itoa(n)
}
