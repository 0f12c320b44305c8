// Package rst renders the document model into reStructuredText.
package rst

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"rstc/ast"
	"rstc/config"
	"rstc/layout"
)

// ErrNestingTooDeep aborts rendering of pathologically nested documents
// before the call stack does.
var ErrNestingTooDeep = errors.New("document nesting is too deep")

const maxNestingDepth = 256

// Options is the active rendering configuration.
type Options struct {
	Wrap             config.WrapMode
	Columns          int
	PreferListTables bool
	TableOfContents  bool
	TOCDepth         int
	NumberSections   bool
	ReferenceLinks   bool
	Smart            bool
	LiterateHaskell  bool
}

// OptionsFromConfig maps document configuration to writer options.
func OptionsFromConfig(c *config.DocumentConfig) Options {
	return Options{
		Wrap:             c.Wrap,
		Columns:          c.Columns,
		PreferListTables: c.PreferListTables,
		TableOfContents:  c.TableOfContents,
		TOCDepth:         c.TOCDepth,
		NumberSections:   c.NumberSections,
		ReferenceLinks:   c.ReferenceLinks,
		Smart:            c.Smart,
		LiterateHaskell:  c.LiterateHaskell,
	}
}

type linkEntry struct {
	label  []ast.Inline
	target ast.Target
}

type imageEntry struct {
	label  []ast.Inline
	attr   ast.Attr
	target ast.Target
	link   *ast.Target
}

// Writer holds the state of one document conversion. A Writer serves a
// single document and is not safe for concurrent use.
type Writer struct {
	opts Options
	log  *zap.Logger

	// reference registries, prepended during traversal and reversed back
	// into document order when flushed after the body
	notes  [][]ast.Block
	links  []linkEntry
	images []imageEntry

	imageCounter int
	hasMath      bool
	hasRawTeX    bool
	topLevel     bool
	depth        int
}

func New(opts Options, log *zap.Logger) *Writer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Writer{opts: opts, log: log, imageCounter: 1}
}

// HasMath reports whether the rendered document used math markup.
func (w *Writer) HasMath() bool { return w.hasMath }

// HasRawTeX reports whether the rendered document embedded raw TeX through
// the raw-latex role, which needs a role declaration in the prologue.
func (w *Writer) HasRawTeX() bool { return w.hasRawTeX }

// Render produces the document body followed by the deferred footnote,
// link target and image substitution sections.
func (w *Writer) Render(doc *ast.Document) (string, error) {
	body, err := w.blockListToRST(doc.Blocks, true)
	if err != nil {
		return "", err
	}
	refs, err := w.refsToRST()
	if err != nil {
		return "", err
	}
	return joinBlocks([]string{body, refs}, "\n\n"), nil
}

// scoped runs fn under temporarily replaced options, restoring them on
// every exit path.
func (w *Writer) scoped(opts Options, fn func() (string, error)) (string, error) {
	saved := w.opts
	w.opts = opts
	defer func() { w.opts = saved }()
	return fn()
}

func (w *Writer) enter() error {
	w.depth++
	if w.depth > maxNestingDepth {
		return fmt.Errorf("%w (limit %d)", ErrNestingTooDeep, maxNestingDepth)
	}
	return nil
}

func (w *Writer) leave() { w.depth-- }

// blockListToRST renders a block sequence, topLevel telling whether the
// blocks sit at document root where native section headers are legal.
func (w *Writer) blockListToRST(blocks []ast.Block, topLevel bool) (string, error) {
	saved := w.topLevel
	w.topLevel = topLevel
	defer func() { w.topLevel = saved }()

	blocks = insertQuoteMarkers(blocks, topLevel)

	var parts []string
	for _, b := range blocks {
		s, err := w.blockToRST(b)
		if err != nil {
			return "", err
		}
		s = strings.TrimLeft(layout.ChompRight(s), "\n")
		if s == "" {
			continue
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, "\n\n"), nil
}

// insertQuoteMarkers adds an empty comment before a block quote whose
// indentation would otherwise read as a continuation of what precedes it:
// a quote opening a nested block list, or a quote right after a block that
// itself ends in indented content.
func insertQuoteMarkers(blocks []ast.Block, topLevel bool) []ast.Block {
	var out []ast.Block
	for i, b := range blocks {
		if _, quote := b.(*ast.BlockQuote); quote {
			if (i == 0 && !topLevel) || (i > 0 && endsIndented(blocks[i-1])) {
				out = append(out, &ast.RawBlock{Format: "rst", Text: ".."})
			}
		}
		out = append(out, b)
	}
	return out
}

func endsIndented(b ast.Block) bool {
	switch b := b.(type) {
	case *ast.Plain, *ast.Header, *ast.LineBlock, *ast.HorizontalRule:
		return false
	case *ast.Para:
		if img, ok := soleImage(b.Inlines); ok {
			return strings.HasPrefix(img.Target.Title, "fig:")
		}
		return false
	}
	return true
}

func soleImage(inlines []ast.Inline) (*ast.Image, bool) {
	if len(inlines) != 1 {
		return nil, false
	}
	img, ok := inlines[0].(*ast.Image)
	return img, ok
}

func (w *Writer) blockToRST(block ast.Block) (string, error) {
	if err := w.enter(); err != nil {
		return "", err
	}
	defer w.leave()

	switch b := block.(type) {
	case *ast.Plain:
		return w.paragraphText(b.Inlines)
	case *ast.Para:
		return w.paraToRST(b)
	case *ast.LineBlock:
		return w.lineBlockToRST(b.Lines)
	case *ast.CodeBlock:
		return w.codeBlockToRST(b), nil
	case *ast.RawBlock:
		return rawBlockToRST(b), nil
	case *ast.BlockQuote:
		contents, err := w.blockListToRST(b.Blocks, false)
		if err != nil {
			return "", err
		}
		return layout.Indent(contents, 3), nil
	case *ast.OrderedList:
		return w.orderedListToRST(b)
	case *ast.BulletList:
		return w.bulletListToRST(b)
	case *ast.DefinitionList:
		return w.definitionListToRST(b)
	case *ast.Header:
		return w.headerToRST(b)
	case *ast.HorizontalRule:
		return "--------------", nil
	case *ast.Table:
		return w.tableToRST(b)
	case *ast.Figure:
		return w.figureBlockToRST(b)
	case *ast.Div:
		return w.divToRST(b)
	}
	w.log.Warn("Skipping block of unknown kind", zap.String("kind", fmt.Sprintf("%T", block)))
	return "", nil
}

// paragraphText renders inline content with the active wrap mode applied.
func (w *Writer) paragraphText(inlines []ast.Inline) (string, error) {
	s, err := w.inlineListToRST(inlines)
	if err != nil {
		return "", err
	}
	if w.opts.Wrap == config.WrapModeAuto {
		s = layout.Wrap(s, w.opts.Columns)
	}
	return s, nil
}

func (w *Writer) paraToRST(b *ast.Para) (string, error) {
	// paragraphs with hard breaks have no native form, render as line block
	for _, in := range b.Inlines {
		if _, ok := in.(*ast.LineBreak); ok {
			return w.lineBlockToRST(splitOnLineBreaks(b.Inlines))
		}
	}
	// legacy image paragraphs marked by readers render as figures
	if img, ok := soleImage(b.Inlines); ok && strings.HasPrefix(img.Target.Title, "fig:") {
		return w.figureToRST(img.ID, img, strings.TrimPrefix(img.Target.Title, "fig:"), nil)
	}
	return w.paragraphText(b.Inlines)
}

func splitOnLineBreaks(inlines []ast.Inline) [][]ast.Inline {
	var (
		lines [][]ast.Inline
		cur   []ast.Inline
	)
	for _, in := range inlines {
		if _, ok := in.(*ast.LineBreak); ok {
			lines = append(lines, cur)
			cur = nil
			continue
		}
		cur = append(cur, in)
	}
	return append(lines, cur)
}

func (w *Writer) lineBlockToRST(lines [][]ast.Inline) (string, error) {
	var out []string
	for _, line := range lines {
		s, err := w.inlineListToRST(line)
		if err != nil {
			return "", err
		}
		if s == "" {
			out = append(out, "|")
			continue
		}
		out = append(out, layout.Hang(s, "| ", "  "))
	}
	return strings.Join(out, "\n"), nil
}

func (w *Writer) codeBlockToRST(b *ast.CodeBlock) string {
	if w.opts.LiterateHaskell && b.HasClass("haskell") && b.HasClass("literate") {
		lines := strings.Split(b.Text, "\n")
		for i, line := range lines {
			lines[i] = "> " + line
		}
		return layout.ChompRight(strings.Join(lines, "\n"))
	}

	var lang string
	for _, c := range b.Classes {
		switch c {
		case "sourceCode", "literate", "numberLines", "number-lines", "example":
			continue
		}
		lang = c
		break
	}

	head := "::"
	if lang != "" {
		head = ".. code:: " + lang
		if b.HasClass("numberLines") || b.HasClass("number-lines") {
			field := "   :number-lines:"
			if start, ok := b.Get("startFrom"); ok {
				field += " " + start
			}
			head += "\n" + field
		}
	}
	return head + "\n\n" + layout.Indent(b.Text, 3)
}

func rawBlockToRST(b *ast.RawBlock) string {
	format := strings.ToLower(b.Format)
	if format == "rst" {
		return b.Text
	}
	return ".. raw:: " + format + "\n\n" + layout.Indent(b.Text, 3)
}

var headerBorders = []byte{'=', '-', '~', '^', '\''}

func (w *Writer) headerToRST(b *ast.Header) (string, error) {
	contents, err := w.inlineListToRST(b.Inlines)
	if err != nil {
		return "", err
	}

	if !w.topLevel {
		// native section headers are only legal at document root
		body := "rubric:: " + contents
		if b.ID != "" {
			body += "\n:name: " + b.ID
		}
		if len(b.Classes) > 0 {
			body += "\n:class: " + strings.Join(b.Classes, " ")
		}
		return layout.Hang(body, ".. ", "   "), nil
	}

	border := byte(' ')
	if b.Level >= 1 && b.Level <= len(headerBorders) {
		border = headerBorders[b.Level-1]
	}
	var anchor string
	if b.ID != "" && b.ID != ast.UniqueIdent(b.Inlines) {
		label := b.ID
		if strings.Contains(label, ":") {
			label = "`" + label + "`"
		}
		anchor = ".. _" + label + ":\n\n"
	}
	width := layout.LineWidth(contents)
	if width < 1 {
		width = 1
	}
	return anchor + contents + "\n" + strings.Repeat(string(border), width), nil
}

func (w *Writer) bulletListToRST(b *ast.BulletList) (string, error) {
	var items []string
	for _, item := range b.Items {
		contents, err := w.blockListToRST(item, false)
		if err != nil {
			return "", err
		}
		items = append(items, layout.Hang(contents, "-  ", "   "))
	}
	return joinListItems(items, ast.IsTightList(b.Items)), nil
}

func (w *Writer) orderedListToRST(b *ast.OrderedList) (string, error) {
	markers := orderedListMarkers(b.Attr, len(b.Items))
	width := 0
	for _, m := range markers {
		if len(m) > width {
			width = len(m)
		}
	}
	var items []string
	for i, item := range b.Items {
		contents, err := w.blockListToRST(item, false)
		if err != nil {
			return "", err
		}
		marker := layout.Pad(markers[i], width) + " "
		items = append(items, layout.Hang(contents, marker, strings.Repeat(" ", width+1)))
	}
	return joinListItems(items, ast.IsTightList(b.Items)), nil
}

func joinListItems(items []string, tight bool) string {
	if tight {
		return strings.Join(items, "\n")
	}
	return strings.Join(items, "\n\n")
}

// orderedListMarkers generates the item markers: the auto-enumerator when
// the list numbering is all defaults, explicit markers otherwise.
func orderedListMarkers(attrs ast.ListAttrs, n int) []string {
	markers := make([]string, 0, n)
	if attrs.IsDefault() {
		for i := 0; i < n; i++ {
			markers = append(markers, "#.")
		}
		return markers
	}
	style := attrs.Style
	if style == ast.DefaultStyle || style == ast.Example {
		style = ast.Decimal
	}
	delim := attrs.Delimiter
	if delim == ast.DefaultDelim {
		delim = ast.Period
	}
	for i := 0; i < n; i++ {
		num := attrs.Start + i
		var s string
		switch style {
		case ast.LowerAlpha:
			s = toAlpha(num)
		case ast.UpperAlpha:
			s = strings.ToUpper(toAlpha(num))
		case ast.LowerRoman:
			s = strings.ToLower(toRoman(num))
		case ast.UpperRoman:
			s = toRoman(num)
		default:
			s = strconv.Itoa(num)
		}
		switch delim {
		case ast.OneParen:
			s += ")"
		case ast.TwoParens:
			s = "(" + s + ")"
		default:
			s += "."
		}
		markers = append(markers, s)
	}
	return markers
}

// toAlpha converts 1-based numbers to bijective base-26 letters (a..z,
// aa..).
func toAlpha(n int) string {
	if n < 1 {
		return strconv.Itoa(n)
	}
	var out []byte
	for n > 0 {
		n--
		out = append([]byte{byte('a' + n%26)}, out...)
		n /= 26
	}
	return string(out)
}

var romanValues = []struct {
	value int
	sym   string
}{
	{1000, "M"}, {900, "CM"}, {500, "D"}, {400, "CD"},
	{100, "C"}, {90, "XC"}, {50, "L"}, {40, "XL"},
	{10, "X"}, {9, "IX"}, {5, "V"}, {4, "IV"}, {1, "I"},
}

func toRoman(n int) string {
	if n < 1 || n > 3999 {
		return strconv.Itoa(n)
	}
	var sb strings.Builder
	for _, rv := range romanValues {
		for n >= rv.value {
			sb.WriteString(rv.sym)
			n -= rv.value
		}
	}
	return sb.String()
}

func (w *Writer) definitionListToRST(b *ast.DefinitionList) (string, error) {
	var items []string
	for _, item := range b.Items {
		term, err := w.inlineListToRST(item.Term)
		if err != nil {
			return "", err
		}
		var defs []string
		for _, def := range item.Definitions {
			contents, err := w.blockListToRST(def, false)
			if err != nil {
				return "", err
			}
			defs = append(defs, contents)
		}
		items = append(items, term+"\n"+layout.Indent(strings.Join(defs, "\n\n"), 3))
	}
	return strings.Join(items, "\n\n"), nil
}

// Directive names docutils treats as admonitions; divs carrying one of
// these classes map straight onto the directive.
var admonitions = map[string]bool{
	"attention": true, "caution": true, "danger": true, "error": true,
	"hint": true, "important": true, "note": true, "tip": true, "warning": true,
}

func (w *Writer) divToRST(b *ast.Div) (string, error) {
	contents, err := w.blockListToRST(b.Blocks, false)
	if err != nil {
		return "", err
	}

	var head string
	if len(b.Classes) > 0 && admonitions[b.Classes[0]] {
		head = ".. " + b.Classes[0] + "::"
	} else {
		head = ".. container::"
		var rest []string
		for _, c := range b.Classes {
			if c != "container" {
				rest = append(rest, c)
			}
		}
		if len(rest) > 0 {
			head += " " + strings.Join(rest, " ")
		}
	}
	if b.ID != "" {
		head += "\n   :name: " + b.ID
	}
	return head + "\n\n" + layout.Indent(contents, 3), nil
}

func (w *Writer) figureBlockToRST(b *ast.Figure) (string, error) {
	if len(b.Blocks) == 1 {
		var inlines []ast.Inline
		switch inner := b.Blocks[0].(type) {
		case *ast.Plain:
			inlines = inner.Inlines
		case *ast.Para:
			inlines = inner.Inlines
		}
		if img, ok := soleImage(inlines); ok {
			name := b.ID
			if name == "" {
				name = img.ID
			}
			return w.figureToRST(name, img, "", b.Caption.Long)
		}
	}

	// anything else floats in a generic container
	contents, err := w.blockListToRST(b.Blocks, false)
	if err != nil {
		return "", err
	}
	if len(b.Caption.Long) > 0 {
		caption, err := w.blockListToRST(b.Caption.Long, false)
		if err != nil {
			return "", err
		}
		contents = joinBlocks([]string{contents, caption}, "\n\n")
	}
	head := ".. container:: float"
	if b.ID != "" {
		head += "\n   :name: " + b.ID
	}
	return head + "\n\n" + layout.Indent(contents, 3), nil
}

// figureToRST emits a figure directive for a standalone image. The caption
// comes either as a pre-rendered string or as caption blocks.
func (w *Writer) figureToRST(name string, img *ast.Image, caption string, captionBlocks []ast.Block) (string, error) {
	var fields []string
	if alt := ast.Stringify(img.Inlines); alt != "" {
		fields = append(fields, ":alt: "+alt)
	}
	if name != "" {
		fields = append(fields, ":name: "+name)
	}
	if align, ok := alignmentClass(img.Classes); ok {
		fields = append(fields, ":align: "+align)
	}
	fields = append(fields, dimensionFields(&img.Attr)...)

	out := ".. figure:: " + img.Target.URL
	if len(fields) > 0 {
		out += "\n" + layout.Indent(strings.Join(fields, "\n"), 3)
	}
	if captionBlocks != nil {
		rendered, err := w.blockListToRST(captionBlocks, false)
		if err != nil {
			return "", err
		}
		caption = rendered
	}
	if caption != "" {
		out += "\n\n" + layout.Indent(caption, 3)
	}
	return out, nil
}

func alignmentClass(classes []string) (string, bool) {
	for _, c := range classes {
		if align, ok := strings.CutPrefix(c, "align-"); ok {
			return align, true
		}
	}
	return "", false
}

func dimensionFields(attr *ast.Attr) []string {
	var fields []string
	if v, ok := attr.Get("width"); ok {
		fields = append(fields, ":width: "+v)
	}
	if v, ok := attr.Get("height"); ok {
		fields = append(fields, ":height: "+v)
	}
	return fields
}

// joinBlocks joins the non-empty parts.
func joinBlocks(parts []string, sep string) string {
	var out []string
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}
