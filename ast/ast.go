// Package ast defines the document model consumed by format writers: a tree
// of block elements containing inline elements, following the Pandoc AST
// (https://pandoc.org/) closely enough to decode documents serialized by
// pandoc itself.
package ast

import (
	"strings"

	"github.com/gosimple/slug"
)

// Document is a parsed document: metadata plus a block sequence.
type Document struct {
	Meta   Meta
	Blocks []Block
}

// Element is implemented by every node of the document tree.
type Element interface {
	element()
}

// Inline is a text-level element flowing within a line.
type Inline interface {
	Element
	inline()
}

// Block is a structure element occupying its own line(s).
type Block interface {
	Element
	block()
}

// KV is a single key-value attribute.
type KV struct {
	Key   string
	Value string
}

// Attr carries the identifier, classes and key-value attributes an element
// may have.
type Attr struct {
	ID      string
	Classes []string
	KVs     []KV
}

func (a *Attr) IsEmpty() bool {
	return a.ID == "" && len(a.Classes) == 0 && len(a.KVs) == 0
}

func (a *Attr) HasClass(c string) bool {
	for _, cl := range a.Classes {
		if cl == c {
			return true
		}
	}
	return false
}

// Get returns the value of the given attribute key.
func (a *Attr) Get(key string) (string, bool) {
	for _, kv := range a.KVs {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return "", false
}

// Equal reports whether two attribute sets are identical, order included.
func (a Attr) Equal(b Attr) bool {
	if a.ID != b.ID || len(a.Classes) != len(b.Classes) || len(a.KVs) != len(b.KVs) {
		return false
	}
	for i := range a.Classes {
		if a.Classes[i] != b.Classes[i] {
			return false
		}
	}
	for i := range a.KVs {
		if a.KVs[i] != b.KVs[i] {
			return false
		}
	}
	return true
}

// Inlines

// Str is literal text.
type Str struct {
	Text string
}

// Emph is emphasized text.
type Emph struct {
	Inlines []Inline
}

// Underline is underlined text.
type Underline struct {
	Inlines []Inline
}

// Strong is strongly emphasized text.
type Strong struct {
	Inlines []Inline
}

// Strikeout is struck-out text.
type Strikeout struct {
	Inlines []Inline
}

// Superscript is superscripted text.
type Superscript struct {
	Inlines []Inline
}

// Subscript is subscripted text.
type Subscript struct {
	Inlines []Inline
}

// SmallCaps is small-capitals text.
type SmallCaps struct {
	Inlines []Inline
}

type QuoteType string

const (
	SingleQuote QuoteType = "SingleQuote"
	DoubleQuote QuoteType = "DoubleQuote"
)

// Quoted is quoted text with a quote kind.
type Quoted struct {
	Type    QuoteType
	Inlines []Inline
}

type CitationMode string

const (
	NormalCitation CitationMode = "NormalCitation"
	SuppressAuthor CitationMode = "SuppressAuthor"
	AuthorInText   CitationMode = "AuthorInText"
)

type Citation struct {
	ID      string
	Prefix  []Inline
	Suffix  []Inline
	Mode    CitationMode
	NoteNum int
	Hash    int
}

// Cite is a citation wrapping its rendered text.
type Cite struct {
	Citations []Citation
	Inlines   []Inline
}

// Code is an inline code span (literal).
type Code struct {
	Attr
	Text string
}

// Space is an inter-word space.
type Space struct{}

// SoftBreak is a soft line break.
type SoftBreak struct{}

// LineBreak is a hard line break.
type LineBreak struct{}

type MathType string

const (
	DisplayMath MathType = "DisplayMath"
	InlineMath  MathType = "InlineMath"
)

// Math is TeX math (literal).
type Math struct {
	Type MathType
	Text string
}

// RawInline is an inline of some embedded markup format.
type RawInline struct {
	Format string
	Text   string
}

// Target is a link or image destination.
type Target struct {
	URL   string
	Title string
}

// Link is a hyperlink around inline content.
type Link struct {
	Attr
	Inlines []Inline
	Target  Target
}

// Image with alt text and source target.
type Image struct {
	Attr
	Inlines []Inline
	Target  Target
}

// Note is a footnote holding a block sequence.
type Note struct {
	Blocks []Block
}

// Span is a generic inline container with attributes.
type Span struct {
	Attr
	Inlines []Inline
}

func (*Str) inline()         {}
func (*Emph) inline()        {}
func (*Underline) inline()   {}
func (*Strong) inline()      {}
func (*Strikeout) inline()   {}
func (*Superscript) inline() {}
func (*Subscript) inline()   {}
func (*SmallCaps) inline()   {}
func (*Quoted) inline()      {}
func (*Cite) inline()        {}
func (*Code) inline()        {}
func (*Space) inline()       {}
func (*SoftBreak) inline()   {}
func (*LineBreak) inline()   {}
func (*Math) inline()        {}
func (*RawInline) inline()   {}
func (*Link) inline()        {}
func (*Image) inline()       {}
func (*Note) inline()        {}
func (*Span) inline()        {}

func (*Str) element()         {}
func (*Emph) element()        {}
func (*Underline) element()   {}
func (*Strong) element()      {}
func (*Strikeout) element()   {}
func (*Superscript) element() {}
func (*Subscript) element()   {}
func (*SmallCaps) element()   {}
func (*Quoted) element()      {}
func (*Cite) element()        {}
func (*Code) element()        {}
func (*Space) element()       {}
func (*SoftBreak) element()   {}
func (*LineBreak) element()   {}
func (*Math) element()        {}
func (*RawInline) element()   {}
func (*Link) element()        {}
func (*Image) element()       {}
func (*Note) element()        {}
func (*Span) element()        {}

// Blocks

// Plain is inline content that is not a paragraph.
type Plain struct {
	Inlines []Inline
}

// Para is a paragraph.
type Para struct {
	Inlines []Inline
}

// LineBlock is a sequence of non-wrapping lines.
type LineBlock struct {
	Lines [][]Inline
}

// CodeBlock is a literal block.
type CodeBlock struct {
	Attr
	Text string
}

// RawBlock is a block of some embedded markup format.
type RawBlock struct {
	Format string
	Text   string
}

// BlockQuote is a quoted block sequence.
type BlockQuote struct {
	Blocks []Block
}

type ListNumberStyle string

const (
	DefaultStyle ListNumberStyle = "DefaultStyle"
	Example      ListNumberStyle = "Example"
	Decimal      ListNumberStyle = "Decimal"
	LowerRoman   ListNumberStyle = "LowerRoman"
	UpperRoman   ListNumberStyle = "UpperRoman"
	LowerAlpha   ListNumberStyle = "LowerAlpha"
	UpperAlpha   ListNumberStyle = "UpperAlpha"
)

type ListNumberDelim string

const (
	DefaultDelim ListNumberDelim = "DefaultDelim"
	Period       ListNumberDelim = "Period"
	OneParen     ListNumberDelim = "OneParen"
	TwoParens    ListNumberDelim = "TwoParens"
)

type ListAttrs struct {
	Start     int
	Style     ListNumberStyle
	Delimiter ListNumberDelim
}

// IsDefault reports whether the list carries default numbering, in which
// case writers may use auto-enumeration markers.
func (a ListAttrs) IsDefault() bool {
	return a.Start == 1 &&
		(a.Style == DefaultStyle || a.Style == Decimal) &&
		(a.Delimiter == DefaultDelim || a.Delimiter == Period)
}

// OrderedList is a numbered list of items.
type OrderedList struct {
	Attr  ListAttrs
	Items [][]Block
}

// BulletList is an unordered list of items.
type BulletList struct {
	Items [][]Block
}

type Definition struct {
	Term        []Inline
	Definitions [][]Block
}

// DefinitionList is a list of term/definition pairs.
type DefinitionList struct {
	Items []Definition
}

// Header with level and inline text.
type Header struct {
	Attr
	Level   int
	Inlines []Inline
}

// HorizontalRule is a thematic break.
type HorizontalRule struct{}

type Caption struct {
	Short []Inline
	Long  []Block
}

type Alignment string

const (
	AlignLeft    Alignment = "AlignLeft"
	AlignRight   Alignment = "AlignRight"
	AlignCenter  Alignment = "AlignCenter"
	AlignDefault Alignment = "AlignDefault"
)

// ColWidth is a column width hint as a fraction of the full width; Default
// means no hint.
type ColWidth struct {
	Width   float64
	Default bool
}

type ColSpec struct {
	Align Alignment
	Width ColWidth
}

type TableHeadFoot struct {
	Attr
	Rows []TableRow
}

type TableRow struct {
	Attr
	Cells []TableCell
}

type TableCell struct {
	Attr
	Align   Alignment
	RowSpan int
	ColSpan int
	Blocks  []Block
}

type TableBody struct {
	Attr
	RowHeadColumns int
	Head           []TableRow
	Body           []TableRow
}

// Table with caption, per-column alignment and width specs, head, bodies
// and foot.
type Table struct {
	Attr
	Caption Caption
	Columns []ColSpec
	Head    TableHeadFoot
	Bodies  []TableBody
	Foot    TableHeadFoot
}

// Figure with caption and block content.
type Figure struct {
	Attr
	Caption Caption
	Blocks  []Block
}

// Div is a generic block container with attributes.
type Div struct {
	Attr
	Blocks []Block
}

func (*Plain) block()          {}
func (*Para) block()           {}
func (*LineBlock) block()      {}
func (*CodeBlock) block()      {}
func (*RawBlock) block()       {}
func (*BlockQuote) block()     {}
func (*OrderedList) block()    {}
func (*BulletList) block()     {}
func (*DefinitionList) block() {}
func (*Header) block()         {}
func (*HorizontalRule) block() {}
func (*Table) block()          {}
func (*Figure) block()         {}
func (*Div) block()            {}

func (*Plain) element()          {}
func (*Para) element()           {}
func (*LineBlock) element()      {}
func (*CodeBlock) element()      {}
func (*RawBlock) element()       {}
func (*BlockQuote) element()     {}
func (*OrderedList) element()    {}
func (*BulletList) element()     {}
func (*DefinitionList) element() {}
func (*Header) element()         {}
func (*HorizontalRule) element() {}
func (*Table) element()          {}
func (*Figure) element()         {}
func (*Div) element()            {}

// InlineChildren returns the nested inline content of an inline wrapper.
// Leaf inlines (Str, Code, Space, Math, raw...) report false.
func InlineChildren(in Inline) ([]Inline, bool) {
	switch in := in.(type) {
	case *Emph:
		return in.Inlines, true
	case *Underline:
		return in.Inlines, true
	case *Strong:
		return in.Inlines, true
	case *Strikeout:
		return in.Inlines, true
	case *Superscript:
		return in.Inlines, true
	case *Subscript:
		return in.Inlines, true
	case *SmallCaps:
		return in.Inlines, true
	case *Quoted:
		return in.Inlines, true
	case *Cite:
		return in.Inlines, true
	case *Link:
		return in.Inlines, true
	case *Image:
		return in.Inlines, true
	case *Span:
		return in.Inlines, true
	}
	return nil, false
}

// WithInlineChildren returns a copy of the wrapper holding the given
// content instead of its own. Leaf inlines are returned unchanged.
func WithInlineChildren(in Inline, children []Inline) Inline {
	switch in := in.(type) {
	case *Emph:
		c := *in
		c.Inlines = children
		return &c
	case *Underline:
		c := *in
		c.Inlines = children
		return &c
	case *Strong:
		c := *in
		c.Inlines = children
		return &c
	case *Strikeout:
		c := *in
		c.Inlines = children
		return &c
	case *Superscript:
		c := *in
		c.Inlines = children
		return &c
	case *Subscript:
		c := *in
		c.Inlines = children
		return &c
	case *SmallCaps:
		c := *in
		c.Inlines = children
		return &c
	case *Quoted:
		c := *in
		c.Inlines = children
		return &c
	case *Cite:
		c := *in
		c.Inlines = children
		return &c
	case *Link:
		c := *in
		c.Inlines = children
		return &c
	case *Image:
		c := *in
		c.Inlines = children
		return &c
	case *Span:
		c := *in
		c.Inlines = children
		return &c
	}
	return in
}

// Stringify flattens inline content to plain text, the way identifiers and
// alt texts are derived.
func Stringify(inlines []Inline) string {
	var sb strings.Builder
	stringify(&sb, inlines)
	return sb.String()
}

func stringify(sb *strings.Builder, inlines []Inline) {
	for _, in := range inlines {
		switch in := in.(type) {
		case *Str:
			sb.WriteString(in.Text)
		case *Code:
			sb.WriteString(in.Text)
		case *Math:
			sb.WriteString(in.Text)
		case *Space, *SoftBreak, *LineBreak:
			sb.WriteByte(' ')
		case *Note:
			// notes do not contribute to identifiers
		default:
			if children, ok := InlineChildren(in); ok {
				stringify(sb, children)
			}
		}
	}
}

// UniqueIdent derives the identifier auto-assigned to a header with the
// given inline text. Must stay in sync with the readers producing explicit
// identifiers, otherwise writers emit redundant anchors.
func UniqueIdent(inlines []Inline) string {
	return slug.Make(Stringify(inlines))
}

// IsTightList reports whether a list with the given items should be
// rendered tight (no blank line between items): every item consists of at
// most one Plain run optionally followed by a nested list.
func IsTightList(items [][]Block) bool {
	if len(items) == 0 {
		return false
	}
	for _, item := range items {
		for i, b := range item {
			switch b.(type) {
			case *Plain:
				if i != 0 {
					return false
				}
			case *BulletList, *OrderedList, *DefinitionList:
				// nested lists keep an item tight
			default:
				return false
			}
		}
	}
	return true
}
