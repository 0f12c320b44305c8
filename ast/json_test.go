package ast

import (
	"reflect"
	"strings"
	"testing"
)

func TestDecode(t *testing.T) {
	const doc = `{
  "pandoc-api-version": [1, 23, 1],
  "meta": {
    "title": {"t": "MetaInlines", "c": [{"t": "Str", "c": "My"}, {"t": "Space"}, {"t": "Str", "c": "Doc"}]},
    "draft": {"t": "MetaBool", "c": true}
  },
  "blocks": [
    {"t": "Header", "c": [1, ["intro", ["x"], [["k", "v"]]], [{"t": "Str", "c": "Intro"}]]},
    {"t": "Para", "c": [
      {"t": "Str", "c": "See"},
      {"t": "Space"},
      {"t": "Link", "c": [["", [], []], [{"t": "Str", "c": "docs"}], ["https://example.com", "the title"]]}
    ]},
    {"t": "BulletList", "c": [
      [{"t": "Plain", "c": [{"t": "Str", "c": "a"}]}],
      [{"t": "Plain", "c": [{"t": "Str", "c": "b"}]}]
    ]},
    {"t": "OrderedList", "c": [
      [3, {"t": "LowerAlpha"}, {"t": "OneParen"}],
      [[{"t": "Plain", "c": [{"t": "Str", "c": "c"}]}]]
    ]},
    {"t": "CodeBlock", "c": [["", ["go"], []], "x := 1"]},
    {"t": "HorizontalRule"}
  ]
}`

	got, err := Decode(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Decode() failed: %v", err)
	}

	if want := "My Doc"; got.Meta.Text("title") != want {
		t.Errorf("title = %q, want %q", got.Meta.Text("title"), want)
	}
	if v, ok := got.Meta["draft"].(MetaBool); !ok || !bool(v) {
		t.Errorf("draft = %#v, want MetaBool(true)", got.Meta["draft"])
	}

	if len(got.Blocks) != 6 {
		t.Fatalf("decoded %d blocks, want 6", len(got.Blocks))
	}

	header, ok := got.Blocks[0].(*Header)
	if !ok {
		t.Fatalf("block 0 is %T, want *Header", got.Blocks[0])
	}
	wantHeader := &Header{
		Attr:    Attr{ID: "intro", Classes: []string{"x"}, KVs: []KV{{Key: "k", Value: "v"}}},
		Level:   1,
		Inlines: []Inline{&Str{Text: "Intro"}},
	}
	if !reflect.DeepEqual(header, wantHeader) {
		t.Errorf("header = %#v, want %#v", header, wantHeader)
	}

	para, ok := got.Blocks[1].(*Para)
	if !ok {
		t.Fatalf("block 1 is %T, want *Para", got.Blocks[1])
	}
	l, ok := para.Inlines[2].(*Link)
	if !ok {
		t.Fatalf("inline 2 is %T, want *Link", para.Inlines[2])
	}
	if l.Target != (Target{URL: "https://example.com", Title: "the title"}) {
		t.Errorf("link target = %#v", l.Target)
	}

	ol, ok := got.Blocks[3].(*OrderedList)
	if !ok {
		t.Fatalf("block 3 is %T, want *OrderedList", got.Blocks[3])
	}
	wantAttrs := ListAttrs{Start: 3, Style: LowerAlpha, Delimiter: OneParen}
	if ol.Attr != wantAttrs {
		t.Errorf("list attributes = %#v, want %#v", ol.Attr, wantAttrs)
	}

	cb, ok := got.Blocks[4].(*CodeBlock)
	if !ok {
		t.Fatalf("block 4 is %T, want *CodeBlock", got.Blocks[4])
	}
	if cb.Text != "x := 1" || !cb.HasClass("go") {
		t.Errorf("code block = %#v", cb)
	}
}

func TestDecodeTable(t *testing.T) {
	const doc = `{
  "pandoc-api-version": [1, 23, 1],
  "meta": {},
  "blocks": [
    {"t": "Table", "c": [
      ["", [], []],
      [null, [{"t": "Plain", "c": [{"t": "Str", "c": "cap"}]}]],
      [
        [{"t": "AlignLeft"}, {"t": "ColWidth", "c": 0.5}],
        [{"t": "AlignDefault"}, {"t": "ColWidthDefault"}]
      ],
      [["", [], []], [
        [["", [], []], [
          [["", [], []], {"t": "AlignDefault"}, 1, 1, [{"t": "Plain", "c": [{"t": "Str", "c": "h1"}]}]],
          [["", [], []], {"t": "AlignDefault"}, 1, 1, [{"t": "Plain", "c": [{"t": "Str", "c": "h2"}]}]]
        ]]
      ]],
      [
        [["", [], []], 0, [], [
          [["", [], []], [
            [["", [], []], {"t": "AlignDefault"}, 1, 1, [{"t": "Plain", "c": [{"t": "Str", "c": "a"}]}]],
            [["", [], []], {"t": "AlignDefault"}, 1, 1, [{"t": "Plain", "c": [{"t": "Str", "c": "b"}]}]]
          ]]
        ]]
      ],
      [["", [], []], []]
    ]}
  ]
}`

	got, err := Decode(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Decode() failed: %v", err)
	}
	table, ok := got.Blocks[0].(*Table)
	if !ok {
		t.Fatalf("block 0 is %T, want *Table", got.Blocks[0])
	}

	if len(table.Columns) != 2 {
		t.Fatalf("decoded %d columns, want 2", len(table.Columns))
	}
	if w := table.Columns[0].Width; w.Default || w.Width != 0.5 {
		t.Errorf("column 0 width = %#v", w)
	}
	if w := table.Columns[1].Width; !w.Default {
		t.Errorf("column 1 width = %#v, want default", w)
	}
	if len(table.Head.Rows) != 1 || len(table.Head.Rows[0].Cells) != 2 {
		t.Fatalf("unexpected head shape %#v", table.Head)
	}
	if len(table.Bodies) != 1 || len(table.Bodies[0].Body) != 1 {
		t.Fatalf("unexpected bodies shape %#v", table.Bodies)
	}
	if got := Stringify(table.Caption.Short); got != "" {
		t.Errorf("short caption = %q, want empty", got)
	}
}

func TestDecodeRejectsUnsupportedVersion(t *testing.T) {
	_, err := Decode(strings.NewReader(`{"pandoc-api-version": [2, 0], "meta": {}, "blocks": []}`))
	if err == nil {
		t.Error("expected version error")
	}
}

func TestDecodeRejectsUnknownTags(t *testing.T) {
	_, err := Decode(strings.NewReader(`{"pandoc-api-version": [1, 23], "meta": {}, "blocks": [{"t": "Nonsense"}]}`))
	if err == nil {
		t.Error("expected unknown block error")
	}
}
