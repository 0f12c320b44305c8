package ast

import (
	"testing"
)

func TestStringify(t *testing.T) {
	cases := []struct {
		name string
		in   []Inline
		want string
	}{
		{
			name: "words and spaces",
			in:   []Inline{&Str{Text: "a"}, &Space{}, &Str{Text: "b"}},
			want: "a b",
		},
		{
			name: "styles are transparent",
			in: []Inline{&Emph{Inlines: []Inline{
				&Str{Text: "a"},
				&Strong{Inlines: []Inline{&Str{Text: "b"}}},
			}}},
			want: "ab",
		},
		{
			name: "code and math contribute text",
			in:   []Inline{&Code{Text: "x"}, &SoftBreak{}, &Math{Type: InlineMath, Text: "y"}},
			want: "x y",
		},
		{
			name: "notes are skipped",
			in:   []Inline{&Str{Text: "a"}, &Note{Blocks: []Block{&Para{Inlines: []Inline{&Str{Text: "hidden"}}}}}},
			want: "a",
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Stringify(c.in); got != c.want {
				t.Errorf("Stringify() = %q, want %q", got, c.want)
			}
		})
	}
}

func TestUniqueIdent(t *testing.T) {
	in := []Inline{&Str{Text: "Some"}, &Space{}, &Str{Text: "Title!"}}
	if got := UniqueIdent(in); got != "some-title" {
		t.Errorf("UniqueIdent() = %q, want %q", got, "some-title")
	}
}

func TestIsTightList(t *testing.T) {
	plain := func(s string) Block { return &Plain{Inlines: []Inline{&Str{Text: s}}} }
	para := func(s string) Block { return &Para{Inlines: []Inline{&Str{Text: s}}} }

	cases := []struct {
		name  string
		items [][]Block
		want  bool
	}{
		{"empty", nil, false},
		{"plain items", [][]Block{{plain("a")}, {plain("b")}}, true},
		{"paragraph items", [][]Block{{para("a")}}, false},
		{"mixed", [][]Block{{plain("a")}, {para("b")}}, false},
		{"plain with nested list", [][]Block{{plain("a"), &BulletList{Items: [][]Block{{plain("b")}}}}}, true},
		{"plain then paragraph in one item", [][]Block{{plain("a"), para("b")}}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := IsTightList(c.items); got != c.want {
				t.Errorf("IsTightList() = %v, want %v", got, c.want)
			}
		})
	}
}

func TestAttrEqual(t *testing.T) {
	a := Attr{ID: "x", Classes: []string{"a", "b"}, KVs: []KV{{Key: "k", Value: "v"}}}
	b := Attr{ID: "x", Classes: []string{"a", "b"}, KVs: []KV{{Key: "k", Value: "v"}}}
	if !a.Equal(b) {
		t.Error("identical attributes reported unequal")
	}
	b.Classes = []string{"b", "a"}
	if a.Equal(b) {
		t.Error("class order must matter")
	}
}

func TestListAttrsIsDefault(t *testing.T) {
	cases := []struct {
		attrs ListAttrs
		want  bool
	}{
		{ListAttrs{Start: 1, Style: DefaultStyle, Delimiter: DefaultDelim}, true},
		{ListAttrs{Start: 1, Style: Decimal, Delimiter: Period}, true},
		{ListAttrs{Start: 2, Style: Decimal, Delimiter: Period}, false},
		{ListAttrs{Start: 1, Style: LowerAlpha, Delimiter: Period}, false},
		{ListAttrs{Start: 1, Style: Decimal, Delimiter: OneParen}, false},
	}
	for _, c := range cases {
		if got := c.attrs.IsDefault(); got != c.want {
			t.Errorf("IsDefault(%#v) = %v, want %v", c.attrs, got, c.want)
		}
	}
}
