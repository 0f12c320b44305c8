package rst

import (
	"errors"
	"testing"

	"rstc/ast"
	"rstc/config"
)

func testOptions() Options {
	return Options{
		Wrap:     config.WrapModeAuto,
		Columns:  72,
		TOCDepth: 3,
		Smart:    true,
	}
}

func render(t *testing.T, opts Options, blocks ...ast.Block) string {
	t.Helper()
	out, err := New(opts, nil).Render(&ast.Document{Blocks: blocks})
	if err != nil {
		t.Fatalf("Render() failed: %v", err)
	}
	return out
}

func TestRenderTitleAndParagraph(t *testing.T) {
	got := render(t, testOptions(),
		&ast.Header{Level: 1, Inlines: []ast.Inline{&ast.Str{Text: "Title"}}},
		&ast.Para{Inlines: []ast.Inline{
			&ast.Str{Text: "Hello"},
			&ast.Space{},
			&ast.Emph{Inlines: []ast.Inline{&ast.Str{Text: "world"}}},
		}},
	)
	want := "Title\n=====\n\nHello *world*"
	if got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

func TestHeaders(t *testing.T) {
	cases := []struct {
		name  string
		block *ast.Header
		want  string
	}{
		{
			name:  "level two border",
			block: &ast.Header{Level: 2, Inlines: []ast.Inline{&ast.Str{Text: "Sub"}}},
			want:  "Sub\n---",
		},
		{
			name:  "level five border",
			block: &ast.Header{Level: 5, Inlines: []ast.Inline{&ast.Str{Text: "Deep"}}},
			want:  "Deep\n''''",
		},
		{
			name: "anchor for explicit identifier",
			block: &ast.Header{
				Attr:    ast.Attr{ID: "custom"},
				Level:   1,
				Inlines: []ast.Inline{&ast.Str{Text: "Title"}},
			},
			want: ".. _custom:\n\nTitle\n=====",
		},
		{
			name: "no anchor for derived identifier",
			block: &ast.Header{
				Attr:    ast.Attr{ID: "some-title"},
				Level:   1,
				Inlines: []ast.Inline{&ast.Str{Text: "Some"}, &ast.Space{}, &ast.Str{Text: "Title"}},
			},
			want: "Some Title\n==========",
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := render(t, testOptions(), c.block); got != c.want {
				t.Errorf("Render() = %q, want %q", got, c.want)
			}
		})
	}
}

func TestNestedHeaderBecomesRubric(t *testing.T) {
	got := render(t, testOptions(), &ast.BlockQuote{Blocks: []ast.Block{
		&ast.Header{Level: 1, Inlines: []ast.Inline{&ast.Str{Text: "Inside"}}},
	}})
	want := "   .. rubric:: Inside"
	if got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

func TestLists(t *testing.T) {
	item := func(s string) []ast.Block {
		return []ast.Block{&ast.Plain{Inlines: []ast.Inline{&ast.Str{Text: s}}}}
	}

	t.Run("tight bullets", func(t *testing.T) {
		got := render(t, testOptions(), &ast.BulletList{Items: [][]ast.Block{item("a"), item("b")}})
		want := "-  a\n-  b"
		if got != want {
			t.Errorf("Render() = %q, want %q", got, want)
		}
	})

	t.Run("loose bullets", func(t *testing.T) {
		para := []ast.Block{&ast.Para{Inlines: []ast.Inline{&ast.Str{Text: "a"}}}}
		got := render(t, testOptions(), &ast.BulletList{Items: [][]ast.Block{para, item("b")}})
		want := "-  a\n\n-  b"
		if got != want {
			t.Errorf("Render() = %q, want %q", got, want)
		}
	})

	t.Run("default numbering auto-enumerates", func(t *testing.T) {
		got := render(t, testOptions(), &ast.OrderedList{
			Attr:  ast.ListAttrs{Start: 1, Style: ast.DefaultStyle, Delimiter: ast.DefaultDelim},
			Items: [][]ast.Block{item("a"), item("b")},
		})
		want := "#. a\n#. b"
		if got != want {
			t.Errorf("Render() = %q, want %q", got, want)
		}
	})

	t.Run("explicit markers align", func(t *testing.T) {
		got := render(t, testOptions(), &ast.OrderedList{
			Attr:  ast.ListAttrs{Start: 9, Style: ast.Decimal, Delimiter: ast.Period},
			Items: [][]ast.Block{item("a"), item("b")},
		})
		want := "9.  a\n10. b"
		if got != want {
			t.Errorf("Render() = %q, want %q", got, want)
		}
	})

	t.Run("alpha parens", func(t *testing.T) {
		got := render(t, testOptions(), &ast.OrderedList{
			Attr:  ast.ListAttrs{Start: 3, Style: ast.LowerAlpha, Delimiter: ast.OneParen},
			Items: [][]ast.Block{item("a"), item("b")},
		})
		want := "c) a\nd) b"
		if got != want {
			t.Errorf("Render() = %q, want %q", got, want)
		}
	})
}

func TestCodeBlocks(t *testing.T) {
	t.Run("plain literal", func(t *testing.T) {
		got := render(t, testOptions(), &ast.CodeBlock{Text: "x := 1\ny := 2"})
		want := "::\n\n   x := 1\n   y := 2"
		if got != want {
			t.Errorf("Render() = %q, want %q", got, want)
		}
	})

	t.Run("language directive", func(t *testing.T) {
		got := render(t, testOptions(), &ast.CodeBlock{
			Attr: ast.Attr{Classes: []string{"go"}},
			Text: "x := 1",
		})
		want := ".. code:: go\n\n   x := 1"
		if got != want {
			t.Errorf("Render() = %q, want %q", got, want)
		}
	})

	t.Run("literate haskell", func(t *testing.T) {
		opts := testOptions()
		opts.LiterateHaskell = true
		got := render(t, opts, &ast.CodeBlock{
			Attr: ast.Attr{Classes: []string{"haskell", "literate"}},
			Text: "main = return ()",
		})
		want := "> main = return ()"
		if got != want {
			t.Errorf("Render() = %q, want %q", got, want)
		}
	})
}

func TestHardBreaksBecomeLineBlock(t *testing.T) {
	got := render(t, testOptions(), &ast.Para{Inlines: []ast.Inline{
		&ast.Str{Text: "first"},
		&ast.LineBreak{},
		&ast.Str{Text: "second"},
	}})
	want := "| first\n| second"
	if got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

func TestBlockQuoteAfterListGetsComment(t *testing.T) {
	got := render(t, testOptions(),
		&ast.BulletList{Items: [][]ast.Block{
			{&ast.Plain{Inlines: []ast.Inline{&ast.Str{Text: "item"}}}},
		}},
		&ast.BlockQuote{Blocks: []ast.Block{
			&ast.Para{Inlines: []ast.Inline{&ast.Str{Text: "quote"}}},
		}},
	)
	want := "-  item\n\n..\n\n   quote"
	if got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

func TestFootnoteNumbering(t *testing.T) {
	note := func(s string) *ast.Note {
		return &ast.Note{Blocks: []ast.Block{&ast.Para{Inlines: []ast.Inline{&ast.Str{Text: s}}}}}
	}
	got := render(t, testOptions(), &ast.Para{Inlines: []ast.Inline{
		&ast.Str{Text: "a"}, note("first"),
		&ast.Space{},
		&ast.Str{Text: "b"}, note("second"),
	}})
	want := "a [1]_ b [2]_\n\n.. [1]\n   first\n\n.. [2]\n   second"
	if got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

func TestNestingDepthGuard(t *testing.T) {
	var block ast.Block = &ast.Para{Inlines: []ast.Inline{&ast.Str{Text: "deep"}}}
	for i := 0; i < maxNestingDepth+8; i++ {
		block = &ast.BlockQuote{Blocks: []ast.Block{block}}
	}
	_, err := New(testOptions(), nil).Render(&ast.Document{Blocks: []ast.Block{block}})
	if !errors.Is(err, ErrNestingTooDeep) {
		t.Errorf("expected ErrNestingTooDeep, got %v", err)
	}
}

func TestEmptyDocument(t *testing.T) {
	if got := render(t, testOptions()); got != "" {
		t.Errorf("empty document rendered %q", got)
	}
}

func TestWrapModes(t *testing.T) {
	inlines := []ast.Inline{
		&ast.Str{Text: "alpha"}, &ast.SoftBreak{},
		&ast.Str{Text: "beta"}, &ast.SoftBreak{},
		&ast.Str{Text: "gamma"},
	}

	t.Run("auto reflows", func(t *testing.T) {
		opts := testOptions()
		opts.Columns = 11
		got := render(t, opts, &ast.Para{Inlines: inlines})
		want := "alpha beta\ngamma"
		if got != want {
			t.Errorf("Render() = %q, want %q", got, want)
		}
	})

	t.Run("preserve keeps breaks", func(t *testing.T) {
		opts := testOptions()
		opts.Wrap = config.WrapModePreserve
		got := render(t, opts, &ast.Para{Inlines: inlines})
		want := "alpha\nbeta\ngamma"
		if got != want {
			t.Errorf("Render() = %q, want %q", got, want)
		}
	})

	t.Run("none keeps one line", func(t *testing.T) {
		opts := testOptions()
		opts.Wrap = config.WrapModeNone
		got := render(t, opts, &ast.Para{Inlines: inlines})
		want := "alpha beta gamma"
		if got != want {
			t.Errorf("Render() = %q, want %q", got, want)
		}
	})
}

func TestAdmonitionDiv(t *testing.T) {
	got := render(t, testOptions(), &ast.Div{
		Attr: ast.Attr{Classes: []string{"note"}},
		Blocks: []ast.Block{
			&ast.Para{Inlines: []ast.Inline{&ast.Str{Text: "careful"}}},
		},
	})
	want := ".. note::\n\n   careful"
	if got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

func TestFigure(t *testing.T) {
	got := render(t, testOptions(), &ast.Figure{
		Caption: ast.Caption{Long: []ast.Block{
			&ast.Plain{Inlines: []ast.Inline{&ast.Str{Text: "A"}, &ast.Space{}, &ast.Str{Text: "fish"}}},
		}},
		Blocks: []ast.Block{
			&ast.Plain{Inlines: []ast.Inline{&ast.Image{
				Inlines: []ast.Inline{&ast.Str{Text: "fish"}},
				Target:  ast.Target{URL: "fish.png"},
			}}},
		},
	})
	want := ".. figure:: fish.png\n   :alt: fish\n\n   A fish"
	if got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}
