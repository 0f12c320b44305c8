package rst

import (
	"strings"
	"testing"

	"rstc/ast"
)

func link(label, url string) *ast.Link {
	return &ast.Link{
		Inlines: []ast.Inline{&ast.Str{Text: label}},
		Target:  ast.Target{URL: url},
	}
}

func TestInlineLinks(t *testing.T) {
	got := render(t, testOptions(), &ast.Para{Inlines: []ast.Inline{
		link("docs", "https://example.com/docs"),
	}})
	want := "`docs <https://example.com/docs>`__"
	if got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

func TestAutoLink(t *testing.T) {
	got := render(t, testOptions(), &ast.Para{Inlines: []ast.Inline{
		link("https://example.com", "https://example.com"),
	}})
	if got != "https://example.com" {
		t.Errorf("Render() = %q, want bare URL", got)
	}

	got = render(t, testOptions(), &ast.Para{Inlines: []ast.Inline{
		link("who@example.com", "mailto:who@example.com"),
	}})
	if got != "who@example.com" {
		t.Errorf("Render() = %q, want bare address", got)
	}
}

func TestReferenceLinkDedup(t *testing.T) {
	opts := testOptions()
	opts.ReferenceLinks = true

	got := render(t, opts, &ast.Para{Inlines: []ast.Inline{
		link("docs", "https://example.com/docs"),
		&ast.Space{},
		link("docs", "https://example.com/docs"),
	}})
	want := "`docs`_ `docs`_\n\n.. _docs: https://example.com/docs"
	if got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

func TestReferenceLinkLabelCollision(t *testing.T) {
	opts := testOptions()
	opts.ReferenceLinks = true

	got := render(t, opts, &ast.Para{Inlines: []ast.Inline{
		link("docs", "https://example.com/one"),
		&ast.Space{},
		link("docs", "https://example.com/two"),
	}})
	want := "`docs`_ `docs-1`_\n\n" +
		".. _docs: https://example.com/one\n" +
		".. _docs-1: https://example.com/two"
	if got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

func TestLinkLabelWithColonIsQuoted(t *testing.T) {
	opts := testOptions()
	opts.ReferenceLinks = true

	got := render(t, opts, &ast.Para{Inlines: []ast.Inline{
		link("see: docs", "https://example.com"),
	}})
	if !strings.Contains(got, ".. _`see: docs`: https://example.com") {
		t.Errorf("expected quoted target label, got %q", got)
	}
}

func TestImageSubstitutions(t *testing.T) {
	image := func(alt, src string) *ast.Image {
		img := &ast.Image{Target: ast.Target{URL: src}}
		if alt != "" {
			img.Inlines = []ast.Inline{&ast.Str{Text: alt}}
		}
		return img
	}

	t.Run("alt text becomes the label", func(t *testing.T) {
		got := render(t, testOptions(), &ast.Para{Inlines: []ast.Inline{image("pic", "pic.png")}})
		want := "|pic|\n\n.. |pic| image:: pic.png"
		if got != want {
			t.Errorf("Render() = %q, want %q", got, want)
		}
	})

	t.Run("missing alt synthesizes a label", func(t *testing.T) {
		got := render(t, testOptions(), &ast.Para{Inlines: []ast.Inline{image("", "pic.png")}})
		want := "|image1|\n\n.. |image1| image:: pic.png"
		if got != want {
			t.Errorf("Render() = %q, want %q", got, want)
		}
	})

	t.Run("identical images share one entry", func(t *testing.T) {
		got := render(t, testOptions(), &ast.Para{Inlines: []ast.Inline{
			image("pic", "pic.png"), &ast.Space{}, image("pic", "pic.png"),
		}})
		if strings.Count(got, ".. |pic| image::") != 1 {
			t.Errorf("expected a single substitution entry, got %q", got)
		}
	})

	t.Run("same label different image gets a fresh label", func(t *testing.T) {
		got := render(t, testOptions(), &ast.Para{Inlines: []ast.Inline{
			image("pic", "one.png"), &ast.Space{}, image("pic", "two.png"),
		}})
		if !strings.Contains(got, ".. |pic| image:: one.png") ||
			!strings.Contains(got, ".. |image1| image:: two.png") {
			t.Errorf("expected two distinct entries, got %q", got)
		}
	})

	t.Run("linked image records its target", func(t *testing.T) {
		got := render(t, testOptions(), &ast.Para{Inlines: []ast.Inline{
			&ast.Link{
				Inlines: []ast.Inline{image("pic", "pic.png")},
				Target:  ast.Target{URL: "https://example.com"},
			},
		}})
		want := "|pic|\n\n.. |pic| image:: pic.png\n   :target: https://example.com"
		if got != want {
			t.Errorf("Render() = %q, want %q", got, want)
		}
	})
}
