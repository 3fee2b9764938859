/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package contentstream

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/herryqg/pdf-parser/internal/cmap"
)

func winAnsiLookup(alias string) (cm *cmap.CMap, ok bool) {
	if alias != "F1" {
		return nil, false
	}
	return cmap.DefaultWinAnsi(), true
}

func TestTokenizeRoundTripsUntouchedStream(t *testing.T) {
	src := "q\n1 0 0 1 0 0 cm\nBT\n/F1 12 Tf\n10 20 30 40 50 60 Tm\n(Hello) Tj\nET\nQ\n"
	items, err := Tokenize([]byte(src), winAnsiLookup)
	require.NoError(t, err)
	require.Equal(t, src, string(Render(items)))
}

func TestTokenizeDecodesTjUsingCurrentFont(t *testing.T) {
	src := "/F1 12 Tf\n(Hello) Tj\n"
	items, err := Tokenize([]byte(src), winAnsiLookup)
	require.NoError(t, err)

	var runs []*TextRun
	for _, it := range items {
		if it.Kind == TextShow {
			runs = append(runs, it.Run)
		}
	}
	require.Len(t, runs, 1)
	require.Equal(t, "Hello", runs[0].Text)
	require.Equal(t, "Tj", runs[0].Operator)
	require.Equal(t, "F1", runs[0].Font)
}

func TestTokenizeDecodesTJConcatenatingStringElements(t *testing.T) {
	src := "/F1 12 Tf\n[(Hel) -250 (lo)] TJ\n"
	items, err := Tokenize([]byte(src), winAnsiLookup)
	require.NoError(t, err)

	var run *TextRun
	for _, it := range items {
		if it.Kind == TextShow {
			run = it.Run
		}
	}
	require.NotNil(t, run)
	require.Equal(t, "Hello", run.Text)
	require.Equal(t, "TJ", run.Operator)
}

func identityLookup(alias string) (*cmap.CMap, bool) {
	cm := cmap.New()
	for b := 0; b < 256; b++ {
		cm.Set(byte(b), rune(b))
	}
	return cm, true
}

func TestTokenizeHandlesLiteralStringEscapes(t *testing.T) {
	src := "/F1 12 Tf\n" + `(\050esc\051 \\slash\n)` + " Tj\n"
	items, err := Tokenize([]byte(src), identityLookup)
	require.NoError(t, err)
	var run *TextRun
	for _, it := range items {
		if it.Kind == TextShow {
			run = it.Run
		}
	}
	require.NotNil(t, run)
	require.Equal(t, "(esc) \\slash\n", run.Text)
}

func TestTokenizeCurrentFontCursorUpdatesAcrossSelects(t *testing.T) {
	lookup := func(alias string) (*cmap.CMap, bool) {
		cm := cmap.New()
		cm.Set('A', rune(alias[1]))
		cm.Set('B', rune(alias[1]))
		return cm, true
	}
	src := "/F1 12 Tf\n(A) Tj\n/F2 10 Tf\n(B) Tj\n"
	items, err := Tokenize([]byte(src), lookup)
	require.NoError(t, err)

	var texts []string
	for _, it := range items {
		if it.Kind == TextShow {
			texts = append(texts, it.Run.Text)
		}
	}
	require.Equal(t, []string{"1", "2"}, texts)
}

func TestTokenizeSkipsInlineImageAsPassthrough(t *testing.T) {
	src := "q\nBI\n/W 1\n/H 1\n/BPC 8\n/CS /G\nID \x00\x01EI\nQ\n"
	items, err := Tokenize([]byte(src), nil)
	require.NoError(t, err)
	require.Equal(t, src, string(Render(items)))

	for _, it := range items {
		require.NotEqual(t, TextShow, it.Kind)
	}
}

func TestTokenizeUnknownFontYieldsMissingCodeRune(t *testing.T) {
	src := "/NoSuchFont 12 Tf\n(Hi) Tj\n"
	items, err := Tokenize([]byte(src), winAnsiLookup)
	require.NoError(t, err)

	var run *TextRun
	for _, it := range items {
		if it.Kind == TextShow {
			run = it.Run
		}
	}
	require.Equal(t, string([]rune{MissingCodeRune, MissingCodeRune}), run.Text)
}

func TestRenderRewritesTjToNewLiteral(t *testing.T) {
	src := "/F1 12 Tf\n(Hello) Tj\n"
	items, err := Tokenize([]byte(src), winAnsiLookup)
	require.NoError(t, err)

	for _, it := range items {
		if it.Kind == TextShow {
			it.Run.Rewrite([]byte("Hi"))
		}
	}
	require.Equal(t, "/F1 12 Tf\n(Hi)Tj\n", string(Render(items)))
}

func TestRenderRewritesTJToBracketedSingleLiteral(t *testing.T) {
	src := "/F1 12 Tf\n[(Hel) -250 (lo)] TJ\n"
	items, err := Tokenize([]byte(src), winAnsiLookup)
	require.NoError(t, err)

	for _, it := range items {
		if it.Kind == TextShow {
			it.Run.Rewrite([]byte("Hi"))
		}
	}
	require.Equal(t, "/F1 12 Tf\n[(Hi)]TJ\n", string(Render(items)))
}

func TestEscapeLiteralEscapesParensAndBackslash(t *testing.T) {
	require.Equal(t, `\(a\)\\b`, string(EscapeLiteral([]byte(`(a)\b`))))
}

func TestEscapeLiteralOctalEscapesControlBytes(t *testing.T) {
	require.Equal(t, `\001`, string(EscapeLiteral([]byte{0x01})))
}
