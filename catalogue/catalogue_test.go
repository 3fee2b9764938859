/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package catalogue

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/herryqg/pdf-parser/model"
)

// writeCataloguePdf builds a one-page PDF with a single TrueType font
// (a short Widths array from FirstChar 32, a WinAnsi base encoding with
// no Differences, and no explicit ToUnicode so the synthesized WinAnsi
// default is exercised) drawing contentStream.
func writeCataloguePdf(t *testing.T, contentStream string) string {
	t.Helper()

	objs := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /Contents 4 0 R /Resources << /Font << /TT0 5 0 R >> >> >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(contentStream), contentStream),
		"<< /Type /Font /Subtype /TrueType /BaseFont /Arial /FirstChar 32 /Widths [278 278 278 278 278 278] " +
			"/Encoding << /BaseEncoding /WinAnsiEncoding >> >>",
	}

	var buf []byte
	buf = append(buf, []byte("%PDF-1.4\n")...)
	offsets := []int{0}
	for i, body := range objs {
		offsets = append(offsets, len(buf))
		buf = append(buf, []byte(fmt.Sprintf("%d 0 obj\n%s\nendobj\n", i+1, body))...)
	}

	xrefOffset := len(buf)
	buf = append(buf, []byte(fmt.Sprintf("xref\n0 %d\n", len(offsets)))...)
	buf = append(buf, []byte("0000000000 65535 f \n")...)
	for _, off := range offsets[1:] {
		buf = append(buf, []byte(fmt.Sprintf("%010d 00000 n \n", off))...)
	}
	buf = append(buf, []byte(fmt.Sprintf("trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF", len(offsets), xrefOffset))...)

	path := filepath.Join(t.TempDir(), "cat.pdf")
	require.NoError(t, os.WriteFile(path, buf, 0o644))
	return path
}

func TestBuildAggregatesCharactersAndCodes(t *testing.T) {
	path := writeCataloguePdf(t, "BT /TT0 12 Tf (Hi) Tj ET")
	doc, err := model.Open(path)
	require.NoError(t, err)

	cat, err := Build(doc)
	require.NoError(t, err)

	require.True(t, cat.CharactersInFont["TT0"]['H'])
	require.True(t, cat.CharactersInFont["TT0"]['i'])
	require.True(t, cat.CodesInUse["TT0"]['H'])
	require.True(t, cat.CodesInUse["TT0"]['i'])
	require.True(t, cat.CodesForCharacter["TT0"]['H']['H'])
}

func TestInvariantCodesInUseIsUnionOfCodesForCharacter(t *testing.T) {
	path := writeCataloguePdf(t, "BT /TT0 12 Tf (Hello World) Tj ET")
	doc, err := model.Open(path)
	require.NoError(t, err)
	cat, err := Build(doc)
	require.NoError(t, err)

	union := map[byte]bool{}
	for _, codes := range cat.CodesForCharacter["TT0"] {
		for c := range codes {
			union[c] = true
		}
	}
	require.Equal(t, cat.CodesInUse["TT0"], union)
}

func TestInvariantCharactersInFontIsDomainOfCodesForCharacter(t *testing.T) {
	path := writeCataloguePdf(t, "BT /TT0 12 Tf (Hello World) Tj ET")
	doc, err := model.Open(path)
	require.NoError(t, err)
	cat, err := Build(doc)
	require.NoError(t, err)

	for r := range cat.CharactersInFont["TT0"] {
		_, ok := cat.CodesForCharacter["TT0"][r]
		require.True(t, ok, "character %q missing from codes_for_character domain", r)
	}
	for r := range cat.CodesForCharacter["TT0"] {
		require.True(t, cat.CharactersInFont["TT0"][r])
	}
}

func TestBuildSynthesizesDefaultCMapWhenToUnicodeAbsent(t *testing.T) {
	path := writeCataloguePdf(t, "BT /TT0 12 Tf (A) Tj ET")
	doc, err := model.Open(path)
	require.NoError(t, err)
	cat, err := Build(doc)
	require.NoError(t, err)

	require.NotNil(t, cat.CMaps["TT0"])
	r, ok := cat.CMaps["TT0"].Decode('A')
	require.True(t, ok)
	require.Equal(t, 'A', r)
}

func TestReserveCodeAddsToCodesInUseWithoutCharacter(t *testing.T) {
	cat := New()
	cat.ReserveCode("TT0", 0xB0)
	require.True(t, cat.CodesInUse["TT0"][0xB0])
	require.Empty(t, cat.CharactersInFont["TT0"])
}
