/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package model

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeTestPdf assembles a minimal well-formed classic-xref PDF with one
// page, one TrueType simple font (FirstChar/Widths/Differences/
// ToUnicode present; its FontDescriptor has no FontFile2), and writes
// it to a temp file,
// returning its path. Grounded on core/parser_test.go's
// buildClassicPdf, extended with the font/resource objects this
// package's tests need.
func writeTestPdf(t *testing.T, contentStream string) string {
	t.Helper()

	objs := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /Contents 4 0 R /Resources << /Font << /TT0 6 0 R >> >> >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(contentStream), contentStream),
		"", // placeholder, unused object number 5 kept free
		"<< /Type /Font /Subtype /TrueType /BaseFont /Arial /FirstChar 32 /Widths [278 278 355] " +
			"/Encoding << /BaseEncoding /WinAnsiEncoding /Differences [32 /space /exclam /quotedbl] >> " +
			"/ToUnicode 7 0 R /FontDescriptor 8 0 R >>",
		"<< /Length 0 >>\nstream\n\nendstream",
		"<< /Type /FontDescriptor /FontName /Arial >>",
	}

	var buf strings.Builder
	buf.WriteString("%PDF-1.4\n")
	offsets := []int{0}
	for i, body := range objs {
		offsets = append(offsets, buf.Len())
		if body == "" {
			continue
		}
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}

	xrefOffset := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets))
	buf.WriteString("0000000000 65535 f \n")
	for i, off := range offsets[1:] {
		if objs[i] == "" {
			buf.WriteString("0000000000 00000 f \n")
			continue
		}
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF", len(offsets), xrefOffset)

	path := filepath.Join(t.TempDir(), "test.pdf")
	require.NoError(t, os.WriteFile(path, []byte(buf.String()), 0o644))
	return path
}

func TestOpenLoadsPagesAndFonts(t *testing.T) {
	path := writeTestPdf(t, "BT /TT0 12 Tf (!\"!) Tj ET")
	doc, err := Open(path)
	require.NoError(t, err)
	require.Equal(t, 1, doc.PageCount())

	page, err := doc.Page(0)
	require.NoError(t, err)

	fonts := page.Fonts()
	require.Contains(t, fonts, "TT0")
	require.Equal(t, "Arial", fonts["TT0"].BaseFont())
}

func TestPageRangeOutOfBounds(t *testing.T) {
	path := writeTestPdf(t, "")
	doc, err := Open(path)
	require.NoError(t, err)

	_, err = doc.Page(1)
	require.Error(t, err)
}

func TestContentBytesReturnsDecodedStream(t *testing.T) {
	path := writeTestPdf(t, "BT /TT0 12 Tf (hi) Tj ET")
	doc, err := Open(path)
	require.NoError(t, err)
	page, err := doc.Page(0)
	require.NoError(t, err)

	data, err := page.ContentBytes()
	require.NoError(t, err)
	require.Contains(t, string(data), "(hi) Tj")
}

func TestSetContentInvalidatesCacheAndReplacesStream(t *testing.T) {
	path := writeTestPdf(t, "BT /TT0 12 Tf (hi) Tj ET")
	doc, err := Open(path)
	require.NoError(t, err)
	page, err := doc.Page(0)
	require.NoError(t, err)

	_, err = page.ContentBytes()
	require.NoError(t, err)

	require.NoError(t, page.SetContent([]byte("BT /TT0 12 Tf (bye) Tj ET")))
	data, err := page.ContentBytes()
	require.NoError(t, err)
	require.Equal(t, "BT /TT0 12 Tf (bye) Tj ET", string(data))
}

func TestFontWidthsAndDifferenceCodes(t *testing.T) {
	path := writeTestPdf(t, "")
	doc, err := Open(path)
	require.NoError(t, err)
	page, err := doc.Page(0)
	require.NoError(t, err)
	font := page.Fonts()["TT0"]

	firstChar, widths := doc.ReadWidths(font)
	require.Equal(t, 32, firstChar)
	require.Equal(t, []float64{278, 278, 355}, widths)

	diffs := font.DifferenceCodes()
	require.True(t, diffs[32])
	require.True(t, diffs[33])
	require.True(t, diffs[34])
	require.False(t, diffs[35])
}

func TestWriteWidthsAndFontProgramRoundTrip(t *testing.T) {
	path := writeTestPdf(t, "")
	doc, err := Open(path)
	require.NoError(t, err)
	page, err := doc.Page(0)
	require.NoError(t, err)
	font := page.Fonts()["TT0"]

	doc.WriteWidths(font, 0, []float64{100, 200, 300})
	firstChar, widths := doc.ReadWidths(font)
	require.Equal(t, 0, firstChar)
	require.Equal(t, []float64{100, 200, 300}, widths)

	require.NoError(t, doc.WriteFontProgram(font, []byte("fake-ttf-bytes")))
	data, err := doc.ReadFontProgram(font)
	require.NoError(t, err)
	require.Equal(t, "fake-ttf-bytes", string(data))
}

func TestSaveProducesReparsableDocument(t *testing.T) {
	path := writeTestPdf(t, "BT /TT0 12 Tf (hi) Tj ET")
	doc, err := Open(path)
	require.NoError(t, err)
	page, err := doc.Page(0)
	require.NoError(t, err)
	require.NoError(t, page.SetContent([]byte("BT /TT0 12 Tf (bye) Tj ET")))

	outPath := filepath.Join(t.TempDir(), "out.pdf")
	require.NoError(t, doc.Save(outPath))

	reopened, err := Open(outPath)
	require.NoError(t, err)
	require.Equal(t, 1, reopened.PageCount())
	rp, err := reopened.Page(0)
	require.NoError(t, err)
	data, err := rp.ContentBytes()
	require.NoError(t, err)
	require.Equal(t, "BT /TT0 12 Tf (bye) Tj ET", string(data))
}

func TestOpenRejectsNonPdfFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not.pdf")
	require.NoError(t, os.WriteFile(path, []byte("hello world"), 0o644))
	_, err := Open(path)
	require.Error(t, err)
}
