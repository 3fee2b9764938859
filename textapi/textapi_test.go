/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package textapi

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/herryqg/pdf-parser/model"
)

// writeTextapiPdf builds a one-page PDF with a single TrueType font
// (no explicit ToUnicode, so the synthesized WinAnsi default is
// exercised) drawing contentStream.
func writeTextapiPdf(t *testing.T, contentStream string) string {
	t.Helper()

	objs := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /Contents 4 0 R /Resources << /Font << /TT0 5 0 R >> >> >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(contentStream), contentStream),
		"<< /Type /Font /Subtype /TrueType /BaseFont /Arial " +
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

	path := filepath.Join(t.TempDir(), "textapi.pdf")
	require.NoError(t, os.WriteFile(path, buf, 0o644))
	return path
}

func TestAnalyzeFontsReportsBaseNameAndCMap(t *testing.T) {
	path := writeTextapiPdf(t, "BT /TT0 12 Tf (Hi) Tj ET")
	doc, err := model.Open(path)
	require.NoError(t, err)

	report, err := AnalyzeFonts(doc)
	require.NoError(t, err)
	require.Len(t, report.Fonts, 1)
	require.Equal(t, "TT0", report.Fonts[0].Alias)
	require.Equal(t, "Arial", report.Fonts[0].BaseFont)
	require.Greater(t, report.Fonts[0].CMapSize, 0)

	var sawH bool
	for _, cp := range report.Fonts[0].Codes {
		if cp.Scalar == 'H' {
			sawH = true
		}
	}
	require.True(t, sawH)
}

func TestSearchFindsSubstringAcrossRuns(t *testing.T) {
	path := writeTextapiPdf(t, "BT /TT0 12 Tf (Hello World) Tj (Goodbye) Tj ET")
	doc, err := model.Open(path)
	require.NoError(t, err)

	matches, err := Search(doc, "World", nil, true)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	require.Equal(t, 0, matches[0].PageIndex)
	require.Equal(t, 0, matches[0].Instance)
	require.Equal(t, "TT0", matches[0].FontAlias)
	require.Equal(t, "Hello World", matches[0].Context)
}

func TestSearchCaseInsensitiveByDefault(t *testing.T) {
	path := writeTextapiPdf(t, "BT /TT0 12 Tf (Hello) Tj ET")
	doc, err := model.Open(path)
	require.NoError(t, err)

	matches, err := Search(doc, "hello", nil, false)
	require.NoError(t, err)
	require.Len(t, matches, 1)

	matches, err = Search(doc, "hello", nil, true)
	require.NoError(t, err)
	require.Empty(t, matches)
}

func TestSearchEmptyNeedleRejected(t *testing.T) {
	path := writeTextapiPdf(t, "BT /TT0 12 Tf (Hello) Tj ET")
	doc, err := model.Open(path)
	require.NoError(t, err)

	_, err = Search(doc, "", nil, true)
	require.Error(t, err)
}

func TestParsePageTextPreservesOrderAndInstances(t *testing.T) {
	path := writeTextapiPdf(t, "BT /TT0 12 Tf (FOO) Tj (BAR) Tj ET")
	doc, err := model.Open(path)
	require.NoError(t, err)

	elems, err := ParsePageText(doc, 0)
	require.NoError(t, err)
	require.Len(t, elems, 2)
	require.Equal(t, 0, elems[0].Instance)
	require.Equal(t, "FOO", elems[0].Text)
	require.Equal(t, "Tj", elems[0].Operator)
	require.Equal(t, 1, elems[1].Instance)
	require.Equal(t, "BAR", elems[1].Text)
}

func TestParsePageTextPageRangeError(t *testing.T) {
	path := writeTextapiPdf(t, "BT /TT0 12 Tf (Hi) Tj ET")
	doc, err := model.Open(path)
	require.NoError(t, err)

	_, err = ParsePageText(doc, 5)
	require.Error(t, err)
}
