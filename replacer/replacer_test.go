/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package replacer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/herryqg/pdf-parser/catalogue"
	"github.com/herryqg/pdf-parser/contentstream"
	"github.com/herryqg/pdf-parser/internal/cmap"
	"github.com/herryqg/pdf-parser/model"
	"github.com/herryqg/pdf-parser/perr"
)

const toUnicodeWithEAcute = `/CIDInit /ProcSet findresource begin
12 dict begin
begincmap
/CIDSystemInfo << /Registry (Adobe) /Ordering (UCS) /Supplement 0 >> def
/CMapName /Adobe-Identity-UCS def
/CMapType 2 def
1 begincodespacerange
<00> <FF>
endcodespacerange
1 beginbfchar
<e9> <00e9>
endbfchar
endcmap
CMapName currentdict /CMap defineresource pop
end
end
`

// writeReplacerPdf builds a one-page PDF with one or two simple
// TrueType fonts (no embedded font program — these tests exercise
// Reuse/Borrow/refusal paths only, which never read FontFile2) and
// the given content stream.
func writeReplacerPdf(t *testing.T, contentStream string, secondFont bool) string {
	t.Helper()

	objs := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"", // page, filled below once resources are known
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(contentStream), contentStream),
		"<< /Type /Font /Subtype /TrueType /BaseFont /Arial " +
			"/Encoding << /BaseEncoding /WinAnsiEncoding >> >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(toUnicodeWithEAcute), toUnicodeWithEAcute),
		"<< /Type /Font /Subtype /TrueType /BaseFont /Helvetica " +
			"/Encoding << /BaseEncoding /WinAnsiEncoding >> /ToUnicode 6 0 R >>",
	}

	resources := "/Resources << /Font << /TT0 5 0 R"
	if secondFont {
		resources += " /TT1 7 0 R"
	}
	resources += " >> >>"
	objs[2] = fmt.Sprintf("<< /Type /Page /Parent 2 0 R /Contents 4 0 R %s >>", resources)

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

	path := filepath.Join(t.TempDir(), "replacer.pdf")
	require.NoError(t, os.WriteFile(path, buf, 0o644))
	return path
}

func decodedRuns(t *testing.T, doc *model.Document, pageIndex int) []string {
	t.Helper()
	page, err := doc.Page(pageIndex)
	require.NoError(t, err)
	data, err := page.ContentBytes()
	require.NoError(t, err)

	fonts := page.Fonts()
	cat, err := catalogue.Build(doc)
	require.NoError(t, err)
	lookup := func(alias string) (*cmap.CMap, bool) {
		if _, ok := fonts[alias]; !ok {
			return nil, false
		}
		return cat.CMaps[alias], cat.CMaps[alias] != nil
	}
	items, err := contentstream.Tokenize(data, lookup)
	require.NoError(t, err)

	var texts []string
	for _, it := range items {
		if it.Kind == contentstream.TextShow {
			texts = append(texts, it.Run.Text)
		}
	}
	return texts
}

func TestReplaceTextSimpleAsciiSameFont(t *testing.T) {
	path := writeReplacerPdf(t, "BT /TT0 12 Tf (Hello) Tj ET", false)
	doc, err := model.Open(path)
	require.NoError(t, err)

	report, err := ReplaceText(doc, 0, "Hello", "World", Options{})
	require.NoError(t, err)
	require.Equal(t, 1, report.Located)
	require.Equal(t, 1, report.Rewritten)
	require.Empty(t, report.Refused)
	require.Empty(t, report.Allocated)

	require.Equal(t, []string{"World"}, decodedRuns(t, doc, 0))
}

func TestReplaceTextRefusalWithoutAutoInsert(t *testing.T) {
	path := writeReplacerPdf(t, "BT /TT0 12 Tf (Hello) Tj ET", false)
	doc, err := model.Open(path)
	require.NoError(t, err)

	report, err := ReplaceText(doc, 0, "Hello", "Héllo", Options{AllowAutoInsert: false})
	require.Error(t, err)
	require.True(t, errors.Is(err, perr.ErrUnsupportedCharacter))
	require.Equal(t, 0, report.Rewritten)
	require.Len(t, report.Refused, 1)
	require.Equal(t, "unsupported_character", report.Refused[0].Reason)

	require.Equal(t, []string{"Hello"}, decodedRuns(t, doc, 0))
}

func TestReplaceTextMultiInstanceSelective(t *testing.T) {
	path := writeReplacerPdf(t, "BT /TT0 12 Tf (FOO) Tj (FOO) Tj ET", false)
	doc, err := model.Open(path)
	require.NoError(t, err)

	idx := 1
	report, err := ReplaceText(doc, 0, "FOO", "BAR", Options{InstanceIndex: &idx})
	require.NoError(t, err)
	require.Equal(t, 2, report.Located)
	require.Equal(t, 1, report.Rewritten)

	require.Equal(t, []string{"FOO", "BAR"}, decodedRuns(t, doc, 0))
}

func TestReplaceTextTJKerningDropped(t *testing.T) {
	path := writeReplacerPdf(t, "BT /TT0 12 Tf [(A) -20 (B)] TJ ET", false)
	doc, err := model.Open(path)
	require.NoError(t, err)

	report, err := ReplaceText(doc, 0, "AB", "CD", Options{})
	require.NoError(t, err)
	require.Equal(t, 1, report.Rewritten)

	page, err := doc.Page(0)
	require.NoError(t, err)
	data, err := page.ContentBytes()
	require.NoError(t, err)
	require.Contains(t, string(data), "[(CD)]TJ")
	require.NotContains(t, string(data), "-20")

	require.Equal(t, []string{"CD"}, decodedRuns(t, doc, 0))
}

func TestReplaceTextCrossFontNoBorrow(t *testing.T) {
	path := writeReplacerPdf(t, "BT /TT0 12 Tf (cafe) Tj ET", true)
	doc, err := model.Open(path)
	require.NoError(t, err)

	report, err := ReplaceText(doc, 0, "cafe", "café", Options{AllowAutoInsert: false})
	require.Error(t, err)
	require.True(t, errors.Is(err, perr.ErrUnsupportedCharacter))
	require.Equal(t, 0, report.Rewritten)
	require.Equal(t, "unsupported_character", report.Refused[0].Reason)
}

func TestReplaceTextInstanceIndexOutOfRange(t *testing.T) {
	path := writeReplacerPdf(t, "BT /TT0 12 Tf (Hello) Tj ET", false)
	doc, err := model.Open(path)
	require.NoError(t, err)

	idx := 5
	_, err = ReplaceText(doc, 0, "Hello", "World", Options{InstanceIndex: &idx})
	require.True(t, errors.Is(err, perr.ErrNoSuchInstance))
}

func TestReplaceTextEmptyTargetRejected(t *testing.T) {
	path := writeReplacerPdf(t, "BT /TT0 12 Tf (Hello) Tj ET", false)
	doc, err := model.Open(path)
	require.NoError(t, err)

	_, err = ReplaceText(doc, 0, "", "World", Options{})
	require.True(t, errors.Is(err, perr.ErrEmptyTarget))
}

func TestReplaceTextSameTargetRejected(t *testing.T) {
	path := writeReplacerPdf(t, "BT /TT0 12 Tf (Hello) Tj ET", false)
	doc, err := model.Open(path)
	require.NoError(t, err)

	_, err = ReplaceText(doc, 0, "Hello", "Hello", Options{})
	require.True(t, errors.Is(err, perr.ErrSameTargetReplacement))
}

func TestReplaceTextNoMatchIsNoOp(t *testing.T) {
	path := writeReplacerPdf(t, "BT /TT0 12 Tf (Hello) Tj ET", false)
	doc, err := model.Open(path)
	require.NoError(t, err)

	report, err := ReplaceText(doc, 0, "Goodbye", "World", Options{})
	require.NoError(t, err)
	require.Equal(t, 0, report.Located)
	require.Equal(t, 0, report.Rewritten)
}

func TestAllocateCodePrefersLowRangeThenFallsBack(t *testing.T) {
	cat := catalogue.New()
	code, ok := allocateCode("TT0", cat, nil)
	require.True(t, ok)
	require.Equal(t, byte(0xB0), code)

	for c := allocLow; c <= allocHigh; c++ {
		cat.ReserveCode("TT0", byte(c))
	}
	code, ok = allocateCode("TT0", cat, nil)
	require.True(t, ok)
	require.Equal(t, byte(0x80), code)

	for c := fallbackLow; c <= fallbackHigh; c++ {
		cat.ReserveCode("TT0", byte(c))
	}
	_, ok = allocateCode("TT0", cat, nil)
	require.False(t, ok)
}

func TestAllocateCodeExcludesOtherFontDifferences(t *testing.T) {
	cat := catalogue.New()
	claimed := map[byte]bool{0xB0: true}
	code, ok := allocateCode("TT0", cat, claimed)
	require.True(t, ok)
	require.Equal(t, byte(0xB1), code)
}

func TestPlanReplacementReusesRepeatedCharacterAcrossOnePlan(t *testing.T) {
	path := writeReplacerPdf(t, "BT /TT0 12 Tf (Hello) Tj ET", false)
	doc, err := model.Open(path)
	require.NoError(t, err)
	page, err := doc.Page(0)
	require.NoError(t, err)

	cat := catalogue.New()
	cm := cmap.DefaultWinAnsi()
	cat.CMaps["TT0"] = cm

	plan, needsAllocate := planReplacement("abéé", "TT0", cat, cm, map[string]map[rune]byte{})
	require.True(t, needsAllocate)

	opAllocs := map[string]map[rune]byte{}
	ok := resolveAllocations(plan, "TT0", cat, page, opAllocs)
	require.True(t, ok)
	require.Equal(t, plan[2].code, plan[3].code)
	require.Equal(t, 1, len(opAllocs["TT0"]))
}
