/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package core

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// buildClassicPdf assembles a minimal well-formed PDF using a classic
// cross-reference table, computing object offsets as it goes rather
// than hardcoding them.
func buildClassicPdf(t *testing.T, extraObjects ...string) (string, int) {
	t.Helper()

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")

	offsets := []int{0} // object 0 is the free-list head, never written

	objs := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /Contents 4 0 R >>",
		"<< /Length 5 >>\nstream\nhello\nendstream",
	}
	objs = append(objs, extraObjects...)

	for i, body := range objs {
		offsets = append(offsets, buf.Len())
		buf.WriteString(intToStr(i+1))
		buf.WriteString(" 0 obj\n")
		buf.WriteString(body)
		buf.WriteString("\nendobj\n")
	}

	xrefOffset := buf.Len()
	buf.WriteString("xref\n")
	buf.WriteString("0 ")
	buf.WriteString(intToStr(len(offsets)))
	buf.WriteString("\n")
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets[1:] {
		buf.WriteString(padOffset(off))
		buf.WriteString(" 00000 n \n")
	}

	buf.WriteString("trailer\n")
	buf.WriteString("<< /Size ")
	buf.WriteString(intToStr(len(offsets)))
	buf.WriteString(" /Root 1 0 R >>\n")
	buf.WriteString("startxref\n")
	buf.WriteString(intToStr(xrefOffset))
	buf.WriteString("\n%%EOF")

	return buf.String(), xrefOffset
}

func intToStr(n int) string {
	return strings.TrimLeft(padOffset(n), "0")
}

func padOffset(n int) string {
	s := ""
	for i := 0; i < 10; i++ {
		s = string(rune('0'+n%10)) + s
		n /= 10
	}
	return s
}

func TestNewParserParsesClassicXrefAndTrailer(t *testing.T) {
	content, _ := buildClassicPdf(t)
	parser, err := NewParser(bytes.NewReader([]byte(content)))
	require.NoError(t, err)

	require.Equal(t, Version{Major: 1, Minor: 4}, parser.PdfVersion())
	require.NotNil(t, parser.GetTrailer())

	rootRef := parser.GetTrailer().Get("Root")
	require.NotNil(t, rootRef)
	ref, isRef := rootRef.(*PdfObjectReference)
	require.True(t, isRef)
	require.EqualValues(t, 1, ref.ObjectNumber)
}

func TestLookupByNumberResolvesIndirectObject(t *testing.T) {
	content, _ := buildClassicPdf(t)
	parser, err := NewParser(bytes.NewReader([]byte(content)))
	require.NoError(t, err)

	obj, err := parser.LookupByNumber(1)
	require.NoError(t, err)
	indirect, ok := obj.(*PdfIndirectObject)
	require.True(t, ok)

	dict, ok := TraceToDirectObject(indirect).(*PdfObjectDictionary)
	require.True(t, ok)
	typeName, ok := GetNameVal(dict.Get("Type"))
	require.True(t, ok)
	require.Equal(t, "Catalog", typeName)
}

func TestResolveFollowsReference(t *testing.T) {
	content, _ := buildClassicPdf(t)
	parser, err := NewParser(bytes.NewReader([]byte(content)))
	require.NoError(t, err)

	catalog, err := parser.Resolve(&PdfObjectReference{ObjectNumber: 1})
	require.NoError(t, err)
	dict, ok := catalog.(*PdfObjectDictionary)
	require.True(t, ok)
	require.NotNil(t, dict.Get("Pages"))
}

func TestParseIndirectObjectStream(t *testing.T) {
	content, _ := buildClassicPdf(t)
	parser, err := NewParser(bytes.NewReader([]byte(content)))
	require.NoError(t, err)

	obj, err := parser.LookupByNumber(4)
	require.NoError(t, err)
	stream, ok := obj.(*PdfObjectStream)
	require.True(t, ok)
	require.Equal(t, "hello", string(stream.Stream))
}

func TestNewParserRejectsEncryptedDocument(t *testing.T) {
	content, _ := buildClassicPdf(t, "<< /Filter /Standard /V 1 /R 2 >>")
	// Patch the trailer to reference the encryption dictionary (object 5).
	content = strings.Replace(content, "/Root 1 0 R >>", "/Root 1 0 R /Encrypt 5 0 R >>", 1)

	_, err := NewParser(bytes.NewReader([]byte(content)))
	require.ErrorIs(t, err, ErrEncrypted)
}

func TestParseDictNestedAndArrays(t *testing.T) {
	parser := NewParserFromString("<< /Kids [1 0 R 2 0 R] /Count 2 /Nested << /A /B >> >>")
	dict, err := parser.ParseDict()
	require.NoError(t, err)

	kids, ok := GetArray(dict.Get("Kids"))
	require.True(t, ok)
	require.Equal(t, 2, kids.Len())

	count, ok := GetIntVal(dict.Get("Count"))
	require.True(t, ok)
	require.Equal(t, 2, count)

	nested, ok := GetDict(dict.Get("Nested"))
	require.True(t, ok)
	nv, ok := GetNameVal(nested.Get("A"))
	require.True(t, ok)
	require.Equal(t, "B", nv)
}

func TestParseStringEscapes(t *testing.T) {
	parser := NewParserFromString(`(Hello \(World\)\n\101)`)
	str, err := parser.parseString()
	require.NoError(t, err)
	require.Equal(t, "Hello (World)\nA", str.Str())
}

func TestParseHexString(t *testing.T) {
	parser := NewParserFromString("<48656C6C6F>")
	str, err := parser.parseHexString()
	require.NoError(t, err)
	require.Equal(t, "Hello", str.Str())
	require.True(t, str.IsHex())
}

func TestParseNameWithHexEscapes(t *testing.T) {
	parser := NewParserFromString("/Lime#20Green ")
	name, err := parser.parseName()
	require.NoError(t, err)
	require.Equal(t, "Lime Green", string(name))
}

func TestParseNumberIntegerAndFloat(t *testing.T) {
	parser := NewParserFromString("-12.50 ")
	obj, err := parser.parseNumber()
	require.NoError(t, err)
	f, ok := obj.(*PdfObjectFloat)
	require.True(t, ok)
	require.InDelta(t, -12.50, float64(*f), 1e-9)

	parser = NewParserFromString("42 ")
	obj, err = parser.parseNumber()
	require.NoError(t, err)
	n, ok := obj.(*PdfObjectInteger)
	require.True(t, ok)
	require.Equal(t, PdfObjectInteger(42), *n)
}

func TestParseBoolAndNull(t *testing.T) {
	parser := NewParserFromString("true")
	b, err := parser.parseBool()
	require.NoError(t, err)
	require.True(t, bool(b))

	parser = NewParserFromString("null")
	n, err := parser.parseNull()
	require.NoError(t, err)
	require.IsType(t, PdfObjectNull{}, n)
}
