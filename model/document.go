/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

// Package model is the PDF Object Store: a thin, semantic view over an
// opened PDF's pages, page resources, font objects, content streams and
// embedded font programs. It resolves indirect references transparently
// and persists modifications made by the replacer package (the catalogue
// package only reads).
//
// The teacher's equivalent (model/model.go's PdfModel interface plus a
// modelManager primitive<->model cache, model/font.go's ten-odd font
// subtype variants, model/writer.go's AcroForm/outline/encryption/
// cross-reference-stream writer) is general-purpose far beyond this
// module's scope: single-byte-encoded embedded TrueType simple fonts
// only, no forms, no encryption, no signatures, classic cross-reference
// table output only. Document instead holds every top-level object in
// a flat arena keyed by object number (spec.md §9's "arena of object
// entries keyed by an integer id; references are ids; resolution is a
// lookup"), and Page/Font are thin handles into that arena rather than
// parsed structs with their own ToPdfObject round-trip.
package model

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/h2non/filetype"

	"github.com/herryqg/pdf-parser/core"
	"github.com/herryqg/pdf-parser/perr"
)

// Document is an opened PDF: an arena of every top-level object in the
// file, indexed by object number, plus the ordered page list derived by
// walking the page tree once at open time.
type Document struct {
	parser  *core.PdfParser
	objects map[int]core.PdfObject
	nextNum int
	version core.Version
	pages   []*Page
}

// Open reads path, verifies it carries a PDF magic signature, parses its
// classic cross-reference table and trailer, and loads every object the
// table names into memory. Returns perr.ErrNotAPDF, perr.ErrEncrypted,
// or a parse error wrapping the underlying cause.
func Open(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	head := data
	if len(head) > 261 {
		head = head[:261]
	}
	if !filetype.Is(head, "pdf") {
		return nil, perr.ErrNotAPDF
	}

	parser, err := core.NewParser(bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, core.ErrEncrypted) {
			return nil, perr.ErrEncrypted
		}
		return nil, fmt.Errorf("model: parsing %s: %w", path, err)
	}

	doc := &Document{parser: parser, objects: map[int]core.PdfObject{}, version: parser.PdfVersion()}
	for _, num := range parser.GetObjectNums() {
		obj, err := parser.LookupByNumber(num)
		if err != nil {
			return nil, fmt.Errorf("model: loading object %d: %w", num, err)
		}
		doc.objects[num] = obj
		if num > doc.nextNum {
			doc.nextNum = num
		}
	}

	if err := doc.loadPages(); err != nil {
		return nil, err
	}
	return doc, nil
}

// PageCount returns the number of leaf pages in the document.
func (d *Document) PageCount() int { return len(d.pages) }

// Page returns the i-th page (0-based), or perr.ErrPageRange if out of
// bounds.
func (d *Document) Page(i int) (*Page, error) {
	if i < 0 || i >= len(d.pages) {
		return nil, perr.ErrPageRange
	}
	return d.pages[i], nil
}

// Pages returns every page in document order.
func (d *Document) Pages() []*Page { return d.pages }

// allocObjNum reserves and returns a fresh top-level object number.
func (d *Document) allocObjNum() int {
	d.nextNum++
	return d.nextNum
}

// resolveRef follows obj (a reference, an indirect-object wrapper, or an
// already-direct value) to its direct content and the object number that
// owns it (0 if obj was never indirect). A dangling reference resolves
// to PdfObjectNull rather than failing, matching the teacher's tolerant
// parsing posture; callers that need the object to exist check the type
// assertion on the return value.
func (d *Document) resolveRef(obj core.PdfObject) (int, core.PdfObject) {
	ref, isRef := obj.(*core.PdfObjectReference)
	if !isRef {
		return 0, core.TraceToDirectObject(obj)
	}
	num := int(ref.ObjectNumber)
	top, ok := d.objects[num]
	if !ok {
		return num, core.MakeNull()
	}
	return num, core.TraceToDirectObject(top)
}

// resolveDirect is resolveRef without the owning object number, for
// callers that only need the value.
func (d *Document) resolveDirect(obj core.PdfObject) core.PdfObject {
	_, direct := d.resolveRef(obj)
	return direct
}

func (d *Document) loadPages() error {
	trailer := d.parser.GetTrailer()
	_, rootObj := d.resolveRef(trailer.Get("Root"))
	rootDict, ok := rootObj.(*core.PdfObjectDictionary)
	if !ok {
		return errors.New("model: trailer /Root is not a dictionary")
	}

	pagesNum, pagesObj := d.resolveRef(rootDict.Get("Pages"))
	pagesDict, ok := pagesObj.(*core.PdfObjectDictionary)
	if !ok {
		return errors.New("model: catalog /Pages is not a dictionary")
	}

	var walk func(num int, dict *core.PdfObjectDictionary, depth int) error
	walk = func(num int, dict *core.PdfObjectDictionary, depth int) error {
		if depth > 64 {
			return errors.New("model: page tree nests too deep (possible cycle)")
		}
		kidsObj := d.resolveDirect(dict.Get("Kids"))
		kids, isKids := kidsObj.(*core.PdfObjectArray)
		if !isKids {
			d.pages = append(d.pages, &Page{doc: d, Index: len(d.pages), objNum: num, dict: dict})
			return nil
		}
		for _, kid := range kids.Elements() {
			kNum, kObj := d.resolveRef(kid)
			kDict, ok := kObj.(*core.PdfObjectDictionary)
			if !ok {
				continue
			}
			if err := walk(kNum, kDict, depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(pagesNum, pagesDict, 0)
}

// Save serializes the document's object arena to path as a fresh PDF
// file: header, every object body in ascending object-number order, a
// classic cross-reference table, and a trailer naming the original
// /Root. Objects mutated in place by SetContent/WriteToUnicode/
// WriteWidths/WriteFontProgram (or newly allocated by them) are written
// with their current contents; nothing is written incrementally.
func (d *Document) Save(path string) error {
	nums := make([]int, 0, len(d.objects))
	for n := range d.objects {
		nums = append(nums, n)
	}
	sort.Ints(nums)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%%PDF-%d.%d\n", d.version.Major, d.version.Minor)
	buf.WriteString("%\xe2\xe3\xcf\xd3\n")

	offsets := make(map[int]int64, len(nums))
	maxNum := 0
	for _, num := range nums {
		if num > maxNum {
			maxNum = num
		}
		offsets[num] = int64(buf.Len())
		writeObjectBody(&buf, num, d.objects[num])
	}

	xrefOffset := int64(buf.Len())
	fmt.Fprintf(&buf, "xref\n0 %d\n", maxNum+1)
	buf.WriteString("0000000000 65535 f \n")
	for num := 1; num <= maxNum; num++ {
		off, ok := offsets[num]
		if !ok {
			buf.WriteString("0000000000 00000 f \n")
			continue
		}
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}

	trailer := core.MakeDict()
	trailer.Set("Size", core.MakeInteger(int64(maxNum+1)))
	trailer.Set("Root", d.parser.GetTrailer().Get("Root"))
	buf.WriteString("trailer\n")
	buf.WriteString(trailer.WriteString())
	fmt.Fprintf(&buf, "\nstartxref\n%d\n%%%%EOF\n", xrefOffset)

	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// writeObjectBody appends "N G obj ... endobj" for a single top-level
// object, using num as the written object number regardless of what the
// object's own ObjectNumber field says (so a freshly allocated object
// whose field was never stamped still writes under its arena key).
func writeObjectBody(buf *bytes.Buffer, num int, obj core.PdfObject) {
	switch t := obj.(type) {
	case *core.PdfObjectStream:
		fmt.Fprintf(buf, "%d 0 obj\n", num)
		buf.WriteString(t.PdfObjectDictionary.WriteString())
		buf.WriteString("\nstream\n")
		buf.Write(t.Stream)
		buf.WriteString("\nendstream\nendobj\n")
	case *core.PdfIndirectObject:
		fmt.Fprintf(buf, "%d 0 obj\n", num)
		buf.WriteString(t.PdfObject.WriteString())
		buf.WriteString("\nendobj\n")
	default:
		fmt.Fprintf(buf, "%d 0 obj\n", num)
		buf.WriteString(obj.WriteString())
		buf.WriteString("\nendobj\n")
	}
}
