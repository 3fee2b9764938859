/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package model

import (
	"bytes"

	"github.com/herryqg/pdf-parser/core"
	"github.com/herryqg/pdf-parser/perr"
)

// Page is a handle into a Document's object arena: an index, the page
// dictionary itself, and enough of the ancestor chain to resolve
// inherited attributes. Grounded on model/page.go's GetMediaBox/
// getParentResources walk-the-Parent-chain idiom, narrowed to the two
// attributes this module reads (Resources, Contents — spec.md §4.1
// explicitly calls out Contents inheritance, which real-world PDFs
// rarely use but the contract requires honouring).
type Page struct {
	doc    *Document
	Index  int
	objNum int
	dict   *core.PdfObjectDictionary

	contentCache []byte
	contentValid bool
}

// inherited looks up key on the page's own dictionary, then walks up
// /Parent links until a value is found or the chain ends.
func (p *Page) inherited(key core.PdfObjectName) core.PdfObject {
	dict := p.dict
	for depth := 0; depth < 64 && dict != nil; depth++ {
		if v := dict.Get(key); v != nil {
			return p.doc.resolveDirect(v)
		}
		parentObj := dict.Get("Parent")
		if parentObj == nil {
			return nil
		}
		next, ok := p.doc.resolveDirect(parentObj).(*core.PdfObjectDictionary)
		if !ok {
			return nil
		}
		dict = next
	}
	return nil
}

// ContentBytes returns the page's content-stream bytes: a single
// stream's decoded contents, or the in-order concatenation of an array
// of streams with no separator inserted between them. Cached until
// SetContent invalidates it (spec.md §5's cache-invalidation contract).
func (p *Page) ContentBytes() ([]byte, error) {
	if p.contentValid {
		return p.contentCache, nil
	}

	contentObj := p.inherited("Contents")
	if contentObj == nil {
		return nil, perr.ErrNoContent
	}

	var buf bytes.Buffer
	switch t := contentObj.(type) {
	case *core.PdfObjectStream:
		data, err := core.DecodeStream(t)
		if err != nil {
			return nil, err
		}
		buf.Write(data)
	case *core.PdfObjectArray:
		found := false
		for _, el := range t.Elements() {
			stream, ok := p.doc.resolveDirect(el).(*core.PdfObjectStream)
			if !ok {
				continue
			}
			data, err := core.DecodeStream(stream)
			if err != nil {
				return nil, err
			}
			buf.Write(data)
			found = true
		}
		if !found {
			return nil, perr.ErrNoContent
		}
	default:
		return nil, perr.ErrNoContent
	}

	p.contentCache = buf.Bytes()
	p.contentValid = true
	return p.contentCache, nil
}

// SetContent replaces the page's content with a single freshly
// allocated stream object holding data, discarding whatever previously
// occupied /Contents (one stream or several). Invalidates the cached
// decoded bytes.
func (p *Page) SetContent(data []byte) error {
	stream, err := core.MakeStream(data, core.NewFlateEncoder())
	if err != nil {
		return err
	}
	num := p.doc.allocObjNum()
	stream.ObjectNumber = int64(num)
	p.doc.objects[num] = stream

	p.dict.Set("Contents", &core.PdfObjectReference{ObjectNumber: int64(num)})
	p.contentValid = false
	return nil
}

// Fonts returns the page's single-byte TrueType simple fonts, keyed by
// their resource alias (e.g. "TT0"). Composite (Type0/CID-keyed) and
// other simple-font subtypes are silently filtered out, per spec.md
// §4.1's "only single-byte TrueType fonts are exposed" contract —
// callers must not assume every resource-dictionary entry appears here.
func (p *Page) Fonts() map[string]*Font {
	resDict, ok := p.inherited("Resources").(*core.PdfObjectDictionary)
	if !ok {
		return nil
	}
	fontDict, ok := p.doc.resolveDirect(resDict.Get("Font")).(*core.PdfObjectDictionary)
	if !ok {
		return nil
	}

	out := map[string]*Font{}
	for _, alias := range fontDict.Keys() {
		num, direct := p.doc.resolveRef(fontDict.Get(alias))
		dict, ok := direct.(*core.PdfObjectDictionary)
		if !ok {
			continue
		}
		if subtype, _ := core.GetNameVal(dict.Get("Subtype")); subtype != "TrueType" {
			continue
		}
		out[string(alias)] = &Font{doc: p.doc, Alias: string(alias), objNum: num, Dict: dict}
	}
	return out
}

// OtherFontDifferences returns the union of byte codes claimed by the
// /Encoding /Differences array of every font on the page other than
// except — the constraint §4.5.4's code-allocation policy names as
// rule 2 ("not in the domain of any other font's differences-array
// encoding on the same page").
func (p *Page) OtherFontDifferences(except string) map[byte]bool {
	claimed := map[byte]bool{}
	for alias, f := range p.Fonts() {
		if alias == except {
			continue
		}
		for code := range f.DifferenceCodes() {
			claimed[code] = true
		}
	}
	return claimed
}
