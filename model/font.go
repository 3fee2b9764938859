/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package model

import (
	"github.com/herryqg/pdf-parser/core"
	"github.com/herryqg/pdf-parser/internal/cmap"
	"github.com/herryqg/pdf-parser/perr"
)

// Font is a handle to one font object referenced from a page's resource
// dictionary: the alias it is known by on that page, and the font
// dictionary itself. Field names (FirstChar/Widths/Encoding) are kept
// from model/font_simple.go's pdfFontSimple, but the struct holds the
// raw dictionary rather than decoded Go fields — this module never
// needs a general Encoder/GetCharMetrics surface, only the handful of
// reads and targeted rewrites the Replacer performs.
type Font struct {
	doc    *Document
	Alias  string
	objNum int
	Dict   *core.PdfObjectDictionary
}

// BaseFont returns the font's /BaseFont name.
func (f *Font) BaseFont() string {
	name, _ := core.GetNameVal(core.TraceToDirectObject(f.Dict.Get("BaseFont")))
	return name
}

// SetBaseFont rewrites /BaseFont (and the descriptor's /FontName, if a
// descriptor is present) — used after subsetting to reflect the
// embedded program's new subset tag.
func (f *Font) SetBaseFont(name string) {
	f.Dict.Set("BaseFont", core.MakeName(name))
	if fd := f.doc.fontDescriptor(f); fd != nil {
		fd.Set("FontName", core.MakeName(name))
	}
}

func (d *Document) fontDescriptor(f *Font) *core.PdfObjectDictionary {
	fd, _ := d.resolveDirect(f.Dict.Get("FontDescriptor")).(*core.PdfObjectDictionary)
	return fd
}

// DifferenceCodes returns the byte codes claimed by the font's
// /Encoding /Differences array, decoding the PDF 9.6.6 run-length form
// (an integer resets the running code, each following name advances it
// by one).
func (f *Font) DifferenceCodes() map[byte]bool {
	encObj := f.doc.resolveDirect(f.Dict.Get("Encoding"))
	encDict, ok := encObj.(*core.PdfObjectDictionary)
	if !ok {
		return nil
	}
	diffArr, ok := f.doc.resolveDirect(encDict.Get("Differences")).(*core.PdfObjectArray)
	if !ok {
		return nil
	}

	codes := map[byte]bool{}
	cur := 0
	for _, el := range diffArr.Elements() {
		switch v := core.TraceToDirectObject(el).(type) {
		case *core.PdfObjectInteger:
			cur = int(*v)
		case *core.PdfObjectName:
			if cur >= 0 && cur <= 255 {
				codes[byte(cur)] = true
			}
			cur++
		}
	}
	return codes
}

// ReadToUnicode returns the font's parsed ToUnicode CMap, or nil if it
// carries none.
func (d *Document) ReadToUnicode(f *Font) *cmap.CMap {
	tuObj := f.Dict.Get("ToUnicode")
	if tuObj == nil {
		return nil
	}
	stream, ok := d.resolveDirect(tuObj).(*core.PdfObjectStream)
	if !ok {
		return nil
	}
	data, err := core.DecodeStream(stream)
	if err != nil {
		return nil
	}
	return cmap.Parse(data)
}

// WriteToUnicode serializes cm and installs it as the font's /ToUnicode
// stream, always in a freshly allocated object; a ToUnicode object the
// font had before stays in the arena, no longer referenced by the font.
func (d *Document) WriteToUnicode(f *Font, cm *cmap.CMap) error {
	stream, err := core.MakeStream(cm.Serialize(), core.NewRawEncoder())
	if err != nil {
		return err
	}
	num := d.allocObjNum()
	stream.ObjectNumber = int64(num)
	d.objects[num] = stream
	f.Dict.Set("ToUnicode", &core.PdfObjectReference{ObjectNumber: int64(num)})
	return nil
}

// ReadWidths returns the font's /FirstChar and /Widths array (as
// float64s, indexed from FirstChar).
func (d *Document) ReadWidths(f *Font) (firstChar int, widths []float64) {
	if fc, ok := core.GetIntVal(core.TraceToDirectObject(f.Dict.Get("FirstChar"))); ok {
		firstChar = fc
	}
	arr, ok := d.resolveDirect(f.Dict.Get("Widths")).(*core.PdfObjectArray)
	if !ok {
		return firstChar, nil
	}
	widths, _ = arr.ToFloat64Array()
	return firstChar, widths
}

// WriteWidths installs a new /FirstChar and /Widths (and keeps /LastChar
// consistent, per 9.6.3's required triple).
func (d *Document) WriteWidths(f *Font, firstChar int, widths []float64) {
	f.Dict.Set("FirstChar", core.MakeInteger(int64(firstChar)))
	f.Dict.Set("LastChar", core.MakeInteger(int64(firstChar+len(widths)-1)))
	f.Dict.Set("Widths", core.MakeArrayFromFloats(widths))
}

// ReadFontProgram returns the font's embedded TrueType program bytes
// (/FontDescriptor /FontFile2), or perr.ErrFontPatchFailed if the font
// carries none.
func (d *Document) ReadFontProgram(f *Font) ([]byte, error) {
	fd := d.fontDescriptor(f)
	if fd == nil {
		return nil, perr.ErrFontPatchFailed
	}
	stream, ok := d.resolveDirect(fd.Get("FontFile2")).(*core.PdfObjectStream)
	if !ok {
		return nil, perr.ErrFontPatchFailed
	}
	return core.DecodeStream(stream)
}

// WriteFontProgram installs data as the font's embedded TrueType
// program, allocating a fresh /FontFile2 object and setting /Length1 to
// the program's uncompressed size as required by 9.8.1.
func (d *Document) WriteFontProgram(f *Font, data []byte) error {
	fd := d.fontDescriptor(f)
	if fd == nil {
		return perr.ErrFontPatchFailed
	}
	stream, err := core.MakeStream(data, core.NewFlateEncoder())
	if err != nil {
		return perr.ErrFontPatchFailed
	}
	stream.Set("Length1", core.MakeInteger(int64(len(data))))
	num := d.allocObjNum()
	stream.ObjectNumber = int64(num)
	d.objects[num] = stream
	fd.Set("FontFile2", &core.PdfObjectReference{ObjectNumber: int64(num)})
	return nil
}
