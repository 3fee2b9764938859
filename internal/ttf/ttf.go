/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

// Package ttf reads just enough of a TrueType font program to answer
// the Replacer's one question (spec.md §4.5.6): given a Unicode
// scalar, what is the glyph's native advance width? It is narrowed
// from model/internal/fonts/ttfparser.go's general TtfType (which also
// parses name/OS2/post tables for encoding and subsetting purposes
// unipdf needs and this package does not) down to head, hhea, maxp,
// hmtx and the cmap (3,1) Windows-Unicode subtable.
package ttf

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Font is the subset of a parsed TrueType program this package exposes.
type Font struct {
	// UnitsPerEm is the font's design grid resolution (head table);
	// native advance widths are expressed in this unit.
	UnitsPerEm uint16
	// Widths holds each glyph's advance width (hmtx table), indexed by
	// glyph id.
	Widths []uint16
	// Chars maps a Unicode scalar to its glyph id (cmap (3,1) subtable).
	Chars map[rune]uint16
}

// AdvanceWidth returns the native advance width of r's glyph, and
// whether the font has one.
func (f *Font) AdvanceWidth(r rune) (uint16, bool) {
	gid, ok := f.Chars[r]
	if !ok || int(gid) >= len(f.Widths) {
		return 0, false
	}
	return f.Widths[gid], true
}

type parser struct {
	r                io.ReadSeeker
	tables           map[string]uint32
	numberOfHMetrics uint16
	numGlyphs        uint16
	font             Font
}

// Parse reads a TrueType font program (the raw bytes of a /FontFile2
// stream, already decoded) and returns its metrics and cmap.
func Parse(r io.ReadSeeker) (*Font, error) {
	p := &parser{r: r}
	version, err := p.readStr(4)
	if err != nil {
		return nil, err
	}
	if version != "\x00\x01\x00\x00" && version != "true" {
		return nil, fmt.Errorf("ttf: unrecognized font version %q", version)
	}

	numTables := int(p.readUShort())
	p.skip(3 * 2)
	p.tables = make(map[string]uint32, numTables)
	for i := 0; i < numTables; i++ {
		tag, err := p.readStr(4)
		if err != nil {
			return nil, err
		}
		p.skip(4)
		offset := p.readULong()
		p.skip(4)
		p.tables[tag] = offset
	}

	if err := p.parseHead(); err != nil {
		return nil, err
	}
	if err := p.parseHhea(); err != nil {
		return nil, err
	}
	if err := p.parseMaxp(); err != nil {
		return nil, err
	}
	if err := p.parseHmtx(); err != nil {
		return nil, err
	}
	if _, ok := p.tables["cmap"]; ok {
		if err := p.parseCmap(); err != nil {
			return nil, err
		}
	}
	return &p.font, nil
}

func (p *parser) seek(tag string) error {
	off, ok := p.tables[tag]
	if !ok {
		return fmt.Errorf("ttf: table not found: %s", tag)
	}
	_, err := p.r.Seek(int64(off), io.SeekStart)
	return err
}

func (p *parser) skip(n int) { p.r.Seek(int64(n), io.SeekCurrent) }

func (p *parser) readStr(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(p.r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func (p *parser) readUShort() uint16 {
	var v uint16
	binary.Read(p.r, binary.BigEndian, &v)
	return v
}

func (p *parser) readShort() int16 {
	var v int16
	binary.Read(p.r, binary.BigEndian, &v)
	return v
}

func (p *parser) readULong() uint32 {
	var v uint32
	binary.Read(p.r, binary.BigEndian, &v)
	return v
}

func (p *parser) parseHead() error {
	if err := p.seek("head"); err != nil {
		return err
	}
	p.skip(3*4 + 4) // version, revision, checksum adjustment, magic number
	p.skip(2)       // flags
	p.font.UnitsPerEm = p.readUShort()
	return nil
}

func (p *parser) parseHhea() error {
	if err := p.seek("hhea"); err != nil {
		return err
	}
	p.skip(4 + 15*2)
	p.numberOfHMetrics = p.readUShort()
	return nil
}

func (p *parser) parseMaxp() error {
	if err := p.seek("maxp"); err != nil {
		return err
	}
	p.skip(4)
	p.numGlyphs = p.readUShort()
	return nil
}

func (p *parser) parseHmtx() error {
	if err := p.seek("hmtx"); err != nil {
		return err
	}
	p.font.Widths = make([]uint16, 0, p.numGlyphs)
	for j := uint16(0); j < p.numberOfHMetrics; j++ {
		p.font.Widths = append(p.font.Widths, p.readUShort())
		p.skip(2) // lsb
	}
	if p.numberOfHMetrics > 0 {
		last := p.font.Widths[p.numberOfHMetrics-1]
		for j := p.numberOfHMetrics; j < p.numGlyphs; j++ {
			p.font.Widths = append(p.font.Widths, last)
		}
	}
	return nil
}

// parseCmap reads only the (3,1) Windows-Unicode subtable, format 4 —
// the encoding every font this module targets (single-byte TrueType
// simple fonts with a WinAnsi-range repertoire) actually carries.
func (p *parser) parseCmap() error {
	if err := p.seek("cmap"); err != nil {
		return err
	}
	p.readUShort() // version
	numTables := int(p.readUShort())
	var offset31 int64
	for i := 0; i < numTables; i++ {
		platformID := p.readUShort()
		encodingID := p.readUShort()
		off := int64(p.readULong())
		if platformID == 3 && encodingID == 1 {
			offset31 = off
		}
	}
	if offset31 == 0 {
		return nil
	}

	p.r.Seek(int64(p.tables["cmap"])+offset31, io.SeekStart)
	format := p.readUShort()
	if format != 4 {
		return nil
	}
	p.skip(2 * 2) // length, language
	segCount := int(p.readUShort() / 2)
	p.skip(3 * 2) // searchRange, entrySelector, rangeShift

	endCount := make([]uint16, segCount)
	for i := range endCount {
		endCount[i] = p.readUShort()
	}
	p.skip(2) // reservedPad
	startCount := make([]uint16, segCount)
	for i := range startCount {
		startCount[i] = p.readUShort()
	}
	idDelta := make([]int16, segCount)
	for i := range idDelta {
		idDelta[i] = p.readShort()
	}
	rangeOffsetPos, _ := p.r.Seek(0, io.SeekCurrent)
	idRangeOffset := make([]uint16, segCount)
	for i := range idRangeOffset {
		idRangeOffset[i] = p.readUShort()
	}

	p.font.Chars = make(map[rune]uint16)
	for i := 0; i < segCount; i++ {
		c1, c2, delta, ro := startCount[i], endCount[i], idDelta[i], idRangeOffset[i]
		for c := int(c1); c <= int(c2) && c != 0xFFFF; c++ {
			var gid int32
			if ro > 0 {
				p.r.Seek(rangeOffsetPos+2*int64(i)+int64(ro)+int64(c-int(c1))*2, io.SeekStart)
				gid = int32(p.readUShort())
				if gid != 0 {
					gid += int32(delta)
				}
			} else {
				gid = int32(c) + int32(delta)
			}
			if gid >= 65536 {
				gid -= 65536
			}
			if gid > 0 {
				p.font.Chars[rune(c)] = uint16(gid)
			}
		}
	}
	return nil
}
