/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

// Package cmap implements the ToUnicode CMap codec: parsing the
// textual bfchar/bfrange form into a byte→scalar mapping, serializing
// a mapping back into that form, and a default-encoding synthesizer
// for fonts that declare a standard single-byte encoding but carry no
// ToUnicode stream.
//
// Scope is narrowed from a general CMap implementation (as found in
// the teacher, github.com/unidoc/unipdf) to the single-byte case this
// module's target fonts always use: no codespace ranges other than
// <00>-<FF>, no CID ranges, no predefined CJK CMaps, no usecmap
// inheritance.
package cmap

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/herryqg/pdf-parser/common"
	"github.com/herryqg/pdf-parser/internal/textencoding"
)

// CMap is a byte<->Unicode scalar mapping for a single-byte-encoded
// simple font, as used by a PDF's /ToUnicode CMap stream.
type CMap struct {
	codeToUnicode map[byte]rune
	unicodeToCode map[rune]byte
	inverseStale  bool
}

// New returns an empty CMap.
func New() *CMap {
	return &CMap{codeToUnicode: map[byte]rune{}, unicodeToCode: map[rune]byte{}}
}

// Set inserts (or overwrites) the code -> rune mapping.
func (cm *CMap) Set(code byte, r rune) {
	cm.codeToUnicode[code] = r
	cm.inverseStale = true
}

// Decode returns the rune mapped to code, and whether one exists.
func (cm *CMap) Decode(code byte) (rune, bool) {
	r, ok := cm.codeToUnicode[code]
	return r, ok
}

// DecodeByte returns the rune mapped to code, or MissingCodeRune if
// code is unmapped. The content-stream tokenizer does not call it: it
// substitutes its own contentstream.MissingCodeRune ('?').
func (cm *CMap) DecodeByte(code byte) rune {
	if r, ok := cm.codeToUnicode[code]; ok {
		return r
	}
	return MissingCodeRune
}

// Encode returns the code mapped to r, and whether one exists. When
// two codes map to the same rune, the lowest code wins — computed on
// demand by ComputeInverse, deterministic regardless of map
// iteration order.
func (cm *CMap) Encode(r rune) (byte, bool) {
	if cm.inverseStale {
		cm.ComputeInverse()
	}
	code, ok := cm.unicodeToCode[r]
	return code, ok
}

// ComputeInverse (re)builds the rune->code inverse mapping. If two
// codes map to the same rune, the lowest code wins, for determinism.
func (cm *CMap) ComputeInverse() {
	cm.unicodeToCode = make(map[rune]byte, len(cm.codeToUnicode))
	codes := make([]int, 0, len(cm.codeToUnicode))
	for c := range cm.codeToUnicode {
		codes = append(codes, int(c))
	}
	sort.Sort(sort.Reverse(sort.IntSlice(codes)))
	for _, c := range codes {
		cm.unicodeToCode[cm.codeToUnicode[byte(c)]] = byte(c)
	}
	cm.inverseStale = false
}

// Codes returns the CMap's defined byte codes in ascending order.
func (cm *CMap) Codes() []byte {
	codes := make([]byte, 0, len(cm.codeToUnicode))
	for c := range cm.codeToUnicode {
		codes = append(codes, c)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}

// Len returns the number of code -> rune entries.
func (cm *CMap) Len() int { return len(cm.codeToUnicode) }

// DecodeBytes decodes data byte-by-byte, substituting MissingCodeRune
// ('?' is not used — that's the tokenizer's separate concern for
// undecodable content, this is the CMap's own contract) for any
// unmapped byte.
func (cm *CMap) DecodeBytes(data []byte) string {
	runes := make([]rune, len(data))
	for i, b := range data {
		runes[i] = cm.DecodeByte(b)
	}
	return string(runes)
}

var (
	reBfcharBlock  = regexp.MustCompile(`(?s)beginbfchar(.*?)endbfchar`)
	reBfrangeBlock = regexp.MustCompile(`(?s)beginbfrange(.*?)endbfrange`)
	reBfcharLine   = regexp.MustCompile(`<([0-9A-Fa-f]+)>\s*<([0-9A-Fa-f]+)>`)
	reBfrangeLine  = regexp.MustCompile(`<([0-9A-Fa-f]+)>\s*<([0-9A-Fa-f]+)>\s*<([0-9A-Fa-f]+)>`)
)

// Parse reads the textual form of a ToUnicode CMap (the decoded stream
// bytes) and returns the resulting byte->scalar mapping. Per spec, this
// never fails: malformed or unrecognized lines are silently dropped,
// and a block-count prefix that disagrees with the actual number of
// entries is not checked.
func Parse(data []byte) *CMap {
	cm := New()
	text := string(data)

	for _, m := range reBfcharBlock.FindAllStringSubmatch(text, -1) {
		for _, line := range reBfcharLine.FindAllStringSubmatch(m[1], -1) {
			code, ok := parseCode(line[1])
			if !ok {
				continue
			}
			r, ok := parseScalar(line[2])
			if !ok {
				continue
			}
			cm.Set(code, r)
		}
	}

	for _, m := range reBfrangeBlock.FindAllStringSubmatch(text, -1) {
		for _, line := range reBfrangeLine.FindAllStringSubmatch(m[1], -1) {
			lo, ok := parseCode(line[1])
			if !ok {
				continue
			}
			hi, ok := parseCode(line[2])
			if !ok || hi < lo {
				continue
			}
			base, ok := parseScalar(line[3])
			if !ok {
				continue
			}
			for i := 0; int(lo)+i <= int(hi); i++ {
				cm.Set(lo+byte(i), base+rune(i))
			}
		}
	}

	cm.ComputeInverse()
	return cm
}

// parseCode parses a hex byte code, skipping (per spec) any code whose
// first byte would exceed 0xFF — i.e. any hex string longer than 2
// digits once normalized.
func parseCode(hexStr string) (byte, bool) {
	if len(hexStr) > 2 {
		return 0, false
	}
	v, err := strconv.ParseUint(hexStr, 16, 8)
	if err != nil {
		return 0, false
	}
	return byte(v), true
}

// parseScalar parses a <UUUU>-style hex code point. Values are
// truncated to the first UTF-16 code unit; surrogate-pair targets
// (rare in practice for these single-byte fonts) are not combined.
func parseScalar(hexStr string) (rune, bool) {
	if len(hexStr) > 4 {
		hexStr = hexStr[:4]
	}
	v, err := strconv.ParseUint(hexStr, 16, 32)
	if err != nil {
		common.Log.Debug("cmap: unparsable scalar %q, dropping entry", hexStr)
		return 0, false
	}
	return rune(v), true
}

// charRange is a run of consecutive codes mapping to consecutive scalars.
type charRange struct {
	lo, hi byte
	base   rune
}

// Serialize emits a well-formed ToUnicode CMap: CIDInit/ProcSet
// preamble, CIDSystemInfo, CMapName /Adobe-Identity-UCS, CMapType 2, a
// single codespacerange <00> <FF>, every entry in ascending code order
// as bfchar lines grouped into blocks of at most maxBfEntries (100)
// entries each (a CMap with more than 100 entries is written as several
// bfchar blocks), and the defineresource/pop/end/end tail.
func (cm *CMap) Serialize() []byte {
	codes := cm.Codes()

	var ranges []charRange
	for _, c := range codes {
		r := cm.codeToUnicode[c]
		if n := len(ranges); n > 0 {
			last := &ranges[n-1]
			if c == last.hi+1 && r == last.base+rune(c-last.lo) {
				last.hi = c
				continue
			}
		}
		ranges = append(ranges, charRange{lo: c, hi: c, base: r})
	}

	var lines []string
	lines = append(lines,
		"/CIDInit /ProcSet findresource begin",
		"12 dict begin",
		"begincmap",
		"/CIDSystemInfo << /Registry (Adobe) /Ordering (UCS) /Supplement 0 >> def",
		"/CMapName /Adobe-Identity-UCS def",
		"/CMapType 2 def",
		"1 begincodespacerange",
		"<00> <FF>",
		"endcodespacerange",
	)

	if len(ranges) > 0 {
		chunks := chunkRanges(ranges, maxBfEntries)
		for _, chunk := range chunks {
			lines = append(lines, fmt.Sprintf("%d beginbfchar", entryCount(chunk)))
			for _, rg := range chunk {
				for c := rg.lo; ; c++ {
					lines = append(lines, fmt.Sprintf("<%02x> <%04x>", c, rg.base+rune(c-rg.lo)))
					if c == rg.hi {
						break
					}
				}
			}
			lines = append(lines, "endbfchar")
		}
	}

	lines = append(lines,
		"endcmap",
		"CMapName currentdict /CMap defineresource pop",
		"end",
		"end",
	)

	return []byte(strings.Join(lines, "\n") + "\n")
}

func entryCount(ranges []charRange) int {
	n := 0
	for _, rg := range ranges {
		n += int(rg.hi) - int(rg.lo) + 1
	}
	return n
}

// chunkRanges groups ranges into blocks of at most maxEntries total
// bfchar lines, splitting a range across blocks if needed.
func chunkRanges(ranges []charRange, maxEntries int) [][]charRange {
	var chunks [][]charRange
	var cur []charRange
	curCount := 0
	for _, rg := range ranges {
		for rg.lo <= rg.hi {
			room := maxEntries - curCount
			if room <= 0 {
				chunks = append(chunks, cur)
				cur = nil
				curCount = 0
				room = maxEntries
			}
			span := int(rg.hi) - int(rg.lo) + 1
			if span > room {
				cur = append(cur, charRange{lo: rg.lo, hi: rg.lo + byte(room-1), base: rg.base})
				rg.base += rune(room)
				rg.lo += byte(room)
				curCount += room
				continue
			}
			cur = append(cur, rg)
			curCount += span
			break
		}
	}
	if len(cur) > 0 {
		chunks = append(chunks, cur)
	}
	return chunks
}

// DefaultWinAnsi synthesizes the fallback CMap for a font that
// declares the standard /WinAnsiEncoding base encoding but carries no
// ToUnicode stream: the natural 32..126 printable ASCII subset.
func DefaultWinAnsi() *CMap {
	cm := New()
	winAnsi := textencoding.WinAnsiEncoding()
	for code := byte(32); code <= 126; code++ {
		if r, ok := winAnsi.CharcodeToRune(textencoding.CharCode(code)); ok {
			cm.Set(code, r)
		}
	}
	cm.ComputeInverse()
	return cm
}
