/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package textencoding

import (
	"fmt"
	"sort"
	"sync"

	"golang.org/x/text/encoding/charmap"
)

// simpleEncoding is a fixed byte<->rune table for an 8-bit base
// encoding, in the shape of the teacher's own simpleEncoding (same
// name/decode/encode fields), trimmed of the glyph-name/Differences
// machinery this module's single-byte-CMap-only decoding never needs.
type simpleEncoding struct {
	baseName string
	decode   map[byte]rune
	encode   map[rune]byte
}

func newSimpleEncoding(name string, decode map[byte]rune) *simpleEncoding {
	enc := &simpleEncoding{baseName: name, decode: decode, encode: make(map[rune]byte, len(decode))}
	// If more than one charcode maps to the same rune, the lower
	// charcode always wins in the reverse map, for determinism.
	codes := make([]int, 0, len(decode))
	for b := range decode {
		codes = append(codes, int(b))
	}
	sort.Sort(sort.Reverse(sort.IntSlice(codes)))
	for _, c := range codes {
		enc.encode[decode[byte(c)]] = byte(c)
	}
	return enc
}

func (enc *simpleEncoding) String() string {
	return fmt.Sprintf("simpleEncoding(%s)", enc.baseName)
}

func (enc *simpleEncoding) BaseName() string { return enc.baseName }

func (enc *simpleEncoding) CharcodeToRune(code CharCode) (rune, bool) {
	r, ok := enc.decode[byte(code)]
	return r, ok
}

func (enc *simpleEncoding) RuneToCharcode(r rune) (CharCode, bool) {
	b, ok := enc.encode[r]
	return CharCode(b), ok
}

// Charcodes returns the encoding's defined byte codes in ascending order.
func (enc *simpleEncoding) Charcodes() []CharCode {
	codes := make([]CharCode, 0, len(enc.decode))
	for b := range enc.decode {
		codes = append(codes, CharCode(b))
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}

var winAnsiOnce sync.Once
var winAnsiEncoding *simpleEncoding

// WinAnsiEncoding returns the byte<->rune table for the standard
// /WinAnsiEncoding base encoding (Windows-1252), used by the CMap
// codec's default synthesizer when a font declares WinAnsi but carries
// no ToUnicode stream.
func WinAnsiEncoding() *simpleEncoding {
	winAnsiOnce.Do(func() {
		decode := make(map[byte]rune, 256)
		for b := 0; b < 256; b++ {
			r := charmap.Windows1252.DecodeByte(byte(b))
			if r == 0 && b != 0 {
				continue // unassigned code point in Windows-1252
			}
			decode[byte(b)] = r
		}
		winAnsiEncoding = newSimpleEncoding("WinAnsiEncoding", decode)
	})
	return winAnsiEncoding
}
