/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

// Package textencoding supplies the single-byte base encoding table
// (WinAnsi) used as the fallback mapping for simple TrueType fonts that
// declare /WinAnsiEncoding but carry no ToUnicode CMap. Replacement
// always decodes through a font's CMap (internal/cmap); this package
// only feeds that CMap's default synthesizer, and is otherwise unused
// once a font has an explicit ToUnicode stream.
package textencoding

import "github.com/herryqg/pdf-parser/common"

// CharCode is a single-byte character code. Composite (multi-byte CID)
// fonts are out of scope for this module, so unlike the teacher's
// CharCode this one never needs to hold more than a byte's worth of
// value.
type CharCode byte

// MissingCodeRune is substituted for a byte with no entry in a base
// encoding table.
const MissingCodeRune = '�'

// TextEncoder maps between single bytes and Unicode code points for a
// font's base encoding.
type TextEncoder interface {
	String() string
	CharcodeToRune(code CharCode) (rune, bool)
	RuneToCharcode(r rune) (CharCode, bool)
}

// encodeString8bit converts a Unicode string to bytes using enc,
// dropping any rune with no charcode (the teacher's own convention in
// core/stream.go-adjacent encoders: skip and log, don't fail the whole
// string).
func encodeString8bit(enc TextEncoder, raw string) []byte {
	encoded := make([]byte, 0, len(raw))
	for _, r := range raw {
		code, found := enc.RuneToCharcode(r)
		if !found {
			common.Log.Debug("textencoding: no charcode for rune %+q in %s", r, enc)
			continue
		}
		encoded = append(encoded, byte(code))
	}
	return encoded
}

// decodeString8bit converts bytes to a Unicode string using enc.
// Unmapped bytes become MissingCodeRune.
func decodeString8bit(enc TextEncoder, raw []byte) string {
	runes := make([]rune, 0, len(raw))
	for _, b := range raw {
		r, ok := enc.CharcodeToRune(CharCode(b))
		if !ok {
			r = MissingCodeRune
		}
		runes = append(runes, r)
	}
	return string(runes)
}
