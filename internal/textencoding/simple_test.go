/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package textencoding

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWinAnsiEncodingASCIIRoundTrip(t *testing.T) {
	enc := WinAnsiEncoding()
	for b := byte(0x20); b < 0x7f; b++ {
		r, ok := enc.CharcodeToRune(CharCode(b))
		require.True(t, ok)
		require.Equal(t, rune(b), r)

		code, ok := enc.RuneToCharcode(r)
		require.True(t, ok)
		require.Equal(t, CharCode(b), code)
	}
}

func TestWinAnsiEncodingIsSingleton(t *testing.T) {
	require.Same(t, WinAnsiEncoding(), WinAnsiEncoding())
}

func TestDecodeString8bitUsesMissingCodeRuneForUnassignedByte(t *testing.T) {
	enc := newSimpleEncoding("partial", map[byte]rune{'A': 'A'})
	require.Equal(t, "A"+string(MissingCodeRune), decodeString8bit(enc, []byte{'A', 0x81}))
}

func TestEncodeString8bitSkipsUnmappedRunes(t *testing.T) {
	enc := newSimpleEncoding("partial", map[byte]rune{'A': 'A'})
	require.Equal(t, []byte{'A'}, encodeString8bit(enc, "Aé"))
}
