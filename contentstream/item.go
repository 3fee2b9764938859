/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

// Package contentstream tokenizes a PDF page content stream into a
// sequence of passthrough byte spans and salient text-positioning
// operators (Tf, Tm, Tj, TJ), and re-serializes that sequence back to
// bytes. It is deliberately not a general content-stream operator
// parser or renderer (compare github.com/unidoc/unipdf/v3/contentstream,
// which tracks the full graphics state, colorspaces and inline images
// for rendering purposes) — it exposes just enough structure to let the
// Replacer locate, decode and rewrite text runs while reproducing
// everything else byte-for-byte.
package contentstream

// Kind distinguishes the items a Tokenize pass yields.
type Kind int

const (
	// Passthrough is a verbatim span of bytes copied unchanged to output.
	Passthrough Kind = iota
	// FontSelect is a `/Alias size Tf` operator.
	FontSelect
	// TextMatrix is a `a b c d e f Tm` operator.
	TextMatrix
	// TextShow is a `(...) Tj` or `[...] TJ` operator.
	TextShow
)

// Item is one unit of a tokenized content stream.
type Item struct {
	Kind Kind

	// Raw holds the exact source bytes for this item. For Passthrough,
	// FontSelect and TextMatrix items it is always what gets written back
	// out. For TextShow items it is what gets written back out only when
	// Run is untouched; once Run is rewritten, Render regenerates the
	// operator bytes from Run instead.
	Raw []byte

	// FontAlias is populated for FontSelect items: the resource name
	// following the leading '/', e.g. "F1".
	FontAlias string
	// FontSize is the Tf operator's second operand.
	FontSize float64

	// Run is populated for TextShow items.
	Run *TextRun
}

// TextRun is a single text-showing operator's decoded payload: the font
// in scope at the instant it was tokenized, the raw byte codes it shows
// and their decoding under that font's CMap, and (initially nil) the
// replacement codes once the Replacer has committed a rewrite.
type TextRun struct {
	// Font is the alias of the current-font cursor at the time this
	// operator was tokenized.
	Font string
	// Operator is "Tj" or "TJ", the operator this run came from.
	Operator string
	// Codes is the run's raw font byte codes, after PDF literal-string
	// unescaping and after concatenating every string element of a TJ
	// array (numeric adjustments contribute no bytes).
	Codes []byte
	// Text is Codes decoded through the font's CMap, byte-by-byte.
	Text string

	newCodes []byte
}

// Rewritten reports whether the Replacer has committed new codes for
// this run.
func (r *TextRun) Rewritten() bool {
	return r.newCodes != nil
}

// Rewrite commits new font byte codes for this run, replacing Text and
// Codes as the source of truth for output. An empty, non-nil slice is
// a valid rewrite (replacement with the empty string).
func (r *TextRun) Rewrite(codes []byte) {
	if codes == nil {
		codes = []byte{}
	}
	r.newCodes = codes
}

// EncodedCodes returns the codes that should be written out for this
// run: the rewritten codes if Rewrite was called, else the original.
func (r *TextRun) EncodedCodes() []byte {
	if r.newCodes != nil {
		return r.newCodes
	}
	return r.Codes
}
