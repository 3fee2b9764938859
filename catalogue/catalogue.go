/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

// Package catalogue builds the Font Character Catalogue (spec.md §4.4):
// for every font alias in a document, the set of Unicode characters
// ever drawn with it, the byte codes observed for each character, the
// union of codes already in use, and the font's own CMap. The Replacer
// consumes this document-wide picture to decide, per match, whether a
// replacement character can reuse an existing code, be borrowed from
// the font's CMap, or must be freshly allocated.
//
// Grounded on model/font.go's rune/charcode bookkeeping idiom
// (BytesToCharcodes/CharcodesToUnicode), applied here document-wide
// over contentstream.Tokenize's decoded TextRuns rather than the
// teacher's per-draw-call GetCharMetrics path.
package catalogue

import (
	"errors"

	"github.com/herryqg/pdf-parser/contentstream"
	"github.com/herryqg/pdf-parser/internal/cmap"
	"github.com/herryqg/pdf-parser/model"
	"github.com/herryqg/pdf-parser/perr"
)

// UsageCatalogue is the aggregated, document-wide picture of font
// usage. All maps are keyed by font alias (spec.md §4.4); a font alias
// absent from a given map simply has no recorded usage.
type UsageCatalogue struct {
	// CharactersInFont is the domain of CodesForCharacter: every
	// scalar that has ever been drawn with this font alias.
	CharactersInFont map[string]map[rune]bool
	// CodesForCharacter maps each observed character to every byte
	// code it has been drawn with (a font may legally use more than
	// one code for the same character).
	CodesForCharacter map[string]map[rune]map[byte]bool
	// CodesInUse is the union of CodesForCharacter's values — every
	// byte code already occupied for this font alias, document-wide.
	CodesInUse map[string]map[byte]bool
	// CMaps holds each alias's ToUnicode CMap (or the synthesized
	// WinAnsi default, if the font declares none) as of catalogue
	// build time.
	CMaps map[string]*cmap.CMap
}

// New returns an empty catalogue.
func New() *UsageCatalogue {
	return &UsageCatalogue{
		CharactersInFont:  map[string]map[rune]bool{},
		CodesForCharacter: map[string]map[rune]map[byte]bool{},
		CodesInUse:        map[string]map[byte]bool{},
		CMaps:             map[string]*cmap.CMap{},
	}
}

// Build walks every page of doc once, tokenizing its content stream and
// recording every salient show operator whose current font resolves to
// an in-scope (single-byte TrueType) font. Per spec.md §5, this is
// always a from-scratch rebuild — the catalogue is never incrementally
// maintained across operations.
func Build(doc *model.Document) (*UsageCatalogue, error) {
	cat := New()
	for _, page := range doc.Pages() {
		fonts := page.Fonts()
		if len(fonts) == 0 {
			continue
		}

		lookup := func(alias string) (*cmap.CMap, bool) {
			f, ok := fonts[alias]
			if !ok {
				return nil, false
			}
			return cat.cmapFor(doc, alias, f), true
		}

		data, err := page.ContentBytes()
		if err != nil {
			if errors.Is(err, perr.ErrNoContent) {
				continue
			}
			return nil, err
		}

		items, err := contentstream.Tokenize(data, lookup)
		if err != nil {
			return nil, err
		}
		cat.absorb(items)
	}
	return cat, nil
}

// cmapFor returns alias's CMap, reading the font's ToUnicode stream (or
// synthesizing the WinAnsi default if absent) the first time alias is
// seen and caching it for the rest of the build.
func (cat *UsageCatalogue) cmapFor(doc *model.Document, alias string, f *model.Font) *cmap.CMap {
	if cm, ok := cat.CMaps[alias]; ok {
		return cm
	}
	cm := doc.ReadToUnicode(f)
	if cm == nil {
		cm = cmap.DefaultWinAnsi()
	}
	cat.CMaps[alias] = cm
	return cm
}

// absorb records every TextShow run's (character, code) pairs against
// its current font, skipping runs whose font never resolved to an
// in-scope font (no CMap was ever cached for that alias).
func (cat *UsageCatalogue) absorb(items []*contentstream.Item) {
	for _, it := range items {
		if it.Kind != contentstream.TextShow {
			continue
		}
		run := it.Run
		cm, ok := cat.CMaps[run.Font]
		if !ok {
			continue
		}

		runes := []rune(run.Text)
		for i, r := range runes {
			if i >= len(run.Codes) {
				break
			}
			code := run.Codes[i]
			// Only count a (character, code) pair the font's CMap
			// actually attests to — a byte the tokenizer substituted
			// contentstream.MissingCodeRune for is not evidence the
			// font draws that rune at that code.
			if decoded, known := cm.Decode(code); known && decoded == r {
				cat.record(run.Font, r, code)
			}
		}
	}
}

func (cat *UsageCatalogue) record(alias string, r rune, code byte) {
	if cat.CharactersInFont[alias] == nil {
		cat.CharactersInFont[alias] = map[rune]bool{}
	}
	cat.CharactersInFont[alias][r] = true

	if cat.CodesForCharacter[alias] == nil {
		cat.CodesForCharacter[alias] = map[rune]map[byte]bool{}
	}
	if cat.CodesForCharacter[alias][r] == nil {
		cat.CodesForCharacter[alias][r] = map[byte]bool{}
	}
	cat.CodesForCharacter[alias][r][code] = true

	if cat.CodesInUse[alias] == nil {
		cat.CodesInUse[alias] = map[byte]bool{}
	}
	cat.CodesInUse[alias][code] = true
}

// ReserveCode marks code as occupied for alias without any character
// attestation — used by the Replacer (spec.md §4.5.4) to reserve a
// freshly allocated code immediately, so a later character in the same
// replacement (or a later match in the same operation) never collides
// with it.
func (cat *UsageCatalogue) ReserveCode(alias string, code byte) {
	if cat.CodesInUse[alias] == nil {
		cat.CodesInUse[alias] = map[byte]bool{}
	}
	cat.CodesInUse[alias][code] = true
}
