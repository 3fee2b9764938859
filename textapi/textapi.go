/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

// Package textapi implements the read-only half of the library-level
// surface (spec.md §6): analyze_fonts, search and parse_page_text. All
// three walk a document's tokenized content streams without mutating
// anything, unlike replacer.ReplaceText which is the one write path.
//
// Grounded on extractor.New(page)'s per-page construction idiom
// (extractor/extractor.go), adapted here to build on top of
// contentstream.Tokenize and catalogue.Build rather than the teacher's
// general graphics-state-tracking extractor.
package textapi

import (
	"errors"
	"sort"
	"strings"

	"github.com/herryqg/pdf-parser/catalogue"
	"github.com/herryqg/pdf-parser/contentstream"
	"github.com/herryqg/pdf-parser/internal/cmap"
	"github.com/herryqg/pdf-parser/model"
	"github.com/herryqg/pdf-parser/perr"
)

// CodePoint is one entry of a font's CMap, exposed for analyze_fonts's
// "every code -> scalar pair" contract (spec.md §6).
type CodePoint struct {
	Code   byte `json:"code"`
	Scalar rune `json:"scalar"`
}

// FontInfo describes one font object found in the document.
type FontInfo struct {
	Alias    string      `json:"alias"`
	BaseFont string      `json:"base_font"`
	CMapSize int         `json:"cmap_size"`
	Codes    []CodePoint `json:"codes"`
}

// FontReport is analyze_fonts's return value.
type FontReport struct {
	Fonts []FontInfo `json:"fonts"`
}

// AnalyzeFonts enumerates every single-byte TrueType font reachable
// from any page of doc, deduplicated by (alias, BaseFont) pair rather
// than by font object: one font object aliased differently on two pages
// is listed once per alias, and distinct font objects sharing both alias
// and BaseFont are listed once.
func AnalyzeFonts(doc *model.Document) (*FontReport, error) {
	report := &FontReport{}
	seen := map[string]bool{}

	for _, page := range doc.Pages() {
		fonts := page.Fonts()
		aliases := make([]string, 0, len(fonts))
		for alias := range fonts {
			aliases = append(aliases, alias)
		}
		sort.Strings(aliases)

		for _, alias := range aliases {
			f := fonts[alias]
			key := alias + "\x00" + f.BaseFont()
			if seen[key] {
				continue
			}
			seen[key] = true

			cm := doc.ReadToUnicode(f)
			if cm == nil {
				cm = cmap.DefaultWinAnsi()
			}
			info := FontInfo{Alias: alias, BaseFont: f.BaseFont(), CMapSize: cm.Len()}
			codes := cm.Codes()
			sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
			for _, code := range codes {
				r, _ := cm.Decode(code)
				info.Codes = append(info.Codes, CodePoint{Code: code, Scalar: r})
			}
			report.Fonts = append(report.Fonts, info)
		}
	}
	return report, nil
}

// Match is one occurrence of needle found inside a decoded text-showing
// run (search, spec.md §6). A bounding rectangle is deliberately absent:
// this package has no rendering collaborator to supply one.
type Match struct {
	PageIndex int    `json:"page_index"`
	Instance  int    `json:"instance"`
	FontAlias string `json:"font_alias"`
	Context   string `json:"context"`
}

// Search finds every occurrence of needle inside any text-showing
// run's decoded text, across pageIndex (or every page, if pageIndex is
// nil). Unlike ReplaceText's match predicate (a run's whole decoded
// text equals the target), Search looks for needle as a substring of
// each run, since it answers "where does this text appear" rather than
// "what can I replace".
func Search(doc *model.Document, needle string, pageIndex *int, caseSensitive bool) ([]Match, error) {
	if needle == "" {
		return nil, perr.ErrEmptyTarget
	}

	var pages []*model.Page
	if pageIndex != nil {
		page, err := doc.Page(*pageIndex)
		if err != nil {
			return nil, err
		}
		pages = []*model.Page{page}
	} else {
		pages = doc.Pages()
	}

	cat, err := catalogue.Build(doc)
	if err != nil {
		return nil, err
	}

	needleFold := needle
	if !caseSensitive {
		needleFold = strings.ToLower(needle)
	}

	var matches []Match
	for _, page := range pages {
		items, err := tokenizePage(doc, page, cat)
		if err != nil {
			if errors.Is(err, perr.ErrNoContent) {
				continue
			}
			return nil, err
		}

		instance := 0
		for _, it := range items {
			if it.Kind != contentstream.TextShow {
				continue
			}
			text := it.Run.Text
			textFold := text
			if !caseSensitive {
				textFold = strings.ToLower(text)
			}
			if strings.Contains(textFold, needleFold) {
				matches = append(matches, Match{
					PageIndex: page.Index,
					Instance:  instance,
					FontAlias: it.Run.Font,
					Context:   text,
				})
			}
			instance++
		}
	}
	return matches, nil
}

// TextElement is one decoded text-showing operator, in content-stream
// order (parse_page_text, spec.md §6).
type TextElement struct {
	Instance  int    `json:"instance"`
	FontAlias string `json:"font_alias"`
	Operator  string `json:"operator"`
	Text      string `json:"text"`
}

// ParsePageText returns every text-showing operator of page pageIndex,
// decoded, in the order they appear in the content stream, with
// instance indices preserved (the same numbering ReplaceText's
// InstanceIndex option selects against).
func ParsePageText(doc *model.Document, pageIndex int) ([]TextElement, error) {
	page, err := doc.Page(pageIndex)
	if err != nil {
		return nil, err
	}

	cat, err := catalogue.Build(doc)
	if err != nil {
		return nil, err
	}

	items, err := tokenizePage(doc, page, cat)
	if err != nil {
		return nil, err
	}

	var elems []TextElement
	instance := 0
	for _, it := range items {
		if it.Kind != contentstream.TextShow {
			continue
		}
		elems = append(elems, TextElement{
			Instance:  instance,
			FontAlias: it.Run.Font,
			Operator:  it.Run.Operator,
			Text:      it.Run.Text,
		})
		instance++
	}
	return elems, nil
}

// tokenizePage tokenizes page's content stream using cat's already-built
// CMaps, caching any page font cat.Build didn't visit (e.g. listed in the
// page resources but never selected by a Tf operator) the same way
// replacer.ReplaceText does.
func tokenizePage(doc *model.Document, page *model.Page, cat *catalogue.UsageCatalogue) ([]*contentstream.Item, error) {
	fonts := page.Fonts()
	for alias, f := range fonts {
		if _, ok := cat.CMaps[alias]; !ok {
			if cm := doc.ReadToUnicode(f); cm != nil {
				cat.CMaps[alias] = cm
			} else {
				cat.CMaps[alias] = cmap.DefaultWinAnsi()
			}
		}
	}

	lookup := func(alias string) (*cmap.CMap, bool) {
		if _, ok := fonts[alias]; !ok {
			return nil, false
		}
		return cat.CMaps[alias], cat.CMaps[alias] != nil
	}

	data, err := page.ContentBytes()
	if err != nil {
		return nil, err
	}
	return contentstream.Tokenize(data, lookup)
}
