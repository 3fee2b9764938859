/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

// Package replacer implements the text-replacement core (spec.md
// §4.5): given a page, a target Unicode string and a replacement, it
// locates matching show operators, decides per-character whether each
// replacement scalar can reuse an existing font code, borrow one from
// the font's own CMap, or must be freshly allocated, rewrites the
// content stream accordingly, and — only when a character was
// allocated — patches the font's CMap, widths array and embedded
// TrueType program to support it.
//
// Grounded on model/optimize/clean_fonts.go's subsetting call sequence
// (unitype.Parse / SubsetKeepRunes / Write) and model/font_simple.go's
// /Widths-extension idiom, narrowed to this module's single-byte
// TrueType scope and driven by the document-wide catalogue.UsageCatalogue
// instead of per-font encoder state.
package replacer

import (
	"bytes"
	"math"
	"math/rand"
	"sort"
	"strings"

	"github.com/unidoc/unitype"

	"github.com/herryqg/pdf-parser/catalogue"
	"github.com/herryqg/pdf-parser/common"
	"github.com/herryqg/pdf-parser/contentstream"
	"github.com/herryqg/pdf-parser/internal/cmap"
	"github.com/herryqg/pdf-parser/internal/ttf"
	"github.com/herryqg/pdf-parser/model"
	"github.com/herryqg/pdf-parser/perr"
)

// DefaultWidthScaleCorrection is the width-extension formula's
// scaling factor (§4.5.6 / §9 Open Questions). The source this
// specification was distilled from hard-codes an unexplained 0.97;
// this implementation keeps the same default but surfaces it as a
// named, overridable constant rather than burying it in the formula.
const DefaultWidthScaleCorrection = 0.97

// Code allocation ranges (§4.5.4).
const (
	allocLow     = 0xB0
	allocHigh    = 0xFF
	fallbackLow  = 0x80
	fallbackHigh = 0xAF
)

type action int

const (
	actionReuse action = iota
	actionBorrow
	actionAllocate
)

// AllocatedCode is one freshly allocated (alias, code, scalar) triple,
// part of the §6 ReplacementReport surface.
type AllocatedCode struct {
	Alias  string
	Code   byte
	Scalar rune
}

// RefusedMatch records one match instance that was located but not
// rewritten, and why.
type RefusedMatch struct {
	Instance int
	Reason   string
}

// ReplacementReport is the observable result of one ReplaceText call
// (spec.md §6).
type ReplacementReport struct {
	Located      int
	Rewritten    int
	Refused      []RefusedMatch
	Allocated    []AllocatedCode
	PatchedFonts []string
}

// Options configures one ReplaceText call.
type Options struct {
	// InstanceIndex, if non-nil, restricts the rewrite to that single
	// 0-based discovery-order match; nil means "all occurrences".
	InstanceIndex *int
	// AllowAutoInsert permits the Allocate action (§4.5.3); without it,
	// a match requiring a new code is refused instead.
	AllowAutoInsert bool
	// WidthScaleCorrection overrides DefaultWidthScaleCorrection when
	// non-zero.
	WidthScaleCorrection float64
}

func (o Options) scaleCorrection() float64 {
	if o.WidthScaleCorrection != 0 {
		return o.WidthScaleCorrection
	}
	return DefaultWidthScaleCorrection
}

// ReplaceText implements spec.md §4.5 end to end for one page.
func ReplaceText(doc *model.Document, pageIndex int, target, replacement string, opts Options) (*ReplacementReport, error) {
	if target == "" {
		return nil, perr.ErrEmptyTarget
	}
	if target == replacement {
		return nil, perr.ErrSameTargetReplacement
	}

	page, err := doc.Page(pageIndex)
	if err != nil {
		return nil, err
	}

	cat, err := catalogue.Build(doc)
	if err != nil {
		return nil, err
	}

	data, err := page.ContentBytes()
	if err != nil {
		return nil, err
	}

	fonts := page.Fonts()
	lookup := func(alias string) (*cmap.CMap, bool) {
		if _, ok := fonts[alias]; !ok {
			return nil, false
		}
		return cat.CMaps[alias], cat.CMaps[alias] != nil
	}
	// Ensure every font's CMap is cached before tokenizing, so the
	// FontLookup closure above never misses a page font that the
	// catalogue build (which only caches fonts some Tf operator selects)
	// has not touched (e.g. a font listed in the resources but never
	// selected).
	for alias, f := range fonts {
		cat.CMaps[alias] = cmapOrDefault(doc, cat, alias, f)
	}

	items, err := contentstream.Tokenize(data, lookup)
	if err != nil {
		return nil, err
	}

	type match struct {
		itemIndex int
		alias     string
	}
	var matches []match
	for i, it := range items {
		if it.Kind != contentstream.TextShow {
			continue
		}
		if it.Run.Text == target {
			matches = append(matches, match{itemIndex: i, alias: it.Run.Font})
		}
	}

	report := &ReplacementReport{Located: len(matches)}

	var selected []int
	if opts.InstanceIndex != nil {
		idx := *opts.InstanceIndex
		if idx < 0 || idx >= len(matches) {
			return report, perr.ErrNoSuchInstance
		}
		selected = []int{idx}
	} else {
		selected = make([]int, len(matches))
		for i := range matches {
			selected[i] = i
		}
	}

	opAllocs := map[string]map[rune]byte{}   // alias -> rune -> newly allocated code, this operation
	fontPending := map[string][]cmapEntry{}  // alias -> new (code, rune) entries awaiting font patch
	fontPatched := map[string]bool{}

	for _, mi := range selected {
		m := matches[mi]
		item := items[m.itemIndex]
		alias := m.alias

		_, ok := fonts[alias]
		cm := cat.CMaps[alias]
		if !ok || cm == nil {
			report.Refused = append(report.Refused, RefusedMatch{mi, perr.Reason(perr.ErrFontOutOfScope)})
			continue
		}

		plan, needsAllocate := planReplacement(replacement, alias, cat, cm, opAllocs)
		if needsAllocate && !opts.AllowAutoInsert {
			report.Refused = append(report.Refused, RefusedMatch{mi, perr.Reason(perr.ErrUnsupportedCharacter)})
			continue
		}

		if needsAllocate {
			if ok := resolveAllocations(plan, alias, cat, page, opAllocs); !ok {
				report.Refused = append(report.Refused, RefusedMatch{mi, perr.Reason(perr.ErrNoFreeCode)})
				continue
			}
			for _, p := range plan {
				if p.action != actionAllocate || p.reused {
					continue
				}
				report.Allocated = append(report.Allocated, AllocatedCode{alias, p.code, p.r})
				fontPending[alias] = append(fontPending[alias], cmapEntry{p.code, p.r})
				fontPatched[alias] = true
			}
		}

		codes := make([]byte, len(plan))
		for i, p := range plan {
			codes[i] = p.code
		}
		item.Run.Rewrite(codes)
		report.Rewritten++
	}

	if report.Rewritten > 0 {
		if err := page.SetContent(contentstream.Render(items)); err != nil {
			return report, err
		}
	}

	var aliases []string
	for alias := range fontPatched {
		aliases = append(aliases, alias)
	}
	sort.Strings(aliases)
	for _, alias := range aliases {
		if err := patchFont(doc, fonts[alias], cat.CMaps[alias], fontPending[alias], opts.scaleCorrection()); err != nil {
			return report, err
		}
		report.PatchedFonts = append(report.PatchedFonts, alias)
	}

	if report.Rewritten == 0 && len(report.Refused) > 0 {
		return report, firstRefusalError(report.Refused)
	}
	return report, nil
}

type cmapEntry struct {
	code byte
	r    rune
}

type planEntry struct {
	r      rune
	action action
	code   byte
	reused bool // true if an Allocate entry reused a code chosen earlier in the same plan/operation
}

// isReplacementWhitespace reports whether r is one of the four
// whitespace scalars §4.5.3 special-cases.
func isReplacementWhitespace(r rune) bool {
	switch r {
	case '\t', '\n', '\r', ' ':
		return true
	}
	return false
}

// planReplacement computes, for every scalar of replacement, the
// §4.5.3 feasibility decision against alias's font, without mutating
// any shared state. The second return reports whether at least one
// character needs Allocate.
func planReplacement(replacement, alias string, cat *catalogue.UsageCatalogue, cm *cmap.CMap, opAllocs map[string]map[rune]byte) ([]planEntry, bool) {
	plan := make([]planEntry, 0, len(replacement))
	needsAllocate := false

	for _, r := range replacement {
		if code, ok := opAllocs[alias][r]; ok {
			plan = append(plan, planEntry{r: r, action: actionReuse, code: code})
			continue
		}
		if codes, ok := cat.CodesForCharacter[alias][r]; ok && len(codes) > 0 {
			plan = append(plan, planEntry{r: r, action: actionReuse, code: smallestCode(codes)})
			continue
		}
		if isReplacementWhitespace(r) {
			plan = append(plan, planEntry{r: r, action: actionAllocate})
			needsAllocate = true
			continue
		}
		if code, ok := cm.Encode(r); ok {
			plan = append(plan, planEntry{r: r, action: actionBorrow, code: code})
			continue
		}
		plan = append(plan, planEntry{r: r, action: actionAllocate})
		needsAllocate = true
	}
	return plan, needsAllocate
}

// resolveAllocations assigns a concrete code to every Allocate entry
// in plan, in order, applying the §4.5.4 policy and reserving each
// chosen code immediately so later characters (in this plan or a
// later match of the same operation) see it as taken. Returns false
// if any Allocate entry cannot be satisfied — the caller discards the
// whole match, no codes from this match are left reserved.
func resolveAllocations(plan []planEntry, alias string, cat *catalogue.UsageCatalogue, page *model.Page, opAllocs map[string]map[rune]byte) bool {
	if opAllocs[alias] == nil {
		opAllocs[alias] = map[rune]byte{}
	}
	claimedByOthers := page.OtherFontDifferences(alias)
	local := map[rune]byte{}
	var fresh []rune

	for i := range plan {
		p := &plan[i]
		if p.action != actionAllocate {
			continue
		}
		if code, ok := local[p.r]; ok {
			p.code = code
			p.reused = true
			continue
		}
		if code, ok := opAllocs[alias][p.r]; ok {
			p.code = code
			p.reused = true
			local[p.r] = code
			continue
		}

		code, ok := allocateCode(alias, cat, claimedByOthers)
		if !ok {
			for _, r := range fresh {
				delete(cat.CodesInUse[alias], opAllocs[alias][r])
				delete(opAllocs[alias], r)
			}
			return false
		}
		p.code = code
		local[p.r] = code
		cat.ReserveCode(alias, code)
		opAllocs[alias][p.r] = code
		fresh = append(fresh, p.r)
	}
	return true
}

// allocateCode implements §4.5.4: the smallest free code in
// 0xB0..0xFF, falling back to 0x80..0xAF, excluding codes already in
// use for alias, codes claimed by another font's Differences array on
// the same page, and (implied by §4.5.6's never-overwrite guarantee)
// codes the font's CMap already defines for a different character.
func allocateCode(alias string, cat *catalogue.UsageCatalogue, claimedByOthers map[byte]bool) (byte, bool) {
	cm := cat.CMaps[alias]
	try := func(lo, hi int) (byte, bool) {
		for c := lo; c <= hi; c++ {
			code := byte(c)
			if cat.CodesInUse[alias][code] {
				continue
			}
			if claimedByOthers[code] {
				continue
			}
			if cm != nil {
				if _, ok := cm.Decode(code); ok {
					continue
				}
			}
			return code, true
		}
		return 0, false
	}
	if code, ok := try(allocLow, allocHigh); ok {
		return code, true
	}
	return try(fallbackLow, fallbackHigh)
}

func smallestCode(codes map[byte]bool) byte {
	best := byte(0xFF)
	found := false
	for c := range codes {
		if !found || c < best {
			best = c
			found = true
		}
	}
	return best
}

func firstRefusalError(refused []RefusedMatch) error {
	if len(refused) == 0 {
		return nil
	}
	switch refused[0].Reason {
	case "no_free_code":
		return perr.ErrNoFreeCode
	case "font_subtype_out_of_scope":
		return perr.ErrFontOutOfScope
	default:
		return perr.ErrUnsupportedCharacter
	}
}

func cmapOrDefault(doc *model.Document, cat *catalogue.UsageCatalogue, alias string, f *model.Font) *cmap.CMap {
	if cm, ok := cat.CMaps[alias]; ok {
		return cm
	}
	if cm := doc.ReadToUnicode(f); cm != nil {
		return cm
	}
	return cmap.DefaultWinAnsi()
}

// patchFont performs §4.5.6 font patching for one alias: merges the
// new code->scalar entries into the CMap (never overwriting an
// existing one), extends the widths array, and subsets/re-embeds the
// TrueType program to cover exactly the merged CMap's glyphs.
func patchFont(doc *model.Document, f *model.Font, oldCM *cmap.CMap, pending []cmapEntry, scale float64) error {
	merged := cmap.New()
	for _, code := range oldCM.Codes() {
		r, _ := oldCM.Decode(code)
		merged.Set(code, r)
	}
	for _, e := range pending {
		if _, exists := merged.Decode(e.code); exists {
			continue
		}
		merged.Set(e.code, e.r)
	}

	progData, err := doc.ReadFontProgram(f)
	if err != nil {
		return err
	}
	metrics, err := ttf.Parse(bytes.NewReader(progData))
	if err != nil {
		common.Log.Debug("replacer: TrueType metrics parse failed for %s: %v", f.Alias, err)
		return perr.ErrFontPatchFailed
	}

	firstChar, widths := doc.ReadWidths(f)
	if firstChar != 0 {
		pad := make([]float64, firstChar)
		for i := range pad {
			pad[i] = averageWidth(widths)
		}
		widths = append(pad, widths...)
		firstChar = 0
	}
	avg := averageWidth(widths)
	ratio := widthScaleRatio(oldCM, widths, metrics, scale)

	for _, e := range pending {
		idx := int(e.code) - firstChar
		for len(widths) <= idx {
			widths = append(widths, avg)
		}
		newWidth := avg
		if w, ok := metrics.AdvanceWidth(e.r); ok {
			newWidth = math.Round(float64(w) * ratio)
		}
		widths[idx] = newWidth
	}
	doc.WriteWidths(f, firstChar, widths)

	if err := doc.WriteToUnicode(f, merged); err != nil {
		return err
	}

	if err := subsetAndReembed(doc, f, progData, merged); err != nil {
		return err
	}
	return nil
}

// widthScaleRatio computes the font's characteristic PDF-width to
// TrueType-native-width ratio, averaged over every pre-existing code
// that has both a PDF width and a resolvable glyph (§4.5.6).
func widthScaleRatio(oldCM *cmap.CMap, widths []float64, metrics *ttf.Font, scale float64) float64 {
	var sum float64
	var n int
	for _, code := range oldCM.Codes() {
		if int(code) >= len(widths) {
			continue
		}
		r, _ := oldCM.Decode(code)
		w, ok := metrics.AdvanceWidth(r)
		if !ok || w == 0 {
			continue
		}
		sum += (widths[code] / float64(w)) * scale
		n++
	}
	if n == 0 {
		return scale
	}
	return sum / float64(n)
}

func averageWidth(widths []float64) float64 {
	if len(widths) == 0 {
		return 0
	}
	var sum float64
	for _, w := range widths {
		sum += w
	}
	return sum / float64(len(widths))
}

// subsetAndReembed rewrites the font's embedded TrueType program to
// contain exactly the glyphs merged requires, grounded on
// model/optimize/clean_fonts.go's subsetFontStream sequence
// (unitype.Parse -> SubsetKeepRunes -> Write).
func subsetAndReembed(doc *model.Document, f *model.Font, progData []byte, merged *cmap.CMap) error {
	fnt, err := unitype.Parse(bytes.NewReader(progData))
	if err != nil {
		common.Log.Debug("replacer: unitype parse failed for %s: %v", f.Alias, err)
		return perr.ErrFontPatchFailed
	}

	runes := make([]rune, 0, merged.Len())
	for _, code := range merged.Codes() {
		r, _ := merged.Decode(code)
		runes = append(runes, r)
	}

	subset, err := fnt.SubsetKeepRunes(runes)
	if err != nil {
		common.Log.Debug("replacer: subsetting failed for %s: %v", f.Alias, err)
		return perr.ErrFontPatchFailed
	}

	var buf bytes.Buffer
	if err := subset.Write(&buf); err != nil {
		common.Log.Debug("replacer: writing subset font failed for %s: %v", f.Alias, err)
		return perr.ErrFontPatchFailed
	}

	if err := doc.WriteFontProgram(f, buf.Bytes()); err != nil {
		return err
	}

	tag := genSubsetTag()
	base := f.BaseFont()
	if i := strings.IndexByte(base, '+'); i == 6 {
		base = base[7:]
	}
	f.SetBaseFont(tag + "+" + base)
	return nil
}

// genSubsetTag returns a 6-letter uppercase subset tag per PDF 9.6.4's
// "ABCDEF+BaseFont" convention.
func genSubsetTag() string {
	const letters = "QWERTYUIOPASDFGHJKLZXCVBNM"
	tag := make([]byte, 6)
	for i := range tag {
		tag[i] = letters[rand.Intn(len(letters))]
	}
	return string(tag)
}
