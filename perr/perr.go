/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

// Package perr defines the sentinel error values callers match against
// with errors.Is/errors.As, realizing the error taxonomy of the text
// replacement pipeline: input errors, structure errors, feasibility
// refusals, font-patching failures, and output errors.
package perr

import "errors"

// Input errors: the document itself, or the request, cannot be acted on.
var (
	// ErrNotAPDF is returned when the input file does not carry a PDF
	// signature (the %PDF- header magic bytes).
	ErrNotAPDF = errors.New("perr: input is not a PDF file")
	// ErrEncrypted is returned when the document's trailer declares an
	// /Encrypt dictionary. Decrypting and re-encrypting is out of scope.
	ErrEncrypted = errors.New("perr: document is encrypted")
	// ErrPageRange is returned when a requested page index is outside
	// [0, PageCount).
	ErrPageRange = errors.New("perr: page index out of range")
	// ErrEmptyTarget is returned when the target string is empty.
	ErrEmptyTarget = errors.New("perr: target string is empty")
	// ErrSameTargetReplacement is returned when target and replacement
	// are identical: replace(doc, p, t, t) is a no-op, rejected at input.
	ErrSameTargetReplacement = errors.New("perr: target and replacement are identical")
)

// Structure errors: the document's shape disqualifies an operation.
var (
	// ErrNoContent is returned when a page has no content stream.
	ErrNoContent = errors.New("perr: page has no content stream")
	// ErrFontOutOfScope is returned when a match's font is not a
	// single-byte-encoded TrueType simple font.
	ErrFontOutOfScope = errors.New("perr: font of match is out of scope")
)

// Feasibility refusals: per-match, recorded in the ReplacementReport and
// the operation continues.
var (
	// ErrUnsupportedCharacter is returned when the replacement contains
	// a character absent from the match's font and allow_auto_insert is
	// false.
	ErrUnsupportedCharacter = errors.New("perr: replacement contains a character unsupported by the font")
	// ErrNoFreeCode is returned when allow_auto_insert is true but the
	// font's allocation range has no free code left to assign.
	ErrNoFreeCode = errors.New("perr: no free code available in allocation range")
	// ErrNoSuchInstance is returned when the requested match instance
	// index is >= the number of matches found.
	ErrNoSuchInstance = errors.New("perr: no match at the requested instance index")
)

// Font-patching failures: fatal to the whole operation, since a partial
// patch could leave the document inconsistent.
var (
	// ErrFontPatchFailed is returned when the TrueType program is
	// absent, the subsetter cannot produce a valid program, or the
	// widths array cannot be extended consistently.
	ErrFontPatchFailed = errors.New("perr: font patching failed")
)

// Kind classifies an error into the taxonomy of spec section 7, for the
// CLI's exit-code mapping and the report's per-match reason strings.
type Kind int

const (
	// KindUnknown is the zero value: an error not drawn from this package.
	KindUnknown Kind = iota
	KindInput
	KindStructure
	KindFeasibility
	KindFontPatch
	KindOutput
)

// kindOf reports which taxonomy bucket a sentinel error belongs to.
func kindOf(err error) Kind {
	switch {
	case errors.Is(err, ErrNotAPDF), errors.Is(err, ErrEncrypted),
		errors.Is(err, ErrPageRange), errors.Is(err, ErrEmptyTarget),
		errors.Is(err, ErrSameTargetReplacement):
		return KindInput
	case errors.Is(err, ErrNoContent), errors.Is(err, ErrFontOutOfScope):
		return KindStructure
	case errors.Is(err, ErrUnsupportedCharacter), errors.Is(err, ErrNoFreeCode),
		errors.Is(err, ErrNoSuchInstance):
		return KindFeasibility
	case errors.Is(err, ErrFontPatchFailed):
		return KindFontPatch
	default:
		return KindUnknown
	}
}

// KindOf reports which taxonomy bucket err belongs to, unwrapping
// wrapped errors along the way. KindUnknown covers output errors (I/O
// failures writing the result), which are ordinary *PathError/*os.File
// errors rather than package sentinels.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	return kindOf(err)
}

// ExitCode maps an error (or nil) to the CLI's documented exit-code
// convention: 0 success, 1 no-op, 2 refusal, >2 I/O or parse error.
func ExitCode(err error, noOp bool) int {
	if err == nil {
		if noOp {
			return 1
		}
		return 0
	}
	switch KindOf(err) {
	case KindFeasibility:
		return 2
	case KindInput, KindStructure, KindFontPatch:
		return 3
	default:
		return 4
	}
}

// Reason returns the short machine-readable reason string the
// ReplacementReport and CLI use for a refused/failed match, matching
// the vocabulary spec.md §6 names explicitly
// ("unsupported_character", "font_subtype_out_of_scope", "no_free_code").
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrUnsupportedCharacter):
		return "unsupported_character"
	case errors.Is(err, ErrFontOutOfScope):
		return "font_subtype_out_of_scope"
	case errors.Is(err, ErrNoFreeCode):
		return "no_free_code"
	case errors.Is(err, ErrNoSuchInstance):
		return "no_such_instance"
	case errors.Is(err, ErrNoContent):
		return "no_content"
	case errors.Is(err, ErrFontPatchFailed):
		return "font_patch_failed"
	case errors.Is(err, ErrEncrypted):
		return "unsupported_encryption"
	case errors.Is(err, ErrNotAPDF):
		return "not_a_pdf"
	case errors.Is(err, ErrPageRange):
		return "page_range"
	default:
		return "unknown"
	}
}
