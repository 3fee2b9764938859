/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package cmap

import "errors"

// ErrBadCMap is never actually returned by Parse: per spec, malformed
// CMap input is tolerated (dropped entries, not an error). It is kept
// as a sentinel for API symmetry with the rest of the taxonomy.
var ErrBadCMap = errors.New("cmap: malformed cmap")

const (
	// MissingCodeRune replaces bytes absent from a CMap's codeToUnicode
	// mapping. '�' = �.
	MissingCodeRune = '�'

	// maxBfEntries bounds how many entries one beginbfchar/beginbfrange
	// block carries in serialized output, mirroring the teacher's own
	// bfchar/bfrange chunking.
	maxBfEntries = 100
)
