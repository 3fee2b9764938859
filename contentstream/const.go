/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package contentstream

import "errors"

var (
	// ErrInvalidOperand specifies that invalid operands have been encountered
	// while parsing the content stream.
	ErrInvalidOperand = errors.New("invalid operand")

	// ErrUnterminatedInlineImage is returned when a BI operator is never
	// closed by a matching EI before the content stream ends.
	ErrUnterminatedInlineImage = errors.New("contentstream: unterminated inline image")
)

// MissingCodeRune substitutes any byte a show operator's current font
// cannot decode. '?' = U+003F.
const MissingCodeRune = '?'
