/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package perr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindOfClassifiesTaxonomy(t *testing.T) {
	require.Equal(t, KindInput, KindOf(ErrNotAPDF))
	require.Equal(t, KindInput, KindOf(ErrEncrypted))
	require.Equal(t, KindStructure, KindOf(ErrNoContent))
	require.Equal(t, KindStructure, KindOf(ErrFontOutOfScope))
	require.Equal(t, KindFeasibility, KindOf(ErrUnsupportedCharacter))
	require.Equal(t, KindFeasibility, KindOf(ErrNoFreeCode))
	require.Equal(t, KindFontPatch, KindOf(ErrFontPatchFailed))
	require.Equal(t, KindUnknown, KindOf(nil))
	require.Equal(t, KindUnknown, KindOf(errors.New("some other error")))
}

func TestKindOfUnwrapsWrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("applying page 0: %w", ErrUnsupportedCharacter)
	require.Equal(t, KindFeasibility, KindOf(wrapped))
	require.True(t, errors.Is(wrapped, ErrUnsupportedCharacter))
}

func TestExitCode(t *testing.T) {
	require.Equal(t, 0, ExitCode(nil, false))
	require.Equal(t, 1, ExitCode(nil, true))
	require.Equal(t, 2, ExitCode(ErrUnsupportedCharacter, false))
	require.Equal(t, 3, ExitCode(ErrNotAPDF, false))
	require.Equal(t, 3, ExitCode(ErrNoContent, false))
	require.Equal(t, 3, ExitCode(ErrFontPatchFailed, false))
	require.Equal(t, 4, ExitCode(errors.New("disk full"), false))
}

func TestReason(t *testing.T) {
	require.Equal(t, "unsupported_character", Reason(ErrUnsupportedCharacter))
	require.Equal(t, "font_subtype_out_of_scope", Reason(ErrFontOutOfScope))
	require.Equal(t, "no_free_code", Reason(ErrNoFreeCode))
	require.Equal(t, "unsupported_encryption", Reason(ErrEncrypted))
	require.Equal(t, "unknown", Reason(errors.New("other")))
}
