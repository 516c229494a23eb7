package cli

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExitCodeForNilIsOK(t *testing.T) {
	require.Equal(t, ExitOK, ExitCodeFor(nil))
}

func TestExitCodeForExitErrorUsesItsCode(t *testing.T) {
	err := NewExitError(ExitUsageError, errors.New("bad flag"))
	require.Equal(t, ExitUsageError, ExitCodeFor(err))
}

func TestExitCodeForWrappedExitErrorUnwraps(t *testing.T) {
	err := fmt.Errorf("command failed: %w", NewExitError(ExitUsageError, errors.New("bad flag")))
	require.Equal(t, ExitUsageError, ExitCodeFor(err))
}

func TestExitCodeForUnrecognizedErrorIsFailure(t *testing.T) {
	require.Equal(t, ExitFailure, ExitCodeFor(errors.New("boom")))
}
