package nadoerr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/nado-dev/nado/nadoerr"
	"github.com/stretchr/testify/require"
)

func TestErrorAccessors(t *testing.T) {
	cause := fmt.Errorf("exec: not found")
	err := nadoerr.New("spawn_failure", "program could not be started").
		SetDebug(cause).
		SetExitCode(1)

	require.Equal(t, "program could not be started", err.Error())
	require.Equal(t, "spawn_failure", err.ErrorCode())
	require.Equal(t, cause, err.DebugInfo())
	require.Equal(t, 1, err.ExitCode())
	require.True(t, errors.Is(err, cause))
}

func TestDefaultExitCodeIsFatal(t *testing.T) {
	err := nadoerr.New("unsatisfiable_shape", "input shape is unsatisfiable")
	require.Equal(t, 2, err.ExitCode())
}

func TestInternalFallbackKeepsCause(t *testing.T) {
	cause := errors.New("boom")
	err := nadoerr.ErrInternal().SetDebug(cause)

	require.Equal(t, nadoerr.ErrCodeInternalError, err.ErrorCode())
	require.Equal(t, 2, err.ExitCode())
	require.True(t, errors.Is(err, cause))
}
