package runner

import (
	"errors"
	"fmt"

	"github.com/nado-dev/nado/nadoerr"
)

const ErrCodeSpawnFailure = "spawn_failure"

func ErrSpawnFailure(program string) *nadoerr.Error {
	return nadoerr.New(
		ErrCodeSpawnFailure,
		fmt.Sprintf("program %s could not be started", program),
	).SetExitCode(1)
}

// IsSpawn reports whether err is a spawn failure, which the
// engine records as Unknown rather than a correctness failure.
func IsSpawn(err error) bool {
	var ne *nadoerr.Error
	return errors.As(err, &ne) && ne.ErrorCode() == ErrCodeSpawnFailure
}

const ErrCodeExecFailure = "exec_failure"

func ErrExecFailure(program string) *nadoerr.Error {
	return nadoerr.New(
		ErrCodeExecFailure,
		fmt.Sprintf("execution of %s failed", program),
	).SetExitCode(1)
}
