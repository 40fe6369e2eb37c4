//go:build !linux

package runner

import "github.com/nado-dev/nado/conf"

// rlimits on a running child need prlimit, which is
// linux-only; elsewhere the wall-clock timeout is the only
// local resource ceiling.
func applyLimits(pid int, limits conf.Limits) error {
	return nil
}
