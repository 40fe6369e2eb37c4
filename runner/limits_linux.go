//go:build linux

package runner

import (
	"errors"

	"github.com/nado-dev/nado/conf"
	"golang.org/x/sys/unix"
)

// applyLimits sets rlimits on an already-started child. The
// window between start and prlimit is accepted: the child is
// still paging in its binary while limits land.
func applyLimits(pid int, limits conf.Limits) error {
	set := func(resource int, value uint64) error {
		lim := unix.Rlimit{Cur: value, Max: value}
		err := unix.Prlimit(pid, resource, &lim, nil)
		if errors.Is(err, unix.EINVAL) {
			// not every kernel supports every resource
			return nil
		}
		return err
	}

	if limits.CpuSeconds > 0 {
		if err := set(unix.RLIMIT_CPU, limits.CpuSeconds); err != nil {
			return err
		}
	}
	if limits.MemoryMb > 0 {
		if err := set(unix.RLIMIT_AS, limits.MemoryMb*1024*1024); err != nil {
			return err
		}
	}
	if limits.FileSizeKb > 0 {
		if err := set(unix.RLIMIT_FSIZE, limits.FileSizeKb*1024); err != nil {
			return err
		}
	}
	if limits.Nofile > 0 {
		if err := set(unix.RLIMIT_NOFILE, limits.Nofile); err != nil {
			return err
		}
	}
	if limits.Nproc > 0 {
		if err := set(unix.RLIMIT_NPROC, limits.Nproc); err != nil {
			return err
		}
	}
	return nil
}
