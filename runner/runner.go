package runner

import (
	"bytes"
	"context"
	"log/slog"
	"time"

	"github.com/nado-dev/nado/conf"
)

// Backend identifies which worker pool an invocation is
// scheduled on. Local execution and container startup have very
// different costs, so their concurrency is tuned independently.
type Backend int

const (
	BackendLocal Backend = iota
	BackendDocker
)

// ExecResult captures one invocation's outcome. Never mutated
// after creation.
type ExecResult struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
	TimedOut bool
	// stdout capture hit the configured byte cap; the output in
	// Stdout is incomplete and must not be compared as if whole
	OutputExceeded bool
	Duration       time.Duration
}

// Runner executes one program against one input. Implementations
// own their cleanup: no process or container belonging to an
// invocation survives Execute returning, on any path.
type Runner interface {
	Execute(ctx context.Context, input []byte, timeout time.Duration) (ExecResult, error)
	Backend() Backend
}

// Options carries run-scoped settings shared by all runners.
type Options struct {
	// directory of the config document; programs run with it as
	// their working directory and relative mounts resolve to it
	ConfDir string
	Limits  conf.Limits
	// stdout capture cap in bytes, 0 = unlimited
	MaxOutputBytes int64
	Logger         *slog.Logger
}

// New selects the backend for a program: a declared image means
// docker, otherwise a local child process.
func New(spec conf.Program, opts Options) (Runner, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	mounts, err := ParseMounts(spec.Mounts)
	if err != nil {
		return nil, err
	}

	if spec.Image != "" {
		return newDockerRunner(spec, mounts, opts)
	}

	if len(spec.Cmd) == 0 {
		return nil, conf.ErrEmptyCmd(spec.Name)
	}
	return newLocalRunner(spec, mounts, opts), nil
}

// capWriter captures a stream up to an optional byte limit.
// Past the limit it keeps consuming (so the child never blocks
// on a full pipe) but flags the overflow instead of silently
// truncating.
type capWriter struct {
	buf      bytes.Buffer
	limit    int64 // 0 = unlimited
	exceeded bool
}

func (w *capWriter) Write(p []byte) (int, error) {
	if w.limit > 0 && int64(w.buf.Len())+int64(len(p)) > w.limit {
		w.exceeded = true
		if room := w.limit - int64(w.buf.Len()); room > 0 {
			w.buf.Write(p[:room])
		}
		return len(p), nil
	}
	return w.buf.Write(p)
}
