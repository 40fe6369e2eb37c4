package runner

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os/exec"
	"syscall"
	"time"

	"github.com/nado-dev/nado/conf"
	"golang.org/x/sys/unix"
)

// localRunner spawns the program as a child process in its own
// process group. The group spans every descendant, so one kill
// reaches grandchildren too.
type localRunner struct {
	argv    []string
	confDir string
	limits  conf.Limits
	maxOut  int64
	logger  *slog.Logger
}

func newLocalRunner(spec conf.Program, mounts []Mount, opts Options) *localRunner {
	return &localRunner{
		argv:    resolveLocalCmd(spec.Cmd, mounts, opts.ConfDir),
		confDir: opts.ConfDir,
		limits:  opts.Limits,
		maxOut:  opts.MaxOutputBytes,
		logger:  opts.Logger.With("program", spec.Name),
	}
}

func (r *localRunner) Backend() Backend { return BackendLocal }

func (r *localRunner) Execute(ctx context.Context, input []byte, timeout time.Duration) (ExecResult, error) {
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.Command(r.argv[0], r.argv[1:]...)
	cmd.Dir = r.confDir
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return ExecResult{}, ErrExecFailure(r.argv[0]).SetDebug(err)
	}
	stdout := &capWriter{limit: r.maxOut}
	stderr := &capWriter{}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return ExecResult{}, ErrSpawnFailure(r.argv[0]).SetDebug(err)
	}
	pid := cmd.Process.Pid

	if err := applyLimits(pid, r.limits); err != nil {
		r.logger.Warn("failed to apply resource limits", "pid", pid, "error", err)
	}

	go func() {
		_, err := stdin.Write(input)
		if err != nil && !errors.Is(err, io.ErrClosedPipe) {
			r.logger.Debug("stdin write interrupted", "pid", pid, "error", err)
		}
		stdin.Close()
	}()

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	timedOut := false
	select {
	case <-done:
	case <-runCtx.Done():
		// kill the whole group so spawned descendants die with
		// the direct child
		killProcessGroup(pid)
		<-done

		if ctx.Err() != nil {
			// engine-side cancellation, not a verdict
			return ExecResult{}, ctx.Err()
		}
		timedOut = true
	}

	exitCode := -1
	if cmd.ProcessState != nil && !timedOut {
		exitCode = cmd.ProcessState.ExitCode()
	}

	return ExecResult{
		Stdout:         stdout.buf.Bytes(),
		Stderr:         stderr.buf.Bytes(),
		ExitCode:       exitCode,
		TimedOut:       timedOut,
		OutputExceeded: stdout.exceeded,
		Duration:       time.Since(start),
	}, nil
}

func killProcessGroup(pid int) {
	// the child was started with Setpgid, so -pid addresses its
	// entire process group
	_ = unix.Kill(-pid, unix.SIGKILL)
}
