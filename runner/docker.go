package runner

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/nado-dev/nado/conf"
)

// dockerRunner executes the program inside a container created
// from the declared image, one container per invocation.
type dockerRunner struct {
	cli    *client.Client
	spec   conf.Program
	binds  []string
	limits conf.Limits
	maxOut int64
	logger *slog.Logger
}

func newDockerRunner(spec conf.Program, mounts []Mount, opts Options) (*dockerRunner, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, ErrSpawnFailure(spec.Image).SetDebug(err)
	}

	binds := make([]string, 0, len(mounts))
	for _, m := range mounts {
		binds = append(binds, m.dockerBind(opts.ConfDir))
	}

	return &dockerRunner{
		cli:    cli,
		spec:   spec,
		binds:  binds,
		limits: opts.Limits,
		maxOut: opts.MaxOutputBytes,
		logger: opts.Logger.With("program", spec.Name, "image", spec.Image),
	}, nil
}

func (r *dockerRunner) Backend() Backend { return BackendDocker }

func (r *dockerRunner) Execute(ctx context.Context, input []byte, timeout time.Duration) (ExecResult, error) {
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resources := container.Resources{}
	if r.limits.MemoryMb > 0 {
		resources.Memory = int64(r.limits.MemoryMb) * 1024 * 1024
	}
	if r.limits.Nproc > 0 {
		pids := int64(r.limits.Nproc)
		resources.PidsLimit = &pids
	}

	created, err := r.cli.ContainerCreate(ctx,
		&container.Config{
			Image:           r.spec.Image,
			Cmd:             r.spec.Cmd,
			NetworkDisabled: true,
			OpenStdin:       true,
			StdinOnce:       true,
			AttachStdin:     true,
			AttachStdout:    true,
			AttachStderr:    true,
		},
		&container.HostConfig{
			Binds:     r.binds,
			Resources: resources,
		},
		nil, nil, "")
	if err != nil {
		// missing image or unreachable daemon, not a verdict
		return ExecResult{}, ErrSpawnFailure(r.spec.Image).SetDebug(err)
	}
	id := created.ID

	// teardown must be reached on every path, including
	// engine-side cancellation, so it runs on its own context
	defer func() {
		rmCtx, rmCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer rmCancel()
		err := r.cli.ContainerRemove(rmCtx, id, types.ContainerRemoveOptions{Force: true})
		if err != nil {
			r.logger.Warn("container remove failed", "container_id", id, "error", err)
		}
	}()

	attach, err := r.cli.ContainerAttach(runCtx, id, types.ContainerAttachOptions{
		Stream: true,
		Stdin:  true,
		Stdout: true,
		Stderr: true,
	})
	if err != nil {
		return ExecResult{}, ErrSpawnFailure(r.spec.Image).SetDebug(err)
	}
	defer attach.Close()

	start := time.Now()
	if err := r.cli.ContainerStart(runCtx, id, types.ContainerStartOptions{}); err != nil {
		return ExecResult{}, ErrSpawnFailure(r.spec.Image).SetDebug(err)
	}

	go func() {
		if _, err := attach.Conn.Write(input); err != nil {
			r.logger.Debug("stdin write interrupted", "container_id", id, "error", err)
		}
		if err := attach.CloseWrite(); err != nil {
			r.logger.Debug("stdin close failed", "container_id", id, "error", err)
		}
	}()

	copyDone := make(chan demuxOutcome, 1)
	go func() { copyDone <- demuxStreams(attach.Reader, r.maxOut) }()

	waitCh, errCh := r.cli.ContainerWait(runCtx, id, container.WaitConditionNotRunning)

	exitCode := -1
	timedOut := false
	select {
	case resp := <-waitCh:
		if resp.Error != nil {
			return ExecResult{}, ErrExecFailure(r.spec.Image).
				SetDebug(waitError(resp.Error.Message))
		}
		exitCode = int(resp.StatusCode)
	case err := <-errCh:
		killCtx, killCancel := context.WithTimeout(context.Background(), 10*time.Second)
		if killErr := r.cli.ContainerKill(killCtx, id, "KILL"); killErr != nil {
			r.logger.Debug("container kill failed", "container_id", id, "error", killErr)
		}
		killCancel()

		if ctx.Err() != nil {
			return ExecResult{}, ctx.Err()
		}
		if runCtx.Err() == context.DeadlineExceeded {
			timedOut = true
		} else {
			return ExecResult{}, ErrExecFailure(r.spec.Image).SetDebug(err)
		}
	}

	// closing the attach ends the demux; the buffers stay owned
	// by the copy goroutine until it hands them over here
	attach.Close()
	out := <-copyDone
	if out.err != nil {
		r.logger.Debug("output demux ended with error", "container_id", id, "error", out.err)
	}

	return ExecResult{
		Stdout:         out.stdout.buf.Bytes(),
		Stderr:         out.stderr.buf.Bytes(),
		ExitCode:       exitCode,
		TimedOut:       timedOut,
		OutputExceeded: out.stdout.exceeded,
		Duration:       time.Since(start),
	}, nil
}

// demuxOutcome transfers the demultiplexed streams out of the
// copy goroutine.
type demuxOutcome struct {
	stdout *capWriter
	stderr *capWriter
	err    error
}

func demuxStreams(r io.Reader, maxOut int64) demuxOutcome {
	stdout := &capWriter{limit: maxOut}
	stderr := &capWriter{}
	_, err := stdcopy.StdCopy(stdout, stderr, r)
	return demuxOutcome{stdout: stdout, stderr: stderr, err: err}
}

type waitError string

func (e waitError) Error() string { return string(e) }
