package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/nado-dev/nado/compare"
	"github.com/nado-dev/nado/conf"
	"github.com/nado-dev/nado/gen"
	"github.com/nado-dev/nado/logger"
	"github.com/nado-dev/nado/runner"
	"golang.org/x/sync/semaphore"
)

// Notifier receives case-completion events for progress
// rendering. Implementations must be safe for use from the
// aggregation goroutine.
type Notifier interface {
	CaseCompleted(done, total int)
}

type noopNotifier struct{}

func (noopNotifier) CaseCompleted(done, total int) {}

// Engine sequences generation, execution, comparison and
// verdict aggregation across all cases and candidates. Run
// logs through the context logger, stamped with the run ID.
type Engine struct {
	cfg      conf.Config
	notifier Notifier

	origin     runner.Runner
	candidates []runner.Runner
	names      []string
	comparer   compare.Comparer

	localPool  *semaphore.Weighted
	dockerPool *semaphore.Weighted
}

// New builds an engine from a validated config, constructing a
// runner per program. confDir is the directory of the config
// document.
func New(cfg conf.Config, confDir string, logger *slog.Logger) (*Engine, error) {
	opts := runner.Options{
		ConfDir:        confDir,
		Limits:         cfg.Limits,
		MaxOutputBytes: cfg.Engine.MaxOutputBytes,
		Logger:         logger,
	}

	originSpec := cfg.Origin
	if originSpec.Name == "" {
		originSpec.Name = "origin"
	}
	origin, err := runner.New(originSpec, opts)
	if err != nil {
		return nil, err
	}

	candidates := make([]runner.Runner, len(cfg.Candidates))
	names := make([]string, len(cfg.Candidates))
	for i, spec := range cfg.Candidates {
		names[i] = cfg.CandidateName(i)
		spec.Name = names[i]
		candidates[i], err = runner.New(spec, opts)
		if err != nil {
			return nil, err
		}
	}

	return NewCustom(cfg, origin, candidates, names,
		compare.New(cfg.Problem, cfg.Normalize)), nil
}

// NewCustom wires an engine from explicit collaborators.
func NewCustom(
	cfg conf.Config,
	origin runner.Runner,
	candidates []runner.Runner,
	names []string,
	comparer compare.Comparer,
) *Engine {
	return &Engine{
		cfg:        cfg,
		notifier:   noopNotifier{},
		origin:     origin,
		candidates: candidates,
		names:      names,
		comparer:   comparer,
		localPool:  semaphore.NewWeighted(int64(cfg.Engine.Workers)),
		dockerPool: semaphore.NewWeighted(int64(cfg.Engine.WorkersDocker)),
	}
}

// SetNotifier installs a progress notifier; rendering itself
// lives in the CLI layer.
func (e *Engine) SetNotifier(n Notifier) {
	if n != nil {
		e.notifier = n
	}
}

// caseOutcome is everything one case produced: the origin's
// fate plus one slot per candidate.
type caseOutcome struct {
	originFailed bool
	originReason string
	verdicts     []CaseVerdict
}

// Run executes the whole differential test. Only generation
// failures are returned as errors; everything at case level is
// folded into verdicts.
func (e *Engine) Run(ctx context.Context) (*Report, error) {
	runID := uuid.New()
	ctx = logger.WithRunID(ctx, runID.String())
	log := logger.FromContext(ctx)

	shape, err := gen.ParseShape(e.cfg.Problem)
	if err != nil {
		return nil, err
	}
	cases := gen.Generate(shape, e.cfg.Engine.Cases, e.cfg.Engine.Seed, e.cfg.Pbt)

	log.Info("run starting",
		"cases", len(cases),
		"candidates", len(e.candidates),
		"workers", e.cfg.Engine.Workers,
		"workers_docker", e.cfg.Engine.WorkersDocker,
		"timeout_ms", e.cfg.Engine.TimeoutMs,
	)

	verdicts := make([]CandidateVerdict, len(e.candidates))
	for i := range verdicts {
		verdicts[i] = CandidateVerdict{Name: e.names[i], Status: StatusUnknown}
	}

	// short-circuit flags are written by case workers the moment
	// a failure is judged, so later dispatches skip the candidate
	terminal := make([]atomic.Bool, len(e.candidates))

	dispatchCtx, stopDispatch := context.WithCancel(ctx)
	defer stopDispatch()

	outcomes := make([]chan caseOutcome, len(cases))
	for i := range outcomes {
		outcomes[i] = make(chan caseOutcome, 1)
	}

	var wg sync.WaitGroup
	inFlight := make(chan struct{}, e.cfg.Engine.Workers+e.cfg.Engine.WorkersDocker)
	go func() {
		for i, tc := range cases {
			select {
			case inFlight <- struct{}{}:
			case <-dispatchCtx.Done():
				return
			}
			wg.Add(1)
			go func(i int, tc gen.TestCase) {
				defer wg.Done()
				outcomes[i] <- e.runCase(dispatchCtx, tc, terminal)
			}(i, tc)
		}
	}()

	// aggregation consumes strictly in case order so that "first
	// failing case" is deterministic even when execution
	// completes out of order
	completed := 0
	for i := range cases {
		var outcome caseOutcome
		select {
		case outcome = <-outcomes[i]:
		case <-ctx.Done():
			stopDispatch()
			wg.Wait()
			return nil, ctx.Err()
		}

		e.fold(&verdicts, outcome, terminal)
		completed++
		e.notifier.CaseCompleted(completed, len(cases))

		if e.allTerminal(verdicts) {
			log.Info("all candidates terminal, stopping early", "completed", completed)
			stopDispatch()
			break
		}

		// the in-flight slot is released only after the outcome
		// is folded, so dispatch never outruns the short-circuit
		// decisions by more than the worker window
		<-inFlight
	}

	wg.Wait()

	for i := range verdicts {
		finalizeVerdict(&verdicts[i])
		log.Info("candidate verdict",
			"candidate", verdicts[i].Name,
			"status", verdicts[i].Status.String(),
			"cases_evaluated", verdicts[i].CasesEvaluated,
			"unknown_cases", verdicts[i].UnknownCases,
		)
	}

	return &Report{
		RunID:      runID,
		TotalCases: len(cases),
		Candidates: verdicts,
	}, nil
}

// runCase executes the origin, then fans the case out to every
// live candidate concurrently. The origin result is always
// settled before any candidate comparison.
func (e *Engine) runCase(ctx context.Context, tc gen.TestCase, terminal []atomic.Bool) caseOutcome {
	outcome := caseOutcome{verdicts: make([]CaseVerdict, len(e.candidates))}

	originRes, err := e.execute(ctx, e.origin, tc, e.originTimeout())
	switch {
	case err != nil:
		outcome.originFailed = true
		outcome.originReason = fmt.Sprintf("origin could not run: %v", err)
	case originRes.TimedOut:
		outcome.originFailed = true
		outcome.originReason = "origin timed out"
	case originRes.OutputExceeded:
		outcome.originFailed = true
		outcome.originReason = "origin exceeded the output budget"
	case originRes.ExitCode != 0:
		outcome.originFailed = true
		outcome.originReason = fmt.Sprintf("origin exited with code %d", originRes.ExitCode)
	}

	if outcome.originFailed {
		// proves nothing about any candidate on this case
		for i := range outcome.verdicts {
			outcome.verdicts[i] = CaseVerdict{
				Case:         tc,
				Status:       StatusUnknown,
				Reason:       outcome.originReason,
				OriginStderr: originRes.Stderr,
			}
		}
		return outcome
	}

	var fanOut sync.WaitGroup
	for i := range e.candidates {
		if e.cfg.Engine.StopOnFirstFail && terminal[i].Load() {
			outcome.verdicts[i] = CaseVerdict{Case: tc, Status: statusSkipped}
			continue
		}

		fanOut.Add(1)
		go func(i int) {
			defer fanOut.Done()
			verdict := e.judgeCandidate(ctx, i, tc, originRes)
			if verdict.Status == StatusFail {
				terminal[i].Store(true)
			}
			outcome.verdicts[i] = verdict
		}(i)
	}
	fanOut.Wait()

	return outcome
}

func (e *Engine) judgeCandidate(ctx context.Context, idx int, tc gen.TestCase, origin runner.ExecResult) CaseVerdict {
	verdict := CaseVerdict{
		Case:         tc,
		Expected:     origin.Stdout,
		OriginStderr: origin.Stderr,
	}

	res, err := e.execute(ctx, e.candidates[idx], tc, e.candidateTimeout(idx))
	verdict.Actual = res.Stdout
	verdict.CandidateStderr = res.Stderr

	switch {
	case runner.IsSpawn(err):
		verdict.Status = StatusUnknown
		verdict.Reason = fmt.Sprintf("candidate could not be started: %v", err)
	case err != nil:
		verdict.Status = StatusUnknown
		verdict.Reason = fmt.Sprintf("candidate execution failed: %v", err)
	case res.TimedOut:
		verdict.Status = StatusFail
		verdict.Reason = "candidate timed out"
	case res.OutputExceeded:
		verdict.Status = StatusFail
		verdict.Reason = "candidate exceeded the output budget"
	case res.ExitCode != 0:
		verdict.Status = StatusFail
		verdict.Reason = fmt.Sprintf("candidate exited with code %d", res.ExitCode)
	default:
		ok, detail := e.comparer.Equal(origin.Stdout, res.Stdout)
		if ok {
			verdict.Status = StatusPass
		} else {
			verdict.Status = StatusFail
			verdict.Reason = fmt.Sprintf("output mismatch: %s", detail)
		}
	}

	return verdict
}

// execute schedules an invocation on the worker pool of the
// runner's backend.
func (e *Engine) execute(ctx context.Context, r runner.Runner, tc gen.TestCase, timeout time.Duration) (runner.ExecResult, error) {
	pool := e.localPool
	if r.Backend() == runner.BackendDocker {
		pool = e.dockerPool
	}

	if err := pool.Acquire(ctx, 1); err != nil {
		return runner.ExecResult{}, err
	}
	defer pool.Release(1)

	return r.Execute(ctx, tc.Input, timeout)
}

// fold merges one case's outcome into the running verdicts, in
// case order. Candidate verdicts are mutually independent.
func (e *Engine) fold(verdicts *[]CandidateVerdict, outcome caseOutcome, terminal []atomic.Bool) {
	for i := range outcome.verdicts {
		cv := outcome.verdicts[i]
		agg := &(*verdicts)[i]
		if agg.terminal || cv.Status == statusSkipped {
			continue
		}

		agg.CasesEvaluated++
		switch cv.Status {
		case StatusUnknown:
			agg.UnknownCases++
		case StatusFail:
			agg.FailedCases++
			agg.Status = StatusFail
			if agg.FirstFailure == nil {
				failure := cv
				agg.FirstFailure = &failure
			}
			if e.cfg.Engine.StopOnFirstFail {
				agg.terminal = true
				terminal[i].Store(true)
			}
		}
	}
}

func (e *Engine) allTerminal(verdicts []CandidateVerdict) bool {
	if !e.cfg.Engine.StopOnFirstFail {
		return false
	}
	for i := range verdicts {
		if !verdicts[i].terminal {
			return false
		}
	}
	return true
}

// finalizeVerdict settles a candidate that never failed: Pass
// if at least one case compared clean, otherwise Unknown.
func finalizeVerdict(v *CandidateVerdict) {
	if v.Status == StatusFail {
		return
	}
	if v.CasesEvaluated > v.UnknownCases {
		v.Status = StatusPass
	} else {
		v.Status = StatusUnknown
	}
}

func (e *Engine) originTimeout() time.Duration {
	return programTimeout(e.cfg.Origin.TimeoutMs, e.cfg.Engine.TimeoutMs)
}

func (e *Engine) candidateTimeout(idx int) time.Duration {
	var ms int64
	if idx < len(e.cfg.Candidates) {
		ms = e.cfg.Candidates[idx].TimeoutMs
	}
	return programTimeout(ms, e.cfg.Engine.TimeoutMs)
}

func programTimeout(programMs, engineMs int64) time.Duration {
	if programMs > 0 {
		return time.Duration(programMs) * time.Millisecond
	}
	return time.Duration(engineMs) * time.Millisecond
}
