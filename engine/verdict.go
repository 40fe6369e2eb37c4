package engine

import (
	"github.com/google/uuid"
	"github.com/nado-dev/nado/gen"
)

type Status int

const (
	// StatusUnknown means insufficient evidence: spawn failures
	// or origin instability, never a proven wrong answer
	StatusUnknown Status = iota
	StatusPass
	StatusFail

	// statusSkipped marks fan-out slots of short-circuited
	// candidates; never surfaces in a report
	statusSkipped
)

func (s Status) String() string {
	switch s {
	case StatusPass:
		return "PASS"
	case StatusFail:
		return "FAIL"
	default:
		return "UNKNOWN"
	}
}

// CaseVerdict is the decision for one candidate on one case.
type CaseVerdict struct {
	Case   gen.TestCase
	Status Status
	Reason string

	// diagnostics for failure reporting
	Expected        []byte
	Actual          []byte
	OriginStderr    []byte
	CandidateStderr []byte
}

// CandidateVerdict is the running aggregate for one candidate.
// Owned and mutated only by the engine's aggregation loop.
type CandidateVerdict struct {
	Name           string
	Status         Status
	CasesEvaluated int
	UnknownCases   int
	FailedCases    int

	// first counterexample in case order, kept for reproduction
	FirstFailure *CaseVerdict

	terminal bool
}

// Report is the final outcome of a run: one verdict per
// candidate.
type Report struct {
	RunID      uuid.UUID
	TotalCases int
	Candidates []CandidateVerdict
}

func (r *Report) AllPassed() bool {
	for _, c := range r.Candidates {
		if c.Status != StatusPass {
			return false
		}
	}
	return true
}

func (r *Report) ExitCode() int {
	if r.AllPassed() {
		return 0
	}
	return 1
}
