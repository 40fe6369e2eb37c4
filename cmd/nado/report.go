package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/nado-dev/nado/engine"
)

var (
	passStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	unknownStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	labelStyle   = lipgloss.NewStyle().Bold(true)
)

func statusText(s engine.Status) string {
	switch s {
	case engine.StatusPass:
		return passStyle.Render(s.String())
	case engine.StatusFail:
		return failStyle.Render(s.String())
	default:
		return unknownStyle.Render(s.String())
	}
}

func printReport(w io.Writer, report *engine.Report) {
	if report.AllPassed() {
		fmt.Fprintln(w, passStyle.Render("PASS")+": all candidates matched origin")
	} else {
		failed := 0
		for _, v := range report.Candidates {
			if v.Status != engine.StatusPass {
				failed++
			}
		}
		fmt.Fprintf(w, "%s: %d / %d candidate(s) did not pass\n",
			failStyle.Render("FAIL"), failed, len(report.Candidates))
	}

	fmt.Fprintln(w, "candidate summary:")
	for _, v := range report.Candidates {
		switch {
		case v.Status == engine.StatusFail:
			fmt.Fprintf(w, "- %s: %s (%d mismatch(es) in %d case(s))\n",
				v.Name, statusText(v.Status), v.FailedCases, v.CasesEvaluated)
		case v.Status == engine.StatusUnknown:
			fmt.Fprintf(w, "- %s: %s (insufficient evidence, %d of %d case(s) unknown)\n",
				v.Name, statusText(v.Status), v.UnknownCases, v.CasesEvaluated)
		default:
			fmt.Fprintf(w, "- %s: %s (%d case(s))\n",
				v.Name, statusText(v.Status), v.CasesEvaluated)
		}
	}

	for _, v := range report.Candidates {
		if v.FirstFailure == nil {
			continue
		}
		fmt.Fprintln(w)
		printFailure(w, v.Name, v.FirstFailure)
	}
}

// printFailure shows the first counterexample with everything
// needed to reproduce it by hand.
func printFailure(w io.Writer, name string, f *engine.CaseVerdict) {
	fmt.Fprintf(w, "%s at case #%d (%s)\n",
		failStyle.Render("FAIL"), f.Case.Index+1, f.Case.Tag)
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render("candidate:"), name)
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render("reason:"), f.Reason)
	fmt.Fprintf(w, "%s\n%s\n", labelStyle.Render("input:"), trimBlock(f.Case.Input))
	fmt.Fprintf(w, "%s\n%s\n", labelStyle.Render("origin stdout:"), trimBlock(f.Expected))
	fmt.Fprintf(w, "%s\n%s\n", labelStyle.Render("candidate stdout:"), trimBlock(f.Actual))

	if len(strings.TrimSpace(string(f.OriginStderr))) > 0 {
		fmt.Fprintf(w, "%s\n%s\n", labelStyle.Render("origin stderr:"), trimBlock(f.OriginStderr))
	}
	if len(strings.TrimSpace(string(f.CandidateStderr))) > 0 {
		fmt.Fprintf(w, "%s\n%s\n", labelStyle.Render("candidate stderr:"), trimBlock(f.CandidateStderr))
	}
}

func trimBlock(b []byte) string {
	return strings.TrimRight(string(b), "\n")
}
