package compare

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/nado-dev/nado/conf"
)

// Comparer decides equivalence of two normalized outputs.
// Strategies form a small closed set selected per problem.
type Comparer interface {
	// Equal reports whether actual is equivalent to expected.
	// When it is not, detail describes the first divergence.
	Equal(expected, actual []byte) (ok bool, detail string)
}

// New builds the comparer selected by the problem config.
// Mode validity is checked by conf.Validate.
func New(problem conf.Problem, normalize conf.Normalize) Comparer {
	switch problem.Compare {
	case conf.CompareTokenized:
		return tokenized{}
	case conf.CompareFloatEpsilon:
		return floatEpsilon{epsilon: problem.FloatEpsilon}
	default:
		return exact{normalize: normalize}
	}
}

// Normalize applies the default output normalization: CRLF to
// LF, then per-line trailing-whitespace trim, then trailing
// newline strip. Idempotent.
func Normalize(output []byte, opts conf.Normalize) []byte {
	s := strings.ReplaceAll(string(output), "\r\n", "\n")

	if opts.TrimTrailingWs {
		lines := strings.Split(s, "\n")
		for i, line := range lines {
			lines[i] = strings.TrimRight(line, " \t")
		}
		s = strings.Join(lines, "\n")
	}

	if opts.IgnoreFinalNewline {
		s = strings.TrimRight(s, "\n")
	}

	return []byte(s)
}

type exact struct {
	normalize conf.Normalize
}

func (c exact) Equal(expected, actual []byte) (bool, string) {
	want := string(Normalize(expected, c.normalize))
	got := string(Normalize(actual, c.normalize))
	if want == got {
		return true, ""
	}
	return false, firstLineDiff(want, got)
}

type tokenized struct{}

func (tokenized) Equal(expected, actual []byte) (bool, string) {
	want := strings.Fields(string(expected))
	got := strings.Fields(string(actual))
	if len(want) != len(got) {
		return false, fmt.Sprintf("token count differs: expected %d, got %d",
			len(want), len(got))
	}
	for i := range want {
		if want[i] != got[i] {
			return false, fmt.Sprintf("token %d differs: expected %q, got %q",
				i+1, want[i], got[i])
		}
	}
	return true, ""
}

type floatEpsilon struct {
	epsilon float64
}

func (c floatEpsilon) Equal(expected, actual []byte) (bool, string) {
	want := strings.Fields(string(expected))
	got := strings.Fields(string(actual))
	if len(want) != len(got) {
		return false, fmt.Sprintf("token count differs: expected %d, got %d",
			len(want), len(got))
	}
	for i := range want {
		wantF, wantErr := strconv.ParseFloat(want[i], 64)
		gotF, gotErr := strconv.ParseFloat(got[i], 64)

		if wantErr != nil || gotErr != nil {
			// non-numeric tokens must match exactly
			if want[i] != got[i] {
				return false, fmt.Sprintf("token %d differs: expected %q, got %q",
					i+1, want[i], got[i])
			}
			continue
		}

		if math.Abs(wantF-gotF) > c.epsilon {
			return false, fmt.Sprintf("token %d differs by more than %g: expected %s, got %s",
				i+1, c.epsilon, want[i], got[i])
		}
	}
	return true, ""
}

func firstLineDiff(want, got string) string {
	wantLines := strings.Split(want, "\n")
	gotLines := strings.Split(got, "\n")
	for i := 0; i < len(wantLines) || i < len(gotLines); i++ {
		var w, g string
		if i < len(wantLines) {
			w = wantLines[i]
		}
		if i < len(gotLines) {
			g = gotLines[i]
		}
		if w != g {
			return fmt.Sprintf("line %d differs: expected %q, got %q", i+1, w, g)
		}
	}
	return "outputs differ"
}
