package gen

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/nado-dev/nado/conf"
)

type Kind int

const (
	KindInteger Kind = iota
	KindString
	KindVector
)

const defaultAlphabet = "abcdefghijklmnopqrstuvwxyz"

// Bounds applied when an integer input declares neither
// min/max nor a range expression.
const (
	implicitMin = -100
	implicitMax = 100
)

// Dim is one input dimension of a problem shape. Dimensions are
// ordered by input name so that generation is deterministic
// regardless of map iteration order.
type Dim struct {
	Name string
	Kind Kind

	// integer value bounds, also element bounds for vectors
	Min int64
	Max int64

	// string inputs
	Alphabet []rune

	// length bounds for strings and independent vectors
	MinLen int
	MaxLen int

	// index of the integer dimension that drives this vector's
	// length, -1 when the length is independent
	LenRef int
}

// Shape is the parsed, validated input shape of a problem.
// Immutable once built.
type Shape struct {
	dims []Dim
}

func (s *Shape) Dims() []Dim { return s.dims }

// ParseShape validates problem.inputs and resolves every
// dimension's bounds. An unsatisfiable shape fails here, before
// any case is produced.
func ParseShape(problem conf.Problem) (*Shape, error) {
	if len(problem.Inputs) == 0 {
		return nil, ErrEmptyInputs()
	}

	names := make([]string, 0, len(problem.Inputs))
	for name := range problem.Inputs {
		names = append(names, name)
	}
	sort.Strings(names)

	shape := &Shape{dims: make([]Dim, 0, len(names))}
	for _, name := range names {
		spec := problem.Inputs[name]
		dim, err := parseDim(name, spec, shape.dims)
		if err != nil {
			return nil, err
		}
		shape.dims = append(shape.dims, dim)
	}

	return shape, nil
}

func parseDim(name string, spec conf.InputSpec, prev []Dim) (Dim, error) {
	switch spec.Type {
	case "integer":
		min, max, err := parseBounds(name, spec)
		if err != nil {
			return Dim{}, err
		}
		return Dim{Name: name, Kind: KindInteger, Min: min, Max: max, LenRef: -1}, nil

	case "string":
		minLen, maxLen, err := parseLenBounds(name, spec, 0, 10)
		if err != nil {
			return Dim{}, err
		}
		alphabet := spec.Alphabet
		if alphabet == "" {
			alphabet = defaultAlphabet
		}
		return Dim{
			Name:     name,
			Kind:     KindString,
			Alphabet: []rune(alphabet),
			MinLen:   minLen,
			MaxLen:   maxLen,
			LenRef:   -1,
		}, nil

	case "vector":
		min, max, err := parseBounds(name, spec)
		if err != nil {
			return Dim{}, err
		}
		dim := Dim{Name: name, Kind: KindVector, Min: min, Max: max, LenRef: -1}

		if spec.Len != "" {
			ref, err := resolveLenRef(name, spec.Len, prev)
			if err != nil {
				return Dim{}, err
			}
			dim.LenRef = ref
			return dim, nil
		}

		minLen, maxLen, err := parseLenBounds(name, spec, 0, 16)
		if err != nil {
			return Dim{}, err
		}
		dim.MinLen = minLen
		dim.MaxLen = maxLen
		return dim, nil

	default:
		return Dim{}, ErrUnsupportedInputType(name, spec.Type)
	}
}

func resolveLenRef(name, ref string, prev []Dim) (int, error) {
	for i, dim := range prev {
		if dim.Name != ref {
			continue
		}
		if dim.Kind != KindInteger {
			return 0, ErrBadLenRef(name, fmt.Sprintf("%s is not an integer input", ref))
		}
		if dim.Min < 0 {
			return 0, ErrBadLenRef(name, fmt.Sprintf("%s allows negative values", ref))
		}
		return i, nil
	}
	return 0, ErrBadLenRef(name, fmt.Sprintf("%s is not declared before %s", ref, name))
}

func parseLenBounds(name string, spec conf.InputSpec, defMin, defMax int) (int, int, error) {
	minLen, maxLen := defMin, defMax
	if spec.MinLen != nil {
		minLen = *spec.MinLen
	}
	if spec.MaxLen != nil {
		maxLen = *spec.MaxLen
	}
	if minLen < 0 {
		return 0, 0, ErrUnsatisfiableShape(name, fmt.Sprintf("min_len(%d) < 0", minLen))
	}
	if minLen > maxLen {
		return 0, 0, ErrUnsatisfiableShape(name,
			fmt.Sprintf("min_len(%d) > max_len(%d)", minLen, maxLen))
	}
	return minLen, maxLen, nil
}

// parseBounds resolves min/max from explicit fields plus an
// optional range expression like ">= 1, <= 9". Range constraints
// only narrow the explicit or implicit bounds.
func parseBounds(name string, spec conf.InputSpec) (int64, int64, error) {
	min := int64(implicitMin)
	max := int64(implicitMax)
	if spec.Min != nil {
		min = *spec.Min
	}
	if spec.Max != nil {
		max = *spec.Max
	}

	if spec.Range != "" {
		for _, token := range strings.FieldsFunc(spec.Range, func(r rune) bool {
			return r == ',' || r == '&'
		}) {
			token = strings.TrimSpace(token)
			if token == "" {
				continue
			}

			op, value, ok := parseConstraint(token)
			if !ok {
				return 0, 0, ErrBadRangeExpr(name, token)
			}

			switch op {
			case ">":
				min = maxInt64(min, value+1)
			case ">=":
				min = maxInt64(min, value)
			case "<":
				max = minInt64(max, value-1)
			case "<=":
				max = minInt64(max, value)
			case "==":
				min = value
				max = value
			}
		}
	}

	if min > max {
		return 0, 0, ErrUnsatisfiableShape(name, fmt.Sprintf("min(%d) > max(%d)", min, max))
	}
	return min, max, nil
}

var constraintRe = regexp.MustCompile(`^(<=|>=|<|>|==)\s*(-?\d+)$`)

func parseConstraint(token string) (string, int64, bool) {
	caps := constraintRe.FindStringSubmatch(token)
	if caps == nil {
		return "", 0, false
	}
	value, err := strconv.ParseInt(caps[2], 10, 64)
	if err != nil {
		return "", 0, false
	}
	return caps[1], value, true
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func minInt64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
