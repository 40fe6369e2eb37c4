package gen

import (
	"fmt"

	"github.com/nado-dev/nado/nadoerr"
)

const ErrCodeEmptyInputs = "empty_inputs"

func ErrEmptyInputs() *nadoerr.Error {
	return nadoerr.New(
		ErrCodeEmptyInputs,
		"problem.inputs must not be empty",
	)
}

const ErrCodeUnsupportedInputType = "unsupported_input_type"

func ErrUnsupportedInputType(name, kind string) *nadoerr.Error {
	return nadoerr.New(
		ErrCodeUnsupportedInputType,
		fmt.Sprintf("unsupported input type %q for %s", kind, name),
	)
}

const ErrCodeUnsatisfiableShape = "unsatisfiable_shape"

func ErrUnsatisfiableShape(name, detail string) *nadoerr.Error {
	return nadoerr.New(
		ErrCodeUnsatisfiableShape,
		fmt.Sprintf("input %s is unsatisfiable: %s", name, detail),
	)
}

const ErrCodeBadRangeExpr = "bad_range_expression"

func ErrBadRangeExpr(name, token string) *nadoerr.Error {
	return nadoerr.New(
		ErrCodeBadRangeExpr,
		fmt.Sprintf("unsupported range expression token for %s: %s", name, token),
	)
}

const ErrCodeBadLenRef = "bad_len_reference"

func ErrBadLenRef(name, detail string) *nadoerr.Error {
	return nadoerr.New(
		ErrCodeBadLenRef,
		fmt.Sprintf("vector %s has an invalid len reference: %s", name, detail),
	)
}
