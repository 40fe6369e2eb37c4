package gen_test

import (
	"bytes"
	"strconv"
	"strings"
	"testing"

	"github.com/nado-dev/nado/conf"
	"github.com/nado-dev/nado/gen"
	"github.com/stretchr/testify/require"
)

func intSpec(min, max int64) conf.InputSpec {
	return conf.InputSpec{Type: "integer", Min: &min, Max: &max}
}

func defaultPbt() conf.Pbt {
	return conf.Pbt{
		Enabled:           true,
		EdgeCaseRatio:     0.2,
		PartitionRatio:    0.2,
		MaxCartesianCases: 128,
	}
}

func TestParseRangeTokens(t *testing.T) {
	shape, err := gen.ParseShape(conf.Problem{Inputs: map[string]conf.InputSpec{
		"a": {Type: "integer", Range: ">= 1, <= 9"},
	}})
	require.NoError(t, err)

	dims := shape.Dims()
	require.Len(t, dims, 1)
	require.Equal(t, int64(1), dims[0].Min)
	require.Equal(t, int64(9), dims[0].Max)
}

func TestParseRangeNarrowsExplicitBounds(t *testing.T) {
	min, max := int64(5), int64(10)
	shape, err := gen.ParseShape(conf.Problem{Inputs: map[string]conf.InputSpec{
		"a": {Type: "integer", Range: "> 0", Min: &min, Max: &max},
	}})
	require.NoError(t, err)
	require.Equal(t, int64(5), shape.Dims()[0].Min)
	require.Equal(t, int64(10), shape.Dims()[0].Max)
}

func TestParseRejectsUnsatisfiableBounds(t *testing.T) {
	_, err := gen.ParseShape(conf.Problem{Inputs: map[string]conf.InputSpec{
		"a": {Type: "integer", Range: ">= 10, <= 5"},
	}})
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsatisfiable")
}

func TestParseRejectsUnknownType(t *testing.T) {
	_, err := gen.ParseShape(conf.Problem{Inputs: map[string]conf.InputSpec{
		"a": {Type: "matrix"},
	}})
	require.Error(t, err)
}

func TestParseRejectsForwardLenRef(t *testing.T) {
	// sorted name order puts "v" after "z", so the count is not
	// yet declared when the vector is parsed
	_, err := gen.ParseShape(conf.Problem{Inputs: map[string]conf.InputSpec{
		"v": {Type: "vector", Len: "z"},
		"z": intSpec(1, 5),
	}})
	require.Error(t, err)
}

func TestSeededGenerationIncludesEdges(t *testing.T) {
	shape, err := gen.ParseShape(conf.Problem{Inputs: map[string]conf.InputSpec{
		"a": intSpec(1, 9),
		"b": intSpec(1, 9),
	}})
	require.NoError(t, err)

	cases := gen.Generate(shape, 30, 42, defaultPbt())
	require.Len(t, cases, 30)

	var seen []string
	for _, c := range cases {
		seen = append(seen, strings.TrimSpace(string(c.Input)))
	}
	require.Contains(t, seen, "1 1")
	require.Contains(t, seen, "9 9")
}

func TestGenerationIsDeterministic(t *testing.T) {
	shape, err := gen.ParseShape(conf.Problem{Inputs: map[string]conf.InputSpec{
		"a": intSpec(-1000, 1000),
		"b": intSpec(0, 5),
		"s": {Type: "string", Alphabet: "xyz"},
	}})
	require.NoError(t, err)

	first := gen.Generate(shape, 200, 7, defaultPbt())
	second := gen.Generate(shape, 200, 7, defaultPbt())
	require.Equal(t, len(first), len(second))
	for i := range first {
		require.Equal(t, first[i].Tag, second[i].Tag)
		require.True(t, bytes.Equal(first[i].Input, second[i].Input),
			"case %d differs: %q vs %q", i, first[i].Input, second[i].Input)
	}
}

func TestCaseOrderIsEdgePartitionRandom(t *testing.T) {
	shape, err := gen.ParseShape(conf.Problem{Inputs: map[string]conf.InputSpec{
		"a": intSpec(1, 100),
	}})
	require.NoError(t, err)

	cases := gen.Generate(shape, 50, 42, defaultPbt())
	phase := 0
	order := []string{"edge", "partition", "seed"}
	for _, c := range cases {
		name := strings.SplitN(c.Tag, ":", 2)[0]
		for phase < len(order) && order[phase] != name {
			phase++
		}
		require.Less(t, phase, len(order), "unexpected tag order at %q", c.Tag)
	}
}

func TestDependentVectorLengthInvariant(t *testing.T) {
	shape, err := gen.ParseShape(conf.Problem{Inputs: map[string]conf.InputSpec{
		"a_n": intSpec(1, 5),
		"b_v": {Type: "vector", Len: "a_n", Min: &[]int64{0}[0], Max: &[]int64{100}[0]},
	}})
	require.NoError(t, err)

	for seed := uint64(0); seed < 1000; seed++ {
		tc := gen.CaseFromSeed(shape, seed)
		lines := strings.Split(strings.TrimRight(string(tc.Input), "\n"), "\n")
		require.Len(t, lines, 2, "seed %d: %q", seed, tc.Input)

		n, err := strconv.Atoi(strings.TrimSpace(lines[0]))
		require.NoError(t, err)
		require.Len(t, strings.Fields(lines[1]), n, "seed %d: %q", seed, tc.Input)
	}
}

func TestRandomCasesRespectBounds(t *testing.T) {
	shape, err := gen.ParseShape(conf.Problem{Inputs: map[string]conf.InputSpec{
		"a": intSpec(-3, 3),
	}})
	require.NoError(t, err)

	cases := gen.Generate(shape, 500, 99, conf.Pbt{Enabled: false})
	require.Len(t, cases, 500)
	for _, c := range cases {
		v, err := strconv.ParseInt(strings.TrimSpace(string(c.Input)), 10, 64)
		require.NoError(t, err)
		require.GreaterOrEqual(t, v, int64(-3))
		require.LessOrEqual(t, v, int64(3))
	}
}

func TestSeedTagRegeneratesIdenticalInput(t *testing.T) {
	shape, err := gen.ParseShape(conf.Problem{Inputs: map[string]conf.InputSpec{
		"a": intSpec(0, 1000000),
		"s": {Type: "string", MaxLen: &[]int{20}[0]},
	}})
	require.NoError(t, err)

	cases := gen.Generate(shape, 100, 1234, defaultPbt())
	for _, c := range cases {
		if !strings.HasPrefix(c.Tag, "seed:") {
			continue
		}
		seed, err := strconv.ParseUint(strings.TrimPrefix(c.Tag, "seed:"), 10, 64)
		require.NoError(t, err)
		regen := gen.CaseFromSeed(shape, seed)
		require.Equal(t, c.Input, regen.Input)
	}
}

func TestGenerateZeroCases(t *testing.T) {
	shape, err := gen.ParseShape(conf.Problem{Inputs: map[string]conf.InputSpec{
		"a": intSpec(1, 9),
	}})
	require.NoError(t, err)
	require.Empty(t, gen.Generate(shape, 0, 42, defaultPbt()))
}
