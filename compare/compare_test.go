package compare_test

import (
	"testing"

	"github.com/nado-dev/nado/compare"
	"github.com/nado-dev/nado/conf"
	"github.com/stretchr/testify/require"
)

func allNormalize() conf.Normalize {
	return conf.Normalize{TrimTrailingWs: true, IgnoreFinalNewline: true}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	inputs := []string{
		"8\n",
		"8",
		"a b  \t\nc\r\n\r\n",
		"  leading stays\ntrailing goes   \n\n\n",
		"",
	}
	for _, in := range inputs {
		once := compare.Normalize([]byte(in), allNormalize())
		twice := compare.Normalize(once, allNormalize())
		require.Equal(t, string(once), string(twice), "input %q", in)
	}
}

func TestNormalizeRules(t *testing.T) {
	out := compare.Normalize([]byte("8  \r\n9\t\n\n"), allNormalize())
	require.Equal(t, "8\n9", string(out))

	// with everything disabled only line endings are unified
	out = compare.Normalize([]byte("8  \r\n"), conf.Normalize{})
	require.Equal(t, "8  \n", string(out))
}

func TestExactComparer(t *testing.T) {
	cmp := compare.New(conf.Problem{Compare: conf.CompareExact}, allNormalize())

	ok, _ := cmp.Equal([]byte("8\n"), []byte("8"))
	require.True(t, ok)

	ok, _ = cmp.Equal([]byte("8 \r\n"), []byte("8\n"))
	require.True(t, ok)

	ok, detail := cmp.Equal([]byte("8\n"), []byte("-2\n"))
	require.False(t, ok)
	require.Contains(t, detail, "line 1")

	// internal whitespace is significant in exact mode
	ok, _ = cmp.Equal([]byte("1 2\n"), []byte("1  2\n"))
	require.False(t, ok)
}

func TestTokenizedComparer(t *testing.T) {
	cmp := compare.New(conf.Problem{Compare: conf.CompareTokenized}, allNormalize())

	ok, _ := cmp.Equal([]byte("1 2 3\n"), []byte("1\n2\n 3"))
	require.True(t, ok)

	ok, detail := cmp.Equal([]byte("1 2 3"), []byte("1 2"))
	require.False(t, ok)
	require.Contains(t, detail, "token count")

	ok, detail = cmp.Equal([]byte("1 2 3"), []byte("1 5 3"))
	require.False(t, ok)
	require.Contains(t, detail, "token 2")
}

func TestFloatEpsilonComparer(t *testing.T) {
	cmp := compare.New(conf.Problem{
		Compare:      conf.CompareFloatEpsilon,
		FloatEpsilon: 1e-6,
	}, allNormalize())

	ok, _ := cmp.Equal([]byte("3.1415926\n"), []byte("3.14159261\n"))
	require.True(t, ok)

	ok, _ = cmp.Equal([]byte("3.14\n"), []byte("3.15\n"))
	require.False(t, ok)

	// non-numeric tokens fall back to exact matching
	ok, _ = cmp.Equal([]byte("YES 1.0"), []byte("YES 1.0000001"))
	require.True(t, ok)

	ok, _ = cmp.Equal([]byte("YES 1.0"), []byte("NO 1.0"))
	require.False(t, ok)
}
