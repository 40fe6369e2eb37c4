package conf_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nado-dev/nado/conf"
	"github.com/stretchr/testify/require"
)

const minimalDoc = `
[problem.inputs.a]
type = "integer"
min = 1
max = 9

[origin]
cmd = ["./ref"]

[[candidate]]
name = "alpha"
cmd = ["./alpha"]
`

func TestParseAppliesDefaults(t *testing.T) {
	cfg, err := conf.Parse([]byte(minimalDoc))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	require.Equal(t, 1000, cfg.Engine.Cases)
	require.Equal(t, uint64(42), cfg.Engine.Seed)
	require.Equal(t, int64(1000), cfg.Engine.TimeoutMs)
	require.True(t, cfg.Engine.StopOnFirstFail)
	require.Equal(t, 2, cfg.Engine.WorkersDocker)

	require.True(t, cfg.Pbt.Enabled)
	require.InDelta(t, 0.2, cfg.Pbt.EdgeCaseRatio, 1e-12)
	require.InDelta(t, 0.2, cfg.Pbt.PartitionRatio, 1e-12)
	require.Equal(t, 128, cfg.Pbt.MaxCartesianCases)

	require.True(t, cfg.Normalize.TrimTrailingWs)
	require.True(t, cfg.Normalize.IgnoreFinalNewline)
	require.Equal(t, conf.CompareExact, cfg.Problem.Compare)
}

func TestParseCandidateArray(t *testing.T) {
	doc := minimalDoc + `
[[candidate]]
cmd = ["./beta"]
`
	cfg, err := conf.Parse([]byte(doc))
	require.NoError(t, err)
	require.Len(t, cfg.Candidates, 2)
	require.Equal(t, "alpha", cfg.CandidateName(0))
	require.Equal(t, "candidate-2", cfg.CandidateName(1))
}

func TestParseSingleCandidateTable(t *testing.T) {
	doc := `
[problem.inputs.a]
type = "integer"

[origin]
cmd = ["./ref"]

[candidate]
cmd = ["./only"]

[engine]
cases = 5
`
	cfg, err := conf.Parse([]byte(doc))
	require.NoError(t, err)
	require.Len(t, cfg.Candidates, 1)
	require.Equal(t, []string{"./only"}, cfg.Candidates[0].Cmd)
	require.Equal(t, 5, cfg.Engine.Cases)
}

func TestValidateRejectsMissingCandidates(t *testing.T) {
	doc := `
[origin]
cmd = ["./ref"]
`
	cfg, err := conf.Parse([]byte(doc))
	require.NoError(t, err)
	err = cfg.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "at least one candidate")
}

func TestValidateRejectsBadRatios(t *testing.T) {
	doc := minimalDoc + `
[pbt]
edge_case_ratio = 0.7
partition_ratio = 0.7
`
	cfg, err := conf.Parse([]byte(doc))
	require.NoError(t, err)
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsBadMount(t *testing.T) {
	doc := `
[problem.inputs.a]
type = "integer"

[origin]
cmd = ["./ref"]

[[candidate]]
image = "python:3.12-alpine"
cmd = ["python3", "/src/sol.py"]
mounts = ["justonepart"]
`
	cfg, err := conf.Parse([]byte(doc))
	require.NoError(t, err)
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsUnknownCompareMode(t *testing.T) {
	doc := minimalDoc + `
[problem]
compare = "fuzzy"
`
	cfg, err := conf.Parse([]byte(doc))
	require.NoError(t, err)
	require.Error(t, cfg.Validate())
}

func TestResolvePrefersExplicitPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.toml")
	require.NoError(t, os.WriteFile(path, []byte(minimalDoc), 0o644))

	resolved, err := conf.Resolve(path)
	require.NoError(t, err)
	require.Equal(t, path, resolved)

	_, err = conf.Resolve(filepath.Join(dir, "missing.toml"))
	require.Error(t, err)
}

func TestReadReturnsConfigDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nado.toml")
	require.NoError(t, os.WriteFile(path, []byte(minimalDoc), 0o644))

	cfg, confDir, err := conf.Read(path)
	require.NoError(t, err)
	require.Len(t, cfg.Candidates, 1)

	abs, err := filepath.Abs(dir)
	require.NoError(t, err)
	require.Equal(t, abs, confDir)
}
