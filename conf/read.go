package conf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Read loads, parses and validates the config document at path.
// The returned dir is the directory of the document; relative
// mount paths and program working directories resolve against it.
func Read(path string) (Config, string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, "", ErrConfigNotFound(path).SetDebug(err)
	}

	cfg, err := Parse(raw)
	if err != nil {
		return Config{}, "", err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, "", err
	}

	dir := filepath.Dir(path)
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	return cfg, dir, nil
}

// Parse decodes a TOML document on top of the defaults. Both a
// single [candidate] table and a [[candidate]] array are accepted.
func Parse(raw []byte) (Config, error) {
	cfg := Default()
	err := toml.Unmarshal(raw, &cfg)
	if err == nil {
		return cfg, nil
	}

	single, singleErr := parseSingleCandidate(raw)
	if singleErr != nil {
		return Config{}, ErrConfigParse().SetDebug(err)
	}
	return single, nil
}

// parseSingleCandidate retries a decode treating [candidate]
// as one table rather than an array of tables.
func parseSingleCandidate(raw []byte) (Config, error) {
	var candidateOnly struct {
		Candidate Program `toml:"candidate"`
	}
	if err := toml.Unmarshal(raw, &candidateOnly); err != nil {
		return Config{}, err
	}

	var doc map[string]any
	if err := toml.Unmarshal(raw, &doc); err != nil {
		return Config{}, err
	}
	delete(doc, "candidate")

	rest, err := toml.Marshal(doc)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()
	if err := toml.Unmarshal(rest, &cfg); err != nil {
		return Config{}, err
	}
	cfg.Candidates = []Program{candidateOnly.Candidate}
	return cfg, nil
}

// Resolve locates the config document: an explicit path argument
// wins, otherwise nado.toml in the current directory.
func Resolve(arg string) (string, error) {
	if arg != "" {
		if _, err := os.Stat(arg); err != nil {
			return "", ErrConfigNotFound(arg).SetDebug(err)
		}
		return arg, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", ErrConfigNotFound(".").SetDebug(err)
	}
	path := filepath.Join(cwd, "nado.toml")
	if _, err := os.Stat(path); err != nil {
		return "", ErrConfigNotFound(path).SetDebug(err)
	}
	return path, nil
}

// Validate checks everything that must hold before any
// generation or execution starts. Failures here are fatal.
func (c *Config) Validate() error {
	if len(c.Candidates) == 0 {
		return ErrNoCandidates()
	}

	if len(c.Origin.Cmd) == 0 && c.Origin.Image == "" {
		return ErrEmptyCmd("origin")
	}
	for i, cand := range c.Candidates {
		if len(cand.Cmd) == 0 && cand.Image == "" {
			return ErrEmptyCmd(candidateName(cand, i))
		}
	}

	for _, prog := range append([]Program{c.Origin}, c.Candidates...) {
		for _, mount := range prog.Mounts {
			if err := checkMountSyntax(mount); err != nil {
				return err
			}
		}
	}

	switch c.Problem.Compare {
	case CompareExact, CompareTokenized:
	case CompareFloatEpsilon:
		if c.Problem.FloatEpsilon <= 0 {
			return ErrInvalidCompareMode(
				fmt.Sprintf("float_epsilon must be > 0, got %g", c.Problem.FloatEpsilon))
		}
	default:
		return ErrInvalidCompareMode(c.Problem.Compare)
	}

	if c.Engine.Cases < 0 {
		return ErrInvalidEngineOption("cases must be >= 0")
	}
	if c.Engine.Workers < 1 {
		return ErrInvalidEngineOption("workers must be >= 1")
	}
	if c.Engine.WorkersDocker < 1 {
		return ErrInvalidEngineOption("workers_docker must be >= 1")
	}
	if c.Engine.TimeoutMs <= 0 {
		return ErrInvalidEngineOption("timeout_ms must be > 0")
	}
	if c.Engine.MaxOutputBytes < 0 {
		return ErrInvalidEngineOption("max_output_bytes must be >= 0")
	}

	if c.Pbt.Enabled {
		if c.Pbt.EdgeCaseRatio < 0 || c.Pbt.EdgeCaseRatio > 1 {
			return ErrInvalidPbtConfig("edge_case_ratio must be between 0.0 and 1.0")
		}
		if c.Pbt.PartitionRatio < 0 || c.Pbt.PartitionRatio > 1 {
			return ErrInvalidPbtConfig("partition_ratio must be between 0.0 and 1.0")
		}
		if c.Pbt.EdgeCaseRatio+c.Pbt.PartitionRatio > 1 {
			return ErrInvalidPbtConfig("edge_case_ratio + partition_ratio must be <= 1.0")
		}
		if c.Pbt.MaxCartesianCases <= 0 {
			return ErrInvalidPbtConfig("max_cartesian_cases must be > 0")
		}
	}

	return nil
}

// CandidateName returns the declared name of candidate idx or
// a positional fallback ("candidate-1", ...).
func (c *Config) CandidateName(idx int) string {
	return candidateName(c.Candidates[idx], idx)
}

func candidateName(p Program, idx int) string {
	if p.Name != "" {
		return p.Name
	}
	return fmt.Sprintf("candidate-%d", idx+1)
}

func checkMountSyntax(mount string) error {
	parts := strings.Split(mount, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return ErrInvalidMount(mount)
	}
	if strings.TrimSpace(parts[0]) == "" || strings.TrimSpace(parts[1]) == "" {
		return ErrInvalidMount(mount)
	}
	return nil
}
