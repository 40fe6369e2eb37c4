package conf

import "runtime"

// Config is the top-level nado.toml document. Defaults are
// tuned for bounded-integer competitive-programming problems.
type Config struct {
	Version    int       `toml:"version"`
	Problem    Problem   `toml:"problem"`
	Origin     Program   `toml:"origin"`
	Candidates []Program `toml:"candidate"`
	Engine     Engine    `toml:"engine"`
	Limits     Limits    `toml:"limits"`
	Pbt        Pbt       `toml:"pbt"`
	Normalize  Normalize `toml:"normalize"`
}

type Problem struct {
	// comparison strategy: "exact", "tokenized" or "float_epsilon"
	Compare      string               `toml:"compare"`
	FloatEpsilon float64              `toml:"float_epsilon"`
	Inputs       map[string]InputSpec `toml:"inputs"`
}

// InputSpec declares the shape of one input dimension.
// Inputs are processed in sorted name order.
type InputSpec struct {
	Type  string `toml:"type"` // "integer", "string" or "vector"
	Range string `toml:"range"`
	Min   *int64 `toml:"min"`
	Max   *int64 `toml:"max"`

	// string inputs
	Alphabet string `toml:"alphabet"`
	MinLen   *int   `toml:"min_len"`
	MaxLen   *int   `toml:"max_len"`

	// vector inputs: dependent length, names an integer input
	Len string `toml:"len"`
}

// Program identifies how to invoke the origin or a candidate.
// A non-empty Image selects the docker backend.
type Program struct {
	Name      string   `toml:"name"`
	Cmd       []string `toml:"cmd"`
	Image     string   `toml:"image"`
	TimeoutMs int64    `toml:"timeout_ms"` // 0 inherits engine.timeout_ms
	Mounts    []string `toml:"mounts"`     // host:container[:mode]
}

type Engine struct {
	Cases           int    `toml:"cases"`
	Seed            uint64 `toml:"seed"`
	Workers         int    `toml:"workers"`
	WorkersDocker   int    `toml:"workers_docker"`
	TimeoutMs       int64  `toml:"timeout_ms"`
	StopOnFirstFail bool   `toml:"stop_on_first_fail"`
	MaxOutputBytes  int64  `toml:"max_output_bytes"` // 0 = unlimited
}

// Limits are rlimits applied to local child processes.
// Zero means the limit is not set.
type Limits struct {
	CpuSeconds uint64 `toml:"cpu_seconds"`
	MemoryMb   uint64 `toml:"memory_mb"`
	FileSizeKb uint64 `toml:"file_size_kb"`
	Nofile     uint64 `toml:"nofile"`
	Nproc      uint64 `toml:"nproc"`
}

type Pbt struct {
	Enabled           bool    `toml:"enabled"`
	EdgeCaseRatio     float64 `toml:"edge_case_ratio"`
	PartitionRatio    float64 `toml:"partition_ratio"`
	MaxCartesianCases int     `toml:"max_cartesian_cases"`
}

type Normalize struct {
	TrimTrailingWs     bool `toml:"trim_trailing_ws"`
	IgnoreFinalNewline bool `toml:"ignore_final_newline"`
}

const (
	CompareExact        = "exact"
	CompareTokenized    = "tokenized"
	CompareFloatEpsilon = "float_epsilon"
)

// Default returns a config with every knob at its documented default.
// Unmarshalling a document on top of it keeps defaults for absent keys.
func Default() Config {
	return Config{
		Problem: Problem{
			Compare:      CompareExact,
			FloatEpsilon: 1e-6,
		},
		Engine: Engine{
			Cases:           1000,
			Seed:            42,
			Workers:         runtime.NumCPU(),
			WorkersDocker:   2,
			TimeoutMs:       1000,
			StopOnFirstFail: true,
		},
		Pbt: Pbt{
			Enabled:           true,
			EdgeCaseRatio:     0.2,
			PartitionRatio:    0.2,
			MaxCartesianCases: 128,
		},
		Normalize: Normalize{
			TrimTrailingWs:     true,
			IgnoreFinalNewline: true,
		},
	}
}
