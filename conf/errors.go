package conf

import (
	"fmt"

	"github.com/nado-dev/nado/nadoerr"
)

const ErrCodeConfigNotFound = "config_not_found"

func ErrConfigNotFound(path string) *nadoerr.Error {
	return nadoerr.New(
		ErrCodeConfigNotFound,
		fmt.Sprintf("config not found: %s", path),
	)
}

const ErrCodeConfigParse = "config_parse_failure"

func ErrConfigParse() *nadoerr.Error {
	return nadoerr.New(
		ErrCodeConfigParse,
		"config document is not valid TOML",
	)
}

const ErrCodeNoCandidates = "no_candidates"

func ErrNoCandidates() *nadoerr.Error {
	return nadoerr.New(
		ErrCodeNoCandidates,
		"at least one candidate is required",
	)
}

const ErrCodeEmptyCmd = "empty_cmd"

func ErrEmptyCmd(program string) *nadoerr.Error {
	return nadoerr.New(
		ErrCodeEmptyCmd,
		fmt.Sprintf("program %s declares neither cmd nor image", program),
	)
}

const ErrCodeInvalidMount = "invalid_mount"

func ErrInvalidMount(mount string) *nadoerr.Error {
	return nadoerr.New(
		ErrCodeInvalidMount,
		fmt.Sprintf("invalid mount syntax: %s, expected host:container[:mode]", mount),
	)
}

const ErrCodeInvalidCompareMode = "invalid_compare_mode"

func ErrInvalidCompareMode(detail string) *nadoerr.Error {
	return nadoerr.New(
		ErrCodeInvalidCompareMode,
		fmt.Sprintf("invalid comparison configuration: %s", detail),
	)
}

const ErrCodeInvalidEngineOption = "invalid_engine_option"

func ErrInvalidEngineOption(detail string) *nadoerr.Error {
	return nadoerr.New(
		ErrCodeInvalidEngineOption,
		fmt.Sprintf("invalid [engine] option: %s", detail),
	)
}

const ErrCodeInvalidPbtConfig = "invalid_pbt_config"

func ErrInvalidPbtConfig(detail string) *nadoerr.Error {
	return nadoerr.New(
		ErrCodeInvalidPbtConfig,
		fmt.Sprintf("invalid [pbt] config: %s", detail),
	)
}
