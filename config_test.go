package main

import (
	"errors"
	"path/filepath"
	"testing"

	flag "github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFile(t *testing.T) {
	name := writeFile(t, "config.json", `{
		"prooffile": "proofs.json",
		"mixedfile": "mixed.json",
		"question": "RK_2023.question-1",
		"log": {"level": "info"}
	}`)

	cfg, err := LoadConfig(cmdCompare, []string{"--config", name})
	require.NoError(t, err)
	assert.Equal(t, "proofs.json", cfg.ProofFile)
	assert.Equal(t, "mixed.json", cfg.MixedFile)
	assert.Equal(t, defaultGroup, cfg.Group)
	assert.Equal(t, "RK_2023.question-1", cfg.Question)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, defaultLogOutput, cfg.Log.Output)
	assert.NoError(t, cfg.validateCompare())
}

func TestLoadConfigPrecedence(t *testing.T) {
	name := writeFile(t, "config.json", `{"prooffile": "from-file.json", "mixedfile": "from-file.json"}`)
	t.Setenv("MIXCHECK_MIXEDFILE", "from-env.json")
	t.Setenv("MIXCHECK_GROUP", "0000.2")

	cfg, err := LoadConfig(cmdCompare, []string{"-c", name, "-p", "from-flag.json", "--group", "0000.3", "-v"})
	require.NoError(t, err)
	assert.Equal(t, "from-flag.json", cfg.ProofFile, "flag over file")
	assert.Equal(t, "from-env.json", cfg.MixedFile, "env over file")
	assert.Equal(t, "0000.3", cfg.Group, "flag over env")
	assert.True(t, cfg.Verbose)
}

func TestLoadConfigWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig(cmdCompare, []string{"--prooffile", "p.json", "--mixedfile", "m.json"})
	require.NoError(t, err, "default config file may be absent")
	assert.Equal(t, "p.json", cfg.ProofFile)
	assert.Equal(t, "m.json", cfg.MixedFile)

	cfg, err = LoadConfig(cmdCompare, nil)
	require.NoError(t, err)
	assert.ErrorIs(t, cfg.validateCompare(), ErrMissingPath)
}

func TestLoadConfigExplicitFileMissing(t *testing.T) {
	_, err := LoadConfig(cmdCompare, []string{"--config", filepath.Join(t.TempDir(), "config.json")})
	assert.ErrorContains(t, err, "error reading config")
}

func TestLoadConfigBadArgs(t *testing.T) {
	_, err := LoadConfig(cmdCompare, []string{"--no-such-flag"})
	assert.Error(t, err)

	_, err = LoadConfig(cmdCompare, []string{"extra"})
	assert.ErrorContains(t, err, `unexpected argument "extra"`)

	_, err = LoadConfig(cmdCompare, []string{"--help"})
	assert.True(t, errors.Is(err, flag.ErrHelp))
}

func TestLoadConfigMultiply(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig(cmdMultiply, nil)
	require.NoError(t, err)
	assert.Equal(t, defaultMultiplyInput, cfg.Multiply.Input)
	assert.Equal(t, defaultMultiplyOutput, cfg.Multiply.Output)
	assert.Equal(t, defaultMultiplyTimes, cfg.Multiply.Times)
	assert.NoError(t, cfg.validateMultiply())

	cfg, err = LoadConfig(cmdMultiply, []string{"-i", "in", "-w", "out", "-n", "0"})
	require.NoError(t, err)
	assert.Equal(t, "in", cfg.Multiply.Input)
	assert.Equal(t, "out", cfg.Multiply.Output)
	assert.ErrorIs(t, cfg.validateMultiply(), ErrInvalidTimes)

	_, err = LoadConfig(cmdMultiply, []string{"--prooffile", "p.json"})
	assert.Error(t, err, "compare flags are not accepted by multiply")
}
