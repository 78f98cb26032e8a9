package cli

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/mathsheet/internal/model"
	"github.com/ppiankov/mathsheet/internal/sampler"
)

func TestGenerateCommand_WritesPDF(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	out := filepath.Join(t.TempDir(), "quiz.pdf")

	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetArgs([]string{"generate", "--a", "1-12", "--ops", "×÷", "--pages", "2", "--seed", "5", "--no-cache", "--out", out})
	require.NoError(t, Execute())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-1.")))
	assert.Contains(t, string(data), "/Count 4")
	assert.Contains(t, stdout.String(), out)
}

func TestGenerateCommand_Unsatisfiable(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	out := filepath.Join(t.TempDir(), "never.pdf")

	rootCmd.SetArgs([]string{"generate", "--a", "1", "--b", "0", "--ops", "/", "--seed", "1", "--no-cache", "--out", out})
	err := Execute()
	require.Error(t, err)
	assert.ErrorIs(t, err, sampler.ErrUnsatisfiable)
	assert.True(t, IsReported(err), "failure details already went to stderr")
	assert.NoFileExists(t, out)
}

func TestIsReported(t *testing.T) {
	assert.False(t, IsReported(nil))
	assert.False(t, IsReported(errors.New("plain")))

	err := fmt.Errorf("outer: %w", &reportedError{err: sampler.ErrUnsatisfiable})
	assert.True(t, IsReported(err))
	assert.ErrorIs(t, err, sampler.ErrUnsatisfiable)
	assert.Equal(t, "outer: "+sampler.ErrUnsatisfiable.Error(), err.Error())
}

func TestPrintFailure_EchoesInputs(t *testing.T) {
	gen := model.DefaultGenerationConfig()
	gen.ASpec = "7"
	gen.OpsSpec = "÷"

	var buf bytes.Buffer
	printFailure(&buf, &sampler.GenerationError{Attempts: sampler.MaxAttempts}, gen, "abc")

	got := buf.String()
	assert.Contains(t, got, "Could not generate problems with these constraints.")
	assert.Contains(t, got, "a:                7")
	assert.Contains(t, got, "ops:              ÷")
	assert.Contains(t, got, "pages:            abc")
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".mathsheet", "config.yaml")
	require.NoError(t, writeDefaultConfig(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# Mathsheet Configuration File"))

	var cfg model.Config
	require.NoError(t, yaml.Unmarshal(data, &cfg))
	assert.Equal(t, model.DefaultConfig().Worksheet, cfg.Worksheet)
	assert.Equal(t, model.DefaultConfig().Cache, cfg.Cache)

	err = writeDefaultConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestVersionCommand(t *testing.T) {
	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetArgs([]string{"version"})
	require.NoError(t, Execute())
	assert.Equal(t, "mathsheet "+Version+"\n", stdout.String())
}

func TestBatchOutputDir(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Output.Dir = "from-config"

	assert.Equal(t, "flag-dir", batchOutputDir("flag-dir", cfg))
	assert.Equal(t, "from-config", batchOutputDir("", cfg))

	cfg.Output.Dir = ""
	assert.Equal(t, ".", batchOutputDir("", cfg))
}

func TestBatchCommand_UsesConfiguredOutputDir(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := filepath.Join(t.TempDir(), "sheets")
	t.Setenv("MATHSHEET_OUTPUT_DIR", dir)

	jobs := filepath.Join(t.TempDir(), "jobs.yaml")
	require.NoError(t, os.WriteFile(jobs, []byte("jobs:\n  - name: one\n    seed: 1\n  - name: two\n    seed: 2\n"), 0644))

	outputDir = ""
	rootCmd.SetArgs([]string{"batch", jobs, "--no-cache"})
	require.NoError(t, Execute())

	assert.FileExists(t, filepath.Join(dir, "one.pdf"))
	assert.FileExists(t, filepath.Join(dir, "two.pdf"))
}
