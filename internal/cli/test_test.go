package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const passingScenario = `name: streak
description: "Four right answers unlock the next variant"
curriculum: tone-pairs
flow:
  - card: "C4|G4:compare-0"
    repeat: 4
    advance: 1m
assertions:
  - type: unlocked_contains
    cards: ["C4|G4:compare-1"]
  - type: history_count
    count: 4
`

const failingScenario = `name: wishful
description: "Expects an unlock after one answer"
curriculum: tone-pairs
flow:
  - card: "C4|G4:compare-0"
assertions:
  - type: unlocked_contains
    cards: ["C4|G4:compare-1"]
`

func scenarioDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		writeFile(t, dir, name, content)
	}
	return dir
}

func TestTestCommand_MissingArgs(t *testing.T) {
	_, err := execute(t, t.TempDir(), "test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestTestCommand_NonExistentDir(t *testing.T) {
	_, err := execute(t, t.TempDir(), "test", "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "scenarios directory not found")
}

func TestTestCommand_Empty(t *testing.T) {
	out, err := execute(t, t.TempDir(), "test", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found")
}

func TestTestCommand_PassAndFail(t *testing.T) {
	dir := scenarioDir(t, map[string]string{
		"streak.yaml":  passingScenario,
		"wishful.yaml": failingScenario,
		"notes.txt":    "ignored",
	})

	out, err := execute(t, t.TempDir(), "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✓ streak")
	assert.Contains(t, out, "✗ wishful")
	assert.Contains(t, out, "Assertion failed: unlocked_contains")
	assert.Contains(t, out, "Test Summary: 1 passed, 1 failed, 2 total")
}

func TestTestCommand_FilterJSON(t *testing.T) {
	dir := scenarioDir(t, map[string]string{
		"streak.yaml":  passingScenario,
		"wishful.yaml": failingScenario,
	})

	out, err := execute(t, t.TempDir(), "--format", "json", "test", dir, "--filter", "str*")
	require.NoError(t, err)

	var result TestResult
	resp := decode(t, out, &result)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 1, result.Total)
	assert.Equal(t, 1, result.Passed)
	assert.Equal(t, "streak", result.Scenarios[0].Name)
}

func TestTestCommand_FailingJSON(t *testing.T) {
	dir := scenarioDir(t, map[string]string{"wishful.yaml": failingScenario})

	out, err := execute(t, t.TempDir(), "--format", "json", "test", dir)
	require.Error(t, err)

	var result TestResult
	resp := decode(t, out, &result)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeTestFailed, resp.Error.Code)
	assert.Equal(t, 1, result.Failed)
}

func TestTestCommand_LoadError(t *testing.T) {
	dir := scenarioDir(t, map[string]string{"broken.yaml": "name: broken\nflow: nope\n"})

	out, err := execute(t, t.TempDir(), "test", dir)
	require.Error(t, err)
	assert.Contains(t, out, "✗ broken.yaml")
	assert.Contains(t, out, "failed to load scenario")
}

func TestTestCommand_GoldenUpdateAndCompare(t *testing.T) {
	dir := scenarioDir(t, map[string]string{"streak.yaml": passingScenario})
	goldenPath := filepath.Join(dir, "golden", "streak.golden")

	_, err := execute(t, t.TempDir(), "test", dir, "--update")
	require.NoError(t, err)

	data, err := os.ReadFile(goldenPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "variant_unlocked pair_streak C4|G4:compare-1")

	out, err := execute(t, t.TempDir(), "--format", "json", "test", dir)
	require.NoError(t, err)
	var result TestResult
	decode(t, out, &result)
	assert.True(t, result.Scenarios[0].Golden)
	assert.True(t, result.Scenarios[0].Pass)

	require.NoError(t, os.WriteFile(goldenPath, []byte("stale\n"), 0o644))
	out, err = execute(t, t.TempDir(), "test", dir)
	require.Error(t, err)
	assert.Contains(t, out, "does not match golden file")
}
