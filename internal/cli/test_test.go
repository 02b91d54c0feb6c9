package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const shippedScenarios = "../harness/testdata/scenarios"

// copyScenario copies a shipped scenario file into dir.
func copyScenario(t *testing.T, dir, name string) {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(shippedScenarios, name))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
}

const failingScenario = `
name: off_by_one
description: wrong expectation
family: i
cases:
  - nu: 0
    z: [1, 1]
    expect:
      - [1.9376084768060292, 0.4965299476091221]
`

func TestTest_ShippedScenariosPass(t *testing.T) {
	stdout, _, code := execute(t, "test", shippedScenarios)
	require.Equal(t, ExitSuccess, code, stdout)

	assert.Contains(t, stdout, "\u2713 iv_batch")
	assert.Contains(t, stdout, "Test Summary: 4 passed, 0 failed, 4 total")
	assert.Contains(t, stdout, "\u2713 All scenarios passed")
}

func TestTest_JSON(t *testing.T) {
	stdout, _, code := execute(t, "--format", "json", "test", shippedScenarios, "--filter", "iv_*")
	require.Equal(t, ExitSuccess, code, stdout)

	resp := decodeResponse(t, stdout)
	assert.Equal(t, "ok", resp.Status)

	var result TestResult
	decodeData(t, resp, &result)
	assert.Equal(t, 1, result.Total)
	require.Len(t, result.Scenarios, 1)
	assert.Equal(t, "iv_batch", result.Scenarios[0].Name)
	assert.Equal(t, "iv_batch", result.Scenarios[0].RunID, "throwaway stores name runs after the scenario")
	assert.True(t, result.Scenarios[0].Pass)
}

func TestTest_FailureExitCode(t *testing.T) {
	dir := t.TempDir()
	copyScenario(t, dir, "iv_batch.yaml")
	writeFile(t, dir, "off_by_one.yaml", failingScenario)

	stdout, _, code := execute(t, "--format", "json", "test", dir)
	assert.Equal(t, ExitFailure, code)

	resp := decodeResponse(t, stdout)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeScenarioFailed, resp.Error.Code)
	assert.Equal(t, "1 scenario(s) failed", resp.Error.Message)

	var result TestResult
	decodeData(t, resp, &result)
	assert.Equal(t, 1, result.Passed)
	assert.Equal(t, 1, result.Failed)
	for _, s := range result.Scenarios {
		if s.Name == "off_by_one" {
			assert.False(t, s.Pass)
			require.NotEmpty(t, s.Errors)
			assert.Contains(t, s.Errors[0], "values[0]")
		}
	}
}

func TestTest_LoadErrorFailsScenario(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "broken.yaml", "name: broken\ndescription: d\nfamily: i\ncases: []\n")

	stdout, _, code := execute(t, "test", dir)
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, stdout, "\u2717 broken.yaml")
	assert.Contains(t, stdout, "failed to load scenario")
}

func TestTest_Golden(t *testing.T) {
	dir := t.TempDir()
	copyScenario(t, dir, "iv_batch.yaml")

	stdout, _, code := execute(t, "test", dir, "--update")
	require.Equal(t, ExitSuccess, code, stdout)
	assert.Contains(t, stdout, "(golden updated)")

	golden := filepath.Join(dir, "golden", "iv_batch.golden")
	want, err := os.ReadFile("../harness/testdata/golden/iv_batch.golden")
	require.NoError(t, err)
	got, err := os.ReadFile(golden)
	require.NoError(t, err)
	assert.Equal(t, string(want), string(got))

	stdout, _, code = execute(t, "--format", "json", "test", dir)
	require.Equal(t, ExitSuccess, code, stdout)
	var result TestResult
	decodeData(t, decodeResponse(t, stdout), &result)
	assert.Equal(t, "match", result.Scenarios[0].Golden)

	require.NoError(t, os.WriteFile(golden, []byte(`{"scenario":"tampered"}`), 0o644))
	stdout, _, code = execute(t, "test", dir)
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, stdout, "report does not match golden file")
}

func TestTest_RecordsRuns(t *testing.T) {
	db := filepath.Join(t.TempDir(), "log.db")

	stdout, _, code := execute(t, "test", shippedScenarios, "--db", db)
	require.Equal(t, ExitSuccess, code, stdout)

	stdout, _, code = execute(t, "--format", "json", "history", "--db", db)
	require.Equal(t, ExitSuccess, code, stdout)
	var list RunList
	decodeData(t, decodeResponse(t, stdout), &list)

	var labels []string
	for _, r := range list.Runs {
		labels = append(labels, r.Label)
	}
	assert.Equal(t, []string{"invalid_input", "iv_batch", "negative_orders", "warnings"}, labels)

	stdout, _, code = execute(t, "replay", "--all", "--db", db)
	assert.Equal(t, ExitSuccess, code, stdout)
	assert.Contains(t, stdout, "\u2713 4 run(s) reproduced exactly")
}

func TestTest_CommandErrors(t *testing.T) {
	_, _, code := execute(t, "test", filepath.Join(t.TempDir(), "missing"))
	assert.Equal(t, ExitCommandError, code)

	stdout, _, code := execute(t, "test", t.TempDir())
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stdout, "Error [E003]")

	stdout, _, code = execute(t, "test", shippedScenarios, "--filter", "[")
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stdout, "invalid filter pattern")
}

func TestFindScenarioFiles_SkipsGolden(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", "")
	writeFile(t, dir, "b.yml", "")
	writeFile(t, dir, "notes.txt", "")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "golden"), 0o755))
	writeFile(t, filepath.Join(dir, "golden"), "c.yaml", "")

	files, err := findScenarioFiles(dir, "")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.yaml"), filepath.Join(dir, "b.yml")}, files)

	assert.Equal(t, filepath.Join(dir, "golden", "a.golden"), goldenFilePath(filepath.Join(dir, "a.yaml")))
}
