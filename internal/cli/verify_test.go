package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/querygen/internal/enumerate"
	"github.com/roach88/querygen/internal/ir"
	"github.com/roach88/querygen/internal/store"
)

func TestVerify_UpToDate(t *testing.T) {
	output := filepath.Join(t.TempDir(), "helpers.go")
	_, _, err := executeCLI(t, "generate", "-o", output)
	require.NoError(t, err)

	stdout, _, err := executeCLI(t, "verify", "-o", output)
	require.NoError(t, err)
	assert.Contains(t, stdout, "✓ "+output+" is up to date")
}

func TestVerify_Missing(t *testing.T) {
	output := filepath.Join(t.TempDir(), "helpers.go")

	stdout, _, err := executeCLI(t, "verify", "-o", output)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "does not exist")
}

func TestVerify_DriftWithoutLedger(t *testing.T) {
	output := filepath.Join(t.TempDir(), "helpers.go")
	_, _, err := executeCLI(t, "generate", "-o", output)
	require.NoError(t, err)
	appendLine(t, output, "// hand edit\n")

	stdout, _, err := executeCLI(t, "--format", "json", "verify", "-o", output)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeDrift, resp.Error.Code)

	details, ok := resp.Error.Details.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, VerifyDrift, details["status"])
	assert.Equal(t, CauseUnknown, details["cause"])
}

func TestVerify_DriftEdited(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "helpers.go")
	ledger := filepath.Join(dir, "runs.db")

	_, _, err := executeCLI(t, "generate", "-o", output, "--ledger", ledger)
	require.NoError(t, err)
	appendLine(t, output, "// hand edit\n")

	stdout, _, err := executeCLI(t, "verify", "-o", output, "--ledger", ledger)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "differs from generator output")
	assert.Contains(t, stdout, "modified after the last recorded run")
}

func TestVerify_DriftGeneratorChanged(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "helpers.go")
	ledger := filepath.Join(dir, "runs.db")

	_, _, err := executeCLI(t, "generate", "-o", output, "--ledger", ledger, "--package", "alpha")
	require.NoError(t, err)

	stdout, _, err := executeCLI(t, "verify", "-o", output, "--ledger", ledger, "--package", "beta")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "the generator output changed")
	assert.NotContains(t, stdout, "enumerated cases changed")
}

func TestVerify_DriftCasesChanged(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "helpers.go")
	ledger := filepath.Join(dir, "runs.db")

	_, _, err := executeCLI(t, "generate", "-o", output, "--ledger", ledger,
		"--max-tags", "1", "--max-shared", "1")
	require.NoError(t, err)

	stdout, _, err := executeCLI(t, "verify", "-o", output, "--ledger", ledger)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "the generator output changed")
	assert.Contains(t, stdout, "enumerated cases changed since the last recorded run")

	stdout, _, err = executeCLI(t, "--format", "json", "verify", "-o", output, "--ledger", ledger)
	require.Error(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	require.NotNil(t, resp.Error)
	details, ok := resp.Error.Details.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, CauseGeneratorChanged, details["cause"])
	assert.Equal(t, true, details["cases_changed"])
}

func TestCasesChanged(t *testing.T) {
	cases := enumerate.Cases(ir.Bounds{MaxTags: 1, MaxShared: 1})
	hash, err := ir.CaseSetHash(cases)
	require.NoError(t, err)

	changed, err := casesChanged(cases, store.Run{})
	require.NoError(t, err)
	assert.Nil(t, changed, "runs without a case set hash are unknown")

	changed, err = casesChanged(cases, store.Run{CaseSetHash: hash})
	require.NoError(t, err)
	require.NotNil(t, changed)
	assert.False(t, *changed)

	changed, err = casesChanged(enumerate.Cases(ir.DefaultBounds), store.Run{CaseSetHash: hash})
	require.NoError(t, err)
	require.NotNil(t, changed)
	assert.True(t, *changed)
}

func TestVerify_LedgerWithoutRecord(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "helpers.go")
	ledger := filepath.Join(dir, "runs.db")

	_, _, err := executeCLI(t, "generate", "-o", output)
	require.NoError(t, err)
	appendLine(t, output, "// hand edit\n")

	_, _, err = executeCLI(t, "verify", "-o", output, "--ledger", ledger)
	require.Error(t, err)
	assert.NoFileExists(t, ledger, "verify must not create a ledger")
}

func TestClassifyDrift(t *testing.T) {
	assert.Equal(t, CauseGeneratorChanged, classifyDrift("abc", "abc"))
	assert.Equal(t, CauseEdited, classifyDrift("abc", "def"))
}

func appendLine(t *testing.T, path, line string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0)
	require.NoError(t, err)
	_, err = f.WriteString(line)
	require.NoError(t, err)
	require.NoError(t, f.Close())
}
