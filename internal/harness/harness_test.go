package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/roach88/querygen/internal/catalog"
)

// TestScenarios runs every checked-in scenario.
func TestScenarios(t *testing.T) {
	scenarios, err := LoadScenarios(filepath.Join("testdata", "scenarios"))
	require.NoError(t, err)

	for _, scenario := range scenarios {
		t.Run(scenario.Name, func(t *testing.T) {
			result, err := Run(scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestRun_ReportsTemplateMismatch(t *testing.T) {
	scenario := &Scenario{
		Name:        "wrong_templates",
		Description: "Expects a helper that does not apply",
		Case:        CaseSpec{Tags: 1, Whereable: 1},
		Expect:      Expectation{Templates: []string{"GetSingleton"}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "templates: expected [GetSingleton]")
}

func TestRun_ReportsArgumentMismatch(t *testing.T) {
	scenario := &Scenario{
		Name:        "wrong_kind",
		Description: "Bound shared type declared as placeholder",
		Case:        CaseSpec{Shared: 1},
		Expect: Expectation{
			Arguments: []ArgumentSpec{{Name: "scd1", Type: "SCD1", Kind: "placeholder"}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "scd1 SCD1 (filter)")
}

func TestRun_ReportsFilterMismatch(t *testing.T) {
	result, err := Run(&Scenario{
		Name:        "unexpected_filter",
		Description: "Bound type always filters",
		Case:        CaseSpec{Shared: 1},
		Expect:      Expectation{NoFilter: true, NoArguments: true},
	})
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Len(t, result.Errors, 2)
}

func TestRun_EmptyTemplatesExpectation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.cue")
	require.NoError(t, os.WriteFile(path, []byte(`templates: [{
	name: "Count", prefix: "Count", when: {tags: "some", whereable: "none"}
	body: "func Count${key}() {}"
}]`), 0644))

	result, err := Run(&Scenario{
		Name:        "shared_only",
		Description: "Tag-only catalog renders nothing for a shared-only case",
		Catalog:     path,
		Case:        CaseSpec{Shared: 1},
		Expect:      Expectation{Templates: []string{}},
	})
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Empty(t, result.Blocks)
}

func TestRun_InvalidCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.cue")
	require.NoError(t, os.WriteFile(path, []byte("templates: [{name: 1}]"), 0644))

	_, err := Run(&Scenario{Name: "bad", Description: "d", Catalog: path, Case: CaseSpec{Tags: 1}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load catalog")
}

func TestRun_InvalidCase(t *testing.T) {
	_, err := Run(&Scenario{Name: "bad", Description: "d", Case: CaseSpec{Tags: 1, Whereable: 2}})
	require.Error(t, err)
}

func TestHarness_LogsRenderedScenario(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	h := New(catalog.Default(), WithLogger(zap.New(core)))

	_, err := h.Run(&Scenario{Name: "logged", Description: "d", Case: CaseSpec{Tags: 1}})
	require.NoError(t, err)

	entries := logs.FilterMessage("scenario rendered").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "T1S0W0U0", fields["case"])
	assert.Equal(t, int64(7), fields["blocks"])
}

func TestResult_Concatenated(t *testing.T) {
	r := NewResult()
	r.AddBlock("A", "AT1", "func A() {}\n")
	r.AddBlock("B", "BT1", "func B() {}\n")

	assert.Equal(t, "func A() {}\n\nfunc B() {}\n", r.Concatenated())

	b, ok := r.Block("B")
	require.True(t, ok)
	assert.Equal(t, "BT1", b.Function)
	_, ok = r.Block("C")
	assert.False(t, ok)
}
