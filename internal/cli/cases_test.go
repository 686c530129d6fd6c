package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCases_Text(t *testing.T) {
	stdout, _, err := executeCLI(t, "cases")
	require.NoError(t, err)

	assert.Contains(t, stdout, "167 case(s), 529 block(s) (max tags 6, max shared 2)")
	assert.Contains(t, stdout, "T1S0W0U0: 7 helper(s)")
	assert.Contains(t, stdout, "T0S1W0U0: 5 helper(s)")
	assert.Contains(t, stdout, "T1S0W1U0: 2 helper(s)")
}

func TestCases_VerboseListsHelpers(t *testing.T) {
	stdout, _, err := executeCLI(t, "-v", "cases", "--max-tags", "1", "--max-shared", "0")
	require.NoError(t, err)

	assert.Contains(t, stdout, "2 case(s), 9 block(s)")
	assert.Contains(t, stdout, "  EntityArrayT1S0W1U0")
	assert.Contains(t, stdout, "  EntitiesT1S0W1U0")
}

func TestCases_JSON(t *testing.T) {
	stdout, _, err := executeCLI(t, "--format", "json", "cases", "--max-tags", "1", "--max-shared", "1")
	require.NoError(t, err)

	var resp struct {
		Status string      `json:"status"`
		Data   CasesResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 8, resp.Data.Count)
	assert.Equal(t, 37, resp.Data.Blocks)
	require.Len(t, resp.Data.Cases, 8)

	last := resp.Data.Cases[len(resp.Data.Cases)-1]
	assert.Equal(t, "T1S1W1U1", last.Key)
	assert.Equal(t, []string{"CD1", "SCD1"}, last.Types)
}

func TestCases_InvalidBounds(t *testing.T) {
	_, _, err := executeCLI(t, "cases", "--max-shared", "-1")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
