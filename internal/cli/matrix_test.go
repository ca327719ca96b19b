package cli

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dryRunConfigYAML = `
name: dry-run
seed: 21
modes: [always, never, asNecessary]
ops: [create, convert, update]
min_entries: 5
max_entries: 9
mutate: true
`

func TestMatrixCommand_Text(t *testing.T) {
	cfgPath := writeConfig(t, dryRunConfigYAML)

	out, err := executeCommand("matrix", cfgPath)
	require.NoError(t, err)

	assert.Contains(t, out, "trial-00-create-always")
	assert.Contains(t, out, "convert-never-to-asNecessary")
	assert.Contains(t, out, "mutate")
	assert.Contains(t, out, "21 trials")
}

func TestMatrixCommand_Deterministic(t *testing.T) {
	cfgPath := writeConfig(t, dryRunConfigYAML)

	first, err := executeCommand("matrix", cfgPath)
	require.NoError(t, err)
	second, err := executeCommand("matrix", cfgPath)
	require.NoError(t, err)
	assert.Equal(t, first, second, "same seed prints the same matrix")
}

func TestMatrixCommand_JSON(t *testing.T) {
	cfgPath := writeConfig(t, dryRunConfigYAML)

	out, err := executeCommand("matrix", cfgPath, "--format", "json")
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)

	rows, ok := resp.Data.([]interface{})
	require.True(t, ok)
	require.Len(t, rows, 21)

	first, ok := rows[0].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "trial-00-create-always", first["name"])
	assert.Equal(t, "create", first["op"])
}

func TestMatrixCommand_BadConfig(t *testing.T) {
	cfgPath := writeConfig(t, "name: broken\nmodes: []\n")

	_, err := executeCommand("matrix", cfgPath)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestMatrixCommand_HugeMarked(t *testing.T) {
	cfgPath := writeConfig(t, dryRunConfigYAML+`huge:
  enabled: true
  entries: 6
  entry_size: 1073741824
`)

	out, err := executeCommand("matrix", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "huge")
	assert.Contains(t, out, "22 trials")

	// The huge variant pins both policies to always.
	var hugeLine string
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "huge") {
			hugeLine = line
		}
	}
	assert.Contains(t, hugeLine, "update-always-to-always")
}
