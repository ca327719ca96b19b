package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, yaml string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "matrix.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	return path
}

func executeCommand(args ...string) (string, error) {
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

const smokeConfigYAML = `
name: smoke
seed: 11
modes: [always, asNecessary]
ops: [create]
min_entries: 2
max_entries: 3
min_entry_size: 16
max_entry_size: 64
`

func TestRunCommand(t *testing.T) {
	cfgPath := writeConfig(t, smokeConfigYAML)

	out, err := executeCommand("run", cfgPath, "--work-dir", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "smoke: 2 trials passed")
}

func TestRunCommand_JSONReport(t *testing.T) {
	cfgPath := writeConfig(t, smokeConfigYAML)

	out, err := executeCommand("run", cfgPath, "--work-dir", t.TempDir(), "--format", "json")
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)

	report, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "smoke", report["name"])
	assert.Equal(t, true, report["pass"])
}

func TestRunCommand_MissingConfig(t *testing.T) {
	_, err := executeCommand("run", filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRunCommand_FailureExitCode(t *testing.T) {
	// A lister that prints nothing makes every entry "missing" from the
	// external listing, failing each trial without touching the engine.
	lister := filepath.Join(t.TempDir(), "empty-lister.sh")
	require.NoError(t, os.WriteFile(lister, []byte("#!/bin/sh\ntrue\n"), 0o755))

	cfgPath := writeConfig(t, smokeConfigYAML+"lister: ["+lister+"]\n")
	out, err := executeCommand("run", cfgPath, "--work-dir", t.TempDir())
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "missing from external listing")
}

func TestRunCommand_KeepArtifacts(t *testing.T) {
	cfgPath := writeConfig(t, smokeConfigYAML)
	workDir := t.TempDir()

	_, err := executeCommand("run", cfgPath, "--work-dir", workDir, "--keep-artifacts")
	require.NoError(t, err)

	archives, err := filepath.Glob(filepath.Join(workDir, "*.zt4"))
	require.NoError(t, err)
	assert.Len(t, archives, 2)
}
