package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const exampleConfig = "../../examples/config.yaml"

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		dataPath = ""
		simulateOpts.out, simulateOpts.start, simulateOpts.end, simulateOpts.n = "", "", "", 0
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestSimulateCommand(t *testing.T) {
	out := filepath.Join(t.TempDir(), "ledger.csv")
	stdout, err := execute(t, "simulate", "--config", exampleConfig, "--out", out, "--start", "2024-06-21T12:00:00Z")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Wrote 48 rows to "+out)
	assert.Contains(t, stdout, "Battery: Home 5 kWh")
	assert.Contains(t, stdout, "Self-sufficiency=")

	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	assert.Len(t, lines, 49)
	assert.True(t, strings.HasPrefix(lines[1], "48,2024-06-21T12:00:00Z,"))
}

func TestSimulateCommand_Errors(t *testing.T) {
	_, err := execute(t, "simulate", "--config", "does-not-exist.yaml")
	assert.ErrorContains(t, err, "load config")

	_, err = execute(t, "simulate", "--config", exampleConfig, "--out", filepath.Join(t.TempDir(), "x.csv"), "--start", "soon")
	assert.ErrorContains(t, err, "--start")
}

func TestSweepCommand(t *testing.T) {
	stdout, err := execute(t, "sweep", "--config", exampleConfig, "--capacities", "1,5,10", "--powers", "3", "--top", "2")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "rank"))
	assert.True(t, strings.HasPrefix(lines[1], "1 "))
}

func TestPotentialCommand(t *testing.T) {
	stdout, err := execute(t, "potential", "--config", exampleConfig)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Days=1")
	assert.Contains(t, stdout, "Suggested capacity:")
}

func TestColumnsCommand(t *testing.T) {
	stdout, err := execute(t, "columns", "--data", "../../examples/data/sample_day.csv")
	require.NoError(t, err)
	assert.Contains(t, stdout, `delimiter ";"`)
	assert.Contains(t, stdout, "1\tproduction_w")
}
