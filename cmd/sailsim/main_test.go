package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// testConfig copies the config test document with logging sent to a file.
func testConfig(t *testing.T) string {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join("..", "..", "internal", "config", "testdata", "regatta.yaml"))
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(raw, &doc))
	dir := t.TempDir()
	doc["log"] = map[string]any{"level": "error", "output_paths": []any{filepath.Join(dir, "run.log")}}
	out, err := yaml.Marshal(doc)
	require.NoError(t, err)
	path := filepath.Join(dir, "regatta.yaml")
	require.NoError(t, os.WriteFile(path, out, 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestValidateCommand(t *testing.T) {
	out, err := execute(t, "validate", testConfig(t))
	require.NoError(t, err)
	assert.Contains(t, out, `map "harbor"`)

	_, err = execute(t, "validate", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestRunCommandJSON(t *testing.T) {
	dir := t.TempDir()
	savePath := filepath.Join(dir, "save.json")
	out, err := execute(t, "run", "--format", "json", "--ticks", "20", "--save", savePath, testConfig(t))
	require.NoError(t, err)

	var summary runSummary
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Equal(t, uint64(20), summary.Ticks)
	assert.Zero(t, summary.Failed)
	require.Len(t, summary.Clients, 2)
	assert.Equal(t, "alice", summary.Clients[0].Name)

	assert.FileExists(t, savePath)
}

func TestRunIsReproducible(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t)
	a, b := filepath.Join(dir, "a.jsonl.zst"), filepath.Join(dir, "b.jsonl.zst")

	_, err := execute(t, "run", "--ticks", "40", "--trace", a, cfg)
	require.NoError(t, err)
	_, err = execute(t, "run", "--ticks", "40", "--trace", b, cfg)
	require.NoError(t, err)

	out, err := execute(t, "compare", a, b)
	require.NoError(t, err)
	assert.Contains(t, out, "identical: 40 ticks")
}

func TestInvalidFormat(t *testing.T) {
	_, err := execute(t, "validate", "--format", "xml", testConfig(t))
	assert.Error(t, err)
}
