package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/zonemanifest/internal/testutil"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRoot_WritesManifest(t *testing.T) {
	tree := testutil.NewMapTree(t, "mp_test")
	tree.Write("maps/mp/mp_test.d3dbsp.ents", `{ "classname" "script_model" "model" "com_crate" }`)
	out := filepath.Join(t.TempDir(), "zone_source")

	stdout, err := execute(t, "--root", tree.Root, "--output", out, "--log-level", "error", "mp_test")
	require.NoError(t, err)
	assert.Contains(t, stdout, "wrote   mp_test.csv")

	data, err := os.ReadFile(filepath.Join(out, "mp_test.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "xmodel,com_crate")
}

func TestRoot_DryRun(t *testing.T) {
	tree := testutil.NewMapTree(t, "airport")
	tree.Write("maps/airport.d3dbsp.ents", `{ "classname" "worldspawn" }`)
	out := filepath.Join(t.TempDir(), "zone_source")

	stdout, err := execute(t, "--root", tree.Root, "--output", out, "--singleplayer", "--dry-run", "--log-level", "error", "airport")
	require.NoError(t, err)
	assert.Contains(t, stdout, "// Generated by zonemanifest")
	assert.Contains(t, stdout, "#col_map_sp,maps/airport.d3dbsp")

	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr), "dry run must not write output")
}

func TestRoot_TokenTable(t *testing.T) {
	tree := testutil.NewMapTree(t, "mp_test")
	tree.Write("maps/mp/mp_test.d3dbsp.ents", `{ 3 "script_model" 4 "com_from_table" }`)
	table := filepath.Join(t.TempDir(), "tokens.yaml")
	require.NoError(t, os.WriteFile(table, []byte("tokens:\n  3: classname\n  4: model\n"), 0644))

	stdout, err := execute(t, "--root", tree.Root, "--tokens", table, "--dry-run", "--log-level", "error", "mp_test")
	require.NoError(t, err)
	assert.Contains(t, stdout, "xmodel,com_from_table")
}

func TestRoot_TokenScript(t *testing.T) {
	tree := testutil.NewMapTree(t, "mp_test")
	tree.Write("maps/mp/mp_test.d3dbsp.ents", `{ 3 "script_model" 4 "com_from_lua" }`)
	script := filepath.Join(t.TempDir(), "tokens.lua")
	require.NoError(t, os.WriteFile(script, []byte(`
local names = { ["3"] = "classname", ["4"] = "model" }
function resolve_token(ref) return names[ref] end
`), 0644))

	stdout, err := execute(t, "--root", tree.Root, "--token-script", script, "--dry-run", "--log-level", "error", "mp_test")
	require.NoError(t, err)
	assert.Contains(t, stdout, "xmodel,com_from_lua")
}

func TestRoot_MissingMapFails(t *testing.T) {
	tree := testutil.NewMapTree(t, "mp_test")
	_, err := execute(t, "--root", tree.Root, "--log-level", "error", "mp_nowhere")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mp_nowhere")
}

func TestRoot_RequiresMap(t *testing.T) {
	_, err := execute(t)
	assert.Error(t, err)
}

func TestRoot_InvalidConfig(t *testing.T) {
	_, err := execute(t, "--log-format", "xml", "mp_test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logging.format")
}
