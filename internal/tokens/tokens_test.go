package tokens_test

import (
	"os"
	"path/filepath"
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/zonemanifest/internal/mapents"
	"github.com/cory-johannsen/zonemanifest/internal/tokens"
)

func TestLiteral_FoldsCase(t *testing.T) {
	assert.Equal(t, "classname", tokens.Literal("ClassName"))
	assert.Equal(t, "classname", tokens.Literal("CLASSNAME"))
	assert.Equal(t, "model", tokens.Literal("model"))
}

func TestLiteral_Idempotent(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		s := rapid.StringOf(rapid.RuneFrom(nil, unicode.Letter, unicode.Digit)).Draw(rt, "s")
		once := tokens.Literal(s)
		assert.Equal(rt, once, tokens.Literal(once))
	})
}

func TestTable_Resolve(t *testing.T) {
	table, err := tokens.LoadTableFromBytes([]byte(`
tokens:
  1: classname
  2: Model
`))
	require.NoError(t, err)
	assert.Equal(t, 2, table.Len())

	assert.Equal(t, "classname", table.Resolve("1"))
	assert.Equal(t, "model", table.Resolve("2"))
	assert.Equal(t, tokens.Placeholder(7), table.Resolve("7"))
	assert.Equal(t, "unknown_token_7", table.Resolve("7"))
	assert.Equal(t, "origin", table.Resolve("Origin"))
}

func TestTable_LoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tokens:\n  10: targetname\n"), 0644))

	table, err := tokens.LoadTable(path)
	require.NoError(t, err)
	assert.Equal(t, "targetname", table.Resolve("10"))

	_, err = tokens.LoadTable(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestTable_InvalidYAML(t *testing.T) {
	_, err := tokens.LoadTableFromBytes([]byte("tokens: [not, a, map"))
	assert.Error(t, err)
}

func TestTable_ParsesEntities(t *testing.T) {
	table := tokens.NewTable(map[uint64]string{1: "classname", 2: "model"})
	store, err := mapents.Parse([]byte(`{ 1 "script_model" 2 "com_crate" "CLASSNAME" "script_model" }`), table.Resolve)
	require.NoError(t, err)

	ents := store.ByClass("script_model")
	require.Len(t, ents, 1)
	ent := ents[0]
	assert.Equal(t, 2, ent.Len())
	assert.Equal(t, "com_crate", ent.Get("model"))
}

func TestLuaResolver_Resolve(t *testing.T) {
	r, err := tokens.NewLuaResolverFromString(`
local names = { ["1"] = "classname", ["2"] = "model", ["3"] = "ClassName" }
function resolve_token(ref)
  return names[ref]
end
`, 0, zap.NewNop())
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, "classname", r.Resolve("1"))
	assert.Equal(t, "model", r.Resolve("2"))
	assert.Equal(t, "classname", r.Resolve("3"), "script results are case-folded")
	// nil result falls back to the literal key
	assert.Equal(t, "origin", r.Resolve("ORIGIN"))
}

func TestLuaResolver_MissingHook(t *testing.T) {
	_, err := tokens.NewLuaResolverFromString(`x = 1`, 0, zap.NewNop())
	assert.Error(t, err)
}

func TestLuaResolver_SyntaxError(t *testing.T) {
	_, err := tokens.NewLuaResolverFromString(`function resolve_token(`, 0, zap.NewNop())
	assert.Error(t, err)
}

func TestLuaResolver_InstructionLimit(t *testing.T) {
	r, err := tokens.NewLuaResolverFromString(`
function resolve_token(ref)
  while true do end
end
`, 100, zap.NewNop())
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, "key", r.Resolve("KEY"))
}

func TestLuaResolver_Sandboxed(t *testing.T) {
	r, err := tokens.NewLuaResolverFromString(`
function resolve_token(ref)
  return dofile("/etc/passwd")
end
`, 0, zap.NewNop())
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, "key", r.Resolve("key"))
}

func TestLuaResolver_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.lua")
	require.NoError(t, os.WriteFile(path, []byte(`function resolve_token(ref) return "k" .. ref end`), 0644))

	r, err := tokens.NewLuaResolverFromFile(path, 0, zap.NewNop())
	require.NoError(t, err)
	defer r.Close()
	assert.Equal(t, "k5", r.Resolve("5"))
}
