package inputs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wdltools/wdl/eval"
	"github.com/wdltools/wdl/inputs"
	"github.com/wdltools/wdl/types"
)

func TestDecodeJSON(t *testing.T) {
	t.Parallel()

	raw, err := inputs.Decode([]byte(`{"w.name": "alice", "w.count": 3}`), inputs.FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, "alice", raw["w.name"])
}

func TestDecodeYAML(t *testing.T) {
	t.Parallel()

	raw, err := inputs.Decode([]byte("w.name: alice\nw.count: 3\n"), inputs.FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, "alice", raw["w.name"])
}

func TestCoerceScalarTypes(t *testing.T) {
	t.Parallel()

	raw := map[string]any{
		"w.name":  "alice",
		"w.count": float64(3),
		"w.ratio": 1.5,
		"w.ok":    true,
	}

	declared := inputs.Declared{
		"w.name":  types.String,
		"w.count": types.Int,
		"w.ratio": types.Float,
		"w.ok":    types.Boolean,
	}

	values, diags := inputs.Coerce(raw, declared)
	require.Empty(t, diags)

	assert.Equal(t, "alice", values["w.name"].String)
	assert.Equal(t, int64(3), values["w.count"].Int)
	assert.InDelta(t, 1.5, values["w.ratio"].Float, 1e-9)
	assert.True(t, values["w.ok"].Bool)
}

func TestCoerceArray(t *testing.T) {
	t.Parallel()

	raw := map[string]any{"w.names": []any{"a", "b", "c"}}
	declared := inputs.Declared{"w.names": types.ArrayOf(types.String)}

	values, diags := inputs.Coerce(raw, declared)
	require.Empty(t, diags)
	require.Equal(t, eval.KindArray, values["w.names"].Kind)
	assert.Len(t, values["w.names"].Array, 3)
}

func TestCoerceNonEmptyArrayRejectsEmpty(t *testing.T) {
	t.Parallel()

	raw := map[string]any{"w.names": []any{}}
	declared := inputs.Declared{"w.names": types.NonEmptyArrayOf(types.String)}

	_, diags := inputs.Coerce(raw, declared)
	require.Len(t, diags, 1)
	assert.Equal(t, "inputs/type-mismatch", diags[0].Code)
}

func TestCoerceUnknownKeyDiagnostic(t *testing.T) {
	t.Parallel()

	raw := map[string]any{"w.bogus": "x"}
	declared := inputs.Declared{"w.name": types.String}

	_, diags := inputs.Coerce(raw, declared)
	require.Len(t, diags, 2) // unknown key + missing required w.name
	codes := []string{diags[0].Code, diags[1].Code}
	assert.Contains(t, codes, "inputs/unknown-key")
	assert.Contains(t, codes, "inputs/missing-required")
}

func TestCoerceMissingOptionalIsFine(t *testing.T) {
	t.Parallel()

	declared := inputs.Declared{"w.name": types.Optional(types.String)}

	_, diags := inputs.Coerce(map[string]any{}, declared)
	assert.Empty(t, diags)
}

func TestCoerceStruct(t *testing.T) {
	t.Parallel()

	structType := types.NewStruct("Person", []string{"name", "age"}, map[string]*types.Type{
		"name": types.String,
		"age":  types.Int,
	})

	raw := map[string]any{
		"w.person": map[string]any{"name": "bob", "age": float64(30)},
	}
	declared := inputs.Declared{"w.person": structType}

	values, diags := inputs.Coerce(raw, declared)
	require.Empty(t, diags)
	require.Equal(t, eval.KindMap, values["w.person"].Kind)
	assert.Equal(t, "bob", values["w.person"].Map["name"].String)
	assert.Equal(t, int64(30), values["w.person"].Map["age"].Int)
}
