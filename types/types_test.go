package types_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wdltools/wdl/types"
)

func TestCoercesTo(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		from, to *types.Type
		want     bool
	}{
		{"int to float", types.Int, types.Float, true},
		{"float to int", types.Float, types.Int, false},
		{"string to file", types.String, types.File, true},
		{"file to string", types.File, types.String, true},
		{"t to optional t", types.Int, types.Optional(types.Int), true},
		{"none to optional t", types.NoneType, types.Optional(types.Int), true},
		{"optional to bare", types.Optional(types.Int), types.Int, false},
		{"array+ to array", types.NonEmptyArrayOf(types.Int), types.ArrayOf(types.Int), true},
		{"array to array+", types.ArrayOf(types.Int), types.NonEmptyArrayOf(types.Int), false},
		{"array int to array float", types.ArrayOf(types.Int), types.ArrayOf(types.Float), true},
		{"error coerces anywhere", types.ErrorType, types.Boolean, true},
		{"anything coerces to error", types.Boolean, types.ErrorType, true},
		{"map string-int to object", types.MapOf(types.String, types.Int), types.ObjectType, true},
		{"bool to string", types.Boolean, types.String, false},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, c.want, types.CoercesTo(c.from, c.to))
		})
	}
}

func TestStructCoercion(t *testing.T) {
	t.Parallel()

	a := types.NewStruct("A", []string{"x"}, map[string]*types.Type{"x": types.Int})
	b := types.NewStruct("B", []string{"x"}, map[string]*types.Type{"x": types.Float})
	c := types.NewStruct("C", []string{"y"}, map[string]*types.Type{"y": types.Int})

	assert.True(t, types.CoercesTo(a, b), "A{x: Int} should coerce to B{x: Float}")
	assert.False(t, types.CoercesTo(a, c), "A{x} should not coerce to C{y}: member names differ")
}

func TestCommonType(t *testing.T) {
	t.Parallel()

	t.Run("int and float is float", func(t *testing.T) {
		t.Parallel()

		got, ok := types.CommonType([]*types.Type{types.Int, types.Float})
		require.True(t, ok)
		assert.Equal(t, "Float", got.String())
	})

	t.Run("int and none is optional int", func(t *testing.T) {
		t.Parallel()

		got, ok := types.CommonType([]*types.Type{types.Int, types.NoneType})
		require.True(t, ok)
		assert.Equal(t, "Int?", got.String())
	})

	t.Run("all none is unconstrained optional", func(t *testing.T) {
		t.Parallel()

		got, ok := types.CommonType([]*types.Type{types.NoneType, types.NoneType})
		require.True(t, ok)
		assert.True(t, got.IsOptional())
	})

	t.Run("incompatible types have no common type", func(t *testing.T) {
		t.Parallel()

		_, ok := types.CommonType([]*types.Type{types.Boolean, types.File})
		assert.False(t, ok, "Boolean and File should not unify")
	})

	t.Run("string and file prefers string", func(t *testing.T) {
		t.Parallel()

		got, ok := types.CommonType([]*types.Type{types.String, types.File})
		require.True(t, ok)
		assert.Equal(t, "String", got.String())
	})

	t.Run("nested arrays unify element types", func(t *testing.T) {
		t.Parallel()

		got, ok := types.CommonType([]*types.Type{
			types.ArrayOf(types.Int),
			types.ArrayOf(types.Float),
		})
		require.True(t, ok)
		assert.Equal(t, "Array[Float]", got.String())
	})
}

func TestStdlibDispatch(t *testing.T) {
	t.Parallel()

	t.Run("select_first unwraps optional element", func(t *testing.T) {
		t.Parallel()

		fn, ok := types.Lookup("select_first")
		require.True(t, ok, "select_first not registered")

		res := types.Dispatch(fn, []*types.Type{types.ArrayOf(types.Optional(types.Int))})
		require.False(t, res.NoMatch)
		require.False(t, res.Ambiguous)
		assert.Equal(t, "Int", res.Return.String())
	})

	t.Run("size accepts File or Array[File]", func(t *testing.T) {
		t.Parallel()

		fn, ok := types.Lookup("size")
		require.True(t, ok)

		res := types.Dispatch(fn, []*types.Type{types.File})
		require.False(t, res.NoMatch)
		assert.Equal(t, "Float", res.Return.String())

		res = types.Dispatch(fn, []*types.Type{types.ArrayOf(types.File)})
		require.False(t, res.NoMatch)
		assert.Equal(t, "Float", res.Return.String())
	})

	t.Run("min picks the Int overload for two Ints", func(t *testing.T) {
		t.Parallel()

		fn, ok := types.Lookup("min")
		require.True(t, ok)

		res := types.Dispatch(fn, []*types.Type{types.Int, types.Int})
		require.False(t, res.NoMatch)
		assert.Equal(t, "Int", res.Return.String())
	})

	t.Run("zip composes Array[Pair[L,R]]", func(t *testing.T) {
		t.Parallel()

		fn, ok := types.Lookup("zip")
		require.True(t, ok)

		res := types.Dispatch(fn, []*types.Type{
			types.ArrayOf(types.Int),
			types.ArrayOf(types.String),
		})
		require.False(t, res.NoMatch)
		assert.Equal(t, "Array[Pair[Int,String]]", res.Return.String())
	})

	t.Run("as_pairs composes Array[Pair[K,V]] from Map[K,V]", func(t *testing.T) {
		t.Parallel()

		fn, ok := types.Lookup("as_pairs")
		require.True(t, ok)

		res := types.Dispatch(fn, []*types.Type{types.MapOf(types.String, types.Int)})
		require.False(t, res.NoMatch)
		assert.Equal(t, "Array[Pair[String,Int]]", res.Return.String())
	})

	t.Run("unknown arity is no match", func(t *testing.T) {
		t.Parallel()

		fn, ok := types.Lookup("floor")
		require.True(t, ok)

		res := types.Dispatch(fn, []*types.Type{types.Float, types.Float})
		assert.True(t, res.NoMatch, "floor/2 should not match any signature")
	})

	t.Run("every name round-trips through Lookup", func(t *testing.T) {
		t.Parallel()

		for _, name := range types.Names() {
			_, ok := types.Lookup(name)
			assert.True(t, ok, "Names() produced %q but Lookup failed", name)
		}
	})
}
