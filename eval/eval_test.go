package eval_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wdltools/wdl/eval"
)

func TestFoldArithmetic(t *testing.T) {
	t.Parallel()

	cases := []struct {
		src  string
		kind eval.ValueKind
		i    int64
		f    float64
		s    string
		b    bool
	}{
		{src: "1 + 2", kind: eval.KindInt, i: 3},
		{src: "10 - 4 * 2", kind: eval.KindInt, i: 2},
		{src: "7 / 2", kind: eval.KindInt, i: 3},
		{src: "1.5 + 2", kind: eval.KindFloat, f: 3.5},
		{src: "\"a\" + \"b\"", kind: eval.KindString, s: "ab"},
		{src: "\"n=\" + 1", kind: eval.KindString, s: "n=1"},
		{src: "true && false", kind: eval.KindBool, b: false},
		{src: "1 == 1", kind: eval.KindBool, b: true},
		{src: "1 != 2", kind: eval.KindBool, b: true},
		{src: "-5", kind: eval.KindInt, i: -5},
	}

	for _, c := range cases {
		c := c
		t.Run(c.src, func(t *testing.T) {
			t.Parallel()

			got, err := eval.Fold(c.src)
			require.NoError(t, err)
			require.Equal(t, c.kind, got.Kind)

			switch c.kind {
			case eval.KindInt:
				assert.Equal(t, c.i, got.Int)
			case eval.KindFloat:
				assert.InDelta(t, c.f, got.Float, 1e-9)
			case eval.KindString:
				assert.Equal(t, c.s, got.String)
			case eval.KindBool:
				assert.Equal(t, c.b, got.Bool)
			}
		})
	}
}

func TestFoldConditional(t *testing.T) {
	t.Parallel()

	got, err := eval.Fold("true ? 1 : 2")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Int)

	got, err = eval.Fold("false ? 1 : 2")
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Int)
}

func TestFoldArrayAndMapLiterals(t *testing.T) {
	t.Parallel()

	got, err := eval.Fold("[1, 2, 3]")
	require.NoError(t, err)
	require.Equal(t, eval.KindArray, got.Kind)
	assert.Len(t, got.Array, 3)
	assert.Equal(t, int64(2), got.Array[1].Int)

	got, err = eval.Fold(`{"a": 1, "b": 2}`)
	require.NoError(t, err)
	require.Equal(t, eval.KindMap, got.Kind)
	assert.Equal(t, int64(1), got.Map["a"].Int)
}

func TestFoldRejectsNonConstant(t *testing.T) {
	t.Parallel()

	cases := []string{
		"some_identifier",
		"read_string(\"x\")",
		"a.b",
		"1 / 0",
	}

	for _, src := range cases {
		src := src
		t.Run(src, func(t *testing.T) {
			t.Parallel()

			_, err := eval.Fold(src)
			require.Error(t, err)

			var notConst *eval.ErrNotConstant
			if _, ok := err.(*eval.ErrNotConstant); ok {
				notConst = err.(*eval.ErrNotConstant)
				assert.Contains(t, notConst.Error(), "not a constant")
			}
		})
	}
}
