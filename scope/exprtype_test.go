package scope_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wdltools/wdl/scope"
	"github.com/wdltools/wdl/types"
)

func TestUndefinedNameReported(t *testing.T) {
	t.Parallel()

	src := `version 1.2

task t {
  command <<< >>>

  output {
    Int a = missing
  }
}
`
	doc := parseDoc(t, src)
	resolved := scope.ResolveDocument(doc)

	require.NotEmpty(t, resolved.Diags)
	assert.Equal(t, "scope/undefined-name", resolved.Diags[0].Code)
}

func TestEmptyArrayLiteralRejectedForNonEmptyArrayType(t *testing.T) {
	t.Parallel()

	src := `version 1.1

workflow w {
  Array[Int]+ a = []
}
`
	doc := parseDoc(t, src)
	resolved := scope.ResolveDocument(doc)

	require.NotEmpty(t, resolved.Diags)
	assert.Equal(t, "types/mismatch", resolved.Diags[0].Code)
}

func TestNonEmptyArrayLiteralAcceptedForNonEmptyArrayType(t *testing.T) {
	t.Parallel()

	src := `version 1.1

workflow w {
  Array[Int]+ a = [1, 2, 3]
}
`
	doc := parseDoc(t, src)
	resolved := scope.ResolveDocument(doc)

	assert.Empty(t, resolved.Diags)
}

func TestScatterSourceMustBeArray(t *testing.T) {
	t.Parallel()

	src := `version 1.2

workflow w {
  input {
    Int n
  }

  scatter (x in n) {
    Int doubled = x * 2
  }
}
`
	doc := parseDoc(t, src)
	resolved := scope.ResolveDocument(doc)

	require.NotEmpty(t, resolved.Diags)
	assert.Equal(t, "types/mismatch", resolved.Diags[0].Code)
}

func TestScatterVariableTypeInferredFromSource(t *testing.T) {
	t.Parallel()

	src := `version 1.2

workflow w {
  input {
    Array[Int] ns
  }

  scatter (n in ns) {
    Int doubled = n * 2
  }

  output {
    Array[Int] doubles = doubled
  }
}
`
	doc := parseDoc(t, src)
	resolved := scope.ResolveDocument(doc)

	require.Empty(t, resolved.Diags)

	b, _, ok := resolved.Workflow.Scope.Resolve("doubles")
	require.True(t, ok)
	assert.Equal(t, types.KindArray, b.Type.Kind)
}

func TestCallInputTypeMismatchReported(t *testing.T) {
	t.Parallel()

	src := `version 1.2

task greet {
  input {
    String name
  }

  command <<< >>>
}

workflow w {
  input {
    Int n
  }

  call greet { input: name = n }
}
`
	doc := parseDoc(t, src)
	resolved := scope.ResolveDocument(doc)

	require.NotEmpty(t, resolved.Diags)
	assert.Equal(t, "types/mismatch", resolved.Diags[0].Code)
}

func TestCallInputUnknownNameReported(t *testing.T) {
	t.Parallel()

	src := `version 1.2

task greet {
  input {
    String name
  }

  command <<< >>>
}

workflow w {
  call greet { input: nickname = "x" }
}
`
	doc := parseDoc(t, src)
	resolved := scope.ResolveDocument(doc)

	require.NotEmpty(t, resolved.Diags)
	assert.Equal(t, "scope/undefined-name", resolved.Diags[0].Code)
}

func TestCommandPlaceholderTypeChecked(t *testing.T) {
	t.Parallel()

	src := `version 1.2

task t {
  command <<< echo ~{missing} >>>
}
`
	doc := parseDoc(t, src)
	resolved := scope.ResolveDocument(doc)

	require.NotEmpty(t, resolved.Diags)
	assert.Equal(t, "scope/undefined-name", resolved.Diags[0].Code)
}

func TestIfConditionMustBeBoolean(t *testing.T) {
	t.Parallel()

	src := `version 1.2

workflow w {
  input {
    Int n
  }

  if (n) {
    Int x = 1
  }
}
`
	doc := parseDoc(t, src)
	resolved := scope.ResolveDocument(doc)

	require.NotEmpty(t, resolved.Diags)
	assert.Equal(t, "types/mismatch", resolved.Diags[0].Code)
}
