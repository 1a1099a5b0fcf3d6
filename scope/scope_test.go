package scope_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wdltools/wdl/ast"
	"github.com/wdltools/wdl/scope"
	"github.com/wdltools/wdl/syntax"
	"github.com/wdltools/wdl/types"
)

func parseDoc(t *testing.T, src string) ast.Document {
	t.Helper()

	res := syntax.Parse("test.wdl", src)
	require.Empty(t, res.Diags, "unexpected parse diagnostics: %v", res.Diags)

	return ast.WrapDocument(res.Root)
}

func TestResolveTaskScope(t *testing.T) {
	t.Parallel()

	src := `version 1.2

task greet {
  input {
    String name
  }

  command <<<
    echo "hello ~{name}"
  >>>

  output {
    String greeting = "hello " + name
  }

  runtime {
    container: "ubuntu:latest"
  }
}
`
	doc := parseDoc(t, src)
	resolved := scope.ResolveDocument(doc)
	require.Empty(t, resolved.Diags)

	task, ok := resolved.Tasks["greet"]
	require.True(t, ok)

	b, _, ok := task.Body.Resolve("name")
	require.True(t, ok)
	assert.Equal(t, types.String, b.Type)

	b, _, ok = task.Body.Resolve("greeting")
	require.True(t, ok)
	assert.Equal(t, types.String, b.Type)

	b, _, ok = task.Body.Resolve("task")
	require.True(t, ok)
	assert.Equal(t, scope.BindingTaskHandle, b.Kind)
	_, hasStdout := b.Type.Members["stdout"]
	assert.True(t, hasStdout, "post-eval task handle should expose stdout")

	b, _, ok = task.PreEval.Resolve("task")
	require.True(t, ok)
	_, hasStdoutPre := b.Type.Members["stdout"]
	assert.False(t, hasStdoutPre, "pre-eval task handle should not expose stdout")
	_, hasAttempt := b.Type.Members["attempt"]
	assert.True(t, hasAttempt)
}

func TestResolveScatterProjection(t *testing.T) {
	t.Parallel()

	src := `version 1.2

workflow w {
  input {
    Array[String] names
  }

  scatter (n in names) {
    String upper = n
  }

  output {
    Array[String] uppers = upper
  }
}
`
	doc := parseDoc(t, src)
	resolved := scope.ResolveDocument(doc)
	require.Empty(t, resolved.Diags)
	require.NotNil(t, resolved.Workflow)

	b, _, ok := resolved.Workflow.Scope.Resolve("upper")
	require.True(t, ok, "scatter body declarations should be raised into the workflow scope")
	require.Equal(t, types.KindArray, b.Type.Kind)
	assert.Equal(t, types.String, b.Type.Elem)

	_, _, ok = resolved.Workflow.Scope.Resolve("n")
	assert.False(t, ok, "the scatter loop variable itself is not raised")
}

func TestResolveConditionalProjection(t *testing.T) {
	t.Parallel()

	src := `version 1.2

workflow w {
  input {
    Boolean flag
  }

  if (flag) {
    Int maybe_count = 1
  }

  output {
    Int? count = maybe_count
  }
}
`
	doc := parseDoc(t, src)
	resolved := scope.ResolveDocument(doc)
	require.Empty(t, resolved.Diags)

	b, _, ok := resolved.Workflow.Scope.Resolve("maybe_count")
	require.True(t, ok)
	require.Equal(t, types.KindOptional, b.Type.Kind)
	assert.Equal(t, types.Int, b.Type.Elem)
}

func TestResolveCallOutputs(t *testing.T) {
	t.Parallel()

	src := `version 1.2

task double {
  input {
    Int n
  }

  command <<< >>>

  output {
    Int doubled = n * 2
  }
}

workflow w {
  input {
    Int n
  }

  call double { input: n = n }

  output {
    Int result = double.doubled
  }
}
`
	doc := parseDoc(t, src)
	resolved := scope.ResolveDocument(doc)
	require.Empty(t, resolved.Diags)

	b, _, ok := resolved.Workflow.Scope.Resolve("double")
	require.True(t, ok)
	require.Equal(t, types.KindStruct, b.Type.Kind)

	doubled, ok := b.Type.Members["doubled"]
	require.True(t, ok)
	assert.Equal(t, types.Int, doubled)
}

func TestDeclarationCycleDetected(t *testing.T) {
	t.Parallel()

	src := `version 1.2

task bad {
  command <<< >>>

  output {
    Int a = b
    Int b = a
  }
}
`
	doc := parseDoc(t, src)
	resolved := scope.ResolveDocument(doc)

	require.NotEmpty(t, resolved.Diags)
	assert.Equal(t, "scope/declaration-cycle", resolved.Diags[0].Code)
}

func TestDefineRejectsDuplicateInSameScope(t *testing.T) {
	t.Parallel()

	s := scope.New(scope.KindTask, nil)

	_, ok := s.Define(&scope.Binding{Name: "x", Type: types.Int, Kind: scope.BindingInput})
	require.True(t, ok)

	existing, ok := s.Define(&scope.Binding{Name: "x", Type: types.String, Kind: scope.BindingPrivateDecl})
	assert.False(t, ok)
	assert.Equal(t, types.Int, existing.Type, "first definition wins")
}

func TestResolveWalksParentChain(t *testing.T) {
	t.Parallel()

	parent := scope.New(scope.KindWorkflow, nil)
	parent.Define(&scope.Binding{Name: "outer", Type: types.Boolean, Kind: scope.BindingInput})

	child := scope.New(scope.KindScatterBody, parent)
	child.Define(&scope.Binding{Name: "inner", Type: types.Int, Kind: scope.BindingPrivateDecl})

	b, found, ok := child.Resolve("outer")
	require.True(t, ok)
	assert.Equal(t, parent, found)
	assert.Equal(t, types.Boolean, b.Type)

	_, _, ok = parent.Resolve("inner")
	assert.False(t, ok, "a parent must not see into a child scope")
}
