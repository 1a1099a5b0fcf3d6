package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wdltools/wdl/ast"
	"github.com/wdltools/wdl/syntax"
	"github.com/wdltools/wdl/validate"
	"github.com/wdltools/wdl/version"
)

func parseDoc(t *testing.T, src string) ast.Document {
	t.Helper()

	res := syntax.Parse("test.wdl", src)
	require.Empty(t, res.Diags, "unexpected parse diagnostics: %v", res.Diags)

	return ast.WrapDocument(res.Root)
}

func dialectFor(t *testing.T, raw string) version.Dialect {
	t.Helper()

	d, err := version.Resolve(raw)
	require.NoError(t, err)

	return d
}

func TestTaskHandleUnavailableBefore12(t *testing.T) {
	t.Parallel()

	src := `version 1.1

task t {
  command <<< echo ~{task.name} >>>
}
`
	doc := parseDoc(t, src)
	d := dialectFor(t, "1.1")

	diags := validate.Run(doc, d)
	require.NotEmpty(t, diags)
	assert.Equal(t, "version/task-handle", diags[0].Code)
}

func TestTaskHandleAvailableAt12(t *testing.T) {
	t.Parallel()

	src := `version 1.2

task t {
  command <<< echo ~{task.name} >>>
}
`
	doc := parseDoc(t, src)
	d := dialectFor(t, "1.2")

	diags := validate.Run(doc, d)
	assert.Empty(t, diags)
}

func TestTaskPreviousRequires13(t *testing.T) {
	t.Parallel()

	src := `version 1.2

task t {
  command <<< >>>

  runtime {
    container: "ubuntu:latest"
  }

  output {
    String prevName = task.previous
  }
}
`
	doc := parseDoc(t, src)
	d := dialectFor(t, "1.2")

	diags := validate.Run(doc, d)
	require.NotEmpty(t, diags)
	assert.Equal(t, "version/task-previous", diags[0].Code)
}

func TestEnvModifierRequires12(t *testing.T) {
	t.Parallel()

	src := `version 1.1

task t {
  input {
    env String name
  }

  command <<< echo ~{name} >>>
}
`
	doc := parseDoc(t, src)
	d := dialectFor(t, "1.1")

	diags := validate.Run(doc, d)
	require.NotEmpty(t, diags)

	var found bool

	for _, diag := range diags {
		if diag.Code == "version/env-modifier" {
			found = true
		}
	}

	assert.True(t, found)
}

func TestEnumDeclRequires13(t *testing.T) {
	t.Parallel()

	src := `version 1.2

enum Color {
  RED,
  BLUE,
}

task t {
  command <<< >>>
}
`
	doc := parseDoc(t, src)
	d := dialectFor(t, "1.2")

	diags := validate.Run(doc, d)
	require.NotEmpty(t, diags)
	assert.Equal(t, "version/enum-decl", diags[0].Code)
}

func TestElseIfRequires13(t *testing.T) {
	t.Parallel()

	src := `version 1.2

workflow w {
  input {
    Int n
  }

  if (n > 0) {
    Int x = 1
  } else {
    Int x = 2
  }
}
`
	doc := parseDoc(t, src)
	d := dialectFor(t, "1.2")

	diags := validate.Run(doc, d)
	require.NotEmpty(t, diags)
	assert.Equal(t, "version/else-if", diags[0].Code)
}

func TestPlaceholderOptionsRemovedAt12(t *testing.T) {
	t.Parallel()

	src := `version 1.2

task t {
  input {
    Array[String] xs
  }

  command <<< echo ~{sep=" " xs} >>>
}
`
	doc := parseDoc(t, src)
	d := dialectFor(t, "1.2")

	diags := validate.Run(doc, d)
	require.NotEmpty(t, diags)
	assert.Equal(t, "version/placeholder-options-removed", diags[0].Code)
}

func TestPlaceholderOptionsDeprecatedAt11(t *testing.T) {
	t.Parallel()

	src := `version 1.1

task t {
  input {
    Array[String] xs
  }

  command <<< echo ~{sep=" " xs} >>>
}
`
	doc := parseDoc(t, src)
	d := dialectFor(t, "1.1")

	diags := validate.Run(doc, d)
	require.NotEmpty(t, diags)
	assert.Equal(t, "lint/placeholder-options-deprecated", diags[0].Code)
	assert.Equal(t, "warning", diags[0].Severity.String())
}

func TestPlaceholderOptionsLegalAt10(t *testing.T) {
	t.Parallel()

	src := `version 1.0

task t {
  input {
    Array[String] xs
  }

  command <<< echo ~{sep=" " xs} >>>
}
`
	doc := parseDoc(t, src)
	d := dialectFor(t, "1.0")

	diags := validate.Run(doc, d)
	assert.Empty(t, diags)
}

func TestCallInputKeywordRequiredBefore12(t *testing.T) {
	t.Parallel()

	src := `version 1.1

task greet {
  input {
    String name
  }

  command <<< >>>
}

workflow w {
  call greet { name = "x" }
}
`
	doc := parseDoc(t, src)
	d := dialectFor(t, "1.1")

	diags := validate.Run(doc, d)
	require.NotEmpty(t, diags)

	var found bool

	for _, diag := range diags {
		if diag.Code == "version/call-input-keyword" {
			found = true
		}
	}

	assert.True(t, found)
}

func TestCallInputKeywordOptionalAt12(t *testing.T) {
	t.Parallel()

	src := `version 1.2

task greet {
  input {
    String name
  }

  command <<< >>>
}

workflow w {
  call greet { name = "x" }
}
`
	doc := parseDoc(t, src)
	d := dialectFor(t, "1.2")

	diags := validate.Run(doc, d)
	assert.Empty(t, diags)
}
