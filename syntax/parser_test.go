package syntax_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/wdltools/wdl/syntax"
)

// shape reduces a green node to its node-kind tree, discarding byte
// offsets and token text, so two parses can be compared on structure
// alone.
type shape struct {
	Kind     syntax.NodeKind
	Children []shape
}

func shapeOf(n *syntax.Node) shape {
	s := shape{Kind: n.Kind}

	for _, c := range n.ChildNodes() {
		s.Children = append(s.Children, shapeOf(c))
	}

	return s
}

func TestParseLosslessRoundTrip(t *testing.T) {
	t.Parallel()

	sources := []string{
		"version 1.3\nworkflow w { scatter (x in [1,2]) { Int y = x } output { Array[Int] o = y } }\n",
		"version 1.1\ntask t { command <<< echo ~{x} >>> input { String x } }\n",
		"version 1.0\n# a comment\nimport \"a.wdl\" as a\nworkflow w {}\n",
	}

	for _, src := range sources {
		src := src

		t.Run("", func(t *testing.T) {
			t.Parallel()

			result := syntax.Parse("test.wdl", src)
			got := result.Root.Text()

			if got != src {
				t.Errorf("lossless round trip failed:\n got: %q\nwant: %q", got, src)
			}
		})
	}
}

func TestParseValidDocumentNoErrors(t *testing.T) {
	t.Parallel()

	src := "version 1.3\nworkflow w { scatter (x in [1,2]) { Int y = x } output { Array[Int] o = y } }\n"
	result := syntax.Parse("test.wdl", src)

	if len(result.Diags) != 0 {
		t.Fatalf("expected no diagnostics, got %v", result.Diags)
	}

	if result.Root.Kind != syntax.NodeDocument {
		t.Fatalf("expected root NodeDocument, got %v", result.Root.Kind)
	}

	wf := result.Root.FirstChildOfKind(syntax.NodeWorkflowDecl)
	if wf == nil {
		t.Fatal("expected a workflow declaration")
	}

	scatter := wf.FirstChildOfKind(syntax.NodeScatterStmt)
	if scatter == nil {
		t.Fatal("expected a scatter statement")
	}
}

func TestParseEmptyArrayTypeDiagnostic(t *testing.T) {
	t.Parallel()

	// The parser itself doesn't reject this structurally; type-checking
	// flags the empty array literal against the Array[Int]+ annotation.
	src := "version 1.1\nworkflow w { Array[Int]+ a = [] }\n"
	result := syntax.Parse("test.wdl", src)

	if len(result.Diags) != 0 {
		t.Fatalf("expected clean parse (semantic checks happen later), got %v", result.Diags)
	}
}

func TestParseRecoversFromUnexpectedToken(t *testing.T) {
	t.Parallel()

	src := "version 1.3\nworkflow w { @@@ Int x = 1 }\n"
	result := syntax.Parse("test.wdl", src)

	if len(result.Diags) == 0 {
		t.Fatal("expected at least one diagnostic for the bad token")
	}

	if result.Root.Text() != src {
		t.Fatal("recovered parse must still be lossless")
	}
}

func TestParseShapeIgnoresFormatting(t *testing.T) {
	t.Parallel()

	tight := "version 1.2\ntask t{command<<<echo 1>>>}\n"
	spread := "version 1.2\n\ntask t {\n  command <<< echo 1 >>>\n}\n"

	got := shapeOf(syntax.Parse("a.wdl", tight).Root)
	want := shapeOf(syntax.Parse("b.wdl", spread).Root)

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("node-kind shape differs only by whitespace, but should match (-want +got):\n%s", diff)
	}
}
