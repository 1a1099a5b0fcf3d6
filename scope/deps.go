package scope

import (
	"fmt"
	"strings"

	"github.com/wdltools/wdl/ast"
	"github.com/wdltools/wdl/syntax"
)

// CycleError reports a reference cycle among private declarations in one
// scope, e.g. `Int a = b; Int b = a`.
type CycleError struct{ Path []string }

func (e *CycleError) Error() string {
	return fmt.Sprintf("wdl/scope: declaration cycle: %s", strings.Join(e.Path, " -> "))
}

// declGraph is a DFS cycle-detector over a flat set of named
// declarations, mirroring the module resolver's visiting/visited
// coloring: gray (on the stack) means "currently being resolved", black
// means "fully resolved with no cycle through it".
type declGraph struct {
	edges map[string][]string
}

func newDeclGraph() *declGraph { return &declGraph{edges: map[string][]string{}} }

func (g *declGraph) addEdge(from, to string) {
	g.edges[from] = append(g.edges[from], to)
}

// check runs a DFS from every node and returns the first cycle found, if
// any.
func (g *declGraph) check() *CycleError {
	visiting := map[string]bool{}
	visited := map[string]bool{}

	var path []string

	var visit func(name string) *CycleError

	visit = func(name string) *CycleError {
		if visited[name] {
			return nil
		}

		if visiting[name] {
			cyclePath := append(append([]string{}, path...), name)

			return &CycleError{Path: cyclePath}
		}

		visiting[name] = true
		path = append(path, name)

		for _, dep := range g.edges[name] {
			if err := visit(dep); err != nil {
				return err
			}
		}

		path = path[:len(path)-1]
		visiting[name] = false
		visited[name] = true

		return nil
	}

	names := make([]string, 0, len(g.edges))
	for name := range g.edges {
		names = append(names, name)
	}

	for _, name := range names {
		if err := visit(name); err != nil {
			return err
		}
	}

	return nil
}

// declDependencies extracts the set of bare identifiers an expression's
// subtree references directly (not through a scatter/conditional
// projection boundary — callers add the scatter/conditional's own
// variable as the edge target instead, per the design note that a
// reference through a scatter binds to the scatter variable's source).
func declDependencies(e ast.Expr) []string {
	var out []string

	var walk func(n *syntax.Node)

	walk = func(n *syntax.Node) {
		if n == nil {
			return
		}

		if n.Kind == syntax.NodeExprIdent {
			for _, t := range n.Tokens() {
				if t.Kind == syntax.KindIdent {
					out = append(out, t.Text)

					break
				}
			}
		}

		for _, c := range n.ChildNodes() {
			walk(c)
		}
	}

	walk(e.Green())

	return out
}
