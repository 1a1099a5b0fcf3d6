// Package scope builds the nested name-binding tree for a parsed WDL
// document: task/workflow scopes, scatter/conditional type projection,
// the task handle's pre/post-evaluation views, and a declaration
// dependency graph for reference-cycle detection.
package scope

import "github.com/wdltools/wdl/types"

// Kind tags what a Scope corresponds to in the source.
type Kind int

const (
	KindDocument Kind = iota
	KindTask
	KindWorkflow
	KindScatterBody
	KindConditionalBody
	KindCallInputs
)

// BindingKind tags where a Binding's name came from.
type BindingKind int

const (
	BindingInput BindingKind = iota
	BindingPrivateDecl
	BindingOutput
	BindingCallOutput
	BindingScatterVar
	BindingTaskHandle
	BindingStructOrWorkflowName
)

// Binding associates a name with its type and where it was introduced.
// Source, when non-nil, is the typed AST node the name was declared on
// (for "go to definition" and diagnostic spans); it is opaque here so
// this file's core types do not name package ast.
type Binding struct {
	Name   string
	Type   *types.Type
	Kind   BindingKind
	Source any
}

// Scope is one lexical name-binding region. Lookup walks up Parent on
// miss; scatter/conditional scopes additionally raise their bindings into
// the parent under a projected type when the body scope closes (see
// raise in resolver.go).
type Scope struct {
	Kind     Kind
	Parent   *Scope
	Bindings map[string]*Binding
	Order    []string
}

// New creates an empty scope nested under parent (nil for the document
// root).
func New(kind Kind, parent *Scope) *Scope {
	return &Scope{Kind: kind, Parent: parent, Bindings: map[string]*Binding{}}
}

// Define adds a binding. If name is already bound in this scope (not an
// ancestor), Define returns the existing binding and false so the caller
// can raise a conflict diagnostic; the new binding is not installed, so
// the first definition always wins, per the document's top-level
// conflict rule.
func (s *Scope) Define(b *Binding) (*Binding, bool) {
	if existing, ok := s.Bindings[b.Name]; ok {
		return existing, false
	}

	s.Bindings[b.Name] = b
	s.Order = append(s.Order, b.Name)

	return b, true
}

// Resolve looks up name in s, then each ancestor in turn.
func (s *Scope) Resolve(name string) (*Binding, *Scope, bool) {
	for cur := s; cur != nil; cur = cur.Parent {
		if b, ok := cur.Bindings[name]; ok {
			return b, cur, true
		}
	}

	return nil, nil, false
}

// Names returns every name bound directly in s, in declaration order.
func (s *Scope) Names() []string { return s.Order }

// ProjectScatter wraps t the way a name defined inside a scatter body is
// seen from outside it: every visible output becomes Array[T].
func ProjectScatter(t *types.Type) *types.Type { return types.ArrayOf(t) }

// ProjectConditional wraps t the way a name defined inside an `if` body
// is seen from outside it: every visible output becomes T?.
func ProjectConditional(t *types.Type) *types.Type { return types.Optional(t) }

// TaskHandleType returns the `task` pseudo-type's struct shape. post
// selects the command/output view (every field); the non-post view is
// the runtime/requirements/hints pre-evaluation view restricted to
// name/id/attempt/previous. `previous` names a non-recursive snapshot
// struct (name/id/attempt only) rather than a self-referential `task`,
// since a retried task's previous attempt has no attempt of its own to
// chase.
func TaskHandleType(post bool) *types.Type {
	previous := types.Optional(previousAttemptType())

	if !post {
		order := []string{"name", "id", "attempt", "previous"}
		members := map[string]*types.Type{
			"name": types.String, "id": types.String,
			"attempt": types.Int, "previous": previous,
		}

		return types.NewStruct("task", order, members)
	}

	order := []string{"name", "id", "attempt", "previous", "max_retries", "return_code", "stdout", "stderr"}
	members := map[string]*types.Type{
		"name": types.String, "id": types.String,
		"attempt": types.Int, "previous": previous, "max_retries": types.Int,
		"return_code": types.Int, "stdout": types.File, "stderr": types.File,
	}

	return types.NewStruct("task", order, members)
}

func previousAttemptType() *types.Type {
	order := []string{"name", "id", "attempt"}
	members := map[string]*types.Type{
		"name": types.String, "id": types.String, "attempt": types.Int,
	}

	return types.NewStruct("task", order, members)
}
