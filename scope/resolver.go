package scope

import (
	"fmt"

	"github.com/wdltools/wdl/ast"
	"github.com/wdltools/wdl/diag"
	"github.com/wdltools/wdl/types"
)

// TaskResult holds the scopes built for one task: Body sees every
// input/private/output binding plus a post-evaluation `task` handle;
// PreEval is the same bindings but with a restricted pre-evaluation
// `task` handle, used while resolving runtime/requirements/hints.
type TaskResult struct {
	Name    string
	Body    *Scope
	PreEval *Scope
	Outputs map[string]*types.Type
	Inputs  map[string]*types.Type
	Diags   []diag.Diagnostic
}

// WorkflowResult holds the top-level workflow scope, after scatter and
// conditional bodies have raised their projected bindings into it.
type WorkflowResult struct {
	Name    string
	Scope   *Scope
	Outputs map[string]*types.Type
	Diags   []diag.Diagnostic
}

// Document is the resolved per-document scope tree.
type Document struct {
	Root      *Scope // document-level: struct/enum/task/workflow names
	Tasks     map[string]*TaskResult
	Workflow  *WorkflowResult
	Diags     []diag.Diagnostic
}

// typeOf resolves a TypeExpr to its types.Type, falling back to
// types.ErrorType for a struct/enum name this document doesn't declare
// (a cross-document reference the workspace layer resolves once imports
// are loaded).
func typeOf(t ast.TypeExpr, named map[string]*types.Type) *types.Type {
	if t.Green() == nil {
		return types.ErrorType
	}

	base := primitiveOrNamed(t.Name(), named)

	params := t.Params()

	switch t.Name() {
	case "Array":
		if len(params) != 1 {
			return types.ErrorType
		}

		elem := typeOf(params[0], named)
		if t.NonEmpty() {
			base = types.NonEmptyArrayOf(elem)
		} else {
			base = types.ArrayOf(elem)
		}
	case "Map":
		if len(params) != 2 {
			return types.ErrorType
		}

		base = types.MapOf(typeOf(params[0], named), typeOf(params[1], named))
	case "Pair":
		if len(params) != 2 {
			return types.ErrorType
		}

		base = types.PairOf(typeOf(params[0], named), typeOf(params[1], named))
	}

	if t.Optional() {
		return types.Optional(base)
	}

	return base
}

func primitiveOrNamed(name string, named map[string]*types.Type) *types.Type {
	switch name {
	case "Boolean":
		return types.Boolean
	case "Int":
		return types.Int
	case "Float":
		return types.Float
	case "String":
		return types.String
	case "File":
		return types.File
	case "Directory":
		return types.Directory
	case "Object":
		return types.ObjectType
	}

	if t, ok := named[name]; ok {
		return t
	}

	return types.ErrorType
}

// ResolveDocument builds the scope tree for doc: top-level names, each
// task's merged input/private/output/task-handle scopes, and the
// workflow's scope with scatter/conditional type projection applied.
func ResolveDocument(doc ast.Document) *Document {
	root := New(KindDocument, nil)

	named := map[string]*types.Type{}

	for _, s := range doc.Structs() {
		order := make([]string, 0, len(s.Members()))
		members := map[string]*types.Type{}

		for _, m := range s.Members() {
			order = append(order, m.Name())
			members[m.Name()] = typeOf(m.Type(), named)
		}

		named[s.Name()] = types.NewStruct(s.Name(), order, members)
		defineTopLevel(root, s.Name(), named[s.Name()])
	}

	for _, e := range doc.Enums() {
		order := make([]string, 0, len(e.Variants()))
		members := map[string]*types.Type{}

		for _, v := range e.Variants() {
			order = append(order, v.Name())
			members[v.Name()] = types.Boolean
		}

		named[e.Name()] = types.NewEnum(e.Name(), order, members)
		defineTopLevel(root, e.Name(), named[e.Name()])
	}

	var diags []diag.Diagnostic

	tasks := map[string]*TaskResult{}

	for _, td := range doc.Tasks() {
		defineTopLevel(root, td.Name(), types.TaskType)

		res := resolveTask(td, named)
		tasks[td.Name()] = res
		diags = append(diags, res.Diags...)
	}

	var wfResult *WorkflowResult

	workflows := doc.Workflows()
	if len(workflows) > 0 {
		defineTopLevel(root, workflows[0].Name(), types.TaskType)
		wfResult = resolveWorkflow(workflows[0], named, tasks)
		diags = append(diags, wfResult.Diags...)
	}

	return &Document{Root: root, Tasks: tasks, Workflow: wfResult, Diags: diags}
}

func defineTopLevel(root *Scope, name string, t *types.Type) {
	if name == "" {
		return
	}

	root.Define(&Binding{Name: name, Type: t, Kind: BindingStructOrWorkflowName})
}

func resolveTask(td ast.TaskDecl, named map[string]*types.Type) *TaskResult {
	body := New(KindTask, nil)
	graph := newDeclGraph()

	outputs := map[string]*types.Type{}
	inputs := map[string]*types.Type{}

	var diags []diag.Diagnostic

	if in, ok := td.Input(); ok {
		diags = append(diags, bindDeclarations(body, in.Declarations(), BindingInput, named, graph)...)

		for _, d := range in.Declarations() {
			inputs[d.Name()] = typeOf(d.Type(), named)
		}
	}

	diags = append(diags, bindDeclarations(body, td.Declarations(), BindingPrivateDecl, named, graph)...)

	if out, ok := td.Output(); ok {
		for _, d := range out.Declarations() {
			t := typeOf(d.Type(), named)
			body.Define(&Binding{Name: d.Name(), Type: t, Kind: BindingOutput, Source: d})
			outputs[d.Name()] = t
		}

		for _, d := range out.Declarations() {
			if expr, ok := d.Initializer(); ok {
				addDeclEdges(graph, d.Name(), expr)
				diags = append(diags, checkInitializer(body, typeOf(d.Type(), named), expr)...)
			}
		}
	}

	if cyc := graph.check(); cyc != nil {
		diags = append(diags, diag.Diagnostic{
			Code:     "scope/declaration-cycle",
			Severity: diag.SeverityError,
			Message:  cyc.Error(),
		})
	}

	preEval := New(KindTask, body)
	preEval.Define(&Binding{Name: "task", Type: TaskHandleType(false), Kind: BindingTaskHandle})

	postEval := New(KindTask, body)
	postEval.Define(&Binding{Name: "task", Type: TaskHandleType(true), Kind: BindingTaskHandle})

	if cmd, ok := td.Command(); ok {
		diags = append(diags, checkCommand(cmd, postEval)...)
	}

	if rt, ok := td.Runtime(); ok {
		diags = append(diags, checkAttrs(rt.Attrs(), preEval)...)
	}

	if req, ok := td.Requirements(); ok {
		diags = append(diags, checkAttrs(req.Attrs(), preEval)...)
	}

	if hints, ok := td.Hints(); ok {
		diags = append(diags, checkAttrs(hints.Entries(), preEval)...)
	}

	return &TaskResult{
		Name: td.Name(), Body: postEval, PreEval: preEval, Outputs: outputs, Inputs: inputs, Diags: diags,
	}
}

// checkCommand type-checks every ~{}/${} placeholder embedded in a
// command block's text against s, surfacing undefined-name and
// type-mismatch diagnostics the same way a declaration initializer does.
func checkCommand(cmd ast.CommandSection, s *Scope) []diag.Diagnostic {
	var diags []diag.Diagnostic

	for _, part := range cmd.Parts() {
		ph, ok := part.(ast.Placeholder)
		if !ok {
			continue
		}

		if expr := ph.Expr(); !expr.IsZero() {
			_, d := InferType(expr, s)
			diags = append(diags, d...)
		}

		for _, opt := range ph.Options() {
			if val := opt.Value(); !val.IsZero() {
				_, d := InferType(val, s)
				diags = append(diags, d...)
			}
		}
	}

	return diags
}

func checkAttrs(attrs []ast.RuntimeAttr, s *Scope) []diag.Diagnostic {
	var diags []diag.Diagnostic

	for _, a := range attrs {
		_, d := InferType(a.Value(), s)
		diags = append(diags, d...)
	}

	return diags
}

// checkInitializer type-checks an initializer expression against a
// declared type: it infers the expression's type (surfacing undefined
// names and nested mismatches along the way) and, unless the declared
// type is itself ill-typed, confirms the inferred type coerces to it.
func checkInitializer(s *Scope, declared *types.Type, expr ast.Expr) []diag.Diagnostic {
	got, diags := InferType(expr, s)

	if declared.Kind != types.KindError && !types.CoercesTo(got, declared) {
		diags = append(diags, diagAt(expr.Green(), "types/mismatch", diag.SeverityError,
			fmt.Sprintf("cannot assign %s to declared type %s", got.String(), declared.String())))
	}

	return diags
}

func resolveWorkflow(wf ast.WorkflowDecl, named map[string]*types.Type, tasks map[string]*TaskResult) *WorkflowResult {
	root := New(KindWorkflow, nil)
	graph := newDeclGraph()

	var diags []diag.Diagnostic

	if in, ok := wf.Input(); ok {
		diags = append(diags, bindDeclarations(root, in.Declarations(), BindingInput, named, graph)...)
	}

	diags = append(diags, bindDeclarations(root, wf.Declarations(), BindingPrivateDecl, named, graph)...)

	for _, call := range wf.Calls() {
		diags = append(diags, bindCall(root, call, tasks)...)
	}

	for _, s := range wf.Scatters() {
		diags = append(diags, resolveScatterInto(root, s, named, tasks, graph)...)
	}

	for _, c := range wf.Conditionals() {
		diags = append(diags, resolveConditionalInto(root, c, named, tasks, graph)...)
	}

	outputs := map[string]*types.Type{}

	if out, ok := wf.Output(); ok {
		for _, d := range out.Declarations() {
			t := typeOf(d.Type(), named)
			outputs[d.Name()] = t

			if expr, ok := d.Initializer(); ok {
				addDeclEdges(graph, d.Name(), expr)
				diags = append(diags, checkInitializer(root, t, expr)...)
			}
		}
	}

	if cyc := graph.check(); cyc != nil {
		diags = append(diags, diag.Diagnostic{
			Code:     "scope/declaration-cycle",
			Severity: diag.SeverityError,
			Message:  cyc.Error(),
		})
	}

	return &WorkflowResult{Name: wf.Name(), Scope: root, Outputs: outputs, Diags: diags}
}

func bindDeclarations(
	s *Scope, decls []ast.Declaration, kind BindingKind,
	named map[string]*types.Type, graph *declGraph,
) []diag.Diagnostic {
	var diags []diag.Diagnostic

	for _, d := range decls {
		t := typeOf(d.Type(), named)
		s.Define(&Binding{Name: d.Name(), Type: t, Kind: kind, Source: d})

		if expr, ok := d.Initializer(); ok {
			addDeclEdges(graph, d.Name(), expr)
			diags = append(diags, checkInitializer(s, t, expr)...)
		}
	}

	return diags
}

func addDeclEdges(graph *declGraph, name string, expr ast.Expr) {
	for _, dep := range declDependencies(expr) {
		graph.addEdge(name, dep)
	}
}

// bindCall defines the call's alias (or target base name) as a binding
// whose type is an Object built from the target's output signature when
// the target is a task declared in this document; a cross-document or
// workflow target is left as ObjectType, a placeholder a workspace-level
// pass with imports loaded replaces with the real signature. Each
// `input:` argument is type-checked against the target's declared input
// type when the target is a task declared in this document.
func bindCall(s *Scope, call ast.CallStmt, tasks map[string]*TaskResult) []diag.Diagnostic {
	name := call.Target()

	if alias, ok := call.Alias(); ok {
		name = alias
	} else if idx := lastDot(name); idx >= 0 {
		name = name[idx+1:]
	}

	target := call.Target()
	if idx := lastDot(target); idx >= 0 {
		target = target[idx+1:]
	}

	outputType := types.ObjectType

	var diags []diag.Diagnostic

	if t, ok := tasks[target]; ok {
		order := make([]string, 0, len(t.Outputs))
		for n := range t.Outputs {
			order = append(order, n)
		}

		outputType = types.NewStruct(target, order, t.Outputs)

		for _, in := range call.Inputs() {
			val, ok := in.Value()
			if !ok {
				continue
			}

			argType, d := InferType(val, s)
			diags = append(diags, d...)

			declared, known := t.Inputs[in.Name()]
			if !known {
				diags = append(diags, diagAt(val.Green(), "scope/undefined-name", diag.SeverityError,
					fmt.Sprintf("%s has no input %q", target, in.Name())))

				continue
			}

			if !types.CoercesTo(argType, declared) {
				diags = append(diags, diagAt(val.Green(), "types/mismatch", diag.SeverityError,
					fmt.Sprintf("cannot pass %s as input %q (%s)", argType.String(), in.Name(), declared.String())))
			}
		}
	}

	s.Define(&Binding{Name: name, Type: outputType, Kind: BindingCallOutput, Source: call})

	return diags
}

func lastDot(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '.' {
			return i
		}
	}

	return -1
}

func resolveScatterInto(
	parent *Scope, s ast.ScatterStmt, named map[string]*types.Type,
	tasks map[string]*TaskResult, graph *declGraph,
) []diag.Diagnostic {
	body := New(KindScatterBody, parent)

	srcType, diags := InferType(s.Source(), parent)

	elemType := types.ErrorType

	switch srcType.Kind {
	case types.KindArray, types.KindNonEmptyArray:
		elemType = srcType.Elem
	case types.KindError:
		// already diagnosed by InferType
	default:
		diags = append(diags, diagAt(s.Source().Green(), "types/mismatch", diag.SeverityError,
			fmt.Sprintf("scatter source must be an array, got %s", srcType.String())))
	}

	body.Define(&Binding{Name: s.Variable(), Type: elemType, Kind: BindingScatterVar})

	diags = append(diags, bindDeclarations(body, s.Declarations(), BindingPrivateDecl, named, graph)...)

	for _, call := range s.Calls() {
		diags = append(diags, bindCall(body, call, tasks)...)
	}

	for _, nested := range s.Scatters() {
		diags = append(diags, resolveScatterInto(body, nested, named, tasks, graph)...)
	}

	for _, cond := range s.Conditionals() {
		diags = append(diags, resolveConditionalInto(body, cond, named, tasks, graph)...)
	}

	raise(parent, body, ProjectScatter)

	return diags
}

func resolveConditionalInto(
	parent *Scope, c ast.IfStmt, named map[string]*types.Type,
	tasks map[string]*TaskResult, graph *declGraph,
) []diag.Diagnostic {
	body := New(KindConditionalBody, parent)

	cond, diags := InferType(c.Condition(), parent)
	if !types.CoercesTo(cond, types.Boolean) {
		diags = append(diags, diagAt(c.Condition().Green(), "types/mismatch", diag.SeverityError,
			fmt.Sprintf("if condition must be Boolean, got %s", cond.String())))
	}

	diags = append(diags, bindDeclarations(body, c.Declarations(), BindingPrivateDecl, named, graph)...)

	for _, call := range c.Calls() {
		diags = append(diags, bindCall(body, call, tasks)...)
	}

	for _, s := range c.Scatters() {
		diags = append(diags, resolveScatterInto(body, s, named, tasks, graph)...)
	}

	if elseBranch, ok := c.Else(); ok {
		diags = append(diags, resolveConditionalInto(body, elseBranch, named, tasks, graph)...)
	}

	raise(parent, body, ProjectConditional)

	return diags
}

// raise installs every binding from body into parent under project(t),
// implementing the "visible outside becomes Array[T]/T?" projection
// rule; a name the parent already binds is left alone (the inner
// binding still resolves from inside body via the normal parent-chain
// walk, it's just not re-exported upward under a different name).
func raise(parent, body *Scope, project func(*types.Type) *types.Type) {
	for _, name := range body.Names() {
		if _, exists := parent.Bindings[name]; exists {
			continue
		}

		b := body.Bindings[name]
		if b.Kind == BindingScatterVar {
			continue
		}

		parent.Define(&Binding{Name: name, Type: project(b.Type), Kind: b.Kind, Source: b.Source})
	}
}
