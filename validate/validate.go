// Package validate checks a parsed document's typed AST against its
// resolved version.Dialect: grammar productions the parser accepts
// unconditionally (call `input:` keyword, placeholder options, `else
// if`, enum declarations, `env` modifier, requirements/hints sections,
// the `task` handle and its `previous`/`max_retries` members) are only
// legal on the WDL versions that define them. Each check is expressed as
// a Rule in the same shape, so adding a new version-gated production
// later means adding one Rule, not touching a monolithic switch.
package validate

import (
	"fmt"

	"github.com/wdltools/wdl/ast"
	"github.com/wdltools/wdl/diag"
	"github.com/wdltools/wdl/position"
	"github.com/wdltools/wdl/syntax"
	"github.com/wdltools/wdl/version"
)

// Rule is one version-gated check: Run inspects doc under d and returns
// every diagnostic the check raises.
type Rule struct {
	Name     string
	Doc      string
	Severity diag.Severity
	Run      func(doc ast.Document, d version.Dialect) []diag.Diagnostic
}

// DefaultRules is every version-gating check this package knows about.
func DefaultRules() []*Rule {
	return []*Rule{
		taskHandleRule,
		taskPreviousRule,
		envModifierRule,
		requirementsHintsRule,
		enumDeclRule,
		elseIfRule,
		placeholderOptionsRemovedRule,
		placeholderOptionsDeprecatedRule,
		callInputKeywordRule,
	}
}

// Run executes every default rule against doc under d.
func Run(doc ast.Document, d version.Dialect) []diag.Diagnostic {
	var diags []diag.Diagnostic

	for _, r := range DefaultRules() {
		diags = append(diags, r.Run(doc, d)...)
	}

	return diags
}

// -----------------------------------------------------------------------
// task handle (>= 1.2)

var taskHandleRule = &Rule{
	Name:     "version/task-handle",
	Doc:      "`task` is available only in WDL >= 1.2.",
	Severity: diag.SeverityError,
	Run: func(doc ast.Document, d version.Dialect) []diag.Diagnostic {
		if d.Supports(version.FeatureTaskHandle) {
			return nil
		}

		var diags []diag.Diagnostic

		for _, t := range doc.Tasks() {
			walkTaskExprs(t, func(n *syntax.Node) {
				if n.Kind == syntax.NodeExprIdent && identText(n) == "task" {
					diags = append(diags, diagAt(n, "version/task-handle", diag.SeverityError,
						fmt.Sprintf("task unavailable before 1.2 (document is %s)", d.Version())))
				}
			})
		}

		return diags
	},
}

// -----------------------------------------------------------------------
// task.previous / task.max_retries (>= 1.3)

var taskPreviousRule = &Rule{
	Name:     "version/task-previous",
	Doc:      "`task.previous` and `task.max_retries` are available only in WDL >= 1.3.",
	Severity: diag.SeverityError,
	Run: func(doc ast.Document, d version.Dialect) []diag.Diagnostic {
		var diags []diag.Diagnostic

		for _, t := range doc.Tasks() {
			walkTaskExprs(t, func(n *syntax.Node) {
				if n.Kind != syntax.NodeExprMember {
					return
				}

				kids := n.ChildNodes()
				if len(kids) == 0 || kids[0].Kind != syntax.NodeExprIdent || identText(kids[0]) != "task" {
					return
				}

				switch memberText(n) {
				case "previous":
					if !d.Supports(version.FeatureTaskPrevious) {
						diags = append(diags, diagAt(n, "version/task-previous", diag.SeverityError,
							fmt.Sprintf("task.previous unavailable before 1.3 (document is %s)", d.Version())))
					}
				case "max_retries":
					if !d.Supports(version.FeatureTaskMaxRetries) {
						diags = append(diags, diagAt(n, "version/task-previous", diag.SeverityError,
							fmt.Sprintf("task.max_retries unavailable before 1.3 (document is %s)", d.Version())))
					}
				}
			})
		}

		return diags
	},
}

// -----------------------------------------------------------------------
// env modifier (>= 1.2, primitive-typed inputs only)

var envModifierRule = &Rule{
	Name:     "version/env-modifier",
	Doc:      "`env` is available only in WDL >= 1.2, and only on primitive-typed input declarations.",
	Severity: diag.SeverityError,
	Run: func(doc ast.Document, d version.Dialect) []diag.Diagnostic {
		var diags []diag.Diagnostic

		for _, t := range doc.Tasks() {
			in, ok := t.Input()
			if !ok {
				continue
			}

			for _, decl := range in.Declarations() {
				if !decl.Env() {
					continue
				}

				if !d.Supports(version.FeatureEnvModifier) {
					diags = append(diags, diagAt(decl.Green(), "version/env-modifier", diag.SeverityError,
						fmt.Sprintf("env modifier unavailable before 1.2 (document is %s)", d.Version())))
				}

				if !isPrimitiveType(decl.Type()) {
					diags = append(diags, diagAt(decl.Green(), "version/env-modifier", diag.SeverityError,
						"env modifier only allowed on primitive-typed declarations"))
				}
			}
		}

		return diags
	},
}

func isPrimitiveType(t ast.TypeExpr) bool {
	switch t.Name() {
	case "Boolean", "Int", "Float", "String", "File", "Directory":
		return true
	default:
		return false
	}
}

// -----------------------------------------------------------------------
// requirements / hints sections (>= 1.2)

var requirementsHintsRule = &Rule{
	Name:     "version/requirements-hints",
	Doc:      "`requirements`/`hints` sections are available only in WDL >= 1.2.",
	Severity: diag.SeverityError,
	Run: func(doc ast.Document, d version.Dialect) []diag.Diagnostic {
		var diags []diag.Diagnostic

		for _, t := range doc.Tasks() {
			if req, ok := t.Requirements(); ok && !d.Supports(version.FeatureRequirements) {
				diags = append(diags, diagAt(req.Green(), "version/requirements-hints", diag.SeverityError,
					fmt.Sprintf("requirements section unavailable before 1.2 (document is %s)", d.Version())))
			}

			if hints, ok := t.Hints(); ok && !d.Supports(version.FeatureHints) {
				diags = append(diags, diagAt(hints.Green(), "version/requirements-hints", diag.SeverityError,
					fmt.Sprintf("hints section unavailable before 1.2 (document is %s)", d.Version())))
			}
		}

		return diags
	},
}

// -----------------------------------------------------------------------
// enum declarations (>= 1.3)

var enumDeclRule = &Rule{
	Name:     "version/enum-decl",
	Doc:      "`enum` declarations are available only in WDL >= 1.3.",
	Severity: diag.SeverityError,
	Run: func(doc ast.Document, d version.Dialect) []diag.Diagnostic {
		if d.Supports(version.FeatureEnum) {
			return nil
		}

		var diags []diag.Diagnostic

		for _, e := range doc.Enums() {
			diags = append(diags, diagAt(e.Green(), "version/enum-decl", diag.SeverityError,
				fmt.Sprintf("enum declarations unavailable before 1.3 (document is %s)", d.Version())))
		}

		return diags
	},
}

// -----------------------------------------------------------------------
// else / else if on workflow conditionals (>= 1.3)

var elseIfRule = &Rule{
	Name:     "version/else-if",
	Doc:      "`else`/`else if` on a workflow conditional is available only in WDL >= 1.3.",
	Severity: diag.SeverityError,
	Run: func(doc ast.Document, d version.Dialect) []diag.Diagnostic {
		if d.Supports(version.FeatureElseIf) {
			return nil
		}

		var diags []diag.Diagnostic

		for _, wf := range doc.Workflows() {
			for _, c := range allConditionals(wf) {
				if _, ok := c.Else(); ok {
					diags = append(diags, diagAt(c.Green(), "version/else-if", diag.SeverityError,
						fmt.Sprintf("else/else if unavailable before 1.3 (document is %s)", d.Version())))
				}
			}
		}

		return diags
	},
}

// -----------------------------------------------------------------------
// placeholder options sep=/default=/true=/false= (deprecated 1.1, removed 1.2)

var placeholderOptionsRemovedRule = &Rule{
	Name:     "version/placeholder-options-removed",
	Doc:      "Placeholder options (sep=/default=/true=/false=) are removed in WDL >= 1.2.",
	Severity: diag.SeverityError,
	Run: func(doc ast.Document, d version.Dialect) []diag.Diagnostic {
		if d.Supports(version.FeaturePlaceholderOptions) {
			return nil
		}

		var diags []diag.Diagnostic

		walkPlaceholderOptions(doc, func(opt ast.PlaceholderOption) {
			diags = append(diags, diagAt(opt.Green(), "version/placeholder-options-removed", diag.SeverityError,
				fmt.Sprintf("placeholder option %q removed in 1.2 (document is %s)", opt.Name(), d.Version())))
		})

		return diags
	},
}

var placeholderOptionsDeprecatedRule = &Rule{
	Name:     "lint/placeholder-options-deprecated",
	Doc:      "Placeholder options still parse in 1.1 but are deprecated there.",
	Severity: diag.SeverityWarning,
	Run: func(doc ast.Document, d version.Dialect) []diag.Diagnostic {
		if d.Version() != version.V1_1 {
			return nil
		}

		var diags []diag.Diagnostic

		walkPlaceholderOptions(doc, func(opt ast.PlaceholderOption) {
			diags = append(diags, diagAt(opt.Green(), "lint/placeholder-options-deprecated", diag.SeverityWarning,
				fmt.Sprintf("placeholder option %q is deprecated, removed in 1.2", opt.Name())))
		})

		return diags
	},
}

func walkPlaceholderOptions(doc ast.Document, visit func(ast.PlaceholderOption)) {
	for _, t := range doc.Tasks() {
		cmd, ok := t.Command()
		if !ok {
			continue
		}

		for _, part := range cmd.Parts() {
			ph, ok := part.(ast.Placeholder)
			if !ok {
				continue
			}

			for _, opt := range ph.Options() {
				visit(opt)
			}
		}
	}
}

// -----------------------------------------------------------------------
// call `input:` keyword requirement (required before 1.2, optional after)

var callInputKeywordRule = &Rule{
	Name:     "version/call-input-keyword",
	Doc:      "A call block with assignments requires the `input:` keyword before WDL 1.2.",
	Severity: diag.SeverityError,
	Run: func(doc ast.Document, d version.Dialect) []diag.Diagnostic {
		if d.Supports(version.FeatureInputKeywordOptional) {
			return nil
		}

		var diags []diag.Diagnostic

		for _, wf := range doc.Workflows() {
			for _, call := range allCalls(wf) {
				if len(call.Inputs()) == 0 {
					continue
				}

				if !hasInputKeyword(call) {
					diags = append(diags, diagAt(call.Green(), "version/call-input-keyword", diag.SeverityError,
						fmt.Sprintf("call requires the input: keyword before 1.2 (document is %s)", d.Version())))
				}
			}
		}

		return diags
	},
}

func hasInputKeyword(call ast.CallStmt) bool {
	for _, t := range call.Green().Tokens() {
		if t.Kind == syntax.KindKwInput {
			return true
		}
	}

	return false
}

// -----------------------------------------------------------------------
// shared walkers

// walkTaskExprs visits every expression subtree reachable from a task
// declaration: input/private/output declaration initializers, command
// placeholders (and their legacy options), and runtime/requirements/hints
// attribute values.
func walkTaskExprs(t ast.TaskDecl, visit func(n *syntax.Node)) {
	var walk func(n *syntax.Node)

	walk = func(n *syntax.Node) {
		if n == nil {
			return
		}

		visit(n)

		for _, c := range n.ChildNodes() {
			walk(c)
		}
	}

	walkInit := func(d ast.Declaration) {
		if expr, ok := d.Initializer(); ok {
			walk(expr.Green())
		}
	}

	if in, ok := t.Input(); ok {
		for _, d := range in.Declarations() {
			walkInit(d)
		}
	}

	for _, d := range t.Declarations() {
		walkInit(d)
	}

	if out, ok := t.Output(); ok {
		for _, d := range out.Declarations() {
			walkInit(d)
		}
	}

	if cmd, ok := t.Command(); ok {
		for _, part := range cmd.Parts() {
			ph, ok := part.(ast.Placeholder)
			if !ok {
				continue
			}

			walk(ph.Expr().Green())

			for _, opt := range ph.Options() {
				walk(opt.Value().Green())
			}
		}
	}

	if rt, ok := t.Runtime(); ok {
		for _, a := range rt.Attrs() {
			walk(a.Value().Green())
		}
	}

	if req, ok := t.Requirements(); ok {
		for _, a := range req.Attrs() {
			walk(a.Value().Green())
		}
	}

	if hints, ok := t.Hints(); ok {
		for _, a := range hints.Entries() {
			walk(a.Value().Green())
		}
	}
}

func allConditionals(wf ast.WorkflowDecl) []ast.IfStmt {
	var out []ast.IfStmt

	var walkIf func(c ast.IfStmt)

	var walkScatter func(s ast.ScatterStmt)

	walkIf = func(c ast.IfStmt) {
		out = append(out, c)

		for _, s := range c.Scatters() {
			walkScatter(s)
		}

		if e, ok := c.Else(); ok {
			walkIf(e)
		}
	}

	walkScatter = func(s ast.ScatterStmt) {
		for _, c := range s.Conditionals() {
			walkIf(c)
		}

		for _, n := range s.Scatters() {
			walkScatter(n)
		}
	}

	for _, c := range wf.Conditionals() {
		walkIf(c)
	}

	for _, s := range wf.Scatters() {
		walkScatter(s)
	}

	return out
}

func allCalls(wf ast.WorkflowDecl) []ast.CallStmt {
	out := append([]ast.CallStmt{}, wf.Calls()...)

	for _, s := range wf.Scatters() {
		out = append(out, scatterCalls(s)...)
	}

	for _, c := range wf.Conditionals() {
		out = append(out, conditionalCalls(c)...)
	}

	return out
}

func scatterCalls(s ast.ScatterStmt) []ast.CallStmt {
	out := append([]ast.CallStmt{}, s.Calls()...)

	for _, n := range s.Scatters() {
		out = append(out, scatterCalls(n)...)
	}

	for _, c := range s.Conditionals() {
		out = append(out, conditionalCalls(c)...)
	}

	return out
}

func conditionalCalls(c ast.IfStmt) []ast.CallStmt {
	out := append([]ast.CallStmt{}, c.Calls()...)

	for _, s := range c.Scatters() {
		out = append(out, scatterCalls(s)...)
	}

	if e, ok := c.Else(); ok {
		out = append(out, conditionalCalls(e)...)
	}

	return out
}

func identText(n *syntax.Node) string {
	for _, t := range n.Tokens() {
		if t.Kind == syntax.KindIdent {
			return t.Text
		}
	}

	return ""
}

// memberText returns a NodeExprMember's member name: the last significant
// token, since the base expression (a node child, not a token) always
// comes first.
func memberText(n *syntax.Node) string {
	if len(n.Children) == 0 {
		return ""
	}

	last := n.Children[len(n.Children)-1]
	if last.Token != nil {
		return last.Token.Text
	}

	return ""
}

func diagAt(n *syntax.Node, code string, sev diag.Severity, msg string) diag.Diagnostic {
	return diag.Diagnostic{
		Code:     code,
		Severity: sev,
		Span:     position.Span{Start: position.Position{Offset: n.Start}, End: position.Position{Offset: n.End}},
		Message:  msg,
	}
}
