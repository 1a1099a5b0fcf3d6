package scope

import (
	"fmt"

	"github.com/wdltools/wdl/diag"
	"github.com/wdltools/wdl/position"
	"github.com/wdltools/wdl/syntax"
	"github.com/wdltools/wdl/types"
)

// InferType computes e's type against s, walking the green tree directly
// (ast.Expr exposes only Green(), so every expression shape is handled by
// a Kind switch rather than typed accessors — the same style
// declDependencies uses for identifier extraction). Every NodeExprIdent
// miss and every dispatch/coercion failure appends a diagnostic; the
// returned type is always non-nil (types.ErrorType on failure) so a
// caller can keep checking an enclosing expression without a nil guard.
func InferType(e Expr, s *Scope) (*types.Type, []diag.Diagnostic) {
	return inferNode(e.Green(), s)
}

// Expr is the minimal surface InferType needs from ast.Expr, so this
// package doesn't have to import ast's generic Expr wrapper by name.
type Expr interface {
	Green() *syntax.Node
}

func inferNode(n *syntax.Node, s *Scope) (*types.Type, []diag.Diagnostic) {
	if n == nil {
		return types.ErrorType, nil
	}

	switch n.Kind {
	case syntax.NodeExprLiteral:
		return inferLiteral(n), nil
	case syntax.NodeStringLiteral:
		return inferStringLiteral(n, s)
	case syntax.NodeExprIdent:
		return inferIdent(n, s)
	case syntax.NodeExprMember:
		return inferMember(n, s)
	case syntax.NodeExprIndex:
		return inferIndex(n, s)
	case syntax.NodeExprCall:
		return inferCall(n, s)
	case syntax.NodeExprArray:
		return inferArray(n, s)
	case syntax.NodeExprMap:
		return inferMap(n, s)
	case syntax.NodeExprPair:
		return inferPair(n, s)
	case syntax.NodeExprObject:
		return inferObject(n, s)
	case syntax.NodeExprParen:
		kids := n.ChildNodes()
		if len(kids) == 0 {
			return types.ErrorType, nil
		}

		return inferNode(kids[0], s)
	case syntax.NodeExprTernary:
		return inferTernary(n, s)
	case syntax.NodeExprUnary:
		return inferUnary(n, s)
	case syntax.NodeExprBinary:
		return inferBinary(n, s)
	default:
		return types.ErrorType, nil
	}
}

func inferLiteral(n *syntax.Node) *types.Type {
	for _, t := range n.Tokens() {
		switch t.Kind {
		case syntax.KindIntLiteral:
			return types.Int
		case syntax.KindFloatLiteral:
			return types.Float
		case syntax.KindBoolLiteral:
			return types.Boolean
		case syntax.KindKwNone:
			return types.NoneType
		}
	}

	return types.ErrorType
}

// inferStringLiteral types a string literal as String, but still walks
// every embedded ~{}/${} placeholder for its own diagnostics (undefined
// names inside an interpolation are real, even though the literal's own
// type never depends on them).
func inferStringLiteral(n *syntax.Node, s *Scope) (*types.Type, []diag.Diagnostic) {
	var diags []diag.Diagnostic

	for _, c := range n.ChildNodes() {
		if c.Kind != syntax.NodePlaceholder {
			continue
		}

		for _, opt := range c.ChildrenOfKind(syntax.NodePlaceholderOption) {
			for _, inner := range opt.ChildNodes() {
				_, d := inferNode(inner, s)
				diags = append(diags, d...)
			}
		}

		for _, inner := range c.ChildNodes() {
			if !isExprNodeKind(inner.Kind) {
				continue
			}

			_, d := inferNode(inner, s)
			diags = append(diags, d...)
		}
	}

	return types.String, diags
}

func inferIdent(n *syntax.Node, s *Scope) (*types.Type, []diag.Diagnostic) {
	name := identText(n)

	b, _, ok := s.Resolve(name)
	if !ok {
		return types.ErrorType, []diag.Diagnostic{diagAt(n, "scope/undefined-name", diag.SeverityError,
			fmt.Sprintf("undefined name %q", name))}
	}

	return b.Type, nil
}

func identText(n *syntax.Node) string {
	for _, t := range n.Tokens() {
		if t.Kind == syntax.KindIdent {
			return t.Text
		}
	}

	return ""
}

func inferMember(n *syntax.Node, s *Scope) (*types.Type, []diag.Diagnostic) {
	kids := n.ChildNodes()
	if len(kids) == 0 {
		return types.ErrorType, nil
	}

	base, diags := inferNode(kids[0], s)

	member := ""
	if len(n.Children) > 0 {
		last := n.Children[len(n.Children)-1]
		if last.Token != nil {
			member = last.Token.Text
		}
	}

	if base.Kind == types.KindError {
		return types.ErrorType, diags
	}

	underlying := base
	if underlying.Kind == types.KindOptional {
		underlying = underlying.Elem
	}

	if underlying.Kind != types.KindStruct && underlying.Kind != types.KindEnum {
		return types.ErrorType, append(diags, diagAt(n, "types/bad-member", diag.SeverityError,
			fmt.Sprintf("%s has no member %q", base.String(), member)))
	}

	mt, ok := underlying.Members[member]
	if !ok {
		return types.ErrorType, append(diags, diagAt(n, "types/bad-member", diag.SeverityError,
			fmt.Sprintf("%s has no member %q", base.String(), member)))
	}

	return mt, diags
}

func inferIndex(n *syntax.Node, s *Scope) (*types.Type, []diag.Diagnostic) {
	kids := n.ChildNodes()
	if len(kids) < 2 {
		return types.ErrorType, nil
	}

	base, diags := inferNode(kids[0], s)
	idx, d := inferNode(kids[1], s)
	diags = append(diags, d...)

	if base.Kind == types.KindError {
		return types.ErrorType, diags
	}

	switch base.Kind {
	case types.KindArray, types.KindNonEmptyArray:
		if !types.CoercesTo(idx, types.Int) {
			diags = append(diags, diagAt(kids[1], "types/mismatch", diag.SeverityError,
				fmt.Sprintf("array index must be Int, got %s", idx.String())))
		}

		return base.Elem, diags
	case types.KindMap:
		if !types.CoercesTo(idx, base.Key) {
			diags = append(diags, diagAt(kids[1], "types/mismatch", diag.SeverityError,
				fmt.Sprintf("map key must be %s, got %s", base.Key.String(), idx.String())))
		}

		return base.Value, diags
	default:
		return types.ErrorType, append(diags, diagAt(n, "types/bad-index", diag.SeverityError,
			fmt.Sprintf("cannot index into %s", base.String())))
	}
}

func inferCall(n *syntax.Node, s *Scope) (*types.Type, []diag.Diagnostic) {
	kids := n.ChildNodes()
	if len(kids) == 0 {
		return types.ErrorType, nil
	}

	name := identText(kids[0])

	var diags []diag.Diagnostic

	args := make([]*types.Type, 0, len(kids)-1)

	for _, arg := range kids[1:] {
		t, d := inferNode(arg, s)
		diags = append(diags, d...)
		args = append(args, t)
	}

	fn, ok := types.Lookup(name)
	if !ok {
		return types.ErrorType, append(diags, diagAt(n, "scope/undefined-name", diag.SeverityError,
			fmt.Sprintf("undefined function %q", name)))
	}

	res := types.Dispatch(fn, args)

	switch {
	case res.NoMatch:
		return types.ErrorType, append(diags, diagAt(n, "types/no-overload", diag.SeverityError,
			fmt.Sprintf("no overload of %s matches the given arguments", name)))
	case res.Ambiguous:
		return types.ErrorType, append(diags, diagAt(n, "types/ambiguous-call", diag.SeverityError,
			fmt.Sprintf("ambiguous call to %s", name)))
	default:
		return res.Return, diags
	}
}

// inferArray types a non-empty literal as Array[T]+ (it demonstrably has
// at least one element) and an empty literal as Array[error] — which
// CoercesTo already rejects against a declared Array[T]+ destination and
// accepts against a plain Array[T], so the +/empty rule falls out of
// coerce.go's existing Array<->NonEmptyArray rules instead of a
// second, expression-shape-specific check.
func inferArray(n *syntax.Node, s *Scope) (*types.Type, []diag.Diagnostic) {
	kids := n.ChildNodes()
	if len(kids) == 0 {
		return types.ArrayOf(types.ErrorType), nil
	}

	var diags []diag.Diagnostic

	elems := make([]*types.Type, 0, len(kids))

	for _, k := range kids {
		t, d := inferNode(k, s)
		diags = append(diags, d...)
		elems = append(elems, t)
	}

	common, ok := types.CommonType(elems)
	if !ok {
		diags = append(diags, diagAt(n, "types/mismatch", diag.SeverityError,
			"array elements have no common type"))

		return types.NonEmptyArrayOf(types.ErrorType), diags
	}

	return types.NonEmptyArrayOf(common), diags
}

func inferMap(n *syntax.Node, s *Scope) (*types.Type, []diag.Diagnostic) {
	entries := n.ChildrenOfKind(syntax.NodeExprMapEntry)
	if len(entries) == 0 {
		return types.MapOf(types.ErrorType, types.ErrorType), nil
	}

	var diags []diag.Diagnostic

	keys := make([]*types.Type, 0, len(entries))
	vals := make([]*types.Type, 0, len(entries))

	for _, entry := range entries {
		kids := entry.ChildNodes()
		if len(kids) < 2 {
			continue
		}

		k, d := inferNode(kids[0], s)
		diags = append(diags, d...)
		v, d := inferNode(kids[1], s)
		diags = append(diags, d...)

		keys = append(keys, k)
		vals = append(vals, v)
	}

	keyType, ok := types.CommonType(keys)
	if !ok {
		diags = append(diags, diagAt(n, "types/mismatch", diag.SeverityError, "map keys have no common type"))
		keyType = types.ErrorType
	}

	valType, ok := types.CommonType(vals)
	if !ok {
		diags = append(diags, diagAt(n, "types/mismatch", diag.SeverityError, "map values have no common type"))
		valType = types.ErrorType
	}

	return types.MapOf(keyType, valType), diags
}

func inferPair(n *syntax.Node, s *Scope) (*types.Type, []diag.Diagnostic) {
	kids := n.ChildNodes()
	if len(kids) < 2 {
		return types.ErrorType, nil
	}

	l, diags := inferNode(kids[0], s)
	r, d := inferNode(kids[1], s)
	diags = append(diags, d...)

	return types.PairOf(l, r), diags
}

func inferObject(n *syntax.Node, s *Scope) (*types.Type, []diag.Diagnostic) {
	var diags []diag.Diagnostic

	for _, member := range n.ChildrenOfKind(syntax.NodeExprObjectMember) {
		for _, c := range member.ChildNodes() {
			_, d := inferNode(c, s)
			diags = append(diags, d...)
		}
	}

	return types.ObjectType, diags
}

func inferTernary(n *syntax.Node, s *Scope) (*types.Type, []diag.Diagnostic) {
	kids := n.ChildNodes()
	if len(kids) < 3 {
		return types.ErrorType, nil
	}

	cond, diags := inferNode(kids[0], s)
	if !types.CoercesTo(cond, types.Boolean) {
		diags = append(diags, diagAt(kids[0], "types/mismatch", diag.SeverityError,
			fmt.Sprintf("if condition must be Boolean, got %s", cond.String())))
	}

	thenT, d := inferNode(kids[1], s)
	diags = append(diags, d...)
	elseT, d := inferNode(kids[2], s)
	diags = append(diags, d...)

	common, ok := types.CommonType([]*types.Type{thenT, elseT})
	if !ok {
		diags = append(diags, diagAt(n, "types/mismatch", diag.SeverityError,
			fmt.Sprintf("if/then/else arms have incompatible types %s and %s", thenT.String(), elseT.String())))

		return types.ErrorType, diags
	}

	return common, diags
}

func inferUnary(n *syntax.Node, s *Scope) (*types.Type, []diag.Diagnostic) {
	kids := n.ChildNodes()
	if len(kids) == 0 {
		return types.ErrorType, nil
	}

	operand, diags := inferNode(kids[0], s)

	op := unaryOp(n)

	switch op {
	case syntax.KindBang:
		if !types.CoercesTo(operand, types.Boolean) {
			diags = append(diags, diagAt(n, "types/mismatch", diag.SeverityError,
				fmt.Sprintf("! requires Boolean, got %s", operand.String())))

			return types.ErrorType, diags
		}

		return types.Boolean, diags
	default: // KindMinus, KindPlus
		if !types.CoercesTo(operand, types.Float) {
			diags = append(diags, diagAt(n, "types/mismatch", diag.SeverityError,
				fmt.Sprintf("unary %s requires a numeric operand, got %s", n.Text(), operand.String())))

			return types.ErrorType, diags
		}

		return operand, diags
	}
}

func unaryOp(n *syntax.Node) syntax.Kind {
	for _, el := range n.Children {
		if el.Token != nil {
			return el.Token.Kind
		}
	}

	return syntax.KindInvalid
}

func binaryOp(n *syntax.Node) syntax.Kind {
	for _, el := range n.Children {
		if el.Token != nil {
			return el.Token.Kind
		}
	}

	return syntax.KindInvalid
}

func inferBinary(n *syntax.Node, s *Scope) (*types.Type, []diag.Diagnostic) {
	kids := n.ChildNodes()
	if len(kids) < 2 {
		return types.ErrorType, nil
	}

	left, diags := inferNode(kids[0], s)
	right, d := inferNode(kids[1], s)
	diags = append(diags, d...)

	op := binaryOp(n)

	switch op {
	case syntax.KindOrOr, syntax.KindAndAnd:
		if !types.CoercesTo(left, types.Boolean) || !types.CoercesTo(right, types.Boolean) {
			diags = append(diags, diagAt(n, "types/mismatch", diag.SeverityError,
				"logical operator requires Boolean operands"))
		}

		return types.Boolean, diags
	case syntax.KindEqEq, syntax.KindNotEq:
		if _, ok := types.CommonType([]*types.Type{left, right}); !ok {
			diags = append(diags, diagAt(n, "types/mismatch", diag.SeverityError,
				fmt.Sprintf("cannot compare %s and %s", left.String(), right.String())))
		}

		return types.Boolean, diags
	case syntax.KindLt, syntax.KindLe, syntax.KindGt, syntax.KindGe:
		if !comparable(left) || !comparable(right) {
			diags = append(diags, diagAt(n, "types/mismatch", diag.SeverityError,
				fmt.Sprintf("cannot order %s and %s", left.String(), right.String())))
		}

		return types.Boolean, diags
	case syntax.KindPlus:
		return inferPlus(n, left, right, diags)
	case syntax.KindMinus, syntax.KindStar, syntax.KindSlash, syntax.KindPercent, syntax.KindStarStar:
		if !numeric(left) || !numeric(right) {
			diags = append(diags, diagAt(n, "types/mismatch", diag.SeverityError,
				fmt.Sprintf("arithmetic operator requires numeric operands, got %s and %s", left.String(), right.String())))

			return types.ErrorType, diags
		}

		if left.Kind == types.KindInt && right.Kind == types.KindInt && op != syntax.KindSlash {
			return types.Int, diags
		}

		return types.Float, diags
	default:
		return types.ErrorType, diags
	}
}

func inferPlus(n *syntax.Node, left, right *types.Type, diags []diag.Diagnostic) (*types.Type, []diag.Diagnostic) {
	if stringLike(left) || stringLike(right) {
		if !types.CoercesTo(left, types.String) || !types.CoercesTo(right, types.String) {
			diags = append(diags, diagAt(n, "types/mismatch", diag.SeverityError,
				fmt.Sprintf("cannot concatenate %s and %s", left.String(), right.String())))

			return types.ErrorType, diags
		}

		return types.String, diags
	}

	if !numeric(left) || !numeric(right) {
		diags = append(diags, diagAt(n, "types/mismatch", diag.SeverityError,
			fmt.Sprintf("+ requires numeric or String operands, got %s and %s", left.String(), right.String())))

		return types.ErrorType, diags
	}

	if left.Kind == types.KindInt && right.Kind == types.KindInt {
		return types.Int, diags
	}

	return types.Float, diags
}

func numeric(t *types.Type) bool {
	return t.Kind == types.KindInt || t.Kind == types.KindFloat || t.Kind == types.KindError
}

func stringLike(t *types.Type) bool {
	return t.Kind == types.KindString || t.Kind == types.KindFile || t.Kind == types.KindDirectory
}

func comparable(t *types.Type) bool {
	return numeric(t) || t.Kind == types.KindString || t.Kind == types.KindFile || t.Kind == types.KindDirectory
}

func isExprNodeKind(k syntax.NodeKind) bool {
	switch k {
	case syntax.NodeExprBinary, syntax.NodeExprUnary, syntax.NodeExprTernary,
		syntax.NodeExprCall, syntax.NodeExprIndex, syntax.NodeExprMember,
		syntax.NodeExprIdent, syntax.NodeExprLiteral, syntax.NodeExprArray,
		syntax.NodeExprMap, syntax.NodeExprPair, syntax.NodeExprObject,
		syntax.NodeExprParen, syntax.NodeStringLiteral:
		return true
	default:
		return false
	}
}

func diagAt(n *syntax.Node, code string, sev diag.Severity, msg string) diag.Diagnostic {
	return diag.Diagnostic{
		Code:     code,
		Severity: sev,
		Span:     position.Span{Start: position.Position{Offset: n.Start}, End: position.Position{Offset: n.End}},
		Message:  msg,
	}
}
