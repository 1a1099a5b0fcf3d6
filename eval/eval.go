// Package eval folds constant WDL expressions: integer/float arithmetic,
// string concatenation, and array/map literal assembly, for regex
// literal validation and default/hint initializer checking. It never
// executes anything — expressions are parsed once (reusing
// expr-lang/expr's parser, never its evaluator) and walked by a small
// local interpreter that only understands literals and the handful of
// operators WDL's constant subset allows.
package eval

import (
	"fmt"
	"math"

	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
)

// Value is a folded constant: exactly one of the typed fields is set,
// selected by Kind.
type Value struct {
	Kind ValueKind

	Bool   bool
	Int    int64
	Float  float64
	String string
	Array  []Value
	Map    map[string]Value
}

// ValueKind tags which field of Value holds the folded result.
type ValueKind int

const (
	KindUnknown ValueKind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindArray
	KindMap
	KindNone
)

// ErrNotConstant is returned when an expression contains something the
// folder can't reduce without running user code (a function call, a
// member/index reference, an identifier that isn't a declared constant).
type ErrNotConstant struct {
	Expr string
}

func (e *ErrNotConstant) Error() string {
	return fmt.Sprintf("wdl/eval: %q is not a constant expression", e.Expr)
}

// Fold parses src (a single WDL expression's text, already stripped of
// any surrounding `~{`/`}` placeholder delimiters) and reduces it to a
// Value, or returns ErrNotConstant if it depends on anything but literals
// and the allowed constant operators.
func Fold(src string) (Value, error) {
	tree, err := parser.Parse(src)
	if err != nil {
		return Value{}, fmt.Errorf("wdl/eval: parse %q: %w", src, err)
	}

	return foldNode(tree.Node, src)
}

func foldNode(n ast.Node, src string) (Value, error) {
	switch node := n.(type) {
	case *ast.IntegerNode:
		return Value{Kind: KindInt, Int: int64(node.Value)}, nil

	case *ast.FloatNode:
		return Value{Kind: KindFloat, Float: node.Value}, nil

	case *ast.StringNode:
		return Value{Kind: KindString, String: node.Value}, nil

	case *ast.BoolNode:
		return Value{Kind: KindBool, Bool: node.Value}, nil

	case *ast.NilNode:
		return Value{Kind: KindNone}, nil

	case *ast.UnaryNode:
		return foldUnary(node, src)

	case *ast.BinaryNode:
		return foldBinary(node, src)

	case *ast.ConditionalNode:
		cond, err := foldNode(node.Cond, src)
		if err != nil {
			return Value{}, err
		}

		if cond.Kind != KindBool {
			return Value{}, &ErrNotConstant{Expr: src}
		}

		if cond.Bool {
			return foldNode(node.Exp1, src)
		}

		return foldNode(node.Exp2, src)

	case *ast.ArrayNode:
		out := make([]Value, 0, len(node.Nodes))

		for _, el := range node.Nodes {
			v, err := foldNode(el, src)
			if err != nil {
				return Value{}, err
			}

			out = append(out, v)
		}

		return Value{Kind: KindArray, Array: out}, nil

	case *ast.MapNode:
		out := map[string]Value{}

		for _, pairNode := range node.Pairs {
			pair, ok := pairNode.(*ast.PairNode)
			if !ok {
				return Value{}, &ErrNotConstant{Expr: src}
			}

			key, err := foldNode(pair.Key, src)
			if err != nil {
				return Value{}, err
			}

			if key.Kind != KindString {
				return Value{}, &ErrNotConstant{Expr: src}
			}

			val, err := foldNode(pair.Value, src)
			if err != nil {
				return Value{}, err
			}

			out[key.String] = val
		}

		return Value{Kind: KindMap, Map: out}, nil

	default:
		return Value{}, &ErrNotConstant{Expr: src}
	}
}

func foldUnary(node *ast.UnaryNode, src string) (Value, error) {
	v, err := foldNode(node.Node, src)
	if err != nil {
		return Value{}, err
	}

	switch node.Operator {
	case "-":
		switch v.Kind {
		case KindInt:
			return Value{Kind: KindInt, Int: -v.Int}, nil
		case KindFloat:
			return Value{Kind: KindFloat, Float: -v.Float}, nil
		}
	case "!", "not":
		if v.Kind == KindBool {
			return Value{Kind: KindBool, Bool: !v.Bool}, nil
		}
	case "+":
		return v, nil
	}

	return Value{}, &ErrNotConstant{Expr: src}
}

func foldBinary(node *ast.BinaryNode, src string) (Value, error) {
	left, err := foldNode(node.Left, src)
	if err != nil {
		return Value{}, err
	}

	right, err := foldNode(node.Right, src)
	if err != nil {
		return Value{}, err
	}

	switch node.Operator {
	case "+":
		return foldAdd(left, right, src)
	case "-", "*", "/", "%":
		return foldArith(node.Operator, left, right, src)
	case "&&", "and":
		if left.Kind == KindBool && right.Kind == KindBool {
			return Value{Kind: KindBool, Bool: left.Bool && right.Bool}, nil
		}
	case "||", "or":
		if left.Kind == KindBool && right.Kind == KindBool {
			return Value{Kind: KindBool, Bool: left.Bool || right.Bool}, nil
		}
	case "==":
		return Value{Kind: KindBool, Bool: equalValue(left, right)}, nil
	case "!=":
		return Value{Kind: KindBool, Bool: !equalValue(left, right)}, nil
	}

	return Value{}, &ErrNotConstant{Expr: src}
}

func foldAdd(left, right Value, src string) (Value, error) {
	if left.Kind == KindString || right.Kind == KindString {
		return Value{Kind: KindString, String: stringify(left) + stringify(right)}, nil
	}

	return foldArith("+", left, right, src)
}

func foldArith(op string, left, right Value, src string) (Value, error) {
	if left.Kind == KindInt && right.Kind == KindInt {
		switch op {
		case "+":
			return Value{Kind: KindInt, Int: left.Int + right.Int}, nil
		case "-":
			return Value{Kind: KindInt, Int: left.Int - right.Int}, nil
		case "*":
			return Value{Kind: KindInt, Int: left.Int * right.Int}, nil
		case "/":
			if right.Int == 0 {
				return Value{}, &ErrNotConstant{Expr: src}
			}

			return Value{Kind: KindInt, Int: left.Int / right.Int}, nil
		case "%":
			if right.Int == 0 {
				return Value{}, &ErrNotConstant{Expr: src}
			}

			return Value{Kind: KindInt, Int: left.Int % right.Int}, nil
		}
	}

	lf, lok := asFloat(left)
	rf, rok := asFloat(right)

	if lok && rok {
		switch op {
		case "+":
			return Value{Kind: KindFloat, Float: lf + rf}, nil
		case "-":
			return Value{Kind: KindFloat, Float: lf - rf}, nil
		case "*":
			return Value{Kind: KindFloat, Float: lf * rf}, nil
		case "/":
			return Value{Kind: KindFloat, Float: lf / rf}, nil
		case "%":
			return Value{Kind: KindFloat, Float: math.Mod(lf, rf)}, nil
		}
	}

	return Value{}, &ErrNotConstant{Expr: src}
}

func asFloat(v Value) (float64, bool) {
	switch v.Kind {
	case KindInt:
		return float64(v.Int), true
	case KindFloat:
		return v.Float, true
	default:
		return 0, false
	}
}

func stringify(v Value) string {
	switch v.Kind {
	case KindString:
		return v.String
	case KindInt:
		return fmt.Sprintf("%d", v.Int)
	case KindFloat:
		return fmt.Sprintf("%g", v.Float)
	case KindBool:
		return fmt.Sprintf("%t", v.Bool)
	default:
		return ""
	}
}

func equalValue(a, b Value) bool {
	if a.Kind != b.Kind {
		af, aok := asFloat(a)
		bf, bok := asFloat(b)

		if aok && bok {
			return af == bf
		}

		return false
	}

	switch a.Kind {
	case KindBool:
		return a.Bool == b.Bool
	case KindInt:
		return a.Int == b.Int
	case KindFloat:
		return a.Float == b.Float
	case KindString:
		return a.String == b.String
	case KindNone:
		return true
	default:
		return false
	}
}
