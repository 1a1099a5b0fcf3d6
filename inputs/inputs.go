// Package inputs decodes a JSON or YAML inputs file and coerces each
// entry against the declared type of the workflow/task input it targets,
// producing typed values plus diagnostics for anything that doesn't fit.
package inputs

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wdltools/wdl/diag"
	"github.com/wdltools/wdl/eval"
	"github.com/wdltools/wdl/types"
)

// Format selects the inputs file's encoding.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

// DetectFormat guesses a format from a file extension (".json" vs
// ".yaml"/".yml"); anything else defaults to JSON, the more common
// inputs-file convention.
func DetectFormat(path string) Format {
	lower := strings.ToLower(path)

	if strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml") {
		return FormatYAML
	}

	return FormatJSON
}

// Decode parses data as a flat key -> JSON-value map. Keys are
// `<workflow-or-task>.<input-name>` or, when nested inputs are allowed,
// `<workflow>.<call>.<nested-input-name>`.
func Decode(data []byte, format Format) (map[string]any, error) {
	raw := map[string]any{}

	var err error

	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &raw)
	default:
		err = json.Unmarshal(data, &raw)
	}

	if err != nil {
		return nil, fmt.Errorf("wdl/inputs: decode: %w", err)
	}

	return raw, nil
}

// Declared maps a fully-qualified input key to its declared type, built
// by the caller from a resolved workspace document's task/workflow input
// sections (and call input sections, for keys one level longer, when
// nested inputs are permitted).
type Declared map[string]*types.Type

// Coerce validates and converts every entry in raw against declared,
// returning the successfully coerced values plus one diagnostic per
// entry that has no matching declaration or doesn't fit its type.
func Coerce(raw map[string]any, declared Declared) (map[string]eval.Value, []diag.Diagnostic) {
	out := make(map[string]eval.Value, len(raw))

	var diags []diag.Diagnostic

	for key, v := range raw {
		t, ok := declared[key]
		if !ok {
			diags = append(diags, diag.Diagnostic{
				Code:     "inputs/unknown-key",
				Severity: diag.SeverityError,
				Message:  fmt.Sprintf("%q does not match any declared input", key),
			})

			continue
		}

		val, err := coerceValue(v, t)
		if err != nil {
			diags = append(diags, diag.Diagnostic{
				Code:     "inputs/type-mismatch",
				Severity: diag.SeverityError,
				Message:  fmt.Sprintf("%q: %v", key, err),
			})

			continue
		}

		out[key] = val
	}

	for key, t := range declared {
		if _, ok := raw[key]; ok {
			continue
		}

		if !t.IsOptional() {
			diags = append(diags, diag.Diagnostic{
				Code:     "inputs/missing-required",
				Severity: diag.SeverityError,
				Message:  fmt.Sprintf("%q is required and has no default", key),
			})
		}
	}

	return out, diags
}

func coerceValue(v any, t *types.Type) (eval.Value, error) {
	if v == nil {
		if t.IsOptional() || t.Kind == types.KindError {
			return eval.Value{Kind: eval.KindNone}, nil
		}

		return eval.Value{}, fmt.Errorf("null is not assignable to non-optional %s", t.String())
	}

	if t.Kind == types.KindOptional {
		return coerceValue(v, t.Elem)
	}

	switch t.Kind {
	case types.KindError, types.KindObject:
		return anyToValue(v), nil
	case types.KindBoolean:
		b, ok := v.(bool)
		if !ok {
			return eval.Value{}, fmt.Errorf("expected Boolean, got %T", v)
		}

		return eval.Value{Kind: eval.KindBool, Bool: b}, nil
	case types.KindInt:
		i, ok := asInt(v)
		if !ok {
			return eval.Value{}, fmt.Errorf("expected Int, got %T", v)
		}

		return eval.Value{Kind: eval.KindInt, Int: i}, nil
	case types.KindFloat:
		f, ok := asFloat(v)
		if !ok {
			return eval.Value{}, fmt.Errorf("expected Float, got %T", v)
		}

		return eval.Value{Kind: eval.KindFloat, Float: f}, nil
	case types.KindString, types.KindFile, types.KindDirectory:
		s, ok := v.(string)
		if !ok {
			return eval.Value{}, fmt.Errorf("expected %s, got %T", t.String(), v)
		}

		return eval.Value{Kind: eval.KindString, String: s}, nil
	case types.KindArray, types.KindNonEmptyArray:
		list, ok := v.([]any)
		if !ok {
			return eval.Value{}, fmt.Errorf("expected Array, got %T", v)
		}

		if t.Kind == types.KindNonEmptyArray && len(list) == 0 {
			return eval.Value{}, fmt.Errorf("%s must not be empty", t.String())
		}

		elems := make([]eval.Value, 0, len(list))

		for i, item := range list {
			ev, err := coerceValue(item, t.Elem)
			if err != nil {
				return eval.Value{}, fmt.Errorf("element %d: %w", i, err)
			}

			elems = append(elems, ev)
		}

		return eval.Value{Kind: eval.KindArray, Array: elems}, nil
	case types.KindMap:
		obj, ok := v.(map[string]any)
		if !ok {
			return eval.Value{}, fmt.Errorf("expected Map, got %T", v)
		}

		m := make(map[string]eval.Value, len(obj))

		for k, item := range obj {
			ev, err := coerceValue(item, t.Value)
			if err != nil {
				return eval.Value{}, fmt.Errorf("key %q: %w", k, err)
			}

			m[k] = ev
		}

		return eval.Value{Kind: eval.KindMap, Map: m}, nil
	case types.KindStruct:
		obj, ok := v.(map[string]any)
		if !ok {
			return eval.Value{}, fmt.Errorf("expected Object matching struct %s, got %T", t.Name, v)
		}

		m := make(map[string]eval.Value, len(obj))

		for _, memberName := range t.Order {
			memberType, known := t.Members[memberName]
			if !known {
				continue
			}

			raw, present := obj[memberName]
			if !present {
				if !memberType.IsOptional() {
					return eval.Value{}, fmt.Errorf("struct %s missing required member %q", t.Name, memberName)
				}

				continue
			}

			ev, err := coerceValue(raw, memberType)
			if err != nil {
				return eval.Value{}, fmt.Errorf("member %q: %w", memberName, err)
			}

			m[memberName] = ev
		}

		return eval.Value{Kind: eval.KindMap, Map: m}, nil
	default:
		return eval.Value{}, fmt.Errorf("%s has no input coercion rule", t.String())
	}
}

func asInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		if n == float64(int64(n)) {
			return int64(n), true
		}

		return 0, false
	}

	return 0, false
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}

	return 0, false
}

// anyToValue converts an arbitrary decoded JSON/YAML value into an
// eval.Value without type checking, used for Object-typed (untyped)
// inputs and for the error-type escape hatch.
func anyToValue(v any) eval.Value {
	switch x := v.(type) {
	case bool:
		return eval.Value{Kind: eval.KindBool, Bool: x}
	case string:
		return eval.Value{Kind: eval.KindString, String: x}
	case float64:
		if x == float64(int64(x)) {
			return eval.Value{Kind: eval.KindInt, Int: int64(x)}
		}

		return eval.Value{Kind: eval.KindFloat, Float: x}
	case []any:
		elems := make([]eval.Value, len(x))
		for i, item := range x {
			elems[i] = anyToValue(item)
		}

		return eval.Value{Kind: eval.KindArray, Array: elems}
	case map[string]any:
		m := make(map[string]eval.Value, len(x))
		for k, item := range x {
			m[k] = anyToValue(item)
		}

		return eval.Value{Kind: eval.KindMap, Map: m}
	default:
		return eval.Value{Kind: eval.KindNone}
	}
}
