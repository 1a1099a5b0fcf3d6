package types

import "sort"

// TypeVar is a universally quantified type variable used in a standard
// library function's signature schema (e.g. the `X` in
// `select_first(Array[X?]) -> X`).
type TypeVar string

// Param describes one parameter slot of a signature: either a concrete
// Type or a TypeVar to be unified against the call-site argument.
type Param struct {
	Var     TypeVar // empty if Fixed is set
	Fixed   *Type
	Optional bool // the argument itself may be T? even when the slot names T
}

// Signature is one overload of a standard-library function: parameter
// slots and a return shape built from the same type variables. Schemas
// carry optional-propagation: if Propagate is true and any unified
// argument was actually optional, the return type is wrapped in Optional.
// ReturnBuild, when set, composes the return type from the bound type
// variables directly (e.g. zip's Array[Pair[L,R]]) instead of returning a
// single bound variable verbatim.
type Signature struct {
	Params      []Param
	Return      TypeVar
	ReturnFixed *Type
	ReturnBuild func(bound map[TypeVar]*Type) *Type
	Propagate   bool
}

// Function is a named family of overloaded signatures, keyed by signature
// schema rather than a single behavior — dispatch picks the matching
// schema, then evaluates against it.
type Function struct {
	Name       string
	Doc        string
	Signatures []Signature
}

var stdlib = map[string]*Function{}

func register(f *Function) { stdlib[f.Name] = f }

// Lookup returns the registered Function for name, or (nil, false).
func Lookup(name string) (*Function, bool) {
	f, ok := stdlib[name]

	return f, ok
}

// Names returns every registered stdlib function name, sorted.
func Names() []string {
	out := make([]string, 0, len(stdlib))
	for n := range stdlib {
		out = append(out, n)
	}

	sort.Strings(out)

	return out
}

// DispatchResult is the outcome of resolving a call against a Function's
// overload set.
type DispatchResult struct {
	Return     *Type
	Ambiguous  bool // more than one most-specific overload matched
	NoMatch    bool
}

// Dispatch unifies args against f's signatures and returns the result
// type, restricted (per the design notes) to the variables and
// constraints WDL's standard library actually needs: each parameter slot
// unifies independently, a TypeVar seen twice within one signature must
// unify to the same concrete type, and the most specific matching
// signature (fewest coercions) wins; a tie is reported as Ambiguous.
func Dispatch(f *Function, args []*Type) DispatchResult {
	var matches []matchedSignature

	for _, sig := range f.Signatures {
		if m, ok := unify(sig, args); ok {
			matches = append(matches, m)
		}
	}

	if len(matches) == 0 {
		return DispatchResult{NoMatch: true}
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].cost < matches[j].cost })

	best := matches[0]
	if len(matches) > 1 && matches[1].cost == best.cost {
		return DispatchResult{Ambiguous: true}
	}

	return DispatchResult{Return: best.ret}
}

type matchedSignature struct {
	cost int
	ret  *Type
}

func unify(sig Signature, args []*Type) (matchedSignature, bool) {
	if len(args) != len(sig.Params) {
		return matchedSignature{}, false
	}

	bindings := map[TypeVar]*Type{}
	cost := 0
	anyOptional := false

	for i, p := range sig.Params {
		arg := args[i]

		target := arg
		if target.Kind == KindOptional {
			anyOptional = true

			if !p.Optional {
				target = target.Elem
			}
		}

		if p.Fixed != nil {
			if !CoercesTo(arg, p.Fixed) {
				return matchedSignature{}, false
			}

			if !arg.Equal(p.Fixed) {
				cost++
			}

			continue
		}

		if existing, bound := bindings[p.Var]; bound {
			if !existing.Equal(target) {
				if CoercesTo(target, existing) {
					cost++

					continue
				}

				if CoercesTo(existing, target) {
					bindings[p.Var] = target
					cost++

					continue
				}

				return matchedSignature{}, false
			}

			continue
		}

		bindings[p.Var] = target
	}

	ret := sig.ReturnFixed

	if ret == nil && sig.ReturnBuild != nil {
		ret = sig.ReturnBuild(bindings)
	}

	if ret == nil {
		bound, ok := bindings[sig.Return]
		if !ok {
			return matchedSignature{}, false
		}

		ret = bound
	}

	if sig.Propagate && anyOptional {
		ret = Optional(ret)
	}

	return matchedSignature{cost: cost, ret: ret}, true
}

func init() {
	t := TypeVar("T")
	l := TypeVar("L")
	r := TypeVar("R")

	register(&Function{
		Name: "select_first", Doc: "first non-None element of Array[X?]",
		Signatures: []Signature{{
			Params: []Param{{Var: t, Optional: true}},
			ReturnBuild: func(bound map[TypeVar]*Type) *Type {
				return elemOf(bound[t]).Underlying()
			},
		}},
	})
	register(&Function{
		Name: "select_all", Doc: "all non-None elements of Array[X?]",
		Signatures: []Signature{{
			Params: []Param{{Var: t, Optional: true}}, Return: t,
		}},
	})
	register(&Function{
		Name: "length", Doc: "number of elements in an Array or Map",
		Signatures: []Signature{{
			Params: []Param{{Var: t}}, ReturnFixed: Int,
		}},
	})
	register(&Function{
		Name: "defined", Doc: "true if the optional value is not None",
		Signatures: []Signature{{
			Params: []Param{{Var: t, Optional: true}}, ReturnFixed: Boolean,
		}},
	})
	register(&Function{
		Name: "size", Doc: "size in bytes of a File/Directory (or Array thereof)",
		Signatures: []Signature{
			{Params: []Param{{Fixed: File}}, ReturnFixed: Float},
			{Params: []Param{{Fixed: File}, {Fixed: String}}, ReturnFixed: Float},
			{Params: []Param{{Fixed: ArrayOf(File)}}, ReturnFixed: Float},
		},
	})
	register(&Function{
		Name: "sep", Doc: "join Array[String] with a separator",
		Signatures: []Signature{{
			Params: []Param{{Fixed: String}, {Fixed: ArrayOf(String)}}, ReturnFixed: String,
		}},
	})
	register(&Function{
		Name: "prefix", Doc: "prepend a string to every array element",
		Signatures: []Signature{{
			Params: []Param{{Fixed: String}, {Var: t}}, Return: t,
		}},
	})
	register(&Function{
		Name: "suffix", Doc: "append a string to every array element",
		Signatures: []Signature{{
			Params: []Param{{Fixed: String}, {Var: t}}, Return: t,
		}},
	})
	register(&Function{
		Name: "quote", Doc: "double-quote every array element",
		Signatures: []Signature{{Params: []Param{{Var: t}}, Return: t}},
	})
	register(&Function{
		Name: "squote", Doc: "single-quote every array element",
		Signatures: []Signature{{Params: []Param{{Var: t}}, Return: t}},
	})
	register(&Function{
		Name: "zip", Doc: "zip two arrays into Array[Pair[L,R]]",
		Signatures: []Signature{{
			Params: []Param{{Var: l}, {Var: r}},
			ReturnBuild: func(bound map[TypeVar]*Type) *Type {
				return ArrayOf(PairOf(elemOf(bound[l]), elemOf(bound[r])))
			},
		}},
	})
	register(&Function{
		Name: "unzip", Doc: "unzip Array[Pair[L,R]] into Pair[Array[L],Array[R]]",
		Signatures: []Signature{{
			Params: []Param{{Var: t}},
			ReturnBuild: func(bound map[TypeVar]*Type) *Type {
				pair := elemOf(bound[t])

				return PairOf(ArrayOf(pair.Left), ArrayOf(pair.Right))
			},
		}},
	})
	register(&Function{
		Name: "as_map", Doc: "Array[Pair[K,V]] -> Map[K,V]",
		Signatures: []Signature{{
			Params: []Param{{Var: t}},
			ReturnBuild: func(bound map[TypeVar]*Type) *Type {
				pair := elemOf(bound[t])

				return MapOf(pair.Left, pair.Right)
			},
		}},
	})
	register(&Function{
		Name: "as_pairs", Doc: "Map[K,V] -> Array[Pair[K,V]]",
		Signatures: []Signature{{
			Params: []Param{{Var: t}},
			ReturnBuild: func(bound map[TypeVar]*Type) *Type {
				m := bound[t]

				return ArrayOf(PairOf(m.Key, m.Value))
			},
		}},
	})
	register(&Function{
		Name: "range", Doc: "Int -> Array[Int] of 0..n-1",
		Signatures: []Signature{{Params: []Param{{Fixed: Int}}, ReturnFixed: ArrayOf(Int)}},
	})
	register(&Function{
		Name: "floor", Doc: "Float -> Int, rounding down",
		Signatures: []Signature{{Params: []Param{{Fixed: Float}}, ReturnFixed: Int}},
	})
	register(&Function{
		Name: "ceil", Doc: "Float -> Int, rounding up",
		Signatures: []Signature{{Params: []Param{{Fixed: Float}}, ReturnFixed: Int}},
	})
	register(&Function{
		Name: "round", Doc: "Float -> Int, nearest",
		Signatures: []Signature{{Params: []Param{{Fixed: Float}}, ReturnFixed: Int}},
	})
	register(&Function{
		Name: "min", Doc: "smaller of two Int/Float values",
		Signatures: []Signature{
			{Params: []Param{{Fixed: Int}, {Fixed: Int}}, ReturnFixed: Int},
			{Params: []Param{{Fixed: Float}, {Fixed: Float}}, ReturnFixed: Float},
		},
	})
	register(&Function{
		Name: "max", Doc: "larger of two Int/Float values",
		Signatures: []Signature{
			{Params: []Param{{Fixed: Int}, {Fixed: Int}}, ReturnFixed: Int},
			{Params: []Param{{Fixed: Float}, {Fixed: Float}}, ReturnFixed: Float},
		},
	})
	register(&Function{
		Name: "sub", Doc: "regex substitution on a String",
		Signatures: []Signature{{
			Params: []Param{{Fixed: String}, {Fixed: String}, {Fixed: String}}, ReturnFixed: String,
		}},
	})
	register(&Function{
		Name: "find", Doc: "first regex match, or None",
		Signatures: []Signature{{
			Params: []Param{{Fixed: String}, {Fixed: String}}, ReturnFixed: Optional(String),
		}},
	})
	register(&Function{
		Name: "matches", Doc: "true if the String matches the regex",
		Signatures: []Signature{{
			Params: []Param{{Fixed: String}, {Fixed: String}}, ReturnFixed: Boolean,
		}},
	})
	register(&Function{
		Name: "basename", Doc: "strip directory (and optional suffix) from a path",
		Signatures: []Signature{
			{Params: []Param{{Fixed: String}}, ReturnFixed: String},
			{Params: []Param{{Fixed: String}, {Fixed: String}}, ReturnFixed: String},
		},
	})
	register(&Function{
		Name: "split", Doc: "split a String on a separator",
		Signatures: []Signature{{
			Params: []Param{{Fixed: String}, {Fixed: String}}, ReturnFixed: ArrayOf(String),
		}},
	})
	register(&Function{
		Name: "join_paths", Doc: "join path components",
		Signatures: []Signature{
			{Params: []Param{{Fixed: String}, {Fixed: String}}, ReturnFixed: File},
			{Params: []Param{{Fixed: ArrayOf(String)}}, ReturnFixed: File},
		},
	})
	register(&Function{
		Name: "read_lines", Doc: "read a File as Array[String]",
		Signatures: []Signature{{Params: []Param{{Fixed: File}}, ReturnFixed: ArrayOf(String)}},
	})
	register(&Function{
		Name: "read_string", Doc: "read a File as a trimmed String",
		Signatures: []Signature{{Params: []Param{{Fixed: File}}, ReturnFixed: String}},
	})
	register(&Function{
		Name: "read_int", Doc: "read a File and parse its contents as Int",
		Signatures: []Signature{{Params: []Param{{Fixed: File}}, ReturnFixed: Int}},
	})
	register(&Function{
		Name: "read_json", Doc: "read a File and parse its contents as Object",
		Signatures: []Signature{{Params: []Param{{Fixed: File}}, ReturnFixed: ObjectType}},
	})
	register(&Function{
		Name: "write_lines", Doc: "write Array[String] to a new File",
		Signatures: []Signature{{Params: []Param{{Fixed: ArrayOf(String)}}, ReturnFixed: File}},
	})
	register(&Function{
		Name: "write_json", Doc: "serialise a value to a new JSON File",
		Signatures: []Signature{{Params: []Param{{Var: t}}, ReturnFixed: File}},
	})
}

// elemOf strips one Array/NonEmptyArray layer, used by zip/unzip/as_map/
// as_pairs to recover the element type a bound variable was unified
// against (those slots always bind to an array's element, never the
// array itself).
func elemOf(t *Type) *Type {
	if t.Kind == KindArray || t.Kind == KindNonEmptyArray {
		return t.Elem
	}

	return t
}
