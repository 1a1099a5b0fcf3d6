// Package types implements the WDL type system: the tagged-variant Type
// representation, one-way coercion rules, common-type (least upper bound)
// computation, and the generic standard-library function dispatch table.
package types

import "fmt"

// Kind tags a Type's shape, the sealed variant discriminator design notes
// call for ("one tag per node kind" generalised to "one tag per type
// shape").
type Kind int

const (
	KindError Kind = iota // ill-typed; never surfaces without an attached diagnostic
	KindBoolean
	KindInt
	KindFloat
	KindString
	KindFile
	KindDirectory
	KindNone
	KindArray
	KindNonEmptyArray
	KindMap
	KindPair
	KindOptional
	KindStruct
	KindEnum
	KindObject
	KindUnion // common-type scratch space; never a final declared type
	KindTask  // pseudo-type: the `task` handle (≥1.2)
)

// Type is an immutable, structurally-shared value. Compound types embed
// their element Types by pointer so repeated construction of e.g.
// Array[Int] interns to structurally-equal (not necessarily
// pointer-equal) values; callers that need interning build a table keyed
// by Type.String().
type Type struct {
	Kind Kind

	// Compound
	Elem  *Type // Array/NonEmptyArray/Optional element type
	Key   *Type // Map key type
	Value *Type // Map value type
	Left  *Type // Pair left type
	Right *Type // Pair right type

	// Named
	Name    string // Struct/Enum/Union-member label
	Members map[string]*Type // Struct fields, in declared order via Order
	Order   []string

	// Union: the alternatives under consideration during common-type
	// computation; never a type a declaration can name directly.
	Alternatives []*Type
}

func prim(k Kind) *Type { return &Type{Kind: k} }

var (
	Boolean   = prim(KindBoolean)
	Int       = prim(KindInt)
	Float     = prim(KindFloat)
	String    = prim(KindString)
	File      = prim(KindFile)
	Directory = prim(KindDirectory)
	NoneType  = prim(KindNone)
	ErrorType = prim(KindError)
	ObjectType = prim(KindObject)
	TaskType  = prim(KindTask)
)

func ArrayOf(elem *Type) *Type        { return &Type{Kind: KindArray, Elem: elem} }
func NonEmptyArrayOf(elem *Type) *Type { return &Type{Kind: KindNonEmptyArray, Elem: elem} }
func MapOf(k, v *Type) *Type          { return &Type{Kind: KindMap, Key: k, Value: v} }
func PairOf(l, r *Type) *Type         { return &Type{Kind: KindPair, Left: l, Right: r} }

// Optional wraps t as T?. Optional(Optional(T)) collapses to Optional(T):
// WDL has no nested-optional type.
func Optional(t *Type) *Type {
	if t.Kind == KindOptional {
		return t
	}

	return &Type{Kind: KindOptional, Elem: t}
}

// NewStruct builds a named struct type with members in declaration order.
func NewStruct(name string, order []string, members map[string]*Type) *Type {
	return &Type{Kind: KindStruct, Name: name, Order: order, Members: members}
}

// NewEnum builds a named enum type; Members maps variant name to its
// payload type (for a valueless variant, a Boolean placeholder — enum
// variants that carry no explicit `= expr` are flagless markers).
func NewEnum(name string, order []string, members map[string]*Type) *Type {
	return &Type{Kind: KindEnum, Name: name, Order: order, Members: members}
}

// IsOptional reports whether t permits None.
func (t *Type) IsOptional() bool { return t.Kind == KindOptional || t.Kind == KindNone }

// Underlying strips one layer of Optional, returning t unchanged if it
// isn't optional.
func (t *Type) Underlying() *Type {
	if t.Kind == KindOptional {
		return t.Elem
	}

	return t
}

// String renders t the way WDL source would spell it.
func (t *Type) String() string {
	switch t.Kind {
	case KindError:
		return "error"
	case KindBoolean:
		return "Boolean"
	case KindInt:
		return "Int"
	case KindFloat:
		return "Float"
	case KindString:
		return "String"
	case KindFile:
		return "File"
	case KindDirectory:
		return "Directory"
	case KindNone:
		return "None"
	case KindObject:
		return "Object"
	case KindTask:
		return "Task"
	case KindArray:
		return "Array[" + t.Elem.String() + "]"
	case KindNonEmptyArray:
		return "Array[" + t.Elem.String() + "]+"
	case KindMap:
		return "Map[" + t.Key.String() + "," + t.Value.String() + "]"
	case KindPair:
		return "Pair[" + t.Left.String() + "," + t.Right.String() + "]"
	case KindOptional:
		return t.Elem.String() + "?"
	case KindStruct, KindEnum:
		return t.Name
	case KindUnion:
		s := "Union("
		for i, a := range t.Alternatives {
			if i > 0 {
				s += "|"
			}

			s += a.String()
		}

		return s + ")"
	default:
		return fmt.Sprintf("Type(%d)", t.Kind)
	}
}

// Equal reports structural equality (not merely same Kind).
func (t *Type) Equal(other *Type) bool {
	if t == nil || other == nil {
		return t == other
	}

	return t.String() == other.String()
}
