package types

// CoercesTo reports whether a value of type from may be used where to is
// expected, per the one-way coercion rules in the type system design:
// promotion to optional, Int->Float, String<->File/Directory, struct
// member-wise coercion, Map<->Object/Struct, Array[T]+ -> Array[T], and
// enum -> primitive only via explicit value(e) (never implicit, so it is
// not modeled here at all).
func CoercesTo(from, to *Type) bool {
	if from == nil || to == nil {
		return false
	}

	if from.Kind == KindError || to.Kind == KindError {
		// An ill-typed operand coerces to anything and accepts anything,
		// so a single root cause does not cascade into unrelated
		// diagnostics downstream.
		return true
	}

	if from.Equal(to) {
		return true
	}

	if to.Kind == KindOptional {
		if from.Kind == KindNone {
			return true
		}

		return CoercesTo(from, to.Elem)
	}

	if from.Kind == KindOptional {
		// An optional value only coerces to another optional (handled
		// above via Equal/to.Kind==Optional); coercing it to a
		// non-optional destination is unsound without an unwrap.
		return false
	}

	switch {
	case from.Kind == KindInt && to.Kind == KindFloat:
		return true
	case from.Kind == KindString && (to.Kind == KindFile || to.Kind == KindDirectory):
		return true
	case (from.Kind == KindFile || from.Kind == KindDirectory) && to.Kind == KindString:
		return true
	}

	if from.Kind == KindStruct && to.Kind == KindStruct {
		return structCoerces(from, to)
	}

	if from.Kind == KindNonEmptyArray && to.Kind == KindArray {
		return CoercesTo(from.Elem, to.Elem) || from.Elem.Equal(to.Elem)
	}

	if from.Kind == KindArray && to.Kind == KindNonEmptyArray {
		// Only an empty-array literal is flagged (a separate,
		// expression-shape-sensitive check in the caller); as a bare
		// type-to-type rule this direction is unsound in general and is
		// rejected here.
		return false
	}

	if from.Kind == KindMap && (to.Kind == KindObject || to.Kind == KindStruct) {
		return mapCoercesToStructLike(from, to)
	}

	if (from.Kind == KindObject || from.Kind == KindStruct) && to.Kind == KindMap {
		return structLikeCoercesToMap(from, to)
	}

	if from.Kind == KindArray && to.Kind == KindArray {
		return CoercesTo(from.Elem, to.Elem)
	}

	return false
}

// structCoerces implements "Struct A -> Struct B if both have identical
// member names and each member of B accepts the corresponding member of
// A".
func structCoerces(from, to *Type) bool {
	if len(from.Order) != len(to.Order) {
		return false
	}

	for name, toMember := range to.Members {
		fromMember, ok := from.Members[name]
		if !ok {
			return false
		}

		if !CoercesTo(fromMember, toMember) {
			return false
		}
	}

	return true
}

func mapCoercesToStructLike(from, to *Type) bool {
	if from.Key.Kind != KindString && from.Key.Kind != KindFile {
		return false
	}

	if to.Kind == KindObject {
		return true
	}

	for _, member := range to.Members {
		if !CoercesTo(from.Value, member) {
			return false
		}
	}

	return true
}

func structLikeCoercesToMap(from, to *Type) bool {
	if to.Key.Kind != KindString && to.Key.Kind != KindFile {
		return false
	}

	if from.Kind == KindObject {
		return true
	}

	for _, member := range from.Members {
		if !CoercesTo(member, to.Value) {
			return false
		}
	}

	return true
}

// CommonType computes the least upper bound of a slice of types for
// heterogeneous literals (array/map/if-arms): pairwise coercibility, more
// specific wins when both directions coerce, None promotes the result to
// optional, and no common type yields (nil, false).
func CommonType(types []*Type) (*Type, bool) {
	if len(types) == 0 {
		return nil, false
	}

	optional := false

	var concrete []*Type

	for _, t := range types {
		if t.Kind == KindNone {
			optional = true

			continue
		}

		if t.Kind == KindOptional {
			optional = true
			concrete = append(concrete, t.Elem)

			continue
		}

		concrete = append(concrete, t)
	}

	if len(concrete) == 0 {
		return Optional(ErrorType), true // every arm is None: type is unconstrained
	}

	result := concrete[0]

	for _, t := range concrete[1:] {
		merged, ok := lub(result, t)
		if !ok {
			return nil, false
		}

		result = merged
	}

	if optional {
		result = Optional(result)
	}

	return result, true
}

// lub picks the least upper bound of two concrete types by mutual
// coercibility, preferring the more specific when both directions coerce.
func lub(a, b *Type) (*Type, bool) {
	if a.Equal(b) {
		return a, true
	}

	aToB := CoercesTo(a, b)
	bToA := CoercesTo(b, a)

	switch {
	case aToB && bToA:
		return moreSpecific(a, b), true
	case aToB:
		return b, true
	case bToA:
		return a, true
	case a.Kind == KindArray && b.Kind == KindArray:
		elem, ok := lub(a.Elem, b.Elem)
		if !ok {
			return nil, false
		}

		return ArrayOf(elem), true
	default:
		return nil, false
	}
}

// moreSpecific breaks a mutual-coercion tie; Int is more specific than
// Float, String more specific than File/Directory (the narrower WDL
// source type wins over the destination-only type).
func moreSpecific(a, b *Type) *Type {
	rank := func(t *Type) int {
		switch t.Kind {
		case KindInt, KindString:
			return 0
		default:
			return 1
		}
	}

	if rank(a) <= rank(b) {
		return a
	}

	return b
}
