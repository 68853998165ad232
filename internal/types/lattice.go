package types

// Subtype reports whether every variant of a has some variant of b that it
// is a subtype of (spec.md §4.2: "A | B ≤ C iff A ≤ C and B ≤ C", with
// `Never` as bottom and union-as-target handled variant-by-variant).
func Subtype(a, b ExprType) bool {
	if a.IsNever() {
		return true
	}
	if b.IsNever() {
		return false
	}
	for _, av := range a.Variants {
		ok := false
		for _, bv := range b.Variants {
			if subtypeSimple(av, bv) {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}

func subtypeSimple(a, b Simple) bool {
	if sameShape(a, b) {
		return subtypeSameShape(a, b)
	}
	switch av := a.(type) {
	case Never:
		return true
	case Int:
		if _, ok := b.(LinExpr); ok {
			return true
		}
	case EmptyList:
		if _, ok := b.(List); ok {
			return true
		}
	case List:
		if bl, ok := b.(List); ok {
			return Subtype(av.Elem, bl.Elem)
		}
	}
	return false
}

// subtypeSameShape handles the recursive cases where a and b are the same
// kind of composite but may still differ structurally (list element type,
// tuple arity, struct field set, object/custom identity).
func subtypeSameShape(a, b Simple) bool {
	switch av := a.(type) {
	case List:
		bv := b.(List)
		return Subtype(av.Elem, bv.Elem)
	case Tuple:
		bv := b.(Tuple)
		if len(av.Elems) != len(bv.Elems) {
			return false
		}
		for i := range av.Elems {
			if !Subtype(av.Elems[i], bv.Elems[i]) {
				return false
			}
		}
		return true
	case Struct:
		bv := b.(Struct)
		if len(av.Fields) != len(bv.Fields) {
			return false
		}
		for _, f := range av.Fields {
			bt, ok := bv.FieldType(f.Name)
			if !ok || !Subtype(f.Type, bt) {
				return false
			}
		}
		return true
	case Object:
		bv := b.(Object)
		return av.Name == bv.Name
	case Custom:
		bv := b.(Custom)
		return av.Module == bv.Module && av.Root == bv.Root && av.Variant == bv.Variant
	default:
		// Primitive singletons: identical key already implies equality.
		return true
	}
}

// Unify returns the least supertype of a and b: the normalized union of
// their variants (spec.md §4.2 "Unification").
func Unify(a, b ExprType) ExprType {
	merged := make([]Simple, 0, len(a.Variants)+len(b.Variants))
	merged = append(merged, a.Variants...)
	merged = append(merged, b.Variants...)
	return Normalize(ExprType{Variants: merged})
}

// Diff removes every variant of b from a (used by `??` typing and match
// exhaustiveness). A variant of a is removed if it is a subtype of any
// variant of b. Returns Never if nothing remains.
func Diff(a, b ExprType) ExprType {
	if b.IsNever() {
		return a
	}
	kept := make([]Simple, 0, len(a.Variants))
	for _, av := range a.Variants {
		removed := false
		for _, bv := range b.Variants {
			if subtypeSimple(av, bv) {
				removed = true
				break
			}
		}
		if !removed {
			kept = append(kept, av)
		}
	}
	return Normalize(ExprType{Variants: kept})
}

// CanNarrowTo reports whether `e cast? T` / `e cast! T` is well-typed: T
// must be a subtype of the expression's static type.
func CanNarrowTo(exprType, target ExprType) bool {
	return Subtype(target, exprType)
}

// CanWidenTo reports whether `e as T` is well-typed: the expression's
// static type must be a subtype of T.
func CanWidenTo(exprType, target ExprType) bool {
	return Subtype(exprType, target)
}

// CanConvertTo reports whether a value of type from may undergo a
// constructor-style `T(...)` conversion to target — distinct from
// CanWidenTo/CanNarrowTo, which only ever change a value's lattice
// position, never its representation. The only conversion currently
// grounded in the language is stringification: Int/Bool/String values
// convert to String (spec.md's docstring backtick expressions lower to
// exactly this, wrapped as a `String(...)` conversion).
func CanConvertTo(from, target ExprType) bool {
	tv, ok := target.IsSingle()
	if !ok {
		return false
	}
	if _, isString := tv.(String); !isString {
		return false
	}
	if from.IsNever() {
		return false
	}
	for _, v := range from.Variants {
		switch v.(type) {
		case Int, Bool, String:
		default:
			return false
		}
	}
	return true
}

// IsPrimitive reports whether t is a single non-composite, non-bottom
// variant (Int, Bool, String, LinExpr, Constraint, None).
func (t ExprType) IsPrimitive() bool {
	v, ok := t.IsSingle()
	if !ok {
		return false
	}
	switch v.(type) {
	case Int, Bool, String, LinExpr, Constraint, NoneT:
		return true
	}
	return false
}

// IsArithmetic reports whether every variant of t participates in `+ - * / %`
// (Int or LinExpr).
func (t ExprType) IsArithmetic() bool {
	if t.IsNever() {
		return false
	}
	for _, v := range t.Variants {
		switch v.(type) {
		case Int, LinExpr:
		default:
			return false
		}
	}
	return true
}

// IsListLike reports whether every variant of t is a List or EmptyList.
func (t ExprType) IsListLike() bool {
	if t.IsNever() {
		return false
	}
	for _, v := range t.Variants {
		switch v.(type) {
		case List, EmptyList:
		default:
			return false
		}
	}
	return true
}

// ElementType returns the unified element type across all List variants of
// t (EmptyList variants contribute nothing), and whether t was list-like.
func (t ExprType) ElementType() (ExprType, bool) {
	if !t.IsListLike() {
		return ExprType{}, false
	}
	elem := NeverType()
	for _, v := range t.Variants {
		if l, ok := v.(List); ok {
			elem = Unify(elem, l.Elem)
		}
	}
	return elem, true
}
