package evaluator

import "github.com/collomatique/colloml/internal/types"

// unwrapCustom strips any CustomVal alias wrapping, returning the
// innermost underlying value. Struct and enum values carry their type
// name directly (TypeName/EnumName) rather than through a CustomVal
// wrapper, so this only ever unwinds alias-of-primitive/list/tuple
// wrapping.
func unwrapCustom(v Value) Value {
	for {
		cv, ok := v.(CustomVal)
		if !ok {
			return v
		}
		v = cv.Inner
	}
}

// matchesType reports whether the runtime value v could have been
// produced by static type t, used by `match` arm narrowing and by
// `cast?`/`cast!` to decide whether a narrowing succeeds at runtime.
func matchesType(v Value, t types.ExprType, global *GlobalLookup) bool {
	for _, s := range t.Variants {
		if matchesSimple(v, s, global) {
			return true
		}
	}
	return false
}

func matchesSimple(v Value, s types.Simple, global *GlobalLookup) bool {
	switch sv := s.(type) {
	case types.Int:
		_, ok := v.(IntVal)
		return ok
	case types.Bool:
		_, ok := v.(BoolVal)
		return ok
	case types.String:
		_, ok := v.(StringVal)
		return ok
	case types.LinExpr:
		_, ok := v.(*LinExprVal)
		return ok
	case types.Constraint:
		_, ok := v.(ConstraintVal)
		return ok
	case types.NoneT:
		_, ok := v.(NoneVal)
		return ok
	case types.Never:
		return false
	case types.EmptyList:
		lv, ok := v.(ListVal)
		return ok && len(lv.Elems) == 0
	case types.List:
		lv, ok := v.(ListVal)
		if !ok {
			return false
		}
		for _, e := range lv.Elems {
			if !matchesType(e, sv.Elem, global) {
				return false
			}
		}
		return true
	case types.Tuple:
		tv, ok := v.(TupleVal)
		if !ok || len(tv.Elems) != len(sv.Elems) {
			return false
		}
		for i, e := range tv.Elems {
			if !matchesType(e, sv.Elems[i], global) {
				return false
			}
		}
		return true
	case types.Struct:
		switch sv2 := v.(type) {
		case StructVal:
			return structMatchesFields(sv2.Fields, sv.Fields, global)
		case EnumVal:
			return sv2.Fields != nil && structMatchesFields(sv2.Fields, sv.Fields, global)
		}
		return false
	case types.Object:
		ov, ok := v.(ObjectVal)
		return ok && ov.TypeName == sv.Name
	case types.Custom:
		if sv.Variant != "" {
			ev, ok := v.(EnumVal)
			return ok && ev.EnumName == sv.Root && ev.Variant == sv.Variant
		}
		if cv, ok := v.(CustomVal); ok && cv.AliasName == sv.Root {
			return true
		}
		if svv, ok := v.(StructVal); ok && svv.TypeName == sv.Root {
			return true
		}
		if global == nil {
			return false
		}
		underlying, ok := global.Global.LookupCustomUnderlying(sv.Root)
		if !ok {
			return false
		}
		return matchesType(unwrapCustom(v), underlying, global)
	}
	return false
}

func structMatchesFields(vals map[string]Value, fields []types.Field, global *GlobalLookup) bool {
	for _, f := range fields {
		fv, ok := vals[f.Name]
		if !ok || !matchesType(fv, f.Type, global) {
			return false
		}
	}
	return true
}

// GlobalLookup lets the type-matching helpers above resolve alias
// underlying types without importing internal/symbols into this
// lower-level file's public surface (avoids an import cycle risk if
// symbols ever needs evaluator.Value for default-arg evaluation later).
type GlobalLookup struct {
	Global interface {
		LookupCustomUnderlying(root string) (types.ExprType, bool)
	}
}
