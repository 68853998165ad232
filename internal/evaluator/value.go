// Package evaluator walks a checked ColloML AST and produces runtime
// values: scalars, lists/tuples/structs, linear expressions over
// decision-variable families, and the constraints built from them. It
// never performs I/O itself — every external fact (object schemas,
// field access, pretty-printing) is requested through the host Env
// contract (spec.md's "external collaborator").
package evaluator

import (
	"fmt"
	"sort"
	"strings"
)

// Value is any ColloML runtime value.
type Value interface {
	value()
	// Inspect renders a debug/structural form, used as the fallback tier
	// of docstring pretty-printing (spec.md §4.5).
	Inspect() string
}

type IntVal int32
type BoolVal bool
type StringVal string
type NoneVal struct{}

func (IntVal) value()    {}
func (BoolVal) value()   {}
func (StringVal) value() {}
func (NoneVal) value()   {}

func (v IntVal) Inspect() string    { return fmt.Sprintf("%d", int32(v)) }
func (v BoolVal) Inspect() string   { return fmt.Sprintf("%t", bool(v)) }
func (v StringVal) Inspect() string { return string(v) }
func (NoneVal) Inspect() string     { return "none" }

// ListVal is an ordered, homogeneous-at-the-static-type-level list.
type ListVal struct{ Elems []Value }

func (ListVal) value() {}
func (l ListVal) Inspect() string {
	parts := make([]string, len(l.Elems))
	for i, e := range l.Elems {
		parts[i] = e.Inspect()
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// TupleVal is a fixed-arity heterogeneous value.
type TupleVal struct{ Elems []Value }

func (TupleVal) value() {}
func (t TupleVal) Inspect() string {
	parts := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		parts[i] = e.Inspect()
	}
	return "(" + strings.Join(parts, ",") + ")"
}

// StructVal is a named-field record (field order is that of the
// checker's resolved types.Struct, whose fields are sorted by name).
type StructVal struct {
	TypeName string
	Fields   map[string]Value
	Order    []string
}

func (StructVal) value() {}
func (s StructVal) Inspect() string {
	parts := make([]string, len(s.Order))
	for i, name := range s.Order {
		parts[i] = name + ":" + s.Fields[name].Inspect()
	}
	return s.TypeName + "{" + strings.Join(parts, ",") + "}"
}

// EnumVal is one instance of a declared enum variant.
type EnumVal struct {
	EnumName string
	Variant  string
	Tuple    []Value          // non-nil for tuple-shaped variants
	Fields   map[string]Value // non-nil for struct-shaped variants
	Order    []string
}

func (EnumVal) value() {}
func (e EnumVal) Inspect() string {
	if e.Tuple != nil {
		parts := make([]string, len(e.Tuple))
		for i, v := range e.Tuple {
			parts[i] = v.Inspect()
		}
		return e.EnumName + "::" + e.Variant + "(" + strings.Join(parts, ",") + ")"
	}
	if e.Fields != nil {
		parts := make([]string, len(e.Order))
		for i, name := range e.Order {
			parts[i] = name + ":" + e.Fields[name].Inspect()
		}
		return e.EnumName + "::" + e.Variant + "{" + strings.Join(parts, ",") + "}"
	}
	return e.EnumName + "::" + e.Variant
}

// ObjectVal wraps a host-supplied opaque value (spec.md's Object type):
// the core never inspects its contents directly, only via Env calls.
type ObjectVal struct {
	TypeName string
	Handle   interface{}
}

func (ObjectVal) value() {}
func (o ObjectVal) Inspect() string { return fmt.Sprintf("%s(%v)", o.TypeName, o.Handle) }

// CustomVal wraps a value under a type-alias name, for cast/subtype
// bookkeeping that must remember the alias identity (distinct aliases
// over the same underlying shape are not mutual subtypes).
type CustomVal struct {
	AliasName string
	Inner     Value
}

func (CustomVal) value() {}
func (c CustomVal) Inspect() string { return c.Inner.Inspect() }

// canonicalKey renders v into a string suitable as a Go map key,
// uniquely determined by v's structural content — used both for
// LinExpr term identity and EvalHistory memoization keys.
func canonicalKey(v Value) string {
	switch vv := v.(type) {
	case IntVal:
		return "i" + fmt.Sprint(int32(vv))
	case BoolVal:
		return "b" + fmt.Sprint(bool(vv))
	case StringVal:
		return "s" + string(vv)
	case NoneVal:
		return "n"
	case ListVal:
		parts := make([]string, len(vv.Elems))
		for i, e := range vv.Elems {
			parts[i] = canonicalKey(e)
		}
		return "L[" + strings.Join(parts, ",") + "]"
	case TupleVal:
		parts := make([]string, len(vv.Elems))
		for i, e := range vv.Elems {
			parts[i] = canonicalKey(e)
		}
		return "T(" + strings.Join(parts, ",") + ")"
	case StructVal:
		keys := append([]string{}, vv.Order...)
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + "=" + canonicalKey(vv.Fields[k])
		}
		return vv.TypeName + "{" + strings.Join(parts, ",") + "}"
	case EnumVal:
		if vv.Tuple != nil {
			parts := make([]string, len(vv.Tuple))
			for i, e := range vv.Tuple {
				parts[i] = canonicalKey(e)
			}
			return vv.EnumName + "::" + vv.Variant + "(" + strings.Join(parts, ",") + ")"
		}
		if vv.Fields != nil {
			keys := append([]string{}, vv.Order...)
			sort.Strings(keys)
			parts := make([]string, len(keys))
			for i, k := range keys {
				parts[i] = k + "=" + canonicalKey(vv.Fields[k])
			}
			return vv.EnumName + "::" + vv.Variant + "{" + strings.Join(parts, ",") + "}"
		}
		return vv.EnumName + "::" + vv.Variant
	case ObjectVal:
		return "O:" + vv.TypeName + ":" + fmt.Sprint(vv.Handle)
	case CustomVal:
		return "C:" + vv.AliasName + ":" + canonicalKey(vv.Inner)
	case *LinExprVal:
		return "E:" + vv.canonicalString()
	case ConstraintVal:
		parts := make([]string, len(vv.Atoms))
		for i, a := range vv.Atoms {
			parts[i] = string(a.Op) + ":" + a.Expr.canonicalString()
		}
		return "K:" + strings.Join(parts, "&")
	default:
		return fmt.Sprintf("?%v", v)
	}
}
