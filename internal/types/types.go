// Package types implements the ColloML type lattice: primitive types,
// lists, tuples, structs, object types and custom/enum-variant wrappers,
// plus the subtyping, unification, difference and narrowing operations
// described in spec.md §4.2.
//
// There are no type variables and no generics in ColloML, so unification
// here is not the substitution-producing unify of a Hindley-Milner style
// checker (contrast internal/../_examples teacher's typesystem.Unify) — it
// is a lattice join: given two ExprTypes it returns their least common
// supertype, a plain value with no bindings.
package types

import (
	"sort"
	"strings"
)

// Simple is one non-union member of an ExprType: a primitive, or a
// composite built from other ExprTypes.
type Simple interface {
	simple()
	String() string
	// key returns a canonical string used for deduplication and sorting.
	key() string
}

type Int struct{}
type Bool struct{}
type String struct{}
type LinExpr struct{}
type Constraint struct{}
type NoneT struct{}
type Never struct{}
type EmptyList struct{}

func (Int) simple()        {}
func (Bool) simple()       {}
func (String) simple()     {}
func (LinExpr) simple()    {}
func (Constraint) simple() {}
func (NoneT) simple()      {}
func (Never) simple()      {}
func (EmptyList) simple()  {}

func (Int) String() string        { return "Int" }
func (Bool) String() string       { return "Bool" }
func (String) String() string     { return "String" }
func (LinExpr) String() string    { return "LinExpr" }
func (Constraint) String() string { return "Constraint" }
func (NoneT) String() string      { return "None" }
func (Never) String() string      { return "Never" }
func (EmptyList) String() string  { return "EmptyList" }

func (Int) key() string        { return "Int" }
func (Bool) key() string       { return "Bool" }
func (String) key() string     { return "String" }
func (LinExpr) key() string    { return "LinExpr" }
func (Constraint) key() string { return "Constraint" }
func (NoneT) key() string      { return "None" }
func (Never) key() string      { return "Never" }
func (EmptyList) key() string  { return "EmptyList" }

// List is `List(T)`.
type List struct{ Elem ExprType }

func (List) simple()        {}
func (l List) String() string { return "[" + l.Elem.String() + "]" }
func (l List) key() string    { return "List(" + l.Elem.key() + ")" }

// Tuple is `Tuple(T1,...,Tn)`, n >= 2.
type Tuple struct{ Elems []ExprType }

func (Tuple) simple() {}
func (t Tuple) String() string {
	parts := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
func (t Tuple) key() string {
	parts := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		parts[i] = e.key()
	}
	return "Tuple(" + strings.Join(parts, ",") + ")"
}

// Field is one named field of a Struct. The checker and evaluator build
// Structs with their fields sorted by name.
type Field struct {
	Name string
	Type ExprType
}

// Struct is `Struct({field: T, ...})`. Field order is preserved for
// rendering but field *sets* (not order) determine structural equality.
type Struct struct{ Fields []Field }

func (Struct) simple() {}
func (s Struct) String() string {
	parts := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		parts[i] = f.Name + ": " + f.Type.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
func (s Struct) key() string {
	fields := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		fields[i] = f.Name + ":" + f.Type.key()
	}
	sort.Strings(fields)
	return "Struct(" + strings.Join(fields, ",") + ")"
}

func (s Struct) FieldType(name string) (ExprType, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f.Type, true
		}
	}
	return ExprType{}, false
}

// Object is `Object(name)`, an opaque host-provided domain type.
type Object struct{ Name string }

func (Object) simple()        {}
func (o Object) String() string { return o.Name }
func (o Object) key() string    { return "Object(" + o.Name + ")" }

// Custom is a type-alias wrapper (Variant == "") or an enum variant tag
// (Variant != ""), optionally qualified by Module.
type Custom struct {
	Module  string
	Root    string
	Variant string
}

func (Custom) simple() {}
func (c Custom) String() string {
	s := c.Root
	if c.Module != "" {
		s = c.Module + "::" + s
	}
	if c.Variant != "" {
		s = s + "::" + c.Variant
	}
	return s
}
func (c Custom) key() string { return "Custom(" + c.Module + "," + c.Root + "," + c.Variant + ")" }

// ExprType is a non-empty, normalized set of Simple variants representing a
// disjoint union (e.g. `?Int` is ExprType{Int{}, NoneT{}}). The zero value
// (no variants) represents Never, the bottom type.
type ExprType struct {
	Variants []Simple
}

// Of builds a normalized ExprType from one or more simple variants.
func Of(variants ...Simple) ExprType {
	return Normalize(ExprType{Variants: variants})
}

func NeverType() ExprType     { return ExprType{} }
func IntType() ExprType       { return Of(Int{}) }
func BoolType() ExprType      { return Of(Bool{}) }
func StringType() ExprType    { return Of(String{}) }
func LinExprType() ExprType   { return Of(LinExpr{}) }
func ConstraintType() ExprType { return Of(Constraint{}) }
func NoneType() ExprType      { return Of(NoneT{}) }
func EmptyListType() ExprType { return Of(EmptyList{}) }
func ListType(elem ExprType) ExprType { return Of(List{Elem: elem}) }
func OptionalOf(t ExprType) ExprType  { return Unify(t, NoneType()) }

func (t ExprType) IsNever() bool { return len(t.Variants) == 0 }

// key returns a canonical string for t built from its variants' keys,
// used by the composite Simple keys (List, Tuple, Struct).
func (t ExprType) key() string {
	parts := make([]string, len(t.Variants))
	for i, v := range t.Variants {
		parts[i] = v.key()
	}
	return strings.Join(parts, "|")
}

// IsSingle reports whether t has exactly one variant, returning it.
func (t ExprType) IsSingle() (Simple, bool) {
	if len(t.Variants) == 1 {
		return t.Variants[0], true
	}
	return nil, false
}

func (t ExprType) Contains(s Simple) bool {
	for _, v := range t.Variants {
		if sameShape(v, s) {
			return true
		}
	}
	return false
}

func (t ExprType) String() string {
	if t.IsNever() {
		return "Never"
	}
	if v, ok := t.IsSingle(); ok {
		return v.String()
	}
	parts := make([]string, len(t.Variants))
	for i, v := range t.Variants {
		parts[i] = v.String()
	}
	return strings.Join(parts, " | ")
}

// Normalize dedupes variants, collapses EmptyList into any present List(_),
// drops Never (unless it is the only variant supplied, in which case the
// result is the bottom type), and sorts for determinism.
func Normalize(t ExprType) ExprType {
	if len(t.Variants) == 0 {
		return t
	}
	hasList := false
	seen := make(map[string]Simple)
	order := make([]string, 0, len(t.Variants))
	for _, v := range t.Variants {
		if _, ok := v.(Never); ok {
			continue
		}
		if _, ok := v.(List); ok {
			hasList = true
		}
		k := v.key()
		if _, ok := seen[k]; !ok {
			seen[k] = v
			order = append(order, k)
		}
	}
	if hasList {
		delete(seen, EmptyList{}.key())
		filtered := order[:0]
		for _, k := range order {
			if k != (EmptyList{}).key() {
				filtered = append(filtered, k)
			}
		}
		order = filtered
	}
	if len(order) == 0 {
		return ExprType{}
	}
	sort.Strings(order)
	out := make([]Simple, len(order))
	for i, k := range order {
		out[i] = seen[k]
	}
	return ExprType{Variants: out}
}

func sameShape(a, b Simple) bool { return a.key() == b.key() }
