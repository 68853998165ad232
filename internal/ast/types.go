package ast

import "github.com/collomatique/colloml/internal/token"

// TypeName is a (possibly namespaced) type literal: `Int`, `Student`,
// `mod::Foo`, or `Result::Ok` (enum-variant reference in type position).
type TypeName struct {
	Module  string
	Name    string
	Variant string // non-empty for `Enum::Variant` type literals
	Sp      token.Span
}

func (t *TypeName) Span() token.Span { return t.Sp }
func (*TypeName) typeExprNode()      {}

// TypeOptional is sugar for `?T`, equivalent to `T | None`.
type TypeOptional struct {
	Inner TypeExpr
	Sp    token.Span
}

func (t *TypeOptional) Span() token.Span { return t.Sp }
func (*TypeOptional) typeExprNode()      {}

// TypeUnion is `T1 | T2 | ...`.
type TypeUnion struct {
	Members []TypeExpr
	Sp      token.Span
}

func (t *TypeUnion) Span() token.Span { return t.Sp }
func (*TypeUnion) typeExprNode()      {}

// TypeList is `[T]`.
type TypeList struct {
	Elem TypeExpr
	Sp   token.Span
}

func (t *TypeList) Span() token.Span { return t.Sp }
func (*TypeList) typeExprNode()      {}

// TypeTuple is `(T1, T2, ...)`, at least two elements.
type TypeTuple struct {
	Elems []TypeExpr
	Sp    token.Span
}

func (t *TypeTuple) Span() token.Span { return t.Sp }
func (*TypeTuple) typeExprNode()      {}

// TypeStructField is one `name: T` entry of a TypeStruct literal.
type TypeStructField struct {
	Name string
	Type TypeExpr
	Sp   token.Span
}

// TypeStruct is `{ field: T, ... }`.
type TypeStruct struct {
	Fields []TypeStructField
	Sp     token.Span
}

func (t *TypeStruct) Span() token.Span { return t.Sp }
func (*TypeStruct) typeExprNode()      {}
