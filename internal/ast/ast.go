// Package ast defines the spanned abstract syntax tree produced by the
// parser: top-level declarations (Let, Reify, TypeDecl, EnumDecl), type
// literals, and expressions, per spec.md §3 and §4.1.
package ast

import "github.com/collomatique/colloml/internal/token"

// Node is the base interface implemented by every AST node; every node
// carries the byte span of the source text it was parsed from.
type Node interface {
	Span() token.Span
}

// Statement is a top-level declaration.
type Statement interface {
	Node
	statementNode()
}

// Expression is any ColloML expression.
type Expression interface {
	Node
	expressionNode()
}

// TypeExpr is a type literal as written in source, before resolution by the
// checker into an internal/types.ExprType.
type TypeExpr interface {
	Node
	typeExprNode()
}

// Program is the root node: an ordered list of top-level declarations.
type Program struct {
	Decls []Statement
	Sp    token.Span
}

func (p *Program) Span() token.Span { return p.Sp }

// Param is a typed function parameter.
type Param struct {
	Name string
	Type TypeExpr
	Sp   token.Span
}

func (p Param) Span() token.Span { return p.Sp }

// FieldInit is `field: expr` inside a struct constructor.
type FieldInit struct {
	Name  string
	Value Expression
	Sp    token.Span
}

func (f FieldInit) Span() token.Span { return f.Sp }

// Let is `[pub] let name(params): OutType = body;` with an optional leading
// docstring.
type Let struct {
	Pub     bool
	Doc     *Docstring
	Name    string
	Params  []Param
	OutType TypeExpr
	Body    Expression
	Sp      token.Span
}

func (l *Let) Span() token.Span { return l.Sp }
func (*Let) statementNode()     {}

// Reify binds a decision variable name to a Constraint-returning function.
// IsList distinguishes `$name` (scalar) from `$[name]` (list-form).
type Reify struct {
	Pub      bool
	VarName  string
	IsList   bool
	TargetFn string
	Sp       token.Span
}

func (r *Reify) Span() token.Span { return r.Sp }
func (*Reify) statementNode()     {}

// TypeDecl is a type alias: `type Name = Underlying;`.
type TypeDecl struct {
	Name       string
	Underlying TypeExpr
	Sp         token.Span
}

func (t *TypeDecl) Span() token.Span { return t.Sp }
func (*TypeDecl) statementNode()     {}

// EnumVariantKind distinguishes the three enum-variant payload shapes.
type EnumVariantKind int

const (
	VariantUnit EnumVariantKind = iota
	VariantTuple
	VariantStruct
)

// EnumVariant is one arm of an EnumDecl.
type EnumVariant struct {
	Name         string
	Kind         EnumVariantKind
	TupleFields  []TypeExpr
	StructFields []Param
	Sp           token.Span
}

func (v EnumVariant) Span() token.Span { return v.Sp }

// EnumDecl is `enum Name = Variant1 | Variant2(T) | Variant3 { f: T };`.
type EnumDecl struct {
	Name     string
	Variants []EnumVariant
	Sp       token.Span
}

func (e *EnumDecl) Span() token.Span { return e.Sp }
func (*EnumDecl) statementNode()     {}

// Docstring is a sequence of interpolated lines, each itself a sequence of
// plain-text / expression parts (spec.md §4.1).
type Docstring struct {
	Lines []DocLine
	Sp    token.Span
}

func (d *Docstring) Span() token.Span { return d.Sp }

// DocLine is one line of a docstring: alternating text and expression parts.
type DocLine struct {
	Parts []DocPart
}

// DocPart is either a literal text fragment or a parsed+String-cast
// expression (spec.md §4.1: "wrapped into an explicit String(...) conversion").
type DocPart struct {
	Text string     // non-empty only when Expr == nil
	Expr Expression // the parsed expression, already wrapped in a String cast
}
