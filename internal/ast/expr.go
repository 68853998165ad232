package ast

import "github.com/collomatique/colloml/internal/token"

// --- literals & identifiers ---

type IntLit struct {
	Value int32
	Sp    token.Span
}

func (n *IntLit) Span() token.Span { return n.Sp }
func (*IntLit) expressionNode()    {}

type BoolLit struct {
	Value bool
	Sp    token.Span
}

func (n *BoolLit) Span() token.Span { return n.Sp }
func (*BoolLit) expressionNode()    {}

type StringLit struct {
	Value string
	Sp    token.Span
}

func (n *StringLit) Span() token.Span { return n.Sp }
func (*StringLit) expressionNode()    {}

type NoneLit struct{ Sp token.Span }

func (n *NoneLit) Span() token.Span { return n.Sp }
func (*NoneLit) expressionNode()    {}

// Path is an identifier or namespaced path: `name`, `mod::name`.
type Path struct {
	Segments []string
	Sp       token.Span
}

func (n *Path) Span() token.Span { return n.Sp }
func (*Path) expressionNode()    {}

// --- access ---

type FieldAccess struct {
	Recv  Expression
	Field string
	Sp    token.Span
}

func (n *FieldAccess) Span() token.Span { return n.Sp }
func (*FieldAccess) expressionNode()    {}

type TupleIndex struct {
	Recv  Expression
	Index int
	Sp    token.Span
}

func (n *TupleIndex) Span() token.Span { return n.Sp }
func (*TupleIndex) expressionNode()    {}

// ListIndex is `recv[index]` in its two forms: `?` yields Option,
// `!` panics out of range.
type ListIndex struct {
	Recv    Expression
	Index   Expression
	Panic   bool // true for `!`, false for `?`
	Sp      token.Span
}

func (n *ListIndex) Span() token.Span { return n.Sp }
func (*ListIndex) expressionNode()    {}

// --- operators ---

type BinOp int

const (
	OpAdd BinOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpAnd
	OpOr
	OpEq
	OpNeq
	OpLt
	OpLte
	OpGt
	OpGte
	OpConstrEq // ===
	OpConstrLe // <==
	OpConstrGe // >==
	OpIn
)

type BinaryExpr struct {
	Op    BinOp
	Left  Expression
	Right Expression
	Sp    token.Span
}

func (n *BinaryExpr) Span() token.Span { return n.Sp }
func (*BinaryExpr) expressionNode()    {}

type UnaryOp int

const (
	OpNeg UnaryOp = iota
	OpNot
)

type UnaryExpr struct {
	Op      UnaryOp
	Operand Expression
	Sp      token.Span
}

func (n *UnaryExpr) Span() token.Span { return n.Sp }
func (*UnaryExpr) expressionNode()    {}

// NullCoalesce is `lhs ?? rhs`.
type NullCoalesce struct {
	Left, Right Expression
	Sp          token.Span
}

func (n *NullCoalesce) Span() token.Span { return n.Sp }
func (*NullCoalesce) expressionNode()    {}

// Cardinality is `|list|`.
type Cardinality struct {
	List Expression
	Sp   token.Span
}

func (n *Cardinality) Span() token.Span { return n.Sp }
func (*Cardinality) expressionNode()    {}

// --- lists ---

type ListLit struct {
	Elems []Expression
	Sp    token.Span
}

func (n *ListLit) Span() token.Span { return n.Sp }
func (*ListLit) expressionNode()    {}

// TupleLit is `(e1, e2, ...)`, at least two elements (a single
// parenthesized expression is just grouping, not a tuple).
type TupleLit struct {
	Elems []Expression
	Sp    token.Span
}

func (n *TupleLit) Span() token.Span { return n.Sp }
func (*TupleLit) expressionNode()    {}

// ListRange is `[lo..hi]`.
type ListRange struct {
	Lo, Hi Expression
	Sp     token.Span
}

func (n *ListRange) Span() token.Span { return n.Sp }
func (*ListRange) expressionNode()    {}

// ForClause is one `for v in coll` generator of a list comprehension,
// forall, sum or fold.
type ForClause struct {
	Var  string
	Coll Expression
	Sp   token.Span
}

// ListComp is a list comprehension with one or more generators (leftmost
// outermost) and an optional filter.
type ListComp struct {
	Body    Expression
	Clauses []ForClause
	Where   Expression // nil if absent
	Sp      token.Span
}

func (n *ListComp) Span() token.Span { return n.Sp }
func (*ListComp) expressionNode()    {}

// Forall is `forall v in coll [where f] body`.
type Forall struct {
	Var   string
	Coll  Expression
	Where Expression
	Body  Expression
	Sp    token.Span
}

func (n *Forall) Span() token.Span { return n.Sp }
func (*Forall) expressionNode()    {}

// Sum is `sum v in coll [where f] body`.
type Sum struct {
	Var   string
	Coll  Expression
	Where Expression
	Body  Expression
	Sp    token.Span
}

func (n *Sum) Span() token.Span { return n.Sp }
func (*Sum) expressionNode()    {}

// Fold is `fold`/`rfold v in coll as acc = init [where f] body`.
type Fold struct {
	Reverse bool
	Var     string
	Coll    Expression
	AccName string
	Init    Expression
	Where   Expression
	Body    Expression
	Sp      token.Span
}

func (n *Fold) Span() token.Span { return n.Sp }
func (*Fold) expressionNode()    {}

// --- control flow ---

type IfExpr struct {
	Cond, Then, Else Expression
	Sp               token.Span
}

func (n *IfExpr) Span() token.Span { return n.Sp }
func (*IfExpr) expressionNode()    {}

// MatchArm is one arm of a match expression: `x as T [where guard] { body }`,
// or a bare `x { body }` (no narrowing) when AsType is nil.
type MatchArm struct {
	BindName string
	AsType   TypeExpr // nil: no narrowing, binds the scrutinee type as-is
	Where    Expression
	Body     Expression
	Sp       token.Span
}

type Match struct {
	Scrutinee Expression
	Arms      []MatchArm
	Sp        token.Span
}

func (n *Match) Span() token.Span { return n.Sp }
func (*Match) expressionNode()    {}

// LetIn is `let x = value in body`.
type LetIn struct {
	Name  string
	Value Expression
	Body  Expression
	Sp    token.Span
}

func (n *LetIn) Span() token.Span { return n.Sp }
func (*LetIn) expressionNode()    {}

// PanicExpr is `panic expr`.
type PanicExpr struct {
	Msg Expression
	Sp  token.Span
}

func (n *PanicExpr) Span() token.Span { return n.Sp }
func (*PanicExpr) expressionNode()    {}

// --- casts & constructors ---

// AsExpr is `e as T` (forced widening).
type AsExpr struct {
	Operand Expression
	Type    TypeExpr
	Sp      token.Span
}

func (n *AsExpr) Span() token.Span { return n.Sp }
func (*AsExpr) expressionNode()    {}

// CastExpr is `e cast? T` (Panic == false) or `e cast! T` (Panic == true).
type CastExpr struct {
	Operand Expression
	Type    TypeExpr
	Panic   bool
	Sp      token.Span
}

func (n *CastExpr) Span() token.Span { return n.Sp }
func (*CastExpr) expressionNode()    {}

// ConstructCall is `T(args)`: positional constructor-style cast/call.
type ConstructCall struct {
	TypeName string
	Args     []Expression
	Sp       token.Span
}

func (n *ConstructCall) Span() token.Span { return n.Sp }
func (*ConstructCall) expressionNode()    {}

// ConstructStruct is `T { field: expr, ... }`.
type ConstructStruct struct {
	TypeName string
	Fields   []FieldInit
	Sp       token.Span
}

func (n *ConstructStruct) Span() token.Span { return n.Sp }
func (*ConstructStruct) expressionNode()    {}

// EnumCtorCall is `Enum::Variant(args)`.
type EnumCtorCall struct {
	EnumName string
	Variant  string
	Args     []Expression
	Sp       token.Span
}

func (n *EnumCtorCall) Span() token.Span { return n.Sp }
func (*EnumCtorCall) expressionNode()    {}

// EnumCtorStruct is `Enum::Variant { field: expr, ... }`.
type EnumCtorStruct struct {
	EnumName string
	Variant  string
	Fields   []FieldInit
	Sp       token.Span
}

func (n *EnumCtorStruct) Span() token.Span { return n.Sp }
func (*EnumCtorStruct) expressionNode()    {}

// GlobalCollection is `@[T]`: all environment-known instances of type T.
type GlobalCollection struct {
	TypeName string
	Sp       token.Span
}

func (n *GlobalCollection) Span() token.Span { return n.Sp }
func (*GlobalCollection) expressionNode()    {}

// Call is a plain function call `name(args)`.
type Call struct {
	Name string
	Args []Expression
	Sp   token.Span
}

func (n *Call) Span() token.Span { return n.Sp }
func (*Call) expressionNode()    {}

// VarCall is `$name(args)` (IsList == false) or `$[name](args)`
// (IsList == true, written `$$name(args)` in the internal data model).
type VarCall struct {
	Name   string
	Args   []Expression
	IsList bool
	Sp     token.Span
}

func (n *VarCall) Span() token.Span { return n.Sp }
func (*VarCall) expressionNode()    {}
