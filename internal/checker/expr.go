package checker

import (
	"github.com/collomatique/colloml/internal/ast"
	"github.com/collomatique/colloml/internal/diagnostics"
	"github.com/collomatique/colloml/internal/symbols"
	"github.com/collomatique/colloml/internal/types"
)

func (c *Checker) passTwoCheckBodies(prog *ast.Program) {
	names := make([]string, 0, len(c.Global.Funcs))
	for n := range c.Global.Funcs {
		names = append(names, n)
	}
	for _, n := range names {
		sig := c.Global.Funcs[n]
		if sig.Body == nil {
			continue
		}
		s := newScope(nil)
		for _, p := range sig.Params {
			s.set(p.Name, p.Type)
		}
		got := c.checkExpr(sig.Body, s)
		if sig.Output.IsNever() && !got.IsNever() {
			// No declared output type: infer it from the body.
			sig.Output = got
		} else if !types.Subtype(got, sig.Output) {
			c.errorf(diagnostics.KindTypeMismatch, sig.Body,
				"function %q returns %s but its declared output type is %s", n, got.String(), sig.Output.String())
		}
		c.checkDocstring(sig.Doc, s)
	}
}

// checkDocstring type-checks every backtick-delimited expression part of
// a docstring in the owning function's parameter scope, same as any
// other body expression — a docstring is rendered at every call, so a
// bad embedded expression is exactly as real a bug as one in the body.
func (c *Checker) checkDocstring(doc *ast.Docstring, s *scope) {
	if doc == nil {
		return
	}
	for _, line := range doc.Lines {
		for _, part := range line.Parts {
			if part.Expr != nil {
				c.checkExpr(part.Expr, s)
			}
		}
	}
}

// checkExpr type-checks e in scope s, records its type in c.ExprTypes and
// returns it. On any error the node is recorded (and returned) as Never
// so callers can keep checking the rest of the tree.
func (c *Checker) checkExpr(e ast.Expression, s *scope) types.ExprType {
	t := c.checkExprInternal(e, s)
	c.ExprTypes[e] = t
	return t
}

func (c *Checker) checkExprInternal(e ast.Expression, s *scope) types.ExprType {
	switch n := e.(type) {
	case *ast.IntLit:
		return types.IntType()
	case *ast.BoolLit:
		return types.BoolType()
	case *ast.StringLit:
		return types.StringType()
	case *ast.NoneLit:
		return types.NoneType()
	case *ast.Path:
		return c.checkPath(n, s)
	case *ast.FieldAccess:
		return c.checkFieldAccess(n, s)
	case *ast.TupleIndex:
		return c.checkTupleIndex(n, s)
	case *ast.ListIndex:
		return c.checkListIndex(n, s)
	case *ast.BinaryExpr:
		return c.checkBinary(n, s)
	case *ast.UnaryExpr:
		return c.checkUnary(n, s)
	case *ast.NullCoalesce:
		return c.checkNullCoalesce(n, s)
	case *ast.Cardinality:
		list := c.checkExpr(n.List, s)
		if !list.IsListLike() {
			c.errorf(diagnostics.KindTypeMismatch, n, "cardinality `|...|` requires a list, got %s", list.String())
		}
		return types.IntType()
	case *ast.ListLit:
		return c.checkListLit(n, s)
	case *ast.TupleLit:
		elems := make([]types.ExprType, len(n.Elems))
		for i, el := range n.Elems {
			elems[i] = c.checkExpr(el, s)
		}
		return types.Of(types.Tuple{Elems: elems})
	case *ast.ListRange:
		lo := c.checkExpr(n.Lo, s)
		hi := c.checkExpr(n.Hi, s)
		if !types.Subtype(lo, types.IntType()) || !types.Subtype(hi, types.IntType()) {
			c.errorf(diagnostics.KindTypeMismatch, n, "range bounds must be Int")
		}
		return types.ListType(types.IntType())
	case *ast.ListComp:
		return c.checkListComp(n, s)
	case *ast.Forall:
		return c.checkForall(n, s)
	case *ast.Sum:
		return c.checkSum(n, s)
	case *ast.Fold:
		return c.checkFold(n, s)
	case *ast.IfExpr:
		return c.checkIf(n, s)
	case *ast.Match:
		return c.checkMatch(n, s)
	case *ast.LetIn:
		val := c.checkExpr(n.Value, s)
		inner := newScope(s)
		inner.set(n.Name, val)
		return c.checkExpr(n.Body, inner)
	case *ast.PanicExpr:
		c.checkExpr(n.Msg, s)
		return types.NeverType()
	case *ast.AsExpr:
		return c.checkAs(n, s)
	case *ast.CastExpr:
		return c.checkCast(n, s)
	case *ast.ConstructCall:
		return c.checkConstructCall(n, s)
	case *ast.ConstructStruct:
		return c.checkConstructStruct(n, s)
	case *ast.EnumCtorCall:
		return c.checkEnumCtorCall(n, s)
	case *ast.EnumCtorStruct:
		return c.checkEnumCtorStruct(n, s)
	case *ast.GlobalCollection:
		return c.checkGlobalCollection(n, s)
	case *ast.Call:
		return c.checkCall(n, s)
	case *ast.VarCall:
		return c.checkVarCall(n, s)
	default:
		c.errorf(diagnostics.KindTypeMismatch, e, "internal: unhandled expression node %T", e)
		return types.NeverType()
	}
}

func (c *Checker) checkPath(n *ast.Path, s *scope) types.ExprType {
	if len(n.Segments) == 1 {
		if t, ok := s.get(n.Segments[0]); ok {
			return t
		}
		// A bare name can also refer to a zero-arg function call written
		// without parens is NOT allowed in ColloML; treat as unknown.
		c.errorf(diagnostics.KindUnknownIdentifier, n, "unknown identifier %q", n.Segments[0])
		return types.NeverType()
	}
	// `mod::Name` as a value (not a call) only makes sense for a unit
	// enum variant constructor.
	if ed, ok := c.Global.Enums[n.Segments[0]]; ok {
		if v, ok := ed.Variants[n.Segments[1]]; ok {
			return types.Of(v)
		}
	}
	c.errorf(diagnostics.KindUnknownIdentifier, n, "unknown path %v", n.Segments)
	return types.NeverType()
}

func (c *Checker) checkFieldAccess(n *ast.FieldAccess, s *scope) types.ExprType {
	recv := c.checkExpr(n.Recv, s)
	und := c.underlyingOf(recv)
	v, ok := und.IsSingle()
	if !ok {
		c.errorf(diagnostics.KindTypeMismatch, n, "field access requires a single struct or object type, got %s", recv.String())
		return types.NeverType()
	}
	switch vv := v.(type) {
	case types.Struct:
		if ft, ok := vv.FieldType(n.Field); ok {
			return ft
		}
	case types.Object:
		if os, ok := c.Global.ObjectTypes[vv.Name]; ok {
			if ft, ok := os.Fields[n.Field]; ok {
				return ft
			}
		}
	}
	c.errorf(diagnostics.KindUnknownField, n, "type %s has no field %q", recv.String(), n.Field)
	return types.NeverType()
}

func (c *Checker) checkTupleIndex(n *ast.TupleIndex, s *scope) types.ExprType {
	recv := c.checkExpr(n.Recv, s)
	v, ok := c.underlyingOf(recv).IsSingle()
	if !ok {
		c.errorf(diagnostics.KindTypeMismatch, n, "tuple index requires a tuple type, got %s", recv.String())
		return types.NeverType()
	}
	tup, ok := v.(types.Tuple)
	if !ok {
		c.errorf(diagnostics.KindTypeMismatch, n, "tuple index requires a tuple type, got %s", recv.String())
		return types.NeverType()
	}
	if n.Index < 0 || n.Index >= len(tup.Elems) {
		c.errorf(diagnostics.KindTupleIndexOOB, n, "tuple index %d out of bounds for %s", n.Index, recv.String())
		return types.NeverType()
	}
	return tup.Elems[n.Index]
}

func (c *Checker) checkListIndex(n *ast.ListIndex, s *scope) types.ExprType {
	recv := c.checkExpr(n.Recv, s)
	idx := c.checkExpr(n.Index, s)
	if !types.Subtype(idx, types.IntType()) {
		c.errorf(diagnostics.KindTypeMismatch, n, "list index must be Int, got %s", idx.String())
	}
	elem, ok := recv.ElementType()
	if !ok {
		c.errorf(diagnostics.KindTypeMismatch, n, "indexing requires a list type, got %s", recv.String())
		return types.NeverType()
	}
	if n.Panic {
		return elem
	}
	return types.OptionalOf(elem)
}

func (c *Checker) checkBinary(n *ast.BinaryExpr, s *scope) types.ExprType {
	l := c.checkExpr(n.Left, s)
	r := c.checkExpr(n.Right, s)
	switch n.Op {
	case ast.OpAdd:
		if types.Subtype(l, types.StringType()) && types.Subtype(r, types.StringType()) {
			return types.StringType()
		}
		fallthrough
	case ast.OpSub, ast.OpMul, ast.OpDiv, ast.OpMod:
		if !l.IsArithmetic() || !r.IsArithmetic() {
			c.errorf(diagnostics.KindTypeMismatch, n, "arithmetic operator requires Int/LinExpr operands, got %s and %s", l.String(), r.String())
			return types.NeverType()
		}
		if l.Contains(types.LinExpr{}) || r.Contains(types.LinExpr{}) {
			if n.Op == ast.OpMul && l.Contains(types.LinExpr{}) && r.Contains(types.LinExpr{}) {
				c.errorf(diagnostics.KindNonLinearConstraint, n, "cannot multiply two LinExpr operands (non-linear)")
				return types.NeverType()
			}
			if n.Op == ast.OpDiv || n.Op == ast.OpMod {
				c.errorf(diagnostics.KindNonLinearConstraint, n, "cannot divide/modulo a LinExpr")
				return types.NeverType()
			}
			return types.LinExprType()
		}
		return types.IntType()
	case ast.OpAnd, ast.OpOr:
		if !types.Subtype(l, types.BoolType()) || !types.Subtype(r, types.BoolType()) {
			c.errorf(diagnostics.KindTypeMismatch, n, "and/or require Bool operands, got %s and %s", l.String(), r.String())
		}
		return types.BoolType()
	case ast.OpEq, ast.OpNeq:
		return types.BoolType()
	case ast.OpLt, ast.OpLte, ast.OpGt, ast.OpGte:
		if !types.Subtype(l, types.IntType()) || !types.Subtype(r, types.IntType()) {
			c.errorf(diagnostics.KindTypeMismatch, n, "comparison operators require Int operands, got %s and %s", l.String(), r.String())
		}
		return types.BoolType()
	case ast.OpConstrEq, ast.OpConstrLe, ast.OpConstrGe:
		if !l.IsArithmetic() || !r.IsArithmetic() {
			c.errorf(diagnostics.KindTypeMismatch, n, "constraint operators (===, <==, >==) require Int/LinExpr operands, got %s and %s", l.String(), r.String())
		}
		return types.ConstraintType()
	default:
		c.errorf(diagnostics.KindTypeMismatch, n, "internal: unhandled binary operator")
		return types.NeverType()
	}
}

func (c *Checker) checkUnary(n *ast.UnaryExpr, s *scope) types.ExprType {
	operand := c.checkExpr(n.Operand, s)
	switch n.Op {
	case ast.OpNeg:
		if !operand.IsArithmetic() {
			c.errorf(diagnostics.KindTypeMismatch, n, "unary `-` requires Int/LinExpr, got %s", operand.String())
			return types.NeverType()
		}
		return operand
	case ast.OpNot:
		if !types.Subtype(operand, types.BoolType()) {
			c.errorf(diagnostics.KindTypeMismatch, n, "`not` requires Bool, got %s", operand.String())
		}
		return types.BoolType()
	}
	return types.NeverType()
}

func (c *Checker) checkNullCoalesce(n *ast.NullCoalesce, s *scope) types.ExprType {
	l := c.checkExpr(n.Left, s)
	r := c.checkExpr(n.Right, s)
	if !l.Contains(types.NoneT{}) {
		c.warnf(diagnostics.KindShadowedName, n, "left side of `??` is never None")
	}
	without := types.Diff(l, types.NoneType())
	return types.Unify(without, r)
}

func (c *Checker) checkListLit(n *ast.ListLit, s *scope) types.ExprType {
	if len(n.Elems) == 0 {
		return types.EmptyListType()
	}
	elem := types.NeverType()
	for _, el := range n.Elems {
		elem = types.Unify(elem, c.checkExpr(el, s))
	}
	return types.ListType(elem)
}

func (c *Checker) checkListComp(n *ast.ListComp, s *scope) types.ExprType {
	inner := newScope(s)
	for _, clause := range n.Clauses {
		coll := c.checkExpr(clause.Coll, inner)
		elem, ok := coll.ElementType()
		if !ok {
			c.errorf(diagnostics.KindTypeMismatch, n, "`for %s in ...` requires a list, got %s", clause.Var, coll.String())
			elem = types.NeverType()
		}
		inner.set(clause.Var, elem)
	}
	if n.Where != nil {
		cond := c.checkExpr(n.Where, inner)
		if !types.Subtype(cond, types.BoolType()) {
			c.errorf(diagnostics.KindTypeMismatch, n, "`where` clause must be Bool, got %s", cond.String())
		}
	}
	body := c.checkExpr(n.Body, inner)
	return types.ListType(body)
}

func (c *Checker) checkForall(n *ast.Forall, s *scope) types.ExprType {
	inner := newScope(s)
	coll := c.checkExpr(n.Coll, s)
	elem, ok := coll.ElementType()
	if !ok {
		c.errorf(diagnostics.KindTypeMismatch, n, "`forall %s in ...` requires a list, got %s", n.Var, coll.String())
		elem = types.NeverType()
	}
	inner.set(n.Var, elem)
	if n.Where != nil {
		cond := c.checkExpr(n.Where, inner)
		if !types.Subtype(cond, types.BoolType()) {
			c.errorf(diagnostics.KindTypeMismatch, n, "`where` clause must be Bool, got %s", cond.String())
		}
	}
	body := c.checkExpr(n.Body, inner)
	if !types.Subtype(body, types.ConstraintType()) {
		c.errorf(diagnostics.KindTypeMismatch, n, "`forall` body must be a Constraint, got %s", body.String())
	}
	return types.ConstraintType()
}

func (c *Checker) checkSum(n *ast.Sum, s *scope) types.ExprType {
	inner := newScope(s)
	coll := c.checkExpr(n.Coll, s)
	elem, ok := coll.ElementType()
	if !ok {
		c.errorf(diagnostics.KindTypeMismatch, n, "`sum %s in ...` requires a list, got %s", n.Var, coll.String())
		elem = types.NeverType()
	}
	inner.set(n.Var, elem)
	if n.Where != nil {
		cond := c.checkExpr(n.Where, inner)
		if !types.Subtype(cond, types.BoolType()) {
			c.errorf(diagnostics.KindTypeMismatch, n, "`where` clause must be Bool, got %s", cond.String())
		}
	}
	body := c.checkExpr(n.Body, inner)
	if !body.IsArithmetic() {
		c.errorf(diagnostics.KindTypeMismatch, n, "`sum` body must be Int/LinExpr, got %s", body.String())
		return types.NeverType()
	}
	if body.Contains(types.LinExpr{}) {
		return types.LinExprType()
	}
	return types.IntType()
}

func (c *Checker) checkFold(n *ast.Fold, s *scope) types.ExprType {
	coll := c.checkExpr(n.Coll, s)
	elem, ok := coll.ElementType()
	if !ok {
		c.errorf(diagnostics.KindTypeMismatch, n, "`fold %s in ...` requires a list, got %s", n.Var, coll.String())
		elem = types.NeverType()
	}
	init := c.checkExpr(n.Init, s)

	inner := newScope(s)
	inner.set(n.Var, elem)
	inner.set(n.AccName, init)
	if n.Where != nil {
		cond := c.checkExpr(n.Where, inner)
		if !types.Subtype(cond, types.BoolType()) {
			c.errorf(diagnostics.KindTypeMismatch, n, "`where` clause must be Bool, got %s", cond.String())
		}
	}
	body := c.checkExpr(n.Body, inner)
	// The accumulator's type may only refine (narrow or stay equal)
	// across an iteration, never widen, so the fold's result type is
	// well-defined at every step (spec.md's `FoldNotRefining` check).
	if !types.Subtype(body, init) {
		c.errorf(diagnostics.KindFoldNotRefining, n, "fold body type %s does not refine the accumulator's type %s", body.String(), init.String())
	}
	return init
}

func (c *Checker) checkIf(n *ast.IfExpr, s *scope) types.ExprType {
	cond := c.checkExpr(n.Cond, s)
	if !types.Subtype(cond, types.BoolType()) {
		c.errorf(diagnostics.KindTypeMismatch, n, "`if` condition must be Bool, got %s", cond.String())
	}
	then := c.checkExpr(n.Then, s)
	els := c.checkExpr(n.Else, s)
	return types.Unify(then, els)
}

func (c *Checker) checkMatch(n *ast.Match, s *scope) types.ExprType {
	scrut := c.checkExpr(n.Scrutinee, s)
	remaining := scrut
	result := types.NeverType()
	for _, arm := range n.Arms {
		armType := remaining
		if arm.AsType != nil {
			target := c.resolveTypeExprShallow(arm.AsType)
			if !types.Subtype(target, remaining) {
				c.errorf(diagnostics.KindInvalidCastDirection, n, "match arm type %s does not narrow %s", target.String(), remaining.String())
			}
			armType = target
		}
		inner := newScope(s)
		inner.set(arm.BindName, armType)
		if arm.Where != nil {
			cond := c.checkExpr(arm.Where, inner)
			if !types.Subtype(cond, types.BoolType()) {
				c.errorf(diagnostics.KindTypeMismatch, n, "match arm `where` clause must be Bool, got %s", cond.String())
			}
		} else if arm.AsType != nil {
			remaining = types.Diff(remaining, armType)
		}
		body := c.checkExpr(arm.Body, inner)
		result = types.Unify(result, body)
	}
	if !remaining.IsNever() {
		c.errorf(diagnostics.KindNonExhaustiveMatch, n, "match is not exhaustive: %s is not covered", remaining.String())
	}
	return result
}

func (c *Checker) checkAs(n *ast.AsExpr, s *scope) types.ExprType {
	operand := c.checkExpr(n.Operand, s)
	target := c.resolveTypeExprShallow(n.Type)
	if !types.CanWidenTo(operand, target) {
		c.errorf(diagnostics.KindInvalidCastDirection, n, "`as %s` requires %s to be a subtype of %s", target.String(), operand.String(), target.String())
	}
	return target
}

func (c *Checker) checkCast(n *ast.CastExpr, s *scope) types.ExprType {
	operand := c.checkExpr(n.Operand, s)
	target := c.resolveTypeExprShallow(n.Type)
	if !types.CanNarrowTo(operand, target) {
		c.errorf(diagnostics.KindInvalidCastDirection, n, "cast target %s must be a subtype of %s", target.String(), operand.String())
	}
	if n.Panic {
		return target
	}
	return types.OptionalOf(target)
}

// checkConstructCall type-checks `T(args)`: a positional constructor-
// style conversion. The only concrete case the language exercises today
// is the docstring lowering's `String(expr)`, grounded on the original's
// ComplexTypeCast/can_convert_to (original_source/collo-ml/src/semantics/
// expr_checking.rs:280-420): exactly one argument, and the argument's
// type must actually be convertible to the target, not merely a
// subtype of it.
func (c *Checker) checkConstructCall(n *ast.ConstructCall, s *scope) types.ExprType {
	argTypes := make([]types.ExprType, len(n.Args))
	for i, a := range n.Args {
		argTypes[i] = c.checkExpr(a, s)
	}
	target := c.resolveTypeName(&ast.TypeName{Name: n.TypeName, Sp: n.Sp})
	if len(n.Args) != 1 {
		c.errorf(diagnostics.KindArgCountMismatch, n, "%s(...) conversion takes exactly one argument, got %d", n.TypeName, len(n.Args))
		return target
	}
	if !types.CanConvertTo(argTypes[0], target) {
		c.errorf(diagnostics.KindInvalidCastDirection, n, "cannot convert %s to %s", argTypes[0].String(), target.String())
	}
	return target
}

func (c *Checker) checkConstructStruct(n *ast.ConstructStruct, s *scope) types.ExprType {
	alias, ok := c.Global.Aliases[n.TypeName]
	if !ok {
		c.errorf(diagnostics.KindUnknownType, n, "unknown struct type %q", n.TypeName)
		return types.NeverType()
	}
	v, ok := alias.Underlying.IsSingle()
	st, isStruct := v.(types.Struct)
	if !ok || !isStruct {
		c.errorf(diagnostics.KindTypeMismatch, n, "%q is not a struct type", n.TypeName)
		return types.NeverType()
	}
	given := map[string]bool{}
	for _, fi := range n.Fields {
		if given[fi.Name] {
			c.errorf(diagnostics.KindDuplicateField, n, "duplicate field %q in constructor", fi.Name)
			continue
		}
		given[fi.Name] = true
		ft := c.checkExpr(fi.Value, s)
		declared, ok := st.FieldType(fi.Name)
		if !ok {
			c.errorf(diagnostics.KindUnknownField, n, "struct %q has no field %q", n.TypeName, fi.Name)
			continue
		}
		if !types.Subtype(ft, declared) {
			c.errorf(diagnostics.KindTypeMismatch, n, "field %q expects %s, got %s", fi.Name, declared.String(), ft.String())
		}
	}
	for _, f := range st.Fields {
		if !given[f.Name] {
			c.errorf(diagnostics.KindTypeMismatch, n, "missing field %q in constructor for %q", f.Name, n.TypeName)
		}
	}
	return types.Of(types.Custom{Root: n.TypeName})
}

func (c *Checker) checkEnumCtorCall(n *ast.EnumCtorCall, s *scope) types.ExprType {
	for _, a := range n.Args {
		c.checkExpr(a, s)
	}
	ed, ok := c.Global.Enums[n.EnumName]
	if !ok {
		c.errorf(diagnostics.KindUnknownType, n, "unknown enum %q", n.EnumName)
		return types.NeverType()
	}
	v, ok := ed.Variants[n.Variant]
	if !ok {
		c.errorf(diagnostics.KindUnknownType, n, "enum %q has no variant %q", n.EnumName, n.Variant)
		return types.NeverType()
	}
	return types.Of(v)
}

func (c *Checker) checkEnumCtorStruct(n *ast.EnumCtorStruct, s *scope) types.ExprType {
	for _, fi := range n.Fields {
		c.checkExpr(fi.Value, s)
	}
	ed, ok := c.Global.Enums[n.EnumName]
	if !ok {
		c.errorf(diagnostics.KindUnknownType, n, "unknown enum %q", n.EnumName)
		return types.NeverType()
	}
	v, ok := ed.Variants[n.Variant]
	if !ok {
		c.errorf(diagnostics.KindUnknownType, n, "enum %q has no variant %q", n.EnumName, n.Variant)
		return types.NeverType()
	}
	return types.Of(v)
}

func (c *Checker) checkGlobalCollection(n *ast.GlobalCollection, s *scope) types.ExprType {
	if _, ok := c.Global.ObjectTypes[n.TypeName]; !ok {
		c.errorf(diagnostics.KindNotACollection, n, "`@[%s]` requires a host-declared object type", n.TypeName)
		return types.ListType(types.NeverType())
	}
	return types.ListType(types.Of(types.Object{Name: n.TypeName}))
}

func (c *Checker) checkCall(n *ast.Call, s *scope) types.ExprType {
	sig, ok := c.Global.Funcs[n.Name]
	if !ok {
		// Might actually be a zero/one-arg type constructor call written
		// in plain-call form; the parser can't disambiguate these.
		if _, isAlias := c.Global.Aliases[n.Name]; isAlias {
			for _, a := range n.Args {
				c.checkExpr(a, s)
			}
			return c.resolveTypeName(&ast.TypeName{Name: n.Name, Sp: n.Sp})
		}
		c.errorf(diagnostics.KindUnknownIdentifier, n, "call to undeclared function %q", n.Name)
		for _, a := range n.Args {
			c.checkExpr(a, s)
		}
		return types.NeverType()
	}
	sig.Used = true
	if len(n.Args) != len(sig.Params) {
		c.errorf(diagnostics.KindArgCountMismatch, n, "%q expects %d argument(s), got %d", n.Name, len(sig.Params), len(n.Args))
	}
	for i, a := range n.Args {
		at := c.checkExpr(a, s)
		if i < len(sig.Params) && !types.Subtype(at, sig.Params[i].Type) {
			c.errorf(diagnostics.KindTypeMismatch, n, "argument %d of %q expects %s, got %s", i, n.Name, sig.Params[i].Type.String(), at.String())
		}
	}
	return sig.Output
}

// checkVarCall type-checks `$name(args)` / `$[name](args)`. A host
// external-variable family has no list form (the host declares a flat
// ExternVar{name, params}, spec.md §4.6). A reified family's scalar/
// list-ness is fixed at its `reify` declaration (symbols.ReifyDef.Kind);
// `n.IsList` must agree with it, and only the list form promotes the
// result to `[LinExpr]` (spec.md line 156: one ScriptVar per element of
// the target function's returned constraint list).
func (c *Checker) checkVarCall(n *ast.VarCall, s *scope) types.ExprType {
	for _, a := range n.Args {
		c.checkExpr(a, s)
	}
	if _, ok := c.Global.ExternVars[n.Name]; ok {
		if n.IsList {
			c.errorf(diagnostics.KindInvalidReifyTarget, n, "external variable family %q has no list form", n.Name)
			return types.NeverType()
		}
		return types.LinExprType()
	}
	if reify, ok := c.Global.Reifies[n.Name]; ok {
		isListReify := reify.Kind == symbols.ReifyList
		if n.IsList != isListReify {
			if n.IsList {
				c.errorf(diagnostics.KindInvalidReifyTarget, n, "%q is not declared as a list-form reification; call it as $%s(...)", n.Name, n.Name)
			} else {
				c.errorf(diagnostics.KindInvalidReifyTarget, n, "%q is declared as a list-form reification; call it as $[%s](...)", n.Name, n.Name)
			}
			return types.NeverType()
		}
		if isListReify {
			return types.ListType(types.LinExprType())
		}
		return types.LinExprType()
	}
	c.errorf(diagnostics.KindInvalidReifyTarget, n, "unknown decision-variable family %q", n.Name)
	return types.NeverType()
}
