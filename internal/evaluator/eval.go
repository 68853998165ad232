package evaluator

import (
	"github.com/collomatique/colloml/internal/ast"
	"github.com/collomatique/colloml/internal/diagnostics"
	"github.com/collomatique/colloml/internal/symbols"
	"github.com/collomatique/colloml/internal/types"
)

// Evaluator walks a checked program's expressions against the global
// symbol table the checker built, producing runtime Values. It holds
// no mutable program state of its own beyond what's threaded through
// explicitly (Environment for lexical scope, EvalHistory for
// memoization and constraint accumulation).
type Evaluator struct {
	Global *symbols.GlobalEnv
	Types  map[ast.Expression]types.ExprType
	Host   Env
	Hist   *EvalHistory

	lookup *GlobalLookup
}

func New(global *symbols.GlobalEnv, exprTypes map[ast.Expression]types.ExprType, host Env, hist *EvalHistory) *Evaluator {
	return &Evaluator{
		Global: global,
		Types:  exprTypes,
		Host:   host,
		Hist:   hist,
		lookup: &GlobalLookup{Global: global},
	}
}

func (ev *Evaluator) typeOf(e ast.Expression) types.ExprType {
	return ev.Types[e]
}

func errAt(n ast.Node, kind diagnostics.Kind, format string, args ...interface{}) *diagnostics.EvalError {
	return diagnostics.NewEvalError(kind, n.Span(), format, args...)
}

// Eval evaluates e in env, returning its runtime value or the first
// evaluation error encountered (ColloML programs are checked before
// evaluation, so errors here are runtime-only: panics, cast! failures,
// out-of-range list access, and non-exhaustive match at runtime despite
// static exhaustiveness — the host's object population can make a
// statically-exhaustive match incomplete at a given call).
func (ev *Evaluator) Eval(e ast.Expression, env *Environment) (Value, *diagnostics.EvalError) {
	switch n := e.(type) {
	case *ast.IntLit:
		return IntVal(n.Value), nil
	case *ast.BoolLit:
		return BoolVal(n.Value), nil
	case *ast.StringLit:
		return StringVal(n.Value), nil
	case *ast.NoneLit:
		return NoneVal{}, nil
	case *ast.Path:
		return ev.evalPath(n, env)
	case *ast.FieldAccess:
		return ev.evalFieldAccess(n, env)
	case *ast.TupleIndex:
		return ev.evalTupleIndex(n, env)
	case *ast.ListIndex:
		return ev.evalListIndex(n, env)
	case *ast.BinaryExpr:
		return ev.evalBinary(n, env)
	case *ast.UnaryExpr:
		return ev.evalUnary(n, env)
	case *ast.NullCoalesce:
		return ev.evalNullCoalesce(n, env)
	case *ast.Cardinality:
		return ev.evalCardinality(n, env)
	case *ast.ListLit:
		return ev.evalListLit(n, env)
	case *ast.TupleLit:
		return ev.evalTupleLit(n, env)
	case *ast.ListRange:
		return ev.evalListRange(n, env)
	case *ast.ListComp:
		return ev.evalListComp(n, env)
	case *ast.Forall:
		return ev.evalForall(n, env)
	case *ast.Sum:
		return ev.evalSum(n, env)
	case *ast.Fold:
		return ev.evalFold(n, env)
	case *ast.IfExpr:
		return ev.evalIf(n, env)
	case *ast.Match:
		return ev.evalMatch(n, env)
	case *ast.LetIn:
		return ev.evalLetIn(n, env)
	case *ast.PanicExpr:
		return ev.evalPanic(n, env)
	case *ast.AsExpr:
		return ev.evalAs(n, env)
	case *ast.CastExpr:
		return ev.evalCast(n, env)
	case *ast.ConstructCall:
		return ev.evalConstructCall(n, env)
	case *ast.ConstructStruct:
		return ev.evalConstructStruct(n, env)
	case *ast.EnumCtorCall:
		return ev.evalEnumCtorCall(n, env)
	case *ast.EnumCtorStruct:
		return ev.evalEnumCtorStruct(n, env)
	case *ast.GlobalCollection:
		return ev.evalGlobalCollection(n, env)
	case *ast.Call:
		return ev.evalCall(n, env)
	case *ast.VarCall:
		return ev.evalVarCall(n, env)
	default:
		return nil, errAt(e, diagnostics.KindRuntimePanic, "internal: unhandled expression node %T", e)
	}
}

func (ev *Evaluator) evalPath(n *ast.Path, env *Environment) (Value, *diagnostics.EvalError) {
	if len(n.Segments) == 1 {
		if v, ok := env.Get(n.Segments[0]); ok {
			return v, nil
		}
		return nil, errAt(n, diagnostics.KindUnknownIdentifier, "unknown identifier %q", n.Segments[0])
	}
	return EnumVal{EnumName: n.Segments[0], Variant: n.Segments[1]}, nil
}

func (ev *Evaluator) evalFieldAccess(n *ast.FieldAccess, env *Environment) (Value, *diagnostics.EvalError) {
	recv, err := ev.Eval(n.Recv, env)
	if err != nil {
		return nil, err
	}
	recv = unwrapCustom(recv)
	switch rv := recv.(type) {
	case StructVal:
		if v, ok := rv.Fields[n.Field]; ok {
			return v, nil
		}
	case EnumVal:
		if rv.Fields != nil {
			if v, ok := rv.Fields[n.Field]; ok {
				return v, nil
			}
		}
	case ObjectVal:
		if v, ok := ev.Host.FieldAccess(rv, n.Field); ok {
			return v, nil
		}
		return nil, errAt(n, diagnostics.KindMissingObjectField, "host object %s has no field %q", rv.TypeName, n.Field)
	}
	return nil, errAt(n, diagnostics.KindMissingObjectField, "value has no field %q", n.Field)
}

func (ev *Evaluator) evalTupleIndex(n *ast.TupleIndex, env *Environment) (Value, *diagnostics.EvalError) {
	recv, err := ev.Eval(n.Recv, env)
	if err != nil {
		return nil, err
	}
	switch rv := unwrapCustom(recv).(type) {
	case TupleVal:
		if n.Index < 0 || n.Index >= len(rv.Elems) {
			return nil, errAt(n, diagnostics.KindTupleIndexOOB, "tuple index %d out of bounds", n.Index)
		}
		return rv.Elems[n.Index], nil
	case EnumVal:
		if rv.Tuple == nil || n.Index < 0 || n.Index >= len(rv.Tuple) {
			return nil, errAt(n, diagnostics.KindTupleIndexOOB, "tuple index %d out of bounds", n.Index)
		}
		return rv.Tuple[n.Index], nil
	default:
		return nil, errAt(n, diagnostics.KindTupleIndexOOB, "tuple index %d out of bounds", n.Index)
	}
}

func (ev *Evaluator) evalListIndex(n *ast.ListIndex, env *Environment) (Value, *diagnostics.EvalError) {
	recv, err := ev.Eval(n.Recv, env)
	if err != nil {
		return nil, err
	}
	idxV, err := ev.Eval(n.Index, env)
	if err != nil {
		return nil, err
	}
	lv, ok := unwrapCustom(recv).(ListVal)
	if !ok {
		return nil, errAt(n, diagnostics.KindRuntimePanic, "index requires a list value")
	}
	idx := int(idxV.(IntVal))
	if idx < 0 || idx >= len(lv.Elems) {
		if n.Panic {
			return nil, errAt(n, diagnostics.KindRuntimePanic, "list index %d out of bounds (length %d)", idx, len(lv.Elems))
		}
		return NoneVal{}, nil
	}
	return lv.Elems[idx], nil
}

func (ev *Evaluator) evalUnary(n *ast.UnaryExpr, env *Environment) (Value, *diagnostics.EvalError) {
	v, err := ev.Eval(n.Operand, env)
	if err != nil {
		return nil, err
	}
	v = unwrapCustom(v)
	switch n.Op {
	case ast.OpNeg:
		if le, ok := v.(*LinExprVal); ok {
			return Negate(le), nil
		}
		return IntVal(-int32(v.(IntVal))), nil
	case ast.OpNot:
		return BoolVal(!bool(v.(BoolVal))), nil
	}
	return nil, errAt(n, diagnostics.KindRuntimePanic, "internal: unhandled unary operator")
}

func (ev *Evaluator) evalNullCoalesce(n *ast.NullCoalesce, env *Environment) (Value, *diagnostics.EvalError) {
	l, err := ev.Eval(n.Left, env)
	if err != nil {
		return nil, err
	}
	if _, isNone := l.(NoneVal); isNone {
		return ev.Eval(n.Right, env)
	}
	return l, nil
}

func (ev *Evaluator) evalCardinality(n *ast.Cardinality, env *Environment) (Value, *diagnostics.EvalError) {
	v, err := ev.Eval(n.List, env)
	if err != nil {
		return nil, err
	}
	lv, ok := unwrapCustom(v).(ListVal)
	if !ok {
		return nil, errAt(n, diagnostics.KindRuntimePanic, "`|...|` requires a list value")
	}
	return IntVal(len(lv.Elems)), nil
}

func (ev *Evaluator) evalListLit(n *ast.ListLit, env *Environment) (Value, *diagnostics.EvalError) {
	elems := make([]Value, len(n.Elems))
	for i, e := range n.Elems {
		v, err := ev.Eval(e, env)
		if err != nil {
			return nil, err
		}
		elems[i] = v
	}
	return ListVal{Elems: elems}, nil
}

func (ev *Evaluator) evalTupleLit(n *ast.TupleLit, env *Environment) (Value, *diagnostics.EvalError) {
	elems := make([]Value, len(n.Elems))
	for i, e := range n.Elems {
		v, err := ev.Eval(e, env)
		if err != nil {
			return nil, err
		}
		elems[i] = v
	}
	return TupleVal{Elems: elems}, nil
}

func (ev *Evaluator) evalListRange(n *ast.ListRange, env *Environment) (Value, *diagnostics.EvalError) {
	loV, err := ev.Eval(n.Lo, env)
	if err != nil {
		return nil, err
	}
	hiV, err := ev.Eval(n.Hi, env)
	if err != nil {
		return nil, err
	}
	lo, hi := int32(loV.(IntVal)), int32(hiV.(IntVal))
	var elems []Value
	for i := lo; i <= hi; i++ {
		elems = append(elems, IntVal(i))
	}
	return ListVal{Elems: elems}, nil
}

func (ev *Evaluator) evalListComp(n *ast.ListComp, env *Environment) (Value, *diagnostics.EvalError) {
	var result []Value
	var rec func(idx int, cur *Environment) *diagnostics.EvalError
	rec = func(idx int, cur *Environment) *diagnostics.EvalError {
		if idx == len(n.Clauses) {
			if n.Where != nil {
				wv, err := ev.Eval(n.Where, cur)
				if err != nil {
					return err
				}
				if !bool(wv.(BoolVal)) {
					return nil
				}
			}
			bv, err := ev.Eval(n.Body, cur)
			if err != nil {
				return err
			}
			result = append(result, bv)
			return nil
		}
		clause := n.Clauses[idx]
		cv, err := ev.Eval(clause.Coll, cur)
		if err != nil {
			return err
		}
		lv, ok := unwrapCustom(cv).(ListVal)
		if !ok {
			return errAt(n, diagnostics.KindRuntimePanic, "`for %s in ...` requires a list", clause.Var)
		}
		for _, elem := range lv.Elems {
			inner := NewEnclosedEnvironment(cur)
			inner.Set(clause.Var, elem)
			if err := rec(idx+1, inner); err != nil {
				return err
			}
		}
		return nil
	}
	if err := rec(0, env); err != nil {
		return nil, err
	}
	return ListVal{Elems: result}, nil
}

func (ev *Evaluator) evalForall(n *ast.Forall, env *Environment) (Value, *diagnostics.EvalError) {
	cv, err := ev.Eval(n.Coll, env)
	if err != nil {
		return nil, err
	}
	lv, ok := unwrapCustom(cv).(ListVal)
	if !ok {
		return nil, errAt(n, diagnostics.KindRuntimePanic, "`forall %s in ...` requires a list", n.Var)
	}
	acc := ConstraintVal{}
	for _, elem := range lv.Elems {
		inner := NewEnclosedEnvironment(env)
		inner.Set(n.Var, elem)
		if n.Where != nil {
			wv, err := ev.Eval(n.Where, inner)
			if err != nil {
				return nil, err
			}
			if !bool(wv.(BoolVal)) {
				continue
			}
		}
		bv, err := ev.Eval(n.Body, inner)
		if err != nil {
			return nil, err
		}
		acc = AndConstraints(acc, bv.(ConstraintVal))
	}
	return acc, nil
}

func (ev *Evaluator) evalSum(n *ast.Sum, env *Environment) (Value, *diagnostics.EvalError) {
	cv, err := ev.Eval(n.Coll, env)
	if err != nil {
		return nil, err
	}
	lv, ok := unwrapCustom(cv).(ListVal)
	if !ok {
		return nil, errAt(n, diagnostics.KindRuntimePanic, "`sum %s in ...` requires a list", n.Var)
	}
	wantsLinExpr := ev.typeOf(n).Contains(types.LinExpr{})
	acc := NewLinExpr()
	for _, elem := range lv.Elems {
		inner := NewEnclosedEnvironment(env)
		inner.Set(n.Var, elem)
		if n.Where != nil {
			wv, err := ev.Eval(n.Where, inner)
			if err != nil {
				return nil, err
			}
			if !bool(wv.(BoolVal)) {
				continue
			}
		}
		bv, err := ev.Eval(n.Body, inner)
		if err != nil {
			return nil, err
		}
		acc = Add(acc, asLinExpr(bv))
	}
	if wantsLinExpr {
		return acc, nil
	}
	return IntVal(acc.Const), nil
}

func (ev *Evaluator) evalFold(n *ast.Fold, env *Environment) (Value, *diagnostics.EvalError) {
	cv, err := ev.Eval(n.Coll, env)
	if err != nil {
		return nil, err
	}
	lv, ok := unwrapCustom(cv).(ListVal)
	if !ok {
		return nil, errAt(n, diagnostics.KindRuntimePanic, "`fold %s in ...` requires a list", n.Var)
	}
	acc, err := ev.Eval(n.Init, env)
	if err != nil {
		return nil, err
	}
	elems := lv.Elems
	if n.Reverse {
		reversed := make([]Value, len(elems))
		for i, e := range elems {
			reversed[len(elems)-1-i] = e
		}
		elems = reversed
	}
	for _, elem := range elems {
		inner := NewEnclosedEnvironment(env)
		inner.Set(n.Var, elem)
		inner.Set(n.AccName, acc)
		if n.Where != nil {
			wv, err := ev.Eval(n.Where, inner)
			if err != nil {
				return nil, err
			}
			if !bool(wv.(BoolVal)) {
				continue
			}
		}
		acc, err = ev.Eval(n.Body, inner)
		if err != nil {
			return nil, err
		}
	}
	return acc, nil
}

func (ev *Evaluator) evalIf(n *ast.IfExpr, env *Environment) (Value, *diagnostics.EvalError) {
	cv, err := ev.Eval(n.Cond, env)
	if err != nil {
		return nil, err
	}
	if bool(cv.(BoolVal)) {
		return ev.Eval(n.Then, env)
	}
	return ev.Eval(n.Else, env)
}

func (ev *Evaluator) evalMatch(n *ast.Match, env *Environment) (Value, *diagnostics.EvalError) {
	scrut, err := ev.Eval(n.Scrutinee, env)
	if err != nil {
		return nil, err
	}
	for _, arm := range n.Arms {
		inner := NewEnclosedEnvironment(env)
		if arm.AsType != nil {
			target := ev.resolveTypeExpr(arm.AsType)
			if !matchesType(scrut, target, ev.lookup) {
				continue
			}
		}
		inner.Set(arm.BindName, scrut)
		if arm.Where != nil {
			wv, err := ev.Eval(arm.Where, inner)
			if err != nil {
				return nil, err
			}
			if !bool(wv.(BoolVal)) {
				continue
			}
		}
		return ev.Eval(arm.Body, inner)
	}
	return nil, errAt(n, diagnostics.KindNonExhaustiveMatchRuntime, "no match arm applied to %s", scrut.Inspect())
}

func (ev *Evaluator) evalLetIn(n *ast.LetIn, env *Environment) (Value, *diagnostics.EvalError) {
	v, err := ev.Eval(n.Value, env)
	if err != nil {
		return nil, err
	}
	inner := NewEnclosedEnvironment(env)
	inner.Set(n.Name, v)
	return ev.Eval(n.Body, inner)
}

func (ev *Evaluator) evalPanic(n *ast.PanicExpr, env *Environment) (Value, *diagnostics.EvalError) {
	v, err := ev.Eval(n.Msg, env)
	if err != nil {
		return nil, err
	}
	return nil, errAt(n, diagnostics.KindInvariantBroken, "%s", v.Inspect())
}

// asLinExpr coerces an arithmetic value (Int or LinExpr) into LinExpr
// form for term-building; panics on any other runtime type, which the
// checker's static typing rules out.
func asLinExpr(v Value) *LinExprVal {
	switch vv := unwrapCustom(v).(type) {
	case *LinExprVal:
		return vv
	case IntVal:
		return IntAsLinExpr(int32(vv))
	default:
		panic("asLinExpr: non-arithmetic value reached the evaluator")
	}
}
