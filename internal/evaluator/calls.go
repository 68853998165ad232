package evaluator

import (
	"regexp"
	"strings"

	"github.com/collomatique/colloml/internal/ast"
	"github.com/collomatique/colloml/internal/diagnostics"
	"github.com/collomatique/colloml/internal/symbols"
	"github.com/collomatique/colloml/internal/types"
)

func (ev *Evaluator) evalBinary(n *ast.BinaryExpr, env *Environment) (Value, *diagnostics.EvalError) {
	switch n.Op {
	case ast.OpAnd:
		l, err := ev.Eval(n.Left, env)
		if err != nil {
			return nil, err
		}
		if !bool(l.(BoolVal)) {
			return BoolVal(false), nil
		}
		r, err := ev.Eval(n.Right, env)
		if err != nil {
			return nil, err
		}
		return BoolVal(bool(r.(BoolVal))), nil
	case ast.OpOr:
		l, err := ev.Eval(n.Left, env)
		if err != nil {
			return nil, err
		}
		if bool(l.(BoolVal)) {
			return BoolVal(true), nil
		}
		r, err := ev.Eval(n.Right, env)
		if err != nil {
			return nil, err
		}
		return BoolVal(bool(r.(BoolVal))), nil
	}

	l, err := ev.Eval(n.Left, env)
	if err != nil {
		return nil, err
	}
	r, err := ev.Eval(n.Right, env)
	if err != nil {
		return nil, err
	}
	l, r = unwrapCustom(l), unwrapCustom(r)

	if n.Op == ast.OpAdd {
		if ls, ok := l.(StringVal); ok {
			if rs, ok := r.(StringVal); ok {
				return StringVal(string(ls) + string(rs)), nil
			}
		}
	}

	switch n.Op {
	case ast.OpEq:
		return BoolVal(canonicalKey(l) == canonicalKey(r)), nil
	case ast.OpNeq:
		return BoolVal(canonicalKey(l) != canonicalKey(r)), nil
	case ast.OpLt:
		return BoolVal(int32(l.(IntVal)) < int32(r.(IntVal))), nil
	case ast.OpLte:
		return BoolVal(int32(l.(IntVal)) <= int32(r.(IntVal))), nil
	case ast.OpGt:
		return BoolVal(int32(l.(IntVal)) > int32(r.(IntVal))), nil
	case ast.OpGte:
		return BoolVal(int32(l.(IntVal)) >= int32(r.(IntVal))), nil
	case ast.OpConstrEq, ast.OpConstrLe, ast.OpConstrGe:
		op := map[ast.BinOp]ConstraintOp{ast.OpConstrEq: ConstrEq, ast.OpConstrLe: ConstrLe, ast.OpConstrGe: ConstrGe}[n.Op]
		return NewConstraint(op, asLinExpr(l), asLinExpr(r)), nil
	case ast.OpDiv:
		if int32(r.(IntVal)) == 0 {
			return nil, errAt(n, diagnostics.KindInvariantBroken, "division by zero")
		}
		return IntVal(int32(l.(IntVal)) / int32(r.(IntVal))), nil
	case ast.OpMod:
		if int32(r.(IntVal)) == 0 {
			return nil, errAt(n, diagnostics.KindInvariantBroken, "modulo by zero")
		}
		return IntVal(int32(l.(IntVal)) % int32(r.(IntVal))), nil
	}

	_, lIsLin := l.(*LinExprVal)
	_, rIsLin := r.(*LinExprVal)
	if lIsLin || rIsLin {
		switch n.Op {
		case ast.OpAdd:
			return Add(asLinExpr(l), asLinExpr(r)), nil
		case ast.OpSub:
			return Sub(asLinExpr(l), asLinExpr(r)), nil
		case ast.OpMul:
			if lIsLin {
				return Scale(l.(*LinExprVal), int32(r.(IntVal))), nil
			}
			return Scale(r.(*LinExprVal), int32(l.(IntVal))), nil
		}
	}
	switch n.Op {
	case ast.OpAdd:
		return IntVal(int32(l.(IntVal)) + int32(r.(IntVal))), nil
	case ast.OpSub:
		return IntVal(int32(l.(IntVal)) - int32(r.(IntVal))), nil
	case ast.OpMul:
		return IntVal(int32(l.(IntVal)) * int32(r.(IntVal))), nil
	}
	return nil, errAt(n, diagnostics.KindRuntimePanic, "internal: unhandled binary operator")
}

func (ev *Evaluator) evalAs(n *ast.AsExpr, env *Environment) (Value, *diagnostics.EvalError) {
	v, err := ev.Eval(n.Operand, env)
	if err != nil {
		return nil, err
	}
	target := ev.resolveTypeExpr(n.Type)
	return coerceToType(v, target), nil
}

func (ev *Evaluator) evalCast(n *ast.CastExpr, env *Environment) (Value, *diagnostics.EvalError) {
	v, err := ev.Eval(n.Operand, env)
	if err != nil {
		return nil, err
	}
	target := ev.resolveTypeExpr(n.Type)
	if !matchesType(unwrapCustom(v), target, ev.lookup) {
		if n.Panic {
			return nil, errAt(n, diagnostics.KindCastBangFailure, "value %s does not narrow to %s", v.Inspect(), target.String())
		}
		return NoneVal{}, nil
	}
	return coerceToType(unwrapCustom(v), target), nil
}

// coerceToType adjusts a value's runtime representation to reflect a
// (successful, already validated) widening or narrowing to target: Int
// promotes to LinExpr, and any value gains/loses its alias wrapper.
// Every other shape (struct, enum, object, list, tuple, primitive)
// carries the same Go representation across the whole lattice, so no
// further transformation is needed.
func coerceToType(v Value, target types.ExprType) Value {
	if target.Contains(types.LinExpr{}) {
		if iv, ok := unwrapCustom(v).(IntVal); ok {
			return IntAsLinExpr(int32(iv))
		}
	}
	if custom, ok := target.IsSingle(); ok {
		if c, ok := custom.(types.Custom); ok && c.Variant == "" {
			switch vv := v.(type) {
			case CustomVal:
				if vv.AliasName == c.Root {
					return vv
				}
			case StructVal:
				return vv
			default:
				return CustomVal{AliasName: c.Root, Inner: v}
			}
		}
	}
	return v
}

// evalConstructCall evaluates `T(args)`. The only concrete conversion
// the language exercises is `String(expr)` (the docstring backtick
// lowering): the checker already restricted the argument to an
// Int/Bool/String, so its natural textual form (same as Inspect) is the
// converted value. Every other target falls back to the ordinary
// widen/narrow representation change.
func (ev *Evaluator) evalConstructCall(n *ast.ConstructCall, env *Environment) (Value, *diagnostics.EvalError) {
	args := make([]Value, len(n.Args))
	for i, a := range n.Args {
		v, err := ev.Eval(a, env)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	target := ev.resolveTypeName(&ast.TypeName{Name: n.TypeName})
	if len(args) == 1 {
		if tv, ok := target.IsSingle(); ok {
			if _, isString := tv.(types.String); isString {
				return StringVal(unwrapCustom(args[0]).Inspect()), nil
			}
		}
		return coerceToType(args[0], target), nil
	}
	return TupleVal{Elems: args}, nil
}

func (ev *Evaluator) evalConstructStruct(n *ast.ConstructStruct, env *Environment) (Value, *diagnostics.EvalError) {
	fields := make(map[string]Value, len(n.Fields))
	for _, fi := range n.Fields {
		v, err := ev.Eval(fi.Value, env)
		if err != nil {
			return nil, err
		}
		fields[fi.Name] = v
	}
	order := fieldOrderFor(ev.Global, n.TypeName)
	if order == nil {
		for _, fi := range n.Fields {
			order = append(order, fi.Name)
		}
	}
	return StructVal{TypeName: n.TypeName, Fields: fields, Order: order}, nil
}

func fieldOrderFor(global *symbols.GlobalEnv, typeName string) []string {
	alias, ok := global.Aliases[typeName]
	if !ok {
		return nil
	}
	v, ok := alias.Underlying.IsSingle()
	if !ok {
		return nil
	}
	st, ok := v.(types.Struct)
	if !ok {
		return nil
	}
	order := make([]string, len(st.Fields))
	for i, f := range st.Fields {
		order[i] = f.Name
	}
	return order
}

func (ev *Evaluator) evalEnumCtorCall(n *ast.EnumCtorCall, env *Environment) (Value, *diagnostics.EvalError) {
	args := make([]Value, len(n.Args))
	for i, a := range n.Args {
		v, err := ev.Eval(a, env)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return EnumVal{EnumName: n.EnumName, Variant: n.Variant, Tuple: args}, nil
}

func (ev *Evaluator) evalEnumCtorStruct(n *ast.EnumCtorStruct, env *Environment) (Value, *diagnostics.EvalError) {
	fields := make(map[string]Value, len(n.Fields))
	order := make([]string, len(n.Fields))
	for i, fi := range n.Fields {
		v, err := ev.Eval(fi.Value, env)
		if err != nil {
			return nil, err
		}
		fields[fi.Name] = v
		order[i] = fi.Name
	}
	return EnumVal{EnumName: n.EnumName, Variant: n.Variant, Fields: fields, Order: order}, nil
}

func (ev *Evaluator) evalGlobalCollection(n *ast.GlobalCollection, env *Environment) (Value, *diagnostics.EvalError) {
	return ListVal{Elems: ev.Host.ObjectsWithType(n.TypeName)}, nil
}

// evalCall evaluates a plain function call, memoizing on (name,
// coerced args) and rendering the callee's docstring (if any) into an
// Origin, grounded on the Rust original's EvalHistory::call (original_source/
// collo-ml/src/eval.rs).
func (ev *Evaluator) evalCall(n *ast.Call, env *Environment) (Value, *diagnostics.EvalError) {
	sig, ok := ev.Global.Funcs[n.Name]
	if !ok {
		if _, isAlias := ev.Global.Aliases[n.Name]; isAlias {
			args := make([]Value, len(n.Args))
			for i, a := range n.Args {
				v, err := ev.Eval(a, env)
				if err != nil {
					return nil, err
				}
				args[i] = v
			}
			target := ev.resolveTypeName(&ast.TypeName{Name: n.Name})
			if len(args) == 1 {
				return coerceToType(args[0], target), nil
			}
			return TupleVal{Elems: args}, nil
		}
		return nil, errAt(n, diagnostics.KindUnknownFunction, "call to undeclared function %q", n.Name)
	}

	args := make([]Value, len(n.Args))
	for i, a := range n.Args {
		v, err := ev.Eval(a, env)
		if err != nil {
			return nil, err
		}
		if i < len(sig.Params) {
			v = coerceToType(v, sig.Params[i].Type)
		}
		args[i] = v
	}

	val, _, err := ev.callMemoized(sig, args)
	return val, err
}

// callMemoized looks up (or computes and stores) the memoized result of
// calling sig with args, reporting whether the call was already cached
// (so callers — reification in particular — can tell a fresh
// evaluation from a cache hit).
func (ev *Evaluator) callMemoized(sig *symbols.FuncSig, args []Value) (Value, bool, *diagnostics.EvalError) {
	if wo, hit := ev.Hist.lookup(sig.Name, args); hit {
		return wo.Value, true, nil
	}
	bodyEnv := NewEnvironment()
	for i, p := range sig.Params {
		bodyEnv.Set(p.Name, args[i])
	}
	result, err := ev.Eval(sig.Body, bodyEnv)
	if err != nil {
		return nil, false, err
	}
	var docLines []string
	if sig.Doc != nil {
		docLines, err = ev.prettifyDocstring(sig, args, bodyEnv)
		if err != nil {
			return nil, false, err
		}
	}
	origin := &Origin{FnName: sig.Name, Args: args, PrettyDocLines: docLines}
	ev.Hist.store(sig.Name, args, WithOrigin{Value: result, Origin: origin})
	return result, false, nil
}

// EvalEntry evaluates a call to a top-level function (the entry point
// of a host-initiated run), coercing each argument to its declared
// param type and going through the same memoization path an ordinary
// in-program call would, so a host calling the same entry function
// with the same arguments twice sees the second call served from
// EvalHistory.
func (ev *Evaluator) EvalEntry(sig *symbols.FuncSig, args []Value) (Value, *diagnostics.EvalError) {
	if len(args) != len(sig.Params) {
		return nil, errAt(sig.Body, diagnostics.KindArgCountMismatch,
			"function %q expects %d argument(s), got %d", sig.Name, len(sig.Params), len(args))
	}
	coerced := make([]Value, len(args))
	for i, a := range args {
		coerced[i] = coerceToType(a, sig.Params[i].Type)
	}
	val, _, err := ev.callMemoized(sig, coerced)
	return val, err
}

// evalVarCall evaluates `$name(args)`/`$[name](args)`: resolves either
// a host-declared external-variable family or a reified function,
// builds the addressable VarRef(s) for it, and — for reification —
// evaluates the target function (memoized) and records the resulting
// constraint(s) exactly once per distinct argument tuple. The list form
// (checker-verified to target a `[Constraint]`-returning function)
// records one constraint per list element and returns one fresh
// `LinExpr` per element, each tagged with its index (spec.md §4.6: "the
// list length thus becomes observable to the caller").
func (ev *Evaluator) evalVarCall(n *ast.VarCall, env *Environment) (Value, *diagnostics.EvalError) {
	args := make([]Value, len(n.Args))
	for i, a := range n.Args {
		v, err := ev.Eval(a, env)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}

	if extSchema, ok := ev.Global.ExternVars[n.Name]; ok {
		coerced := make([]Value, len(args))
		for i, a := range args {
			if i < len(extSchema.Params) {
				a = coerceToType(a, extSchema.Params[i])
			}
			coerced[i] = a
		}
		return VarAsLinExpr(VarRef{Kind: VarExtern, Name: n.Name, Args: coerced}), nil
	}

	reify, ok := ev.Global.Reifies[n.Name]
	if !ok {
		return nil, errAt(n, diagnostics.KindInvalidReifyTarget, "unknown decision-variable family %q", n.Name)
	}
	sig, ok := ev.Global.Funcs[reify.TargetFn]
	if !ok {
		return nil, errAt(n, diagnostics.KindInvalidReifyTarget, "reified function %q is not declared", reify.TargetFn)
	}
	coerced := make([]Value, len(args))
	for i, a := range args {
		if i < len(sig.Params) {
			a = coerceToType(a, sig.Params[i].Type)
		}
		coerced[i] = a
	}
	result, wasCached, err := ev.callMemoized(sig, coerced)
	if err != nil {
		return nil, err
	}

	if reify.Kind == symbols.ReifyList {
		list, ok := result.(ListVal)
		if !ok {
			return nil, errAt(n, diagnostics.KindInvariantBroken, "list-reified function %q did not return a list of constraints", reify.TargetFn)
		}
		if !wasCached {
			wo, _ := ev.Hist.lookup(sig.Name, coerced)
			for _, elem := range list.Elems {
				cv, ok := elem.(ConstraintVal)
				if !ok {
					return nil, errAt(n, diagnostics.KindInvariantBroken, "list-reified function %q returned a non-Constraint list element", reify.TargetFn)
				}
				ev.Hist.RecordConstraint(ConstraintWithOrigin{Constraint: cv, Origin: wo.Origin})
			}
		}
		elems := make([]Value, len(list.Elems))
		for i := range list.Elems {
			idx := i
			elems[i] = VarAsLinExpr(VarRef{Kind: VarReified, Name: n.Name, Args: coerced, FromList: &idx})
		}
		return ListVal{Elems: elems}, nil
	}

	if !wasCached {
		wo, _ := ev.Hist.lookup(sig.Name, coerced)
		ev.Hist.RecordConstraint(ConstraintWithOrigin{Constraint: result.(ConstraintVal), Origin: wo.Origin})
	}
	return VarAsLinExpr(VarRef{Kind: VarReified, Name: n.Name, Args: coerced}), nil
}

var docPlaceholder = regexp.MustCompile(`@\{(\w+)\}`)

// prettifyDocstring renders a function's docstring against one call's
// arguments: plain-text parts substitute `@{param}` placeholders with
// the pretty-printed argument, and backtick-delimited parts (already
// lowered by the parser into String-cast sub-expressions) are
// evaluated in the callee's own bound-parameter scope, grounded on the
// Rust original's prettify_expr_value/render_docstring (original_source/
// collo-ml/src/eval.rs).
func (ev *Evaluator) prettifyDocstring(sig *symbols.FuncSig, args []Value, bodyEnv *Environment) ([]string, *diagnostics.EvalError) {
	paramPretty := make(map[string]string, len(sig.Params))
	for i, p := range sig.Params {
		if i < len(args) {
			paramPretty[p.Name] = ev.prettyPrint(args[i])
		}
	}
	lines := make([]string, len(sig.Doc.Lines))
	for li, line := range sig.Doc.Lines {
		var b strings.Builder
		for _, part := range line.Parts {
			if part.Expr != nil {
				v, err := ev.Eval(part.Expr, bodyEnv)
				if err != nil {
					return nil, err
				}
				sv, ok := v.(StringVal)
				if !ok {
					return nil, errAt(part.Expr, diagnostics.KindInvariantBroken, "docstring expression did not evaluate to a String")
				}
				b.WriteString(string(sv))
				continue
			}
			b.WriteString(docPlaceholder.ReplaceAllStringFunc(part.Text, func(m string) string {
				name := docPlaceholder.FindStringSubmatch(m)[1]
				if pretty, ok := paramPretty[name]; ok {
					return pretty
				}
				return m
			}))
		}
		lines[li] = b.String()
	}
	return lines, nil
}

// prettyPrint renders a value for docstring interpolation: host objects
// try the host's renderer first, falling back to a structural Inspect()
// form for everything else (spec.md §4.5).
func (ev *Evaluator) prettyPrint(v Value) string {
	switch vv := v.(type) {
	case ObjectVal:
		if s, ok := ev.Host.PrettyPrint(vv); ok {
			return s
		}
		return vv.Inspect()
	case CustomVal:
		return ev.prettyPrint(vv.Inner)
	case ListVal:
		parts := make([]string, len(vv.Elems))
		for i, e := range vv.Elems {
			parts[i] = ev.prettyPrint(e)
		}
		return "[" + strings.Join(parts, ",") + "]"
	default:
		return v.Inspect()
	}
}
