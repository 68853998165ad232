package evaluator

import (
	"testing"

	"github.com/collomatique/colloml/internal/ast"
	"github.com/collomatique/colloml/internal/checker"
	"github.com/collomatique/colloml/internal/lexer"
	"github.com/collomatique/colloml/internal/parser"
	"github.com/collomatique/colloml/internal/symbols"
	"github.com/collomatique/colloml/internal/types"
)

// nopEnv is a host Env with no objects, used by tests that don't
// exercise @[T]/field access/pretty-printing.
type nopEnv struct{ objects map[string][]Value }

func (e nopEnv) ObjectsWithType(typeName string) []Value { return e.objects[typeName] }
func (e nopEnv) FieldAccess(obj ObjectVal, field string) (Value, bool) {
	return nil, false
}
func (e nopEnv) PrettyPrint(obj ObjectVal) (string, bool) { return "", false }

func mustCheck(t *testing.T, src string, seed func(*symbols.GlobalEnv)) (*symbols.GlobalEnv, *checker.Checker) {
	t.Helper()
	l := lexer.New(src)
	p := parser.New(l)
	prog := p.ParseProgram()
	if len(p.Errors()) > 0 {
		t.Fatalf("parse errors: %v", p.Errors())
	}
	global := symbols.NewGlobalEnv()
	if seed != nil {
		seed(global)
	}
	c := checker.New(global)
	c.Check(prog)
	if len(c.Errors) > 0 {
		t.Fatalf("check errors: %v", c.Errors)
	}
	return global, c
}

func intLit(v int32) *ast.IntLit { return &ast.IntLit{Value: v} }

func TestEvalArithmeticAndMemoizedDocstring(t *testing.T) {
	src := `
"the square of @{x} is ` + "`String(x * x)`" + `"
let square(x: Int): Int = x * x;

let twice(x: Int): Int = square(x) + square(x);
`
	global, c := mustCheck(t, src, nil)
	hist := NewEvalHistory()
	ev := New(global, c.ExprTypes, nopEnv{}, hist)

	call := &ast.Call{Name: "twice", Args: []ast.Expression{intLit(4)}}
	v, err := ev.Eval(call, NewEnvironment())
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}
	if got := int32(v.(IntVal)); got != 32 {
		t.Fatalf("twice(4) = %d, want 32", got)
	}

	wo, ok := hist.Lookup("square", []Value{IntVal(4)})
	if !ok {
		t.Fatalf("square(4) was not memoized")
	}
	if got := int32(wo.Value.(IntVal)); got != 16 {
		t.Fatalf("memoized square(4) = %d, want 16", got)
	}
	if len(wo.Origin.PrettyDocLines) != 1 {
		t.Fatalf("expected one rendered docstring line, got %v", wo.Origin.PrettyDocLines)
	}
	want := "the square of 4 is 16"
	if wo.Origin.PrettyDocLines[0] != want {
		t.Fatalf("docstring = %q, want %q", wo.Origin.PrettyDocLines[0], want)
	}
}

func TestEvalReifyRecordsConstraintOnce(t *testing.T) {
	src := `
let valid(x: Int): Constraint = (x as LinExpr) <== 10;
pub reify $bounded = valid;
`
	global, c := mustCheck(t, src, nil)
	hist := NewEvalHistory()
	ev := New(global, c.ExprTypes, nopEnv{}, hist)

	env := NewEnvironment()
	call := &ast.VarCall{Name: "bounded", Args: []ast.Expression{intLit(3)}}
	v1, err := ev.Eval(call, env)
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}
	if _, ok := v1.(*LinExprVal); !ok {
		t.Fatalf("expected VarCall to yield a LinExpr, got %T", v1)
	}
	if _, err := ev.Eval(call, env); err != nil {
		t.Fatalf("second eval error: %v", err)
	}
	if got := len(hist.Constraints()); got != 1 {
		t.Fatalf("constraint recorded %d times, want 1 (idempotent reification)", got)
	}
}

func TestEvalForallBuildsConjunction(t *testing.T) {
	src := `
let under(x: Int, lim: Int): Constraint = (x as LinExpr) <== lim;

let allUnder(xs: [Int], lim: Int): Constraint =
    forall x in xs { under(x, lim) };
`
	global, c := mustCheck(t, src, nil)
	hist := NewEvalHistory()
	ev := New(global, c.ExprTypes, nopEnv{}, hist)

	call := &ast.Call{Name: "allUnder", Args: []ast.Expression{
		&ast.ListLit{Elems: []ast.Expression{intLit(1), intLit(2), intLit(3)}},
		intLit(5),
	}}
	v, err := ev.Eval(call, NewEnvironment())
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}
	cv, ok := v.(ConstraintVal)
	if !ok {
		t.Fatalf("expected ConstraintVal, got %T", v)
	}
	if len(cv.Atoms) != 3 {
		t.Fatalf("forall over 3 elements produced %d atoms, want 3", len(cv.Atoms))
	}
}

func TestEvalSumPromotesToLinExprWithExternVar(t *testing.T) {
	src := `
let total(xs: [Int]): LinExpr = sum x in xs { $chosen(x) };
`
	global, c := mustCheck(t, src, func(g *symbols.GlobalEnv) {
		g.ExternVars["chosen"] = &symbols.ExternVarSchema{
			Name:   "chosen",
			Params: []types.ExprType{types.IntType()},
			Kind:   symbols.ReifyScalar,
		}
	})
	hist := NewEvalHistory()
	ev := New(global, c.ExprTypes, nopEnv{}, hist)

	call := &ast.Call{Name: "total", Args: []ast.Expression{
		&ast.ListLit{Elems: []ast.Expression{intLit(1), intLit(2)}},
	}}
	v, err := ev.Eval(call, NewEnvironment())
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}
	le, ok := v.(*LinExprVal)
	if !ok {
		t.Fatalf("expected LinExpr, got %T", v)
	}
	if len(le.Terms) != 2 {
		t.Fatalf("expected 2 distinct terms, got %d (%s)", len(le.Terms), le.Inspect())
	}
}

func TestEvalMatchDispatchesOnEnumVariant(t *testing.T) {
	src := `
enum Shape = Circle(Int) | Square(Int);

let kind(s: Shape): Int =
    match s {
        c as Shape::Circle => 1,
        sq as Shape::Square => 2
    };
`
	global, c := mustCheck(t, src, nil)
	hist := NewEvalHistory()
	ev := New(global, c.ExprTypes, nopEnv{}, hist)

	call := &ast.Call{Name: "kind", Args: []ast.Expression{
		&ast.EnumCtorCall{EnumName: "Shape", Variant: "Square", Args: []ast.Expression{intLit(3)}},
	}}
	v, err := ev.Eval(call, NewEnvironment())
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}
	if got := int32(v.(IntVal)); got != 2 {
		t.Fatalf("kind(Square(3)) = %d, want 2", got)
	}
}
