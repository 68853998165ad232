package colloml

import (
	"testing"

	"github.com/collomatique/colloml/internal/evaluator"
)

// TestScenarioASquare covers spec scenario A: a pure Int function with
// no host interaction, no variables and no constraints.
func TestScenarioASquare(t *testing.T) {
	src := `pub let square(x: Int): Int = x * x;`
	env := newStudentEnv()
	checked, cerr := New(src, env)
	if cerr != nil {
		t.Fatalf("compile error: %v", cerr)
	}

	v, _, err := checked.EvalFnWithVariables(env, "square", []Value{evaluator.IntVal(5)})
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}
	iv, ok := v.(evaluator.IntVal)
	if !ok || int32(iv) != 25 {
		t.Fatalf("square(5) = %v, want Int(25)", v)
	}
}

// TestScenarioBAtMostOneReification covers spec scenario B: a
// `chosen(Student): LinExpr` external variable family, reified through
// `at_most_one`, producing one recorded Constraint whose origin names
// the reified function and whose rendered args are the chosen students
// in iteration order.
func TestScenarioBAtMostOneReification(t *testing.T) {
	src := `
let at_most_one(xs: [Student]): Constraint =
    sum x in xs { $chosen(x) } <== 1;
pub reify $pick = at_most_one;
pub let run(xs: [Student]): LinExpr = $pick(xs);
`
	env := newStudentEnv("a", "b")
	checked, cerr := New(src, env)
	if cerr != nil {
		t.Fatalf("compile error: %v", cerr)
	}

	xs := evaluator.ListVal{Elems: env.ObjectsWithType("Student")}
	_, defs, err := checked.EvalFnWithVariables(env, "run", []Value{xs})
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}
	if len(defs.Constraints) != 1 {
		t.Fatalf("expected one recorded constraint, got %d", len(defs.Constraints))
	}
	cwo := defs.Constraints[0]
	if cwo.Origin == nil || cwo.Origin.FnName != "at_most_one" {
		t.Fatalf("expected origin naming at_most_one, got %+v", cwo.Origin)
	}
	if len(cwo.Origin.Args) != 1 {
		t.Fatalf("expected a single rendered arg (the student list), got %d", len(cwo.Origin.Args))
	}
	argList, ok := cwo.Origin.Args[0].(evaluator.ListVal)
	if !ok || len(argList.Elems) != 2 {
		t.Fatalf("expected the rendered arg to be [a,b], got %v", cwo.Origin.Args[0])
	}
	var rendered []string
	for _, e := range argList.Elems {
		obj, ok := e.(evaluator.ObjectVal)
		if !ok {
			t.Fatalf("expected a Student ObjectVal, got %T", e)
		}
		name, ok := env.PrettyPrint(obj)
		if !ok {
			t.Fatalf("expected PrettyPrint to know %v", obj)
		}
		rendered = append(rendered, name)
	}
	if len(rendered) != 2 || rendered[0] != "a" || rendered[1] != "b" {
		t.Fatalf("rendered args = %v, want [a b]", rendered)
	}

	if len(cwo.Constraint.Atoms) != 1 {
		t.Fatalf("expected a single atom, got %d", len(cwo.Constraint.Atoms))
	}
	atom := cwo.Constraint.Atoms[0]
	if atom.Op != evaluator.ConstrLe {
		t.Fatalf("expected a <== atom, got op %s", atom.Op)
	}
	if len(atom.Expr.Terms) != 2 {
		t.Fatalf("expected LHS chosen(a)+chosen(b), got %s", atom.Expr.Inspect())
	}
	if atom.Expr.Const != -1 {
		t.Fatalf("expected constant -1 after subtracting RHS 1, got %d", atom.Expr.Const)
	}
}

// TestScenarioBListFormReification covers the list-reified half of
// spec scenario B / spec.md §4.6's `$[name](args)` form: the target
// function returns one Constraint per student (a `[Constraint]`, via a
// list comprehension rather than scenario B's single conjoined
// `at_most_one`, since list-form reification requires a list-returning
// target — see DESIGN.md), and `$[pick](xs)` must come back as a
// `[LinExpr]` of the same length, recording one constraint per element.
func TestScenarioBListFormReification(t *testing.T) {
	src := `
let per_student(xs: [Student]): [Constraint] =
    [ $chosen(x) <== 1 for x in xs ];
pub reify $[pick] = per_student;
pub let run(xs: [Student]): [LinExpr] = $[pick](xs);
`
	env := newStudentEnv("a", "b")
	checked, cerr := New(src, env)
	if cerr != nil {
		t.Fatalf("compile error: %v", cerr)
	}

	xs := evaluator.ListVal{Elems: env.ObjectsWithType("Student")}
	v, defs, err := checked.EvalFnWithVariables(env, "run", []Value{xs})
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}

	lv, ok := v.(evaluator.ListVal)
	if !ok || len(lv.Elems) != 2 {
		t.Fatalf("expected a 2-element [LinExpr], got %v", v)
	}
	for i, e := range lv.Elems {
		le, ok := e.(*evaluator.LinExprVal)
		if !ok {
			t.Fatalf("element %d: expected *LinExprVal, got %T", i, e)
		}
		if len(le.Terms) != 1 {
			t.Fatalf("element %d: expected a single reified term, got %s", i, le.Inspect())
		}
	}

	if len(defs.Constraints) != 2 {
		t.Fatalf("expected two recorded constraints (one per student), got %d", len(defs.Constraints))
	}
	for i, cwo := range defs.Constraints {
		if cwo.Origin == nil || cwo.Origin.FnName != "per_student" {
			t.Fatalf("constraint %d: expected origin naming per_student, got %+v", i, cwo.Origin)
		}
		if len(cwo.Constraint.Atoms) != 1 || cwo.Constraint.Atoms[0].Op != evaluator.ConstrLe {
			t.Fatalf("constraint %d: expected a single <== atom, got %+v", i, cwo.Constraint)
		}
	}
}

// TestScenarioCForallEvenSquares covers spec scenario C: `forall`
// produces a conjunction of atoms in iteration order, one per element
// of `[0..5]` satisfying the `where` clause.
func TestScenarioCForallEvenSquares(t *testing.T) {
	src := `
pub let even_squares(): Constraint =
    forall w in [0..5] where w % 2 == 0 { w * w === 0 };
`
	env := newStudentEnv()
	checked, cerr := New(src, env)
	if cerr != nil {
		t.Fatalf("compile error: %v", cerr)
	}

	v, _, err := checked.EvalFnWithVariables(env, "even_squares", nil)
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}
	cv, ok := v.(evaluator.ConstraintVal)
	if !ok {
		t.Fatalf("expected ConstraintVal, got %T", v)
	}
	if len(cv.Atoms) != 3 {
		t.Fatalf("expected 3 atoms (w=0,2,4), got %d", len(cv.Atoms))
	}
	wantConsts := []int32{0, 4, 16}
	for i, atom := range cv.Atoms {
		if atom.Op != evaluator.ConstrEq {
			t.Fatalf("atom %d: expected === (ConstrEq), got %s", i, atom.Op)
		}
		if len(atom.Expr.Terms) != 0 {
			t.Fatalf("atom %d: expected a pure constant, got terms %s", i, atom.Expr.Inspect())
		}
		if atom.Expr.Const != wantConsts[i] {
			t.Fatalf("atom %d: constant = %d, want %d", i, atom.Expr.Const, wantConsts[i])
		}
	}
}

// TestScenarioDNullCoalesce covers spec scenario D: `??` substitutes a
// default only when the left side is `None`.
func TestScenarioDNullCoalesce(t *testing.T) {
	src := `pub let f(x: ?Int): Int = x ?? 0;`
	env := newStudentEnv()
	checked, cerr := New(src, env)
	if cerr != nil {
		t.Fatalf("compile error: %v", cerr)
	}

	v, _, err := checked.EvalFnWithVariables(env, "f", []Value{evaluator.NoneVal{}})
	if err != nil {
		t.Fatalf("eval error (None): %v", err)
	}
	if iv, ok := v.(evaluator.IntVal); !ok || int32(iv) != 0 {
		t.Fatalf("f(None) = %v, want Int(0)", v)
	}

	v, _, err = checked.EvalFnWithVariables(env, "f", []Value{evaluator.IntVal(7)})
	if err != nil {
		t.Fatalf("eval error (Int(7)): %v", err)
	}
	if iv, ok := v.(evaluator.IntVal); !ok || int32(iv) != 7 {
		t.Fatalf("f(7) = %v, want Int(7)", v)
	}
}

// TestScenarioEEnumMatchAndPanic covers spec scenario E: matching on
// an enum's tuple-shaped variants, `.0` positional payload access, and
// a runtime `panic` built by string-concatenating the payload into the
// message.
func TestScenarioEEnumMatchAndPanic(t *testing.T) {
	src := `
enum Result = Ok(Int) | Err(String);

pub let unwrap(r: Result): Int = match r {
    x as Result::Ok => x.0,
    x as Result::Err => panic "bad: " + x.0
};
`
	env := newStudentEnv()
	checked, cerr := New(src, env)
	if cerr != nil {
		t.Fatalf("compile error: %v", cerr)
	}

	ok := evaluator.EnumVal{EnumName: "Result", Variant: "Ok", Tuple: []evaluator.Value{evaluator.IntVal(3)}}
	v, _, err := checked.EvalFnWithVariables(env, "unwrap", []Value{ok})
	if err != nil {
		t.Fatalf("eval error (Ok): %v", err)
	}
	if iv, ok := v.(evaluator.IntVal); !ok || int32(iv) != 3 {
		t.Fatalf("unwrap(Ok(3)) = %v, want Int(3)", v)
	}

	bad := evaluator.EnumVal{EnumName: "Result", Variant: "Err", Tuple: []evaluator.Value{evaluator.StringVal("no")}}
	_, _, err = checked.EvalFnWithVariables(env, "unwrap", []Value{bad})
	if err == nil {
		t.Fatalf("expected unwrap(Err(\"no\")) to panic")
	}
	if err.Message != "bad: no" {
		t.Fatalf("panic message = %q, want %q", err.Message, "bad: no")
	}
}

// TestScenarioFNonExhaustiveMatch covers spec scenario F: a match
// missing an arm for a variant reports non-exhaustiveness citing that
// variant.
func TestScenarioFNonExhaustiveMatch(t *testing.T) {
	src := `
enum Result = Ok(Int) | Err(String);

pub let unwrap(r: Result): Int = match r {
    x as Result::Ok => x.0
};
`
	env := newStudentEnv()
	_, cerr := New(src, env)
	if cerr == nil {
		t.Fatalf("expected a compile error for a non-exhaustive match")
	}
	found := false
	for _, d := range cerr.SemanticsErrors {
		if d.Kind == "non_exhaustive_match" {
			for _, name := range []string{"Result::Err"} {
				if containsSubstring(d.Message, name) {
					found = true
				}
			}
		}
	}
	if !found {
		t.Fatalf("expected a non-exhaustive-match error citing Result::Err, got %+v", cerr.SemanticsErrors)
	}
}

func containsSubstring(haystack, needle string) bool {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return true
		}
	}
	return false
}
