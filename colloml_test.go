package colloml

import (
	"testing"

	"github.com/collomatique/colloml/internal/evaluator"
	"github.com/collomatique/colloml/internal/types"
)

// studentEnv is a minimal host Env for tests: two Student objects and
// one external decision-variable family chosen(Student): LinExpr,
// grounded on spec.md §8's "at_most_one" worked example.
type studentEnv struct {
	students []evaluator.Value
}

func newStudentEnv(names ...string) *studentEnv {
	students := make([]evaluator.Value, len(names))
	for i, name := range names {
		students[i] = evaluator.ObjectVal{TypeName: "Student", Handle: name}
	}
	return &studentEnv{students: students}
}

func (e *studentEnv) TypeSchemas() []ObjectTypeSchema {
	return []ObjectTypeSchema{{Name: "Student"}}
}

func (e *studentEnv) ExternVarSchemas() []ExternVarSchema {
	return []ExternVarSchema{{
		Name:   "chosen",
		Params: []types.ExprType{types.Of(types.Object{Name: "Student"})},
	}}
}

func (e *studentEnv) ObjectsWithType(typeName string) []evaluator.Value {
	if typeName != "Student" {
		return nil
	}
	return e.students
}

func (e *studentEnv) FieldAccess(obj evaluator.ObjectVal, field string) (evaluator.Value, bool) {
	return nil, false
}

func (e *studentEnv) PrettyPrint(obj evaluator.ObjectVal) (string, bool) {
	name, ok := obj.Handle.(string)
	return name, ok
}

func (e *studentEnv) TypeName(obj evaluator.ObjectVal) string { return obj.TypeName }

func TestCheckedASTEvalFnAtMostOne(t *testing.T) {
	src := `
pub let at_most_one(xs: [Student]): Constraint =
    (sum s in xs { $chosen(s) }) <== 1;
`
	env := newStudentEnv("a", "b")
	checked, cerr := New(src, env)
	if cerr != nil {
		t.Fatalf("compile error: %v", cerr)
	}

	xs := evaluator.ListVal{Elems: env.ObjectsWithType("Student")}
	v, err := checked.EvalFn(env, "at_most_one", []Value{xs})
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}

	cv, ok := v.(evaluator.ConstraintVal)
	if !ok {
		t.Fatalf("expected ConstraintVal, got %T", v)
	}
	if len(cv.Atoms) != 1 {
		t.Fatalf("expected a single atom, got %d", len(cv.Atoms))
	}
	if len(cv.Atoms[0].Expr.Terms) != 2 {
		t.Fatalf("expected chosen(a)+chosen(b), got %s", cv.Atoms[0].Expr.Inspect())
	}
	if cv.Atoms[0].Expr.Const != -1 {
		t.Fatalf("expected constant -1 after subtracting rhs 1, got %d", cv.Atoms[0].Expr.Const)
	}
}

func TestCheckedASTCompileErrorOnUnknownObjectType(t *testing.T) {
	src := `pub let f(x: Teacher): Int = 1;`
	env := newStudentEnv()
	_, cerr := New(src, env)
	if cerr == nil {
		t.Fatalf("expected a compile error for an undeclared object type")
	}
	if len(cerr.SemanticsErrors) == 0 {
		t.Fatalf("expected semantic errors, got %+v", cerr)
	}
}

func TestCheckedASTEvalFnWithVariablesRecordsReification(t *testing.T) {
	src := `
let bound(x: Int): Constraint = (x as LinExpr) <== 10;
pub reify $bounded = bound;
pub let run(x: Int): LinExpr = $bounded(x);
`
	env := newStudentEnv()
	checked, cerr := New(src, env)
	if cerr != nil {
		t.Fatalf("compile error: %v", cerr)
	}

	_, defs, err := checked.EvalFnWithVariables(env, "run", []Value{evaluator.IntVal(3)})
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}
	if len(defs.Constraints) != 1 {
		t.Fatalf("expected one recorded constraint, got %d", len(defs.Constraints))
	}
}
