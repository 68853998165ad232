package checker

import (
	"testing"

	"github.com/collomatique/colloml/internal/lexer"
	"github.com/collomatique/colloml/internal/parser"
	"github.com/collomatique/colloml/internal/symbols"
)

func checkSrc(t *testing.T, src string) *Checker {
	t.Helper()
	p := parser.New(lexer.New(src))
	prog := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("parse errors: %+v", errs)
	}
	c := New(symbols.NewGlobalEnv())
	c.Check(prog)
	return c
}

func TestCheckSimpleArithmetic(t *testing.T) {
	c := checkSrc(t, `let add (a: Int, b: Int): Int = a + b;`)
	if len(c.Errors) != 0 {
		t.Fatalf("unexpected errors: %+v", c.Errors)
	}
}

func TestCheckTypeMismatchArgCount(t *testing.T) {
	c := checkSrc(t, `let add (a: Int, b: Int): Int = a + b;
let f (): Int = add(1);`)
	if len(c.Errors) == 0 {
		t.Fatalf("expected an argument count mismatch error")
	}
}

func TestCheckConstraintOperators(t *testing.T) {
	c := checkSrc(t, `let f (a: Int, b: Int): Constraint = a + b <== 10;`)
	if len(c.Errors) != 0 {
		t.Fatalf("unexpected errors: %+v", c.Errors)
	}
}

func TestCheckNonLinearMultiplication(t *testing.T) {
	c := checkSrc(t, `let bad (a: Int, b: Int): Constraint =
  (a as LinExpr) * (b as LinExpr) === 1;`)
	if len(c.Errors) == 0 {
		t.Fatalf("expected a non-linear-constraint error")
	}
}

func TestCheckMatchExhaustiveness(t *testing.T) {
	c := checkSrc(t, `let f (x: Int | Bool): Int = match x {
  n as Int => n
};`)
	found := false
	for _, e := range c.Errors {
		if e.Kind == "non_exhaustive_match" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a non-exhaustive-match error, got %+v", c.Errors)
	}
}

func TestCheckMatchExhaustiveCoversAllVariants(t *testing.T) {
	c := checkSrc(t, `let f (x: Int | Bool): Int = match x {
  n as Int => n,
  b as Bool => 0
};`)
	if len(c.Errors) != 0 {
		t.Fatalf("unexpected errors: %+v", c.Errors)
	}
}

func TestResolveTypeAliasCycleReported(t *testing.T) {
	c := checkSrc(t, `type A = B;
type B = A;`)
	found := false
	for _, e := range c.Errors {
		if e.Kind == "cyclic_type_alias" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a cyclic_type_alias error, got %+v", c.Errors)
	}
}

func TestReifyAndVarCallResolve(t *testing.T) {
	c := checkSrc(t, `let chosen (): Constraint = 1 === 1;
reify $choice = chosen;
let total (): LinExpr = $choice() + 1;`)
	if len(c.Errors) != 0 {
		t.Fatalf("unexpected errors: %+v", c.Errors)
	}
}
