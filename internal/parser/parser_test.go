package parser

import (
	"testing"

	"github.com/collomatique/colloml/internal/ast"
	"github.com/collomatique/colloml/internal/lexer"
)

func parse(t *testing.T, src string) *ast.Program {
	t.Helper()
	p := New(lexer.New(src))
	prog := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("parse errors for %q: %+v", src, errs)
	}
	return prog
}

func TestParseSimpleLet(t *testing.T) {
	prog := parse(t, `let add (a: Int, b: Int): Int = a + b;`)
	if len(prog.Decls) != 1 {
		t.Fatalf("expected 1 decl, got %d", len(prog.Decls))
	}
	let, ok := prog.Decls[0].(*ast.Let)
	if !ok {
		t.Fatalf("expected *ast.Let, got %T", prog.Decls[0])
	}
	if let.Name != "add" || len(let.Params) != 2 {
		t.Fatalf("unexpected let: %+v", let)
	}
	bin, ok := let.Body.(*ast.BinaryExpr)
	if !ok || bin.Op != ast.OpAdd {
		t.Fatalf("expected a+b BinaryExpr, got %+v", let.Body)
	}
}

func TestParsePubLetAndReify(t *testing.T) {
	prog := parse(t, `pub let chosen (s: Student): Constraint = s === s;
reify $chosen = chosen;`)
	if len(prog.Decls) != 2 {
		t.Fatalf("expected 2 decls, got %d", len(prog.Decls))
	}
	let := prog.Decls[0].(*ast.Let)
	if !let.Pub {
		t.Errorf("expected pub let")
	}
	reify := prog.Decls[1].(*ast.Reify)
	if reify.VarName != "chosen" || reify.TargetFn != "chosen" || reify.IsList {
		t.Errorf("unexpected reify: %+v", reify)
	}
}

func TestParseListReify(t *testing.T) {
	prog := parse(t, `reify $[slot] = f;`)
	reify := prog.Decls[0].(*ast.Reify)
	if !reify.IsList || reify.VarName != "slot" {
		t.Errorf("unexpected reify: %+v", reify)
	}
}

func TestParseForallSumFold(t *testing.T) {
	prog := parse(t, `let total (xs: [Int]): Int = sum x in xs { x };
let ok (xs: [Int]): Constraint = forall x in xs where x > 0 { x === x };
let acc (xs: [Int]): Int = fold x in xs as total = 0 { total + x };`)
	if len(prog.Decls) != 3 {
		t.Fatalf("expected 3 decls, got %d", len(prog.Decls))
	}
	if _, ok := prog.Decls[0].(*ast.Let).Body.(*ast.Sum); !ok {
		t.Errorf("expected Sum body")
	}
	forall := prog.Decls[1].(*ast.Let).Body.(*ast.Forall)
	if forall.Where == nil {
		t.Errorf("expected where clause")
	}
	fold := prog.Decls[2].(*ast.Let).Body.(*ast.Fold)
	if fold.AccName != "total" || fold.Reverse {
		t.Errorf("unexpected fold: %+v", fold)
	}
}

func TestParseMatchExpr(t *testing.T) {
	prog := parse(t, `let f (x: Int | Bool): Int = match x {
  n as Int => n,
  b as Bool => 0
};`)
	m := prog.Decls[0].(*ast.Let).Body.(*ast.Match)
	if len(m.Arms) != 2 {
		t.Fatalf("expected 2 arms, got %d", len(m.Arms))
	}
	if m.Arms[0].BindName != "n" || m.Arms[0].AsType == nil {
		t.Errorf("unexpected arm 0: %+v", m.Arms[0])
	}
}

func TestParseCastsAndAs(t *testing.T) {
	prog := parse(t, `let f (x: ?Int): Int = (x as Int) + (x cast! Int) + (x cast? Int ?? 0);`)
	_ = prog
}

func TestParseConstructorsAndEnumCalls(t *testing.T) {
	prog := parse(t, `let f (): Point = Point { x: 1, y: 2 };
let g (): Result = Result::Ok(1);
let h (): Result = Result::Err { msg: "bad" };`)
	cs := prog.Decls[0].(*ast.Let).Body.(*ast.ConstructStruct)
	if cs.TypeName != "Point" || len(cs.Fields) != 2 {
		t.Errorf("unexpected construct struct: %+v", cs)
	}
	ec := prog.Decls[1].(*ast.Let).Body.(*ast.EnumCtorCall)
	if ec.EnumName != "Result" || ec.Variant != "Ok" {
		t.Errorf("unexpected enum ctor call: %+v", ec)
	}
	es := prog.Decls[2].(*ast.Let).Body.(*ast.EnumCtorStruct)
	if es.EnumName != "Result" || es.Variant != "Err" {
		t.Errorf("unexpected enum ctor struct: %+v", es)
	}
}

func TestParseVarCallAndGlobalCollection(t *testing.T) {
	prog := parse(t, `let f (s: Student): Constraint = $chosen(s) === $[slot](s) and @[Student] === @[Student];`)
	_ = prog
}

func TestParseListCompAndRange(t *testing.T) {
	prog := parse(t, `let f (): [Int] = [x for x in [1..10] where x > 0];`)
	comp := prog.Decls[0].(*ast.Let).Body.(*ast.ListComp)
	if len(comp.Clauses) != 1 || comp.Where == nil {
		t.Errorf("unexpected list comp: %+v", comp)
	}
	rng, ok := comp.Clauses[0].Coll.(*ast.ListRange)
	if !ok {
		t.Fatalf("expected ListRange, got %T", comp.Clauses[0].Coll)
	}
	_ = rng
}

func TestParseTupleAndIndex(t *testing.T) {
	prog := parse(t, `let f (t: (Int, Bool)): Int = t.0;`)
	idx := prog.Decls[0].(*ast.Let).Body.(*ast.TupleIndex)
	if idx.Index != 0 {
		t.Errorf("unexpected tuple index: %+v", idx)
	}
}

func TestParseDocstringBacktickInterpolation(t *testing.T) {
	prog := parse(t, "\"At most one chosen: got @{n}, value `n+1`.\"\nlet f (n: Int): Constraint = n === n;")
	let := prog.Decls[0].(*ast.Let)
	if let.Doc == nil || len(let.Doc.Lines) != 1 {
		t.Fatalf("expected a 1-line docstring, got %+v", let.Doc)
	}
	parts := let.Doc.Lines[0].Parts
	if len(parts) != 3 {
		t.Fatalf("expected 3 doc parts (text, expr, text), got %d: %+v", len(parts), parts)
	}
	if parts[0].Expr != nil || parts[1].Expr == nil || parts[2].Expr != nil {
		t.Errorf("unexpected doc part shape: %+v", parts)
	}
	call, ok := parts[1].Expr.(*ast.ConstructCall)
	if !ok {
		t.Fatalf("expected embedded expr wrapped in ConstructCall, got %T", parts[1].Expr)
	}
	if call.TypeName != "String" || len(call.Args) != 1 {
		t.Errorf("expected `String(...)` wrapper, got %+v", call)
	}
}

func TestParseEnumDecl(t *testing.T) {
	prog := parse(t, `enum Result = Ok(Int) | Err { msg: String } | Unknown;`)
	e := prog.Decls[0].(*ast.EnumDecl)
	if len(e.Variants) != 3 {
		t.Fatalf("expected 3 variants, got %d", len(e.Variants))
	}
	if e.Variants[0].Kind != ast.VariantTuple || e.Variants[1].Kind != ast.VariantStruct || e.Variants[2].Kind != ast.VariantUnit {
		t.Errorf("unexpected variant kinds: %+v", e.Variants)
	}
}

func TestParseTypeDeclUnionAndOptional(t *testing.T) {
	prog := parse(t, `type MaybeScore = ?Int | Bool;`)
	td := prog.Decls[0].(*ast.TypeDecl)
	u, ok := td.Underlying.(*ast.TypeUnion)
	if !ok || len(u.Members) != 2 {
		t.Fatalf("expected a 2-member union, got %+v", td.Underlying)
	}
	if _, ok := u.Members[0].(*ast.TypeOptional); !ok {
		t.Errorf("expected first member to be ?Int, got %+v", u.Members[0])
	}
}

func TestParseRawStringWithTildes(t *testing.T) {
	prog := parse(t, `let f (): String = ~"she said "hi""~;`)
	lit := prog.Decls[0].(*ast.Let).Body.(*ast.StringLit)
	if lit.Value != `she said "hi"` {
		t.Errorf("got %q", lit.Value)
	}
}
