package main

import (
	"testing"

	"github.com/collomatique/colloml/internal/evaluator"
	"github.com/collomatique/colloml/internal/types"
)

func TestFlagsSplitsRecognizedAndPositional(t *testing.T) {
	f, positional := flags(
		[]string{"--schema", "s.yaml", "--db", "d.db", "--fn", "run", "3", "true"},
		"schema", "db", "fn",
	)
	if f["schema"] != "s.yaml" || f["db"] != "d.db" || f["fn"] != "run" {
		t.Fatalf("unexpected flags: %+v", f)
	}
	if len(positional) != 2 || positional[0] != "3" || positional[1] != "true" {
		t.Fatalf("unexpected positional args: %v", positional)
	}
}

func TestParseScalarArgs(t *testing.T) {
	params := []types.ExprType{types.IntType(), types.BoolType(), types.StringType()}
	args, err := parseScalarArgs(params, []string{"3", "true", "hi"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if iv, ok := args[0].(evaluator.IntVal); !ok || int32(iv) != 3 {
		t.Fatalf("expected IntVal(3), got %v", args[0])
	}
	if bv, ok := args[1].(evaluator.BoolVal); !ok || !bool(bv) {
		t.Fatalf("expected BoolVal(true), got %v", args[1])
	}
	if sv, ok := args[2].(evaluator.StringVal); !ok || string(sv) != "hi" {
		t.Fatalf("expected StringVal(hi), got %v", args[2])
	}
}

func TestParseScalarArgsRejectsNonScalarParam(t *testing.T) {
	params := []types.ExprType{types.ListType(types.IntType())}
	_, err := parseScalarArgs(params, []string{"[1,2]"})
	if err == nil {
		t.Fatalf("expected an error for a list-typed CLI argument")
	}
}

func TestParseScalarArgsRejectsWrongArity(t *testing.T) {
	params := []types.ExprType{types.IntType()}
	_, err := parseScalarArgs(params, []string{})
	if err == nil {
		t.Fatalf("expected an arity mismatch error")
	}
}
