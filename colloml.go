// Package colloml is the public entry point for the ColloML frontend:
// parse, semantically check, and evaluate a ColloML program against a
// host-supplied Env, producing linear-programming constraints over
// decision-variable families for an external solver to consume.
//
// The package never performs I/O and never reaches into the
// scheduling/timetabling domain model, persistence, or solver that a
// host wires up around it — that boundary is the Env interface below,
// grounded on spec.md's "external collaborator" contract.
package colloml

import (
	"github.com/collomatique/colloml/internal/ast"
	"github.com/collomatique/colloml/internal/checker"
	"github.com/collomatique/colloml/internal/diagnostics"
	"github.com/collomatique/colloml/internal/evaluator"
	"github.com/collomatique/colloml/internal/parser"
	"github.com/collomatique/colloml/internal/pipeline"
	"github.com/collomatique/colloml/internal/symbols"
	"github.com/collomatique/colloml/internal/token"
	"github.com/collomatique/colloml/internal/types"
)

// Value is a checked, evaluated ColloML runtime value, re-exported so a
// host never needs to import internal/evaluator directly.
type Value = evaluator.Value

// CompileError and EvalError are re-exported from internal/diagnostics,
// matching spec.md §6's CompileError/EvalError sum types.
type CompileError = diagnostics.CompileError
type EvalError = diagnostics.EvalError

// ObjectTypeSchema describes one host object type: its name and the
// ordered fields (with their ColloML types) the host exposes through
// FieldAccess.
type ObjectTypeSchema struct {
	Name   string
	Fields []FieldSchema
}

// FieldSchema is one named, typed field of an ObjectTypeSchema.
type FieldSchema struct {
	Name string
	Type types.ExprType
}

// ExternVarSchema describes a host-declared external decision-variable
// family: a name and its parameter-type tuple (the result type is
// always LinExpr, so it is not part of the schema).
type ExternVarSchema struct {
	Name   string
	Params []types.ExprType
}

// Env is the full host "external collaborator" contract (spec.md §6):
// the type-level schema accessors the checker consults once at build
// time, plus the value-level accessors (embedded from
// evaluator.Env) the evaluator consults on every run.
type Env interface {
	evaluator.Env

	// TypeSchemas returns every object type the host declares, with its
	// fields. Consulted once when building a CheckedAST; the checker
	// treats a reference to any other object type name as an error.
	TypeSchemas() []ObjectTypeSchema

	// ExternVarSchemas returns every external decision-variable family
	// the host declares, consulted once when building a CheckedAST.
	ExternVarSchemas() []ExternVarSchema

	// TypeName returns the declared object-type name of a runtime
	// object, backing match-arm narrowing and cast?/cast! against
	// Object-typed values.
	TypeName(obj evaluator.ObjectVal) string
}

// VariableDefinitions holds the decision-variable families and
// constraints produced by one evaluation, plus their provenance —
// spec.md §6's second half of eval_fn_with_variables's return value.
type VariableDefinitions struct {
	Constraints []evaluator.ConstraintWithOrigin
}

// CheckedAST is a parsed, semantically-checked ColloML program ready
// for repeated evaluation. Building one runs the parser and checker
// exactly once; every subsequent EvalFn/EvalFnWithVariables call reuses
// the same checked AST and global symbol table, each against its own
// fresh per-run evaluator.EvalHistory (spec.md §7: "no global mutable
// state" — history is owned by the caller, not the CheckedAST).
type CheckedAST struct {
	program *ast.Program
	global  *symbols.GlobalEnv
	types   map[ast.Expression]types.ExprType

	Warnings []diagnostics.Diagnostic
}

// New parses and checks source against env's declared schemas,
// returning a CompileError on the first failing stage: a parse error
// aborts immediately (there is no AST to check); otherwise every
// semantic error and warning is collected before returning.
func New(source string, env Env) (*CheckedAST, *CompileError) {
	global := symbols.NewGlobalEnv()
	if err := seedGlobalEnv(global, env); err != nil {
		return nil, &CompileError{InconsistentGlobalEnv: err}
	}

	ctx := pipeline.NewContext(source, global)
	run := pipeline.New(&parser.Processor{}, &checker.Processor{})
	ctx = run.Run(ctx)

	if len(ctx.ParseErrors) > 0 {
		first := ctx.ParseErrors[0]
		return nil, &CompileError{ParseError: &first}
	}
	if ctx.Program == nil {
		d := diagnostics.New(diagnostics.KindParseError, token.Span{}, "empty program")
		return nil, &CompileError{AstError: &d}
	}
	if len(ctx.CheckErrors) > 0 {
		return nil, &CompileError{SemanticsErrors: ctx.CheckErrors, SemanticsWarnings: ctx.Warnings}
	}

	return &CheckedAST{
		program:  ctx.Program,
		global:   global,
		types:    ctx.ExprTypes,
		Warnings: ctx.Warnings,
	}, nil
}

// seedGlobalEnv translates the host's declared schemas into the
// checker's symbol-table shape, reporting any internal inconsistency
// (duplicate names) as InconsistentGlobalEnv per spec.md §6.
func seedGlobalEnv(global *symbols.GlobalEnv, env Env) *diagnostics.Diagnostic {
	for _, ot := range env.TypeSchemas() {
		if _, dup := global.ObjectTypes[ot.Name]; dup {
			d := diagnostics.New(diagnostics.KindInconsistentEnv, token.Span{}, "object type %q declared more than once by the host environment", ot.Name)
			return &d
		}
		os := &symbols.ObjectSchema{Name: ot.Name, Fields: make(map[string]types.ExprType)}
		for _, f := range ot.Fields {
			if _, dup := os.Fields[f.Name]; dup {
				d := diagnostics.New(diagnostics.KindInconsistentEnv, token.Span{}, "object type %q has duplicate field %q", ot.Name, f.Name)
				return &d
			}
			os.Fields[f.Name] = f.Type
			os.Order = append(os.Order, f.Name)
		}
		global.ObjectTypes[ot.Name] = os
	}
	for _, ev := range env.ExternVarSchemas() {
		if _, dup := global.ExternVars[ev.Name]; dup {
			d := diagnostics.New(diagnostics.KindInconsistentEnv, token.Span{}, "external variable %q declared more than once by the host environment", ev.Name)
			return &d
		}
		global.ExternVars[ev.Name] = &symbols.ExternVarSchema{Name: ev.Name, Params: ev.Params, Kind: symbols.ReifyScalar}
	}
	return nil
}

// EvalFn evaluates a checked program's named public function against
// args, against its own fresh EvalHistory. Memoization and constraint
// recording are scoped to this single call; call EvalFnWithVariables
// to also retrieve the recorded constraints.
func (c *CheckedAST) EvalFn(env Env, name string, args []Value) (Value, *EvalError) {
	v, _, err := c.evalFn(env, name, args)
	return v, err
}

// EvalFnWithVariables evaluates like EvalFn but also returns every
// constraint (with its provenance) recorded by reification during this
// one run, per spec.md §6's eval_fn_with_variables.
func (c *CheckedAST) EvalFnWithVariables(env Env, name string, args []Value) (Value, VariableDefinitions, *EvalError) {
	v, hist, err := c.evalFn(env, name, args)
	if err != nil {
		return nil, VariableDefinitions{}, err
	}
	return v, VariableDefinitions{Constraints: hist.Constraints()}, nil
}

// EntrySignature returns a declared function's parameter types and
// output type and whether it is `pub` (callable as a host entry point),
// so an external wire-protocol layer can type-direct its own argument
// decoding without reaching into the checker's symbol table.
func (c *CheckedAST) EntrySignature(name string) (params []types.ExprType, output types.ExprType, pub bool, ok bool) {
	sig, ok := c.global.Funcs[name]
	if !ok {
		return nil, types.ExprType{}, false, false
	}
	params = make([]types.ExprType, len(sig.Params))
	for i, p := range sig.Params {
		params[i] = p.Type
	}
	return params, sig.Output, sig.Pub, true
}

func (c *CheckedAST) evalFn(env Env, name string, args []Value) (Value, *evaluator.EvalHistory, *EvalError) {
	sig, ok := c.global.Funcs[name]
	if !ok {
		return nil, nil, diagnostics.NewEvalError(diagnostics.KindUnknownFunction, token.Span{}, "unknown function %q", name)
	}

	hist := evaluator.NewEvalHistory()
	ev := evaluator.New(c.global, c.types, env, hist)

	v, err := ev.EvalEntry(sig, args)
	if err != nil {
		return nil, nil, err
	}
	return v, hist, nil
}
