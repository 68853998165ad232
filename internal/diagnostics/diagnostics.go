// Package diagnostics defines the structured error and warning kinds shared
// by the parser, semantic checker and evaluator. Every diagnostic carries a
// span; rendering a diagnostic to human-readable text is done by Render
// below, which the CLI calls — it is not part of the core's return values.
package diagnostics

import (
	"fmt"

	"github.com/collomatique/colloml/internal/token"
)

// Kind identifies the category of a diagnostic, independent of its stage.
type Kind string

const (
	// Parse / AST-lowering errors (fatal, single one aborts checking).
	KindParseError   Kind = "parse_error"
	KindAstLowering  Kind = "ast_lowering_error"
	KindNumberOverflow Kind = "number_overflow"

	// Semantic errors.
	KindUnknownIdentifier   Kind = "unknown_identifier"
	KindUnknownField        Kind = "unknown_field"
	KindUnknownType         Kind = "unknown_type"
	KindDuplicateName       Kind = "duplicate_name"
	KindDuplicateField      Kind = "duplicate_field"
	KindTypeMismatch        Kind = "type_mismatch"
	KindNonExhaustiveMatch  Kind = "non_exhaustive_match"
	KindInvalidCastDirection Kind = "invalid_cast_direction"
	KindPrimitiveAsValue    Kind = "primitive_type_as_value"
	KindTupleIndexOOB       Kind = "tuple_index_out_of_bounds"
	KindNonLinearConstraint Kind = "non_linear_constraint_operand"
	KindFoldNotRefining     Kind = "fold_accumulator_not_refining"
	KindNotACollection      Kind = "global_collection_not_objects"
	KindInvalidReifyTarget  Kind = "invalid_reify_target"
	KindCyclicTypeAlias     Kind = "cyclic_type_alias"
	KindInconsistentEnv     Kind = "inconsistent_global_env"

	// Warnings.
	KindUnusedFunction   Kind = "unused_function"
	KindUnusedVariable   Kind = "unused_variable"
	KindShadowedName     Kind = "shadowed_name"
	KindNonSnakeCaseName Kind = "non_snake_case_name"

	// Evaluation errors.
	KindArgCountMismatch  Kind = "argument_count_mismatch"
	KindArgTypeMismatch   Kind = "argument_type_mismatch"
	KindUnknownFunction   Kind = "unknown_function"
	KindMissingObjectField Kind = "missing_object_field"
	KindRuntimePanic      Kind = "runtime_panic"
	KindCastBangFailure   Kind = "cast_bang_failure"
	KindNonExhaustiveMatchRuntime Kind = "non_exhaustive_match_runtime"
	KindInvariantBroken   Kind = "invariant_broken"
)

// Diagnostic is a single error or warning with a span and a human message.
type Diagnostic struct {
	Kind    Kind
	Span    token.Span
	Message string
	// Names, when non-empty, lists identifiers relevant to the diagnostic
	// (e.g. all participating names in a type-alias cycle).
	Names []string
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("%s at [%d,%d): %s", d.Kind, d.Span.Start, d.Span.End, d.Message)
}

func New(kind Kind, span token.Span, format string, args ...interface{}) Diagnostic {
	return Diagnostic{Kind: kind, Span: span, Message: fmt.Sprintf(format, args...)}
}

// CompileError is returned by CheckedAST construction. Exactly one of
// ParseError, AstError, InconsistentGlobalEnv and SemanticsErrors is
// populated; SemanticsWarnings accompanies SemanticsErrors.
type CompileError struct {
	ParseError            *Diagnostic
	AstError               *Diagnostic
	InconsistentGlobalEnv  *Diagnostic
	SemanticsErrors        []Diagnostic
	SemanticsWarnings      []Diagnostic
}

func (c *CompileError) Error() string {
	switch {
	case c.ParseError != nil:
		return c.ParseError.Error()
	case c.AstError != nil:
		return c.AstError.Error()
	case c.InconsistentGlobalEnv != nil:
		return c.InconsistentGlobalEnv.Error()
	default:
		if len(c.SemanticsErrors) > 0 {
			return fmt.Sprintf("%d semantic error(s), first: %s", len(c.SemanticsErrors), c.SemanticsErrors[0].Error())
		}
		return "compile error"
	}
}

// EvalError is returned by CheckedAST.EvalFn / EvalFnWithVariables.
type EvalError struct {
	Diagnostic
}

func (e *EvalError) Error() string { return e.Diagnostic.Error() }

func NewEvalError(kind Kind, span token.Span, format string, args ...interface{}) *EvalError {
	return &EvalError{Diagnostic: New(kind, span, format, args...)}
}

// Render formats a diagnostic as "file:line:col: message", resolving
// Span.Start against source's newlines. This is the CLI-facing
// counterpart to Diagnostic.Error()'s byte-offset form: spec.md §6
// treats diagnostic rendering as a concern separate from the core's
// CompileError/EvalError return contract, so it lives here rather than
// on Diagnostic itself, for a caller (the CLI) that has a filename and
// the original source text to resolve a span against.
func Render(file, source string, d Diagnostic) string {
	line, col := lineCol(source, d.Span.Start)
	return fmt.Sprintf("%s:%d:%d: %s", file, line, col, d.Message)
}

// lineCol converts a byte offset into 1-based line and column numbers.
func lineCol(source string, offset int) (line, col int) {
	line, col = 1, 1
	for i := 0; i < offset && i < len(source); i++ {
		if source[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}
