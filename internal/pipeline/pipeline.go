// Package pipeline wires the lex/parse/check stages into a single run
// over one ColloML source string, grounded on the teacher's
// internal/pipeline.Pipeline (_examples/funvibe-funxy/internal/pipeline/pipeline.go):
// a sequence of Processor stages threading a shared context, run
// unconditionally stage-to-stage so later stages can still report
// their own diagnostics even after an earlier stage failed (the
// top-level colloml package decides which errors are fatal).
package pipeline

import (
	"github.com/collomatique/colloml/internal/ast"
	"github.com/collomatique/colloml/internal/diagnostics"
	"github.com/collomatique/colloml/internal/symbols"
	"github.com/collomatique/colloml/internal/types"
)

// Context is the state threaded through a Run: the source text, the
// parsed AST once the parser stage runs, the populated global symbol
// table and per-expression type annotations once the checker stage
// runs, and every diagnostic collected along the way.
type Context struct {
	Source string

	Program *ast.Program
	Global  *symbols.GlobalEnv

	ExprTypes map[ast.Expression]types.ExprType

	ParseErrors []diagnostics.Diagnostic
	CheckErrors []diagnostics.Diagnostic
	Warnings    []diagnostics.Diagnostic
}

func NewContext(source string, global *symbols.GlobalEnv) *Context {
	return &Context{Source: source, Global: global}
}

// Processor is one pipeline stage.
type Processor interface {
	Process(ctx *Context) *Context
}

// Pipeline runs a fixed sequence of Processors over one Context.
type Pipeline struct {
	stages []Processor
}

func New(stages ...Processor) *Pipeline {
	return &Pipeline{stages: stages}
}

func (p *Pipeline) Run(ctx *Context) *Context {
	for _, stage := range p.stages {
		ctx = stage.Process(ctx)
	}
	return ctx
}
