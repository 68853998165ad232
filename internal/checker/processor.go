package checker

import "github.com/collomatique/colloml/internal/pipeline"

// Processor is the checker's pipeline.Processor stage, grounded on the
// teacher's internal/analyzer.SemanticAnalyzerProcessor
// (_examples/funvibe-funxy/internal/analyzer/processor.go): run the
// two-pass semantic check over ctx.Program against the already-seeded
// ctx.Global, and export the resulting ExprTypes/errors/warnings back
// onto the context.
type Processor struct{}

func (cp *Processor) Process(ctx *pipeline.Context) *pipeline.Context {
	if ctx.Program == nil {
		return ctx
	}
	c := New(ctx.Global)
	c.Check(ctx.Program)
	ctx.ExprTypes = c.ExprTypes
	ctx.CheckErrors = c.Errors
	ctx.Warnings = c.Warnings
	return ctx
}
