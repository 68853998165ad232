package parser

import (
	"github.com/collomatique/colloml/internal/lexer"
	"github.com/collomatique/colloml/internal/pipeline"
)

// Processor is the parser's pipeline.Processor stage, grounded on the
// teacher's internal/parser.ParserProcessor
// (_examples/funvibe-funxy/internal/parser/processor.go): lex the
// source and parse it into ctx.Program, recording parse errors on the
// context rather than returning them directly so later stages still
// run and can report their own diagnostics.
type Processor struct{}

func (pp *Processor) Process(ctx *pipeline.Context) *pipeline.Context {
	l := lexer.New(ctx.Source)
	p := New(l)
	ctx.Program = p.ParseProgram()
	ctx.ParseErrors = p.Errors()
	return ctx
}
