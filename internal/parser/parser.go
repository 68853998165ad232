// Package parser builds an internal/ast tree from a token stream,
// following the classic Pratt-parser shape (prefix/infix parse-function
// tables keyed by token type) used throughout the example corpus.
package parser

import (
	"github.com/collomatique/colloml/internal/ast"
	"github.com/collomatique/colloml/internal/diagnostics"
	"github.com/collomatique/colloml/internal/lexer"
	"github.com/collomatique/colloml/internal/token"
)

// Precedence levels, lowest to highest.
const (
	LOWEST int = iota
	OR
	AND
	EQUALS       // == != === <== >==
	LESSGREATER  // < <= > >=  (`in` is not parsed as an infix operator)
	NULLCOALESCE // ??
	SUM          // + -
	PRODUCT      // * / %
	PREFIX       // unary - / not
	CALLPREC     // f(x)  a.b  a[i]  a::b
)

var precedences = map[token.Type]int{
	token.OR:            OR,
	token.AND:           AND,
	token.EQ:            EQUALS,
	token.NEQ:           EQUALS,
	token.CONSTR_EQ:     EQUALS,
	token.CONSTR_LE:     EQUALS,
	token.CONSTR_GE:     EQUALS,
	token.LT:            LESSGREATER,
	token.LTE:           LESSGREATER,
	token.GT:            LESSGREATER,
	token.GTE:           LESSGREATER,
	token.NULL_COALESCE: NULLCOALESCE,
	token.PLUS:          SUM,
	token.MINUS:         SUM,
	token.STAR:          PRODUCT,
	token.SLASH:         PRODUCT,
	token.PERCENT:       PRODUCT,
	token.AS:            CALLPREC,
	token.CAST_OPT:      CALLPREC,
	token.CAST_BANG:     CALLPREC,
	token.LPAREN:        CALLPREC,
	token.LBRACKET:      CALLPREC,
	token.DOT:           CALLPREC,
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

type Parser struct {
	l *lexer.Lexer

	curToken  token.Token
	peekToken token.Token

	errors []diagnostics.Diagnostic

	prefixParseFns map[token.Type]prefixParseFn
	infixParseFns  map[token.Type]infixParseFn
}

func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}

	p.prefixParseFns = make(map[token.Type]prefixParseFn)
	p.registerPrefix(token.INT, p.parseIntLit)
	p.registerPrefix(token.STRING, p.parseStringLit)
	p.registerPrefix(token.BOOL, p.parseBoolLit)
	p.registerPrefix(token.NONE, p.parseNoneLit)
	p.registerPrefix(token.IDENT, p.parseIdentLed)
	p.registerPrefix(token.MINUS, p.parseUnary)
	p.registerPrefix(token.NOT, p.parseUnary)
	p.registerPrefix(token.LPAREN, p.parseGrouped)
	p.registerPrefix(token.LBRACKET, p.parseListLitOrRange)
	p.registerPrefix(token.PIPE, p.parseCardinality)
	p.registerPrefix(token.DOLLAR, p.parseVarCall)
	p.registerPrefix(token.AT, p.parseGlobalCollection)
	p.registerPrefix(token.IF, p.parseIf)
	p.registerPrefix(token.MATCH, p.parseMatch)
	p.registerPrefix(token.LET, p.parseLetIn)
	p.registerPrefix(token.PANIC, p.parsePanic)
	p.registerPrefix(token.FORALL, p.parseForall)
	p.registerPrefix(token.SUM, p.parseSum)
	p.registerPrefix(token.FOLD, p.parseFold)
	p.registerPrefix(token.RFOLD, p.parseFold)

	p.infixParseFns = make(map[token.Type]infixParseFn)
	for _, t := range []token.Type{
		token.PLUS, token.MINUS, token.STAR, token.SLASH, token.PERCENT,
		token.AND, token.OR, token.EQ, token.NEQ,
		token.LT, token.LTE, token.GT, token.GTE,
		token.CONSTR_EQ, token.CONSTR_LE, token.CONSTR_GE,
	} {
		p.registerInfix(t, p.parseBinary)
	}
	p.registerInfix(token.NULL_COALESCE, p.parseNullCoalesce)
	p.registerInfix(token.AS, p.parseAs)
	p.registerInfix(token.CAST_OPT, p.parseCast)
	p.registerInfix(token.CAST_BANG, p.parseCast)
	p.registerInfix(token.LPAREN, p.parseCallArgs)
	p.registerInfix(token.LBRACKET, p.parseIndex)
	p.registerInfix(token.DOT, p.parseDot)

	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) registerPrefix(t token.Type, fn prefixParseFn) { p.prefixParseFns[t] = fn }
func (p *Parser) registerInfix(t token.Type, fn infixParseFn)   { p.infixParseFns[t] = fn }

func (p *Parser) Errors() []diagnostics.Diagnostic { return p.errors }

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) curIs(t token.Type) bool  { return p.curToken.Type == t }
func (p *Parser) peekIs(t token.Type) bool { return p.peekToken.Type == t }

func (p *Parser) expectPeek(t token.Type) bool {
	if p.peekIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(t)
	return false
}

func (p *Parser) peekError(t token.Type) {
	p.errors = append(p.errors, diagnostics.New(diagnostics.KindParseError, p.peekToken.Span,
		"expected next token to be "+t.String()+", got "+p.peekToken.Type.String()+" instead"))
}

func (p *Parser) noPrefixParseFnError(t token.Type) {
	p.errors = append(p.errors, diagnostics.New(diagnostics.KindParseError, p.curToken.Span,
		"no prefix parse function for "+t.String()+" found"))
}

func (p *Parser) peekPrecedence() int {
	if pr, ok := precedences[p.peekToken.Type]; ok {
		return pr
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if pr, ok := precedences[p.curToken.Type]; ok {
		return pr
	}
	return LOWEST
}

// ParseProgram parses a full ColloML source file into a Program node.
func (p *Parser) ParseProgram() *ast.Program {
	start := p.curToken.Span
	prog := &ast.Program{}
	for !p.curIs(token.EOF) {
		decl := p.parseDecl()
		if decl != nil {
			prog.Decls = append(prog.Decls, decl)
		}
		p.nextToken()
	}
	prog.Sp = token.Join(start, p.curToken.Span)
	return prog
}

func (p *Parser) parseDecl() ast.Statement {
	var doc *ast.Docstring
	if p.curIs(token.STRING) {
		doc = p.lowerDocstring(p.curToken)
		p.nextToken()
	}

	switch p.curToken.Type {
	case token.TYPE:
		return p.parseTypeDecl()
	case token.ENUM:
		return p.parseEnumDecl()
	case token.REIFY:
		return p.parseReify()
	case token.PUB:
		if p.peekIs(token.REIFY) {
			p.nextToken()
			r := p.parseReify()
			if r != nil {
				r.Pub = true
			}
			return r
		}
		p.nextToken() // consume PUB, curToken should now be LET
		return p.parseLet(true, doc)
	case token.LET:
		return p.parseLet(false, doc)
	default:
		p.errors = append(p.errors, diagnostics.New(diagnostics.KindParseError, p.curToken.Span,
			"expected a top-level declaration (let/pub let/reify/type/enum), got "+p.curToken.Type.String()))
		return nil
	}
}

func (p *Parser) parseLet(pub bool, doc *ast.Docstring) ast.Statement {
	start := p.curToken.Span
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	name := p.curToken.Lexeme

	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	params := p.parseParamList()

	var out ast.TypeExpr
	if p.peekIs(token.COLON) {
		p.nextToken()
		p.nextToken()
		out = p.parseTypeExpr()
	}

	if !p.expectPeek(token.ASSIGN) {
		return nil
	}
	p.nextToken()
	body := p.parseExpression(LOWEST)

	if p.peekIs(token.SEMI) {
		p.nextToken()
	}

	return &ast.Let{
		Pub: pub, Doc: doc, Name: name, Params: params, OutType: out, Body: body,
		Sp: token.Join(start, p.curToken.Span),
	}
}

func (p *Parser) parseParamList() []ast.Param {
	var params []ast.Param
	if p.peekIs(token.RPAREN) {
		p.nextToken()
		return params
	}
	p.nextToken()
	for {
		pstart := p.curToken.Span
		if !p.curIs(token.IDENT) {
			p.errors = append(p.errors, diagnostics.New(diagnostics.KindParseError, p.curToken.Span, "expected parameter name"))
			return params
		}
		pname := p.curToken.Lexeme
		if !p.expectPeek(token.COLON) {
			return params
		}
		p.nextToken()
		ptyp := p.parseTypeExpr()
		params = append(params, ast.Param{Name: pname, Type: ptyp, Sp: token.Join(pstart, p.curToken.Span)})
		if p.peekIs(token.COMMA) {
			p.nextToken()
			p.nextToken()
			continue
		}
		break
	}
	p.expectPeek(token.RPAREN)
	return params
}

func (p *Parser) parseReify() *ast.Reify {
	start := p.curToken.Span
	if !p.expectPeek(token.DOLLAR) {
		return nil
	}
	isList := false
	if p.peekIs(token.LBRACKET) {
		isList = true
		p.nextToken()
	}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	varName := p.curToken.Lexeme
	if isList {
		if !p.expectPeek(token.RBRACKET) {
			return nil
		}
	}
	if !p.expectPeek(token.ASSIGN) {
		return nil
	}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	target := p.curToken.Lexeme
	if p.peekIs(token.SEMI) {
		p.nextToken()
	}
	return &ast.Reify{VarName: varName, IsList: isList, TargetFn: target, Sp: token.Join(start, p.curToken.Span)}
}

func (p *Parser) parseTypeDecl() *ast.TypeDecl {
	start := p.curToken.Span
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	name := p.curToken.Lexeme
	if !p.expectPeek(token.ASSIGN) {
		return nil
	}
	p.nextToken()
	underlying := p.parseTypeExpr()
	if p.peekIs(token.SEMI) {
		p.nextToken()
	}
	return &ast.TypeDecl{Name: name, Underlying: underlying, Sp: token.Join(start, p.curToken.Span)}
}

func (p *Parser) parseEnumDecl() *ast.EnumDecl {
	start := p.curToken.Span
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	name := p.curToken.Lexeme
	if !p.expectPeek(token.ASSIGN) {
		return nil
	}
	p.nextToken()

	var variants []ast.EnumVariant
	for {
		variants = append(variants, p.parseEnumVariant())
		if p.peekIs(token.PIPE) {
			p.nextToken()
			p.nextToken()
			continue
		}
		break
	}
	if p.peekIs(token.SEMI) {
		p.nextToken()
	}
	return &ast.EnumDecl{Name: name, Variants: variants, Sp: token.Join(start, p.curToken.Span)}
}

func (p *Parser) parseEnumVariant() ast.EnumVariant {
	start := p.curToken.Span
	vname := p.curToken.Lexeme
	if p.peekIs(token.LPAREN) {
		p.nextToken()
		var fields []ast.TypeExpr
		if !p.peekIs(token.RPAREN) {
			p.nextToken()
			fields = append(fields, p.parseTypeExpr())
			for p.peekIs(token.COMMA) {
				p.nextToken()
				p.nextToken()
				fields = append(fields, p.parseTypeExpr())
			}
		}
		p.expectPeek(token.RPAREN)
		return ast.EnumVariant{Name: vname, Kind: ast.VariantTuple, TupleFields: fields, Sp: token.Join(start, p.curToken.Span)}
	}
	if p.peekIs(token.LBRACE) {
		p.nextToken()
		fields := p.parseTypedFieldList()
		return ast.EnumVariant{Name: vname, Kind: ast.VariantStruct, StructFields: fields, Sp: token.Join(start, p.curToken.Span)}
	}
	return ast.EnumVariant{Name: vname, Kind: ast.VariantUnit, Sp: token.Join(start, p.curToken.Span)}
}

func (p *Parser) parseTypedFieldList() []ast.Param {
	var fields []ast.Param
	if p.peekIs(token.RBRACE) {
		p.nextToken()
		return fields
	}
	p.nextToken()
	for {
		fstart := p.curToken.Span
		fname := p.curToken.Lexeme
		if !p.expectPeek(token.COLON) {
			return fields
		}
		p.nextToken()
		ftyp := p.parseTypeExpr()
		fields = append(fields, ast.Param{Name: fname, Type: ftyp, Sp: token.Join(fstart, p.curToken.Span)})
		if p.peekIs(token.COMMA) {
			p.nextToken()
			p.nextToken()
			continue
		}
		break
	}
	p.expectPeek(token.RBRACE)
	return fields
}

// --- type expressions ---

func (p *Parser) parseTypeExpr() ast.TypeExpr {
	t := p.parseTypeAtomWithOptional()
	if p.peekIs(token.PIPE) {
		members := []ast.TypeExpr{t}
		for p.peekIs(token.PIPE) {
			p.nextToken()
			p.nextToken()
			members = append(members, p.parseTypeAtomWithOptional())
		}
		return &ast.TypeUnion{Members: members, Sp: t.Span()}
	}
	return t
}

func (p *Parser) parseTypeAtomWithOptional() ast.TypeExpr {
	if p.curIs(token.QUESTION) {
		start := p.curToken.Span
		p.nextToken()
		inner := p.parseTypeAtom()
		return &ast.TypeOptional{Inner: inner, Sp: token.Join(start, inner.Span())}
	}
	return p.parseTypeAtom()
}

func (p *Parser) parseTypeAtom() ast.TypeExpr {
	switch p.curToken.Type {
	case token.LBRACKET:
		start := p.curToken.Span
		p.nextToken()
		elem := p.parseTypeExpr()
		p.expectPeek(token.RBRACKET)
		return &ast.TypeList{Elem: elem, Sp: token.Join(start, p.curToken.Span)}
	case token.LPAREN:
		start := p.curToken.Span
		p.nextToken()
		var elems []ast.TypeExpr
		elems = append(elems, p.parseTypeExpr())
		for p.peekIs(token.COMMA) {
			p.nextToken()
			p.nextToken()
			elems = append(elems, p.parseTypeExpr())
		}
		p.expectPeek(token.RPAREN)
		return &ast.TypeTuple{Elems: elems, Sp: token.Join(start, p.curToken.Span)}
	case token.LBRACE:
		start := p.curToken.Span
		p.nextToken()
		var fields []ast.TypeStructField
		for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
			fstart := p.curToken.Span
			fname := p.curToken.Lexeme
			p.expectPeek(token.COLON)
			p.nextToken()
			ftyp := p.parseTypeExpr()
			fields = append(fields, ast.TypeStructField{Name: fname, Type: ftyp, Sp: token.Join(fstart, p.curToken.Span)})
			if p.peekIs(token.COMMA) {
				p.nextToken()
			}
			p.nextToken()
		}
		return &ast.TypeStruct{Fields: fields, Sp: token.Join(start, p.curToken.Span)}
	case token.IDENT:
		return p.parseTypeName()
	default:
		p.errors = append(p.errors, diagnostics.New(diagnostics.KindParseError, p.curToken.Span, "expected a type"))
		return &ast.TypeName{Name: "Never", Sp: p.curToken.Span}
	}
}

func (p *Parser) parseTypeName() ast.TypeExpr {
	start := p.curToken.Span
	first := p.curToken.Lexeme
	if p.peekIs(token.DOUBLE_COLON) {
		p.nextToken()
		p.nextToken()
		second := p.curToken.Lexeme
		// `Enum::Variant` is the only `first::second` type literal shape
		// ColloML programs use (there is no cross-file module system);
		// the checker resolves `first` as the enum name and `second` as
		// the variant tag.
		return &ast.TypeName{Module: first, Variant: second, Sp: token.Join(start, p.curToken.Span)}
	}
	return &ast.TypeName{Name: first, Sp: start}
}

// --- expression parsing ---

func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.noPrefixParseFnError(p.curToken.Type)
		return nil
	}
	left := prefix()

	for !p.peekIs(token.SEMI) && precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return left
		}
		p.nextToken()
		left = infix(left)
	}
	return left
}

func (p *Parser) parseIntLit() ast.Expression {
	v, _ := p.curToken.Literal.(int32)
	return &ast.IntLit{Value: v, Sp: p.curToken.Span}
}

func (p *Parser) parseStringLit() ast.Expression {
	v, _ := p.curToken.Literal.(string)
	return &ast.StringLit{Value: v, Sp: p.curToken.Span}
}

func (p *Parser) parseBoolLit() ast.Expression {
	v, _ := p.curToken.Literal.(bool)
	return &ast.BoolLit{Value: v, Sp: p.curToken.Span}
}

func (p *Parser) parseNoneLit() ast.Expression {
	return &ast.NoneLit{Sp: p.curToken.Span}
}

func (p *Parser) parseUnary() ast.Expression {
	start := p.curToken.Span
	op := ast.OpNeg
	if p.curIs(token.NOT) {
		op = ast.OpNot
	}
	p.nextToken()
	operand := p.parseExpression(PREFIX)
	return &ast.UnaryExpr{Op: op, Operand: operand, Sp: token.Join(start, operand.Span())}
}

func (p *Parser) parseBinary(left ast.Expression) ast.Expression {
	start := left.Span()
	opTok := p.curToken.Type
	bop, ok := binOpFor(opTok)
	if !ok {
		p.errors = append(p.errors, diagnostics.New(diagnostics.KindParseError, p.curToken.Span, "not a binary operator"))
	}
	prec := p.curPrecedence()
	p.nextToken()
	right := p.parseExpression(prec)
	return &ast.BinaryExpr{Op: bop, Left: left, Right: right, Sp: token.Join(start, right.Span())}
}

func binOpFor(t token.Type) (ast.BinOp, bool) {
	switch t {
	case token.PLUS:
		return ast.OpAdd, true
	case token.MINUS:
		return ast.OpSub, true
	case token.STAR:
		return ast.OpMul, true
	case token.SLASH:
		return ast.OpDiv, true
	case token.PERCENT:
		return ast.OpMod, true
	case token.AND:
		return ast.OpAnd, true
	case token.OR:
		return ast.OpOr, true
	case token.EQ:
		return ast.OpEq, true
	case token.NEQ:
		return ast.OpNeq, true
	case token.LT:
		return ast.OpLt, true
	case token.LTE:
		return ast.OpLte, true
	case token.GT:
		return ast.OpGt, true
	case token.GTE:
		return ast.OpGte, true
	case token.CONSTR_EQ:
		return ast.OpConstrEq, true
	case token.CONSTR_LE:
		return ast.OpConstrLe, true
	case token.CONSTR_GE:
		return ast.OpConstrGe, true
	}
	return 0, false
}

func (p *Parser) parseNullCoalesce(left ast.Expression) ast.Expression {
	p.nextToken()
	right := p.parseExpression(NULLCOALESCE)
	return &ast.NullCoalesce{Left: left, Right: right, Sp: token.Join(left.Span(), right.Span())}
}

func (p *Parser) parseAs(left ast.Expression) ast.Expression {
	p.nextToken()
	typ := p.parseTypeExpr()
	return &ast.AsExpr{Operand: left, Type: typ, Sp: token.Join(left.Span(), typ.Span())}
}

func (p *Parser) parseCast(left ast.Expression) ast.Expression {
	panicOnFail := p.curIs(token.CAST_BANG)
	p.nextToken()
	typ := p.parseTypeExpr()
	return &ast.CastExpr{Operand: left, Type: typ, Panic: panicOnFail, Sp: token.Join(left.Span(), typ.Span())}
}

func (p *Parser) parseDot(left ast.Expression) ast.Expression {
	p.nextToken()
	if p.curIs(token.INT) {
		idx, _ := p.curToken.Literal.(int32)
		return &ast.TupleIndex{Recv: left, Index: int(idx), Sp: token.Join(left.Span(), p.curToken.Span)}
	}
	field := p.curToken.Lexeme
	return &ast.FieldAccess{Recv: left, Field: field, Sp: token.Join(left.Span(), p.curToken.Span)}
}

func (p *Parser) parseIndex(left ast.Expression) ast.Expression {
	start := left.Span()
	p.nextToken()
	idx := p.parseExpression(LOWEST)
	if !p.expectPeek(token.RBRACKET) {
		return nil
	}
	panicForm := true
	if p.peekIs(token.BANG) {
		p.nextToken()
		panicForm = true
	} else if p.peekIs(token.QUESTION) {
		p.nextToken()
		panicForm = false
	}
	return &ast.ListIndex{Recv: left, Index: idx, Panic: panicForm, Sp: token.Join(start, p.curToken.Span)}
}

func (p *Parser) parseGrouped() ast.Expression {
	start := p.curToken.Span
	p.nextToken()
	first := p.parseExpression(LOWEST)
	if p.peekIs(token.COMMA) {
		elems := []ast.Expression{first}
		for p.peekIs(token.COMMA) {
			p.nextToken()
			p.nextToken()
			elems = append(elems, p.parseExpression(LOWEST))
		}
		p.expectPeek(token.RPAREN)
		return &ast.TupleLit{Elems: elems, Sp: token.Join(start, p.curToken.Span)}
	}
	p.expectPeek(token.RPAREN)
	return first
}

func (p *Parser) parseCardinality() ast.Expression {
	start := p.curToken.Span
	p.nextToken()
	inner := p.parseExpression(LOWEST)
	p.expectPeek(token.PIPE)
	return &ast.Cardinality{List: inner, Sp: token.Join(start, p.curToken.Span)}
}

func (p *Parser) parseListLitOrRange() ast.Expression {
	start := p.curToken.Span
	if p.peekIs(token.RBRACKET) {
		p.nextToken()
		return &ast.ListLit{Sp: token.Join(start, p.curToken.Span)}
	}
	p.nextToken()
	first := p.parseExpression(LOWEST)

	if p.peekIs(token.DOT_DOT) {
		p.nextToken()
		p.nextToken()
		hi := p.parseExpression(LOWEST)
		p.expectPeek(token.RBRACKET)
		return &ast.ListRange{Lo: first, Hi: hi, Sp: token.Join(start, p.curToken.Span)}
	}

	if p.peekIs(token.FOR) {
		comp := &ast.ListComp{Body: first}
		for p.peekIs(token.FOR) {
			p.nextToken()
			comp.Clauses = append(comp.Clauses, p.parseForClause())
		}
		if p.peekIs(token.WHERE) {
			p.nextToken()
			p.nextToken()
			comp.Where = p.parseExpression(LOWEST)
		}
		p.expectPeek(token.RBRACKET)
		comp.Sp = token.Join(start, p.curToken.Span)
		return comp
	}

	elems := []ast.Expression{first}
	for p.peekIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		elems = append(elems, p.parseExpression(LOWEST))
	}
	p.expectPeek(token.RBRACKET)
	return &ast.ListLit{Elems: elems, Sp: token.Join(start, p.curToken.Span)}
}

// parseForClause parses `v in coll` with curToken on FOR.
func (p *Parser) parseForClause() ast.ForClause {
	start := p.curToken.Span
	p.expectPeek(token.IDENT)
	v := p.curToken.Lexeme
	p.expectPeek(token.IN)
	p.nextToken()
	coll := p.parseExpression(LOWEST)
	return ast.ForClause{Var: v, Coll: coll, Sp: token.Join(start, coll.Span())}
}

func (p *Parser) parseVarCall() ast.Expression {
	start := p.curToken.Span
	isList := false
	if p.peekIs(token.LBRACKET) {
		isList = true
		p.nextToken()
	}
	p.expectPeek(token.IDENT)
	name := p.curToken.Lexeme
	if isList {
		p.expectPeek(token.RBRACKET)
	}
	var args []ast.Expression
	if p.peekIs(token.LPAREN) {
		p.nextToken()
		args = p.parseExprList(token.RPAREN)
	}
	return &ast.VarCall{Name: name, Args: args, IsList: isList, Sp: token.Join(start, p.curToken.Span)}
}

func (p *Parser) parseGlobalCollection() ast.Expression {
	start := p.curToken.Span
	p.expectPeek(token.LBRACKET)
	p.expectPeek(token.IDENT)
	name := p.curToken.Lexeme
	p.expectPeek(token.RBRACKET)
	return &ast.GlobalCollection{TypeName: name, Sp: token.Join(start, p.curToken.Span)}
}

func (p *Parser) parseExprList(end token.Type) []ast.Expression {
	var list []ast.Expression
	if p.peekIs(end) {
		p.nextToken()
		return list
	}
	p.nextToken()
	list = append(list, p.parseExpression(LOWEST))
	for p.peekIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		list = append(list, p.parseExpression(LOWEST))
	}
	p.expectPeek(end)
	return list
}

func (p *Parser) parseCallArgs(left ast.Expression) ast.Expression {
	start := left.Span()
	args := p.parseExprList(token.RPAREN)
	switch fn := left.(type) {
	case *ast.Path:
		if len(fn.Segments) == 2 {
			return &ast.EnumCtorCall{EnumName: fn.Segments[0], Variant: fn.Segments[1], Args: args, Sp: token.Join(start, p.curToken.Span)}
		}
		// A built-in type name here is a constructor-style conversion.
		switch fn.Segments[0] {
		case "Int", "Bool", "String", "LinExpr", "Constraint", "None":
			return &ast.ConstructCall{TypeName: fn.Segments[0], Args: args, Sp: token.Join(start, p.curToken.Span)}
		}
		// Any other single bare name is ambiguous between a plain call and
		// a declared-type constructor call; the checker resolves it against
		// the global environment (functions vs. declared types).
		return &ast.Call{Name: fn.Segments[0], Args: args, Sp: token.Join(start, p.curToken.Span)}
	default:
		p.errors = append(p.errors, diagnostics.New(diagnostics.KindParseError, start, "call target must be a name"))
		return nil
	}
}

func (p *Parser) parseIdentLed() ast.Expression {
	start := p.curToken.Span
	segs := []string{p.curToken.Lexeme}
	for p.peekIs(token.DOUBLE_COLON) {
		p.nextToken()
		p.expectPeek(token.IDENT)
		segs = append(segs, p.curToken.Lexeme)
	}
	path := &ast.Path{Segments: segs, Sp: token.Join(start, p.curToken.Span)}

	// `Name { ... }` is a struct literal only when the brace opens a
	// field-init list (`{}` or `{ field: ...`); otherwise the brace belongs
	// to an enclosing construct such as `match x { ... }` or
	// `sum v in xs { ... }`.
	if p.peekIs(token.LBRACE) {
		look := *p.l
		t1, t2 := look.NextToken(), look.NextToken()
		if t1.Type != token.RBRACE && (t1.Type != token.IDENT || t2.Type != token.COLON) {
			return path
		}
		p.nextToken()
		fields := p.parseFieldInitList()
		if len(segs) == 2 {
			return &ast.EnumCtorStruct{EnumName: segs[0], Variant: segs[1], Fields: fields, Sp: token.Join(start, p.curToken.Span)}
		}
		return &ast.ConstructStruct{TypeName: segs[0], Fields: fields, Sp: token.Join(start, p.curToken.Span)}
	}

	return path
}

func (p *Parser) parseFieldInitList() []ast.FieldInit {
	var fields []ast.FieldInit
	if p.peekIs(token.RBRACE) {
		p.nextToken()
		return fields
	}
	p.nextToken()
	for {
		fstart := p.curToken.Span
		fname := p.curToken.Lexeme
		p.expectPeek(token.COLON)
		p.nextToken()
		val := p.parseExpression(LOWEST)
		fields = append(fields, ast.FieldInit{Name: fname, Value: val, Sp: token.Join(fstart, val.Span())})
		if p.peekIs(token.COMMA) {
			p.nextToken()
			p.nextToken()
			continue
		}
		break
	}
	p.expectPeek(token.RBRACE)
	return fields
}

func (p *Parser) parseIf() ast.Expression {
	start := p.curToken.Span
	p.nextToken()
	cond := p.parseExpression(LOWEST)
	p.expectPeek(token.THEN)
	p.nextToken()
	then := p.parseExpression(LOWEST)
	p.expectPeek(token.ELSE)
	p.nextToken()
	els := p.parseExpression(LOWEST)
	return &ast.IfExpr{Cond: cond, Then: then, Else: els, Sp: token.Join(start, els.Span())}
}

func (p *Parser) parseMatch() ast.Expression {
	start := p.curToken.Span
	p.nextToken()
	scrut := p.parseExpression(LOWEST)
	p.expectPeek(token.LBRACE)
	p.nextToken()

	var arms []ast.MatchArm
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		astart := p.curToken.Span
		bindName := p.curToken.Lexeme
		var asType ast.TypeExpr
		if p.peekIs(token.AS) {
			p.nextToken()
			p.nextToken()
			asType = p.parseTypeExpr()
		}
		var where ast.Expression
		if p.peekIs(token.WHERE) {
			p.nextToken()
			p.nextToken()
			where = p.parseExpression(LOWEST)
		}
		p.expectPeek(token.FAT_ARROW)
		p.nextToken()
		body := p.parseExpression(LOWEST)
		arms = append(arms, ast.MatchArm{BindName: bindName, AsType: asType, Where: where, Body: body, Sp: token.Join(astart, body.Span())})
		if p.peekIs(token.COMMA) {
			p.nextToken()
		}
		p.nextToken()
	}
	return &ast.Match{Scrutinee: scrut, Arms: arms, Sp: token.Join(start, p.curToken.Span)}
}

func (p *Parser) parseLetIn() ast.Expression {
	start := p.curToken.Span
	p.expectPeek(token.IDENT)
	name := p.curToken.Lexeme
	p.expectPeek(token.ASSIGN)
	p.nextToken()
	val := p.parseExpression(LOWEST)
	p.expectPeek(token.IN)
	p.nextToken()
	body := p.parseExpression(LOWEST)
	return &ast.LetIn{Name: name, Value: val, Body: body, Sp: token.Join(start, body.Span())}
}

func (p *Parser) parsePanic() ast.Expression {
	start := p.curToken.Span
	p.nextToken()
	msg := p.parseExpression(LOWEST)
	return &ast.PanicExpr{Msg: msg, Sp: token.Join(start, msg.Span())}
}

func (p *Parser) parseForall() ast.Expression {
	start := p.curToken.Span
	p.expectPeek(token.IDENT)
	v := p.curToken.Lexeme
	p.expectPeek(token.IN)
	p.nextToken()
	coll := p.parseExpression(LOWEST)
	var where ast.Expression
	if p.peekIs(token.WHERE) {
		p.nextToken()
		p.nextToken()
		where = p.parseExpression(LOWEST)
	}
	p.expectPeek(token.LBRACE)
	p.nextToken()
	body := p.parseExpression(LOWEST)
	p.expectPeek(token.RBRACE)
	return &ast.Forall{Var: v, Coll: coll, Where: where, Body: body, Sp: token.Join(start, p.curToken.Span)}
}

func (p *Parser) parseSum() ast.Expression {
	start := p.curToken.Span
	p.expectPeek(token.IDENT)
	v := p.curToken.Lexeme
	p.expectPeek(token.IN)
	p.nextToken()
	coll := p.parseExpression(LOWEST)
	var where ast.Expression
	if p.peekIs(token.WHERE) {
		p.nextToken()
		p.nextToken()
		where = p.parseExpression(LOWEST)
	}
	p.expectPeek(token.LBRACE)
	p.nextToken()
	body := p.parseExpression(LOWEST)
	p.expectPeek(token.RBRACE)
	return &ast.Sum{Var: v, Coll: coll, Where: where, Body: body, Sp: token.Join(start, p.curToken.Span)}
}

func (p *Parser) parseFold() ast.Expression {
	start := p.curToken.Span
	reverse := p.curIs(token.RFOLD)
	p.expectPeek(token.IDENT)
	v := p.curToken.Lexeme
	p.expectPeek(token.IN)
	p.nextToken()
	coll := p.parseExpression(LOWEST)
	var acc string
	// `as` is also the infix cast operator, so `xs as acc` can arrive here
	// as a cast of the collection to a type named acc; split it back.
	if asx, ok := coll.(*ast.AsExpr); ok && p.peekIs(token.ASSIGN) {
		if tn, ok := asx.Type.(*ast.TypeName); ok {
			coll, acc = asx.Operand, tn.Name
		}
	}
	if acc == "" {
		p.expectPeek(token.AS)
		p.expectPeek(token.IDENT)
		acc = p.curToken.Lexeme
	}
	p.expectPeek(token.ASSIGN)
	p.nextToken()
	init := p.parseExpression(LOWEST)
	var where ast.Expression
	if p.peekIs(token.WHERE) {
		p.nextToken()
		p.nextToken()
		where = p.parseExpression(LOWEST)
	}
	p.expectPeek(token.LBRACE)
	p.nextToken()
	body := p.parseExpression(LOWEST)
	p.expectPeek(token.RBRACE)
	return &ast.Fold{Reverse: reverse, Var: v, Coll: coll, AccName: acc, Init: init, Where: where, Body: body, Sp: token.Join(start, p.curToken.Span)}
}

// --- docstring lowering ---

// lowerDocstring splits a raw string token's content into lines and,
// within each line, into alternating text/expression parts delimited by
// matched runs of N backticks (N >= 1). Each backtick-delimited part is
// re-lexed and re-parsed as a standalone expression, then wrapped in an
// explicit `String(...)` conversion (an ast.ConstructCall) (spec.md §4.1).
func (p *Parser) lowerDocstring(tok token.Token) *ast.Docstring {
	content, _ := tok.Literal.(string)
	doc := &ast.Docstring{Sp: tok.Span}
	lineStart := 0
	for i := 0; i <= len(content); i++ {
		if i == len(content) || content[i] == '\n' {
			doc.Lines = append(doc.Lines, p.lowerDocLine(content[lineStart:i]))
			lineStart = i + 1
		}
	}
	return doc
}

func (p *Parser) lowerDocLine(line string) ast.DocLine {
	var parts []ast.DocPart
	i := 0
	for i < len(line) {
		if line[i] == '`' {
			n := 0
			for i+n < len(line) && line[i+n] == '`' {
				n++
			}
			open := i + n
			close := -1
			for j := open; j+n <= len(line); j++ {
				if line[j:j+n] == backtickRun(n) {
					close = j
					break
				}
			}
			if close == -1 {
				// Unterminated backtick run: treat the rest as literal text.
				parts = append(parts, ast.DocPart{Text: line[i:]})
				break
			}
			inner := line[open:close]
			innerExpr := parseEmbeddedExpr(inner)
			wrapped := &ast.ConstructCall{TypeName: "String", Args: []ast.Expression{innerExpr}}
			parts = append(parts, ast.DocPart{Expr: wrapped})
			i = close + n
			continue
		}
		j := i
		for j < len(line) && line[j] != '`' {
			j++
		}
		parts = append(parts, ast.DocPart{Text: line[i:j]})
		i = j
	}
	return ast.DocLine{Parts: parts}
}

func backtickRun(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = '`'
	}
	return string(b)
}

func parseEmbeddedExpr(src string) ast.Expression {
	sub := New(lexer.New(src))
	return sub.parseExpression(LOWEST)
}
