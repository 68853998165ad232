package lexer

import (
	"testing"

	"github.com/collomatique/colloml/internal/token"
)

func collect(src string) []token.Token {
	l := New(src)
	var toks []token.Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			break
		}
	}
	return toks
}

func TestNextTokenPunctuationAndOperators(t *testing.T) {
	src := `(){}[],;@?? ?!== +-*/% . .. : :: === <== >== -> => <= >= < >`
	toks := collect(src)
	want := []token.Type{
		token.LPAREN, token.RPAREN, token.LBRACE, token.RBRACE,
		token.LBRACKET, token.RBRACKET, token.COMMA, token.SEMI, token.AT,
		token.NULL_COALESCE, token.QUESTION, token.NEQ, token.ASSIGN,
		token.PLUS, token.MINUS, token.STAR, token.SLASH, token.PERCENT,
		token.DOT, token.DOT_DOT, token.COLON, token.DOUBLE_COLON,
		token.CONSTR_EQ, token.CONSTR_LE, token.CONSTR_GE,
		token.ARROW, token.FAT_ARROW, token.LTE, token.GTE, token.LT, token.GT,
		token.EOF,
	}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %+v", len(toks), len(want), toks)
	}
	for i, w := range want {
		if toks[i].Type != w {
			t.Errorf("token %d: got %v, want %v (lexeme %q)", i, toks[i].Type, w, toks[i].Lexeme)
		}
	}
}

func TestNextTokenIdentifiersAndKeywords(t *testing.T) {
	toks := collect(`let pub foo_bar Student true false none`)
	want := []token.Type{token.LET, token.PUB, token.IDENT, token.IDENT, token.BOOL, token.BOOL, token.NONE, token.EOF}
	for i, w := range want {
		if toks[i].Type != w {
			t.Errorf("token %d: got %v, want %v", i, toks[i].Type, w)
		}
	}
	if toks[4].Literal != true {
		t.Errorf("true literal = %v, want true", toks[4].Literal)
	}
	if toks[5].Literal != false {
		t.Errorf("false literal = %v, want false", toks[5].Literal)
	}
}

func TestNextTokenIntegers(t *testing.T) {
	toks := collect(`0 42 2147483647 2147483648`)
	if toks[0].Literal != int32(0) || toks[1].Literal != int32(42) {
		t.Errorf("unexpected int literals: %+v", toks[:2])
	}
	if toks[2].Type != token.INT || toks[2].Literal != int32(2147483647) {
		t.Errorf("max int32 should parse: %+v", toks[2])
	}
	if toks[3].Type != token.ILLEGAL {
		t.Errorf("overflowing int literal should be ILLEGAL, got %v", toks[3].Type)
	}
}

func TestNextTokenRawStrings(t *testing.T) {
	toks := collect(`"hello" ~"it's a "quote""~ ""`)
	if toks[0].Type != token.STRING || toks[0].Literal != "hello" {
		t.Errorf("plain string = %+v", toks[0])
	}
	if toks[1].Type != token.STRING || toks[1].Literal != `it's a "quote"` {
		t.Errorf("tilde-delimited string = %+v", toks[1])
	}
	if toks[2].Type != token.STRING || toks[2].Literal != "" {
		t.Errorf("empty string = %+v", toks[2])
	}
}

func TestSkipLineComments(t *testing.T) {
	toks := collect("1 // this is a comment\n2")
	if toks[0].Literal != int32(1) || toks[1].Literal != int32(2) {
		t.Errorf("comment not skipped: %+v", toks[:2])
	}
}

func TestSpansAreByteAccurate(t *testing.T) {
	toks := collect(`  foo`)
	if toks[0].Span.Start != 2 || toks[0].Span.End != 5 {
		t.Errorf("span = %+v, want {2 5}", toks[0].Span)
	}
}
