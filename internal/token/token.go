// Package token defines the lexical tokens of ColloML source text.
package token

// Span is a half-open byte interval [Start, End) over the source text.
// It is attached to every token, and, by construction, to every AST and
// diagnostic node derived from that token.
type Span struct {
	Start int
	End   int
}

// Join returns the smallest span covering both a and b.
func Join(a, b Span) Span {
	s := a
	if b.Start < s.Start {
		s.Start = b.Start
	}
	if b.End > s.End {
		s.End = b.End
	}
	return s
}

type Type int

const (
	ILLEGAL Type = iota
	EOF

	// Literals
	IDENT
	INT
	STRING // raw/quoted string literal, already unescaped
	BOOL

	// Keywords
	LET
	PUB
	REIFY
	TYPE
	ENUM
	MATCH
	AS
	CAST_OPT // cast?
	CAST_BANG
	IF
	THEN
	ELSE
	FOR
	IN
	WHERE
	FORALL
	SUM
	FOLD
	RFOLD
	PANIC
	NONE
	AND
	OR
	NOT

	// Punctuation & operators
	LPAREN
	RPAREN
	LBRACE
	RBRACE
	LBRACKET
	RBRACKET
	COMMA
	COLON
	SEMI
	DOT
	DOT_DOT   // ..
	ARROW     // ->
	FAT_ARROW // =>
	ASSIGN    // =
	PIPE      // |
	AMP       // &
	QUESTION  // ?
	BANG      // !
	DOLLAR    // $
	AT        // @

	PLUS
	MINUS
	STAR
	SLASH
	PERCENT

	EQ         // ==
	NEQ        // !=
	LT
	LTE
	GT
	GTE

	CONSTR_EQ // ===
	CONSTR_LE // <==
	CONSTR_GE // >==

	NULL_COALESCE // ??
	DOUBLE_COLON  // ::
)

var keywords = map[string]Type{
	"let":    LET,
	"pub":    PUB,
	"reify":  REIFY,
	"type":   TYPE,
	"enum":   ENUM,
	"match":  MATCH,
	"as":     AS,
	"if":     IF,
	"then":   THEN,
	"else":   ELSE,
	"for":    FOR,
	"in":     IN,
	"where":  WHERE,
	"forall": FORALL,
	"sum":    SUM,
	"fold":   FOLD,
	"rfold":  RFOLD,
	"panic":  PANIC,
	"none":   NONE,
	"and":    AND,
	"or":     OR,
	"not":    NOT,
	"true":   BOOL,
	"false":  BOOL,
}

// LookupIdent classifies an identifier lexeme as a keyword token or IDENT.
func LookupIdent(ident string) Type {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// Token is a single lexical token with its source span.
type Token struct {
	Type    Type
	Lexeme  string
	Literal interface{} // parsed literal value for INT/STRING/BOOL, nil otherwise
	Span    Span
}

func (t Type) String() string {
	if s, ok := names[t]; ok {
		return s
	}
	return "UNKNOWN"
}

var names = map[Type]string{
	ILLEGAL: "ILLEGAL", EOF: "EOF", IDENT: "IDENT", INT: "INT", STRING: "STRING", BOOL: "BOOL",
	LET: "let", PUB: "pub", REIFY: "reify", TYPE: "type", ENUM: "enum", MATCH: "match",
	AS: "as", CAST_OPT: "cast?", CAST_BANG: "cast!", IF: "if", THEN: "then", ELSE: "else",
	FOR: "for", IN: "in", WHERE: "where", FORALL: "forall", SUM: "sum", FOLD: "fold",
	RFOLD: "rfold", PANIC: "panic", NONE: "none", AND: "and", OR: "or", NOT: "not",
	LPAREN: "(", RPAREN: ")", LBRACE: "{", RBRACE: "}", LBRACKET: "[", RBRACKET: "]",
	COMMA: ",", COLON: ":", SEMI: ";", DOT: ".", DOT_DOT: "..", ARROW: "->", FAT_ARROW: "=>",
	ASSIGN: "=", PIPE: "|", AMP: "&", QUESTION: "?", BANG: "!", DOLLAR: "$", AT: "@",
	PLUS: "+", MINUS: "-", STAR: "*", SLASH: "/", PERCENT: "%",
	EQ: "==", NEQ: "!=", LT: "<", LTE: "<=", GT: ">", GTE: ">=",
	CONSTR_EQ: "===", CONSTR_LE: "<==", CONSTR_GE: ">==",
	NULL_COALESCE: "??", DOUBLE_COLON: "::",
}
