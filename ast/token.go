// Package ast defines the token and node types shared by the lexer, the
// parser, and the evaluator.
//
// A Token carries its kind, its byte offsets into the source, and its
// 1-based line/column, but not the lexeme text itself — call [Token.Lexeme]
// with the original source string to recover it. This keeps a Token a
// small, copyable value, matching the scanner's job: turn bytes into a
// stream of positioned tokens, nothing more.
package ast

// Kind identifies the category of a scanned token.
type Kind int

const (
	// ── Punctuation ──────────────────────────────────────────────────────────
	LeftParen Kind = iota
	RightParen
	LeftBrace
	RightBrace
	Comma
	Dot
	Semicolon
	Plus
	Minus
	Star
	Slash

	// ── Comparison / assignment ─────────────────────────────────────────────
	Bang
	BangEqual
	Equal
	EqualEqual
	Greater
	GreaterEqual
	Less
	LessEqual

	// ── Literals ─────────────────────────────────────────────────────────────

	// TokIdentifier is a name: a run of letters/digits starting with a letter.
	TokIdentifier
	// String is a double-quoted literal; it must close on the same source line.
	String
	// Number is an integer or decimal literal: digits, optionally "." digits.
	Number

	// ── Keywords ─────────────────────────────────────────────────────────────
	And
	Class
	Else
	False
	Fun
	TokFor
	TokIf
	Nil
	Or
	TokPrint
	TokReturn
	Super
	This
	True
	Var
	While
	TokBreak
	TokContinue

	// ── Sentinels ────────────────────────────────────────────────────────────

	// EOF is returned repeatedly once the source is exhausted.
	EOF
	// Error marks a lexical failure; ErrKind says which one.
	Error
)

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "UNKNOWN"
}

var kindNames = map[Kind]string{
	LeftParen: "(", RightParen: ")", LeftBrace: "{", RightBrace: "}",
	Comma: ",", Dot: ".", Semicolon: ";",
	Plus: "+", Minus: "-", Star: "*", Slash: "/",
	Bang: "!", BangEqual: "!=", Equal: "=", EqualEqual: "==",
	Greater: ">", GreaterEqual: ">=", Less: "<", LessEqual: "<=",
	TokIdentifier: "IDENTIFIER", String: "STRING", Number: "NUMBER",
	And: "and", Class: "class", Else: "else", False: "false", Fun: "fun",
	TokFor: "for", TokIf: "if", Nil: "nil", Or: "or", TokPrint: "print",
	TokReturn: "return", Super: "super", This: "this", True: "true",
	Var: "var", While: "while", TokBreak: "break", TokContinue: "continue",
	EOF: "EOF", Error: "ERROR",
}

// Keywords maps every reserved word's spelling to its Kind. Class, super,
// and this are reserved here but have no grammar production that uses them.
var Keywords = map[string]Kind{
	"and": And, "class": Class, "else": Else, "false": False, "fun": Fun,
	"for": TokFor, "if": TokIf, "nil": Nil, "or": Or, "print": TokPrint,
	"return": TokReturn, "super": Super, "this": This, "true": True, "var": Var,
	"while": While, "break": TokBreak, "continue": TokContinue,
}

// ErrKind distinguishes the lexical failures the scanner can report. It is
// only meaningful when Kind == Error.
type ErrKind int

const (
	NoError ErrKind = iota
	// InvalidToken is an unrecognised byte.
	InvalidToken
	// InvalidSingleLineString is a string literal not closed with a '"'
	// before a CR, LF, or end of input.
	InvalidSingleLineString
	// NumberMissingDecimal is a numeric literal with a trailing '.' and no
	// digit after it.
	NumberMissingDecimal
)

// Token is a single lexical unit produced by the scanner.
//
// Start and Len are byte offsets into the source that produced this token;
// Line and Col are the 1-based position of its first byte.
type Token struct {
	Kind    Kind
	ErrKind ErrKind
	Start   int
	Len     int
	Line    int
	Col     int
}

// Lexeme slices the original source to recover the exact text this token
// was scanned from.
func (t Token) Lexeme(src string) string {
	return src[t.Start : t.Start+t.Len]
}
