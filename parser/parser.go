// Package parser implements the recursive-descent parser.
//
// The parser reads a token stream from a [lexer.Lexer] and builds an
// [ast.Program]. Unlike a Pratt parser built on a table of registered
// prefix/infix functions, each grammar production below gets its own
// method, named after the production it implements (equality, term,
// factor, unary, ...) so the precedence chain reads top to bottom in
// the source.
//
// Usage:
//
//	l := lexer.New(source)
//	p := parser.New(l, source)
//	prog, diags := p.Parse()
//	if len(diags) != 0 { ... }
//
// Error recovery: none. The grammar requires break/continue/return misuse
// and duplicate parameters to be caught while parsing, and the first
// failure anywhere stops the parser outright — there is no panic-mode
// resync to a statement boundary. A caller always gets either a complete
// program or a single diagnostic explaining why it doesn't have one.
package parser

import (
	"fmt"
	"strconv"

	"github.com/metaphox/loxwalk/ast"
	"github.com/metaphox/loxwalk/lexer"
)

// Diagnostic is a single parse-time problem, reported at the token where
// it was detected.
type Diagnostic struct {
	Token   ast.Token
	Message string
}

// Parser holds all state needed to parse one source file. Create one
// with [New] and call [Parser.Parse] exactly once.
type Parser struct {
	l   *lexer.Lexer
	src string

	cur  ast.Token // current token
	peek ast.Token // one-token lookahead

	diags  []Diagnostic
	failed bool

	inLoop     bool // true while parsing the body of a while/for
	inFunction bool // true while parsing a function body
}

// New creates a Parser over l. src must be the exact string l was built
// from — the parser slices it to recover lexemes.
func New(l *lexer.Lexer, src string) *Parser {
	p := &Parser{l: l, src: src}
	p.cur = l.Advance()
	p.peek = l.Advance()
	return p
}

// Parse builds the program. On the first error it stops and returns
// whatever declarations parsed successfully so far alongside the single
// diagnostic explaining the failure; callers should treat a non-empty
// diagnostic list as "do not evaluate this program".
func (p *Parser) Parse() (*ast.Program, []Diagnostic) {
	prog := &ast.Program{}
	for p.cur.Kind != ast.EOF && !p.failed {
		stmt := p.declaration()
		if p.failed {
			break
		}
		prog.Stmts = append(prog.Stmts, stmt)
	}
	return prog, p.diags
}

// ── Token management ──────────────────────────────────────────────────────────

func (p *Parser) advance() {
	p.cur = p.peek
	p.peek = p.l.Advance()
}

// consume advances past cur if it has the given kind, else records msg as
// a diagnostic at cur and returns false.
func (p *Parser) consume(kind ast.Kind, msg string) bool {
	if p.cur.Kind == kind {
		p.advance()
		return true
	}
	p.errorf(p.cur, msg)
	return false
}

// errorf records the first diagnostic only; once failed is set every
// later production bails out without piling on more errors.
func (p *Parser) errorf(tok ast.Token, format string, args ...any) {
	if p.failed {
		return
	}
	p.failed = true
	p.diags = append(p.diags, Diagnostic{Token: tok, Message: fmt.Sprintf(format, args...)})
}

// ── Declarations ──────────────────────────────────────────────────────────────

func (p *Parser) declaration() ast.Stmt {
	switch p.cur.Kind {
	case ast.Var:
		return p.varDecl()
	case ast.Fun:
		return p.funDecl()
	default:
		return p.statement()
	}
}

// varDecl := "var" IDENT ("=" expression)? ";"
func (p *Parser) varDecl() ast.Stmt {
	tok := p.cur // 'var'
	p.advance()

	if p.cur.Kind != ast.TokIdentifier {
		p.errorf(p.cur, "expected variable name")
		return nil
	}
	name := p.cur
	p.advance()

	var init ast.Expr
	if p.cur.Kind == ast.Equal {
		p.advance()
		init = p.expression()
		if p.failed {
			return nil
		}
	}
	if !p.consume(ast.Semicolon, "expected ';' after variable declaration") {
		return nil
	}
	return &ast.VarDecl{Token: tok, NameTok: name, Name: name.Lexeme(p.src), Init: init}
}

// funDecl := "fun" IDENT "(" params? ")" block
func (p *Parser) funDecl() ast.Stmt {
	tok := p.cur // 'fun'
	p.advance()

	if p.cur.Kind != ast.TokIdentifier {
		p.errorf(p.cur, "expected function name")
		return nil
	}
	name := p.cur
	p.advance()

	if !p.consume(ast.LeftParen, "expected '(' after function name") {
		return nil
	}
	params := p.paramList()
	if p.failed {
		return nil
	}

	// block() consumes the '{' itself; only check that it is there.
	if p.cur.Kind != ast.LeftBrace {
		p.errorf(p.cur, "expected '{' before function body")
		return nil
	}
	wasFunction, wasLoop := p.inFunction, p.inLoop
	p.inFunction, p.inLoop = true, false
	body := p.block()
	p.inFunction, p.inLoop = wasFunction, wasLoop
	if p.failed {
		return nil
	}

	paramNames := make([]string, len(params))
	for i, param := range params {
		paramNames[i] = param.Lexeme(p.src)
	}

	return &ast.FunDecl{
		Token: tok, NameTok: name, Name: name.Lexeme(p.src),
		Params: params, ParamNames: paramNames, Body: body,
	}
}

// params := IDENT ("," IDENT)* ; max 255, names unique. cur is the token
// after '(' on entry, cur is the token after ')' on return.
func (p *Parser) paramList() []ast.Token {
	if p.cur.Kind == ast.RightParen {
		p.advance()
		return nil
	}

	var params []ast.Token
	for {
		if p.cur.Kind != ast.TokIdentifier {
			p.errorf(p.cur, "expected parameter name")
			return nil
		}
		if len(params) >= 255 {
			p.errorf(p.cur, "cannot have more than 255 parameters")
			return nil
		}
		name := p.cur.Lexeme(p.src)
		for _, prev := range params {
			if prev.Lexeme(p.src) == name {
				p.errorf(p.cur, "Duplicated parameter name %q", name)
				return nil
			}
		}
		params = append(params, p.cur)
		p.advance()

		if p.cur.Kind != ast.Comma {
			break
		}
		p.advance()
	}
	if !p.consume(ast.RightParen, "expected ')' after parameters") {
		return nil
	}
	return params
}

// ── Statements ────────────────────────────────────────────────────────────────

func (p *Parser) statement() ast.Stmt {
	switch p.cur.Kind {
	case ast.TokPrint:
		return p.printStmt()
	case ast.LeftBrace:
		return p.block()
	case ast.TokIf:
		return p.ifStmt()
	case ast.While:
		return p.whileStmt()
	case ast.TokFor:
		return p.forStmt()
	case ast.TokBreak:
		return p.breakStmt()
	case ast.TokContinue:
		return p.continueStmt()
	case ast.TokReturn:
		return p.returnStmt()
	default:
		return p.exprStmt()
	}
}

func (p *Parser) printStmt() ast.Stmt {
	tok := p.cur // 'print'
	p.advance()
	expr := p.expression()
	if p.failed {
		return nil
	}
	if !p.consume(ast.Semicolon, "expected ';' after value") {
		return nil
	}
	return &ast.Print{Token: tok, Expr: expr}
}

// block := "{" declaration* "}"
func (p *Parser) block() *ast.Block {
	tok := p.cur // '{'
	p.advance()

	var stmts []ast.Stmt
	for p.cur.Kind != ast.RightBrace && p.cur.Kind != ast.EOF && !p.failed {
		stmts = append(stmts, p.declaration())
	}
	if p.failed {
		return nil
	}
	if !p.consume(ast.RightBrace, "expected '}' after block") {
		return nil
	}
	return &ast.Block{Token: tok, Stmts: stmts}
}

// ifStmt := "if" "(" expression ")" statement ("else" statement)?
// else binds to the nearest unmatched if for free: the else check below
// runs right after parsing the then-branch of whichever if is innermost.
func (p *Parser) ifStmt() ast.Stmt {
	tok := p.cur // 'if'
	p.advance()

	if !p.consume(ast.LeftParen, "expected '(' after 'if'") {
		return nil
	}
	cond := p.expression()
	if p.failed {
		return nil
	}
	if !p.consume(ast.RightParen, "expected ')' after if condition") {
		return nil
	}

	thenBranch := p.statement()
	if p.failed {
		return nil
	}

	var elseBranch ast.Stmt
	if p.cur.Kind == ast.Else {
		p.advance()
		elseBranch = p.statement()
		if p.failed {
			return nil
		}
	}
	return &ast.If{Token: tok, Cond: cond, Then: thenBranch, Else: elseBranch}
}

// whileStmt := "while" "(" expression ")" statement
// Desugars directly into a For with no Init/Incr.
func (p *Parser) whileStmt() ast.Stmt {
	tok := p.cur // 'while'
	p.advance()

	if !p.consume(ast.LeftParen, "expected '(' after 'while'") {
		return nil
	}
	cond := p.expression()
	if p.failed {
		return nil
	}
	if !p.consume(ast.RightParen, "expected ')' after condition") {
		return nil
	}

	wasLoop := p.inLoop
	p.inLoop = true
	body := p.statement()
	p.inLoop = wasLoop
	if p.failed {
		return nil
	}

	return &ast.For{Token: tok, Cond: cond, Body: body}
}

// forStmt := "for" "(" (varDecl | exprStmt | ";")
//
//	expression? ";" expression? ")" statement
//
// The initializer, if any, is scoped to the loop by wrapping the
// desugared For in its own Block — the loop body does not get a fresh
// frame per iteration, so the initializer must live somewhere that gets
// popped when the loop as a whole is done.
func (p *Parser) forStmt() ast.Stmt {
	tok := p.cur // 'for'
	p.advance()

	if !p.consume(ast.LeftParen, "expected '(' after 'for'") {
		return nil
	}

	var init ast.Stmt
	switch p.cur.Kind {
	case ast.Semicolon:
		p.advance()
	case ast.Var:
		init = p.varDecl()
		if p.failed {
			return nil
		}
	default:
		init = p.exprStmt()
		if p.failed {
			return nil
		}
	}

	var cond ast.Expr
	if p.cur.Kind != ast.Semicolon {
		cond = p.expression()
		if p.failed {
			return nil
		}
	}
	if !p.consume(ast.Semicolon, "expected ';' after loop condition") {
		return nil
	}

	var incr ast.Expr
	if p.cur.Kind != ast.RightParen {
		incr = p.expression()
		if p.failed {
			return nil
		}
	}
	if !p.consume(ast.RightParen, "expected ')' after for clauses") {
		return nil
	}

	wasLoop := p.inLoop
	p.inLoop = true
	body := p.statement()
	p.inLoop = wasLoop
	if p.failed {
		return nil
	}

	loop := &ast.For{Token: tok, Init: init, Cond: cond, Incr: incr, Body: body}
	return &ast.Block{Token: tok, Stmts: []ast.Stmt{loop}}
}

func (p *Parser) breakStmt() ast.Stmt {
	tok := p.cur // 'break'
	p.advance()
	if !p.inLoop {
		p.errorf(tok, "break must be inside a loop")
		return nil
	}
	if !p.consume(ast.Semicolon, "expected ';' after 'break'") {
		return nil
	}
	return &ast.Break{Token: tok}
}

func (p *Parser) continueStmt() ast.Stmt {
	tok := p.cur // 'continue'
	p.advance()
	if !p.inLoop {
		p.errorf(tok, "continue must be inside a loop")
		return nil
	}
	if !p.consume(ast.Semicolon, "expected ';' after 'continue'") {
		return nil
	}
	return &ast.Continue{Token: tok}
}

func (p *Parser) returnStmt() ast.Stmt {
	tok := p.cur // 'return'
	p.advance()
	if !p.inFunction {
		p.errorf(tok, "return must be inside a function")
		return nil
	}

	var value ast.Expr
	if p.cur.Kind != ast.Semicolon {
		value = p.expression()
		if p.failed {
			return nil
		}
	}
	if !p.consume(ast.Semicolon, "expected ';' after return value") {
		return nil
	}
	return &ast.Return{Token: tok, Value: value}
}

func (p *Parser) exprStmt() ast.Stmt {
	tok := p.cur
	expr := p.expression()
	if p.failed {
		return nil
	}
	if !p.consume(ast.Semicolon, "expected ';' after expression") {
		return nil
	}
	return &ast.ExprStmt{Token: tok, Expr: expr}
}

// ── Expressions ───────────────────────────────────────────────────────────────
//
// expression := assignment
// assignment := logicOr ("=" assignment)?
// logicOr    := logicAnd ("or" logicOr)?       ; right-associative
// logicAnd   := equality ("and" logicAnd)?      ; right-associative
// equality   := comparison (("!="|"==") comparison)*  ; left-assoc
// comparison := term      ((">"|">="|"<"|"<=") term)*  ; left-assoc
// term       := factor    (("-"|"+") factor)*          ; left-assoc
// factor     := unary     (("/"|"*") unary)*           ; left-assoc
// unary      := ("!"|"-") unary | call
// call       := primary ("(" args? ")")?
// args       := expression ("," expression)*   ; max 255
// primary    := NUMBER | STRING | "true" | "false" | "nil"
//             | "(" expression ")" | IDENT

func (p *Parser) expression() ast.Expr {
	return p.assignment()
}

// assignment is right-associative via direct recursion on the RHS, so
// `a = b = c` parses as `a = (b = c)`.
func (p *Parser) assignment() ast.Expr {
	expr := p.logicOr()
	if p.failed {
		return nil
	}

	if p.cur.Kind == ast.Equal {
		tok := p.cur
		target, ok := expr.(*ast.Identifier)
		if !ok {
			p.errorf(tok, "Cannot assign value. Left side must be a variable")
			return nil
		}
		p.advance()
		value := p.assignment()
		if p.failed {
			return nil
		}
		return &ast.Assignment{Token: tok, Target: target, Value: value}
	}
	return expr
}

func (p *Parser) logicOr() ast.Expr {
	expr := p.logicAnd()
	if p.failed {
		return nil
	}
	if p.cur.Kind == ast.Or {
		tok := p.cur
		p.advance()
		right := p.logicOr()
		if p.failed {
			return nil
		}
		return &ast.LogicOr{Token: tok, Left: expr, Right: right}
	}
	return expr
}

func (p *Parser) logicAnd() ast.Expr {
	expr := p.equality()
	if p.failed {
		return nil
	}
	if p.cur.Kind == ast.And {
		tok := p.cur
		p.advance()
		right := p.logicAnd()
		if p.failed {
			return nil
		}
		return &ast.LogicAnd{Token: tok, Left: expr, Right: right}
	}
	return expr
}

func (p *Parser) equality() ast.Expr {
	expr := p.comparison()
	if p.failed {
		return nil
	}
	for p.cur.Kind == ast.BangEqual || p.cur.Kind == ast.EqualEqual {
		tok := p.cur
		p.advance()
		right := p.comparison()
		if p.failed {
			return nil
		}
		expr = &ast.Binary{Left: expr, Token: tok, Op: tok.Kind, Right: right}
	}
	return expr
}

func (p *Parser) comparison() ast.Expr {
	expr := p.term()
	if p.failed {
		return nil
	}
	for isComparisonOp(p.cur.Kind) {
		tok := p.cur
		p.advance()
		right := p.term()
		if p.failed {
			return nil
		}
		expr = &ast.Binary{Left: expr, Token: tok, Op: tok.Kind, Right: right}
	}
	return expr
}

func isComparisonOp(k ast.Kind) bool {
	switch k {
	case ast.Greater, ast.GreaterEqual, ast.Less, ast.LessEqual:
		return true
	}
	return false
}

func (p *Parser) term() ast.Expr {
	expr := p.factor()
	if p.failed {
		return nil
	}
	for p.cur.Kind == ast.Minus || p.cur.Kind == ast.Plus {
		tok := p.cur
		p.advance()
		right := p.factor()
		if p.failed {
			return nil
		}
		expr = &ast.Binary{Left: expr, Token: tok, Op: tok.Kind, Right: right}
	}
	return expr
}

func (p *Parser) factor() ast.Expr {
	expr := p.unary()
	if p.failed {
		return nil
	}
	for p.cur.Kind == ast.Slash || p.cur.Kind == ast.Star {
		tok := p.cur
		p.advance()
		right := p.unary()
		if p.failed {
			return nil
		}
		expr = &ast.Binary{Left: expr, Token: tok, Op: tok.Kind, Right: right}
	}
	return expr
}

func (p *Parser) unary() ast.Expr {
	if p.cur.Kind == ast.Bang || p.cur.Kind == ast.Minus {
		tok := p.cur
		p.advance()
		right := p.unary()
		if p.failed {
			return nil
		}
		return &ast.Unary{Token: tok, Op: tok.Kind, Right: right}
	}
	return p.call()
}

// call := primary ("(" args? ")")?
// Only a single trailing call is grammatical — chained calls like
// `f()()` are not part of this grammar.
func (p *Parser) call() ast.Expr {
	expr := p.primary()
	if p.failed {
		return nil
	}
	if p.cur.Kind == ast.LeftParen {
		tok := p.cur
		p.advance()
		args := p.args()
		if p.failed {
			return nil
		}
		if !p.consume(ast.RightParen, "expected ')' after arguments") {
			return nil
		}
		return &ast.Call{Token: tok, Callee: expr, Args: args}
	}
	return expr
}

func (p *Parser) args() []ast.Expr {
	if p.cur.Kind == ast.RightParen {
		return nil
	}
	var args []ast.Expr
	for {
		if len(args) >= 255 {
			p.errorf(p.cur, "cannot have more than 255 arguments")
			return nil
		}
		arg := p.expression()
		if p.failed {
			return nil
		}
		args = append(args, arg)
		if p.cur.Kind != ast.Comma {
			break
		}
		p.advance()
	}
	return args
}

func (p *Parser) primary() ast.Expr {
	tok := p.cur
	switch tok.Kind {
	case ast.Number:
		p.advance()
		v, err := strconv.ParseFloat(tok.Lexeme(p.src), 64)
		if err != nil {
			p.errorf(tok, "invalid number literal %q", tok.Lexeme(p.src))
			return nil
		}
		return &ast.Literal{Token: tok, Value: v}
	case ast.String:
		p.advance()
		lex := tok.Lexeme(p.src)
		return &ast.Literal{Token: tok, Value: lex[1 : len(lex)-1]} // strip quotes
	case ast.True:
		p.advance()
		return &ast.Literal{Token: tok, Value: true}
	case ast.False:
		p.advance()
		return &ast.Literal{Token: tok, Value: false}
	case ast.Nil:
		p.advance()
		return &ast.Literal{Token: tok, Value: nil}
	case ast.TokIdentifier:
		p.advance()
		return &ast.Identifier{Token: tok, Name: tok.Lexeme(p.src)}
	case ast.LeftParen:
		p.advance()
		inner := p.expression()
		if p.failed {
			return nil
		}
		if !p.consume(ast.RightParen, "expected ')' after expression") {
			return nil
		}
		return &ast.Grouping{Token: tok, Inner: inner}
	case ast.Error:
		p.advance()
		switch tok.ErrKind {
		case ast.InvalidSingleLineString:
			p.errorf(tok, "unterminated string")
		case ast.NumberMissingDecimal:
			p.errorf(tok, "number missing digits after '.'")
		default:
			p.errorf(tok, "invalid character")
		}
		return nil
	default:
		p.errorf(tok, "expected expression, got %v", tok.Kind)
		return nil
	}
}
