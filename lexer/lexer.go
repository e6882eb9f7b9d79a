// Package lexer implements the hand-written scanner.
//
// The lexer converts a source string into a stream of [ast.Token] values.
// It carries no stored lookahead: [Lexer.Advance] consumes and returns the
// next token, and [Lexer.Peek] is implemented by saving the cursor,
// calling Advance, and restoring it — so the only state a Lexer ever
// holds is its current byte position plus line/column bookkeeping.
//
// Design notes:
//   - Single-pass, byte-by-byte scanning (source is treated as bytes, not
//     runes — all recognised tokens are ASCII).
//   - No global state; every Lexer is independent.
//   - Line and column numbers are tracked for every token (1-based).
//   - Comments (// …) are consumed silently — no token is emitted for them.
//   - Unknown bytes produce an Error token rather than panicking; the
//     parser decides how to surface it.
package lexer

import "github.com/metaphox/loxwalk/ast"

// Lexer holds all state required to tokenise a single source string.
// Create one with [New]; never copy a Lexer after first use.
type Lexer struct {
	src string

	pos  int // byte index of the next unread byte
	line int // current 1-based line number
	col  int // 1-based column of the next unread byte
}

// New creates a Lexer positioned at the start of src.
func New(src string) *Lexer {
	return &Lexer{src: src, pos: 0, line: 1, col: 1}
}

// Peek returns the next token without consuming it. It costs exactly one
// Advance call plus a cursor save/restore — the lexer keeps no separate
// lookahead token.
func (l *Lexer) Peek() ast.Token {
	savedPos, savedLine, savedCol := l.pos, l.line, l.col
	tok := l.Advance()
	l.pos, l.line, l.col = savedPos, savedLine, savedCol
	return tok
}

// Advance scans and consumes the next token. Once the source is exhausted
// it returns an EOF token on every subsequent call.
func (l *Lexer) Advance() ast.Token {
	l.skipWhitespaceAndComments()

	if l.atEnd() {
		return l.makeToken(ast.EOF, ast.NoError, l.pos, 0, l.line, l.col)
	}

	startLine, startCol := l.line, l.col
	start := l.pos
	ch := l.src[l.pos]

	switch {
	case isLetter(ch):
		return l.scanIdentifier(start, startLine, startCol)
	case isDigit(ch):
		return l.scanNumber(start, startLine, startCol)
	case ch == '"':
		return l.scanString(start, startLine, startCol)
	}

	l.step()
	switch ch {
	case '(':
		return l.tokenAt(ast.LeftParen, start, startLine, startCol)
	case ')':
		return l.tokenAt(ast.RightParen, start, startLine, startCol)
	case '{':
		return l.tokenAt(ast.LeftBrace, start, startLine, startCol)
	case '}':
		return l.tokenAt(ast.RightBrace, start, startLine, startCol)
	case ',':
		return l.tokenAt(ast.Comma, start, startLine, startCol)
	case '.':
		return l.tokenAt(ast.Dot, start, startLine, startCol)
	case ';':
		return l.tokenAt(ast.Semicolon, start, startLine, startCol)
	case '+':
		return l.tokenAt(ast.Plus, start, startLine, startCol)
	case '-':
		return l.tokenAt(ast.Minus, start, startLine, startCol)
	case '*':
		return l.tokenAt(ast.Star, start, startLine, startCol)
	case '/':
		return l.tokenAt(ast.Slash, start, startLine, startCol)
	case '!':
		if l.match('=') {
			return l.tokenAt(ast.BangEqual, start, startLine, startCol)
		}
		return l.tokenAt(ast.Bang, start, startLine, startCol)
	case '=':
		if l.match('=') {
			return l.tokenAt(ast.EqualEqual, start, startLine, startCol)
		}
		return l.tokenAt(ast.Equal, start, startLine, startCol)
	case '<':
		if l.match('=') {
			return l.tokenAt(ast.LessEqual, start, startLine, startCol)
		}
		return l.tokenAt(ast.Less, start, startLine, startCol)
	case '>':
		if l.match('=') {
			return l.tokenAt(ast.GreaterEqual, start, startLine, startCol)
		}
		return l.tokenAt(ast.Greater, start, startLine, startCol)
	default:
		return l.makeToken(ast.Error, ast.InvalidToken, start, 0, startLine, startCol)
	}
}

// ── Internal helpers ──────────────────────────────────────────────────────────

func (l *Lexer) atEnd() bool { return l.pos >= len(l.src) }

func (l *Lexer) current() byte {
	if l.atEnd() {
		return 0
	}
	return l.src[l.pos]
}

func (l *Lexer) peekByte(offset int) byte {
	i := l.pos + offset
	if i >= len(l.src) {
		return 0
	}
	return l.src[i]
}

// step consumes one byte, maintaining line/col. A lone '\r', a lone '\n',
// and a '\r\n' pair each count as a single line terminator.
func (l *Lexer) step() {
	if l.atEnd() {
		return
	}
	ch := l.src[l.pos]
	l.pos++
	switch ch {
	case '\n':
		l.line++
		l.col = 1
	case '\r':
		if !l.atEnd() && l.src[l.pos] == '\n' {
			l.col = 1 // the '\n' that follows finishes the bump
		} else {
			l.line++
			l.col = 1
		}
	default:
		l.col++
	}
}

// match consumes the current byte if it equals want, returning whether it did.
func (l *Lexer) match(want byte) bool {
	if l.current() != want {
		return false
	}
	l.step()
	return true
}

func (l *Lexer) makeToken(kind ast.Kind, errKind ast.ErrKind, start, length int, line, col int) ast.Token {
	return ast.Token{Kind: kind, ErrKind: errKind, Start: start, Len: length, Line: line, Col: col}
}

// tokenAt builds a normal (non-error) token spanning from start to the
// current cursor position.
func (l *Lexer) tokenAt(kind ast.Kind, start, line, col int) ast.Token {
	return l.makeToken(kind, ast.NoError, start, l.pos-start, line, col)
}

// skipWhitespaceAndComments advances past whitespace and // line comments.
// Whitespace: space, tab, CR, LF, and 0x0B (vertical tab).
func (l *Lexer) skipWhitespaceAndComments() {
	for {
		switch l.current() {
		case ' ', '\t', '\r', '\n', 0x0B:
			l.step()
		case '/':
			if l.peekByte(1) != '/' {
				return
			}
			for l.current() != '\n' && l.current() != '\r' && !l.atEnd() {
				l.step()
			}
		default:
			return
		}
	}
}

// scanIdentifier scans an identifier or keyword. Identifiers are ASCII
// letters followed by letters or digits — no underscore, per the grammar.
func (l *Lexer) scanIdentifier(start, line, col int) ast.Token {
	for isLetter(l.current()) || isDigit(l.current()) {
		l.step()
	}
	literal := l.src[start:l.pos]
	if kind, ok := ast.Keywords[literal]; ok {
		return l.tokenAt(kind, start, line, col)
	}
	return l.tokenAt(ast.TokIdentifier, start, line, col)
}

// scanNumber scans digits, optionally followed by '.' and more digits. A
// trailing '.' with no digit after it is a lexical error.
func (l *Lexer) scanNumber(start, line, col int) ast.Token {
	for isDigit(l.current()) {
		l.step()
	}
	if l.current() == '.' {
		if isDigit(l.peekByte(1)) {
			l.step() // consume '.'
			for isDigit(l.current()) {
				l.step()
			}
			return l.tokenAt(ast.Number, start, line, col)
		}
		l.step() // consume the bad trailing '.'
		return l.makeToken(ast.Error, ast.NumberMissingDecimal, start, l.pos-start, line, col)
	}
	return l.tokenAt(ast.Number, start, line, col)
}

// scanString scans a double-quoted literal. It must close with a '"' on
// the same source line; the returned lexeme (via Token.Lexeme) includes
// the surrounding quotes — callers strip them. No escape sequences are
// recognised.
func (l *Lexer) scanString(start, line, col int) ast.Token {
	l.step() // opening quote
	for {
		switch l.current() {
		case '"':
			l.step() // closing quote
			return l.tokenAt(ast.String, start, line, col)
		case '\r', '\n':
			return l.makeToken(ast.Error, ast.InvalidSingleLineString, start, l.pos-start, line, col)
		case 0:
			if l.atEnd() {
				return l.makeToken(ast.Error, ast.InvalidSingleLineString, start, l.pos-start, line, col)
			}
			l.step()
		default:
			l.step()
		}
	}
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
