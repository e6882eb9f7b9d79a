package main

import (
	"fmt"
	"strings"

	"github.com/metaphox/loxwalk/interp"
	"github.com/metaphox/loxwalk/parser"
)

// sourceLines splits src on the same line-terminator rule the lexer uses
// when it counts lines — a lone '\r', a lone '\n', and a "\r\n" pair each
// end exactly one line — so a diagnostic's Line always indexes the line the
// lexer actually meant.
func sourceLines(src string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(src); i++ {
		switch src[i] {
		case '\n':
			lines = append(lines, src[start:i])
			start = i + 1
		case '\r':
			lines = append(lines, src[start:i])
			if i+1 < len(src) && src[i+1] == '\n' {
				i++
			}
			start = i + 1
		}
	}
	lines = append(lines, src[start:])
	return lines
}

// FormatParseError renders one diagnostic as a three-line block: the
// location and message, the offending source line, and a caret spanning
// the width of the token that triggered it.
func FormatParseError(file, src string, d parser.Diagnostic) string {
	lines := sourceLines(src)
	line := ""
	if idx := d.Token.Line - 1; idx >= 0 && idx < len(lines) {
		line = lines[idx]
	}

	width := d.Token.Len
	if width <= 0 {
		width = 1
	}
	indent := d.Token.Col - 1
	if indent < 0 {
		indent = 0
	}
	caret := strings.Repeat(" ", indent) + "^" + strings.Repeat("~", width-1)

	return fmt.Sprintf("%s:%d:%d: parse error: %s\n%s\n%s",
		file, d.Token.Line, d.Token.Col, d.Message, line, caret)
}

// FormatRuntimeError renders a failing evaluator Result as a single line.
func FormatRuntimeError(file string, r interp.Result) string {
	return fmt.Sprintf("%s:%d runtime error: %s", file, r.ErrToken.Line, r.ErrMessage)
}
