package lexer

import (
	"kymera/internal/token"
)

// scanString scans "..." with escapes \n \r \t \0 \\ \". Any other escape
// makes the whole literal Invalid. A newline or EOF before the closing
// quote ends the literal as unterminated.
func (lx *Lexer) scanString() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump() // opening '"'
	problem := token.NoProblem
	for !lx.cursor.EOF() {
		switch b := lx.cursor.Peek(); b {
		case '"':
			lx.cursor.Bump()
			sp := lx.cursor.SpanFrom(start)
			if problem != token.NoProblem {
				return lx.invalid(sp, problem)
			}
			return token.Token{Kind: token.StringLit, Span: sp, Text: lx.text(sp)}
		case '\\':
			lx.cursor.Bump()
			switch lx.cursor.Peek() {
			case 'n', 'r', 't', '0', '\\', '"':
				lx.cursor.Bump()
			case '\n', 0:
				// leave it to the unterminated check
			default:
				problem = token.ProblemBadEscape
				lx.bumpRune()
			}
		case '\n':
			return lx.invalid(lx.cursor.SpanFrom(start), token.ProblemUnterminatedString)
		default:
			lx.cursor.Bump()
		}
	}
	return lx.invalid(lx.cursor.SpanFrom(start), token.ProblemUnterminatedString)
}
