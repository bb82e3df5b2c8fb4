package token

import (
	"strings"

	"kymera/internal/source"
)

// Problem tags an Invalid token with the lexical error it stands for.
type Problem uint8

const (
	NoProblem Problem = iota
	ProblemUnknownChar
	ProblemUnterminatedString
	ProblemUnterminatedComment
	ProblemBadEscape
	ProblemBadNumber
)

func (p Problem) String() string {
	switch p {
	case NoProblem:
		return "none"
	case ProblemUnknownChar:
		return "unknown character"
	case ProblemUnterminatedString:
		return "unterminated string"
	case ProblemUnterminatedComment:
		return "unterminated comment"
	case ProblemBadEscape:
		return "bad escape"
	case ProblemBadNumber:
		return "bad number"
	}
	return "unknown"
}

// Token represents a single source token with its location and trivia.
type Token struct {
	Kind    Kind
	Span    source.Span
	Text    string
	Leading []Trivia
	Problem Problem
}

// IsLiteral reports whether the token is a numeric, boolean, string, or nil literal.
func (t Token) IsLiteral() bool {
	switch t.Kind {
	case NilLit, IntLit, FloatLit, BoolLit, StringLit:
		return true
	default:
		return false
	}
}

// IsPunctOrOp reports whether the token is a punctuation or operator.
func (t Token) IsPunctOrOp() bool {
	return t.Kind >= Plus && t.Kind <= Underscore
}

// IsKeyword reports whether the token is a language keyword.
func (t Token) IsKeyword() bool {
	return t.Kind >= KwPydes && t.Kind <= KwOptn
}

// IsBuiltinType reports whether the token names a builtin type.
func (t Token) IsBuiltinType() bool {
	return t.Kind >= KwI8 && t.Kind <= KwOptn
}

// IsIdent reports whether the token is an identifier.
func (t Token) IsIdent() bool { return t.Kind == Ident }

// DocComment joins the /// lines in the leading trivia, or returns "".
func (t Token) DocComment() string {
	var lines []string
	for _, tr := range t.Leading {
		switch tr.Kind {
		case TriviaDocLine:
			lines = append(lines, strings.TrimSpace(strings.TrimPrefix(tr.Text, "///")))
		case TriviaLineComment, TriviaBlockComment:
			// a plain comment between docs and the item breaks the doc block
			lines = lines[:0]
		}
	}
	return strings.Join(lines, "\n")
}
