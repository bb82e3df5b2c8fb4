package token_test

import (
	"testing"

	"kymera/internal/source"
	"kymera/internal/token"
)

func tok(k token.Kind) token.Token {
	return token.Token{Kind: k, Span: source.Span{Start: 0, End: 0}}
}

func TestIsLiteral(t *testing.T) {
	lits := []token.Kind{token.NilLit, token.IntLit, token.FloatLit, token.BoolLit, token.StringLit}
	for _, k := range lits {
		if !tok(k).IsLiteral() {
			t.Fatalf("%v should be literal", k)
		}
	}
	non := []token.Kind{token.Ident, token.KwDjq, token.Plus, token.LParen}
	for _, k := range non {
		if tok(k).IsLiteral() {
			t.Fatalf("%v must NOT be literal", k)
		}
	}
}

func TestIsPunctOrOp(t *testing.T) {
	ops := []token.Kind{
		token.Plus, token.Minus, token.Star, token.Slash, token.Percent,
		token.Assign, token.PlusAssign, token.MinusAssign, token.StarAssign,
		token.SlashAssign, token.PercentAssign,
		token.EqEq, token.Bang, token.BangEq,
		token.Lt, token.LtEq, token.Gt, token.GtEq,
		token.AndAnd, token.OrOr, token.Colon, token.ColonColon,
		token.Semicolon, token.Comma, token.Dot, token.Arrow, token.FatArrow,
		token.LParen, token.RParen, token.LBrace, token.RBrace, token.LBracket, token.RBracket,
		token.Underscore,
	}
	for _, k := range ops {
		if !tok(k).IsPunctOrOp() {
			t.Fatalf("%v should be punct/op", k)
		}
	}
	non := []token.Kind{token.Ident, token.KwAte, token.IntLit, token.EOF}
	for _, k := range non {
		if tok(k).IsPunctOrOp() {
			t.Fatalf("%v must NOT be punct/op", k)
		}
	}
}

func TestIsKeywordAndBuiltinType(t *testing.T) {
	if !tok(token.KwFnc).IsKeyword() || tok(token.KwFnc).IsBuiltinType() {
		t.Fatal("fnc is a keyword but not a type")
	}
	if !tok(token.KwI32).IsKeyword() || !tok(token.KwI32).IsBuiltinType() {
		t.Fatal("i32 is a builtin type keyword")
	}
	if tok(token.Ident).IsKeyword() {
		t.Fatal("identifier is not a keyword")
	}
}

func TestKindString(t *testing.T) {
	cases := map[token.Kind]string{
		token.KwFnc:     "fnc",
		token.Semicolon: ";",
		token.Ident:     "identifier",
		token.EOF:       "end of file",
		token.KwStrng:   "strng",
	}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Fatalf("Kind(%d).String() = %q, want %q", k, got, want)
		}
	}
}

func TestDocComment(t *testing.T) {
	tk := token.Token{
		Kind: token.KwFnc,
		Leading: []token.Trivia{
			{Kind: token.TriviaLineComment, Text: "// unrelated"},
			{Kind: token.TriviaNewline, Text: "\n"},
			{Kind: token.TriviaDocLine, Text: "/// Adds two numbers."},
			{Kind: token.TriviaNewline, Text: "\n"},
			{Kind: token.TriviaDocLine, Text: "/// Pure."},
		},
	}
	if got := tk.DocComment(); got != "Adds two numbers.\nPure." {
		t.Fatalf("DocComment = %q", got)
	}
}
