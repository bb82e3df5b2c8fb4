// Package token defines lexical token kinds and trivia for Kymera sources.
// Invariants:
//   - Token.Text is the exact source text covered by Token.Span.
//   - Spans of consecutive tokens are ascending and never overlap.
//   - Comments and whitespace never appear in the token stream; they ride on
//     the next token as leading Trivia. Doc comments (///) are TriviaDocLine.
//   - Lexical problems are tokens of kind Invalid with a Problem tag. The
//     lexer itself never reports; the parser turns them into diagnostics.
//   - Builtin type names (i32, f64, strng, ...) are keywords, so the resolver
//     never looks them up.
package token
