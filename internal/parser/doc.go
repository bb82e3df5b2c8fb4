// Package parser turns a token stream into an ast.Builder.
//
// The parser is recursive descent with a Pratt loop for binary operators
// (op_table.go). It never stops at the first error. Instead it runs a small
// state machine:
//
//   - Normal: tokens are matched against the grammar.
//   - Recovering: entered on the first unexpected token of a construct.
//     Exactly one diagnostic is emitted; further syntax reports are dropped
//     while tokens are skipped up to a synchronization point.
//
// Synchronization points are ';' (consumed), '}' (left for the enclosing
// block) and declaration keywords. At top level the parser skips to the
// next declaration keyword. Reaching EOF never ends recovery, so a broken
// construct followed by an unclosed '{' still yields one report.
//
// Returning to Normal resumes parsing but not reporting: errors met before
// the next declaration that starts at brace depth 0 are consequences of the
// same fault (a stray '{' closes bodies early and strands their statements
// at top level), so they are parsed through silently.
//
// Invalid tokens from the lexer are stepped over transparently and reported
// once each with their lexical code, independent of the recovery state.
package parser
