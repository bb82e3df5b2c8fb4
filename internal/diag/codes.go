package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// lexical
	LexInfo                     Code = 1000
	LexUnknownChar              Code = 1001
	LexUnterminatedString       Code = 1002
	LexUnterminatedBlockComment Code = 1003
	LexBadNumber                Code = 1004
	LexBadEscape                Code = 1005

	// syntax
	SynInfo               Code = 2000
	SynUnexpectedToken    Code = 2001
	SynUnclosedParen      Code = 2006
	SynUnclosedBrace      Code = 2007
	SynUnclosedBracket    Code = 2008
	SynExpectSemicolon    Code = 2012
	SynUnexpectedTopLevel Code = 2101
	SynExpectIdentifier   Code = 2102
	SynExpectModuleSeg    Code = 2103
	SynExpectIdentAfterAs Code = 2105
	SynExpectType         Code = 2202
	SynExpectExpression   Code = 2203
	SynExpectColon        Code = 2204
	SynExpectBlock        Code = 2205
	SynBadAssignTarget    Code = 2206

	// semantic
	SemaInfo             Code = 3000
	SemaError            Code = 3001
	SemaDuplicateSymbol  Code = 3002
	SemaUnresolvedSymbol Code = 3005
	SemaUnresolvedType   Code = 3006
	SemaSelfOutsideImpl  Code = 3007
	SemaUnknownMember    Code = 3008
	SemaAssignImmutable  Code = 3009
	SemaNotAType         Code = 3010
	SemaArityMismatch    Code = 3011
	SemaTypeMismatch     Code = 3012
)

var codeDescription = map[Code]string{
	UnknownCode:                 "Unknown error",
	LexInfo:                     "Lexical information",
	LexUnknownChar:              "Unknown character",
	LexUnterminatedString:       "Unterminated string literal",
	LexUnterminatedBlockComment: "Unterminated block comment",
	LexBadNumber:                "Malformed number literal",
	LexBadEscape:                "Invalid escape sequence",
	SynInfo:                     "Syntax information",
	SynUnexpectedToken:          "Unexpected token",
	SynUnclosedParen:            "Unclosed parenthesis",
	SynUnclosedBrace:            "Unclosed brace",
	SynUnclosedBracket:          "Unclosed bracket",
	SynExpectSemicolon:          "Expect semicolon",
	SynUnexpectedTopLevel:       "Unexpected top-level construct",
	SynExpectIdentifier:         "Expect identifier",
	SynExpectModuleSeg:          "Expect module segment",
	SynExpectIdentAfterAs:       "Expect identifier after as",
	SynExpectType:               "Expect type",
	SynExpectExpression:         "Expect expression",
	SynExpectColon:              "Expect colon",
	SynExpectBlock:              "Expect block",
	SynBadAssignTarget:          "Invalid assignment target",
	SemaInfo:                    "Semantic information",
	SemaError:                   "Semantic error",
	SemaDuplicateSymbol:         "Duplicate symbol",
	SemaUnresolvedSymbol:        "Unresolved symbol",
	SemaUnresolvedType:          "Unresolved type",
	SemaSelfOutsideImpl:         "Receiver used outside impl",
	SemaUnknownMember:           "Unknown member",
	SemaAssignImmutable:         "Assignment to immutable binding",
	SemaNotAType:                "Symbol is not a type",
	SemaArityMismatch:           "Wrong number of arguments",
	SemaTypeMismatch:            "Mismatched types",
}

// ID returns the stable textual id, e.g. SYN2001.
func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("SEM%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}

// Category groups codes the way editors present them.
type Category uint8

const (
	CategoryOther Category = iota
	CategorySyntax
	CategorySemantic
)

func (c Code) Category() Category {
	switch ic := int(c); {
	case ic >= 1000 && ic < 3000:
		return CategorySyntax
	case ic >= 3000 && ic < 4000:
		return CategorySemantic
	}
	return CategoryOther
}

func (c Category) String() string {
	switch c {
	case CategorySyntax:
		return "syntax"
	case CategorySemantic:
		return "semantic"
	}
	return "other"
}
