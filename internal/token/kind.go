package token

// Kind represents the category of a source token.
type Kind uint8

const (
	// Invalid indicates an erroneous token; see Token.Problem.
	Invalid Kind = iota
	// EOF marks the end of the source input.
	EOF

	// Ident represents an identifier token.
	Ident

	// KwPydes represents the 'pydes' import keyword.
	KwPydes // pydes
	// KwRudes represents the 'rudes' import keyword.
	KwRudes // rudes
	// KwDes represents the 'des' struct keyword.
	KwDes // des
	// KwForma represents the 'forma' struct keyword.
	KwForma // forma
	// KwEnum represents the 'enum' keyword.
	KwEnum // enum
	// KwImp represents the 'imp' keyword.
	KwImp // imp
	// KwIfz represents the 'ifz' interface keyword.
	KwIfz // ifz
	// KwFnc represents the 'fnc' keyword.
	KwFnc // fnc
	// KwRet represents the 'ret' keyword.
	KwRet // ret
	// KwWyo represents the 'wyo' (while) keyword.
	KwWyo // wyo
	// KwAte represents the 'ate' (if) keyword.
	KwAte // ate
	// KwRev represents the 'rev' (else) keyword.
	KwRev // rev
	// KwSpa represents the 'spa' (for) keyword.
	KwSpa // spa
	// KwMth represents the 'mth' (match) keyword.
	KwMth // mth
	// KwAs represents the 'as' keyword.
	KwAs // as
	// KwDjq represents the 'djq' immutable declaration keyword.
	KwDjq // djq
	// KwIdit represents the 'idit' mutable declaration keyword.
	KwIdit // idit
	// KwMuta represents the 'muta' modifier.
	KwMuta // muta
	// KwNmut represents the 'nmut' modifier.
	KwNmut // nmut
	// KwSoy represents the 'soy' receiver keyword.
	KwSoy // soy
	// KwPrnt represents the 'prnt' builtin.
	KwPrnt // prnt

	// builtin type keywords
	KwI8
	KwI16
	KwI32
	KwI64
	KwI128
	KwIsz
	KwU8
	KwU16
	KwU32
	KwU64
	KwU128
	KwUsz
	KwF32
	KwF64
	KwStrng
	KwStilo
	KwOptn

	NilLit
	IntLit
	FloatLit
	BoolLit
	StringLit

	Plus          // +
	Minus         // -
	Star          // *
	Slash         // /
	Percent       // %
	Assign        // =
	PlusAssign    // +=
	MinusAssign   // -=
	StarAssign    // *=
	SlashAssign   // /=
	PercentAssign // %=
	EqEq          // ==
	Bang          // !
	BangEq        // !=
	Lt            // <
	LtEq          // <=
	Gt            // >
	GtEq          // >=
	AndAnd        // &&
	OrOr          // ||
	Colon         // :
	ColonColon    // ::
	Semicolon     // ;
	Comma         // ,
	Dot           // .
	Arrow         // ->
	FatArrow      // =>
	LParen        // (
	RParen        // )
	LBrace        // {
	RBrace        // }
	LBracket      // [
	RBracket      // ]
	Underscore    // _

	kindCount
)

var kindNames = [...]string{
	Invalid: "invalid", EOF: "end of file", Ident: "identifier",
	NilLit: "nil", IntLit: "integer literal", FloatLit: "float literal",
	BoolLit: "bool literal", StringLit: "string literal",
	Plus: "+", Minus: "-", Star: "*", Slash: "/", Percent: "%",
	Assign: "=", PlusAssign: "+=", MinusAssign: "-=", StarAssign: "*=",
	SlashAssign: "/=", PercentAssign: "%=", EqEq: "==", Bang: "!",
	BangEq: "!=", Lt: "<", LtEq: "<=", Gt: ">", GtEq: ">=",
	AndAnd: "&&", OrOr: "||", Colon: ":", ColonColon: "::",
	Semicolon: ";", Comma: ",", Dot: ".", Arrow: "->", FatArrow: "=>",
	LParen: "(", RParen: ")", LBrace: "{", RBrace: "}",
	LBracket: "[", RBracket: "]", Underscore: "_",
	kindCount: "",
}

// String returns the source spelling for keywords and punctuation and a
// descriptive name for the other kinds.
func (k Kind) String() string {
	if kw, ok := keywordSpelling[k]; ok {
		return kw
	}
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "unknown"
}
