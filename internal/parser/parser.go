package parser

import (
	"slices"

	"kymera/internal/ast"
	"kymera/internal/diag"
	"kymera/internal/lexer"
	"kymera/internal/source"
	"kymera/internal/token"
)

type Options struct {
	// MaxErrors stops reporting after that many errors; 0 is unlimited.
	MaxErrors     uint
	CurrentErrors uint
	Reporter      diag.Reporter
}

// Enough reports whether the error limit has been reached.
func (o *Options) Enough() bool {
	if o.MaxErrors == 0 {
		return false
	}
	return o.CurrentErrors >= o.MaxErrors
}

// Result is one parse of one document revision.
type Result struct {
	File   *source.File
	Tokens []token.Token
	AST    *ast.Builder
	Diags  []diag.Diagnostic
}

type mode uint8

const (
	modeNormal mode = iota
	// modeRecovering suppresses syntax reports until the parser reaches a
	// synchronization token. Lexical reports are never suppressed.
	modeRecovering
)

// Parser is the per-document parse state.
type Parser struct {
	file     *source.File
	toks     []token.Token
	pos      int
	arenas   *ast.Builder
	opts     Options
	mode     mode
	lastSpan source.Span // span of the last consumed token
	lastKind token.Kind
	diags    []diag.Diagnostic
	// eofReported is set once an unclosed delimiter has been reported at EOF.
	eofReported bool
	// fault holds syntax reports back after an error until a declaration
	// starts at brace depth 0; depth[i] is the brace nesting before toks[i].
	fault bool
	depth []int32
}

// Parse lexes and parses one document. It never fails: malformed input
// produces a partial tree plus diagnostics.
func Parse(file *source.File, opts Options) Result {
	toks := lexer.Tokenize(file)
	return ParseTokens(file, toks, opts)
}

// ParseTokens parses an already lexed document. toks must end with EOF.
func ParseTokens(file *source.File, toks []token.Token, opts Options) Result {
	p := Parser{
		file:   file,
		toks:   toks,
		arenas: ast.NewBuilder(ast.HintsFor(len(toks))),
		opts:   opts,
		depth:  braceDepths(toks),
	}
	p.skipInvalid()
	p.parseItems()
	return Result{
		File:   file,
		Tokens: toks,
		AST:    p.arenas,
		Diags:  p.diags,
	}
}

func (p *Parser) peek() token.Token {
	return p.toks[p.pos]
}

// peekAt looks n significant tokens ahead; peekAt(0) == peek().
func (p *Parser) peekAt(n int) token.Token {
	i := p.pos
	for {
		if p.toks[i].Kind == token.EOF {
			return p.toks[i]
		}
		if p.toks[i].Kind != token.Invalid {
			if n == 0 {
				return p.toks[i]
			}
			n--
		}
		i++
	}
}

func (p *Parser) at(k token.Kind) bool {
	return p.peek().Kind == k
}

func (p *Parser) atOr(kinds ...token.Kind) bool {
	return slices.Contains(kinds, p.peek().Kind)
}

func (p *Parser) recovering() bool {
	return p.mode == modeRecovering
}

func (p *Parser) intern(tok token.Token) source.StringID {
	return source.InternName(tok.Text)
}

// parseItems is the top-level loop.
func (p *Parser) parseItems() {
	start := p.peek().Span
	for !p.at(token.EOF) {
		if p.fault && p.atCleanItem() {
			p.fault = false
		}
		before := p.pos
		if id, ok := p.parseItem(); ok {
			p.arenas.PushItem(id)
		}
		if p.recovering() || p.pos == before {
			p.resyncTop()
		}
	}
	p.arenas.SetSpan(start.Cover(p.peek().Span))
}

func (p *Parser) parseItem() (ast.ItemID, bool) {
	switch p.peek().Kind {
	case token.KwPydes, token.KwRudes:
		return p.parseImportItem()
	case token.KwFnc:
		return p.parseFnItem(false)
	case token.KwDes, token.KwForma:
		return p.parseStructItem()
	case token.KwEnum:
		return p.parseEnumItem()
	case token.KwImp:
		return p.parseImplItem()
	case token.KwIfz:
		return p.parseInterfaceItem()
	case token.KwDjq, token.KwIdit:
		return p.parseLetItem()
	default:
		p.report(diag.SynUnexpectedTopLevel, diag.SevError, p.peek().Span,
			"unexpected "+describe(p.peek())+" at top level")
		return ast.NoItemID, false
	}
}

// atCleanItem reports whether a declaration starts here outside of any
// brace. A fault that left a '{' open never reaches one.
func (p *Parser) atCleanItem() bool {
	return isItemStarter(p.peek().Kind) && p.depth[p.pos] == 0
}

func braceDepths(toks []token.Token) []int32 {
	out := make([]int32, len(toks))
	var d int32
	for i := range toks {
		out[i] = d
		switch toks[i].Kind {
		case token.LBrace:
			d++
		case token.RBrace:
			d--
		}
	}
	return out
}

// isItemStarter reports whether k begins a top-level declaration.
func isItemStarter(k token.Kind) bool {
	switch k {
	case token.KwPydes, token.KwRudes, token.KwFnc, token.KwDes, token.KwForma,
		token.KwEnum, token.KwImp, token.KwIfz, token.KwDjq, token.KwIdit:
		return true
	default:
		return false
	}
}

// isNestedItemStarter reports whether k starts a declaration that cannot
// appear inside a block, meaning an enclosing block was never closed.
func isNestedItemStarter(k token.Kind) bool {
	return isItemStarter(k) && k != token.KwDjq && k != token.KwIdit
}

func describe(tok token.Token) string {
	switch {
	case tok.Kind == token.EOF:
		return "end of file"
	case tok.Kind == token.Ident:
		return "identifier '" + tok.Text + "'"
	case tok.IsLiteral():
		return tok.Kind.String()
	default:
		return "'" + tok.Kind.String() + "'"
	}
}
