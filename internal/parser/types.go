package parser

import (
	"kymera/internal/ast"
	"kymera/internal/diag"
	"kymera/internal/token"
)

// parseType: builtin | Ident | [T] | optn T
func (p *Parser) parseType() ast.TypeID {
	tok := p.peek()
	switch {
	case tok.Kind == token.KwOptn:
		p.advance()
		elem := p.parseType()
		return p.arenas.Types.NewOptional(tok.Span.Cover(p.lastSpan), elem)
	case tok.IsBuiltinType():
		p.advance()
		return p.arenas.Types.NewBuiltin(tok.Span, tok.Kind)
	case tok.Kind == token.Ident:
		p.advance()
		return p.arenas.Types.NewNamed(tok.Span, p.intern(tok))
	case tok.Kind == token.LBracket:
		open := p.advance()
		elem := p.parseType()
		if !p.recovering() {
			p.expectClose(token.RBracket, open)
		}
		return p.arenas.Types.NewArray(open.Span.Cover(p.lastSpan), elem)
	default:
		p.err(diag.SynExpectType, "expected type, got "+describe(tok))
		return ast.NoTypeID
	}
}
