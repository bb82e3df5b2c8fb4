package parser

import (
	"kymera/internal/ast"
	"kymera/internal/diag"
	"kymera/internal/source"
	"kymera/internal/token"
)

// parseExpr parses a full expression. It always returns a node; a missing
// operand becomes ast.ExprBad and the parser switches to recovery.
func (p *Parser) parseExpr() ast.ExprID {
	return p.parseBinaryExpr(precAssignment)
}

// parseBinaryExpr is the Pratt loop over binaryPrec.
func (p *Parser) parseBinaryExpr(minPrec int) ast.ExprID {
	left := p.parseCastExpr()
	for !p.recovering() {
		tok := p.peek()
		prec, rightAssoc := binaryPrec(tok.Kind)
		if prec < minPrec {
			break
		}
		op := p.advance()
		next := prec + 1
		if rightAssoc {
			next = prec
		}
		right := p.parseBinaryExpr(next)
		sp := p.exprSpan(left).Cover(p.exprSpan(right))
		if prec == precAssignment {
			if !p.isAssignable(left) {
				p.report(diag.SynBadAssignTarget, diag.SevError, p.exprSpan(left), "invalid assignment target")
			}
			left = p.arenas.Exprs.NewAssign(sp, op.Kind, left, right)
			continue
		}
		left = p.arenas.Exprs.NewBinary(sp, op.Kind, left, right)
	}
	return left
}

func (p *Parser) isAssignable(id ast.ExprID) bool {
	switch p.arenas.Exprs.Get(id).Kind {
	case ast.ExprIdent, ast.ExprMember, ast.ExprIndex, ast.ExprBad:
		return true
	default:
		return false
	}
}

func (p *Parser) exprSpan(id ast.ExprID) source.Span {
	if e := p.arenas.Exprs.Get(id); e != nil {
		return e.Span
	}
	return p.afterLast()
}

// parseCastExpr: unary (as T)*
func (p *Parser) parseCastExpr() ast.ExprID {
	expr := p.parseUnaryExpr()
	for !p.recovering() && p.at(token.KwAs) {
		p.advance()
		typ := p.parseType()
		sp := p.exprSpan(expr).Cover(p.lastSpan)
		expr = p.arenas.Exprs.NewCast(sp, expr, typ)
	}
	return expr
}

func (p *Parser) parseUnaryExpr() ast.ExprID {
	if isUnaryOp(p.peek().Kind) {
		op := p.advance()
		operand := p.parseUnaryExpr()
		return p.arenas.Exprs.NewUnary(op.Span.Cover(p.exprSpan(operand)), op.Kind, operand)
	}
	return p.parsePostfixExpr()
}

// parsePostfixExpr: primary ( (args) | .name | [index] )*
func (p *Parser) parsePostfixExpr() ast.ExprID {
	expr := p.parsePrimary()
	for !p.recovering() {
		switch p.peek().Kind {
		case token.LParen:
			open := p.advance()
			args := p.parseArgs(open)
			expr = p.arenas.Exprs.NewCall(p.exprSpan(expr).Cover(p.lastSpan), expr, args)
		case token.Dot:
			p.advance()
			if !p.at(token.Ident) {
				p.err(diag.SynExpectIdentifier, "expected member name after '.', got "+describe(p.peek()))
				return expr
			}
			name := p.advance()
			expr = p.arenas.Exprs.NewMember(p.exprSpan(expr).Cover(name.Span), expr, p.intern(name), name.Span)
		case token.LBracket:
			open := p.advance()
			index := p.parseExpr()
			if !p.recovering() {
				p.expectClose(token.RBracket, open)
			}
			expr = p.arenas.Exprs.NewIndex(p.exprSpan(expr).Cover(p.lastSpan), expr, index)
		default:
			return expr
		}
	}
	return expr
}

// parseArgs parses a comma separated list after open up to ')'.
func (p *Parser) parseArgs(open token.Token) []ast.ExprID {
	var args []ast.ExprID
	for !p.at(token.RParen) && !p.at(token.EOF) {
		args = append(args, p.parseExpr())
		if p.recovering() {
			p.resyncList(token.RParen)
			if !p.at(token.Comma) && !p.at(token.RParen) {
				// resync stopped on a statement boundary; let the caller recover
				p.mode = modeRecovering
				return args
			}
		}
		if !p.at(token.Comma) {
			break
		}
		p.advance()
	}
	p.expectClose(token.RParen, open)
	return args
}

func (p *Parser) parsePrimary() ast.ExprID {
	tok := p.peek()
	switch tok.Kind {
	case token.Ident:
		if p.peekAt(1).Kind == token.ColonColon {
			return p.parsePath()
		}
		p.advance()
		return p.arenas.Exprs.NewIdent(tok.Span, p.intern(tok))
	case token.IntLit:
		p.advance()
		return p.arenas.Exprs.NewLiteral(tok.Span, ast.LitInt, tok.Text)
	case token.FloatLit:
		p.advance()
		return p.arenas.Exprs.NewLiteral(tok.Span, ast.LitFloat, tok.Text)
	case token.StringLit:
		p.advance()
		return p.arenas.Exprs.NewLiteral(tok.Span, ast.LitString, tok.Text)
	case token.BoolLit:
		p.advance()
		return p.arenas.Exprs.NewLiteral(tok.Span, ast.LitBool, tok.Text)
	case token.NilLit:
		p.advance()
		return p.arenas.Exprs.NewLiteral(tok.Span, ast.LitNil, tok.Text)
	case token.KwSoy:
		p.advance()
		return p.arenas.Exprs.NewSelf(tok.Span)
	case token.LParen:
		open := p.advance()
		inner := p.parseExpr()
		if !p.recovering() {
			p.expectClose(token.RParen, open)
		}
		return p.arenas.Exprs.NewGroup(open.Span.Cover(p.lastSpan), inner)
	case token.LBracket:
		open := p.advance()
		var elems []ast.ExprID
		for !p.at(token.RBracket) && !p.at(token.EOF) && !p.recovering() {
			elems = append(elems, p.parseExpr())
			if !p.at(token.Comma) {
				break
			}
			p.advance()
		}
		if !p.recovering() {
			p.expectClose(token.RBracket, open)
		}
		return p.arenas.Exprs.NewArray(open.Span.Cover(p.lastSpan), elems)
	default:
		p.err(diag.SynExpectExpression, "expected expression, got "+describe(tok))
		return p.arenas.Exprs.NewBad(source.Span{Start: tok.Span.Start, End: tok.Span.Start})
	}
}

// parsePath: Ident (:: Ident)+
func (p *Parser) parsePath() ast.ExprID {
	first := p.advance()
	segs := []source.StringID{p.intern(first)}
	spans := []source.Span{first.Span}
	for p.at(token.ColonColon) {
		p.advance()
		if !p.at(token.Ident) {
			p.err(diag.SynExpectIdentifier, "expected identifier after '::', got "+describe(p.peek()))
			break
		}
		seg := p.advance()
		segs = append(segs, p.intern(seg))
		spans = append(spans, seg.Span)
	}
	return p.arenas.Exprs.NewPath(first.Span.Cover(p.lastSpan), segs, spans)
}
