package parser

import (
	"kymera/internal/ast"
	"kymera/internal/diag"
	"kymera/internal/token"
)

// parseBlock parses { stmt* }. The block is returned even when it is never
// closed, so that everything before the error stays analyzable.
func (p *Parser) parseBlock() ast.StmtID {
	open := p.advance() // '{'
	var stmts []ast.StmtID
	end := open.Span
	for {
		k := p.peek().Kind
		if k == token.RBrace {
			p.advance()
			break
		}
		if k == token.EOF {
			p.reportUnclosed(open)
			// an unclosed block extends to the end of the document
			end = p.peek().Span
			break
		}
		if isNestedItemStarter(k) {
			// a declaration keyword inside a body: this block was never closed
			p.report(diag.SynUnclosedBrace, diag.SevError, open.Span, "unclosed '{' before "+describe(p.peek()))
			break
		}
		before := p.pos
		if id := p.parseStmt(); id.IsValid() {
			stmts = append(stmts, id)
		}
		if p.recovering() {
			p.resyncStmt()
		} else if p.pos == before {
			p.advance()
		}
	}
	return p.arenas.Stmts.NewBlock(open.Span.Cover(p.lastSpan).Cover(end), stmts)
}

func (p *Parser) expectBlock(after string) ast.StmtID {
	if p.at(token.LBrace) {
		return p.parseBlock()
	}
	p.err(diag.SynExpectBlock, "expected '{' after "+after+", got "+describe(p.peek()))
	return ast.NoStmtID
}

func (p *Parser) parseStmt() ast.StmtID {
	start := p.peek()
	switch start.Kind {
	case token.LBrace:
		return p.parseBlock()
	case token.KwDjq, token.KwIdit:
		data, ok := p.parseLet()
		if !ok {
			return ast.NoStmtID
		}
		return p.arenas.Stmts.NewLet(start.Span.Cover(p.lastSpan), data)
	case token.KwRet:
		p.advance()
		value := ast.NoExprID
		if !p.atOr(token.Semicolon, token.RBrace) {
			value = p.parseExpr()
		}
		if !p.recovering() {
			p.expectSemicolon()
		}
		return p.arenas.Stmts.NewReturn(start.Span.Cover(p.lastSpan), value)
	case token.KwAte:
		return p.parseIf()
	case token.KwWyo:
		p.advance()
		cond := p.parseExpr()
		body := ast.NoStmtID
		if !p.recovering() {
			body = p.expectBlock("loop condition")
		}
		return p.arenas.Stmts.NewWhile(start.Span.Cover(p.lastSpan), cond, body)
	case token.KwSpa:
		return p.parseFor()
	case token.KwMth:
		return p.parseMatch()
	case token.KwPrnt:
		return p.parsePrint()
	case token.Semicolon:
		p.advance()
		return ast.NoStmtID
	default:
		expr := p.parseExpr()
		if !p.recovering() {
			p.expectSemicolon()
		}
		return p.arenas.Stmts.NewExpr(start.Span.Cover(p.lastSpan), expr)
	}
}

// parseIf: ate cond { } (rev (ate ... | { }))?
func (p *Parser) parseIf() ast.StmtID {
	kw := p.advance()
	cond := p.parseExpr()
	if p.recovering() {
		return p.arenas.Stmts.NewIf(kw.Span.Cover(p.lastSpan), cond, ast.NoStmtID, ast.NoStmtID)
	}
	then := p.expectBlock("condition")
	els := ast.NoStmtID
	if !p.recovering() && p.at(token.KwRev) {
		p.advance()
		if p.at(token.KwAte) {
			els = p.parseIf()
		} else {
			els = p.expectBlock("'rev'")
		}
	}
	return p.arenas.Stmts.NewIf(kw.Span.Cover(p.lastSpan), cond, then, els)
}

// parseFor: spa x : iter { }
func (p *Parser) parseFor() ast.StmtID {
	kw := p.advance()
	var data ast.ForStmt
	name, sp, ok := p.parseIdent("loop variable")
	if !ok {
		return ast.NoStmtID
	}
	data.Var, data.VarSpan = name, sp
	if _, ok := p.expect(token.Colon, diag.SynExpectColon, "expected ':' after loop variable"); !ok {
		return p.arenas.Stmts.NewFor(kw.Span.Cover(p.lastSpan), data)
	}
	data.Iter = p.parseExpr()
	if !p.recovering() {
		data.Body = p.expectBlock("loop range")
	}
	return p.arenas.Stmts.NewFor(kw.Span.Cover(p.lastSpan), data)
}

// parseMatch: mth subject { pat => expr|block, ... }
func (p *Parser) parseMatch() ast.StmtID {
	kw := p.advance()
	subject := p.parseExpr()
	if p.recovering() {
		return p.arenas.Stmts.NewMatch(kw.Span.Cover(p.lastSpan), subject, nil)
	}
	open, ok := p.expect(token.LBrace, diag.SynExpectBlock, "expected '{' after match subject")
	if !ok {
		return p.arenas.Stmts.NewMatch(kw.Span.Cover(p.lastSpan), subject, nil)
	}
	var arms []ast.MatchArm
	for !p.at(token.RBrace) && !p.at(token.EOF) && !isNestedItemStarter(p.peek().Kind) {
		if arm, ok := p.parseArm(); ok {
			arms = append(arms, arm)
		}
		if p.recovering() {
			p.resyncList(token.RBrace)
		}
		if !p.at(token.Comma) {
			if p.at(token.RBrace) || p.at(token.EOF) || !p.lastWasBlock() {
				break
			}
			continue // arms ending in a block need no comma
		}
		p.advance()
	}
	p.expectClose(token.RBrace, open)
	return p.arenas.Stmts.NewMatch(kw.Span.Cover(p.lastSpan), subject, arms)
}

func (p *Parser) lastWasBlock() bool {
	return p.lastKind == token.RBrace
}

func (p *Parser) parseArm() (ast.MatchArm, bool) {
	start := p.peek()
	arm := ast.MatchArm{}
	if p.at(token.Underscore) {
		p.advance()
	} else {
		arm.Pattern = p.parseExpr()
		if p.recovering() {
			return arm, false
		}
	}
	if _, ok := p.expect(token.FatArrow, diag.SynUnexpectedToken, "expected '=>' after match pattern"); !ok {
		return arm, false
	}
	if p.at(token.LBrace) {
		arm.Block = p.parseBlock()
	} else {
		arm.Value = p.parseExpr()
	}
	arm.Span = start.Span.Cover(p.lastSpan)
	return arm, true
}

// parsePrint: prnt(args);
func (p *Parser) parsePrint() ast.StmtID {
	kw := p.advance()
	var args []ast.ExprID
	if open, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "expected '(' after 'prnt'"); ok {
		args = p.parseArgs(open)
	}
	if !p.recovering() {
		p.expectSemicolon()
	}
	return p.arenas.Stmts.NewPrint(kw.Span.Cover(p.lastSpan), args)
}
