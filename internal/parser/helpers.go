package parser

import (
	"kymera/internal/diag"
	"kymera/internal/source"
	"kymera/internal/token"
)

// advance consumes the current token and returns it.
func (p *Parser) advance() token.Token {
	tok := p.toks[p.pos]
	if tok.Kind == token.EOF {
		return tok
	}
	p.pos++
	p.lastSpan = tok.Span
	p.lastKind = tok.Kind
	p.skipInvalid()
	return tok
}

// skipInvalid reports and steps over Invalid tokens so the grammar never
// sees them. Every Invalid token passes here exactly once.
func (p *Parser) skipInvalid() {
	for p.toks[p.pos].Kind == token.Invalid {
		tok := p.toks[p.pos]
		code, msg := lexProblem(tok)
		p.emit(code, diag.SevError, tok.Span, msg, nil)
		p.pos++
	}
}

func lexProblem(tok token.Token) (diag.Code, string) {
	switch tok.Problem {
	case token.ProblemUnterminatedString:
		return diag.LexUnterminatedString, "unterminated string literal"
	case token.ProblemUnterminatedComment:
		return diag.LexUnterminatedBlockComment, "unterminated block comment"
	case token.ProblemBadEscape:
		return diag.LexBadEscape, "invalid escape sequence in " + tok.Text
	case token.ProblemBadNumber:
		return diag.LexBadNumber, "malformed number literal '" + tok.Text + "'"
	default:
		return diag.LexUnknownChar, "unknown character '" + tok.Text + "'"
	}
}

// afterLast is an empty span right after the last consumed token, used for
// "missing X" diagnostics.
func (p *Parser) afterLast() source.Span {
	return source.Span{Start: p.lastSpan.End, End: p.lastSpan.End}
}

// expect consumes a token of kind k or reports code at the current token.
func (p *Parser) expect(k token.Kind, code diag.Code, msg string) (token.Token, bool) {
	if p.at(k) {
		return p.advance(), true
	}
	p.err(code, msg)
	return token.Token{Kind: token.Invalid, Span: p.peek().Span}, false
}

// expectSemicolon reports a missing ';' right after the previous token.
func (p *Parser) expectSemicolon() bool {
	if p.at(token.Semicolon) {
		p.advance()
		return true
	}
	p.report(diag.SynExpectSemicolon, diag.SevError, p.afterLast(),
		"expected ';', got "+describe(p.peek()))
	return false
}

// expectClose consumes the closing delimiter matching open. At EOF the
// unclosed delimiter is reported once, at the opening token.
func (p *Parser) expectClose(closer token.Kind, open token.Token) bool {
	if p.at(closer) {
		p.advance()
		return true
	}
	if p.at(token.EOF) {
		p.reportUnclosed(open)
		return false
	}
	p.report(unclosedCode(open.Kind), diag.SevError, p.peek().Span,
		"expected '"+closer.String()+"', got "+describe(p.peek()))
	return false
}

func (p *Parser) reportUnclosed(open token.Token) {
	if p.eofReported {
		return
	}
	if p.report(unclosedCode(open.Kind), diag.SevError, open.Span,
		"unclosed '"+open.Kind.String()+"'") {
		p.eofReported = true
	}
}

func unclosedCode(open token.Kind) diag.Code {
	switch open {
	case token.LParen:
		return diag.SynUnclosedParen
	case token.LBracket:
		return diag.SynUnclosedBracket
	default:
		return diag.SynUnclosedBrace
	}
}

// err reports code at the current token.
func (p *Parser) err(code diag.Code, msg string) bool {
	return p.report(code, diag.SevError, p.peek().Span, msg)
}

// report emits a syntax diagnostic and switches to recovery. While
// recovering, reports are dropped and report returns false. Errors met after
// recovery but before the next clean declaration are fallout of the same
// fault: they still drive recovery but are not emitted.
func (p *Parser) report(code diag.Code, sev diag.Severity, sp source.Span, msg string) bool {
	if p.mode == modeRecovering {
		return false
	}
	p.mode = modeRecovering
	if p.fault {
		return false
	}
	p.fault = true
	return p.emit(code, sev, sp, msg, nil)
}

func (p *Parser) emit(code diag.Code, sev diag.Severity, sp source.Span, msg string, notes []diag.Note) bool {
	if sev == diag.SevError {
		if p.opts.Enough() {
			return false
		}
		p.opts.CurrentErrors++
	}
	d := diag.Diagnostic{Severity: sev, Code: code, Message: msg, Primary: sp, Notes: notes}
	p.diags = append(p.diags, d)
	if p.opts.Reporter != nil {
		p.opts.Reporter.Report(code, sev, sp, msg, notes)
	}
	return true
}
