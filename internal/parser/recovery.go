package parser

import (
	"kymera/internal/token"
)

// resyncUntil skips tokens until one of stop, a declaration keyword, or
// EOF. Reaching a synchronization token ends recovery; EOF does not, so an
// unclosed delimiter behind a broken construct is not reported twice.
func (p *Parser) resyncUntil(stop ...token.Kind) {
	for !p.at(token.EOF) {
		k := p.peek().Kind
		if isItemStarter(k) {
			break
		}
		if p.atOr(stop...) {
			break
		}
		p.advance()
	}
	if !p.at(token.EOF) {
		p.mode = modeNormal
	}
}

// resyncTop recovers at top level: up to the next declaration keyword.
// Stray ';' and '}' are skipped.
func (p *Parser) resyncTop() {
	if !isItemStarter(p.peek().Kind) && !p.at(token.EOF) {
		p.advance()
	}
	p.resyncUntil()
}

// resyncStmt recovers inside a block: ';' is consumed, '}' is left for the
// block, declaration keywords end the statement.
func (p *Parser) resyncStmt() {
	p.resyncUntil(token.Semicolon, token.RBrace)
	if p.at(token.Semicolon) {
		p.advance()
	}
}

// resyncList recovers inside a comma separated list closed by closer.
func (p *Parser) resyncList(closer token.Kind) {
	p.resyncUntil(token.Comma, closer, token.Semicolon, token.LBrace, token.RBrace)
}
