package parser

import (
	"kymera/internal/ast"
	"kymera/internal/diag"
	"kymera/internal/source"
	"kymera/internal/token"
)

// parseIdent expects an identifier and interns it.
func (p *Parser) parseIdent(what string) (source.StringID, source.Span, bool) {
	if p.at(token.Ident) {
		tok := p.advance()
		return p.intern(tok), tok.Span, true
	}
	p.err(diag.SynExpectIdentifier, "expected "+what+", got "+describe(p.peek()))
	return source.NoStringID, p.peek().Span, false
}

func (p *Parser) itemSpan(start token.Token) source.Span {
	return start.Span.Cover(p.lastSpan)
}

// parseImportItem: pydes a::b::c (as d)? ;
func (p *Parser) parseImportItem() (ast.ItemID, bool) {
	kw := p.advance()
	data := ast.ImportItem{Rust: kw.Kind == token.KwRudes}

	name, sp, ok := p.parseIdent("module name")
	if !ok {
		return ast.NoItemID, false
	}
	data.Path = append(data.Path, name)
	data.PathSpans = append(data.PathSpans, sp)
	for p.at(token.ColonColon) {
		p.advance()
		if !p.at(token.Ident) {
			p.err(diag.SynExpectModuleSeg, "expected module segment after '::'")
			break
		}
		seg := p.advance()
		data.Path = append(data.Path, p.intern(seg))
		data.PathSpans = append(data.PathSpans, seg.Span)
	}

	itemName, itemSpan := data.Path[len(data.Path)-1], data.PathSpans[len(data.PathSpans)-1]
	if !p.recovering() && p.at(token.KwAs) {
		p.advance()
		if p.at(token.Ident) {
			alias := p.advance()
			data.Alias, data.AliasSpan = p.intern(alias), alias.Span
			itemName, itemSpan = data.Alias, alias.Span
		} else {
			p.err(diag.SynExpectIdentAfterAs, "expected identifier after 'as'")
		}
	}
	if !p.recovering() {
		p.expectSemicolon()
	}
	return p.arenas.Items.NewImport(p.itemSpan(kw), itemName, itemSpan, kw.DocComment(), data), true
}

// parseFnItem: fnc name(params) (-> T)? block
// Inside interfaces the body may be replaced by ';'.
func (p *Parser) parseFnItem(sigOnly bool) (ast.ItemID, bool) {
	kw := p.advance()
	name, nameSpan, ok := p.parseIdent("function name")
	if !ok {
		return ast.NoItemID, false
	}

	var data ast.FnItem
	if open, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "expected '(' after function name"); ok {
		data.Params = p.parseParams(open)
	}
	if !p.recovering() && p.at(token.Arrow) {
		p.advance()
		data.Result = p.parseType()
	}

	switch {
	case p.at(token.LBrace):
		if p.recovering() {
			// the header was broken but the body is intact
			p.mode = modeNormal
		}
		data.Body = p.parseBlock()
	case sigOnly && p.at(token.Semicolon):
		p.advance()
	case !p.recovering():
		p.err(diag.SynExpectBlock, "expected function body, got "+describe(p.peek()))
	}
	sp := p.itemSpan(kw)
	if body := p.arenas.Stmts.Get(data.Body); body != nil {
		sp = sp.Cover(body.Span)
	}
	return p.arenas.Items.NewFn(sp, name, nameSpan, kw.DocComment(), data), true
}

func (p *Parser) parseParams(open token.Token) []ast.FnParam {
	var params []ast.FnParam
	for !p.at(token.RParen) && !p.at(token.EOF) {
		if param, ok := p.parseParam(); ok {
			params = append(params, param)
		}
		if p.recovering() {
			p.resyncList(token.RParen)
			if !p.atOr(token.Comma, token.RParen) {
				p.mode = modeRecovering
				return params
			}
		}
		if !p.at(token.Comma) {
			break
		}
		p.advance()
	}
	p.expectClose(token.RParen, open)
	return params
}

// parseParam: (muta)? name (: T)?
func (p *Parser) parseParam() (ast.FnParam, bool) {
	start := p.peek()
	var param ast.FnParam
	if p.at(token.KwMuta) {
		p.advance()
		param.Mutable = true
	}
	name, sp, ok := p.parseIdent("parameter name")
	if !ok {
		return param, false
	}
	param.Name, param.NameSpan = name, sp
	if p.at(token.Colon) {
		p.advance()
		param.Type = p.parseType()
	}
	param.Span = start.Span.Cover(p.lastSpan)
	return param, true
}

// parseStructItem: des|forma Name { field: T, ... }
func (p *Parser) parseStructItem() (ast.ItemID, bool) {
	kw := p.advance()
	name, nameSpan, ok := p.parseIdent("struct name")
	if !ok {
		return ast.NoItemID, false
	}
	data := ast.StructItem{Forma: kw.Kind == token.KwForma}
	if open, ok := p.expect(token.LBrace, diag.SynUnexpectedToken, "expected '{' after struct name"); ok {
		for !p.at(token.RBrace) && !p.at(token.EOF) && !isItemStarter(p.peek().Kind) {
			if field, ok := p.parseField(); ok {
				data.Fields = append(data.Fields, field)
			}
			if p.recovering() {
				p.resyncList(token.RBrace)
			}
			if !p.at(token.Comma) {
				break
			}
			p.advance()
		}
		p.expectClose(token.RBrace, open)
	}
	return p.arenas.Items.NewStruct(p.itemSpan(kw), name, nameSpan, kw.DocComment(), data), true
}

func (p *Parser) parseField() (ast.StructField, bool) {
	start := p.peek()
	name, sp, ok := p.parseIdent("field name")
	if !ok {
		return ast.StructField{}, false
	}
	field := ast.StructField{Name: name, NameSpan: sp, Doc: start.DocComment()}
	if _, ok := p.expect(token.Colon, diag.SynExpectColon, "expected ':' after field name"); ok {
		field.Type = p.parseType()
	}
	field.Span = start.Span.Cover(p.lastSpan)
	return field, true
}

// parseEnumItem: enum Name { A, B }
func (p *Parser) parseEnumItem() (ast.ItemID, bool) {
	kw := p.advance()
	name, nameSpan, ok := p.parseIdent("enum name")
	if !ok {
		return ast.NoItemID, false
	}
	var data ast.EnumItem
	if open, ok := p.expect(token.LBrace, diag.SynUnexpectedToken, "expected '{' after enum name"); ok {
		for !p.at(token.RBrace) && !p.at(token.EOF) && !isItemStarter(p.peek().Kind) {
			doc := p.peek().DocComment()
			if v, sp, ok := p.parseIdent("variant name"); ok {
				data.Variants = append(data.Variants, ast.EnumVariant{Name: v, NameSpan: sp, Doc: doc})
			}
			if p.recovering() {
				p.resyncList(token.RBrace)
			}
			if !p.at(token.Comma) {
				break
			}
			p.advance()
		}
		p.expectClose(token.RBrace, open)
	}
	return p.arenas.Items.NewEnum(p.itemSpan(kw), name, nameSpan, kw.DocComment(), data), true
}

// parseImplItem: imp Name { fnc ... }
func (p *Parser) parseImplItem() (ast.ItemID, bool) {
	kw := p.advance()
	target, targetSpan, ok := p.parseIdent("type name")
	if !ok {
		return ast.NoItemID, false
	}
	methods := p.parseMethods(false)
	return p.arenas.Items.NewImpl(p.itemSpan(kw), target, targetSpan, kw.DocComment(), ast.ImplItem{Methods: methods}), true
}

// parseInterfaceItem: ifz Name { fnc sig(...) -> T; }
func (p *Parser) parseInterfaceItem() (ast.ItemID, bool) {
	kw := p.advance()
	name, nameSpan, ok := p.parseIdent("interface name")
	if !ok {
		return ast.NoItemID, false
	}
	methods := p.parseMethods(true)
	return p.arenas.Items.NewInterface(p.itemSpan(kw), name, nameSpan, kw.DocComment(), ast.InterfaceItem{Methods: methods}), true
}

func (p *Parser) parseMethods(sigOnly bool) []ast.ItemID {
	open, ok := p.expect(token.LBrace, diag.SynUnexpectedToken, "expected '{'")
	if !ok {
		return nil
	}
	var methods []ast.ItemID
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		if !p.at(token.KwFnc) {
			if isItemStarter(p.peek().Kind) {
				break
			}
			p.err(diag.SynUnexpectedToken, "expected 'fnc', got "+describe(p.peek()))
			p.resyncUntil(token.KwFnc, token.RBrace)
			continue
		}
		if id, ok := p.parseFnItem(sigOnly); ok {
			methods = append(methods, id)
		}
		if p.recovering() {
			p.resyncUntil(token.KwFnc, token.RBrace)
		}
	}
	p.expectClose(token.RBrace, open)
	return methods
}

func (p *Parser) parseLetItem() (ast.ItemID, bool) {
	start := p.peek()
	data, ok := p.parseLet()
	if !ok {
		return ast.NoItemID, false
	}
	return p.arenas.Items.NewLet(p.itemSpan(start), start.DocComment(), data), true
}

// parseLet: djq|idit (muta|nmut)? name (: T)? (= expr)? ;
func (p *Parser) parseLet() (ast.LetDecl, bool) {
	kw := p.advance()
	data := ast.LetDecl{Mutable: kw.Kind == token.KwIdit}
	switch {
	case p.at(token.KwMuta):
		p.advance()
		data.Mutable = true
	case p.at(token.KwNmut):
		p.advance()
		data.Mutable = false
	}
	name, sp, ok := p.parseIdent("variable name")
	if !ok {
		return data, false
	}
	data.Name, data.NameSpan = name, sp
	if p.at(token.Colon) {
		p.advance()
		data.Type = p.parseType()
	}
	if !p.recovering() && p.at(token.Assign) {
		p.advance()
		data.Value = p.parseExpr()
	}
	if !p.recovering() {
		p.expectSemicolon()
	}
	return data, true
}
