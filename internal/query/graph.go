package query

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"slices"
	"sort"

	"kymera/internal/ast"
	"kymera/internal/diag"
	"kymera/internal/docstore"
	"kymera/internal/incr"
	"kymera/internal/lexer"
	"kymera/internal/observ"
	"kymera/internal/parser"
	"kymera/internal/source"
	"kymera/internal/symbols"
	"kymera/internal/token"
	"kymera/internal/trace"
)

// Parsed is the lexer and parser output of one revision.
type Parsed struct {
	File   *source.File
	Tokens []token.Token
	AST    *ast.Builder
	Diags  []diag.Diagnostic
}

// Fingerprint identifies the token content of one declaration, relative
// to its start.
type Fingerprint [sha256.Size]byte

// The document graph: Parse reads the text input; ModuleIndex and
// DeclFingerprint summarize the parse with early cutoff; ResolveDecl
// depends only on those two, so it is reused for every declaration an edit
// did not touch. Symbols assembles the table of the revision.
var (
	Parse = &incr.Query[*Parsed]{
		Name:    "Parse",
		Compute: computeParse,
	}
	ModuleIndex = &incr.Query[symbols.Index]{
		Name:    "ModuleIndex",
		Compute: computeModuleIndex,
		Equal:   func(a, b symbols.Index) bool { return a.Equal(b) },
	}
	DeclFingerprint = &incr.Query[Fingerprint]{
		Name:    "DeclFingerprint",
		Compute: computeFingerprint,
		Equal:   func(a, b Fingerprint) bool { return a == b },
	}
	ResolveDecl = &incr.Query[symbols.DeclResult]{
		Name:    "ResolveDecl",
		Compute: computeResolveDecl,
	}
	Symbols = &incr.Query[symbols.Resolution]{
		Name:    "Symbols",
		Compute: computeSymbols,
	}
	Diagnostics = &incr.Query[[]diag.Diagnostic]{
		Name:    "Diagnostics",
		Compute: computeDiagnostics,
	}
)

func computeParse(q *incr.Ctx, _ uint32) (*Parsed, error) {
	file, err := docstore.Text.Read(q, 0)
	if err != nil {
		return nil, err
	}
	ctx := q.Context()
	defer observ.FromContext(ctx).Track("parse")()
	span := trace.BeginIn(ctx, trace.ScopeDocument, "parse")

	toks := lexer.Tokenize(file)
	res := parser.ParseTokens(file, toks, parser.Options{})
	span.WithExtra("tokens", fmt.Sprint(len(toks))).
		WithExtra("items", fmt.Sprint(len(res.AST.File.Items))).
		End(fmt.Sprintf("%d diagnostics", len(res.Diags)))
	return &Parsed{File: file, Tokens: toks, AST: res.AST, Diags: res.Diags}, nil
}

func computeModuleIndex(q *incr.Ctx, _ uint32) (symbols.Index, error) {
	p, err := incr.Get(q, Parse, 0)
	if err != nil {
		return symbols.Index{}, err
	}
	return symbols.BuildIndex(p.AST), nil
}

func computeFingerprint(q *incr.Ctx, decl uint32) (Fingerprint, error) {
	p, err := incr.Get(q, Parse, 0)
	if err != nil || int(decl) >= len(p.AST.File.Items) {
		return Fingerprint{}, err
	}
	return fingerprint(p, p.AST.File.Items[decl]), nil
}

// fingerprint hashes the declaration's doc comment and, for every token in
// its span, the kind, offset from the declaration start, text and doc.
func fingerprint(p *Parsed, id ast.ItemID) Fingerprint {
	item := p.AST.Items.Get(id)
	h := sha256.New()
	var buf [8]byte
	writeString := func(s string) {
		binary.LittleEndian.PutUint32(buf[:4], uint32(len(s))) // #nosec G115 -- file size is bounded to uint32
		h.Write(buf[:4])
		h.Write([]byte(s))
	}
	writeString(item.Doc)
	i := sort.Search(len(p.Tokens), func(i int) bool { return p.Tokens[i].Span.Start >= item.Span.Start })
	for ; i < len(p.Tokens) && p.Tokens[i].Span.Start < item.Span.End; i++ {
		tok := &p.Tokens[i]
		binary.LittleEndian.PutUint32(buf[:4], uint32(tok.Kind))
		binary.LittleEndian.PutUint32(buf[4:], tok.Span.Start-item.Span.Start)
		h.Write(buf[:])
		writeString(tok.Text)
		writeString(tok.DocComment())
	}
	binary.LittleEndian.PutUint32(buf[:4], item.Span.Len())
	h.Write(buf[:4])
	var out Fingerprint
	h.Sum(out[:0])
	return out
}

func computeResolveDecl(q *incr.Ctx, decl uint32) (symbols.DeclResult, error) {
	ix, err := incr.Get(q, ModuleIndex, 0)
	if err != nil {
		return symbols.DeclResult{}, err
	}
	if _, err := incr.Get(q, DeclFingerprint, decl); err != nil {
		return symbols.DeclResult{}, err
	}
	// the result depends on the parse only through the index and the
	// fingerprint of this declaration, both tracked above
	p, err := incr.Untracked(q, Parse, 0)
	if err != nil {
		return symbols.DeclResult{}, err
	}
	if int(decl) >= len(p.AST.File.Items) {
		incr.Invariant(q, fmt.Sprintf("declaration %d out of range (%d items)", decl, len(p.AST.File.Items)))
	}
	ctx := q.Context()
	defer observ.FromContext(ctx).Track("resolve-decl")()
	span := trace.BeginIn(ctx, trace.ScopeNode, "resolve-decl")
	res := symbols.ResolveDecl(p.AST, ix, int(decl))
	span.End(fmt.Sprintf("decl %d: %d symbols, %d refs", decl, len(res.Symbols), len(res.Refs)))
	return res, nil
}

func computeSymbols(q *incr.Ctx, _ uint32) (symbols.Resolution, error) {
	p, err := incr.Get(q, Parse, 0)
	if err != nil {
		return symbols.Resolution{}, err
	}
	ix, err := incr.Get(q, ModuleIndex, 0)
	if err != nil {
		return symbols.Resolution{}, err
	}
	decls := make([]symbols.DeclResult, len(ix.Entries))
	for i := range decls {
		decls[i], err = incr.Get(q, ResolveDecl, uint32(i)) // #nosec G115 -- item count is bounded by file size
		if err != nil {
			return symbols.Resolution{}, err
		}
	}
	forgetRemovedDecls(q.Graph(), len(decls))

	ctx := q.Context()
	defer observ.FromContext(ctx).Track("assemble")()
	span := trace.BeginIn(ctx, trace.ScopeDocument, "assemble")
	res := symbols.Assemble(p.AST, ix, decls)
	if err := res.Table.Validate(); err != nil {
		span.End("invalid")
		incr.Invariant(q, err.Error())
	}
	span.End(fmt.Sprintf("%d symbols", res.Table.Symbols.Len()))
	return res, nil
}

// forgetRemovedDecls drops the per-declaration entries of declarations past
// the end of the file, so a shrinking document does not keep them cached.
func forgetRemovedDecls(g *incr.Graph, n int) {
	limit := uint32(n) // #nosec G115 -- item count is bounded by file size
	g.Forget(func(k incr.Key) bool {
		return (k.Query == ResolveDecl.Name || k.Query == DeclFingerprint.Name) && k.Arg >= limit
	})
}

func computeDiagnostics(q *incr.Ctx, _ uint32) ([]diag.Diagnostic, error) {
	p, err := incr.Get(q, Parse, 0)
	if err != nil {
		return nil, err
	}
	res, err := incr.Get(q, Symbols, 0)
	if err != nil {
		return nil, err
	}
	// cached slices are shared, sort copies
	syntax := slices.Clone(p.Diags)
	diag.SortDiagnostics(syntax)
	semantic := slices.Clone(res.Diags)
	diag.SortDiagnostics(semantic)
	return diag.Dedup(append(syntax, semantic...)), nil
}
