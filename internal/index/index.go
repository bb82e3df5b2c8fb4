// Package index exports resolved documents as a self-contained snapshot of
// their symbols, references and outline, in msgpack or JSON.
package index

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"kymera/internal/diag"
	"kymera/internal/query"
	"kymera/internal/source"
	"kymera/internal/symbols"
)

// Schema is the snapshot layout version. Bump it when a field changes.
const Schema uint16 = 1

// ErrSchema is returned when a snapshot was written with another layout.
var ErrSchema = errors.New("index: unsupported schema")

type Format uint8

const (
	FormatMsgpack Format = iota
	FormatJSON
)

func (f Format) String() string {
	if f == FormatJSON {
		return "json"
	}
	return "msgpack"
}

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "msgpack", "mp":
		return FormatMsgpack, nil
	case "json":
		return FormatJSON, nil
	}
	return FormatMsgpack, fmt.Errorf("unknown index format %q (want msgpack or json)", s)
}

type Pos struct {
	Line uint32 `json:"line"`
	Col  uint32 `json:"col"`
}

// Span is a byte range together with its resolved positions.
type Span struct {
	Start uint32 `json:"start"`
	End   uint32 `json:"end"`
	From  Pos    `json:"from"`
	To    Pos    `json:"to"`
}

type Symbol struct {
	ID        uint32   `json:"id"`
	Name      string   `json:"name"`
	Kind      string   `json:"kind"`
	Scope     uint32   `json:"scope"`
	Span      Span     `json:"span"`
	Decl      Span     `json:"decl"`
	Type      string   `json:"type,omitempty"`
	Signature string   `json:"signature,omitempty"`
	Doc       string   `json:"doc,omitempty"`
	Flags     []string `json:"flags,omitempty"`
}

// Reference is a use of Symbol at Span.
type Reference struct {
	Symbol uint32 `json:"symbol"`
	Span   Span   `json:"span"`
}

// Entry is one node of the document outline.
type Entry struct {
	Name      string  `json:"name"`
	Kind      string  `json:"kind"`
	Signature string  `json:"signature,omitempty"`
	Span      Span    `json:"span"`
	Children  []Entry `json:"children,omitempty"`
}

type Document struct {
	URI        string      `json:"uri"`
	Path       string      `json:"path"`
	Version    int32       `json:"version"`
	Hash       string      `json:"hash"`
	Errors     int         `json:"errors"`
	Warnings   int         `json:"warnings"`
	Symbols    []Symbol    `json:"symbols"`
	References []Reference `json:"references"`
	Outline    []Entry     `json:"outline"`
}

type Snapshot struct {
	Schema    uint16     `json:"schema"`
	Generator string     `json:"generator,omitempty"`
	Documents []Document `json:"documents"`
}

// NewSnapshot returns an empty snapshot of the current schema.
func NewSnapshot(generator string) *Snapshot {
	return &Snapshot{Schema: Schema, Generator: generator}
}

// Build converts the analysis of one document. outline may be nil.
func Build(a *query.Analysis, outline []query.Outline) Document {
	span := func(sp source.Span) Span {
		start, end := a.File.Resolve(sp)
		return Span{
			Start: sp.Start,
			End:   sp.End,
			From:  Pos{Line: start.Line, Col: start.Col},
			To:    Pos{Line: end.Line, Col: end.Col},
		}
	}

	doc := Document{
		URI:     a.URI,
		Path:    a.File.Path,
		Version: a.Version,
		Hash:    hex.EncodeToString(a.File.Hash[:]),
	}
	for _, d := range a.Diags {
		switch d.Severity {
		case diag.SevError:
			doc.Errors++
		case diag.SevWarning:
			doc.Warnings++
		}
	}

	tab := a.Table
	doc.Symbols = make([]Symbol, 0, tab.Symbols.Len())
	for id := symbols.SymbolID(1); int(id) <= tab.Symbols.Len(); id++ {
		sym := tab.Symbols.Get(id)
		doc.Symbols = append(doc.Symbols, Symbol{
			ID:        uint32(id),
			Name:      source.Name(sym.Name),
			Kind:      sym.Kind.String(),
			Scope:     uint32(sym.Scope),
			Span:      span(sym.Span),
			Decl:      span(sym.Decl),
			Type:      sym.Type,
			Signature: sym.Signature,
			Doc:       sym.Doc,
			Flags:     sym.Flags.Strings(),
		})
	}
	doc.References = make([]Reference, 0, len(tab.Refs))
	for _, r := range tab.Refs {
		doc.References = append(doc.References, Reference{Symbol: uint32(r.Symbol), Span: span(r.Span)})
	}

	var entries func([]query.Outline) []Entry
	entries = func(nodes []query.Outline) []Entry {
		if len(nodes) == 0 {
			return nil
		}
		out := make([]Entry, 0, len(nodes))
		for _, o := range nodes {
			out = append(out, Entry{
				Name:      o.Name,
				Kind:      o.Kind,
				Signature: o.Signature,
				Span:      span(o.Span),
				Children:  entries(o.Children),
			})
		}
		return out
	}
	doc.Outline = entries(outline)
	return doc
}

// Lookup returns the document with the given uri.
func (s *Snapshot) Lookup(uri string) (*Document, bool) {
	for i := range s.Documents {
		if s.Documents[i].URI == uri {
			return &s.Documents[i], true
		}
	}
	return nil, false
}
