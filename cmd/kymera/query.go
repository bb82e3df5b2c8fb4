package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"kymera/internal/docstore"
	"kymera/internal/query"
	"kymera/internal/source"
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Answer an editor query at a position",
	Long:  `Query opens a file the way an editor would and answers one request at LINE:COL (1-based, byte columns)`,
}

func init() {
	queryCmd.PersistentFlags().String("format", "pretty", "output format (pretty|json)")
	for _, sub := range []*cobra.Command{
		{Use: "definition file.ky LINE:COL", Short: "Show where the symbol at the position is declared", RunE: runDefinition},
		{Use: "hover file.ky LINE:COL", Short: "Show the signature and doc comment of the symbol at the position", RunE: runHover},
		{Use: "references file.ky LINE:COL", Short: "List every occurrence of the symbol at the position", RunE: runReferences},
		{Use: "complete file.ky LINE:COL", Short: "List completion candidates at the position", RunE: runComplete},
	} {
		sub.Args = cobra.ExactArgs(2)
		queryCmd.AddCommand(sub)
	}
}

// parsePosition reads LINE:COL.
func parsePosition(s string) (source.LineCol, error) {
	lineStr, colStr, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return source.LineCol{}, fmt.Errorf("invalid position %q (expected LINE:COL)", s)
	}
	line, err := strconv.ParseUint(lineStr, 10, 32)
	if err != nil || line == 0 {
		return source.LineCol{}, fmt.Errorf("invalid line in %q", s)
	}
	col, err := strconv.ParseUint(colStr, 10, 32)
	if err != nil || col == 0 {
		return source.LineCol{}, fmt.Errorf("invalid column in %q", s)
	}
	return source.LineCol{Line: uint32(line), Col: uint32(col)}, nil
}

// openQuery opens args[0] in a fresh engine and parses args[1].
func openQuery(ctx context.Context, args []string) (*query.Engine, string, source.LineCol, error) {
	pos, err := parsePosition(args[1])
	if err != nil {
		return nil, "", pos, err
	}
	eng := sess.newEngine(1)
	uri := docstore.PathToURI(args[0])
	if err := eng.Store().OpenFile(ctx, uri, args[0]); err != nil {
		return nil, "", pos, err
	}
	return eng, uri, pos, nil
}

func queryFormat(cmd *cobra.Command) (string, error) {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return "", fmt.Errorf("failed to get format flag: %w", err)
	}
	switch format = strings.ToLower(format); format {
	case "pretty", "json":
		return format, nil
	}
	return "", fmt.Errorf("unknown format: %s", format)
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type locationJSON struct {
	Path      string    `json:"path"`
	StartByte uint32    `json:"start_byte"`
	EndByte   uint32    `json:"end_byte"`
	Start     string    `json:"start"`
	End       string    `json:"end"`
	Decl      *spanJSON `json:"decl,omitempty"`
}

type spanJSON struct {
	StartByte uint32 `json:"start_byte"`
	EndByte   uint32 `json:"end_byte"`
	Start     string `json:"start"`
	End       string `json:"end"`
}

func toLocationJSON(loc query.Location) locationJSON {
	out := locationJSON{
		Path:      docstore.URIToPath(loc.URI),
		StartByte: loc.Span.Start,
		EndByte:   loc.Span.End,
		Start:     loc.Range.Start.String(),
		End:       loc.Range.End.String(),
	}
	if !loc.Decl.Empty() {
		out.Decl = &spanJSON{
			StartByte: loc.Decl.Start,
			EndByte:   loc.Decl.End,
			Start:     loc.DeclRange.Start.String(),
			End:       loc.DeclRange.End.String(),
		}
	}
	return out
}

func formatLocation(loc query.Location) string {
	return fmt.Sprintf("%s:%s", docstore.URIToPath(loc.URI), loc.Range.Start)
}

// nothingFound reports an empty answer; it is not an error.
func nothingFound(cmd *cobra.Command, format string) error {
	if format == "json" {
		return writeJSON(cmd.OutOrStdout(), nil)
	}
	if !sess.quiet {
		fmt.Fprintln(cmd.ErrOrStderr(), "nothing found at this position")
	}
	return nil
}

func runDefinition(cmd *cobra.Command, args []string) error {
	format, err := queryFormat(cmd)
	if err != nil {
		return err
	}
	eng, uri, pos, err := openQuery(cmd.Context(), args)
	if err != nil {
		return err
	}
	loc, err := eng.Definition(cmd.Context(), uri, pos)
	if err != nil {
		return err
	}
	if loc == nil {
		return nothingFound(cmd, format)
	}
	if format == "json" {
		return writeJSON(cmd.OutOrStdout(), toLocationJSON(*loc))
	}
	fmt.Fprintln(cmd.OutOrStdout(), formatLocation(*loc))
	return nil
}

func runHover(cmd *cobra.Command, args []string) error {
	format, err := queryFormat(cmd)
	if err != nil {
		return err
	}
	eng, uri, pos, err := openQuery(cmd.Context(), args)
	if err != nil {
		return err
	}
	h, err := eng.Hover(cmd.Context(), uri, pos)
	if err != nil {
		return err
	}
	if h == nil {
		return nothingFound(cmd, format)
	}
	if format == "json" {
		return writeJSON(cmd.OutOrStdout(), struct {
			Name      string `json:"name"`
			Kind      string `json:"kind"`
			Signature string `json:"signature"`
			Doc       string `json:"doc,omitempty"`
			Start     string `json:"start"`
			End       string `json:"end"`
		}{h.Name, h.Kind.String(), h.Signature, h.Doc, h.Range.Start.String(), h.Range.End.String()})
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s (%s)\n", h.Signature, h.Kind)
	if h.Doc != "" {
		fmt.Fprintf(out, "\n%s\n", h.Doc)
	}
	return nil
}

func runReferences(cmd *cobra.Command, args []string) error {
	format, err := queryFormat(cmd)
	if err != nil {
		return err
	}
	eng, uri, pos, err := openQuery(cmd.Context(), args)
	if err != nil {
		return err
	}
	locs, err := eng.References(cmd.Context(), uri, pos)
	if err != nil {
		return err
	}
	if len(locs) == 0 {
		return nothingFound(cmd, format)
	}
	if format == "json" {
		out := make([]locationJSON, 0, len(locs))
		for _, loc := range locs {
			out = append(out, toLocationJSON(loc))
		}
		return writeJSON(cmd.OutOrStdout(), out)
	}
	for _, loc := range locs {
		fmt.Fprintln(cmd.OutOrStdout(), formatLocation(loc))
	}
	return nil
}

func runComplete(cmd *cobra.Command, args []string) error {
	format, err := queryFormat(cmd)
	if err != nil {
		return err
	}
	eng, uri, pos, err := openQuery(cmd.Context(), args)
	if err != nil {
		return err
	}
	items, err := eng.Complete(cmd.Context(), uri, pos)
	if err != nil {
		return err
	}
	if format == "json" {
		type itemJSON struct {
			Label  string `json:"label"`
			Kind   string `json:"kind"`
			Detail string `json:"detail,omitempty"`
			Doc    string `json:"doc,omitempty"`
		}
		out := make([]itemJSON, 0, len(items))
		for _, it := range items {
			out = append(out, itemJSON{it.Label, it.Kind, it.Detail, it.Doc})
		}
		return writeJSON(cmd.OutOrStdout(), out)
	}
	for _, it := range items {
		fmt.Fprintf(cmd.OutOrStdout(), "%-20s %-10s %s\n", it.Label, it.Kind, it.Detail)
	}
	return nil
}
