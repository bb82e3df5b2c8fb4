package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"kymera/internal/diag"
	"kymera/internal/diagfmt"
	"kymera/internal/parser"
	"kymera/internal/source"
)

var tokenizeCmd = &cobra.Command{
	Use:   "tokenize [flags] file.ky",
	Short: "Tokenize a kymera source file",
	Long:  `Tokenize breaks down a kymera source file into its tokens with their leading trivia`,
	Args:  cobra.ExactArgs(1),
	RunE:  runTokenize,
}

var parseCmd = &cobra.Command{
	Use:   "parse [flags] file.ky",
	Short: "Parse a kymera source file and print its syntax tree",
	Args:  cobra.ExactArgs(1),
	RunE:  runParse,
}

func init() {
	tokenizeCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	parseCmd.Flags().String("format", "tree", "output format (tree|json)")
}

// loadAndParse reads path and parses it. Syntax diagnostics selected by
// keep are printed to stderr.
func loadAndParse(path string, keep func(diag.Diagnostic) bool) (parser.Result, error) {
	file, err := source.LoadFile(path)
	if err != nil {
		return parser.Result{}, fmt.Errorf("failed to load %s: %w", path, err)
	}
	res := parser.Parse(file, parser.Options{})

	bag := diag.NewBag(sess.cfg.Engine.MaxDiagnostics)
	for _, d := range res.Diags {
		if keep(d) {
			bag.Add(d)
		}
	}
	if bag.Len() > 0 {
		bag.Sort()
		diagfmt.Pretty(os.Stderr, bag, file, diagfmt.PrettyOpts{
			Color:   sess.color && isTerminal(os.Stderr),
			Context: 2,
		})
	}
	return res, nil
}

func runTokenize(cmd *cobra.Command, args []string) error {
	format, err := stringFlag(cmd, "format")
	if err != nil {
		return err
	}
	if format != "pretty" && format != "json" {
		return fmt.Errorf("unknown format: %s", format)
	}

	lexical := func(d diag.Diagnostic) bool { return d.Code >= diag.LexInfo && d.Code < diag.SynInfo }
	res, err := loadAndParse(args[0], lexical)
	if err != nil {
		return fmt.Errorf("tokenization failed: %w", err)
	}
	if format == "json" {
		return diagfmt.FormatTokensJSON(cmd.OutOrStdout(), res.Tokens)
	}
	return diagfmt.FormatTokensPretty(cmd.OutOrStdout(), res.Tokens, res.File)
}

func runParse(cmd *cobra.Command, args []string) error {
	format, err := stringFlag(cmd, "format")
	if err != nil {
		return err
	}
	if format != "tree" && format != "json" {
		return fmt.Errorf("unknown format: %s", format)
	}

	res, err := loadAndParse(args[0], func(diag.Diagnostic) bool { return true })
	if err != nil {
		return fmt.Errorf("parsing failed: %w", err)
	}
	if format == "json" {
		err = diagfmt.FormatASTJSON(cmd.OutOrStdout(), res.AST)
	} else {
		err = diagfmt.FormatASTPretty(cmd.OutOrStdout(), res.AST, res.File)
	}
	if err != nil {
		return err
	}
	for _, d := range res.Diags {
		if d.Severity == diag.SevError {
			return exitError{code: 1}
		}
	}
	return nil
}
