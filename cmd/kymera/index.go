package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"kymera/internal/check"
	"kymera/internal/index"
	"kymera/internal/version"
)

var indexCmd = &cobra.Command{
	Use:   "index [flags] <file.ky|directory>... -o OUT",
	Short: "Export symbols, references and outlines as an index snapshot",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runIndex,
}

func init() {
	indexCmd.Flags().StringP("output", "o", "", "output file (required)")
	indexCmd.Flags().String("format", "", "snapshot format (msgpack|json); default from the output extension")
	indexCmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
	_ = indexCmd.MarkFlagRequired("output")
}

func runIndex(cmd *cobra.Command, args []string) error {
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return fmt.Errorf("failed to get output flag: %w", err)
	}
	formatStr, err := stringFlag(cmd, "format")
	if err != nil {
		return err
	}
	if formatStr == "" && strings.EqualFold(filepath.Ext(output), ".json") {
		formatStr = "json"
	}
	format, err := index.ParseFormat(formatStr)
	if err != nil {
		return err
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}

	files, err := check.CollectFiles(args)
	if err != nil {
		return err
	}
	checker := check.New(sess.newEngine(len(files)), check.Options{
		Jobs:           jobs,
		MaxDiagnostics: sess.cfg.Engine.MaxDiagnostics,
		Timings:        sess.timings,
		Outline:        true,
	})
	results, err := checker.Run(cmd.Context(), files)
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	snap := index.NewSnapshot("kymera " + version.Version)
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", r.Path, r.Err)
			continue
		}
		snap.Documents = append(snap.Documents, index.Build(r.Analysis, r.Outline))
	}
	if err := index.WriteFile(output, snap, format); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}

	if sess.timings {
		printFileTimings(cmd.ErrOrStderr(), results)
	}
	if !sess.quiet {
		symbols := 0
		for i := range snap.Documents {
			symbols += len(snap.Documents[i].Symbols)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "indexed %d documents, %d symbols into %s (%s)\n", len(snap.Documents), symbols, output, format)
	}
	if check.Summarize(results).Failed > 0 {
		return exitError{code: 1}
	}
	return nil
}
