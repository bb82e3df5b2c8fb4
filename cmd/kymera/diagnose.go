package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"kymera/internal/check"
	"kymera/internal/diagfmt"
)

var diagCmd = &cobra.Command{
	Use:   "diag [flags] <file.ky|directory>...",
	Short: "Report syntax and semantic diagnostics",
	Long: `Run diagnostics on kymera source files, or on every *.ky file below the
given directories. The exit status is 1 when any file has errors.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDiagnose,
}

func init() {
	diagCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	diagCmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
	diagCmd.Flags().String("ui", "off", "progress UI (auto|on|off)")
	diagCmd.Flags().Lookup("ui").NoOptDefVal = "on"
	diagCmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
	diagCmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
}

func runDiagnose(cmd *cobra.Command, args []string) error {
	format, err := stringFlag(cmd, "format")
	if err != nil {
		return err
	}
	if format != "pretty" && format != "json" {
		return fmt.Errorf("unknown format: %s", format)
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	uiValue, err := stringFlag(cmd, "ui")
	if err != nil {
		return err
	}
	mode, err := readUIMode(uiValue)
	if err != nil {
		return err
	}
	withNotes, err := cmd.Flags().GetBool("with-notes")
	if err != nil {
		return fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	fullPath, err := cmd.Flags().GetBool("fullpath")
	if err != nil {
		return fmt.Errorf("failed to get fullpath flag: %w", err)
	}

	files, err := check.CollectFiles(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		if !sess.quiet {
			fmt.Fprintln(cmd.ErrOrStderr(), "no .ky files found")
		}
		return nil
	}

	opts := check.Options{
		Jobs:           jobs,
		MaxDiagnostics: sess.cfg.Engine.MaxDiagnostics,
		Timings:        sess.timings,
	}
	eng := sess.newEngine(len(files))
	var results []check.FileResult
	if format == "pretty" && shouldUseTUI(mode) {
		results, err = runCheckWithUI(cmd.Context(), "checking", files, eng, opts)
	} else {
		results, err = check.New(eng, opts).Run(cmd.Context(), files)
	}
	if err != nil {
		return fmt.Errorf("diagnosis failed: %w", err)
	}

	pathMode := diagfmt.PathModeAuto
	if fullPath {
		pathMode = diagfmt.PathModeAbsolute
	}
	out := cmd.OutOrStdout()
	switch format {
	case "pretty":
		opts := diagfmt.PrettyOpts{Color: sess.color, Context: 2, PathMode: pathMode, ShowNotes: withNotes}
		printed := 0
		for _, r := range results {
			if r.Err != nil || r.Bag.Len() == 0 {
				continue
			}
			if len(results) > 1 {
				if printed > 0 {
					fmt.Fprintln(out)
				}
				fmt.Fprintf(out, "== %s ==\n", r.Path)
			}
			diagfmt.Pretty(out, r.Bag, r.Analysis.File, opts)
			printed++
		}
	case "json":
		jsonOpts := diagfmt.JSONOpts{IncludePositions: true, PathMode: pathMode, IncludeNotes: withNotes}
		output := make(map[string]diagfmt.DiagnosticsOutput, len(results))
		for _, r := range results {
			if r.Err != nil {
				continue
			}
			output[r.Path] = diagfmt.BuildDiagnosticsOutput(r.Bag, r.Analysis.File, jsonOpts)
		}
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(output); err != nil {
			return fmt.Errorf("failed to encode diagnostics output: %w", err)
		}
	}

	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", r.Path, r.Err)
		}
	}
	if sess.timings {
		printFileTimings(cmd.ErrOrStderr(), results)
	}
	sum := check.Summarize(results)
	if !sess.quiet && format == "pretty" {
		fmt.Fprintln(cmd.ErrOrStderr(), sum)
	}
	if sum.Errors > 0 || sum.Failed > 0 {
		return exitError{code: 1}
	}
	return nil
}
