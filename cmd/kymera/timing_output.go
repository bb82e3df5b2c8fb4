package main

import (
	"fmt"
	"io"

	"kymera/internal/check"
)

// printFileTimings writes the phase report of every analyzed file.
func printFileTimings(out io.Writer, results []check.FileResult) {
	if out == nil {
		return
	}
	for _, r := range results {
		if r.Timing == nil || len(r.Timing.Phases) == 0 {
			continue
		}
		fmt.Fprintf(out, "%s: %.1f ms\n", r.Path, r.Timing.TotalMS)
		for _, p := range r.Timing.Phases {
			fmt.Fprintf(out, "  %-14s %7.2f ms", p.Name, p.DurationMS)
			if p.Runs > 1 {
				fmt.Fprintf(out, "  x%d", p.Runs)
			}
			fmt.Fprintln(out)
		}
	}
}
