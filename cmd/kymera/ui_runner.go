package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"kymera/internal/check"
	"kymera/internal/query"
	"kymera/internal/ui"
)

type checkOutcome struct {
	results []check.FileResult
	err     error
}

// runCheckWithUI runs a batch check while a progress view renders its
// events on stderr.
func runCheckWithUI(ctx context.Context, title string, files []string, eng *query.Engine, opts check.Options) ([]check.FileResult, error) {
	events := make(chan check.Event, 256)
	outcomeCh := make(chan checkOutcome, 1)

	go func() {
		opts.Progress = check.ChannelSink{Ch: events}
		res, err := check.New(eng, opts).Run(ctx, files)
		outcomeCh <- checkOutcome{results: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stderr))
	_, uiErr := program.Run()
	// the view may quit early; keep the checker from blocking on sends
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}
