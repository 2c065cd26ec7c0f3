package main

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"limbs/internal/batch"
	"limbs/internal/ui"
)

type batchOutcome struct {
	results []batch.FileResult
	err     error
}

// runBatchWithUI runs req while a progress view draws on out. Quitting the
// view cancels the batch.
func runBatchWithUI(ctx context.Context, out io.Writer, title string, req batch.Request) ([]batch.FileResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan batch.Event, 256)
	outcomeCh := make(chan batchOutcome, 1)
	go func() {
		req.Progress = batch.ChannelSink{Ch: events}
		res, err := batch.Run(ctx, req)
		close(events)
		outcomeCh <- batchOutcome{results: res, err: err}
	}()

	program := tea.NewProgram(ui.NewProgressModel(title, req.Files, events), tea.WithOutput(out), tea.WithContext(ctx))
	_, uiErr := program.Run()
	// The view exits on its own only after events is closed; any earlier
	// exit (ctrl+c, error) stops the workers, which may still be sending.
	cancel()
	for range events {
	}
	outcome := <-outcomeCh
	if uiErr != nil && outcome.err == nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}
