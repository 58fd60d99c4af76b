package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"regrade/internal/driver"
	"regrade/internal/progress"
	"regrade/internal/ui"
)

type batchOutcome struct {
	result *driver.BatchResult
	err    error
}

// runBatchWithUI runs driver.Batch in the background while a bubbletea
// program renders its progress events.
func runBatchWithUI(ctx context.Context, title string, originals, corrections string, opts driver.BatchOptions) (*driver.BatchResult, error) {
	pairs, err := driver.DiscoverPairs(originals, corrections, opts.Config.Batch.QuestionFrom)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(pairs))
	for i, p := range pairs {
		names[i] = p.Name()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan progress.Event, 256)
	outcomeCh := make(chan batchOutcome, 1)

	go func() {
		optsCopy := opts
		optsCopy.Sink = progress.ChannelSink{Ch: events}
		res, err := driver.Batch(ctx, originals, corrections, optsCopy)
		outcomeCh <- batchOutcome{result: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, names, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	// UI закрывается после close(events) или по Ctrl+C; во втором случае
	// останавливаем батч и дочитываем оставшиеся события
	cancel()
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}
