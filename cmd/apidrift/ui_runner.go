package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"apidrift/internal/engine"
	"apidrift/internal/jsondoc"
	"apidrift/internal/ui"
)

type runOutcome struct {
	result *engine.Result
	err    error
}

// runWithUI drives the comparison on a background goroutine while the
// progress view owns the terminal.
func runWithUI(ctx context.Context, driver *engine.Driver) (*engine.Result, error) {
	events := make(chan engine.Event, 256)
	outcomeCh := make(chan runOutcome, 1)

	driver.SetProgress(engine.ChannelSink{Ch: events})
	go func() {
		res, err := driver.Run(ctx)
		outcomeCh <- runOutcome{result: res, err: err}
		close(events)
	}()

	subjects := []string{
		jsondoc.ExtensionID + "/old",
		jsondoc.ExtensionID + "/new",
		jsondoc.ExtensionID + "/walk",
	}
	model := ui.NewProgressModel("comparing", subjects, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stderr))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil && outcome.err == nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}
