// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package progress

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pdiddy/notesheet/internal/pipeline"
)

// Converter runs conversions in the background while drawing a progress
// bar on Out. It satisfies the convert package's Converter interface.
type Converter struct {
	Pipeline *pipeline.Pipeline
	Out      io.Writer
	In       io.Reader
}

// Run converts opts.Source and blocks until the run and the view end.
// Interrupting the view cancels the run.
func (c *Converter) Run(ctx context.Context, opts pipeline.Options) (pipeline.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var progOpts []tea.ProgramOption
	if c.Out != nil {
		progOpts = append(progOpts, tea.WithOutput(c.Out))
	}
	if c.In != nil {
		progOpts = append(progOpts, tea.WithInput(c.In))
	}
	prog := tea.NewProgram(New(filepath.Base(opts.Source), cancel), progOpts...)

	job := c.Pipeline.Start(ctx, opts)
	go func() {
		for e := range job.Events() {
			prog.Send(EventMsg{Event: e})
		}
		res, err := job.Wait()
		prog.Send(DoneMsg{Result: res, Err: err})
	}()

	if _, err := prog.Run(); err != nil {
		cancel()
		job.Wait()
		return pipeline.Result{}, fmt.Errorf("running progress view: %w", err)
	}
	return job.Wait()
}
