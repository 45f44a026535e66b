// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import "context"

// Job is a run executing in the background.
type Job struct {
	events chan Event
	done   chan struct{}
	res    Result
	err    error
}

// Start runs the pipeline on its own goroutine. The returned Job reports
// each committed page on Events; the channel is closed when the run ends.
// A consumer that stops reading Events must cancel ctx or call Wait, which
// drains the remaining events.
func (p *Pipeline) Start(ctx context.Context, opts Options) *Job {
	j := &Job{
		events: make(chan Event, 8),
		done:   make(chan struct{}),
	}

	run := *p
	forward := p.Progress
	run.Progress = func(e Event) {
		if forward != nil {
			forward(e)
		}
		select {
		case j.events <- e:
		case <-ctx.Done():
		}
	}

	go func() {
		res, err := run.Run(ctx, opts)
		j.res, j.err = res, err
		close(j.events)
		close(j.done)
	}()
	return j
}

// Events streams committed-page events.
func (j *Job) Events() <-chan Event { return j.events }

// Done is closed once the run has returned.
func (j *Job) Done() <-chan struct{} { return j.done }

// Wait blocks until the run ends and returns its outcome.
func (j *Job) Wait() (Result, error) {
	for range j.events {
	}
	<-j.done
	return j.res, j.err
}
