// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package compose writes composed pages to the output document.
//
// An OutputWriter buffers everything in memory. Pages are appended in the
// order they are committed, and Finalize performs the only durable write.
// A writer that is closed without Finalize leaves nothing behind.
package compose

import (
	"errors"
	"fmt"
	"image"
)

var (
	// ErrEmptyPage is returned by CommitPage when nothing was drawn.
	ErrEmptyPage = errors.New("no page in progress")

	// ErrFinalized is returned by any call after Finalize or Close.
	ErrFinalized = errors.New("output already finalized")

	// ErrPageInProgress is returned by Finalize when a page was drawn
	// but not committed.
	ErrPageInProgress = errors.New("page drawn but not committed")
)

// OutputWriter accumulates output pages.
type OutputWriter interface {
	// DrawImage places img scaled to w×h with its top-left corner at (x, y).
	DrawImage(img image.Image, x, y, w, h float64) error

	// DrawLine strokes a segment from (x1, y1) to (x2, y2).
	DrawLine(x1, y1, x2, y2, stroke float64) error

	// CommitPage seals the current page and appends it to the document.
	CommitPage() error

	// Finalize writes the document to its destination. It may be called
	// once.
	Finalize() error

	// Close releases resources. It is safe to call after Finalize and more
	// than once.
	Close() error

	// Pages returns the number of committed pages.
	Pages() int
}

// OutputWriteError reports a failure to produce the output document.
type OutputWriteError struct {
	Op   string
	Path string
	Err  error
}

func (e *OutputWriteError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *OutputWriteError) Unwrap() error { return e.Err }

// pageState tracks the page lifecycle shared by the writers.
type pageState struct {
	open      bool
	committed int
	finalized bool
	closed    bool
}

func (s *pageState) checkWritable() error {
	if s.finalized || s.closed {
		return ErrFinalized
	}
	return nil
}

func (s *pageState) commit() error {
	if err := s.checkWritable(); err != nil {
		return err
	}
	if !s.open {
		return ErrEmptyPage
	}
	s.open = false
	s.committed++
	return nil
}

func (s *pageState) finalize() error {
	if err := s.checkWritable(); err != nil {
		return err
	}
	if s.open {
		return ErrPageInProgress
	}
	s.finalized = true
	return nil
}
