// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline converts a source document into an annotation sheet.
//
// A run opens the source, walks its page pairs, lays each pair out on a
// fresh output page, and finalizes the output once the source is
// exhausted. The run is strictly sequential and holds one pair in memory
// at a time. Any error aborts the run before Finalize, so a failed or
// cancelled run never produces an output file. The source and the writer
// are released on every path.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/pdiddy/notesheet/internal/compose"
	"github.com/pdiddy/notesheet/internal/layout"
	"github.com/pdiddy/notesheet/internal/pairing"
	"github.com/pdiddy/notesheet/internal/raster"
	"github.com/pdiddy/notesheet/pkg/types"
)

// ErrEmptySource is returned when the source has no pages and the run
// was configured to reject empty documents.
var ErrEmptySource = errors.New("source document has no pages")

// ValidationError reports an unusable option.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Options selects what a run converts and how.
type Options struct {
	Source      string
	Destination string

	Rule      types.LayoutRule
	Canvas    layout.Canvas
	Zoom      float64
	LineCount int
	Border    layout.Border

	// RejectEmpty turns a zero-page source into ErrEmptySource. Otherwise
	// such a source yields a valid document with no pages.
	RejectEmpty bool
}

// Validate checks the options before anything is opened.
func (o Options) Validate() error {
	switch {
	case o.Source == "":
		return &ValidationError{Field: "source", Reason: "path is empty"}
	case o.Destination == "":
		return &ValidationError{Field: "destination", Reason: "path is empty"}
	case filepath.Clean(o.Source) == filepath.Clean(o.Destination):
		return &ValidationError{Field: "destination", Reason: "must differ from the source"}
	case !o.Rule.Valid():
		return &ValidationError{Field: "rule", Reason: fmt.Sprintf("unknown rule %q", o.Rule)}
	case o.Zoom <= 0:
		return &ValidationError{Field: "zoom", Reason: fmt.Sprintf("must be positive, got %g", o.Zoom)}
	case o.LineCount < 0:
		return &ValidationError{Field: "line count", Reason: fmt.Sprintf("must not be negative, got %d", o.LineCount)}
	}
	if err := o.Canvas.Validate(); err != nil {
		return &ValidationError{Field: "canvas", Reason: err.Error()}
	}
	return nil
}

// WriterFactory creates the output writer for a destination.
type WriterFactory func(destination string, c layout.Canvas) (compose.OutputWriter, error)

// Event describes one committed output page.
type Event struct {
	// Pair is the 0-based index of the committed page; Pairs is the total.
	Pair  int
	Pairs int

	PrimaryPage   int
	SecondaryPage int
	Blank         bool

	// Page is the geometry drawn on the committed page.
	Page layout.Page
}

// Result summarizes a successful run.
type Result struct {
	Source      string
	Destination string
	Rule        types.LayoutRule
	SourcePages int
	Pages       int
	Duration    time.Duration
}

// Pipeline wires a rasterizer to an output writer.
type Pipeline struct {
	Rasterizer raster.Rasterizer
	NewWriter  WriterFactory

	// Progress, if set, is called after each committed page.
	Progress func(Event)
}

// Run converts opts.Source into opts.Destination.
func (p *Pipeline) Run(ctx context.Context, opts Options) (Result, error) {
	start := time.Now()
	if err := opts.Validate(); err != nil {
		return Result{}, err
	}

	src, err := p.Rasterizer.Open(ctx, opts.Source)
	if err != nil {
		return Result{}, err
	}
	defer src.Close()

	res := Result{
		Source:      opts.Source,
		Destination: opts.Destination,
		Rule:        opts.Rule,
		SourcePages: src.PageCount(),
	}
	if res.SourcePages == 0 && opts.RejectEmpty {
		return res, fmt.Errorf("%s: %w", opts.Source, ErrEmptySource)
	}

	w, err := p.NewWriter(opts.Destination, opts.Canvas)
	if err != nil {
		var owe *compose.OutputWriteError
		if !errors.As(err, &owe) {
			err = &compose.OutputWriteError{Op: "creating", Path: opts.Destination, Err: err}
		}
		return res, err
	}
	defer w.Close()

	total := pairing.Len(res.SourcePages)
	it := pairing.New(src, opts.Zoom)
	for it.Next(ctx) {
		pair := it.Pair()
		page, err := drawPair(w, pair, opts)
		if err != nil {
			return res, fmt.Errorf("composing output page %d: %w", pair.Index+1, err)
		}
		if err := w.CommitPage(); err != nil {
			return res, fmt.Errorf("committing output page %d: %w", pair.Index+1, err)
		}
		res.Pages = w.Pages()

		if p.Progress != nil {
			p.Progress(Event{
				Pair:          pair.Index,
				Pairs:         total,
				PrimaryPage:   pair.PrimaryPage,
				SecondaryPage: pair.SecondaryPage,
				Blank:         pair.Blank,
				Page:          page,
			})
		}
	}
	if err := it.Err(); err != nil {
		return res, err
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}

	if err := w.Finalize(); err != nil {
		return res, err
	}
	res.Pages = w.Pages()
	res.Duration = time.Since(start)
	return res, nil
}

// drawPair places both images of pair and the overlay on the current page.
func drawPair(w compose.OutputWriter, pair pairing.Pair, opts Options) (layout.Page, error) {
	page := layout.Compose(pair.Primary.Bounds().Size(), opts.Rule, opts.Canvas, opts.LineCount)
	if page.Width == 0 {
		return page, fmt.Errorf("page %d rendered to an empty image", pair.PrimaryPage)
	}

	width, height := float64(page.Width), float64(page.Height)
	primary := layout.ApplyBorder(pair.Primary, opts.Border)
	if err := w.DrawImage(primary, float64(page.Primary.X), float64(page.Primary.Y), width, height); err != nil {
		return page, err
	}
	secondary := layout.ApplyBorder(pair.Secondary, opts.Border)
	if err := w.DrawImage(secondary, float64(page.Secondary.X), float64(page.Secondary.Y), width, height); err != nil {
		return page, err
	}

	for _, l := range page.Lines {
		if err := w.DrawLine(l.X1, l.Y1, l.X2, l.Y2, l.Stroke); err != nil {
			return page, err
		}
	}
	return page, nil
}
