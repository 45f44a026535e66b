// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package compose

import "image"

// ImageOp is a recorded DrawImage call.
type ImageOp struct {
	// Size is the pixel size of the drawn image.
	Size       image.Point
	X, Y, W, H float64
}

// LineOp is a recorded DrawLine call.
type LineOp struct {
	X1, Y1, X2, Y2 float64
	Stroke         float64
}

// PageOps is everything drawn on one committed page.
type PageOps struct {
	Images []ImageOp
	Lines  []LineOp
}

// Recorder is an OutputWriter that keeps the drawn primitives in memory
// instead of producing a file. Image pixels are not retained.
type Recorder struct {
	// Committed holds the pages in commit order.
	Committed []PageOps

	// Finalized reports whether Finalize succeeded.
	Finalized bool

	current PageOps
	state   pageState
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) DrawImage(img image.Image, x, y, w, h float64) error {
	if err := r.state.checkWritable(); err != nil {
		return err
	}
	r.state.open = true
	r.current.Images = append(r.current.Images, ImageOp{Size: img.Bounds().Size(), X: x, Y: y, W: w, H: h})
	return nil
}

func (r *Recorder) DrawLine(x1, y1, x2, y2, stroke float64) error {
	if err := r.state.checkWritable(); err != nil {
		return err
	}
	r.state.open = true
	r.current.Lines = append(r.current.Lines, LineOp{X1: x1, Y1: y1, X2: x2, Y2: y2, Stroke: stroke})
	return nil
}

func (r *Recorder) CommitPage() error {
	if err := r.state.commit(); err != nil {
		return err
	}
	r.Committed = append(r.Committed, r.current)
	r.current = PageOps{}
	return nil
}

func (r *Recorder) Finalize() error {
	if err := r.state.finalize(); err != nil {
		return err
	}
	r.Finalized = true
	return nil
}

func (r *Recorder) Close() error {
	r.state.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (r *Recorder) Closed() bool { return r.state.closed }

func (r *Recorder) Pages() int { return r.state.committed }
