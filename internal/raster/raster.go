// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package raster opens source PDFs and renders their pages to images.
// Rendering is delegated to an external tool (pdftoppm, ghostscript, or
// pdftoppm inside a container); page counting and validation use pdfcpu.
package raster

import (
	"context"
	"fmt"
	"image"
	"os"
	"strconv"

	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/pdiddy/notesheet/pkg/types"
)

// pointsPerInch is the PDF user-space resolution at zoom 1.0.
const pointsPerInch = 72.0

func init() {
	// pdfcpu would otherwise create a configuration directory under the
	// user's config home on first use.
	pdfapi.DisableConfigDir()
}

// Source is an opened, read-only paginated document.
type Source interface {
	// PageCount returns the number of pages; indices run from 0 to
	// PageCount()-1.
	PageCount() int

	// RenderPage renders page index at the given zoom. It returns a
	// *PageIndexError when index is out of range.
	RenderPage(ctx context.Context, index int, zoom float64) (image.Image, error)

	// Close releases the document. Calling Close more than once is safe.
	Close() error
}

// Rasterizer opens source documents for rendering.
type Rasterizer interface {
	// Open validates the file at path and returns a Source for it. Any
	// failure is reported as a *SourceOpenError.
	Open(ctx context.Context, path string) (Source, error)
}

// SourceOpenError reports that a source document could not be opened.
type SourceOpenError struct {
	Path string
	Err  error
}

func (e *SourceOpenError) Error() string {
	return fmt.Sprintf("opening source %s: %v", e.Path, e.Err)
}

func (e *SourceOpenError) Unwrap() error { return e.Err }

// PageIndexError reports a render request outside [0, PageCount).
type PageIndexError struct {
	Index     int
	PageCount int
}

func (e *PageIndexError) Error() string {
	return fmt.Sprintf("page index %d out of range [0, %d)", e.Index, e.PageCount)
}

// RenderError reports a failure of the rendering tool for one page.
type RenderError struct {
	Path  string
	Index int
	Err   error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("rendering page %d of %s: %v", e.Index, e.Path, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// New returns the Rasterizer for cfg.Backend. The container backend
// detects a container runtime and verifies cfg.Image exists.
func New(ctx context.Context, cfg types.RasterConfig) (Rasterizer, error) {
	switch cfg.Backend {
	case types.BackendPdftoppm, "":
		return NewPdftoppm(), nil
	case types.BackendGhostscript:
		return NewGhostscript(), nil
	case types.BackendContainer:
		return NewContainer(ctx, cfg.Image)
	default:
		return nil, fmt.Errorf("unknown rasterizer backend %q", cfg.Backend)
	}
}

// DPI converts a zoom factor into the resolution passed to renderers.
func DPI(zoom float64) float64 {
	return pointsPerInch * zoom
}

func formatDPI(zoom float64) string {
	return strconv.FormatFloat(DPI(zoom), 'f', -1, 64)
}

// CountPages validates the PDF at path and returns its page count.
func CountPages(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, &SourceOpenError{Path: path, Err: err}
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	pctx, err := pdfapi.ReadValidateAndOptimize(f, conf)
	if err != nil {
		return 0, &SourceOpenError{Path: path, Err: fmt.Errorf("not a valid PDF: %w", err)}
	}
	if err := pctx.EnsurePageCount(); err != nil {
		return 0, &SourceOpenError{Path: path, Err: fmt.Errorf("reading page count: %w", err)}
	}
	return pctx.PageCount, nil
}

func checkIndex(index, pageCount int) error {
	if index < 0 || index >= pageCount {
		return &PageIndexError{Index: index, PageCount: pageCount}
	}
	return nil
}
