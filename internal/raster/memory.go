// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package raster

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"
)

// Memory is a Source backed by in-memory page images at zoom 1.0. Rendering
// at another zoom scales the stored image. It is used by tests and by
// callers that already hold decoded pages.
type Memory struct {
	Pages []image.Image

	// Renders counts RenderPage calls.
	Renders int

	closed bool
}

// NewMemory returns a Memory source holding pages.
func NewMemory(pages ...image.Image) *Memory {
	return &Memory{Pages: pages}
}

// SolidPage returns a w×h page filled with c.
func SolidPage(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: c}, image.Point{}, draw.Src)
	return img
}

func (m *Memory) PageCount() int { return len(m.Pages) }

func (m *Memory) RenderPage(ctx context.Context, index int, zoom float64) (image.Image, error) {
	if m.closed {
		return nil, errors.New("source is closed")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := checkIndex(index, len(m.Pages)); err != nil {
		return nil, err
	}
	m.Renders++

	src := m.Pages[index]
	if zoom == 1 {
		return src, nil
	}
	b := src.Bounds()
	w := int(math.Round(float64(b.Dx()) * zoom))
	h := int(math.Round(float64(b.Dy()) * zoom))
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), src, b, xdraw.Src, nil)
	return dst, nil
}

func (m *Memory) Close() error {
	m.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (m *Memory) Closed() bool { return m.closed }

// MemoryRasterizer opens Memory sources by path.
type MemoryRasterizer struct {
	Docs map[string]*Memory
}

func (r *MemoryRasterizer) Open(_ context.Context, path string) (Source, error) {
	doc, ok := r.Docs[path]
	if !ok {
		return nil, &SourceOpenError{Path: path, Err: errors.New("no such document")}
	}
	return doc, nil
}
