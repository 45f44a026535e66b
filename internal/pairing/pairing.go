// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pairing groups the pages of a source document two at a time.
//
// Pairs are produced lazily: each call to Next renders exactly the pages of
// one pair, and nothing is cached, so an Iterator is consumed once and is
// not restartable. When the page count is odd the last pair's secondary is
// a solid white image of the primary's size.
package pairing

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	xdraw "golang.org/x/image/draw"

	"github.com/pdiddy/notesheet/internal/raster"
)

// BlankColor fills the synthetic partner of an unpaired last page.
var BlankColor color.Color = color.White

// Pair is two consecutive source pages, or one page and a blank.
type Pair struct {
	// Index is the 0-based position of the pair in the sequence.
	Index int

	// PrimaryPage and SecondaryPage are source page indices. SecondaryPage
	// is -1 when Blank is true.
	PrimaryPage   int
	SecondaryPage int

	Primary   image.Image
	Secondary image.Image

	// Blank reports that Secondary is synthetic.
	Blank bool
}

// Len returns the number of pairs produced for pageCount pages.
func Len(pageCount int) int {
	if pageCount <= 0 {
		return 0
	}
	return (pageCount + 1) / 2
}

// Iterator walks the pairs of a source.
type Iterator struct {
	src  raster.Source
	zoom float64

	next int // next primary page index
	pair Pair
	err  error
	done bool
}

// New returns an iterator over the pairs of src rendered at zoom.
func New(src raster.Source, zoom float64) *Iterator {
	return &Iterator{src: src, zoom: zoom}
}

// Next renders the next pair. It returns false when the source is
// exhausted or an error occurred; Err distinguishes the two. After Next
// returns false it always returns false.
func (it *Iterator) Next(ctx context.Context) bool {
	if it.done {
		return false
	}
	if it.next >= it.src.PageCount() {
		it.finish(nil)
		return false
	}
	if err := ctx.Err(); err != nil {
		it.finish(err)
		return false
	}

	i := it.next
	primary, err := it.src.RenderPage(ctx, i, it.zoom)
	if err != nil {
		it.finish(fmt.Errorf("rendering page %d: %w", i, err))
		return false
	}

	p := Pair{
		Index:         i / 2,
		PrimaryPage:   i,
		SecondaryPage: -1,
		Primary:       primary,
	}

	if i+1 < it.src.PageCount() {
		secondary, err := it.src.RenderPage(ctx, i+1, it.zoom)
		if err != nil {
			it.finish(fmt.Errorf("rendering page %d: %w", i+1, err))
			return false
		}
		p.SecondaryPage = i + 1
		p.Secondary = ResizeTo(secondary, primary.Bounds().Size())
	} else {
		p.Secondary = Blank(primary.Bounds().Size())
		p.Blank = true
	}

	it.pair = p
	it.next = i + 2
	return true
}

// Pair returns the pair produced by the last successful Next.
func (it *Iterator) Pair() Pair { return it.pair }

// Err returns the error that stopped iteration, if any.
func (it *Iterator) Err() error { return it.err }

func (it *Iterator) finish(err error) {
	it.done = true
	it.err = err
	it.pair = Pair{}
}

// ResizeTo returns img scaled to exactly size with bilinear resampling.
// The aspect ratio is not preserved. An image already of that size is
// returned unchanged.
func ResizeTo(img image.Image, size image.Point) image.Image {
	b := img.Bounds()
	if b.Size() == size && b.Min == (image.Point{}) {
		return img
	}
	dst := image.NewRGBA(image.Rectangle{Max: size})
	xdraw.BiLinear.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}

// Blank returns a solid BlankColor image of the given size.
func Blank(size image.Point) *image.RGBA {
	img := image.NewRGBA(image.Rectangle{Max: size})
	draw.Draw(img, img.Bounds(), &image.Uniform{C: BlankColor}, image.Point{}, draw.Src)
	return img
}
