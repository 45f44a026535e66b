// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pairing

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/notesheet/internal/raster"
)

// gray returns a w×h page whose gray level encodes its page number.
func gray(page, w, h int) image.Image {
	return raster.SolidPage(w, h, color.Gray{Y: uint8(10 * (page + 1))})
}

func pages(n int) *raster.Memory {
	m := raster.NewMemory()
	for i := 0; i < n; i++ {
		m.Pages = append(m.Pages, gray(i, 60, 80))
	}
	return m
}

func collect(t *testing.T, it *Iterator) []Pair {
	t.Helper()
	var out []Pair
	for it.Next(context.Background()) {
		out = append(out, it.Pair())
	}
	require.NoError(t, it.Err())
	return out
}

func TestIterator_PairCounts(t *testing.T) {
	tests := []struct {
		pages     int
		wantPairs int
		wantBlank bool
	}{
		{pages: 0, wantPairs: 0},
		{pages: 1, wantPairs: 1, wantBlank: true},
		{pages: 2, wantPairs: 1},
		{pages: 3, wantPairs: 2, wantBlank: true},
		{pages: 4, wantPairs: 2},
		{pages: 7, wantPairs: 4, wantBlank: true},
	}
	for _, tt := range tests {
		src := pages(tt.pages)
		got := collect(t, New(src, 1))

		require.Len(t, got, tt.wantPairs, "pages=%d", tt.pages)
		assert.Equal(t, tt.wantPairs, Len(tt.pages))
		assert.Equal(t, tt.pages, src.Renders, "each page rendered exactly once")
		if tt.wantPairs > 0 {
			assert.Equal(t, tt.wantBlank, got[len(got)-1].Blank, "pages=%d", tt.pages)
		}
	}
}

func TestIterator_Order(t *testing.T) {
	got := collect(t, New(pages(5), 1))
	require.Len(t, got, 3)

	for i, p := range got {
		assert.Equal(t, i, p.Index)
		assert.Equal(t, 2*i, p.PrimaryPage)
		assert.Equal(t, color.Gray{Y: uint8(10 * (2*i + 1))}, color.GrayModel.Convert(p.Primary.At(0, 0)))
	}
	assert.Equal(t, 1, got[0].SecondaryPage)
	assert.Equal(t, 3, got[1].SecondaryPage)
	assert.Equal(t, -1, got[2].SecondaryPage)
}

func TestIterator_SecondaryMatchesPrimarySize(t *testing.T) {
	src := raster.NewMemory(
		gray(0, 100, 150),
		gray(1, 300, 200), // landscape partner gets squeezed
		gray(2, 90, 120),
	)
	got := collect(t, New(src, 2))
	require.Len(t, got, 2)

	for _, p := range got {
		assert.Equal(t, p.Primary.Bounds().Size(), p.Secondary.Bounds().Size())
	}
	assert.Equal(t, image.Pt(200, 300), got[0].Secondary.Bounds().Size())
}

func TestIterator_BlankPartner(t *testing.T) {
	got := collect(t, New(pages(3), 1))
	last := got[1]
	require.True(t, last.Blank)

	b := last.Secondary.Bounds()
	assert.Equal(t, last.Primary.Bounds().Size(), b.Size())
	for y := b.Min.Y; y < b.Max.Y; y += 7 {
		for x := b.Min.X; x < b.Max.X; x += 7 {
			r, g, bl, a := last.Secondary.At(x, y).RGBA()
			require.Equal(t, [4]uint32{0xffff, 0xffff, 0xffff, 0xffff}, [4]uint32{r, g, bl, a})
		}
	}
}

func TestIterator_NotRestartable(t *testing.T) {
	src := pages(2)
	it := New(src, 1)
	collect(t, it)

	assert.False(t, it.Next(context.Background()))
	assert.False(t, it.Next(context.Background()))
	assert.Equal(t, 2, src.Renders)
}

// failingSource fails to render one page.
type failingSource struct {
	*raster.Memory
	failAt int
}

func (f *failingSource) RenderPage(ctx context.Context, index int, zoom float64) (image.Image, error) {
	if index == f.failAt {
		return nil, errors.New("boom")
	}
	return f.Memory.RenderPage(ctx, index, zoom)
}

func TestIterator_RenderError(t *testing.T) {
	it := New(&failingSource{Memory: pages(4), failAt: 3}, 1)

	require.True(t, it.Next(context.Background()))
	require.False(t, it.Next(context.Background()))
	require.Error(t, it.Err())
	assert.Contains(t, it.Err().Error(), "rendering page 3")
	assert.False(t, it.Next(context.Background()))
}

func TestIterator_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	it := New(pages(2), 1)
	assert.False(t, it.Next(ctx))
	assert.ErrorIs(t, it.Err(), context.Canceled)
}

func TestResizeTo(t *testing.T) {
	src := gray(0, 40, 10)
	same := ResizeTo(src, image.Pt(40, 10))
	assert.Same(t, src.(*image.RGBA), same.(*image.RGBA))

	out := ResizeTo(src, image.Pt(13, 27))
	assert.Equal(t, image.Pt(13, 27), out.Bounds().Size())
	assert.Equal(t, color.GrayModel.Convert(src.At(0, 0)), color.GrayModel.Convert(out.At(6, 13)))
}
