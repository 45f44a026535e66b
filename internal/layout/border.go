// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package layout

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/lucasb-eyer/go-colorful"
)

// Border is an optional colored strip painted inside the edges of each
// half-image. A zero Width disables it.
type Border struct {
	Width int
	Color color.Color
}

// Enabled reports whether the border is drawn.
func (b Border) Enabled() bool { return b.Width > 0 && b.Color != nil }

// ParseBorder builds a Border from a width and a hex color like "#a5b4d4".
func ParseBorder(width int, hex string) (Border, error) {
	if width < 0 {
		return Border{}, fmt.Errorf("border width must not be negative, got %d", width)
	}
	if width == 0 {
		return Border{}, nil
	}
	c, err := ParseColor(hex)
	if err != nil {
		return Border{}, fmt.Errorf("parsing border color: %w", err)
	}
	return Border{Width: width, Color: c}, nil
}

// ParseColor converts a hex RGB string into an opaque color.
func ParseColor(hex string) (color.RGBA, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}, nil
}

// ApplyBorder returns a copy of img with the border painted over its outer
// Width pixels. The image size does not change. img is returned as is when
// the border is disabled.
func ApplyBorder(img image.Image, b Border) image.Image {
	if !b.Enabled() {
		return img
	}
	bounds := img.Bounds()
	out := image.NewRGBA(image.Rectangle{Max: bounds.Size()})
	draw.Draw(out, out.Bounds(), img, bounds.Min, draw.Src)

	w := min(b.Width, out.Rect.Dx(), out.Rect.Dy())
	r := out.Rect
	fill := &image.Uniform{C: b.Color}
	for _, strip := range []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+w), // top
		image.Rect(r.Min.X, r.Max.Y-w, r.Max.X, r.Max.Y), // bottom
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+w, r.Max.Y), // left
		image.Rect(r.Max.X-w, r.Min.Y, r.Max.X, r.Max.Y), // right
	} {
		draw.Draw(out, strip, fill, image.Point{}, draw.Src)
	}
	return out
}
