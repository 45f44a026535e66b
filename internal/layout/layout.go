// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package layout computes the geometry of an output page: where the two
// page images go and which lines are drawn beside them.
//
// Coordinates are in canvas units with the origin at the top-left corner
// and y growing downwards. All results are deterministic functions of
// their inputs.
package layout

import (
	"fmt"
	"image"
	"math"

	"github.com/pdiddy/notesheet/pkg/types"
)

// Stroke widths in canvas units.
const (
	RuleStroke       = 1.0
	DividerStroke    = 2.0
	StructuralStroke = 4.0
)

// DefaultLineCount is the number of writing lines per page.
const DefaultLineCount = 30

// Canvas is the size of an output page.
type Canvas struct {
	Width  int
	Height int
}

// DefaultCanvas is the landscape page used when none is configured.
var DefaultCanvas = Canvas{Width: 1800, Height: 1080}

// HalfHeight is the height available to each page image.
func (c Canvas) HalfHeight() float64 { return float64(c.Height) / 2 }

// Validate reports a non-positive canvas dimension or an odd height. The
// two halves only tile the canvas exactly when the height is even.
func (c Canvas) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("canvas must be positive, got %dx%d", c.Width, c.Height)
	}
	if c.Height%2 != 0 {
		return fmt.Errorf("canvas height must be even, got %d", c.Height)
	}
	return nil
}

// Fit scales a primaryWidth×primaryHeight image to targetHalfHeight,
// preserving its aspect ratio. The returned height is always the rounded
// target so two halves tile the canvas without a gap; the width is never
// negative. A degenerate input yields a zero width.
func Fit(primaryWidth, primaryHeight int, targetHalfHeight float64) (width, height int) {
	height = int(math.Round(targetHalfHeight))
	if height < 0 {
		height = 0
	}
	if primaryWidth <= 0 || primaryHeight <= 0 {
		return 0, height
	}
	scale := targetHalfHeight / float64(primaryHeight)
	width = int(math.Round(float64(primaryWidth) * scale))
	if width < 0 {
		width = 0
	}
	return width, height
}

// Placement is where the two images of a pair are drawn. Both images use
// the same Width and Height.
type Placement struct {
	Width     int
	Height    int
	Primary   image.Point
	Secondary image.Point
}

// Place positions an image pair of the given native size: the primary is
// flush to the top, the secondary flush to the bottom, both at x = 0.
func Place(imageWidth, imageHeight int, c Canvas) Placement {
	w, h := Fit(imageWidth, imageHeight, c.HalfHeight())
	return Placement{
		Width:     w,
		Height:    h,
		Primary:   image.Pt(0, 0),
		Secondary: image.Pt(0, c.Height-h),
	}
}

// Page is everything drawn on one output page.
type Page struct {
	Placement
	Lines []Line
}

// Compose lays out one output page for images of the given native size.
// The overlay starts at the right edge of the images.
func Compose(imageSize image.Point, rule types.LayoutRule, c Canvas, lineCount int) Page {
	pl := Place(imageSize.X, imageSize.Y, c)
	return Page{
		Placement: pl,
		Lines:     ComputeOverlay(rule, pl.Width, c.Width, c.Height, lineCount),
	}
}
