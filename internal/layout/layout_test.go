// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package layout

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/notesheet/pkg/types"
)

func TestFit(t *testing.T) {
	tests := []struct {
		name         string
		w, h         int
		target       float64
		wantW, wantH int
	}{
		{name: "letter at zoom 2", w: 1224, h: 1584, target: 540, wantW: 417, wantH: 540},
		{name: "square", w: 500, h: 500, target: 540, wantW: 540, wantH: 540},
		{name: "landscape", w: 2000, h: 1000, target: 540, wantW: 1080, wantH: 540},
		{name: "upscale", w: 10, h: 20, target: 540, wantW: 270, wantH: 540},
		{name: "fractional target", w: 100, h: 300, target: 100.4, wantW: 33, wantH: 100},
		{name: "zero height", w: 100, h: 0, target: 540, wantW: 0, wantH: 540},
		{name: "zero width", w: 0, h: 100, target: 540, wantW: 0, wantH: 540},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := Fit(tt.w, tt.h, tt.target)
			assert.Equal(t, tt.wantW, w)
			assert.Equal(t, tt.wantH, h)
		})
	}
}

func TestFit_PreservesAspect(t *testing.T) {
	for w := 1; w < 3000; w += 97 {
		for h := 1; h < 3000; h += 89 {
			gotW, gotH := Fit(w, h, 540)
			require.Equal(t, 540, gotH)
			require.GreaterOrEqual(t, gotW, 0)
			// Rounding moves the width by at most half a unit.
			want := float64(w) / float64(h) * 540
			require.LessOrEqual(t, math.Abs(float64(gotW)-want), 0.5+1e-9, "w=%d h=%d", w, h)
		}
	}
}

func TestPlace(t *testing.T) {
	pl := Place(1224, 1584, DefaultCanvas)

	assert.Equal(t, 417, pl.Width)
	assert.Equal(t, 540, pl.Height)
	assert.Equal(t, image.Pt(0, 0), pl.Primary)
	assert.Equal(t, image.Pt(0, 540), pl.Secondary)
	// The halves tile the canvas exactly.
	assert.Equal(t, DefaultCanvas.Height, pl.Secondary.Y+pl.Height)
}

func TestPlace_HalvesMeetAtMidline(t *testing.T) {
	for _, h := range []int{2, 360, 600, 1080, 1584} {
		c := Canvas{Width: 800, Height: h}
		require.NoError(t, c.Validate())
		pl := Place(100, 100, c)
		assert.Equal(t, pl.Primary.Y+pl.Height, pl.Secondary.Y, "height %d: no gap or overlap", h)
		assert.Equal(t, c.Height, pl.Secondary.Y+pl.Height, "height %d", h)
		assert.Equal(t, c.HalfHeight(), float64(pl.Secondary.Y), "height %d: midline on the seam", h)
	}
}

func TestCanvas_Validate(t *testing.T) {
	tests := []struct {
		name    string
		canvas  Canvas
		wantErr bool
	}{
		{name: "default", canvas: DefaultCanvas},
		{name: "zero width", canvas: Canvas{Width: 0, Height: 1080}, wantErr: true},
		{name: "negative height", canvas: Canvas{Width: 1800, Height: -2}, wantErr: true},
		{name: "odd height", canvas: Canvas{Width: 800, Height: 601}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.canvas.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestComputeOverlay_Rules(t *testing.T) {
	tests := []struct {
		rule           types.LayoutRule
		wantHorizontal int
		wantVertical   int
	}{
		{rule: types.RuleUnruled, wantHorizontal: 0, wantVertical: 0},
		{rule: types.RuleLined, wantHorizontal: 30, wantVertical: 0},
		{rule: types.RuleGrid, wantHorizontal: 30, wantVertical: 38},
	}
	for _, tt := range tests {
		t.Run(string(tt.rule), func(t *testing.T) {
			lines := ComputeOverlay(tt.rule, 417, 1800, 1080, 30)

			assert.Equal(t, 1, Count(lines, Divider))
			assert.Equal(t, 2, Count(lines, Structural))
			assert.Equal(t, tt.wantHorizontal, Count(lines, Horizontal))
			assert.Equal(t, tt.wantVertical, Count(lines, Vertical))
			assert.Len(t, lines, 3+tt.wantHorizontal+tt.wantVertical)
		})
	}
}

func TestComputeOverlay_Geometry(t *testing.T) {
	lines := ComputeOverlay(types.RuleGrid, 417, 1800, 1080, 30)

	div := lines[0]
	assert.Equal(t, Line{X1: 417, Y1: 0, X2: 417, Y2: 1080, Stroke: DividerStroke, Kind: Divider}, div)

	var sawMid, sawMargin bool
	for _, l := range lines {
		assert.GreaterOrEqual(t, l.X1, 0.0)
		assert.LessOrEqual(t, l.X2, 1800.0)
		assert.GreaterOrEqual(t, l.Y1, 0.0)
		assert.LessOrEqual(t, l.Y2, 1080.0)

		switch l.Kind {
		case Structural:
			assert.Equal(t, StructuralStroke, l.Stroke)
			assert.Greater(t, l.Stroke, RuleStroke)
			assert.Equal(t, 0.0, l.X1)
			assert.Equal(t, 1800.0, l.X2)
			assert.Equal(t, l.Y1, l.Y2)
			// The whole stroke is on the page.
			assert.GreaterOrEqual(t, l.Y1-l.Stroke/2, 0.0)
			assert.LessOrEqual(t, l.Y1+l.Stroke/2, 1080.0)
			sawMid = sawMid || l.Y1 == 540
			sawMargin = sawMargin || l.Y1 == 1078
		case Horizontal:
			assert.Equal(t, 417.0, l.X1)
			assert.Equal(t, 1800.0, l.X2)
			assert.Equal(t, l.Y1, l.Y2)
			assert.Zero(t, math.Mod(l.Y1, 36))
		case Vertical:
			assert.Equal(t, 0.0, l.Y1)
			assert.Equal(t, 1080.0, l.Y2)
			assert.Zero(t, math.Mod(l.X1-417, 36))
			assert.Greater(t, l.X1, 417.0)
		}
	}
	assert.True(t, sawMid, "midline")
	assert.True(t, sawMargin, "bottom margin")

	last := lines[3+29]
	assert.Equal(t, 1080.0, last.Y1, "last writing line sits on the bottom edge")
}

func TestComputeOverlay_FlooredSpacing(t *testing.T) {
	// 1000/30 floors to 33, so the last line lands at 990 rather than past
	// the bottom edge.
	lines := ComputeOverlay(types.RuleLined, 100, 1500, 1000, 30)
	require.Equal(t, 30, Count(lines, Horizontal))
	for _, l := range lines {
		assert.LessOrEqual(t, l.Y2, 1000.0)
	}
	assert.Equal(t, 990.0, lines[len(lines)-1].Y1)
}

func TestComputeOverlay_Degenerate(t *testing.T) {
	assert.Len(t, ComputeOverlay(types.RuleGrid, 0, 100, 100, 0), 3, "no lines requested")
	assert.Len(t, ComputeOverlay(types.RuleGrid, 0, 100, 10, 30), 3, "spacing floors to zero")
}

func TestComputeOverlay_Deterministic(t *testing.T) {
	a := ComputeOverlay(types.RuleGrid, 300, 1800, 1080, 30)
	b := ComputeOverlay(types.RuleGrid, 300, 1800, 1080, 30)
	assert.Equal(t, a, b)
}

func TestCompose(t *testing.T) {
	p := Compose(image.Pt(1224, 1584), types.RuleLined, DefaultCanvas, DefaultLineCount)
	assert.Equal(t, 417, p.Width)
	assert.Equal(t, 417.0, p.Lines[0].X1)
	assert.Equal(t, 30, Count(p.Lines, Horizontal))
}

func TestParseBorder(t *testing.T) {
	b, err := ParseBorder(0, "not a color")
	require.NoError(t, err)
	assert.False(t, b.Enabled())

	b, err = ParseBorder(6, "#ff0000")
	require.NoError(t, err)
	assert.True(t, b.Enabled())
	assert.Equal(t, color.RGBA{R: 0xff, A: 0xff}, b.Color)

	_, err = ParseBorder(6, "red")
	assert.Error(t, err)
	_, err = ParseBorder(-1, "#ff0000")
	assert.Error(t, err)
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#a5b4d4")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 0xa5, G: 0xb4, B: 0xd4, A: 0xff}, c)

	_, err = ParseColor("a5b4d4")
	assert.Error(t, err)
}

func TestApplyBorder(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 20, 10))
	for i := range src.Pix {
		src.Pix[i] = 0xff
	}
	red := color.RGBA{R: 0xff, A: 0xff}

	out := ApplyBorder(src, Border{Width: 2, Color: red})
	assert.Equal(t, src.Bounds().Size(), out.Bounds().Size())

	for _, p := range []image.Point{{0, 0}, {1, 5}, {19, 9}, {10, 1}, {18, 4}} {
		assert.Equal(t, red, color.RGBAModel.Convert(out.At(p.X, p.Y)), "edge %v", p)
	}
	assert.Equal(t, color.RGBA{0xff, 0xff, 0xff, 0xff}, color.RGBAModel.Convert(out.At(10, 5)))
	// The input is not modified.
	assert.Equal(t, color.RGBA{0xff, 0xff, 0xff, 0xff}, src.RGBAAt(0, 0))

	assert.Same(t, src, ApplyBorder(src, Border{}).(*image.RGBA))
}
