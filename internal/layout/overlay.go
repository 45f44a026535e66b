// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package layout

import "github.com/pdiddy/notesheet/pkg/types"

// LineKind classifies an overlay line.
type LineKind int

const (
	// Divider separates the images from the writing area.
	Divider LineKind = iota
	// Structural lines mark the midline and the bottom margin.
	Structural
	// Horizontal writing lines.
	Horizontal
	// Vertical grid lines.
	Vertical
)

func (k LineKind) String() string {
	switch k {
	case Divider:
		return "divider"
	case Structural:
		return "structural"
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	}
	return "unknown"
}

// Line is a straight segment drawn on the canvas.
type Line struct {
	X1, Y1, X2, Y2 float64
	Stroke         float64
	Kind           LineKind
}

// Spacing returns the distance between rule lines. Integer division keeps
// the last line on the canvas edge or inside it.
func Spacing(canvasHeight, lineCount int) int {
	if lineCount <= 0 {
		return 0
	}
	return canvasHeight / lineCount
}

// ComputeOverlay returns the lines drawn on a page whose images end at
// startX.
//
// Every page gets the divider at startX and two structural lines (the
// horizontal midline and the bottom margin), whatever the rule. The margin
// is inset by half its stroke so the full width stays on the page. Lined and
// grid pages add lineCount horizontal lines at k*spacing for k = 1..lineCount
// from startX to the right edge; grid pages also add vertical lines every
// spacing units from startX+spacing up to the right edge. When the spacing
// rounds down to zero no rule lines are drawn.
func ComputeOverlay(rule types.LayoutRule, startX, canvasWidth, canvasHeight, lineCount int) []Line {
	w, h := float64(canvasWidth), float64(canvasHeight)
	x0 := float64(startX)

	lines := []Line{
		{X1: x0, Y1: 0, X2: x0, Y2: h, Stroke: DividerStroke, Kind: Divider},
		{X1: 0, Y1: h / 2, X2: w, Y2: h / 2, Stroke: StructuralStroke, Kind: Structural},
		{X1: 0, Y1: h - StructuralStroke/2, X2: w, Y2: h - StructuralStroke/2, Stroke: StructuralStroke, Kind: Structural},
	}

	spacing := Spacing(canvasHeight, lineCount)
	if !rule.HasHorizontal() || spacing == 0 {
		return lines
	}

	for k := 1; k <= lineCount; k++ {
		y := float64(k * spacing)
		lines = append(lines, Line{X1: x0, Y1: y, X2: w, Y2: y, Stroke: RuleStroke, Kind: Horizontal})
	}

	if rule.HasVertical() {
		for x := startX + spacing; x <= canvasWidth; x += spacing {
			fx := float64(x)
			lines = append(lines, Line{X1: fx, Y1: 0, X2: fx, Y2: h, Stroke: RuleStroke, Kind: Vertical})
		}
	}
	return lines
}

// Count returns how many lines of kind are in lines.
func Count(lines []Line, kind LineKind) int {
	n := 0
	for _, l := range lines {
		if l.Kind == kind {
			n++
		}
	}
	return n
}
