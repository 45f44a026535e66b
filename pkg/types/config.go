// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "fmt"

// RasterBackend identifies the tool that renders source pages to images.
type RasterBackend string

const (
	BackendPdftoppm    RasterBackend = "pdftoppm"
	BackendGhostscript RasterBackend = "ghostscript"
	BackendContainer   RasterBackend = "container"
)

// ImageFormat selects how page images are embedded in the output PDF.
type ImageFormat string

const (
	ImagePNG  ImageFormat = "png"
	ImageJPEG ImageFormat = "jpeg"
)

// CanvasConfig is the size of every output page in PDF points.
type CanvasConfig struct {
	Width  int `json:"width" yaml:"width" mapstructure:"width"`
	Height int `json:"height" yaml:"height" mapstructure:"height"`
}

// RasterConfig holds settings for rendering source pages.
type RasterConfig struct {
	// Backend selects pdftoppm, ghostscript, or container.
	Backend RasterBackend `json:"backend" yaml:"backend" mapstructure:"backend"`

	// Zoom scales both axes; 1.0 renders at 72 DPI.
	Zoom float64 `json:"zoom" yaml:"zoom" mapstructure:"zoom"`

	// Image is the container image used by the container backend.
	Image string `json:"image" yaml:"image" mapstructure:"image"`
}

// BorderConfig describes the optional strip painted around each half-image.
// A zero Width disables it.
type BorderConfig struct {
	Width int `json:"width" yaml:"width" mapstructure:"width"`

	// Color is a hex RGB string such as "#a5b4d4".
	Color string `json:"color" yaml:"color" mapstructure:"color"`
}

// Config groups every setting of a conversion run.
type Config struct {
	Canvas CanvasConfig `json:"canvas" yaml:"canvas" mapstructure:"canvas"`
	Raster RasterConfig `json:"rasterizer" yaml:"rasterizer" mapstructure:"rasterizer"`
	Border BorderConfig `json:"border" yaml:"border" mapstructure:"border"`

	// Rule is the default overlay when none is given on the command line.
	Rule LayoutRule `json:"rule" yaml:"rule" mapstructure:"rule"`

	// Lines is the number of horizontal writing lines per page.
	Lines int `json:"lines" yaml:"lines" mapstructure:"lines"`

	// LineColor is the hex RGB color of every overlay line.
	LineColor string `json:"line_color" yaml:"line_color" mapstructure:"line_color"`

	// ImageFormat selects png or jpeg page images in the output.
	ImageFormat ImageFormat `json:"image_format" yaml:"image_format" mapstructure:"image_format"`

	// JPEGQuality is used when ImageFormat is jpeg (1-100).
	JPEGQuality int `json:"jpeg_quality" yaml:"jpeg_quality" mapstructure:"jpeg_quality"`

	// RejectEmpty makes a source with zero pages an error instead of
	// producing an empty output document.
	RejectEmpty bool `json:"reject_empty" yaml:"reject_empty" mapstructure:"reject_empty"`

	// HistoryDir holds the run history database.
	HistoryDir string `json:"history_dir" yaml:"history_dir" mapstructure:"history_dir"`
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Canvas: CanvasConfig{Width: 1800, Height: 1080},
		Raster: RasterConfig{
			Backend: BackendPdftoppm,
			Zoom:    2.0,
			Image:   "poppler:latest",
		},
		Border:      BorderConfig{Color: "#a5b4d4"},
		Rule:        RuleLined,
		Lines:       30,
		LineColor:   "#a5b4d4",
		ImageFormat: ImagePNG,
		JPEGQuality: 90,
		HistoryDir:  ".notesheet",
	}
}

// Validate checks that the configuration can drive a run.
func (c Config) Validate() error {
	if c.Canvas.Width <= 0 || c.Canvas.Height <= 0 {
		return fmt.Errorf("canvas must be positive, got %dx%d", c.Canvas.Width, c.Canvas.Height)
	}
	if c.Canvas.Height%2 != 0 {
		return fmt.Errorf("canvas height must be even, got %d", c.Canvas.Height)
	}
	if c.Raster.Zoom <= 0 {
		return fmt.Errorf("zoom must be positive, got %g", c.Raster.Zoom)
	}
	if c.Lines < 0 {
		return fmt.Errorf("lines must not be negative, got %d", c.Lines)
	}
	if c.Border.Width < 0 {
		return fmt.Errorf("border width must not be negative, got %d", c.Border.Width)
	}
	switch c.Raster.Backend {
	case BackendPdftoppm, BackendGhostscript, BackendContainer:
	default:
		return fmt.Errorf("unknown rasterizer backend %q: use pdftoppm, ghostscript, or container", c.Raster.Backend)
	}
	switch c.ImageFormat {
	case ImagePNG, ImageJPEG:
	default:
		return fmt.Errorf("unknown image format %q: use png or jpeg", c.ImageFormat)
	}
	if !c.Rule.Valid() {
		return fmt.Errorf("unknown layout rule %q", c.Rule)
	}
	return nil
}
