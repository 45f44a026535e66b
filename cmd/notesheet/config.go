// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/pdiddy/notesheet/internal/compose"
	"github.com/pdiddy/notesheet/internal/layout"
	"github.com/pdiddy/notesheet/internal/pipeline"
	"github.com/pdiddy/notesheet/pkg/types"
)

// setDefaults registers every config key so environment variables apply
// even without a config file.
func setDefaults(v *viper.Viper) {
	d := types.DefaultConfig()
	v.SetDefault("canvas.width", d.Canvas.Width)
	v.SetDefault("canvas.height", d.Canvas.Height)
	v.SetDefault("rasterizer.backend", string(d.Raster.Backend))
	v.SetDefault("rasterizer.zoom", d.Raster.Zoom)
	v.SetDefault("rasterizer.image", d.Raster.Image)
	v.SetDefault("border.width", d.Border.Width)
	v.SetDefault("border.color", d.Border.Color)
	v.SetDefault("rule", string(d.Rule))
	v.SetDefault("lines", d.Lines)
	v.SetDefault("line_color", d.LineColor)
	v.SetDefault("image_format", string(d.ImageFormat))
	v.SetDefault("jpeg_quality", d.JPEGQuality)
	v.SetDefault("reject_empty", d.RejectEmpty)
	v.SetDefault("history_dir", d.HistoryDir)
}

// loadConfig resolves the effective configuration from v.
func loadConfig(v *viper.Viper) (types.Config, error) {
	cfg := types.DefaultConfig()
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}

	rule, err := types.ParseLayoutRule(v.GetString("rule"))
	if err != nil {
		return cfg, err
	}
	cfg.Rule = rule
	cfg.ImageFormat = types.ImageFormat(strings.ToLower(string(cfg.ImageFormat)))
	if cfg.ImageFormat == "jpg" {
		cfg.ImageFormat = types.ImageJPEG
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// pipelineOptions builds the per-run template from cfg.
func pipelineOptions(cfg types.Config) (pipeline.Options, error) {
	border, err := layout.ParseBorder(cfg.Border.Width, cfg.Border.Color)
	if err != nil {
		return pipeline.Options{}, err
	}
	return pipeline.Options{
		Rule:        cfg.Rule,
		Canvas:      layout.Canvas{Width: cfg.Canvas.Width, Height: cfg.Canvas.Height},
		Zoom:        cfg.Raster.Zoom,
		LineCount:   cfg.Lines,
		Border:      border,
		RejectEmpty: cfg.RejectEmpty,
	}, nil
}

// pdfWriters returns the writer factory for cfg.
func pdfWriters(cfg types.Config) (pipeline.WriterFactory, error) {
	lineColor, err := layout.ParseColor(cfg.LineColor)
	if err != nil {
		return nil, fmt.Errorf("parsing line color: %w", err)
	}
	return func(dst string, c layout.Canvas) (compose.OutputWriter, error) {
		w, err := compose.NewPDFWriter(dst, c, compose.PDFOptions{
			LineColor:   lineColor,
			Format:      cfg.ImageFormat,
			JPEGQuality: cfg.JPEGQuality,
			Title:       strings.TrimSuffix(filepath.Base(dst), filepath.Ext(dst)),
		})
		if err != nil {
			return nil, err
		}
		return w, nil
	}, nil
}
