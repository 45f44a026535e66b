// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/pdiddy/notesheet/internal/compose"
	"github.com/pdiddy/notesheet/internal/convert"
	"github.com/pdiddy/notesheet/internal/history"
	"github.com/pdiddy/notesheet/internal/layout"
	"github.com/pdiddy/notesheet/internal/logger"
	"github.com/pdiddy/notesheet/internal/pipeline"
	"github.com/pdiddy/notesheet/internal/progress"
	"github.com/pdiddy/notesheet/internal/raster"
	"github.com/pdiddy/notesheet/pkg/types"
)

var convertCmd = &cobra.Command{
	Use:   "convert <source.pdf> [destination.pdf]",
	Short: "Convert a PDF into a note-taking sheet",
	Long: `Convert renders each source page, places pages two at a time on the left
of a landscape canvas, and draws the selected rule on the remaining area:
lined (writing lines), grid (squares), or unruled (nothing but the divider).

The destination defaults to <source>-notes.pdf. With --batch, every PDF in a
directory is converted and existing outputs are skipped.`,
	Args: func(cmd *cobra.Command, args []string) error {
		batch, _ := cmd.Flags().GetString("batch")
		if batch != "" {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.RangeArgs(1, 2)(cmd, args)
	},
	RunE: runConvert,
}

func init() {
	d := types.DefaultConfig()
	f := convertCmd.Flags()
	f.String("rule", string(d.Rule), "overlay: lined, grid, or unruled")
	f.Float64("zoom", d.Raster.Zoom, "render scale; 1.0 is 72 DPI")
	f.Int("lines", d.Lines, "writing lines per page")
	f.Int("canvas-width", d.Canvas.Width, "output page width in points")
	f.Int("canvas-height", d.Canvas.Height, "output page height in points")
	f.String("backend", string(d.Raster.Backend), "rasterizer: pdftoppm, ghostscript, or container")
	f.Int("border-width", d.Border.Width, "border around each page image in pixels (0 disables)")
	f.String("border-color", d.Border.Color, "border color as hex RGB")
	f.String("line-color", d.LineColor, "overlay line color as hex RGB")
	f.String("image-format", string(d.ImageFormat), "page image encoding: png or jpeg")
	f.Bool("reject-empty", d.RejectEmpty, "fail on a source without pages instead of writing an empty PDF")
	f.Bool("dry-run", false, "report the page layout without writing output")
	f.String("progress", "auto", "progress bar: auto, always, or never")
	f.String("batch", "", "convert every PDF in this directory")
	f.String("out-dir", "", "directory for outputs (default: next to each source)")

	for key, flag := range map[string]string{
		"rule":               "rule",
		"rasterizer.zoom":    "zoom",
		"lines":              "lines",
		"canvas.width":       "canvas-width",
		"canvas.height":      "canvas-height",
		"rasterizer.backend": "backend",
		"border.width":       "border-width",
		"border.color":       "border-color",
		"line_color":         "line-color",
		"image_format":       "image-format",
		"reject_empty":       "reject-empty",
	} {
		if err := viper.BindPFlag(key, f.Lookup(flag)); err != nil {
			panic(err)
		}
	}

	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	opts, err := pipelineOptions(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	logger.Section("Convert")
	logger.Debug("rule=%s canvas=%dx%d zoom=%g lines=%d backend=%s",
		cfg.Rule, cfg.Canvas.Width, cfg.Canvas.Height, cfg.Raster.Zoom, cfg.Lines, cfg.Raster.Backend)

	writers, err := pdfWriters(cfg)
	if err != nil {
		return err
	}
	rz, err := raster.New(ctx, cfg.Raster)
	if err != nil {
		return err
	}
	p := &pipeline.Pipeline{Rasterizer: rz, NewWriter: writers}

	batchDir, _ := cmd.Flags().GetString("batch")
	outDir, _ := cmd.Flags().GetString("out-dir")
	out := cmd.OutOrStdout()

	if dryRun, _ := cmd.Flags().GetBool("dry-run"); dryRun {
		return runDryRun(ctx, p, opts, args, batchDir, outDir, out)
	}

	b := &convert.Batch{
		Options:      opts,
		OutDir:       outDir,
		SkipExisting: batchDir != "",
		Out:          out,
	}

	mode, _ := cmd.Flags().GetString("progress")
	showProgress, err := progressEnabled(mode, batchDir == "")
	if err != nil {
		return err
	}
	if showProgress {
		b.Converter = &progress.Converter{Pipeline: p, Out: cmd.ErrOrStderr()}
	} else {
		b.Converter = p
	}

	store, err := history.NewStore(cfg.HistoryDir)
	if err != nil {
		logger.Warn("history disabled: %v", err)
	} else {
		defer store.Close()
		b.Journal = store
	}

	if batchDir != "" {
		defer logger.Timed("batch %s", batchDir)()
		result, err := b.ConvertDir(ctx, batchDir)
		if err != nil {
			return err
		}
		if result.HasFailures() {
			return fmt.Errorf("%d of %d file(s) failed", result.Failed, result.Total())
		}
		return nil
	}

	dst := ""
	if len(args) > 1 {
		dst = args[1]
	}
	defer logger.Timed("converting %s", args[0])()
	rec := b.ConvertFile(ctx, args[0], dst)
	if rec.Status != types.RunSucceeded {
		return errors.New(rec.Error)
	}
	return nil
}

// progressEnabled decides whether to draw the progress bar. In auto mode
// it is shown for single conversions on an interactive terminal when
// verbose output is off.
func progressEnabled(mode string, single bool) (bool, error) {
	switch mode {
	case "always":
		return true, nil
	case "never":
		return false, nil
	case "auto", "":
		return single && !logger.IsVerbose() && term.IsTerminal(int(os.Stderr.Fd())), nil
	}
	return false, fmt.Errorf("unknown progress mode %q: use auto, always, or never", mode)
}

// runDryRun lays out every page without writing output.
func runDryRun(ctx context.Context, p *pipeline.Pipeline, opts pipeline.Options, args []string, batchDir, outDir string, w io.Writer) error {
	sources := args[:1]
	if batchDir != "" {
		var err error
		if sources, err = convert.FindSources(batchDir); err != nil {
			return err
		}
	}

	for i, src := range sources {
		dst := convert.DestinationFor(src, outDir)
		if i == 0 && len(args) > 1 {
			dst = args[1]
		}

		dry := *p
		dry.NewWriter = func(string, layout.Canvas) (compose.OutputWriter, error) {
			return compose.NewRecorder(), nil
		}
		dry.Progress = func(e pipeline.Event) { describePage(w, e) }

		run := opts
		run.Source, run.Destination = src, dst
		fmt.Fprintf(w, "%s -> %s (dry run)\n", src, dst)
		res, err := dry.Run(ctx, run)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%d source pages -> %d output pages\n", res.SourcePages, res.Pages)
	}
	return nil
}

// describePage prints the geometry of one output page.
func describePage(w io.Writer, e pipeline.Event) {
	pages := fmt.Sprintf("%d-%d", e.PrimaryPage+1, e.SecondaryPage+1)
	if e.Blank {
		pages = fmt.Sprintf("%d+blank", e.PrimaryPage+1)
	}
	fmt.Fprintf(w, "  page %d/%d: source %s, images %dx%d, divider x=%d, %d horizontal, %d vertical\n",
		e.Pair+1, e.Pairs, pages, e.Page.Width, e.Page.Height, e.Page.Width,
		layout.Count(e.Page.Lines, layout.Horizontal), layout.Count(e.Page.Lines, layout.Vertical))
}
