// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"errors"
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/notesheet/internal/compose"
	"github.com/pdiddy/notesheet/internal/layout"
	"github.com/pdiddy/notesheet/internal/raster"
	"github.com/pdiddy/notesheet/pkg/types"
)

// letterPages returns n 612×792 pages, the size of US Letter at zoom 1.
func letterPages(n int) *raster.Memory {
	pages := make([]image.Image, n)
	for i := range pages {
		pages[i] = raster.SolidPage(612, 792, color.Gray{Y: uint8(40 * (i + 1))})
	}
	return raster.NewMemory(pages...)
}

type harness struct {
	pipeline *Pipeline
	rec      *compose.Recorder
	writers  int
	events   []Event
}

func newHarness(doc *raster.Memory) *harness {
	h := &harness{rec: compose.NewRecorder()}
	h.pipeline = &Pipeline{
		Rasterizer: &raster.MemoryRasterizer{Docs: map[string]*raster.Memory{"in.pdf": doc}},
		NewWriter: func(string, layout.Canvas) (compose.OutputWriter, error) {
			h.writers++
			return h.rec, nil
		},
		Progress: func(e Event) { h.events = append(h.events, e) },
	}
	return h
}

func defaultOptions(rule types.LayoutRule) Options {
	return Options{
		Source:      "in.pdf",
		Destination: "out.pdf",
		Rule:        rule,
		Canvas:      layout.DefaultCanvas,
		Zoom:        1,
		LineCount:   layout.DefaultLineCount,
	}
}

func countStroke(lines []compose.LineOp, stroke float64) int {
	n := 0
	for _, l := range lines {
		if l.Stroke == stroke {
			n++
		}
	}
	return n
}

func TestRun_GridFourPages(t *testing.T) {
	doc := letterPages(4)
	h := newHarness(doc)

	res, err := h.pipeline.Run(context.Background(), defaultOptions(types.RuleGrid))
	require.NoError(t, err)

	assert.Equal(t, 4, res.SourcePages)
	assert.Equal(t, 2, res.Pages)
	assert.Equal(t, types.RuleGrid, res.Rule)
	assert.True(t, h.rec.Finalized)
	assert.True(t, h.rec.Closed())
	assert.True(t, doc.Closed())
	assert.Equal(t, 4, doc.Renders)

	require.Len(t, h.rec.Committed, 2)
	for i, page := range h.rec.Committed {
		require.Len(t, page.Images, 2, "page %d", i)
		assert.Equal(t, compose.ImageOp{Size: image.Pt(612, 792), X: 0, Y: 0, W: 417, H: 540}, page.Images[0])
		assert.Equal(t, compose.ImageOp{Size: image.Pt(612, 792), X: 0, Y: 540, W: 417, H: 540}, page.Images[1])

		assert.Equal(t, compose.LineOp{X1: 417, Y1: 0, X2: 417, Y2: 1080, Stroke: layout.DividerStroke}, page.Lines[0])
		assert.Equal(t, 1, countStroke(page.Lines, layout.DividerStroke))
		assert.Equal(t, 2, countStroke(page.Lines, layout.StructuralStroke))
		// 30 horizontal plus 38 vertical lines every 36 units from x = 453.
		assert.Equal(t, 68, countStroke(page.Lines, layout.RuleStroke))
	}

	require.Len(t, h.events, 2)
	assert.Equal(t, Event{Pair: 1, Pairs: 2, PrimaryPage: 2, SecondaryPage: 3}, withoutPage(h.events[1]))
	assert.Equal(t, 30, layout.Count(h.events[1].Page.Lines, layout.Horizontal))
	assert.Equal(t, 38, layout.Count(h.events[1].Page.Lines, layout.Vertical))
}

func withoutPage(e Event) Event {
	e.Page = layout.Page{}
	return e
}

func TestRun_LinedOddPageCount(t *testing.T) {
	h := newHarness(letterPages(3))

	res, err := h.pipeline.Run(context.Background(), defaultOptions(types.RuleLined))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Pages)

	require.Len(t, h.events, 2)
	last := h.events[1]
	assert.True(t, last.Blank)
	assert.Equal(t, 2, last.PrimaryPage)
	assert.Equal(t, -1, last.SecondaryPage)

	page := h.rec.Committed[1]
	require.Len(t, page.Images, 2)
	assert.Equal(t, image.Pt(612, 792), page.Images[1].Size, "blank half matches the primary size")
	assert.Equal(t, 30, countStroke(page.Lines, layout.RuleStroke))
	assert.Len(t, page.Lines, 33)
}

func TestRun_UnruledDrawsOnlyStructure(t *testing.T) {
	h := newHarness(letterPages(2))

	_, err := h.pipeline.Run(context.Background(), defaultOptions(types.RuleUnruled))
	require.NoError(t, err)
	require.Len(t, h.rec.Committed, 1)
	assert.Len(t, h.rec.Committed[0].Lines, 3)
}

func TestRun_ZoomDoesNotChangeGeometry(t *testing.T) {
	h := newHarness(letterPages(2))
	opts := defaultOptions(types.RuleLined)
	opts.Zoom = 2

	_, err := h.pipeline.Run(context.Background(), opts)
	require.NoError(t, err)
	img := h.rec.Committed[0].Images[0]
	assert.Equal(t, image.Pt(1224, 1584), img.Size)
	assert.Equal(t, 417.0, img.W)
	assert.Equal(t, 540.0, img.H)
}

func TestRun_EmptySource(t *testing.T) {
	t.Run("produces an empty document", func(t *testing.T) {
		h := newHarness(raster.NewMemory())
		res, err := h.pipeline.Run(context.Background(), defaultOptions(types.RuleLined))
		require.NoError(t, err)
		assert.Equal(t, 0, res.Pages)
		assert.True(t, h.rec.Finalized)
		assert.Empty(t, h.events)
	})

	t.Run("rejected when configured", func(t *testing.T) {
		doc := raster.NewMemory()
		h := newHarness(doc)
		opts := defaultOptions(types.RuleLined)
		opts.RejectEmpty = true

		_, err := h.pipeline.Run(context.Background(), opts)
		assert.ErrorIs(t, err, ErrEmptySource)
		assert.Zero(t, h.writers, "no output is created")
		assert.True(t, doc.Closed())
	})
}

func TestRun_Deterministic(t *testing.T) {
	first := newHarness(letterPages(5))
	_, err := first.pipeline.Run(context.Background(), defaultOptions(types.RuleGrid))
	require.NoError(t, err)

	second := newHarness(letterPages(5))
	_, err = second.pipeline.Run(context.Background(), defaultOptions(types.RuleGrid))
	require.NoError(t, err)

	assert.Equal(t, first.rec.Committed, second.rec.Committed)
}

func TestRun_Border(t *testing.T) {
	h := newHarness(letterPages(2))
	opts := defaultOptions(types.RuleLined)
	b, err := layout.ParseBorder(4, "#3b82f6")
	require.NoError(t, err)
	opts.Border = b

	_, err = h.pipeline.Run(context.Background(), opts)
	require.NoError(t, err)
	// The border is drawn inside the image, so the placement is unchanged.
	assert.Equal(t, image.Pt(612, 792), h.rec.Committed[0].Images[0].Size)
	assert.Equal(t, 417.0, h.rec.Committed[0].Images[0].W)
}

// failingSource fails to render one page.
type failingSource struct {
	*raster.Memory
	failAt int
}

func (s *failingSource) RenderPage(ctx context.Context, index int, zoom float64) (image.Image, error) {
	if index == s.failAt {
		return nil, &raster.RenderError{Path: "in.pdf", Index: index, Err: errors.New("corrupt content stream")}
	}
	return s.Memory.RenderPage(ctx, index, zoom)
}

type sourceRasterizer struct{ src raster.Source }

func (r sourceRasterizer) Open(context.Context, string) (raster.Source, error) { return r.src, nil }

func TestRun_RenderFailureAbortsRun(t *testing.T) {
	doc := letterPages(4)
	h := newHarness(doc)
	h.pipeline.Rasterizer = sourceRasterizer{src: &failingSource{Memory: doc, failAt: 3}}

	_, err := h.pipeline.Run(context.Background(), defaultOptions(types.RuleLined))
	var re *raster.RenderError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, 3, re.Index)

	assert.Equal(t, 1, h.rec.Pages(), "the first pair was committed")
	assert.False(t, h.rec.Finalized)
	assert.True(t, h.rec.Closed())
	assert.True(t, doc.Closed())
}

func TestRun_Cancelled(t *testing.T) {
	doc := letterPages(6)
	h := newHarness(doc)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h.pipeline.Progress = func(Event) { cancel() }

	_, err := h.pipeline.Run(ctx, defaultOptions(types.RuleLined))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, h.rec.Pages())
	assert.False(t, h.rec.Finalized)
	assert.True(t, h.rec.Closed())
	assert.True(t, doc.Closed())
}

func TestRun_OpenFailure(t *testing.T) {
	h := newHarness(letterPages(1))
	opts := defaultOptions(types.RuleLined)
	opts.Source = "missing.pdf"

	_, err := h.pipeline.Run(context.Background(), opts)
	var soe *raster.SourceOpenError
	require.ErrorAs(t, err, &soe)
	assert.Equal(t, "missing.pdf", soe.Path)
	assert.Zero(t, h.writers)
}

func TestRun_WriterFailure(t *testing.T) {
	doc := letterPages(2)
	h := newHarness(doc)
	h.pipeline.NewWriter = func(string, layout.Canvas) (compose.OutputWriter, error) {
		return nil, errors.New("read-only file system")
	}

	_, err := h.pipeline.Run(context.Background(), defaultOptions(types.RuleLined))
	var owe *compose.OutputWriteError
	require.ErrorAs(t, err, &owe)
	assert.Equal(t, "out.pdf", owe.Path)
	assert.True(t, doc.Closed())
}

func TestOptions_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Options)
		field  string
	}{
		{"valid", func(*Options) {}, ""},
		{"no source", func(o *Options) { o.Source = "" }, "source"},
		{"no destination", func(o *Options) { o.Destination = "" }, "destination"},
		{"destination is source", func(o *Options) { o.Destination = "./in.pdf" }, "destination"},
		{"unknown rule", func(o *Options) { o.Rule = "dotted" }, "rule"},
		{"zero zoom", func(o *Options) { o.Zoom = 0 }, "zoom"},
		{"negative lines", func(o *Options) { o.LineCount = -1 }, "line count"},
		{"zero lines", func(o *Options) { o.LineCount = 0 }, ""},
		{"flat canvas", func(o *Options) { o.Canvas.Height = 0 }, "canvas"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := defaultOptions(types.RuleLined)
			tt.modify(&opts)
			err := opts.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestRun_InvalidOptionsOpenNothing(t *testing.T) {
	h := newHarness(letterPages(2))
	opts := defaultOptions(types.RuleLined)
	opts.Zoom = -1

	_, err := h.pipeline.Run(context.Background(), opts)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Zero(t, h.writers)
}

func TestStart_StreamsEvents(t *testing.T) {
	h := newHarness(letterPages(5))
	h.pipeline.Progress = nil

	job := h.pipeline.Start(context.Background(), defaultOptions(types.RuleGrid))
	var got []int
	for e := range job.Events() {
		assert.Equal(t, 3, e.Pairs)
		got = append(got, e.Pair)
	}
	res, err := job.Wait()
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, got)
	assert.Equal(t, 3, res.Pages)
	<-job.Done()
}

func TestStart_WaitDrainsEvents(t *testing.T) {
	h := newHarness(letterPages(40))

	job := h.pipeline.Start(context.Background(), defaultOptions(types.RuleLined))
	res, err := job.Wait()
	require.NoError(t, err)
	assert.Equal(t, 20, res.Pages)
	assert.Len(t, h.events, 20, "the configured callback still sees every event")
}

func TestRun_WritesPDF(t *testing.T) {
	out := filepath.Join(t.TempDir(), "notes.pdf")
	p := &Pipeline{
		Rasterizer: &raster.MemoryRasterizer{Docs: map[string]*raster.Memory{"in.pdf": letterPages(3)}},
		NewWriter: func(dst string, c layout.Canvas) (compose.OutputWriter, error) {
			return compose.NewPDFWriter(dst, c, compose.PDFOptions{})
		},
	}
	opts := defaultOptions(types.RuleGrid)
	opts.Destination = out

	res, err := p.Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Pages)

	n, err := raster.CountPages(out)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestRun_CancelledAfterLastPage(t *testing.T) {
	h := newHarness(letterPages(2))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h.pipeline.Progress = func(Event) { cancel() }

	_, err := h.pipeline.Run(ctx, defaultOptions(types.RuleLined))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, h.rec.Pages())
	assert.False(t, h.rec.Finalized)
}
