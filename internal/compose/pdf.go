// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package compose

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"

	"github.com/go-pdf/fpdf"

	"github.com/pdiddy/notesheet/internal/layout"
	"github.com/pdiddy/notesheet/pkg/types"
)

// DefaultLineColor is the light blue used for overlay lines.
var DefaultLineColor = color.RGBA{R: 0xa5, G: 0xb4, B: 0xd4, A: 0xff}

// PDFOptions configures a PDFWriter.
type PDFOptions struct {
	// LineColor strokes every overlay line; nil means DefaultLineColor.
	LineColor color.Color

	// Format selects how page images are embedded.
	Format types.ImageFormat

	// JPEGQuality applies to jpeg images (1-100).
	JPEGQuality int

	// Title is stored in the document metadata when non-empty.
	Title string
}

// PDFWriter is an OutputWriter producing a PDF whose pages measure exactly
// canvas.Width × canvas.Height points.
type PDFWriter struct {
	path   string
	canvas layout.Canvas
	opts   PDFOptions

	doc    *fpdf.Fpdf
	images int
	state  pageState
}

// NewPDFWriter prepares an in-memory document for path. Nothing is
// written to disk until Finalize.
func NewPDFWriter(path string, c layout.Canvas, opts PDFOptions) (*PDFWriter, error) {
	if err := c.Validate(); err != nil {
		return nil, &OutputWriteError{Op: "creating", Path: path, Err: err}
	}
	if opts.Format == "" {
		opts.Format = types.ImagePNG
	}
	if opts.LineColor == nil {
		opts.LineColor = DefaultLineColor
	}
	if opts.JPEGQuality <= 0 || opts.JPEGQuality > 100 {
		opts.JPEGQuality = jpeg.DefaultQuality
	}

	doc := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: float64(c.Width), Ht: float64(c.Height)},
	})
	doc.SetMargins(0, 0, 0)
	doc.SetAutoPageBreak(false, 0)
	doc.SetCreator("notesheet", true)
	if opts.Title != "" {
		doc.SetTitle(opts.Title, true)
	}

	return &PDFWriter{path: path, canvas: c, opts: opts, doc: doc}, nil
}

func (w *PDFWriter) ensurePage() error {
	if err := w.state.checkWritable(); err != nil {
		return err
	}
	if !w.state.open {
		w.doc.AddPage()
		c := color.RGBAModel.Convert(w.opts.LineColor).(color.RGBA)
		w.doc.SetDrawColor(int(c.R), int(c.G), int(c.B))
		w.doc.SetLineCapStyle("butt")
		w.state.open = true
	}
	return nil
}

func (w *PDFWriter) DrawImage(img image.Image, x, y, width, height float64) error {
	if err := w.ensurePage(); err != nil {
		return err
	}

	data, imageType, err := w.encode(img)
	if err != nil {
		return &OutputWriteError{Op: "encoding image for", Path: w.path, Err: err}
	}

	w.images++
	name := fmt.Sprintf("p%d-i%d", w.state.committed+1, w.images)
	opts := fpdf.ImageOptions{ImageType: imageType}
	w.doc.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))
	w.doc.ImageOptions(name, x, y, width, height, false, opts, 0, "")
	return w.docErr("drawing image on")
}

func (w *PDFWriter) DrawLine(x1, y1, x2, y2, stroke float64) error {
	if err := w.ensurePage(); err != nil {
		return err
	}
	w.doc.SetLineWidth(stroke)
	w.doc.Line(x1, y1, x2, y2)
	return w.docErr("drawing line on")
}

func (w *PDFWriter) CommitPage() error {
	if err := w.state.commit(); err != nil {
		return err
	}
	return w.docErr("committing page of")
}

func (w *PDFWriter) Pages() int { return w.state.committed }

// Finalize renders the document into a temporary file next to the
// destination and renames it into place, so a failed run never leaves a
// truncated document at the destination path.
func (w *PDFWriter) Finalize() error {
	if err := w.state.finalize(); err != nil {
		return err
	}

	var body bytes.Buffer
	if w.state.committed == 0 {
		writeEmptyPDF(&body, w.canvas)
	} else if err := w.doc.Output(&body); err != nil {
		return &OutputWriteError{Op: "rendering", Path: w.path, Err: err}
	}
	w.doc = nil

	return writeAtomic(w.path, body.Bytes())
}

func (w *PDFWriter) Close() error {
	w.state.closed = true
	w.doc = nil
	return nil
}

func (w *PDFWriter) docErr(op string) error {
	if w.doc.Err() {
		return &OutputWriteError{Op: op, Path: w.path, Err: w.doc.Error()}
	}
	return nil
}

func (w *PDFWriter) encode(img image.Image) ([]byte, string, error) {
	rgba := toRGBA(img)
	var buf bytes.Buffer
	switch w.opts.Format {
	case types.ImageJPEG:
		if err := jpeg.Encode(&buf, rgba, &jpeg.Options{Quality: w.opts.JPEGQuality}); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), "JPG", nil
	default:
		enc := png.Encoder{CompressionLevel: png.BestSpeed}
		if err := enc.Encode(&buf, rgba); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), "PNG", nil
	}
}

// toRGBA flattens img onto an opaque 8-bit RGBA canvas so the encoders
// never emit 16-bit or alpha PNGs.
func toRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(image.Rectangle{Max: b.Size()})
	draw.Draw(out, out.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Over)
	return out
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".notesheet-*.pdf")
	if err != nil {
		return &OutputWriteError{Op: "creating", Path: path, Err: err}
	}
	tmpName := tmp.Name()
	cleanup := func() { os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return &OutputWriteError{Op: "writing", Path: path, Err: err}
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		cleanup()
		return &OutputWriteError{Op: "syncing", Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return &OutputWriteError{Op: "closing", Path: path, Err: err}
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		cleanup()
		return &OutputWriteError{Op: "writing", Path: path, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return &OutputWriteError{Op: "renaming into", Path: path, Err: err}
	}
	return nil
}

// writeEmptyPDF writes a document with an empty page tree. fpdf always
// emits at least one page, so the zero-page case is produced directly.
func writeEmptyPDF(buf *bytes.Buffer, c layout.Canvas) {
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, 0, 3)

	offsets = append(offsets, buf.Len())
	buf.WriteString("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")

	offsets = append(offsets, buf.Len())
	fmt.Fprintf(buf, "2 0 obj\n<< /Type /Pages /Kids [] /Count 0 /MediaBox [0 0 %d %d] >>\nendobj\n", c.Width, c.Height)

	offsets = append(offsets, buf.Len())
	buf.WriteString("3 0 obj\n<< /Producer (notesheet) >>\nendobj\n")

	xref := buf.Len()
	fmt.Fprintf(buf, "xref\n0 %d\n", len(offsets)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(buf, "trailer\n<< /Size %d /Root 1 0 R /Info 3 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)
}
