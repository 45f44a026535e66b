// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package raster

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os/exec"
	"strconv"
	"strings"
)

const (
	binPdftoppm    = "pdftoppm"
	binGhostscript = "gs"
)

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	Output(ctx context.Context, name string, args []string, stdin io.Reader) ([]byte, error)
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) Output(ctx context.Context, name string, args []string, stdin io.Reader) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = stdin
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%w: %s", err, msg)
		}
		return nil, err
	}
	return stdout.Bytes(), nil
}

var defaultExec executor = &osExecutor{}

// argsFunc builds the command line that renders the 1-based page of path
// as a PNG on stdout.
type argsFunc func(path string, page int, zoom float64) []string

// CommandRasterizer renders pages by running a host command once per page.
type CommandRasterizer struct {
	bin   string
	args  argsFunc
	exec  executor
	count func(path string) (int, error)
}

// NewPdftoppm returns a rasterizer backed by poppler's pdftoppm.
func NewPdftoppm() *CommandRasterizer {
	return &CommandRasterizer{
		bin:   binPdftoppm,
		args:  pdftoppmArgs,
		exec:  defaultExec,
		count: CountPages,
	}
}

// NewGhostscript returns a rasterizer backed by the gs command.
func NewGhostscript() *CommandRasterizer {
	return &CommandRasterizer{
		bin:   binGhostscript,
		args:  ghostscriptArgs,
		exec:  defaultExec,
		count: CountPages,
	}
}

func pdftoppmArgs(path string, page int, zoom float64) []string {
	p := strconv.Itoa(page)
	return []string{
		"-png", "-singlefile",
		"-r", formatDPI(zoom),
		"-f", p, "-l", p,
		path,
	}
}

func ghostscriptArgs(path string, page int, zoom float64) []string {
	p := strconv.Itoa(page)
	return []string{
		"-q", "-dSAFER", "-dBATCH", "-dNOPAUSE",
		"-sDEVICE=png16m",
		"-dTextAlphaBits=4", "-dGraphicsAlphaBits=4",
		"-r" + formatDPI(zoom),
		"-dFirstPage=" + p, "-dLastPage=" + p,
		"-sOutputFile=-",
		path,
	}
}

// Name returns the command the rasterizer runs.
func (r *CommandRasterizer) Name() string { return r.bin }

// Open checks that the command is installed and validates the document.
func (r *CommandRasterizer) Open(ctx context.Context, path string) (Source, error) {
	if _, err := r.exec.LookPath(r.bin); err != nil {
		return nil, &SourceOpenError{Path: path, Err: fmt.Errorf("%s rasterizer unavailable: %w", r.bin, err)}
	}
	n, err := r.count(path)
	if err != nil {
		return nil, err
	}
	return &fileSource{
		path:  path,
		pages: n,
		render: func(ctx context.Context, page int, zoom float64) ([]byte, error) {
			return r.exec.Output(ctx, r.bin, r.args(path, page, zoom), nil)
		},
	}, nil
}

// fileSource is a Source whose pages are produced by a render function
// returning encoded PNG data.
type fileSource struct {
	path   string
	pages  int
	render func(ctx context.Context, page int, zoom float64) ([]byte, error)
	closed bool
}

func (s *fileSource) PageCount() int { return s.pages }

func (s *fileSource) RenderPage(ctx context.Context, index int, zoom float64) (image.Image, error) {
	if s.closed {
		return nil, errors.New("source is closed")
	}
	if err := checkIndex(index, s.pages); err != nil {
		return nil, err
	}
	if zoom <= 0 {
		return nil, fmt.Errorf("zoom must be positive, got %g", zoom)
	}

	data, err := s.render(ctx, index+1, zoom)
	if err != nil {
		return nil, &RenderError{Path: s.path, Index: index, Err: err}
	}
	if len(data) == 0 {
		return nil, &RenderError{Path: s.path, Index: index, Err: errors.New("renderer produced no output")}
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &RenderError{Path: s.path, Index: index, Err: fmt.Errorf("decoding PNG: %w", err)}
	}
	return img, nil
}

func (s *fileSource) Close() error {
	s.closed = true
	s.render = nil
	return nil
}
