// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert runs the notesheet pipeline over one file or a batch of
// files, printing a status line per file and a summary per batch.
package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pdiddy/notesheet/internal/history"
	"github.com/pdiddy/notesheet/internal/pipeline"
	"github.com/pdiddy/notesheet/pkg/types"
)

// outputSuffix is appended to the source name to build a default
// destination.
const outputSuffix = "-notes"

// Converter runs a single conversion. *pipeline.Pipeline implements it.
type Converter interface {
	Run(ctx context.Context, opts pipeline.Options) (pipeline.Result, error)
}

// Journal persists run records. *history.Store implements it.
type Journal interface {
	Record(ctx context.Context, rec types.RunRecord) error
}

// BatchResult holds the outcome of a batch conversion run.
type BatchResult struct {
	Converted int
	Skipped   int
	Failed    int
}

// Total returns the total number of files processed.
func (r BatchResult) Total() int {
	return r.Converted + r.Skipped + r.Failed
}

// HasFailures reports whether any file failed conversion.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

func (r *BatchResult) add(status types.RunStatus) {
	switch status {
	case types.RunSucceeded:
		r.Converted++
	case types.RunSkipped:
		r.Skipped++
	default:
		r.Failed++
	}
}

// Batch converts files with shared options.
type Batch struct {
	Converter Converter

	// Options is the template for every run; Source and Destination are
	// set per file.
	Options pipeline.Options

	// OutDir receives the outputs. Empty means next to each source.
	OutDir string

	// SkipExisting leaves files whose output already exists untouched.
	SkipExisting bool

	// Out receives one status line per file. Nil discards them.
	Out io.Writer

	// Journal, if set, records every file's outcome. Recording failures
	// are reported on Out and do not fail the conversion.
	Journal Journal
}

// DestinationFor returns the default output path for source: the source
// name with "-notes" before the extension, in outDir or next to source.
func DestinationFor(source, outDir string) string {
	dir := outDir
	if dir == "" {
		dir = filepath.Dir(source)
	}
	base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	return filepath.Join(dir, base+outputSuffix+".pdf")
}

func (b *Batch) out() io.Writer {
	if b.Out == nil {
		return io.Discard
	}
	return b.Out
}

// ConvertFile converts source into destination, or into the default
// destination when destination is empty. It returns the run record, which
// is also written to the journal.
func (b *Batch) ConvertFile(ctx context.Context, source, destination string) types.RunRecord {
	w := b.out()
	if destination == "" {
		destination = DestinationFor(source, b.OutDir)
	}

	opts := b.Options
	opts.Source = source
	opts.Destination = destination

	rec := history.NewRecord(opts.Source, opts.Destination, opts.Rule, opts.Zoom)
	defer b.record(ctx, &rec)

	if b.SkipExisting {
		if _, err := os.Stat(destination); err == nil {
			fmt.Fprintf(w, "skipped: %s (already exists)\n", destination)
			rec.Status = types.RunSkipped
			return rec
		}
	}

	if dir := filepath.Dir(destination); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", source, err)
			rec.Status, rec.Error = types.RunFailed, err.Error()
			return rec
		}
	}

	res, err := b.Converter.Run(ctx, opts)
	rec.SourcePages = res.SourcePages
	rec.OutputPages = res.Pages
	rec.Duration = time.Since(rec.StartedAt)
	if err != nil {
		rec.Status, rec.Error = types.RunFailed, err.Error()
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			rec.Status = types.RunCancelled
		}
		fmt.Fprintf(w, "failed:  %s (%v)\n", source, err)
		return rec
	}

	rec.Status = types.RunSucceeded
	fmt.Fprintf(w, "converted: %s -> %s (%d pages)\n", source, destination, res.Pages)
	return rec
}

func (b *Batch) record(ctx context.Context, rec *types.RunRecord) {
	if b.Journal == nil {
		return
	}
	// Cancelled runs are still journaled.
	if err := b.Journal.Record(context.WithoutCancel(ctx), *rec); err != nil {
		fmt.Fprintf(b.out(), "warning: recording history for %s: %v\n", rec.Source, err)
	}
}

// ConvertPaths converts every path to its default destination and prints a
// batch summary. A cancelled context stops the batch after the current
// file.
func (b *Batch) ConvertPaths(ctx context.Context, paths []string) BatchResult {
	var result BatchResult
	for _, p := range paths {
		if ctx.Err() != nil {
			break
		}
		rec := b.ConvertFile(ctx, p, "")
		result.add(rec.Status)
	}
	fmt.Fprintf(b.out(), "\nBatch summary: %d converted, %d skipped, %d failed (total: %d)\n",
		result.Converted, result.Skipped, result.Failed, result.Total())
	return result
}

// ConvertDir converts every PDF directly inside dir, in name order.
// Previous outputs (files ending in "-notes.pdf") are not treated as
// sources.
func (b *Batch) ConvertDir(ctx context.Context, dir string) (BatchResult, error) {
	paths, err := FindSources(dir)
	if err != nil {
		return BatchResult{}, err
	}
	return b.ConvertPaths(ctx, paths), nil
}

// FindSources lists the PDF files directly inside dir, sorted by name.
func FindSources(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		lower := strings.ToLower(name)
		if !strings.HasSuffix(lower, ".pdf") || strings.HasSuffix(lower, outputSuffix+".pdf") {
			continue
		}
		paths = append(paths, filepath.Join(dir, name))
	}
	sort.Strings(paths)
	return paths, nil
}
