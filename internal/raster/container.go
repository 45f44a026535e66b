// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package raster

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/pdiddy/notesheet/internal/container"
)

// DefaultImage is the poppler image used when none is configured. It must
// provide pdftoppm on its PATH.
const DefaultImage = "poppler:latest"

// ContainerRasterizer renders pages with pdftoppm inside a container image,
// streaming the source PDF on stdin. It depends on a container.Runtime
// (docker or podman) injected at construction time.
type ContainerRasterizer struct {
	runtime container.Runtime
	image   string
	count   func(path string) (int, error)
}

// NewContainer detects a container runtime and returns a rasterizer for
// image. It verifies that the image exists locally before returning.
func NewContainer(ctx context.Context, image string) (*ContainerRasterizer, error) {
	rt, err := container.DetectRuntime(ctx)
	if err != nil {
		return nil, err
	}
	return NewContainerWithRuntime(ctx, rt, image)
}

// NewContainerWithRuntime is NewContainer with an explicit runtime.
func NewContainerWithRuntime(ctx context.Context, rt container.Runtime, image string) (*ContainerRasterizer, error) {
	if image == "" {
		image = DefaultImage
	}
	if err := rt.ImageExists(ctx, image); err != nil {
		return nil, fmt.Errorf("rasterizer image not available in %s: %w", rt.Name(), err)
	}
	return &ContainerRasterizer{runtime: rt, image: image, count: CountPages}, nil
}

// Open validates the document on the host; rendering happens in the
// container.
func (c *ContainerRasterizer) Open(ctx context.Context, path string) (Source, error) {
	n, err := c.count(path)
	if err != nil {
		return nil, err
	}
	return &fileSource{
		path:  path,
		pages: n,
		render: func(ctx context.Context, page int, zoom float64) ([]byte, error) {
			f, err := os.Open(path)
			if err != nil {
				return nil, err
			}
			defer f.Close()

			p := strconv.Itoa(page)
			cmd := []string{
				binPdftoppm, "-png", "-singlefile",
				"-r", formatDPI(zoom),
				"-f", p, "-l", p,
				"-",
			}
			var out bytes.Buffer
			if err := c.runtime.Run(ctx, c.image, cmd, f, &out); err != nil {
				return nil, err
			}
			return out.Bytes(), nil
		},
	}, nil
}
