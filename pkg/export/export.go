// Package export renders a scene into portable artifacts. The SVG sink
// reuses the scene's own serializer; the PNG sink replays the retained
// primitives against a raster context so exports do not depend on an
// external SVG renderer.
package export

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/pwgbots/diafram/pkg/errors"
	"github.com/pwgbots/diafram/pkg/observability"
	"github.com/pwgbots/diafram/pkg/scene"
)

// Format identifies an export sink.
type Format string

const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

// Options configures an export.
type Options struct {
	// Opaque forces the semi-transparent function shading to fully opaque,
	// for consumers that composite badly over transparency.
	Opaque bool
	// Scale multiplies the raster resolution (PNG only). Zero means 1.
	Scale float64
}

// Option mutates Options.
type Option func(*Options)

// WithOpaque forces opaque function shading.
func WithOpaque() Option {
	return func(o *Options) { o.Opaque = true }
}

// WithScale sets the raster scale factor.
func WithScale(s float64) Option {
	return func(o *Options) { o.Scale = s }
}

func buildOptions(opts []Option) Options {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	if o.Scale <= 0 {
		o.Scale = 1
	}
	return o
}

// Write renders the scene in the given format.
func Write(ctx context.Context, sc *scene.Scene, format Format, w io.Writer, opts ...Option) error {
	switch format {
	case FormatSVG:
		return SVG(ctx, sc, w, opts...)
	case FormatPNG:
		return PNG(ctx, sc, w, opts...)
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "unsupported export format %q", format)
	}
}

// SVG serializes the scene as a standalone SVG document.
func SVG(ctx context.Context, sc *scene.Scene, w io.Writer, opts ...Option) error {
	o := buildOptions(opts)
	observability.Render().OnExportStart(ctx, string(FormatSVG))
	start := time.Now()

	var buf bytes.Buffer
	if o.Opaque {
		sc.WriteSVG(&buf, scene.WithOpaque())
	} else {
		sc.WriteSVG(&buf)
	}
	n, err := w.Write(buf.Bytes())
	if err != nil {
		err = errors.Wrap(errors.ErrCodeInternal, err, "write svg export")
	}

	observability.Render().OnExportComplete(ctx, string(FormatSVG), n, time.Since(start), err)
	return err
}

// PNG rasterizes the scene and encodes it as PNG.
func PNG(ctx context.Context, sc *scene.Scene, w io.Writer, opts ...Option) error {
	o := buildOptions(opts)
	observability.Render().OnExportStart(ctx, string(FormatPNG))
	start := time.Now()

	size, err := rasterize(sc, w, o)
	observability.Render().OnExportComplete(ctx, string(FormatPNG), size, time.Since(start), err)
	return err
}
