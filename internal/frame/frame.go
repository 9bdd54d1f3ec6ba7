// Package frame synthesizes raw, encoder-ready reel frames with the same
// raster routine as the still compositor.
package frame

import (
	"errors"
	"fmt"
	"image"
	"sync/atomic"

	"github.com/ivlev/photoreel/internal/compositor"
	"github.com/ivlev/photoreel/internal/config"
	"github.com/ivlev/photoreel/internal/geometry"
)

// Format is the byte layout an encoder ingests. Both layouts carry
// straight (non-premultiplied) alpha; frames are always opaque.
type Format string

const (
	// RGBA is R, G, B, A byte order, the layout of image.RGBA.
	RGBA Format = "rgba"
	// BGRA is B, G, R, A byte order, what ffmpeg's "bgra" rawvideo
	// pixel format reads.
	BGRA Format = "bgra"
)

// BytesPerPixel is fixed for every supported format.
const BytesPerPixel = 4

// ErrUnsupportedFormat is returned by Synthesize for any Format other
// than RGBA or BGRA.
var ErrUnsupportedFormat = errors.New("unsupported pixel format")

// Buffer is one tightly packed frame: Stride == Width*BytesPerPixel.
// It is reference counted; the last Release returns the memory to the
// pool and the buffer must not be touched afterwards.
type Buffer struct {
	Width, Height int
	Stride        int
	Format        Format
	Pix           []byte

	canvas *image.RGBA
	refs   atomic.Int32
}

// Retain adds a reference, taken by an encoder queue before it holds on
// to the buffer past the call that handed it over.
func (b *Buffer) Retain() {
	b.refs.Add(1)
}

// Release drops a reference.
func (b *Buffer) Release() {
	n := b.refs.Add(-1)
	if n > 0 {
		return
	}
	if n < 0 {
		panic("frame: Buffer released too many times")
	}
	c := b.canvas
	b.canvas, b.Pix = nil, nil
	pool.put(c)
}

// Image exposes an RGBA buffer as an *image.RGBA without copying. It is
// nil for other formats.
func (b *Buffer) Image() *image.RGBA {
	if b.Format != RGBA || b.canvas == nil {
		return nil
	}
	return b.canvas
}

// Synthesize renders one frame for src in the requested format. The
// returned buffer holds one reference owned by the caller. A source that
// resolves to no drawable area fails with compositor.ErrNothingToDraw.
func Synthesize(src image.Image, offset geometry.Offset, cfg config.ExportConfig, format Format) (*Buffer, error) {
	if format != RGBA && format != BGRA {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width%2 != 0 || cfg.Height%2 != 0 {
		return nil, fmt.Errorf("invalid frame size %dx%d", cfg.Width, cfg.Height)
	}
	if src == nil {
		return nil, fmt.Errorf("no source image")
	}
	if sb := src.Bounds(); sb.Dx() <= 0 || sb.Dy() <= 0 {
		return nil, fmt.Errorf("source has no area")
	}

	canvas := pool.get(cfg.Bounds())
	if !compositor.Render(canvas, src, offset, cfg) {
		pool.put(canvas)
		return nil, fmt.Errorf("frame: %w", compositor.ErrNothingToDraw)
	}
	forceOpaque(canvas.Pix)
	if format == BGRA {
		swapRB(canvas.Pix)
	}

	b := &Buffer{
		Width:  cfg.Width,
		Height: cfg.Height,
		Stride: canvas.Stride,
		Format: format,
		Pix:    canvas.Pix,
		canvas: canvas,
	}
	b.refs.Store(1)
	return b, nil
}

// forceOpaque pins alpha to 0xff. The mat is opaque, so colour channels
// are already straight and only rounding in blended edges can leave
// alpha at 0xfe.
func forceOpaque(pix []byte) {
	for i := 3; i < len(pix); i += BytesPerPixel {
		pix[i] = 0xff
	}
}

func swapRB(pix []byte) {
	for i := 0; i+2 < len(pix); i += BytesPerPixel {
		pix[i], pix[i+2] = pix[i+2], pix[i]
	}
}
