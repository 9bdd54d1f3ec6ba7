// Package compositor builds the bordered still canvas. Render is also the
// raster routine behind reel frames, which keeps stills and video
// pixel-identical.
package compositor

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"math"

	"golang.org/x/image/draw"

	"github.com/ivlev/photoreel/internal/config"
	"github.com/ivlev/photoreel/internal/geometry"
)

// ErrNothingToDraw means the source resolved to a zero-area rectangle,
// or the border left no content area. Callers skip the image.
var ErrNothingToDraw = errors.New("image has no drawable area")

// Still is one encoded canvas.
type Still struct {
	Data []byte
	Ext  string
}

// Render fills dst with the background and draws src into the content
// rectangle. dst must cover cfg.Bounds(). It reports whether any source
// pixels were drawn.
func Render(dst *image.RGBA, src image.Image, offset geometry.Offset, cfg config.ExportConfig) bool {
	canvas := cfg.Bounds()
	draw.Draw(dst, canvas, image.NewUniform(cfg.Background), image.Point{}, draw.Src)

	content := cfg.ContentRect()
	if content.Empty() || src == nil {
		return false
	}

	sb := src.Bounds()
	rect := geometry.ResolveDrawRect(geometry.SizeOf(sb.Size()), geometry.RectFrom(content), cfg.ZoomMode, offset)
	dr := rect.Bounds()
	if dr.Empty() {
		return false
	}

	// The sub-image is the clip: the scaler only writes inside its bounds.
	clip, ok := dst.SubImage(content).(*image.RGBA)
	if !ok {
		return false
	}
	scaleVisible(clip, dr, src, sb, drawOp(src))
	return true
}

// bandRows is how many destination rows one scaler pass covers. The
// kernel scaler keeps a float buffer of dst width by src height, so
// both axes are cut down to what lands inside clip.
const bandRows = 64

// kernelMargin is the destination padding, in pixels, kept around each
// pass so the Catmull-Rom support never sees a cut edge.
const kernelMargin = 3

// pass is one scaler call: src rect sr onto dst rect dr, written only
// inside clip.
type pass struct {
	clip, dr, sr image.Rectangle
}

// scaleVisible draws src (sb) scaled onto dr, but only the part of dr
// inside clip, band by band.
func scaleVisible(clip *image.RGBA, dr image.Rectangle, src image.Image, sb image.Rectangle, op draw.Op) {
	for _, p := range plan(dr.Intersect(clip.Rect), dr, sb) {
		band := clip.SubImage(p.clip).(*image.RGBA)
		draw.CatmullRom.Scale(band, p.dr, src, p.sr, op, nil)
	}
}

// plan cuts the visible part vis of dr into row bands and maps each
// back onto the source pixels it needs.
func plan(vis, dr, sb image.Rectangle) []pass {
	if vis.Empty() || dr.Empty() || sb.Empty() {
		return nil
	}
	kx := float64(sb.Dx()) / float64(dr.Dx())
	ky := float64(sb.Dy()) / float64(dr.Dy())

	sx0, sx1, dx0, dx1 := span(vis.Min.X-dr.Min.X, vis.Max.X-dr.Min.X, kx, sb.Dx(), dr.Dx())
	var out []pass
	for y := vis.Min.Y; y < vis.Max.Y; y += bandRows {
		end := min(y+bandRows, vis.Max.Y)
		sy0, sy1, dy0, dy1 := span(y-dr.Min.Y, end-dr.Min.Y, ky, sb.Dy(), dr.Dy())
		out = append(out, pass{
			clip: image.Rect(vis.Min.X, y, vis.Max.X, end),
			dr:   image.Rect(dr.Min.X+dx0, dr.Min.Y+dy0, dr.Min.X+dx1, dr.Min.Y+dy1),
			sr:   image.Rect(sb.Min.X+sx0, sb.Min.Y+sy0, sb.Min.X+sx1, sb.Min.Y+sy1),
		})
	}
	return out
}

// span maps the destination interval [d0, d1), relative to the draw
// rect of length dn, to whole source pixels [s0, s1) of a source of
// length sn scaled by k source pixels per destination pixel. [o0, o1) is
// where that source run lands; it always contains [d0, d1).
func span(d0, d1 int, k float64, sn, dn int) (s0, s1, o0, o1 int) {
	s0 = max(0, int(math.Floor(float64(d0-kernelMargin)*k)))
	s1 = min(sn, int(math.Ceil(float64(d1+kernelMargin)*k)))
	o0, o1 = 0, dn
	if s0 > 0 {
		o0 = int(math.Round(float64(s0) / k))
	}
	if s1 < sn {
		o1 = int(math.Round(float64(s1) / k))
	}
	return s0, s1, o0, o1
}

// drawOp copies opaque sources with Src so the background never mixes
// into covered pixels through kernel rounding. Translucent sources are
// blended over the mat.
func drawOp(src image.Image) draw.Op {
	if o, ok := src.(interface{ Opaque() bool }); ok && o.Opaque() {
		return draw.Src
	}
	return draw.Over
}

// Compose renders one still canvas and encodes it as JPEG. A source
// with nothing to draw fails with ErrNothingToDraw.
func Compose(src image.Image, offset geometry.Offset, cfg config.ExportConfig) (*Still, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("invalid canvas size %dx%d", cfg.Width, cfg.Height)
	}
	canvas := image.NewRGBA(cfg.Bounds())
	if !Render(canvas, src, offset, cfg) {
		return nil, ErrNothingToDraw
	}

	quality := cfg.Quality
	if quality <= 0 || quality > 100 {
		quality = config.DefaultStillQuality
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, canvas, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("jpeg encode: %w", err)
	}
	return &Still{Data: buf.Bytes(), Ext: "jpg"}, nil
}
