// Package geometry places a source image inside a bordered content
// rectangle. Every output path (square stills, 4:5 stills, reel frames)
// goes through ResolveDrawRect, so they cannot drift apart.
package geometry

import (
	"image"
	"math"
)

// ZoomMode selects how the source is scaled into the content rectangle.
type ZoomMode string

const (
	// Fit keeps the whole source visible; background may show on one axis.
	Fit ZoomMode = "fit"
	// Fill covers the content rectangle; the overflow is cropped and can be panned.
	Fill ZoomMode = "fill"
)

// floorEpsilon absorbs float error in products like 3000*(1350/3000)
// that should land exactly on an integer.
const floorEpsilon = 1e-9

// Size is a width/height pair in pixels.
type Size struct {
	W, H float64
}

// Empty reports whether the size has no area.
func (s Size) Empty() bool {
	return s.W <= 0 || s.H <= 0
}

// Aspect returns W/H, or 0 for an empty size.
func (s Size) Aspect() float64 {
	if s.Empty() {
		return 0
	}
	return s.W / s.H
}

// SizeOf converts an image.Point size into a Size.
func SizeOf(p image.Point) Size {
	return Size{W: float64(p.X), H: float64(p.Y)}
}

// Offset is a normalized pan offset, each axis in [-1, 1].
type Offset struct {
	X, Y float64
}

// Clamp limits both axes to [-1, 1]. NaN becomes 0.
func (o Offset) Clamp() Offset {
	return Offset{X: clampUnit(o.X), Y: clampUnit(o.Y)}
}

func clampUnit(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0
	case v < -1:
		return -1
	case v > 1:
		return 1
	}
	return v
}

// Rect is an axis-aligned rectangle in canvas pixel space.
type Rect struct {
	X, Y, W, H float64
}

// RectFrom converts an image.Rectangle.
func RectFrom(r image.Rectangle) Rect {
	return Rect{
		X: float64(r.Min.X),
		Y: float64(r.Min.Y),
		W: float64(r.Dx()),
		H: float64(r.Dy()),
	}
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// MaxX returns the right edge.
func (r Rect) MaxX() float64 { return r.X + r.W }

// MaxY returns the bottom edge.
func (r Rect) MaxY() float64 { return r.Y + r.H }

// Size returns the rectangle dimensions.
func (r Rect) Size() Size { return Size{W: r.W, H: r.H} }

// Bounds snaps the rectangle onto the pixel grid. The origin is rounded,
// the size is kept, so a fill rectangle never opens a gap at the far edge.
func (r Rect) Bounds() image.Rectangle {
	if r.Empty() {
		return image.Rectangle{}
	}
	x := int(math.Round(r.X))
	y := int(math.Round(r.Y))
	return image.Rect(x, y, x+int(r.W), y+int(r.H))
}

// FitSize scales source so it is contained in target. Degenerate inputs
// return a zero size and the caller must skip drawing.
func FitSize(source, target Size) Size {
	if source.Empty() || target.Empty() {
		return Size{}
	}
	scale := math.Min(target.W/source.W, target.H/source.H)
	return scaled(source, scale)
}

// FillSize scales source so it covers target.
func FillSize(source, target Size) Size {
	if source.Empty() || target.Empty() {
		return Size{}
	}
	scale := math.Max(target.W/source.W, target.H/source.H)
	return scaled(source, scale)
}

func scaled(source Size, scale float64) Size {
	return Size{
		W: math.Floor(source.W*scale + floorEpsilon),
		H: math.Floor(source.H*scale + floorEpsilon),
	}
}

// MaxPanOffset returns how far, in pixels, a filled source can move away
// from the centred position on each axis before a content edge shows.
func MaxPanOffset(sourceAspect, containerAspect float64, container Size) (maxX, maxY float64) {
	if sourceAspect <= 0 || containerAspect <= 0 || container.Empty() {
		return 0, 0
	}
	switch {
	case sourceAspect > containerAspect:
		scaledWidth := container.H * sourceAspect
		return math.Max(0, (scaledWidth-container.W)/2), 0
	case sourceAspect < containerAspect:
		scaledHeight := container.W / sourceAspect
		return 0, math.Max(0, (scaledHeight-container.H)/2)
	}
	return 0, 0
}

// ResolveDrawRect computes where to draw a source of the given natural
// size inside content. Pan offsets only apply in Fill mode, since a
// fitted image has no overflow to reveal.
func ResolveDrawRect(source Size, content Rect, mode ZoomMode, offset Offset) Rect {
	target := content.Size()
	var size Size
	if mode == Fill {
		size = FillSize(source, target)
	} else {
		size = FitSize(source, target)
	}
	if size.Empty() {
		return Rect{}
	}

	r := Rect{
		X: content.X + (content.W-size.W)/2,
		Y: content.Y + (content.H-size.H)/2,
		W: size.W,
		H: size.H,
	}
	if mode != Fill {
		return r
	}

	off := offset.Clamp()
	maxX, maxY := MaxPanOffset(source.Aspect(), target.Aspect(), target)
	r.X += off.X * maxX
	r.Y += off.Y * maxY
	return r
}
