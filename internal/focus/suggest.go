package focus

import (
	"image"
	"math"

	"github.com/ivlev/photoreel/internal/geometry"
)

// Suggest returns the pan offset that brings the largest block of detail
// in img toward the centre of a filled container with the given aspect.
// ok is false when nothing was detected or the image cannot pan.
func (d *Detector) Suggest(img image.Image, containerAspect float64) (geometry.Offset, bool) {
	b := img.Bounds()
	src := geometry.SizeOf(b.Size())
	if src.Empty() || containerAspect <= 0 {
		return geometry.Offset{}, false
	}
	// Unit-height container; pan limits scale linearly with it.
	container := geometry.Size{W: containerAspect, H: 1}
	maxX, maxY := geometry.MaxPanOffset(src.Aspect(), containerAspect, container)
	if maxX == 0 && maxY == 0 {
		return geometry.Offset{}, false
	}

	blocks := d.Detect(img)
	if len(blocks) == 0 {
		return geometry.Offset{}, false
	}
	r := blocks[0].Rect
	cx := (float64(r.Min.X+r.Max.X)/2 - float64(b.Min.X)) / src.W
	cy := (float64(r.Min.Y+r.Max.Y)/2 - float64(b.Min.Y)) / src.H

	scale := math.Max(container.W/src.W, container.H/src.H)
	drawW, drawH := src.W*scale, src.H*scale

	var off geometry.Offset
	if maxX > 0 {
		off.X = (0.5 - cx) * drawW / maxX
	}
	if maxY > 0 {
		off.Y = (0.5 - cy) * drawH / maxY
	}
	return off.Clamp(), true
}

// Suggest runs the default detector.
func Suggest(img image.Image, containerAspect float64) (geometry.Offset, bool) {
	return NewDetector().Suggest(img, containerAspect)
}
