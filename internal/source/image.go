package source

import (
	"sort"

	"github.com/ivlev/photoreel/internal/geometry"
)

// Image is one source photograph as the editor hands it to an export.
type Image struct {
	ID      string
	Path    string
	Order   int
	Enabled bool
	OffsetX float64
	OffsetY float64
}

// Offset returns the normalized pan offset, clamped to [-1, 1].
func (i Image) Offset() geometry.Offset {
	return geometry.Offset{X: i.OffsetX, Y: i.OffsetY}.Clamp()
}

// HasOffset reports whether the user moved the image away from centre.
func (i Image) HasOffset() bool {
	return i.OffsetX != 0 || i.OffsetY != 0
}

// Ordered returns the enabled images sorted by display order. The input
// slice is not modified.
func Ordered(images []Image) []Image {
	out := make([]Image, 0, len(images))
	for _, img := range images {
		if img.Enabled {
			out = append(out, img)
		}
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Order < out[b].Order
	})
	return out
}
