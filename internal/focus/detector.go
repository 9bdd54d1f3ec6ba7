// Package focus suggests a pan offset for filled images by locating the
// strongest block of detail with a Sobel edge pass.
package focus

import (
	"image"
	"image/color"
	"math"
	"sort"

	"golang.org/x/image/draw"
)

// Block is a detected region of detail, in the coordinates of the image
// passed to Detect.
type Block struct {
	Rect image.Rectangle
	// Strength is the fraction of edge pixels inside Rect.
	Strength float64
}

// Area returns the block size in pixels.
func (b Block) Area() int {
	return b.Rect.Dx() * b.Rect.Dy()
}

// Detector finds blocks of detail using edge detection and dilation.
type Detector struct {
	MinBlockArea  int     // in analysis pixels
	EdgeThreshold float64 // gradient magnitude
	MaxSide       int     // analysis resolution
}

// NewDetector creates a detector with default settings.
func NewDetector() *Detector {
	return &Detector{
		MinBlockArea:  64,
		EdgeThreshold: 30.0,
		MaxSide:       256,
	}
}

// Detect returns the blocks found in img. Rectangles are scaled back to
// img's own bounds. Blocks are sorted largest first.
func (d *Detector) Detect(img image.Image) []Block {
	b := img.Bounds()
	if b.Empty() {
		return nil
	}
	gray, scale := d.downsample(img)
	edges := sobelEdgeDetection(gray, d.EdgeThreshold)
	dilated := dilate(edges, 5, 2)

	var blocks []Block
	for _, c := range findContours(dilated) {
		if c.rect.Dx()*c.rect.Dy() < d.MinBlockArea {
			continue
		}
		r := image.Rect(
			b.Min.X+int(float64(c.rect.Min.X)/scale),
			b.Min.Y+int(float64(c.rect.Min.Y)/scale),
			b.Min.X+int(math.Ceil(float64(c.rect.Max.X)/scale)),
			b.Min.Y+int(math.Ceil(float64(c.rect.Max.Y)/scale)),
		).Intersect(b)
		blocks = append(blocks, Block{
			Rect:     r,
			Strength: float64(c.edges) / float64(c.rect.Dx()*c.rect.Dy()),
		})
	}
	sort.SliceStable(blocks, func(i, j int) bool {
		return blocks[i].Area() > blocks[j].Area()
	})
	return blocks
}

// downsample renders img into a gray image whose long side is at most
// MaxSide and returns the applied scale factor.
func (d *Detector) downsample(img image.Image) (*image.Gray, float64) {
	b := img.Bounds()
	scale := 1.0
	if long := max(b.Dx(), b.Dy()); d.MaxSide > 0 && long > d.MaxSide {
		scale = float64(d.MaxSide) / float64(long)
	}
	w := max(1, int(math.Round(float64(b.Dx())*scale)))
	h := max(1, int(math.Round(float64(b.Dy())*scale)))

	gray := image.NewGray(image.Rect(0, 0, w, h))
	if scale == 1.0 {
		draw.Draw(gray, gray.Bounds(), img, b.Min, draw.Src)
	} else {
		draw.ApproxBiLinear.Scale(gray, gray.Bounds(), img, b, draw.Src, nil)
	}
	return gray, float64(w) / float64(b.Dx())
}

var (
	sobelX = [3][3]int{
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	}
	sobelY = [3][3]int{
		{-1, -2, -1},
		{0, 0, 0},
		{1, 2, 1},
	}
)

func sobelEdgeDetection(gray *image.Gray, threshold float64) *image.Gray {
	bounds := gray.Bounds()
	edges := image.NewGray(bounds)

	for y := bounds.Min.Y + 1; y < bounds.Max.Y-1; y++ {
		for x := bounds.Min.X + 1; x < bounds.Max.X-1; x++ {
			var sumX, sumY float64
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					p := float64(gray.GrayAt(x+kx, y+ky).Y)
					sumX += p * float64(sobelX[ky+1][kx+1])
					sumY += p * float64(sobelY[ky+1][kx+1])
				}
			}
			if math.Sqrt(sumX*sumX+sumY*sumY) > threshold {
				edges.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return edges
}

// dilate connects nearby edges into solid blocks.
func dilate(img *image.Gray, kernelSize, iterations int) *image.Gray {
	bounds := img.Bounds()
	result := image.NewGray(bounds)
	copy(result.Pix, img.Pix)
	half := kernelSize / 2

	for iter := 0; iter < iterations; iter++ {
		temp := image.NewGray(bounds)
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				var hi uint8
			kernel:
				for ky := -half; ky <= half; ky++ {
					for kx := -half; kx <= half; kx++ {
						p := image.Point{X: x + kx, Y: y + ky}
						if !p.In(bounds) {
							continue
						}
						if v := result.GrayAt(p.X, p.Y).Y; v > hi {
							hi = v
							if hi == 255 {
								break kernel
							}
						}
					}
				}
				temp.SetGray(x, y, color.Gray{Y: hi})
			}
		}
		result = temp
	}
	return result
}

type contour struct {
	rect  image.Rectangle
	edges int
}

// findContours returns the bounding boxes of connected white regions.
func findContours(img *image.Gray) []contour {
	bounds := img.Bounds()
	visited := make([]bool, bounds.Dx()*bounds.Dy())
	var out []contour

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			i := (y-bounds.Min.Y)*bounds.Dx() + (x - bounds.Min.X)
			if img.GrayAt(x, y).Y > 128 && !visited[i] {
				out = append(out, floodFill(img, visited, x, y))
			}
		}
	}
	return out
}

func floodFill(img *image.Gray, visited []bool, startX, startY int) contour {
	bounds := img.Bounds()
	minX, minY, maxX, maxY := startX, startY, startX, startY
	n := 0

	stack := []image.Point{{X: startX, Y: startY}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !p.In(bounds) {
			continue
		}
		i := (p.Y-bounds.Min.Y)*bounds.Dx() + (p.X - bounds.Min.X)
		if visited[i] || img.GrayAt(p.X, p.Y).Y <= 128 {
			continue
		}
		visited[i] = true
		n++

		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)

		stack = append(stack,
			image.Point{X: p.X + 1, Y: p.Y},
			image.Point{X: p.X - 1, Y: p.Y},
			image.Point{X: p.X, Y: p.Y + 1},
			image.Point{X: p.X, Y: p.Y - 1},
		)
	}
	return contour{rect: image.Rect(minX, minY, maxX+1, maxY+1), edges: n}
}
