package source

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Decoder is the decode-or-fail boundary between files and pixels.
type Decoder interface {
	Decode(path string) (image.Image, error)
}

// FileDecoder decodes raster files with the registered image codecs and
// renders the first page of a PDF at DPI.
type FileDecoder struct {
	DPI int
}

func (d FileDecoder) Decode(path string) (image.Image, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return d.renderPDF(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	if b := img.Bounds(); b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("decode %s: empty image", filepath.Base(path))
	}
	return img, nil
}

func (d FileDecoder) renderPDF(path string) (image.Image, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", filepath.Base(path), err)
	}
	defer doc.Close()

	if doc.NumPage() == 0 {
		return nil, fmt.Errorf("pdf %s has no pages", filepath.Base(path))
	}
	dpi := d.DPI
	if dpi <= 0 {
		dpi = 150
	}
	return doc.ImageDPI(0, float64(dpi))
}

// NaturalSize reads only the header of a raster file.
func NaturalSize(path string) (image.Point, error) {
	f, err := os.Open(path)
	if err != nil {
		return image.Point{}, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return image.Point{}, err
	}
	return image.Pt(cfg.Width, cfg.Height), nil
}
