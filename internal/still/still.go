// Package still writes the numbered square and portrait image sets.
package still

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ivlev/photoreel/internal/compositor"
	"github.com/ivlev/photoreel/internal/config"
	"github.com/ivlev/photoreel/internal/logger"
	"github.com/ivlev/photoreel/internal/source"
)

var log = logger.Log

// FileName is the output name of the image at 1-based position n.
func FileName(n int, ext string) string {
	return fmt.Sprintf("image_%03d.%s", n, ext)
}

// ExportBatch composes every image (already ordered and enabled) into
// outDir. Items that fail to decode, compose or write are logged and
// skipped, so a partial result is normal. Only a missing output
// directory or cancellation is returned as an error; the paths written
// so far are returned with it.
func ExportBatch(ctx context.Context, images []source.Image, cfg config.ExportConfig, dec source.Decoder, outDir string) ([]string, error) {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("create %s: %w", outDir, err)
	}

	var written []string
	for i, img := range images {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		path, err := exportOne(img, i+1, cfg, dec, outDir)
		if err != nil {
			log.Warnf("[!] still: skipping %s: %v", filepath.Base(img.Path), err)
			continue
		}
		written = append(written, path)
		log.Debugf("[>] still: %d/%d %s", i+1, len(images), filepath.Base(path))
	}
	return written, nil
}

func exportOne(img source.Image, n int, cfg config.ExportConfig, dec source.Decoder, outDir string) (string, error) {
	src, err := dec.Decode(img.Path)
	if err != nil {
		return "", err
	}
	out, err := compositor.Compose(src, img.Offset(), cfg)
	if err != nil {
		return "", err
	}
	path := filepath.Join(outDir, FileName(n, out.Ext))
	if err := os.WriteFile(path, out.Data, 0644); err != nil {
		return "", err
	}
	return path, nil
}
