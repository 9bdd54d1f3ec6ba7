package source

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
)

var supportedExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
	".pdf":  true,
}

// idSpace namespaces the name-based image ids.
var idSpace = uuid.MustParse("6f0c3c55-1d8e-4f7e-9a43-5b1c2a6d8e01")

// Supported reports whether the file extension can be decoded.
func Supported(path string) bool {
	return supportedExt[strings.ToLower(filepath.Ext(path))]
}

// StableID derives an id from the absolute path, so rescanning a folder
// keeps the ids a manifest refers to.
func StableID(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return uuid.NewSHA1(idSpace, []byte(abs)).String()
}

// Scan lists supported files of a folder, sorted by name, all enabled.
// A single file path yields a one-image list.
func Scan(path string) ([]Image, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	var paths []string
	if fi.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
				continue
			}
			if Supported(entry.Name()) {
				paths = append(paths, filepath.Join(path, entry.Name()))
			}
		}
		sort.Strings(paths)
	} else {
		paths = []string{path}
	}

	if len(paths) == 0 {
		return nil, fmt.Errorf("no supported images in %s", path)
	}

	images := make([]Image, len(paths))
	for i, p := range paths {
		images[i] = Image{
			ID:      StableID(p),
			Path:    p,
			Order:   i,
			Enabled: true,
		}
	}
	return images, nil
}
