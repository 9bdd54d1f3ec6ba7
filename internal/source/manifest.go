package source

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Manifest is the read side of an editor project: which files, in which
// order, enabled or not, and how each is panned.
type Manifest struct {
	Version string
	Images  []Image
}

type manifestFile struct {
	Version string          `yaml:"version"`
	Images  []manifestEntry `yaml:"images"`
}

type manifestEntry struct {
	ID      string  `yaml:"id,omitempty"`
	File    string  `yaml:"file"`
	Order   *int    `yaml:"order,omitempty"`
	Enabled *bool   `yaml:"enabled,omitempty"`
	OffsetX float64 `yaml:"offset_x,omitempty"`
	OffsetY float64 `yaml:"offset_y,omitempty"`
}

// ReadManifest loads a manifest. Relative file paths resolve against the
// manifest's folder. Missing ids are derived from the path, a missing
// order falls back to the entry position and a missing enabled flag
// means enabled.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var mf manifestFile
	if err := yaml.Unmarshal(data, &mf); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}

	base := filepath.Dir(path)
	m := &Manifest{Version: mf.Version, Images: make([]Image, 0, len(mf.Images))}
	for i, e := range mf.Images {
		if e.File == "" {
			return nil, fmt.Errorf("manifest %s: image %d has no file", path, i+1)
		}
		img := Image{
			ID:      e.ID,
			Path:    e.File,
			Order:   i,
			Enabled: true,
			OffsetX: e.OffsetX,
			OffsetY: e.OffsetY,
		}
		if !filepath.IsAbs(img.Path) {
			img.Path = filepath.Join(base, img.Path)
		}
		if img.ID == "" {
			img.ID = StableID(img.Path)
		}
		if e.Order != nil {
			img.Order = *e.Order
		}
		if e.Enabled != nil {
			img.Enabled = *e.Enabled
		}
		m.Images = append(m.Images, img)
	}
	return m, nil
}

// WriteManifest stores a manifest, used to seed one from a folder scan.
func WriteManifest(m *Manifest, path string) error {
	base, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return err
	}
	mf := manifestFile{Version: m.Version, Images: make([]manifestEntry, len(m.Images))}
	for i, img := range m.Images {
		order, enabled := img.Order, img.Enabled
		mf.Images[i] = manifestEntry{
			ID:      img.ID,
			File:    relativeTo(base, img.Path),
			Order:   &order,
			Enabled: &enabled,
			OffsetX: img.OffsetX,
			OffsetY: img.OffsetY,
		}
	}
	data, err := yaml.Marshal(&mf)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// relativeTo rewrites a relative p, taken from the working directory, so
// it resolves from base the way ReadManifest joins it. Absolute paths are
// kept.
func relativeTo(base, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return p
	}
	rel, err := filepath.Rel(base, abs)
	if err != nil {
		return abs
	}
	return filepath.ToSlash(rel)
}
