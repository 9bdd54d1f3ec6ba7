package source

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0x80
	}
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestScanSortsAndFilters(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "b.png"), 4, 4)
	writePNG(t, filepath.Join(dir, "a.png"), 4, 4)
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644)
	os.WriteFile(filepath.Join(dir, ".hidden.jpg"), []byte("x"), 0644)

	images, err := Scan(dir)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(images) != 2 {
		t.Fatalf("got %d images, want 2", len(images))
	}
	if filepath.Base(images[0].Path) != "a.png" || images[0].Order != 0 || images[1].Order != 1 {
		t.Errorf("unexpected order: %+v", images)
	}

	again, _ := Scan(dir)
	if again[0].ID != images[0].ID {
		t.Errorf("id not stable across scans: %s vs %s", again[0].ID, images[0].ID)
	}
	if images[0].ID == images[1].ID {
		t.Error("distinct files share an id")
	}
}

func TestScanEmptyFolder(t *testing.T) {
	if _, err := Scan(t.TempDir()); err == nil {
		t.Fatal("expected error for empty folder")
	}
}

func TestOrderedFiltersAndSorts(t *testing.T) {
	in := []Image{
		{ID: "c", Order: 2, Enabled: true},
		{ID: "a", Order: 0, Enabled: true},
		{ID: "x", Order: 1, Enabled: false},
		{ID: "b", Order: 1, Enabled: true},
	}
	got := Ordered(in)
	if len(got) != 3 || got[0].ID != "a" || got[1].ID != "b" || got[2].ID != "c" {
		t.Errorf("Ordered = %+v", got)
	}
	if in[0].ID != "c" {
		t.Error("input slice was reordered")
	}
}

func TestManifestRoundTripDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "project.yaml")
	data := `version: "1"
images:
  - file: one.jpg
    offset_x: 0.5
  - file: two.jpg
    enabled: false
  - file: /abs/three.jpg
    offset_y: -2
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	m, err := ReadManifest(path)
	if err != nil {
		t.Fatalf("ReadManifest: %v", err)
	}
	if len(m.Images) != 3 {
		t.Fatalf("got %d images", len(m.Images))
	}
	first := m.Images[0]
	if first.Path != filepath.Join(dir, "one.jpg") || !first.Enabled || first.OffsetX != 0.5 || first.ID == "" {
		t.Errorf("first = %+v", first)
	}
	if m.Images[1].Enabled {
		t.Error("second image should be disabled")
	}
	if m.Images[2].Path != "/abs/three.jpg" || m.Images[2].Order != 2 {
		t.Errorf("third = %+v", m.Images[2])
	}
	if off := m.Images[2].Offset(); off.Y != -1 {
		t.Errorf("offset not clamped: %+v", off)
	}

	out := filepath.Join(dir, "out.yaml")
	if err := WriteManifest(m, out); err != nil {
		t.Fatalf("WriteManifest: %v", err)
	}
	back, err := ReadManifest(out)
	if err != nil {
		t.Fatalf("ReadManifest(out): %v", err)
	}
	if back.Images[1].Enabled || back.Images[0].ID != first.ID {
		t.Errorf("round trip lost fields: %+v", back.Images)
	}
}

func TestWriteManifestRelativeToManifestDir(t *testing.T) {
	t.Chdir(t.TempDir())
	if err := os.Mkdir("photos", 0755); err != nil {
		t.Fatal(err)
	}
	writePNG(t, filepath.Join("photos", "a.png"), 4, 4)

	images, err := Scan("photos")
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(images) != 1 || images[0].Path != filepath.Join("photos", "a.png") {
		t.Fatalf("scan = %+v", images)
	}
	path := filepath.Join("photos", "manifest.yaml")
	if err := WriteManifest(&Manifest{Version: "1", Images: images}, path); err != nil {
		t.Fatalf("WriteManifest: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "file: a.png") {
		t.Errorf("manifest does not store a.png next to itself:\n%s", data)
	}

	back, err := ReadManifest(path)
	if err != nil {
		t.Fatalf("ReadManifest: %v", err)
	}
	if got := back.Images[0].Path; filepath.Clean(got) != filepath.Join("photos", "a.png") {
		t.Errorf("path = %s, want photos/a.png", got)
	}
	if _, err := os.Stat(back.Images[0].Path); err != nil {
		t.Errorf("manifest path does not resolve: %v", err)
	}
}

func TestFileDecoder(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.png")
	writePNG(t, good, 6, 3)
	bad := filepath.Join(dir, "bad.jpg")
	os.WriteFile(bad, []byte("not a jpeg"), 0644)

	var d FileDecoder
	img, err := d.Decode(good)
	if err != nil {
		t.Fatalf("Decode(good): %v", err)
	}
	if img.Bounds().Dx() != 6 || img.Bounds().Dy() != 3 {
		t.Errorf("bounds = %v", img.Bounds())
	}
	if _, err := d.Decode(bad); err == nil {
		t.Error("Decode(bad) succeeded")
	}
	size, err := NaturalSize(good)
	if err != nil || size != image.Pt(6, 3) {
		t.Errorf("NaturalSize = %v, %v", size, err)
	}
}
