package config

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/ivlev/photoreel/internal/geometry"
)

func valid() Config {
	c := Default()
	c.InputPath = "in"
	return c
}

func TestBorderMultipliers(t *testing.T) {
	c := valid()
	c.Border = 10
	if got := c.Export(KindSquare).BorderWidth(); got != 20 {
		t.Errorf("square border = %d, want 20", got)
	}
	if got := c.Export(KindPortrait).BorderWidth(); got != 20 {
		t.Errorf("portrait border = %d, want 20", got)
	}
	if got := c.Export(KindReel).BorderWidth(); got != 30 {
		t.Errorf("reel border = %d, want 30", got)
	}
}

func TestContentRect(t *testing.T) {
	tests := []struct {
		name   string
		border int
		want   image.Rectangle
	}{
		{"none", 0, image.Rect(0, 0, 1080, 1350)},
		{"inset", 10, image.Rect(20, 20, 1060, 1330)},
		{"swallowed", 270, image.Rectangle{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			c.Border = tt.border
			if got := c.Export(KindPortrait).ContentRect(); got != tt.want {
				t.Errorf("ContentRect = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanvasSizes(t *testing.T) {
	c := valid()
	for _, tt := range []struct {
		kind Kind
		w, h int
		dir  string
	}{
		{KindSquare, 1080, 1080, "Square"},
		{KindPortrait, 1080, 1350, "Images"},
		{KindReel, 1080, 1920, "Reel"},
	} {
		ec := c.Export(tt.kind)
		if ec.Width != tt.w || ec.Height != tt.h {
			t.Errorf("%s canvas = %dx%d, want %dx%d", tt.kind, ec.Width, ec.Height, tt.w, tt.h)
		}
		if tt.kind.Dir() != tt.dir {
			t.Errorf("%s dir = %q, want %q", tt.kind, tt.kind.Dir(), tt.dir)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"no input", func(c *Config) { c.InputPath = "" }, true},
		{"manifest only", func(c *Config) { c.InputPath, c.ManifestPath = "", "m.yaml" }, false},
		{"negative border", func(c *Config) { c.Border = -1 }, true},
		{"zoom upper case", func(c *Config) { c.ZoomMode = "FIT" }, false},
		{"bad zoom", func(c *Config) { c.ZoomMode = "stretch" }, true},
		{"bad colour", func(c *Config) { c.Background = "white" }, true},
		{"odd reel", func(c *Config) { c.Reel.Width = 1081 }, true},
		{"zero fps", func(c *Config) { c.Reel.FPS = 0 }, true},
		{"unknown step", func(c *Config) { c.Steps = []Kind{"gif"} }, true},
		{"no steps", func(c *Config) { c.Steps = nil }, true},
		{"codec upper case", func(c *Config) { c.Reel.Codec = "HEVC" }, false},
		{"unknown codec", func(c *Config) { c.Reel.Codec = "vp9" }, true},
		{"empty codec", func(c *Config) { c.Reel.Codec = "" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateNormalizesCodec(t *testing.T) {
	c := valid()
	c.Reel.Codec = "H265"
	if err := c.Validate(); err != nil {
		t.Fatal(err)
	}
	if c.Reel.Codec != "h265" {
		t.Errorf("codec = %q, want h265", c.Reel.Codec)
	}
}

func TestValidateClampsSeconds(t *testing.T) {
	c := valid()
	c.Reel.SecondsPerImage = 25
	if err := c.Validate(); err != nil {
		t.Fatal(err)
	}
	if c.Reel.SecondsPerImage != 10 {
		t.Errorf("seconds = %v, want 10", c.Reel.SecondsPerImage)
	}
	if got := c.ReelConfig().FramesPerImage(); got != 250 {
		t.Errorf("frames per image = %d, want 250", got)
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.RGBA
		ok   bool
	}{
		{"#FFFFFF", color.RGBA{255, 255, 255, 255}, true},
		{"#f00", color.RGBA{255, 0, 0, 255}, true},
		{"1a2b3c", color.RGBA{0x1a, 0x2b, 0x3c, 255}, true},
		{"#12345", color.RGBA{}, false},
		{"#GGGGGG", color.RGBA{}, false},
	}
	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		if (err == nil) != tt.ok {
			t.Errorf("ParseColor(%q) error = %v", tt.in, err)
			continue
		}
		if tt.ok && got != tt.want {
			t.Errorf("ParseColor(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if got := FormatColor(color.RGBA{R: 0x1a, G: 0x2b, B: 0x3c, A: 255}); got != "#1A2B3C" {
		t.Errorf("FormatColor = %q", got)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "photoreel.yaml")
	data := "input: photos\nborder: 12\nzoom_mode: fit\nreel:\n  fps: 30\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.InputPath != "photos" || c.Border != 12 || c.ZoomMode != string(geometry.Fit) {
		t.Errorf("loaded %+v", c)
	}
	if c.Reel.FPS != 30 || c.Reel.Width != 1080 || c.Reel.SecondsPerImage != DefaultSecondsPerImage {
		t.Errorf("reel section = %+v, want fps override over defaults", c.Reel)
	}
}

func TestWriteThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	want := valid()
	want.Border = 7
	if err := Write(want, path); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Border != 7 || got.InputPath != "in" || len(got.Steps) != 3 {
		t.Errorf("round trip = %+v", got)
	}
}
