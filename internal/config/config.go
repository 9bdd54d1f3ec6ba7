package config

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/ivlev/photoreel/internal/geometry"
	"github.com/ivlev/photoreel/internal/timeline"
)

// Border multipliers applied to the single user-facing border value.
// Stills and the reel use different factors.
const (
	StillBorderMultiplier = 2
	ReelBorderMultiplier  = 3
)

const (
	DefaultStillQuality    = 95
	DefaultFPS             = 25
	DefaultSecondsPerImage = 2.0
	DefaultBitrate         = 8_000_000
	DefaultCodec           = "h264"
)

// Kind identifies one deliverable of an export run.
type Kind string

const (
	KindSquare   Kind = "square"
	KindPortrait Kind = "portrait"
	KindReel     Kind = "reel"
)

// CanvasSize returns the fixed pixel size for still kinds.
func (k Kind) CanvasSize() (int, int) {
	switch k {
	case KindSquare:
		return 1080, 1080
	case KindPortrait:
		return 1080, 1350
	default:
		return 1080, 1920
	}
}

// Dir is the subfolder (or file stem for the reel) inside an export root.
func (k Kind) Dir() string {
	switch k {
	case KindSquare:
		return "Square"
	case KindPortrait:
		return "Images"
	default:
		return "Reel"
	}
}

// ExportConfig is the visual treatment of one output canvas.
type ExportConfig struct {
	Width, Height    int
	Border           int // slider value, before the multiplier
	BorderMultiplier int
	ZoomMode         geometry.ZoomMode
	Background       color.RGBA
	Quality          int
}

// Bounds returns the canvas rectangle.
func (c ExportConfig) Bounds() image.Rectangle {
	return image.Rect(0, 0, c.Width, c.Height)
}

// BorderWidth is the effective inset in canvas pixels.
func (c ExportConfig) BorderWidth() int {
	if c.Border <= 0 {
		return 0
	}
	m := c.BorderMultiplier
	if m <= 0 {
		m = 1
	}
	return c.Border * m
}

// ContentRect is the canvas inset by the border. It is empty when the
// border swallows the whole canvas.
func (c ExportConfig) ContentRect() image.Rectangle {
	b := c.Bounds()
	w := c.BorderWidth()
	if w <= 0 {
		return b
	}
	if 2*w >= b.Dx() || 2*w >= b.Dy() {
		return image.Rectangle{}
	}
	return b.Inset(w)
}

// ReelConfig drives the timeline and the encoder session.
type ReelConfig struct {
	FPS             int
	SecondsPerImage float64
	Bitrate         int
	Codec           string
}

// FramesPerImage is the repeat count for every image of the reel.
func (c ReelConfig) FramesPerImage() int {
	return timeline.FramesPerImage(timeline.ClampSecondsPerImage(c.SecondsPerImage, c.FPS), c.FPS)
}

// Config is the immutable settings bundle of one export run.
type Config struct {
	InputPath    string  `yaml:"input"`
	ManifestPath string  `yaml:"manifest"`
	OutputDir    string  `yaml:"output"`
	Border       int     `yaml:"border"`
	ZoomMode     string  `yaml:"zoom_mode"`
	Background   string  `yaml:"background"`
	AutoPan      bool    `yaml:"auto_pan"`
	Quality      int     `yaml:"quality"`
	DPI          int     `yaml:"dpi"`
	Steps        []Kind  `yaml:"steps"`
	ShowStats    bool    `yaml:"show_stats"`
	BuildVersion string  `yaml:"-"`
	Reel         ReelSet `yaml:"reel"`
}

// ReelSet holds the reel section of the config file.
type ReelSet struct {
	Width           int     `yaml:"width"`
	Height          int     `yaml:"height"`
	FPS             int     `yaml:"fps"`
	SecondsPerImage float64 `yaml:"seconds_per_image"`
	Bitrate         int     `yaml:"bitrate"`
	Codec           string  `yaml:"codec"`
	FFmpegPath      string  `yaml:"ffmpeg"`
}

// Default returns the reference settings.
func Default() Config {
	w, h := KindReel.CanvasSize()
	return Config{
		OutputDir:  "output",
		ZoomMode:   string(geometry.Fill),
		Background: "#FFFFFF",
		Quality:    DefaultStillQuality,
		DPI:        150,
		Steps:      []Kind{KindSquare, KindPortrait, KindReel},
		Reel: ReelSet{
			Width:           w,
			Height:          h,
			FPS:             DefaultFPS,
			SecondsPerImage: DefaultSecondsPerImage,
			Bitrate:         DefaultBitrate,
			Codec:           DefaultCodec,
		},
	}
}

// Validate checks the bundle and normalizes the reel duration.
func (c *Config) Validate() error {
	if c.InputPath == "" && c.ManifestPath == "" {
		return fmt.Errorf("input folder or manifest is required")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output directory is required")
	}
	if c.Border < 0 {
		return fmt.Errorf("border must be >= 0, got %d", c.Border)
	}
	switch geometry.ZoomMode(strings.ToLower(c.ZoomMode)) {
	case geometry.Fit, geometry.Fill:
		c.ZoomMode = strings.ToLower(c.ZoomMode)
	default:
		return fmt.Errorf("unknown zoom mode %q (fit, fill)", c.ZoomMode)
	}
	if _, err := ParseColor(c.Background); err != nil {
		return err
	}
	if c.Quality < 1 || c.Quality > 100 {
		return fmt.Errorf("quality must be in [1, 100], got %d", c.Quality)
	}
	if len(c.Steps) == 0 {
		return fmt.Errorf("at least one step is required")
	}
	for _, s := range c.Steps {
		switch s {
		case KindSquare, KindPortrait, KindReel:
		default:
			return fmt.Errorf("unknown step %q", s)
		}
	}
	if c.Reel.FPS <= 0 {
		return fmt.Errorf("fps must be > 0, got %d", c.Reel.FPS)
	}
	if c.Reel.Width <= 0 || c.Reel.Height <= 0 || c.Reel.Width%2 != 0 || c.Reel.Height%2 != 0 {
		return fmt.Errorf("reel size must be positive and even, got %dx%d", c.Reel.Width, c.Reel.Height)
	}
	switch codec := strings.ToLower(c.Reel.Codec); codec {
	case "h264", "hevc", "h265", "mjpeg":
		c.Reel.Codec = codec
	default:
		return fmt.Errorf("unknown codec %q (h264, hevc, h265, mjpeg)", c.Reel.Codec)
	}
	if c.Reel.Bitrate <= 0 {
		return fmt.Errorf("bitrate must be > 0, got %d", c.Reel.Bitrate)
	}
	if math.IsNaN(c.Reel.SecondsPerImage) {
		return fmt.Errorf("seconds per image is not a number")
	}
	c.Reel.SecondsPerImage = timeline.ClampSecondsPerImage(c.Reel.SecondsPerImage, c.Reel.FPS)
	return nil
}

// HasStep reports whether k was requested.
func (c Config) HasStep(k Kind) bool {
	for _, s := range c.Steps {
		if s == k {
			return true
		}
	}
	return false
}

// Export derives the treatment for one output kind.
func (c Config) Export(k Kind) ExportConfig {
	bg, err := ParseColor(c.Background)
	if err != nil {
		bg = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	}
	ec := ExportConfig{
		Border:           c.Border,
		BorderMultiplier: StillBorderMultiplier,
		ZoomMode:         geometry.ZoomMode(c.ZoomMode),
		Background:       bg,
		Quality:          c.Quality,
	}
	if k == KindReel {
		ec.Width, ec.Height = c.Reel.Width, c.Reel.Height
		ec.BorderMultiplier = ReelBorderMultiplier
		return ec
	}
	ec.Width, ec.Height = k.CanvasSize()
	return ec
}

// ReelConfig derives the timeline and encoder settings.
func (c Config) ReelConfig() ReelConfig {
	return ReelConfig{
		FPS:             c.Reel.FPS,
		SecondsPerImage: timeline.ClampSecondsPerImage(c.Reel.SecondsPerImage, c.Reel.FPS),
		Bitrate:         c.Reel.Bitrate,
		Codec:           strings.ToLower(c.Reel.Codec),
	}
}
