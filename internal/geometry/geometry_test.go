package geometry

import (
	"image"
	"math"
	"math/rand"
	"testing"
)

func TestFitSizeNeverExceedsTarget(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 2000; i++ {
		src := Size{W: float64(1 + r.Intn(8000)), H: float64(1 + r.Intn(8000))}
		dst := Size{W: float64(1 + r.Intn(3000)), H: float64(1 + r.Intn(3000))}
		got := FitSize(src, dst)
		if got.W > dst.W || got.H > dst.H {
			t.Fatalf("FitSize(%v, %v) = %v exceeds target", src, dst, got)
		}
	}
}

func TestFillSizeCoversTarget(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	for i := 0; i < 2000; i++ {
		src := Size{W: float64(1 + r.Intn(8000)), H: float64(1 + r.Intn(8000))}
		dst := Size{W: float64(1 + r.Intn(3000)), H: float64(1 + r.Intn(3000))}
		got := FillSize(src, dst)
		if got.W < dst.W-1 || got.H < dst.H-1 {
			t.Fatalf("FillSize(%v, %v) = %v does not cover target", src, dst, got)
		}
	}
}

func TestFillSizeExactOnBindingAxis(t *testing.T) {
	tests := []struct {
		src, dst, want Size
	}{
		{Size{3000, 3000}, Size{1080, 1350}, Size{1350, 1350}},
		{Size{4000, 3000}, Size{1080, 1920}, Size{2560, 1920}},
		{Size{3000, 4000}, Size{1080, 1080}, Size{1080, 1440}},
		{Size{1000, 1000}, Size{1040, 1310}, Size{1310, 1310}},
	}
	for _, tt := range tests {
		if got := FillSize(tt.src, tt.dst); got != tt.want {
			t.Errorf("FillSize(%v, %v) = %v, want %v", tt.src, tt.dst, got, tt.want)
		}
	}
}

func TestDegenerateSizes(t *testing.T) {
	cases := []struct{ src, dst Size }{
		{Size{0, 100}, Size{100, 100}},
		{Size{100, -1}, Size{100, 100}},
		{Size{100, 100}, Size{0, 0}},
	}
	for _, c := range cases {
		if got := FitSize(c.src, c.dst); !got.Empty() {
			t.Errorf("FitSize(%v, %v) = %v, want zero", c.src, c.dst, got)
		}
		if got := FillSize(c.src, c.dst); !got.Empty() {
			t.Errorf("FillSize(%v, %v) = %v, want zero", c.src, c.dst, got)
		}
		r := ResolveDrawRect(c.src, Rect{W: c.dst.W, H: c.dst.H}, Fill, Offset{})
		if !r.Empty() {
			t.Errorf("ResolveDrawRect with %v into %v = %v, want empty", c.src, c.dst, r)
		}
	}
}

func TestMaxPanOffset(t *testing.T) {
	container := Size{W: 1000, H: 1000}
	tests := []struct {
		name         string
		sourceAspect float64
		wantX, wantY float64
	}{
		{"wider", 2.0, 500, 0},
		{"taller", 0.5, 0, 500},
		{"equal", 1.0, 0, 0},
		{"degenerate", 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := MaxPanOffset(tt.sourceAspect, container.Aspect(), container)
			if x != tt.wantX || y != tt.wantY {
				t.Errorf("MaxPanOffset = (%v, %v), want (%v, %v)", x, y, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestResolveDrawRectDeterministic(t *testing.T) {
	src := Size{W: 4032, H: 3024}
	content := Rect{X: 40, Y: 40, W: 1000, H: 1840}
	off := Offset{X: -0.37, Y: 0.2}
	first := ResolveDrawRect(src, content, Fill, off)
	for i := 0; i < 100; i++ {
		if got := ResolveDrawRect(src, content, Fill, off); got != first {
			t.Fatalf("call %d returned %v, first call returned %v", i, got, first)
		}
	}
}

func TestFitIgnoresOffset(t *testing.T) {
	src := Size{W: 3000, H: 2000}
	content := Rect{X: 10, Y: 10, W: 500, H: 500}
	centred := ResolveDrawRect(src, content, Fit, Offset{})
	panned := ResolveDrawRect(src, content, Fit, Offset{X: 1, Y: -1})
	if centred != panned {
		t.Errorf("fit mode moved with offset: %v vs %v", centred, panned)
	}
	if centred.X < content.X || centred.MaxX() > content.MaxX() || centred.Y < content.Y || centred.MaxY() > content.MaxY() {
		t.Errorf("fit rect %v escapes content %v", centred, content)
	}
}

func TestPortraitBorderedScenario(t *testing.T) {
	canvas := image.Rect(0, 0, 1080, 1350)
	content := RectFrom(canvas.Inset(20))
	src := Size{W: 1000, H: 1000}

	maxX, maxY := MaxPanOffset(src.Aspect(), content.Size().Aspect(), content.Size())
	if maxX != 135 || maxY != 0 {
		t.Fatalf("max pan = (%v, %v), want (135, 0)", maxX, maxY)
	}

	centred := ResolveDrawRect(src, content, Fill, Offset{})
	if left := content.X - centred.X; left != maxX {
		t.Errorf("centred left overflow = %v, want %v", left, maxX)
	}
	if right := centred.MaxX() - content.MaxX(); right != maxX {
		t.Errorf("centred right overflow = %v, want %v", right, maxX)
	}

	panned := ResolveDrawRect(src, content, Fill, Offset{X: 1})
	if shift := panned.X - centred.X; shift != maxX {
		t.Errorf("pan shift = %v, want %v", shift, maxX)
	}
	if panned.X != content.X {
		t.Errorf("panned left edge = %v, want flush with content at %v", panned.X, content.X)
	}
	if right := panned.MaxX() - content.MaxX(); right != 2*maxX {
		t.Errorf("panned right overflow = %v, want %v", right, 2*maxX)
	}
	if panned.Y != centred.Y {
		t.Errorf("vertical position changed: %v vs %v", panned.Y, centred.Y)
	}
}

func TestPanClampsAtExtremes(t *testing.T) {
	src := Size{W: 3000, H: 2000}
	content := Rect{X: 0, Y: 0, W: 1080, H: 1080}
	for _, ext := range []float64{-1, 1} {
		at := ResolveDrawRect(src, content, Fill, Offset{X: ext})
		beyond := ResolveDrawRect(src, content, Fill, Offset{X: ext * 4})
		if at != beyond {
			t.Errorf("offset %v drifted: %v vs %v", ext*4, beyond, at)
		}
		b := at.Bounds()
		if b.Min.X > 0 || b.Max.X < 1080 {
			t.Errorf("offset %v uncovered the content edge: %v", ext, b)
		}
	}
	if got := (Offset{X: math.NaN(), Y: 3}).Clamp(); got != (Offset{X: 0, Y: 1}) {
		t.Errorf("Clamp = %v", got)
	}
}

func TestBoundsCoverContentInFill(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	for i := 0; i < 1000; i++ {
		src := Size{W: float64(1 + r.Intn(6000)), H: float64(1 + r.Intn(6000))}
		content := Rect{X: float64(r.Intn(60)), Y: float64(r.Intn(60)), W: float64(1 + r.Intn(1200)), H: float64(1 + r.Intn(1900))}
		off := Offset{X: r.Float64()*2 - 1, Y: r.Float64()*2 - 1}
		b := ResolveDrawRect(src, content, Fill, off).Bounds()
		c := content.Bounds()
		if !c.In(b) {
			t.Fatalf("src %v content %v offset %v: draw %v does not cover %v", src, content, off, b, c)
		}
	}
}
