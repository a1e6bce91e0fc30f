package compare

import (
	"image"
	"image/color"
	"testing"

	"github.com/devicelab-dev/camera-mapper/pkg/core"
)

func solidFrame(w, h int, c color.Color) *core.Frame {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return &core.Frame{Image: img}
}

// noisyFrame is a solid frame with a small patch flipped, simulating a
// status-bar clock tick.
func noisyFrame(w, h int, c color.Color) *core.Frame {
	f := solidFrame(w, h, c)
	img := f.Image.(*image.RGBA)
	for y := 0; y < 12; y++ {
		for x := 0; x < 30; x++ {
			img.Set(x, y, color.Black)
		}
	}
	return f
}

func TestComparator_Identity(t *testing.T) {
	c := New()
	f := solidFrame(720, 1450, color.White)

	if got := c.Similarity(f, f); got != 1 {
		t.Errorf("Similarity(f, f) = %v, want 1", got)
	}
	if c.Differs(f, f) {
		t.Error("Differs(f, f) must be false")
	}
}

func TestComparator_Symmetric(t *testing.T) {
	c := New()
	a := solidFrame(720, 1450, color.White)
	b := noisyFrame(720, 1450, color.White)

	sab := c.Similarity(a, b)
	sba := c.Similarity(b, a)
	if sab != sba {
		t.Errorf("Similarity not symmetric: %v vs %v", sab, sba)
	}
	if c.Differs(a, b) != c.Differs(b, a) {
		t.Error("Differs not symmetric")
	}
}

func TestComparator_DistinctScreens(t *testing.T) {
	c := New()
	home := solidFrame(720, 1450, color.White)
	menu := solidFrame(720, 1450, color.Black)

	if !c.Differs(home, menu) {
		t.Error("fully different frames should differ")
	}
	if s := c.Similarity(home, menu); s > 0.1 {
		t.Errorf("Similarity of inverse frames = %v, want near 0", s)
	}
}

func TestComparator_ToleratesRenderingNoise(t *testing.T) {
	c := New()
	a := solidFrame(720, 1450, color.White)
	b := noisyFrame(720, 1450, color.White)

	if c.Differs(a, b) {
		t.Errorf("clock-tick sized noise should not count as a UI change (similarity %v)", c.Similarity(a, b))
	}
}

func TestComparator_DifferentResolutions(t *testing.T) {
	// Frames are normalized onto the grid, so resolution mismatch alone
	// must not register as a difference.
	c := New()
	a := solidFrame(720, 1450, color.White)
	b := solidFrame(1080, 2400, color.White)

	if c.Differs(a, b) {
		t.Error("same content at different resolutions should not differ")
	}
}

func TestComparator_Options(t *testing.T) {
	c := New(WithGridSize(16), WithThreshold(0.5))
	if c.gridSize != 16 {
		t.Errorf("gridSize = %d, want 16", c.gridSize)
	}
	if c.Threshold() != 0.5 {
		t.Errorf("Threshold() = %v, want 0.5", c.Threshold())
	}

	// Invalid values keep defaults.
	d := New(WithGridSize(0), WithThreshold(2))
	if d.gridSize != DefaultGridSize || d.Threshold() != DefaultThreshold {
		t.Error("invalid option values must keep defaults")
	}
}
