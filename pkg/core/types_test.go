package core

import (
	"image"
	"testing"
)

func TestCoordinate_InScreen(t *testing.T) {
	tests := []struct {
		name  string
		coord Coordinate
		want  bool
	}{
		{"inside", Coordinate{X: 360, Y: 725}, true},
		{"origin", Coordinate{X: 0, Y: 0}, true},
		{"right edge exclusive", Coordinate{X: 720, Y: 100}, false},
		{"bottom edge exclusive", Coordinate{X: 100, Y: 1450}, false},
		{"negative", Coordinate{X: -1, Y: 10}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.coord.InScreen(720, 1450); got != tt.want {
				t.Errorf("InScreen(720, 1450) = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBounds_Center(t *testing.T) {
	// The flash label box from a 720x1450 sample capture.
	b := Bounds{X: 200, Y: 100, Width: 40, Height: 35}
	center := b.Center()
	if center.X != 220 || center.Y != 117 {
		t.Errorf("Center() = (%d, %d), want (220, 117)", center.X, center.Y)
	}
}

func TestBounds_Contains(t *testing.T) {
	b := Bounds{X: 100, Y: 200, Width: 200, Height: 50}
	if !b.Contains(100, 200) {
		t.Error("Contains should include the top-left corner")
	}
	if b.Contains(300, 200) {
		t.Error("Contains should exclude the right edge")
	}
	if !b.Contains(299, 249) {
		t.Error("Contains should include the last interior pixel")
	}
}

func TestRegion_Rect(t *testing.T) {
	r := Region{X0: 0, Y0: 0.65, X1: 1, Y1: 0.75}
	rect := r.Rect(720, 1450)
	if rect.Min.X != 0 || rect.Max.X != 720 {
		t.Errorf("horizontal span = [%d, %d), want [0, 720)", rect.Min.X, rect.Max.X)
	}
	if rect.Min.Y != 942 || rect.Max.Y != 1087 {
		t.Errorf("vertical span = [%d, %d), want [942, 1087)", rect.Min.Y, rect.Max.Y)
	}
}

func TestFrame_Dimensions(t *testing.T) {
	f := &Frame{Image: image.NewRGBA(image.Rect(0, 0, 720, 1450))}
	if f.Width() != 720 || f.Height() != 1450 {
		t.Errorf("frame dims = %dx%d, want 720x1450", f.Width(), f.Height())
	}
}
