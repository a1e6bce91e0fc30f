package core

import (
	"image"
	"time"
)

// Coordinate is a position in device pixel space.
type Coordinate struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// InScreen reports whether the coordinate lies within [0, width) x [0, height).
func (c Coordinate) InScreen(width, height int) bool {
	return c.X >= 0 && c.X < width && c.Y >= 0 && c.Y < height
}

// Bounds represents an element's position and size on screen.
type Bounds struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Center returns the center point of the bounds.
func (b Bounds) Center() Coordinate {
	return Coordinate{X: b.X + b.Width/2, Y: b.Y + b.Height/2}
}

// Contains checks if a point is within the bounds.
func (b Bounds) Contains(x, y int) bool {
	return x >= b.X && x < b.X+b.Width && y >= b.Y && y < b.Y+b.Height
}

// Region is a screen-relative rectangle with corners expressed as fractions
// of the frame size, so calibration data stays resolution-independent.
type Region struct {
	X0 float64 `yaml:"x0" json:"x0"`
	Y0 float64 `yaml:"y0" json:"y0"`
	X1 float64 `yaml:"x1" json:"x1"`
	Y1 float64 `yaml:"y1" json:"y1"`
}

// Rect scales the region to a concrete pixel rectangle for the given frame
// size.
func (r Region) Rect(width, height int) image.Rectangle {
	return image.Rect(
		int(r.X0*float64(width)),
		int(r.Y0*float64(height)),
		int(r.X1*float64(width)),
		int(r.Y1*float64(height)),
	)
}

// DeviceProfile contains static device metadata, read once at session start
// and embedded verbatim into the output map.
type DeviceProfile struct {
	HardwareVersion string `json:"HARDWARE_VERSION"`
	SoftwareVersion string `json:"SOFTWARE_VERSION"`
	Brand           string `json:"BRAND"`
	Model           string `json:"MODEL"`
	CameraVersion   string `json:"CAMERA_VERSION"`
}

// Frame is a single screenshot. Frames are transient: captured, compared or
// scanned, then discarded. They are never persisted.
type Frame struct {
	Image      image.Image
	CapturedAt time.Time
}

// Width returns the frame width in pixels.
func (f *Frame) Width() int {
	return f.Image.Bounds().Dx()
}

// Height returns the frame height in pixels.
func (f *Frame) Height() int {
	return f.Image.Bounds().Dy()
}
