// Package compare decides whether two screenshots show the same UI state.
//
// Frames are downsampled to a small grayscale grid before scoring, which
// makes the verdict robust to rendering noise (status-bar clock ticks,
// compression artifacts) that exact pixel equality would trip over.
package compare

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"

	"github.com/devicelab-dev/camera-mapper/pkg/core"
)

// Defaults tuned against 720x1450 captures; a menu opening moves the score
// well below 0.9 while clock ticks stay above 0.99.
const (
	DefaultGridSize  = 64
	DefaultThreshold = 0.98
)

// Comparator scores frame pairs for structural similarity.
type Comparator struct {
	gridSize  int
	threshold float64
}

// Option configures a Comparator.
type Option func(*Comparator)

// WithGridSize sets the side length of the downsampling grid.
func WithGridSize(n int) Option {
	return func(c *Comparator) {
		if n > 0 {
			c.gridSize = n
		}
	}
}

// WithThreshold sets the similarity threshold separating "same" from
// "different". Scores below the threshold mean the frames differ.
func WithThreshold(t float64) Option {
	return func(c *Comparator) {
		if t > 0 && t <= 1 {
			c.threshold = t
		}
	}
}

// New creates a Comparator with the given options.
func New(opts ...Option) *Comparator {
	c := &Comparator{
		gridSize:  DefaultGridSize,
		threshold: DefaultThreshold,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Threshold returns the configured similarity threshold.
func (c *Comparator) Threshold() float64 {
	return c.threshold
}

// Similarity returns a score in [0, 1]: 1 for identical frames, 0 for
// maximally different ones. The score is symmetric in its arguments.
func (c *Comparator) Similarity(a, b *core.Frame) float64 {
	ga := c.downsample(a.Image)
	gb := c.downsample(b.Image)

	var total int64
	for i := range ga.Pix {
		d := int64(ga.Pix[i]) - int64(gb.Pix[i])
		if d < 0 {
			d = -d
		}
		total += d
	}

	cells := int64(len(ga.Pix))
	return 1 - float64(total)/float64(cells*255)
}

// Differs reports whether the two frames represent different UI states.
func (c *Comparator) Differs(a, b *core.Frame) bool {
	return c.Similarity(a, b) < c.threshold
}

// downsample scales the image onto the comparison grid as 8-bit grayscale.
func (c *Comparator) downsample(img image.Image) *image.Gray {
	rgba := image.NewRGBA(image.Rect(0, 0, c.gridSize, c.gridSize))
	draw.ApproxBiLinear.Scale(rgba, rgba.Bounds(), img, img.Bounds(), draw.Src, nil)

	gray := image.NewGray(rgba.Bounds())
	for y := 0; y < c.gridSize; y++ {
		for x := 0; x < c.gridSize; x++ {
			gray.SetGray(x, y, color.GrayModel.Convert(rgba.At(x, y)).(color.Gray))
		}
	}
	return gray
}
