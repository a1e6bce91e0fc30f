// Package ocr locates text on screenshots. The recognition backend sits
// behind the Locator interface so it can be swapped (or mocked in tests)
// without touching the discovery logic.
package ocr

import (
	"context"

	"github.com/devicelab-dev/camera-mapper/pkg/core"
)

// Match is one recognized text span with its on-screen bounding box.
type Match struct {
	Text       string
	Bounds     core.Bounds
	Confidence float64 // 0..1
}

// Locator runs text recognition over a frame.
//
// A nil region scans the whole frame. Cropping is an optimization: it cuts
// inference cost and false positives from unrelated on-screen text, never a
// correctness requirement. Locate is deterministic for identical pixel
// input; retries belong to the caller.
type Locator interface {
	Locate(ctx context.Context, frame *core.Frame, region *core.Region) ([]Match, error)
}
