package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os/exec"
	"strconv"
	"strings"

	"github.com/devicelab-dev/camera-mapper/pkg/core"
)

// Tesseract is a Locator backed by the tesseract binary in TSV mode.
type Tesseract struct {
	binary string
	lang   string
}

// TesseractOption configures the backend.
type TesseractOption func(*Tesseract)

// WithBinary overrides the tesseract executable path.
func WithBinary(path string) TesseractOption {
	return func(t *Tesseract) { t.binary = path }
}

// WithLanguage sets the recognition language (default "eng").
func WithLanguage(lang string) TesseractOption {
	return func(t *Tesseract) { t.lang = lang }
}

// NewTesseract creates a tesseract-backed Locator.
func NewTesseract(opts ...TesseractOption) *Tesseract {
	t := &Tesseract{binary: "tesseract", lang: "eng"}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// subImager is implemented by the stdlib raster image types.
type subImager interface {
	SubImage(r image.Rectangle) image.Image
}

// Locate runs tesseract over the frame (or the cropped region) and returns
// word-level matches in full-frame coordinates.
func (t *Tesseract) Locate(ctx context.Context, frame *core.Frame, region *core.Region) ([]Match, error) {
	img := frame.Image
	offsetX, offsetY := 0, 0

	if region != nil {
		rect := region.Rect(frame.Width(), frame.Height())
		cropper, ok := img.(subImager)
		if !ok {
			return nil, fmt.Errorf("frame image type %T does not support cropping", img)
		}
		img = cropper.SubImage(rect.Add(img.Bounds().Min))
		offsetX, offsetY = rect.Min.X, rect.Min.Y
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}

	cmd := exec.CommandContext(ctx, t.binary, "stdin", "stdout", "-l", t.lang, "tsv")
	cmd.Stdin = &buf
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("tesseract: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	matches, err := parseTSV(out.String())
	if err != nil {
		return nil, err
	}

	for i := range matches {
		matches[i].Bounds.X += offsetX
		matches[i].Bounds.Y += offsetY
	}
	return matches, nil
}

// tsvWordLevel marks word rows in tesseract TSV output.
const tsvWordLevel = 5

// parseTSV extracts word-level matches from tesseract TSV output. Rows for
// pages, blocks, and lines (conf -1) are skipped.
func parseTSV(tsv string) ([]Match, error) {
	var matches []Match

	lines := strings.Split(strings.TrimSpace(tsv), "\n")
	for i, line := range lines {
		if i == 0 || strings.TrimSpace(line) == "" {
			continue // header
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 12 {
			return nil, fmt.Errorf("malformed tsv row %d: %q", i, line)
		}

		level, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("malformed tsv level in row %d: %w", i, err)
		}
		if level != tsvWordLevel {
			continue
		}

		text := strings.TrimSpace(fields[11])
		if text == "" {
			continue
		}

		left, err1 := strconv.Atoi(fields[6])
		top, err2 := strconv.Atoi(fields[7])
		width, err3 := strconv.Atoi(fields[8])
		height, err4 := strconv.Atoi(fields[9])
		conf, err5 := strconv.ParseFloat(fields[10], 64)
		for _, err := range []error{err1, err2, err3, err4, err5} {
			if err != nil {
				return nil, fmt.Errorf("malformed tsv geometry in row %d: %w", i, err)
			}
		}
		if conf < 0 {
			continue
		}

		matches = append(matches, Match{
			Text:       text,
			Bounds:     core.Bounds{X: left, Y: top, Width: width, Height: height},
			Confidence: conf / 100,
		})
	}

	return matches, nil
}
