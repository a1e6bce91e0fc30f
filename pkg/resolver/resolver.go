// Package resolver turns a control name plus the current frame into a
// candidate coordinate, trying the control's calibrated strategies in their
// declared order: fixed ratios, text anchoring, and offsets from
// already-resolved siblings. The first strategy to succeed wins.
package resolver

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/devicelab-dev/camera-mapper/pkg/calibration"
	"github.com/devicelab-dev/camera-mapper/pkg/core"
	"github.com/devicelab-dev/camera-mapper/pkg/ocr"
	"github.com/devicelab-dev/camera-mapper/pkg/session"
)

// Candidate is a proposed outcome for a control.
type Candidate struct {
	Scalar bool
	Point  core.Coordinate // valid when !Scalar
	Value  int             // valid when Scalar
}

// Resolver resolves controls against calibration data, an OCR locator, and
// the session's already-committed siblings.
type Resolver struct {
	cal      *calibration.Calibration
	locator  ocr.Locator
	hardware string
}

// New creates a Resolver. The hardware version selects calibration
// overrides for the device family.
func New(cal *calibration.Calibration, locator ocr.Locator, hardwareVersion string) *Resolver {
	return &Resolver{
		cal:      cal,
		locator:  locator,
		hardware: hardwareVersion,
	}
}

// Resolve produces a candidate for the control on the given frame, or an
// error when no strategy succeeds. The error is always in the resolution
// category; the caller decides when to give up and record absence.
func (r *Resolver) Resolve(ctx context.Context, control core.ControlName, frame *core.Frame, sess *session.Session) (Candidate, error) {
	strategies := r.cal.Strategies(control, r.hardware)
	if len(strategies) == 0 {
		return Candidate{}, core.ErrResolutionFailed.WithMessage(
			fmt.Sprintf("no strategies declared for %s", control))
	}

	var lastErr error
	for _, strategy := range strategies {
		var (
			candidate Candidate
			err       error
		)
		switch {
		case strategy.Ratio != nil:
			candidate, err = r.resolveRatio(strategy.Ratio, frame)
		case strategy.Text != nil:
			candidate, err = r.resolveText(ctx, strategy.Text, frame)
		case strategy.Offset != nil:
			candidate, err = r.resolveOffset(strategy.Offset, sess)
		case strategy.Scalar != nil:
			candidate, err = r.resolveScalar(strategy.Scalar, frame, sess)
		default:
			err = core.ErrResolutionFailed.WithMessage("empty strategy")
		}

		if err == nil {
			return candidate, nil
		}
		lastErr = err
	}

	return Candidate{}, lastErr
}

// resolveRatio scales the calibrated proportional position to the frame
// size. The result is clamped to the screen so x=1.0 calibration still maps
// to the last on-screen pixel.
func (r *Resolver) resolveRatio(ratio *calibration.Ratio, frame *core.Frame) (Candidate, error) {
	width, height := frame.Width(), frame.Height()
	x := int(math.Round(ratio.X * float64(width)))
	y := int(math.Round(ratio.Y * float64(height)))
	if x >= width {
		x = width - 1
	}
	if y >= height {
		y = height - 1
	}
	return Candidate{Point: core.Coordinate{X: x, Y: y}}, nil
}

// resolveText looks for exactly one confident label match on the frame and
// returns its bounding-box center. Zero matches fail; multiple matches are
// ambiguous and fail too, never tie-broken.
func (r *Resolver) resolveText(ctx context.Context, text *calibration.Text, frame *core.Frame) (Candidate, error) {
	matches, err := r.locator.Locate(ctx, frame, text.Region)
	if err != nil {
		return Candidate{}, core.ErrResolutionFailed.WithCause(err)
	}

	var hits []ocr.Match
	for _, match := range matches {
		if match.Confidence < text.MinConfidence {
			continue
		}
		for _, label := range text.Labels {
			if labelMatches(match.Text, label) {
				hits = append(hits, match)
				break
			}
		}
	}

	switch len(hits) {
	case 0:
		return Candidate{}, core.ErrResolutionFailed.WithMessage(
			fmt.Sprintf("no confident match for labels %v", text.Labels))
	case 1:
		return Candidate{Point: hits[0].Bounds.Center()}, nil
	default:
		return Candidate{}, core.ErrAmbiguousMatch.WithMessage(
			fmt.Sprintf("%d matches for labels %v", len(hits), text.Labels))
	}
}

// labelMatches compares recognized text against a calibration label,
// ignoring case and surrounding punctuation the recognizer tends to attach.
func labelMatches(recognized, label string) bool {
	trimmed := strings.Trim(recognized, ".,:;!|'\"")
	return strings.EqualFold(trimmed, label)
}

// resolveOffset derives the coordinate from an already-resolved sibling.
// It never succeeds when the anchor is absent.
func (r *Resolver) resolveOffset(offset *calibration.Offset, sess *session.Session) (Candidate, error) {
	anchor, ok := sess.Resolved(offset.Anchor)
	if !ok {
		return Candidate{}, core.ErrAnchorAbsent.WithMessage(
			fmt.Sprintf("anchor %s is absent or unresolved", offset.Anchor))
	}
	return Candidate{Point: core.Coordinate{X: anchor.X + offset.DX, Y: anchor.Y + offset.DY}}, nil
}

// resolveScalar produces a drag-distance step proportional to the screen
// width, gated on the anchor control being present.
func (r *Resolver) resolveScalar(scalar *calibration.Scalar, frame *core.Frame, sess *session.Session) (Candidate, error) {
	if entry, ok := sess.Entry(scalar.Anchor); !ok || entry.Kind == session.EntryAbsent {
		return Candidate{}, core.ErrAnchorAbsent.WithMessage(
			fmt.Sprintf("anchor %s is absent or unresolved", scalar.Anchor))
	}
	value := int(math.Round(scalar.WidthRatio * float64(frame.Width())))
	return Candidate{Scalar: true, Value: value}, nil
}
