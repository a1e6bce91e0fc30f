// Package calibration holds the declarative per-control resolution data:
// which strategies to try for each control, in which order, and per
// hardware-version overrides. Keeping this out of the control flow lets the
// data grow per supported device family without touching the engine.
package calibration

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/devicelab-dev/camera-mapper/pkg/core"
)

//go:embed default.yaml
var defaultYAML []byte

// Ratio positions a control at a fixed proportion of the screen size.
type Ratio struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// Text anchors a control on an OCR label match.
type Text struct {
	Labels        []string     `yaml:"labels"`
	Region        *core.Region `yaml:"region,omitempty"`
	MinConfidence float64      `yaml:"minConfidence"`
}

// Offset derives a control from an already-resolved sibling.
type Offset struct {
	Anchor core.ControlName `yaml:"anchor"`
	DX     int              `yaml:"dx"`
	DY     int              `yaml:"dy"`
}

// Scalar produces a drag-distance value proportional to the screen width,
// valid only while its anchor control is present.
type Scalar struct {
	Anchor     core.ControlName `yaml:"anchor"`
	WidthRatio float64          `yaml:"widthRatio"`
}

// Strategy is a tagged union: exactly one member is set.
type Strategy struct {
	Ratio  *Ratio  `yaml:"ratio,omitempty"`
	Text   *Text   `yaml:"text,omitempty"`
	Offset *Offset `yaml:"offset,omitempty"`
	Scalar *Scalar `yaml:"scalar,omitempty"`
}

// kindCount returns how many members of the union are set.
func (s Strategy) kindCount() int {
	n := 0
	if s.Ratio != nil {
		n++
	}
	if s.Text != nil {
		n++
	}
	if s.Offset != nil {
		n++
	}
	if s.Scalar != nil {
		n++
	}
	return n
}

// Override replaces strategy lists for specific controls on one hardware
// version. Replacement is wholesale per control, not merged.
type Override struct {
	Controls map[core.ControlName][]Strategy `yaml:"controls"`
}

// Calibration is the full calibration document.
type Calibration struct {
	Controls  map[core.ControlName][]Strategy `yaml:"controls"`
	Overrides map[string]Override             `yaml:"overrides,omitempty"`
}

// Default returns the compiled-in calibration data.
func Default() (*Calibration, error) {
	return parse(defaultYAML)
}

// Load reads a calibration file, replacing the defaults entirely.
func Load(path string) (*Calibration, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- user-provided calibration file
	if err != nil {
		return nil, core.ErrInvalidCalibration.WithCause(err)
	}
	return parse(data)
}

func parse(data []byte) (*Calibration, error) {
	var cal Calibration
	if err := yaml.Unmarshal(data, &cal); err != nil {
		return nil, core.ErrInvalidCalibration.WithCause(err)
	}
	if err := cal.Validate(); err != nil {
		return nil, err
	}
	return &cal, nil
}

// Validate checks the document against the vocabulary and strategy rules.
func (c *Calibration) Validate() error {
	for control, strategies := range c.Controls {
		if err := validateControl(control, strategies); err != nil {
			return err
		}
	}
	for version, override := range c.Overrides {
		for control, strategies := range override.Controls {
			if err := validateControl(control, strategies); err != nil {
				return core.ErrInvalidCalibration.WithMessage(
					fmt.Sprintf("override %q: %v", version, err))
			}
		}
	}
	return nil
}

func validateControl(control core.ControlName, strategies []Strategy) error {
	if !control.Valid() {
		return core.ErrInvalidCalibration.WithMessage(
			fmt.Sprintf("unknown control %q", control))
	}
	if len(strategies) == 0 {
		return core.ErrInvalidCalibration.WithMessage(
			fmt.Sprintf("%s: empty strategy list", control))
	}
	for i, s := range strategies {
		if s.kindCount() != 1 {
			return core.ErrInvalidCalibration.WithMessage(
				fmt.Sprintf("%s[%d]: exactly one strategy kind required", control, i))
		}
		switch {
		case s.Ratio != nil:
			if s.Ratio.X < 0 || s.Ratio.X > 1 || s.Ratio.Y < 0 || s.Ratio.Y > 1 {
				return core.ErrInvalidCalibration.WithMessage(
					fmt.Sprintf("%s[%d]: ratio outside [0, 1]", control, i))
			}
		case s.Text != nil:
			if len(s.Text.Labels) == 0 {
				return core.ErrInvalidCalibration.WithMessage(
					fmt.Sprintf("%s[%d]: text strategy needs labels", control, i))
			}
			if s.Text.MinConfidence < 0 || s.Text.MinConfidence > 1 {
				return core.ErrInvalidCalibration.WithMessage(
					fmt.Sprintf("%s[%d]: minConfidence outside [0, 1]", control, i))
			}
		case s.Offset != nil:
			if err := validateAnchor(control, s.Offset.Anchor, i); err != nil {
				return err
			}
		case s.Scalar != nil:
			if err := validateAnchor(control, s.Scalar.Anchor, i); err != nil {
				return err
			}
		}
	}
	return nil
}

// validateAnchor enforces the causal ordering invariant: an anchor must be
// discovered before any control derived from it.
func validateAnchor(control, anchor core.ControlName, idx int) error {
	if !anchor.Valid() {
		return core.ErrInvalidCalibration.WithMessage(
			fmt.Sprintf("%s[%d]: unknown anchor %q", control, idx, anchor))
	}
	if anchor.OrderIndex() >= control.OrderIndex() {
		return core.ErrInvalidCalibration.WithMessage(
			fmt.Sprintf("%s[%d]: anchor %s is not discovered before %s", control, idx, anchor, control))
	}
	return nil
}

// Strategies returns the strategy list for a control under the given
// hardware version, applying any override. A nil slice means the control
// has no way to resolve on this device family and will be recorded absent.
func (c *Calibration) Strategies(control core.ControlName, hardwareVersion string) []Strategy {
	if override, ok := c.Overrides[hardwareVersion]; ok {
		if strategies, ok := override.Controls[control]; ok {
			return strategies
		}
	}
	return c.Controls[control]
}
