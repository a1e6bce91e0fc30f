package calibration

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/devicelab-dev/camera-mapper/pkg/core"
)

func TestDefault_CoversVocabulary(t *testing.T) {
	cal, err := Default()
	if err != nil {
		t.Fatalf("Default() error: %v", err)
	}

	for _, control := range core.Controls() {
		if len(cal.Controls[control]) == 0 {
			t.Errorf("default calibration has no strategies for %s", control)
		}
	}
}

func TestDefault_Zoom2Offset(t *testing.T) {
	cal, err := Default()
	if err != nil {
		t.Fatalf("Default() error: %v", err)
	}

	strategies := cal.Strategies(core.ControlZoom2, "")
	if len(strategies) != 1 || strategies[0].Offset == nil {
		t.Fatalf("ZOOM_2 should have a single offset strategy, got %+v", strategies)
	}
	off := strategies[0].Offset
	if off.Anchor != core.ControlZoom1 || off.DX != 64 || off.DY != 0 {
		t.Errorf("ZOOM_2 offset = %+v, want anchor ZOOM_1 (+64, 0)", off)
	}
}

func TestStrategies_HardwareOverride(t *testing.T) {
	cal, err := Default()
	if err != nil {
		t.Fatalf("Default() error: %v", err)
	}

	// Hardware 1.0.0 replaces the ZOOM_1 list wholesale.
	overridden := cal.Strategies(core.ControlZoom1, "1.0.0")
	if len(overridden) != 1 || overridden[0].Ratio == nil {
		t.Fatalf("ZOOM_1 under 1.0.0 should be a single ratio strategy, got %+v", overridden)
	}

	// Unknown versions fall back to the base list.
	base := cal.Strategies(core.ControlZoom1, "9.9.9")
	if len(base) != 2 {
		t.Errorf("ZOOM_1 base strategies = %d, want 2", len(base))
	}

	// Controls without an override are untouched even on 1.0.0.
	if got := cal.Strategies(core.ControlTakePicture, "1.0.0"); len(got) != 1 || got[0].Ratio == nil {
		t.Errorf("TAKE_PICTURE should keep its base ratio strategy, got %+v", got)
	}
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			"unknown control",
			"controls:\n  SHUTTER:\n    - ratio: {x: 0.5, y: 0.5}\n",
		},
		{
			"empty strategy list",
			"controls:\n  TAKE_PICTURE: []\n",
		},
		{
			"two kinds in one strategy",
			"controls:\n  TAKE_PICTURE:\n    - ratio: {x: 0.5, y: 0.5}\n      scalar: {anchor: TOUCH, widthRatio: 0.1}\n",
		},
		{
			"ratio out of range",
			"controls:\n  TAKE_PICTURE:\n    - ratio: {x: 1.5, y: 0.5}\n",
		},
		{
			"text without labels",
			"controls:\n  FLASH_MENU:\n    - text: {labels: [], minConfidence: 0.5}\n",
		},
		{
			"confidence out of range",
			"controls:\n  FLASH_MENU:\n    - text: {labels: [\"flash\"], minConfidence: 1.5}\n",
		},
		{
			"unknown anchor",
			"controls:\n  ZOOM_2:\n    - offset: {anchor: NOPE, dx: 64, dy: 0}\n",
		},
		{
			"anchor after dependent",
			"controls:\n  ZOOM_2:\n    - offset: {anchor: ZOOM_3, dx: 64, dy: 0}\n",
		},
		{
			"bad override",
			"controls:\n  TOUCH:\n    - ratio: {x: 0.5, y: 0.5}\noverrides:\n  \"2.0.0\":\n    controls:\n      NOPE:\n        - ratio: {x: 0.5, y: 0.5}\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !errors.Is(err, core.ErrInvalidCalibration) {
				t.Errorf("error %v is not ErrInvalidCalibration", err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cal.yaml")
	content := "controls:\n  TAKE_PICTURE:\n    - ratio: {x: 0.4, y: 0.9}\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cal, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	got := cal.Strategies(core.ControlTakePicture, "")
	if len(got) != 1 || got[0].Ratio == nil || got[0].Ratio.X != 0.4 {
		t.Errorf("unexpected strategies: %+v", got)
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); !errors.Is(err, core.ErrInvalidCalibration) {
		t.Errorf("missing file should yield ErrInvalidCalibration, got %v", err)
	}
}
