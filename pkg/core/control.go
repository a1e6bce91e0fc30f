// Package core defines the shared vocabulary and types for camera-mapper:
// the control vocabulary, coordinates, frames, the device adapter interface,
// and the error taxonomy.
package core

// ControlName identifies a single tappable UI element of the camera app.
// The vocabulary is fixed at build time; every mapping session produces
// exactly one entry per name.
type ControlName string

// Control vocabulary.
const (
	ControlTakePicture     ControlName = "TAKE_PICTURE"
	ControlTouch           ControlName = "TOUCH"
	ControlCam             ControlName = "CAM"
	ControlQuickControls   ControlName = "QUICK_CONTROLS"
	ControlZoom1           ControlName = "ZOOM_1"
	ControlZoom2           ControlName = "ZOOM_2"
	ControlZoom3           ControlName = "ZOOM_3"
	ControlFlashMenu       ControlName = "FLASH_MENU"
	ControlFlashOn         ControlName = "FLASH_ON"
	ControlFlashOff        ControlName = "FLASH_OFF"
	ControlFlashAuto       ControlName = "FLASH_AUTO"
	ControlAspectRatioMenu ControlName = "ASPECT_RATIO_MENU"
	ControlAspectRatio34   ControlName = "ASPECT_RATIO_3_4"
	ControlAspectRatio916  ControlName = "ASPECT_RATIO_9_16"
	ControlAspectRatio11   ControlName = "ASPECT_RATIO_1_1"
	ControlAspectRatioFull ControlName = "ASPECT_RATIO_FULL"
	ControlPortraitMode    ControlName = "PORTRAIT_MODE"
	ControlBlurMenu        ControlName = "BLUR_MENU"
	ControlBlurBarMiddle   ControlName = "BLUR_BAR_MIDDLE"
	ControlBlurBarBefore   ControlName = "BLUR_BAR_BEFORE"
	ControlBlurBarNext     ControlName = "BLUR_BAR_NEXT"
)

// controlOrder is the declared discovery order. Output field order follows
// this list, and sibling-offset controls always appear after their anchor.
var controlOrder = []ControlName{
	ControlTakePicture,
	ControlTouch,
	ControlCam,
	ControlQuickControls,
	ControlZoom1,
	ControlZoom2,
	ControlZoom3,
	ControlFlashMenu,
	ControlFlashOn,
	ControlFlashOff,
	ControlFlashAuto,
	ControlAspectRatioMenu,
	ControlAspectRatio34,
	ControlAspectRatio916,
	ControlAspectRatio11,
	ControlAspectRatioFull,
	ControlPortraitMode,
	ControlBlurMenu,
	ControlBlurBarMiddle,
	ControlBlurBarBefore,
	ControlBlurBarNext,
}

// scalarControls hold a single drag-distance value instead of a point.
var scalarControls = map[ControlName]bool{
	ControlBlurBarBefore: true,
	ControlBlurBarNext:   true,
}

// Controls returns the full vocabulary in declared discovery order.
// The returned slice is a copy.
func Controls() []ControlName {
	out := make([]ControlName, len(controlOrder))
	copy(out, controlOrder)
	return out
}

// ControlKind distinguishes point controls from scalar step quantities.
type ControlKind int

// ControlKind values.
const (
	KindPoint ControlKind = iota
	KindScalar
)

// Kind returns the kind of the control.
func (c ControlName) Kind() ControlKind {
	if scalarControls[c] {
		return KindScalar
	}
	return KindPoint
}

// Valid reports whether the name belongs to the declared vocabulary.
func (c ControlName) Valid() bool {
	for _, name := range controlOrder {
		if name == c {
			return true
		}
	}
	return false
}

// OrderIndex returns the position of the control in the declared discovery
// order, or -1 for names outside the vocabulary.
func (c ControlName) OrderIndex() int {
	for i, name := range controlOrder {
		if name == c {
			return i
		}
	}
	return -1
}
