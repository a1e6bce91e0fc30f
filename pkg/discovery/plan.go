// Package discovery walks the declared task graph: per screen context it
// enters via verified navigation taps, resolves the context's controls, and
// exits with back navigation before moving on.
package discovery

import (
	"fmt"

	"github.com/devicelab-dev/camera-mapper/pkg/core"
)

// Context is one screen/menu state grouping controls that are reachable
// without further unrelated navigation.
type Context struct {
	// Name identifies the context in logs.
	Name string

	// Entry lists the controls to tap, in order, to reach this context
	// from the home screen. Every entry control must already be resolved;
	// each tap is verified against the pre-tap frame.
	Entry []core.ControlName

	// Tasks are the controls resolved while this context is open.
	Tasks []core.ControlName

	// ExitBacks is the number of back presses returning to the home
	// screen. Enter/exit pairs are the only back-edges in the graph.
	ExitBacks int
}

// DefaultPlan returns the declared traversal order. Sibling-offset controls
// are listed after their anchors, and every context's entry controls are
// resolved in an earlier context.
func DefaultPlan() []Context {
	return []Context{
		{
			Name: "home",
			Tasks: []core.ControlName{
				core.ControlTakePicture,
				core.ControlTouch,
				core.ControlCam,
				core.ControlQuickControls,
				core.ControlZoom1,
				core.ControlZoom2,
				core.ControlZoom3,
				core.ControlPortraitMode,
			},
		},
		{
			Name:  "quick-controls",
			Entry: []core.ControlName{core.ControlQuickControls},
			Tasks: []core.ControlName{
				core.ControlFlashMenu,
				core.ControlAspectRatioMenu,
			},
			ExitBacks: 1,
		},
		{
			Name:  "flash-menu",
			Entry: []core.ControlName{core.ControlQuickControls, core.ControlFlashMenu},
			Tasks: []core.ControlName{
				core.ControlFlashOn,
				core.ControlFlashOff,
				core.ControlFlashAuto,
			},
			ExitBacks: 2,
		},
		{
			Name:  "aspect-ratio-menu",
			Entry: []core.ControlName{core.ControlQuickControls, core.ControlAspectRatioMenu},
			Tasks: []core.ControlName{
				core.ControlAspectRatio34,
				core.ControlAspectRatio916,
				core.ControlAspectRatio11,
				core.ControlAspectRatioFull,
			},
			ExitBacks: 2,
		},
		{
			Name:  "portrait",
			Entry: []core.ControlName{core.ControlPortraitMode},
			Tasks: []core.ControlName{
				core.ControlBlurMenu,
				core.ControlBlurBarMiddle,
				core.ControlBlurBarBefore,
				core.ControlBlurBarNext,
			},
			ExitBacks: 1,
		},
	}
}

// ValidatePlan checks the structural invariants of a traversal plan: the
// task set covers the vocabulary exactly once, and every entry control is
// resolved in a strictly earlier context.
func ValidatePlan(plan []Context) error {
	attempted := make(map[core.ControlName]string)

	for _, c := range plan {
		for _, entry := range c.Entry {
			if _, ok := attempted[entry]; !ok {
				return fmt.Errorf("context %s: entry control %s is not resolved by an earlier context", c.Name, entry)
			}
		}
		for _, task := range c.Tasks {
			if !task.Valid() {
				return fmt.Errorf("context %s: unknown control %s", c.Name, task)
			}
			if prev, ok := attempted[task]; ok {
				return fmt.Errorf("control %s appears in both %s and %s", task, prev, c.Name)
			}
			attempted[task] = c.Name
		}
	}

	for _, control := range core.Controls() {
		if _, ok := attempted[control]; !ok {
			return fmt.Errorf("control %s is not covered by any context", control)
		}
	}
	return nil
}
