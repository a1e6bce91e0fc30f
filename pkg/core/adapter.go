package core

import "context"

// Adapter is the low-level device bridge consumed by the discovery engine.
// Implementations: adb over TCP/IP, mock for tests.
// Any adapter failure is fatal for the session: the engine does not try to
// distinguish transient connectivity loss from a gone device.
type Adapter interface {
	// Tap simulates a tap at the given pixel coordinate.
	Tap(ctx context.Context, x, y int) error

	// Back issues a back-navigation key event.
	Back(ctx context.Context) error

	// Screenshot captures the current screen.
	Screenshot(ctx context.Context) (*Frame, error)

	// DeviceInfo reads static device metadata.
	DeviceInfo(ctx context.Context) (DeviceProfile, error)
}
