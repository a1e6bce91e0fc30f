// Package adb implements the device bridge over the Android Debug Bridge
// binary. It satisfies core.Adapter for real hardware: taps and back presses
// via input injection, screenshots via screencap, and the device profile via
// system properties.
package adb

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/devicelab-dev/camera-mapper/pkg/core"
)

// DefaultPort is the adb-over-TCP port appended to bare IP addresses.
const DefaultPort = 5555

// defaultCameraPackage is the stock camera app whose versionName is read
// into the device profile.
const defaultCameraPackage = "com.sec.android.app.camera"

// Bridge is one connected device reachable through the adb binary.
type Bridge struct {
	serial  string
	adbPath string
	pkg     string
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithCameraPackage overrides the camera app whose version is profiled.
func WithCameraPackage(pkg string) Option {
	return func(b *Bridge) {
		if pkg != "" {
			b.pkg = pkg
		}
	}
}

// Connect establishes an adb-over-TCP connection to the given address and
// returns a Bridge bound to it. A bare IP gets the default port appended.
func Connect(ctx context.Context, addr string, opts ...Option) (*Bridge, error) {
	adbPath, err := findADB()
	if err != nil {
		return nil, core.ErrDeviceUnreachable.WithCause(err)
	}

	serial := normalizeAddr(addr)
	out, err := run(ctx, adbPath, "connect", serial)
	if err != nil {
		return nil, core.ErrDeviceUnreachable.WithMessage("connect " + serial).WithCause(err)
	}
	// "adb connect" exits zero even on failure; the outcome is in the text.
	if !strings.Contains(out, "connected to "+serial) {
		return nil, core.ErrDeviceUnreachable.WithMessage("connect " + serial + ": " + strings.TrimSpace(out))
	}

	b := &Bridge{serial: serial, adbPath: adbPath, pkg: defaultCameraPackage}
	for _, opt := range opts {
		opt(b)
	}
	if err := b.waitForDevice(ctx, 5*time.Second); err != nil {
		return nil, err
	}
	return b, nil
}

// New binds a Bridge to an already-connected device serial. If serial is
// empty, the first connected device is used.
func New(ctx context.Context, serial string, opts ...Option) (*Bridge, error) {
	adbPath, err := findADB()
	if err != nil {
		return nil, core.ErrDeviceUnreachable.WithCause(err)
	}

	if serial == "" {
		serials, err := listDevices(ctx, adbPath)
		if err != nil {
			return nil, core.ErrDeviceUnreachable.WithCause(err)
		}
		if len(serials) == 0 {
			return nil, core.ErrDeviceUnreachable.WithMessage("no connected devices found")
		}
		serial = serials[0]
	}

	b := &Bridge{serial: serial, adbPath: adbPath, pkg: defaultCameraPackage}
	for _, opt := range opts {
		opt(b)
	}
	if err := b.waitForDevice(ctx, 5*time.Second); err != nil {
		return nil, err
	}
	return b, nil
}

// Devices lists the serials of all devices in the "device" state.
func Devices(ctx context.Context) ([]string, error) {
	adbPath, err := findADB()
	if err != nil {
		return nil, core.ErrDeviceUnreachable.WithCause(err)
	}
	return listDevices(ctx, adbPath)
}

// Serial returns the serial (or host:port) this bridge is bound to.
func (b *Bridge) Serial() string {
	return b.serial
}

// Tap injects a tap at the given coordinate. A zero-length swipe is used
// because it registers reliably on camera viewfinder surfaces where a plain
// tap event is sometimes swallowed.
func (b *Bridge) Tap(ctx context.Context, x, y int) error {
	xs, ys := strconv.Itoa(x), strconv.Itoa(y)
	if _, err := b.shell(ctx, "input", "swipe", xs, ys, xs, ys); err != nil {
		return core.ErrDeviceUnreachable.WithMessage(fmt.Sprintf("tap %d,%d", x, y)).WithCause(err)
	}
	return nil
}

// Back injects the hardware back key.
func (b *Bridge) Back(ctx context.Context) error {
	if _, err := b.shell(ctx, "input", "keyevent", "4"); err != nil {
		return core.ErrDeviceUnreachable.WithMessage("back").WithCause(err)
	}
	return nil
}

// Screenshot captures the current screen as a decoded PNG frame. exec-out
// streams the raw bytes without the line-ending mangling of "adb shell".
func (b *Bridge) Screenshot(ctx context.Context) (*core.Frame, error) {
	raw, err := b.adb(ctx, "exec-out", "screencap", "-p")
	if err != nil {
		return nil, core.ErrDeviceUnreachable.WithMessage("screencap").WithCause(err)
	}
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, core.ErrDeviceUnreachable.WithMessage("decode screencap").WithCause(err)
	}
	return &core.Frame{Image: img, CapturedAt: time.Now()}, nil
}

// DeviceInfo assembles the device profile from system properties and the
// camera app's package record.
func (b *Bridge) DeviceInfo(ctx context.Context) (core.DeviceProfile, error) {
	profile := core.DeviceProfile{}

	props := []struct {
		key  string
		dest *string
	}{
		{"ro.boot.hardware.revision", &profile.HardwareVersion},
		{"ro.build.version.release", &profile.SoftwareVersion},
		{"ro.product.brand", &profile.Brand},
		{"ro.product.model", &profile.Model},
	}
	for _, p := range props {
		out, err := b.shell(ctx, "getprop", p.key)
		if err != nil {
			return core.DeviceProfile{}, core.ErrDeviceUnreachable.WithMessage("getprop " + p.key).WithCause(err)
		}
		*p.dest = strings.TrimSpace(out)
	}
	if profile.HardwareVersion == "" {
		out, err := b.shell(ctx, "getprop", "ro.hardware")
		if err == nil {
			profile.HardwareVersion = strings.TrimSpace(out)
		}
	}

	// The camera app version is best-effort: an unknown package leaves the
	// field empty rather than failing the whole profile.
	if out, err := b.shell(ctx, "dumpsys", "package", b.pkg); err == nil {
		profile.CameraVersion = parseVersionName(out)
	}

	return profile, nil
}

// ScreenSize reports the device resolution from "wm size".
func (b *Bridge) ScreenSize(ctx context.Context) (width, height int, err error) {
	out, err := b.shell(ctx, "wm", "size")
	if err != nil {
		return 0, 0, core.ErrDeviceUnreachable.WithMessage("wm size").WithCause(err)
	}
	width, height, err = parseWMSize(out)
	if err != nil {
		return 0, 0, core.ErrDeviceUnreachable.WithCause(err)
	}
	return width, height, nil
}

// LaunchCamera starts the camera app through its launcher intent and waits
// until it owns the foreground activity. The foreground check retries a few
// times because the app animates in after the launch command returns.
func (b *Bridge) LaunchCamera(ctx context.Context) error {
	_, err := b.shell(ctx, "monkey", "-p", b.pkg, "-c", "android.intent.category.LAUNCHER", "1")
	if err != nil {
		return core.ErrDeviceUnreachable.WithMessage("launch " + b.pkg).WithCause(err)
	}

	const checks = 3
	for attempt := 1; attempt <= checks; attempt++ {
		select {
		case <-time.After(time.Second):
		case <-ctx.Done():
			return ctx.Err()
		}
		out, err := b.shell(ctx, "dumpsys", "activity", "activities")
		if err != nil {
			return core.ErrDeviceUnreachable.WithMessage("dumpsys activity").WithCause(err)
		}
		if foregroundIsCamera(out) {
			return nil
		}
	}
	return core.ErrDeviceUnreachable.WithMessage(b.pkg + " did not reach the foreground")
}

// shell runs a command on the device and returns its combined stdout.
func (b *Bridge) shell(ctx context.Context, args ...string) (string, error) {
	out, err := b.adb(ctx, append([]string{"shell"}, args...)...)
	return string(out), err
}

// adb executes the binary against this device, returning raw stdout.
func (b *Bridge) adb(ctx context.Context, args ...string) ([]byte, error) {
	cmdArgs := make([]string, 0, len(args)+2)
	cmdArgs = append(cmdArgs, "-s", b.serial)
	cmdArgs = append(cmdArgs, args...)

	cmd := exec.CommandContext(ctx, b.adbPath, cmdArgs...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		errMsg := strings.TrimSpace(stderr.String())
		if errMsg == "" {
			errMsg = strings.TrimSpace(stdout.String())
		}
		return nil, fmt.Errorf("adb %s: %w: %s", strings.Join(args, " "), err, errMsg)
	}
	return stdout.Bytes(), nil
}

// waitForDevice polls until the device reports the "device" state.
func (b *Bridge) waitForDevice(ctx context.Context, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if b.isConnected(ctx) {
			return nil
		}
		select {
		case <-time.After(500 * time.Millisecond):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return core.ErrDeviceUnreachable.WithMessage("timeout waiting for device " + b.serial)
}

func (b *Bridge) isConnected(ctx context.Context) bool {
	out, err := b.adb(ctx, "get-state")
	if err != nil {
		return false
	}
	return strings.TrimSpace(string(out)) == "device"
}

// run executes a bare adb command (no -s serial).
func run(ctx context.Context, adbPath string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, adbPath, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		errMsg := strings.TrimSpace(stderr.String())
		if errMsg == "" {
			errMsg = strings.TrimSpace(stdout.String())
		}
		return "", fmt.Errorf("adb %s: %w: %s", strings.Join(args, " "), err, errMsg)
	}
	return stdout.String(), nil
}

func listDevices(ctx context.Context, adbPath string) ([]string, error) {
	out, err := run(ctx, adbPath, "devices")
	if err != nil {
		return nil, err
	}
	return parseDevices(out), nil
}

// parseDevices extracts serials in the "device" state from "adb devices"
// output.
func parseDevices(out string) []string {
	var serials []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "List of") {
			continue
		}
		parts := strings.Fields(line)
		if len(parts) >= 2 && parts[1] == "device" {
			serials = append(serials, parts[0])
		}
	}
	return serials
}

// normalizeAddr appends the default adb TCP port to a bare address.
func normalizeAddr(addr string) string {
	if strings.Contains(addr, ":") {
		return addr
	}
	return fmt.Sprintf("%s:%d", addr, DefaultPort)
}

// parseWMSize extracts the resolution from "wm size" output, preferring the
// override size when the device reports one.
func parseWMSize(out string) (int, int, error) {
	width, height := 0, 0
	found := false
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		var label string
		var w, h int
		if n, err := fmt.Sscanf(line, "%s size: %dx%d", &label, &w, &h); err == nil && n == 3 {
			width, height = w, h
			found = true
			if label == "Override" {
				break
			}
		}
	}
	if !found {
		return 0, 0, fmt.Errorf("no resolution in wm size output: %q", strings.TrimSpace(out))
	}
	return width, height, nil
}

// parseVersionName extracts the first versionName value from dumpsys
// package output.
func parseVersionName(out string) string {
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if v, ok := strings.CutPrefix(line, "versionName="); ok {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// foregroundIsCamera reports whether the resumed activity in "dumpsys
// activity activities" output belongs to a camera app. Matching on "cam"
// covers both the stock package and OEM renames.
func foregroundIsCamera(out string) bool {
	for _, line := range strings.Split(out, "\n") {
		if !strings.Contains(line, "ResumedActivity") {
			continue
		}
		if strings.Contains(strings.ToLower(line), "cam") {
			return true
		}
	}
	return false
}

// findADB locates the adb binary on PATH.
func findADB() (string, error) {
	if path, err := exec.LookPath("adb"); err == nil {
		return path, nil
	}
	return "", fmt.Errorf("adb not found in PATH; ensure Android platform-tools are installed")
}
