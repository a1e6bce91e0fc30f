package adb

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestParseDevices(t *testing.T) {
	out := "List of devices attached\n" +
		"192.168.240.101:5555\tdevice\n" +
		"emulator-5554\toffline\n" +
		"R58M123ABC\tunauthorized\n" +
		"R58M456DEF\tdevice\n\n"

	serials := parseDevices(out)
	want := []string{"192.168.240.101:5555", "R58M456DEF"}
	if len(serials) != len(want) {
		t.Fatalf("got %v, want %v", serials, want)
	}
	for i := range want {
		if serials[i] != want[i] {
			t.Errorf("serial %d = %q, want %q", i, serials[i], want[i])
		}
	}
}

func TestParseDevices_Empty(t *testing.T) {
	if serials := parseDevices("List of devices attached\n\n"); len(serials) != 0 {
		t.Errorf("expected no serials, got %v", serials)
	}
}

func TestNormalizeAddr(t *testing.T) {
	tests := []struct{ in, want string }{
		{"192.168.240.101", "192.168.240.101:5555"},
		{"192.168.240.101:5555", "192.168.240.101:5555"},
		{"10.0.0.7:4444", "10.0.0.7:4444"},
	}
	for _, tt := range tests {
		if got := normalizeAddr(tt.in); got != tt.want {
			t.Errorf("normalizeAddr(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseWMSize(t *testing.T) {
	w, h, err := parseWMSize("Physical size: 720x1450\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w != 720 || h != 1450 {
		t.Errorf("got %dx%d, want 720x1450", w, h)
	}
}

func TestParseWMSize_OverrideWins(t *testing.T) {
	out := "Physical size: 1080x2400\nOverride size: 720x1600\n"
	w, h, err := parseWMSize(out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w != 720 || h != 1600 {
		t.Errorf("got %dx%d, want the override 720x1600", w, h)
	}
}

func TestParseWMSize_Garbage(t *testing.T) {
	if _, _, err := parseWMSize("error: no devices/emulators found\n"); err == nil {
		t.Error("expected an error for unparseable output")
	}
}

func TestParseVersionName(t *testing.T) {
	out := `Packages:
  Package [com.sec.android.app.camera] (a1b2c3):
    userId=10094
    versionCode=1200019600 minSdk=31 targetSdk=34
    versionName=12.0.01.96
    splits=[base]
`
	if got := parseVersionName(out); got != "12.0.01.96" {
		t.Errorf("versionName = %q, want 12.0.01.96", got)
	}
}

func TestParseVersionName_Missing(t *testing.T) {
	if got := parseVersionName("Unable to find package: com.example\n"); got != "" {
		t.Errorf("expected empty versionName, got %q", got)
	}
}

func TestForegroundIsCamera(t *testing.T) {
	out := `ACTIVITY MANAGER ACTIVITIES (dumpsys activity activities)
Display #0 (activities from top to bottom):
  * Task{4f1a2b #42 type=standard A=10094:com.sec.android.app.camera}
    topResumedActivity=ActivityRecord{8c3d u0 com.sec.android.app.camera/.Camera t42}
  ResumedActivity: ActivityRecord{8c3d u0 com.sec.android.app.camera/.Camera t42}
`
	if !foregroundIsCamera(out) {
		t.Error("camera in the resumed activity should match")
	}
}

func TestForegroundIsCamera_OtherApp(t *testing.T) {
	out := `Display #0 (activities from top to bottom):
  * Task{1234 #7 type=home A=10101:com.sec.android.app.launcher}
  ResumedActivity: ActivityRecord{9e2f u0 com.sec.android.app.launcher/.Home t7}
`
	if foregroundIsCamera(out) {
		t.Error("the launcher must not pass as the camera app")
	}
}

func TestWaitForDevice_Cancellation(t *testing.T) {
	b := &Bridge{serial: "192.168.240.101:5555", adbPath: "/nonexistent/adb"}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := b.waitForDevice(ctx, 5*time.Second)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want context.Canceled", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("cancellation took %v, should not sit out the poll interval", elapsed)
	}
}
