package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorCategory_String(t *testing.T) {
	tests := []struct {
		category ErrorCategory
		expected string
	}{
		{ErrCategoryNone, "none"},
		{ErrCategoryConnection, "connection"},
		{ErrCategoryResolution, "resolution"},
		{ErrCategoryVerification, "verification"},
		{ErrCategoryConfig, "config"},
		{ErrorCategory(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.category.String(); got != tt.expected {
			t.Errorf("ErrorCategory(%d).String() = %q, want %q", tt.category, got, tt.expected)
		}
	}
}

func TestErrorCategory_Fatal(t *testing.T) {
	fatal := []ErrorCategory{ErrCategoryConnection, ErrCategoryConfig}
	recovered := []ErrorCategory{ErrCategoryResolution, ErrCategoryVerification}

	for _, c := range fatal {
		if !c.Fatal() {
			t.Errorf("%s.Fatal() = false, want true", c)
		}
	}
	for _, c := range recovered {
		if c.Fatal() {
			t.Errorf("%s.Fatal() = true, want false", c)
		}
	}
}

func TestMappingError_WithCause(t *testing.T) {
	cause := fmt.Errorf("adb: connection refused")
	err := ErrDeviceUnreachable.WithCause(cause)

	if !errors.Is(err, ErrDeviceUnreachable) {
		t.Error("wrapped error should match its sentinel")
	}
	if !errors.Is(err, cause) {
		t.Error("wrapped error should unwrap to its cause")
	}
	if err.Error() != "device bridge command failed: adb: connection refused" {
		t.Errorf("unexpected Error(): %q", err.Error())
	}

	// The sentinel itself is untouched.
	if ErrDeviceUnreachable.Cause != nil {
		t.Error("WithCause must not mutate the sentinel")
	}
}

func TestMappingError_WithMessage(t *testing.T) {
	err := ErrAmbiguousMatch.WithMessage(`3 matches for label "on"`)
	if err.Error() != `3 matches for label "on"` {
		t.Errorf("unexpected Error(): %q", err.Error())
	}
	if !errors.Is(err, ErrAmbiguousMatch) {
		t.Error("message override should keep sentinel identity")
	}
}

func TestMappingError_SentinelsDistinct(t *testing.T) {
	if errors.Is(ErrResolutionFailed, ErrAmbiguousMatch) {
		t.Error("distinct sentinels must not match each other")
	}
}
