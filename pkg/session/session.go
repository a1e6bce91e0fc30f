// Package session owns the single mutable aggregate of a mapping run: the
// device profile, the control→coordinate store, and its JSON form.
package session

import (
	"fmt"

	"github.com/devicelab-dev/camera-mapper/pkg/core"
)

// EntryKind tags the outcome recorded for a control.
type EntryKind int

// EntryKind values.
const (
	// EntryAbsent means the control could not be located on this
	// device/app combination.
	EntryAbsent EntryKind = iota
	// EntryPoint is an on-screen coordinate.
	EntryPoint
	// EntryScalar is a single step quantity (drag distance in pixels).
	EntryScalar
)

// Entry is the committed outcome for one control.
type Entry struct {
	Kind  EntryKind
	Point core.Coordinate // valid when Kind == EntryPoint
	Value int             // valid when Kind == EntryScalar
}

// Session is a single device-mapping run. It is created fresh per device,
// mutated in place by the discovery engine, and serialized once at the end.
// A session is never shared across goroutines.
type Session struct {
	profile  core.DeviceProfile
	entries  map[core.ControlName]Entry
	complete bool
}

// New creates an empty session for the given device profile.
func New(profile core.DeviceProfile) *Session {
	return &Session{
		profile: profile,
		entries: make(map[core.ControlName]Entry),
	}
}

// Profile returns the device profile captured at session start.
func (s *Session) Profile() core.DeviceProfile {
	return s.profile
}

// Commit records a point coordinate for a control. A control's outcome is
// committed exactly once per session; later commits are rejected.
func (s *Session) Commit(control core.ControlName, point core.Coordinate) error {
	return s.record(control, Entry{Kind: EntryPoint, Point: point})
}

// CommitScalar records a scalar step value for a control.
func (s *Session) CommitScalar(control core.ControlName, value int) error {
	return s.record(control, Entry{Kind: EntryScalar, Value: value})
}

// MarkAbsent records that the control could not be resolved.
func (s *Session) MarkAbsent(control core.ControlName) error {
	return s.record(control, Entry{Kind: EntryAbsent})
}

func (s *Session) record(control core.ControlName, entry Entry) error {
	if !control.Valid() {
		return fmt.Errorf("control %q is not in the vocabulary", control)
	}
	if _, done := s.entries[control]; done {
		return fmt.Errorf("control %s already has a committed outcome", control)
	}
	s.entries[control] = entry
	return nil
}

// Entry returns the committed outcome for a control, if any.
func (s *Session) Entry(control core.ControlName) (Entry, bool) {
	e, ok := s.entries[control]
	return e, ok
}

// Attempted reports whether the control already has a committed outcome.
func (s *Session) Attempted(control core.ControlName) bool {
	_, ok := s.entries[control]
	return ok
}

// Resolved returns the committed point for a control, with ok=false when
// the control is absent, scalar, or not yet attempted. Used by the
// sibling-offset strategy and by context entry navigation.
func (s *Session) Resolved(control core.ControlName) (core.Coordinate, bool) {
	e, ok := s.entries[control]
	if !ok || e.Kind != EntryPoint {
		return core.Coordinate{}, false
	}
	return e.Point, true
}

// SetComplete marks the session as having attempted every declared task.
func (s *Session) SetComplete() {
	s.complete = true
}

// Complete reports whether the traversal finished (as opposed to being
// aborted or cancelled with partial results).
func (s *Session) Complete() bool {
	return s.complete
}
