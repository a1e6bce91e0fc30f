package session

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/devicelab-dev/camera-mapper/pkg/core"
)

// profileFields is the fixed order of the device metadata fields at the top
// of the output document.
var profileFields = []string{
	"HARDWARE_VERSION",
	"SOFTWARE_VERSION",
	"BRAND",
	"MODEL",
	"CAMERA_VERSION",
}

// MarshalJSON serializes the session in the declared field order: the five
// profile fields first, then one field per control in discovery order. A
// control with no committed outcome serializes as null, so a cancelled
// session still yields a well-formed (if incomplete) document.
//
// encoding/json map marshalling sorts keys, which would destroy the
// declared order, so the object is written by hand.
func (s *Session) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	values := []string{
		s.profile.HardwareVersion,
		s.profile.SoftwareVersion,
		s.profile.Brand,
		s.profile.Model,
		s.profile.CameraVersion,
	}
	for i, field := range profileFields {
		if i > 0 {
			buf.WriteByte(',')
		}
		writeKey(&buf, field)
		v, err := json.Marshal(values[i])
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}

	for _, control := range core.Controls() {
		buf.WriteByte(',')
		writeKey(&buf, string(control))
		entry, ok := s.entries[control]
		if !ok {
			buf.WriteString("null")
			continue
		}
		switch entry.Kind {
		case EntryPoint:
			fmt.Fprintf(&buf, "[%d,%d]", entry.Point.X, entry.Point.Y)
		case EntryScalar:
			fmt.Fprintf(&buf, "[%d]", entry.Value)
		default:
			buf.WriteString("null")
		}
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeKey(buf *bytes.Buffer, key string) {
	k, _ := json.Marshal(key)
	buf.Write(k)
	buf.WriteByte(':')
}

// ParseMapping reads a serialized mapping document back into a profile and
// per-control entries. The document must contain exactly the declared
// vocabulary: a missing or unknown field is an error.
func ParseMapping(data []byte) (core.DeviceProfile, map[core.ControlName]Entry, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return core.DeviceProfile{}, nil, err
	}

	var profile core.DeviceProfile
	targets := map[string]*string{
		"HARDWARE_VERSION": &profile.HardwareVersion,
		"SOFTWARE_VERSION": &profile.SoftwareVersion,
		"BRAND":            &profile.Brand,
		"MODEL":            &profile.Model,
		"CAMERA_VERSION":   &profile.CameraVersion,
	}
	for field, target := range targets {
		msg, ok := raw[field]
		if !ok {
			return core.DeviceProfile{}, nil, fmt.Errorf("missing metadata field %s", field)
		}
		if err := json.Unmarshal(msg, target); err != nil {
			return core.DeviceProfile{}, nil, fmt.Errorf("field %s: %w", field, err)
		}
		delete(raw, field)
	}

	entries := make(map[core.ControlName]Entry)
	for _, control := range core.Controls() {
		msg, ok := raw[string(control)]
		if !ok {
			return core.DeviceProfile{}, nil, fmt.Errorf("missing control field %s", control)
		}
		delete(raw, string(control))

		entry, err := parseEntry(control, msg)
		if err != nil {
			return core.DeviceProfile{}, nil, err
		}
		entries[control] = entry
	}

	for field := range raw {
		return core.DeviceProfile{}, nil, fmt.Errorf("unexpected field %s", field)
	}

	return profile, entries, nil
}

func parseEntry(control core.ControlName, msg json.RawMessage) (Entry, error) {
	if string(bytes.TrimSpace(msg)) == "null" {
		return Entry{Kind: EntryAbsent}, nil
	}

	var values []int
	if err := json.Unmarshal(msg, &values); err != nil {
		return Entry{}, fmt.Errorf("control %s: %w", control, err)
	}
	// The array shape must agree with the control's declared kind: a point
	// parsed from a one-element array would silently round-trip as a scalar.
	switch control.Kind() {
	case core.KindScalar:
		if len(values) != 1 {
			return Entry{}, fmt.Errorf("control %s: scalar control expects 1 element, got %d", control, len(values))
		}
		return Entry{Kind: EntryScalar, Value: values[0]}, nil
	default:
		if len(values) != 2 {
			return Entry{}, fmt.Errorf("control %s: point control expects 2 elements, got %d", control, len(values))
		}
		return Entry{Kind: EntryPoint, Point: core.Coordinate{X: values[0], Y: values[1]}}, nil
	}
}
