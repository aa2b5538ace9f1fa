package domain

import "strings"

// DeviceLimit pairs a device-identifier substring pattern with the maximum
// expected wear duration of one sensor session.
type DeviceLimit struct {
	Pattern string
	MaxDays float64
}

// DefaultDeviceLimits returns the known sensor generations, newest first: a
// serial containing the newer pattern resolves to it even when an older
// pattern also happens to occur in the string.
func DefaultDeviceLimits() []DeviceLimit {
	return []DeviceLimit{
		{Pattern: "G7", MaxDays: 10.5},
		{Pattern: "G6", MaxDays: 10},
	}
}

// Policy is a read-only, ordered device lookup table. It holds no mutable
// state and performs no I/O.
type Policy struct {
	limits []DeviceLimit
}

func NewPolicy(limits []DeviceLimit) Policy {
	return Policy{limits: limits}
}

// MaxSessionDays matches the device identifier case-insensitively against the
// pattern table, first match wins. An unknown device is an expected outcome
// for callers to branch on, reported via ok=false.
func (p Policy) MaxSessionDays(deviceID string) (float64, bool) {
	id := strings.ToUpper(deviceID)
	for _, limit := range p.limits {
		if strings.Contains(id, strings.ToUpper(limit.Pattern)) {
			return limit.MaxDays, true
		}
	}
	return 0, false
}

// Limits exposes a copy of the table for display surfaces.
func (p Policy) Limits() []DeviceLimit {
	out := make([]DeviceLimit, len(p.limits))
	copy(out, p.limits)
	return out
}
