package domain

const minutesPerDay = 24 * 60

// SensorSession is one contiguous stretch of readings tied to a single
// physical sensor within an upload. Indices are series positions, [Start,
// End), so the wear duration follows from the count and the interval alone.
type SensorSession struct {
	SessionID   string
	DeviceID    string
	Start       int
	End         int
	Readings    int // finite readings inside the stretch
	DurationDay float64
	MaxDays     float64
	MaxKnown    bool
	EndedEarly  bool
}

// SessionKey identifies a session stretch while grouping.
type SessionKey struct {
	SessionID string
	DeviceID  string
}

// GroupSessions splits an upload into sensor sessions: maximal contiguous
// index runs sharing a session key. Keys are provided per index; an empty
// session id means the sample belongs to no session and breaks runs.
func GroupSessions(keys []SessionKey, finite []bool, intervalMin float64, policy Policy) []SensorSession {
	var sessions []SensorSession
	start := -1
	for i := 0; i <= len(keys); i++ {
		boundary := i == len(keys) ||
			keys[i].SessionID == "" ||
			(start >= 0 && keys[i] != keys[start])
		if !boundary {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			sessions = append(sessions, buildSession(keys[start], start, i, finite, intervalMin, policy))
			start = -1
		}
		// a differing key both closes the previous run and opens a new one
		if i < len(keys) && keys[i].SessionID != "" {
			start = i
		}
	}
	return sessions
}

func buildSession(key SessionKey, start, end int, finite []bool, intervalMin float64, policy Policy) SensorSession {
	readings := 0
	for i := start; i < end; i++ {
		if i < len(finite) && finite[i] {
			readings++
		}
	}
	duration := float64(end-start) * intervalMin / minutesPerDay
	maxDays, known := policy.MaxSessionDays(key.DeviceID)
	return SensorSession{
		SessionID:   key.SessionID,
		DeviceID:    key.DeviceID,
		Start:       start,
		End:         end,
		Readings:    readings,
		DurationDay: duration,
		MaxDays:     maxDays,
		MaxKnown:    known,
		EndedEarly:  known && duration < maxDays,
	}
}
