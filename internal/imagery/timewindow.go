package imagery

import "time"

const (
	// QueryTimeFormat is the TIME parameter layout expected by the snapshot API.
	QueryTimeFormat = "2006-01-02T15:04:05Z"

	// DefaultRounding buckets query times so repeated calls produce the same string.
	DefaultRounding = 10 * time.Minute

	// DefaultLag accounts for the upstream publication delay.
	DefaultLag = 30 * time.Minute
)

// QueryWindow derives the instant sent to the API from a requested instant.
type QueryWindow struct {
	Requested time.Time
	Rounding  time.Duration
	Lag       time.Duration
}

// NewQueryWindow returns a window using the default rounding and lag.
func NewQueryWindow(requested time.Time) QueryWindow {
	return QueryWindow{
		Requested: requested,
		Rounding:  DefaultRounding,
		Lag:       DefaultLag,
	}
}

// Resolved floors the requested instant to the rounding granularity (in UTC)
// and subtracts the lag.
func (w QueryWindow) Resolved() time.Time {
	t := w.Requested.UTC()
	if w.Rounding > 0 {
		t = t.Truncate(w.Rounding)
	}
	return t.Add(-w.Lag)
}

// String formats the resolved instant in QueryTimeFormat.
func (w QueryWindow) String() string {
	return w.Resolved().Format(QueryTimeFormat)
}

// ResolveQueryTime returns the API time string for now using the default
// rounding and lag.
func ResolveQueryTime(now time.Time) string {
	return NewQueryWindow(now).String()
}
