package rules

import "sync/atomic"

// Metrics tracks rule evaluation statistics with atomic counters.
type Metrics struct {
	Evaluated atomic.Int64
	Matched   atomic.Int64
	Failed    atomic.Int64
	Errors    atomic.Int64
}

// MetricsSnapshot is a point-in-time copy of Metrics.
type MetricsSnapshot struct {
	Evaluated int64 `json:"evaluated" yaml:"evaluated"`
	Matched   int64 `json:"matched" yaml:"matched"`
	Failed    int64 `json:"failed" yaml:"failed"`
	Errors    int64 `json:"errors" yaml:"errors"`
}

// Snapshot returns a point-in-time copy of the metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Evaluated: m.Evaluated.Load(),
		Matched:   m.Matched.Load(),
		Failed:    m.Failed.Load(),
		Errors:    m.Errors.Load(),
	}
}
