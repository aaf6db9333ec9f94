package sessionkit

import "sync/atomic"

// MetricID indexes one in-process counter.
type MetricID uint16

const (
	// MetricLoginSuccess counts direct-issue login successes.
	MetricLoginSuccess MetricID = iota
	// MetricLoginPending counts verifications entering the pending state.
	MetricLoginPending
	// MetricLoginCompleted counts pending logins exchanged for sessions.
	MetricLoginCompleted
	// MetricLoginFailure counts rejected credentials and failed exchanges.
	MetricLoginFailure
	// MetricRefreshSuccess counts silent refreshes that issued a new pair.
	MetricRefreshSuccess
	// MetricRefreshFailure counts rejected refresh attempts.
	MetricRefreshFailure
	// MetricSessionExpired counts sessions ended by an unrecoverable 401.
	MetricSessionExpired
	// MetricRequestRetried counts the gateway's refresh-and-retry cycles.
	MetricRequestRetried
	// MetricRequestTimeout counts requests ended by the fixed deadline.
	MetricRequestTimeout
	// MetricFormAccepted counts submissions that passed the pipeline.
	MetricFormAccepted
	// MetricFormRejected counts sanitization/required-field rejections.
	MetricFormRejected
	// MetricFormSpam counts honeypot rejections.
	MetricFormSpam
	// MetricFormRateLimited counts form submissions denied by the window.
	MetricFormRateLimited
	// MetricAPIRateLimited counts protected calls denied by the window.
	MetricAPIRateLimited
	// MetricCSRFRejected counts CSRF validation failures.
	MetricCSRFRejected
	// MetricLogout counts logouts.
	MetricLogout

	metricIDCount
)

// paddedCounter spaces counters a cache line apart so unrelated hot
// counters do not false-share.
type paddedCounter struct {
	value uint64
	_     [56]byte
}

// Metrics is the in-process counter table. All methods are safe for
// concurrent use; a nil or disabled Metrics is a no-op.
type Metrics struct {
	enabled  bool
	counters [metricIDCount]paddedCounter
}

// NewMetrics creates the counter table.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{enabled: cfg.Enabled}
}

// Inc adds one to the counter.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// MetricsSnapshot is a point-in-time copy of every counter.
type MetricsSnapshot struct {
	Counters map[MetricID]uint64
}

// Snapshot copies the counters. Disabled metrics snapshot as empty.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}

	s := MetricsSnapshot{
		Counters: make(map[MetricID]uint64, int(metricIDCount)),
	}
	for id := MetricID(0); id < metricIDCount; id++ {
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}
	return s
}
