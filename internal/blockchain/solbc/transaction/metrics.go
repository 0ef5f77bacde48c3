// internal/blockchain/solbc/transaction/metrics.go
package transaction

import (
	"sync/atomic"
	"time"
)

// Metrics – счётчики отправок для строки статуса UI.
type Metrics struct {
	submitted    atomic.Int64
	confirmed    atomic.Int64
	failed       atomic.Int64
	unknown      atomic.Int64
	lastDuration atomic.Int64
}

// MetricsSnapshot – значения счётчиков на момент чтения.
type MetricsSnapshot struct {
	Submitted    int64
	Confirmed    int64
	Failed       int64
	Unknown      int64
	LastDuration time.Duration
}

func NewMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) TrackTransaction(start time.Time) {
	m.lastDuration.Store(int64(time.Since(start)))
}

func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Submitted:    m.submitted.Load(),
		Confirmed:    m.confirmed.Load(),
		Failed:       m.failed.Load(),
		Unknown:      m.unknown.Load(),
		LastDuration: time.Duration(m.lastDuration.Load()),
	}
}
