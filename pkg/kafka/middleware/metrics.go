package kafka_middleware

import (
	"context"
	"sync/atomic"
	"time"

	"slotbook/pkg/kafka"
)

// Metrics counts producer outcomes.
type Metrics struct {
	published     atomic.Int64
	failed        atomic.Int64
	durationTotal atomic.Int64 // nanoseconds
}

type MetricsSnapshot struct {
	Published         int64  `json:"published"`
	Failed            int64  `json:"failed"`
	AvgPublishLatency string `json:"avg_publish_latency"`
}

func NewMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) Reset() {
	m.published.Store(0)
	m.failed.Store(0)
	m.durationTotal.Store(0)
}

func (m *Metrics) AvgPublishDuration() time.Duration {
	total := m.published.Load() + m.failed.Load()
	if total == 0 {
		return 0
	}
	return time.Duration(m.durationTotal.Load() / total)
}

func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Published:         m.published.Load(),
		Failed:            m.failed.Load(),
		AvgPublishLatency: m.AvgPublishDuration().String(),
	}
}

// ProducerMiddleware records the outcome and latency of each publish.
func (m *Metrics) ProducerMiddleware() kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		start := time.Now()

		err := next(ctx, msg)

		m.durationTotal.Add(int64(time.Since(start)))
		if err != nil {
			m.failed.Add(1)
		} else {
			m.published.Add(1)
		}

		return err
	}
}
