// SPDX-License-Identifier: MIT

package batch

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// runnerMetrics are the Runner's prometheus collectors.
type runnerMetrics struct {
	tasks   *prometheus.CounterVec
	seconds prometheus.Histogram
}

// newRunnerMetrics builds the collectors and registers them on reg when it is
// non-nil. Collectors already registered by another Runner are reused.
func newRunnerMetrics(reg prometheus.Registerer) (*runnerMetrics, error) {
	m := &runnerMetrics{
		tasks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bwmdecode_tasks_total",
			Help: "Decode tasks by final status",
		}, []string{"status"}),
		seconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "bwmdecode_task_seconds",
			Help:    "Wall time of one decode task",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
		}),
	}
	if reg == nil {
		return m, nil
	}

	if err := reg.Register(m.tasks); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return nil, err
		}
		m.tasks = are.ExistingCollector.(*prometheus.CounterVec)
	}
	if err := reg.Register(m.seconds); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return nil, err
		}
		m.seconds = are.ExistingCollector.(prometheus.Histogram)
	}
	return m, nil
}

func (m *runnerMetrics) observe(o Outcome) {
	m.tasks.WithLabelValues(string(o.Status)).Inc()
	if o.Status != StatusCanceled {
		m.seconds.Observe(o.Duration.Seconds())
	}
}
