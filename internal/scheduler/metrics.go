package scheduler

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the scheduler's prometheus instruments.
type Metrics struct {
	runs       *prometheus.CounterVec
	created    *prometheus.CounterVec
	suppressed prometheus.Counter
	purged     prometheus.Counter
}

// NewMetrics registers the scheduler metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scheduler_runs_total",
				Help: "Total scheduler invocations by action and outcome.",
			},
			[]string{"action", "status"},
		),
		created: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scheduler_notifications_created_total",
				Help: "Notifications persisted by the scheduler, by category.",
			},
			[]string{"category"},
		),
		suppressed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scheduler_notifications_suppressed_total",
			Help: "Reminder candidates suppressed by the dedupe window.",
		}),
		purged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scheduler_activity_events_purged_total",
			Help: "Activity events removed by retention purges.",
		}),
	}

	for _, c := range []prometheus.Collector{m.runs, m.created, m.suppressed, m.purged} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}
