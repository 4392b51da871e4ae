package viewer

import "github.com/prometheus/client_golang/prometheus"

type metrics struct {
	requests *prometheus.CounterVec
	errors   *prometheus.CounterVec
	limited  prometheus.Counter
	hidden   prometheus.Counter
	sessions prometheus.GaugeFunc
}

// newMetrics registers the viewer's collectors. sessions reports how many
// sessions hold a stored selection.
func newMetrics(reg prometheus.Registerer, sessions func() int) *metrics {
	m := &metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ganttboard_endpoint_calls_total",
			Help: "Total number of calls per endpoint.",
		}, []string{"endpoint"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ganttboard_errors_total",
			Help: "Total number of failed calls per endpoint.",
		}, []string{"endpoint"}),
		limited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ganttboard_rate_limited_total",
			Help: "Total number of requests rejected by the rate limiter.",
		}),
		hidden: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ganttboard_hidden_dependencies_total",
			Help: "Dependency lines skipped because one end was filtered out of the chart.",
		}),
		sessions: prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "ganttboard_sessions",
			Help: "Sessions with a stored selection.",
		}, func() float64 { return float64(sessions()) }),
	}
	reg.MustRegister(m.requests, m.errors, m.limited, m.hidden, m.sessions)
	return m
}
