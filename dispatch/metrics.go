package dispatch

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Dispatch metrics, registered once in the global Prometheus registry. They
// are shared by all Registry instances: the operator name already namespaces
// the series.
var (
	dispatchCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pytorch_dispatch_calls_total",
			Help: "Total number of operator dispatches, by operator, dispatch key and outcome.",
		},
		[]string{"operator", "key", "status"},
	)
	dispatchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pytorch_dispatch_duration_seconds",
			Help:    "Wall time of operator dispatches, by operator and dispatch key.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operator", "key"},
	)
)

func observeDispatch(operator string, key Key, elapsed time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	dispatchCalls.WithLabelValues(operator, key.String(), status).Inc()
	dispatchDuration.WithLabelValues(operator, key.String()).Observe(elapsed.Seconds())
}
