package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// sessionOpsTotal counts session lifecycle operations by op and result.
	// Labels:
	// - op:     create | get | delete | touch | by_token
	// - result: success | miss | error
	sessionOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shop",
			Subsystem: "session",
			Name:      "ops_total",
			Help:      "Session lifecycle operations by op and result.",
		},
		[]string{"op", "result"},
	)
)

// IncSessionOp records the outcome of a session operation.
func IncSessionOp(op, result string) {
	sessionOpsTotal.WithLabelValues(op, result).Inc()
}
