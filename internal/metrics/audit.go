package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// auditWritesTotal counts audit log inserts by path and result.
	// Labels:
	// - path:   sync | async
	// - result: success | failure
	auditWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shop",
			Subsystem: "audit",
			Name:      "writes_total",
			Help:      "Audit log inserts by path and result.",
		},
		[]string{"path", "result"},
	)

	// auditQueueDepth tracks pending jobs in the async write queue.
	auditQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "shop",
			Subsystem: "audit",
			Name:      "queue_depth",
			Help:      "Pending jobs in the async audit write queue.",
		},
	)

	// auditSweepDeletedTotal counts rows removed by the retention sweep.
	auditSweepDeletedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "shop",
			Subsystem: "audit",
			Name:      "sweep_deleted_total",
			Help:      "Rows removed by the retention sweep.",
		},
	)
)

// IncAuditWrite records the outcome of an audit log insert.
func IncAuditWrite(path, result string) {
	auditWritesTotal.WithLabelValues(path, result).Inc()
}

// SetAuditQueueDepth reports the current async queue depth.
func SetAuditQueueDepth(n int) {
	auditQueueDepth.Set(float64(n))
}

// AddSweepDeleted accumulates retention sweep deletions.
func AddSweepDeleted(n int) {
	auditSweepDeletedTotal.Add(float64(n))
}
