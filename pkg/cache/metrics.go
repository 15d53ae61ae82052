package cache

import (
	"houseprice-heatmap/pkg/metrics"
)

// RecordOperationDuration observes how long a Redis command took, labelled by command.
func RecordOperationDuration(label string, seconds float64) {
	metrics.RedisOperationDuration.WithLabelValues(label).Observe(seconds)
}

// IncrementError counts a failed Redis command.
func IncrementError(label string) {
	metrics.RedisErrorsTotal.WithLabelValues(label).Inc()
}
