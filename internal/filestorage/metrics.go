package filestorage

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// operationsTotal counts gateway operations by category, operation and result.
var operationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "storage_gateway_operations_total",
		Help: "File gateway operations by category, operation and result",
	},
	[]string{"category", "operation", "result"},
)
