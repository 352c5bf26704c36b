package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "appsync_rbac", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "appsync_rbac", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	// OperationsTotal counts dispatched operations by outcome ("ok" or an error kind).
	OperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "appsync_rbac", Name: "operations_total", Help: "Dispatched operations by name and outcome."},
		[]string{"operation", "outcome"},
	)
	OperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Namespace: "appsync_rbac", Name: "operation_duration_seconds", Help: "Time spent handling an operation.", Buckets: prometheus.DefBuckets},
		[]string{"operation"},
	)
	CompensationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "appsync_rbac", Name: "compensations_total", Help: "Rollback attempts after partial failures by step and result."},
		[]string{"step", "result"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(OperationsTotal)
	reg.MustRegister(OperationDuration)
	reg.MustRegister(CompensationsTotal)
}
