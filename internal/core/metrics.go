package core

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collectors are registered with the default registry, so serving
// promhttp.Handler exposes them.
var (
	RPCRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tutoradmin",
			Name:      "rpc_requests_total",
			Help:      "Dispatcher calls by target, verb and outcome.",
		}, []string{"target", "verb", "outcome"})

	RPCDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tutoradmin",
			Name:      "rpc_duration_seconds",
			Help:      "Dispatcher call latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"target"})

	formSyncCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tutoradmin",
			Name:      "form_sync_created_total",
			Help:      "Records created from form submissions.",
		}, []string{"form"})

	attendanceChanges = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "tutoradmin",
			Name:      "attendance_changes_total",
			Help:      "Attendance entries added or removed by reconciliation.",
		})

	idsIssued = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "tutoradmin",
			Name:      "ids_issued_total",
			Help:      "Record ids issued by the id generator.",
		})
)

func init() {
	prometheus.MustRegister(
		RPCRequests,
		RPCDuration,
		formSyncCreated,
		attendanceChanges,
		idsIssued,
	)
}
