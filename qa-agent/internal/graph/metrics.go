package graph

import "github.com/prometheus/client_golang/prometheus"

var (
	stageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "rag_stage_duration_seconds",
			Help: "Duration of workflow stages",
		},
		[]string{"stage"},
	)
	stageErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rag_stage_errors_total",
			Help: "Total number of failed workflow stages",
		},
		[]string{"stage"},
	)
	routeDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rag_route_decisions_total",
			Help: "Total number of routing decisions after grading",
		},
		[]string{"route"},
	)
	runsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rag_runs_total",
			Help: "Total number of workflow runs",
		},
		[]string{"status"},
	)
	queryLogFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rag_querylog_failures_total",
			Help: "Total number of query log writes that failed",
		},
	)
)

func init() {
	prometheus.MustRegister(stageDuration)
	prometheus.MustRegister(stageErrors)
	prometheus.MustRegister(routeDecisions)
	prometheus.MustRegister(runsTotal)
	prometheus.MustRegister(queryLogFailures)
}
