package services

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	caseQueriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "caselaw_case_queries_total",
		Help: "Case list and detail reads by outcome.",
	}, []string{"op", "outcome"})

	caseQueryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "caselaw_case_query_duration_seconds",
		Help:    "Latency of case reads against the record store.",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})

	caseMutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "caselaw_case_mutations_total",
		Help: "Case writes by operation and outcome.",
	}, []string{"op", "outcome"})

	resultSetGeneration = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "caselaw_result_set_generation",
		Help: "Current generation of the cached case result sets.",
	})

	caseCacheEvictions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "caselaw_case_cache_evictions_total",
		Help: "Filter sets dropped from the case list cache to stay within its bound.",
	})
)

func observeQuery(op string, started time.Time, err error) {
	caseQueryDuration.WithLabelValues(op).Observe(time.Since(started).Seconds())
	caseQueriesTotal.WithLabelValues(op, outcome(err)).Inc()
}

func observeMutation(op string, err error) {
	caseMutationsTotal.WithLabelValues(op, outcome(err)).Inc()
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
