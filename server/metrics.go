package main

import (
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	runs              *prometheus.CounterVec
	conditionFailures prometheus.Counter
	runDuration       prometheus.Histogram
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "workflow_runs_total",
			Help: "Workflow executions by result.",
		}, []string{"result"}),
		conditionFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "workflow_condition_failures_total",
			Help: "Condition expressions that failed to evaluate.",
		}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "workflow_run_duration_seconds",
			Help:    "Time spent assembling and executing a workflow.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
		}),
	}
	reg.MustRegister(m.runs, m.conditionFailures, m.runDuration)
	return m
}
