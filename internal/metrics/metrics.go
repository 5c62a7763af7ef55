package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	subsystem = "trade_evaluation"

	jobsTotal         = "jobs_total"
	gradingCallsTotal = "grading_calls_total"
	dispatchTotal     = "dispatch_total"

	// Labels
	statusLabel  = "status"
	modeLabel    = "mode"
	outcomeLabel = "outcome"
)

const (
	GradingModeBatch     = "batch"
	GradingModeAggregate = "aggregate"

	OutcomeSucceeded = "succeeded"
	OutcomeFailed    = "failed"
)

var jobsTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: subsystem,
		Name:      jobsTotal,
		Help:      "number of evaluation jobs by lifecycle status reached",
	},
	[]string{statusLabel},
)

var gradingCallsTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: subsystem,
		Name:      gradingCallsTotal,
		Help:      "number of grader calls by mode and outcome",
	},
	[]string{modeLabel, outcomeLabel},
)

var dispatchTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: subsystem,
		Name:      dispatchTotal,
		Help:      "number of job dispatch attempts by mode and outcome",
	},
	[]string{modeLabel, outcomeLabel},
)

func IncreaseJobsMetric(status string) {
	jobsTotalMetric.With(prometheus.Labels{statusLabel: status}).Inc()
}

func IncreaseGradingCallsMetric(mode, outcome string) {
	gradingCallsTotalMetric.With(prometheus.Labels{modeLabel: mode, outcomeLabel: outcome}).Inc()
}

func IncreaseDispatchMetric(mode, outcome string) {
	dispatchTotalMetric.With(prometheus.Labels{modeLabel: mode, outcomeLabel: outcome}).Inc()
}

func init() {
	registerMetrics()
}

func registerMetrics() {
	prometheus.MustRegister(jobsTotalMetric)
	prometheus.MustRegister(gradingCallsTotalMetric)
	prometheus.MustRegister(dispatchTotalMetric)
}
