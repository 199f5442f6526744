package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	docbaseTasks = "docbase_tasks"

	taskSubmissionsTotal   = "submissions_total"
	taskOutcomesTotal      = "outcomes_total"
	statusQueriesTotal     = "status_queries_total"
	skippedTicksTotal      = "skipped_ticks_total"
	translationErrorsTotal = "translation_errors_total"
	activeTasks            = "active"

	// Labels
	kindLabel   = "kind"
	resultLabel = "result"
	stateLabel  = "state"
)

// Submission results.
const (
	SubmissionAccepted = "accepted"
	SubmissionRejected = "rejected"
	SubmissionBusy     = "busy"
)

/**
* Metrics definition
**/
var taskSubmissionsMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: docbaseTasks,
		Name:      taskSubmissionsTotal,
		Help:      "number of task submissions partitioned by kind and result",
	},
	[]string{kindLabel, resultLabel},
)

var taskOutcomesMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: docbaseTasks,
		Name:      taskOutcomesTotal,
		Help:      "number of finished tasks partitioned by kind and terminal state",
	},
	[]string{kindLabel, stateLabel},
)

var statusQueriesMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: docbaseTasks,
		Name:      statusQueriesTotal,
		Help:      "number of status queries sent while polling",
	},
	[]string{kindLabel},
)

var skippedTicksMetric = prometheus.NewCounter(
	prometheus.CounterOpts{
		Subsystem: docbaseTasks,
		Name:      skippedTicksTotal,
		Help:      "number of poll ticks dropped because a status query was still in flight",
	},
)

var translationErrorsMetric = prometheus.NewCounter(
	prometheus.CounterOpts{
		Subsystem: docbaseTasks,
		Name:      translationErrorsTotal,
		Help:      "number of nugget descriptors rejected while building a document base",
	},
)

var activeTasksMetric = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Subsystem: docbaseTasks,
		Name:      activeTasks,
		Help:      "1 while a task holds the concurrency gate",
	},
)

func IncreaseTaskSubmissionsMetric(kind, result string) {
	taskSubmissionsMetric.With(prometheus.Labels{kindLabel: kind, resultLabel: result}).Inc()
}

func IncreaseTaskOutcomesMetric(kind, state string) {
	taskOutcomesMetric.With(prometheus.Labels{kindLabel: kind, stateLabel: state}).Inc()
}

func IncreaseStatusQueriesMetric(kind string) {
	statusQueriesMetric.With(prometheus.Labels{kindLabel: kind}).Inc()
}

func IncreaseSkippedTicksMetric() {
	skippedTicksMetric.Inc()
}

func IncreaseTranslationErrorsMetric() {
	translationErrorsMetric.Inc()
}

func SetActiveTasksMetric(active bool) {
	if active {
		activeTasksMetric.Set(1)
		return
	}
	activeTasksMetric.Set(0)
}

func init() {
	registerMetrics()
}

func registerMetrics() {
	prometheus.MustRegister(taskSubmissionsMetric)
	prometheus.MustRegister(taskOutcomesMetric)
	prometheus.MustRegister(statusQueriesMetric)
	prometheus.MustRegister(skippedTicksMetric)
	prometheus.MustRegister(translationErrorsMetric)
	prometheus.MustRegister(activeTasksMetric)
}
