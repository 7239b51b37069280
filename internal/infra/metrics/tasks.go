package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(taskStagesTotal, tasksFinishedTotal, stageDurationSeconds) }

var taskStagesTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "pipeline_task_stages_total",
		Help: "Pipeline stage executions, labeled by stage and outcome.",
	},
	[]string{"stage", "outcome"}, // outcome: 'success', 'failure'
)

var tasksFinishedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "pipeline_tasks_finished_total",
		Help: "Tasks that reached a final pipeline state, labeled by status.",
	},
	[]string{"status"},
)

var stageDurationSeconds = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "pipeline_stage_duration_seconds",
		Help:    "Wall-clock duration of pipeline stages.",
		Buckets: []float64{0.5, 1, 5, 15, 60, 180, 600, 1800, 3600},
	},
	[]string{"stage"},
)

func IncStage(stage, outcome string) {
	taskStagesTotal.WithLabelValues(norm(stage), norm(outcome)).Inc()
}

func IncTaskFinished(status string) {
	tasksFinishedTotal.WithLabelValues(norm(status)).Inc()
}

func ObserveStageDuration(stage string, seconds float64) {
	stageDurationSeconds.WithLabelValues(norm(stage)).Observe(seconds)
}
