package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every voxpeer collector. It is served on /metrics.
var Registry = prometheus.NewRegistry()

var (
	// CommandsRoutedTotal counts commands by the intent they classified to.
	CommandsRoutedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "voxpeer_commands_routed_total",
			Help: "Total number of commands routed, by intent.",
		},
		[]string{"intent"},
	)

	// TasksFinishedTotal counts tasks reaching a terminal status.
	TasksFinishedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "voxpeer_tasks_finished_total",
			Help: "Total number of tasks that completed or failed.",
		},
		[]string{"intent", "status"}, // status: completed/failed
	)

	// TaskDuration records creation-to-terminal time.
	TaskDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "voxpeer_task_duration_seconds",
			Help:    "Time from task creation to its terminal status.",
			Buckets: []float64{.01, .05, .1, .5, 1, 2, 3, 4, 5, 10},
		},
		[]string{"intent"},
	)

	// WorkerBusy is 1 while the worker's handler runs.
	WorkerBusy = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "voxpeer_worker_busy",
			Help: "Whether a worker is busy (1) or idle (0).",
		},
		[]string{"worker"},
	)

	// ListeningStatus is 1 while transcripts are being ingested.
	ListeningStatus = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "voxpeer_listening_status",
			Help: "Whether the agent is listening (1) or not (0).",
		},
	)

	// RecognizerErrorsTotal counts recognizer error events.
	RecognizerErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "voxpeer_recognizer_errors_total",
			Help: "Total number of speech recognizer errors.",
		},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		CommandsRoutedTotal,
		TasksFinishedTotal,
		TaskDuration,
		WorkerBusy,
		ListeningStatus,
		RecognizerErrorsTotal,
	)
}

// Handler serves Registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry})
}
