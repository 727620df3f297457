package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds every mcapstat metric. It is separate from the default
// registry so a run can be exported to a textfile without Go runtime noise.
// Registry 保存所有 mcapstat 指标。
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	// Input metrics
	MessagesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mcapstat_messages_total",
			Help: "Decoded messages routed to at least one task, by topic",
		},
		[]string{"topic"},
	)
	FilesProcessed = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "mcapstat_files_processed_total",
			Help: "Input files read to the end",
		},
	)
	FileErrors = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "mcapstat_file_errors_total",
			Help: "Input files that failed to open or read",
		},
	)

	// Extraction metrics
	RowsExtracted = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mcapstat_rows_extracted_total",
			Help: "Rows produced per task",
		},
		[]string{"task"},
	)
	RowsSkipped = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mcapstat_rows_skipped_total",
			Help: "Messages skipped per task, by reason",
		},
		[]string{"task", "reason"},
	)

	// Task metrics
	TasksFailed = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mcapstat_tasks_failed_total",
			Help: "Tasks disabled by a configuration or analysis error, by stage",
		},
		[]string{"stage"},
	)
	RunDuration = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "mcapstat_run_duration_seconds",
			Help: "Wall time of the last analysis run",
		},
	)
)

// WriteTextfile dumps the registry in the node_exporter textfile format.
// WriteTextfile 以 textfile 格式导出指标。
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, Registry)
}
