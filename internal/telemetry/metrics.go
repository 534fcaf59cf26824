package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics — прометеевские метрики координатора.
//
// Регистрируются в DefaultRegisterer; cmd-бинарь отдаёт их через
// promhttp на /metrics.
type Metrics struct {
	// TasksTotal — завершённые задачи по итоговому статусу
	// (completed / failed / deferred / no_worker).
	TasksTotal *prometheus.CounterVec

	// TaskDuration — длительность выполнения задачи handler'ом.
	TaskDuration prometheus.Histogram

	// BatchDuration — длительность выполнения батча.
	BatchDuration prometheus.Histogram

	// QuotaUsage — текущее суточное потребление по сервисам.
	QuotaUsage *prometheus.GaugeVec

	// WorkerLoad — текущая нагрузка по воркерам.
	WorkerLoad *prometheus.GaugeVec

	// AlertsTotal — отправленные терминальные alert'ы.
	AlertsTotal prometheus.Counter
}

// NewMetrics создаёт и регистрирует метрики.
func NewMetrics() *Metrics {
	return &Metrics{
		TasksTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "conveyor",
			Name:      "tasks_total",
			Help:      "Tasks by final outcome.",
		}, []string{"outcome"}),

		TaskDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: "conveyor",
			Name:      "task_duration_seconds",
			Help:      "Handler execution duration.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
		}),

		BatchDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: "conveyor",
			Name:      "batch_duration_seconds",
			Help:      "Batch execution duration.",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 12),
		}),

		QuotaUsage: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "conveyor",
			Name:      "quota_daily_usage",
			Help:      "Current daily quota usage per service.",
		}, []string{"service"}),

		WorkerLoad: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "conveyor",
			Name:      "worker_load",
			Help:      "Current load per worker.",
		}, []string{"worker_id"}),

		AlertsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "conveyor",
			Name:      "alerts_total",
			Help:      "Terminal failure alerts emitted.",
		}),
	}
}
