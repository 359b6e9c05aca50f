// Пакет metrics объявляет метрики Prometheus, общие для API и consumer
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP: длительность запросов (секунды)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scheduler_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"method", "route", "status"},
	)

	// Хранилище: длительность сохранения документа
	StoreSaveDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scheduler_store_save_duration_seconds",
			Help:    "Duration of persisting a document to the backend",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		},
		[]string{"key", "status"},
	)

	// Количество проектов по статусам
	ProjectsGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "scheduler_projects",
			Help: "Number of projects per lifecycle status",
		},
		[]string{"status"},
	)

	// События журнала: опубликовано / ошибок
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduler_events_published_total",
			Help: "Project events published to NATS",
		},
		[]string{"type", "status"},
	)

	// События, записанные consumer-ом в ClickHouse
	EventsStored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduler_events_stored_total",
			Help: "Project events written to ClickHouse",
		},
		[]string{"status"},
	)
)

// RecordHTTPRequest записывает длительность HTTP-запроса
func RecordHTTPRequest(method, route, status string, d time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, route, status).Observe(d.Seconds())
}

// RecordStoreSave записывает длительность сохранения документа
func RecordStoreSave(key string, err error, d time.Duration) {
	StoreSaveDuration.WithLabelValues(key, statusLabel(err)).Observe(d.Seconds())
}

// SetProjectCounts выставляет gauge количества проектов
func SetProjectCounts(counts map[string]int) {
	for status, n := range counts {
		ProjectsGauge.WithLabelValues(status).Set(float64(n))
	}
}

// IncEventPublished увеличивает счётчик публикаций
func IncEventPublished(eventType string, err error) {
	EventsPublished.WithLabelValues(eventType, statusLabel(err)).Inc()
}

// AddEventsStored увеличивает счётчик записанных событий
func AddEventsStored(n int, err error) {
	EventsStored.WithLabelValues(statusLabel(err)).Add(float64(n))
}

func statusLabel(err error) string {
	if err != nil {
		return "failed"
	}
	return "success"
}
