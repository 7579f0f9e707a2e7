package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	UpdatesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bot_updates_total",
		Help: "Входящие апдейты по типу",
	}, []string{"type"})

	DuplicateUpdates = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bot_duplicate_updates_total",
		Help: "Повторно доставленные апдейты",
	})

	MatchTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "support_match_total",
		Help: "Результаты нечёткого поиска решений",
	}, []string{"category", "result"})

	MatchScore = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "support_match_score",
		Help:    "Оценка лучшего совпадения (0 — точное)",
		Buckets: []float64{0, .05, .1, .15, .2, .25, .3, .35, .4},
	})

	FeedbackTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "support_feedback_total",
		Help: "Отзывы пользователей о решениях",
	}, []string{"kind"})

	BotSendErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bot_send_errors_total",
		Help: "Ошибки отправки сообщений ботом",
	})

	EventPublishErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "support_event_publish_errors_total",
		Help: "Ошибки публикации событий поддержки",
	}, []string{"backend"})

	NetworkRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "network_request_duration_seconds",
		Help:    "Длительность сетевых запросов",
		Buckets: prometheus.DefBuckets,
	}, []string{"component", "operation", "status"})

	NetworkRequestTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "network_request_total",
		Help: "Количество сетевых запросов",
	}, []string{"component", "operation", "status"})
)

// MustRegister регистрирует метрики.
func MustRegister(registerer prometheus.Registerer) {
	registerer.MustRegister(
		UpdatesTotal,
		DuplicateUpdates,
		MatchTotal,
		MatchScore,
		FeedbackTotal,
		BotSendErrors,
		EventPublishErrors,
		NetworkRequestDuration,
		NetworkRequestTotal,
	)
}

// ObserveNetworkRequest записывает длительность и статус сетевого запроса.
func ObserveNetworkRequest(component, operation string, start time.Time, err error) {
	if component == "" {
		component = "unknown"
	}
	if operation == "" {
		operation = "unknown"
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	NetworkRequestDuration.WithLabelValues(component, operation, status).Observe(time.Since(start).Seconds())
	NetworkRequestTotal.WithLabelValues(component, operation, status).Inc()
}

// ObserveMatch учитывает результат поиска. Пустая категория означает промах.
func ObserveMatch(category string, score float64) {
	if category == "" {
		MatchTotal.WithLabelValues("none", "miss").Inc()
		return
	}
	MatchTotal.WithLabelValues(category, "hit").Inc()
	MatchScore.Observe(score)
}
