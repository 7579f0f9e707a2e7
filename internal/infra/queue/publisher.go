package queue

import (
	"context"

	"github.com/rs/zerolog"

	"tg-support-bot/internal/domain"
	"tg-support-bot/internal/infra/metrics"
)

// Nop отбрасывает события.
type Nop struct{}

// Publish ничего не делает.
func (Nop) Publish(context.Context, domain.SupportEvent) error { return nil }

// BestEffort логирует ошибки публикации и не возвращает их вызывающему.
type BestEffort struct {
	next    domain.EventPublisher
	backend string
	log     zerolog.Logger
}

// NewBestEffort оборачивает издателя.
func NewBestEffort(next domain.EventPublisher, backend string, log zerolog.Logger) *BestEffort {
	return &BestEffort{next: next, backend: backend, log: log}
}

// Publish отправляет событие и проглатывает ошибку.
func (p *BestEffort) Publish(ctx context.Context, event domain.SupportEvent) error {
	if err := p.next.Publish(ctx, event); err != nil {
		metrics.EventPublishErrors.WithLabelValues(p.backend).Inc()
		p.log.Warn().Err(err).Str("kind", string(event.Kind)).Str("event_id", event.ID.String()).Msg("не удалось опубликовать событие")
	}
	return nil
}
