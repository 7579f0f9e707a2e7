package domain

import (
	"time"

	"github.com/google/uuid"
)

// SupportEventKind определяет тип события поддержки.
type SupportEventKind string

const (
	EventMatched    SupportEventKind = "matched"
	EventUnmatched  SupportEventKind = "unmatched"
	EventHelpful    SupportEventKind = "helpful"
	EventNotHelpful SupportEventKind = "not_helpful"
)

// SupportEvent уведомление о результате обращения. Назад в поиск не читается.
type SupportEvent struct {
	ID         uuid.UUID        `json:"id"`
	Kind       SupportEventKind `json:"kind"`
	Category   string           `json:"category,omitempty"`
	ChatID     int64            `json:"chat_id"`
	UserID     int64            `json:"user_id,omitempty"`
	OccurredAt time.Time        `json:"occurred_at"`
}

// NewSupportEvent создаёт событие с новым идентификатором.
func NewSupportEvent(kind SupportEventKind, category string, chatID, userID int64) SupportEvent {
	return SupportEvent{
		ID:         uuid.New(),
		Kind:       kind,
		Category:   category,
		ChatID:     chatID,
		UserID:     userID,
		OccurredAt: time.Now().UTC(),
	}
}
