package domain

import (
	"context"
	"time"
)

// Catalog отдаёт неизменяемый список тем поддержки.
type Catalog interface {
	Records() []SolutionRecord
	Lookup(category string) (SolutionRecord, bool)
}

// Matcher ищет подходящее решение по свободному тексту.
type Matcher interface {
	Best(query string) (Match, bool)
}

// Match результат нечёткого поиска.
type Match struct {
	Record  SolutionRecord
	Keyword string
	Score   float64
}

// EventPublisher отправляет события поддержки во внешнюю систему.
type EventPublisher interface {
	Publish(ctx context.Context, event SupportEvent) error
}

// Cache используется для идемпотентной обработки апдейтов.
type Cache interface {
	Once(ctx context.Context, key string, ttl time.Duration, fn func() error) error
}
