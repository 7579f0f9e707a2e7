package cache

import (
	"context"
	"errors"
	"time"
)

// ErrSeen возвращается из Once, если ключ уже обработан.
var ErrSeen = errors.New("cache: key already processed")

// Nop выполняет функцию всегда. Используется без Redis.
type Nop struct{}

// Once вызывает fn без проверки ключа.
func (Nop) Once(_ context.Context, _ string, _ time.Duration, fn func() error) error {
	return fn()
}
