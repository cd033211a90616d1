// Package jitter добавляет случайность к интервалам повторных попыток,
// чтобы несколько экземпляров сервиса не стучались в зависимость одновременно.
package jitter

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// DefaultJitter — стандартный коэффициент джиттера (50%)
const DefaultJitter = 0.5

var (
	globalRand = rand.New(rand.NewSource(time.Now().UnixNano()))
	randMutex  sync.Mutex
)

// Duration возвращает длительность в диапазоне [d, d*(1+jitterFactor)].
func Duration(d time.Duration, jitterFactor float64) time.Duration {
	randMutex.Lock()
	jitter := globalRand.Float64() * jitterFactor * float64(d)
	randMutex.Unlock()
	return d + time.Duration(jitter)
}

// ExponentialBackoff вычисляет задержку для попытки attempt (с нуля), не больше max, плюс джиттер.
func ExponentialBackoff(base, max time.Duration, attempt int, jitterFactor float64) time.Duration {
	backoff := base
	for i := 0; i < attempt; i++ {
		backoff *= 2
		if backoff > max {
			backoff = max
			break
		}
	}
	return Duration(backoff, jitterFactor)
}

// Retry вызывает fn до attempts раз с экспоненциальной задержкой между попытками.
// Возвращает последнюю ошибку, если ни одна попытка не удалась.
func Retry(ctx context.Context, attempts int, base, max time.Duration, fn func(ctx context.Context) error) error {
	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}

		if attempt == attempts-1 {
			break
		}

		select {
		case <-time.After(ExponentialBackoff(base, max, attempt, DefaultJitter)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return err
}
