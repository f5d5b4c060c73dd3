package ratelimit

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/semaphore"
)

// Limiter gates calls to one upstream provider.
// ⭐ SSOT: 프로바이더 호출 제한은 여기서만
//
// It is a counting semaphore with a FIFO wait queue: at most MaxConcurrent
// calls are in flight, and each slot is handed back MinDelay after the call
// that held it finished. With MaxConcurrent=1 this yields a minimum gap of
// MinDelay between consecutive calls.
type Limiter struct {
	name          string
	maxConcurrent int
	minDelay      time.Duration
	sem           *semaphore.Weighted
}

// New creates a limiter. Build one per provider at process start and inject it.
func New(name string, maxConcurrent int, minDelay time.Duration) *Limiter {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	if minDelay < 0 {
		minDelay = 0
	}
	return &Limiter{
		name:          name,
		maxConcurrent: maxConcurrent,
		minDelay:      minDelay,
		sem:           semaphore.NewWeighted(int64(maxConcurrent)),
	}
}

// Name returns the provider key
func (l *Limiter) Name() string {
	return l.name
}

// Acquire blocks until a slot is free or ctx is done
func (l *Limiter) Acquire(ctx context.Context) error {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("rate limit %s: %w", l.name, err)
	}
	return nil
}

// Release hands the slot back after the configured delay
func (l *Limiter) Release() {
	if l.minDelay == 0 {
		l.sem.Release(1)
		return
	}
	time.AfterFunc(l.minDelay, func() { l.sem.Release(1) })
}

// Do runs fn while holding a slot
func (l *Limiter) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := l.Acquire(ctx); err != nil {
		return err
	}
	defer l.Release()
	return fn(ctx)
}
