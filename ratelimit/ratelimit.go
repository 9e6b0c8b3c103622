// Package ratelimit schedules outbound calls against a fixed throughput budget.
//
// A Limiter admits units of work so that no more than a configured number run
// at the same time and consecutive starts are spaced by a minimum interval.
// Waiting units are admitted in the order they were scheduled; the queue is
// unbounded, so Schedule only ever delays a call, never rejects it.
package ratelimit

import (
	"container/list"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ErrInvalidConfig is returned by New and NewPerSecond for unusable parameters.
var ErrInvalidConfig = errors.New("ratelimit: invalid configuration")

// Limiter bounds concurrency and paces the start of scheduled work.
type Limiter struct {
	maxConcurrent int
	minInterval   time.Duration
	logger        *zap.Logger

	mu      sync.Mutex
	pace    *rate.Limiter
	running int
	queue   list.List
	timer   *time.Timer
}

// Stats is a point-in-time view of the limiter queue.
type Stats struct {
	Running int
	Queued  int
}

// Option customizes a Limiter.
type Option func(*Limiter)

// WithLogger sets the logger used for admission tracing.
func WithLogger(logger *zap.Logger) Option {
	return func(l *Limiter) {
		if logger != nil {
			l.logger = logger
		}
	}
}

type waiter struct {
	ready    chan struct{}
	elem     *list.Element
	admitted bool
}

// New creates a limiter that runs at most maxConcurrent units at once and
// starts units no closer than minInterval apart.
func New(maxConcurrent int, minInterval time.Duration, opts ...Option) (*Limiter, error) {
	if maxConcurrent <= 0 {
		return nil, fmt.Errorf("%w: max concurrent must be positive, got %d", ErrInvalidConfig, maxConcurrent)
	}
	if minInterval < 0 {
		return nil, fmt.Errorf("%w: min interval must not be negative, got %s", ErrInvalidConfig, minInterval)
	}

	l := &Limiter{
		maxConcurrent: maxConcurrent,
		minInterval:   minInterval,
		logger:        zap.NewNop(),
		pace:          rate.NewLimiter(rate.Every(minInterval), 1),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// NewPerSecond derives a limiter from a requests-per-second budget: up to
// reqsPerSec units in flight, started at least 1s/reqsPerSec apart. Use New
// for fractional budgets.
func NewPerSecond(reqsPerSec int, opts ...Option) (*Limiter, error) {
	if reqsPerSec <= 0 {
		return nil, fmt.Errorf("%w: requests per second must be positive, got %d", ErrInvalidConfig, reqsPerSec)
	}
	return New(reqsPerSec, time.Second/time.Duration(reqsPerSec), opts...)
}

// MaxConcurrent returns the concurrency bound.
func (l *Limiter) MaxConcurrent() int {
	return l.maxConcurrent
}

// MinInterval returns the minimum spacing between starts.
func (l *Limiter) MinInterval() time.Duration {
	return l.minInterval
}

// Stats reports how many units are running and how many are waiting.
func (l *Limiter) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Stats{Running: l.running, Queued: l.queue.Len()}
}

// Schedule waits for admission, runs work and returns exactly the error work
// returned. A nil Limiter runs work immediately.
//
// ctx only aborts the wait: if it is done before the unit is admitted, the
// unit leaves the queue and ctx.Err() is returned. Admitted work always runs.
func (l *Limiter) Schedule(ctx context.Context, work func(context.Context) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if l == nil {
		return work(ctx)
	}

	w := &waiter{ready: make(chan struct{})}

	l.mu.Lock()
	w.elem = l.queue.PushBack(w)
	l.dispatch()
	l.mu.Unlock()

	select {
	case <-w.ready:
	case <-ctx.Done():
		l.mu.Lock()
		if !w.admitted {
			l.queue.Remove(w.elem)
			l.mu.Unlock()
			l.logger.Debug("scheduled call abandoned before admission", zap.Error(ctx.Err()))
			return ctx.Err()
		}
		l.mu.Unlock()
	}

	defer l.release()
	return work(ctx)
}

// Do schedules fn on l and returns its value and error.
func Do[T any](ctx context.Context, l *Limiter, fn func(context.Context) (T, error)) (T, error) {
	var out T
	err := l.Schedule(ctx, func(ctx context.Context) error {
		v, err := fn(ctx)
		out = v
		return err
	})
	return out, err
}

func (l *Limiter) release() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.running--
	l.dispatch()
}

// dispatch admits queued waiters while a slot is free and the pacing window
// is open. Caller must hold l.mu.
func (l *Limiter) dispatch() {
	for l.running < l.maxConcurrent {
		front := l.queue.Front()
		if front == nil {
			return
		}

		now := time.Now()
		if !l.pace.AllowN(now, 1) {
			l.wakeAfter(l.untilNextStart(now))
			return
		}

		w := l.queue.Remove(front).(*waiter)
		w.admitted = true
		l.running++
		close(w.ready)

		l.logger.Debug("admitted scheduled call",
			zap.Int("running", l.running),
			zap.Int("queued", l.queue.Len()))
	}
}

// untilNextStart estimates how long until the pacing window reopens.
func (l *Limiter) untilNextStart(now time.Time) time.Duration {
	missing := 1 - l.pace.TokensAt(now)
	wait := time.Duration(missing * float64(l.minInterval))
	if wait <= 0 {
		wait = 100 * time.Microsecond
	}
	return wait
}

// wakeAfter arms a single timer that re-runs dispatch. Caller must hold l.mu.
func (l *Limiter) wakeAfter(d time.Duration) {
	if l.timer != nil {
		return
	}
	l.timer = time.AfterFunc(d, func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.timer = nil
		l.dispatch()
	})
}
