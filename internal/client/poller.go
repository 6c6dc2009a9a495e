package client

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Poller re-fetches a value on an interval and hands each result to apply.
// Fetches may overlap; a result is applied only when no later-started fetch
// has been applied already, so the most recent fetch always wins. Failed
// fetches are logged and retried on the next tick.
type Poller[T any] struct {
	interval time.Duration
	fetch    func(context.Context) (T, error)
	apply    func(T)
	logger   *slog.Logger

	mu      sync.Mutex
	issued  uint64
	applied uint64
}

// NewPoller creates a Poller. apply is never called concurrently.
func NewPoller[T any](
	interval time.Duration,
	fetch func(context.Context) (T, error),
	apply func(T),
	logger *slog.Logger,
) *Poller[T] {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Poller[T]{
		interval: interval,
		fetch:    fetch,
		apply:    apply,
		logger:   logger.With("system", "poller"),
	}
}

// Run fetches immediately and then on every tick until ctx is done.
// It waits for in-flight fetches before returning ctx.Err().
func (p *Poller[T]) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	defer wg.Wait()

	tick := func() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Refresh(ctx)
		}()
	}

	tick()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			tick()
		}
	}
}

// Refresh performs one fetch outside the tick schedule. It reports whether
// the result was applied; a stale or failed fetch returns false.
func (p *Poller[T]) Refresh(ctx context.Context) bool {
	seq := p.next()

	v, err := p.fetch(ctx)
	if err != nil {
		if ctx.Err() == nil {
			p.logger.Warn("poll failed", "seq", seq, "error", err)
		}
		return false
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if seq < p.applied {
		p.logger.Debug("stale poll result discarded", "seq", seq, "applied", p.applied)
		return false
	}
	p.applied = seq
	p.apply(v)
	return true
}

func (p *Poller[T]) next() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.issued++
	return p.issued
}
