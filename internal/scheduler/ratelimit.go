package scheduler

import (
	"context"
	"sync"
	"time"
)

// AgencyLimiter throttles portal calls per agency with a token bucket so the
// daemon stays a polite client no matter how many requests it tracks against
// one portal.
type AgencyLimiter struct {
	rate  float64 // tokens per second
	burst float64

	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time
}

type bucket struct {
	tokens float64
	last   time.Time
}

func NewAgencyLimiter(rate float64, burst int) *AgencyLimiter {
	if burst < 1 {
		burst = 1
	}
	return &AgencyLimiter{
		rate:    rate,
		burst:   float64(burst),
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
}

// Allow reports whether a call to the agency may proceed now, consuming a
// token if so.
func (l *AgencyLimiter) Allow(agencyID string) bool {
	ok, _ := l.take(agencyID)
	return ok
}

// Wait blocks until a token is available for the agency or the context ends.
func (l *AgencyLimiter) Wait(ctx context.Context, agencyID string) error {
	for {
		ok, delay := l.take(agencyID)
		if ok {
			return nil
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// take consumes a token if available, otherwise returns the wait until the
// next token accrues.
func (l *AgencyLimiter) take(agencyID string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[agencyID]
	if !ok {
		b = &bucket{tokens: l.burst, last: now}
		l.buckets[agencyID] = b
	}

	elapsed := now.Sub(b.last).Seconds()
	if elapsed > 0 {
		b.tokens += elapsed * l.rate
		if b.tokens > l.burst {
			b.tokens = l.burst
		}
		b.last = now
	}

	if b.tokens >= 1 {
		b.tokens--
		return true, 0
	}
	need := (1 - b.tokens) / l.rate
	return false, time.Duration(need * float64(time.Second))
}
