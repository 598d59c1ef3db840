package scheduler

import (
	"math/rand/v2"
	"time"
)

// Backoff computes the delay before the next poll of a request. The delay
// doubles with each consecutive empty poll and is capped at Max, with a
// jitter fraction so requests against the same agency drift apart.
type Backoff struct {
	Base   time.Duration
	Max    time.Duration
	Jitter float64

	randFloat func() float64
}

func NewBackoff(base, max time.Duration, jitter float64) Backoff {
	return Backoff{Base: base, Max: max, Jitter: jitter, randFloat: rand.Float64}
}

// Next returns the poll delay after consecutiveEmpty polls that produced no
// new correspondence. Zero means the last poll found something, resetting
// the ladder to Base.
func (b Backoff) Next(consecutiveEmpty int) time.Duration {
	d := b.Base
	for i := 0; i < consecutiveEmpty; i++ {
		d *= 2
		if d >= b.Max {
			d = b.Max
			break
		}
	}
	if b.Jitter > 0 && b.randFloat != nil {
		// Spread in [-Jitter/2, +Jitter/2) of the delay.
		spread := (b.randFloat() - 0.5) * b.Jitter
		d += time.Duration(float64(d) * spread)
	}
	if d > b.Max {
		d = b.Max
	}
	return d
}
