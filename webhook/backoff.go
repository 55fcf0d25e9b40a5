package webhook

import "time"

// DefaultMaxBackoff caps the delay between two automatic attempts
const DefaultMaxBackoff = time.Hour

// ExponentialBackoff doubles the base delay per attempt up to Max
type ExponentialBackoff struct {
	Max time.Duration
}

/* Delay returns base * 2^(attempt-1), capped at Max
 * attempt is the number of sends already made, so the first retry waits base
 */
func (b ExponentialBackoff) Delay(attempt int, base time.Duration) time.Duration {
	max := b.Max
	if max <= 0 {
		max = DefaultMaxBackoff
	}
	if base <= 0 {
		return 0
	}
	if attempt < 1 {
		attempt = 1
	}

	delay := base
	for i := 1; i < attempt; i++ {
		if delay >= max/2 {
			return max
		}
		delay *= 2
	}
	if delay > max {
		return max
	}
	return delay
}
