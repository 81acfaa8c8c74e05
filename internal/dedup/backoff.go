package dedup

import (
	"math/rand/v2"
	"time"
)

// jitterBackOff waits a uniformly random delay in [0, attempt*base] before each retry,
// spreading retries of replicas contending on the same rows
type jitterBackOff struct {
	base    time.Duration
	attempt int64
}

func newJitterBackOff(base time.Duration) *jitterBackOff {
	return &jitterBackOff{base: base}
}

func (b *jitterBackOff) NextBackOff() time.Duration {
	b.attempt++
	upper := b.attempt * int64(b.base)
	if upper <= 0 {
		return 0
	}
	return time.Duration(rand.Int64N(upper + 1)) //nolint:gosec,G404
}

func (b *jitterBackOff) Reset() {
	b.attempt = 0
}
