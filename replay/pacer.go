package replay

import (
	"context"
	"fmt"
	"math"
	"time"
)

// Pacing defaults.
const (
	// DefaultFastSkipDivisor compresses gaps with no image due soon.
	DefaultFastSkipDivisor = 60.0
	// DefaultLookahead is the recorded-time horizon for "image due soon".
	DefaultLookahead = 2 * time.Second
	// DefaultMaxWait bounds a single wait.
	DefaultMaxWait = 5 * time.Second
)

// Pacing holds the pacing constants.
type Pacing struct {
	FastSkipDivisor float64
	Lookahead       time.Duration
	MaxWait         time.Duration
}

// DefaultPacing returns the default pacing constants.
func DefaultPacing() Pacing {
	return Pacing{
		FastSkipDivisor: DefaultFastSkipDivisor,
		Lookahead:       DefaultLookahead,
		MaxWait:         DefaultMaxWait,
	}
}

// Validate checks the constants.
func (p Pacing) Validate() error {
	if !(p.FastSkipDivisor >= 1) {
		return fmt.Errorf("fast-skip divisor must be >= 1, got %v", p.FastSkipDivisor)
	}
	if p.Lookahead < 0 {
		return fmt.Errorf("lookahead must not be negative, got %s", p.Lookahead)
	}
	if p.MaxWait <= 0 {
		return fmt.Errorf("max wait must be positive, got %s", p.MaxWait)
	}
	return nil
}

// Pacer converts recorded timestamp gaps into wall-clock waits.
type Pacer struct {
	pacing  Pacing
	speedup float64
}

// NewPacer creates a pacer. speedup must be positive (1 is real time).
func NewPacer(pacing Pacing, speedup float64) (*Pacer, error) {
	if !(speedup > 0) || math.IsInf(speedup, 0) {
		return nil, fmt.Errorf("speedup must be a positive number, got %v", speedup)
	}
	if err := pacing.Validate(); err != nil {
		return nil, err
	}
	return &Pacer{pacing: pacing, speedup: speedup}, nil
}

// Wait returns how long to wait before emitting a message stamped cur when
// the previous one was stamped prev. nextImage is the capture time of the
// next unpublished frame; hasImage is false when none remain.
//
// Gaps with no frame due within the lookahead are divided by the fast-skip
// divisor. The result is divided by speedup and clamped to [0, MaxWait].
func (p *Pacer) Wait(prev, cur, nextImage float64, hasImage bool) time.Duration {
	delta := cur - prev
	if math.IsNaN(delta) || delta <= 0 {
		return 0
	}
	if p.FastSkip(cur, nextImage, hasImage) {
		delta /= p.pacing.FastSkipDivisor
	}
	seconds := delta / p.speedup
	if maxSeconds := p.pacing.MaxWait.Seconds(); seconds >= maxSeconds {
		return p.pacing.MaxWait
	}
	return time.Duration(seconds * float64(time.Second))
}

// FastSkip reports whether the gap ending at cur is compressed.
func (p *Pacer) FastSkip(cur, nextImage float64, hasImage bool) bool {
	return !hasImage || nextImage > cur+p.pacing.Lookahead.Seconds()
}

// Sleep blocks for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
