package engine

import (
	"time"
)

// FrameLimiter caps the frame loop at a fixed tick rate
type FrameLimiter struct {
	frame time.Duration
	now   func() time.Time
	sleep func(time.Duration)
}

// NewFrameLimiter creates a limiter for rate frames per second. A rate of 0
// or less disables limiting.
func NewFrameLimiter(rate int) *FrameLimiter {
	l := &FrameLimiter{now: time.Now, sleep: time.Sleep}
	if rate > 0 {
		l.frame = time.Second / time.Duration(rate)
	}
	return l
}

// Wait sleeps for whatever is left of the frame that started at start
func (l *FrameLimiter) Wait(start time.Time) {
	if l.frame == 0 {
		return
	}
	if elapsed := l.now().Sub(start); elapsed < l.frame {
		l.sleep(l.frame - elapsed)
	}
}

// FrameTime returns the target duration of one frame, 0 when unlimited
func (l *FrameLimiter) FrameTime() time.Duration {
	return l.frame
}
