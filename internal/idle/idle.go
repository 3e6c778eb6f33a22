// Package idle provides pluggable idle strategies for the single-
// threaded cooperative poll loops in consensus and library: spin,
// then yield, then back off with exponentially increasing sleeps.
package idle

import (
	"runtime"
	"time"
)

// Strategy is invoked once per poll iteration with the number of
// fragments/events processed that iteration. workCount > 0 resets any
// accumulated back-off.
type Strategy interface {
	Idle(workCount int)
}

// SpinStrategy never sleeps or yields; it is appropriate only for
// dedicated cores in latency-sensitive deployments or tests that need
// the poll loop to run as fast as possible.
type SpinStrategy struct{}

// Idle does nothing.
func (SpinStrategy) Idle(workCount int) {}

// BackoffStrategy spins for a configurable number of empty iterations,
// then yields the OS thread, then sleeps with exponentially increasing
// duration capped at MaxSleep.
type BackoffStrategy struct {
	SpinLimit  int
	YieldLimit int
	MinSleep   time.Duration
	MaxSleep   time.Duration

	spins      int
	yields     int
	sleep      time.Duration
}

// NewBackoffStrategy returns a BackoffStrategy with the conventional
// spin(100) -> yield(10) -> sleep(1ms .. 100ms) progression.
func NewBackoffStrategy() *BackoffStrategy {
	return &BackoffStrategy{
		SpinLimit:  100,
		YieldLimit: 10,
		MinSleep:   time.Millisecond,
		MaxSleep:   100 * time.Millisecond,
	}
}

// Idle advances the strategy's internal phase on an empty iteration
// (workCount == 0) and resets it otherwise.
func (b *BackoffStrategy) Idle(workCount int) {
	if workCount > 0 {
		b.spins = 0
		b.yields = 0
		b.sleep = 0
		return
	}

	if b.spins < b.SpinLimit {
		b.spins++
		return
	}
	if b.yields < b.YieldLimit {
		b.yields++
		runtime.Gosched()
		return
	}
	if b.sleep == 0 {
		b.sleep = b.MinSleep
	} else {
		b.sleep *= 2
		if b.sleep > b.MaxSleep {
			b.sleep = b.MaxSleep
		}
	}
	time.Sleep(b.sleep)
}
