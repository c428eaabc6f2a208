// Package wake provides a cancelable wait primitive used to suspend a single
// task until work arrives or its owner shuts down.
package wake

import "sync"

// Signal lets one task block indefinitely until it is explicitly woken or the
// signal is canceled. A wake issued while nobody waits is retained, so the
// next Wait resolves immediately; this makes the enqueue-then-wake pattern
// race-free without the waiter holding any lock across its suspension.
type Signal struct {
	pulse chan struct{}
	done  chan struct{}
	once  sync.Once
}

func NewSignal() *Signal {
	return &Signal{
		pulse: make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
}

// Wait blocks until the signal is woken or canceled. It returns true when the
// wait ended because of a wake (possibly one issued before Wait was called)
// and false once the signal is canceled.
func (s *Signal) Wait() bool {
	select {
	case <-s.pulse:
		return true
	case <-s.done:
		return false
	}
}

// Wake releases a pending or future Wait. It never blocks. The return value
// reports how many wake pulses were recorded (0 or 1): waking a signal that
// already has an undelivered pulse is a no-op.
func (s *Signal) Wake() int {
	select {
	case s.pulse <- struct{}{}:
		return 1
	default:
		return 0
	}
}

// Cancel permanently releases the current wait and all future ones. It is
// idempotent.
func (s *Signal) Cancel() {
	s.once.Do(func() {
		close(s.done)
	})
}
