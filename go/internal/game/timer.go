package game

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// RoundTimer drives the per-round countdown at a one second cadence. At most
// one countdown is live at any instant: Start replaces any active one, so a
// stale schedule can never double-decrement the remaining time.
type RoundTimer struct {
	clock clockwork.Clock

	mu   sync.Mutex
	stop chan struct{}
}

// NewRoundTimer creates a timer bound to the given clock.
func NewRoundTimer(clock clockwork.Clock) *RoundTimer {
	return &RoundTimer{clock: clock}
}

// Start cancels any active countdown and begins a new one. tick is invoked
// once per second and returns false when the countdown has reached its
// terminal state, which stops the schedule.
func (t *RoundTimer) Start(tick func() bool) {
	t.mu.Lock()
	if t.stop != nil {
		close(t.stop)
	}
	stop := make(chan struct{})
	t.stop = stop
	t.mu.Unlock()

	go t.run(stop, tick)
}

// Cancel stops the active countdown. Safe to call when none is running.
func (t *RoundTimer) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stop != nil {
		close(t.stop)
		t.stop = nil
	}
}

// Active reports whether a countdown is currently scheduled.
func (t *RoundTimer) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stop != nil
}

func (t *RoundTimer) run(stop chan struct{}, tick func() bool) {
	ticker := t.clock.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.Chan():
			if !tick() {
				t.finish(stop)
				return
			}
		}
	}
}

// finish clears the stop handle, but only if it still belongs to this run;
// a newer Start owns the handle otherwise.
func (t *RoundTimer) finish(stop chan struct{}) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stop == stop {
		t.stop = nil
	}
}
