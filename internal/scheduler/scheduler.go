// Package scheduler drives a session through its phases in wall-clock time.
//
// A Scheduler runs at most one wait loop. Each iteration waits for the
// current phase's length, advances the session, notifies, and re-arms with
// the length of the phase just entered until the session ends.
//
// Cancellation is race-free: a loop only acts on a fired timer while holding
// the scheduler lock and after checking that its generation is still
// current. Stop bumps the generation under the same lock, so once Stop
// returns no cancelled loop can transition or notify.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"pomodoro/pomod/internal/clock"
	"pomodoro/pomod/internal/logging"
	"pomodoro/pomod/internal/model"
	"pomodoro/pomod/internal/notify"
)

// Advancer moves a session to its next phase and reports the phase it landed
// in.
type Advancer interface {
	Transition() (model.Phase, model.TransitionOutcome)
}

type Status int

const (
	Idle Status = iota
	Waiting
)

func (s Status) String() string {
	if s == Waiting {
		return "waiting"
	}
	return "idle"
}

type Scheduler struct {
	advancer Advancer
	notifier notify.Notifier
	clock    clock.Clock

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
	done   chan struct{}
}

func New(advancer Advancer, notifier notify.Notifier, c clock.Clock) *Scheduler {
	var fanout notify.Multi
	if notifier != nil {
		fanout = notify.Multi{notifier}
	}
	return &Scheduler{
		advancer: advancer,
		notifier: fanout,
		clock:    c,
	}
}

// Start cancels any running loop and begins a new one whose first wait is
// initialWait seconds. It returns immediately.
func (s *Scheduler) Start(initialWait uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelLocked()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	// armed before the goroutine starts so the first wait is measured from
	// this call
	timer := s.clock.NewTimer(seconds(initialWait))

	s.gen++
	s.cancel = cancel
	s.done = done
	go s.loop(ctx, s.gen, timer, done)

	logging.Debug(fmt.Sprintf("scheduler armed for %s", logging.FormatDuration(uint64(initialWait))))
}

// Stop cancels the running loop, if any, and waits for its goroutine to exit.
// Must not be called from a Notifier.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	done := s.done
	s.cancelLocked()
	s.mu.Unlock()

	if done != nil {
		<-done
	}
}

func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return Waiting
	}
	return Idle
}

func (s *Scheduler) cancelLocked() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	s.gen++
	s.cancel = nil
	s.done = nil
}

func (s *Scheduler) loop(ctx context.Context, gen uint64, timer clock.Timer, done chan struct{}) {
	defer close(done)

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C():
		}

		next, ok := s.fire(gen)
		if !ok {
			return
		}
		timer = next
	}
}

// fire performs one transition for loop generation gen. It returns the timer
// for the next wait, or false when the loop must exit.
func (s *Scheduler) fire(gen uint64) (clock.Timer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen {
		return nil, false
	}

	phase, outcome := s.advancer.Transition()
	s.notifier.Notify(phase)

	if outcome.Ended {
		logging.Info("session finished")
		s.cancel()
		s.cancel = nil
		s.done = nil
		return nil, false
	}

	logging.Debug(fmt.Sprintf("next transition in %s", logging.FormatDuration(uint64(outcome.NextIn))))
	return s.clock.NewTimer(seconds(outcome.NextIn)), true
}

func seconds(n uint32) time.Duration {
	return time.Duration(n) * time.Second
}
