package session

import (
	"sync"

	"pomodoro/pomod/internal/clock"
	"pomodoro/pomod/internal/model"
)

// Snapshot is a consistent copy of the fields a status read reports.
type Snapshot struct {
	ID               string
	Phase            model.Phase
	Periods          model.RemainingPeriods
	RemainingSeconds uint64
	Params           model.SessionParams
}

// Shared guards the process's single State. Every method holds the lock for
// one logical operation and never across a wait.
type Shared struct {
	mu    sync.Mutex
	state *State
	clock clock.Clock
}

func NewShared(c clock.Clock) *Shared {
	return &Shared{
		state: NewState(),
		clock: c,
	}
}

// StartIfIdle starts a session only when none is active. It reports the phase
// observed before deciding.
func (s *Shared) StartIfIdle(id string, params model.SessionParams) (model.Phase, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.state.Phase
	if current.Active() {
		return current, false
	}
	s.state.Start(id, params, s.clock.Now())
	return current, true
}

// Transition advances the session and returns the phase it landed in, which
// is Stopped when the outcome is Ended.
func (s *Shared) Transition() (model.Phase, model.TransitionOutcome) {
	s.mu.Lock()
	defer s.mu.Unlock()

	outcome := s.state.Transition(s.clock.Now())
	return s.state.Phase, outcome
}

func (s *Shared) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Stop()
}

func (s *Shared) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	remaining, _ := s.state.Remaining(s.clock.Now())
	return Snapshot{
		ID:               s.state.ID,
		Phase:            s.state.Phase,
		Periods:          s.state.Params.Periods,
		RemainingSeconds: remaining,
		Params:           s.state.Params,
	}
}
