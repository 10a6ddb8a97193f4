// Package session holds the authoritative record of the single pomodoro
// session a daemon tracks.
//
// State is plain data plus transition logic: every method that needs the
// current time takes it as an argument, so State never reads a clock. Shared
// owns the one State per process and is the only place it is mutated.
package session

import (
	"time"

	"pomodoro/pomod/internal/model"
)

// State is the mutable session record.
//
// When Phase is Stopped, PhaseStartedAt and PhaseLen are cleared and
// ShortBreaksDone is zero.
type State struct {
	ID              string
	Phase           model.Phase
	Params          model.SessionParams
	PhaseLen        uint32
	PhaseStartedAt  *time.Time
	ShortBreaksDone uint32
}

// NewState returns the idle record a daemon starts with.
func NewState() *State {
	return &State{
		Phase:  model.PhaseStopped,
		Params: model.DefaultSessionParams(),
	}
}

// Start enters Working with params, overwriting whatever session was running.
// Callers check the current phase first.
func (s *State) Start(id string, params model.SessionParams, now time.Time) {
	started := now
	s.ID = id
	s.Phase = model.PhaseWorking
	s.Params = params
	s.PhaseLen = params.WorkLen
	s.PhaseStartedAt = &started
	s.ShortBreaksDone = 0
}

// Transition advances the session by exactly one phase boundary. now is
// recorded as the start of the newly-entered phase.
func (s *State) Transition(now time.Time) model.TransitionOutcome {
	switch s.Phase {
	case model.PhaseShortBreak:
		s.ShortBreaksDone++
	case model.PhaseLongBreak:
		// a long break closes the cycle
		s.ShortBreaksDone = 0
	case model.PhaseWorking:
		s.Params.Periods.Decrement()
		if s.Params.Periods.Done() {
			s.Stop()
			return model.Ended()
		}
	}

	next := s.nextPhase()
	if next == model.PhaseStopped {
		s.Stop()
		return model.Ended()
	}

	started := now
	s.Phase = next
	s.PhaseLen = s.Params.LengthOf(next)
	s.PhaseStartedAt = &started
	return model.ContinuesAfter(s.PhaseLen)
}

func (s *State) nextPhase() model.Phase {
	switch s.Phase {
	case model.PhaseShortBreak, model.PhaseLongBreak:
		return model.PhaseWorking
	case model.PhaseWorking:
		if s.ShortBreaksDone == s.Params.ShortBreaksBeforeLong {
			return model.PhaseLongBreak
		}
		return model.PhaseShortBreak
	default:
		return model.PhaseStopped
	}
}

// Stop resets the record to idle. Safe to call repeatedly.
func (s *State) Stop() {
	s.ID = ""
	s.Phase = model.PhaseStopped
	s.Params = model.DefaultSessionParams()
	s.PhaseLen = 0
	s.PhaseStartedAt = nil
	s.ShortBreaksDone = 0
}

// Remaining returns the seconds left in the current phase, clamped at zero.
// ok is false when no session is active.
func (s *State) Remaining(now time.Time) (seconds uint64, ok bool) {
	if s.PhaseStartedAt == nil {
		return 0, false
	}

	elapsed := now.Sub(*s.PhaseStartedAt)
	if elapsed < 0 {
		elapsed = 0
	}
	elapsedSeconds := uint64(elapsed / time.Second)
	length := uint64(s.PhaseLen)
	if elapsedSeconds >= length {
		return 0, true
	}
	return length - elapsedSeconds, true
}
