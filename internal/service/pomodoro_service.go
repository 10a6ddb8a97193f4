package service

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	apperrors "pomodoro/pomod/internal/errors"
	"pomodoro/pomod/internal/logging"
	"pomodoro/pomod/internal/model"
	"pomodoro/pomod/internal/scheduler"
	"pomodoro/pomod/internal/session"
)

// PomodoroService is the only caller of the session state and the scheduler.
// Start and Stop each pair a state change with the matching scheduler change
// under one lock, so a session is never observed Working with no wait armed.
type PomodoroService struct {
	mu        sync.Mutex
	state     *session.Shared
	scheduler *scheduler.Scheduler
	defaults  model.Defaults
	newID     func() string
}

type StateView struct {
	Phase                model.Phase `json:"phase"`
	TimeRemainingSeconds uint64      `json:"timeRemainingSeconds"`
	PeriodsKind          string      `json:"periodsKind"`
	PeriodsValue         uint32      `json:"periodsValue"`
	SessionID            *string     `json:"sessionId,omitempty"`
}

func NewPomodoroService(state *session.Shared, sched *scheduler.Scheduler, defaults model.Defaults) *PomodoroService {
	return &PomodoroService{
		state:     state,
		scheduler: sched,
		defaults:  defaults,
		newID:     uuid.NewString,
	}
}

// Start begins a session. Any active phase, breaks included, rejects the call
// with already_running and leaves the running session untouched.
func (s *PomodoroService) Start(req model.StartRequest) (*StateView, *apperrors.APIError) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.BadRequest(apperrors.CodeInvalidArgument, err.Error())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	params := req.Params(s.defaults)
	id := s.newID()
	current, started := s.state.StartIfIdle(id, params)
	if !started {
		view := s.view()
		return nil, apperrors.AlreadyRunning(map[string]interface{}{
			"phase": current,
			"state": view,
		})
	}
	s.scheduler.Start(params.WorkLen)

	logging.Info(fmt.Sprintf("session %s started: work %s, short break %s, long break %s, long break after %d short breaks, periods %s",
		id,
		logging.FormatDuration(uint64(params.WorkLen)),
		logging.FormatDuration(uint64(params.ShortBreakLen)),
		logging.FormatDuration(uint64(params.LongBreakLen)),
		params.ShortBreaksBeforeLong,
		params.Periods,
	))

	view := s.view()
	return &view, nil
}

// Stop ends the session, if any. Calling it while stopped is a no-op.
func (s *PomodoroService) Stop() *StateView {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.state.Snapshot().ID
	s.scheduler.Stop()
	s.state.Stop()
	if id != "" {
		logging.Info(fmt.Sprintf("session %s stopped", id))
	}

	view := s.view()
	return &view
}

func (s *PomodoroService) GetState() *StateView {
	view := s.view()
	return &view
}

// Shutdown halts the scheduler without touching the session record.
func (s *PomodoroService) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scheduler.Stop()
}

func (s *PomodoroService) view() StateView {
	return toStateView(s.state.Snapshot())
}

func toStateView(snap session.Snapshot) StateView {
	view := StateView{
		Phase:        snap.Phase,
		PeriodsKind:  snap.Periods.Kind(),
		PeriodsValue: snap.Periods.ValueOr(0),
	}
	if snap.Phase.Active() {
		view.TimeRemainingSeconds = snap.RemainingSeconds
	}
	if snap.ID != "" {
		id := snap.ID
		view.SessionID = &id
	}
	return view
}
