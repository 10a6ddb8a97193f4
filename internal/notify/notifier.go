// Package notify delivers phase changes to the outside world: desktop
// notifications, the daemon log and websocket watchers.
//
// Notify is called by the scheduler while it holds its own lock, so every
// implementation must return promptly and must not call back into the
// scheduler. Slow delivery belongs in a goroutine.
package notify

import (
	"fmt"

	"pomodoro/pomod/internal/logging"
	"pomodoro/pomod/internal/model"
)

// Notifier is told about the phase a session just entered.
type Notifier interface {
	Notify(phase model.Phase)
}

// Func adapts a plain function to Notifier.
type Func func(phase model.Phase)

func (f Func) Notify(phase model.Phase) {
	f(phase)
}

// Multi fans a phase out to every notifier in order. A panicking notifier is
// logged and does not prevent delivery to the rest.
type Multi []Notifier

func (m Multi) Notify(phase model.Phase) {
	for _, n := range m {
		deliver(n, phase)
	}
}

func deliver(n Notifier, phase model.Phase) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error(fmt.Sprintf("notifier panicked on %s: %v", phase, r))
		}
	}()
	n.Notify(phase)
}

// Message is the human-facing text for a phase.
func Message(phase model.Phase) string {
	switch phase {
	case model.PhaseStopped:
		return "Session's over! Go rest!"
	case model.PhaseWorking:
		return "Back to work!"
	case model.PhaseShortBreak:
		return "Short break started, stand up and stretch!"
	case model.PhaseLongBreak:
		return "Long break started, have some rest!"
	default:
		return ""
	}
}

// Log writes each phase change to the daemon log.
type Log struct{}

func (Log) Notify(phase model.Phase) {
	logging.Phase(fmt.Sprintf("%s: %s", phase, Message(phase)))
}
