package client

import (
	"fmt"

	"pomodoro/pomod/internal/model"
)

// FormatRemaining renders seconds as MM:SS. Minutes are not capped at 99.
// Zero renders as the empty string.
func FormatRemaining(seconds uint64) string {
	if seconds == 0 {
		return ""
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// PhaseLabel is the human-facing name of a phase.
func PhaseLabel(phase model.Phase) string {
	switch phase {
	case model.PhaseStopped:
		return "stopped"
	case model.PhaseWorking:
		return "working"
	case model.PhaseShortBreak:
		return "short break"
	case model.PhaseLongBreak:
		return "long break"
	default:
		return phase.String()
	}
}
