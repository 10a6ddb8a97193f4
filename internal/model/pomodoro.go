package model

import (
	"fmt"
	"math"
)

// OneMinute is the number of seconds in a minute.
const OneMinute = 60

// MaxMinutes is the longest phase, in minutes, whose length in seconds still
// fits a uint32.
const MaxMinutes = math.MaxUint32 / OneMinute

type Phase int

const (
	PhaseStopped Phase = iota
	PhaseWorking
	PhaseShortBreak
	PhaseLongBreak
)

var phaseNames = map[Phase]string{
	PhaseStopped:    "stopped",
	PhaseWorking:    "working",
	PhaseShortBreak: "short_break",
	PhaseLongBreak:  "long_break",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

func (p Phase) MarshalText() ([]byte, error) {
	if _, ok := phaseNames[p]; !ok {
		return nil, fmt.Errorf("unknown phase %d", int(p))
	}
	return []byte(p.String()), nil
}

func (p *Phase) UnmarshalText(text []byte) error {
	parsed, err := ParsePhase(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ParsePhase maps a wire name back to its Phase.
func ParsePhase(name string) (Phase, error) {
	for phase, candidate := range phaseNames {
		if candidate == name {
			return phase, nil
		}
	}
	return PhaseStopped, fmt.Errorf("unknown phase %q", name)
}

// Active reports whether the phase belongs to a running session.
func (p Phase) Active() bool {
	return p != PhaseStopped
}

const (
	PeriodsUnlimited = "unlimited"
	PeriodsLimited   = "limited"
)

// RemainingPeriods is either unlimited or a bounded count of work periods
// left to run. The zero value is unlimited.
type RemainingPeriods struct {
	limited bool
	n       uint32
}

func Unlimited() RemainingPeriods {
	return RemainingPeriods{}
}

func Limited(n uint32) RemainingPeriods {
	return RemainingPeriods{limited: true, n: n}
}

// PeriodsFromCount treats zero as unlimited.
func PeriodsFromCount(n uint32) RemainingPeriods {
	if n == 0 {
		return Unlimited()
	}
	return Limited(n)
}

func (r RemainingPeriods) IsLimited() bool {
	return r.limited
}

// ValueOr returns the bounded count, or fallback when unlimited.
func (r RemainingPeriods) ValueOr(fallback uint32) uint32 {
	if !r.limited {
		return fallback
	}
	return r.n
}

func (r RemainingPeriods) Kind() string {
	if r.limited {
		return PeriodsLimited
	}
	return PeriodsUnlimited
}

// Decrement consumes one work period. No-op when unlimited or already zero.
func (r *RemainingPeriods) Decrement() {
	if r.limited && r.n > 0 {
		r.n--
	}
}

// Done reports whether a bounded session has no work periods left.
func (r RemainingPeriods) Done() bool {
	return r.limited && r.n == 0
}

func (r RemainingPeriods) String() string {
	if !r.limited {
		return PeriodsUnlimited
	}
	return fmt.Sprintf("%d", r.n)
}

// Defaults holds every value substituted for a zero Start argument.
type Defaults struct {
	WorkMinutes           uint32
	ShortBreakMinutes     uint32
	LongBreakMinutes      uint32
	ShortBreaksBeforeLong uint32
}

// Validate rejects defaults that would normalize to a length that does not
// fit in seconds.
func (d Defaults) Validate() error {
	return checkMinutes(
		minuteField{"work minutes", d.WorkMinutes},
		minuteField{"short break minutes", d.ShortBreakMinutes},
		minuteField{"long break minutes", d.LongBreakMinutes},
	)
}

var DefaultDurations = Defaults{
	WorkMinutes:           25,
	ShortBreakMinutes:     4,
	LongBreakMinutes:      20,
	ShortBreaksBeforeLong: 3,
}

// SessionParams configures one session. Lengths are in seconds.
type SessionParams struct {
	Periods               RemainingPeriods
	WorkLen               uint32
	ShortBreakLen         uint32
	LongBreakLen          uint32
	ShortBreaksBeforeLong uint32
}

func DefaultSessionParams() SessionParams {
	return StartRequest{}.Params(DefaultDurations)
}

// LengthOf returns the configured length in seconds of phase. Stopped has no
// length.
func (p SessionParams) LengthOf(phase Phase) uint32 {
	switch phase {
	case PhaseWorking:
		return p.WorkLen
	case PhaseShortBreak:
		return p.ShortBreakLen
	case PhaseLongBreak:
		return p.LongBreakLen
	default:
		return 0
	}
}

// StartRequest carries the caller-facing Start arguments in whole minutes.
// Every zero field means "use the default".
type StartRequest struct {
	Periods               uint32 `json:"periods"`
	WorkTimeMin           uint32 `json:"workTimeMin"`
	ShortBreakMin         uint32 `json:"shortBreakMin"`
	LongBreakMin          uint32 `json:"longBreakMin"`
	ShortBreaksBeforeLong uint32 `json:"shortBreaksBeforeLong"`
}

// Validate rejects minute values too large to express in seconds.
func (r StartRequest) Validate() error {
	return checkMinutes(
		minuteField{"workTimeMin", r.WorkTimeMin},
		minuteField{"shortBreakMin", r.ShortBreakMin},
		minuteField{"longBreakMin", r.LongBreakMin},
	)
}

type minuteField struct {
	name    string
	minutes uint32
}

func checkMinutes(fields ...minuteField) error {
	for _, f := range fields {
		if f.minutes > MaxMinutes {
			return fmt.Errorf("%s must be at most %d, got %d", f.name, MaxMinutes, f.minutes)
		}
	}
	return nil
}

// Params applies the zero-substitution rule and converts minutes to seconds.
// Lengths saturate at math.MaxUint32 seconds; callers reject oversized input
// with Validate first.
func (r StartRequest) Params(defaults Defaults) SessionParams {
	return SessionParams{
		Periods:               PeriodsFromCount(r.Periods),
		WorkLen:               toSeconds(orDefault(r.WorkTimeMin, defaults.WorkMinutes)),
		ShortBreakLen:         toSeconds(orDefault(r.ShortBreakMin, defaults.ShortBreakMinutes)),
		LongBreakLen:          toSeconds(orDefault(r.LongBreakMin, defaults.LongBreakMinutes)),
		ShortBreaksBeforeLong: orDefault(r.ShortBreaksBeforeLong, defaults.ShortBreaksBeforeLong),
	}
}

func toSeconds(minutes uint32) uint32 {
	if minutes > MaxMinutes {
		return math.MaxUint32
	}
	return minutes * OneMinute
}

func orDefault(value, fallback uint32) uint32 {
	if value == 0 {
		return fallback
	}
	return value
}

// TransitionOutcome is the result of advancing a session by one phase.
type TransitionOutcome struct {
	Ended bool
	// NextIn is the length in seconds of the newly-entered phase. Zero when
	// Ended.
	NextIn uint32
}

func Ended() TransitionOutcome {
	return TransitionOutcome{Ended: true}
}

func ContinuesAfter(seconds uint32) TransitionOutcome {
	return TransitionOutcome{NextIn: seconds}
}
