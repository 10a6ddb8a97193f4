package scheduler

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pomodoro/pomod/internal/clock"
	"pomodoro/pomod/internal/model"
	"pomodoro/pomod/internal/session"
)

var epoch = time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)

const (
	waitFor = time.Second
	tick    = time.Millisecond
)

type recorder struct {
	mu     sync.Mutex
	phases []model.Phase
}

func (r *recorder) Notify(phase model.Phase) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.phases = append(r.phases, phase)
}

func (r *recorder) Phases() []model.Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.Phase(nil), r.phases...)
}

func (r *recorder) Count() int {
	return len(r.Phases())
}

type countingAdvancer struct {
	mu       sync.Mutex
	calls    int
	outcomes []model.TransitionOutcome
}

func (a *countingAdvancer) Transition() (model.Phase, model.TransitionOutcome) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls++
	if len(a.outcomes) == 0 {
		return model.PhaseStopped, model.Ended()
	}
	outcome := a.outcomes[0]
	a.outcomes = a.outcomes[1:]
	if outcome.Ended {
		return model.PhaseStopped, outcome
	}
	return model.PhaseShortBreak, outcome
}

func (a *countingAdvancer) Calls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls
}

func startSession(t *testing.T, fc *clock.Fake, req model.StartRequest) (*session.Shared, *Scheduler, *recorder) {
	t.Helper()
	shared := session.NewShared(fc)
	params := req.Params(model.DefaultDurations)
	shared.StartIfIdle("test-session", params)
	rec := &recorder{}
	sched := New(shared, rec, fc)
	sched.Start(params.WorkLen)
	t.Cleanup(sched.Stop)
	return shared, sched, rec
}

func waitForWaiters(t *testing.T, fc *clock.Fake, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return fc.Waiters() == n }, waitFor, tick)
}

func TestSchedulerDrivesPhases(t *testing.T) {
	fc := clock.NewFake(epoch)
	shared, sched, rec := startSession(t, fc, model.StartRequest{WorkTimeMin: 1, ShortBreakMin: 2, LongBreakMin: 3, ShortBreaksBeforeLong: 1})
	assert.Equal(t, Waiting, sched.Status())

	steps := []struct {
		advance time.Duration
		phase   model.Phase
	}{
		{time.Minute, model.PhaseShortBreak},
		{2 * time.Minute, model.PhaseWorking},
		{time.Minute, model.PhaseLongBreak},
		{3 * time.Minute, model.PhaseWorking},
	}
	for i, step := range steps {
		waitForWaiters(t, fc, 1)
		fc.Advance(step.advance)
		require.Eventually(t, func() bool { return rec.Count() == i+1 }, waitFor, tick)
		assert.Equal(t, step.phase, shared.Snapshot().Phase)
	}

	assert.Equal(t, []model.Phase{
		model.PhaseShortBreak,
		model.PhaseWorking,
		model.PhaseLongBreak,
		model.PhaseWorking,
	}, rec.Phases())
}

func TestSchedulerDoesNotFireEarly(t *testing.T) {
	fc := clock.NewFake(epoch)
	shared, _, rec := startSession(t, fc, model.StartRequest{WorkTimeMin: 1})

	fc.Advance(59 * time.Second)

	assert.Never(t, func() bool { return rec.Count() > 0 }, 50*time.Millisecond, tick)
	assert.Equal(t, model.PhaseWorking, shared.Snapshot().Phase)
	assert.Equal(t, uint64(1), shared.Snapshot().RemainingSeconds)
}

func TestSchedulerEndsBoundedSession(t *testing.T) {
	fc := clock.NewFake(epoch)
	shared, sched, rec := startSession(t, fc, model.StartRequest{Periods: 1, WorkTimeMin: 1})

	fc.Advance(time.Minute)

	require.Eventually(t, func() bool { return sched.Status() == Idle }, waitFor, tick)
	assert.Equal(t, []model.Phase{model.PhaseStopped}, rec.Phases())
	assert.Equal(t, model.PhaseStopped, shared.Snapshot().Phase)
	assert.Zero(t, fc.Waiters())
}

func TestSchedulerStopBeforeWaitElapses(t *testing.T) {
	fc := clock.NewFake(epoch)
	advancer := &countingAdvancer{}
	rec := &recorder{}
	sched := New(advancer, rec, fc)

	sched.Start(60)
	sched.Stop()
	assert.Equal(t, Idle, sched.Status())

	fc.Advance(10 * time.Minute)

	assert.Never(t, func() bool { return advancer.Calls() > 0 || rec.Count() > 0 }, 50*time.Millisecond, tick)
	assert.Zero(t, fc.Waiters())
}

func TestSchedulerStopAfterTimerFired(t *testing.T) {
	fc := clock.NewFake(epoch)
	advancer := &countingAdvancer{outcomes: []model.TransitionOutcome{model.ContinuesAfter(30)}}
	rec := &recorder{}
	sched := New(advancer, rec, fc)

	sched.Start(60)
	fc.Advance(time.Minute)
	require.Eventually(t, func() bool { return advancer.Calls() == 1 }, waitFor, tick)
	waitForWaiters(t, fc, 1)

	sched.Stop()
	fc.Advance(time.Hour)

	assert.Never(t, func() bool { return advancer.Calls() > 1 || rec.Count() > 1 }, 50*time.Millisecond, tick)
}

func TestSchedulerStartReplacesRunningLoop(t *testing.T) {
	fc := clock.NewFake(epoch)
	advancer := &countingAdvancer{outcomes: []model.TransitionOutcome{
		model.ContinuesAfter(600),
		model.ContinuesAfter(600),
	}}
	rec := &recorder{}
	sched := New(advancer, rec, fc)
	t.Cleanup(sched.Stop)

	sched.Start(60)
	sched.Start(120)

	fc.Advance(time.Minute)
	assert.Never(t, func() bool { return advancer.Calls() > 0 }, 50*time.Millisecond, tick)

	fc.Advance(time.Minute)
	require.Eventually(t, func() bool { return advancer.Calls() == 1 }, waitFor, tick)
	assert.Equal(t, 1, rec.Count())
}

func TestSchedulerSurvivesPanickingNotifier(t *testing.T) {
	fc := clock.NewFake(epoch)
	shared := session.NewShared(fc)
	shared.StartIfIdle("abc", model.StartRequest{WorkTimeMin: 1, ShortBreakMin: 1}.Params(model.DefaultDurations))

	var mu sync.Mutex
	calls := 0
	sched := New(shared, notifyFunc(func(model.Phase) {
		mu.Lock()
		calls++
		mu.Unlock()
		panic("notification server gone")
	}), fc)
	t.Cleanup(sched.Stop)
	sched.Start(60)

	fc.Advance(time.Minute)
	waitForWaiters(t, fc, 1)
	fc.Advance(time.Minute)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return calls == 2
	}, waitFor, tick)
	assert.Equal(t, Waiting, sched.Status())
}

func TestStopWhenIdle(t *testing.T) {
	sched := New(&countingAdvancer{}, nil, clock.NewFake(epoch))
	assert.NotPanics(t, sched.Stop)
	assert.Equal(t, Idle, sched.Status())
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "waiting", Waiting.String())
}

type notifyFunc func(model.Phase)

func (f notifyFunc) Notify(phase model.Phase) { f(phase) }
