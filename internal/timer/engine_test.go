package timer

import (
	"sync"
	"testing"
	"time"
)

type countingSounder struct {
	mu     sync.Mutex
	starts int
	stops  int
}

func (s *countingSounder) StartLoop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.starts++
}

func (s *countingSounder) StopLoop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stops++
}

func (s *countingSounder) counts() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.starts, s.stops
}

// runningEngine returns an engine positioned at remaining seconds with the
// countdown marked running, plus the armed stop handle, without waiting for
// wall-clock ticks.
func runningEngine(sounder Sounder, remaining int) (*Engine, chan struct{}) {
	e := NewEngine(sounder)
	e.mu.Lock()
	e.remainingSeconds = remaining
	e.running = true
	stop := make(chan struct{})
	e.stop = stop
	e.mu.Unlock()
	return e, stop
}

func TestTickDecrementsByExactlyOne(t *testing.T) {
	e, stop := runningEngine(nil, 3)

	for want := 2; want >= 1; want-- {
		if done := e.tick(stop); done {
			t.Fatalf("tick reported done at remaining %d", want)
		}
		if got := e.Snapshot().RemainingSeconds; got != want {
			t.Fatalf("expected remaining %d, got %d", want, got)
		}
	}

	if done := e.tick(stop); !done {
		t.Fatal("final tick should report done")
	}

	snap := e.Snapshot()
	if snap.RemainingSeconds != 0 {
		t.Fatalf("expected remaining 0, got %d", snap.RemainingSeconds)
	}
	if snap.Running {
		t.Fatal("engine must stop running at zero without user action")
	}
	if !snap.Expired {
		t.Fatal("expected expired flag after zero-crossing")
	}
}

func TestZeroCrossingRingsExactlyOnce(t *testing.T) {
	sounder := &countingSounder{}
	e, stop := runningEngine(sounder, 1)

	if done := e.tick(stop); !done {
		t.Fatal("tick from 1 to 0 should finish the countdown")
	}
	if !e.Snapshot().Ringing {
		t.Fatal("expected alarm to ring at zero")
	}

	// A stale handle firing again at zero must be inert.
	if done := e.tick(stop); !done {
		t.Fatal("spurious tick should be a no-op that exits")
	}

	starts, _ := sounder.counts()
	if starts != 1 {
		t.Fatalf("expected exactly one alarm start, got %d", starts)
	}
	if got := e.Snapshot().RemainingSeconds; got != 0 {
		t.Fatalf("spurious tick changed remaining to %d", got)
	}
}

func TestStaleHandleCannotDecrement(t *testing.T) {
	e, stale := runningEngine(nil, 10)

	// Re-arm: the old handle is no longer current.
	e.mu.Lock()
	e.armLocked()
	e.mu.Unlock()

	if done := e.tick(stale); !done {
		t.Fatal("stale handle should exit immediately")
	}
	if got := e.Snapshot().RemainingSeconds; got != 10 {
		t.Fatalf("stale handle decremented the countdown: remaining %d", got)
	}

	e.Stop()
}

func TestToggleWhileRingingDismissesInsteadOfResuming(t *testing.T) {
	sounder := &countingSounder{}
	e, stop := runningEngine(sounder, 1)
	e.tick(stop)

	snap := e.Toggle()
	if snap.Ringing {
		t.Fatal("toggle while ringing must silence the alarm")
	}
	if snap.Running {
		t.Fatal("toggle while ringing must not also start the countdown")
	}
	if snap.RemainingSeconds != snap.TotalSeconds {
		t.Fatalf("dismissing an expired countdown should reset it, remaining %d", snap.RemainingSeconds)
	}

	_, stops := sounder.counts()
	if stops != 1 {
		t.Fatalf("expected one alarm stop, got %d", stops)
	}
}

func TestSwitchModeSilencesAlarm(t *testing.T) {
	e, stop := runningEngine(&countingSounder{}, 1)
	e.tick(stop)

	snap := e.SwitchMode(ModeShortBreak, 0)
	if snap.Ringing {
		t.Fatal("mode switch must silence a ringing alarm")
	}
	if snap.RemainingSeconds != ShortBreakSeconds || snap.TotalSeconds != ShortBreakSeconds {
		t.Fatalf("unexpected durations after switch: %d/%d", snap.RemainingSeconds, snap.TotalSeconds)
	}
	if snap.Running || snap.Expired {
		t.Fatal("mode switch should leave an idle, unexpired timer")
	}
}

func TestCustomMinutesCoercedToAtLeastOne(t *testing.T) {
	e := NewEngine(nil)

	for _, minutes := range []int{0, -5} {
		snap := e.SwitchMode(ModeCustom, minutes)
		if snap.TotalSeconds != 60 {
			t.Fatalf("customMinutes %d should coerce to 60s, got %d", minutes, snap.TotalSeconds)
		}
	}

	if snap := e.SwitchMode(ModeCustom, 10); snap.TotalSeconds != 600 {
		t.Fatalf("expected 600s for 10 custom minutes, got %d", snap.TotalSeconds)
	}
}

func TestResetAfterToggleLeavesFreshTimer(t *testing.T) {
	e := NewEngine(nil)
	e.SwitchMode(ModeCustom, 2)
	e.Reset()
	e.Toggle()
	snap := e.Reset()

	if snap.RemainingSeconds != snap.TotalSeconds {
		t.Fatalf("expected full duration after reset, got %d/%d", snap.RemainingSeconds, snap.TotalSeconds)
	}
	if snap.Running {
		t.Fatal("reset must stop the countdown")
	}
	if snap.Ringing {
		t.Fatal("reset must leave the alarm silent")
	}
}

func TestToggleArmsExactlyOneTicker(t *testing.T) {
	e := NewEngine(nil)

	e.Toggle()
	e.mu.Lock()
	first := e.stop
	e.mu.Unlock()
	if first == nil {
		t.Fatal("expected an armed ticker after starting")
	}

	e.Toggle() // pause
	select {
	case <-first:
	default:
		t.Fatal("pausing must cancel the armed ticker")
	}

	e.Toggle() // resume
	e.mu.Lock()
	second := e.stop
	e.mu.Unlock()
	if second == nil || second == first {
		t.Fatal("resuming must arm a fresh ticker handle")
	}

	e.Stop()
}

func TestTickerDecrementsWallClock(t *testing.T) {
	e := NewEngine(nil)
	e.interval = 5 * time.Millisecond
	e.SwitchMode(ModeCustom, 1)
	e.Toggle()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if e.Snapshot().RemainingSeconds < 60 {
			e.Stop()
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("armed ticker never decremented the countdown")
}

func TestSubscribeCancelMakesDeliveryNoOp(t *testing.T) {
	e := NewEngine(nil)

	var mu sync.Mutex
	notified := 0
	cancel := e.Subscribe(func(Snapshot) {
		mu.Lock()
		notified++
		mu.Unlock()
	})

	e.Reset()
	cancel()
	e.Reset()

	mu.Lock()
	defer mu.Unlock()
	if notified != 1 {
		t.Fatalf("expected one notification before cancel, got %d", notified)
	}
}

func TestAlarmDismissIdempotent(t *testing.T) {
	sounder := &countingSounder{}
	alarm := NewAlarm(sounder)

	alarm.Ring()
	alarm.Ring()
	alarm.Dismiss()
	alarm.Dismiss()

	starts, stops := sounder.counts()
	if starts != 1 || stops != 1 {
		t.Fatalf("expected one start and one stop, got %d/%d", starts, stops)
	}
	if alarm.Playing() {
		t.Fatal("alarm should be silent after dismiss")
	}
}

func TestManagerReturnsSameEnginePerUser(t *testing.T) {
	m := NewManager(nil)

	a := m.Engine("user-a")
	if a != m.Engine("user-a") {
		t.Fatal("manager must reuse the engine for a user")
	}
	if a == m.Engine("user-b") {
		t.Fatal("engines must be per-user")
	}

	snap := a.Snapshot()
	if snap.Mode != ModeFocus || snap.TotalSeconds != FocusSeconds {
		t.Fatalf("fresh engine should default to focus: %+v", snap)
	}

	m.Shutdown()
}
