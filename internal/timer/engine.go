// Package timer implements the shared countdown engine behind the focus
// timer: one engine per user, alive for the whole process, ticking once per
// second while running. Engines are mutated only through the operations
// below; every transition that should stop ticking cancels the armed tick
// goroutine before optionally arming a new one.
package timer

import (
	"sync"
	"time"
)

type Mode string

const (
	ModeFocus      Mode = "focus"
	ModeShortBreak Mode = "short_break"
	ModeLongBreak  Mode = "long_break"
	ModeCustom     Mode = "custom"
)

const (
	FocusSeconds      = 25 * 60
	ShortBreakSeconds = 5 * 60
	LongBreakSeconds  = 15 * 60
)

// Snapshot is an immutable copy of the engine state for rendering and push.
type Snapshot struct {
	Mode             Mode `json:"mode"`
	TotalSeconds     int  `json:"totalSeconds"`
	RemainingSeconds int  `json:"remainingSeconds"`
	Running          bool `json:"running"`
	Ringing          bool `json:"ringing"`
	Expired          bool `json:"expired"`
}

type Engine struct {
	mu               sync.Mutex
	mode             Mode
	totalSeconds     int
	remainingSeconds int
	running          bool
	expired          bool // countdown reached zero and awaits save or dismissal

	alarm *Alarm

	// stop is non-nil exactly while a tick goroutine is armed. Arming always
	// closes the previous handle first, so at most one goroutine ticks this
	// engine at any time.
	stop     chan struct{}
	interval time.Duration

	nextSubID   int
	subscribers map[int]func(Snapshot)
}

func NewEngine(sounder Sounder) *Engine {
	return &Engine{
		mode:             ModeFocus,
		totalSeconds:     FocusSeconds,
		remainingSeconds: FocusSeconds,
		alarm:            NewAlarm(sounder),
		interval:         time.Second,
		subscribers:      make(map[int]func(Snapshot)),
	}
}

// Subscribe registers fn to receive a snapshot after every state transition.
// The returned cancel makes further deliveries to fn a no-op, so a
// disconnected client never crashes a tick.
func (e *Engine) Subscribe(fn func(Snapshot)) (cancel func()) {
	e.mu.Lock()
	id := e.nextSubID
	e.nextSubID++
	e.subscribers[id] = fn
	e.mu.Unlock()

	return func() {
		e.mu.Lock()
		delete(e.subscribers, id)
		e.mu.Unlock()
	}
}

func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// SwitchMode silences the alarm, stops ticking, and resets both duration
// fields to the preset for the chosen mode. customMinutes below 1 is coerced
// to 1; it is ignored for the non-custom modes.
func (e *Engine) SwitchMode(mode Mode, customMinutes int) Snapshot {
	e.mu.Lock()
	e.alarm.Dismiss()
	e.disarmLocked()
	e.running = false
	e.expired = false
	e.mode = mode
	e.totalSeconds = PresetSeconds(mode, customMinutes)
	e.remainingSeconds = e.totalSeconds
	return e.unlockAndNotify()
}

// Toggle flips running, except while the alarm is ringing: then the press
// dismisses the alarm instead of pausing or resuming. A timer that already
// reached zero cannot be started again without a reset.
func (e *Engine) Toggle() Snapshot {
	e.mu.Lock()
	if e.alarm.Playing() {
		return e.unlockAndNotify(e.dismissLocked)
	}

	if e.running {
		e.running = false
		e.disarmLocked()
	} else if e.remainingSeconds > 0 {
		e.running = true
		e.armLocked()
	}
	return e.unlockAndNotify()
}

// Reset silences the alarm, stops ticking, and restores the full duration.
func (e *Engine) Reset() Snapshot {
	e.mu.Lock()
	return e.unlockAndNotify(e.resetLocked)
}

// DismissAlarm acknowledges an expired countdown without saving it: the
// alarm goes silent and the timer returns to a fresh idle state. Safe to
// call when nothing is ringing.
func (e *Engine) DismissAlarm() Snapshot {
	e.mu.Lock()
	return e.unlockAndNotify(e.dismissLocked)
}

// Stop tears the engine down: any armed ticker is cancelled and the alarm
// silenced. Used on shutdown.
func (e *Engine) Stop() {
	e.mu.Lock()
	e.disarmLocked()
	e.running = false
	e.alarm.Dismiss()
	e.mu.Unlock()
}

// PresetSeconds maps a mode to its countdown duration.
func PresetSeconds(mode Mode, customMinutes int) int {
	switch mode {
	case ModeShortBreak:
		return ShortBreakSeconds
	case ModeLongBreak:
		return LongBreakSeconds
	case ModeCustom:
		if customMinutes < 1 {
			customMinutes = 1
		}
		return customMinutes * 60
	default:
		return FocusSeconds
	}
}

func ValidMode(mode Mode) bool {
	switch mode {
	case ModeFocus, ModeShortBreak, ModeLongBreak, ModeCustom:
		return true
	}
	return false
}

func (e *Engine) resetLocked() {
	e.alarm.Dismiss()
	e.disarmLocked()
	e.running = false
	e.expired = false
	e.remainingSeconds = e.totalSeconds
}

func (e *Engine) dismissLocked() {
	e.alarm.Dismiss()
	if e.expired {
		e.resetLocked()
	}
}

// armLocked starts a new tick goroutine. Callers hold e.mu.
func (e *Engine) armLocked() {
	e.disarmLocked()
	stop := make(chan struct{})
	e.stop = stop
	go e.tickLoop(stop)
}

// disarmLocked cancels the armed tick goroutine, if any. Callers hold e.mu.
func (e *Engine) disarmLocked() {
	if e.stop != nil {
		close(e.stop)
		e.stop = nil
	}
}

func (e *Engine) tickLoop(stop chan struct{}) {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if e.tick(stop) {
				return
			}
		}
	}
}

// tick applies one whole-second decrement and reports whether this goroutine
// is done. The stop handle identity check makes a stale goroutine racing a
// fresh one inert: only the currently armed handle may mutate the countdown.
func (e *Engine) tick(stop chan struct{}) bool {
	e.mu.Lock()
	if e.stop != stop || !e.running || e.remainingSeconds <= 0 {
		e.mu.Unlock()
		return true
	}

	e.remainingSeconds--
	finished := e.remainingSeconds == 0
	if finished {
		// The zero-crossing stops the countdown without user action and
		// rings the alarm exactly once; the spent handle is dropped so a
		// later disarm is a no-op.
		e.running = false
		e.expired = true
		e.stop = nil
		e.alarm.Ring()
	}
	e.unlockAndNotify()
	return finished
}

func (e *Engine) snapshotLocked() Snapshot {
	return Snapshot{
		Mode:             e.mode,
		TotalSeconds:     e.totalSeconds,
		RemainingSeconds: e.remainingSeconds,
		Running:          e.running,
		Ringing:          e.alarm.Playing(),
		Expired:          e.expired,
	}
}

// unlockAndNotify applies the optional mutations, captures a snapshot, then
// releases e.mu before fanning out to subscribers so a subscriber may call
// back into the engine.
func (e *Engine) unlockAndNotify(mutations ...func()) Snapshot {
	for _, apply := range mutations {
		apply()
	}
	snap := e.snapshotLocked()
	fns := make([]func(Snapshot), 0, len(e.subscribers))
	for _, fn := range e.subscribers {
		fns = append(fns, fn)
	}
	e.mu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
	return snap
}
