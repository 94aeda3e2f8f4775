package timer

import "sync"

// Sounder is the single notification output owned by the alarm. Exactly one
// sounder exists per engine; nothing else starts or stops it.
type Sounder interface {
	// StartLoop begins the looping cue. Called at most once per ring.
	StartLoop()
	// StopLoop silences the cue and rewinds it.
	StopLoop()
}

// Alarm turns the engine's zero-crossing into a looping notification that
// keeps sounding until dismissed. Ring while already ringing does not stack
// a second cue; Dismiss while silent is a no-op.
type Alarm struct {
	mu      sync.Mutex
	playing bool
	sounder Sounder
}

func NewAlarm(sounder Sounder) *Alarm {
	return &Alarm{sounder: sounder}
}

func (a *Alarm) Ring() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.playing {
		return
	}
	a.playing = true
	if a.sounder != nil {
		a.sounder.StartLoop()
	}
}

func (a *Alarm) Dismiss() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.playing {
		return
	}
	a.playing = false
	if a.sounder != nil {
		a.sounder.StopLoop()
	}
}

func (a *Alarm) Playing() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.playing
}
