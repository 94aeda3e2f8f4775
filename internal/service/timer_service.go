package service

import (
	apperrors "joylife/backend/internal/errors"
	"joylife/backend/internal/timer"
)

// TimerService fronts the per-user countdown engines. All operations are
// in-memory state transitions; there is nothing to fail except a bad mode.
type TimerService struct {
	timers *timer.Manager
}

func NewTimerService(timers *timer.Manager) *TimerService {
	return &TimerService{timers: timers}
}

func (s *TimerService) State(userID string) timer.Snapshot {
	return s.timers.Engine(userID).Snapshot()
}

func (s *TimerService) Toggle(userID string) timer.Snapshot {
	return s.timers.Engine(userID).Toggle()
}

func (s *TimerService) Reset(userID string) timer.Snapshot {
	return s.timers.Engine(userID).Reset()
}

func (s *TimerService) DismissAlarm(userID string) timer.Snapshot {
	return s.timers.Engine(userID).DismissAlarm()
}

func (s *TimerService) SwitchMode(userID string, mode timer.Mode, customMinutes int) (timer.Snapshot, *apperrors.APIError) {
	if !timer.ValidMode(mode) {
		return timer.Snapshot{}, apperrors.BadRequest("invalid_mode", "mode must be one of focus, short_break, long_break, custom")
	}
	return s.timers.Engine(userID).SwitchMode(mode, customMinutes), nil
}
