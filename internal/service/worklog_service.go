package service

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "joylife/backend/internal/errors"
	"joylife/backend/internal/model"
	"joylife/backend/internal/repository"
	"joylife/backend/internal/timer"
)

// WorkLogService persists summaries of finished (or abandoned) timer
// sessions. A log is written only on explicit confirmation; on success the
// user's engine is reset to a fresh countdown of the same duration, on
// failure the engine and the caller's input are left untouched so the user
// can retry without retyping.
type WorkLogService struct {
	repo   *repository.WorkLogRepository
	timers *timer.Manager
}

type LogSessionInput struct {
	Title string
	Note  string
}

func NewWorkLogService(repo *repository.WorkLogRepository, timers *timer.Manager) *WorkLogService {
	return &WorkLogService{repo: repo, timers: timers}
}

// sessionHours converts elapsed seconds to hours rounded to two decimals,
// so a ten-minute session records as 0.17.
func sessionHours(elapsedSeconds int) float64 {
	return math.Round(float64(elapsedSeconds)/3600*100) / 100
}

func (s *WorkLogService) LogSession(ctx context.Context, userID string, input LogSessionInput) (*model.WorkLog, *apperrors.APIError) {
	engine := s.timers.Engine(userID)
	snap := engine.Snapshot()

	title := strings.TrimSpace(input.Title)
	if (snap.Mode == timer.ModeFocus || snap.Mode == timer.ModeCustom) && title == "" {
		return nil, apperrors.Validation("title_required", "a title is required to log a focus session")
	}

	hours := sessionHours(snap.TotalSeconds - snap.RemainingSeconds)

	now := time.Now().UTC()
	workLog := model.WorkLog{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     title,
		Hours:     hours,
		Note:      strings.TrimSpace(input.Note),
		LoggedAt:  now,
		CreatedAt: now,
	}

	if err := s.repo.Create(ctx, &workLog); err != nil {
		return nil, apperrors.Internal("failed to save work log")
	}

	engine.Reset()
	return &workLog, nil
}

func (s *WorkLogService) List(ctx context.Context, userID string, limit int) ([]model.WorkLog, *apperrors.APIError) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	logs, err := s.repo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, apperrors.Internal("failed to list work logs")
	}
	return logs, nil
}

func (s *WorkLogService) Delete(ctx context.Context, userID, id string) *apperrors.APIError {
	err := s.repo.Delete(ctx, userID, id)
	if err == repository.ErrNotFound {
		return apperrors.NotFound("work_log_not_found", "work log not found")
	}
	if err != nil {
		return apperrors.Internal("failed to delete work log")
	}
	return nil
}
