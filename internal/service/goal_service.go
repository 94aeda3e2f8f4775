package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "joylife/backend/internal/errors"
	"joylife/backend/internal/model"
	"joylife/backend/internal/repository"
)

type GoalService struct {
	repo *repository.GoalRepository
}

type GoalInput struct {
	Title      string  `json:"title"`
	Detail     string  `json:"detail"`
	TargetDate *string `json:"targetDate"`
	Done       bool    `json:"done"`
}

func NewGoalService(repo *repository.GoalRepository) *GoalService {
	return &GoalService{repo: repo}
}

func (s *GoalService) validate(input *GoalInput) *apperrors.APIError {
	input.Title = strings.TrimSpace(input.Title)
	input.Detail = strings.TrimSpace(input.Detail)
	if input.Title == "" {
		return apperrors.Validation("title_required", "title is required")
	}
	if input.TargetDate != nil && !isDate(*input.TargetDate) {
		return apperrors.Validation("invalid_target_date", "targetDate must be YYYY-MM-DD")
	}
	return nil
}

func (s *GoalService) Create(ctx context.Context, userID string, input GoalInput) (*model.Goal, *apperrors.APIError) {
	if apiErr := s.validate(&input); apiErr != nil {
		return nil, apiErr
	}

	now := time.Now().UTC()
	goal := model.Goal{
		ID:         uuid.NewString(),
		UserID:     userID,
		Title:      input.Title,
		Detail:     input.Detail,
		TargetDate: input.TargetDate,
		Done:       input.Done,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.Create(ctx, &goal); err != nil {
		return nil, apperrors.Internal("failed to create goal")
	}
	return &goal, nil
}

func (s *GoalService) List(ctx context.Context, userID string, limit int) ([]model.Goal, *apperrors.APIError) {
	if limit <= 0 || limit > 200 {
		limit = 100
	}
	goals, err := s.repo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, apperrors.Internal("failed to list goals")
	}
	return goals, nil
}

func (s *GoalService) Update(ctx context.Context, userID, id string, input GoalInput) (*model.Goal, *apperrors.APIError) {
	if apiErr := s.validate(&input); apiErr != nil {
		return nil, apiErr
	}

	goal, err := s.repo.GetByID(ctx, userID, id)
	if err == repository.ErrNotFound {
		return nil, apperrors.NotFound("goal_not_found", "goal not found")
	}
	if err != nil {
		return nil, apperrors.Internal("failed to load goal")
	}

	goal.Title = input.Title
	goal.Detail = input.Detail
	goal.TargetDate = input.TargetDate
	goal.Done = input.Done
	goal.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, goal); err != nil {
		if err == repository.ErrNotFound {
			return nil, apperrors.NotFound("goal_not_found", "goal not found")
		}
		return nil, apperrors.Internal("failed to update goal")
	}
	return goal, nil
}

func (s *GoalService) Delete(ctx context.Context, userID, id string) *apperrors.APIError {
	err := s.repo.Delete(ctx, userID, id)
	if err == repository.ErrNotFound {
		return apperrors.NotFound("goal_not_found", "goal not found")
	}
	if err != nil {
		return apperrors.Internal("failed to delete goal")
	}
	return nil
}
