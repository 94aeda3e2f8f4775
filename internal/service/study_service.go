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

type StudyService struct {
	repo *repository.StudyRepository
}

type StudyPlanInput struct {
	Subject        string `json:"subject"`
	Topic          string `json:"topic"`
	PlannedMinutes int    `json:"plannedMinutes"`
	PlanDate       string `json:"planDate"`
	Done           bool   `json:"done"`
}

func NewStudyService(repo *repository.StudyRepository) *StudyService {
	return &StudyService{repo: repo}
}

func (s *StudyService) validate(input *StudyPlanInput) *apperrors.APIError {
	input.Subject = strings.TrimSpace(input.Subject)
	input.Topic = strings.TrimSpace(input.Topic)
	if input.Subject == "" {
		return apperrors.Validation("subject_required", "subject is required")
	}
	if input.PlannedMinutes <= 0 {
		return apperrors.Validation("invalid_planned_minutes", "plannedMinutes must be greater than zero")
	}
	if input.PlanDate == "" {
		input.PlanDate = time.Now().UTC().Format(dateLayout)
	} else if !isDate(input.PlanDate) {
		return apperrors.Validation("invalid_plan_date", "planDate must be YYYY-MM-DD")
	}
	return nil
}

func (s *StudyService) Create(ctx context.Context, userID string, input StudyPlanInput) (*model.StudyPlan, *apperrors.APIError) {
	if apiErr := s.validate(&input); apiErr != nil {
		return nil, apiErr
	}

	now := time.Now().UTC()
	plan := model.StudyPlan{
		ID:             uuid.NewString(),
		UserID:         userID,
		Subject:        input.Subject,
		Topic:          input.Topic,
		PlannedMinutes: input.PlannedMinutes,
		PlanDate:       input.PlanDate,
		Done:           input.Done,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Create(ctx, &plan); err != nil {
		return nil, apperrors.Internal("failed to create study plan")
	}
	return &plan, nil
}

func (s *StudyService) List(ctx context.Context, userID string, limit int) ([]model.StudyPlan, *apperrors.APIError) {
	if limit <= 0 || limit > 200 {
		limit = 100
	}
	plans, err := s.repo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, apperrors.Internal("failed to list study plans")
	}
	return plans, nil
}

func (s *StudyService) Update(ctx context.Context, userID, id string, input StudyPlanInput) (*model.StudyPlan, *apperrors.APIError) {
	if apiErr := s.validate(&input); apiErr != nil {
		return nil, apiErr
	}

	plan, err := s.repo.GetByID(ctx, userID, id)
	if err == repository.ErrNotFound {
		return nil, apperrors.NotFound("study_plan_not_found", "study plan not found")
	}
	if err != nil {
		return nil, apperrors.Internal("failed to load study plan")
	}

	plan.Subject = input.Subject
	plan.Topic = input.Topic
	plan.PlannedMinutes = input.PlannedMinutes
	plan.PlanDate = input.PlanDate
	plan.Done = input.Done
	plan.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, plan); err != nil {
		if err == repository.ErrNotFound {
			return nil, apperrors.NotFound("study_plan_not_found", "study plan not found")
		}
		return nil, apperrors.Internal("failed to update study plan")
	}
	return plan, nil
}

func (s *StudyService) Delete(ctx context.Context, userID, id string) *apperrors.APIError {
	err := s.repo.Delete(ctx, userID, id)
	if err == repository.ErrNotFound {
		return apperrors.NotFound("study_plan_not_found", "study plan not found")
	}
	if err != nil {
		return apperrors.Internal("failed to delete study plan")
	}
	return nil
}
