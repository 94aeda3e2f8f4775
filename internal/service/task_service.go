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

type TaskService struct {
	repo *repository.TaskRepository
}

type TaskInput struct {
	Title    string  `json:"title"`
	Done     bool    `json:"done"`
	Priority string  `json:"priority"`
	DueDate  *string `json:"dueDate"`
}

func NewTaskService(repo *repository.TaskRepository) *TaskService {
	return &TaskService{repo: repo}
}

func validPriority(priority string) bool {
	switch priority {
	case model.PriorityLow, model.PriorityMedium, model.PriorityHigh:
		return true
	}
	return false
}

func (s *TaskService) validate(input *TaskInput) *apperrors.APIError {
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return apperrors.Validation("title_required", "title is required")
	}
	if input.Priority == "" {
		input.Priority = model.PriorityMedium
	}
	if !validPriority(input.Priority) {
		return apperrors.Validation("invalid_priority", "priority must be one of low, medium, high")
	}
	if input.DueDate != nil && !isDate(*input.DueDate) {
		return apperrors.Validation("invalid_due_date", "dueDate must be YYYY-MM-DD")
	}
	return nil
}

func (s *TaskService) Create(ctx context.Context, userID string, input TaskInput) (*model.Task, *apperrors.APIError) {
	if apiErr := s.validate(&input); apiErr != nil {
		return nil, apiErr
	}

	now := time.Now().UTC()
	task := model.Task{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     input.Title,
		Done:      input.Done,
		Priority:  input.Priority,
		DueDate:   input.DueDate,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, &task); err != nil {
		return nil, apperrors.Internal("failed to create task")
	}
	return &task, nil
}

func (s *TaskService) List(ctx context.Context, userID string, limit int) ([]model.Task, *apperrors.APIError) {
	if limit <= 0 || limit > 200 {
		limit = 100
	}
	tasks, err := s.repo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, apperrors.Internal("failed to list tasks")
	}
	return tasks, nil
}

func (s *TaskService) Update(ctx context.Context, userID, id string, input TaskInput) (*model.Task, *apperrors.APIError) {
	if apiErr := s.validate(&input); apiErr != nil {
		return nil, apiErr
	}

	task, err := s.repo.GetByID(ctx, userID, id)
	if err == repository.ErrNotFound {
		return nil, apperrors.NotFound("task_not_found", "task not found")
	}
	if err != nil {
		return nil, apperrors.Internal("failed to load task")
	}

	task.Title = input.Title
	task.Done = input.Done
	task.Priority = input.Priority
	task.DueDate = input.DueDate
	task.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, task); err != nil {
		if err == repository.ErrNotFound {
			return nil, apperrors.NotFound("task_not_found", "task not found")
		}
		return nil, apperrors.Internal("failed to update task")
	}
	return task, nil
}

// ToggleDone flips completion without requiring the caller to resend the
// full task body.
func (s *TaskService) ToggleDone(ctx context.Context, userID, id string) (*model.Task, *apperrors.APIError) {
	task, err := s.repo.GetByID(ctx, userID, id)
	if err == repository.ErrNotFound {
		return nil, apperrors.NotFound("task_not_found", "task not found")
	}
	if err != nil {
		return nil, apperrors.Internal("failed to load task")
	}

	task.Done = !task.Done
	task.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, task); err != nil {
		return nil, apperrors.Internal("failed to update task")
	}
	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, userID, id string) *apperrors.APIError {
	err := s.repo.Delete(ctx, userID, id)
	if err == repository.ErrNotFound {
		return apperrors.NotFound("task_not_found", "task not found")
	}
	if err != nil {
		return apperrors.Internal("failed to delete task")
	}
	return nil
}
