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

type DiaryService struct {
	repo *repository.DiaryRepository
}

type DiaryInput struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	Mood      string `json:"mood"`
	EntryDate string `json:"entryDate"`
}

func NewDiaryService(repo *repository.DiaryRepository) *DiaryService {
	return &DiaryService{repo: repo}
}

func (s *DiaryService) validate(input *DiaryInput) *apperrors.APIError {
	input.Title = strings.TrimSpace(input.Title)
	input.Content = strings.TrimSpace(input.Content)
	input.Mood = strings.TrimSpace(input.Mood)
	if input.Title == "" {
		return apperrors.Validation("title_required", "title is required")
	}
	if input.EntryDate == "" {
		input.EntryDate = time.Now().UTC().Format(dateLayout)
	} else if !isDate(input.EntryDate) {
		return apperrors.Validation("invalid_entry_date", "entryDate must be YYYY-MM-DD")
	}
	return nil
}

func (s *DiaryService) Create(ctx context.Context, userID string, input DiaryInput) (*model.DiaryEntry, *apperrors.APIError) {
	if apiErr := s.validate(&input); apiErr != nil {
		return nil, apiErr
	}

	now := time.Now().UTC()
	entry := model.DiaryEntry{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     input.Title,
		Content:   input.Content,
		Mood:      input.Mood,
		EntryDate: input.EntryDate,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, &entry); err != nil {
		return nil, apperrors.Internal("failed to create diary entry")
	}
	return &entry, nil
}

func (s *DiaryService) List(ctx context.Context, userID string, limit int) ([]model.DiaryEntry, *apperrors.APIError) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	entries, err := s.repo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, apperrors.Internal("failed to list diary entries")
	}
	return entries, nil
}

func (s *DiaryService) Update(ctx context.Context, userID, id string, input DiaryInput) (*model.DiaryEntry, *apperrors.APIError) {
	if apiErr := s.validate(&input); apiErr != nil {
		return nil, apiErr
	}

	entry, err := s.repo.GetByID(ctx, userID, id)
	if err == repository.ErrNotFound {
		return nil, apperrors.NotFound("diary_entry_not_found", "diary entry not found")
	}
	if err != nil {
		return nil, apperrors.Internal("failed to load diary entry")
	}

	entry.Title = input.Title
	entry.Content = input.Content
	entry.Mood = input.Mood
	entry.EntryDate = input.EntryDate
	entry.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, entry); err != nil {
		if err == repository.ErrNotFound {
			return nil, apperrors.NotFound("diary_entry_not_found", "diary entry not found")
		}
		return nil, apperrors.Internal("failed to update diary entry")
	}
	return entry, nil
}

func (s *DiaryService) Delete(ctx context.Context, userID, id string) *apperrors.APIError {
	err := s.repo.Delete(ctx, userID, id)
	if err == repository.ErrNotFound {
		return apperrors.NotFound("diary_entry_not_found", "diary entry not found")
	}
	if err != nil {
		return apperrors.Internal("failed to delete diary entry")
	}
	return nil
}
