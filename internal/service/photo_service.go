package service

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "joylife/backend/internal/errors"
	"joylife/backend/internal/model"
	"joylife/backend/internal/repository"
)

type PhotoService struct {
	repo *repository.PhotoRepository
}

type PhotoInput struct {
	Caption string  `json:"caption"`
	URL     string  `json:"url"`
	TakenAt *string `json:"takenAt"`
}

func NewPhotoService(repo *repository.PhotoRepository) *PhotoService {
	return &PhotoService{repo: repo}
}

func (s *PhotoService) validate(input *PhotoInput) *apperrors.APIError {
	input.Caption = strings.TrimSpace(input.Caption)
	input.URL = strings.TrimSpace(input.URL)
	if input.URL == "" {
		return apperrors.Validation("url_required", "url is required")
	}
	parsed, err := url.Parse(input.URL)
	if err != nil || parsed.Scheme == "" {
		return apperrors.Validation("invalid_url", "url must be absolute")
	}
	if input.TakenAt != nil && !isDate(*input.TakenAt) {
		return apperrors.Validation("invalid_taken_at", "takenAt must be YYYY-MM-DD")
	}
	return nil
}

func (s *PhotoService) Create(ctx context.Context, userID string, input PhotoInput) (*model.Photo, *apperrors.APIError) {
	if apiErr := s.validate(&input); apiErr != nil {
		return nil, apiErr
	}

	photo := model.Photo{
		ID:        uuid.NewString(),
		UserID:    userID,
		Caption:   input.Caption,
		URL:       input.URL,
		TakenAt:   input.TakenAt,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, &photo); err != nil {
		return nil, apperrors.Internal("failed to create photo")
	}
	return &photo, nil
}

func (s *PhotoService) List(ctx context.Context, userID string, limit int) ([]model.Photo, *apperrors.APIError) {
	if limit <= 0 || limit > 200 {
		limit = 100
	}
	photos, err := s.repo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, apperrors.Internal("failed to list photos")
	}
	return photos, nil
}

func (s *PhotoService) Update(ctx context.Context, userID, id string, input PhotoInput) (*model.Photo, *apperrors.APIError) {
	if apiErr := s.validate(&input); apiErr != nil {
		return nil, apiErr
	}

	photo := model.Photo{
		ID:      id,
		UserID:  userID,
		Caption: input.Caption,
		URL:     input.URL,
		TakenAt: input.TakenAt,
	}

	if err := s.repo.Update(ctx, &photo); err != nil {
		if err == repository.ErrNotFound {
			return nil, apperrors.NotFound("photo_not_found", "photo not found")
		}
		return nil, apperrors.Internal("failed to update photo")
	}
	return &photo, nil
}

func (s *PhotoService) Delete(ctx context.Context, userID, id string) *apperrors.APIError {
	err := s.repo.Delete(ctx, userID, id)
	if err == repository.ErrNotFound {
		return apperrors.NotFound("photo_not_found", "photo not found")
	}
	if err != nil {
		return apperrors.Internal("failed to delete photo")
	}
	return nil
}
