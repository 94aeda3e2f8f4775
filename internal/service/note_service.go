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

type NoteService struct {
	repo *repository.NoteRepository
}

type NoteInput struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Pinned  bool   `json:"pinned"`
}

func NewNoteService(repo *repository.NoteRepository) *NoteService {
	return &NoteService{repo: repo}
}

func (s *NoteService) validate(input *NoteInput) *apperrors.APIError {
	input.Title = strings.TrimSpace(input.Title)
	input.Content = strings.TrimSpace(input.Content)
	if input.Title == "" && input.Content == "" {
		return apperrors.Validation("empty_note", "a note needs a title or content")
	}
	return nil
}

func (s *NoteService) Create(ctx context.Context, userID string, input NoteInput) (*model.Note, *apperrors.APIError) {
	if apiErr := s.validate(&input); apiErr != nil {
		return nil, apiErr
	}

	now := time.Now().UTC()
	note := model.Note{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     input.Title,
		Content:   input.Content,
		Pinned:    input.Pinned,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, &note); err != nil {
		return nil, apperrors.Internal("failed to create note")
	}
	return &note, nil
}

func (s *NoteService) List(ctx context.Context, userID string, limit int) ([]model.Note, *apperrors.APIError) {
	if limit <= 0 || limit > 200 {
		limit = 100
	}
	notes, err := s.repo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, apperrors.Internal("failed to list notes")
	}
	return notes, nil
}

func (s *NoteService) Update(ctx context.Context, userID, id string, input NoteInput) (*model.Note, *apperrors.APIError) {
	if apiErr := s.validate(&input); apiErr != nil {
		return nil, apiErr
	}

	note, err := s.repo.GetByID(ctx, userID, id)
	if err == repository.ErrNotFound {
		return nil, apperrors.NotFound("note_not_found", "note not found")
	}
	if err != nil {
		return nil, apperrors.Internal("failed to load note")
	}

	note.Title = input.Title
	note.Content = input.Content
	note.Pinned = input.Pinned
	note.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, note); err != nil {
		if err == repository.ErrNotFound {
			return nil, apperrors.NotFound("note_not_found", "note not found")
		}
		return nil, apperrors.Internal("failed to update note")
	}
	return note, nil
}

func (s *NoteService) Delete(ctx context.Context, userID, id string) *apperrors.APIError {
	err := s.repo.Delete(ctx, userID, id)
	if err == repository.ErrNotFound {
		return apperrors.NotFound("note_not_found", "note not found")
	}
	if err != nil {
		return apperrors.Internal("failed to delete note")
	}
	return nil
}
