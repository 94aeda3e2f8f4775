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

type ExpenseService struct {
	repo *repository.ExpenseRepository
}

type ExpenseInput struct {
	Amount   float64 `json:"amount"`
	Category string  `json:"category"`
	Note     string  `json:"note"`
	SpentAt  string  `json:"spentAt"`
}

func NewExpenseService(repo *repository.ExpenseRepository) *ExpenseService {
	return &ExpenseService{repo: repo}
}

func (s *ExpenseService) validate(input *ExpenseInput) *apperrors.APIError {
	input.Category = strings.TrimSpace(input.Category)
	input.Note = strings.TrimSpace(input.Note)
	if input.Amount <= 0 {
		return apperrors.Validation("invalid_amount", "amount must be greater than zero")
	}
	if input.Category == "" {
		return apperrors.Validation("category_required", "category is required")
	}
	if input.SpentAt == "" {
		input.SpentAt = time.Now().UTC().Format(dateLayout)
	} else if !isDate(input.SpentAt) {
		return apperrors.Validation("invalid_spent_at", "spentAt must be YYYY-MM-DD")
	}
	return nil
}

func (s *ExpenseService) Create(ctx context.Context, userID string, input ExpenseInput) (*model.Expense, *apperrors.APIError) {
	if apiErr := s.validate(&input); apiErr != nil {
		return nil, apiErr
	}

	now := time.Now().UTC()
	expense := model.Expense{
		ID:        uuid.NewString(),
		UserID:    userID,
		Amount:    input.Amount,
		Category:  input.Category,
		Note:      input.Note,
		SpentAt:   input.SpentAt,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, &expense); err != nil {
		return nil, apperrors.Internal("failed to create expense")
	}
	return &expense, nil
}

func (s *ExpenseService) List(ctx context.Context, userID string, limit int) ([]model.Expense, *apperrors.APIError) {
	if limit <= 0 || limit > 200 {
		limit = 100
	}
	expenses, err := s.repo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, apperrors.Internal("failed to list expenses")
	}
	return expenses, nil
}

func (s *ExpenseService) Update(ctx context.Context, userID, id string, input ExpenseInput) (*model.Expense, *apperrors.APIError) {
	if apiErr := s.validate(&input); apiErr != nil {
		return nil, apiErr
	}

	expense, err := s.repo.GetByID(ctx, userID, id)
	if err == repository.ErrNotFound {
		return nil, apperrors.NotFound("expense_not_found", "expense not found")
	}
	if err != nil {
		return nil, apperrors.Internal("failed to load expense")
	}

	expense.Amount = input.Amount
	expense.Category = input.Category
	expense.Note = input.Note
	expense.SpentAt = input.SpentAt
	expense.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, expense); err != nil {
		if err == repository.ErrNotFound {
			return nil, apperrors.NotFound("expense_not_found", "expense not found")
		}
		return nil, apperrors.Internal("failed to update expense")
	}
	return expense, nil
}

func (s *ExpenseService) Delete(ctx context.Context, userID, id string) *apperrors.APIError {
	err := s.repo.Delete(ctx, userID, id)
	if err == repository.ErrNotFound {
		return apperrors.NotFound("expense_not_found", "expense not found")
	}
	if err != nil {
		return apperrors.Internal("failed to delete expense")
	}
	return nil
}
