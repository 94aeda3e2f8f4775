package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"joylife/backend/internal/model"
)

type ExpenseRepository struct {
	db *sql.DB
}

func NewExpenseRepository(db *sql.DB) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

func (r *ExpenseRepository) Create(ctx context.Context, expense *model.Expense) error {
	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO expenses (id, user_id, amount, category, note, spent_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		expense.ID,
		expense.UserID,
		expense.Amount,
		expense.Category,
		expense.Note,
		expense.SpentAt,
		expense.CreatedAt.UTC().Format(time.RFC3339Nano),
		expense.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("create expense: %w", err)
	}
	return nil
}

func (r *ExpenseRepository) ListByUser(ctx context.Context, userID string, limit int) ([]model.Expense, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT id, user_id, amount, category, note, spent_at, created_at, updated_at
		 FROM expenses
		 WHERE user_id = ?
		 ORDER BY spent_at DESC, created_at DESC
		 LIMIT ?`,
		userID,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	expenses := make([]model.Expense, 0, limit)
	for rows.Next() {
		expense, scanErr := scanExpense(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		expenses = append(expenses, *expense)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}

	return expenses, nil
}

func (r *ExpenseRepository) GetByID(ctx context.Context, userID, id string) (*model.Expense, error) {
	row := r.db.QueryRowContext(
		ctx,
		`SELECT id, user_id, amount, category, note, spent_at, created_at, updated_at
		 FROM expenses
		 WHERE id = ? AND user_id = ?`,
		id,
		userID,
	)
	return scanExpense(row)
}

func (r *ExpenseRepository) Update(ctx context.Context, expense *model.Expense) error {
	result, err := r.db.ExecContext(
		ctx,
		`UPDATE expenses
		 SET amount = ?, category = ?, note = ?, spent_at = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		expense.Amount,
		expense.Category,
		expense.Note,
		expense.SpentAt,
		expense.UpdatedAt.UTC().Format(time.RFC3339Nano),
		expense.ID,
		expense.UserID,
	)
	if err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update expense rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ExpenseRepository) Delete(ctx context.Context, userID, id string) error {
	result, err := r.db.ExecContext(
		ctx,
		`DELETE FROM expenses WHERE id = ? AND user_id = ?`,
		id,
		userID,
	)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete expense rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func scanExpense(s scanner) (*model.Expense, error) {
	var expense model.Expense
	var createdAt string
	var updatedAt string
	err := s.Scan(
		&expense.ID,
		&expense.UserID,
		&expense.Amount,
		&expense.Category,
		&expense.Note,
		&expense.SpentAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan expense: %w", err)
	}

	parsedCreatedAt, err := parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse expense created_at: %w", err)
	}
	parsedUpdatedAt, err := parseTime(updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse expense updated_at: %w", err)
	}
	expense.CreatedAt = parsedCreatedAt
	expense.UpdatedAt = parsedUpdatedAt

	return &expense, nil
}
