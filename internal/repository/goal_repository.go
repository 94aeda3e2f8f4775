package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"joylife/backend/internal/model"
)

type GoalRepository struct {
	db *sql.DB
}

func NewGoalRepository(db *sql.DB) *GoalRepository {
	return &GoalRepository{db: db}
}

func (r *GoalRepository) Create(ctx context.Context, goal *model.Goal) error {
	var targetDate interface{}
	if goal.TargetDate != nil {
		targetDate = *goal.TargetDate
	}

	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO goals (id, user_id, title, detail, target_date, done, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		goal.ID,
		goal.UserID,
		goal.Title,
		goal.Detail,
		targetDate,
		goal.Done,
		goal.CreatedAt.UTC().Format(time.RFC3339Nano),
		goal.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("create goal: %w", err)
	}
	return nil
}

func (r *GoalRepository) ListByUser(ctx context.Context, userID string, limit int) ([]model.Goal, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT id, user_id, title, detail, target_date, done, created_at, updated_at
		 FROM goals
		 WHERE user_id = ?
		 ORDER BY done ASC, created_at DESC
		 LIMIT ?`,
		userID,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	goals := make([]model.Goal, 0, limit)
	for rows.Next() {
		goal, scanErr := scanGoal(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		goals = append(goals, *goal)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate goals: %w", err)
	}

	return goals, nil
}

func (r *GoalRepository) GetByID(ctx context.Context, userID, id string) (*model.Goal, error) {
	row := r.db.QueryRowContext(
		ctx,
		`SELECT id, user_id, title, detail, target_date, done, created_at, updated_at
		 FROM goals
		 WHERE id = ? AND user_id = ?`,
		id,
		userID,
	)
	return scanGoal(row)
}

func (r *GoalRepository) Update(ctx context.Context, goal *model.Goal) error {
	var targetDate interface{}
	if goal.TargetDate != nil {
		targetDate = *goal.TargetDate
	}

	result, err := r.db.ExecContext(
		ctx,
		`UPDATE goals
		 SET title = ?, detail = ?, target_date = ?, done = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		goal.Title,
		goal.Detail,
		targetDate,
		goal.Done,
		goal.UpdatedAt.UTC().Format(time.RFC3339Nano),
		goal.ID,
		goal.UserID,
	)
	if err != nil {
		return fmt.Errorf("update goal: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update goal rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GoalRepository) Delete(ctx context.Context, userID, id string) error {
	result, err := r.db.ExecContext(
		ctx,
		`DELETE FROM goals WHERE id = ? AND user_id = ?`,
		id,
		userID,
	)
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete goal rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func scanGoal(s scanner) (*model.Goal, error) {
	var goal model.Goal
	var targetDate sql.NullString
	var createdAt string
	var updatedAt string
	err := s.Scan(
		&goal.ID,
		&goal.UserID,
		&goal.Title,
		&goal.Detail,
		&targetDate,
		&goal.Done,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan goal: %w", err)
	}

	if targetDate.Valid {
		value := targetDate.String
		goal.TargetDate = &value
	}

	parsedCreatedAt, err := parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse goal created_at: %w", err)
	}
	parsedUpdatedAt, err := parseTime(updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse goal updated_at: %w", err)
	}
	goal.CreatedAt = parsedCreatedAt
	goal.UpdatedAt = parsedUpdatedAt

	return &goal, nil
}
