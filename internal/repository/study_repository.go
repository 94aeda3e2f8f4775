package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"joylife/backend/internal/model"
)

type StudyRepository struct {
	db *sql.DB
}

func NewStudyRepository(db *sql.DB) *StudyRepository {
	return &StudyRepository{db: db}
}

func (r *StudyRepository) Create(ctx context.Context, plan *model.StudyPlan) error {
	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO study_plans (id, user_id, subject, topic, planned_minutes, plan_date, done, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		plan.ID,
		plan.UserID,
		plan.Subject,
		plan.Topic,
		plan.PlannedMinutes,
		plan.PlanDate,
		plan.Done,
		plan.CreatedAt.UTC().Format(time.RFC3339Nano),
		plan.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("create study plan: %w", err)
	}
	return nil
}

func (r *StudyRepository) ListByUser(ctx context.Context, userID string, limit int) ([]model.StudyPlan, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT id, user_id, subject, topic, planned_minutes, plan_date, done, created_at, updated_at
		 FROM study_plans
		 WHERE user_id = ?
		 ORDER BY plan_date DESC, created_at DESC
		 LIMIT ?`,
		userID,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list study plans: %w", err)
	}
	defer rows.Close()

	plans := make([]model.StudyPlan, 0, limit)
	for rows.Next() {
		plan, scanErr := scanStudyPlan(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		plans = append(plans, *plan)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate study plans: %w", err)
	}

	return plans, nil
}

func (r *StudyRepository) GetByID(ctx context.Context, userID, id string) (*model.StudyPlan, error) {
	row := r.db.QueryRowContext(
		ctx,
		`SELECT id, user_id, subject, topic, planned_minutes, plan_date, done, created_at, updated_at
		 FROM study_plans
		 WHERE id = ? AND user_id = ?`,
		id,
		userID,
	)
	return scanStudyPlan(row)
}

func (r *StudyRepository) Update(ctx context.Context, plan *model.StudyPlan) error {
	result, err := r.db.ExecContext(
		ctx,
		`UPDATE study_plans
		 SET subject = ?, topic = ?, planned_minutes = ?, plan_date = ?, done = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		plan.Subject,
		plan.Topic,
		plan.PlannedMinutes,
		plan.PlanDate,
		plan.Done,
		plan.UpdatedAt.UTC().Format(time.RFC3339Nano),
		plan.ID,
		plan.UserID,
	)
	if err != nil {
		return fmt.Errorf("update study plan: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update study plan rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *StudyRepository) Delete(ctx context.Context, userID, id string) error {
	result, err := r.db.ExecContext(
		ctx,
		`DELETE FROM study_plans WHERE id = ? AND user_id = ?`,
		id,
		userID,
	)
	if err != nil {
		return fmt.Errorf("delete study plan: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete study plan rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func scanStudyPlan(s scanner) (*model.StudyPlan, error) {
	var plan model.StudyPlan
	var createdAt string
	var updatedAt string
	err := s.Scan(
		&plan.ID,
		&plan.UserID,
		&plan.Subject,
		&plan.Topic,
		&plan.PlannedMinutes,
		&plan.PlanDate,
		&plan.Done,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan study plan: %w", err)
	}

	parsedCreatedAt, err := parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse study plan created_at: %w", err)
	}
	parsedUpdatedAt, err := parseTime(updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse study plan updated_at: %w", err)
	}
	plan.CreatedAt = parsedCreatedAt
	plan.UpdatedAt = parsedUpdatedAt

	return &plan, nil
}
