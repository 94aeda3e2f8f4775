package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"joylife/backend/internal/model"
)

type TaskRepository struct {
	db *sql.DB
}

func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	var dueDate interface{}
	if task.DueDate != nil {
		dueDate = *task.DueDate
	}

	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO tasks (id, user_id, title, done, priority, due_date, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		task.ID,
		task.UserID,
		task.Title,
		task.Done,
		task.Priority,
		dueDate,
		task.CreatedAt.UTC().Format(time.RFC3339Nano),
		task.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

func (r *TaskRepository) ListByUser(ctx context.Context, userID string, limit int) ([]model.Task, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT id, user_id, title, done, priority, due_date, created_at, updated_at
		 FROM tasks
		 WHERE user_id = ?
		 ORDER BY done ASC, created_at DESC
		 LIMIT ?`,
		userID,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]model.Task, 0, limit)
	for rows.Next() {
		task, scanErr := scanTask(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		tasks = append(tasks, *task)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}

	return tasks, nil
}

func (r *TaskRepository) GetByID(ctx context.Context, userID, id string) (*model.Task, error) {
	row := r.db.QueryRowContext(
		ctx,
		`SELECT id, user_id, title, done, priority, due_date, created_at, updated_at
		 FROM tasks
		 WHERE id = ? AND user_id = ?`,
		id,
		userID,
	)
	return scanTask(row)
}

func (r *TaskRepository) Update(ctx context.Context, task *model.Task) error {
	var dueDate interface{}
	if task.DueDate != nil {
		dueDate = *task.DueDate
	}

	result, err := r.db.ExecContext(
		ctx,
		`UPDATE tasks
		 SET title = ?, done = ?, priority = ?, due_date = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		task.Title,
		task.Done,
		task.Priority,
		dueDate,
		task.UpdatedAt.UTC().Format(time.RFC3339Nano),
		task.ID,
		task.UserID,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update task rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, userID, id string) error {
	result, err := r.db.ExecContext(
		ctx,
		`DELETE FROM tasks WHERE id = ? AND user_id = ?`,
		id,
		userID,
	)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete task rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func scanTask(s scanner) (*model.Task, error) {
	var task model.Task
	var dueDate sql.NullString
	var createdAt string
	var updatedAt string
	err := s.Scan(
		&task.ID,
		&task.UserID,
		&task.Title,
		&task.Done,
		&task.Priority,
		&dueDate,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan task: %w", err)
	}

	if dueDate.Valid {
		value := dueDate.String
		task.DueDate = &value
	}

	parsedCreatedAt, err := parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse task created_at: %w", err)
	}
	parsedUpdatedAt, err := parseTime(updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse task updated_at: %w", err)
	}
	task.CreatedAt = parsedCreatedAt
	task.UpdatedAt = parsedUpdatedAt

	return &task, nil
}
