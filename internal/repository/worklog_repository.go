package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"joylife/backend/internal/model"
)

type WorkLogRepository struct {
	db *sql.DB
}

func NewWorkLogRepository(db *sql.DB) *WorkLogRepository {
	return &WorkLogRepository{db: db}
}

func (r *WorkLogRepository) Create(ctx context.Context, log *model.WorkLog) error {
	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO work_logs (id, user_id, title, hours, note, logged_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		log.ID,
		log.UserID,
		log.Title,
		log.Hours,
		log.Note,
		log.LoggedAt.UTC().Format(time.RFC3339Nano),
		log.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("create work log: %w", err)
	}
	return nil
}

func (r *WorkLogRepository) ListByUser(ctx context.Context, userID string, limit int) ([]model.WorkLog, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT id, user_id, title, hours, note, logged_at, created_at
		 FROM work_logs
		 WHERE user_id = ?
		 ORDER BY logged_at DESC
		 LIMIT ?`,
		userID,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list work logs: %w", err)
	}
	defer rows.Close()

	logs := make([]model.WorkLog, 0, limit)
	for rows.Next() {
		var log model.WorkLog
		var loggedAt string
		var createdAt string
		if err := rows.Scan(&log.ID, &log.UserID, &log.Title, &log.Hours, &log.Note, &loggedAt, &createdAt); err != nil {
			return nil, fmt.Errorf("scan work log: %w", err)
		}
		parsedLoggedAt, parseErr := parseTime(loggedAt)
		if parseErr != nil {
			return nil, fmt.Errorf("parse work log logged_at: %w", parseErr)
		}
		parsedCreatedAt, parseErr := parseTime(createdAt)
		if parseErr != nil {
			return nil, fmt.Errorf("parse work log created_at: %w", parseErr)
		}
		log.LoggedAt = parsedLoggedAt
		log.CreatedAt = parsedCreatedAt
		logs = append(logs, log)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate work logs: %w", err)
	}

	return logs, nil
}

func (r *WorkLogRepository) Delete(ctx context.Context, userID, id string) error {
	result, err := r.db.ExecContext(
		ctx,
		`DELETE FROM work_logs WHERE id = ? AND user_id = ?`,
		id,
		userID,
	)
	if err != nil {
		return fmt.Errorf("delete work log: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete work log rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
