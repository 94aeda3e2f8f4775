package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"joylife/backend/internal/model"
)

type DiaryRepository struct {
	db *sql.DB
}

func NewDiaryRepository(db *sql.DB) *DiaryRepository {
	return &DiaryRepository{db: db}
}

func (r *DiaryRepository) Create(ctx context.Context, entry *model.DiaryEntry) error {
	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO diary_entries (id, user_id, title, content, mood, entry_date, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.UserID,
		entry.Title,
		entry.Content,
		entry.Mood,
		entry.EntryDate,
		entry.CreatedAt.UTC().Format(time.RFC3339Nano),
		entry.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("create diary entry: %w", err)
	}
	return nil
}

func (r *DiaryRepository) ListByUser(ctx context.Context, userID string, limit int) ([]model.DiaryEntry, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT id, user_id, title, content, mood, entry_date, created_at, updated_at
		 FROM diary_entries
		 WHERE user_id = ?
		 ORDER BY entry_date DESC, created_at DESC
		 LIMIT ?`,
		userID,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list diary entries: %w", err)
	}
	defer rows.Close()

	entries := make([]model.DiaryEntry, 0, limit)
	for rows.Next() {
		entry, scanErr := scanDiaryEntry(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		entries = append(entries, *entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate diary entries: %w", err)
	}

	return entries, nil
}

func (r *DiaryRepository) GetByID(ctx context.Context, userID, id string) (*model.DiaryEntry, error) {
	row := r.db.QueryRowContext(
		ctx,
		`SELECT id, user_id, title, content, mood, entry_date, created_at, updated_at
		 FROM diary_entries
		 WHERE id = ? AND user_id = ?`,
		id,
		userID,
	)
	return scanDiaryEntry(row)
}

func (r *DiaryRepository) Update(ctx context.Context, entry *model.DiaryEntry) error {
	result, err := r.db.ExecContext(
		ctx,
		`UPDATE diary_entries
		 SET title = ?, content = ?, mood = ?, entry_date = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		entry.Title,
		entry.Content,
		entry.Mood,
		entry.EntryDate,
		entry.UpdatedAt.UTC().Format(time.RFC3339Nano),
		entry.ID,
		entry.UserID,
	)
	if err != nil {
		return fmt.Errorf("update diary entry: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update diary entry rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *DiaryRepository) Delete(ctx context.Context, userID, id string) error {
	result, err := r.db.ExecContext(
		ctx,
		`DELETE FROM diary_entries WHERE id = ? AND user_id = ?`,
		id,
		userID,
	)
	if err != nil {
		return fmt.Errorf("delete diary entry: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete diary entry rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func scanDiaryEntry(s scanner) (*model.DiaryEntry, error) {
	var entry model.DiaryEntry
	var createdAt string
	var updatedAt string
	err := s.Scan(
		&entry.ID,
		&entry.UserID,
		&entry.Title,
		&entry.Content,
		&entry.Mood,
		&entry.EntryDate,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan diary entry: %w", err)
	}

	parsedCreatedAt, err := parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse diary entry created_at: %w", err)
	}
	parsedUpdatedAt, err := parseTime(updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse diary entry updated_at: %w", err)
	}
	entry.CreatedAt = parsedCreatedAt
	entry.UpdatedAt = parsedUpdatedAt

	return &entry, nil
}
