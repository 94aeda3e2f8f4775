package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"joylife/backend/internal/model"
)

type NoteRepository struct {
	db *sql.DB
}

func NewNoteRepository(db *sql.DB) *NoteRepository {
	return &NoteRepository{db: db}
}

func (r *NoteRepository) Create(ctx context.Context, note *model.Note) error {
	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO notes (id, user_id, title, content, pinned, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		note.ID,
		note.UserID,
		note.Title,
		note.Content,
		note.Pinned,
		note.CreatedAt.UTC().Format(time.RFC3339Nano),
		note.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("create note: %w", err)
	}
	return nil
}

func (r *NoteRepository) ListByUser(ctx context.Context, userID string, limit int) ([]model.Note, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT id, user_id, title, content, pinned, created_at, updated_at
		 FROM notes
		 WHERE user_id = ?
		 ORDER BY pinned DESC, updated_at DESC
		 LIMIT ?`,
		userID,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	notes := make([]model.Note, 0, limit)
	for rows.Next() {
		note, scanErr := scanNote(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		notes = append(notes, *note)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notes: %w", err)
	}

	return notes, nil
}

func (r *NoteRepository) GetByID(ctx context.Context, userID, id string) (*model.Note, error) {
	row := r.db.QueryRowContext(
		ctx,
		`SELECT id, user_id, title, content, pinned, created_at, updated_at
		 FROM notes
		 WHERE id = ? AND user_id = ?`,
		id,
		userID,
	)
	return scanNote(row)
}

func (r *NoteRepository) Update(ctx context.Context, note *model.Note) error {
	result, err := r.db.ExecContext(
		ctx,
		`UPDATE notes
		 SET title = ?, content = ?, pinned = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		note.Title,
		note.Content,
		note.Pinned,
		note.UpdatedAt.UTC().Format(time.RFC3339Nano),
		note.ID,
		note.UserID,
	)
	if err != nil {
		return fmt.Errorf("update note: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update note rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *NoteRepository) Delete(ctx context.Context, userID, id string) error {
	result, err := r.db.ExecContext(
		ctx,
		`DELETE FROM notes WHERE id = ? AND user_id = ?`,
		id,
		userID,
	)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete note rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func scanNote(s scanner) (*model.Note, error) {
	var note model.Note
	var createdAt string
	var updatedAt string
	err := s.Scan(
		&note.ID,
		&note.UserID,
		&note.Title,
		&note.Content,
		&note.Pinned,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan note: %w", err)
	}

	parsedCreatedAt, err := parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse note created_at: %w", err)
	}
	parsedUpdatedAt, err := parseTime(updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse note updated_at: %w", err)
	}
	note.CreatedAt = parsedCreatedAt
	note.UpdatedAt = parsedUpdatedAt

	return &note, nil
}
