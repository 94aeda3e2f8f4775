package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"joylife/backend/internal/model"
)

type PhotoRepository struct {
	db *sql.DB
}

func NewPhotoRepository(db *sql.DB) *PhotoRepository {
	return &PhotoRepository{db: db}
}

func (r *PhotoRepository) Create(ctx context.Context, photo *model.Photo) error {
	var takenAt interface{}
	if photo.TakenAt != nil {
		takenAt = *photo.TakenAt
	}

	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO photos (id, user_id, caption, url, taken_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		photo.ID,
		photo.UserID,
		photo.Caption,
		photo.URL,
		takenAt,
		photo.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("create photo: %w", err)
	}
	return nil
}

func (r *PhotoRepository) ListByUser(ctx context.Context, userID string, limit int) ([]model.Photo, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT id, user_id, caption, url, taken_at, created_at
		 FROM photos
		 WHERE user_id = ?
		 ORDER BY created_at DESC
		 LIMIT ?`,
		userID,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list photos: %w", err)
	}
	defer rows.Close()

	photos := make([]model.Photo, 0, limit)
	for rows.Next() {
		var photo model.Photo
		var takenAt sql.NullString
		var createdAt string
		if err := rows.Scan(&photo.ID, &photo.UserID, &photo.Caption, &photo.URL, &takenAt, &createdAt); err != nil {
			return nil, fmt.Errorf("scan photo: %w", err)
		}
		if takenAt.Valid {
			value := takenAt.String
			photo.TakenAt = &value
		}
		parsedCreatedAt, parseErr := parseTime(createdAt)
		if parseErr != nil {
			return nil, fmt.Errorf("parse photo created_at: %w", parseErr)
		}
		photo.CreatedAt = parsedCreatedAt
		photos = append(photos, photo)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate photos: %w", err)
	}

	return photos, nil
}

func (r *PhotoRepository) Update(ctx context.Context, photo *model.Photo) error {
	var takenAt interface{}
	if photo.TakenAt != nil {
		takenAt = *photo.TakenAt
	}

	result, err := r.db.ExecContext(
		ctx,
		`UPDATE photos
		 SET caption = ?, url = ?, taken_at = ?
		 WHERE id = ? AND user_id = ?`,
		photo.Caption,
		photo.URL,
		takenAt,
		photo.ID,
		photo.UserID,
	)
	if err != nil {
		return fmt.Errorf("update photo: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update photo rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PhotoRepository) Delete(ctx context.Context, userID, id string) error {
	result, err := r.db.ExecContext(
		ctx,
		`DELETE FROM photos WHERE id = ? AND user_id = ?`,
		id,
		userID,
	)
	if err != nil {
		return fmt.Errorf("delete photo: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete photo rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
