package model

import "time"

// WorkLog is a persisted summary of a finished (or abandoned) focus session.
// It is written once on explicit user confirmation and never updated.
type WorkLog struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	Hours     float64   `json:"hours"`
	Note      string    `json:"note"`
	LoggedAt  time.Time `json:"loggedAt"`
	CreatedAt time.Time `json:"createdAt"`
}
