package model

import "time"

type Photo struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Caption   string    `json:"caption"`
	URL       string    `json:"url"`
	TakenAt   *string   `json:"takenAt,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
