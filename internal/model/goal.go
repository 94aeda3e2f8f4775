package model

import "time"

type Goal struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	Title      string    `json:"title"`
	Detail     string    `json:"detail"`
	TargetDate *string   `json:"targetDate,omitempty"`
	Done       bool      `json:"done"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
