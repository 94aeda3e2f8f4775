package model

import "time"

type StudyPlan struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId"`
	Subject        string    `json:"subject"`
	Topic          string    `json:"topic"`
	PlannedMinutes int       `json:"plannedMinutes"`
	PlanDate       string    `json:"planDate"`
	Done           bool      `json:"done"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}
