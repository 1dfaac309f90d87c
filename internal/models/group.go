package models

import (
	"time"
)

type Group struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

type GroupWithCount struct {
	Group
	StudentCount int `json:"student_count" db:"student_count"`
}
