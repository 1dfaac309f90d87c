package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Assignment struct {
	ID          string     `json:"id" db:"id"`
	Title       string     `json:"title" db:"title"`
	Description string     `json:"description" db:"description"`
	GroupIDs    []string   `json:"group_ids" db:"group_ids"`
	StartDate   time.Time  `json:"start_date" db:"start_date"`
	DueDate     *time.Time `json:"due_date,omitempty" db:"due_date"`
	IsActive    bool       `json:"is_active" db:"is_active"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}

type AssignmentWithGroups struct {
	Assignment
	GroupNames []string `json:"group_names"`
}

// StudentAssignment is an assignment as one student sees it, carrying that
// student's submission state. Status is "not_started" when no row exists.
type StudentAssignment struct {
	Assignment
	SubmissionStatus SubmissionStatus `json:"submission_status"`
	SubmittedAt      *time.Time       `json:"submitted_at,omitempty"`
	CoinsGiven       decimal.Decimal  `json:"coins_given"`
}
