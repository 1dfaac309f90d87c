package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type SubmissionStatus string

const (
	// SubmissionNotStarted is implicit: no row exists for the pair yet.
	SubmissionNotStarted SubmissionStatus = "not_started"
	SubmissionInProgress SubmissionStatus = "in_progress"
	SubmissionSubmitted  SubmissionStatus = "submitted"
	SubmissionReviewed   SubmissionStatus = "reviewed"
)

func (s SubmissionStatus) String() string {
	return string(s)
}

// Submission tracks one student's progress on one assignment. At most one row
// exists per (assignment, student) pair; start/complete overwrite it in place.
type Submission struct {
	ID           string           `json:"id" db:"id"`
	AssignmentID string           `json:"assignment_id" db:"assignment_id"`
	StudentID    string           `json:"student_id" db:"student_id"`
	Status       SubmissionStatus `json:"status" db:"status"`
	CoinsGiven   decimal.Decimal  `json:"coins_given" db:"coins_given"`
	AwardTxID    *string          `json:"-" db:"award_tx_id"`
	TeacherID    *string          `json:"teacher_id,omitempty" db:"teacher_id"`
	StartedAt    time.Time        `json:"started_at" db:"started_at"`
	SubmittedAt  *time.Time       `json:"submitted_at,omitempty" db:"submitted_at"`
	ReviewedAt   *time.Time       `json:"reviewed_at,omitempty" db:"reviewed_at"`
}

type SubmissionWithStudent struct {
	Submission
	StudentName string `json:"student_name" db:"student_name"`
}
