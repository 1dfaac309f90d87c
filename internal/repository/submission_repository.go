package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/robocoin/api/internal/models"
)

const submissionColumns = `id, assignment_id, student_id, status, coins_given, award_tx_id, teacher_id, started_at, submitted_at, reviewed_at`

type SubmissionRepository interface {
	// Start and Complete upsert the single row per (assignment, student)
	// pair. Re-running either keeps earlier review fields intact, so an
	// awarded submission never loses its coins_given or award_tx_id.
	Start(ctx context.Context, id, assignmentID, studentID string, startedAt time.Time) (*models.Submission, error)
	Complete(ctx context.Context, id, assignmentID, studentID string, at time.Time) (*models.Submission, error)
	GetByID(ctx context.Context, id string) (*models.Submission, error)
	ListByAssignment(ctx context.Context, assignmentID string) ([]models.SubmissionWithStudent, error)
	MarkReviewed(ctx context.Context, id string, coins decimal.Decimal, teacherID string, awardTxID *string, reviewedAt time.Time) error
}

type submissionRepository struct {
	*PostgresRepository
}

func NewSubmissionRepository(db *sql.DB, logger zerolog.Logger) SubmissionRepository {
	return &submissionRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

func (r *submissionRepository) Start(ctx context.Context, id, assignmentID, studentID string, startedAt time.Time) (*models.Submission, error) {
	query := `
		INSERT INTO submissions (id, assignment_id, student_id, status, coins_given, started_at)
		VALUES ($1, $2, $3, 'in_progress', 0, $4)
		ON CONFLICT (assignment_id, student_id) DO UPDATE
		SET status = 'in_progress', started_at = EXCLUDED.started_at, submitted_at = NULL
		RETURNING ` + submissionColumns

	return r.scanOne(r.db.QueryRowContext(ctx, query, id, assignmentID, studentID, startedAt))
}

func (r *submissionRepository) Complete(ctx context.Context, id, assignmentID, studentID string, at time.Time) (*models.Submission, error) {
	query := `
		INSERT INTO submissions (id, assignment_id, student_id, status, coins_given, started_at, submitted_at)
		VALUES ($1, $2, $3, 'submitted', 0, $4, $4)
		ON CONFLICT (assignment_id, student_id) DO UPDATE
		SET status = 'submitted', submitted_at = EXCLUDED.submitted_at
		RETURNING ` + submissionColumns

	return r.scanOne(r.db.QueryRowContext(ctx, query, id, assignmentID, studentID, at))
}

func (r *submissionRepository) GetByID(ctx context.Context, id string) (*models.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE id = $1`

	sub, err := r.scanOne(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return sub, err
}

func (r *submissionRepository) ListByAssignment(ctx context.Context, assignmentID string) ([]models.SubmissionWithStudent, error) {
	query := `
		SELECT s.id, s.assignment_id, s.student_id, s.status, s.coins_given,
			s.award_tx_id, s.teacher_id, s.started_at, s.submitted_at, s.reviewed_at,
			u.name
		FROM submissions s
		JOIN users u ON u.id = s.student_id
		WHERE s.assignment_id = $1
		ORDER BY u.name ASC
	`

	rows, err := r.db.QueryContext(ctx, query, assignmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var submissions []models.SubmissionWithStudent
	for rows.Next() {
		var s models.SubmissionWithStudent
		err := rows.Scan(
			&s.ID,
			&s.AssignmentID,
			&s.StudentID,
			&s.Status,
			&s.CoinsGiven,
			&s.AwardTxID,
			&s.TeacherID,
			&s.StartedAt,
			&s.SubmittedAt,
			&s.ReviewedAt,
			&s.StudentName,
		)
		if err != nil {
			return nil, err
		}
		submissions = append(submissions, s)
	}

	return submissions, rows.Err()
}

// MarkReviewed records the review outcome. A nil awardTxID keeps whatever
// ledger link the row already has, which is what makes re-reviews safe.
func (r *submissionRepository) MarkReviewed(ctx context.Context, id string, coins decimal.Decimal, teacherID string, awardTxID *string, reviewedAt time.Time) error {
	query := `
		UPDATE submissions
		SET status = 'reviewed', coins_given = $2, teacher_id = $3,
			award_tx_id = COALESCE($4, award_tx_id), reviewed_at = $5
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, id, coins, teacherID, awardTxID, reviewedAt)
	if err != nil {
		return fmt.Errorf("failed to mark submission reviewed: %w", err)
	}

	return nil
}

func (r *submissionRepository) scanOne(row *sql.Row) (*models.Submission, error) {
	var s models.Submission
	err := row.Scan(
		&s.ID,
		&s.AssignmentID,
		&s.StudentID,
		&s.Status,
		&s.CoinsGiven,
		&s.AwardTxID,
		&s.TeacherID,
		&s.StartedAt,
		&s.SubmittedAt,
		&s.ReviewedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
