package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/robocoin/api/internal/models"
)

type AssignmentRepository interface {
	Create(ctx context.Context, assignment *models.Assignment) error
	GetByID(ctx context.Context, id string) (*models.Assignment, error)
	GetAll(ctx context.Context) ([]models.AssignmentWithGroups, error)
	ListForStudent(ctx context.Context, studentID, groupID string) ([]models.StudentAssignment, error)
	TargetsGroup(ctx context.Context, assignmentID, groupID string) (bool, error)
	Update(ctx context.Context, assignment *models.Assignment) error
	Delete(ctx context.Context, id string) error
}

type assignmentRepository struct {
	*PostgresRepository
}

func NewAssignmentRepository(db *sql.DB, logger zerolog.Logger) AssignmentRepository {
	return &assignmentRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

func (r *assignmentRepository) Create(ctx context.Context, assignment *models.Assignment) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin assignment transaction: %w", err)
	}
	defer tx.Rollback()

	insert := `
		INSERT INTO assignments (id, title, description, start_date, due_date, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = tx.ExecContext(ctx, insert,
		assignment.ID,
		assignment.Title,
		assignment.Description,
		assignment.StartDate,
		assignment.DueDate,
		assignment.IsActive,
		assignment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create assignment: %w", err)
	}

	if err := linkGroups(ctx, tx, assignment.ID, assignment.GroupIDs); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit assignment transaction: %w", err)
	}

	return nil
}

func (r *assignmentRepository) GetByID(ctx context.Context, id string) (*models.Assignment, error) {
	query := `
		SELECT a.id, a.title, a.description, a.start_date, a.due_date, a.is_active, a.created_at,
			COALESCE(ARRAY_AGG(ag.group_id::text) FILTER (WHERE ag.group_id IS NOT NULL), '{}')
		FROM assignments a
		LEFT JOIN assignment_groups ag ON ag.assignment_id = a.id
		WHERE a.id = $1
		GROUP BY a.id
	`

	var a models.Assignment
	var groupIDs pq.StringArray
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&a.ID,
		&a.Title,
		&a.Description,
		&a.StartDate,
		&a.DueDate,
		&a.IsActive,
		&a.CreatedAt,
		&groupIDs,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	a.GroupIDs = groupIDs
	return &a, nil
}

func (r *assignmentRepository) GetAll(ctx context.Context) ([]models.AssignmentWithGroups, error) {
	query := `
		SELECT a.id, a.title, a.description, a.start_date, a.due_date, a.is_active, a.created_at,
			COALESCE(ARRAY_AGG(ag.group_id::text) FILTER (WHERE ag.group_id IS NOT NULL), '{}'),
			COALESCE(ARRAY_AGG(g.name) FILTER (WHERE g.name IS NOT NULL), '{}')
		FROM assignments a
		LEFT JOIN assignment_groups ag ON ag.assignment_id = a.id
		LEFT JOIN groups g ON g.id = ag.group_id
		GROUP BY a.id
		ORDER BY a.created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assignments []models.AssignmentWithGroups
	for rows.Next() {
		var a models.AssignmentWithGroups
		var groupIDs, groupNames pq.StringArray
		err := rows.Scan(
			&a.ID,
			&a.Title,
			&a.Description,
			&a.StartDate,
			&a.DueDate,
			&a.IsActive,
			&a.CreatedAt,
			&groupIDs,
			&groupNames,
		)
		if err != nil {
			return nil, err
		}
		a.GroupIDs = groupIDs
		a.GroupNames = groupNames
		assignments = append(assignments, a)
	}

	return assignments, rows.Err()
}

func (r *assignmentRepository) ListForStudent(ctx context.Context, studentID, groupID string) ([]models.StudentAssignment, error) {
	query := `
		SELECT a.id, a.title, a.description, a.start_date, a.due_date, a.is_active, a.created_at,
			COALESCE(s.status, 'not_started'), s.submitted_at, COALESCE(s.coins_given, 0)
		FROM assignments a
		JOIN assignment_groups ag ON ag.assignment_id = a.id AND ag.group_id = $2
		LEFT JOIN submissions s ON s.assignment_id = a.id AND s.student_id = $1
		WHERE a.is_active = true
		ORDER BY a.created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, studentID, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assignments []models.StudentAssignment
	for rows.Next() {
		var a models.StudentAssignment
		err := rows.Scan(
			&a.ID,
			&a.Title,
			&a.Description,
			&a.StartDate,
			&a.DueDate,
			&a.IsActive,
			&a.CreatedAt,
			&a.SubmissionStatus,
			&a.SubmittedAt,
			&a.CoinsGiven,
		)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}

	return assignments, rows.Err()
}

func (r *assignmentRepository) TargetsGroup(ctx context.Context, assignmentID, groupID string) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM assignment_groups
			WHERE assignment_id = $1 AND group_id = $2
		)
	`

	var targets bool
	err := r.db.QueryRowContext(ctx, query, assignmentID, groupID).Scan(&targets)
	return targets, err
}

func (r *assignmentRepository) Update(ctx context.Context, assignment *models.Assignment) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin assignment transaction: %w", err)
	}
	defer tx.Rollback()

	update := `
		UPDATE assignments
		SET title = $1, description = $2, start_date = $3, due_date = $4, is_active = $5
		WHERE id = $6
	`
	_, err = tx.ExecContext(ctx, update,
		assignment.Title,
		assignment.Description,
		assignment.StartDate,
		assignment.DueDate,
		assignment.IsActive,
		assignment.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update assignment: %w", err)
	}

	del := `DELETE FROM assignment_groups WHERE assignment_id = $1`
	if _, err := tx.ExecContext(ctx, del, assignment.ID); err != nil {
		return fmt.Errorf("failed to clear assignment groups: %w", err)
	}

	if err := linkGroups(ctx, tx, assignment.ID, assignment.GroupIDs); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit assignment transaction: %w", err)
	}

	return nil
}

func (r *assignmentRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM assignments WHERE id = $1`

	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete assignment: %w", err)
	}

	return nil
}

func linkGroups(ctx context.Context, tx *sql.Tx, assignmentID string, groupIDs []string) error {
	insert := `INSERT INTO assignment_groups (assignment_id, group_id) VALUES ($1, $2)`
	for _, groupID := range groupIDs {
		if _, err := tx.ExecContext(ctx, insert, assignmentID, groupID); err != nil {
			return fmt.Errorf("failed to link assignment group: %w", err)
		}
	}
	return nil
}
