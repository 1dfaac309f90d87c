package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/robocoin/api/internal/models"
)

type GroupRepository interface {
	Create(ctx context.Context, group *models.Group) error
	GetByID(ctx context.Context, id string) (*models.Group, error)
	GetAll(ctx context.Context) ([]models.GroupWithCount, error)
	Update(ctx context.Context, group *models.Group) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
	CountActiveStudents(ctx context.Context, groupID string) (int, error)
}

type groupRepository struct {
	*PostgresRepository
}

func NewGroupRepository(db *sql.DB, logger zerolog.Logger) GroupRepository {
	return &groupRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

func (r *groupRepository) Create(ctx context.Context, group *models.Group) error {
	query := `
		INSERT INTO groups (id, name, description, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.ExecContext(ctx, query, group.ID, group.Name, group.Description, group.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create group: %w", err)
	}

	return nil
}

func (r *groupRepository) GetByID(ctx context.Context, id string) (*models.Group, error) {
	query := `SELECT id, name, description, created_at FROM groups WHERE id = $1`

	var group models.Group
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&group.ID,
		&group.Name,
		&group.Description,
		&group.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &group, nil
}

func (r *groupRepository) GetAll(ctx context.Context) ([]models.GroupWithCount, error) {
	query := `
		SELECT g.id, g.name, g.description, g.created_at,
			COUNT(u.id) FILTER (WHERE u.is_active) AS student_count
		FROM groups g
		LEFT JOIN users u ON u.group_id = g.id AND u.role = 'student'
		GROUP BY g.id
		ORDER BY g.created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []models.GroupWithCount
	for rows.Next() {
		var g models.GroupWithCount
		err := rows.Scan(&g.ID, &g.Name, &g.Description, &g.CreatedAt, &g.StudentCount)
		if err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}

	return groups, rows.Err()
}

func (r *groupRepository) Update(ctx context.Context, group *models.Group) error {
	query := `UPDATE groups SET name = $1, description = $2 WHERE id = $3`

	_, err := r.db.ExecContext(ctx, query, group.Name, group.Description, group.ID)
	if err != nil {
		return fmt.Errorf("failed to update group: %w", err)
	}

	return nil
}

func (r *groupRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM groups WHERE id = $1`

	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}

	return nil
}

func (r *groupRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM groups`).Scan(&count)
	return count, err
}

func (r *groupRepository) CountActiveStudents(ctx context.Context, groupID string) (int, error) {
	query := `
		SELECT COUNT(*) FROM users
		WHERE group_id = $1 AND role = 'student' AND is_active = true
	`

	var count int
	err := r.db.QueryRowContext(ctx, query, groupID).Scan(&count)
	return count, err
}
