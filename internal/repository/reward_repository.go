package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/robocoin/api/internal/models"
)

type RewardRepository interface {
	Create(ctx context.Context, reward *models.Reward) error
	GetByID(ctx context.Context, id string) (*models.Reward, error)
	GetAll(ctx context.Context) ([]models.Reward, error)
	Update(ctx context.Context, reward *models.Reward) error
	Delete(ctx context.Context, id string) error
}

type rewardRepository struct {
	*PostgresRepository
}

func NewRewardRepository(db *sql.DB, logger zerolog.Logger) RewardRepository {
	return &rewardRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

func (r *rewardRepository) Create(ctx context.Context, reward *models.Reward) error {
	query := `
		INSERT INTO rewards (id, name, description, price, category, icon, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		reward.ID,
		reward.Name,
		reward.Description,
		reward.Price,
		reward.Category,
		reward.Icon,
		reward.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create reward: %w", err)
	}

	return nil
}

func (r *rewardRepository) GetByID(ctx context.Context, id string) (*models.Reward, error) {
	query := `SELECT id, name, description, price, category, icon, created_at FROM rewards WHERE id = $1`

	var reward models.Reward
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&reward.ID,
		&reward.Name,
		&reward.Description,
		&reward.Price,
		&reward.Category,
		&reward.Icon,
		&reward.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &reward, nil
}

func (r *rewardRepository) GetAll(ctx context.Context) ([]models.Reward, error) {
	query := `
		SELECT id, name, description, price, category, icon, created_at
		FROM rewards
		ORDER BY price ASC, created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rewards []models.Reward
	for rows.Next() {
		var reward models.Reward
		err := rows.Scan(
			&reward.ID,
			&reward.Name,
			&reward.Description,
			&reward.Price,
			&reward.Category,
			&reward.Icon,
			&reward.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		rewards = append(rewards, reward)
	}

	return rewards, rows.Err()
}

func (r *rewardRepository) Update(ctx context.Context, reward *models.Reward) error {
	query := `
		UPDATE rewards
		SET name = $1, description = $2, price = $3, category = $4, icon = $5
		WHERE id = $6
	`

	_, err := r.db.ExecContext(ctx, query,
		reward.Name,
		reward.Description,
		reward.Price,
		reward.Category,
		reward.Icon,
		reward.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update reward: %w", err)
	}

	return nil
}

func (r *rewardRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM rewards WHERE id = $1`

	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete reward: %w", err)
	}

	return nil
}
