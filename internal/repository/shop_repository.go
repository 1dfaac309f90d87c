package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/robocoin/api/internal/models"
)

type ShopRepository interface {
	// Get returns nil when the singleton row was never written.
	Get(ctx context.Context) (*models.ShopSettings, error)
	Upsert(ctx context.Context, settings *models.ShopSettings) error
}

type shopRepository struct {
	*PostgresRepository
}

func NewShopRepository(db *sql.DB, logger zerolog.Logger) ShopRepository {
	return &shopRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

func (r *shopRepository) Get(ctx context.Context) (*models.ShopSettings, error) {
	query := `SELECT is_open, open_date, close_date, updated_at FROM shop_settings WHERE id = 1`

	var settings models.ShopSettings
	err := r.db.QueryRowContext(ctx, query).Scan(
		&settings.IsOpen,
		&settings.OpenDate,
		&settings.CloseDate,
		&settings.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &settings, nil
}

func (r *shopRepository) Upsert(ctx context.Context, settings *models.ShopSettings) error {
	query := `
		INSERT INTO shop_settings (id, is_open, open_date, close_date, updated_at)
		VALUES (1, $1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET is_open = EXCLUDED.is_open, open_date = EXCLUDED.open_date,
			close_date = EXCLUDED.close_date, updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		settings.IsOpen,
		settings.OpenDate,
		settings.CloseDate,
		settings.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert shop settings: %w", err)
	}

	return nil
}
