package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/robocoin/api/internal/models"
)

type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	// Thread returns the conversation between two users in both
	// directions, oldest first.
	Thread(ctx context.Context, userID, otherID string, limit int) ([]models.Message, error)
}

type messageRepository struct {
	*PostgresRepository
}

func NewMessageRepository(db *sql.DB, logger zerolog.Logger) MessageRepository {
	return &messageRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

func (r *messageRepository) Create(ctx context.Context, message *models.Message) error {
	query := `
		INSERT INTO messages (id, from_user_id, to_user_id, text, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(ctx, query,
		message.ID,
		message.FromUserID,
		message.ToUserID,
		message.Text,
		message.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}

	return nil
}

func (r *messageRepository) Thread(ctx context.Context, userID, otherID string, limit int) ([]models.Message, error) {
	query := `
		SELECT id, from_user_id, to_user_id, text, created_at
		FROM (
			SELECT id, from_user_id, to_user_id, text, created_at
			FROM messages
			WHERE (from_user_id = $1 AND to_user_id = $2)
				OR (from_user_id = $2 AND to_user_id = $1)
			ORDER BY created_at DESC
			LIMIT $3
		) latest
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID, otherID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		var m models.Message
		err := rows.Scan(&m.ID, &m.FromUserID, &m.ToUserID, &m.Text, &m.CreatedAt)
		if err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}

	return messages, rows.Err()
}
