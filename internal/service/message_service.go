package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/robocoin/api/internal/models"
	"github.com/robocoin/api/internal/repository"
	"github.com/robocoin/api/pkg/security"
)

const threadLimit = 100

type MessageService interface {
	Send(ctx context.Context, fromID string, req *models.SendMessageRequest) (*models.Message, error)
	Thread(ctx context.Context, userID, otherID string) ([]models.Message, error)
}

type messageService struct {
	messageRepo repository.MessageRepository
	userRepo    repository.UserRepository
	logger      zerolog.Logger
}

func NewMessageService(messageRepo repository.MessageRepository, userRepo repository.UserRepository, logger zerolog.Logger) MessageService {
	return &messageService{
		messageRepo: messageRepo,
		userRepo:    userRepo,
		logger:      logger,
	}
}

func (s *messageService) Send(ctx context.Context, fromID string, req *models.SendMessageRequest) (*models.Message, error) {
	from, err := s.userRepo.GetByID(ctx, fromID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sender: %w", err)
	}
	if from == nil {
		return nil, ErrUserNotFound
	}

	to, err := s.userRepo.GetByID(ctx, req.ToUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recipient: %w", err)
	}
	if to == nil {
		return nil, ErrUserNotFound
	}

	// Students have no peer-to-peer messaging; their only channel is the
	// teacher.
	if from.Role == models.RoleStudent && to.Role != models.RoleTeacher {
		return nil, ErrMessageForbidden
	}

	text := security.SanitizeText(req.Text)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	message := &models.Message{
		ID:         uuid.NewString(),
		FromUserID: fromID,
		ToUserID:   req.ToUserID,
		Text:       text,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}

	return message, nil
}

func (s *messageService) Thread(ctx context.Context, userID, otherID string) ([]models.Message, error) {
	other, err := s.userRepo.GetByID(ctx, otherID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	if other == nil {
		return nil, ErrUserNotFound
	}

	messages, err := s.messageRepo.Thread(ctx, userID, otherID, threadLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load thread: %w", err)
	}

	return messages, nil
}
