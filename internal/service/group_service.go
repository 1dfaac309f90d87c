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

type GroupService interface {
	List(ctx context.Context) ([]models.GroupWithCount, error)
	Create(ctx context.Context, req *models.CreateGroupRequest) (*models.Group, error)
	Update(ctx context.Context, id string, req *models.CreateGroupRequest) (*models.Group, error)
	Delete(ctx context.Context, id string) error
}

type groupService struct {
	groupRepo repository.GroupRepository
	maxGroups int
	logger    zerolog.Logger
}

func NewGroupService(groupRepo repository.GroupRepository, maxGroups int, logger zerolog.Logger) GroupService {
	return &groupService{
		groupRepo: groupRepo,
		maxGroups: maxGroups,
		logger:    logger,
	}
}

func (s *groupService) List(ctx context.Context) ([]models.GroupWithCount, error) {
	groups, err := s.groupRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}

	return groups, nil
}

func (s *groupService) Create(ctx context.Context, req *models.CreateGroupRequest) (*models.Group, error) {
	count, err := s.groupRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count groups: %w", err)
	}
	if count >= s.maxGroups {
		return nil, ErrGroupLimit
	}

	group := &models.Group{
		ID:          uuid.NewString(),
		Name:        security.SanitizeText(req.Name),
		Description: security.SanitizeText(req.Description),
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.groupRepo.Create(ctx, group); err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}

	s.logger.Info().Str("group_id", group.ID).Str("name", group.Name).Msg("Group created")
	return group, nil
}

func (s *groupService) Update(ctx context.Context, id string, req *models.CreateGroupRequest) (*models.Group, error) {
	group, err := s.getGroup(ctx, id)
	if err != nil {
		return nil, err
	}

	group.Name = security.SanitizeText(req.Name)
	group.Description = security.SanitizeText(req.Description)

	if err := s.groupRepo.Update(ctx, group); err != nil {
		return nil, fmt.Errorf("failed to update group: %w", err)
	}

	return group, nil
}

func (s *groupService) Delete(ctx context.Context, id string) error {
	if _, err := s.getGroup(ctx, id); err != nil {
		return err
	}

	count, err := s.groupRepo.CountActiveStudents(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count group students: %w", err)
	}
	if count > 0 {
		return ErrGroupNotEmpty
	}

	if err := s.groupRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}

	s.logger.Info().Str("group_id", id).Msg("Group deleted")
	return nil
}

func (s *groupService) getGroup(ctx context.Context, id string) (*models.Group, error) {
	group, err := s.groupRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch group: %w", err)
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}
	return group, nil
}
