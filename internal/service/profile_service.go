package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/robocoin/api/internal/models"
	"github.com/robocoin/api/internal/repository"
	"github.com/robocoin/api/pkg/avatar"
	"github.com/robocoin/api/pkg/security"
)

type ProfileService interface {
	Get(ctx context.Context, userID string) (*models.ProfileResponse, error)
	Update(ctx context.Context, userID string, req *models.UpdateProfileRequest) (*models.User, error)
	UploadAvatar(ctx context.Context, userID string, req *models.UploadAvatarRequest) (*models.UploadAvatarResponse, error)
}

type profileService struct {
	userRepo  repository.UserRepository
	groupRepo repository.GroupRepository
	// storage is nil when object storage is disabled; avatars then embed
	// into the user row as data URLs.
	storage  repository.AvatarStorage
	maxBytes int64
	logger   zerolog.Logger
}

func NewProfileService(
	userRepo repository.UserRepository,
	groupRepo repository.GroupRepository,
	storage repository.AvatarStorage,
	maxBytes int64,
	logger zerolog.Logger,
) ProfileService {
	return &profileService{
		userRepo:  userRepo,
		groupRepo: groupRepo,
		storage:   storage,
		maxBytes:  maxBytes,
		logger:    logger,
	}
}

func (s *profileService) Get(ctx context.Context, userID string) (*models.ProfileResponse, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := &models.ProfileResponse{User: user}
	if user.Role == models.RoleStudent {
		resp.Level = models.LevelForCoins(user.TotalCoins)
		if user.GroupID != nil {
			group, err := s.groupRepo.GetByID(ctx, *user.GroupID)
			if err != nil {
				return nil, fmt.Errorf("failed to fetch group: %w", err)
			}
			if group != nil {
				resp.GroupName = group.Name
			}
		}
	}

	return resp, nil
}

func (s *profileService) Update(ctx context.Context, userID string, req *models.UpdateProfileRequest) (*models.User, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.AvatarIcon != nil {
		user.AvatarIcon = *req.AvatarIcon
	}
	if req.AvatarColor != nil {
		user.AvatarColor = *req.AvatarColor
	}
	if req.Bio != nil {
		user.Bio = security.SanitizeText(*req.Bio)
	}

	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return user, nil
}

func (s *profileService) UploadAvatar(ctx context.Context, userID string, req *models.UploadAvatarRequest) (*models.UploadAvatarResponse, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	payload := req.Image
	if i := strings.Index(payload, ","); i >= 0 && strings.HasPrefix(payload, "data:") {
		payload = payload[i+1:]
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, ErrInvalidImage
	}
	if int64(len(data)) > s.maxBytes {
		return nil, ErrAvatarTooLarge
	}

	processed, contentType := avatar.Normalize(data)

	var url string
	if s.storage != nil {
		objectName := fmt.Sprintf("%s_%d%s", user.ID, time.Now().UnixNano(), extensionFor(contentType))
		url, err = s.storage.Upload(ctx, objectName, processed, contentType)
		if err != nil {
			return nil, fmt.Errorf("failed to store avatar: %w", err)
		}
	} else {
		url = "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(processed)
	}

	if err := s.userRepo.SetAvatarURL(ctx, userID, url); err != nil {
		return nil, fmt.Errorf("failed to save avatar url: %w", err)
	}

	s.logger.Info().
		Str("user_id", userID).
		Int("bytes", len(processed)).
		Bool("object_storage", s.storage != nil).
		Msg("Avatar updated")

	return &models.UploadAvatarResponse{AvatarURL: url}, nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	default:
		return ".bin"
	}
}

func (s *profileService) getUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}
