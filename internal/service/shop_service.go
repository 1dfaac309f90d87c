package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/robocoin/api/internal/models"
	"github.com/robocoin/api/internal/repository"
	"github.com/robocoin/api/pkg/security"
)

type ShopService interface {
	GetForTeacher(ctx context.Context) (*models.ShopResponse, error)
	GetForStudent(ctx context.Context, studentID string) (*models.ShopForStudentResponse, error)
	UpdateSettings(ctx context.Context, req *models.UpdateShopSettingsRequest) (*models.ShopSettings, error)
	CreateReward(ctx context.Context, req *models.CreateRewardRequest) (*models.Reward, error)
	UpdateReward(ctx context.Context, id string, req *models.CreateRewardRequest) (*models.Reward, error)
	DeleteReward(ctx context.Context, id string) error
	Redeem(ctx context.Context, studentID, rewardID string) (*models.RedeemResponse, error)
}

type shopService struct {
	shopRepo   repository.ShopRepository
	rewardRepo repository.RewardRepository
	userRepo   repository.UserRepository
	ledger     LedgerService
	logger     zerolog.Logger
}

func NewShopService(
	shopRepo repository.ShopRepository,
	rewardRepo repository.RewardRepository,
	userRepo repository.UserRepository,
	ledger LedgerService,
	logger zerolog.Logger,
) ShopService {
	return &shopService{
		shopRepo:   shopRepo,
		rewardRepo: rewardRepo,
		userRepo:   userRepo,
		ledger:     ledger,
		logger:     logger,
	}
}

// settings returns the stored row, or closed defaults when none was ever
// written. Callers cannot tell the two apart, which is the point: an
// unconfigured shop must behave exactly like a closed one.
func (s *shopService) settings(ctx context.Context) (*models.ShopSettings, error) {
	settings, err := s.shopRepo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch shop settings: %w", err)
	}
	if settings == nil {
		return &models.ShopSettings{IsOpen: false}, nil
	}
	return settings, nil
}

func (s *shopService) GetForTeacher(ctx context.Context) (*models.ShopResponse, error) {
	settings, err := s.settings(ctx)
	if err != nil {
		return nil, err
	}

	rewards, err := s.rewardRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list rewards: %w", err)
	}

	return &models.ShopResponse{Settings: settings, Rewards: rewards}, nil
}

func (s *shopService) GetForStudent(ctx context.Context, studentID string) (*models.ShopForStudentResponse, error) {
	settings, err := s.settings(ctx)
	if err != nil {
		return nil, err
	}

	student, err := s.userRepo.GetByID(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch student: %w", err)
	}
	if student == nil || student.Role != models.RoleStudent {
		return nil, ErrStudentNotFound
	}

	rewards, err := s.rewardRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list rewards: %w", err)
	}

	forStudent := make([]models.RewardForStudent, 0, len(rewards))
	for _, reward := range rewards {
		forStudent = append(forStudent, models.RewardForStudent{
			Reward:    reward,
			CanAfford: student.TotalCoins.GreaterThanOrEqual(decimal.NewFromInt(int64(reward.Price))),
		})
	}

	return &models.ShopForStudentResponse{
		Settings: settings,
		Rewards:  forStudent,
		Balance:  student.TotalCoins,
	}, nil
}

func (s *shopService) UpdateSettings(ctx context.Context, req *models.UpdateShopSettingsRequest) (*models.ShopSettings, error) {
	settings := &models.ShopSettings{
		IsOpen:    req.IsOpen,
		OpenDate:  req.OpenDate,
		CloseDate: req.CloseDate,
		UpdatedAt: time.Now().UTC(),
	}

	if err := s.shopRepo.Upsert(ctx, settings); err != nil {
		return nil, fmt.Errorf("failed to update shop settings: %w", err)
	}

	s.logger.Info().Bool("is_open", settings.IsOpen).Msg("Shop settings updated")
	return settings, nil
}

func (s *shopService) CreateReward(ctx context.Context, req *models.CreateRewardRequest) (*models.Reward, error) {
	reward := &models.Reward{
		ID:          uuid.NewString(),
		Name:        security.SanitizeText(req.Name),
		Description: security.SanitizeText(req.Description),
		Price:       req.Price,
		Category:    req.Category,
		Icon:        req.Icon,
		CreatedAt:   time.Now().UTC(),
	}
	if reward.Icon == "" {
		reward.Icon = "gift"
	}

	if err := s.rewardRepo.Create(ctx, reward); err != nil {
		return nil, fmt.Errorf("failed to create reward: %w", err)
	}

	return reward, nil
}

func (s *shopService) UpdateReward(ctx context.Context, id string, req *models.CreateRewardRequest) (*models.Reward, error) {
	reward, err := s.getReward(ctx, id)
	if err != nil {
		return nil, err
	}

	reward.Name = security.SanitizeText(req.Name)
	reward.Description = security.SanitizeText(req.Description)
	reward.Price = req.Price
	reward.Category = req.Category
	if req.Icon != "" {
		reward.Icon = req.Icon
	}

	if err := s.rewardRepo.Update(ctx, reward); err != nil {
		return nil, fmt.Errorf("failed to update reward: %w", err)
	}

	return reward, nil
}

func (s *shopService) DeleteReward(ctx context.Context, id string) error {
	if _, err := s.getReward(ctx, id); err != nil {
		return err
	}

	if err := s.rewardRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete reward: %w", err)
	}

	return nil
}

// Redeem gates in order: shop open, reward exists, funds available. The
// funds check lives in the ledger's guarded update, so two concurrent
// redemptions of the last coins cannot both pass.
func (s *shopService) Redeem(ctx context.Context, studentID, rewardID string) (*models.RedeemResponse, error) {
	settings, err := s.settings(ctx)
	if err != nil {
		return nil, err
	}
	if !settings.IsOpen {
		return nil, ErrShopClosed
	}

	reward, err := s.getReward(ctx, rewardID)
	if err != nil {
		return nil, err
	}

	price := decimal.NewFromInt(int64(reward.Price))
	entry, balance, err := s.ledger.Spend(ctx, studentID, price, "redeem:"+reward.Name)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("student_id", studentID).
		Str("reward_id", rewardID).
		Int("price", reward.Price).
		Msg("Reward redeemed")

	return &models.RedeemResponse{
		Transaction: entry,
		NewBalance:  balance,
		Reward:      reward,
	}, nil
}

func (s *shopService) getReward(ctx context.Context, id string) (*models.Reward, error) {
	reward, err := s.rewardRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch reward: %w", err)
	}
	if reward == nil {
		return nil, ErrRewardNotFound
	}
	return reward, nil
}
