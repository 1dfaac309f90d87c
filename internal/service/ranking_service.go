package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/robocoin/api/internal/models"
	"github.com/robocoin/api/internal/repository"
)

type RankingService interface {
	Global(ctx context.Context) ([]models.RankingEntry, error)
	Group(ctx context.Context, groupID string) ([]models.RankingEntry, error)
	// Weekly ranks by coins earned since the most recent Monday 00:00 UTC;
	// only positive entries count, so spending never hurts the weekly score.
	Weekly(ctx context.Context) ([]models.WeeklyRankingEntry, error)
}

type rankingService struct {
	userRepo  repository.UserRepository
	txRepo    repository.TransactionRepository
	groupRepo repository.GroupRepository
	logger    zerolog.Logger
}

func NewRankingService(
	userRepo repository.UserRepository,
	txRepo repository.TransactionRepository,
	groupRepo repository.GroupRepository,
	logger zerolog.Logger,
) RankingService {
	return &rankingService{
		userRepo:  userRepo,
		txRepo:    txRepo,
		groupRepo: groupRepo,
		logger:    logger,
	}
}

func (s *rankingService) Global(ctx context.Context) ([]models.RankingEntry, error) {
	return s.ranked(ctx, "", 0)
}

func (s *rankingService) Group(ctx context.Context, groupID string) ([]models.RankingEntry, error) {
	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch group: %w", err)
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}

	return s.ranked(ctx, groupID, 0)
}

func (s *rankingService) ranked(ctx context.Context, groupID string, limit int) ([]models.RankingEntry, error) {
	students, err := s.userRepo.RankedStudents(ctx, groupID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to rank students: %w", err)
	}

	entries := make([]models.RankingEntry, 0, len(students))
	for i, st := range students {
		entries = append(entries, models.RankingEntry{
			Rank:       i + 1,
			StudentID:  st.ID,
			Name:       st.Name,
			TotalCoins: st.TotalCoins,
			Level:      models.LevelForCoins(st.TotalCoins),
		})
	}

	return entries, nil
}

func (s *rankingService) Weekly(ctx context.Context) ([]models.WeeklyRankingEntry, error) {
	entries, err := s.txRepo.WeeklyTotals(ctx, weekStart(time.Now()))
	if err != nil {
		return nil, fmt.Errorf("failed to load weekly totals: %w", err)
	}

	for i := range entries {
		entries[i].Rank = i + 1
	}

	return entries, nil
}

// weekStart returns the most recent Monday 00:00 UTC at or before now.
func weekStart(now time.Time) time.Time {
	now = now.UTC()
	day := now.Truncate(24 * time.Hour)
	offset := (int(now.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}
