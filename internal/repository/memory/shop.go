package memory

import (
	"context"
	"sort"

	"github.com/robocoin/api/internal/models"
)

type rewardRepo struct {
	s *Store
}

func (r *rewardRepo) Create(ctx context.Context, reward *models.Reward) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored := *reward
	r.s.rewards[reward.ID] = &stored
	return nil
}

func (r *rewardRepo) GetByID(ctx context.Context, id string) (*models.Reward, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	reward, ok := r.s.rewards[id]
	if !ok {
		return nil, nil
	}
	found := *reward
	return &found, nil
}

func (r *rewardRepo) GetAll(ctx context.Context) ([]models.Reward, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var rewards []models.Reward
	for _, reward := range r.s.rewards {
		rewards = append(rewards, *reward)
	}

	sort.Slice(rewards, func(i, j int) bool {
		if rewards[i].Price != rewards[j].Price {
			return rewards[i].Price < rewards[j].Price
		}
		return rewards[i].CreatedAt.Before(rewards[j].CreatedAt)
	})
	return rewards, nil
}

func (r *rewardRepo) Update(ctx context.Context, reward *models.Reward) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.rewards[reward.ID]
	if !ok {
		return nil
	}
	stored.Name = reward.Name
	stored.Description = reward.Description
	stored.Price = reward.Price
	stored.Category = reward.Category
	stored.Icon = reward.Icon
	return nil
}

func (r *rewardRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.rewards, id)
	return nil
}

type shopRepo struct {
	s *Store
}

func (r *shopRepo) Get(ctx context.Context) (*models.ShopSettings, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if r.s.shop == nil {
		return nil, nil
	}
	found := *r.s.shop
	return &found, nil
}

func (r *shopRepo) Upsert(ctx context.Context, settings *models.ShopSettings) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored := *settings
	r.s.shop = &stored
	return nil
}
