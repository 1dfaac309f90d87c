package memory

import (
	"context"
	"sort"

	"github.com/robocoin/api/internal/models"
)

type messageRepo struct {
	s *Store
}

func (r *messageRepo) Create(ctx context.Context, message *models.Message) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.messages = append(r.s.messages, *message)
	return nil
}

func (r *messageRepo) Thread(ctx context.Context, userID, otherID string, limit int) ([]models.Message, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var thread []models.Message
	for _, m := range r.s.messages {
		if (m.FromUserID == userID && m.ToUserID == otherID) ||
			(m.FromUserID == otherID && m.ToUserID == userID) {
			thread = append(thread, m)
		}
	}

	// Latest N, then oldest first.
	sort.SliceStable(thread, func(i, j int) bool {
		return thread[i].CreatedAt.After(thread[j].CreatedAt)
	})
	if limit > 0 && len(thread) > limit {
		thread = thread[:limit]
	}
	sort.SliceStable(thread, func(i, j int) bool {
		return thread[i].CreatedAt.Before(thread[j].CreatedAt)
	})
	return thread, nil
}
