package memory

import (
	"context"
	"sort"

	"github.com/robocoin/api/internal/models"
)

type groupRepo struct {
	s *Store
}

func (r *groupRepo) Create(ctx context.Context, group *models.Group) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored := *group
	r.s.groups[group.ID] = &stored
	return nil
}

func (r *groupRepo) GetByID(ctx context.Context, id string) (*models.Group, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	g, ok := r.s.groups[id]
	if !ok {
		return nil, nil
	}
	found := *g
	return &found, nil
}

func (r *groupRepo) GetAll(ctx context.Context) ([]models.GroupWithCount, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var groups []models.GroupWithCount
	for _, g := range r.s.groups {
		entry := models.GroupWithCount{Group: *g}
		for _, u := range r.s.users {
			if u.Role == models.RoleStudent && u.IsActive && u.GroupID != nil && *u.GroupID == g.ID {
				entry.StudentCount++
			}
		}
		groups = append(groups, entry)
	}

	sort.Slice(groups, func(i, j int) bool {
		return groups[i].CreatedAt.Before(groups[j].CreatedAt)
	})
	return groups, nil
}

func (r *groupRepo) Update(ctx context.Context, group *models.Group) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if g, ok := r.s.groups[group.ID]; ok {
		g.Name = group.Name
		g.Description = group.Description
	}
	return nil
}

func (r *groupRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.groups, id)

	// Same fallout the schema's foreign keys produce.
	for _, u := range r.s.users {
		if u.GroupID != nil && *u.GroupID == id {
			u.GroupID = nil
		}
	}
	kept := r.s.attendance[:0]
	for _, rec := range r.s.attendance {
		if rec.GroupID != id {
			kept = append(kept, rec)
		}
	}
	r.s.attendance = kept
	for _, a := range r.s.assignments {
		ids := a.GroupIDs[:0]
		for _, gid := range a.GroupIDs {
			if gid != id {
				ids = append(ids, gid)
			}
		}
		a.GroupIDs = ids
	}
	return nil
}

func (r *groupRepo) Count(ctx context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return len(r.s.groups), nil
}

func (r *groupRepo) CountActiveStudents(ctx context.Context, groupID string) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	count := 0
	for _, u := range r.s.users {
		if u.Role == models.RoleStudent && u.IsActive && u.GroupID != nil && *u.GroupID == groupID {
			count++
		}
	}
	return count, nil
}
