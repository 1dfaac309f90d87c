package memory

import (
	"context"
	"sort"

	"github.com/robocoin/api/internal/models"
)

type userRepo struct {
	s *Store
}

func (r *userRepo) Create(ctx context.Context, user *models.User, generatedPassword string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cp := *user
	r.s.users[user.ID] = &cp
	if generatedPassword != "" {
		gp := generatedPassword
		r.s.generated[user.ID] = &gp
	}
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *userRepo) GetByLogin(ctx context.Context, login string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.Login == login {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *userRepo) LoginExists(ctx context.Context, login string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.Login == login {
			return true, nil
		}
	}
	return false, nil
}

func (r *userRepo) GetStudents(ctx context.Context, groupID string) ([]models.StudentWithGroup, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var students []models.StudentWithGroup
	for _, u := range r.s.users {
		if u.Role != models.RoleStudent {
			continue
		}
		if groupID != "" && (u.GroupID == nil || *u.GroupID != groupID) {
			continue
		}
		s := models.StudentWithGroup{User: *u}
		if u.GroupID != nil {
			if g, ok := r.s.groups[*u.GroupID]; ok {
				s.GroupName = g.Name
			}
		}
		students = append(students, s)
	}

	sort.Slice(students, func(i, j int) bool {
		if !students[i].TotalCoins.Equal(students[j].TotalCoins) {
			return students[i].TotalCoins.GreaterThan(students[j].TotalCoins)
		}
		return students[i].CreatedAt.Before(students[j].CreatedAt)
	})
	return students, nil
}

func (r *userRepo) Update(ctx context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if u, ok := r.s.users[user.ID]; ok {
		u.Name = user.Name
		u.GroupID = user.GroupID
		u.IsActive = user.IsActive
	}
	return nil
}

func (r *userRepo) UpdateProfile(ctx context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if u, ok := r.s.users[user.ID]; ok {
		u.AvatarIcon = user.AvatarIcon
		u.AvatarColor = user.AvatarColor
		u.Bio = user.Bio
	}
	return nil
}

func (r *userRepo) SetAvatarURL(ctx context.Context, id, avatarURL string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if u, ok := r.s.users[id]; ok {
		url := avatarURL
		u.AvatarURL = &url
	}
	return nil
}

func (r *userRepo) SetPassword(ctx context.Context, id, passwordHash, generatedPassword string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if u, ok := r.s.users[id]; ok {
		u.PasswordHash = passwordHash
		gp := generatedPassword
		r.s.generated[id] = &gp
	}
	return nil
}

func (r *userRepo) GetGeneratedPassword(ctx context.Context, id string) (*string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if _, ok := r.s.users[id]; !ok {
		return nil, nil
	}
	if gp, ok := r.s.generated[id]; ok && gp != nil {
		cp := *gp
		return &cp, nil
	}
	return nil, nil
}

func (r *userRepo) SoftDelete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if u, ok := r.s.users[id]; ok {
		u.IsActive = false
	}
	return nil
}

func (r *userRepo) HardDelete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	kept := r.s.transactions[:0]
	for _, t := range r.s.transactions {
		if t.StudentID != id {
			kept = append(kept, t)
		}
	}
	r.s.transactions = kept

	keptAtt := r.s.attendance[:0]
	for _, a := range r.s.attendance {
		if a.StudentID != id {
			keptAtt = append(keptAtt, a)
		}
	}
	r.s.attendance = keptAtt

	for sid, sub := range r.s.submissions {
		if sub.StudentID == id {
			delete(r.s.submissions, sid)
		}
	}

	keptMsg := r.s.messages[:0]
	for _, m := range r.s.messages {
		if m.FromUserID != id && m.ToUserID != id {
			keptMsg = append(keptMsg, m)
		}
	}
	r.s.messages = keptMsg

	delete(r.s.generated, id)
	delete(r.s.users, id)
	return nil
}

func (r *userRepo) CountActiveStudents(ctx context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	count := 0
	for _, u := range r.s.users {
		if u.Role == models.RoleStudent && u.IsActive {
			count++
		}
	}
	return count, nil
}

func (r *userRepo) CountActiveStudentsInGroup(ctx context.Context, groupID, excludeID string) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	count := 0
	for _, u := range r.s.users {
		if u.Role != models.RoleStudent || !u.IsActive {
			continue
		}
		if u.GroupID == nil || *u.GroupID != groupID {
			continue
		}
		if excludeID != "" && u.ID == excludeID {
			continue
		}
		count++
	}
	return count, nil
}

func (r *userRepo) RankedStudents(ctx context.Context, groupID string, limit int) ([]models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var students []models.User
	for _, u := range r.s.users {
		if u.Role != models.RoleStudent || !u.IsActive {
			continue
		}
		if groupID != "" && (u.GroupID == nil || *u.GroupID != groupID) {
			continue
		}
		students = append(students, *u)
	}

	sort.Slice(students, func(i, j int) bool {
		if !students[i].TotalCoins.Equal(students[j].TotalCoins) {
			return students[i].TotalCoins.GreaterThan(students[j].TotalCoins)
		}
		return students[i].CreatedAt.Before(students[j].CreatedAt)
	})

	if limit > 0 && len(students) > limit {
		students = students[:limit]
	}
	return students, nil
}
