package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/robocoin/api/internal/models"
)

type assignmentRepo struct {
	s *Store
}

func (r *assignmentRepo) Create(ctx context.Context, assignment *models.Assignment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored := *assignment
	stored.GroupIDs = append([]string(nil), assignment.GroupIDs...)
	r.s.assignments[assignment.ID] = &stored
	return nil
}

func (r *assignmentRepo) GetByID(ctx context.Context, id string) (*models.Assignment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	a, ok := r.s.assignments[id]
	if !ok {
		return nil, nil
	}
	found := *a
	found.GroupIDs = append([]string(nil), a.GroupIDs...)
	return &found, nil
}

func (r *assignmentRepo) GetAll(ctx context.Context) ([]models.AssignmentWithGroups, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var assignments []models.AssignmentWithGroups
	for _, a := range r.s.assignments {
		entry := models.AssignmentWithGroups{Assignment: *a}
		entry.GroupIDs = append([]string(nil), a.GroupIDs...)
		for _, gid := range a.GroupIDs {
			if g, ok := r.s.groups[gid]; ok {
				entry.GroupNames = append(entry.GroupNames, g.Name)
			}
		}
		assignments = append(assignments, entry)
	}

	sort.Slice(assignments, func(i, j int) bool {
		return assignments[i].CreatedAt.After(assignments[j].CreatedAt)
	})
	return assignments, nil
}

func (r *assignmentRepo) ListForStudent(ctx context.Context, studentID, groupID string) ([]models.StudentAssignment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var assignments []models.StudentAssignment
	for _, a := range r.s.assignments {
		if !a.IsActive || !containsGroup(a.GroupIDs, groupID) {
			continue
		}
		entry := models.StudentAssignment{
			Assignment:       *a,
			SubmissionStatus: models.SubmissionNotStarted,
			CoinsGiven:       decimal.Zero,
		}
		entry.GroupIDs = nil
		for _, sub := range r.s.submissions {
			if sub.AssignmentID == a.ID && sub.StudentID == studentID {
				entry.SubmissionStatus = sub.Status
				entry.SubmittedAt = sub.SubmittedAt
				entry.CoinsGiven = sub.CoinsGiven
				break
			}
		}
		assignments = append(assignments, entry)
	}

	sort.Slice(assignments, func(i, j int) bool {
		return assignments[i].CreatedAt.After(assignments[j].CreatedAt)
	})
	return assignments, nil
}

func (r *assignmentRepo) TargetsGroup(ctx context.Context, assignmentID, groupID string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	a, ok := r.s.assignments[assignmentID]
	if !ok {
		return false, nil
	}
	return containsGroup(a.GroupIDs, groupID), nil
}

func (r *assignmentRepo) Update(ctx context.Context, assignment *models.Assignment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	a, ok := r.s.assignments[assignment.ID]
	if !ok {
		return nil
	}
	a.Title = assignment.Title
	a.Description = assignment.Description
	a.StartDate = assignment.StartDate
	a.DueDate = assignment.DueDate
	a.IsActive = assignment.IsActive
	a.GroupIDs = append([]string(nil), assignment.GroupIDs...)
	return nil
}

func (r *assignmentRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.assignments, id)
	for sid, sub := range r.s.submissions {
		if sub.AssignmentID == id {
			delete(r.s.submissions, sid)
		}
	}
	return nil
}

func containsGroup(ids []string, groupID string) bool {
	for _, id := range ids {
		if id == groupID {
			return true
		}
	}
	return false
}

type submissionRepo struct {
	s *Store
}

func (r *submissionRepo) Start(ctx context.Context, id, assignmentID, studentID string, startedAt time.Time) (*models.Submission, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if sub := r.findPair(assignmentID, studentID); sub != nil {
		sub.Status = models.SubmissionInProgress
		sub.StartedAt = startedAt
		sub.SubmittedAt = nil
		found := *sub
		return &found, nil
	}

	stored := &models.Submission{
		ID:           id,
		AssignmentID: assignmentID,
		StudentID:    studentID,
		Status:       models.SubmissionInProgress,
		CoinsGiven:   decimal.Zero,
		StartedAt:    startedAt,
	}
	r.s.submissions[id] = stored
	found := *stored
	return &found, nil
}

func (r *submissionRepo) Complete(ctx context.Context, id, assignmentID, studentID string, at time.Time) (*models.Submission, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if sub := r.findPair(assignmentID, studentID); sub != nil {
		sub.Status = models.SubmissionSubmitted
		submitted := at
		sub.SubmittedAt = &submitted
		found := *sub
		return &found, nil
	}

	submitted := at
	stored := &models.Submission{
		ID:           id,
		AssignmentID: assignmentID,
		StudentID:    studentID,
		Status:       models.SubmissionSubmitted,
		CoinsGiven:   decimal.Zero,
		StartedAt:    at,
		SubmittedAt:  &submitted,
	}
	r.s.submissions[id] = stored
	found := *stored
	return &found, nil
}

func (r *submissionRepo) GetByID(ctx context.Context, id string) (*models.Submission, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	sub, ok := r.s.submissions[id]
	if !ok {
		return nil, nil
	}
	found := *sub
	return &found, nil
}

func (r *submissionRepo) ListByAssignment(ctx context.Context, assignmentID string) ([]models.SubmissionWithStudent, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var submissions []models.SubmissionWithStudent
	for _, sub := range r.s.submissions {
		if sub.AssignmentID != assignmentID {
			continue
		}
		u, ok := r.s.users[sub.StudentID]
		if !ok {
			continue
		}
		submissions = append(submissions, models.SubmissionWithStudent{
			Submission:  *sub,
			StudentName: u.Name,
		})
	}

	sort.Slice(submissions, func(i, j int) bool {
		return submissions[i].StudentName < submissions[j].StudentName
	})
	return submissions, nil
}

func (r *submissionRepo) MarkReviewed(ctx context.Context, id string, coins decimal.Decimal, teacherID string, awardTxID *string, reviewedAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	sub, ok := r.s.submissions[id]
	if !ok {
		return nil
	}
	sub.Status = models.SubmissionReviewed
	sub.CoinsGiven = coins
	reviewer := teacherID
	sub.TeacherID = &reviewer
	if awardTxID != nil {
		txID := *awardTxID
		sub.AwardTxID = &txID
	}
	reviewed := reviewedAt
	sub.ReviewedAt = &reviewed
	return nil
}

func (r *submissionRepo) findPair(assignmentID, studentID string) *models.Submission {
	for _, sub := range r.s.submissions {
		if sub.AssignmentID == assignmentID && sub.StudentID == studentID {
			return sub
		}
	}
	return nil
}
