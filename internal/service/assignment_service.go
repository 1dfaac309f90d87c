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

const (
	reviewReason     = "assignment"
	adjustmentReason = "assignment adjustment"
)

type AssignmentService interface {
	Create(ctx context.Context, req *models.CreateAssignmentRequest) (*models.Assignment, error)
	ListForTeacher(ctx context.Context, groupID string) ([]models.AssignmentWithGroups, error)
	ListForStudent(ctx context.Context, studentID string) ([]models.StudentAssignment, error)
	Update(ctx context.Context, id string, req *models.UpdateAssignmentRequest) (*models.Assignment, error)
	Delete(ctx context.Context, id string) error
	Submissions(ctx context.Context, assignmentID string) ([]models.SubmissionWithStudent, error)
	Start(ctx context.Context, assignmentID, studentID string) (*models.Submission, error)
	Complete(ctx context.Context, assignmentID, studentID string) (*models.Submission, error)
	Review(ctx context.Context, submissionID, teacherID string, req *models.ReviewSubmissionRequest) (*models.ReviewSubmissionResponse, error)
}

type assignmentService struct {
	assignmentRepo repository.AssignmentRepository
	submissionRepo repository.SubmissionRepository
	groupRepo      repository.GroupRepository
	userRepo       repository.UserRepository
	ledger         LedgerService
	reviewMax      decimal.Decimal
	logger         zerolog.Logger
}

func NewAssignmentService(
	assignmentRepo repository.AssignmentRepository,
	submissionRepo repository.SubmissionRepository,
	groupRepo repository.GroupRepository,
	userRepo repository.UserRepository,
	ledger LedgerService,
	reviewMax float64,
	logger zerolog.Logger,
) AssignmentService {
	return &assignmentService{
		assignmentRepo: assignmentRepo,
		submissionRepo: submissionRepo,
		groupRepo:      groupRepo,
		userRepo:       userRepo,
		ledger:         ledger,
		reviewMax:      decimal.NewFromFloat(reviewMax),
		logger:         logger,
	}
}

func (s *assignmentService) Create(ctx context.Context, req *models.CreateAssignmentRequest) (*models.Assignment, error) {
	if err := s.checkGroups(ctx, req.GroupIDs); err != nil {
		return nil, err
	}

	start := req.StartDate
	if start.IsZero() {
		start = time.Now().UTC()
	}

	assignment := &models.Assignment{
		ID:          uuid.NewString(),
		Title:       security.SanitizeText(req.Title),
		Description: security.SanitizeText(req.Description),
		GroupIDs:    req.GroupIDs,
		StartDate:   start,
		DueDate:     req.DueDate,
		IsActive:    true,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.assignmentRepo.Create(ctx, assignment); err != nil {
		return nil, fmt.Errorf("failed to create assignment: %w", err)
	}

	s.logger.Info().Str("assignment_id", assignment.ID).Str("title", assignment.Title).Msg("Assignment created")
	return assignment, nil
}

func (s *assignmentService) ListForTeacher(ctx context.Context, groupID string) ([]models.AssignmentWithGroups, error) {
	assignments, err := s.assignmentRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	if groupID == "" {
		return assignments, nil
	}

	filtered := assignments[:0]
	for _, a := range assignments {
		for _, id := range a.GroupIDs {
			if id == groupID {
				filtered = append(filtered, a)
				break
			}
		}
	}

	return filtered, nil
}

func (s *assignmentService) ListForStudent(ctx context.Context, studentID string) ([]models.StudentAssignment, error) {
	student, err := s.userRepo.GetByID(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch student: %w", err)
	}
	if student == nil || student.Role != models.RoleStudent {
		return nil, ErrStudentNotFound
	}
	if student.GroupID == nil {
		return []models.StudentAssignment{}, nil
	}

	assignments, err := s.assignmentRepo.ListForStudent(ctx, studentID, *student.GroupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}

	return assignments, nil
}

func (s *assignmentService) Update(ctx context.Context, id string, req *models.UpdateAssignmentRequest) (*models.Assignment, error) {
	assignment, err := s.getAssignment(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.checkGroups(ctx, req.GroupIDs); err != nil {
		return nil, err
	}

	assignment.Title = security.SanitizeText(req.Title)
	assignment.Description = security.SanitizeText(req.Description)
	assignment.GroupIDs = req.GroupIDs
	if !req.StartDate.IsZero() {
		assignment.StartDate = req.StartDate
	}
	assignment.DueDate = req.DueDate
	assignment.IsActive = req.IsActive

	if err := s.assignmentRepo.Update(ctx, assignment); err != nil {
		return nil, fmt.Errorf("failed to update assignment: %w", err)
	}

	return assignment, nil
}

func (s *assignmentService) Delete(ctx context.Context, id string) error {
	if _, err := s.getAssignment(ctx, id); err != nil {
		return err
	}

	if err := s.assignmentRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete assignment: %w", err)
	}

	s.logger.Info().Str("assignment_id", id).Msg("Assignment deleted")
	return nil
}

func (s *assignmentService) Submissions(ctx context.Context, assignmentID string) ([]models.SubmissionWithStudent, error) {
	if _, err := s.getAssignment(ctx, assignmentID); err != nil {
		return nil, err
	}

	submissions, err := s.submissionRepo.ListByAssignment(ctx, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}

	return submissions, nil
}

func (s *assignmentService) Start(ctx context.Context, assignmentID, studentID string) (*models.Submission, error) {
	if err := s.checkStudentAccess(ctx, assignmentID, studentID); err != nil {
		return nil, err
	}

	submission, err := s.submissionRepo.Start(ctx, uuid.NewString(), assignmentID, studentID, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to start submission: %w", err)
	}

	return submission, nil
}

func (s *assignmentService) Complete(ctx context.Context, assignmentID, studentID string) (*models.Submission, error) {
	if err := s.checkStudentAccess(ctx, assignmentID, studentID); err != nil {
		return nil, err
	}

	submission, err := s.submissionRepo.Complete(ctx, uuid.NewString(), assignmentID, studentID, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to complete submission: %w", err)
	}

	return submission, nil
}

// Review closes a submission and pays the award at most once. The first
// review with coins issues the ledger entry and records it in award_tx_id;
// after that the amount can only move through an explicit adjust, which
// ledgers the difference instead of a second full award.
func (s *assignmentService) Review(ctx context.Context, submissionID, teacherID string, req *models.ReviewSubmissionRequest) (*models.ReviewSubmissionResponse, error) {
	submission, err := s.submissionRepo.GetByID(ctx, submissionID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch submission: %w", err)
	}
	if submission == nil {
		return nil, ErrSubmissionNotFound
	}

	coins := req.CoinsGiven.Round(2)
	if coins.IsNegative() || coins.GreaterThan(s.reviewMax) {
		return nil, ErrCoinsOutOfRange
	}

	var entry *models.CoinTransaction
	var balance decimal.Decimal
	var awardTxID *string

	switch {
	case submission.AwardTxID == nil:
		// First award for this submission.
		if coins.IsPositive() {
			entry, balance, err = s.ledger.Apply(ctx, submission.StudentID, teacherID, coins, reviewReason)
			if err != nil {
				return nil, err
			}
			awardTxID = &entry.ID
		}
	case submission.CoinsGiven.Equal(coins):
		// Same amount again: refresh metadata, move no coins.
	case !req.Adjust:
		return nil, ErrReviewConflict
	default:
		delta := coins.Sub(submission.CoinsGiven)
		entry, balance, err = s.ledger.Apply(ctx, submission.StudentID, teacherID, delta, adjustmentReason)
		if err != nil {
			return nil, err
		}
	}

	if err := s.submissionRepo.MarkReviewed(ctx, submissionID, coins, teacherID, awardTxID, time.Now().UTC()); err != nil {
		return nil, err
	}

	if entry == nil {
		// No coins moved; report the current balance.
		student, err := s.userRepo.GetByID(ctx, submission.StudentID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch student: %w", err)
		}
		if student != nil {
			balance = student.TotalCoins
		}
	}

	reviewed, err := s.submissionRepo.GetByID(ctx, submissionID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch submission: %w", err)
	}

	s.logger.Info().
		Str("submission_id", submissionID).
		Str("teacher_id", teacherID).
		Str("coins", coins.String()).
		Bool("adjust", req.Adjust).
		Msg("Submission reviewed")

	return &models.ReviewSubmissionResponse{
		Submission:  reviewed,
		Transaction: entry,
		NewBalance:  balance,
	}, nil
}

func (s *assignmentService) getAssignment(ctx context.Context, id string) (*models.Assignment, error) {
	assignment, err := s.assignmentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch assignment: %w", err)
	}
	if assignment == nil {
		return nil, ErrAssignmentNotFound
	}
	return assignment, nil
}

func (s *assignmentService) checkGroups(ctx context.Context, groupIDs []string) error {
	for _, id := range groupIDs {
		group, err := s.groupRepo.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to fetch group: %w", err)
		}
		if group == nil {
			return ErrGroupNotFound
		}
	}
	return nil
}

// checkStudentAccess hides assignments that do not target the student's
// group: from their point of view those do not exist.
func (s *assignmentService) checkStudentAccess(ctx context.Context, assignmentID, studentID string) error {
	assignment, err := s.getAssignment(ctx, assignmentID)
	if err != nil {
		return err
	}
	if !assignment.IsActive {
		return ErrAssignmentNotFound
	}

	student, err := s.userRepo.GetByID(ctx, studentID)
	if err != nil {
		return fmt.Errorf("failed to fetch student: %w", err)
	}
	if student == nil || student.Role != models.RoleStudent {
		return ErrStudentNotFound
	}
	if student.GroupID == nil {
		return ErrAssignmentNotFound
	}

	targets, err := s.assignmentRepo.TargetsGroup(ctx, assignmentID, *student.GroupID)
	if err != nil {
		return fmt.Errorf("failed to check assignment groups: %w", err)
	}
	if !targets {
		return ErrAssignmentNotFound
	}

	return nil
}
