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
)

const attendanceReason = "attendance"

const dateLayout = "2006-01-02"

type AttendanceService interface {
	// Save replaces the group's records for one day and pays the
	// attendance bonus to students marked present for the first time that
	// day. Re-saving the same sheet never pays twice.
	Save(ctx context.Context, teacherID string, req *models.SaveAttendanceRequest) (*models.SaveAttendanceResponse, error)
	ListByGroupDate(ctx context.Context, groupID, date string) ([]models.AttendanceRecord, error)
	Stats(ctx context.Context, groupID, from, to string) ([]models.AttendanceStats, error)
}

type attendanceService struct {
	attendanceRepo repository.AttendanceRepository
	groupRepo      repository.GroupRepository
	userRepo       repository.UserRepository
	ledger         LedgerService
	award          decimal.Decimal
	logger         zerolog.Logger
}

func NewAttendanceService(
	attendanceRepo repository.AttendanceRepository,
	groupRepo repository.GroupRepository,
	userRepo repository.UserRepository,
	ledger LedgerService,
	award float64,
	logger zerolog.Logger,
) AttendanceService {
	return &attendanceService{
		attendanceRepo: attendanceRepo,
		groupRepo:      groupRepo,
		userRepo:       userRepo,
		ledger:         ledger,
		award:          decimal.NewFromFloat(award),
		logger:         logger,
	}
}

func (s *attendanceService) Save(ctx context.Context, teacherID string, req *models.SaveAttendanceRequest) (*models.SaveAttendanceResponse, error) {
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return nil, ErrInvalidDate
	}

	group, err := s.groupRepo.GetByID(ctx, req.GroupID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch group: %w", err)
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}

	members, err := s.userRepo.GetStudents(ctx, req.GroupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list group students: %w", err)
	}
	inGroup := make(map[string]bool, len(members))
	for _, m := range members {
		if m.IsActive {
			inGroup[m.ID] = true
		}
	}

	now := time.Now().UTC()
	records := make([]models.AttendanceRecord, 0, len(req.Records))
	index := make(map[string]int, len(req.Records))
	for _, entry := range req.Records {
		if !models.IsValidAttendanceStatus(entry.Status) {
			return nil, ErrInvalidStatus
		}
		if !inGroup[entry.StudentID] {
			return nil, ErrStudentNotInGroup
		}

		// Duplicate entries for one student collapse to the last one.
		if i, ok := index[entry.StudentID]; ok {
			records[i].Status = models.AttendanceStatus(entry.Status)
			continue
		}

		index[entry.StudentID] = len(records)
		records = append(records, models.AttendanceRecord{
			ID:        uuid.NewString(),
			StudentID: entry.StudentID,
			GroupID:   req.GroupID,
			Date:      date,
			Status:    models.AttendanceStatus(entry.Status),
			CreatedAt: now,
		})
	}

	snapshot, err := s.attendanceRepo.ReplaceDay(ctx, req.GroupID, date, records)
	if err != nil {
		return nil, fmt.Errorf("failed to save attendance: %w", err)
	}

	// The bonus is keyed on first appearance in the sheet for that day:
	// students already in the pre-save snapshot were marked before --
	// whatever their previous status -- and never earn it again, so editing
	// present to absent and back cannot be farmed for coins.
	awarded := 0
	for _, rec := range records {
		if rec.Status != models.AttendancePresent || snapshot[rec.StudentID] {
			continue
		}
		if _, _, err := s.ledger.Apply(ctx, rec.StudentID, teacherID, s.award, attendanceReason); err != nil {
			return nil, fmt.Errorf("failed to award attendance bonus: %w", err)
		}
		awarded++
	}

	s.logger.Info().
		Str("group_id", req.GroupID).
		Str("date", req.Date).
		Int("records", len(records)).
		Int("awarded", awarded).
		Msg("Attendance saved")

	return &models.SaveAttendanceResponse{Count: len(records), Awarded: awarded}, nil
}

func (s *attendanceService) ListByGroupDate(ctx context.Context, groupID, dateStr string) ([]models.AttendanceRecord, error) {
	date, err := time.Parse(dateLayout, dateStr)
	if err != nil {
		return nil, ErrInvalidDate
	}

	records, err := s.attendanceRepo.ListByGroupDate(ctx, groupID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}

	return records, nil
}

func (s *attendanceService) Stats(ctx context.Context, groupID, fromStr, toStr string) ([]models.AttendanceStats, error) {
	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch group: %w", err)
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}

	to := time.Now().UTC().Truncate(24 * time.Hour)
	if toStr != "" {
		if to, err = time.Parse(dateLayout, toStr); err != nil {
			return nil, ErrInvalidDate
		}
	}
	from := to.AddDate(0, 0, -30)
	if fromStr != "" {
		if from, err = time.Parse(dateLayout, fromStr); err != nil {
			return nil, ErrInvalidDate
		}
	}

	stats, err := s.attendanceRepo.Stats(ctx, groupID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load attendance stats: %w", err)
	}

	for i := range stats {
		total := stats[i].Present + stats[i].Absent + stats[i].Late
		stats[i].Percent = models.AttendancePercent(stats[i].Present+stats[i].Late, total)
	}

	return stats, nil
}
