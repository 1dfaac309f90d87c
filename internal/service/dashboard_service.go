package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/robocoin/api/internal/models"
	"github.com/robocoin/api/internal/repository"
)

type DashboardService interface {
	Teacher(ctx context.Context) (*models.TeacherDashboardResponse, error)
	Student(ctx context.Context, studentID string) (*models.StudentDashboardResponse, error)
}

type dashboardService struct {
	userRepo       repository.UserRepository
	groupRepo      repository.GroupRepository
	txRepo         repository.TransactionRepository
	attendanceRepo repository.AttendanceRepository
	ranking        RankingService
	logger         zerolog.Logger
}

func NewDashboardService(
	userRepo repository.UserRepository,
	groupRepo repository.GroupRepository,
	txRepo repository.TransactionRepository,
	attendanceRepo repository.AttendanceRepository,
	ranking RankingService,
	logger zerolog.Logger,
) DashboardService {
	return &dashboardService{
		userRepo:       userRepo,
		groupRepo:      groupRepo,
		txRepo:         txRepo,
		attendanceRepo: attendanceRepo,
		ranking:        ranking,
		logger:         logger,
	}
}

func (s *dashboardService) Teacher(ctx context.Context) (*models.TeacherDashboardResponse, error) {
	total, err := s.userRepo.CountActiveStudents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count students: %w", err)
	}

	midnight := time.Now().UTC().Truncate(24 * time.Hour)
	givenToday, err := s.txRepo.SumPositiveSince(ctx, midnight)
	if err != nil {
		return nil, fmt.Errorf("failed to sum today's awards: %w", err)
	}

	top, err := s.ranking.Global(ctx)
	if err != nil {
		return nil, err
	}
	if len(top) > 3 {
		top = top[:3]
	}

	groups, err := s.groupRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}

	return &models.TeacherDashboardResponse{
		TotalStudents:   total,
		CoinsGivenToday: givenToday,
		TopStudents:     top,
		Groups:          groups,
	}, nil
}

func (s *dashboardService) Student(ctx context.Context, studentID string) (*models.StudentDashboardResponse, error) {
	student, err := s.userRepo.GetByID(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch student: %w", err)
	}
	if student == nil || student.Role != models.RoleStudent {
		return nil, ErrStudentNotFound
	}

	resp := &models.StudentDashboardResponse{
		Student:          student,
		Level:            models.LevelForCoins(student.TotalCoins),
		CoinsToNextLevel: models.CoinsToNextLevel(student.TotalCoins),
	}

	global, err := s.ranking.Global(ctx)
	if err != nil {
		return nil, err
	}
	resp.GlobalTotal = len(global)
	resp.GlobalRank = findRank(global, studentID)
	resp.TopGlobal = topN(global, 5)

	if student.GroupID != nil {
		group, err := s.groupRepo.GetByID(ctx, *student.GroupID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch group: %w", err)
		}
		if group != nil {
			resp.GroupName = group.Name

			inGroup, err := s.ranking.Group(ctx, group.ID)
			if err != nil {
				return nil, err
			}
			resp.GroupTotal = len(inGroup)
			resp.GroupRank = findRank(inGroup, studentID)
			resp.TopGroup = topN(inGroup, 5)
		}
	}

	summary, err := s.attendanceRepo.SummaryForStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load attendance summary: %w", err)
	}
	total := summary.Present + summary.Absent + summary.Late
	resp.AttendancePercent = models.AttendancePercent(summary.Present+summary.Late, total)

	last, err := s.txRepo.ListByStudent(ctx, studentID, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch last transaction: %w", err)
	}
	if len(last) > 0 {
		resp.LastTransaction = &last[0]
	}

	return resp, nil
}

func findRank(entries []models.RankingEntry, studentID string) int {
	for _, e := range entries {
		if e.StudentID == studentID {
			return e.Rank
		}
	}
	return 0
}

func topN(entries []models.RankingEntry, n int) []models.RankingEntry {
	if len(entries) > n {
		return entries[:n]
	}
	return entries
}
