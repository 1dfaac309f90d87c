package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/robocoin/api/internal/models"
	"github.com/robocoin/api/internal/repository"
	"github.com/robocoin/api/pkg/security"
)

type StudentService interface {
	List(ctx context.Context, groupID string) ([]models.StudentListItem, error)
	Create(ctx context.Context, req *models.CreateStudentRequest) (*models.CreateStudentResponse, error)
	Get(ctx context.Context, id string) (*models.StudentDetailResponse, error)
	Update(ctx context.Context, id string, req *models.UpdateStudentRequest) (*models.User, error)
	// Delete deactivates the student; the ledger and history stay. Purge
	// removes the student and every row referencing them.
	Delete(ctx context.Context, id string) error
	Purge(ctx context.Context, id string) error
	GiveCoins(ctx context.Context, studentID, teacherID string, req *models.GiveCoinsRequest) (*models.GiveCoinsResponse, error)
	ResetPassword(ctx context.Context, id string) (*models.ResetPasswordResponse, error)
	PasswordInfo(ctx context.Context, id string) (*models.PasswordInfoResponse, error)
}

type studentService struct {
	userRepo       repository.UserRepository
	groupRepo      repository.GroupRepository
	attendanceRepo repository.AttendanceRepository
	ledger         LedgerService
	maxPerGroup    int
	bcryptCost     int
	logger         zerolog.Logger
}

func NewStudentService(
	userRepo repository.UserRepository,
	groupRepo repository.GroupRepository,
	attendanceRepo repository.AttendanceRepository,
	ledger LedgerService,
	maxPerGroup int,
	bcryptCost int,
	logger zerolog.Logger,
) StudentService {
	return &studentService{
		userRepo:       userRepo,
		groupRepo:      groupRepo,
		attendanceRepo: attendanceRepo,
		ledger:         ledger,
		maxPerGroup:    maxPerGroup,
		bcryptCost:     bcryptCost,
		logger:         logger,
	}
}

func (s *studentService) List(ctx context.Context, groupID string) ([]models.StudentListItem, error) {
	students, err := s.userRepo.GetStudents(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}

	presence, err := s.attendanceRepo.PresenceCounts(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to load attendance counts: %w", err)
	}

	items := make([]models.StudentListItem, 0, len(students))
	for _, st := range students {
		pc := presence[st.ID]
		items = append(items, models.StudentListItem{
			User:              st.User,
			GroupName:         st.GroupName,
			Level:             models.LevelForCoins(st.TotalCoins),
			AttendancePercent: models.AttendancePercent(pc.Present, pc.Total),
		})
	}

	return items, nil
}

func (s *studentService) Create(ctx context.Context, req *models.CreateStudentRequest) (*models.CreateStudentResponse, error) {
	if req.GroupID != nil {
		if err := s.checkGroupCapacity(ctx, *req.GroupID, ""); err != nil {
			return nil, err
		}
	}

	login, err := s.pickLogin(ctx, req)
	if err != nil {
		return nil, err
	}

	password, err := security.GeneratePassword(8)
	if err != nil {
		return nil, fmt.Errorf("failed to generate password: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	student := &models.User{
		ID:           uuid.NewString(),
		Role:         models.RoleStudent,
		Name:         security.SanitizeText(req.Name),
		Login:        login,
		PasswordHash: string(hash),
		GroupID:      req.GroupID,
		TotalCoins:   decimal.Zero,
		AvatarIcon:   "robot1",
		AvatarColor:  "blue",
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.userRepo.Create(ctx, student, password); err != nil {
		return nil, fmt.Errorf("failed to create student: %w", err)
	}

	s.logger.Info().
		Str("student_id", student.ID).
		Str("login", login).
		Msg("Student created")

	return &models.CreateStudentResponse{
		Student:  student,
		Login:    login,
		Password: password,
	}, nil
}

// pickLogin uses the requested login when free, otherwise derives one from
// the name and appends a counter until it no longer collides.
func (s *studentService) pickLogin(ctx context.Context, req *models.CreateStudentRequest) (string, error) {
	if req.Login != nil && *req.Login != "" {
		login := security.SanitizeText(*req.Login)
		taken, err := s.userRepo.LoginExists(ctx, login)
		if err != nil {
			return "", fmt.Errorf("failed to check login: %w", err)
		}
		if taken {
			return "", ErrLoginTaken
		}
		return login, nil
	}

	base := security.GenerateLogin(req.Name)
	login := base
	for i := 2; ; i++ {
		taken, err := s.userRepo.LoginExists(ctx, login)
		if err != nil {
			return "", fmt.Errorf("failed to check login: %w", err)
		}
		if !taken {
			return login, nil
		}
		login = fmt.Sprintf("%s%d", base, i)
	}
}

func (s *studentService) Get(ctx context.Context, id string) (*models.StudentDetailResponse, error) {
	student, err := s.getStudent(ctx, id)
	if err != nil {
		return nil, err
	}

	groupName := ""
	if student.GroupID != nil {
		group, err := s.groupRepo.GetByID(ctx, *student.GroupID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch group: %w", err)
		}
		if group != nil {
			groupName = group.Name
		}
	}

	transactions, err := s.ledger.ListByStudent(ctx, id, 20)
	if err != nil {
		return nil, err
	}

	summary, err := s.attendanceRepo.SummaryForStudent(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load attendance summary: %w", err)
	}
	total := summary.Present + summary.Absent + summary.Late
	summary.Percent = models.AttendancePercent(summary.Present+summary.Late, total)

	return &models.StudentDetailResponse{
		Student:          student,
		GroupName:        groupName,
		Level:            models.LevelForCoins(student.TotalCoins),
		CoinsToNextLevel: models.CoinsToNextLevel(student.TotalCoins),
		Transactions:     transactions,
		Attendance:       &summary,
	}, nil
}

func (s *studentService) Update(ctx context.Context, id string, req *models.UpdateStudentRequest) (*models.User, error) {
	student, err := s.getStudent(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		student.Name = security.SanitizeText(*req.Name)
	}

	groupChanged := false
	if req.GroupID != nil {
		if *req.GroupID == "" {
			student.GroupID = nil
		} else if student.GroupID == nil || *student.GroupID != *req.GroupID {
			student.GroupID = req.GroupID
			groupChanged = true
		}
	}

	activating := false
	if req.IsActive != nil {
		activating = *req.IsActive && !student.IsActive
		student.IsActive = *req.IsActive
	}

	// The per-group cap counts active students, so both moving an active
	// student into a group and re-activating one inside a group must pass it.
	if student.IsActive && student.GroupID != nil && (groupChanged || activating) {
		if err := s.checkGroupCapacity(ctx, *student.GroupID, student.ID); err != nil {
			return nil, err
		}
	}

	if err := s.userRepo.Update(ctx, student); err != nil {
		return nil, fmt.Errorf("failed to update student: %w", err)
	}

	return student, nil
}

func (s *studentService) Delete(ctx context.Context, id string) error {
	if _, err := s.getStudent(ctx, id); err != nil {
		return err
	}

	if err := s.userRepo.SoftDelete(ctx, id); err != nil {
		return fmt.Errorf("failed to deactivate student: %w", err)
	}

	s.logger.Info().Str("student_id", id).Msg("Student deactivated")
	return nil
}

func (s *studentService) Purge(ctx context.Context, id string) error {
	if _, err := s.getStudent(ctx, id); err != nil {
		return err
	}

	if err := s.userRepo.HardDelete(ctx, id); err != nil {
		return fmt.Errorf("failed to purge student: %w", err)
	}

	s.logger.Info().Str("student_id", id).Msg("Student purged with history")
	return nil
}

func (s *studentService) GiveCoins(ctx context.Context, studentID, teacherID string, req *models.GiveCoinsRequest) (*models.GiveCoinsResponse, error) {
	entry, balance, err := s.ledger.Apply(ctx, studentID, teacherID, req.Amount, req.Reason)
	if err != nil {
		return nil, err
	}

	return &models.GiveCoinsResponse{Transaction: entry, NewBalance: balance}, nil
}

func (s *studentService) ResetPassword(ctx context.Context, id string) (*models.ResetPasswordResponse, error) {
	student, err := s.getStudent(ctx, id)
	if err != nil {
		return nil, err
	}

	password, err := security.GeneratePassword(8)
	if err != nil {
		return nil, fmt.Errorf("failed to generate password: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.SetPassword(ctx, id, string(hash), password); err != nil {
		return nil, fmt.Errorf("failed to reset password: %w", err)
	}

	s.logger.Info().Str("student_id", id).Msg("Student password reset")

	return &models.ResetPasswordResponse{Login: student.Login, Password: password}, nil
}

func (s *studentService) PasswordInfo(ctx context.Context, id string) (*models.PasswordInfoResponse, error) {
	student, err := s.getStudent(ctx, id)
	if err != nil {
		return nil, err
	}

	password, err := s.userRepo.GetGeneratedPassword(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch password info: %w", err)
	}

	return &models.PasswordInfoResponse{Login: student.Login, Password: password}, nil
}

func (s *studentService) getStudent(ctx context.Context, id string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch student: %w", err)
	}
	if user == nil || user.Role != models.RoleStudent {
		return nil, ErrStudentNotFound
	}
	return user, nil
}

func (s *studentService) checkGroupCapacity(ctx context.Context, groupID, excludeID string) error {
	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return fmt.Errorf("failed to fetch group: %w", err)
	}
	if group == nil {
		return ErrGroupNotFound
	}

	count, err := s.userRepo.CountActiveStudentsInGroup(ctx, groupID, excludeID)
	if err != nil {
		return fmt.Errorf("failed to count group students: %w", err)
	}
	if count >= s.maxPerGroup {
		return ErrGroupFull
	}

	return nil
}
