package httpd

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/robocoin/api/internal/config"
	"github.com/robocoin/api/internal/metrics"
	"github.com/robocoin/api/internal/models"
	"github.com/robocoin/api/internal/observability"
	"github.com/robocoin/api/internal/service"
)

// Pinger is the slice of the database the health endpoint needs.
// *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Services bundles everything the HTTP layer dispatches into.
type Services struct {
	Auth        service.AuthService
	Students    service.StudentService
	Groups      service.GroupService
	Attendance  service.AttendanceService
	Assignments service.AssignmentService
	Shop        service.ShopService
	Rankings    service.RankingService
	Dashboards  service.DashboardService
	Profiles    service.ProfileService
	Messages    service.MessageService
	Exports     service.ExportService
	Ledger      service.LedgerService
}

type Handler struct {
	services   Services
	db         Pinger
	rateLimits config.RateLimitConfig
	logger     zerolog.Logger
}

func NewHandler(services Services, db Pinger, rateLimits config.RateLimitConfig, logger zerolog.Logger) *Handler {
	return &Handler{
		services:   services,
		db:         db,
		rateLimits: rateLimits,
		logger:     logger,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/health", h.HealthCheck)

	router.Route("/api/v1", func(api chi.Router) {
		api.With(h.limitByIP(h.rateLimits.LoginPerMinute)).Post("/auth/login", h.Login)

		api.Group(func(r chi.Router) {
			r.Use(h.authenticate)

			r.Get("/auth/me", h.Me)

			r.Get("/profile", h.GetProfile)
			r.Put("/profile", h.UpdateProfile)
			r.Post("/profile/avatar", h.UploadAvatar)

			r.Get("/rankings", h.GlobalRanking)
			r.Get("/rankings/weekly", h.WeeklyRanking)
			r.Get("/rankings/groups/{id}", h.GroupRanking)

			// Role decides the payload shape, not access.
			r.Get("/shop", h.GetShop)
			r.Get("/assignments", h.ListAssignments)

			r.Post("/messages", h.SendMessage)
			r.Get("/messages/{userId}", h.GetThread)

			r.Group(func(t chi.Router) {
				t.Use(h.requireRole(models.RoleTeacher))

				t.Route("/students", func(sr chi.Router) {
					sr.Get("/", h.ListStudents)
					sr.Post("/", h.CreateStudent)
					sr.Get("/{id}", h.GetStudent)
					sr.Put("/{id}", h.UpdateStudent)
					sr.Delete("/{id}", h.DeleteStudent)
					sr.Delete("/{id}/permanent", h.PurgeStudent)
					sr.Post("/{id}/reset-password", h.ResetPassword)
					sr.Get("/{id}/password", h.PasswordInfo)
					sr.With(h.limitByIP(h.rateLimits.CoinsPerMinute)).Post("/{id}/coins", h.GiveCoins)
				})

				t.Route("/groups", func(gr chi.Router) {
					gr.Get("/", h.ListGroups)
					gr.Post("/", h.CreateGroup)
					gr.Put("/{id}", h.UpdateGroup)
					gr.Delete("/{id}", h.DeleteGroup)
				})

				t.Post("/attendance", h.SaveAttendance)
				t.Get("/attendance", h.ListAttendance)
				t.Get("/attendance/stats", h.AttendanceStats)

				t.Post("/assignments", h.CreateAssignment)
				t.Put("/assignments/{id}", h.UpdateAssignment)
				t.Delete("/assignments/{id}", h.DeleteAssignment)
				t.Get("/assignments/{id}/submissions", h.ListSubmissions)
				t.Post("/submissions/{id}/review", h.ReviewSubmission)

				t.Put("/shop/settings", h.UpdateShopSettings)
				t.Post("/rewards", h.CreateReward)
				t.Put("/rewards/{id}", h.UpdateReward)
				t.Delete("/rewards/{id}", h.DeleteReward)

				t.Get("/dashboard/teacher", h.TeacherDashboard)

				t.Group(func(er chi.Router) {
					er.Use(h.limitByIP(h.rateLimits.ExportPerMinute))
					er.Get("/export/attendance.csv", h.ExportAttendanceCSV)
					er.Get("/export/transactions.xlsx", h.ExportTransactionsXLSX)
				})
			})

			r.Group(func(st chi.Router) {
				st.Use(h.requireRole(models.RoleStudent))

				st.Get("/dashboard/student", h.StudentDashboard)
				st.Get("/transactions", h.MyTransactions)
				st.Post("/assignments/{id}/start", h.StartAssignment)
				st.Post("/assignments/{id}/complete", h.CompleteAssignment)
				st.With(h.limitByIP(h.rateLimits.CoinsPerMinute)).Post("/shop/redeem", h.Redeem)
			})
		})
	})
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if err := h.db.PingContext(r.Context()); err != nil {
		h.logger.Error().Err(err).Msg("Health check failed")
		writeError(w, http.StatusServiceUnavailable, "database unreachable")
		return
	}
	metrics.ObserveDBPing(time.Since(start))

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"service":   "robocoin-api",
		"timestamp": time.Now().UTC(),
	})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error":   http.StatusText(status),
		"message": message,
	})
}

func writeSuccess(w http.ResponseWriter, data interface{}) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    data,
	})
}

func (h *Handler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrStudentNotFound),
		errors.Is(err, service.ErrGroupNotFound),
		errors.Is(err, service.ErrAssignmentNotFound),
		errors.Is(err, service.ErrSubmissionNotFound),
		errors.Is(err, service.ErrRewardNotFound):
		writeError(w, http.StatusNotFound, err.Error())

	case errors.Is(err, service.ErrZeroAmount),
		errors.Is(err, service.ErrAmountTooLarge),
		errors.Is(err, service.ErrInvalidReason),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrInvalidDate),
		errors.Is(err, service.ErrStudentNotInGroup),
		errors.Is(err, service.ErrCoinsOutOfRange),
		errors.Is(err, service.ErrAvatarTooLarge),
		errors.Is(err, service.ErrInvalidImage),
		errors.Is(err, service.ErrEmptyMessage),
		errors.Is(err, service.ErrGroupFull),
		errors.Is(err, service.ErrGroupLimit):
		writeError(w, http.StatusBadRequest, err.Error())

	case errors.Is(err, service.ErrLoginTaken),
		errors.Is(err, service.ErrShopClosed),
		errors.Is(err, service.ErrInsufficientBalance),
		errors.Is(err, service.ErrReviewConflict),
		errors.Is(err, service.ErrGroupNotEmpty):
		writeError(w, http.StatusConflict, err.Error())

	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidToken):
		writeError(w, http.StatusUnauthorized, err.Error())

	case errors.Is(err, service.ErrUserInactive),
		errors.Is(err, service.ErrForbidden),
		errors.Is(err, service.ErrMessageForbidden):
		writeError(w, http.StatusForbidden, err.Error())

	default:
		h.logger.Error().Err(err).Msg("Service error")
		observability.CaptureErr(err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
