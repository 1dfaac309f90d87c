package app

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/rs/zerolog"

	"github.com/robocoin/api/internal/config"
	"github.com/robocoin/api/internal/delivery/httpd"
	"github.com/robocoin/api/internal/metrics"
	"github.com/robocoin/api/internal/observability"
	"github.com/robocoin/api/internal/repository"
	"github.com/robocoin/api/internal/service"
)

const release = "robocoin-api@1.0.0"

type App struct {
	server      *http.Server
	logger      zerolog.Logger
	config      *config.Config
	db          *sql.DB
	flushSentry func()
}

func New(cfg *config.Config, log zerolog.Logger, db *sql.DB) (*App, error) {
	flushSentry, err := observability.InitSentry(cfg.Sentry.DSN, cfg.Sentry.Environment, release)
	if err != nil {
		// Error reporting is best effort; the API runs without it.
		log.Warn().Err(err).Msg("Failed to init sentry")
	}

	// Avatar storage is optional: without it the profile service stores
	// images inline on the user row.
	var storage repository.AvatarStorage
	if cfg.Storage.Enabled {
		storage, err = repository.NewMinIOStorage(cfg.Storage, log)
		if err != nil {
			return nil, err
		}
	}

	// Repositories
	userRepo := repository.NewUserRepository(db, log)
	groupRepo := repository.NewGroupRepository(db, log)
	txRepo := repository.NewTransactionRepository(db, log)
	attendanceRepo := repository.NewAttendanceRepository(db, log)
	assignmentRepo := repository.NewAssignmentRepository(db, log)
	submissionRepo := repository.NewSubmissionRepository(db, log)
	rewardRepo := repository.NewRewardRepository(db, log)
	shopRepo := repository.NewShopRepository(db, log)
	messageRepo := repository.NewMessageRepository(db, log)

	// Services
	ledgerService := service.NewLedgerService(txRepo, cfg.Coins.MaxAmount, log)
	authService := service.NewAuthService(userRepo, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, log)
	studentService := service.NewStudentService(
		userRepo,
		groupRepo,
		attendanceRepo,
		ledgerService,
		cfg.Limits.MaxStudentsPerGroup,
		cfg.Auth.BcryptCost,
		log,
	)
	groupService := service.NewGroupService(groupRepo, cfg.Limits.MaxGroups, log)
	attendanceService := service.NewAttendanceService(
		attendanceRepo,
		groupRepo,
		userRepo,
		ledgerService,
		cfg.Coins.AttendanceAward,
		log,
	)
	assignmentService := service.NewAssignmentService(
		assignmentRepo,
		submissionRepo,
		groupRepo,
		userRepo,
		ledgerService,
		cfg.Coins.ReviewMax,
		log,
	)
	shopService := service.NewShopService(shopRepo, rewardRepo, userRepo, ledgerService, log)
	rankingService := service.NewRankingService(userRepo, txRepo, groupRepo, log)
	dashboardService := service.NewDashboardService(
		userRepo,
		groupRepo,
		txRepo,
		attendanceRepo,
		rankingService,
		log,
	)
	profileService := service.NewProfileService(userRepo, groupRepo, storage, cfg.Limits.AvatarMaxBytes, log)
	messageService := service.NewMessageService(messageRepo, userRepo, log)
	exportService := service.NewExportService(attendanceRepo, txRepo, groupRepo, log)

	// Handlers
	handler := httpd.NewHandler(
		httpd.Services{
			Auth:        authService,
			Students:    studentService,
			Groups:      groupService,
			Attendance:  attendanceService,
			Assignments: assignmentService,
			Shop:        shopService,
			Rankings:    rankingService,
			Dashboards:  dashboardService,
			Profiles:    profileService,
			Messages:    messageService,
			Exports:     exportService,
			Ledger:      ledgerService,
		},
		db,
		cfg.RateLimit,
		log,
	)

	// Router
	router := chi.NewRouter()

	// Middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(httpd.RequestLogger(log))
	router.Use(httpd.Recovery(log))
	router.Use(middleware.Timeout(60 * time.Second))

	// CORS
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		ExposedHeaders:   cfg.CORS.ExposedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           cfg.CORS.MaxAge,
	}))

	if cfg.RateLimit.Enabled && cfg.RateLimit.GlobalPerMinute > 0 {
		router.Use(httprate.LimitByIP(cfg.RateLimit.GlobalPerMinute, time.Minute))
	}

	if cfg.Metrics.Enabled {
		router.Use(httpd.Metrics)
		router.Handle("/metrics", metrics.Handler())
	}

	// Routes
	handler.RegisterRoutes(router)

	// HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &App{
		server:      server,
		logger:      log,
		config:      cfg,
		db:          db,
		flushSentry: flushSentry,
	}, nil
}

func (a *App) Run() error {
	a.logger.Info().Msgf("Starting robocoin api on %s", a.config.Server.Address)
	return a.server.ListenAndServe()
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info().Msg("Shutting down robocoin api...")

	if a.flushSentry != nil {
		a.flushSentry()
	}

	// Close the database connection
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error().Err(err).Msg("Failed to close database connection")
		}
	}

	// Stop the server
	return a.server.Shutdown(ctx)
}
