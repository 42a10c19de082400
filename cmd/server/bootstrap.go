package main

import (
	"github.com/mkessler/taskhub/internal/config"
	"github.com/mkessler/taskhub/internal/handlers"
	"github.com/mkessler/taskhub/internal/models"
	"github.com/mkessler/taskhub/internal/services"
	"github.com/mkessler/taskhub/internal/utils"
	"github.com/mkessler/taskhub/pkg/logger"
)

// appServices holds all initialized handlers and background services.
type appServices struct {
	authHandler      *handlers.AuthHandler
	boardHandler     *handlers.BoardHandler
	taskHandler      *handlers.TaskHandler
	commentHandler   *handlers.CommentHandler
	userHandler      *handlers.UserHandler
	systemLogHandler *handlers.SystemLogHandler
	logCleanup       *services.LogCleanupScheduler
}

// bootstrap initializes all application dependencies: database, services,
// the audit logger and the retention scheduler.
func bootstrap(cfg *config.Config) *appServices {
	utils.SetJWTSecret(cfg.JWT.Secret)

	if err := models.InitDB(&cfg.Database); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	if err := models.AutoMigrate(); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	db := models.GetDB()

	services.InitSystemLogger(db)

	logCleanup := services.NewLogCleanupScheduler(db, cfg.Audit.RetentionDays)
	if err := logCleanup.Start(); err != nil {
		logger.Warn().Err(err).Msg("Failed to start audit log cleanup scheduler")
	}

	authHandler := handlers.NewAuthHandler(db, cfg)
	if err := authHandler.CreateAdminIfNotExists(); err != nil {
		logger.Warn().Err(err).Msg("Failed to create admin user")
	}

	return &appServices{
		authHandler:      authHandler,
		boardHandler:     handlers.NewBoardHandler(db),
		taskHandler:      handlers.NewTaskHandler(db),
		commentHandler:   handlers.NewCommentHandler(db),
		userHandler:      handlers.NewUserHandler(db),
		systemLogHandler: handlers.NewSystemLogHandler(db),
		logCleanup:       logCleanup,
	}
}

// shutdown gracefully stops background services.
func (s *appServices) shutdown() {
	if s.logCleanup != nil {
		s.logCleanup.Stop()
	}
	logger.Info().Msg("All schedulers stopped")
}
