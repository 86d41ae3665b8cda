package main

import (
	"github.com/teamboardhq/teamboard/backend/internal/config"
	"github.com/teamboardhq/teamboard/backend/internal/handlers"
	"github.com/teamboardhq/teamboard/backend/internal/models"
	"github.com/teamboardhq/teamboard/backend/internal/services"
	"github.com/teamboardhq/teamboard/backend/internal/utils"
	"github.com/teamboardhq/teamboard/backend/pkg/logger"
)

// appServices holds all initialized services and handlers needed by the application.
type appServices struct {
	notificationService *services.NotificationService
	reminderService     *services.ReminderService
	mailQueue           services.MailQueue
	mailWorker          *services.MailWorker
	authHandler         *handlers.AuthHandler
}

// bootstrap initializes all application dependencies: database, services, schedulers.
func bootstrap(cfg *config.Config) *appServices {
	utils.SetJWTSecret(cfg.JWT.Secret)

	// Initialize database
	if err := models.InitDB(&cfg.Database); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto migrate database
	if err := models.AutoMigrate(); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	// Seed default data
	if err := models.SeedDefaultData(); err != nil {
		logger.Warn().Err(err).Msg("Failed to seed default data")
	}

	// Initialize system logger
	services.InitSystemLogger(models.GetDB())

	// Start system log cleanup scheduler
	services.StartLogCleanupScheduler(models.GetDB())

	// Initialize mail queue (uses Redis if enabled, otherwise sync mode)
	mailQueue := services.InitMailQueue(cfg)
	notificationService := services.NewNotificationService(models.GetDB(), mailQueue)
	if syncQueue, ok := mailQueue.(*services.SyncMailQueue); ok {
		syncQueue.SetProcessor(notificationService.DeliverInvitationMail)
	}

	// Start async mail worker if Redis is enabled
	var mailWorker *services.MailWorker
	if cfg.Redis.Enabled {
		mailWorker = services.InitMailWorker(&cfg.Redis)
		if mailWorker != nil {
			mailWorker.SetProcessor(notificationService.DeliverInvitationMail)
			if err := mailWorker.Start(); err != nil {
				logger.Warn().Err(err).Msg("Failed to start mail worker")
			}
		}
	}

	// Start deadline reminder scheduler
	reminderService := services.NewReminderService(models.GetDB(), notificationService)
	reminderService.StartScheduler()

	// Create default admin user
	authHandler := handlers.NewAuthHandler(models.GetDB(), cfg)
	if err := authHandler.CreateAdminIfNotExists(); err != nil {
		logger.Warn().Err(err).Msg("Failed to create admin user")
	}

	return &appServices{
		notificationService: notificationService,
		reminderService:     reminderService,
		mailQueue:           mailQueue,
		mailWorker:          mailWorker,
		authHandler:         authHandler,
	}
}

// shutdown gracefully stops all services.
func (s *appServices) shutdown() {
	s.reminderService.StopScheduler()
	services.StopLogCleanupScheduler()
	logger.Info().Msg("All schedulers stopped")

	if s.mailWorker != nil {
		s.mailWorker.Stop()
	}
	if s.mailQueue != nil {
		s.mailQueue.Close()
	}
}
