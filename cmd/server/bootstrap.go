package main

import (
	"io"

	"github.com/huangang/portfolio/internal/config"
	"github.com/huangang/portfolio/internal/content"
	"github.com/huangang/portfolio/internal/handlers"
	"github.com/huangang/portfolio/internal/models"
	"github.com/huangang/portfolio/internal/services"
	"github.com/huangang/portfolio/internal/site"
	"github.com/huangang/portfolio/internal/store"
	"github.com/huangang/portfolio/internal/utils"
	"github.com/huangang/portfolio/pkg/logger"
)

// appServices holds the initialized services and handlers.
type appServices struct {
	backend   store.Store
	taskQueue services.TaskQueue
	worker    *services.Worker
	scheduler *services.Scheduler

	authHandler         *handlers.AuthHandler
	collegeHandler      *handlers.CollegeHandler
	announcementHandler *handlers.AnnouncementHandler
	moduleHandler       *handlers.ModuleHandler
	themeHandler        *handlers.ThemeHandler
	settingsHandler     *handlers.SettingsHandler
	backupHandler       *handlers.BackupHandler
	dashboardHandler    *handlers.DashboardHandler
	systemLogHandler    *handlers.SystemLogHandler
	siteHandler         *handlers.SiteHandler
	sseHandler          *handlers.SSEHandler
	healthHandler       *handlers.HealthHandler
	metricsHandler      *handlers.MetricsHandler
}

// bootstrap initializes the database, the store, services and schedulers.
func bootstrap(cfg *config.Config) *appServices {
	utils.SetJWTSecret(cfg.JWT.Secret)

	if err := models.InitDB(&cfg.Database, cfg.Server.Mode == "debug"); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := models.AutoMigrate(); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}
	db := models.GetDB()

	// Every write to the store is pushed to SSE subscribers
	hub := services.GetEventHub()
	backend, err := store.Open(cfg, db)
	if err != nil {
		logger.Fatalf("Failed to open store: %v", err)
	}
	st := store.NewObserved(backend, hub)

	services.InitSystemLogger(db)

	authService := services.NewAuthService(db, &cfg.JWT, &cfg.LDAP)
	if err := authService.CreateAdminIfNotExists(&cfg.Admin); err != nil {
		logger.Warn().Err(err).Msg("Failed to create admin user")
	}

	collegeService := services.NewCollegeService(st)
	announcementService := services.NewAnnouncementService(st)
	moduleService := services.NewModuleService(st, collegeService)
	themeService := services.NewThemeService(st, collegeService)
	settingsService := services.NewSettingsService(st)
	backupService := services.NewBackupService(st, cfg.Backup.Dir, cfg.Backup.Keep)
	dashboardService := services.NewDashboardService(collegeService, announcementService, moduleService, backupService)
	systemLogService := services.NewSystemLogService(db)

	// Snapshots run on Redis when enabled, otherwise in-process
	processor := services.SnapshotProcessor(backupService)
	taskQueue := services.InitTaskQueue(cfg)
	if syncQueue, ok := taskQueue.(*services.SyncQueue); ok {
		syncQueue.SetProcessor(processor)
	}

	var worker *services.Worker
	if cfg.Redis.Enabled {
		worker = services.NewWorker(&cfg.Redis)
		if worker != nil {
			worker.SetProcessor(processor)
			if err := worker.Start(); err != nil {
				logger.Error().Err(err).Msg("Failed to start snapshot worker")
				worker = nil
			}
		}
	}

	scheduler := services.NewScheduler(taskQueue, systemLogService)
	if err := scheduler.ScheduleSnapshots(cfg.Backup.Schedule); err != nil {
		logger.Warn().Err(err).Str("schedule", cfg.Backup.Schedule).Msg("Invalid backup schedule, snapshots disabled")
	}
	if err := scheduler.ScheduleLogCleanup(cfg.Log.RetentionDays); err != nil {
		logger.Warn().Err(err).Msg("Failed to schedule log cleanup")
	}
	scheduler.Start()

	renderer, err := site.NewRenderer(site.NewRegistry(), content.NewSource(&cfg.Content),
		collegeService, announcementService, settingsService)
	if err != nil {
		logger.Fatalf("Failed to load site templates: %v", err)
	}

	return &appServices{
		backend:   backend,
		taskQueue: taskQueue,
		worker:    worker,
		scheduler: scheduler,

		authHandler:         handlers.NewAuthHandler(authService),
		collegeHandler:      handlers.NewCollegeHandler(collegeService),
		announcementHandler: handlers.NewAnnouncementHandler(announcementService),
		moduleHandler:       handlers.NewModuleHandler(moduleService),
		themeHandler:        handlers.NewThemeHandler(themeService),
		settingsHandler:     handlers.NewSettingsHandler(settingsService),
		backupHandler:       handlers.NewBackupHandler(backupService, taskQueue),
		dashboardHandler:    handlers.NewDashboardHandler(dashboardService),
		systemLogHandler:    handlers.NewSystemLogHandler(systemLogService),
		siteHandler:         handlers.NewSiteHandler(renderer),
		sseHandler:          handlers.NewSSEHandler(hub),
		healthHandler:       handlers.NewHealthHandler(db, st, cfg.Storage.Backend, taskQueue, hub),
		metricsHandler: handlers.NewMetricsHandler(db, collegeService, announcementService,
			moduleService, backupService, taskQueue, hub),
	}
}

// shutdown stops schedulers and workers, then releases the store.
func (s *appServices) shutdown() {
	s.scheduler.Stop()
	logger.Info().Msg("Scheduler stopped")

	if s.worker != nil {
		s.worker.Stop()
	}
	if s.taskQueue != nil {
		if err := s.taskQueue.Close(); err != nil {
			logger.Warn().Err(err).Msg("Failed to close task queue")
		}
	}
	if closer, ok := s.backend.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			logger.Warn().Err(err).Msg("Failed to close store")
		}
	}
}
