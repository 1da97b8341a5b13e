package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/albecabrera/ejercicios-didActicos-espaNol/internal/config"
	"github.com/albecabrera/ejercicios-didActicos-espaNol/internal/database"
	"github.com/albecabrera/ejercicios-didActicos-espaNol/internal/handler"
	"github.com/albecabrera/ejercicios-didActicos-espaNol/internal/middleware"
	"github.com/albecabrera/ejercicios-didActicos-espaNol/internal/repository"
	"github.com/albecabrera/ejercicios-didActicos-espaNol/internal/router"
	"github.com/albecabrera/ejercicios-didActicos-espaNol/internal/service"
	"github.com/albecabrera/ejercicios-didActicos-espaNol/internal/views"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	exerciseRepo := repository.NewExerciseRepository(db)
	adminRepo := repository.NewAdminRepository(db)

	authService := service.NewAuthService(userRepo, sessionRepo, taskRepo, assignmentRepo, submissionRepo, activityRepo, cfg.SessionLifetime, cfg.PasswordMinLength, logger)
	taskService := service.NewTaskService(taskRepo, assignmentRepo, submissionRepo, userRepo, activityRepo, logger)
	submissionService := service.NewSubmissionService(submissionRepo, taskRepo, assignmentRepo, activityRepo, logger)
	statisticsService := service.NewStatisticsService(taskRepo, assignmentRepo, submissionRepo, userRepo, activityRepo, redisClient, cfg.DashboardCacheTTL, logger)
	trackerService := service.NewTrackerService(studentRepo, exerciseRepo, logger)
	dashboardService := service.NewDashboardService(adminRepo, exerciseRepo, cfg.SessionLifetime, logger)

	if err := dashboardService.EnsureDefaultAdmin(context.Background(), cfg.AdminUsername, cfg.AdminPassword); err != nil {
		log.Fatalf("failed to bootstrap admin account: %v", err)
	}

	authHandler := handler.NewAuthHandler(authService, validate, cfg.SessionCookieName, logger)
	taskHandler := handler.NewTaskHandler(taskService, validate, logger)
	submissionHandler := handler.NewSubmissionHandler(submissionService, validate, logger)
	statisticsHandler := handler.NewStatisticsHandler(statisticsService, logger)
	trackerHandler := handler.NewTrackerHandler(trackerService, validate, logger)
	dashboardHandler := handler.NewDashboardHandler(dashboardService, validate, cfg.AdminCookieName, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		Views:        views.Engine(),
	})

	middleware.Register(app, middleware.Config{Logger: &logger, AllowOrigins: cfg.CORSAllowOrigins})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:       authHandler,
		TaskHandler:       taskHandler,
		SubmissionHandler: submissionHandler,
		StatisticsHandler: statisticsHandler,
		TrackerHandler:    trackerHandler,
		DashboardHandler:  dashboardHandler,
		SessionAuth:       middleware.SessionAuth(authService, cfg.SessionCookieName),
		AdminSession:      middleware.AdminSession(dashboardService, cfg.AdminCookieName),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
