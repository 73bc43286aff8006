package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	configs "github.com/prep-study/pronto/config"
	"github.com/prep-study/pronto/internal/handler"
	"github.com/prep-study/pronto/internal/jobs"
	"github.com/prep-study/pronto/internal/mailer"
	"github.com/prep-study/pronto/internal/middleware"
	"github.com/prep-study/pronto/internal/model"
	"github.com/prep-study/pronto/internal/repository"
	"github.com/prep-study/pronto/internal/router"
	"github.com/prep-study/pronto/internal/service"
	"github.com/prep-study/pronto/pkg/database"
	"github.com/prep-study/pronto/pkg/logger"
	"github.com/prep-study/pronto/pkg/redis"
	"go.uber.org/zap"
)

func main() {
	config, err := configs.LoadConfig()
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}

	// Initialize Zap logger
	if err := logger.InitLogger(config); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()

	logger.GetLogger().Info("Application starting",
		zap.String("app_name", config.App.Name),
		zap.String("environment", config.App.Environment),
		zap.String("version", "1.0.0"),
	)

	// Initialize database with standardized pattern
	db, err := database.NewPostgresDB(database.Config{
		Host:            config.Database.Host,
		Port:            config.Database.Port,
		User:            config.Database.User,
		Password:        config.Database.Password,
		Database:        config.Database.Name,
		SSLMode:         config.Database.SSLMode,
		MaxIdleConns:    config.Database.MaxIdleConns,
		MaxOpenConns:    config.Database.MaxOpenConns,
		ConnMaxLifetime: int(config.Database.ConnMaxLifetime.Minutes()),
		ConnMaxIdleTime: int(config.Database.ConnMaxIdleTime.Minutes()),
	})
	if err != nil {
		logger.GetLogger().Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.CloseDB(db)

	// Run auto migrations
	if err := database.AutoMigrate(db); err != nil {
		logger.GetLogger().Fatal("Failed to run database migrations", zap.Error(err))
	}
	logger.GetLogger().Info("Database migrated successfully")

	// Seed initial data
	if err := database.Seed(db); err != nil {
		logger.GetLogger().Error("Failed to seed database", zap.Error(err))
		// Don't fail - seed data may already exist
	} else {
		logger.GetLogger().Info("Database seeded successfully")
	}

	// Redis backs the location cache; the app runs without it.
	redisClient, err := redis.NewClient(config)
	if err != nil {
		logger.GetLogger().Warn("Redis unavailable, location caching disabled", zap.Error(err))
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	// Mail pipeline
	queue, err := mailer.NewQueue(config.RabbitMQ.URL, config.RabbitMQ.MailQueue)
	if err != nil {
		logger.GetLogger().Fatal("Failed to connect to RabbitMQ", zap.Error(err))
	}
	defer queue.Close()

	sender, err := mailer.NewSMTPSender(config)
	if err != nil {
		logger.GetLogger().Fatal("Failed to initialize mail sender", zap.Error(err))
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	verificationRepo := repository.NewVerificationRepository(db)
	deletionRepo := repository.NewDeletionRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	historyRepo := repository.NewEmailHistoryRepository(db)
	locationRepo := repository.NewLocationRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	jobRepo := repository.NewJobRepository(db)

	scheduler := jobs.NewScheduler(jobRepo, config.Verification.JobPollInterval)

	// Services
	jwtService := service.NewJWTService(config.JWT.Secret, config.JWT.ExpirationTime, config.JWT.RefreshDuration)
	sessionService := service.NewSessionService(sessionRepo)
	deletionService := service.NewDeletionService(userRepo, deletionRepo, scheduler, queue, config)
	authService := service.NewAuthService(userRepo, deletionRepo, sessionService, jwtService, config.Badge)
	accountService := service.NewAccountService(userRepo, roleRepo, verificationRepo, queue, config)
	passwordService := service.NewPasswordService(userRepo, verificationRepo, accountService, queue, config)
	emailChangeService := service.NewEmailChangeService(userRepo, verificationRepo, queue, config)
	userService := service.NewUserService(userRepo, roleRepo, locationRepo, config.Badge)
	notificationService := service.NewNotificationService(historyRepo)
	locationService := service.NewLocationService(locationRepo, redisClient, config.Redis.LocationTTL)
	catalogService := service.NewCatalogService(catalogRepo)

	scheduler.Register(model.JobKindFinalizeAccountDeletion, deletionService.HandleFinalize)

	// Handlers
	authHandler := handler.NewAuthHandler(authService, accountService)
	accountHandler := handler.NewAccountHandler(accountService, deletionService)
	passwordHandler := handler.NewPasswordHandler(passwordService)
	emailChangeHandler := handler.NewEmailChangeHandler(emailChangeService)
	userHandler := handler.NewUserHandler(userService)
	sessionHandler := handler.NewSessionHandler(sessionService)
	notificationHandler := handler.NewNotificationHandler(notificationService)
	locationHandler := handler.NewLocationHandler(locationService)
	catalogHandler := handler.NewCatalogHandler(catalogService)
	healthHandler := handler.NewHealthHandler(db, redisClient)

	jwtMiddleware := middleware.NewJWTMiddleware(jwtService, userRepo)

	r := router.NewRouter(
		authHandler,
		accountHandler,
		passwordHandler,
		emailChangeHandler,
		userHandler,
		sessionHandler,
		notificationHandler,
		locationHandler,
		catalogHandler,
		healthHandler,
		jwtMiddleware,
		config,
	).SetupRoutes()

	// Background workers stop when the root context is cancelled.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	worker := mailer.NewWorker(config, queue, sender, historyRepo)
	go func() {
		if err := worker.Run(ctx); err != nil && err != context.Canceled {
			logger.GetLogger().Error("Mail worker stopped", zap.Error(err))
		}
	}()

	go func() {
		if err := scheduler.Run(ctx); err != nil && err != context.Canceled {
			logger.GetLogger().Error("Job scheduler stopped", zap.Error(err))
		}
	}()

	// Expired refresh tokens pile up for users who never log back in.
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := userRepo.CleanupExpiredRefreshTokens(ctx); err != nil {
					logger.GetLogger().Error("Refresh token cleanup failed", zap.Error(err))
				}
			}
		}
	}()

	go func() {
		logger.GetLogger().Info("Server starting",
			zap.String("port", config.App.Port),
			zap.String("host", "0.0.0.0"),
		)
		if err := r.Run(":" + config.App.Port); err != nil {
			logger.GetLogger().Fatal("Failed to start server",
				zap.Error(err),
				zap.String("port", config.App.Port),
			)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.GetLogger().Info("Shutting down server...")
}
