package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	config "github.com/identitykit/account-service/configs"
	"github.com/identitykit/account-service/internal/application/outbox"
	"github.com/identitykit/account-service/internal/application/services"
	"github.com/identitykit/account-service/internal/core/ports"
	"github.com/identitykit/account-service/internal/infrastructure/db"
	"github.com/identitykit/account-service/internal/infrastructure/email"
	"github.com/identitykit/account-service/internal/infrastructure/health"
	"github.com/identitykit/account-service/internal/infrastructure/httpserver"
	"github.com/identitykit/account-service/internal/infrastructure/redis"
	"github.com/identitykit/account-service/internal/infrastructure/repositories"
	"github.com/identitykit/account-service/internal/infrastructure/scheduler"
	"github.com/identitykit/account-service/internal/utils"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Setup logger
	logger := logrus.New()
	if cfg.Log.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(level)
	}

	logger.Info("Starting account service...")

	// Initialize database (apply pool settings from config)
	database, err := db.NewDatabaseWithConfig(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database:", err)
	}
	defer database.Close()

	logger.Info("Connected to database successfully")

	// Initialize Redis client
	redisClient, err := redis.NewRedisClient(&cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis:", err)
	}
	defer redisClient.Close()

	logger.Info("Connected to Redis successfully")

	// Run migrations
	if err := database.Migrate("./migrations"); err != nil {
		logger.Warn("Failed to run migrations:", err)
	}

	// Initialize repository implementations
	accountRepo := repositories.NewAccountRepository(database, logger)
	verificationRepo := repositories.NewVerificationRepository(database, logger)
	resendLimiter := repositories.NewResendLimitRedisRepository(redisClient, cfg.Verification.ResendLimit)

	txManager := db.NewTxManager(database, logger)

	// Initialize email sending
	emailConfig := &email.EmailConfig{
		SendGridAPIKey: cfg.Email.SendGridAPIKey,
		FromEmail:      cfg.Email.FromEmail,
		FromName:       cfg.Email.FromName,
		CompanyName:    cfg.Email.CompanyName,
		BaseURL:        cfg.Email.BaseURL,
	}
	emailService, err := email.NewEmailService(emailConfig, logger)
	if err != nil {
		logger.Fatal("Failed to initialize email service:", err)
	}

	dispatcher := outbox.NewDispatcher(txManager, 0, logger)
	worker := outbox.NewWorker(dispatcher, emailService, logger)

	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	go worker.Run(workerCtx)

	// Wire services
	tokenService := services.NewTokenService(cfg.Verification.TokenSecret, cfg.Verification.TokenExpiry, nil)
	accountService := services.NewAccountService(accountRepo, cfg.Verification.TokenExpiry, cfg.Scheduler.HardDeleteAfter, logger)
	registrationService := services.NewAuthFacade(
		accountService,
		verificationRepo,
		tokenService,
		utils.NewBcryptHasher(),
		dispatcher,
		txManager,
		resendLimiter,
		cfg.Verification.TokenExpiry,
		logger,
	)

	// Retention scheduler
	schedulerConfig := &scheduler.Config{
		Enabled:            cfg.Scheduler.Enabled,
		UserCleanupCron:    cfg.Scheduler.UserCleanupCron,
		UserHardDeleteCron: cfg.Scheduler.UserHardDeleteCron,
		MaxRetries:         cfg.Scheduler.MaxRetries,
		RetryBaseDelay:     cfg.Scheduler.RetryBaseDelay,
	}
	retentionScheduler := scheduler.NewRetentionScheduler(schedulerConfig, accountService, logger)
	if err := retentionScheduler.Start(); err != nil {
		logger.Fatal("Failed to start retention scheduler:", err)
	}

	hcSlice := []ports.HealthChecker{health.NewDBHealthChecker(database), health.NewRedisHealthChecker(redisClient)}

	// Create server configuration
	serverConfig := &httpserver.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		TLSCertFile:  cfg.Server.TLSCertFile,
		TLSKeyFile:   cfg.Server.TLSKeyFile,
	}

	deps := httpserver.ServerDeps{
		RegistrationService: registrationService,
		HealthCheckers:      hcSlice,
	}

	server := httpserver.NewServer(serverConfig, logger, deps)

	// Start server in a goroutine
	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal("Failed to start server:", err)
		}
	}()

	logger.Infof("Server started on %s:%s", cfg.Server.Host, cfg.Server.Port)

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	retentionScheduler.Stop()
	stopWorker()

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown:", err)
	}

	logger.Info("Server exited")
}
