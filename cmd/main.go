package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Marinovinc/TournamentMaster/config"
	"github.com/Marinovinc/TournamentMaster/db"
	"github.com/Marinovinc/TournamentMaster/handlers"
	"github.com/Marinovinc/TournamentMaster/realtime"
	"github.com/Marinovinc/TournamentMaster/repositories"
	api "github.com/Marinovinc/TournamentMaster/routes"
	"github.com/Marinovinc/TournamentMaster/services"
	"github.com/Marinovinc/TournamentMaster/storage"
	"github.com/go-chi/chi/v5"
	"github.com/jonboulle/clockwork"
	_ "github.com/lib/pq"
)

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	// Инициализация загрузчика файлов (Cloudflare R2)
	cloudflareUploader, err := storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
		AccountID:       cfg.R2AccountID,
		AccessKeyID:     cfg.R2AccessKeyID,
		SecretAccessKey: cfg.R2SecretAccessKey,
		BucketName:      cfg.R2BucketName,
		PublicBaseURL:   cfg.R2PublicBaseURL,
	})
	if err != nil {
		logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("Cloudflare R2 uploader initialized")

	// Инициализация WebSocket Hub
	wsHub := realtime.NewHub()
	go wsHub.Run()
	logger.Info("WebSocket Hub started")

	// Инициализация репозиториев
	userRepo := repositories.NewPostgresUserRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	zoneRepo := repositories.NewPostgresFishingZoneRepository(dbConn)
	catchRepo := repositories.NewPostgresCatchRepository(dbConn)
	speciesRepo := repositories.NewPostgresSpeciesRepository(dbConn)
	registrationRepo := repositories.NewPostgresRegistrationRepository(dbConn)
	leaderboardRepo := repositories.NewPostgresLeaderboardRepository(dbConn)
	logger.Info("Repositories initialized")

	// Инициализация сервисов
	clock := clockwork.NewRealClock()
	locks := services.NewTournamentLocks()

	authService := services.NewAuthService(userRepo, cfg.JWTSecretKey, cfg.TokenTTL)
	zoneService := services.NewFishingZoneService(zoneRepo, tournamentRepo)
	speciesService := services.NewSpeciesService(speciesRepo, tournamentRepo)
	registrationService := services.NewRegistrationService(registrationRepo, tournamentRepo)
	leaderboardService := services.NewLeaderboardService(leaderboardRepo, catchRepo, userRepo, registrationRepo, locks)
	catchService := services.NewCatchService(
		dbConn,
		catchRepo,
		tournamentRepo,
		zoneRepo,
		speciesRepo,
		registrationRepo,
		leaderboardService,
		locks,
		cloudflareUploader,
		wsHub,
		logger,
	)
	tournamentService := services.NewTournamentService(
		dbConn,
		tournamentRepo,
		zoneRepo,
		registrationRepo,
		catchRepo,
		leaderboardService,
		locks,
		cloudflareUploader,
		wsHub,
		clock,
		logger,
	)
	logger.Info("Services initialized")

	// Планировщик автоматических переходов статусов
	scheduler, err := services.NewStatusScheduler(tournamentService, cfg.SchedulerInterval, clock, logger)
	if err != nil {
		logger.Error("failed to create status scheduler", slog.Any("error", err))
		os.Exit(1)
	}
	scheduler.Start()
	defer func() {
		if err := scheduler.Stop(); err != nil {
			logger.Error("failed to stop status scheduler", slog.Any("error", err))
		}
	}()

	// Инициализация обработчиков HTTP
	authHandler := handlers.NewAuthHandler(authService)
	tournamentHandler := handlers.NewTournamentHandler(tournamentService, leaderboardService)
	zoneHandler := handlers.NewFishingZoneHandler(zoneService)
	catchHandler := handlers.NewCatchHandler(catchService)
	leaderboardHandler := handlers.NewLeaderboardHandler(leaderboardService)
	registrationHandler := handlers.NewRegistrationHandler(registrationService)
	speciesHandler := handlers.NewSpeciesHandler(speciesService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub, logger)
	logger.Info("HTTP handlers initialized")

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		authService,
		authHandler,
		tournamentHandler,
		zoneHandler,
		catchHandler,
		leaderboardHandler,
		registrationHandler,
		speciesHandler,
		webSocketHandler,
	)
	logger.Info("Routes configured")

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}
