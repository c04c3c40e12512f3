package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/7893/PaddlePal/config"
	"github.com/7893/PaddlePal/db"
	"github.com/7893/PaddlePal/handlers"
	"github.com/7893/PaddlePal/repositories"
	api "github.com/7893/PaddlePal/routes"
	"github.com/7893/PaddlePal/services"
	"github.com/7893/PaddlePal/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		}
	}()
	logger.Info("database connection established")

	uploader, err := storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
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

	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	eventRepo := repositories.NewPostgresEventRepository(dbConn)
	groupRepo := repositories.NewPostgresGroupRepository(dbConn)
	playerRepo := repositories.NewPostgresPlayerRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	scoreRepo := repositories.NewPostgresScoreRepository(dbConn)
	drawRepo := repositories.NewPostgresDrawRepository(dbConn)
	ratingRepo := repositories.NewPostgresRatingRepository(dbConn)
	backupRepo := repositories.NewPostgresBackupRepository(dbConn)
	tickets := repositories.NewTicketSequence()
	txManager := repositories.NewTxManager(dbConn)
	logger.Info("repositories initialized")

	tournamentService := services.NewTournamentService(tournamentRepo, eventRepo, backupRepo, txManager, logger)
	eventService := services.NewEventService(eventRepo, groupRepo, playerRepo, txManager,
		rand.New(rand.NewSource(time.Now().UnixNano())), logger)
	rosterService := services.NewRosterService(playerRepo, teamRepo, uploader, txManager, logger)
	drawService := services.NewDrawService(
		eventRepo,
		groupRepo,
		drawRepo,
		matchRepo,
		tickets,
		txManager,
		rand.New(rand.NewSource(time.Now().UnixNano())),
		logger,
	)
	matchService := services.NewMatchService(matchRepo, scoreRepo, eventRepo, tickets, txManager, logger)
	tableService := services.NewTableService(eventRepo, groupRepo, matchRepo, scoreRepo, logger)
	ratingService := services.NewRatingService(matchRepo, playerRepo, ratingRepo, eventRepo, txManager, logger)
	authService := services.NewAuthService(cfg.AdminPasswordHash, cfg.JWTSecretKey, logger)
	logger.Info("services initialized")

	authHandler := handlers.NewAuthHandler(authService)
	tournamentHandler := handlers.NewTournamentHandler(tournamentService)
	eventHandler := handlers.NewEventHandler(eventService)
	rosterHandler := handlers.NewRosterHandler(rosterService)
	drawHandler := handlers.NewDrawHandler(drawService)
	matchHandler := handlers.NewMatchHandler(matchService)
	tableHandler := handlers.NewTableHandler(tableService)
	ratingHandler := handlers.NewRatingHandler(ratingService)
	logger.Info("HTTP handlers initialized")

	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		cfg.JWTSecretKey,
		authHandler,
		tournamentHandler,
		eventHandler,
		rosterHandler,
		drawHandler,
		matchHandler,
		tableHandler,
		ratingHandler,
	)
	logger.Info("routes configured")

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

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
}
