package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/natthaphonb/taskhub-api/internal/auth"
	"github.com/natthaphonb/taskhub-api/internal/config"
	"github.com/natthaphonb/taskhub-api/internal/handler"
	"github.com/natthaphonb/taskhub-api/internal/mailer"
	"github.com/natthaphonb/taskhub-api/internal/repository"
	"github.com/natthaphonb/taskhub-api/internal/usecase"
	"github.com/natthaphonb/taskhub-api/internal/validation"
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warn().Err(err).Msg("failed to load .env file")
	}

	cfg := config.Load(&logger)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	client, err := mongo.Connect(options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to mongodb")
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logger.Error().Err(err).Msg("failed to disconnect from mongodb")
		}
	}()

	if err := client.Ping(ctx, nil); err != nil {
		logger.Fatal().Err(err).Msg("failed to ping mongodb")
	}

	db := client.Database(cfg.Mongo.Database)

	userRepo := repository.NewUserMongoRepository(ctx, &logger, db)
	tokenRepo := repository.NewPasswordResetTokenMongoRepository(ctx, &logger, db)
	projectRepo := repository.NewProjectMongoRepository(ctx, &logger, db)
	taskRepo := repository.NewTaskMongoRepository(ctx, &logger, db)

	mail := mailer.NewMailer(&logger)
	jwtAuth := auth.NewJWTAuthenticator(cfg.Token.Issuer, cfg.Token.Issuer)

	verificationUsecase := usecase.NewVerificationUsecase(userRepo, mail, cfg)
	authUsecase := usecase.NewAuthUsecase(userRepo, verificationUsecase, jwtAuth, cfg, &logger)
	passwordResetUsecase := usecase.NewPasswordResetUsecase(userRepo, tokenRepo, jwtAuth, mail, cfg)
	projectUsecase := usecase.NewProjectUsecase(projectRepo, taskRepo, userRepo)
	taskUsecase := usecase.NewTaskUsecase(taskRepo, projectRepo, userRepo)

	validate, err := validation.New()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build validator")
	}

	authHandler := handler.NewAuthHandler(
		authUsecase, verificationUsecase, passwordResetUsecase, jwtAuth, cfg, validate, &logger)
	projectHandler := handler.NewProjectHandler(projectUsecase, validate, &logger)
	taskHandler := handler.NewTaskHandler(taskUsecase, validate, &logger)

	router := handler.NewRouter(cfg, jwtAuth, authHandler, projectHandler, taskHandler)

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}
