package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"tva-service/internal/config"
	"tva-service/internal/db"
	tvahttp "tva-service/internal/http"
	"tva-service/internal/notify"
	"tva-service/internal/repository"
	"tva-service/internal/service"
	"tva-service/internal/vision"
)

func main() {
	log := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	gdb, err := db.Connect(cfg.Database.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	violationRepo := repository.NewViolationRepository(gdb)
	ownerRepo := repository.NewOwnerRepository(gdb)

	// Analyzer mode is decided once here. No credential means the
	// documented dummy assessment for every request.
	var analyzer vision.Analyzer
	if cfg.Vision.APIKey == "" {
		log.Warn().Msg("vision api key not set, inference runs in dummy mode")
		analyzer = vision.NewDummy()
	} else {
		analyzer = vision.NewGemini(cfg.Vision.BaseURL, cfg.Vision.Model, cfg.Vision.APIKey, cfg.Vision.Timeout)
		log.Info().Str("model", cfg.Vision.Model).Msg("vision inference in live mode")
	}

	var mailer notify.Mailer
	if cfg.Mail.Configured() {
		mailer = notify.NewSMTPMailer(cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.From, cfg.Mail.Password)
	} else {
		log.Warn().Msg("mail credentials not set, notifications will report send_failed")
		mailer = notify.NewDisabledMailer()
	}

	registry := service.NewVehicleRegistry(ownerRepo, log)
	violations := service.NewViolationService(violationRepo, log)
	dispatcher := notify.NewDispatcher(mailer, log)
	pipeline := service.NewPipeline(
		analyzer,
		service.NewAssessor(),
		violationRepo,
		registry,
		dispatcher,
		cfg.Pipeline.FetchTimeout,
		log,
	)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept"},
	}))

	handler := tvahttp.NewHandler(pipeline, registry, violations, log)
	handler.Register(router)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
}
