package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Shine-Mobile-Detailing/service-dispatch/internal/application"
	"github.com/Shine-Mobile-Detailing/service-dispatch/internal/auth"
	"github.com/Shine-Mobile-Detailing/service-dispatch/internal/config"
	"github.com/Shine-Mobile-Detailing/service-dispatch/internal/events"
	"github.com/Shine-Mobile-Detailing/service-dispatch/internal/handler"
	"github.com/Shine-Mobile-Detailing/service-dispatch/internal/logger"
	"github.com/Shine-Mobile-Detailing/service-dispatch/internal/middleware"
	"github.com/Shine-Mobile-Detailing/service-dispatch/internal/notification"
	"github.com/Shine-Mobile-Detailing/service-dispatch/internal/reports"
	"github.com/Shine-Mobile-Detailing/service-dispatch/internal/repository"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewNamed(cfg.AppEnv, "service-dispatch")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting service-dispatch", zap.String("port", cfg.Port))

	loc, err := time.LoadLocation(cfg.ReportingTZ)
	if err != nil {
		log.Fatal("invalid reporting timezone", zap.String("tz", cfg.ReportingTZ), zap.Error(err))
	}

	db, err := repository.Connect(cfg.DBConfig.DSN(), log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	if cfg.AppEnv == "development" {
		if err := repository.AutoMigrate(db); err != nil {
			log.Fatal("failed to run auto-migration", zap.Error(err))
		}
		log.Info("database migration completed (dev auto-migrate)")
	}

	jwtManager := auth.NewJWTManager(cfg.JWTConfig.Secret, 24*time.Hour)

	producer := events.NewProducer(cfg.KafkaConfig.Brokers, log)
	defer func() { _ = producer.Close() }()

	// Repositories
	bookingRepo := repository.NewGormBookingRepository(db)
	serviceRepo := repository.NewGormServiceRepository(db)
	addOnRepo := repository.NewGormAddOnRepository(db)
	detailerRepo := repository.NewGormDetailerRepository(db)
	entryRepo := repository.NewGormTimeEntryRepository(db)

	// Application services
	timesheetService := application.NewTimesheetService(entryRepo, bookingRepo, loc, log)
	bookingService := application.NewBookingService(bookingRepo, serviceRepo, addOnRepo, timesheetService, producer, log)
	dispatchService := application.NewDispatchService(bookingRepo, detailerRepo, producer, log)
	catalogService := application.NewCatalogService(serviceRepo, addOnRepo, log)
	detailerService := application.NewDetailerService(detailerRepo, bookingRepo, log)

	// Notification consumer: SMS in production, log-only in development
	// without Twilio credentials.
	var sender notification.Sender
	if cfg.TwilioConfig.AccountSID != "" {
		sender = notification.NewTwilioSender(cfg.TwilioConfig)
	} else {
		sender = notification.NewLogSender(log)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	groupID := cfg.KafkaConfig.GroupPrefix + "dispatch-notifications"
	noticeConsumer := notification.NewBookingEventConsumer(cfg.KafkaConfig.Brokers, groupID, sender, log)
	defer func() { _ = noticeConsumer.Close() }()

	go func() {
		log.Info("starting booking event consumer")
		if err := noticeConsumer.Start(ctx); err != nil && err != context.Canceled {
			log.Error("booking event consumer error", zap.Error(err))
		}
	}()

	// Daily labor report
	scheduler := reports.NewScheduler(timesheetService, loc, log)
	if err := scheduler.Start(); err != nil {
		log.Fatal("failed to start report scheduler", zap.Error(err))
	}
	defer scheduler.Stop()

	// HTTP handlers
	bookingHandler := handler.NewBookingHandler(bookingService)
	catalogHandler := handler.NewCatalogHandler(catalogService)
	timesheetHandler := handler.NewTimesheetHandler(timesheetService)
	adminHandler := handler.NewAdminHandler(bookingService, dispatchService, detailerService, catalogService, timesheetService)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(middleware.Recovery(log))
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(log))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	bookingHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	catalogHandler.RegisterRoutes(&router.RouterGroup)
	timesheetHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	adminHandler.RegisterRoutes(&router.RouterGroup, jwtManager)

	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down service-dispatch...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info("service-dispatch stopped")
}
