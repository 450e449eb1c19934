package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/gym-ops-api/api/swagger"
	"github.com/noah-isme/gym-ops-api/internal/handler"
	internalmiddleware "github.com/noah-isme/gym-ops-api/internal/middleware"
	"github.com/noah-isme/gym-ops-api/internal/repository"
	"github.com/noah-isme/gym-ops-api/internal/service"
	"github.com/noah-isme/gym-ops-api/pkg/cache"
	"github.com/noah-isme/gym-ops-api/pkg/config"
	"github.com/noah-isme/gym-ops-api/pkg/database"
	"github.com/noah-isme/gym-ops-api/pkg/jobs"
	"github.com/noah-isme/gym-ops-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/gym-ops-api/pkg/middleware/cors"
	ratelimitmiddleware "github.com/noah-isme/gym-ops-api/pkg/middleware/ratelimit"
	reqidmiddleware "github.com/noah-isme/gym-ops-api/pkg/middleware/requestid"
	"github.com/noah-isme/gym-ops-api/pkg/storage"
	"github.com/noah-isme/gym-ops-api/pkg/tracing"
)

// @title Gym Ops API
// @version 1.0.0
// @description Membership ledger, class scheduling, enrollment and equipment rental for a fitness facility
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		logr.Fatal("failed to init tracing", zap.Error(err))
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, report cache disabled", zap.Error(err))
	}

	metricsSvc := service.NewMetricsService()
	validate := validator.New()
	timeout := cfg.Engine.OperationTimeout

	memberRepo := repository.NewMemberRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)
	trainerRepo := repository.NewTrainerRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	packageRepo := repository.NewPackageRepository(db)
	rentalRepo := repository.NewRentalRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Reports.CacheTTL, logr, redisClient != nil)
	memberSvc := service.NewMemberService(memberRepo, metricsSvc, validate, timeout, logr)
	ledgerSvc := service.NewLedgerService(ledgerRepo, memberRepo, metricsSvc, timeout, logr)
	scheduleSvc := service.NewScheduleService(courseRepo, trainerRepo, cacheSvc, metricsSvc, validate, timeout, logr)
	packageSvc := service.NewPackageService(packageRepo, courseRepo, memberRepo, validate, timeout, logr)
	enrollmentSvc := service.NewEnrollmentService(courseRepo, packageRepo, memberRepo, ledgerSvc, metricsSvc, timeout, logr)
	rentalSvc := service.NewRentalService(rentalRepo, memberRepo, metricsSvc, validate, timeout, logr)
	reportSvc := service.NewReportService(memberRepo, courseRepo, trainerRepo, cacheSvc, cfg.Reports.CacheTTL, timeout, logr)

	exportStore, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
	if err != nil {
		logr.Fatal("failed to prepare export storage", zap.Error(err))
	}
	exportSvc := service.NewExportService(reportSvc, exportStore, validate, cfg.Reports.ExportRetention, logr)
	exportQueue := jobs.NewQueue("exports", exportSvc.Handle, jobs.QueueConfig{
		Workers:    cfg.Reports.WorkerConcurrency,
		MaxRetries: cfg.Reports.WorkerRetries,
		OnFailure:  exportSvc.MarkFailed,
		Logger:     logr,
	})
	exportSvc.AttachQueue(exportQueue)
	exportQueue.Start(ctx)

	healthHandler := handler.NewHealthHandler(metricsSvc, db, cacheRepo)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))

	r.GET("/health", healthHandler.Health)
	r.GET("/ready", healthHandler.Ready)
	r.GET("/metrics", healthHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	if cfg.RateLimit.Enabled {
		api.Use(ratelimitmiddleware.New(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst))
	}
	handler.Register(api, handler.Handlers{
		Members:     handler.NewMemberHandler(memberSvc, ledgerSvc),
		Enrollments: handler.NewEnrollmentHandler(enrollmentSvc),
		Schedule:    handler.NewScheduleHandler(scheduleSvc),
		Packages:    handler.NewPackageHandler(packageSvc),
		Rentals:     handler.NewRentalHandler(rentalSvc),
		Reports:     handler.NewReportHandler(reportSvc, exportSvc),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("server shutdown", zap.Error(err))
	}
	exportQueue.Stop()
	if err := shutdownTracing(shutdownCtx); err != nil {
		logr.Error("tracing shutdown", zap.Error(err))
	}
}
