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

	_ "github.com/noah-isme/pillar-academy-api/api/swagger"
	"github.com/noah-isme/pillar-academy-api/internal/handler"
	internalmiddleware "github.com/noah-isme/pillar-academy-api/internal/middleware"
	"github.com/noah-isme/pillar-academy-api/internal/models"
	"github.com/noah-isme/pillar-academy-api/internal/repository"
	"github.com/noah-isme/pillar-academy-api/internal/service"
	"github.com/noah-isme/pillar-academy-api/pkg/cache"
	"github.com/noah-isme/pillar-academy-api/pkg/config"
	"github.com/noah-isme/pillar-academy-api/pkg/database"
	"github.com/noah-isme/pillar-academy-api/pkg/export"
	"github.com/noah-isme/pillar-academy-api/pkg/jobs"
	"github.com/noah-isme/pillar-academy-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/pillar-academy-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/pillar-academy-api/pkg/middleware/requestid"
	"github.com/noah-isme/pillar-academy-api/pkg/storage"
)

const version = "1.0.0"

// @title Pillar Academy API
// @version 1.0.0
// @description Progression and entitlement engine for the gated pillar curriculum
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	rdb, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}
	defer rdb.Close()

	validate := validator.New()

	learnerRepo := repository.NewLearnerRepository(db)
	examRepo := repository.NewExamRepository(db)
	entitlementRepo := repository.NewEntitlementRepository(db)
	accessRequestRepo := repository.NewAccessRequestRepository(db)
	attemptRepo := repository.NewAttemptRepository(rdb, cfg.Exam.AttemptTTL)
	cacheRepo := repository.NewCacheRepository(rdb, logr)

	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Progress.CacheTTL, logr, cfg.Progress.CacheEnabled)

	authSvc := service.NewAuthService(learnerRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "pillar-academy-api",
	})

	entitlementSvc := service.NewEntitlementService(entitlementRepo, learnerRepo, cacheSvc, logr, service.EntitlementConfig{
		InviteCodesEnabled: cfg.Entitlement.InviteCodesEnabled,
		PaymentsEnabled:    cfg.Entitlement.PaymentsEnabled,
	})

	progressionSvc := service.NewProgressionService(learnerRepo, examRepo, cacheSvc, logr, service.ProgressConfig{
		CacheEnabled: cfg.Progress.CacheEnabled,
		CacheTTL:     cfg.Progress.CacheTTL,
	})

	examSvc := service.NewExamService(examRepo, attemptRepo, learnerRepo, cacheSvc, logr, service.ExamConfig{
		MinWrittenLength: cfg.Exam.MinWrittenLength,
	})

	specializationSvc := service.NewSpecializationService(learnerRepo, cacheSvc, logr)
	accessRequestSvc := service.NewAccessRequestService(accessRequestRepo, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	learnerHandler := handler.NewLearnerHandler(learnerRepo, specializationSvc)
	entitlementHandler := handler.NewEntitlementHandler(entitlementSvc, learnerRepo)
	pillarHandler := handler.NewPillarHandler(progressionSvc)
	examHandler := handler.NewExamHandler(examSvc)
	specializationHandler := handler.NewSpecializationHandler(specializationSvc)
	accessRequestHandler := handler.NewAccessRequestHandler(accessRequestSvc)
	systemHandler := handler.NewSystemHandler(db, rdb, metricsSvc, version)

	var reportHandler *handler.ReportHandler
	var reportQueue *jobs.Queue
	if cfg.Reports.Enabled {
		store, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
		if err != nil {
			logr.Sugar().Fatalw("failed to prepare report storage", "error", err)
		}
		signer := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)
		exportSvc := service.NewExportService(examRepo, store, signer, service.ExportConfig{
			APIPrefix: cfg.APIPrefix,
			ResultTTL: cfg.Reports.SignedURLTTL,
		}, logr, export.NewCSVExporter(), export.NewPDFExporter())

		reportRepo := repository.NewReportRepository(db)
		worker := service.NewReportWorker(reportRepo, exportSvc, cfg.Reports.WorkerRetries, logr)
		reportQueue = jobs.NewQueue("reports", worker.Handle, jobs.QueueConfig{
			Workers:    cfg.Reports.WorkerConcurrency,
			MaxRetries: cfg.Reports.WorkerRetries,
			Logger:     logr,
		})
		reportQueue.Start(ctx)

		reportSvc := service.NewReportService(reportRepo, reportQueue, exportSvc, logr, service.ReportServiceConfig{
			ResultTTL:       cfg.Reports.SignedURLTTL,
			CleanupInterval: time.Hour,
			MaxRetries:      cfg.Reports.WorkerRetries,
		})
		reportSvc.RecoverPendingJobs(ctx)
		go reportSvc.StartCleanup(ctx)

		reportHandler = handler.NewReportHandler(reportSvc)
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))
	r.Use(internalmiddleware.WithResponseMeta())

	r.GET("/health", systemHandler.Health)
	r.GET("/ready", systemHandler.Ready)
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	if reportHandler != nil {
		api.GET("/reports/download/:token", internalmiddleware.OptionalJWT(authSvc), reportHandler.Download)
	}

	protected := api.Group("")
	protected.Use(internalmiddleware.JWT(authSvc))

	protected.POST("/auth/logout", authHandler.Logout)
	protected.PUT("/auth/password", authHandler.ChangePassword)
	protected.GET("/me", learnerHandler.Me)

	protected.POST("/entitlements/invite", entitlementHandler.ActivateInvite)
	protected.POST("/entitlements/payment", entitlementHandler.ActivatePayment)

	protected.GET("/pillars", pillarHandler.Overview)
	protected.GET("/pillars/:index/view", entitlementHandler.View)
	protected.POST("/pillars/:index/advance", pillarHandler.Advance)
	protected.POST("/modules/:id/complete", pillarHandler.CompleteModule)

	protected.POST("/exams/attempts", examHandler.StartAttempt)
	protected.POST("/exams/attempts/:index/acknowledge", examHandler.Acknowledge)
	protected.POST("/exams/attempts/:index/answers", examHandler.Answer)
	protected.POST("/exams/attempts/:index/written", examHandler.Written)
	protected.POST("/exams/attempts/:index/submit", examHandler.Submit)
	protected.GET("/exams/status", examHandler.Status)

	protected.GET("/specializations", specializationHandler.Tracks)
	protected.POST("/specializations/:id/choose", specializationHandler.Choose)
	protected.GET("/progress", specializationHandler.GlobalProgress)

	protected.POST("/access-requests", accessRequestHandler.Create)

	admin := protected.Group("")
	admin.Use(internalmiddleware.RequireRoles(models.RoleAdmin))

	admin.GET("/learners", learnerHandler.List)
	admin.GET("/exams", examHandler.List)
	admin.POST("/exams/:id/grade", examHandler.Grade)
	admin.POST("/invite-codes", entitlementHandler.IssueInvite)
	admin.GET("/access-requests", accessRequestHandler.List)
	admin.GET("/system/metrics", systemHandler.MetricsSnapshot)

	if reportHandler != nil {
		reports := admin.Group("/reports")
		reports.Use(internalmiddleware.Audit(learnerRepo, "REPORT_CREATE", "report"))
		reports.POST("/exams", reportHandler.Create)
		admin.GET("/reports/:id", reportHandler.Status)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
	if reportQueue != nil {
		reportQueue.Stop()
	}
}
