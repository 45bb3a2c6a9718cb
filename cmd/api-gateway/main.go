package main

import (
	"context"
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

	_ "github.com/verdantiq/cultiva-api/api/swagger"
	"github.com/verdantiq/cultiva-api/internal/handler"
	"github.com/verdantiq/cultiva-api/internal/middleware"
	"github.com/verdantiq/cultiva-api/internal/models"
	"github.com/verdantiq/cultiva-api/internal/repository"
	"github.com/verdantiq/cultiva-api/internal/service"
	"github.com/verdantiq/cultiva-api/pkg/cache"
	"github.com/verdantiq/cultiva-api/pkg/config"
	"github.com/verdantiq/cultiva-api/pkg/database"
	"github.com/verdantiq/cultiva-api/pkg/jobs"
	"github.com/verdantiq/cultiva-api/pkg/logger"
	corsmiddleware "github.com/verdantiq/cultiva-api/pkg/middleware/cors"
	reqidmiddleware "github.com/verdantiq/cultiva-api/pkg/middleware/requestid"
	"github.com/verdantiq/cultiva-api/pkg/refnum"
	"github.com/verdantiq/cultiva-api/pkg/storage"
)

// @title Cultiva API
// @version 1.0.0
// @description Cultivation, processing and distribution tracking for a cannabis association
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, report caching disabled", "error", err)
		redisClient = nil
	}

	exportStorage, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare export storage", "error", err)
	}

	validate := validator.New()

	// Repositories.
	sequenceRepo := repository.NewSequenceRepository(db)
	environmentRepo := repository.NewEnvironmentRepository(db)
	strainRepo := repository.NewStrainRepository(db)
	plantRepo := repository.NewPlantRepository(db)
	harvestRepo := repository.NewHarvestRepository(db)
	extractRepo := repository.NewExtractRepository(db, harvestRepo)
	distributionRepo := repository.NewDistributionRepository(db, harvestRepo)
	patientRepo := repository.NewPatientRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	actionLogRepo := repository.NewActionLogRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	userRepo := repository.NewUserRepository(db)
	reportRepo := repository.NewReportRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close()

	// Services.
	metricsService := service.NewMetricsService()
	cacheService := service.NewCacheService(cacheRepo, cfg.Reports.CacheTTL, logr)
	numberingService := service.NewNumberingService(sequenceRepo, refnum.NewGenerator(), logr)
	environmentService := service.NewEnvironmentService(environmentRepo, numberingService, validate, logr)
	strainService := service.NewStrainService(strainRepo, validate, logr)
	patientService := service.NewPatientService(patientRepo, validate, logr)
	plantService := service.NewPlantService(plantRepo, environmentRepo, numberingService, cacheService, validate, logr)
	harvestService := service.NewHarvestService(harvestRepo, environmentRepo, plantRepo, numberingService, cacheService, validate, logr)
	extractService := service.NewExtractService(extractRepo, harvestRepo, userRepo, numberingService, cacheService, validate, logr)
	distributionService := service.NewDistributionService(distributionRepo, harvestRepo, patientRepo, userRepo, numberingService, cacheService, validate, logr)
	orderService := service.NewOrderService(orderRepo, patientRepo, userRepo, numberingService, validate, logr)
	actionLogService := service.NewActionLogService(actionLogRepo, environmentRepo, plantRepo, cfg.BulkActions, validate, logr)
	auditService := service.NewAuditService(auditRepo, cfg.Audit.Enabled, logr)
	reportService := service.NewReportService(reportRepo, cacheService, logr)

	signer := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)
	exportService := service.NewExportService(reportRepo, reportService, exportStorage, signer, jobs.QueueConfig{
		Workers:    cfg.Reports.WorkerConcurrency,
		MaxRetries: cfg.Reports.WorkerRetries,
	}, cfg.Reports.SignedURLTTL, logr)
	exportService.AttachMetrics(metricsService)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	exportService.StartWorkers(ctx)
	defer exportService.StopWorkers()

	cleanupTicker := time.NewTicker(cfg.Reports.CleanupInterval)
	defer cleanupTicker.Stop()
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-cleanupTicker.C:
				exportService.CleanupExpired(ctx)
			}
		}
	}()

	// Handlers.
	environmentHandler := handler.NewEnvironmentHandler(environmentService)
	strainHandler := handler.NewStrainHandler(strainService)
	patientHandler := handler.NewPatientHandler(patientService)
	plantHandler := handler.NewPlantHandler(plantService, metricsService)
	harvestHandler := handler.NewHarvestHandler(harvestService, metricsService)
	extractHandler := handler.NewExtractHandler(extractService, metricsService)
	distributionHandler := handler.NewDistributionHandler(distributionService, metricsService)
	orderHandler := handler.NewOrderHandler(orderService, metricsService)
	actionLogHandler := handler.NewActionLogHandler(actionLogService, metricsService)
	auditHandler := handler.NewAuditHandler(auditService)
	reportHandler := handler.NewReportHandler(reportService, exportService, metricsService)
	metricsHandler := handler.NewMetricsHandler(metricsService)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	// The download URL carries its own HMAC token, so it stays outside JWT.
	api.GET("/reports/download", reportHandler.Download)

	authed := api.Group("")
	authed.Use(middleware.JWT(cfg.JWT.Secret))

	environments := authed.Group("/environments")
	environments.Use(middleware.Audit(auditService, "environment"))
	environments.GET("", environmentHandler.List)
	environments.GET("/:id", environmentHandler.Get)
	environments.GET("/:id/next-numbers", environmentHandler.NextNumbers)
	environments.POST("", environmentHandler.Create)
	environments.PUT("/:id", environmentHandler.Update)
	environments.DELETE("/:id", environmentHandler.Delete)

	strains := authed.Group("/strains")
	strains.Use(middleware.Audit(auditService, "strain"))
	strains.GET("", strainHandler.List)
	strains.GET("/:id", strainHandler.Get)
	strains.POST("", strainHandler.Create)
	strains.PUT("/:id", strainHandler.Update)
	strains.DELETE("/:id", strainHandler.Delete)

	plants := authed.Group("/plants")
	plants.Use(middleware.Audit(auditService, "plant"))
	plants.GET("", plantHandler.List)
	plants.GET("/:id", plantHandler.Get)
	plants.POST("", plantHandler.Create)
	plants.POST("/clone-batch", plantHandler.CreateCloneBatch)
	plants.PUT("/:id", plantHandler.Update)
	plants.DELETE("/:id", plantHandler.Delete)
	plants.GET("/:id/action-logs", actionLogHandler.ListForPlant)

	harvests := authed.Group("/harvests")
	harvests.Use(middleware.Audit(auditService, "harvest"))
	harvests.GET("", harvestHandler.List)
	harvests.GET("/:id", harvestHandler.Get)
	harvests.POST("", harvestHandler.Create)
	harvests.PUT("/:id", harvestHandler.Update)
	harvests.DELETE("/:id", harvestHandler.Delete)

	extracts := authed.Group("/extracts")
	extracts.Use(middleware.Audit(auditService, "extract"))
	extracts.GET("", extractHandler.List)
	extracts.GET("/:id", extractHandler.Get)
	extracts.POST("", extractHandler.Create)
	extracts.DELETE("/:id", extractHandler.Delete)

	distributions := authed.Group("/distributions")
	distributions.Use(middleware.Audit(auditService, "distribution"))
	distributions.GET("", distributionHandler.List)
	distributions.GET("/:id", distributionHandler.Get)
	distributions.POST("", distributionHandler.Create)
	distributions.DELETE("/:id", distributionHandler.Delete)

	patients := authed.Group("/patients")
	patients.Use(middleware.Audit(auditService, "patient"))
	patients.GET("", patientHandler.List)
	patients.GET("/:id", patientHandler.Get)
	patients.POST("", patientHandler.Create)
	patients.PUT("/:id", patientHandler.Update)
	patients.DELETE("/:id", patientHandler.Delete)

	orders := authed.Group("/orders")
	orders.Use(middleware.Audit(auditService, "order"))
	orders.GET("", orderHandler.List)
	orders.GET("/:id", orderHandler.Get)
	orders.POST("", orderHandler.Create)
	orders.PUT("/:id", orderHandler.Update)
	orders.DELETE("/:id", orderHandler.Delete)

	actions := authed.Group("/action-logs")
	actions.Use(middleware.Audit(auditService, "action"))
	actions.GET("", actionLogHandler.List)
	actions.POST("", actionLogHandler.Create)
	actions.GET("/bulk", actionLogHandler.ListBulk)
	actions.POST("/bulk", actionLogHandler.CreateBulk)
	actions.GET("/bulk/:id", actionLogHandler.GetBulk)

	audit := authed.Group("/audit-logs")
	audit.Use(middleware.RequireRoles(models.RoleAdmin, models.RoleAuditor))
	audit.GET("", auditHandler.List)
	audit.GET("/:id", auditHandler.Get)
	audit.GET("/:id/diff", auditHandler.Diff)

	reports := authed.Group("/reports")
	reports.GET("/jobs/:id", reportHandler.Job)
	reports.GET("/:type", reportHandler.Get)
	reports.POST("/:type/export", reportHandler.Export)

	authed.GET("/metrics/snapshot", metricsHandler.Snapshot)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
