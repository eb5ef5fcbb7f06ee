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
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/mindsetu-api/api/swagger"
	"github.com/noah-isme/mindsetu-api/internal/handler"
	"github.com/noah-isme/mindsetu-api/internal/middleware"
	"github.com/noah-isme/mindsetu-api/internal/repository"
	"github.com/noah-isme/mindsetu-api/internal/service"
	"github.com/noah-isme/mindsetu-api/pkg/cache"
	"github.com/noah-isme/mindsetu-api/pkg/config"
	"github.com/noah-isme/mindsetu-api/pkg/database"
	"github.com/noah-isme/mindsetu-api/pkg/jobs"
	"github.com/noah-isme/mindsetu-api/pkg/kvstore"
	"github.com/noah-isme/mindsetu-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/mindsetu-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/mindsetu-api/pkg/middleware/requestid"
	"github.com/noah-isme/mindsetu-api/pkg/storage"
)

// @title Mindsetu API
// @version 1.0.0
// @description Student wellness and assignment tracking for institutes
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

	store, redisClient, err := buildStore(cfg)
	if err != nil {
		logr.Sugar().Fatalw("failed to init store", "driver", cfg.Store.Driver, "error", err)
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()
	store = kvstore.NewInstrumentedStore(store, metricsSvc)

	var cacheSvc *service.CacheService
	if redisClient != nil {
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Dashboard.CacheTTL, logr, cfg.Cache.Enabled)
	}

	userRepo := repository.NewUserRepository(store)
	assignmentRepo := repository.NewAssignmentRepository(store)
	submissionRepo := repository.NewSubmissionRepository(store)
	journalRepo := repository.NewJournalRepository(store)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	assignmentSvc := service.NewAssignmentService(assignmentRepo, submissionRepo, validate, logr, service.AlertWindows{
		Upcoming:         cfg.Alerts.UpcomingWindow,
		RecentSubmission: cfg.Alerts.RecentSubmission,
	})
	statsSvc := service.NewStatsService(userRepo, assignmentRepo, submissionRepo, logr)
	journalSvc := service.NewJournalService(journalRepo, userRepo, validate, logr, cfg.Journal.AttitudeLookback)
	dashboardSvc := service.NewDashboardService(service.DashboardServiceParams{
		Stats:    statsSvc,
		Attitude: journalSvc,
		Metrics:  metricsSvc,
		Cache:    cacheSvc,
		Logger:   logr,
		Config:   service.DashboardServiceConfig{CacheTTL: cfg.Dashboard.CacheTTL},
	})

	files, err := storage.NewLocalStorage(cfg.Export.Dir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init export storage", "dir", cfg.Export.Dir, "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Export.SigningSecret, cfg.Export.ResultTTL)
	reportSvc := service.NewReportService(statsSvc, journalSvc, files, signer, service.ReportServiceConfig{
		APIPrefix:       cfg.APIPrefix,
		ResultTTL:       cfg.Export.ResultTTL,
		CleanupInterval: cfg.Export.CleanupInterval,
	}, logr)
	reportQueue := jobs.NewQueue("reports", reportSvc.Process, jobs.QueueConfig{
		Workers: cfg.Export.QueueWorkers,
		Logger:  logr,
	})
	reportQueue.Start(ctx)
	defer reportQueue.Stop()
	reportSvc.AttachQueue(reportQueue)
	reportSvc.StartCleanup(ctx)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.WithResponseMeta())
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.RegisterRoutes(r, cfg.APIPrefix, handler.Handlers{
		Auth:       handler.NewAuthHandler(authSvc),
		Users:      handler.NewUserHandler(authSvc),
		Assignment: handler.NewAssignmentHandler(assignmentSvc, dashboardSvc),
		Dashboard:  handler.NewDashboardHandler(dashboardSvc, statsSvc),
		Journal:    handler.NewJournalHandler(journalSvc),
		Reports:    handler.NewReportHandler(reportSvc),
	}, authSvc)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}
	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "store", cfg.Store.Driver)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("server shutdown failed", "error", err)
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logr.Sugar().Errorw("redis close failed", "error", err)
		}
	}
}

// buildStore selects the key-value backend. The redis client is returned
// when available so the response cache can share the connection.
func buildStore(cfg *config.Config) (kvstore.Store, *redis.Client, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		db, err := database.NewPostgres(cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		store, err := kvstore.NewPostgresStore(db)
		if err != nil {
			return nil, nil, err
		}
		return store, nil, nil
	case config.StoreDriverMemory:
		return kvstore.NewMemoryStore(), nil, nil
	default:
		client, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		return kvstore.NewRedisStore(client, cfg.Store.KeyPrefix), client, nil
	}
}
