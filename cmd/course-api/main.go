package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/course-gpa-api/api/swagger"
	"github.com/noah-isme/course-gpa-api/internal/handler"
	"github.com/noah-isme/course-gpa-api/internal/repository"
	"github.com/noah-isme/course-gpa-api/internal/router"
	"github.com/noah-isme/course-gpa-api/internal/service"
	"github.com/noah-isme/course-gpa-api/pkg/cache"
	"github.com/noah-isme/course-gpa-api/pkg/config"
	"github.com/noah-isme/course-gpa-api/pkg/database"
	"github.com/noah-isme/course-gpa-api/pkg/logger"
)

// @title Course GPA API
// @version 1.0.0
// @description Course records with credit-banded total GPA
// @BasePath /workintech
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	var metrics *service.MetricsService
	if cfg.Metrics.Enabled {
		metrics = service.NewMetricsService()
	}

	repo, ready, closeStore, err := openStore(cfg, metrics, logr)
	if err != nil {
		logr.Fatal("failed to open course store", zap.String("driver", cfg.StoreDriver), zap.Error(err))
	}
	defer closeStore()

	var courseCache *service.CourseCache
	if cfg.Cache.Enabled {
		client, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Fatal("failed to connect redis", zap.Error(err))
		}
		cacheRepo := repository.NewCacheRepository(client, logr.Named("cache"))
		defer cacheRepo.Close() //nolint:errcheck
		courseCache = service.NewCourseCache(cacheRepo, metrics, cfg.Cache.TTL, logr.Named("cache"))
	}

	courseSvc := service.NewCourseService(repo, courseCache, metrics, validator.New(), logr.Named("courses"))
	exportSvc := service.NewExportService(courseSvc, logr.Named("reports"), nil, nil)

	engine := router.New(router.Dependencies{
		Config:  cfg,
		Logger:  logr,
		Courses: handler.NewCourseHandler(courseSvc),
		Reports: handler.NewReportHandler(exportSvc),
		Metrics: metrics,
		Ready:   ready,
		Extra: func(r *gin.Engine) {
			if cfg.Env != config.EnvProduction {
				r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
			}
		},
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "store", cfg.StoreDriver, "context_path", cfg.ContextPath)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}

// openStore returns the configured course store, a readiness probe and a close func.
func openStore(cfg *config.Config, metrics *service.MetricsService, logr *zap.Logger) (repository.CourseStore, func() error, func(), error) {
	if cfg.StoreDriver != config.StorePostgres {
		return repository.NewMemoryCourseRepository(), nil, func() {}, nil
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return nil, nil, nil, err
	}
	repo := repository.NewPostgresCourseRepository(db, metrics)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := repo.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, nil, nil, err
	}

	closeFn := func() {
		if err := db.Close(); err != nil {
			logr.Warn("closing database failed", zap.Error(err))
		}
	}
	return repo, db.Ping, closeFn, nil
}
