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
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/noah-isme/gradeview-api/api/swagger"
	"github.com/noah-isme/gradeview-api/internal/grading"
	"github.com/noah-isme/gradeview-api/internal/handler"
	"github.com/noah-isme/gradeview-api/internal/repository"
	"github.com/noah-isme/gradeview-api/internal/service"
	"github.com/noah-isme/gradeview-api/pkg/cache"
	"github.com/noah-isme/gradeview-api/pkg/config"
	"github.com/noah-isme/gradeview-api/pkg/database"
	"github.com/noah-isme/gradeview-api/pkg/jobs"
	"github.com/noah-isme/gradeview-api/pkg/logger"
)

// @title Gradeview API
// @version 1.0.0
// @description Course totals and semester averages computed from a student's portal grades
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

const shutdownTimeout = 10 * time.Second

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

	if err := run(cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logr *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	if cfg.Env == config.EnvProduction && cfg.JWT.Secret == config.DevJWTSecret {
		return errors.New("JWT_SECRET must be set in production")
	}

	policy, err := grading.ParseMalformedPolicy(cfg.Grading.MalformedPolicy)
	if err != nil {
		return fmt.Errorf("grading config: %w", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, summary cache disabled", zap.Error(err))
	}

	metrics := service.NewMetricsService()
	validate := validator.New()

	courseRepo := repository.NewCourseRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	weightRepo := repository.NewCategoryWeightRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, "gradeview", logr)
	defer cacheRepo.Close() //nolint:errcheck

	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Summary.CacheTTL, logr, cfg.Summary.Enabled && redisClient != nil)
	gradeSvc := service.NewGradeService(courseRepo, assignmentRepo, weightRepo, cacheSvc, metrics, validate, logr, service.GradeServiceConfig{
		MalformedPolicy: policy,
		SummaryTTL:      cfg.Summary.CacheTTL,
	})
	recalcSvc := service.NewRecalculationService(gradeSvc, cacheSvc, metrics, jobs.QueueConfig{
		Workers:    cfg.Recalc.WorkerConcurrency,
		MaxRetries: cfg.Recalc.WorkerRetries,
		RetryDelay: cfg.Recalc.RetryDelay,
	}, logr)
	exportSvc := service.NewExportService(gradeSvc, service.ExportConfig{Enabled: cfg.Exports.Enabled, Title: cfg.Exports.Title}, logr, nil, nil)
	tokenSvc := service.NewTokenService(service.TokenConfig{Secret: cfg.JWT.Secret, Issuer: cfg.JWT.Issuer})

	recalcSvc.Start(ctx)
	defer recalcSvc.Stop()

	router := newRouter(routerDeps{
		cfg:     cfg,
		logger:  logr,
		metrics: metrics,
		tokens:  tokenSvc,
		grades:  handler.NewGradeHandler(gradeSvc),
		courses: handler.NewCourseHandler(gradeSvc, recalcSvc, exportSvc),
		ops:     handler.NewMetricsHandler(metrics, readinessChecks(db.PingContext, redisClient)),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env), zap.Stringer("malformed_policy", policy))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	logr.Info("server stopped")
	return nil
}

func readinessChecks(pingDB handler.ReadinessCheck, redisClient *redis.Client) map[string]handler.ReadinessCheck {
	checks := map[string]handler.ReadinessCheck{"postgres": pingDB}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	}
	return checks
}
