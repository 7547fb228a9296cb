package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/gradeview-api/internal/handler"
	"github.com/noah-isme/gradeview-api/internal/middleware"
	"github.com/noah-isme/gradeview-api/internal/service"
	"github.com/noah-isme/gradeview-api/pkg/config"
	"github.com/noah-isme/gradeview-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/gradeview-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/gradeview-api/pkg/middleware/requestid"
)

type routerDeps struct {
	cfg     *config.Config
	logger  *zap.Logger
	metrics *service.MetricsService
	tokens  middleware.TokenValidator
	grades  *handler.GradeHandler
	courses *handler.CourseHandler
	ops     *handler.MetricsHandler
}

func newRouter(d routerDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(d.logger))
	r.Use(corsmiddleware.New(d.cfg.CORS))
	r.Use(middleware.Metrics(d.metrics))

	r.GET("/health", d.ops.Health)
	r.GET("/ready", d.ops.Ready)
	r.GET("/metrics", d.ops.Prometheus)
	if d.cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(d.cfg.APIPrefix)

	grades := api.Group("/grades")
	grades.POST("/compute", d.grades.Compute)
	grades.POST("/semester", d.grades.Semester)

	secured := api.Group("")
	secured.Use(middleware.JWT(d.tokens))
	secured.GET("/gpa", d.courses.GPA)

	courses := secured.Group("/courses")
	courses.GET("", d.courses.List)
	courses.GET("/export", d.courses.Export)
	courses.POST("/recalculate", d.courses.Recalculate)
	courses.POST("/recalculate/async", d.courses.RecalculateAsync)
	courses.PUT("/:id", d.courses.Save)
	courses.GET("/:id/summary", d.courses.Summary)
	courses.PUT("/:id/weights", d.courses.ReplaceWeights)
	courses.PUT("/:id/assignments", d.courses.SyncAssignments)
	courses.PUT("/:id/report-card", d.courses.UpdateReportCard)

	return r
}
