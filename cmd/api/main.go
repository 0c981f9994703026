package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/readbridge/ufli-progress-api/internal/handler"
	"github.com/readbridge/ufli-progress-api/internal/middleware"
	"github.com/readbridge/ufli-progress-api/internal/models"
	"github.com/readbridge/ufli-progress-api/internal/repository"
	"github.com/readbridge/ufli-progress-api/internal/service"
	"github.com/readbridge/ufli-progress-api/pkg/cache"
	"github.com/readbridge/ufli-progress-api/pkg/config"
	"github.com/readbridge/ufli-progress-api/pkg/database"
	"github.com/readbridge/ufli-progress-api/pkg/logger"
	corsmiddleware "github.com/readbridge/ufli-progress-api/pkg/middleware/cors"
	reqidmiddleware "github.com/readbridge/ufli-progress-api/pkg/middleware/requestid"
)

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
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, progress cache disabled", "error", err)
		redisClient = nil
	}

	// Repositories.
	lessonRepo := repository.NewLessonRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	staffRepo := repository.NewStaffRepository(db)
	statusRepo := repository.NewLessonStatusRepository(db)
	entryRepo := repository.NewLessonEntryRepository(db)
	progressRepo := repository.NewProgressRepository(db)
	unenrollRepo := repository.NewUnenrollmentRepository(db)
	userRepo := repository.NewUserRepository(db)

	// The lesson catalog is fixed; make sure all 128 rows exist.
	seedCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := lessonRepo.Seed(seedCtx); err != nil {
		cancel()
		logr.Sugar().Fatalw("failed to seed lesson catalog", "error", err)
	}
	cancel()

	// Services.
	validate := validator.New()
	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(userRepo, validate, logr, cfg.JWT)
	progressSvc := service.NewProgressService(studentRepo, statusRepo, progressRepo, redisClient, cfg.Progress, metricsSvc, logr)
	unenrollSvc := service.NewUnenrollmentService(studentRepo, statusRepo, progressRepo, unenrollRepo, redisClient, metricsSvc, logr)
	entrySvc := service.NewEntryService(studentRepo, groupRepo, staffRepo, lessonRepo, statusRepo, entryRepo, progressSvc, unenrollSvc, metricsSvc, logr)
	studentSvc := service.NewStudentService(studentRepo, groupRepo, logr)
	exportSvc := service.NewExportService(studentRepo, progressRepo, groupRepo, logr)

	// Handlers.
	authHandler := handler.NewAuthHandler(authSvc)
	studentHandler := handler.NewStudentHandler(studentSvc)
	entryHandler := handler.NewEntryHandler(entrySvc)
	progressHandler := handler.NewProgressHandler(progressSvc)
	unenrollHandler := handler.NewUnenrollmentHandler(unenrollSvc)
	exportHandler := handler.NewExportHandler(exportSvc)
	curriculumHandler := handler.NewCurriculumHandler(lessonRepo)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "database unreachable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", metricsHandler.Scrape)

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)

	authed := api.Group("")
	authed.Use(middleware.JWT(authSvc))
	{
		authed.GET("/auth/me", authHandler.Me)

		authed.GET("/curriculum/lessons", curriculumHandler.Lessons)
		authed.GET("/curriculum/sections", curriculumHandler.Sections)

		authed.GET("/students", studentHandler.List)
		authed.POST("/students", middleware.RequireRoles(models.RoleAdmin), studentHandler.Create)
		authed.GET("/students/:id", studentHandler.Get)
		authed.GET("/groups", studentHandler.ListGroups)

		authed.POST("/entries", entryHandler.Submit)
		authed.GET("/entries", entryHandler.List)

		authed.GET("/students/:id/progress", progressHandler.Get)
		authed.GET("/students/:id/progress/sections", progressHandler.Breakdown)
		authed.GET("/students/:id/progress/sections/:sectionId", progressHandler.SectionDetail)
		authed.POST("/students/:id/progress/recalculate", progressHandler.Recalculate)
		authed.POST("/progress/recalculate", middleware.RequireRoles(models.RoleAdmin), progressHandler.RecalculateAll)

		authed.GET("/unenrollments/pending", unenrollHandler.ListPending)
		authed.GET("/unenrollments/students", unenrollHandler.ListUnenrolled)
		authed.POST("/unenrollments/:id/confirm", unenrollHandler.Confirm)
		authed.POST("/unenrollments/:id/resolve", unenrollHandler.Resolve)
		authed.POST("/students/:id/restore", middleware.RequireRoles(models.RoleAdmin), unenrollHandler.Restore)
		authed.GET("/students/:id/archives", unenrollHandler.Archives)

		if cfg.Exports.Enabled {
			authed.GET("/exports/students/:id", exportHandler.StudentReport)
			authed.GET("/exports/groups/:id", exportHandler.GroupReport)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
