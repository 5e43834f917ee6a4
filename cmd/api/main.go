package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/uni-timetable-api/api/swagger"
	"github.com/noah-isme/uni-timetable-api/internal/handler"
	"github.com/noah-isme/uni-timetable-api/internal/middleware"
	"github.com/noah-isme/uni-timetable-api/internal/repository"
	"github.com/noah-isme/uni-timetable-api/internal/service"
	"github.com/noah-isme/uni-timetable-api/pkg/cache"
	"github.com/noah-isme/uni-timetable-api/pkg/config"
	"github.com/noah-isme/uni-timetable-api/pkg/database"
	"github.com/noah-isme/uni-timetable-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/uni-timetable-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/uni-timetable-api/pkg/middleware/requestid"
	"github.com/noah-isme/uni-timetable-api/pkg/storage"
)

// @title Uni Timetable API
// @version 1.0.0
// @description Constraint-based academic event scheduling engine
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
		logr.Sugar().Warnw("redis unavailable, timeslot catalog cache disabled", "error", err)
		redisClient = nil
	}

	exportStore, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init export storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)

	validate := validator.New()

	// repositories
	eventRepo := repository.NewEventRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	staffRepo := repository.NewStaffRepository(db)
	timeslotRepo := repository.NewTimeslotRepository(db)
	moduleRepo := repository.NewModuleRepository(db)

	var catalogCache *repository.CacheRepository
	if redisClient != nil {
		catalogCache = repository.NewCacheRepository(redisClient, logr)
	}

	// services
	metrics := service.NewMetricsService()
	var timeslots *service.TimeslotService
	if catalogCache != nil {
		timeslots = service.NewTimeslotService(timeslotRepo, catalogCache, metrics, cfg.Timeslots.CacheTTL, logr)
	} else {
		timeslots = service.NewTimeslotService(timeslotRepo, nil, metrics, cfg.Timeslots.CacheTTL, logr)
	}
	availability := service.NewAvailabilityService(eventRepo)
	constraints := service.NewConstraintService(availability, roomRepo, timeslots, eventRepo, logr)
	scheduler := service.NewEventSchedulerService(
		roomRepo, staffRepo, moduleRepo, timeslots, eventRepo,
		availability, constraints, metrics, validate, logr,
		service.EventSchedulerConfig{
			HorizonDays:    cfg.Scheduler.HorizonDays,
			MaxAttempts:    cfg.Scheduler.MaxAttempts,
			SearchDeadline: cfg.Scheduler.SearchDeadline,
		},
	)
	batch := service.NewBatchSchedulerService(scheduler, validate, logr, service.BatchSchedulerConfig{
		MaxAttempts:   cfg.Scheduler.MaxAttempts,
		RetryAttempts: cfg.Scheduler.RetryAttempts,
		JobTTL:        cfg.Scheduler.BatchJobTTL,
		Workers:       cfg.Scheduler.BatchWorkers,
	})
	events := service.NewEventService(eventRepo, constraints, logr)
	exports := service.NewExportService(eventRepo, timeslots, exportStore, signer, validate, logr, service.ExportConfig{
		APIPrefix: cfg.APIPrefix,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	batch.Start(ctx)
	defer batch.Stop()

	// handlers
	constraintHandler := handler.NewConstraintHandler(constraints, validate)
	schedulerHandler := handler.NewSchedulerHandler(scheduler, batch)
	eventHandler := handler.NewEventHandler(events, timeslots)
	exportHandler := handler.NewExportHandler(exports)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	// read endpoints are open, mutations require a token
	api.GET("/events", eventHandler.List)
	api.GET("/events/:id", eventHandler.Get)
	api.GET("/timeslots", eventHandler.Timeslots)
	api.GET("/exports/download", exportHandler.Download)

	guarded := api.Group("", middleware.JWT(cfg.JWT.Secret))
	guarded.POST("/constraints/check", constraintHandler.Check)
	guarded.POST("/scheduler/events", schedulerHandler.ScheduleEvent)
	guarded.POST("/scheduler/batch", schedulerHandler.ScheduleBatch)
	guarded.POST("/scheduler/batch/jobs", schedulerHandler.EnqueueBatch)
	guarded.GET("/scheduler/batch/jobs/:id", schedulerHandler.BatchJob)
	guarded.PUT("/events/:id", eventHandler.Update)
	guarded.DELETE("/events/:id", eventHandler.Delete)
	guarded.GET("/exports/timetable", exportHandler.Export)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
