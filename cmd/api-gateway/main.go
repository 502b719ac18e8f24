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

	_ "github.com/acadsync/scheduler-api/api/swagger"
	"github.com/acadsync/scheduler-api/internal/handler"
	"github.com/acadsync/scheduler-api/internal/middleware"
	"github.com/acadsync/scheduler-api/internal/repository"
	"github.com/acadsync/scheduler-api/internal/service"
	"github.com/acadsync/scheduler-api/pkg/cache"
	"github.com/acadsync/scheduler-api/pkg/config"
	"github.com/acadsync/scheduler-api/pkg/database"
	"github.com/acadsync/scheduler-api/pkg/logger"
	corsmiddleware "github.com/acadsync/scheduler-api/pkg/middleware/cors"
	reqidmiddleware "github.com/acadsync/scheduler-api/pkg/middleware/requestid"
)

// @title AcadSync Scheduler API
// @version 1.0.0
// @description Resource-interval scheduling and conflict resolution engine
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
		logr.Sugar().Warnw("redis unavailable, availability caching disabled", "error", err)
		redisClient = nil
	}
	if !cfg.Availability.CacheEnabled {
		redisClient = nil
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	availabilityRepo := repository.NewAvailabilityRepository(db)
	blockRepo := repository.NewBlockRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	timetableRepo := repository.NewTimetableRepository(db)
	resourceRepo := repository.NewResourceRepository(db)

	availabilitySvc := service.NewAvailabilityService(
		availabilityRepo, blockRepo, timetableRepo, redisClient, validate, logr,
		service.AvailabilityServiceConfig{CacheTTL: cfg.Availability.CacheTTL},
	)
	bookingSvc := service.NewBookingService(bookingRepo, resourceRepo, timetableRepo, availabilitySvc, validate, logr)
	conflictSvc, err := service.NewConflictService(resourceRepo, availabilitySvc, validate, logr, cfg.Scheduler)
	if err != nil {
		logr.Sugar().Fatalw("invalid scheduler configuration", "error", err)
	}
	generatorSvc := service.NewGeneratorService(resourceRepo, availabilitySvc, timetableRepo, metricsSvc, validate, logr, cfg.Scheduler)
	timetableSvc := service.NewTimetableService(timetableRepo, availabilitySvc, validate, logr)
	jobSvc := service.NewJobService(generatorSvc, metricsSvc, logr, cfg.APIPrefix, cfg.Jobs)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	jobSvc.Start(rootCtx)
	defer jobSvc.Stop()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	metricsHandler := handler.NewMetricsHandler(metricsSvc)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	schedulerHandler := handler.NewSchedulerHandler(generatorSvc, conflictSvc, jobSvc)
	bookingHandler := handler.NewBookingHandler(bookingSvc)
	availabilityHandler := handler.NewAvailabilityHandler(availabilitySvc)
	timetableHandler := handler.NewTimetableHandler(timetableSvc)

	api := r.Group(cfg.APIPrefix)
	{
		schedule := api.Group("/schedule")
		{
			schedule.POST("/generate", schedulerHandler.Generate)
			schedule.POST("/generate/async", schedulerHandler.GenerateAsync)
			schedule.GET("/jobs/:id", schedulerHandler.JobStatus)
			schedule.DELETE("/jobs/:id", schedulerHandler.CancelJob)
			schedule.POST("/validate", schedulerHandler.Validate)
			schedule.POST("/optimize", schedulerHandler.Optimize)
		}

		bookings := api.Group("/bookings")
		{
			bookings.POST("", bookingHandler.Create)
			bookings.GET("", bookingHandler.List)
			bookings.DELETE("/:id", bookingHandler.Cancel)
			bookings.POST("/check", bookingHandler.CheckMeeting)
		}

		availability := api.Group("/availability")
		{
			availability.PUT("", availabilityHandler.Set)
			availability.POST("/blocks", availabilityHandler.AddBlock)
			availability.GET("/:resourceId", availabilityHandler.Resolve)
		}

		timetables := api.Group("/timetables")
		{
			timetables.GET("/:id", timetableHandler.Get)
			timetables.PUT("/:id/status", timetableHandler.UpdateStatus)
			timetables.PUT("/:id/sessions", timetableHandler.ReplaceSessions)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-rootCtx.Done()
	logr.Sugar().Infow("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
