package main

import (
	"context"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/academic-monitor-api/api/swagger"
	"github.com/noah-isme/academic-monitor-api/internal/handler"
	"github.com/noah-isme/academic-monitor-api/internal/middleware"
	"github.com/noah-isme/academic-monitor-api/internal/repository"
	"github.com/noah-isme/academic-monitor-api/internal/service"
	"github.com/noah-isme/academic-monitor-api/pkg/cache"
	"github.com/noah-isme/academic-monitor-api/pkg/config"
	"github.com/noah-isme/academic-monitor-api/pkg/database"
	"github.com/noah-isme/academic-monitor-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/academic-monitor-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/academic-monitor-api/pkg/middleware/requestid"
)

// @title Academic Monitor API
// @version 1.0.0
// @description Classroom attendance, lap performance and reporting for teachers
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(context.Background(), db, logr); err != nil {
			logr.Fatal("failed to migrate database", zap.Error(err))
		}
	}

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, continuing without cache", zap.Error(err))
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close() //nolint:errcheck
	}

	validate, err := service.NewValidator()
	if err != nil {
		logr.Fatal("failed to build validator", zap.Error(err))
	}
	metricsSvc := service.NewMetricsService()

	userRepo := repository.NewUserRepository(db)
	yearRepo := repository.NewSchoolYearRepository(db)
	blockRepo := repository.NewBlockRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	deskRepo := repository.NewDeskRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	lapRepo := repository.NewLapDefinitionRepository(db)
	performanceRepo := repository.NewPerformanceRepository(db)
	setupRepo := repository.NewSetupRepository(db)
	reportRepo := repository.NewReportRepository(db)

	var cacheSvc *service.CacheService
	var sessions service.MonitorSessionStore = service.NewMemorySessionStore(nil)
	if redisClient != nil {
		cacheRepo := repository.NewCacheRepository(redisClient)
		cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Reports.CacheTTL, logr, cfg.Reports.CacheEnabled)
		if cfg.Monitor.SessionBackend == config.SessionBackendRedis {
			sessions = repository.NewMonitorSessionRepository(cacheRepo)
		}
	} else if cfg.Monitor.SessionBackend == config.SessionBackendRedis {
		logr.Warn("redis session backend requested without redis, using memory sessions")
	}

	years := service.NewSchoolYearService(yearRepo, logr)
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	blockSvc := service.NewBlockService(blockRepo, years, cacheSvc, validate, logr)
	studentSvc := service.NewStudentService(studentRepo, blockRepo, years, cacheSvc, validate, logr)
	deskSvc := service.NewDeskService(deskRepo, blockRepo, studentRepo, years,
		service.NewSeatingLayout(cfg.Seating.GridSize, cfg.Seating.SnapThreshold), validate, logr)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, blockRepo, studentRepo, years, cacheSvc, validate, logr)
	performanceSvc := service.NewPerformanceService(performanceRepo, studentRepo, years, cacheSvc, validate, logr)
	lapSvc := service.NewLapService(lapRepo, blockRepo, years, cacheSvc, validate, logr)
	setupSvc := service.NewSetupService(setupRepo, years)
	reportSvc := service.NewReportService(reportRepo, years, service.NewExportService(nil, nil, nil), cacheSvc, metricsSvc, logr)
	monitorSvc := service.NewMonitorService(service.MonitorRepositories{
		Blocks:      blockRepo,
		Students:    studentRepo,
		Desks:       deskRepo,
		Attendance:  attendanceRepo,
		Laps:        lapRepo,
		Performance: performanceRepo,
	}, sessions, years, cacheSvc, metricsSvc, validate, logr, service.MonitorConfig{
		AutoSwitchDelay: cfg.Monitor.AutoSwitchDelay,
		BannerDuration:  cfg.Monitor.BannerDuration,
		SessionTTL:      cfg.Monitor.SessionTTL,
	})

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	metricsHandler := handler.NewMetricsHandler(metricsSvc, db)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.RegisterRoutes(r, cfg.APIPrefix, middleware.JWT(authSvc), handler.Handlers{
		Auth:     handler.NewAuthHandler(authSvc),
		Blocks:   handler.NewBlockHandler(blockSvc),
		Students: handler.NewStudentHandler(studentSvc),
		Desks:    handler.NewDeskHandler(deskSvc),
		Tracking: handler.NewTrackingHandler(attendanceSvc, performanceSvc, lapSvc),
		Setup:    handler.NewSetupHandler(setupSvc),
		Reports:  handler.NewReportHandler(reportSvc),
		Monitor:  handler.NewMonitorHandler(monitorSvc),
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
