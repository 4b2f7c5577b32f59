package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/isagps/ProfAgendaBack/api/swagger"
	"github.com/isagps/ProfAgendaBack/internal/handler"
	appmiddleware "github.com/isagps/ProfAgendaBack/internal/middleware"
	"github.com/isagps/ProfAgendaBack/internal/repository"
	"github.com/isagps/ProfAgendaBack/internal/service"
	"github.com/isagps/ProfAgendaBack/pkg/config"
	"github.com/isagps/ProfAgendaBack/pkg/database"
	"github.com/isagps/ProfAgendaBack/pkg/logger"
	corsmiddleware "github.com/isagps/ProfAgendaBack/pkg/middleware/cors"
	reqidmiddleware "github.com/isagps/ProfAgendaBack/pkg/middleware/requestid"
)

// @title ProfAgenda API
// @version 1.0.0
// @description School timetable management API
// @BasePath /api
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
		logr.Sugar().Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	var metricsSvc *service.MetricsService
	if cfg.Metrics.Enabled {
		metricsSvc = service.NewMetricsService()
	}

	teacherRepo := repository.NewTeacherRepository(db, metricsSvc)
	subjectRepo := repository.NewSubjectRepository(db, metricsSvc)
	classRepo := repository.NewClassRepository(db, metricsSvc)
	scheduleRepo := repository.NewScheduleRepository(db, metricsSvc)

	teacherSvc := service.NewTeacherService(teacherRepo, nil, logr)
	subjectSvc := service.NewSubjectService(subjectRepo, nil, logr)
	classSvc := service.NewClassService(classRepo, nil, logr)
	scheduleSvc := service.NewScheduleService(scheduleRepo, teacherRepo, classRepo, subjectRepo, nil, logr)
	exportSvc := service.NewTimetableExportService(classSvc, scheduleSvc, cfg.Export.MaxRows, metricsSvc, logr)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	if metricsSvc != nil {
		r.Use(appmiddleware.Metrics(metricsSvc))
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	if metricsSvc != nil {
		r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))
	}

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.RegisterRoutes(r, cfg.APIPrefix, handler.Handlers{
		Teachers:  handler.NewTeacherHandler(teacherSvc, scheduleSvc),
		Subjects:  handler.NewSubjectHandler(subjectSvc),
		Classes:   handler.NewClassHandler(classSvc, scheduleSvc, exportSvc),
		Schedules: handler.NewScheduleHandler(scheduleSvc),
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
