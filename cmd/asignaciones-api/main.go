package main

import (
	"context"
	"errors"
	"flag"
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

	_ "github.com/pierojauregui/trilceperu-sub000/api/swagger"
	"github.com/pierojauregui/trilceperu-sub000/internal/handler"
	"github.com/pierojauregui/trilceperu-sub000/internal/middleware"
	"github.com/pierojauregui/trilceperu-sub000/internal/repository"
	"github.com/pierojauregui/trilceperu-sub000/internal/service"
	"github.com/pierojauregui/trilceperu-sub000/pkg/config"
	"github.com/pierojauregui/trilceperu-sub000/pkg/database"
	"github.com/pierojauregui/trilceperu-sub000/pkg/logger"
	corsmiddleware "github.com/pierojauregui/trilceperu-sub000/pkg/middleware/cors"
	reqidmiddleware "github.com/pierojauregui/trilceperu-sub000/pkg/middleware/requestid"
)

// @title Asignaciones API
// @version 1.0.0
// @description Teacher-to-course schedule assignments
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	issueFor := flag.String("issue-token", "", "print a signed access token for the given user id and exit")
	issueRole := flag.String("role", "admin", "role claim for -issue-token")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	tokens := service.NewTokenService(service.TokenConfig{Secret: cfg.JWT.Secret, Issuer: cfg.JWT.Issuer})
	if *issueFor != "" {
		token, err := tokens.IssueToken(*issueFor, *issueRole, 12*time.Hour)
		if err != nil {
			log.Fatalf("failed to issue token: %v", err)
		}
		fmt.Println(token)
		return
	}

	logr, err := logger.New(cfg, "asignaciones-api")
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	metrics := service.NewMetricsService()
	validate := validator.New()
	rules := service.AssignmentRules{RequireSlot: cfg.Assignments.RequireSlot}

	catalogRepo := repository.NewCatalogRepository(db)
	assignmentSvc := service.NewAssignmentService(repository.NewAssignmentRepository(db), catalogRepo, validate, metrics, logr, rules)
	catalogSvc := service.NewCatalogService(catalogRepo, metrics, logr)

	assignmentHandler := handler.NewAssignmentHandler(assignmentSvc)
	catalogHandler := handler.NewCatalogHandler(catalogSvc)
	metricsHandler := handler.NewMetricsHandler(metrics, map[string]handler.Pinger{"postgres": db})

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics, "/metrics"))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)
	r.GET("/metrics/summary", metricsHandler.Summary)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix, middleware.JWT(tokens), middleware.RequireRoles(cfg.JWT.AllowedRoles...))
	{
		api.GET("/asignaciones", assignmentHandler.List)
		api.POST("/asignaciones", assignmentHandler.Create)
		api.GET("/asignaciones/profesores-disponibles", catalogHandler.Teachers)
		api.GET("/asignaciones/dias-semana", catalogHandler.Weekdays)
		api.GET("/asignaciones/bloques-horarios", catalogHandler.TimeBlocks)
		api.GET("/asignaciones/:id", assignmentHandler.Get)
		api.PUT("/asignaciones/:id", assignmentHandler.Update)
		api.DELETE("/asignaciones/:id", assignmentHandler.Delete)
		api.GET("/cursos", catalogHandler.Courses)
		api.GET("/categorias", catalogHandler.Categories)
	}

	serve(ctx, logr, r, cfg)
}

func serve(ctx context.Context, logr *zap.Logger, r http.Handler, cfg *config.Config) {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}
