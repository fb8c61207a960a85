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
	"go.uber.org/zap"

	"github.com/pierojauregui/trilceperu-sub000/internal/client"
	"github.com/pierojauregui/trilceperu-sub000/internal/handler"
	"github.com/pierojauregui/trilceperu-sub000/internal/middleware"
	"github.com/pierojauregui/trilceperu-sub000/internal/repository"
	"github.com/pierojauregui/trilceperu-sub000/internal/service"
	"github.com/pierojauregui/trilceperu-sub000/pkg/cache"
	"github.com/pierojauregui/trilceperu-sub000/pkg/config"
	"github.com/pierojauregui/trilceperu-sub000/pkg/logger"
	corsmiddleware "github.com/pierojauregui/trilceperu-sub000/pkg/middleware/cors"
	reqidmiddleware "github.com/pierojauregui/trilceperu-sub000/pkg/middleware/requestid"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg, "admin-dashboard")
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Fatal("failed to connect redis", zap.Error(err))
	}
	if redisClient == nil {
		logr.Warn("redis disabled, form sessions are kept in memory")
	}
	sessions := repository.NewFormSessionRepository(redisClient, logr)
	defer sessions.Close() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	metrics := service.NewMetricsService()
	upstream := client.New(cfg.Upstream, nil, metrics, logr)
	reference := service.NewReferenceService(upstream, logr)
	listSvc := service.NewAssignmentListService(upstream, reference, logr)
	formSvc := service.NewAssignmentFormService(upstream, reference, sessions, metrics, logr, service.FormConfig{
		SessionTTL:    cfg.Forms.SessionTTL,
		SubmitLockTTL: cfg.Forms.SubmitLockTTL,
		Rules:         service.AssignmentRules{RequireSlot: cfg.Assignments.RequireSlot},
	})

	deps := map[string]handler.Pinger{}
	if redisClient != nil {
		deps["redis"] = handler.PingFunc(func(ctx context.Context) error { return redisClient.Ping(ctx).Err() })
	}
	metricsHandler := handler.NewMetricsHandler(metrics, deps)
	dashboard := handler.NewDashboardHandler(listSvc, formSvc)

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

	group := r.Group(cfg.APIPrefix+"/dashboard/asignaciones", middleware.BearerToken())
	{
		group.GET("", dashboard.List)
		group.DELETE("/:id", dashboard.Delete)
		group.POST("/validate", dashboard.Validate)
		group.POST("/forms", dashboard.OpenForm)
		group.GET("/forms/:form_id", dashboard.GetForm)
		group.PATCH("/forms/:form_id", dashboard.EditForm)
		group.POST("/forms/:form_id/submit", dashboard.SubmitForm)
		group.DELETE("/forms/:form_id", dashboard.DiscardForm)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env), zap.String("upstream", cfg.Upstream.BaseURL))
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
