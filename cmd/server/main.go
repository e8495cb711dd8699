package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alimgiray/teampresence/internal/handlers"
	"github.com/alimgiray/teampresence/internal/metrics"
	"github.com/alimgiray/teampresence/internal/middleware"
	"github.com/alimgiray/teampresence/internal/services"
	"github.com/alimgiray/teampresence/pkg/config"
	"github.com/alimgiray/teampresence/pkg/logger"
	"github.com/coder/quartz"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Load configuration
	if err := config.Load(); err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	cfg := config.AppConfig

	logger.Init(cfg.Log.Level)

	// Set Gin mode
	gin.SetMode(cfg.Server.Mode)

	// Initialize metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	presenceMetrics, err := metrics.NewMetrics(registry)
	if err != nil {
		logger.Fatalf("Failed to register metrics: %v", err)
	}

	// Initialize GitHub client
	githubService, err := services.NewGitHubService(cfg.GitHub)
	if err != nil {
		logger.Fatalf("Failed to create GitHub client: %v", err)
	}
	if cfg.GitHub.Token == "" {
		logger.Warnf("GITHUB_TOKEN is not set, GitHub requests will be unauthenticated")
	}

	// Initialize presence pipeline
	aggregator := services.NewPresenceAggregator(githubService, quartz.NewReal(), presenceMetrics)
	collapser := services.NewRequestCollapser(aggregator, cfg.GitHub.Usernames, presenceMetrics)

	// Initialize router
	router := handlers.NewRouter(&handlers.RouterConfig{
		Presence:       collapser,
		CachePolicy:    middleware.DefaultCachePolicy,
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	})

	// Setup server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		logger.Infof("Server starting on :%s, tracking %d users", cfg.Server.Port, len(cfg.GitHub.Usernames))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Infof("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Infof("Server stopped")
}
