package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"runoj/internal/common/cache"
	commonmw "runoj/internal/common/http/middleware"
	"runoj/internal/grading"
	gradingController "runoj/internal/grading/controller"
	"runoj/internal/judge0"
	"runoj/internal/run"
	runController "runoj/internal/run/controller"
	"runoj/internal/run/repository"
	"runoj/internal/run/service"
	"runoj/pkg/utils/logger"
)

const defaultConfigPath = "configs/run_service.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "Path to config file")
	flag.Parse()

	appCfg, err := loadAppConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load app config failed: %v\n", err)
		return
	}

	if err := logger.Init(appCfg.Logger); err != nil {
		fmt.Fprintf(os.Stderr, "init logger failed: %v\n", err)
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	// The snapshot store is optional: without redis, finished runs are
	// only visible while retained in memory.
	var snapshotRepo *repository.SnapshotRepository
	if appCfg.Redis.Addr != "" {
		redisCache, err := cache.NewRedisCacheWithConfig(&appCfg.Redis)
		if err != nil {
			logger.Error(context.Background(), "init redis failed", zap.Error(err))
			return
		}
		defer func() {
			_ = redisCache.Close()
		}()
		snapshotRepo = repository.NewSnapshotRepository(redisCache, appCfg.Run.SnapshotTTL)
	}

	judgeClient := judge0.NewClient(appCfg.Judge.BaseURL, appCfg.Judge.Timeout)

	var languages *run.LanguageTable
	if len(appCfg.Languages) > 0 {
		languages = run.NewLanguageTable(appCfg.Languages)
	}
	coord := run.NewCoordinator(judgeClient, languages, run.Options{
		PollInterval: appCfg.Run.PollInterval,
		Timeout:      appCfg.Run.Timeout,
	})

	runCtx, cancelRuns := context.WithCancel(context.Background())
	defer cancelRuns()
	runService := service.NewRunService(runCtx, coord, snapshotRepo)

	var gradingClient *grading.Client
	if appCfg.Grading.BaseURL != "" {
		gradingClient = grading.NewClient(appCfg.Grading.BaseURL, appCfg.Grading.Timeout)
	}

	httpServer := buildHTTPServer(appCfg.Server, runService, gradingClient)
	listener, err := net.Listen("tcp", appCfg.Server.Addr)
	if err != nil {
		logger.Error(context.Background(), "init http listener failed", zap.Error(err))
		return
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(context.Background(), "run http server started", zap.String("addr", appCfg.Server.Addr))
		errCh <- httpServer.Serve(listener)
	}()

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(context.Background(), "http server stopped", zap.Error(err))
		}
	case <-shutdownCtx.Done():
		logger.Info(context.Background(), "shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error(context.Background(), "http server shutdown failed", zap.Error(err))
	}
	cancelRuns()
}

func buildHTTPServer(cfg ServerConfig, runService *service.RunService, gradingClient *grading.Client) *http.Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(commonmw.TraceContextMiddleware())
	router.Use(requestLogger())

	runs := router.Group("/api/v1/runs")
	runCtl := runController.NewRunController(runService)
	streamCtl := runController.NewStreamController(runService)
	runs.POST("", runCtl.Create)
	runs.GET("/:id", runCtl.Get)
	runs.DELETE("/:id", runCtl.Cancel)
	runs.GET("/:id/stream", streamCtl.Stream)

	if gradingClient != nil {
		submissions := router.Group("/api/v1/submissions")
		submissionCtl := gradingController.NewSubmissionController(gradingClient)
		submissions.POST("", submissionCtl.Create)
		submissions.GET("/:id", submissionCtl.Get)
	}

	return &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		logger.Info(
			c.Request.Context(),
			"request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}
