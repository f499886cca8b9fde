package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/Sudarsan9786/nool-erp/internal/config"
	"github.com/Sudarsan9786/nool-erp/internal/jobwork/entity"
	"github.com/Sudarsan9786/nool-erp/internal/jobwork/handler"
	"github.com/Sudarsan9786/nool-erp/internal/jobwork/repository"
	"github.com/Sudarsan9786/nool-erp/internal/jobwork/service"
	"github.com/Sudarsan9786/nool-erp/internal/middleware"
	"github.com/Sudarsan9786/nool-erp/internal/shared/notify"
	"github.com/Sudarsan9786/nool-erp/internal/shared/sse"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	zapLogger.Info("Starting nool-erp service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	dbLevel := logger.Warn
	if cfg.Server.Mode == "debug" {
		dbLevel = logger.Info
	}
	db, err := initDatabase(cfg.Database, dbLevel)
	if err != nil {
		return err
	}
	if cfg.Database.AutoMigrate {
		if err := entity.AutoMigrate(db); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
	}

	sequencer, closeRedis := initSequencer(ctx, cfg.Redis, zapLogger)
	defer closeRedis()

	notifier, err := newNotifier(cfg.Notify, zapLogger)
	if err != nil {
		return err
	}
	dispatcher := notify.NewDispatcher(notifier, zapLogger, cfg.Notify.Timeout)
	defer dispatcher.Close()

	hub := sse.NewHub(zapLogger)
	deps := service.Deps{
		Sequencer:  sequencer,
		Dispatcher: dispatcher,
		Hub:        hub,
		Store:      initStore(ctx, cfg.MinIO, zapLogger),
		Company:    cfg.Company,
		JWT:        cfg.JWT,
		Logger:     zapLogger,
	}

	repos := repository.NewRepositories(db)
	services := service.NewServices(db, repos, deps)
	handlers := handler.NewHandlers(services, hub)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := newRouter(cfg, zapLogger, handlers)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: 0, // SSE connections are long-lived
	}

	errCh := make(chan error, 1)
	go func() {
		zapLogger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
	}

	zapLogger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exited")
	return nil
}

func newRouter(cfg *config.Config, log *zap.Logger, h *handler.Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(log))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	if cfg.Metrics.Enabled {
		router.Use(middleware.Metrics())
	}
	// Event streams must flush unbuffered.
	router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/api/v1/events"})))

	router.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/health/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
		})
	})
	if cfg.Metrics.Enabled {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	h.RegisterRoutes(router.Group("/api/v1"), cfg.JWT.Secret)
	return router
}
