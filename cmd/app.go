package main

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"workerscope/app/handler"
	"workerscope/internal/jobs"
	"workerscope/internal/service"
	"workerscope/pkg/cache"
	"workerscope/pkg/config"
	"workerscope/pkg/logger"
	"workerscope/pkg/source"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

// Application manages the lifecycle of the entire application
type Application struct {
	configPath string
	// overrides is applied to the loaded configuration before anything uses it
	overrides func(cfg *config.Config) error

	// Infrastructure components
	config      *config.Config
	outputCache *cache.OutputCache
	redisClient *redis.Client

	// Source adapters
	runner     source.Runner
	boshClient *source.BoshClient
	flyClient  *source.FlyClient

	// Service layer
	reportService *service.ReportService

	// Handler layer
	reportHandler *handler.ReportHandler

	// HTTP server
	httpServer *http.Server
	ginEngine  *gin.Engine
	serverErr  chan error

	// Background tasks
	jobsManager *jobs.Manager

	// Context management
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	cleanupFuncs []func()
	closeOnce    sync.Once
}

type initStep struct {
	name string
	fn   func() error
}

// NewApplication creates a new Application instance
func NewApplication(configPath string) *Application {
	ctx, cancel := context.WithCancel(context.Background())
	return &Application{
		configPath:   configPath,
		ctx:          ctx,
		cancel:       cancel,
		serverErr:    make(chan error, 1),
		cleanupFuncs: make([]func(), 0),
	}
}

// reportSteps builds everything a one-shot report needs
func (app *Application) reportSteps() []initStep {
	return []initStep{
		{"Configuration", app.initConfig},
		{"Logging", app.initLogger},
		{"Output Cache", app.initCache},
		{"Source Adapters", app.initSources},
		{"Service Layer", app.initServices},
	}
}

// serveSteps adds the HTTP surface and background jobs
func (app *Application) serveSteps() []initStep {
	return append(app.reportSteps(),
		initStep{"Background Tasks", app.initJobs},
		initStep{"Handler Layer", app.initHandlers},
		initStep{"HTTP Server", app.initHTTPServer},
	)
}

// Initialize runs the given initialization steps in order
func (app *Application) Initialize(steps []initStep) error {
	for _, step := range steps {
		logger.DebugCtx(app.ctx, "Initializing %s...", step.name)
		if err := step.fn(); err != nil {
			return fmt.Errorf("failed to initialize %s: %w", step.name, err)
		}
		logger.DebugCtx(app.ctx, "%s initialized successfully", step.name)
	}
	return nil
}

// Start starts background jobs and the HTTP server
func (app *Application) Start() error {
	if app.httpServer == nil {
		return fmt.Errorf("HTTP server not initialized")
	}

	logger.InfoCtx(app.ctx, "Starting application components...")

	// 1. Start background tasks
	if app.jobsManager != nil {
		logger.InfoCtx(app.ctx, "Starting background task manager")
		app.jobsManager.Start()
		app.wg.Add(1)
		go func() {
			defer app.wg.Done()
			app.jobsManager.Wait()
		}()
	}

	// 2. Start HTTP server
	app.wg.Add(1)
	go func() {
		defer app.wg.Done()
		logger.InfoCtx(app.ctx, "HTTP server listening on: %s", app.httpServer.Addr)
		if err := app.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.serverErr <- err
		}
	}()

	logger.InfoCtx(app.ctx, "All components started successfully")
	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown(timeout time.Duration) error {
	logger.InfoCtx(app.ctx, "Starting graceful shutdown (timeout: %v)...", timeout)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// 1. Cancel all background tasks
	app.cancel()
	if app.jobsManager != nil {
		app.jobsManager.Stop()
	}

	// 2. Stop HTTP server (stop accepting new requests)
	var shutdownErr error
	if app.httpServer != nil {
		if err := app.httpServer.Shutdown(shutdownCtx); err != nil {
			logger.ErrorCtx(app.ctx, "HTTP server shutdown error: %v", err)
			shutdownErr = err
		}
	}

	// 3. Wait for all background tasks to complete
	done := make(chan struct{})
	go func() {
		app.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.InfoCtx(app.ctx, "All background tasks completed")
	case <-shutdownCtx.Done():
		logger.WarnCtx(app.ctx, "Shutdown timeout, some tasks may not have completed")
	}

	// 4. Execute all cleanup functions
	app.Close()

	logger.InfoCtx(app.ctx, "Graceful shutdown completed")
	return shutdownErr
}

// Close runs the cleanup functions in reverse registration order. It is safe
// to call more than once.
func (app *Application) Close() {
	app.closeOnce.Do(func() {
		app.cancel()
		for i := len(app.cleanupFuncs) - 1; i >= 0; i-- {
			app.cleanupFuncs[i]()
		}
	})
}

// registerCleanup registers cleanup function
func (app *Application) registerCleanup(cleanup func()) {
	app.cleanupFuncs = append(app.cleanupFuncs, cleanup)
}
