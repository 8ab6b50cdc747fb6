package main

import (
	"fmt"
	"net/http"

	"workerscope/app/handler"
	"workerscope/app/router"
	"workerscope/internal/service"
	"workerscope/pkg/cache"
	"workerscope/pkg/config"
	"workerscope/pkg/logger"
	"workerscope/pkg/source"

	"github.com/gin-gonic/gin"
)

// initConfig initializes configuration
func (app *Application) initConfig() error {
	if err := config.Init(app.configPath); err != nil {
		return err
	}
	app.config = config.GlobalConfig

	if app.overrides != nil {
		if err := app.overrides(app.config); err != nil {
			return err
		}
	}
	return nil
}

// initLogger initializes logging
func (app *Application) initLogger() error {
	if err := logger.Init(app.config.Logger); err != nil {
		return err
	}
	app.registerCleanup(func() {
		_ = logger.Sync()
	})
	return nil
}

// initCache initializes the source output cache. Redis is optional; when it
// cannot be reached the in-memory cache is used alone.
func (app *Application) initCache() error {
	app.outputCache = cache.NewOutputCache()
	app.registerCleanup(app.outputCache.Close)

	if app.config.Cache.TTL <= 0 || app.config.Cache.Redis.Addr == "" {
		return nil
	}

	client, err := cache.NewRedisClient(app.ctx, app.config.Cache.Redis)
	if err != nil {
		logger.WarnCtx(app.ctx, "Redis unavailable, using in-memory cache only: %v", err)
		return nil
	}

	app.redisClient = client
	app.outputCache.WithRedis(client)
	app.registerCleanup(func() {
		client.Close()
		logger.DebugCtx(app.ctx, "Redis connection has been closed")
	})
	return nil
}

// initSources initializes the bosh and fly adapters
func (app *Application) initSources() error {
	var runner source.Runner = source.NewExecRunner(app.config.Sources.Timeout)
	if app.config.Cache.TTL > 0 {
		runner = source.NewCachedRunner(runner, app.outputCache, app.config.Cache.TTL)
	}

	app.runner = runner
	app.boshClient = source.NewBoshClient(runner, app.config.Sources.BoshBinary)
	app.flyClient = source.NewFlyClient(runner, app.config.Sources.FlyBinary)
	return nil
}

// initServices initializes service layer
func (app *Application) initServices() error {
	app.reportService = service.NewReportService(app.boshClient, app.flyClient, app.config.Report)
	return nil
}

// initHandlers initializes handler layer
func (app *Application) initHandlers() error {
	app.reportHandler = handler.NewReportHandler(app.reportService, app.config.Server.Deployment, app.config.Server.Target)
	return nil
}

// initHTTPServer initializes HTTP server
func (app *Application) initHTTPServer() error {
	gin.SetMode(app.config.Server.Mode)

	app.ginEngine = gin.New()
	router.NewRouter(app.reportHandler, app.config.Server.APIKey).Setup(app.ginEngine)

	app.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", app.config.Server.Port),
		Handler: app.ginEngine,
	}
	return nil
}
