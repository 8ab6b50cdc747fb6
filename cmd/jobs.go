package main

import (
	"context"
	"fmt"
	"time"

	"workerscope/internal/jobs"
	"workerscope/internal/service"
	"workerscope/pkg/cache"
	"workerscope/pkg/logger"
)

const warmLockName = "report-warm"

func (app *Application) initJobs() error {
	interval := app.config.Server.WarmInterval
	if interval <= 0 {
		return nil
	}

	deployment, target := app.config.Server.Deployment, app.config.Server.Target
	if deployment == "" || target == "" {
		logger.WarnCtx(app.ctx, "server.warm_interval set without server.deployment and server.target, cache warmer disabled")
		return nil
	}
	if app.config.Cache.TTL <= 0 {
		logger.WarnCtx(app.ctx, "server.warm_interval set but cache.ttl is 0, cache warmer disabled")
		return nil
	}

	// Replicas sharing Redis take turns; without Redis the lock always succeeds
	lock := cache.NewRedisLock(app.redisClient, warmLockName)

	manager := jobs.NewManager(app.ctx)
	manager.Register(newReportWarmJob(interval, app.reportService, deployment, target, lock))
	app.jobsManager = manager
	return nil
}

// reportWarmJob regenerates the default report so that the output cache
// stays populated between requests.
type reportWarmJob struct {
	interval      time.Duration
	reportService *service.ReportService
	deployment    string
	target        string
	lock          cache.Lock
}

func newReportWarmJob(interval time.Duration, svc *service.ReportService, deployment, target string, lock cache.Lock) jobs.Job {
	return &reportWarmJob{
		interval:      interval,
		reportService: svc,
		deployment:    deployment,
		target:        target,
		lock:          lock,
	}
}

func (j *reportWarmJob) Name() string {
	return "report-cache-warm"
}

func (j *reportWarmJob) Interval() time.Duration {
	return j.interval
}

func (j *reportWarmJob) Run(ctx context.Context) error {
	if j.reportService == nil {
		return fmt.Errorf("report service not configured")
	}

	if j.lock != nil {
		acquired, err := j.lock.TryLock(ctx)
		if err != nil || !acquired {
			logger.DebugCtx(ctx, "another instance is warming the report cache, skipping this cycle")
			return nil
		}
		defer j.lock.Unlock(ctx)
	}

	report, err := j.reportService.Generate(ctx, j.deployment, j.target)
	if err != nil {
		return err
	}
	logger.DebugCtx(ctx, "warmed report %s, %d warnings", report.ID, len(report.Warnings))
	return nil
}
