package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"workerscope/pkg/logger"
)

const defaultInterval = time.Minute

// Job represents a periodic background task.
type Job interface {
	Name() string
	Interval() time.Duration
	Run(ctx context.Context) error
}

// DelayedJob is a job that skips the immediate first run and waits one interval.
type DelayedJob interface {
	Job
	SkipInitialRun() bool
}

// Manager orchestrates the lifecycle of background jobs.
type Manager struct {
	ctx     context.Context
	cancel  context.CancelFunc
	jobs    []Job
	started bool

	mu sync.Mutex
	wg sync.WaitGroup
}

// NewManager creates a job manager bound to the provided context.
func NewManager(parent context.Context) *Manager {
	ctx, cancel := context.WithCancel(parent)
	return &Manager{
		ctx:    ctx,
		cancel: cancel,
		jobs:   make([]Job, 0),
	}
}

// Register adds a job to the manager. Jobs registered after Start are ignored.
func (m *Manager) Register(job Job) {
	if job == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started {
		logger.WarnCtx(m.ctx, "job %s registered after start, ignoring", job.Name())
		return
	}
	m.jobs = append(m.jobs, job)
}

// Len returns the number of registered jobs.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.jobs)
}

// Start launches all registered jobs.
func (m *Manager) Start() {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return
	}
	m.started = true
	jobs := append([]Job(nil), m.jobs...)
	m.mu.Unlock()

	for _, job := range jobs {
		m.wg.Add(1)
		go m.runJob(job)
	}
}

// Stop signals all jobs to stop.
func (m *Manager) Stop() {
	m.cancel()
}

// Wait blocks until all jobs exit.
func (m *Manager) Wait() {
	m.wg.Wait()
}

func (m *Manager) runJob(job Job) {
	defer m.wg.Done()

	interval := job.Interval()
	if interval <= 0 {
		interval = defaultInterval
	}

	delayed, ok := job.(DelayedJob)
	if !ok || !delayed.SkipInitialRun() {
		m.executeJob(job)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			m.executeJob(job)
		}
	}
}

func (m *Manager) executeJob(job Job) {
	if m.ctx.Err() != nil {
		return
	}
	start := time.Now()
	if err := m.safeRun(job); err != nil {
		logger.WarnCtx(m.ctx, "background job %s failed after %v: %v", job.Name(), time.Since(start), err)
		return
	}
	logger.DebugCtx(m.ctx, "background job %s finished in %v", job.Name(), time.Since(start))
}

func (m *Manager) safeRun(job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return job.Run(m.ctx)
}
