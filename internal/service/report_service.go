package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"workerscope/internal/attribution"
	"workerscope/internal/model"
	"workerscope/pkg/config"
	"workerscope/pkg/constants"
	"workerscope/pkg/interfaces"
	"workerscope/pkg/logger"
	"workerscope/pkg/source"
	"workerscope/pkg/status"
)

// ErrMissingIdentifier is returned when a deployment or target is not given
var ErrMissingIdentifier = errors.New("deployment and target are required")

// Termination messages shown in the report
const (
	MessageNoWorkerData     = "No worker data available."
	MessageInsufficientData = "No sufficient build or container data available via fly/concourse. Not busy?!"
)

// ReportService correlates bosh vitals with the fly inventory
type ReportService struct {
	vitals    interfaces.VitalsSource
	inventory interfaces.InventorySource
	sanitizer *status.StatusSanitizer
	cfg       config.ReportConfig
	now       func() time.Time
}

// NewReportService creates a new report service
func NewReportService(vitals interfaces.VitalsSource, inventory interfaces.InventorySource, cfg config.ReportConfig) *ReportService {
	return &ReportService{
		vitals:    vitals,
		inventory: inventory,
		sanitizer: status.NewStatusSanitizer(),
		cfg:       cfg,
		now:       time.Now,
	}
}

// Options returns the attribution options derived from the report config
func (s *ReportService) Options() attribution.Options {
	return attribution.Options{
		ShortIDLength:  s.cfg.ShortIDLength,
		JobNameSource:  s.cfg.JobNameSource,
		StrictShortIDs: s.cfg.StrictShortIDs,
	}
}

// WithReportConfig returns a copy of the service using cfg
func (s *ReportService) WithReportConfig(cfg config.ReportConfig) *ReportService {
	clone := *s
	clone.cfg = cfg
	return &clone
}

// Generate fetches the three datasets concurrently and builds one report.
// Source failures never fail the call; they become warnings and, for vitals,
// a terminated report.
func (s *ReportService) Generate(ctx context.Context, deployment, target string) (*model.Report, error) {
	if deployment == "" || target == "" {
		return nil, ErrMissingIdentifier
	}

	report := &model.Report{
		ID:          uuid.New().String(),
		GeneratedAt: s.now().UTC(),
		Deployment:  deployment,
		Target:      target,
		TopN:        s.topN(),
	}
	ctx = logger.WithTraceID(ctx, report.ID)
	logger.InfoCtx(ctx, "generating report, deployment: %s, target: %s", deployment, target)

	var (
		vitalRows, containerRows, buildRows []model.Record
		vitalErr, containerErr, buildErr    error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		vitalRows, vitalErr = s.vitals.FetchVitals(gctx, deployment)
		return nil
	})
	g.Go(func() error {
		containerRows, containerErr = s.inventory.FetchContainers(gctx, target)
		return nil
	})
	g.Go(func() error {
		buildRows, buildErr = s.inventory.FetchBuilds(gctx, target)
		return nil
	})
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if vitalErr != nil {
		s.warn(ctx, report, "bosh vitals", vitalErr)
		terminate(report, model.TerminationNoWorkerData, MessageNoWorkerData)
		return report, nil
	}

	workers, err := attribution.RankWorkers(vitalRows, report.TopN)
	if err != nil {
		logger.WarnCtx(ctx, "ranking failed: %v", err)
		report.Warnings = append(report.Warnings, s.sanitizer.SanitizeSensitiveInfo(err.Error()))
		terminate(report, model.TerminationNoWorkerData, MessageNoWorkerData)
		return report, nil
	}
	report.TopWorkers = workers

	if containerErr != nil {
		s.warn(ctx, report, "fly containers", containerErr)
	}
	if buildErr != nil {
		s.warn(ctx, report, "fly builds", buildErr)
	}

	containers := attribution.NormalizeContainers(containerRows)
	builds := attribution.SelectActiveBuilds(buildRows)
	logger.DebugCtx(ctx, "inventory: %d task containers, %d started builds", len(containers), len(builds))

	if len(containers) == 0 && len(builds) == 0 {
		terminate(report, model.TerminationInsufficientData, MessageInsufficientData)
		return report, nil
	}

	sections, collisions := attribution.Attribute(workers, containers, builds, s.Options())
	for _, c := range collisions {
		logger.WarnCtx(ctx, "%s", c)
		report.Warnings = append(report.Warnings, c.String())
	}
	report.Sections = sections

	logger.InfoCtx(ctx, "report generated, workers: %d, sections: %d", len(workers), len(sections))
	return report, nil
}

// TopWorkers ranks the deployment's workers without touching fly
func (s *ReportService) TopWorkers(ctx context.Context, deployment string) ([]model.WorkerVital, error) {
	if deployment == "" {
		return nil, ErrMissingIdentifier
	}
	rows, err := s.vitals.FetchVitals(ctx, deployment)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", attribution.ErrDataUnavailable, s.sanitizer.SanitizeFailure(source.Classify(err)))
	}
	return attribution.RankWorkers(rows, s.topN())
}

func (s *ReportService) topN() int {
	if s.cfg.TopN <= 0 {
		return constants.DefaultTopN
	}
	return s.cfg.TopN
}

func (s *ReportService) warn(ctx context.Context, report *model.Report, what string, err error) {
	logger.WarnCtx(ctx, "%s fetch failed: %v", what, err)
	report.Warnings = append(report.Warnings, what+": "+s.sanitizer.SanitizeFailure(source.Classify(err)))
}

func terminate(report *model.Report, reason model.TerminationReason, message string) {
	report.Termination = &model.Termination{Reason: reason, Message: message}
}
