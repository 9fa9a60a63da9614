package ordersync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/storesync/backend/internal/domain/shared"
	"github.com/storesync/backend/internal/domain/staging"
)

// HealthStatus classifies the pipeline's operational state.
type HealthStatus int

const (
	HealthOK HealthStatus = iota
	HealthWarning
	HealthCritical
)

// String returns the string representation of HealthStatus
func (h HealthStatus) String() string {
	switch h {
	case HealthOK:
		return "healthy"
	case HealthWarning:
		return "warning"
	default:
		return "critical"
	}
}

// ExitCode maps the status onto the conventional monitoring exit codes.
func (h HealthStatus) ExitCode() int {
	return int(h)
}

// HealthReport is the read-only health check result.
type HealthReport struct {
	Status   HealthStatus
	Findings []string
}

func (r *HealthReport) raise(status HealthStatus, finding string) {
	if status > r.Status {
		r.Status = status
	}
	r.Findings = append(r.Findings, finding)
}

// HealthService inspects staging-store state and the run log to classify
// pipeline health. It never mutates anything.
type HealthService struct {
	orders staging.Repository
	runs   staging.RunRepository
	logger *zap.Logger
}

// NewHealthService creates a health service
func NewHealthService(
	orders staging.Repository,
	runs staging.RunRepository,
	logger *zap.Logger,
) *HealthService {
	return &HealthService{
		orders: orders,
		runs:   runs,
		logger: logger,
	}
}

// Check evaluates pending backlog age, repeated-failure backlog, time
// since the last successful run, and recent run failures.
func (s *HealthService) Check(ctx context.Context) (*HealthReport, error) {
	report := &HealthReport{Status: HealthOK}
	now := time.Now()

	pending, err := s.orders.PendingStats(ctx)
	if err != nil {
		return nil, err
	}
	if pending.Count > 0 && pending.OldestCreatedAt != nil {
		age := now.Sub(*pending.OldestCreatedAt)
		switch {
		case age > 2*time.Hour:
			report.raise(HealthCritical, fmt.Sprintf(
				"oldest pending order has waited %s (%d pending)",
				age.Round(time.Minute), pending.Count))
		case age > time.Hour:
			report.raise(HealthWarning, fmt.Sprintf(
				"oldest pending order has waited %s (%d pending)",
				age.Round(time.Minute), pending.Count))
		default:
			report.Findings = append(report.Findings, fmt.Sprintf(
				"%d pending order(s), oldest %s", pending.Count, age.Round(time.Minute)))
		}
	}

	failures, err := s.orders.FailureStats(ctx, now.Add(-time.Hour))
	if err != nil {
		return nil, err
	}
	switch {
	case failures.Stale > 5:
		report.raise(HealthCritical, fmt.Sprintf(
			"%d order(s) stuck in failure for over an hour", failures.Stale))
	case failures.Total > 0:
		report.raise(HealthWarning, fmt.Sprintf(
			"%d order(s) with validation or creation failures", failures.Total))
	}

	last, err := s.runs.LastSuccessful(ctx, staging.RunTypeProcess)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		report.raise(HealthWarning, "no successful processing run recorded")
	case err != nil:
		return nil, err
	default:
		sinceRun := now.Sub(last.StartedAt)
		switch {
		case sinceRun > 6*time.Hour:
			report.raise(HealthCritical, fmt.Sprintf(
				"last successful run was %s ago", sinceRun.Round(time.Minute)))
		case sinceRun > 3*time.Hour:
			report.raise(HealthWarning, fmt.Sprintf(
				"last successful run was %s ago", sinceRun.Round(time.Minute)))
		}
	}

	recentFailed, err := s.runs.CountFailedSince(ctx, now.Add(-time.Hour))
	if err != nil {
		return nil, err
	}
	switch {
	case recentFailed > 3:
		report.raise(HealthCritical, fmt.Sprintf(
			"%d failed run(s) in the last hour", recentFailed))
	case recentFailed > 0:
		report.raise(HealthWarning, fmt.Sprintf(
			"%d failed run(s) in the last hour", recentFailed))
	}

	s.logger.Info("health check complete",
		zap.String("status", report.Status.String()),
		zap.Int("findings", len(report.Findings)))
	return report, nil
}
