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

const defaultRunInterval = 2 * time.Hour

// Scheduler decides whether a processing run is warranted, so schedulers
// can wake frequently without the pipeline doing needless work.
type Scheduler struct {
	orders   staging.Repository
	runs     staging.RunRepository
	interval time.Duration
	logger   *zap.Logger
}

// NewScheduler creates a scheduler heuristic. A zero interval uses the
// default fallback of two hours.
func NewScheduler(
	orders staging.Repository,
	runs staging.RunRepository,
	interval time.Duration,
	logger *zap.Logger,
) *Scheduler {
	if interval <= 0 {
		interval = defaultRunInterval
	}
	return &Scheduler{
		orders:   orders,
		runs:     runs,
		interval: interval,
		logger:   logger,
	}
}

// ShouldRun reports whether a processing pass should start, with a
// human-readable reason. Pending work triggers immediately; otherwise the
// interval since the last successful run decides, so transient failures
// self-heal even with zero new orders. Errors evaluating the heuristic
// fail open: a wasted run is cheaper than a stalled pipeline.
func (s *Scheduler) ShouldRun(ctx context.Context) (bool, string) {
	stats, err := s.orders.PendingStats(ctx)
	if err != nil {
		s.logger.Warn("failed to read pending stats, defaulting to run", zap.Error(err))
		return true, "heuristic error: " + err.Error()
	}

	if stats.Count > 0 {
		waiting := ""
		if stats.OldestCreatedAt != nil {
			waiting = fmt.Sprintf(" (oldest waiting %d minutes)",
				int(time.Since(*stats.OldestCreatedAt).Minutes()))
		}
		return true, fmt.Sprintf("%d pending order(s)%s", stats.Count, waiting)
	}

	last, err := s.runs.LastSuccessful(ctx, staging.RunTypeProcess)
	if errors.Is(err, shared.ErrNotFound) {
		return true, "first run - establishing baseline"
	}
	if err != nil {
		s.logger.Warn("failed to read run log, defaulting to run", zap.Error(err))
		return true, "heuristic error: " + err.Error()
	}

	elapsed := time.Since(last.StartedAt)
	if elapsed >= s.interval {
		return true, fmt.Sprintf("interval elapsed: last run %d minutes ago",
			int(elapsed.Minutes()))
	}
	return false, fmt.Sprintf("no pending orders, last run %d minutes ago",
		int(elapsed.Minutes()))
}
