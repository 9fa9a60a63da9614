// Package ordersync implements the order synchronization pipeline:
// ingestion of storefront orders into the staging store, validation
// against ledger master data, idempotent document creation with bounded
// retry, and status reconciliation back to the storefront.
package ordersync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/storesync/backend/internal/domain/shared"
	"github.com/storesync/backend/internal/domain/staging"
	"github.com/storesync/backend/internal/domain/storefront"
)

const defaultPullDays = 30

// IngestOptions controls one ingestion pass.
type IngestOptions struct {
	// Days bounds the pull window; 0 means the default
	Days int
	// DryRun reports what would be staged without writing
	DryRun bool
}

// IngestReport summarizes one ingestion pass.
type IngestReport struct {
	BatchTag string
	Fetched  int
	Staged   int
	Skipped  int
	Failed   int
}

// IngestionService pulls paid/confirmed storefront orders and writes one
// staging row per new order. Ingestion is idempotent: an order already
// staged (same upstream order id) is skipped, never duplicated.
type IngestionService struct {
	platform storefront.Platform
	orders   staging.Repository
	resolver *CustomerResolver
	runs     staging.RunRepository
	location *time.Location
	logger   *zap.Logger
}

// NewIngestionService creates an ingestion service
func NewIngestionService(
	platform storefront.Platform,
	orders staging.Repository,
	resolver *CustomerResolver,
	runs staging.RunRepository,
	location *time.Location,
	logger *zap.Logger,
) *IngestionService {
	if location == nil {
		location = time.Local
	}
	return &IngestionService{
		platform: platform,
		orders:   orders,
		resolver: resolver,
		runs:     runs,
		location: location,
		logger:   logger,
	}
}

// Pull fetches candidate orders and stages the new ones. An error fetching
// the upstream list aborts the batch; an error on a single order is
// logged and does not stop the remaining orders.
func (s *IngestionService) Pull(ctx context.Context, opts IngestOptions) (*IngestReport, error) {
	days := opts.Days
	if days <= 0 {
		days = defaultPullDays
	}
	req := &storefront.PullRequest{
		After: time.Now().AddDate(0, 0, -days),
	}
	orders, err := s.platform.PullOrders(ctx, req)
	if err != nil {
		s.logger.Error("failed to pull orders from storefront", zap.Error(err))
		return nil, err
	}

	report := &IngestReport{
		BatchTag: "ORDERS_" + time.Now().Format("20060102_150405"),
		Fetched:  len(orders),
	}
	s.logger.Info("pulled storefront orders",
		zap.Int("count", len(orders)),
		zap.Int("window_days", days),
		zap.String("batch", report.BatchTag),
		zap.Bool("dry_run", opts.DryRun))

	var run *staging.PipelineRun
	if !opts.DryRun {
		run = staging.NewPipelineRun(staging.RunTypeIngest)
		if err := s.runs.Save(ctx, run); err != nil {
			s.logger.Warn("failed to record pipeline run", zap.Error(err))
			run = nil
		}
	}

	for i := range orders {
		if err := s.stageOne(ctx, &orders[i], report, opts.DryRun); err != nil {
			report.Failed++
			s.logger.Error("failed to stage order",
				zap.String("upstream_order_id", orders[i].ID),
				zap.Error(err))
		}
	}

	if run != nil {
		run.Finish(report.Fetched, report.Staged+report.Skipped, report.Failed, nil)
		if err := s.runs.Update(ctx, run); err != nil {
			s.logger.Warn("failed to close pipeline run", zap.Error(err))
		}
	}

	s.logger.Info("ingestion pass finished",
		zap.String("batch", report.BatchTag),
		zap.Int("staged", report.Staged),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed))
	return report, nil
}

func (s *IngestionService) stageOne(ctx context.Context, order *storefront.Order, report *IngestReport, dryRun bool) error {
	exists, err := s.orders.ExistsByUpstreamOrderID(ctx, order.ID)
	if err != nil {
		return fmt.Errorf("dedup check: %w", err)
	}
	if exists {
		report.Skipped++
		return nil
	}

	staged, err := mapOrder(order, report.BatchTag, s.location)
	if err != nil {
		return err
	}

	accountID, err := s.resolver.Resolve(ctx, order.BuyerID, order.Billing.Email)
	if err != nil {
		return fmt.Errorf("resolve customer: %w", err)
	}
	staged.LedgerAccountID = accountID

	if dryRun {
		report.Staged++
		s.logger.Info("would stage order",
			zap.String("upstream_order_id", order.ID),
			zap.String("number", order.Number),
			zap.Bool("mapped", accountID != nil))
		return nil
	}

	if err := s.orders.Insert(ctx, staged); err != nil {
		// a concurrent pass staged it between the check and the insert
		if errors.Is(err, shared.ErrAlreadyExists) {
			report.Skipped++
			return nil
		}
		return fmt.Errorf("insert staging row: %w", err)
	}
	report.Staged++
	return nil
}
