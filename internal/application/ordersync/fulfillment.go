package ordersync

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/storesync/backend/internal/domain/ledger"
	"github.com/storesync/backend/internal/domain/staging"
	"github.com/storesync/backend/internal/domain/storefront"
)

// SweepReport summarizes one fulfillment sweep.
type SweepReport struct {
	Scanned   int
	Completed int
	Skipped   int
	Failed    int
}

// FulfillmentService is the periodic reconciliation leg: applied orders
// whose ledger document has shipped, and whose shipping address is
// complete, are marked completed on the storefront.
type FulfillmentService struct {
	orders   staging.Repository
	shipping ledger.FulfillmentReader
	platform storefront.Platform
	runs     staging.RunRepository
	logger   *zap.Logger
}

// NewFulfillmentService creates a fulfillment service
func NewFulfillmentService(
	orders staging.Repository,
	shipping ledger.FulfillmentReader,
	platform storefront.Platform,
	runs staging.RunRepository,
	logger *zap.Logger,
) *FulfillmentService {
	return &FulfillmentService{
		orders:   orders,
		shipping: shipping,
		platform: platform,
		runs:     runs,
		logger:   logger,
	}
}

// Sweep scans applied orders and pushes completion upstream where the
// ledger shows a shipment. Orders with incomplete shipping addresses are
// skipped, never force-completed: a fulfillment with no deliverable
// address is a data problem, not a completed order. Push failures are
// logged and retried on the next sweep.
func (s *FulfillmentService) Sweep(ctx context.Context, dryRun bool) (*SweepReport, error) {
	applied, err := s.orders.ListApplied(ctx)
	if err != nil {
		return nil, err
	}

	var run *staging.PipelineRun
	if !dryRun {
		run = staging.NewPipelineRun(staging.RunTypeFulfillment)
		if err := s.runs.Save(ctx, run); err != nil {
			s.logger.Warn("failed to record pipeline run", zap.Error(err))
			run = nil
		}
	}

	report := &SweepReport{}
	for _, order := range applied {
		s.sweepOne(ctx, order, report, dryRun)
	}

	if run != nil {
		run.Finish(report.Scanned, report.Completed+report.Skipped, report.Failed, nil)
		if err := s.runs.Update(ctx, run); err != nil {
			s.logger.Warn("failed to close pipeline run", zap.Error(err))
		}
	}
	s.logger.Info("fulfillment sweep finished",
		zap.Int("scanned", report.Scanned),
		zap.Int("completed", report.Completed),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed),
		zap.Bool("dry_run", dryRun))
	return report, nil
}

func (s *FulfillmentService) sweepOne(ctx context.Context, order *staging.StagedOrder, report *SweepReport, dryRun bool) {
	report.Scanned++
	if order.LedgerDocumentID == nil {
		report.Skipped++
		return
	}

	fulfillment, err := s.shipping.GetFulfillment(ctx, *order.LedgerDocumentID)
	if errors.Is(err, ledger.ErrDocumentNotFound) {
		s.logger.Warn("applied order references missing ledger document",
			zap.String("upstream_order_id", order.UpstreamOrderID),
			zap.String("document_id", *order.LedgerDocumentID))
		report.Skipped++
		return
	}
	if err != nil {
		report.Failed++
		s.logger.Error("failed to read fulfillment state",
			zap.String("document_id", *order.LedgerDocumentID),
			zap.Error(err))
		return
	}

	if !fulfillment.Shipped() {
		report.Skipped++
		return
	}
	if !fulfillment.AddressComplete {
		s.logger.Warn("shipped document has incomplete shipping address, not completing upstream",
			zap.String("upstream_order_id", order.UpstreamOrderID),
			zap.String("document_id", fulfillment.DocumentID))
		report.Skipped++
		return
	}

	current, err := s.platform.GetOrder(ctx, order.UpstreamOrderID)
	if err != nil {
		report.Failed++
		s.logger.Error("failed to read storefront order status",
			zap.String("upstream_order_id", order.UpstreamOrderID),
			zap.Error(err))
		return
	}
	if !current.Status.Fulfillable() {
		report.Skipped++
		return
	}

	if dryRun {
		report.Completed++
		s.logger.Info("would complete storefront order",
			zap.String("upstream_order_id", order.UpstreamOrderID),
			zap.String("ship_date", fulfillment.ShippedAt.Format("2006-01-02")))
		return
	}

	update := &storefront.StatusUpdate{
		OrderID: order.UpstreamOrderID,
		Status:  storefront.OrderStatusCompleted,
		Note: fmt.Sprintf("Order fulfilled and shipped. Ship date: %s",
			fulfillment.ShippedAt.Format("2006-01-02")),
	}
	if err := s.platform.UpdateStatus(ctx, update); err != nil {
		report.Failed++
		s.logger.Error("failed to push completion to storefront",
			zap.String("upstream_order_id", order.UpstreamOrderID),
			zap.Error(err))
		return
	}
	report.Completed++
	s.logger.Info("storefront order completed",
		zap.String("upstream_order_id", order.UpstreamOrderID),
		zap.String("document_id", fulfillment.DocumentID))
}
