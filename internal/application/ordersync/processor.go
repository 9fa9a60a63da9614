package ordersync

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storesync/backend/internal/domain/shared"
	"github.com/storesync/backend/internal/domain/staging"
	"github.com/storesync/backend/internal/domain/storefront"
)

// OrderOutcome is the structured result of processing one staged order.
// No per-order code path escapes the processor any other way.
type OrderOutcome struct {
	ID              uuid.UUID
	UpstreamOrderID string
	Success         bool
	AlreadyApplied  bool
	DocumentID      string
	TicketNumber    string
	Reason          string
}

// ProcessReport aggregates one processing pass.
type ProcessReport struct {
	Processed int
	Succeeded int
	Failed    int
	Outcomes  []OrderOutcome
}

// Clean reports whether every touched order succeeded.
func (r *ProcessReport) Clean() bool {
	return r.Failed == 0
}

// ProcessingService drives a staged order through validation, ledger
// creation with bounded retry, and the forward status push back to the
// storefront.
type ProcessingService struct {
	orders    staging.Repository
	validator *ValidationService
	creator   *CreationService
	platform  storefront.Platform
	runs      staging.RunRepository
	backoff   BackoffPolicy
	sleep     SleepFunc
	logger    *zap.Logger
}

// NewProcessingService creates a processing service
func NewProcessingService(
	orders staging.Repository,
	validator *ValidationService,
	creator *CreationService,
	platform storefront.Platform,
	runs staging.RunRepository,
	backoff BackoffPolicy,
	logger *zap.Logger,
) *ProcessingService {
	return &ProcessingService{
		orders:    orders,
		validator: validator,
		creator:   creator,
		platform:  platform,
		runs:      runs,
		backoff:   backoff,
		sleep:     sleepWithContext,
		logger:    logger,
	}
}

// WithSleep overrides the inter-attempt wait. Tests use this to run the
// backoff schedule without real delays.
func (s *ProcessingService) WithSleep(sleep SleepFunc) *ProcessingService {
	s.sleep = sleep
	return s
}

// ProcessOne validates and applies a single staged order.
func (s *ProcessingService) ProcessOne(ctx context.Context, id uuid.UUID) (*OrderOutcome, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	outcome := s.process(ctx, order)
	return &outcome, nil
}

// ProcessAll runs every unapplied staged order through the pipeline.
// Orders failing validation are reported and skipped; they re-enter the
// pass automatically once the underlying data is fixed.
func (s *ProcessingService) ProcessAll(ctx context.Context) (*ProcessReport, error) {
	pending, err := s.orders.ListPending(ctx)
	if err != nil {
		return nil, err
	}
	return s.processSet(ctx, pending), nil
}

// ProcessBatch runs every unapplied order of one ingestion batch.
func (s *ProcessingService) ProcessBatch(ctx context.Context, batchTag string) (*ProcessReport, error) {
	orders, err := s.orders.ListByBatch(ctx, batchTag)
	if err != nil {
		return nil, err
	}
	eligible := make([]*staging.StagedOrder, 0, len(orders))
	for _, o := range orders {
		if !o.IsApplied {
			eligible = append(eligible, o)
		}
	}
	return s.processSet(ctx, eligible), nil
}

func (s *ProcessingService) processSet(ctx context.Context, orders []*staging.StagedOrder) *ProcessReport {
	run := staging.NewPipelineRun(staging.RunTypeProcess)
	if err := s.runs.Save(ctx, run); err != nil {
		s.logger.Warn("failed to record pipeline run", zap.Error(err))
		run = nil
	}

	report := &ProcessReport{}
	for _, order := range orders {
		outcome := s.process(ctx, order)
		report.Processed++
		if outcome.Success {
			report.Succeeded++
		} else {
			report.Failed++
		}
		report.Outcomes = append(report.Outcomes, outcome)
	}

	if run != nil {
		run.Finish(report.Processed, report.Succeeded, report.Failed, nil)
		if err := s.runs.Update(ctx, run); err != nil {
			s.logger.Warn("failed to close pipeline run", zap.Error(err))
		}
	}
	s.logger.Info("processing pass finished",
		zap.Int("processed", report.Processed),
		zap.Int("succeeded", report.Succeeded),
		zap.Int("failed", report.Failed))
	return report
}

// process is the per-order unit of work: validate, then create with
// bounded retry, then push the forward status. It always returns a
// structured outcome.
func (s *ProcessingService) process(ctx context.Context, order *staging.StagedOrder) OrderOutcome {
	outcome := OrderOutcome{ID: order.ID, UpstreamOrderID: order.UpstreamOrderID}

	valid, reason, err := s.validator.Validate(ctx, order.ID)
	if err != nil {
		outcome.Reason = err.Error()
		return outcome
	}
	if !valid {
		outcome.Reason = reason
		return outcome
	}

	for attempt := 1; attempt <= s.backoff.MaxAttempts; attempt++ {
		if attempt > 1 {
			if err := s.sleep(ctx, s.backoff.Delay(attempt)); err != nil {
				outcome.Reason = err.Error()
				return outcome
			}
		}

		result, err := s.creator.Create(ctx, order.ID)
		if err == nil {
			outcome.Success = true
			outcome.AlreadyApplied = result.AlreadyApplied
			outcome.DocumentID = result.DocumentID
			outcome.TicketNumber = result.TicketNumber
			if !result.AlreadyApplied {
				s.pushCreated(ctx, order, result)
			}
			return outcome
		}

		outcome.Reason = err.Error()
		s.recordAttempt(ctx, order.ID, attempt, err)
		if !shared.IsTransient(err) {
			s.logger.Warn("creation failed with non-retryable error",
				zap.String("upstream_order_id", order.UpstreamOrderID),
				zap.Int("attempt", attempt),
				zap.Error(err))
			return outcome
		}
		s.logger.Warn("creation attempt failed",
			zap.String("upstream_order_id", order.UpstreamOrderID),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", s.backoff.MaxAttempts),
			zap.Error(err))
	}

	// exhausted: the order stays unapplied with its attempt history and
	// is picked up again by a later run
	s.logger.Error("creation retries exhausted",
		zap.String("upstream_order_id", order.UpstreamOrderID),
		zap.Int("attempts", s.backoff.MaxAttempts))
	return outcome
}

// recordAttempt appends one failed attempt to the order's diagnostic
// history.
func (s *ProcessingService) recordAttempt(ctx context.Context, id uuid.UUID, attempt int, cause error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		s.logger.Warn("failed to load order for attempt history", zap.Error(err))
		return
	}
	order.RecordAttemptFailure(attempt, s.backoff.MaxAttempts, cause.Error())
	if err := s.orders.Update(ctx, order); err != nil {
		s.logger.Warn("failed to persist attempt history", zap.Error(err))
	}
}

// pushCreated is the forward sweep's immediate leg: move the storefront
// order to processing with a note naming the ledger document. Best-effort;
// a failure never rolls back the committed document.
func (s *ProcessingService) pushCreated(ctx context.Context, order *staging.StagedOrder, result *CreateResult) {
	note := fmt.Sprintf("Order created in ledger. Document: %s", result.DocumentID)
	if result.TicketNumber != "" {
		note += fmt.Sprintf(", Ticket: %s", result.TicketNumber)
	}
	update := &storefront.StatusUpdate{
		OrderID: order.UpstreamOrderID,
		Status:  storefront.OrderStatusProcessing,
		Note:    note,
	}
	if err := s.platform.UpdateStatus(ctx, update); err != nil {
		s.logger.Warn("failed to push creation status to storefront",
			zap.String("upstream_order_id", order.UpstreamOrderID),
			zap.String("document_id", result.DocumentID),
			zap.Error(err))
	}
}
