package staging

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// PendingStats summarizes the unapplied backlog for the scheduler
// heuristic and the health check.
type PendingStats struct {
	Count           int64
	OldestCreatedAt *time.Time
}

// FailureStats summarizes validation-failed records for the health check.
type FailureStats struct {
	Total int64
	// Stale counts failed records older than the caller's threshold.
	Stale int64
}

// Repository is the staging store port.
//
// Insert must enforce uniqueness of UpstreamOrderID and return
// shared.ErrAlreadyExists on a duplicate. MarkApplied must be a
// compare-based update: it only writes when the row is still unapplied,
// and returns shared.ErrAlreadyApplied otherwise.
type Repository interface {
	Insert(ctx context.Context, order *StagedOrder) error
	Update(ctx context.Context, order *StagedOrder) error
	FindByID(ctx context.Context, id uuid.UUID) (*StagedOrder, error)
	FindByUpstreamOrderID(ctx context.Context, upstreamOrderID string) (*StagedOrder, error)
	ExistsByUpstreamOrderID(ctx context.Context, upstreamOrderID string) (bool, error)

	// ListPending returns unapplied records, oldest first.
	ListPending(ctx context.Context) ([]*StagedOrder, error)
	ListByBatch(ctx context.Context, batchTag string) ([]*StagedOrder, error)
	// ListApplied returns applied records for the fulfillment sweep.
	ListApplied(ctx context.Context) ([]*StagedOrder, error)

	MarkApplied(ctx context.Context, id uuid.UUID, documentID, ticketNumber string, at time.Time) error

	PendingStats(ctx context.Context) (PendingStats, error)
	FailureStats(ctx context.Context, staleBefore time.Time) (FailureStats, error)
}

// CustomerMappingRepository is the explicit buyer-to-account mapping port.
type CustomerMappingRepository interface {
	Save(ctx context.Context, mapping *CustomerMapping) error
	// FindActiveByUpstreamBuyerID returns shared.ErrNotFound when no
	// active mapping exists.
	FindActiveByUpstreamBuyerID(ctx context.Context, upstreamBuyerID string) (*CustomerMapping, error)
}

// RunRepository is the pipeline run log port.
type RunRepository interface {
	Save(ctx context.Context, run *PipelineRun) error
	Update(ctx context.Context, run *PipelineRun) error
	// LastSuccessful returns shared.ErrNotFound when no run of the given
	// type has ever succeeded.
	LastSuccessful(ctx context.Context, runType RunType) (*PipelineRun, error)
	CountFailedSince(ctx context.Context, since time.Time) (int64, error)
}
