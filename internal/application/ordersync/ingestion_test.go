package ordersync

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/storesync/backend/internal/domain/ledger"
	"github.com/storesync/backend/internal/domain/shared"
	"github.com/storesync/backend/internal/domain/staging"
	"github.com/storesync/backend/internal/domain/storefront"
)

type ingestFixture struct {
	platform *MockPlatform
	orders   *MockStagingRepository
	mappings *MockMappingRepository
	director *MockAccountDirectory
	runs     *MockRunRepository
	svc      *IngestionService
}

func newIngestFixture() *ingestFixture {
	f := &ingestFixture{
		platform: new(MockPlatform),
		orders:   new(MockStagingRepository),
		mappings: new(MockMappingRepository),
		director: new(MockAccountDirectory),
		runs:     new(MockRunRepository),
	}
	logger := zap.NewNop()
	resolver := NewCustomerResolver(f.mappings, f.director, logger)
	f.svc = NewIngestionService(f.platform, f.orders, resolver, f.runs, time.UTC, logger)
	return f
}

func TestPullStagesNewOrder(t *testing.T) {
	f := newIngestFixture()

	f.platform.On("PullOrders", mock.Anything, mock.Anything).
		Return([]storefront.Order{*sampleOrder()}, nil)
	f.orders.On("ExistsByUpstreamOrderID", mock.Anything, "1001").Return(false, nil)
	f.mappings.On("FindActiveByUpstreamBuyerID", mock.Anything, "77").
		Return(&staging.CustomerMapping{LedgerAccountID: "C500", IsActive: true}, nil)
	f.orders.On("Insert", mock.Anything, mock.MatchedBy(func(o *staging.StagedOrder) bool {
		return o.UpstreamOrderID == "1001" &&
			o.LedgerAccountID != nil && *o.LedgerAccountID == "C500" &&
			o.State() == staging.StatePending
	})).Return(nil)
	f.runs.On("Save", mock.Anything, mock.Anything).Return(nil)
	f.runs.On("Update", mock.Anything, mock.Anything).Return(nil)

	report, err := f.svc.Pull(context.Background(), IngestOptions{Days: 7})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Fetched)
	assert.Equal(t, 1, report.Staged)
	assert.Zero(t, report.Failed)
	f.orders.AssertExpectations(t)
}

func TestPullSkipsExistingOrder(t *testing.T) {
	f := newIngestFixture()

	f.platform.On("PullOrders", mock.Anything, mock.Anything).
		Return([]storefront.Order{*sampleOrder()}, nil)
	f.orders.On("ExistsByUpstreamOrderID", mock.Anything, "1001").Return(true, nil)
	f.runs.On("Save", mock.Anything, mock.Anything).Return(nil)
	f.runs.On("Update", mock.Anything, mock.Anything).Return(nil)

	report, err := f.svc.Pull(context.Background(), IngestOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Skipped)
	assert.Zero(t, report.Staged)
	f.orders.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestPullTreatsInsertRaceAsSkip(t *testing.T) {
	f := newIngestFixture()

	f.platform.On("PullOrders", mock.Anything, mock.Anything).
		Return([]storefront.Order{*sampleOrder()}, nil)
	f.orders.On("ExistsByUpstreamOrderID", mock.Anything, "1001").Return(false, nil)
	f.mappings.On("FindActiveByUpstreamBuyerID", mock.Anything, "77").
		Return(nil, shared.ErrNotFound)
	f.director.On("FindByEmail", mock.Anything, "jane@example.com").
		Return(nil, ledger.ErrAccountNotFound)
	f.orders.On("Insert", mock.Anything, mock.Anything).Return(shared.ErrAlreadyExists)
	f.runs.On("Save", mock.Anything, mock.Anything).Return(nil)
	f.runs.On("Update", mock.Anything, mock.Anything).Return(nil)

	report, err := f.svc.Pull(context.Background(), IngestOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Skipped)
	assert.Zero(t, report.Failed)
}

func TestPullListFailureAbortsBatch(t *testing.T) {
	f := newIngestFixture()
	f.platform.On("PullOrders", mock.Anything, mock.Anything).
		Return(nil, storefront.ErrUnavailable)

	_, err := f.svc.Pull(context.Background(), IngestOptions{})
	assert.ErrorIs(t, err, storefront.ErrUnavailable)
	f.orders.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestPullIsolatesPerOrderFailures(t *testing.T) {
	f := newIngestFixture()

	good := *sampleOrder()
	bad := *sampleOrder()
	bad.ID = "1002"

	f.platform.On("PullOrders", mock.Anything, mock.Anything).
		Return([]storefront.Order{bad, good}, nil)
	f.orders.On("ExistsByUpstreamOrderID", mock.Anything, "1002").
		Return(false, shared.ErrLedgerUnavailable)
	f.orders.On("ExistsByUpstreamOrderID", mock.Anything, "1001").Return(false, nil)
	f.mappings.On("FindActiveByUpstreamBuyerID", mock.Anything, "77").
		Return(&staging.CustomerMapping{LedgerAccountID: "C500", IsActive: true}, nil)
	f.orders.On("Insert", mock.Anything, mock.Anything).Return(nil)
	f.runs.On("Save", mock.Anything, mock.Anything).Return(nil)
	f.runs.On("Update", mock.Anything, mock.Anything).Return(nil)

	report, err := f.svc.Pull(context.Background(), IngestOptions{})
	require.NoError(t, err, "one bad order never aborts the batch")
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 1, report.Staged)
}

func TestPullDryRunWritesNothing(t *testing.T) {
	f := newIngestFixture()

	f.platform.On("PullOrders", mock.Anything, mock.Anything).
		Return([]storefront.Order{*sampleOrder()}, nil)
	f.orders.On("ExistsByUpstreamOrderID", mock.Anything, "1001").Return(false, nil)
	f.mappings.On("FindActiveByUpstreamBuyerID", mock.Anything, "77").
		Return(&staging.CustomerMapping{LedgerAccountID: "C500", IsActive: true}, nil)

	report, err := f.svc.Pull(context.Background(), IngestOptions{DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Staged)
	f.orders.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
	f.runs.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}
