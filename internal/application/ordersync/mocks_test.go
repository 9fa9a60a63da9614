package ordersync

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/storesync/backend/internal/domain/ledger"
	"github.com/storesync/backend/internal/domain/staging"
	"github.com/storesync/backend/internal/domain/storefront"
)

func decimalFromString(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// MockStagingRepository is a mock implementation of staging.Repository
type MockStagingRepository struct {
	mock.Mock
}

func (m *MockStagingRepository) Insert(ctx context.Context, order *staging.StagedOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockStagingRepository) Update(ctx context.Context, order *staging.StagedOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockStagingRepository) FindByID(ctx context.Context, id uuid.UUID) (*staging.StagedOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*staging.StagedOrder), args.Error(1)
}

func (m *MockStagingRepository) FindByUpstreamOrderID(ctx context.Context, upstreamOrderID string) (*staging.StagedOrder, error) {
	args := m.Called(ctx, upstreamOrderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*staging.StagedOrder), args.Error(1)
}

func (m *MockStagingRepository) ExistsByUpstreamOrderID(ctx context.Context, upstreamOrderID string) (bool, error) {
	args := m.Called(ctx, upstreamOrderID)
	return args.Bool(0), args.Error(1)
}

func (m *MockStagingRepository) ListPending(ctx context.Context) ([]*staging.StagedOrder, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*staging.StagedOrder), args.Error(1)
}

func (m *MockStagingRepository) ListByBatch(ctx context.Context, batchTag string) ([]*staging.StagedOrder, error) {
	args := m.Called(ctx, batchTag)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*staging.StagedOrder), args.Error(1)
}

func (m *MockStagingRepository) ListApplied(ctx context.Context) ([]*staging.StagedOrder, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*staging.StagedOrder), args.Error(1)
}

func (m *MockStagingRepository) MarkApplied(ctx context.Context, id uuid.UUID, documentID, ticketNumber string, at time.Time) error {
	args := m.Called(ctx, id, documentID, ticketNumber, at)
	return args.Error(0)
}

func (m *MockStagingRepository) PendingStats(ctx context.Context) (staging.PendingStats, error) {
	args := m.Called(ctx)
	return args.Get(0).(staging.PendingStats), args.Error(1)
}

func (m *MockStagingRepository) FailureStats(ctx context.Context, staleBefore time.Time) (staging.FailureStats, error) {
	args := m.Called(ctx, staleBefore)
	return args.Get(0).(staging.FailureStats), args.Error(1)
}

// MockMappingRepository is a mock implementation of staging.CustomerMappingRepository
type MockMappingRepository struct {
	mock.Mock
}

func (m *MockMappingRepository) Save(ctx context.Context, mapping *staging.CustomerMapping) error {
	args := m.Called(ctx, mapping)
	return args.Error(0)
}

func (m *MockMappingRepository) FindActiveByUpstreamBuyerID(ctx context.Context, upstreamBuyerID string) (*staging.CustomerMapping, error) {
	args := m.Called(ctx, upstreamBuyerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*staging.CustomerMapping), args.Error(1)
}

// MockRunRepository is a mock implementation of staging.RunRepository
type MockRunRepository struct {
	mock.Mock
}

func (m *MockRunRepository) Save(ctx context.Context, run *staging.PipelineRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockRunRepository) Update(ctx context.Context, run *staging.PipelineRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockRunRepository) LastSuccessful(ctx context.Context, runType staging.RunType) (*staging.PipelineRun, error) {
	args := m.Called(ctx, runType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*staging.PipelineRun), args.Error(1)
}

func (m *MockRunRepository) CountFailedSince(ctx context.Context, since time.Time) (int64, error) {
	args := m.Called(ctx, since)
	return args.Get(0).(int64), args.Error(1)
}

// MockPlatform is a mock implementation of storefront.Platform
type MockPlatform struct {
	mock.Mock
}

func (m *MockPlatform) PullOrders(ctx context.Context, req *storefront.PullRequest) ([]storefront.Order, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storefront.Order), args.Error(1)
}

func (m *MockPlatform) GetOrder(ctx context.Context, orderID string) (*storefront.Order, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storefront.Order), args.Error(1)
}

func (m *MockPlatform) UpdateStatus(ctx context.Context, update *storefront.StatusUpdate) error {
	args := m.Called(ctx, update)
	return args.Error(0)
}

// MockAccountDirectory is a mock implementation of ledger.AccountDirectory
type MockAccountDirectory struct {
	mock.Mock
}

func (m *MockAccountDirectory) FindByID(ctx context.Context, accountID string) (*ledger.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Account), args.Error(1)
}

func (m *MockAccountDirectory) FindByEmail(ctx context.Context, email string) (*ledger.Account, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Account), args.Error(1)
}

// MockItemCatalog is a mock implementation of ledger.ItemCatalog
type MockItemCatalog struct {
	mock.Mock
}

func (m *MockItemCatalog) FindByCode(ctx context.Context, code string) (*ledger.Item, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Item), args.Error(1)
}

// MockDocumentWriter is a mock implementation of ledger.DocumentWriter
type MockDocumentWriter struct {
	mock.Mock
}

func (m *MockDocumentWriter) CreateDocument(ctx context.Context, draft *ledger.DocumentDraft) (*ledger.CreationResult, error) {
	args := m.Called(ctx, draft)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.CreationResult), args.Error(1)
}

// MockFulfillmentReader is a mock implementation of ledger.FulfillmentReader
type MockFulfillmentReader struct {
	mock.Mock
}

func (m *MockFulfillmentReader) GetFulfillment(ctx context.Context, documentID string) (*ledger.Fulfillment, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Fulfillment), args.Error(1)
}
