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
)

func TestCreateAppliesValidatedOrder(t *testing.T) {
	orders := new(MockStagingRepository)
	writer := new(MockDocumentWriter)
	svc := NewCreationService(orders, writer, zap.NewNop())

	order := testOrder(t, "C500", []staging.LineItem{widgetLine()})
	order.MarkValidated()

	orders.On("FindByID", mock.Anything, order.ID).Return(order, nil)
	writer.On("CreateDocument", mock.Anything, mock.MatchedBy(func(d *ledger.DocumentDraft) bool {
		return d.AccountID == "C500" && d.ReferenceID == "1001" && len(d.Lines) == 1
	})).Return(&ledger.CreationResult{DocumentID: "DOC-1", TicketNumber: "TKT-1"}, nil)
	orders.On("MarkApplied", mock.Anything, order.ID, "DOC-1", "TKT-1", mock.Anything).Return(nil)

	result, err := svc.Create(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, "DOC-1", result.DocumentID)
	assert.Equal(t, "TKT-1", result.TicketNumber)
	assert.False(t, result.AlreadyApplied)
	orders.AssertExpectations(t)
	writer.AssertExpectations(t)
}

func TestCreateAlreadyAppliedIsNoOp(t *testing.T) {
	orders := new(MockStagingRepository)
	writer := new(MockDocumentWriter)
	svc := NewCreationService(orders, writer, zap.NewNop())

	order := testOrder(t, "C500", []staging.LineItem{widgetLine()})
	require.NoError(t, order.MarkApplied("DOC-1", "TKT-1", time.Now()))
	orders.On("FindByID", mock.Anything, order.ID).Return(order, nil)

	result, err := svc.Create(context.Background(), order.ID)
	require.NoError(t, err)
	assert.True(t, result.AlreadyApplied)
	assert.Equal(t, "DOC-1", result.DocumentID, "existing identifiers are returned")
	writer.AssertNotCalled(t, "CreateDocument", mock.Anything, mock.Anything)
	orders.AssertNotCalled(t, "MarkApplied", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateRejectsUnvalidatedOrder(t *testing.T) {
	orders := new(MockStagingRepository)
	writer := new(MockDocumentWriter)
	svc := NewCreationService(orders, writer, zap.NewNop())

	order := testOrder(t, "C500", []staging.LineItem{widgetLine()})
	orders.On("FindByID", mock.Anything, order.ID).Return(order, nil)

	_, err := svc.Create(context.Background(), order.ID)
	require.Error(t, err)
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "INVALID_STATE", de.Code)
	writer.AssertNotCalled(t, "CreateDocument", mock.Anything, mock.Anything)
}

func TestCreateWriterFailureLeavesOrderUnapplied(t *testing.T) {
	orders := new(MockStagingRepository)
	writer := new(MockDocumentWriter)
	svc := NewCreationService(orders, writer, zap.NewNop())

	order := testOrder(t, "C500", []staging.LineItem{widgetLine()})
	order.MarkValidated()
	orders.On("FindByID", mock.Anything, order.ID).Return(order, nil)
	writer.On("CreateDocument", mock.Anything, mock.Anything).
		Return(nil, shared.ErrLedgerUnavailable)

	_, err := svc.Create(context.Background(), order.ID)
	assert.ErrorIs(t, err, shared.ErrLedgerUnavailable)
	assert.False(t, order.IsApplied)
	orders.AssertNotCalled(t, "MarkApplied", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateLosesStampRace(t *testing.T) {
	orders := new(MockStagingRepository)
	writer := new(MockDocumentWriter)
	svc := NewCreationService(orders, writer, zap.NewNop())

	order := testOrder(t, "C500", []staging.LineItem{widgetLine()})
	order.MarkValidated()
	orders.On("FindByID", mock.Anything, order.ID).Return(order, nil)
	writer.On("CreateDocument", mock.Anything, mock.Anything).
		Return(&ledger.CreationResult{DocumentID: "DOC-2"}, nil)
	orders.On("MarkApplied", mock.Anything, order.ID, "DOC-2", "", mock.Anything).
		Return(shared.ErrAlreadyApplied)

	_, err := svc.Create(context.Background(), order.ID)
	assert.ErrorIs(t, err, shared.ErrAlreadyApplied)
}
