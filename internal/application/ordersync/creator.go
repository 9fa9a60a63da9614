package ordersync

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storesync/backend/internal/domain/ledger"
	"github.com/storesync/backend/internal/domain/shared"
	"github.com/storesync/backend/internal/domain/staging"
)

// CreateResult is the structured outcome of one creation call.
type CreateResult struct {
	DocumentID     string
	TicketNumber   string
	AlreadyApplied bool
}

// CreationService performs the idempotent creation of a ledger document
// from a validated staged order. It is safe to call more than once for the
// same order: an already-applied record returns its existing identifiers
// with zero ledger writes.
type CreationService struct {
	orders staging.Repository
	writer ledger.DocumentWriter
	logger *zap.Logger
}

// NewCreationService creates a creation service
func NewCreationService(
	orders staging.Repository,
	writer ledger.DocumentWriter,
	logger *zap.Logger,
) *CreationService {
	return &CreationService{
		orders: orders,
		writer: writer,
		logger: logger,
	}
}

// Create builds and commits the ledger document for one staged order. The
// document header, totals and lines are written in a single atomic unit by
// the writer; on success the staging row is stamped with the document id
// via a compare-based update so a racing invocation cannot double-apply.
//
// Validation is the caller's job. Create re-checks record state, not
// business rules.
func (s *CreationService) Create(ctx context.Context, id uuid.UUID) (*CreateResult, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if order.IsApplied {
		result := &CreateResult{AlreadyApplied: true}
		if order.LedgerDocumentID != nil {
			result.DocumentID = *order.LedgerDocumentID
		}
		if order.LedgerTicketNumber != nil {
			result.TicketNumber = *order.LedgerTicketNumber
		}
		s.logger.Info("order already applied, returning existing document",
			zap.String("upstream_order_id", order.UpstreamOrderID),
			zap.String("document_id", result.DocumentID))
		return result, nil
	}

	if !order.IsValidated {
		return nil, shared.NewDomainError("INVALID_STATE",
			"staged order has not passed validation")
	}

	draft, err := buildDraft(order)
	if err != nil {
		return nil, err
	}

	created, err := s.writer.CreateDocument(ctx, draft)
	if err != nil {
		return nil, err
	}

	if err := s.orders.MarkApplied(ctx, order.ID, created.DocumentID, created.TicketNumber, time.Now()); err != nil {
		if errors.Is(err, shared.ErrAlreadyApplied) {
			// a concurrent invocation won the race after our read; its
			// document stands, ours is the duplicate to surface loudly
			s.logger.Error("duplicate ledger document created by concurrent run",
				zap.String("upstream_order_id", order.UpstreamOrderID),
				zap.String("document_id", created.DocumentID))
		}
		return nil, err
	}

	s.logger.Info("ledger document created",
		zap.String("upstream_order_id", order.UpstreamOrderID),
		zap.String("document_id", created.DocumentID),
		zap.String("ticket_number", created.TicketNumber))
	return &CreateResult{
		DocumentID:   created.DocumentID,
		TicketNumber: created.TicketNumber,
	}, nil
}

// buildDraft assembles the atomic write payload from a staged order.
func buildDraft(order *staging.StagedOrder) (*ledger.DocumentDraft, error) {
	lines, err := order.Lines()
	if err != nil {
		return nil, err
	}
	if order.LedgerAccountID == nil {
		return nil, shared.NewDomainError("UNMAPPED_CUSTOMER",
			"staged order has no ledger account")
	}

	draft := &ledger.DocumentDraft{
		AccountID:      *order.LedgerAccountID,
		ReferenceID:    order.UpstreamOrderID,
		OrderDate:      order.OrderDate,
		ShipName:       order.ShipTo.Name,
		ShipLine1:      order.ShipTo.Line1,
		ShipLine2:      order.ShipTo.Line2,
		ShipLine3:      order.ShipTo.Line3,
		ShipCity:       order.ShipTo.City,
		ShipState:      order.ShipTo.State,
		ShipPostalCode: order.ShipTo.PostalCode,
		ShipCountry:    order.ShipTo.Country,
		ShipPhone:      order.ShipTo.Phone,
		ShippingMethod: order.ShippingMethod,
		PaymentMethod:  order.PaymentMethod,
		Subtotal:       order.Subtotal,
		ShippingAmount: order.ShippingAmount,
		TaxAmount:      order.TaxAmount,
		DiscountAmount: order.DiscountAmount,
		TotalAmount:    order.TotalAmount,
	}
	for _, line := range lines {
		draft.Lines = append(draft.Lines, ledger.DocumentLine{
			ItemCode:      line.NormalizedSKU,
			Description:   line.Name,
			Quantity:      line.Quantity,
			UnitPrice:     line.UnitPrice,
			ExtendedPrice: line.LineTotal,
		})
	}
	return draft, nil
}
