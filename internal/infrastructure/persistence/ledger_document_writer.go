package persistence

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storesync/backend/internal/domain/ledger"
	"github.com/storesync/backend/internal/domain/shared"
	"github.com/storesync/backend/internal/infrastructure/persistence/models"
)

// GormDocumentWriter implements ledger.DocumentWriter using GORM. Header,
// totals and lines are committed in one transaction or not at all.
type GormDocumentWriter struct {
	db *gorm.DB
}

// NewGormDocumentWriter creates a new GormDocumentWriter
func NewGormDocumentWriter(db *gorm.DB) *GormDocumentWriter {
	return &GormDocumentWriter{db: db}
}

// CreateDocument atomically creates a ledger order document from the draft
func (r *GormDocumentWriter) CreateDocument(ctx context.Context, draft *ledger.DocumentDraft) (*ledger.CreationResult, error) {
	if draft.AccountID == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "document draft requires an account id")
	}
	if len(draft.Lines) == 0 {
		return nil, shared.NewDomainError("EMPTY_ORDER", "document draft has no lines")
	}

	documentID := uuid.NewString()
	var ticketNumber int64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		ticketNumber, err = nextTicketNumber(tx)
		if err != nil {
			return err
		}

		now := time.Now()
		header := &models.LedgerDocumentModel{
			ID:             documentID,
			TicketNumber:   ticketNumber,
			AccountID:      draft.AccountID,
			ReferenceID:    draft.ReferenceID,
			OrderDate:      draft.OrderDate,
			ShipName:       draft.ShipName,
			ShipLine1:      draft.ShipLine1,
			ShipLine2:      draft.ShipLine2,
			ShipLine3:      draft.ShipLine3,
			ShipCity:       draft.ShipCity,
			ShipState:      draft.ShipState,
			ShipPostalCode: draft.ShipPostalCode,
			ShipCountry:    draft.ShipCountry,
			ShipPhone:      draft.ShipPhone,
			ShippingMethod: draft.ShippingMethod,
			PaymentMethod:  draft.PaymentMethod,
			Subtotal:       draft.Subtotal,
			ShippingAmount: draft.ShippingAmount,
			TaxAmount:      draft.TaxAmount,
			DiscountAmount: draft.DiscountAmount,
			TotalAmount:    draft.TotalAmount,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := tx.Create(header).Error; err != nil {
			return err
		}

		lines := make([]models.LedgerDocumentLineModel, len(draft.Lines))
		for i, line := range draft.Lines {
			lines[i] = models.LedgerDocumentLineModel{
				DocumentID:    documentID,
				LineSeq:       i + 1,
				ItemCode:      line.ItemCode,
				Description:   line.Description,
				Quantity:      line.Quantity,
				UnitPrice:     line.UnitPrice,
				ExtendedPrice: line.ExtendedPrice,
			}
		}
		return tx.Create(&lines).Error
	})
	if err != nil {
		return nil, err
	}

	return &ledger.CreationResult{
		DocumentID:   documentID,
		TicketNumber: strconv.FormatInt(ticketNumber, 10),
	}, nil
}

// nextTicketNumber allocates the next ticket number inside the caller's
// transaction. The unique index on ticket_number catches the rare race of
// two concurrent allocations, failing one transaction cleanly.
func nextTicketNumber(tx *gorm.DB) (int64, error) {
	var current int64
	err := tx.Model(&models.LedgerDocumentModel{}).
		Select("COALESCE(MAX(ticket_number), 0)").
		Scan(&current).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}
	return current + 1, nil
}

// GormFulfillmentReader implements ledger.FulfillmentReader using GORM
type GormFulfillmentReader struct {
	db *gorm.DB
}

// NewGormFulfillmentReader creates a new GormFulfillmentReader
func NewGormFulfillmentReader(db *gorm.DB) *GormFulfillmentReader {
	return &GormFulfillmentReader{db: db}
}

// GetFulfillment reads the shipment state of one ledger document
func (r *GormFulfillmentReader) GetFulfillment(ctx context.Context, documentID string) (*ledger.Fulfillment, error) {
	var model models.LedgerDocumentModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", documentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ledger.ErrDocumentNotFound
		}
		return nil, err
	}
	return &ledger.Fulfillment{
		DocumentID:      model.ID,
		ShippedAt:       model.ShippedAt,
		AddressComplete: model.AddressComplete(),
	}, nil
}

// Ensure the writer types implement their ports
var (
	_ ledger.DocumentWriter    = (*GormDocumentWriter)(nil)
	_ ledger.FulfillmentReader = (*GormFulfillmentReader)(nil)
)
