// Package ledger defines the ports to the downstream order ledger. The
// pipeline only ever reads master data, atomically creates documents, and
// reads fulfillment state; nothing else in the ledger is touched.
package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrAccountNotFound  = errors.New("ledger: account not found")
	ErrItemNotFound     = errors.New("ledger: item not found")
	ErrDocumentNotFound = errors.New("ledger: document not found")
)

// Account is a ledger customer account.
type Account struct {
	ID       string
	Name     string
	Email    string
	IsActive bool
}

// Item is one sellable item code in the ledger's catalog.
type Item struct {
	Code         string
	Description  string
	Discontinued bool
}

// DocumentLine is one line of a ledger document draft.
type DocumentLine struct {
	ItemCode      string
	Description   string
	Quantity      decimal.Decimal
	UnitPrice     decimal.Decimal
	ExtendedPrice decimal.Decimal
}

// DocumentDraft is everything the writer needs to create one order
// document: header, totals and lines, committed as a unit.
type DocumentDraft struct {
	AccountID   string
	ReferenceID string // upstream order id, stored on the header for audit
	OrderDate   string // YYYY-MM-DD, business-local

	ShipName       string
	ShipLine1      string
	ShipLine2      string
	ShipLine3      string
	ShipCity       string
	ShipState      string
	ShipPostalCode string
	ShipCountry    string
	ShipPhone      string

	ShippingMethod string
	PaymentMethod  string

	Subtotal       decimal.Decimal
	ShippingAmount decimal.Decimal
	TaxAmount      decimal.Decimal
	DiscountAmount decimal.Decimal
	TotalAmount    decimal.Decimal

	Lines []DocumentLine
}

// CreationResult carries the identifiers of a created document.
type CreationResult struct {
	DocumentID   string
	TicketNumber string
}

// Fulfillment is the shipment state of one ledger document.
type Fulfillment struct {
	DocumentID string
	ShippedAt  *time.Time
	// AddressComplete is true when the document carries every shipping
	// field a carrier needs (name, line 1, city, state, postal code).
	AddressComplete bool
}

// Shipped reports whether the document has left the warehouse.
func (f *Fulfillment) Shipped() bool {
	return f.ShippedAt != nil
}

// AccountDirectory resolves ledger customer accounts.
type AccountDirectory interface {
	// FindByID returns ErrAccountNotFound for unknown ids.
	FindByID(ctx context.Context, accountID string) (*Account, error)
	// FindByEmail returns ErrAccountNotFound when no account carries the
	// email. Matching is case-insensitive.
	FindByEmail(ctx context.Context, email string) (*Account, error)
}

// ItemCatalog resolves ledger item codes.
type ItemCatalog interface {
	// FindByCode returns ErrItemNotFound for unknown codes. Matching is
	// case-insensitive; callers pass normalized codes.
	FindByCode(ctx context.Context, code string) (*Item, error)
}

// DocumentWriter performs the atomic creation of a ledger document. The
// header, totals and lines are committed in one transaction or not at all;
// no partial-step method is exposed.
type DocumentWriter interface {
	CreateDocument(ctx context.Context, draft *DocumentDraft) (*CreationResult, error)
}

// FulfillmentReader reads shipment state for the fulfillment sweep.
type FulfillmentReader interface {
	// GetFulfillment returns ErrDocumentNotFound for unknown documents.
	GetFulfillment(ctx context.Context, documentID string) (*Fulfillment, error)
}
