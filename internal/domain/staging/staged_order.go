// Package staging defines the durable queue of orders in flight between
// the storefront and the ledger. A StagedOrder is the single shared record
// every pipeline step reads and mutates.
package staging

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storesync/backend/internal/domain/normalize"
	"github.com/storesync/backend/internal/domain/shared"
)

// State is the derived lifecycle state of a staged order.
type State string

const (
	// StatePending indicates the order is staged but not yet validated
	StatePending State = "PENDING"
	// StateInvalid indicates validation failed; eligible for re-validation
	StateInvalid State = "INVALID"
	// StateValidated indicates the order passed validation and awaits creation
	StateValidated State = "VALIDATED"
	// StateApplied indicates the ledger document exists; terminal
	StateApplied State = "APPLIED"
)

// String returns the string representation of State
func (s State) String() string {
	return string(s)
}

// IsTerminal returns true if no pipeline step will mutate the order again
func (s State) IsTerminal() bool {
	return s == StateApplied
}

// LineItem is one ordered line of a staged order.
type LineItem struct {
	SKU           string          `json:"sku"`
	NormalizedSKU string          `json:"normalized_sku"`
	Name          string          `json:"name"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	LineTotal     decimal.Decimal `json:"line_total"`
}

// ShippingAddress is the normalized, length-bounded delivery destination.
type ShippingAddress struct {
	Name       string
	Line1      string
	Line2      string
	Line3      string
	City       string
	State      string
	PostalCode string
	Country    string
	Phone      string
}

// Complete reports whether the address has every field a carrier needs.
// Line2/Line3, country and phone are optional.
func (a ShippingAddress) Complete() bool {
	return a.Name != "" && a.Line1 != "" && a.City != "" &&
		a.State != "" && a.PostalCode != ""
}

// StagedOrder represents one upstream order in flight through the pipeline.
//
// UpstreamOrderID is the idempotency key: unique across all rows, never
// overwritten. LedgerDocumentID is write-once and set exactly when
// IsApplied flips to true.
type StagedOrder struct {
	ID                  uuid.UUID
	BatchTag            string
	UpstreamOrderID     string
	UpstreamOrderNumber string

	LedgerAccountID *string
	BuyerEmail      string
	UpstreamBuyerID string

	OrderDate          string // local business date, YYYY-MM-DD
	OrderDateUTC       string // original storefront timestamp, audit
	OrderDateTimeLocal string

	UpstreamStatus string
	PaymentMethod  string
	ShippingMethod string

	Subtotal       decimal.Decimal
	ShippingAmount decimal.Decimal
	TaxAmount      decimal.Decimal
	DiscountAmount decimal.Decimal
	TotalAmount    decimal.Decimal

	ShipTo ShippingAddress

	// LineItemsJSON is the serialized []LineItem; parse with Lines().
	LineItemsJSON string

	IsValidated        bool
	ValidationError    *string
	IsApplied          bool
	LedgerDocumentID   *string
	LedgerTicketNumber *string

	CreatedAt time.Time
	AppliedAt *time.Time
}

// NewStagedOrder creates a staged order for ingestion. The upstream order
// id is required; everything else is best-effort normalized input.
func NewStagedOrder(upstreamOrderID, upstreamOrderNumber, batchTag string) (*StagedOrder, error) {
	if strings.TrimSpace(upstreamOrderID) == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "upstream order id is required")
	}
	if upstreamOrderNumber == "" {
		upstreamOrderNumber = upstreamOrderID
	}
	return &StagedOrder{
		ID:                  uuid.New(),
		BatchTag:            batchTag,
		UpstreamOrderID:     upstreamOrderID,
		UpstreamOrderNumber: upstreamOrderNumber,
		Subtotal:            decimal.Zero,
		ShippingAmount:      decimal.Zero,
		TaxAmount:           decimal.Zero,
		DiscountAmount:      decimal.Zero,
		TotalAmount:         decimal.Zero,
		CreatedAt:           time.Now(),
	}, nil
}

// State derives the lifecycle state from the persisted flags.
func (o *StagedOrder) State() State {
	switch {
	case o.IsApplied:
		return StateApplied
	case o.IsValidated:
		return StateValidated
	case o.ValidationError != nil:
		return StateInvalid
	default:
		return StatePending
	}
}

// Lines deserializes the stored line items. A record whose blob fails to
// parse is malformed and must be left for manual inspection.
func (o *StagedOrder) Lines() ([]LineItem, error) {
	if strings.TrimSpace(o.LineItemsJSON) == "" {
		return nil, nil
	}
	var lines []LineItem
	if err := json.Unmarshal([]byte(o.LineItemsJSON), &lines); err != nil {
		return nil, shared.NewDomainError("MALFORMED_RECORD",
			fmt.Sprintf("line items do not deserialize: %v", err))
	}
	return lines, nil
}

// SetLines serializes the line items onto the record.
func (o *StagedOrder) SetLines(lines []LineItem) error {
	data, err := json.Marshal(lines)
	if err != nil {
		return shared.NewDomainError("INVALID_INPUT",
			fmt.Sprintf("line items do not serialize: %v", err))
	}
	o.LineItemsJSON = string(data)
	return nil
}

// MarkValidated records a successful validation pass, clearing any prior
// failure reason.
func (o *StagedOrder) MarkValidated() {
	o.IsValidated = true
	o.ValidationError = nil
}

// MarkInvalid records a validation failure. The reason overwrites any
// previous one and is bounded for the diagnostic column.
func (o *StagedOrder) MarkInvalid(reason string) {
	o.IsValidated = false
	bounded := normalize.Truncate(reason, normalize.MaxErrorLen)
	o.ValidationError = &bounded
}

// MarkApplied stamps the ledger identifiers. It refuses to run twice: the
// document id is write-once.
func (o *StagedOrder) MarkApplied(documentID, ticketNumber string, at time.Time) error {
	if o.IsApplied {
		return shared.ErrAlreadyApplied
	}
	if documentID == "" {
		return shared.NewDomainError("INVALID_INPUT", "ledger document id is required")
	}
	o.IsApplied = true
	o.LedgerDocumentID = &documentID
	if ticketNumber != "" {
		o.LedgerTicketNumber = &ticketNumber
	}
	o.AppliedAt = &at
	o.ValidationError = nil
	return nil
}

// RecordAttemptFailure appends one creation attempt's outcome to the
// diagnostic field so operators see the full attempt history.
func (o *StagedOrder) RecordAttemptFailure(attempt, maxAttempts int, cause string) {
	entry := fmt.Sprintf("[attempt %d/%d] %s", attempt, maxAttempts, cause)
	if o.ValidationError != nil && *o.ValidationError != "" {
		entry = *o.ValidationError + "; " + entry
	}
	// keep the tail: the newest attempt must survive the column bound
	if len(entry) > normalize.MaxErrorLen {
		entry = entry[len(entry)-normalize.MaxErrorLen:]
	}
	o.ValidationError = &entry
}
