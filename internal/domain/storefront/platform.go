package storefront

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Storefront Errors
// ---------------------------------------------------------------------------

var (
	ErrNotConfigured   = errors.New("storefront: platform not configured")
	ErrUnavailable     = errors.New("storefront: platform temporarily unavailable")
	ErrRequestFailed   = errors.New("storefront: platform request failed")
	ErrInvalidResponse = errors.New("storefront: invalid platform response")
	ErrAuthFailed      = errors.New("storefront: authentication failed")
	ErrRateLimited     = errors.New("storefront: rate limited")
	ErrOrderNotFound   = errors.New("storefront: order not found")
)

// ---------------------------------------------------------------------------
// OrderStatus represents the status of an order on the storefront
// ---------------------------------------------------------------------------

// OrderStatus represents the status of an order on the storefront.
type OrderStatus string

const (
	// OrderStatusPending indicates payment has not completed
	OrderStatusPending OrderStatus = "pending"
	// OrderStatusProcessing indicates the order is paid and being worked
	OrderStatusProcessing OrderStatus = "processing"
	// OrderStatusOnHold indicates manual intervention on the storefront
	OrderStatusOnHold OrderStatus = "on-hold"
	// OrderStatusCompleted indicates the order is fulfilled; terminal
	OrderStatusCompleted OrderStatus = "completed"
	// OrderStatusCancelled indicates the order was cancelled; terminal
	OrderStatusCancelled OrderStatus = "cancelled"
	// OrderStatusRefunded indicates the order was refunded; terminal
	OrderStatusRefunded OrderStatus = "refunded"
	// OrderStatusFailed indicates payment failed; terminal
	OrderStatusFailed OrderStatus = "failed"
)

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// IsValid returns true if the status is one the storefront emits
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusOnHold,
		OrderStatusCompleted, OrderStatusCancelled, OrderStatusRefunded,
		OrderStatusFailed:
		return true
	default:
		return false
	}
}

// IsTerminal returns true if the storefront will not move the order again
func (s OrderStatus) IsTerminal() bool {
	switch s {
	case OrderStatusCompleted, OrderStatusCancelled, OrderStatusRefunded, OrderStatusFailed:
		return true
	default:
		return false
	}
}

// Fulfillable reports whether a fulfillment completion may be pushed onto
// an order in this status.
func (s OrderStatus) Fulfillable() bool {
	return s == OrderStatusProcessing || s == OrderStatusPending
}

// ---------------------------------------------------------------------------
// Value Objects
// ---------------------------------------------------------------------------

// Address is one billing or shipping block as the storefront sends it.
type Address struct {
	FirstName  string
	LastName   string
	Company    string
	Line1      string
	Line2      string
	City       string
	State      string
	PostalCode string
	Country    string
	Email      string
	Phone      string
}

// Order is one order as pulled from the storefront.
type Order struct {
	// ID is the storefront's own order id, used for all write-backs
	ID string
	// Number is the display order number
	Number string
	// BuyerID is the storefront customer id; "0" or empty for guests
	BuyerID string
	Status  OrderStatus

	// CreatedAtUTC is the raw storefront timestamp (UTC)
	CreatedAtUTC string

	PaymentMethod  string
	ShippingMethod string

	Billing  Address
	Shipping Address

	Subtotal       decimal.Decimal
	ShippingAmount decimal.Decimal
	TaxAmount      decimal.Decimal
	DiscountAmount decimal.Decimal
	TotalAmount    decimal.Decimal

	Items []OrderItem
}

// OrderItem is one line of a storefront order.
type OrderItem struct {
	SKU       string
	Name      string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
}

// ---------------------------------------------------------------------------
// Request/Response DTOs
// ---------------------------------------------------------------------------

// PullRequest asks for orders in paid or confirmed states modified within
// a time window.
type PullRequest struct {
	// Statuses filters the pull; defaults to the paid/confirmed set
	Statuses []OrderStatus
	// After bounds the pull to orders created after this instant
	After time.Time
	// PageSize is the number of orders per page (bounded by the platform)
	PageSize int
}

// Validate applies defaults and rejects nonsense windows.
func (r *PullRequest) Validate() error {
	if len(r.Statuses) == 0 {
		r.Statuses = []OrderStatus{OrderStatusProcessing, OrderStatusCompleted}
	}
	for _, s := range r.Statuses {
		if !s.IsValid() {
			return errors.New("storefront: invalid status filter")
		}
	}
	if r.PageSize < 1 || r.PageSize > 100 {
		r.PageSize = 100
	}
	return nil
}

// StatusUpdate sets an order's status and attaches an audit note in one
// call.
type StatusUpdate struct {
	OrderID string
	Status  OrderStatus
	// Note is appended to the order's history; empty means status only
	Note string
}

// Validate rejects malformed updates.
func (u *StatusUpdate) Validate() error {
	if u.OrderID == "" {
		return ErrOrderNotFound
	}
	if !u.Status.IsValid() {
		return errors.New("storefront: invalid status")
	}
	return nil
}

// ---------------------------------------------------------------------------
// Platform Port Interface
// ---------------------------------------------------------------------------

// Platform is the port to the upstream storefront. The concrete REST
// adapter lives in the infrastructure layer.
type Platform interface {
	// PullOrders fetches all pages matching the request, oldest first.
	PullOrders(ctx context.Context, req *PullRequest) ([]Order, error)

	// GetOrder fetches a single order by the storefront's order id.
	GetOrder(ctx context.Context, orderID string) (*Order, error)

	// UpdateStatus sets the order status and audit note on the
	// storefront. Failures here never affect ledger state.
	UpdateStatus(ctx context.Context, update *StatusUpdate) error
}
