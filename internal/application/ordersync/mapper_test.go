package ordersync

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storesync/backend/internal/domain/storefront"
)

func sampleOrder() *storefront.Order {
	return &storefront.Order{
		ID:             "1001",
		Number:         "1001",
		BuyerID:        "77",
		Status:         storefront.OrderStatusProcessing,
		CreatedAtUTC:   "2026-08-01T18:30:00",
		PaymentMethod:  "Credit Card",
		ShippingMethod: "Ground",
		Billing: storefront.Address{
			FirstName: "Jane", LastName: "Doe",
			Line1: "500 Oak Street", City: "Springfield", State: "Illinois",
			PostalCode: "62701", Country: "US",
			Email: "jane@example.com", Phone: "555-123-4567",
		},
		Subtotal:       decimalFromString("20.00"),
		ShippingAmount: decimalFromString("5.00"),
		TaxAmount:      decimalFromString("2.06"),
		DiscountAmount: decimalFromString("0"),
		TotalAmount:    decimalFromString("27.06"),
		Items: []storefront.OrderItem{
			{
				SKU: "a-100", Name: "Widget",
				Quantity:  decimalFromString("2"),
				UnitPrice: decimalFromString("10.00"),
				LineTotal: decimalFromString("20.00"),
			},
		},
	}
}

func TestMapOrder(t *testing.T) {
	est := time.FixedZone("EST", -5*3600)
	staged, err := mapOrder(sampleOrder(), "ORDERS_20260801_140000", est)
	require.NoError(t, err)

	assert.Equal(t, "1001", staged.UpstreamOrderID)
	assert.Equal(t, "ORDERS_20260801_140000", staged.BatchTag)
	assert.Equal(t, "jane@example.com", staged.BuyerEmail)
	assert.Equal(t, "2026-08-01", staged.OrderDate)
	assert.Equal(t, "2026-08-01T18:30:00", staged.OrderDateUTC)
	assert.Equal(t, "2026-08-01 13:30:00", staged.OrderDateTimeLocal)

	// subtotal is re-derived as total minus freight minus tax
	assert.True(t, staged.Subtotal.Equal(decimalFromString("20.00")), "got %s", staged.Subtotal)

	assert.Equal(t, "Jane Doe", staged.ShipTo.Name)
	assert.Equal(t, "500 OAK ST", staged.ShipTo.Line1)
	assert.Equal(t, "Springfield", staged.ShipTo.City)
	assert.Equal(t, "IL", staged.ShipTo.State)
	assert.Equal(t, "(555) 123-4567", staged.ShipTo.Phone)

	lines, err := staged.Lines()
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "a-100", lines[0].SKU)
	assert.Equal(t, "A-100", lines[0].NormalizedSKU)
}

func TestMapOrderPrefersShippingBlock(t *testing.T) {
	order := sampleOrder()
	order.Shipping = storefront.Address{
		FirstName: "John", LastName: "Receiver", Company: "Acme Warehousing",
		Line1: "900 Dock Road", City: "Peoria", State: "IL",
		PostalCode: "61602", Phone: "555-999-0000",
	}

	staged, err := mapOrder(order, "B", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, "Acme Warehousing", staged.ShipTo.Name, "company outranks the personal name")
	assert.Equal(t, "900 DOCK RD", staged.ShipTo.Line1)
	assert.Equal(t, "Peoria", staged.ShipTo.City)
	assert.Equal(t, "(555) 123-4567", staged.ShipTo.Phone, "billing phone wins when present")
}

func TestMapOrderSplitsLongAddress(t *testing.T) {
	order := sampleOrder()
	order.Billing.Line1 = "12345 Martin Luther King Junior Boulevard Suite 2100"
	order.Billing.Line2 = ""

	staged, err := mapOrder(order, "B", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, "12345 MARTIN LUTHER KING JUNIOR BLVD", staged.ShipTo.Line1)
	assert.Equal(t, "SUITE 2100", staged.ShipTo.Line2)
}
