package ordersync

import (
	"strings"
	"time"

	"github.com/storesync/backend/internal/domain/normalize"
	"github.com/storesync/backend/internal/domain/staging"
	"github.com/storesync/backend/internal/domain/storefront"
)

// mapOrder reshapes one storefront order into a staged order. Every field
// passes through the normalizer; nothing here can fail except an invalid
// upstream id.
func mapOrder(order *storefront.Order, batchTag string, loc *time.Location) (*staging.StagedOrder, error) {
	staged, err := staging.NewStagedOrder(order.ID, order.Number, batchTag)
	if err != nil {
		return nil, err
	}

	staged.UpstreamBuyerID = order.BuyerID
	staged.BuyerEmail = normalize.Sanitize(order.Billing.Email, normalize.MaxEmailLen)
	staged.UpstreamStatus = normalize.Sanitize(order.Status.String(), 0)
	staged.PaymentMethod = normalize.Sanitize(order.PaymentMethod, normalize.MaxNameLen)
	staged.ShippingMethod = normalize.Sanitize(order.ShippingMethod, normalize.MaxNameLen)

	dates := normalize.Dates(order.CreatedAtUTC, loc)
	staged.OrderDate = dates.LocalDate
	staged.OrderDateUTC = dates.UTCDateTime
	staged.OrderDateTimeLocal = dates.LocalDateTime

	staged.ShippingAmount = order.ShippingAmount.Round(2)
	staged.TaxAmount = order.TaxAmount.Round(2)
	staged.DiscountAmount = order.DiscountAmount.Round(2)
	staged.TotalAmount = order.TotalAmount.Round(2)
	// the ledger wants the pre-freight, pre-tax merchandise amount
	staged.Subtotal = staged.TotalAmount.Sub(staged.ShippingAmount).Sub(staged.TaxAmount)

	staged.ShipTo = mapAddress(order)

	lines := make([]staging.LineItem, 0, len(order.Items))
	for _, item := range order.Items {
		lines = append(lines, staging.LineItem{
			SKU:           item.SKU,
			NormalizedSKU: normalize.SKU(item.SKU),
			Name:          normalize.Sanitize(item.Name, normalize.MaxNameLen),
			Quantity:      item.Quantity,
			UnitPrice:     item.UnitPrice.Round(2),
			LineTotal:     item.LineTotal.Round(2),
		})
	}
	if err := staged.SetLines(lines); err != nil {
		return nil, err
	}
	return staged, nil
}

// mapAddress builds the delivery destination. The shipping block wins when
// it carries a street address; many storefront orders leave it empty and
// put everything in billing.
func mapAddress(order *storefront.Order) staging.ShippingAddress {
	src := order.Billing
	if strings.TrimSpace(order.Shipping.Line1) != "" {
		src = order.Shipping
	}

	name := src.Company
	if strings.TrimSpace(name) == "" {
		name = strings.TrimSpace(src.FirstName + " " + src.LastName)
	}

	phone := order.Billing.Phone
	if strings.TrimSpace(phone) == "" {
		phone = order.Shipping.Phone
	}

	line1 := normalize.AddressLine(src.Line1)
	line2 := normalize.AddressLine(src.Line2)
	if len(line1) > normalize.MaxAddressLen && line2 == "" {
		line1, line2 = normalize.SplitAddress(src.Line1, normalize.MaxAddressLen)
	} else {
		line1 = normalize.Truncate(line1, normalize.MaxAddressLen)
		line2 = normalize.Truncate(line2, normalize.MaxAddressLen)
	}

	return staging.ShippingAddress{
		Name:       normalize.Sanitize(name, normalize.MaxNameLen),
		Line1:      line1,
		Line2:      line2,
		City:       normalize.Sanitize(src.City, normalize.MaxCityLen),
		State:      normalize.State(src.State),
		PostalCode: normalize.Sanitize(src.PostalCode, normalize.MaxPostalCodeLen),
		Country:    normalize.Sanitize(src.Country, normalize.MaxCountryLen),
		Phone:      normalize.Phone(phone),
	}
}
