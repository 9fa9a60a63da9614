package storefront

import (
	"github.com/shopspring/decimal"

	"github.com/storesync/backend/internal/domain/storefront"
)

// wireAddress is one billing or shipping block as the API sends it
type wireAddress struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Company   string `json:"company"`
	Address1  string `json:"address_1"`
	Address2  string `json:"address_2"`
	City      string `json:"city"`
	State     string `json:"state"`
	Postcode  string `json:"postcode"`
	Country   string `json:"country"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// wireLineItem is one order line as the API sends it
type wireLineItem struct {
	SKU      string          `json:"sku"`
	Name     string          `json:"name"`
	Quantity decimal.Decimal `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Total    decimal.Decimal `json:"total"`
}

// wireShippingLine carries the chosen shipping method
type wireShippingLine struct {
	MethodTitle string `json:"method_title"`
}

// wireOrder is one order as the API sends it. Amounts arrive as
// string-encoded decimals.
type wireOrder struct {
	ID                 int64              `json:"id"`
	Number             string             `json:"number"`
	CustomerID         int64              `json:"customer_id"`
	Status             string             `json:"status"`
	DateCreatedGMT     string             `json:"date_created_gmt"`
	PaymentMethodTitle string             `json:"payment_method_title"`
	Billing            wireAddress        `json:"billing"`
	Shipping           wireAddress        `json:"shipping"`
	DiscountTotal      decimal.Decimal    `json:"discount_total"`
	ShippingTotal      decimal.Decimal    `json:"shipping_total"`
	TotalTax           decimal.Decimal    `json:"total_tax"`
	Total              decimal.Decimal    `json:"total"`
	LineItems          []wireLineItem     `json:"line_items"`
	ShippingLines      []wireShippingLine `json:"shipping_lines"`
}

// statusUpdateRequest sets an order's status
type statusUpdateRequest struct {
	Status string `json:"status"`
}

// orderNoteRequest appends a private note to an order's history
type orderNoteRequest struct {
	Note         string `json:"note"`
	CustomerNote bool   `json:"customer_note"`
}

// errorResponse is the API's error envelope
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (a wireAddress) toDomain() storefront.Address {
	return storefront.Address{
		FirstName:  a.FirstName,
		LastName:   a.LastName,
		Company:    a.Company,
		Line1:      a.Address1,
		Line2:      a.Address2,
		City:       a.City,
		State:      a.State,
		PostalCode: a.Postcode,
		Country:    a.Country,
		Email:      a.Email,
		Phone:      a.Phone,
	}
}

func (o *wireOrder) toDomain() storefront.Order {
	order := storefront.Order{
		ID:             formatID(o.ID),
		Number:         o.Number,
		BuyerID:        formatID(o.CustomerID),
		Status:         storefront.OrderStatus(o.Status),
		CreatedAtUTC:   o.DateCreatedGMT,
		PaymentMethod:  o.PaymentMethodTitle,
		Billing:        o.Billing.toDomain(),
		Shipping:       o.Shipping.toDomain(),
		ShippingAmount: o.ShippingTotal,
		TaxAmount:      o.TotalTax,
		DiscountAmount: o.DiscountTotal,
		TotalAmount:    o.Total,
	}
	if order.Number == "" {
		order.Number = order.ID
	}
	if len(o.ShippingLines) > 0 {
		order.ShippingMethod = o.ShippingLines[0].MethodTitle
	}

	subtotal := decimal.Zero
	for _, item := range o.LineItems {
		order.Items = append(order.Items, storefront.OrderItem{
			SKU:       item.SKU,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.Price,
			LineTotal: item.Total,
		})
		subtotal = subtotal.Add(item.Total)
	}
	order.Subtotal = subtotal

	return order
}
