package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storesync/backend/internal/domain/staging"
)

// StagedOrderModel is the persistence model for the StagedOrder domain entity.
type StagedOrderModel struct {
	ID                  uuid.UUID `gorm:"type:uuid;primary_key"`
	BatchTag            string    `gorm:"type:varchar(50);index"`
	UpstreamOrderID     string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_staged_orders_upstream_id"`
	UpstreamOrderNumber string    `gorm:"type:varchar(50)"`

	LedgerAccountID *string `gorm:"type:varchar(20);index"`
	BuyerEmail      string  `gorm:"type:varchar(50)"`
	UpstreamBuyerID string  `gorm:"type:varchar(50);index"`

	OrderDate          string `gorm:"type:varchar(10)"`
	OrderDateUTC       string `gorm:"type:varchar(32)"`
	OrderDateTimeLocal string `gorm:"type:varchar(32)"`

	UpstreamStatus string `gorm:"type:varchar(30)"`
	PaymentMethod  string `gorm:"type:varchar(50)"`
	ShippingMethod string `gorm:"type:varchar(50)"`

	Subtotal       decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	ShippingAmount decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	TaxAmount      decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`

	ShipName       string `gorm:"type:varchar(40)"`
	ShipLine1      string `gorm:"type:varchar(40)"`
	ShipLine2      string `gorm:"type:varchar(40)"`
	ShipLine3      string `gorm:"type:varchar(40)"`
	ShipCity       string `gorm:"type:varchar(20)"`
	ShipState      string `gorm:"type:varchar(10)"`
	ShipPostalCode string `gorm:"type:varchar(15)"`
	ShipCountry    string `gorm:"type:varchar(20)"`
	ShipPhone      string `gorm:"type:varchar(25)"`

	LineItemsJSON string `gorm:"type:text"`

	IsValidated        bool    `gorm:"not null;default:false;index"`
	ValidationError    *string `gorm:"type:varchar(500)"`
	IsApplied          bool    `gorm:"not null;default:false;index"`
	LedgerDocumentID   *string `gorm:"type:varchar(40)"`
	LedgerTicketNumber *string `gorm:"type:varchar(20)"`

	CreatedAt time.Time `gorm:"not null"`
	AppliedAt *time.Time
}

// TableName returns the table name for GORM
func (StagedOrderModel) TableName() string {
	return "staged_orders"
}

// ToDomain converts the persistence model to a domain StagedOrder entity.
func (m *StagedOrderModel) ToDomain() *staging.StagedOrder {
	return &staging.StagedOrder{
		ID:                  m.ID,
		BatchTag:            m.BatchTag,
		UpstreamOrderID:     m.UpstreamOrderID,
		UpstreamOrderNumber: m.UpstreamOrderNumber,
		LedgerAccountID:     m.LedgerAccountID,
		BuyerEmail:          m.BuyerEmail,
		UpstreamBuyerID:     m.UpstreamBuyerID,
		OrderDate:           m.OrderDate,
		OrderDateUTC:        m.OrderDateUTC,
		OrderDateTimeLocal:  m.OrderDateTimeLocal,
		UpstreamStatus:      m.UpstreamStatus,
		PaymentMethod:       m.PaymentMethod,
		ShippingMethod:      m.ShippingMethod,
		Subtotal:            m.Subtotal,
		ShippingAmount:      m.ShippingAmount,
		TaxAmount:           m.TaxAmount,
		DiscountAmount:      m.DiscountAmount,
		TotalAmount:         m.TotalAmount,
		ShipTo: staging.ShippingAddress{
			Name:       m.ShipName,
			Line1:      m.ShipLine1,
			Line2:      m.ShipLine2,
			Line3:      m.ShipLine3,
			City:       m.ShipCity,
			State:      m.ShipState,
			PostalCode: m.ShipPostalCode,
			Country:    m.ShipCountry,
			Phone:      m.ShipPhone,
		},
		LineItemsJSON:      m.LineItemsJSON,
		IsValidated:        m.IsValidated,
		ValidationError:    m.ValidationError,
		IsApplied:          m.IsApplied,
		LedgerDocumentID:   m.LedgerDocumentID,
		LedgerTicketNumber: m.LedgerTicketNumber,
		CreatedAt:          m.CreatedAt,
		AppliedAt:          m.AppliedAt,
	}
}

// StagedOrderModelFromDomain populates a persistence model from a domain StagedOrder.
func StagedOrderModelFromDomain(o *staging.StagedOrder) *StagedOrderModel {
	return &StagedOrderModel{
		ID:                  o.ID,
		BatchTag:            o.BatchTag,
		UpstreamOrderID:     o.UpstreamOrderID,
		UpstreamOrderNumber: o.UpstreamOrderNumber,
		LedgerAccountID:     o.LedgerAccountID,
		BuyerEmail:          o.BuyerEmail,
		UpstreamBuyerID:     o.UpstreamBuyerID,
		OrderDate:           o.OrderDate,
		OrderDateUTC:        o.OrderDateUTC,
		OrderDateTimeLocal:  o.OrderDateTimeLocal,
		UpstreamStatus:      o.UpstreamStatus,
		PaymentMethod:       o.PaymentMethod,
		ShippingMethod:      o.ShippingMethod,
		Subtotal:            o.Subtotal,
		ShippingAmount:      o.ShippingAmount,
		TaxAmount:           o.TaxAmount,
		DiscountAmount:      o.DiscountAmount,
		TotalAmount:         o.TotalAmount,
		ShipName:            o.ShipTo.Name,
		ShipLine1:           o.ShipTo.Line1,
		ShipLine2:           o.ShipTo.Line2,
		ShipLine3:           o.ShipTo.Line3,
		ShipCity:            o.ShipTo.City,
		ShipState:           o.ShipTo.State,
		ShipPostalCode:      o.ShipTo.PostalCode,
		ShipCountry:         o.ShipTo.Country,
		ShipPhone:           o.ShipTo.Phone,
		LineItemsJSON:       o.LineItemsJSON,
		IsValidated:         o.IsValidated,
		ValidationError:     o.ValidationError,
		IsApplied:           o.IsApplied,
		LedgerDocumentID:    o.LedgerDocumentID,
		LedgerTicketNumber:  o.LedgerTicketNumber,
		CreatedAt:           o.CreatedAt,
		AppliedAt:           o.AppliedAt,
	}
}

// CustomerMappingModel is the persistence model for the CustomerMapping domain entity.
type CustomerMappingModel struct {
	LedgerAccountID string    `gorm:"type:varchar(20);primary_key"`
	UpstreamBuyerID string    `gorm:"type:varchar(50);not null;index"`
	IsActive        bool      `gorm:"not null;default:true"`
	CreatedAt       time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CustomerMappingModel) TableName() string {
	return "customer_mappings"
}

// ToDomain converts the persistence model to a domain CustomerMapping entity.
func (m *CustomerMappingModel) ToDomain() *staging.CustomerMapping {
	return &staging.CustomerMapping{
		LedgerAccountID: m.LedgerAccountID,
		UpstreamBuyerID: m.UpstreamBuyerID,
		IsActive:        m.IsActive,
		CreatedAt:       m.CreatedAt,
	}
}

// CustomerMappingModelFromDomain populates a persistence model from a domain CustomerMapping.
func CustomerMappingModelFromDomain(c *staging.CustomerMapping) *CustomerMappingModel {
	return &CustomerMappingModel{
		LedgerAccountID: c.LedgerAccountID,
		UpstreamBuyerID: c.UpstreamBuyerID,
		IsActive:        c.IsActive,
		CreatedAt:       c.CreatedAt,
	}
}

// PipelineRunModel is the persistence model for the PipelineRun domain entity.
type PipelineRunModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	Type       string    `gorm:"type:varchar(20);not null;index"`
	StartedAt  time.Time `gorm:"not null;index"`
	FinishedAt *time.Time
	Processed  int     `gorm:"not null;default:0"`
	Succeeded  int     `gorm:"not null;default:0"`
	Failed     int     `gorm:"not null;default:0"`
	Error      *string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (PipelineRunModel) TableName() string {
	return "pipeline_runs"
}

// ToDomain converts the persistence model to a domain PipelineRun entity.
func (m *PipelineRunModel) ToDomain() *staging.PipelineRun {
	return &staging.PipelineRun{
		ID:         m.ID,
		Type:       staging.RunType(m.Type),
		StartedAt:  m.StartedAt,
		FinishedAt: m.FinishedAt,
		Processed:  m.Processed,
		Succeeded:  m.Succeeded,
		Failed:     m.Failed,
		Error:      m.Error,
	}
}

// PipelineRunModelFromDomain populates a persistence model from a domain PipelineRun.
func PipelineRunModelFromDomain(r *staging.PipelineRun) *PipelineRunModel {
	return &PipelineRunModel{
		ID:         r.ID,
		Type:       string(r.Type),
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		Processed:  r.Processed,
		Succeeded:  r.Succeeded,
		Failed:     r.Failed,
		Error:      r.Error,
	}
}
