package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/storesync/backend/internal/domain/ledger"
)

// LedgerAccountModel is the persistence model for a ledger customer account.
// Accounts are master data owned by the ledger; the pipeline only reads them.
type LedgerAccountModel struct {
	ID        string    `gorm:"type:varchar(20);primary_key"`
	Name      string    `gorm:"type:varchar(100);not null"`
	Email     string    `gorm:"type:varchar(100);index"`
	IsActive  bool      `gorm:"not null;default:true"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (LedgerAccountModel) TableName() string {
	return "ledger_accounts"
}

// ToDomain converts the persistence model to a domain Account.
func (m *LedgerAccountModel) ToDomain() *ledger.Account {
	return &ledger.Account{
		ID:       m.ID,
		Name:     m.Name,
		Email:    m.Email,
		IsActive: m.IsActive,
	}
}

// LedgerItemModel is the persistence model for a ledger catalog item.
type LedgerItemModel struct {
	Code         string    `gorm:"type:varchar(30);primary_key"`
	Description  string    `gorm:"type:varchar(100)"`
	Discontinued bool      `gorm:"not null;default:false"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (LedgerItemModel) TableName() string {
	return "ledger_items"
}

// ToDomain converts the persistence model to a domain Item.
func (m *LedgerItemModel) ToDomain() *ledger.Item {
	return &ledger.Item{
		Code:         m.Code,
		Description:  m.Description,
		Discontinued: m.Discontinued,
	}
}

// LedgerDocumentModel is the persistence model for a ledger order document
// header. Lines live in LedgerDocumentLineModel; header, totals and lines
// are always written in one transaction.
type LedgerDocumentModel struct {
	ID           string `gorm:"type:varchar(40);primary_key"`
	TicketNumber int64  `gorm:"not null;uniqueIndex"`
	AccountID    string `gorm:"type:varchar(20);not null;index"`
	ReferenceID  string `gorm:"type:varchar(50);not null;index"`
	OrderDate    string `gorm:"type:varchar(10);not null"`

	ShipName       string `gorm:"type:varchar(40)"`
	ShipLine1      string `gorm:"type:varchar(40)"`
	ShipLine2      string `gorm:"type:varchar(40)"`
	ShipLine3      string `gorm:"type:varchar(40)"`
	ShipCity       string `gorm:"type:varchar(20)"`
	ShipState      string `gorm:"type:varchar(10)"`
	ShipPostalCode string `gorm:"type:varchar(15)"`
	ShipCountry    string `gorm:"type:varchar(20)"`
	ShipPhone      string `gorm:"type:varchar(25)"`

	ShippingMethod string `gorm:"type:varchar(50)"`
	PaymentMethod  string `gorm:"type:varchar(50)"`

	Subtotal       decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	ShippingAmount decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	TaxAmount      decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`

	ShippedAt *time.Time `gorm:"index"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (LedgerDocumentModel) TableName() string {
	return "ledger_documents"
}

// AddressComplete reports whether the header carries every shipping field
// a carrier needs. Line 2/3, country and phone are optional.
func (m *LedgerDocumentModel) AddressComplete() bool {
	return m.ShipName != "" && m.ShipLine1 != "" && m.ShipCity != "" &&
		m.ShipState != "" && m.ShipPostalCode != ""
}

// LedgerDocumentLineModel is one line of a ledger order document.
type LedgerDocumentLineModel struct {
	DocumentID    string          `gorm:"type:varchar(40);primary_key"`
	LineSeq       int             `gorm:"primary_key;autoIncrement:false"`
	ItemCode      string          `gorm:"type:varchar(30);not null;index"`
	Description   string          `gorm:"type:varchar(100)"`
	Quantity      decimal.Decimal `gorm:"type:decimal(15,4);not null;default:0"`
	UnitPrice     decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	ExtendedPrice decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
}

// TableName returns the table name for GORM
func (LedgerDocumentLineModel) TableName() string {
	return "ledger_document_lines"
}

// ToDomain converts the persistence model to a domain DocumentLine.
func (m *LedgerDocumentLineModel) ToDomain() ledger.DocumentLine {
	return ledger.DocumentLine{
		ItemCode:      m.ItemCode,
		Description:   m.Description,
		Quantity:      m.Quantity,
		UnitPrice:     m.UnitPrice,
		ExtendedPrice: m.ExtendedPrice,
	}
}
