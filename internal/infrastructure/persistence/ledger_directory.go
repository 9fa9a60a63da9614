package persistence

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/storesync/backend/internal/domain/ledger"
	"github.com/storesync/backend/internal/infrastructure/persistence/models"
)

// GormAccountDirectory implements ledger.AccountDirectory using GORM
type GormAccountDirectory struct {
	db *gorm.DB
}

// NewGormAccountDirectory creates a new GormAccountDirectory
func NewGormAccountDirectory(db *gorm.DB) *GormAccountDirectory {
	return &GormAccountDirectory{db: db}
}

// FindByID finds a ledger account by its ID
func (r *GormAccountDirectory) FindByID(ctx context.Context, accountID string) (*ledger.Account, error) {
	var model models.LedgerAccountModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", accountID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ledger.ErrAccountNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByEmail finds a ledger account by email, case-insensitively. When
// several accounts carry the email the oldest one wins.
func (r *GormAccountDirectory) FindByEmail(ctx context.Context, email string) (*ledger.Account, error) {
	var model models.LedgerAccountModel
	if err := r.db.WithContext(ctx).
		Where("lower(email) = lower(?)", email).
		Order("created_at ASC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ledger.ErrAccountNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// GormItemCatalog implements ledger.ItemCatalog using GORM
type GormItemCatalog struct {
	db *gorm.DB
}

// NewGormItemCatalog creates a new GormItemCatalog
func NewGormItemCatalog(db *gorm.DB) *GormItemCatalog {
	return &GormItemCatalog{db: db}
}

// FindByCode finds a catalog item by its code, case-insensitively
func (r *GormItemCatalog) FindByCode(ctx context.Context, code string) (*ledger.Item, error) {
	var model models.LedgerItemModel
	if err := r.db.WithContext(ctx).
		Where("lower(code) = lower(?)", code).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ledger.ErrItemNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Ensure the directory types implement their ports
var (
	_ ledger.AccountDirectory = (*GormAccountDirectory)(nil)
	_ ledger.ItemCatalog      = (*GormItemCatalog)(nil)
)
