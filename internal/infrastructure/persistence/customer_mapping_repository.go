package persistence

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/storesync/backend/internal/domain/shared"
	"github.com/storesync/backend/internal/domain/staging"
	"github.com/storesync/backend/internal/infrastructure/persistence/models"
)

// GormCustomerMappingRepository implements staging.CustomerMappingRepository using GORM
type GormCustomerMappingRepository struct {
	db *gorm.DB
}

// NewGormCustomerMappingRepository creates a new GormCustomerMappingRepository
func NewGormCustomerMappingRepository(db *gorm.DB) *GormCustomerMappingRepository {
	return &GormCustomerMappingRepository{db: db}
}

// Save creates or updates a mapping
func (r *GormCustomerMappingRepository) Save(ctx context.Context, mapping *staging.CustomerMapping) error {
	model := models.CustomerMappingModelFromDomain(mapping)
	return r.db.WithContext(ctx).Save(model).Error
}

// FindActiveByUpstreamBuyerID finds the active mapping for an upstream buyer
func (r *GormCustomerMappingRepository) FindActiveByUpstreamBuyerID(ctx context.Context, upstreamBuyerID string) (*staging.CustomerMapping, error) {
	var model models.CustomerMappingModel
	if err := r.db.WithContext(ctx).
		Where("upstream_buyer_id = ? AND is_active = ?", upstreamBuyerID, true).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Ensure GormCustomerMappingRepository implements staging.CustomerMappingRepository
var _ staging.CustomerMappingRepository = (*GormCustomerMappingRepository)(nil)
