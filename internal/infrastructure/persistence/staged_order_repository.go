package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/storesync/backend/internal/domain/shared"
	"github.com/storesync/backend/internal/domain/staging"
	"github.com/storesync/backend/internal/infrastructure/persistence/models"
)

// GormStagedOrderRepository implements staging.Repository using GORM
type GormStagedOrderRepository struct {
	db *gorm.DB
}

// NewGormStagedOrderRepository creates a new GormStagedOrderRepository
func NewGormStagedOrderRepository(db *gorm.DB) *GormStagedOrderRepository {
	return &GormStagedOrderRepository{db: db}
}

// Insert stages a new order. The unique index on upstream_order_id is the
// idempotency guard; a duplicate maps to shared.ErrAlreadyExists.
func (r *GormStagedOrderRepository) Insert(ctx context.Context, order *staging.StagedOrder) error {
	model := models.StagedOrderModelFromDomain(order)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if isUniqueViolation(err) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Update saves the full state of an existing staged order
func (r *GormStagedOrderRepository) Update(ctx context.Context, order *staging.StagedOrder) error {
	model := models.StagedOrderModelFromDomain(order)
	result := r.db.WithContext(ctx).Model(model).Select("*").Omit("created_at").Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByID finds a staged order by its ID
func (r *GormStagedOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*staging.StagedOrder, error) {
	var model models.StagedOrderModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByUpstreamOrderID finds a staged order by the upstream order id
func (r *GormStagedOrderRepository) FindByUpstreamOrderID(ctx context.Context, upstreamOrderID string) (*staging.StagedOrder, error) {
	var model models.StagedOrderModel
	if err := r.db.WithContext(ctx).
		Where("upstream_order_id = ?", upstreamOrderID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ExistsByUpstreamOrderID checks whether an upstream order is already staged
func (r *GormStagedOrderRepository) ExistsByUpstreamOrderID(ctx context.Context, upstreamOrderID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.StagedOrderModel{}).
		Where("upstream_order_id = ?", upstreamOrderID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListPending returns unapplied staged orders, oldest first
func (r *GormStagedOrderRepository) ListPending(ctx context.Context) ([]*staging.StagedOrder, error) {
	var orderModels []models.StagedOrderModel
	if err := r.db.WithContext(ctx).
		Where("is_applied = ?", false).
		Order("created_at ASC").
		Find(&orderModels).Error; err != nil {
		return nil, err
	}
	return toDomainOrders(orderModels), nil
}

// ListByBatch returns all staged orders carrying the given batch tag
func (r *GormStagedOrderRepository) ListByBatch(ctx context.Context, batchTag string) ([]*staging.StagedOrder, error) {
	var orderModels []models.StagedOrderModel
	if err := r.db.WithContext(ctx).
		Where("batch_tag = ?", batchTag).
		Order("created_at ASC").
		Find(&orderModels).Error; err != nil {
		return nil, err
	}
	return toDomainOrders(orderModels), nil
}

// ListApplied returns applied staged orders for the fulfillment sweep
func (r *GormStagedOrderRepository) ListApplied(ctx context.Context) ([]*staging.StagedOrder, error) {
	var orderModels []models.StagedOrderModel
	if err := r.db.WithContext(ctx).
		Where("is_applied = ?", true).
		Order("applied_at ASC").
		Find(&orderModels).Error; err != nil {
		return nil, err
	}
	return toDomainOrders(orderModels), nil
}

// MarkApplied stamps the ledger identifiers with a compare-based update.
// Only a row that is still unapplied is written; a second call loses the
// race and gets shared.ErrAlreadyApplied.
func (r *GormStagedOrderRepository) MarkApplied(ctx context.Context, id uuid.UUID, documentID, ticketNumber string, at time.Time) error {
	updates := map[string]any{
		"is_applied":           true,
		"ledger_document_id":   documentID,
		"ledger_ticket_number": ticketNumber,
		"applied_at":           at,
		"validation_error":     nil,
	}
	result := r.db.WithContext(ctx).
		Model(&models.StagedOrderModel{}).
		Where("id = ? AND is_applied = ?", id, false).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).
			Model(&models.StagedOrderModel{}).
			Where("id = ?", id).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return shared.ErrNotFound
		}
		return shared.ErrAlreadyApplied
	}
	return nil
}

// PendingStats summarizes the unapplied backlog
func (r *GormStagedOrderRepository) PendingStats(ctx context.Context) (staging.PendingStats, error) {
	var stats staging.PendingStats
	if err := r.db.WithContext(ctx).
		Model(&models.StagedOrderModel{}).
		Where("is_applied = ?", false).
		Count(&stats.Count).Error; err != nil {
		return staging.PendingStats{}, err
	}
	if stats.Count == 0 {
		return stats, nil
	}

	var oldest models.StagedOrderModel
	if err := r.db.WithContext(ctx).
		Where("is_applied = ?", false).
		Order("created_at ASC").
		First(&oldest).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return stats, nil
		}
		return staging.PendingStats{}, err
	}
	stats.OldestCreatedAt = &oldest.CreatedAt
	return stats, nil
}

// FailureStats summarizes validation-failed records
func (r *GormStagedOrderRepository) FailureStats(ctx context.Context, staleBefore time.Time) (staging.FailureStats, error) {
	var stats staging.FailureStats
	failed := r.db.WithContext(ctx).
		Model(&models.StagedOrderModel{}).
		Where("is_applied = ? AND validation_error IS NOT NULL", false)

	if err := failed.Session(&gorm.Session{}).Count(&stats.Total).Error; err != nil {
		return staging.FailureStats{}, err
	}
	if err := failed.Session(&gorm.Session{}).
		Where("created_at < ?", staleBefore).
		Count(&stats.Stale).Error; err != nil {
		return staging.FailureStats{}, err
	}
	return stats, nil
}

func toDomainOrders(orderModels []models.StagedOrderModel) []*staging.StagedOrder {
	orders := make([]*staging.StagedOrder, len(orderModels))
	for i := range orderModels {
		orders[i] = orderModels[i].ToDomain()
	}
	return orders
}

// isUniqueViolation reports whether err is a unique constraint violation,
// across the postgres driver, GORM's translated error and the sqlite
// driver used in tests.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "duplicate key value")
}

// Ensure GormStagedOrderRepository implements staging.Repository
var _ staging.Repository = (*GormStagedOrderRepository)(nil)
