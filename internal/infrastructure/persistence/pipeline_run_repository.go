package persistence

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/storesync/backend/internal/domain/shared"
	"github.com/storesync/backend/internal/domain/staging"
	"github.com/storesync/backend/internal/infrastructure/persistence/models"
)

// GormPipelineRunRepository implements staging.RunRepository using GORM
type GormPipelineRunRepository struct {
	db *gorm.DB
}

// NewGormPipelineRunRepository creates a new GormPipelineRunRepository
func NewGormPipelineRunRepository(db *gorm.DB) *GormPipelineRunRepository {
	return &GormPipelineRunRepository{db: db}
}

// Save inserts a run record
func (r *GormPipelineRunRepository) Save(ctx context.Context, run *staging.PipelineRun) error {
	model := models.PipelineRunModelFromDomain(run)
	return r.db.WithContext(ctx).Create(model).Error
}

// Update saves the final state of a run record
func (r *GormPipelineRunRepository) Update(ctx context.Context, run *staging.PipelineRun) error {
	model := models.PipelineRunModelFromDomain(run)
	result := r.db.WithContext(ctx).Model(model).Select("*").Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// LastSuccessful returns the most recent cleanly finished run of the given type
func (r *GormPipelineRunRepository) LastSuccessful(ctx context.Context, runType staging.RunType) (*staging.PipelineRun, error) {
	var model models.PipelineRunModel
	if err := r.db.WithContext(ctx).
		Where("type = ? AND finished_at IS NOT NULL AND error IS NULL AND failed = 0", string(runType)).
		Order("started_at DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// CountFailedSince counts runs started since the cutoff that did not finish cleanly
func (r *GormPipelineRunRepository) CountFailedSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.PipelineRunModel{}).
		Where("started_at >= ? AND (error IS NOT NULL OR failed > 0)", since).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure GormPipelineRunRepository implements staging.RunRepository
var _ staging.RunRepository = (*GormPipelineRunRepository)(nil)
