package repository

import (
	"context"

	"github.com/yukikurage/vuln-kanban-api/internal/database"
	"github.com/yukikurage/vuln-kanban-api/internal/models"
	"gorm.io/gorm"
)

// GormActivityRepository is a GORM implementation of ActivityRepository
type GormActivityRepository struct {
	db *gorm.DB
}

// NewActivityRepository creates a new ActivityRepository
func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &GormActivityRepository{db: db}
}

// Create appends an activity entry
func (r *GormActivityRepository) Create(ctx context.Context, activity *models.Activity) error {
	return r.db.WithContext(ctx).Create(activity).Error
}

// ListByOwner returns the owner's entries, newest first
func (r *GormActivityRepository) ListByOwner(ctx context.Context, ownerID string, filter ActivityFilter) ([]models.Activity, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Activity{}).Where("owner_id = ?", ownerID)
	if filter.TaskID != "" {
		query = query.Where("task_id = ?", filter.TaskID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var activities []models.Activity
	if err := query.
		Order("created_at DESC").
		Order("id DESC").
		Scopes(database.Paginate(filter.Offset, filter.Limit)).
		Find(&activities).Error; err != nil {
		return nil, 0, err
	}

	return activities, total, nil
}
