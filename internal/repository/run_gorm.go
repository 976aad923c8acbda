package repository

import (
	"context"
	"fmt"

	"catalogsync/internal/models"

	"gorm.io/gorm"
)

// GormRuns stores import run summaries.
type GormRuns struct {
	db *gorm.DB
}

func NewGormRuns(db *gorm.DB) *GormRuns {
	return &GormRuns{db: db}
}

func (r *GormRuns) Create(ctx context.Context, run *models.ImportRun) error {
	if err := r.db.WithContext(ctx).Create(run).Error; err != nil {
		return fmt.Errorf("failed to create import run: %w", err)
	}
	return nil
}

func (r *GormRuns) Save(ctx context.Context, run *models.ImportRun) error {
	if err := r.db.WithContext(ctx).Save(run).Error; err != nil {
		return fmt.Errorf("failed to save import run: %w", err)
	}
	return nil
}

// List returns the most recent runs first.
func (r *GormRuns) List(ctx context.Context, limit int) ([]models.ImportRun, error) {
	var runs []models.ImportRun
	query := r.db.WithContext(ctx).Order("started_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("failed to list import runs: %w", err)
	}
	return runs, nil
}

func (r *GormRuns) Get(ctx context.Context, id string) (*models.ImportRun, error) {
	var run models.ImportRun
	if err := r.db.WithContext(ctx).First(&run, "id = ?", id).Error; err != nil {
		return nil, translateLookup(err, "get import run")
	}
	return &run, nil
}

var _ RunRepository = (*GormRuns)(nil)
