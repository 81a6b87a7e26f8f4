package repository

import (
	"context"
	"fmt"

	"biotech-funding-tracker/internal/entity"

	"gorm.io/gorm"
)

// IngestionRunRepository persists ingestion run records.
type IngestionRunRepository interface {
	Create(ctx context.Context, run *entity.IngestionRun) error
	Update(ctx context.Context, run *entity.IngestionRun) error
}

type ingestionRunRepository struct {
	db *gorm.DB
}

// NewIngestionRunRepository creates a new instance of IngestionRunRepository.
func NewIngestionRunRepository(db *gorm.DB) IngestionRunRepository {
	return &ingestionRunRepository{db: db}
}

func (r *ingestionRunRepository) Create(ctx context.Context, run *entity.IngestionRun) error {
	if err := r.db.WithContext(ctx).Create(run).Error; err != nil {
		return fmt.Errorf("failed to create ingestion run: %w", err)
	}
	return nil
}

func (r *ingestionRunRepository) Update(ctx context.Context, run *entity.IngestionRun) error {
	if err := r.db.WithContext(ctx).Save(run).Error; err != nil {
		return fmt.Errorf("failed to update ingestion run: %w", err)
	}
	return nil
}
