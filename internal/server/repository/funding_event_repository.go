package repository

import (
	"context"
	"fmt"

	"biotech-funding-tracker/internal/entity"

	"gorm.io/gorm"
)

// FundingEventRepository is the read side of the funding event store used by
// the API service. Mutation belongs to the ingestion pipeline.
type FundingEventRepository interface {
	FindAll(ctx context.Context, limit int, orderByDate bool) ([]entity.FundingEvent, error)
	Count(ctx context.Context) (int64, error)
}

type fundingEventRepository struct {
	db *gorm.DB
}

// NewFundingEventRepository creates a new instance of FundingEventRepository.
func NewFundingEventRepository(db *gorm.DB) FundingEventRepository {
	return &fundingEventRepository{db: db}
}

// FindAll returns records in insertion order, or reverse-chronological when
// orderByDate is set. A non-positive limit returns everything.
func (r *fundingEventRepository) FindAll(ctx context.Context, limit int, orderByDate bool) ([]entity.FundingEvent, error) {
	var events []entity.FundingEvent
	q := r.db.WithContext(ctx)
	if orderByDate {
		// Funding dates are ISO-normalized strings, so lexicographic order
		// matches chronological order.
		q = q.Order("funding_date DESC, id ASC")
	} else {
		q = q.Order("id ASC")
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to list funding events: %w", err)
	}
	return events, nil
}

// Count returns the total number of stored funding events.
func (r *fundingEventRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entity.FundingEvent{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count funding events: %w", err)
	}
	return count, nil
}
