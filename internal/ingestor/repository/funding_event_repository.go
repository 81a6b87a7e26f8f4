package repository

import (
	"context"
	"errors"
	"fmt"

	"biotech-funding-tracker/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UpsertOutcome describes what Upsert did with a candidate.
type UpsertOutcome string

const (
	OutcomeInserted  UpsertOutcome = "inserted"
	OutcomeMerged    UpsertOutcome = "merged"
	OutcomeDuplicate UpsertOutcome = "duplicate"
	OutcomeRejected  UpsertOutcome = "rejected"
)

// FundingEventRepository defines the interface for the funding event store.
type FundingEventRepository interface {
	Upsert(ctx context.Context, candidate *entity.FundingEvent) (UpsertOutcome, error)
	FindByIdentityKey(ctx context.Context, key string) (*entity.FundingEvent, error)
	FindAll(ctx context.Context, limit int) ([]entity.FundingEvent, error)
	Count(ctx context.Context) (int64, error)
}

type fundingEventRepository struct {
	db *gorm.DB
}

// NewFundingEventRepository creates a new instance of FundingEventRepository.
func NewFundingEventRepository(db *gorm.DB) FundingEventRepository {
	return &fundingEventRepository{db: db}
}

// Upsert inserts the candidate as a new record, merges it into the existing
// record with the same identity key, or discards it. Candidates lacking both
// company and source URL are rejected before touching the store.
func (r *fundingEventRepository) Upsert(ctx context.Context, candidate *entity.FundingEvent) (UpsertOutcome, error) {
	if !candidate.Identifiable() {
		return OutcomeRejected, nil
	}
	candidate.IdentityKey = candidate.ComputeIdentityKey()

	outcome := OutcomeDuplicate
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing entity.FundingEvent
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("identity_key = ?", candidate.IdentityKey).
			First(&existing).Error

		if errors.Is(err, gorm.ErrRecordNotFound) {
			if err := tx.Create(candidate).Error; err != nil {
				return fmt.Errorf("failed to insert funding event: %w", err)
			}
			outcome = OutcomeInserted
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to look up funding event: %w", err)
		}

		if existing.Merge(candidate) {
			if err := tx.Save(&existing).Error; err != nil {
				return fmt.Errorf("failed to merge funding event: %w", err)
			}
			outcome = OutcomeMerged
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return outcome, nil
}

// FindByIdentityKey returns the record with the given identity key, or nil.
func (r *fundingEventRepository) FindByIdentityKey(ctx context.Context, key string) (*entity.FundingEvent, error) {
	var event entity.FundingEvent
	err := r.db.WithContext(ctx).Where("identity_key = ?", key).First(&event).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find funding event: %w", err)
	}
	return &event, nil
}

// FindAll returns records in insertion order, most recently ingested last.
// A non-positive limit returns everything.
func (r *fundingEventRepository) FindAll(ctx context.Context, limit int) ([]entity.FundingEvent, error) {
	var events []entity.FundingEvent
	q := r.db.WithContext(ctx).Order("id ASC")
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
