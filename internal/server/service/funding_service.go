package service

import (
	"context"

	"biotech-funding-tracker/internal/entity"
	"biotech-funding-tracker/internal/server/dto"
	"biotech-funding-tracker/internal/server/repository"
	"biotech-funding-tracker/pkg/logger"
)

// FundingService defines the interface for bulk funding event reads.
type FundingService interface {
	GetFundingEvents(ctx context.Context, limit int, order string) (*dto.FundingListResponse, error)
}

type fundingService struct {
	fundingEventRepo repository.FundingEventRepository
	logger           *logger.Logger
}

// NewFundingService creates a new instance of FundingService.
func NewFundingService(fundingEventRepo repository.FundingEventRepository, log *logger.Logger) FundingService {
	return &fundingService{
		fundingEventRepo: fundingEventRepo,
		logger:           log,
	}
}

// GetFundingEvents returns up to limit rows plus the total dataset count.
// The count always reflects the whole table so clients can page or detect
// truncation. order accepts "funding_date" for reverse-chronological output;
// anything else keeps insertion order.
func (s *fundingService) GetFundingEvents(ctx context.Context, limit int, order string) (*dto.FundingListResponse, error) {
	rows, err := s.fundingEventRepo.FindAll(ctx, limit, order == "funding_date")
	if err != nil {
		s.logger.Error("failed to fetch funding events", logger.ErrorField(err))
		return nil, err
	}

	count, err := s.fundingEventRepo.Count(ctx)
	if err != nil {
		s.logger.Error("failed to count funding events", logger.ErrorField(err))
		return nil, err
	}

	if rows == nil {
		rows = []entity.FundingEvent{}
	}

	return &dto.FundingListResponse{
		Rows:  rows,
		Count: count,
	}, nil
}
