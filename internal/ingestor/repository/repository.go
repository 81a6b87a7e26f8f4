package repository

import (
	"context"

	"biotech-funding-tracker/internal/ingestor/dto"
)

// AIRepository is the language-model capability boundary. Implementations
// translate prompts into structured results; every failure mode (timeout,
// auth, quota, malformed output) surfaces as an error the caller routes to
// its fallback path.
type AIRepository interface {
	ExtractFundingEvents(ctx context.Context, article *dto.Article) (*dto.FundingExtractionResult, error)
	AnswerDatasetQuery(ctx context.Context, question, dataset string) (*dto.DatasetQueryResult, error)
}
