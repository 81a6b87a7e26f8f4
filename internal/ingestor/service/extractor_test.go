package service

import (
	"context"
	"errors"
	"testing"

	"biotech-funding-tracker/internal/ingestor/dto"
	"biotech-funding-tracker/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAIRepository struct {
	extractResult *dto.FundingExtractionResult
	extractErr    error
	queryResult   *dto.DatasetQueryResult
	queryErr      error
}

func (f *fakeAIRepository) ExtractFundingEvents(ctx context.Context, article *dto.Article) (*dto.FundingExtractionResult, error) {
	return f.extractResult, f.extractErr
}

func (f *fakeAIRepository) AnswerDatasetQuery(ctx context.Context, question, dataset string) (*dto.DatasetQueryResult, error) {
	return f.queryResult, f.queryErr
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("error", "json")
	require.NoError(t, err)
	return log
}

func TestExtract_ModelSuccess(t *testing.T) {
	aiRepo := &fakeAIRepository{
		extractResult: &dto.FundingExtractionResult{
			Items: []dto.FundingItem{
				{
					Company:               "Acme Bio",
					FundingDate:           "March 15, 2024",
					FundingRound:          "Series B",
					FundingAmount:         "$45M",
					Investors:             "Foo Ventures; Bar Capital",
					TherapeuticArea:       "oncology",
					SmallMoleculeModality: "yes",
				},
			},
		},
	}
	extractor := NewExtractor(aiRepo, testLogger(t), 0)

	article := &dto.Article{Title: "Acme Bio Raises $45M", Link: "https://example.com/a"}
	candidate, status := extractor.Extract(context.Background(), article)

	require.Equal(t, StatusExtracted, status)
	require.NotNil(t, candidate)
	assert.Equal(t, "Acme Bio", candidate.Company)
	assert.Equal(t, "2024-03-15", candidate.FundingDate)
	assert.Equal(t, "Series B", candidate.FundingRound)
	assert.Equal(t, "Yes", candidate.SmallMoleculeModality)
	assert.Equal(t, "https://example.com/a", candidate.SourceURL)
}

func TestExtract_NoItemsMeansNoEvent(t *testing.T) {
	aiRepo := &fakeAIRepository{extractResult: &dto.FundingExtractionResult{}}
	extractor := NewExtractor(aiRepo, testLogger(t), 0)

	candidate, status := extractor.Extract(context.Background(), &dto.Article{
		Title: "FDA approves new therapy",
		Link:  "https://example.com/b",
	})

	assert.Equal(t, StatusNoEvent, status)
	assert.Nil(t, candidate)
}

func TestExtract_MultipleItemsKeepsFirst(t *testing.T) {
	aiRepo := &fakeAIRepository{
		extractResult: &dto.FundingExtractionResult{
			Items: []dto.FundingItem{
				{Company: "First Bio"},
				{Company: "Second Bio"},
			},
		},
	}
	extractor := NewExtractor(aiRepo, testLogger(t), 0)

	candidate, status := extractor.Extract(context.Background(), &dto.Article{Link: "https://example.com/c"})

	require.Equal(t, StatusExtracted, status)
	assert.Equal(t, "First Bio", candidate.Company)
}

func TestExtract_ProviderErrorFallsBackToHeuristic(t *testing.T) {
	aiRepo := &fakeAIRepository{extractErr: errors.New("rate limited")}
	extractor := NewExtractor(aiRepo, testLogger(t), 0)

	article := &dto.Article{
		Title:   "Acme Bio Raises $45M Series B to Advance Oncology Pipeline",
		Link:    "https://example.com/d",
		Summary: "Acme Bio announced a $45M Series B round.",
	}
	candidate, status := extractor.Extract(context.Background(), article)

	require.Equal(t, StatusFallbackExtracted, status)
	assert.Equal(t, "Acme Bio", candidate.Company)
	assert.Equal(t, article.Summary, candidate.Description)
	assert.Equal(t, article.Link, candidate.SourceURL)
	// The heuristic never guesses beyond company and description.
	assert.Empty(t, candidate.FundingAmount)
	assert.Empty(t, candidate.FundingRound)
}

func TestExtract_NilProviderUsesHeuristic(t *testing.T) {
	extractor := NewExtractor(nil, testLogger(t), 0)

	candidate, status := extractor.Extract(context.Background(), &dto.Article{
		Title: "Beta Therapeutics Secures $120M",
		Link:  "https://example.com/e",
	})

	require.Equal(t, StatusFallbackExtracted, status)
	assert.Equal(t, "Beta Therapeutics", candidate.Company)
}

func TestExtract_UnidentifiableCandidateRejected(t *testing.T) {
	aiRepo := &fakeAIRepository{
		extractResult: &dto.FundingExtractionResult{
			Items: []dto.FundingItem{{FundingAmount: "$10M"}},
		},
	}
	extractor := NewExtractor(aiRepo, testLogger(t), 0)

	// No company from the model and no article link leaves nothing to anchor
	// the record on.
	candidate, status := extractor.Extract(context.Background(), &dto.Article{Title: "Funding news"})

	assert.Equal(t, StatusRejected, status)
	assert.Nil(t, candidate)
}

func TestHeuristicCompany(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		expected string
	}{
		{
			name:     "raise verb",
			title:    "Acme Bio Raises $45M Series B",
			expected: "Acme Bio",
		},
		{
			name:     "secures verb",
			title:    "Beta Therapeutics secures $120M to expand trials",
			expected: "Beta Therapeutics",
		},
		{
			name:     "prefix filler stripped",
			title:    "Exclusive: Gamma Pharma nabs $30M seed round",
			expected: "Gamma Pharma",
		},
		{
			name:     "no raise verb",
			title:    "FDA approves new gene therapy",
			expected: "",
		},
		{
			name:     "sentence before verb is not a name",
			title:    "After a turbulent year in the public markets the biotech sector finally raises hopes",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, heuristicCompany(tt.title))
		})
	}
}

func TestNormalizeYesNo(t *testing.T) {
	assert.Equal(t, "Yes", normalizeYesNo("yes"))
	assert.Equal(t, "Yes", normalizeYesNo(" TRUE "))
	assert.Equal(t, "No", normalizeYesNo("No"))
	assert.Equal(t, "", normalizeYesNo("maybe"))
	assert.Equal(t, "", normalizeYesNo(""))
}
