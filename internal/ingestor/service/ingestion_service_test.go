package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"biotech-funding-tracker/internal/entity"
	"biotech-funding-tracker/internal/ingestor/config"
	"biotech-funding-tracker/internal/ingestor/dto"
	"biotech-funding-tracker/internal/ingestor/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	articles map[string][]dto.Article
	err      error
}

func (f *fakeFetcher) FetchSource(ctx context.Context, source config.Source) ([]dto.Article, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.articles[source.Name], nil
}

// memoryFundingRepo mirrors the identity-key upsert semantics in memory.
type memoryFundingRepo struct {
	mu     sync.Mutex
	events map[string]*entity.FundingEvent
	err    error
}

func newMemoryFundingRepo() *memoryFundingRepo {
	return &memoryFundingRepo{events: map[string]*entity.FundingEvent{}}
}

func (m *memoryFundingRepo) Upsert(ctx context.Context, candidate *entity.FundingEvent) (repository.UpsertOutcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	if !candidate.Identifiable() {
		return repository.OutcomeRejected, nil
	}
	key := candidate.ComputeIdentityKey()
	existing, ok := m.events[key]
	if !ok {
		copied := *candidate
		m.events[key] = &copied
		return repository.OutcomeInserted, nil
	}
	if existing.Merge(candidate) {
		return repository.OutcomeMerged, nil
	}
	return repository.OutcomeDuplicate, nil
}

func (m *memoryFundingRepo) FindByIdentityKey(ctx context.Context, key string) (*entity.FundingEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.events[key], nil
}

func (m *memoryFundingRepo) FindAll(ctx context.Context, limit int) ([]entity.FundingEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entity.FundingEvent
	for _, ev := range m.events {
		out = append(out, *ev)
	}
	return out, nil
}

func (m *memoryFundingRepo) Count(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.events)), nil
}

func newTestIngestionService(t *testing.T, cfg *config.Config, fetcher FeedFetcher, aiRepo repository.AIRepository, fundingRepo repository.FundingEventRepository) IngestionService {
	t.Helper()
	log := testLogger(t)
	extractor := NewExtractor(aiRepo, log, 0)
	return NewIngestionService(cfg, log, fetcher, extractor, fundingRepo, nil, nil, nil)
}

func ingestionConfig(sources ...config.Source) *config.Config {
	return &config.Config{
		Ingestion: config.Ingestion{
			MaxConcurrentSources: 2,
			Sources:              sources,
		},
	}
}

func TestRun_InsertsExtractedEvents(t *testing.T) {
	fetcher := &fakeFetcher{articles: map[string][]dto.Article{
		"feed": {
			{Title: "Acme Bio Raises $45M Series B", Link: "https://example.com/a", Summary: "Acme raised."},
			{Title: "FDA approves new therapy", Link: "https://example.com/b", Summary: "Not funding."},
		},
	}}
	aiRepo := &routingAIRepo{}
	store := newMemoryFundingRepo()

	svc := newTestIngestionService(t, ingestionConfig(config.Source{Name: "feed"}), fetcher, aiRepo, store)
	summary, err := svc.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, summary.Articles)
	assert.Equal(t, 1, summary.Inserted)
	assert.Equal(t, 1, summary.NoEvent)
	assert.Equal(t, 0, summary.Rejected)

	count, _ := store.Count(context.Background())
	assert.EqualValues(t, 1, count)
}

func TestRun_SecondRunIsIdempotent(t *testing.T) {
	fetcher := &fakeFetcher{articles: map[string][]dto.Article{
		"feed": {
			{Title: "Acme Bio Raises $45M Series B", Link: "https://example.com/a"},
		},
	}}
	store := newMemoryFundingRepo()
	svc := newTestIngestionService(t, ingestionConfig(config.Source{Name: "feed"}), fetcher, &routingAIRepo{}, store)

	first, err := svc.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, first.Inserted)

	second, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, second.Inserted)
	assert.Equal(t, 1, second.Duplicates)

	count, _ := store.Count(context.Background())
	assert.EqualValues(t, 1, count)
}

func TestRun_SourceFailureIsIsolated(t *testing.T) {
	calls := map[string][]dto.Article{
		"good": {{Title: "Acme Bio Raises $45M Series B", Link: "https://example.com/a"}},
	}
	fetcher := &selectiveFetcher{articles: calls, failing: "bad"}
	store := newMemoryFundingRepo()
	cfg := ingestionConfig(config.Source{Name: "bad"}, config.Source{Name: "good"})

	svc := newTestIngestionService(t, cfg, fetcher, &routingAIRepo{}, store)
	summary, err := svc.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Inserted)
	require.Len(t, summary.SourceErrors, 1)
	assert.Contains(t, summary.SourceErrors[0], "bad")
}

func TestRun_StoreFailureAbortsBatch(t *testing.T) {
	fetcher := &fakeFetcher{articles: map[string][]dto.Article{
		"feed": {
			{Title: "Acme Bio Raises $45M Series B", Link: "https://example.com/a"},
			{Title: "Beta Therapeutics Secures $120M", Link: "https://example.com/b"},
		},
	}}
	store := newMemoryFundingRepo()
	store.err = errors.New("connection refused")

	svc := newTestIngestionService(t, ingestionConfig(config.Source{Name: "feed"}), fetcher, &routingAIRepo{}, store)
	_, err := svc.Run(context.Background())

	assert.Error(t, err)
}

func TestRun_UnidentifiableCandidatesRejected(t *testing.T) {
	fetcher := &fakeFetcher{articles: map[string][]dto.Article{
		"feed": {
			// No link and no recognizable company.
			{Title: "Funding news roundup"},
		},
	}}
	store := newMemoryFundingRepo()

	svc := newTestIngestionService(t, ingestionConfig(config.Source{Name: "feed"}), fetcher, nil, store)
	summary, err := svc.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Rejected)
	count, _ := store.Count(context.Background())
	assert.EqualValues(t, 0, count)
}

// routingAIRepo emulates a model that reports a funding item when the title
// looks like a raise and no items otherwise.
type routingAIRepo struct{}

func (r *routingAIRepo) ExtractFundingEvents(ctx context.Context, article *dto.Article) (*dto.FundingExtractionResult, error) {
	company := heuristicCompany(article.Title)
	if company == "" {
		return &dto.FundingExtractionResult{}, nil
	}
	return &dto.FundingExtractionResult{
		Items: []dto.FundingItem{{Company: company, FundingRound: "Series B", FundingDate: "2024-03-15"}},
	}, nil
}

func (r *routingAIRepo) AnswerDatasetQuery(ctx context.Context, question, dataset string) (*dto.DatasetQueryResult, error) {
	return &dto.DatasetQueryResult{}, nil
}

type selectiveFetcher struct {
	articles map[string][]dto.Article
	failing  string
}

func (f *selectiveFetcher) FetchSource(ctx context.Context, source config.Source) ([]dto.Article, error) {
	if source.Name == f.failing {
		return nil, errors.New("feed unreachable")
	}
	return f.articles[source.Name], nil
}
