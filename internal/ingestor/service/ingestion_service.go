package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"biotech-funding-tracker/internal/entity"
	"biotech-funding-tracker/internal/ingestor/config"
	"biotech-funding-tracker/internal/ingestor/repository"
	"biotech-funding-tracker/pkg/logger"
	"biotech-funding-tracker/pkg/redis"
	"biotech-funding-tracker/pkg/telegram"
	"biotech-funding-tracker/pkg/utils"
)

const seenArticleKeyPrefix = "funding:seen_article:"

// RunSummary aggregates the counters of one ingestion batch.
type RunSummary struct {
	Sources      int      `json:"sources"`
	Articles     int      `json:"articles"`
	Skipped      int      `json:"skipped"`
	Inserted     int      `json:"inserted"`
	Merged       int      `json:"merged"`
	Duplicates   int      `json:"duplicates"`
	NoEvent      int      `json:"no_event"`
	Rejected     int      `json:"rejected"`
	SourceErrors []string `json:"source_errors,omitempty"`
}

// IngestionService runs the ingestion batch: source registry → feed fetcher →
// extraction → dedup/merge → store.
type IngestionService interface {
	Run(ctx context.Context) (*RunSummary, error)
}

type ingestionService struct {
	cfg         *config.Config
	logger      *logger.Logger
	fetcher     FeedFetcher
	extractor   *Extractor
	fundingRepo repository.FundingEventRepository
	runRepo     repository.IngestionRunRepository
	redisClient *redis.Client
	notifier    telegram.Notifier
}

// NewIngestionService creates a new IngestionService. redisClient and
// notifier may be nil; the seen-article cache and the digest are then
// disabled.
func NewIngestionService(
	cfg *config.Config,
	log *logger.Logger,
	fetcher FeedFetcher,
	extractor *Extractor,
	fundingRepo repository.FundingEventRepository,
	runRepo repository.IngestionRunRepository,
	redisClient *redis.Client,
	notifier telegram.Notifier,
) IngestionService {
	return &ingestionService{
		cfg:         cfg,
		logger:      log,
		fetcher:     fetcher,
		extractor:   extractor,
		fundingRepo: fundingRepo,
		runRepo:     runRepo,
		redisClient: redisClient,
		notifier:    notifier,
	}
}

// Run executes one ingestion batch over all configured sources. Source and
// article failures are isolated; only a store I/O failure aborts the batch.
func (s *ingestionService) Run(ctx context.Context) (*RunSummary, error) {
	run := &entity.IngestionRun{
		Status:    entity.RunStatusRunning,
		StartedAt: time.Now(),
	}
	if s.runRepo != nil {
		if err := s.runRepo.Create(ctx, run); err != nil {
			return nil, fmt.Errorf("failed to record ingestion run: %w", err)
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	summary := &RunSummary{Sources: len(s.cfg.Ingestion.Sources)}
	var digest []telegram.DigestItem
	var storeErr error
	var wg sync.WaitGroup
	var mu sync.Mutex

	maxConcurrent := s.cfg.Ingestion.MaxConcurrentSources
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	semaphore := make(chan struct{}, maxConcurrent)

	for _, source := range s.cfg.Ingestion.Sources {
		if !utils.ShouldContinue(ctx, s.logger) {
			break
		}
		source := source
		wg.Add(1)
		utils.GoSafe(func() {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			s.logger.Info("Processing source",
				logger.StringField("source", source.Name),
				logger.StringField("url", source.URL))

			articles, err := s.fetcher.FetchSource(ctx, source)
			if err != nil {
				s.logger.Error("Failed to fetch source, skipping",
					logger.ErrorField(err), logger.StringField("source", source.Name))
				mu.Lock()
				summary.SourceErrors = append(summary.SourceErrors, fmt.Sprintf("%s: %v", source.Name, err))
				mu.Unlock()
				return
			}

			for i := range articles {
				if !utils.ShouldContinue(ctx, s.logger) {
					return
				}
				article := &articles[i]

				if s.isSeen(ctx, article.HashIdentifier()) {
					mu.Lock()
					summary.Skipped++
					mu.Unlock()
					continue
				}

				mu.Lock()
				summary.Articles++
				mu.Unlock()

				candidate, status := s.extractor.Extract(ctx, article)

				switch status {
				case StatusNoEvent:
					mu.Lock()
					summary.NoEvent++
					mu.Unlock()
				case StatusRejected:
					mu.Lock()
					summary.Rejected++
					mu.Unlock()
				case StatusExtracted, StatusFallbackExtracted:
					outcome, err := s.fundingRepo.Upsert(ctx, candidate)
					if err != nil {
						// Store I/O failure is the one fatal condition.
						mu.Lock()
						if storeErr == nil {
							storeErr = err
						}
						mu.Unlock()
						cancel()
						return
					}
					mu.Lock()
					switch outcome {
					case repository.OutcomeInserted:
						summary.Inserted++
						digest = append(digest, telegram.DigestItem{
							Company: candidate.Company,
							Amount:  candidate.FundingAmount,
							Round:   candidate.FundingRound,
							Date:    candidate.FundingDate,
						})
					case repository.OutcomeMerged:
						summary.Merged++
					case repository.OutcomeDuplicate:
						summary.Duplicates++
					case repository.OutcomeRejected:
						summary.Rejected++
					}
					mu.Unlock()
				}

				s.markSeen(ctx, article.HashIdentifier())
			}
		})
	}

	wg.Wait()

	if storeErr != nil {
		s.finishRun(run, entity.RunStatusFailed, summary)
		return summary, fmt.Errorf("ingestion aborted on store failure: %w", storeErr)
	}

	status := entity.RunStatusSuccess
	if len(summary.SourceErrors) > 0 {
		status = entity.RunStatusPartial
	}
	s.finishRun(run, status, summary)

	s.logger.Info("Ingestion run finished",
		logger.StringField("status", status),
		logger.IntField("articles", summary.Articles),
		logger.IntField("inserted", summary.Inserted),
		logger.IntField("merged", summary.Merged),
		logger.IntField("no_event", summary.NoEvent),
		logger.IntField("rejected", summary.Rejected))

	s.sendDigest(digest)

	return summary, nil
}

func (s *ingestionService) finishRun(run *entity.IngestionRun, status string, summary *RunSummary) {
	if s.runRepo == nil {
		return
	}
	now := time.Now()
	run.Status = status
	run.FinishedAt = &now
	if stats, err := json.Marshal(summary); err == nil {
		run.Stats = stats
	}
	// Best effort: the batch outcome stands even if the bookkeeping row
	// cannot be updated.
	if err := s.runRepo.Update(context.Background(), run); err != nil {
		s.logger.Error("Failed to update ingestion run record", logger.ErrorField(err))
	}
}

// isSeen checks the Redis seen-article set. The cache is an optimization:
// identity-key merging keeps re-ingestion idempotent even without it.
func (s *ingestionService) isSeen(ctx context.Context, hash string) bool {
	if s.redisClient == nil {
		return false
	}
	exists, err := s.redisClient.Exists(ctx, seenArticleKeyPrefix+hash).Result()
	if err != nil {
		s.logger.Warn("Failed to check seen-article cache", logger.ErrorField(err))
		return false
	}
	return exists > 0
}

func (s *ingestionService) markSeen(ctx context.Context, hash string) {
	if s.redisClient == nil {
		return
	}
	ttl := s.cfg.Ingestion.SeenArticleTTL
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	if err := s.redisClient.Set(ctx, seenArticleKeyPrefix+hash, 1, ttl).Err(); err != nil {
		s.logger.Warn("Failed to mark article as seen", logger.ErrorField(err))
	}
}

func (s *ingestionService) sendDigest(items []telegram.DigestItem) {
	if s.notifier == nil || len(items) == 0 {
		return
	}
	msg := telegram.FormatFundingDigest(s.cfg.App.Name, items)
	if err := s.notifier.SendMessage(msg); err != nil {
		s.logger.Error("Failed to send funding digest", logger.ErrorField(err))
	}
}
