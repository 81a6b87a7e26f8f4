package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"biotech-funding-tracker/internal/entity"
	ingestorrepo "biotech-funding-tracker/internal/ingestor/repository"
	"biotech-funding-tracker/internal/server/config"
	"biotech-funding-tracker/internal/server/dto"
	"biotech-funding-tracker/internal/server/repository"
	"biotech-funding-tracker/pkg/logger"
)

const modelUnavailableAnswer = "The language model could not process this question right now. Please retry, or use the bulk endpoint to browse the dataset directly."

// QueryService answers natural-language questions over the stored dataset.
// With a configured model provider it delegates row selection and answer
// synthesis to the model; without one it falls back to keyword matching.
type QueryService interface {
	Query(ctx context.Context, question string) (*dto.QueryResponse, error)
}

type queryService struct {
	cfg              *config.Config
	fundingEventRepo repository.FundingEventRepository
	aiRepo           ingestorrepo.AIRepository
	logger           *logger.Logger
}

// NewQueryService creates a new instance of QueryService. aiRepo may be nil
// when no model provider is configured.
func NewQueryService(cfg *config.Config, fundingEventRepo repository.FundingEventRepository, aiRepo ingestorrepo.AIRepository, log *logger.Logger) QueryService {
	return &queryService{
		cfg:              cfg,
		fundingEventRepo: fundingEventRepo,
		aiRepo:           aiRepo,
		logger:           log,
	}
}

// Query runs one question against the dataset. Only a store read failure is
// returned as an error; model failures degrade to an explanatory answer with
// no rows, so a flaky provider never turns into a 500.
func (s *queryService) Query(ctx context.Context, question string) (*dto.QueryResponse, error) {
	events, err := s.fundingEventRepo.FindAll(ctx, s.cfg.Query.MaxContextRows, false)
	if err != nil {
		return nil, err
	}

	if s.aiRepo == nil {
		return s.keywordFallback(question, events), nil
	}

	queryCtx := ctx
	if s.cfg.AI.Timeout > 0 {
		var cancel context.CancelFunc
		queryCtx, cancel = context.WithTimeout(ctx, s.cfg.AI.Timeout)
		defer cancel()
	}

	start := time.Now()
	result, err := s.aiRepo.AnswerDatasetQuery(queryCtx, question, renderDataset(events))
	if err != nil {
		s.logger.Error("model query failed",
			logger.ErrorField(err),
			logger.StringField("question", question),
		)
		return &dto.QueryResponse{
			Answer: modelUnavailableAnswer,
			Rows:   []entity.FundingEvent{},
			Count:  0,
		}, nil
	}

	s.logger.Info("model query answered",
		logger.IntField("context_rows", len(events)),
		logger.IntField("matched_rows", len(result.RowIndexes)),
		logger.Field("duration", time.Since(start)),
	)

	rows := make([]entity.FundingEvent, 0, len(result.RowIndexes))
	matched := 0
	for _, idx := range result.RowIndexes {
		if idx < 0 || idx >= len(events) {
			s.logger.Warn("model returned out-of-range row index", logger.IntField("index", idx))
			continue
		}
		matched++
		if s.cfg.Query.MaxAnswerRows <= 0 || len(rows) < s.cfg.Query.MaxAnswerRows {
			rows = append(rows, events[idx])
		}
	}

	answer := strings.TrimSpace(result.Answer)
	if answer == "" {
		answer = fmt.Sprintf("Found %d matching funding round(s).", matched)
	}

	return &dto.QueryResponse{
		Answer: answer,
		Rows:   rows,
		Count:  matched,
	}, nil
}

// keywordFallback matches rows whose fields contain every significant token
// of the question. It is deliberately simple; it exists so the endpoint keeps
// working when no provider is configured.
func (s *queryService) keywordFallback(question string, events []entity.FundingEvent) *dto.QueryResponse {
	tokens := significantTokens(question)

	rows := make([]entity.FundingEvent, 0)
	matched := 0
	for _, ev := range events {
		if !rowMatches(&ev, tokens) {
			continue
		}
		matched++
		if s.cfg.Query.MaxAnswerRows <= 0 || len(rows) < s.cfg.Query.MaxAnswerRows {
			rows = append(rows, ev)
		}
	}

	return &dto.QueryResponse{
		Answer: fmt.Sprintf("Found %d matching funding round(s) for: %s", matched, strings.TrimSpace(question)),
		Rows:   rows,
		Count:  matched,
	}
}

func significantTokens(question string) []string {
	fields := strings.FieldsFunc(strings.ToLower(question), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	})
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) > 2 {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

func rowMatches(ev *entity.FundingEvent, tokens []string) bool {
	if len(tokens) == 0 {
		return false
	}
	haystack := strings.ToLower(strings.Join([]string{
		ev.Company, ev.FundingDate, ev.FundingRound, ev.FundingAmount,
		ev.Investors, ev.TherapeuticArea, ev.TherapeuticModality,
		ev.LeadClinicalStage, ev.SmallMoleculeModality,
		ev.HQCity, ev.HQRegion, ev.Description,
	}, " "))
	for _, tok := range tokens {
		if !strings.Contains(haystack, tok) {
			return false
		}
	}
	return true
}

// renderDataset writes one pipe-delimited line per record so the prompt can
// reference rows by index.
func renderDataset(events []entity.FundingEvent) string {
	var b strings.Builder
	for i, ev := range events {
		b.WriteString(fmt.Sprintf("%d|%s|%s|%s|%s|%s|%s|%s|%s\n",
			i,
			pipeSafe(ev.Company),
			pipeSafe(ev.FundingDate),
			pipeSafe(ev.FundingRound),
			pipeSafe(ev.FundingAmount),
			pipeSafe(ev.Investors),
			pipeSafe(ev.TherapeuticArea),
			pipeSafe(ev.HQCity),
			pipeSafe(ev.HQRegion),
		))
	}
	return b.String()
}

func pipeSafe(s string) string {
	return strings.ReplaceAll(s, "|", "/")
}
