package service

import (
	"context"
	"regexp"
	"strings"
	"time"

	"biotech-funding-tracker/internal/entity"
	"biotech-funding-tracker/internal/ingestor/dto"
	"biotech-funding-tracker/internal/ingestor/repository"
	"biotech-funding-tracker/pkg/logger"
	"biotech-funding-tracker/pkg/utils"
)

// ExtractionStatus is the terminal state of extracting one article.
type ExtractionStatus string

const (
	// StatusExtracted means the language model produced a candidate.
	StatusExtracted ExtractionStatus = "extracted"
	// StatusFallbackExtracted means the heuristic path produced a candidate.
	StatusFallbackExtracted ExtractionStatus = "fallback_extracted"
	// StatusNoEvent means the article is not a funding announcement.
	StatusNoEvent ExtractionStatus = "no_event"
	// StatusRejected means no candidate carried enough identity to store.
	StatusRejected ExtractionStatus = "rejected"
)

// Extractor converts one article into at most one funding event candidate.
// When the AI repository is nil or its call fails, a reduced heuristic keeps
// the pipeline producing output at degraded quality.
type Extractor struct {
	aiRepo  repository.AIRepository
	logger  *logger.Logger
	timeout time.Duration
}

// NewExtractor creates an Extractor. aiRepo may be nil when no language-model
// capability is configured.
func NewExtractor(aiRepo repository.AIRepository, log *logger.Logger, timeout time.Duration) *Extractor {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Extractor{
		aiRepo:  aiRepo,
		logger:  log,
		timeout: timeout,
	}
}

// Extract runs the two-tier extraction for one article. It never returns an
// error: a single-article provider failure is logged and routed to the
// heuristic fallback.
func (x *Extractor) Extract(ctx context.Context, article *dto.Article) (*entity.FundingEvent, ExtractionStatus) {
	if x.aiRepo == nil {
		return x.extractFallback(article)
	}

	callCtx, cancel := context.WithTimeout(ctx, x.timeout)
	defer cancel()

	result, err := x.aiRepo.ExtractFundingEvents(callCtx, article)
	if err != nil {
		x.logger.Warn("Extraction provider failed, falling back to heuristic",
			logger.ErrorField(err), logger.StringField("title", article.Title))
		return x.extractFallback(article)
	}

	if len(result.Items) == 0 {
		return nil, StatusNoEvent
	}
	if len(result.Items) > 1 {
		x.logger.Debug("Provider returned multiple items, keeping the first",
			logger.IntField("items", len(result.Items)), logger.StringField("link", article.Link))
	}

	candidate := candidateFromItem(&result.Items[0], article)
	if !candidate.Identifiable() {
		return nil, StatusRejected
	}
	return candidate, StatusExtracted
}

// candidateFromItem coerces untrusted model output into a validated
// candidate. Every field passes through string cleaning; nothing beyond
// string coercion is trusted.
func candidateFromItem(item *dto.FundingItem, article *dto.Article) *entity.FundingEvent {
	return &entity.FundingEvent{
		Company:               utils.SafeText(item.Company),
		FundingDate:           utils.NormalizeDate(utils.SafeText(item.FundingDate)),
		FundingRound:          utils.SafeText(item.FundingRound),
		FundingAmount:         utils.SafeText(item.FundingAmount),
		Investors:             utils.SafeText(item.Investors),
		Description:           utils.SafeText(item.Description),
		TherapeuticArea:       utils.SafeText(item.TherapeuticArea),
		TherapeuticModality:   utils.SafeText(item.TherapeuticModality),
		LeadClinicalStage:     utils.SafeText(item.LeadClinicalStage),
		SmallMoleculeModality: normalizeYesNo(item.SmallMoleculeModality),
		HQCity:                utils.SafeText(item.HQCity),
		HQRegion:              utils.SafeText(item.HQRegion),
		SourceURL:             article.Link,
	}
}

// extractFallback populates company from the title and description from the
// summary. All other fields stay empty rather than guessed.
func (x *Extractor) extractFallback(article *dto.Article) (*entity.FundingEvent, ExtractionStatus) {
	candidate := &entity.FundingEvent{
		Company:     heuristicCompany(article.Title),
		Description: article.Summary,
		SourceURL:   article.Link,
	}
	if !candidate.Identifiable() {
		return nil, StatusRejected
	}
	return candidate, StatusFallbackExtracted
}

// Funding headlines usually lead with the company name followed by a raise
// verb ("Acme Bio Raises $45M Series B ...").
var (
	raiseVerbPattern  = regexp.MustCompile(`(?i)^(.{2,80}?)\s+(?:raises|raised|secures|secured|closes|closed|lands|landed|nets|netted|nabs|banks|bags|announces|completes|grabs|scores|attracts|pulls in|reels in|collects)\b`)
	titlePrefixFiller = regexp.MustCompile(`(?i)^(?:breaking|exclusive|update\d*|report)\s*:\s*`)
)

func heuristicCompany(title string) string {
	title = utils.CollapseWhitespace(title)
	title = titlePrefixFiller.ReplaceAllString(title, "")

	m := raiseVerbPattern.FindStringSubmatch(title)
	if m == nil {
		return ""
	}
	company := strings.TrimSpace(m[1])
	company = strings.Trim(company, ",;:-–")
	// Whole sentences before the verb are descriptions, not names.
	if len(strings.Fields(company)) > 6 {
		return ""
	}
	return company
}

func normalizeYesNo(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "y", "true":
		return "Yes"
	case "no", "n", "false":
		return "No"
	default:
		return ""
	}
}
