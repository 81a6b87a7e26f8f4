package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"biotech-funding-tracker/internal/ingestor/config"
	"biotech-funding-tracker/internal/ingestor/dto"
	"biotech-funding-tracker/pkg/logger"
	"biotech-funding-tracker/pkg/utils"

	"github.com/PuerkitoBio/goquery"
	"github.com/mauidude/go-readability"
	"github.com/mmcdole/gofeed"
	"github.com/patrickmn/go-cache"
)

// FeedFetcher produces article references from one configured source.
type FeedFetcher interface {
	FetchSource(ctx context.Context, source config.Source) ([]dto.Article, error)
}

type feedFetcher struct {
	cfg           *config.Ingestion
	logger        *logger.Logger
	client        *http.Client
	inmemoryCache *cache.Cache
}

// NewFeedFetcher creates a new FeedFetcher.
func NewFeedFetcher(cfg *config.Ingestion, log *logger.Logger) FeedFetcher {
	timeout := cfg.FetchTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &feedFetcher{
		cfg:           cfg,
		logger:        log,
		client:        &http.Client{Timeout: timeout},
		inmemoryCache: cache.New(30*time.Minute, 10*time.Minute),
	}
}

// FetchSource parses the source's RSS/Atom feed into article references,
// newest first, bounded by the lookback window and the per-source cap. A
// fetch or parse failure is returned to the caller, which isolates it to
// this source.
func (f *feedFetcher) FetchSource(ctx context.Context, source config.Source) ([]dto.Article, error) {
	fp := gofeed.NewParser()

	fetchCtx := ctx
	if f.cfg.FetchTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, f.cfg.FetchTimeout)
		defer cancel()
	}

	feed, err := fp.ParseURLWithContext(source.URL, fetchCtx)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed %s: %w", source.URL, err)
	}

	sort.Slice(feed.Items, func(i, j int) bool {
		if feed.Items[i].PublishedParsed == nil || feed.Items[j].PublishedParsed == nil {
			return false
		}
		return feed.Items[i].PublishedParsed.After(*feed.Items[j].PublishedParsed)
	})

	maxArticles := source.MaxArticles
	if maxArticles <= 0 {
		maxArticles = f.cfg.MaxArticlesPerSource
	}

	var cutoff time.Time
	if f.cfg.LookbackDays > 0 {
		cutoff = time.Now().AddDate(0, 0, -f.cfg.LookbackDays)
	}

	var articles []dto.Article
	for _, item := range feed.Items {
		if maxArticles > 0 && len(articles) >= maxArticles {
			break
		}
		if item.Link == "" {
			continue
		}
		if !cutoff.IsZero() && item.PublishedParsed != nil && item.PublishedParsed.Before(cutoff) {
			continue
		}

		article := dto.Article{
			SourceName:  source.Name,
			Title:       utils.CleanToValidUTF8(item.Title),
			Link:        item.Link,
			Published:   item.Published,
			PublishedAt: item.PublishedParsed,
			Summary:     utils.SafeText(stripHTML(item.Description)),
		}

		if f.cfg.FetchArticleBody {
			content, err := f.fetchArticleContent(ctx, item.Link)
			if err != nil {
				f.logger.Warn("Failed to fetch article body, using feed summary",
					logger.ErrorField(err), logger.StringField("url", item.Link))
			} else {
				article.Content = content
			}
		}
		if article.Content == "" {
			article.Content = article.Summary
		}

		articles = append(articles, article)
	}

	return articles, nil
}

// fetchArticleContent downloads an article and extracts readable text.
// Results are memoized per process so overlapping feeds fetch each URL once.
func (f *feedFetcher) fetchArticleContent(ctx context.Context, url string) (string, error) {
	if cached, found := f.inmemoryCache.Get(url); found {
		return cached.(string), nil
	}

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request for article: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch article content: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch article content, status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	doc, err := readability.NewDocument(string(body))
	if err != nil {
		return "", fmt.Errorf("failed to parse article content: %w", err)
	}
	content := doc.Content()

	docHTML, err := goquery.NewDocumentFromReader(bytes.NewReader([]byte(content)))
	if err != nil {
		return "", fmt.Errorf("failed to parse extracted content: %w", err)
	}

	text := utils.SafeText(utils.CollapseWhitespace(docHTML.Text()))
	f.inmemoryCache.Set(url, text, cache.DefaultExpiration)
	return text, nil
}

func stripHTML(s string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	return utils.CollapseWhitespace(doc.Text())
}
