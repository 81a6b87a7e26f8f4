package service

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"biotech-funding-tracker/internal/ingestor/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rssFixture(items string) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
<title>Biotech News</title>
<link>https://example.com</link>
<description>Test feed</description>
%s
</channel>
</rss>`, items)
}

func rssItem(title, link string, published time.Time) string {
	return fmt.Sprintf(`<item>
<title>%s</title>
<link>%s</link>
<description>&lt;p&gt;%s summary&lt;/p&gt;</description>
<pubDate>%s</pubDate>
</item>`, title, link, title, published.Format(time.RFC1123Z))
}

func TestFetchSource(t *testing.T) {
	now := time.Now()
	feed := rssFixture(
		rssItem("Old Bio Raises $5M", "https://example.com/old", now.AddDate(0, 0, -30)) +
			rssItem("Acme Bio Raises $45M", "https://example.com/acme", now.AddDate(0, 0, -1)) +
			rssItem("Beta Therapeutics Secures $120M", "https://example.com/beta", now.AddDate(0, 0, -2)),
	)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, feed)
	}))
	defer srv.Close()

	fetcher := NewFeedFetcher(&config.Ingestion{
		LookbackDays:         14,
		MaxArticlesPerSource: 10,
	}, testLogger(t))

	articles, err := fetcher.FetchSource(context.Background(), config.Source{
		Name: "Test Feed",
		URL:  srv.URL,
	})

	require.NoError(t, err)
	// The 30-day-old item falls outside the lookback window.
	require.Len(t, articles, 2)
	// Newest first.
	assert.Equal(t, "Acme Bio Raises $45M", articles[0].Title)
	assert.Equal(t, "Beta Therapeutics Secures $120M", articles[1].Title)
	assert.Equal(t, "Test Feed", articles[0].SourceName)
	assert.Equal(t, "https://example.com/acme", articles[0].Link)
	// HTML is stripped from the feed summary.
	assert.Equal(t, "Acme Bio Raises $45M summary", articles[0].Summary)
	// Without body fetching the content falls back to the summary.
	assert.Equal(t, articles[0].Summary, articles[0].Content)
}

func TestFetchSource_PerSourceCap(t *testing.T) {
	now := time.Now()
	var items string
	for i := 0; i < 5; i++ {
		items += rssItem(fmt.Sprintf("Company %d Raises $1M", i), fmt.Sprintf("https://example.com/%d", i), now.Add(-time.Duration(i)*time.Hour))
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, rssFixture(items))
	}))
	defer srv.Close()

	fetcher := NewFeedFetcher(&config.Ingestion{MaxArticlesPerSource: 10}, testLogger(t))

	articles, err := fetcher.FetchSource(context.Background(), config.Source{
		Name:        "Capped Feed",
		URL:         srv.URL,
		MaxArticles: 2,
	})

	require.NoError(t, err)
	assert.Len(t, articles, 2)
}

func TestFetchSource_MalformedFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "this is not a feed")
	}))
	defer srv.Close()

	fetcher := NewFeedFetcher(&config.Ingestion{}, testLogger(t))

	_, err := fetcher.FetchSource(context.Background(), config.Source{Name: "Broken", URL: srv.URL})
	assert.Error(t, err)
}
