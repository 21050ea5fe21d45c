package harvest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daybrief/harvester/internal/config"
)

const harvestFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>Feed</title>
  <item>
    <title>Feed story one</title>
    <link>https://news.example.com/one</link>
    <pubDate>Mon, 13 Jan 2025 09:00:00 GMT</pubDate>
    <description>one</description>
  </item>
  <item>
    <title>Feed story two</title>
    <link>https://news.example.com/two</link>
    <pubDate>Mon, 13 Jan 2025 08:00:00 GMT</pubDate>
    <description>two</description>
  </item>
  <item>
    <title>Shared story</title>
    <link>https://shared.example.com/story</link>
    <pubDate>Mon, 13 Jan 2025 07:00:00 GMT</pubDate>
    <description>also delivered by the API</description>
  </item>
</channel>
</rss>`

const harvestTrendingPage = `<html><body>
  <div><a href="/p/trending-one">A trending headline to keep</a></div>
</body></html>`

const harvestAPIPayload = `{
  "data": {
    "news_list": [
      {
        "hash_id": "api1",
        "title": "API story",
        "content": "teaser",
        "source_name": "Wire",
        "source_url": "https://api.example.com/story",
        "image_url": "https://assets.example.com/api1.jpg",
        "created_at": "2025-01-13T10:00:00Z",
        "tags": []
      },
      {
        "hash_id": "api2",
        "title": "Shared story from the API",
        "content": "dup",
        "source_name": "Wire",
        "source_url": "https://shared.example.com/story",
        "image_url": "https://assets.example.com/api2.jpg",
        "created_at": "2025-01-13T06:00:00Z",
        "tags": []
      }
    ]
  }
}`

func TestHarvesterRun(t *testing.T) {
	feedSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(harvestFeed))
	}))
	defer feedSrv.Close()

	// One source failing entirely must not abort the batch.
	failSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer failSrv.Close()

	trendingSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(harvestTrendingPage))
	}))
	defer trendingSrv.Close()

	apiSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(harvestAPIPayload))
	}))
	defer apiSrv.Close()

	cfg := config.DefaultConfig()
	cfg.Feeds = []string{feedSrv.URL, failSrv.URL}
	cfg.PublicationFeeds = []string{failSrv.URL}
	cfg.TrendingURL = trendingSrv.URL + "/tag/trending"
	cfg.APIBaseURL = apiSrv.URL
	cfg.APICategories = []config.Category{{Name: "top_stories", MaxLimit: 5}}
	cfg.RateLimitDelay = 10 * time.Millisecond
	cfg.RequestTimeout = 5 * time.Second
	cfg.WorkerCount = 3
	cfg.TargetCount = 5
	cfg.TrustedDomains = nil

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	out := New(cfg).Run(ctx)

	// 3 feed + 1 trending + 2 API records, one URL shared between feed and
	// API, truncated to the 5 most recent.
	require.Len(t, out, cfg.TargetCount)

	seen := map[string]struct{}{}
	for _, article := range out {
		require.NotEmpty(t, article.URL)
		_, dup := seen[article.URL]
		assert.False(t, dup, "duplicate url %s survived", article.URL)
		seen[article.URL] = struct{}{}
	}

	urls := make([]string, 0, len(out))
	for _, article := range out {
		urls = append(urls, article.URL)
	}
	assert.Contains(t, urls, "https://news.example.com/one")
	assert.Contains(t, urls, "https://api.example.com/story")
	assert.Contains(t, urls, "https://shared.example.com/story")
}

func TestHarvesterRunAllSourcesDown(t *testing.T) {
	failSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer failSrv.Close()

	cfg := config.DefaultConfig()
	cfg.Feeds = []string{failSrv.URL}
	cfg.PublicationFeeds = nil
	cfg.TrendingURL = failSrv.URL
	cfg.APIBaseURL = failSrv.URL
	cfg.APICategories = []config.Category{{Name: "top_stories", MaxLimit: 5}}
	cfg.RateLimitDelay = 10 * time.Millisecond
	cfg.RequestTimeout = 5 * time.Second

	out := New(cfg).Run(context.Background())
	assert.Empty(t, out)
}
