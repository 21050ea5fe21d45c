package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daybrief/harvester/internal/images"
	"daybrief/harvester/internal/models"
)

const testFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:media="http://search.yahoo.com/mrss/">
<channel>
  <title>Mock Tech News</title>
  <link>https://mocktech.com</link>
  <item>
    <title>Article with media content</title>
    <link>https://mocktech.com/article1</link>
    <pubDate>Mon, 13 Jan 2025 12:00:00 GMT</pubDate>
    <description>Article with media content image</description>
    <category>technology</category>
    <category>ai</category>
    <media:content url="https://mocktech.com/media1.jpg" type="image/jpeg"/>
  </item>
  <item>
    <title>Article with inline image</title>
    <link>https://mocktech.com/article2</link>
    <pubDate>Mon, 13 Jan 2025 11:00:00 GMT</pubDate>
    <description>&lt;p&gt;content &lt;img src="https://mocktech.com/html-img.jpg"&gt; more&lt;/p&gt;</description>
  </item>
  <item>
    <link>https://mocktech.com/article3</link>
    <pubDate>Mon, 13 Jan 2025 10:00:00 GMT</pubDate>
    <description>No title, no image</description>
  </item>
  <item>
    <title>Beyond the per-feed budget</title>
    <link>https://mocktech.com/article4</link>
  </item>
</channel>
</rss>`

func newTestRSSAdapter(srv *httptest.Server) *RSSAdapter {
	client := &Client{http: srv.Client(), userAgent: "test-agent"}
	resolver := images.NewResolver(images.Options{Client: srv.Client()})
	return NewRSSAdapter(client, resolver)
}

func TestFetchFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(testFeed))
	}))
	defer srv.Close()

	adapter := newTestRSSAdapter(srv)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	articles := adapter.FetchFeed(ctx, srv.URL+"/feed.xml", 3)
	require.Len(t, articles, 3, "takes the first maxItems entries in document order")

	first := articles[0]
	assert.Equal(t, "Article with media content", first.Title)
	assert.Equal(t, "https://mocktech.com/article1", first.URL)
	assert.Equal(t, "Mon, 13 Jan 2025 12:00:00 GMT", first.Published)
	assert.Equal(t, []string{"technology", "ai"}, first.Tags)
	assert.Equal(t, "https://mocktech.com/media1.jpg", first.Image, "media:content wins the cascade")

	second := articles[1]
	assert.Equal(t, "https://mocktech.com/html-img.jpg", second.Image, "inline img in description")

	third := articles[2]
	assert.Equal(t, models.PlaceholderTitle, third.Title)
	assert.Equal(t, "", third.Image)

	host := hostOf(t, srv.URL)
	for _, article := range articles {
		assert.Equal(t, host, article.Source)
	}
}

func TestFetchFeedMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("this is not a feed document"))
	}))
	defer srv.Close()

	adapter := newTestRSSAdapter(srv)

	articles := adapter.FetchFeed(context.Background(), srv.URL, 5)
	assert.Empty(t, articles, "malformed feed yields an empty slice, not a failure")
}

func TestFetchFeedUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusInternalServerError)
	}))
	defer srv.Close()

	adapter := newTestRSSAdapter(srv)

	articles := adapter.FetchFeed(context.Background(), srv.URL, 5)
	assert.Empty(t, articles)
}

func TestFeedHost(t *testing.T) {
	assert.Equal(t, "feeds.bbci.co.uk", feedHost("http://feeds.bbci.co.uk/news/world/rss.xml"))
	assert.Equal(t, "no scheme here", feedHost("no scheme here"))
}
