package sources

import (
	"context"
	"net/url"

	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog/log"

	"daybrief/harvester/internal/images"
	"daybrief/harvester/internal/models"
)

// RSSAdapter translates syndication feeds (RSS and Atom) into canonical
// article records.
type RSSAdapter struct {
	parser   *gofeed.Parser
	resolver *images.Resolver
}

// NewRSSAdapter wires a feed parser onto the shared client.
func NewRSSAdapter(client *Client, resolver *images.Resolver) *RSSAdapter {
	parser := gofeed.NewParser()
	parser.Client = client.HTTPClient()
	parser.UserAgent = client.UserAgent()

	return &RSSAdapter{
		parser:   parser,
		resolver: resolver,
	}
}

// FetchFeed returns up to maxItems articles from feedURL in document order.
// A malformed or unreachable feed logs a warning and yields an empty slice;
// it never aborts the calling batch.
func (a *RSSAdapter) FetchFeed(ctx context.Context, feedURL string, maxItems int) []models.Article {
	log.Info().Str("feed", feedURL).Msg("Fetching RSS feed")

	feed, err := a.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		log.Warn().Err(err).Str("feed", feedURL).Msg("Feed has issues, skipping")
		return nil
	}

	source := feedHost(feedURL)

	items := feed.Items
	if len(items) > maxItems {
		items = items[:maxItems]
	}

	articles := make([]models.Article, 0, len(items))
	for _, item := range items {
		articles = append(articles, a.buildArticle(item, source))
	}

	log.Info().Int("count", len(articles)).Str("feed", feedURL).Msg("Extracted articles")
	return articles
}

func (a *RSSAdapter) buildArticle(item *gofeed.Item, source string) models.Article {
	title := item.Title
	if title == "" {
		title = models.PlaceholderTitle
	}

	return models.Article{
		Title:     title,
		URL:       item.Link,
		Published: item.Published,
		Summary:   item.Description,
		Source:    source,
		Tags:      append([]string(nil), item.Categories...),
		Image:     a.resolver.Resolve(entryView(item)),
	}
}

// entryView maps a gofeed item onto the resolver's entry shape. Media RSS
// fields live in the item's extension map; enclosures and the feed-level
// image carry over directly.
func entryView(item *gofeed.Item) images.Entry {
	entry := images.Entry{
		Link:    item.Link,
		Summary: item.Description,
		Custom:  map[string]string{},
	}

	if item.Content != "" {
		entry.Contents = []string{item.Content}
	}

	if media, ok := item.Extensions["media"]; ok {
		for _, ext := range media["content"] {
			entry.MediaContents = append(entry.MediaContents, images.Attachment{
				URL:  ext.Attrs["url"],
				Type: ext.Attrs["type"],
			})
		}
		for _, ext := range media["thumbnail"] {
			entry.MediaThumbnails = append(entry.MediaThumbnails, images.Attachment{
				URL:  ext.Attrs["url"],
				Type: ext.Attrs["type"],
			})
		}
	}

	for _, enc := range item.Enclosures {
		if enc == nil {
			continue
		}
		entry.Enclosures = append(entry.Enclosures, images.Attachment{
			URL:  enc.URL,
			Type: enc.Type,
		})
	}

	if item.Image != nil {
		entry.Custom["image"] = item.Image.URL
	}
	for field, value := range item.Custom {
		if _, exists := entry.Custom[field]; !exists {
			entry.Custom[field] = value
		}
	}

	return entry
}

// feedHost extracts the host portion of a feed URL for the source field. The
// raw URL is returned when it does not parse.
func feedHost(feedURL string) string {
	u, err := url.Parse(feedURL)
	if err != nil || u.Host == "" {
		return feedURL
	}
	return u.Host
}
