package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"daybrief/harvester/internal/config"
	"daybrief/harvester/internal/models"
)

const maxAPIResponseBytes = 4 << 20 // 4MB

// APIAdapter pulls pre-aggregated articles from the news aggregation API.
// Unlike the feed sources, the API guarantees an image per item, so no
// resolver cascade runs here.
type APIAdapter struct {
	client     *Client
	baseURL    string
	headers    map[string]string
	categories []config.Category
	limiter    *rate.Limiter
	source     string
}

// NewAPIAdapter configures the adapter. categoryDelay paces consecutive
// category requests so bulk runs stay under the endpoint's rate limits.
func NewAPIAdapter(client *Client, baseURL string, headers map[string]string, categories []config.Category, categoryDelay time.Duration) *APIAdapter {
	if categoryDelay <= 0 {
		categoryDelay = time.Second
	}
	return &APIAdapter{
		client:     client,
		baseURL:    baseURL,
		headers:    headers,
		categories: categories,
		limiter:    rate.NewLimiter(rate.Every(categoryDelay), 1),
		source:     feedHost(baseURL),
	}
}

type apiItem struct {
	HashID     string   `json:"hash_id"`
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	SourceName string   `json:"source_name"`
	SourceURL  string   `json:"source_url"`
	ImageURL   string   `json:"image_url"`
	CreatedAt  string   `json:"created_at"`
	Tags       []string `json:"tags"`
}

type apiNewsResponse struct {
	Data struct {
		NewsList []apiItem `json:"news_list"`
	} `json:"data"`
}

// FetchAllCategories walks the configured categories in priority order.
// A failing category contributes nothing; the loop continues to the next one
// after the configured pacing delay.
func (a *APIAdapter) FetchAllCategories(ctx context.Context) []models.Article {
	var all []models.Article
	for _, category := range a.categories {
		if err := a.limiter.Wait(ctx); err != nil {
			log.Info().Err(err).Msg("Category loop canceled")
			break
		}

		articles, err := a.FetchCategory(ctx, category.Name, category.MaxLimit, 0)
		if err != nil {
			log.Error().Err(err).Str("category", category.Name).Msg("Error fetching API category")
			continue
		}
		all = append(all, articles...)
	}
	return all
}

// FetchCategory issues one paged request for a category and parses the items.
// Items missing a title or URL are dropped with a warning rather than failing
// the page.
func (a *APIAdapter) FetchCategory(ctx context.Context, category string, limit, offset int) ([]models.Article, error) {
	url := fmt.Sprintf("%s/news?category=%s&max_limit=%d&include_card_data=true", a.baseURL, category, limit)
	if offset > 0 {
		url += "&news_offset=" + strconv.Itoa(offset)
	}

	resp, err := a.client.Get(ctx, url, a.headers)
	if err != nil {
		return nil, fmt.Errorf("api category %s: %w", category, err)
	}
	defer resp.Body.Close()

	var payload apiNewsResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxAPIResponseBytes)).Decode(&payload); err != nil {
		return nil, fmt.Errorf("api category %s: decode: %w", category, err)
	}

	articles := make([]models.Article, 0, len(payload.Data.NewsList))
	for _, item := range payload.Data.NewsList {
		article, ok := a.parseItem(item, category)
		if !ok {
			continue
		}
		articles = append(articles, article)
	}

	log.Info().Int("count", len(articles)).Str("category", category).Msg("Fetched API articles")
	return articles, nil
}

// parseItem converts one API item to the canonical record. The created_at
// timestamp is re-serialized to RFC3339 when parseable; otherwise it becomes
// the capture time.
func (a *APIAdapter) parseItem(item apiItem, category string) (models.Article, bool) {
	if item.Title == "" || item.SourceURL == "" {
		log.Warn().Str("hash_id", item.HashID).Str("category", category).Msg("Dropping API item without title or URL")
		return models.Article{}, false
	}

	published := time.Now().UTC().Format(time.RFC3339)
	if t, ok := models.ParsePublished(item.CreatedAt); ok {
		published = t.UTC().Format(time.RFC3339)
	}

	tags := append([]string(nil), item.Tags...)
	tags = append(tags, category)

	return models.Article{
		Title:      item.Title,
		URL:        item.SourceURL,
		Published:  published,
		Summary:    item.Content,
		Source:     a.source,
		Tags:       tags,
		Image:      item.ImageURL,
		HashID:     item.HashID,
		SourceName: item.SourceName,
	}, true
}

type apiTopicsResponse struct {
	Data struct {
		Topics []struct {
			Name string `json:"name"`
		} `json:"topics"`
		TrendingTopics []string `json:"trending_topics"`
	} `json:"data"`
}

// FetchTrendingTopics returns the flat list of trending topic names,
// tolerating both response shapes the endpoint has shipped. Any error yields
// an empty list.
func (a *APIAdapter) FetchTrendingTopics(ctx context.Context) []string {
	resp, err := a.client.Get(ctx, a.baseURL+"/search/trending_topics", a.headers)
	if err != nil {
		log.Error().Err(err).Msg("Error fetching trending topics")
		return nil
	}
	defer resp.Body.Close()

	var payload apiTopicsResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxAPIResponseBytes)).Decode(&payload); err != nil {
		log.Error().Err(err).Msg("Error decoding trending topics")
		return nil
	}

	if len(payload.Data.TrendingTopics) > 0 {
		return payload.Data.TrendingTopics
	}
	topics := make([]string, 0, len(payload.Data.Topics))
	for _, topic := range payload.Data.Topics {
		if topic.Name != "" {
			topics = append(topics, topic.Name)
		}
	}
	return topics
}
