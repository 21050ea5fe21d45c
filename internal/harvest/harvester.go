package harvest

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"daybrief/harvester/internal/config"
	"daybrief/harvester/internal/images"
	"daybrief/harvester/internal/models"
	"daybrief/harvester/internal/sources"
)

// Harvester runs all source adapters concurrently and reduces their output
// into the final deduplicated, ranked, image-enhanced article list.
type Harvester struct {
	cfg      *config.Config
	rss      *sources.RSSAdapter
	trending *sources.TrendingAdapter
	api      *sources.APIAdapter
	resolver *images.Resolver
}

// task is one unit of source work. Every task is failure-isolated: whatever
// goes wrong inside resolves to an empty result, never an aborted batch.
type task struct {
	name  string
	fetch func(ctx context.Context) []models.Article
}

// New wires the adapters onto a shared HTTP client per the configuration.
func New(cfg *config.Config) *Harvester {
	client := sources.NewClient(cfg.RequestTimeout, cfg.UserAgent)

	resolver := images.NewResolver(images.Options{
		Client:         client.HTTPClient(),
		UserAgent:      cfg.UserAgent,
		TrustedDomains: cfg.TrustedDomains,
	})

	return &Harvester{
		cfg:      cfg,
		rss:      sources.NewRSSAdapter(client, resolver),
		trending: sources.NewTrendingAdapter(client, cfg.TrendingURL),
		api:      sources.NewAPIAdapter(client, cfg.APIBaseURL, cfg.APIHeaders, cfg.APICategories, cfg.RateLimitDelay),
		resolver: resolver,
	}
}

// Run executes one full harvest cycle and returns at most cfg.TargetCount
// records: the ranked, unique union of whatever sources succeeded. Every
// returned record has an image field, possibly empty.
func (h *Harvester) Run(ctx context.Context) []models.Article {
	tasks := h.buildTasks()

	log.Info().
		Int("tasks", len(tasks)).
		Int("workers", h.cfg.WorkerCount).
		Msg("Starting harvest cycle")

	collected := h.runTasks(ctx, tasks)

	unique := Dedupe(collected)
	ranked := Rank(unique)
	if len(ranked) > h.cfg.TargetCount {
		ranked = ranked[:h.cfg.TargetCount]
	}

	final := EnhanceImages(ctx, ranked, h.resolver)

	log.Info().
		Int("collected", len(collected)).
		Int("unique", len(unique)).
		Int("final", len(final)).
		Msg("Harvest cycle finished")
	return final
}

// buildTasks flattens the configured sources into one task list: one per
// primary feed, one per secondary-publication feed, one trending scrape, and
// one API task that internally iterates its categories.
func (h *Harvester) buildTasks() []task {
	tasks := make([]task, 0, len(h.cfg.Feeds)+len(h.cfg.PublicationFeeds)+2)

	for _, feedURL := range h.cfg.Feeds {
		feedURL := feedURL
		tasks = append(tasks, task{
			name: "feed:" + feedURL,
			fetch: func(ctx context.Context) []models.Article {
				articles := h.rss.FetchFeed(ctx, feedURL, config.PerFeedItems)
				h.feedCooldown(ctx)
				return articles
			},
		})
	}

	for _, pubURL := range h.cfg.PublicationFeeds {
		pubURL := pubURL
		tasks = append(tasks, task{
			name: "publication:" + pubURL,
			fetch: func(ctx context.Context) []models.Article {
				articles := h.rss.FetchFeed(ctx, pubURL, config.PerPublicationItems)
				h.feedCooldown(ctx)
				return articles
			},
		})
	}

	tasks = append(tasks, task{
		name: "trending",
		fetch: func(ctx context.Context) []models.Article {
			return h.trending.FetchTrending(ctx, config.TrendingItems)
		},
	})

	tasks = append(tasks, task{
		name: "aggregation-api",
		fetch: func(ctx context.Context) []models.Article {
			return h.api.FetchAllCategories(ctx)
		},
	})

	return tasks
}

// runTasks executes tasks on a bounded worker pool. The mutex guards only the
// in-memory merge append, never a network call; arrival order is irrelevant
// because ranking reorders everything afterwards.
func (h *Harvester) runTasks(ctx context.Context, tasks []task) []models.Article {
	workers := h.cfg.WorkerCount
	if workers <= 0 {
		workers = config.DefaultWorkerCount
	}

	var (
		mu        sync.Mutex
		wg        sync.WaitGroup
		sem       = make(chan struct{}, workers)
		collected []models.Article
	)

	for _, t := range tasks {
		t := t
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			articles := h.safeFetch(ctx, t)
			if len(articles) == 0 {
				return
			}

			mu.Lock()
			collected = append(collected, articles...)
			mu.Unlock()
		}()
	}
	wg.Wait()

	return collected
}

// safeFetch converts a panicking task into an empty result.
func (h *Harvester) safeFetch(ctx context.Context, t task) (articles []models.Article) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("task", t.name).Msg("Source task panicked")
			articles = nil
		}
	}()
	return t.fetch(ctx)
}

// feedCooldown sleeps between one and RateLimitDelay seconds after a feed
// fetch. The jitter keeps bursts of requests to the same upstream apart.
func (h *Harvester) feedCooldown(ctx context.Context) {
	min := time.Second
	max := h.cfg.RateLimitDelay
	if max <= min {
		sleepCtx(ctx, max)
		return
	}
	jitter := time.Duration(rand.Int63n(int64(max - min)))
	sleepCtx(ctx, min+jitter)
}

// TrendingTopics exposes the aggregation API's trending topic names.
func (h *Harvester) TrendingTopics(ctx context.Context) []string {
	return h.api.FetchTrendingTopics(ctx)
}
