package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config holds all configuration for the application
type Config struct {
	// Storage settings
	MongoURI   string
	Database   string
	Collection string

	// Harvest settings
	TargetCount    int
	WorkerCount    int
	RateLimitDelay time.Duration
	RequestTimeout time.Duration

	// Source settings
	Feeds            []string
	PublicationFeeds []string
	TrendingURL      string
	APIBaseURL       string
	APICategories    []Category
	APIHeaders       map[string]string
	UserAgent        string

	// Hosts permitted for the extra webpage-fetch image fallback
	TrustedDomains []string

	// Snapshot / report settings
	SnapshotDir string

	// Housekeeping settings
	AutoPurge       bool
	RetentionMonths int

	// Schedule: cron spec for periodic runs, empty for one-shot
	CronSpec string

	// Log settings
	LogLevel zerolog.Level
}

// Category pairs an aggregation-API category name with its per-run item
// budget. The slice order is the fetch priority order.
type Category struct {
	Name     string
	MaxLimit int
}

// DefaultConfig returns an initial configuration with hardcoded defaults.
func DefaultConfig() *Config {
	logLevel, _ := zerolog.ParseLevel(DefaultLogLevel)

	return &Config{
		MongoURI:   GetEnvString("MONGODB_URI", DefaultMongoURI),
		Database:   GetEnvString("MONGODB_DATABASE", DefaultDatabase),
		Collection: GetEnvString("MONGODB_COLLECTION", DefaultCollection),

		TargetCount:    GetEnvInt("TARGET_ARTICLE_COUNT", DefaultTargetCount),
		WorkerCount:    DefaultWorkerCount,
		RateLimitDelay: GetEnvDuration("RATE_LIMIT_DELAY", DefaultRateLimitSecs*time.Second),
		RequestTimeout: DefaultRequestTimeout * time.Second,

		Feeds:            defaultFeeds(),
		PublicationFeeds: defaultPublicationFeeds(),
		TrendingURL:      TrendingPageURL,
		APIBaseURL:       APIBaseURL,
		APICategories:    defaultAPICategories(),
		APIHeaders:       defaultAPIHeaders(),
		UserAgent:        UserAgent,

		TrustedDomains: defaultTrustedDomains(),

		SnapshotDir: DefaultSnapshotDir,

		AutoPurge:       GetEnvBool("AUTO_CLEANUP_ENABLED", DefaultAutoPurge),
		RetentionMonths: GetEnvInt("CLEANUP_MONTHS_OLD", DefaultRetentionMonths),

		LogLevel: logLevel,
	}
}

// LoadFeedsFile replaces the primary feed list with URLs read from a file,
// one per line; blank lines and '#' comments are skipped.
func (c *Config) LoadFeedsFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open feeds file: %w", err)
	}
	defer f.Close()

	var feeds []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		feeds = append(feeds, line)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read feeds file: %w", err)
	}
	if len(feeds) == 0 {
		return fmt.Errorf("feeds file %s contains no URLs", path)
	}

	c.Feeds = feeds
	return nil
}

// defaultFeeds is the curated set of global current-affairs and technology
// feeds harvested every run.
func defaultFeeds() []string {
	return []string{
		"http://feeds.bbci.co.uk/news/world/rss.xml",
		"https://www.theguardian.com/world/rss",
		"https://www.aljazeera.com/xml/rss/all.xml",
		"https://techcrunch.com/feed/",
		"https://www.wired.com/feed/rss",
		"https://www.theverge.com/rss/index.xml",
		"http://feeds.arstechnica.com/arstechnica/index",
		"https://feeds.bloomberg.com/markets/news.rss",
		"https://www.nature.com/nature.rss",
		"https://www.newscientist.com/feed/home/",
		"https://feeds.npr.org/1001/rss.xml",
		"http://rss.cnn.com/rss/edition.rss",
		"https://www.france24.com/en/rss",
		"https://www.reddit.com/r/worldnews/.rss",
		"https://hnrss.org/frontpage",
	}
}

// defaultPublicationFeeds lists secondary publication feeds, harvested with a
// smaller per-feed budget.
func defaultPublicationFeeds() []string {
	return []string{
		"https://towardsdatascience.com/feed",
		"https://medium.com/feed/hackernoon",
		"https://medium.com/feed/the-startup",
		"https://medium.com/feed/better-programming",
		"https://uxdesign.cc/feed",
		"https://medium.com/feed/swlh",
	}
}

func defaultAPICategories() []Category {
	return []Category{
		{Name: "top_stories", MaxLimit: 10},
		{Name: "trending", MaxLimit: 8},
		{Name: "business", MaxLimit: 5},
		{Name: "technology", MaxLimit: 5},
		{Name: "world", MaxLimit: 5},
	}
}

// defaultAPIHeaders shapes aggregation-API requests to look like a browser;
// the endpoint rejects obviously scripted clients.
func defaultAPIHeaders() map[string]string {
	return map[string]string{
		"accept":             "*/*",
		"accept-language":    "en-US,en;q=0.9",
		"cache-control":      "no-cache",
		"content-type":       "application/json",
		"dnt":                "1",
		"pragma":             "no-cache",
		"sec-ch-ua":          `"Google Chrome";v="137", "Chromium";v="137", "Not/A)Brand";v="24"`,
		"sec-ch-ua-mobile":   "?0",
		"sec-ch-ua-platform": `"Windows"`,
		"sec-fetch-dest":     "empty",
		"sec-fetch-mode":     "cors",
		"sec-fetch-site":     "same-origin",
		"user-agent":         UserAgent,
	}
}

// defaultTrustedDomains bounds the live-webpage image fallback to hosts known
// to respond quickly and serve usable Open Graph metadata.
func defaultTrustedDomains() []string {
	return []string{
		"techcrunch.com",
		"theverge.com",
		"wired.com",
		"arstechnica.com",
		"bbc.co.uk",
		"bbc.com",
		"theguardian.com",
		"npr.org",
		"medium.com",
	}
}
