package config

// Constants defining default values for application configuration
const (
	DefaultMongoURI   = "mongodb://localhost:27017/"
	DefaultDatabase   = "article_scraper"
	DefaultCollection = "articles"

	DefaultTargetCount    = 50
	DefaultWorkerCount    = 5 // concurrent source fetches, independent of task count
	DefaultRateLimitSecs  = 2 // upper bound of the randomized inter-feed delay
	DefaultRequestTimeout = 10

	DefaultSnapshotDir = "."

	DefaultAutoPurge       = true
	DefaultRetentionMonths = 2

	DefaultLogLevel = "info"

	// UserAgent is sent on every outbound request; several feeds refuse
	// default Go client identification.
	UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

	TrendingPageURL = "https://medium.com/tag/trending"

	APIBaseURL = "https://inshorts.com/api/en"

	// PerFeedItems bounds how many entries each primary feed contributes
	// per run; PerPublicationItems bounds the secondary-publication feeds,
	// TrendingItems the trending-page scrape.
	PerFeedItems        = 3
	PerPublicationItems = 2
	TrendingItems       = 5
)
