package models

import (
	"crypto/md5"
	"encoding/hex"
	"time"
)

// PlaceholderTitle is used when a source provides no usable title.
const PlaceholderTitle = "No Title"

// Article is the canonical record every source adapter produces.
type Article struct {
	Title     string   `json:"title" bson:"title"`
	URL       string   `json:"url" bson:"url"`
	Published string   `json:"published" bson:"published"` // free-form, as supplied by the source
	Summary   string   `json:"summary" bson:"summary"`
	Source    string   `json:"source" bson:"source"`
	Tags      []string `json:"tags" bson:"tags"`
	Image     string   `json:"image" bson:"image"` // absolute URL or "" when unresolved

	// Set only by the aggregation-API adapter.
	HashID     string `json:"hash_id,omitempty" bson:"hash_id,omitempty"`
	SourceName string `json:"source_name,omitempty" bson:"source_name,omitempty"`
}

// StoredArticle is an Article as persisted, with the capture timestamp and
// the derived document id.
type StoredArticle struct {
	ID        string    `bson:"_id"`
	Article   `bson:",inline"`
	ScrapedAt time.Time `bson:"scraped_at"`
}

// DocumentID derives the storage primary key for a URL captured at t:
// the first 16 hex characters of md5(url) joined with the capture date.
// Re-scraping the same URL on a later day therefore produces a new row.
func DocumentID(url string, t time.Time) string {
	sum := md5.Sum([]byte(url))
	return hex.EncodeToString(sum[:])[:16] + "_" + t.UTC().Format("20060102")
}

// NewStoredArticle stamps an Article with the capture time and derived id.
func NewStoredArticle(a Article, scrapedAt time.Time) StoredArticle {
	return StoredArticle{
		ID:        DocumentID(a.URL, scrapedAt),
		Article:   a,
		ScrapedAt: scrapedAt.UTC(),
	}
}
