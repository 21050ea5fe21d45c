package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const purgeSampleSize = 5

// PurgeSample identifies one article a purge would remove.
type PurgeSample struct {
	Title     string    `bson:"title"`
	Source    string    `bson:"source"`
	ScrapedAt time.Time `bson:"scraped_at"`
}

// PurgeResult reports the outcome of a purge run.
type PurgeResult struct {
	DryRun    bool
	Cutoff    time.Time
	Matched   int64
	Deleted   int64
	Remaining int64
	Samples   []PurgeSample
}

// PurgeOlderThan removes articles whose capture timestamp is older than the
// retention window, expressed in months (30-day months, matching the
// housekeeping contract). With dryRun set it only counts and samples what
// would be removed.
func (s *Store) PurgeOlderThan(ctx context.Context, months int, dryRun bool) (PurgeResult, error) {
	if months <= 0 {
		return PurgeResult{}, fmt.Errorf("retention months must be positive, got %d", months)
	}

	cutoff := time.Now().UTC().Add(-time.Duration(months) * 30 * 24 * time.Hour)
	filter := bson.M{"scraped_at": bson.M{"$lt": cutoff}}

	log.Info().Time("cutoff", cutoff).Int("months", months).Bool("dry_run", dryRun).Msg("Purging old articles")

	matched, err := s.collection.CountDocuments(ctx, filter)
	if err != nil {
		return PurgeResult{}, fmt.Errorf("failed to count purgeable articles: %w", err)
	}

	result := PurgeResult{DryRun: dryRun, Cutoff: cutoff, Matched: matched}

	if matched == 0 {
		log.Info().Msg("No articles older than cutoff")
		return result, nil
	}

	if dryRun {
		opts := options.Find().
			SetProjection(bson.M{"title": 1, "source": 1, "scraped_at": 1}).
			SetLimit(purgeSampleSize)

		cursor, err := s.collection.Find(ctx, filter, opts)
		if err != nil {
			return result, fmt.Errorf("failed to sample purgeable articles: %w", err)
		}
		defer cursor.Close(ctx)

		if err := cursor.All(ctx, &result.Samples); err != nil {
			return result, fmt.Errorf("failed to decode purge samples: %w", err)
		}

		log.Info().Int64("would_delete", matched).Msg("Dry run, nothing deleted")
		return result, nil
	}

	deleted, err := s.collection.DeleteMany(ctx, filter)
	if err != nil {
		return result, fmt.Errorf("failed to delete old articles: %w", err)
	}
	result.Deleted = deleted.DeletedCount

	remaining, err := s.Count(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Could not count remaining articles after purge")
	} else {
		result.Remaining = remaining
	}

	log.Info().
		Int64("deleted", result.Deleted).
		Int64("remaining", result.Remaining).
		Msg("Purge completed")
	return result, nil
}
