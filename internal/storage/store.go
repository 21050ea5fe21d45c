package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"daybrief/harvester/internal/models"
)

const connectTimeout = 10 * time.Second

// Store wraps the article collection in the document store.
type Store struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// SaveResult aggregates per-record outcomes of a bulk save.
type SaveResult struct {
	Upserted int64
	Modified int64
	Matched  int64
	Failed   int
}

// Connect establishes the connection and verifies it with a ping.
func Connect(ctx context.Context, uri, database, collection string) (*Store, error) {
	log.Info().Str("database", database).Str("collection", collection).Msg("Connecting to MongoDB")

	opts := options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(connectTimeout).
		SetConnectTimeout(connectTimeout).
		SetSocketTimeout(connectTimeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	log.Info().Msg("MongoDB connection successful")
	return &Store{
		client:     client,
		collection: client.Database(database).Collection(collection),
	}, nil
}

// Close disconnects from the store.
func (s *Store) Close(ctx context.Context) {
	if err := s.client.Disconnect(ctx); err != nil {
		log.Warn().Err(err).Msg("Error disconnecting from MongoDB")
	}
}

// EnsureIndexes creates the collection's indexes: a unique index on url plus
// secondary indexes on the capture timestamp, source, and published fields.
// Index conflicts are not fatal; the caller may log and continue.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "url", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "scraped_at", Value: 1}}},
		{Keys: bson.D{{Key: "source", Value: 1}}},
		{Keys: bson.D{{Key: "published", Value: 1}}},
	}

	if _, err := s.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	log.Info().Msg("Database indexes created")
	return nil
}

// SaveArticles upserts the batch keyed by url: an existing record for the
// same url is updated in place with a fresh capture timestamp, a new url is
// inserted under a derived id embedding the capture date. The bulk write is
// unordered, so one bad record does not sink the rest; per-record failures
// are counted rather than propagated.
func (s *Store) SaveArticles(ctx context.Context, articles []models.Article) (SaveResult, error) {
	if len(articles) == 0 {
		log.Warn().Msg("No articles to save")
		return SaveResult{}, nil
	}

	now := time.Now().UTC()
	writes := make([]mongo.WriteModel, 0, len(articles))
	for _, article := range articles {
		if article.URL == "" {
			continue
		}
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"url": article.URL}).
			SetUpdate(bson.M{
				"$set":         articleFields(article, now),
				"$setOnInsert": bson.M{"_id": models.DocumentID(article.URL, now)},
			}).
			SetUpsert(true))
	}

	log.Info().Int("operations", len(writes)).Msg("Executing bulk upsert")

	res, err := s.collection.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false))

	result := SaveResult{}
	if res != nil {
		result.Upserted = res.UpsertedCount
		result.Modified = res.ModifiedCount
		result.Matched = res.MatchedCount
	}

	if err != nil {
		var bulkErr mongo.BulkWriteException
		if errors.As(err, &bulkErr) {
			result.Failed = len(bulkErr.WriteErrors)
			log.Error().
				Int("failed", result.Failed).
				Int64("upserted", result.Upserted).
				Int64("modified", result.Modified).
				Msg("Bulk upsert completed with per-record failures")
			return result, nil
		}
		return result, fmt.Errorf("failed to save articles: %w", err)
	}

	log.Info().
		Int64("new", result.Upserted).
		Int64("updated", result.Modified).
		Int64("matched", result.Matched).
		Msg("Database operations completed")
	return result, nil
}

// articleFields builds the $set document for one article. Adapter-specific
// fields are persisted only when present.
func articleFields(article models.Article, scrapedAt time.Time) bson.M {
	fields := bson.M{
		"title":      article.Title,
		"url":        article.URL,
		"published":  article.Published,
		"summary":    article.Summary,
		"source":     article.Source,
		"tags":       article.Tags,
		"image":      article.Image,
		"scraped_at": scrapedAt,
	}
	if article.HashID != "" {
		fields["hash_id"] = article.HashID
	}
	if article.SourceName != "" {
		fields["source_name"] = article.SourceName
	}
	return fields
}

// RecentArticles returns up to limit articles captured within the last days,
// newest capture first.
func (s *Store) RecentArticles(ctx context.Context, days, limit int) ([]models.StoredArticle, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -days)

	opts := options.Find().
		SetSort(bson.D{{Key: "scraped_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := s.collection.Find(ctx, bson.M{"scraped_at": bson.M{"$gte": cutoff}}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent articles: %w", err)
	}
	defer cursor.Close(ctx)

	var articles []models.StoredArticle
	if err := cursor.All(ctx, &articles); err != nil {
		return nil, fmt.Errorf("failed to decode recent articles: %w", err)
	}
	return articles, nil
}

// Count returns the total number of stored articles.
func (s *Store) Count(ctx context.Context) (int64, error) {
	count, err := s.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count articles: %w", err)
	}
	return count, nil
}
