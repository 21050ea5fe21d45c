package harvest

import (
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"daybrief/harvester/internal/models"
)

// Dedupe removes URL duplicates in one left-to-right pass: the first
// occurrence of a URL wins and later duplicates are discarded even when they
// carry richer data. Records with an empty URL are dropped.
func Dedupe(articles []models.Article) []models.Article {
	seen := make(map[string]struct{}, len(articles))
	unique := make([]models.Article, 0, len(articles))

	for _, article := range articles {
		if article.URL == "" {
			continue
		}
		if _, ok := seen[article.URL]; ok {
			continue
		}
		seen[article.URL] = struct{}{}
		unique = append(unique, article)
	}

	if dropped := len(articles) - len(unique); dropped > 0 {
		log.Info().Int("dropped", dropped).Msg("Removed duplicate articles")
	}
	return unique
}

// Rank sorts articles by parsed publish time, newest first. Records whose
// timestamp does not parse sort as the earliest possible value and sink to
// the bottom. The sort is stable, so already-ordered input stays put.
func Rank(articles []models.Article) []models.Article {
	ranked := append([]models.Article(nil), articles...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return sortKey(ranked[i]).After(sortKey(ranked[j]))
	})
	return ranked
}

func sortKey(a models.Article) time.Time {
	t, ok := models.ParsePublished(a.Published)
	if !ok {
		return time.Time{}
	}
	return t
}
