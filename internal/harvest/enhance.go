package harvest

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"daybrief/harvester/internal/images"
	"daybrief/harvester/internal/models"
)

// Pause between enhancement fetches; these hit article pages directly and
// should not look like a burst.
const enhanceDelay = 500 * time.Millisecond

// EnhanceImages is the post-pass over the ranked list: records that already
// carry an image pass through unchanged and keep their position; for each
// record still missing one, a single allow-list-gated webpage extraction is
// attempted against the article's own URL. Enhanced (and still-empty) records
// are appended after the complete group. No re-sort happens here.
func EnhanceImages(ctx context.Context, articles []models.Article, resolver *images.Resolver) []models.Article {
	complete := make([]models.Article, 0, len(articles))
	missing := make([]models.Article, 0)

	for _, article := range articles {
		if article.Image != "" {
			complete = append(complete, article)
		} else {
			missing = append(missing, article)
		}
	}

	if len(missing) == 0 {
		return complete
	}

	log.Info().Int("missing", len(missing)).Msg("Attempting image enhancement")

	enhanced := 0
	for i, article := range missing {
		if ctx.Err() != nil {
			break
		}
		if article.URL == "" {
			continue
		}

		if img := resolver.FromWebpage(article.URL); img != "" {
			missing[i].Image = img
			enhanced++
		}

		if i < len(missing)-1 {
			sleepCtx(ctx, enhanceDelay)
		}
	}

	log.Info().Int("enhanced", enhanced).Int("missing", len(missing)-enhanced).Msg("Image enhancement done")
	return append(complete, missing...)
}

// sleepCtx pauses for d or until the context is canceled.
func sleepCtx(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
