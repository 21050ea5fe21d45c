package sources

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"daybrief/harvester/internal/images"
	"daybrief/harvester/internal/models"
)

// Anchor text shorter than this is navigation chrome, not an article title.
const minTrendingTitleLen = 11

// Ancestor levels inspected when hunting for a card image near an anchor.
const maxAncestorDepth = 3

var backgroundImageRe = regexp.MustCompile(`background-image:\s*url\(['"]?([^'")]+)['"]?\)`)

// TrendingAdapter scrapes the trending listing page for article permalinks.
// The page exposes no per-item timestamps, so records carry the capture time.
type TrendingAdapter struct {
	client  *Client
	pageURL string
	baseURL string
	source  string
}

// NewTrendingAdapter builds an adapter for the given listing page.
func NewTrendingAdapter(client *Client, pageURL string) *TrendingAdapter {
	host := feedHost(pageURL)
	return &TrendingAdapter{
		client:  client,
		pageURL: pageURL,
		baseURL: "https://" + host,
		source:  host,
	}
}

// FetchTrending scans the listing page for anchors matching the article-path
// heuristic and returns up to maxItems records. Any fetch or parse failure
// yields an empty slice.
func (a *TrendingAdapter) FetchTrending(ctx context.Context, maxItems int) []models.Article {
	resp, err := a.client.Get(ctx, a.pageURL, nil)
	if err != nil {
		log.Error().Err(err).Str("url", a.pageURL).Msg("Error scraping trending page")
		return nil
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		log.Error().Err(err).Str("url", a.pageURL).Msg("Error parsing trending page")
		return nil
	}

	captureTime := time.Now().UTC().Format(time.RFC3339)

	var articles []models.Article
	doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, _ := sel.Attr("href")
		href = a.absoluteArticleURL(href)
		if href == "" {
			return true
		}

		title := strings.TrimSpace(sel.Text())
		if len(title) < minTrendingTitleLen {
			return true
		}

		articles = append(articles, models.Article{
			Title:     title,
			URL:       href,
			Published: captureTime,
			Summary:   "",
			Source:    a.source,
			Tags:      []string{"trending"},
			Image:     cardImage(sel),
		})
		return len(articles) < maxItems
	})

	log.Info().Int("count", len(articles)).Str("url", a.pageURL).Msg("Scraped trending articles")
	return articles
}

// absoluteArticleURL applies the article-path heuristic (post or profile
// permalinks) and rewrites site-relative hrefs to absolute. Anything else
// returns "".
func (a *TrendingAdapter) absoluteArticleURL(href string) string {
	if !strings.Contains(href, "/p/") && !strings.Contains(href, "/@") {
		return ""
	}
	switch {
	case strings.HasPrefix(href, "/"):
		return a.baseURL + href
	case strings.HasPrefix(href, a.baseURL):
		return href
	default:
		return ""
	}
}

// cardImage walks the anchor's immediate ancestors looking for an associated
// image: an <img> tag (src, then data-src, then srcset), a CSS
// background-image declaration, or a responsive <picture> source.
func cardImage(anchor *goquery.Selection) string {
	node := anchor
	for depth := 0; depth < maxAncestorDepth; depth++ {
		node = node.Parent()
		if node.Length() == 0 {
			break
		}

		if img := selectionImage(node); img != "" {
			return img
		}
	}
	return ""
}

func selectionImage(node *goquery.Selection) string {
	var found string

	node.Find("img").EachWithBreak(func(_ int, img *goquery.Selection) bool {
		for _, attr := range []string{"src", "data-src"} {
			if raw, ok := img.Attr(attr); ok {
				if normalized, ok := acceptCandidate(raw); ok {
					found = normalized
					return false
				}
			}
		}
		if srcset, ok := img.Attr("srcset"); ok {
			if normalized, ok := acceptCandidate(firstSrcsetCandidate(srcset)); ok {
				found = normalized
				return false
			}
		}
		return true
	})
	if found != "" {
		return found
	}

	if style, ok := node.Attr("style"); ok {
		if img := styleBackgroundImage(style); img != "" {
			return img
		}
	}
	node.Find("[style]").EachWithBreak(func(_ int, styled *goquery.Selection) bool {
		style, _ := styled.Attr("style")
		if img := styleBackgroundImage(style); img != "" {
			found = img
			return false
		}
		return true
	})
	if found != "" {
		return found
	}

	node.Find("picture source").EachWithBreak(func(_ int, src *goquery.Selection) bool {
		if srcset, ok := src.Attr("srcset"); ok {
			if normalized, ok := acceptCandidate(firstSrcsetCandidate(srcset)); ok {
				found = normalized
				return false
			}
		}
		return true
	})
	return found
}

func styleBackgroundImage(style string) string {
	match := backgroundImageRe.FindStringSubmatch(style)
	if match == nil {
		return ""
	}
	normalized, ok := acceptCandidate(match[1])
	if !ok {
		return ""
	}
	return normalized
}

func acceptCandidate(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if !images.ValidImageURL(raw) {
		return "", false
	}
	return images.NormalizeImageURL(raw), true
}

func firstSrcsetCandidate(srcset string) string {
	first, _, _ := strings.Cut(srcset, ",")
	fields := strings.Fields(first)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
