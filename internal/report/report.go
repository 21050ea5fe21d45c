// Package report is the non-database output path: a JSON snapshot on disk
// plus a human-readable console listing. A harvest whose storage backend is
// unreachable still lands here.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"daybrief/harvester/internal/models"
)

const summaryPreviewLen = 150

// WriteSnapshot writes the article list as indented JSON to
// dir/articles_YYYYMMDD.json and returns the path.
func WriteSnapshot(articles []models.Article, dir string) (string, error) {
	if dir == "" {
		dir = "."
	}
	path := filepath.Join(dir, fmt.Sprintf("articles_%s.json", time.Now().Format("20060102")))

	data, err := json.MarshalIndent(articles, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal articles: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write snapshot %s: %w", path, err)
	}

	log.Info().Int("count", len(articles)).Str("path", path).Msg("Saved article snapshot")
	return path, nil
}

// Print writes a readable report of the harvest to w.
func Print(w io.Writer, articles []models.Article) {
	divider := strings.Repeat("=", 60)
	fmt.Fprintf(w, "\n%s\n", divider)
	fmt.Fprintf(w, "DAILY ARTICLE HARVEST - %s\n", time.Now().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "%s\n", divider)
	fmt.Fprintf(w, "Found %d articles:\n", len(articles))

	for i, article := range articles {
		fmt.Fprintf(w, "\n%d. %s\n", i+1, article.Title)
		fmt.Fprintf(w, "   Source: %s\n", article.Source)
		fmt.Fprintf(w, "   URL: %s\n", article.URL)
		if len(article.Tags) > 0 {
			fmt.Fprintf(w, "   Tags: %s\n", strings.Join(article.Tags, ", "))
		}
		if article.Summary != "" {
			preview := article.Summary
			suffix := ""
			if len(preview) > summaryPreviewLen {
				preview = preview[:summaryPreviewLen]
				suffix = "..."
			}
			fmt.Fprintf(w, "   Summary: %s%s\n", preview, suffix)
		}
	}
}

// URLs extracts the non-empty article URLs in order.
func URLs(articles []models.Article) []string {
	urls := make([]string, 0, len(articles))
	for _, article := range articles {
		if article.URL != "" {
			urls = append(urls, article.URL)
		}
	}
	return urls
}
