package harvest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daybrief/harvester/internal/models"
)

func TestDedupe(t *testing.T) {
	t.Run("first seen wins", func(t *testing.T) {
		input := []models.Article{
			{Title: "First title", URL: "https://example.com/a"},
			{Title: "Richer duplicate", URL: "https://example.com/a", Image: "https://example.com/a.jpg"},
			{Title: "Other", URL: "https://example.com/b"},
		}

		out := Dedupe(input)
		require.Len(t, out, 2)
		assert.Equal(t, "First title", out[0].Title, "later duplicates are discarded even with richer data")
		assert.Equal(t, "https://example.com/b", out[1].URL)
	})

	t.Run("empty URLs dropped", func(t *testing.T) {
		input := []models.Article{
			{Title: "No URL"},
			{Title: "Kept", URL: "https://example.com/a"},
		}

		out := Dedupe(input)
		require.Len(t, out, 1)
		assert.Equal(t, "Kept", out[0].Title)
	})

	t.Run("sole records survive", func(t *testing.T) {
		input := []models.Article{
			{URL: "https://example.com/a"},
			{URL: "https://example.com/b"},
			{URL: "https://example.com/c"},
		}
		assert.Len(t, Dedupe(input), 3)
	})

	t.Run("no duplicate URLs in output", func(t *testing.T) {
		input := []models.Article{
			{URL: "https://example.com/a"},
			{URL: "https://example.com/b"},
			{URL: "https://example.com/a"},
			{URL: "https://example.com/b"},
			{URL: "https://example.com/a"},
		}

		out := Dedupe(input)
		seen := map[string]int{}
		for _, article := range out {
			seen[article.URL]++
		}
		for url, count := range seen {
			assert.Equal(t, 1, count, "url %s appears %d times", url, count)
		}
	})
}

func TestRank(t *testing.T) {
	t.Run("newest first across formats", func(t *testing.T) {
		input := []models.Article{
			{URL: "a", Published: "Mon, 13 Jan 2025 10:00:00 GMT"},
			{URL: "b", Published: "2025-01-13T14:00:00Z"},
			{URL: "c", Published: "2025-01-13 12:00:00"},
		}

		out := Rank(input)
		require.Len(t, out, 3)
		assert.Equal(t, "b", out[0].URL)
		assert.Equal(t, "c", out[1].URL)
		assert.Equal(t, "a", out[2].URL)
	})

	t.Run("unparseable sinks to bottom", func(t *testing.T) {
		input := []models.Article{
			{URL: "bad", Published: "around lunchtime"},
			{URL: "good", Published: "2025-01-13T14:00:00Z"},
			{URL: "none", Published: ""},
		}

		out := Rank(input)
		assert.Equal(t, "good", out[0].URL)
		assert.Equal(t, "bad", out[1].URL, "stable: unparseable keep their relative order at the bottom")
		assert.Equal(t, "none", out[2].URL)
	})

	t.Run("stable on sorted input", func(t *testing.T) {
		input := []models.Article{
			{URL: "a", Published: "2025-01-13T14:00:00Z"},
			{URL: "b", Published: "2025-01-13T14:00:00Z"},
			{URL: "c", Published: "2025-01-13T12:00:00Z"},
		}

		out := Rank(input)
		assert.Equal(t, "a", out[0].URL)
		assert.Equal(t, "b", out[1].URL)
		assert.Equal(t, "c", out[2].URL)
	})

	t.Run("input left untouched", func(t *testing.T) {
		input := []models.Article{
			{URL: "old", Published: "2025-01-10T00:00:00Z"},
			{URL: "new", Published: "2025-01-13T00:00:00Z"},
		}

		_ = Rank(input)
		assert.Equal(t, "old", input[0].URL)
	})
}
