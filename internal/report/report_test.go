package report

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daybrief/harvester/internal/models"
)

func sampleArticles() []models.Article {
	return []models.Article{
		{
			Title:     "First",
			URL:       "https://example.com/a",
			Source:    "example.com",
			Tags:      []string{"tech", "ai"},
			Summary:   "A teaser",
			Published: "2025-01-13T12:00:00Z",
		},
		{
			Title:  "Second",
			URL:    "https://example.com/b",
			Source: "example.com",
		},
		{Title: "No URL"},
	}
}

func TestWriteSnapshot(t *testing.T) {
	dir := t.TempDir()

	path, err := WriteSnapshot(sampleArticles(), dir)
	require.NoError(t, err)
	assert.Regexp(t, `articles_\d{8}\.json$`, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var restored []models.Article
	require.NoError(t, json.Unmarshal(data, &restored))
	require.Len(t, restored, 3)
	assert.Equal(t, "First", restored[0].Title)
	assert.Equal(t, []string{"tech", "ai"}, restored[0].Tags)
}

func TestPrint(t *testing.T) {
	var buf bytes.Buffer
	Print(&buf, sampleArticles())

	out := buf.String()
	assert.Contains(t, out, "Found 3 articles")
	assert.Contains(t, out, "1. First")
	assert.Contains(t, out, "Tags: tech, ai")
	assert.Contains(t, out, "Summary: A teaser")
	assert.Contains(t, out, "2. Second")
}

func TestURLs(t *testing.T) {
	urls := URLs(sampleArticles())
	assert.Equal(t, []string{"https://example.com/a", "https://example.com/b"}, urls)
}
