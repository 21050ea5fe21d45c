package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, DefaultTargetCount, cfg.TargetCount)
	assert.Equal(t, DefaultWorkerCount, cfg.WorkerCount)
	assert.Equal(t, DefaultRateLimitSecs*time.Second, cfg.RateLimitDelay)
	assert.NotEmpty(t, cfg.Feeds)
	assert.NotEmpty(t, cfg.PublicationFeeds)
	assert.NotEmpty(t, cfg.APICategories)
	assert.NotEmpty(t, cfg.TrustedDomains)
	assert.Equal(t, UserAgent, cfg.APIHeaders["user-agent"])
}

func TestDefaultConfigEnvOverrides(t *testing.T) {
	t.Setenv("TARGET_ARTICLE_COUNT", "7")
	t.Setenv("RATE_LIMIT_DELAY", "3")
	t.Setenv("MONGODB_DATABASE", "elsewhere")
	t.Setenv("AUTO_CLEANUP_ENABLED", "false")

	cfg := DefaultConfig()
	assert.Equal(t, 7, cfg.TargetCount)
	assert.Equal(t, 3*time.Second, cfg.RateLimitDelay)
	assert.Equal(t, "elsewhere", cfg.Database)
	assert.False(t, cfg.AutoPurge)
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("HELPER_STR", "value")
	assert.Equal(t, "value", GetEnvString("HELPER_STR", "default"))
	assert.Equal(t, "default", GetEnvString("HELPER_MISSING", "default"))

	t.Setenv("HELPER_INT", "42")
	assert.Equal(t, 42, GetEnvInt("HELPER_INT", 1))
	t.Setenv("HELPER_INT", "nope")
	assert.Equal(t, 1, GetEnvInt("HELPER_INT", 1))

	t.Setenv("HELPER_DUR", "1500ms")
	assert.Equal(t, 1500*time.Millisecond, GetEnvDuration("HELPER_DUR", time.Second))
	t.Setenv("HELPER_DUR", "5")
	assert.Equal(t, 5*time.Second, GetEnvDuration("HELPER_DUR", time.Second))
}

func TestLoadFeedsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feeds.txt")
	content := "# comment line\nhttps://example.com/a.xml\n\nhttps://example.com/b.xml\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFeedsFile(path))
	assert.Equal(t, []string{"https://example.com/a.xml", "https://example.com/b.xml"}, cfg.Feeds)
}

func TestLoadFeedsFileEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feeds.txt")
	require.NoError(t, os.WriteFile(path, []byte("# only comments\n"), 0644))

	cfg := DefaultConfig()
	assert.Error(t, cfg.LoadFeedsFile(path))
}

func TestLoadFeedsFileMissing(t *testing.T) {
	cfg := DefaultConfig()
	assert.Error(t, cfg.LoadFeedsFile(filepath.Join(t.TempDir(), "nope.txt")))
}
