package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	imagepkg "github.com/youruser/likethumb/internal/image"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "token.json", cfg.TokenFile)
	assert.Equal(t, "stats.json", cfg.StatsFile)
	assert.Equal(t, MetricLikes, cfg.Metric)
	assert.Equal(t, DefaultTitleTemplate, cfg.TitleTemplate)
	assert.Zero(t, cfg.UpdateInterval)
	assert.Equal(t, imagepkg.DefaultConfig(), cfg.Render)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("YOUTUBE_VIDEO_ID", "vid")
	t.Setenv("PORT", "3000")
	t.Setenv("REDIRECT_URL", "http://example.test/")
	t.Setenv("UPDATE_INTERVAL", "10m")
	t.Setenv("THUMBNAIL_METRIC", "Views")
	t.Setenv("ASSET_DIR", "/srv/assets")
	t.Setenv("OUTPUT_FILE", "/srv/out/thumb.jpg")
	t.Setenv("GENERATE_POLICY", "reject")
	t.Setenv("GLYPH_CACHE", "0")
	t.Setenv("SWEEP_AGE", "1h")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "vid", cfg.VideoID)
	assert.Equal(t, 10*time.Minute, cfg.UpdateInterval)
	assert.Equal(t, MetricViews, cfg.Metric)
	assert.Equal(t, "http://example.test:3000", cfg.OAuthRedirect())
	assert.Equal(t, "/srv/assets", cfg.Render.AssetDir)
	assert.Equal(t, "/srv/out/thumb.jpg", cfg.Render.OutputPath)
	assert.Equal(t, imagepkg.PolicyReject, cfg.Render.Policy)
	assert.Equal(t, 0, cfg.Render.GlyphCache)
	assert.Equal(t, time.Hour, cfg.Render.SweepAge)
}

func TestFromEnvRejectsBadValues(t *testing.T) {
	t.Run("interval", func(t *testing.T) {
		t.Setenv("UPDATE_INTERVAL", "often")
		_, err := FromEnv()
		require.Error(t, err)
	})
	t.Run("metric", func(t *testing.T) {
		t.Setenv("THUMBNAIL_METRIC", "comments")
		_, err := FromEnv()
		require.Error(t, err)
	})
	t.Run("sweep age", func(t *testing.T) {
		t.Setenv("SWEEP_AGE", "-1m")
		_, err := FromEnv()
		require.Error(t, err)
	})
	t.Run("policy", func(t *testing.T) {
		t.Setenv("GENERATE_POLICY", "drop")
		_, err := FromEnv()
		require.Error(t, err)
	})
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("YOUTUBE_CHANNEL_ID=chan-from-file\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("YOUTUBE_CHANNEL_ID") })

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "chan-from-file", cfg.ChannelID)
}

func TestValidateAPI(t *testing.T) {
	cfg := Config{Metric: MetricSubscribers}
	err := cfg.ValidateAPI()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "YOUTUBE_CLIENT_ID")
	assert.Contains(t, err.Error(), "YOUTUBE_CHANNEL_ID")

	cfg = Config{ClientID: "id", ClientSecret: "secret", VideoID: "vid", Metric: MetricLikes}
	require.NoError(t, cfg.ValidateAPI())
}
