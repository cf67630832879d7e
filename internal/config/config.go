package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	imagepkg "github.com/youruser/likethumb/internal/image"
)

// Metric selects which statistic is drawn on the thumbnail.
type Metric string

const (
	MetricLikes       Metric = "likes"
	MetricViews       Metric = "views"
	MetricSubscribers Metric = "subscribers"
)

const DefaultTitleTemplate = "O que é API? Esse video tem {{.Likes}} likes e {{.Views}} views!"

type Config struct {
	ClientID     string
	ClientSecret string
	VideoID      string
	ChannelID    string
	TokenFile    string
	StatsFile    string
	RedirectURL  string
	Port         string

	TitleTemplate  string
	Metric         Metric
	UpdateInterval time.Duration

	LogLevel  string
	LogFormat string

	Render imagepkg.Config
}

// Load reads an optional .env file and then the process environment.
func Load(envFiles ...string) (Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("loading env file: %w", err)
	}
	return FromEnv()
}

func FromEnv() (Config, error) {
	render := imagepkg.DefaultConfig()
	render.AssetDir = getenv("ASSET_DIR", render.AssetDir)
	render.BaseImage = getenv("BASE_IMAGE", render.BaseImage)
	render.WorkDir = getenv("WORK_DIR", render.WorkDir)
	render.OutputPath = getenv("OUTPUT_FILE", render.OutputPath)
	render.Policy = imagepkg.Policy(getenv("GENERATE_POLICY", string(render.Policy)))

	cfg := Config{
		ClientID:      os.Getenv("YOUTUBE_CLIENT_ID"),
		ClientSecret:  os.Getenv("YOUTUBE_CLIENT_SECRET"),
		VideoID:       os.Getenv("YOUTUBE_VIDEO_ID"),
		ChannelID:     os.Getenv("YOUTUBE_CHANNEL_ID"),
		TokenFile:     getenv("TOKEN_FILE", "token.json"),
		StatsFile:     getenv("STATS_FILE", "stats.json"),
		RedirectURL:   getenv("REDIRECT_URL", "http://localhost"),
		Port:          getenv("PORT", "8080"),
		TitleTemplate: getenv("TITLE_TEMPLATE", DefaultTitleTemplate),
		Metric:        Metric(strings.ToLower(getenv("THUMBNAIL_METRIC", string(MetricLikes)))),
		LogLevel:      getenv("LOG_LEVEL", "info"),
		LogFormat:     getenv("LOG_FORMAT", "pretty"),
		Render:        render,
	}

	if v := os.Getenv("UPDATE_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("UPDATE_INTERVAL: %w", err)
		}
		cfg.UpdateInterval = d
	}
	if v := os.Getenv("SWEEP_AGE"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("SWEEP_AGE: %w", err)
		}
		cfg.Render.SweepAge = d
	}
	if v := os.Getenv("GLYPH_CACHE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("GLYPH_CACHE: %w", err)
		}
		cfg.Render.GlyphCache = n
	}

	if err := cfg.Render.Validate(); err != nil {
		return cfg, err
	}
	switch cfg.Metric {
	case MetricLikes, MetricViews, MetricSubscribers:
	default:
		return cfg, fmt.Errorf("THUMBNAIL_METRIC: unknown metric %q", cfg.Metric)
	}
	return cfg, nil
}

// OAuthRedirect is the callback URL registered with Google: the redirect
// base joined with the listen port.
func (c Config) OAuthRedirect() string {
	return strings.TrimRight(c.RedirectURL, "/") + ":" + c.Port
}

// ValidateAPI checks what the YouTube-facing commands need.
func (c Config) ValidateAPI() error {
	var missing []string
	if c.ClientID == "" {
		missing = append(missing, "YOUTUBE_CLIENT_ID")
	}
	if c.ClientSecret == "" {
		missing = append(missing, "YOUTUBE_CLIENT_SECRET")
	}
	if c.VideoID == "" {
		missing = append(missing, "YOUTUBE_VIDEO_ID")
	}
	if c.Metric == MetricSubscribers && c.ChannelID == "" {
		missing = append(missing, "YOUTUBE_CHANNEL_ID")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required settings: %s", strings.Join(missing, ", "))
	}
	return nil
}

func getenv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}
