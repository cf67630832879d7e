// Package updater decides when the video needs a new title and thumbnail and
// drives the YouTube client and the renderer accordingly.
package updater

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"text/template"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/youruser/likethumb/internal/config"
	imagepkg "github.com/youruser/likethumb/internal/image"
	"github.com/youruser/likethumb/internal/store"
	"github.com/youruser/likethumb/internal/youtube"
)

type VideoService interface {
	Video(ctx context.Context, id string) (*youtube.Video, error)
	UpdateTitle(ctx context.Context, id, title, categoryID, description string) error
	SetThumbnail(ctx context.Context, id string, jpeg []byte) error
	SubscriberCount(ctx context.Context, channelID string) (uint64, error)
}

type Generator interface {
	Generate(ctx context.Context, n int64) (*imagepkg.Thumbnail, error)
}

type StatsStore interface {
	Load() (store.Stats, error)
	Save(store.Stats) error
}

// TitleData is what the title template sees.
type TitleData struct {
	Likes uint64
	Views uint64
	Title string
}

// Result reports what an update cycle did.
type Result struct {
	Changed   bool                `json:"changed"`
	Stats     store.Stats         `json:"stats"`
	Title     string              `json:"title,omitempty"`
	Thumbnail *imagepkg.Thumbnail `json:"thumbnail,omitempty"`
}

type Updater struct {
	videos    VideoService
	gen       Generator
	stats     StatsStore
	title     *template.Template
	videoID   string
	channelID string
	metric    config.Metric
}

type Options struct {
	VideoID       string
	ChannelID     string
	TitleTemplate string
	Metric        config.Metric
}

func New(videos VideoService, gen Generator, stats StatsStore, opts Options) (*Updater, error) {
	tmpl, err := template.New("title").Option("missingkey=error").Parse(opts.TitleTemplate)
	if err != nil {
		return nil, fmt.Errorf("parsing title template: %w", err)
	}
	if opts.Metric == "" {
		opts.Metric = config.MetricLikes
	}
	return &Updater{
		videos:    videos,
		gen:       gen,
		stats:     stats,
		title:     tmpl,
		videoID:   opts.VideoID,
		channelID: opts.ChannelID,
		metric:    opts.Metric,
	}, nil
}

// RenderTitle executes the title template.
func (u *Updater) RenderTitle(d TitleData) (string, error) {
	var buf bytes.Buffer
	if err := u.title.Execute(&buf, d); err != nil {
		return "", fmt.Errorf("rendering title: %w", err)
	}
	return buf.String(), nil
}

// Update runs one cycle. When views and likes match the stored snapshot
// nothing is touched; otherwise the title and thumbnail are replaced and the
// snapshot is saved last, so a failed cycle is retried on the next one.
func (u *Updater) Update(ctx context.Context) (*Result, error) {
	video, err := u.videos.Video(ctx, u.videoID)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("video_id", video.ID).Str("title", video.Title).Msg("got video")

	current := store.Stats{ViewCount: video.ViewCount, LikeCount: video.LikeCount}
	previous, err := u.stats.Load()
	if err != nil {
		return nil, fmt.Errorf("loading stats: %w", err)
	}
	if previous == current {
		log.Info().Uint64("views", current.ViewCount).Uint64("likes", current.LikeCount).Msg("stats unchanged")
		return &Result{Stats: current}, nil
	}
	title, err := u.RenderTitle(TitleData{Likes: current.LikeCount, Views: current.ViewCount, Title: video.Title})
	if err != nil {
		return nil, err
	}
	if err := u.videos.UpdateTitle(ctx, u.videoID, title, video.CategoryID, video.Description); err != nil {
		return nil, err
	}

	count, err := u.metricValue(ctx, video)
	if err != nil {
		return nil, err
	}
	thumb, err := u.gen.Generate(ctx, count)
	if err != nil {
		return nil, fmt.Errorf("generating thumbnail: %w", err)
	}
	log.Info().Str("file", thumb.Path).Str("digits", thumb.Digits).Msg("generated thumbnail")

	if err := u.videos.SetThumbnail(ctx, u.videoID, thumb.Data); err != nil {
		return nil, err
	}
	if err := u.stats.Save(current); err != nil {
		return nil, fmt.Errorf("saving stats: %w", err)
	}
	return &Result{Changed: true, Stats: current, Title: title, Thumbnail: thumb}, nil
}

func (u *Updater) metricValue(ctx context.Context, v *youtube.Video) (int64, error) {
	var n uint64
	switch u.metric {
	case config.MetricViews:
		n = v.ViewCount
	case config.MetricSubscribers:
		subs, err := u.videos.SubscriberCount(ctx, u.channelID)
		if err != nil {
			return 0, err
		}
		n = subs
	default:
		n = v.LikeCount
	}
	if n > math.MaxInt64 {
		return 0, fmt.Errorf("%s count %d out of range", u.metric, n)
	}
	return int64(n), nil
}

// Run calls Update immediately and then every interval until ctx is done.
// Failed cycles are logged and retried on the next tick.
func (u *Updater) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		log.Info().Msg("updating video")
		if _, err := u.Update(ctx); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("error updating video")
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
