// Package youtube wraps the YouTube Data API v3 calls the updater needs:
// reading a video's statistics, rewriting its title and uploading a thumbnail.
package youtube

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"
)

var ErrNotFound = errors.New("youtube: resource not found")

// Video is the subset of a video resource the updater works with.
type Video struct {
	ID          string
	Title       string
	Description string
	CategoryID  string
	ViewCount   uint64
	LikeCount   uint64
}

type Client struct {
	svc     *yt.Service
	limiter *rate.Limiter
}

// DefaultLimiter keeps well inside the API's per-user request quota.
func DefaultLimiter() *rate.Limiter {
	return rate.NewLimiter(rate.Every(time.Second), 3)
}

// NewClient builds a client on an already authorised HTTP client. A nil
// limiter disables pacing.
func NewClient(ctx context.Context, httpClient *http.Client, limiter *rate.Limiter, opts ...option.ClientOption) (*Client, error) {
	opts = append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)
	svc, err := yt.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating youtube service: %w", err)
	}
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 0)
	}
	return &Client{svc: svc, limiter: limiter}, nil
}

func (c *Client) Video(ctx context.Context, id string) (*Video, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	resp, err := c.svc.Videos.List([]string{"statistics", "snippet"}).Id(id).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("listing video %s: %w", id, err)
	}
	if len(resp.Items) == 0 {
		return nil, fmt.Errorf("video %s: %w", id, ErrNotFound)
	}
	item := resp.Items[0]
	v := &Video{ID: item.Id}
	if item.Snippet != nil {
		v.Title = item.Snippet.Title
		v.Description = item.Snippet.Description
		v.CategoryID = item.Snippet.CategoryId
	}
	if item.Statistics != nil {
		v.ViewCount = item.Statistics.ViewCount
		v.LikeCount = item.Statistics.LikeCount
	}
	return v, nil
}

// UpdateTitle replaces the snippet. The API requires category and
// description to be resent, otherwise they are cleared.
func (c *Client) UpdateTitle(ctx context.Context, id, title, categoryID, description string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	video := &yt.Video{
		Id: id,
		Snippet: &yt.VideoSnippet{
			Title:       title,
			CategoryId:  categoryID,
			Description: description,
		},
	}
	if _, err := c.svc.Videos.Update([]string{"snippet"}, video).Context(ctx).Do(); err != nil {
		return fmt.Errorf("updating title of %s: %w", id, err)
	}
	log.Info().Str("video_id", id).Str("title", title).Msg("title updated")
	return nil
}

// SetThumbnail uploads JPEG bytes as the video's custom thumbnail.
func (c *Client) SetThumbnail(ctx context.Context, id string, jpeg []byte) error {
	if len(jpeg) == 0 {
		return fmt.Errorf("setting thumbnail of %s: empty image", id)
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	_, err := c.svc.Thumbnails.Set(id).Media(bytes.NewReader(jpeg), googleapi.ContentType("image/jpeg")).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("setting thumbnail of %s: %w", id, err)
	}
	log.Info().Str("video_id", id).Int("bytes", len(jpeg)).Msg("thumbnail updated")
	return nil
}

func (c *Client) SubscriberCount(ctx context.Context, channelID string) (uint64, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, err
	}
	resp, err := c.svc.Channels.List([]string{"statistics"}).Id(channelID).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("listing channel %s: %w", channelID, err)
	}
	if len(resp.Items) == 0 || resp.Items[0].Statistics == nil {
		return 0, fmt.Errorf("channel %s: %w", channelID, ErrNotFound)
	}
	return resp.Items[0].Statistics.SubscriberCount, nil
}
