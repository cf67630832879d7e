package youtube

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
	"google.golang.org/api/option"
)

// Lazy builds the Client on first use, so the server can start before the
// OAuth flow has stored a token. base outlives every request; token refreshes
// run under it.
type Lazy struct {
	base    context.Context
	auth    *Authenticator
	limiter *rate.Limiter
	opts    []option.ClientOption

	mu     sync.Mutex
	client *Client
}

func NewLazy(base context.Context, auth *Authenticator, limiter *rate.Limiter, opts ...option.ClientOption) *Lazy {
	return &Lazy{base: base, auth: auth, limiter: limiter, opts: opts}
}

func (l *Lazy) get() (*Client, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.client != nil {
		return l.client, nil
	}
	hc, err := l.auth.HTTPClient(l.base)
	if err != nil {
		return nil, err
	}
	c, err := NewClient(l.base, hc, l.limiter, l.opts...)
	if err != nil {
		return nil, err
	}
	l.client = c
	return c, nil
}

// Reset drops the cached client so the next call picks up a newly stored token.
func (l *Lazy) Reset() {
	l.mu.Lock()
	l.client = nil
	l.mu.Unlock()
}

func (l *Lazy) Video(ctx context.Context, id string) (*Video, error) {
	c, err := l.get()
	if err != nil {
		return nil, err
	}
	return c.Video(ctx, id)
}

func (l *Lazy) UpdateTitle(ctx context.Context, id, title, categoryID, description string) error {
	c, err := l.get()
	if err != nil {
		return err
	}
	return c.UpdateTitle(ctx, id, title, categoryID, description)
}

func (l *Lazy) SetThumbnail(ctx context.Context, id string, jpeg []byte) error {
	c, err := l.get()
	if err != nil {
		return err
	}
	return c.SetThumbnail(ctx, id, jpeg)
}

func (l *Lazy) SubscriberCount(ctx context.Context, channelID string) (uint64, error) {
	c, err := l.get()
	if err != nil {
		return 0, err
	}
	return c.SubscriberCount(ctx, channelID)
}
