package youtube

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"

	"github.com/youruser/likethumb/internal/store"
)

func TestLazyWaitsForToken(t *testing.T) {
	api := &fakeAPI{videoJSON: `{"items":[{"id":"vid","statistics":{"viewCount":"3","likeCount":"1"}}]}`}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	a, tokenFile := newTestAuthenticator(t, `{}`)
	lazy := NewLazy(context.Background(), a, nil, option.WithEndpoint(srv.URL+"/"))

	_, err := lazy.Video(context.Background(), "vid")
	require.ErrorIs(t, err, ErrNotAuthorized)

	require.NoError(t, store.NewFile[oauth2.Token](tokenFile, 0o600).Save(oauth2.Token{
		AccessToken: "valid",
		TokenType:   "Bearer",
		Expiry:      time.Now().Add(time.Hour),
	}))

	v, err := lazy.Video(context.Background(), "vid")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), v.LikeCount)

	lazy.Reset()
	assert.Nil(t, lazy.client)
}
