package youtube

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

type fakeAPI struct {
	updated   map[string]any
	uploaded  []byte
	uploadCT  string
	videoJSON string
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch {
	case strings.HasSuffix(r.URL.Path, "/videos") && r.Method == http.MethodGet:
		io.WriteString(w, f.videoJSON)
	case strings.HasSuffix(r.URL.Path, "/videos") && r.Method == http.MethodPut:
		_ = json.NewDecoder(r.Body).Decode(&f.updated)
		io.WriteString(w, `{"id":"vid"}`)
	case strings.HasSuffix(r.URL.Path, "/thumbnails/set"):
		f.uploadCT = r.Header.Get("Content-Type")
		f.uploaded, _ = io.ReadAll(r.Body)
		io.WriteString(w, `{"items":[]}`)
	case strings.HasSuffix(r.URL.Path, "/channels"):
		io.WriteString(w, `{"items":[{"id":"chan","statistics":{"subscriberCount":"4321"}}]}`)
	default:
		http.NotFound(w, r)
	}
}

func newTestClient(t *testing.T, api *fakeAPI) *Client {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	c, err := NewClient(context.Background(), srv.Client(), nil, option.WithEndpoint(srv.URL+"/"))
	require.NoError(t, err)
	return c
}

func TestVideo(t *testing.T) {
	api := &fakeAPI{videoJSON: `{"items":[{"id":"vid","snippet":{"title":"Old","description":"desc","categoryId":"28"},"statistics":{"viewCount":"120","likeCount":"7"}}]}`}
	c := newTestClient(t, api)

	v, err := c.Video(context.Background(), "vid")
	require.NoError(t, err)
	assert.Equal(t, &Video{ID: "vid", Title: "Old", Description: "desc", CategoryID: "28", ViewCount: 120, LikeCount: 7}, v)
}

func TestVideoNotFound(t *testing.T) {
	c := newTestClient(t, &fakeAPI{videoJSON: `{"items":[]}`})

	_, err := c.Video(context.Background(), "nope")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateTitleResendsSnippet(t *testing.T) {
	api := &fakeAPI{}
	c := newTestClient(t, api)

	require.NoError(t, c.UpdateTitle(context.Background(), "vid", "New title", "28", "desc"))
	snippet, ok := api.updated["snippet"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "vid", api.updated["id"])
	assert.Equal(t, "New title", snippet["title"])
	assert.Equal(t, "28", snippet["categoryId"])
	assert.Equal(t, "desc", snippet["description"])
}

func TestSetThumbnailUploadsBytes(t *testing.T) {
	api := &fakeAPI{}
	c := newTestClient(t, api)

	require.NoError(t, c.SetThumbnail(context.Background(), "vid", []byte("jpeg-bytes")))
	assert.Contains(t, string(api.uploaded), "jpeg-bytes")
	assert.NotEmpty(t, api.uploadCT)
}

func TestSetThumbnailEmpty(t *testing.T) {
	api := &fakeAPI{}
	c := newTestClient(t, api)
	require.Error(t, c.SetThumbnail(context.Background(), "vid", nil))
	assert.Nil(t, api.uploaded, "nothing is sent")
}

func TestSubscriberCount(t *testing.T) {
	c := newTestClient(t, &fakeAPI{})

	n, err := c.SubscriberCount(context.Background(), "chan")
	require.NoError(t, err)
	assert.Equal(t, uint64(4321), n)
}

func TestCancelledContext(t *testing.T) {
	c := newTestClient(t, &fakeAPI{})
	c.limiter = DefaultLimiter()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Video(ctx, "vid")
	require.Error(t, err)
}
