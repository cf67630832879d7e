package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	imagepkg "github.com/youruser/likethumb/internal/image"
	"github.com/youruser/likethumb/internal/store"
	"github.com/youruser/likethumb/internal/updater"
	"github.com/youruser/likethumb/internal/youtube"
)

const oauthState = "likethumb"

type Authenticator interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
}

type Generator interface {
	Generate(ctx context.Context, n int64) (*imagepkg.Thumbnail, error)
}

type StatsStore interface {
	Save(store.Stats) error
}

// UpdateFunc runs one update cycle, normally (*updater.Updater).Update.
type UpdateFunc func(ctx context.Context) (*updater.Result, error)

type Handlers struct {
	Auth     Authenticator
	Renderer Generator
	Stats    StatsStore
	Update   UpdateFunc

	// OnAuthorized, if set, runs after a new token has been stored.
	OnAuthorized func()
}

// health
func health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// oauth completes the consent flow when Google redirects back with a code,
// otherwise sends the browser to the consent screen.
func (h *Handlers) oauth(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		c.Redirect(http.StatusFound, h.Auth.AuthCodeURL(oauthState))
		return
	}
	if _, err := h.Auth.Exchange(c.Request.Context(), code); err != nil {
		fail(c, err)
		return
	}
	if err := h.Stats.Save(store.Stats{}); err != nil {
		fail(c, err)
		return
	}
	if h.OnAuthorized != nil {
		h.OnAuthorized()
	}
	c.JSON(http.StatusOK, gin.H{"message": "Success! Token stored successfully"})
}

// authQR returns the consent URL as a PNG QR code
func (h *Handlers) authQR(c *gin.Context) {
	size := 400
	if v, err := strconv.Atoi(c.Query("size")); err == nil {
		size = v
	}
	b, err := imagepkg.LinkQR(h.Auth.AuthCodeURL(oauthState), size)
	if err != nil {
		fail(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", b)
}

func (h *Handlers) update(c *gin.Context) {
	res, err := h.Update(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// preview renders a thumbnail for ?count= and returns the JPEG
func (h *Handlers) preview(c *gin.Context) {
	n, err := imagepkg.ParseCount(c.Query("count"))
	if err != nil {
		fail(c, err)
		return
	}
	thumb, err := h.Renderer.Generate(c.Request.Context(), n)
	if err != nil {
		fail(c, err)
		return
	}
	c.Header("X-Thumbnail-Digits", thumb.Digits)
	c.Data(http.StatusOK, "image/jpeg", thumb.Data)
}

func fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
	}
	_ = c.Error(err)
	c.JSON(status, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, imagepkg.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, youtube.ErrNotAuthorized):
		return http.StatusUnauthorized
	case errors.Is(err, imagepkg.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, youtube.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
