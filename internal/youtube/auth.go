package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	yt "google.golang.org/api/youtube/v3"

	"github.com/youruser/likethumb/internal/store"
)

var ErrNotAuthorized = errors.New("youtube: no stored token, complete the OAuth flow first")

// Scopes requested on the consent screen.
var Scopes = []string{"profile", "email", yt.YoutubeScope}

// Authenticator runs the offline OAuth flow and keeps the token in a JSON
// snapshot, rewriting it whenever the access token is refreshed.
type Authenticator struct {
	oauth  *oauth2.Config
	tokens *store.File[oauth2.Token]
}

func NewAuthenticator(clientID, clientSecret, redirectURL, tokenFile string) *Authenticator {
	return &Authenticator{
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       Scopes,
			Endpoint:     google.Endpoint,
		},
		tokens: store.NewFile[oauth2.Token](tokenFile, 0o600),
	}
}

func (a *Authenticator) AuthCodeURL(state string) string {
	return a.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Exchange trades an authorization code for a token and stores it.
func (a *Authenticator) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	tok, err := a.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchanging auth code: %w", err)
	}
	if err := a.tokens.Save(*tok); err != nil {
		return nil, err
	}
	log.Info().Str("token_file", a.tokens.Path()).Msg("oauth token stored")
	return tok, nil
}

// TokenSource loads the stored token and returns a source that refreshes it
// and persists every new token.
func (a *Authenticator) TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	tok, err := a.tokens.Load()
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotAuthorized
	}
	if err != nil {
		return nil, err
	}
	return &persistingSource{
		src:   oauth2.ReuseTokenSource(&tok, a.oauth.TokenSource(ctx, &tok)),
		store: a.tokens,
		last:  tok.AccessToken,
	}, nil
}

func (a *Authenticator) HTTPClient(ctx context.Context) (*http.Client, error) {
	ts, err := a.TokenSource(ctx)
	if err != nil {
		return nil, err
	}
	return oauth2.NewClient(ctx, ts), nil
}

type persistingSource struct {
	src   oauth2.TokenSource
	store *store.File[oauth2.Token]

	mu   sync.Mutex
	last string
}

func (p *persistingSource) Token() (*oauth2.Token, error) {
	tok, err := p.src.Token()
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if tok.AccessToken != p.last {
		if err := p.store.Save(*tok); err != nil {
			log.Warn().Err(err).Msg("persisting refreshed oauth token")
		} else {
			p.last = tok.AccessToken
			log.Debug().Time("expiry", tok.Expiry).Msg("oauth token refreshed")
		}
	}
	return tok, nil
}
