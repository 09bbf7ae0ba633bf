package google

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/example/schedule-sync/domain/errs"
	domain "github.com/example/schedule-sync/domain/user"
	"github.com/example/schedule-sync/modules/auth"
	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrNotLinked is returned when the user never linked a Google account.
	ErrNotLinked = errs.New(errs.KindPreconditionFailed, "google account not linked")
	// ErrNoRefreshToken is returned when an expired bundle cannot be refreshed.
	ErrNoRefreshToken = errs.New(errs.KindPreconditionFailed, "google account must be linked again")
	// ErrMissingCode is returned when no authorization code was supplied.
	ErrMissingCode = errs.New(errs.KindBadRequest, "authorization code is required")
)

// TokenManager keeps each user's access token usable, refreshing it against
// the provider's token endpoint only once it has expired.
type TokenManager struct {
	store  auth.CredentialStore
	oauth  *oauth2.Config
	client *http.Client
	group  singleflight.Group
	now    func() time.Time
}

// NewTokenManager creates a new TokenManager.
func NewTokenManager(store auth.CredentialStore, cfg Config, client *http.Client) *TokenManager {
	return &TokenManager{
		store: store,
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint: oauth2.Endpoint{
				AuthURL:   googleoauth.Endpoint.AuthURL,
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		client: client,
		now:    time.Now,
	}
}

// EnsureFreshAccessToken returns the stored access token while it is valid
// and otherwise exchanges the refresh token for a new one.
func (m *TokenManager) EnsureFreshAccessToken(ctx context.Context, userID string) (*AccessToken, error) {
	user, err := m.store.FindUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.HasGoogleAuth() {
		return nil, ErrNotLinked
	}
	if user.GoogleAuth.Fresh(m.now()) {
		return &AccessToken{
			Token:     user.GoogleAuth.AccessToken,
			ExpiresAt: user.GoogleAuth.ExpiresAt,
		}, nil
	}

	// Concurrent requests for the same user share one refresh grant.
	v, err, _ := m.group.Do(userID, func() (any, error) {
		return m.refresh(ctx, user)
	})
	if err != nil {
		return nil, err
	}
	return v.(*AccessToken), nil
}

func (m *TokenManager) refresh(ctx context.Context, user *domain.User) (*AccessToken, error) {
	current := user.GoogleAuth
	if current.RefreshToken == "" {
		return nil, ErrNoRefreshToken
	}

	source := m.oauth.TokenSource(m.withClient(ctx), &oauth2.Token{RefreshToken: current.RefreshToken})
	token, err := source.Token()
	if err != nil {
		log.Printf("[google] Token refresh for user %s failed: %v", user.ID, err)
		return nil, errs.Wrap(errs.KindUpstream, "failed to refresh google token", err)
	}

	bundle, err := m.bundle(token)
	if err != nil {
		return nil, err
	}
	// Providers do not always rotate the refresh token.
	if bundle.RefreshToken == current.RefreshToken {
		bundle.RefreshToken = ""
	}

	if err := m.store.SaveGoogleAuth(ctx, user.ID, bundle); err != nil {
		return nil, fmt.Errorf("failed to store refreshed token: %w", err)
	}

	log.Printf("[google] Refreshed access token for user %s (expires %s)", user.ID, bundle.ExpiresAt.Format(time.RFC3339))
	return &AccessToken{Token: bundle.AccessToken, ExpiresAt: bundle.ExpiresAt}, nil
}

// LinkAccount exchanges a one-time authorization code for the user's first
// credential bundle and stores it.
func (m *TokenManager) LinkAccount(ctx context.Context, userID, code string) (*AccessToken, error) {
	if code == "" {
		return nil, ErrMissingCode
	}
	if _, err := m.store.FindUser(ctx, userID); err != nil {
		return nil, err
	}

	token, err := m.oauth.Exchange(m.withClient(ctx), code)
	if err != nil {
		log.Printf("[google] Code exchange for user %s failed: %v", userID, err)
		return nil, errs.Wrap(errs.KindUpstream, "failed to exchange authorization code", err)
	}

	bundle, err := m.bundle(token)
	if err != nil {
		return nil, err
	}
	if err := m.store.SaveGoogleAuth(ctx, userID, bundle); err != nil {
		return nil, fmt.Errorf("failed to store google token: %w", err)
	}

	log.Printf("[google] Linked google account for user %s", userID)
	return &AccessToken{Token: bundle.AccessToken, ExpiresAt: bundle.ExpiresAt}, nil
}

// bundle validates a token endpoint response.
func (m *TokenManager) bundle(token *oauth2.Token) (domain.GoogleAuth, error) {
	if token == nil || token.AccessToken == "" {
		return domain.GoogleAuth{}, errs.New(errs.KindUpstream, "token response carries no access token")
	}
	if token.Expiry.IsZero() {
		return domain.GoogleAuth{}, errs.New(errs.KindUpstream, "token response carries no lifetime")
	}
	return domain.GoogleAuth{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    token.Expiry,
	}, nil
}

func (m *TokenManager) withClient(ctx context.Context) context.Context {
	if m.client == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, m.client)
}
