package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/klokku/calsync/internal/config"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
)

var ErrUnauthenticated = errors.New("google account is unauthenticated, authentication is required")

var ErrInvalidState = errors.New("invalid OAuth state")

const CallbackPath = "/api/integrations/google/auth/callback"

// GoogleAuth runs the OAuth code flow for the single configured account and
// hands out HTTP clients that refresh the stored token.
type GoogleAuth struct {
	tokens      TokenRepository
	account     string
	oauthConfig *oauth2.Config
}

func NewGoogleAuth(tokens TokenRepository, cfg config.Application) *GoogleAuth {
	oauthConfig := &oauth2.Config{
		ClientID:     cfg.Google.ClientId,
		ClientSecret: cfg.Google.ClientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  cfg.Host + CallbackPath,
		Scopes:       []string{gcal.CalendarEventsScope, gcal.CalendarReadonlyScope},
	}
	return &GoogleAuth{tokens: tokens, account: cfg.Google.Account, oauthConfig: oauthConfig}
}

// LoginURL stores a fresh nonce and returns the consent page URL. The state
// carries the final redirect URL and the nonce separated by "|".
func (g *GoogleAuth) LoginURL(ctx context.Context, finalUrl string) (string, error) {
	stateNonce := uuid.NewString()
	if err := g.tokens.StartLogin(ctx, g.account, stateNonce); err != nil {
		err := fmt.Errorf("failed to store Google auth nonce for %s: %w", g.account, err)
		log.Error(err)
		return "", err
	}
	log.Tracef("Redirecting to Google auth URL with nonce: %s", stateNonce)
	return g.oauthConfig.AuthCodeURL(finalUrl+"|"+stateNonce, oauth2.AccessTypeOffline, oauth2.ApprovalForce), nil
}

// Callback exchanges the authorization code and stores the token under the
// nonce found in state. It returns the final redirect URL.
func (g *GoogleAuth) Callback(ctx context.Context, code string, state string) (string, error) {
	finalUrl, nonce, ok := strings.Cut(state, "|")
	if !ok || nonce == "" {
		return finalUrl, ErrInvalidState
	}

	token, err := g.oauthConfig.Exchange(ctx, code)
	if err != nil {
		err := fmt.Errorf("unable to exchange code for token: %w", err)
		log.Error(err)
		return finalUrl, err
	}

	if err := g.tokens.CompleteLogin(ctx, nonce, token); err != nil {
		err := fmt.Errorf("unable to store Google auth token for nonce: %w", err)
		log.Error(err)
		return finalUrl, err
	}
	log.Debug("Successfully stored Google auth token for nonce: ", nonce)
	return finalUrl, nil
}

func (g *GoogleAuth) Logout(ctx context.Context) error {
	return g.tokens.Delete(ctx, g.account)
}

func (g *GoogleAuth) getClient(ctx context.Context) (*http.Client, error) {
	token, err := g.tokens.Get(ctx, g.account)
	if err != nil {
		log.Error(err)
		return nil, err
	}
	if token == nil {
		return nil, nil
	}
	return g.oauthConfig.Client(context.Background(), token), nil
}
