package google

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/oauth2"
)

var ErrUnknownNonce = errors.New("no pending Google login for nonce")

// TokenRepository keeps one OAuth token per Google account.
type TokenRepository interface {
	StartLogin(ctx context.Context, account string, nonce string) error
	CompleteLogin(ctx context.Context, nonce string, token *oauth2.Token) error
	Get(ctx context.Context, account string) (*oauth2.Token, error)
	Delete(ctx context.Context, account string) error
}

type TokenRepositoryImpl struct {
	db *pgxpool.Pool
}

func NewTokenRepository(db *pgxpool.Pool) *TokenRepositoryImpl {
	return &TokenRepositoryImpl{db: db}
}

// StartLogin replaces any previous row of the account with a pending login.
func (r *TokenRepositoryImpl) StartLogin(ctx context.Context, account string, nonce string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DELETE FROM google_calendar_auth WHERE account = $1", account); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, "INSERT INTO google_calendar_auth (account, nonce) VALUES ($1, $2)", account, nonce); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *TokenRepositoryImpl) CompleteLogin(ctx context.Context, nonce string, token *oauth2.Token) error {
	tag, err := r.db.Exec(ctx,
		"UPDATE google_calendar_auth SET access_token = $1, refresh_token = $2, expiry = $3 WHERE nonce = $4",
		token.AccessToken, token.RefreshToken, token.Expiry.Unix(), nonce)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUnknownNonce
	}
	return nil
}

// Get returns nil without error when the account has not completed a login.
func (r *TokenRepositoryImpl) Get(ctx context.Context, account string) (*oauth2.Token, error) {
	var accessToken, refreshToken *string
	var expiry *int64
	err := r.db.QueryRow(ctx,
		"SELECT access_token, refresh_token, expiry FROM google_calendar_auth WHERE account = $1", account).
		Scan(&accessToken, &refreshToken, &expiry)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve Google auth token: %w", err)
	}
	if accessToken == nil {
		return nil, nil
	}

	token := &oauth2.Token{AccessToken: *accessToken}
	if refreshToken != nil {
		token.RefreshToken = *refreshToken
	}
	if expiry != nil {
		token.Expiry = time.Unix(*expiry, 0)
	}
	return token, nil
}

func (r *TokenRepositoryImpl) Delete(ctx context.Context, account string) error {
	_, err := r.db.Exec(ctx, "DELETE FROM google_calendar_auth WHERE account = $1", account)
	return err
}
