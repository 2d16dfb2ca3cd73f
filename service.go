package uauth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Amsiam/uauth/oauth2"
)

// Exchanger is the OAuth2 collaborator the facade depends on; satisfied by
// *oauth2.Client and by test fakes.
type Exchanger interface {
	Exchange(ctx context.Context, providerName, code, redirectURI string) (*oauth2.Identity, error)
}

// SignInResult is returned by every operation that establishes a session.
type SignInResult struct {
	User   *User      `json:"user"`
	Tokens *TokenPair `json:"tokens"`
}

// Auth is the session facade: it composes the hasher, token issuer, account
// resolver and OAuth2 exchange client into the request-facing operations.
// It is stateless between calls; the store is the only shared state.
type Auth struct {
	Store     Store
	Issuer    *Issuer
	Exchanger Exchanger
	Providers *oauth2.Registry

	// RevokeOnRefresh selects the rotation policy. When false (the default)
	// the presented refresh token stays valid after a refresh; when true it
	// is revoked as part of rotation.
	RevokeOnRefresh bool

	resolver Resolver
}

// NewAuth wires a facade from a config and a store.
func NewAuth(cfg Config, store Store) *Auth {
	registry := cfg.ProviderRegistry()
	return &Auth{
		Store: store,
		Issuer: &Issuer{
			SecretKey:       cfg.SecretKey,
			Issuer:          cfg.AppName,
			AccessTokenTTL:  cfg.AccessTokenTTL,
			RefreshTokenTTL: cfg.RefreshTokenTTL,
			Store:           store,
		},
		Exchanger:       oauth2.NewClient(registry),
		Providers:       registry,
		RevokeOnRefresh: cfg.RevokeOnRefresh,
		resolver:        Resolver{Store: store},
	}
}

// SignUp registers a password account and signs it in.
func (a *Auth) SignUp(ctx context.Context, email, password, name string) (*SignInResult, error) {
	user, err := a.resolver.SignUp(ctx, email, password, name)
	if err != nil {
		return nil, err
	}
	return a.establishSession(ctx, user)
}

// SignInPassword authenticates an email/password pair and issues a fresh
// token pair.
func (a *Auth) SignInPassword(ctx context.Context, email, password string) (*SignInResult, error) {
	user, err := a.resolver.AuthenticatePassword(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return a.establishSession(ctx, user)
}

// SignInOAuth2 exchanges an authorization code with the named provider,
// resolves the resulting identity to an account and signs it in.
func (a *Auth) SignInOAuth2(ctx context.Context, providerName, code, redirectURI string) (*SignInResult, error) {
	ident, err := a.Exchanger.Exchange(ctx, providerName, code, redirectURI)
	if err != nil {
		switch {
		case errors.Is(err, oauth2.ErrUnknownProvider),
			errors.Is(err, oauth2.ErrProviderNotConfigured),
			errors.Is(err, oauth2.ErrExchangeFailed):
			return nil, WrapAuthError(CodeOAuth2Error, err.Error(), err)
		}
		return nil, err
	}

	user, err := a.resolver.ResolveOAuth2(ctx, ident)
	if err != nil {
		return nil, err
	}
	return a.establishSession(ctx, user)
}

// Refresh rotates the token pair. The presented token must verify; whether
// it survives the rotation is governed by RevokeOnRefresh.
func (a *Auth) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	rt, err := a.Issuer.VerifyRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, ErrInvalidToken) {
			return nil, NewAuthError(CodeInvalidToken, "Refresh token is invalid or expired")
		}
		return nil, err
	}

	pair, err := a.Issuer.IssuePair(ctx, rt.UserID)
	if err != nil {
		return nil, err
	}

	if a.RevokeOnRefresh {
		if _, err := a.Store.DeleteRefreshToken(ctx, refreshToken); err != nil {
			slog.Warn("failed to revoke rotated refresh token", "err", err)
		}
	}
	return pair, nil
}

// GetSession returns the user for a verified subject id.
func (a *Auth) GetSession(ctx context.Context, userID string) (*User, error) {
	user, err := a.Store.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, NewAuthError(CodeUnauthorized, "User not found")
		}
		return nil, err
	}
	return user, nil
}

// SignOut revokes every refresh token the user owns, not just the one
// presented.
func (a *Auth) SignOut(ctx context.Context, userID string) error {
	count, err := a.Store.DeleteUserRefreshTokens(ctx, userID)
	if err != nil {
		return err
	}
	slog.Debug("revoked refresh tokens", "user_id", userID, "count", count)
	return nil
}

func (a *Auth) establishSession(ctx context.Context, user *User) (*SignInResult, error) {
	pair, err := a.Issuer.IssuePair(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &SignInResult{User: user, Tokens: pair}, nil
}
