package uauth

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Default token lifetimes.
const (
	DefaultAccessTokenTTL  = 60 * time.Minute
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// TokenPair is the credential pair returned by every successful sign-in,
// sign-up and refresh. ExpiresIn reflects the access token TTL in seconds.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Issuer mints and verifies tokens. Access tokens are stateless HS256 JWTs;
// refresh tokens are opaque random strings persisted via Store.
type Issuer struct {
	// SecretKey signs access tokens.
	SecretKey string

	// Issuer claim added to access tokens, e.g. "uauth".
	Issuer string

	AccessTokenTTL  time.Duration // defaults to 60 minutes
	RefreshTokenTTL time.Duration // defaults to 7 days

	Store Store
}

func (i *Issuer) accessTTL() time.Duration {
	if i.AccessTokenTTL > 0 {
		return i.AccessTokenTTL
	}
	return DefaultAccessTokenTTL
}

func (i *Issuer) refreshTTL() time.Duration {
	if i.RefreshTokenTTL > 0 {
		return i.RefreshTokenTTL
	}
	return DefaultRefreshTokenTTL
}

// IssueAccessToken creates a signed access token for the user with the
// configured TTL.
func (i *Issuer) IssueAccessToken(userID string) (string, error) {
	return i.IssueAccessTokenWithTTL(userID, i.accessTTL())
}

// IssueAccessTokenWithTTL creates a signed access token with an explicit TTL.
func (i *Issuer) IssueAccessTokenWithTTL(userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  userID,
		"type": "access",
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	}
	if i.Issuer != "" {
		claims["iss"] = i.Issuer
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(i.SecretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// VerifyAccessToken validates signature and expiry and returns the subject
// user id. Any malformed, expired, mis-signed or mis-typed input yields an
// error wrapping ErrInvalidToken; verification never panics.
func (i *Issuer) VerifyAccessToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(i.SecretKey), nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("%w: unexpected claims type", ErrInvalidToken)
	}

	// A token whose discriminator is missing or not "access" must never be
	// accepted for resource access.
	if tokenType, ok := claims["type"].(string); !ok || tokenType != "access" {
		return "", fmt.Errorf("%w: not an access token", ErrInvalidToken)
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return sub, nil
}

// IssueRefreshToken generates an opaque ref_<hex> token, persists it and
// returns the record.
func (i *Issuer) IssueRefreshToken(ctx context.Context, userID string) (*RefreshToken, error) {
	id := uuid.New()
	now := time.Now()
	rt := &RefreshToken{
		ID:        NewRefreshTokenID(),
		UserID:    userID,
		Token:     "ref_" + hex.EncodeToString(id[:]),
		ExpiresAt: now.Add(i.refreshTTL()),
		CreatedAt: now,
	}
	if err := i.Store.CreateRefreshToken(ctx, rt); err != nil {
		return nil, fmt.Errorf("failed to persist refresh token: %w", err)
	}
	return rt, nil
}

// VerifyRefreshToken looks the token up by exact string match. Expired
// records are deleted on discovery (lazy purge, no background sweep) and
// reported as ErrInvalidToken.
func (i *Issuer) VerifyRefreshToken(ctx context.Context, token string) (*RefreshToken, error) {
	rt, err := i.Store.GetRefreshToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if rt.IsExpired() {
		if _, err := i.Store.DeleteRefreshToken(ctx, token); err != nil {
			return nil, err
		}
		return nil, ErrInvalidToken
	}
	return rt, nil
}

// IssuePair mints a fresh access/refresh pair for the user.
func (i *Issuer) IssuePair(ctx context.Context, userID string) (*TokenPair, error) {
	access, err := i.IssueAccessToken(userID)
	if err != nil {
		return nil, err
	}
	refresh, err := i.IssueRefreshToken(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh.Token,
		ExpiresIn:    int64(i.accessTTL().Seconds()),
	}, nil
}
