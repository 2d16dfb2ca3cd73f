package uauth

import (
	"context"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
)

// User is an identity record. HashedPassword is always present, even for
// accounts created via OAuth2 (those carry a random secret so that password
// sign-in can never succeed against them).
type User struct {
	ID                  string    `json:"id"`
	Email               string    `json:"email"`
	Name                string    `json:"name,omitempty"`
	HashedPassword      string    `json:"-"`
	OAuthProvider       string    `json:"-"`
	OAuthProviderUserID string    `json:"-"`
	CreatedAt           time.Time `json:"-"`
	UpdatedAt           time.Time `json:"-"`
}

// RefreshToken is a long-lived opaque credential persisted by the store.
// It is created on every sign-in/sign-up/refresh and destroyed on sign-out
// or lazily once discovered expired.
type RefreshToken struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// IsExpired reports whether the token's expiry instant has passed.
func (t *RefreshToken) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}

// Store is the persistence boundary for the engine. The core depends only on
// this interface; missing records are reported as ErrNotFound.
type Store interface {
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByID(ctx context.Context, id string) (*User, error)
	CreateUser(ctx context.Context, user *User) error
	SaveUser(ctx context.Context, user *User) error

	GetRefreshToken(ctx context.Context, token string) (*RefreshToken, error)
	CreateRefreshToken(ctx context.Context, token *RefreshToken) error

	// DeleteRefreshToken removes one record, reporting whether it existed.
	DeleteRefreshToken(ctx context.Context, token string) (bool, error)

	// DeleteUserRefreshTokens removes every token owned by the user and
	// returns how many were deleted.
	DeleteUserRefreshTokens(ctx context.Context, userID string) (int64, error)
}

// NewUserID returns a fresh user id of the form usr_<hex>.
func NewUserID() string {
	id := uuid.New()
	return "usr_" + hex.EncodeToString(id[:])[:16]
}

// NewRefreshTokenID returns a fresh refresh token record id.
func NewRefreshTokenID() string {
	id := uuid.New()
	return hex.EncodeToString(id[:])
}
