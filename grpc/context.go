// Package grpc provides interceptors and context utilities for
// authenticating gRPC calls with the same access tokens the HTTP
// surface issues.
package grpc

import (
	"context"
	"strings"

	"google.golang.org/grpc/metadata"
)

// DefaultMetadataKeyAuthorization is the metadata key carrying the
// bearer access token, mirroring the HTTP Authorization header.
const DefaultMetadataKeyAuthorization = "authorization"

type contextKey string

const userIDContextKey contextKey = "uauth.userID"

// Config holds the metadata key configuration for auth interceptors.
type Config struct {
	// MetadataKeyAuthorization is the incoming metadata key holding the
	// bearer token. Defaults to "authorization".
	MetadataKeyAuthorization string
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		MetadataKeyAuthorization: DefaultMetadataKeyAuthorization,
	}
}

// EnsureDefaults fills in default values for any unset fields.
func (c *Config) EnsureDefaults() {
	if c.MetadataKeyAuthorization == "" {
		c.MetadataKeyAuthorization = DefaultMetadataKeyAuthorization
	}
}

// UserIDFromContext returns the user ID placed in the context by the
// auth interceptors. Empty string means the call is unauthenticated.
func UserIDFromContext(ctx context.Context) string {
	userID, _ := ctx.Value(userIDContextKey).(string)
	return userID
}

// ContextWithUserID returns a context carrying the given user ID, as the
// interceptors would after a successful verification. Useful in tests
// and in-process calls.
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}

// IsAuthenticated reports whether an authenticated user is present.
func IsAuthenticated(ctx context.Context) bool {
	return UserIDFromContext(ctx) != ""
}

// TokenToOutgoingContext attaches a bearer access token to outgoing
// metadata so a client call passes the server-side interceptor.
func TokenToOutgoingContext(ctx context.Context, accessToken string) context.Context {
	return metadata.AppendToOutgoingContext(ctx, DefaultMetadataKeyAuthorization, "Bearer "+accessToken)
}

// bearerToken pulls the token out of incoming metadata. Returns empty
// if the key is absent or the value is not a Bearer credential.
func bearerToken(ctx context.Context, config *Config) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	values := md.Get(config.MetadataKeyAuthorization)
	if len(values) == 0 {
		return ""
	}
	parts := strings.SplitN(values[0], " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
