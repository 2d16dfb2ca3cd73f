package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// VerifyFunc validates an access token and returns its subject user ID.
// Wire this to (*uauth.Issuer).VerifyAccessToken.
type VerifyFunc func(accessToken string) (userID string, err error)

// InterceptorConfig configures the auth interceptor behavior.
type InterceptorConfig struct {
	// Config holds the metadata key configuration.
	*Config

	// Verify validates the bearer token. Required.
	Verify VerifyFunc

	// RequireAuth when true rejects unauthenticated requests.
	// When false, requests proceed but UserIDFromContext returns empty.
	RequireAuth bool

	// PublicMethods is a set of method names that don't require auth.
	// Only used when RequireAuth is true.
	// Keys should be full method names like "/package.Service/Method".
	PublicMethods map[string]bool
}

// NewInterceptorConfig returns a config that requires auth for all methods.
func NewInterceptorConfig(verify VerifyFunc) *InterceptorConfig {
	return &InterceptorConfig{
		Config:        DefaultConfig(),
		Verify:        verify,
		RequireAuth:   true,
		PublicMethods: make(map[string]bool),
	}
}

// NewPublicMethodsConfig creates a config with the specified public methods.
func NewPublicMethodsConfig(verify VerifyFunc, publicMethods ...string) *InterceptorConfig {
	config := NewInterceptorConfig(verify)
	for _, method := range publicMethods {
		config.PublicMethods[method] = true
	}
	return config
}

// OptionalAuthConfig returns a config that allows unauthenticated requests.
func OptionalAuthConfig(verify VerifyFunc) *InterceptorConfig {
	config := NewInterceptorConfig(verify)
	config.RequireAuth = false
	return config
}

// UnaryAuthInterceptor returns a gRPC unary interceptor that verifies the
// bearer access token in incoming metadata and places the resulting user
// ID in the handler context.
func UnaryAuthInterceptor(config *InterceptorConfig) grpc.UnaryServerInterceptor {
	config.ensure()

	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		ctx, err := config.authenticate(ctx, info.FullMethod)
		if err != nil {
			return nil, err
		}
		return handler(ctx, req)
	}
}

// StreamAuthInterceptor returns a gRPC stream interceptor that verifies
// the bearer access token in incoming metadata.
func StreamAuthInterceptor(config *InterceptorConfig) grpc.StreamServerInterceptor {
	config.ensure()

	return func(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		ctx, err := config.authenticate(ss.Context(), info.FullMethod)
		if err != nil {
			return err
		}
		return handler(srv, &wrappedStream{ServerStream: ss, ctx: ctx})
	}
}

func (c *InterceptorConfig) ensure() {
	if c.Config == nil {
		c.Config = DefaultConfig()
	}
	c.Config.EnsureDefaults()
}

// authenticate resolves the user ID for a call. Public methods and
// optional-auth configs pass through without a token; everything else
// must carry a verifiable bearer token.
func (c *InterceptorConfig) authenticate(ctx context.Context, fullMethod string) (context.Context, error) {
	required := c.RequireAuth && !c.PublicMethods[fullMethod]

	token := bearerToken(ctx, c.Config)
	if token == "" {
		if required {
			return nil, status.Error(codes.Unauthenticated, "authentication required")
		}
		return ctx, nil
	}

	userID, err := c.Verify(token)
	if err != nil {
		if required {
			return nil, status.Error(codes.Unauthenticated, "invalid or expired token")
		}
		return ctx, nil
	}

	return ContextWithUserID(ctx, userID), nil
}

// wrappedStream overrides the stream context so handlers see the
// authenticated user.
type wrappedStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (w *wrappedStream) Context() context.Context {
	return w.ctx
}
