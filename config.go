package uauth

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/Amsiam/uauth/oauth2"
)

// Config holds every process-wide setting. It is built once at startup and
// passed explicitly into component constructors; nothing reads the
// environment after that.
type Config struct {
	AppName string `env:"UAUTH_APP_NAME" envDefault:"uauth"`
	Version string `env:"-"`

	// SecretKey signs access tokens. Required outside of tests.
	SecretKey string `env:"UAUTH_SECRET_KEY"`

	AccessTokenTTL  time.Duration `env:"UAUTH_ACCESS_TOKEN_TTL" envDefault:"60m"`
	RefreshTokenTTL time.Duration `env:"UAUTH_REFRESH_TOKEN_TTL" envDefault:"168h"`

	// RevokeOnRefresh makes rotation revoke the presented refresh token.
	// Off by default: the presented token stays valid until sign-out or
	// expiry.
	RevokeOnRefresh bool `env:"UAUTH_REVOKE_ON_REFRESH" envDefault:"false"`

	CORSOrigins []string `env:"UAUTH_CORS_ORIGINS" envDefault:"http://localhost:3000,http://localhost:5173"`

	DatabaseURL string `env:"UAUTH_DATABASE_URL"`
	ListenAddr  string `env:"UAUTH_LISTEN_ADDR" envDefault:":8000"`

	GoogleClientID     string `env:"UAUTH_GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"UAUTH_GOOGLE_CLIENT_SECRET"`
	GithubClientID     string `env:"UAUTH_GITHUB_CLIENT_ID"`
	GithubClientSecret string `env:"UAUTH_GITHUB_CLIENT_SECRET"`
	OAuthRedirectURI   string `env:"UAUTH_OAUTH_REDIRECT_URI"`
}

// ConfigFromEnv parses the configuration from the process environment.
func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.Version = Version
	if cfg.SecretKey == "" {
		return Config{}, fmt.Errorf("UAUTH_SECRET_KEY is required")
	}
	return cfg, nil
}

// ProviderRegistry builds the fixed provider table from the configured
// credentials. Providers without credentials stay registered but disabled.
func (c Config) ProviderRegistry() *oauth2.Registry {
	return oauth2.NewRegistry(
		oauth2.Google(c.GoogleClientID, c.GoogleClientSecret, c.OAuthRedirectURI),
		oauth2.Github(c.GithubClientID, c.GithubClientSecret, c.OAuthRedirectURI),
	)
}

// Version reported by the manifest and root endpoints.
const Version = "1.0.0"
