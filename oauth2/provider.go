// Package oauth2 implements the authorization-code exchange flow against
// third-party providers and the registry of configured providers.
//
// Providers are plain data records; adding one is a table edit, not a
// control-flow change. A provider is enabled iff both its client id and
// client secret are set.
package oauth2

import "errors"

var (
	// ErrUnknownProvider is returned when a provider name is not registered.
	ErrUnknownProvider = errors.New("unknown oauth2 provider")

	// ErrProviderNotConfigured is returned when a provider is registered but
	// has no client credentials.
	ErrProviderNotConfigured = errors.New("oauth2 provider not configured")

	// ErrExchangeFailed is returned when either leg of the code exchange
	// fails (token endpoint error, missing access token, userinfo error).
	ErrExchangeFailed = errors.New("oauth2 exchange failed")
)

// Provider describes one OAuth2 provider. Only the fields a frontend needs
// to start an authorization flow are serialized; the client secret and the
// server-side endpoints never leave the process.
type Provider struct {
	Name             string `json:"name"`
	DisplayName      string `json:"displayName"`
	AuthorizationURL string `json:"authorizationUrl"`
	TokenURL         string `json:"-"`
	UserInfoURL      string `json:"-"`

	// EmailsURL is a provider-specific emails listing consulted when the
	// primary profile omits the email (GitHub hides non-public emails).
	EmailsURL string `json:"-"`

	ClientID     string `json:"clientId"`
	ClientSecret string `json:"-"`
	Scope        string `json:"scope"`
	RedirectURI  string `json:"redirectUri,omitempty"`
}

// Enabled reports whether the provider has usable client credentials.
func (p Provider) Enabled() bool {
	return p.ClientID != "" && p.ClientSecret != ""
}

// Google returns the provider record for Google sign-in.
func Google(clientID, clientSecret, redirectURI string) Provider {
	return Provider{
		Name:             "google",
		DisplayName:      "Google",
		AuthorizationURL: "https://accounts.google.com/o/oauth2/v2/auth",
		TokenURL:         "https://oauth2.googleapis.com/token",
		UserInfoURL:      "https://www.googleapis.com/oauth2/v2/userinfo",
		ClientID:         clientID,
		ClientSecret:     clientSecret,
		Scope:            "openid email profile",
		RedirectURI:      redirectURI,
	}
}

// Github returns the provider record for GitHub sign-in.
func Github(clientID, clientSecret, redirectURI string) Provider {
	return Provider{
		Name:             "github",
		DisplayName:      "GitHub",
		AuthorizationURL: "https://github.com/login/oauth/authorize",
		TokenURL:         "https://github.com/login/oauth/access_token",
		UserInfoURL:      "https://api.github.com/user",
		EmailsURL:        "https://api.github.com/user/emails",
		ClientID:         clientID,
		ClientSecret:     clientSecret,
		Scope:            "user:email",
		RedirectURI:      redirectURI,
	}
}

// Registry is a fixed mapping of provider name to configuration.
type Registry struct {
	providers map[string]Provider
	order     []string
}

func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{providers: make(map[string]Provider)}
	for _, p := range providers {
		if _, exists := r.providers[p.Name]; !exists {
			r.order = append(r.order, p.Name)
		}
		r.providers[p.Name] = p
	}
	return r
}

// Get returns the provider for name, or ErrUnknownProvider /
// ErrProviderNotConfigured.
func (r *Registry) Get(name string) (Provider, error) {
	p, ok := r.providers[name]
	if !ok {
		return Provider{}, ErrUnknownProvider
	}
	if !p.Enabled() {
		return Provider{}, ErrProviderNotConfigured
	}
	return p, nil
}

// Enabled returns the configured providers in registration order.
func (r *Registry) Enabled() []Provider {
	out := make([]Provider, 0, len(r.order))
	for _, name := range r.order {
		if p := r.providers[name]; p.Enabled() {
			out = append(out, p)
		}
	}
	return out
}

// Identity is the normalized result of a completed exchange. It is
// ephemeral; the account resolver folds it into a user record.
type Identity struct {
	Provider       string
	ProviderUserID string
	Email          string
	Name           string
}
