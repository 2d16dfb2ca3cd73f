package oauth2

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	xoauth2 "golang.org/x/oauth2"
)

// DefaultExchangeTimeout bounds each remote leg of the exchange.
const DefaultExchangeTimeout = 10 * time.Second

// Client exchanges authorization codes for normalized identities.
type Client struct {
	Registry *Registry

	// HTTPClient is used for both the token and userinfo legs. Defaults to
	// a client with DefaultExchangeTimeout.
	HTTPClient *http.Client
}

func NewClient(registry *Registry) *Client {
	return &Client{
		Registry:   registry,
		HTTPClient: &http.Client{Timeout: DefaultExchangeTimeout},
	}
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: DefaultExchangeTimeout}
}

// Exchange performs the two-leg code exchange: POST the authorization code
// to the provider's token endpoint, then GET the userinfo endpoint with the
// obtained access token. The raw profile is normalized per provider.
//
// Callers must not hold a database transaction open across this call.
func (c *Client) Exchange(ctx context.Context, providerName, code, redirectURI string) (*Identity, error) {
	provider, err := c.Registry.Get(providerName)
	if err != nil {
		return nil, err
	}

	if redirectURI == "" {
		redirectURI = provider.RedirectURI
	}

	cfg := xoauth2.Config{
		ClientID:     provider.ClientID,
		ClientSecret: provider.ClientSecret,
		RedirectURL:  redirectURI,
		Endpoint: xoauth2.Endpoint{
			AuthURL:   provider.AuthorizationURL,
			TokenURL:  provider.TokenURL,
			AuthStyle: xoauth2.AuthStyleInParams,
		},
	}

	ctx = context.WithValue(ctx, xoauth2.HTTPClient, c.httpClient())
	token, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: token exchange with %s: %w", ErrExchangeFailed, providerName, err)
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("%w: no access token returned from %s", ErrExchangeFailed, providerName)
	}

	userInfo, err := c.fetchJSON(ctx, provider.UserInfoURL, token.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("%w: userinfo from %s: %w", ErrExchangeFailed, providerName, err)
	}

	return c.normalize(ctx, provider, token.AccessToken, userInfo)
}

// normalize maps a raw provider profile onto an Identity.
func (c *Client) normalize(ctx context.Context, provider Provider, accessToken string, userInfo map[string]any) (*Identity, error) {
	ident := &Identity{
		Provider:       provider.Name,
		ProviderUserID: stringify(userInfo["id"]),
		Email:          stringField(userInfo, "email"),
		Name:           stringField(userInfo, "name"),
	}

	if provider.Name == "github" {
		// GitHub reports login when the display name is unset, and hides
		// non-public emails behind a separate listing.
		if ident.Name == "" {
			ident.Name = stringField(userInfo, "login")
		}
		if ident.Email == "" && provider.EmailsURL != "" {
			email, err := c.fetchPrimaryEmail(ctx, provider.EmailsURL, accessToken)
			if err == nil {
				ident.Email = email
			}
		}
	}

	return ident, nil
}

// fetchPrimaryEmail queries the emails listing and picks the entry flagged
// primary, or the first entry if none are flagged.
func (c *Client) fetchPrimaryEmail(ctx context.Context, emailsURL, accessToken string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, emailsURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("emails endpoint returned %d", resp.StatusCode)
	}

	var emails []struct {
		Email   string `json:"email"`
		Primary bool   `json:"primary"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&emails); err != nil {
		return "", err
	}
	if len(emails) == 0 {
		return "", fmt.Errorf("no emails returned")
	}

	for _, e := range emails {
		if e.Primary {
			return e.Email, nil
		}
	}
	return emails[0].Email, nil
}

func (c *Client) fetchJSON(ctx context.Context, url, accessToken string) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("endpoint returned %d", resp.StatusCode)
	}

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return body, nil
}

// stringify renders a provider user id. GitHub sends numeric ids, Google
// sends strings; both normalize to a string.
func stringify(v any) string {
	switch value := v.(type) {
	case string:
		return value
	case float64:
		return strconv.FormatInt(int64(value), 10)
	case json.Number:
		return value.String()
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", value)
	}
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}
