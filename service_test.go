package uauth_test

import (
	"context"
	"testing"

	oa "github.com/Amsiam/uauth"
	"github.com/Amsiam/uauth/oauth2"
)

// fakeExchanger returns a canned identity (or error) without hitting a
// provider.
type fakeExchanger struct {
	ident *oauth2.Identity
	err   error
}

func (f *fakeExchanger) Exchange(ctx context.Context, providerName, code, redirectURI string) (*oauth2.Identity, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.ident, nil
}

func newTestAuth(t *testing.T) *oa.Auth {
	t.Helper()
	cfg := oa.Config{
		AppName:   "uauth-test",
		SecretKey: "test-secret-key-for-testing-only",
	}
	return oa.NewAuth(cfg, oa.NewMemStore())
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %s, got nil", code)
	}
	ae, ok := oa.AsAuthError(err)
	if !ok {
		t.Fatalf("expected AuthError, got %T: %v", err, err)
	}
	if ae.Code != code {
		t.Fatalf("error code = %s, want %s (message %q)", ae.Code, code, ae.Message)
	}
}

func TestSignUp(t *testing.T) {
	ctx := context.Background()
	auth := newTestAuth(t)

	result, err := auth.SignUp(ctx, "alice@example.com", "password123", "Alice")
	if err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}
	if result.User.Email != "alice@example.com" || result.User.Name != "Alice" {
		t.Errorf("unexpected user: %+v", result.User)
	}
	if result.Tokens.AccessToken == "" || result.Tokens.RefreshToken == "" {
		t.Error("sign-up did not issue tokens")
	}

	// The fresh pair must be usable immediately.
	if _, err := auth.Issuer.VerifyAccessToken(result.Tokens.AccessToken); err != nil {
		t.Errorf("issued access token does not verify: %v", err)
	}

	// Duplicate email is rejected however the first account was created.
	_, err = auth.SignUp(ctx, "alice@example.com", "different-password", "Alice Again")
	assertCode(t, err, oa.CodeEmailExists)
}

func TestSignInPassword(t *testing.T) {
	ctx := context.Background()
	auth := newTestAuth(t)

	if _, err := auth.SignUp(ctx, "bob@example.com", "hunter22", "Bob"); err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}

	result, err := auth.SignInPassword(ctx, "bob@example.com", "hunter22")
	if err != nil {
		t.Fatalf("SignInPassword failed: %v", err)
	}
	if result.User.Email != "bob@example.com" {
		t.Errorf("unexpected user: %+v", result.User)
	}

	// Wrong password and unknown email yield the exact same error.
	_, wrongErr := auth.SignInPassword(ctx, "bob@example.com", "not-the-password")
	assertCode(t, wrongErr, oa.CodeInvalidCredentials)
	_, unknownErr := auth.SignInPassword(ctx, "nobody@example.com", "hunter22")
	assertCode(t, unknownErr, oa.CodeInvalidCredentials)
	if wrongErr.Error() != unknownErr.Error() {
		t.Errorf("credential errors differ: %q vs %q", wrongErr, unknownErr)
	}
}

func TestSignInOAuth2NewUser(t *testing.T) {
	ctx := context.Background()
	auth := newTestAuth(t)
	auth.Exchanger = &fakeExchanger{ident: &oauth2.Identity{
		Provider:       "google",
		ProviderUserID: "g-123",
		Email:          "carol@example.com",
		Name:           "Carol",
	}}

	result, err := auth.SignInOAuth2(ctx, "google", "code", "")
	if err != nil {
		t.Fatalf("SignInOAuth2 failed: %v", err)
	}
	if result.User.Email != "carol@example.com" {
		t.Errorf("unexpected user: %+v", result.User)
	}

	// A provider-created account must not accept any password, including
	// an empty one.
	for _, password := range []string{"", "guess", "carol@example.com"} {
		_, err := auth.SignInPassword(ctx, "carol@example.com", password)
		assertCode(t, err, oa.CodeInvalidCredentials)
	}

	// Signing in again with the same provider reuses the account.
	again, err := auth.SignInOAuth2(ctx, "google", "code2", "")
	if err != nil {
		t.Fatalf("repeat SignInOAuth2 failed: %v", err)
	}
	if again.User.ID != result.User.ID {
		t.Errorf("repeat sign-in created a new account: %s vs %s", again.User.ID, result.User.ID)
	}
}

func TestSignInOAuth2UpgradesPasswordAccount(t *testing.T) {
	ctx := context.Background()
	auth := newTestAuth(t)

	signup, err := auth.SignUp(ctx, "dave@example.com", "original-password", "Dave")
	if err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}

	auth.Exchanger = &fakeExchanger{ident: &oauth2.Identity{
		Provider:       "github",
		ProviderUserID: "gh-42",
		Email:          "dave@example.com",
		Name:           "Dave H",
	}}

	result, err := auth.SignInOAuth2(ctx, "github", "code", "")
	if err != nil {
		t.Fatalf("SignInOAuth2 failed: %v", err)
	}
	if result.User.ID != signup.User.ID {
		t.Errorf("upgrade created a new account: %s vs %s", result.User.ID, signup.User.ID)
	}

	// The upgrade revokes password login for good.
	_, err = auth.SignInPassword(ctx, "dave@example.com", "original-password")
	assertCode(t, err, oa.CodeInvalidCredentials)
}

func TestSignInOAuth2CrossProviderCollision(t *testing.T) {
	ctx := context.Background()
	auth := newTestAuth(t)

	auth.Exchanger = &fakeExchanger{ident: &oauth2.Identity{
		Provider:       "google",
		ProviderUserID: "g-9",
		Email:          "erin@example.com",
	}}
	first, err := auth.SignInOAuth2(ctx, "google", "code", "")
	if err != nil {
		t.Fatalf("SignInOAuth2 failed: %v", err)
	}

	auth.Exchanger = &fakeExchanger{ident: &oauth2.Identity{
		Provider:       "github",
		ProviderUserID: "gh-9",
		Email:          "erin@example.com",
	}}
	_, err = auth.SignInOAuth2(ctx, "github", "code", "")
	assertCode(t, err, oa.CodeAccountExists)
	ae, _ := oa.AsAuthError(err)
	if want := "An account with this email already exists via google"; ae.Message != want {
		t.Errorf("message = %q, want %q", ae.Message, want)
	}

	// The rejected attempt must not have touched the existing binding.
	user, err := auth.Store.GetUserByEmail(ctx, "erin@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if user.OAuthProvider != "google" || user.OAuthProviderUserID != "g-9" {
		t.Errorf("binding mutated: %+v", user)
	}
	if user.ID != first.User.ID {
		t.Errorf("account replaced: %s vs %s", user.ID, first.User.ID)
	}
}

func TestSignInOAuth2Errors(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		exchange *fakeExchanger
		code     string
	}{
		{"no email from provider", &fakeExchanger{ident: &oauth2.Identity{Provider: "google", ProviderUserID: "g-1"}}, oa.CodeOAuth2NoEmail},
		{"unknown provider", &fakeExchanger{err: oauth2.ErrUnknownProvider}, oa.CodeOAuth2Error},
		{"provider not configured", &fakeExchanger{err: oauth2.ErrProviderNotConfigured}, oa.CodeOAuth2Error},
		{"exchange failed", &fakeExchanger{err: oauth2.ErrExchangeFailed}, oa.CodeOAuth2Error},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := newTestAuth(t)
			auth.Exchanger = tt.exchange
			_, err := auth.SignInOAuth2(ctx, "google", "code", "")
			assertCode(t, err, tt.code)
		})
	}
}

func TestRefreshRotation(t *testing.T) {
	ctx := context.Background()
	auth := newTestAuth(t)

	signup, err := auth.SignUp(ctx, "frank@example.com", "password123", "")
	if err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}
	original := signup.Tokens.RefreshToken

	pair, err := auth.Refresh(ctx, original)
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if pair.RefreshToken == original {
		t.Error("refresh returned the same refresh token")
	}

	// Default policy keeps the presented token valid after rotation.
	if _, err := auth.Refresh(ctx, original); err != nil {
		t.Errorf("original token rejected under default policy: %v", err)
	}

	_, err = auth.Refresh(ctx, "ref_00000000000000000000000000000000")
	assertCode(t, err, oa.CodeInvalidToken)
}

func TestRefreshRevokeOnRefresh(t *testing.T) {
	ctx := context.Background()
	auth := newTestAuth(t)
	auth.RevokeOnRefresh = true

	signup, err := auth.SignUp(ctx, "grace@example.com", "password123", "")
	if err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}
	original := signup.Tokens.RefreshToken

	if _, err := auth.Refresh(ctx, original); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	_, err = auth.Refresh(ctx, original)
	assertCode(t, err, oa.CodeInvalidToken)
}

func TestSignOutRevokesAllTokens(t *testing.T) {
	ctx := context.Background()
	auth := newTestAuth(t)

	signup, err := auth.SignUp(ctx, "heidi@example.com", "password123", "")
	if err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}
	second, err := auth.SignInPassword(ctx, "heidi@example.com", "password123")
	if err != nil {
		t.Fatalf("SignInPassword failed: %v", err)
	}

	if err := auth.SignOut(ctx, signup.User.ID); err != nil {
		t.Fatalf("SignOut failed: %v", err)
	}

	for _, token := range []string{signup.Tokens.RefreshToken, second.Tokens.RefreshToken} {
		_, err := auth.Refresh(ctx, token)
		assertCode(t, err, oa.CodeInvalidToken)
	}

	// Sign-out is idempotent.
	if err := auth.SignOut(ctx, signup.User.ID); err != nil {
		t.Errorf("repeat SignOut failed: %v", err)
	}
}

func TestGetSession(t *testing.T) {
	ctx := context.Background()
	auth := newTestAuth(t)

	signup, err := auth.SignUp(ctx, "ivan@example.com", "password123", "Ivan")
	if err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}

	user, err := auth.GetSession(ctx, signup.User.ID)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if user.Email != "ivan@example.com" {
		t.Errorf("unexpected user: %+v", user)
	}

	_, err = auth.GetSession(ctx, "usr_gone")
	assertCode(t, err, oa.CodeUnauthorized)
}
