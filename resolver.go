package uauth

import (
	"context"
	"errors"
	"fmt"

	"github.com/Amsiam/uauth/oauth2"
)

// Resolver maps authenticated identities (password or OAuth2) onto user
// records, enforcing one account per email and the provider-binding rules
// that prevent account takeover across auth methods.
type Resolver struct {
	Store Store
}

// SignUp registers a password account. Emails are globally unique across
// every account type.
func (r *Resolver) SignUp(ctx context.Context, email, password, name string) (*User, error) {
	_, err := r.Store.GetUserByEmail(ctx, email)
	if err == nil {
		return nil, NewAuthError(CodeEmailExists, "A user with this email already exists")
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &User{
		ID:             NewUserID(),
		Email:          email,
		Name:           name,
		HashedPassword: hash,
	}
	if err := r.Store.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// AuthenticatePassword verifies an email/password pair. Unknown email,
// OAuth-linked account and wrong password all collapse into the same
// generic error to resist account enumeration.
func (r *Resolver) AuthenticatePassword(ctx context.Context, email, password string) (*User, error) {
	user, err := r.Store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, invalidCredentials()
		}
		return nil, err
	}

	// Password auth is categorically refused for OAuth-linked accounts,
	// regardless of what the stored hash happens to contain.
	if user.OAuthProvider != "" {
		return nil, invalidCredentials()
	}

	if !CheckPassword(password, user.HashedPassword) {
		return nil, invalidCredentials()
	}
	return user, nil
}

// ResolveOAuth2 maps a normalized provider identity onto a user record:
// creating it, upgrading a password account in place, or rejecting a
// cross-provider email collision.
func (r *Resolver) ResolveOAuth2(ctx context.Context, ident *oauth2.Identity) (*User, error) {
	if ident.Email == "" {
		return nil, NewAuthError(CodeOAuth2NoEmail, "OAuth2 provider did not return email")
	}

	user, err := r.Store.GetUserByEmail(ctx, ident.Email)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return r.createOAuth2User(ctx, ident)
	}

	if user.OAuthProvider != "" && user.OAuthProvider != ident.Provider {
		return nil, NewAuthError(CodeAccountExists,
			fmt.Sprintf("An account with this email already exists via %s", user.OAuthProvider))
	}

	if user.OAuthProvider == "" {
		// Upgrade a password account in place. Replacing the hash with a
		// fresh random secret revokes password login for this account.
		secret, err := GenerateRandomSecret()
		if err != nil {
			return nil, err
		}
		hash, err := HashPassword(secret)
		if err != nil {
			return nil, err
		}
		user.OAuthProvider = ident.Provider
		user.OAuthProviderUserID = ident.ProviderUserID
		user.HashedPassword = hash
		if err := r.Store.SaveUser(ctx, user); err != nil {
			return nil, err
		}
	}

	return user, nil
}

func (r *Resolver) createOAuth2User(ctx context.Context, ident *oauth2.Identity) (*User, error) {
	secret, err := GenerateRandomSecret()
	if err != nil {
		return nil, err
	}
	hash, err := HashPassword(secret)
	if err != nil {
		return nil, err
	}

	user := &User{
		ID:                  NewUserID(),
		Email:               ident.Email,
		Name:                ident.Name,
		HashedPassword:      hash,
		OAuthProvider:       ident.Provider,
		OAuthProviderUserID: ident.ProviderUserID,
	}
	if err := r.Store.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func invalidCredentials() *AuthError {
	return NewAuthError(CodeInvalidCredentials, "Email or password is incorrect")
}
