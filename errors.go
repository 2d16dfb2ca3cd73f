package uauth

import (
	"errors"
	"fmt"
)

// Error codes surfaced in the API envelope.
const (
	CodeValidationError    = "VALIDATION_ERROR"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeEmailExists        = "EMAIL_EXISTS"
	CodeAccountExists      = "ACCOUNT_EXISTS"
	CodeOAuth2NoEmail      = "OAUTH2_NO_EMAIL"
	CodeOAuth2Error        = "OAUTH2_ERROR"
	CodeInvalidToken       = "INVALID_TOKEN"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeInternalError      = "INTERNAL_ERROR"
)

// Sentinel errors for the store and token layers.
var (
	// ErrNotFound is returned by stores when a record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidToken is returned when an access or refresh token fails
	// verification for any reason (malformed, mis-signed, expired, revoked).
	ErrInvalidToken = errors.New("invalid token")
)

// AuthError is a tagged error returned by the session facade. The Code maps
// directly onto the API envelope's error code; Message is safe to show to
// callers (it never distinguishes which credential check failed).
type AuthError struct {
	Code    string
	Message string
	cause   error
}

func NewAuthError(code, message string) *AuthError {
	return &AuthError{Code: code, Message: message}
}

// WrapAuthError attaches an underlying cause without leaking it into Message.
func WrapAuthError(code, message string, cause error) *AuthError {
	return &AuthError{Code: code, Message: message, cause: cause}
}

func (e *AuthError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AuthError) Unwrap() error { return e.cause }

// AsAuthError unwraps err into an *AuthError if one is in the chain.
func AsAuthError(err error) (*AuthError, bool) {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}
