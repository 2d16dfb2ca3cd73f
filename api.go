package uauth

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
)

// APIError is the error half of the response envelope.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// APIResponse is the uniform envelope every endpoint responds with, except
// the raw manifest/root endpoints.
type APIResponse struct {
	OK    bool      `json:"ok"`
	Data  any       `json:"data"`
	Error *APIError `json:"error"`
}

// API exposes the session facade over HTTP.
type API struct {
	Auth        *Auth
	AppName     string
	Version     string
	CORSOrigins []string

	middleware *Middleware
}

func NewAPI(cfg Config, auth *Auth) *API {
	return &API{
		Auth:        auth,
		AppName:     cfg.AppName,
		Version:     cfg.Version,
		CORSOrigins: cfg.CORSOrigins,
		middleware:  &Middleware{Issuer: auth.Issuer, Store: auth.Store},
	}
}

// Handler builds the routed HTTP surface.
func (a *API) Handler() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/auth/providers", a.handleProviders).Methods(http.MethodGet)
	r.HandleFunc("/auth/sign-in/oauth2", a.handleSignInOAuth2).Methods(http.MethodPost)
	r.HandleFunc("/auth/sign-in/password", a.handleSignInPassword).Methods(http.MethodPost)
	r.HandleFunc("/auth/sign-up", a.handleSignUp).Methods(http.MethodPost)
	r.HandleFunc("/auth/token/refresh", a.handleRefresh).Methods(http.MethodPost)
	r.Handle("/auth/session", a.middleware.RequireUser(http.HandlerFunc(a.handleGetSession))).Methods(http.MethodGet)
	r.Handle("/auth/session", a.middleware.RequireUser(http.HandlerFunc(a.handleSignOut))).Methods(http.MethodDelete)
	r.HandleFunc("/.well-known/auth-plugin-manifest.json", a.handleManifest).Methods(http.MethodGet)
	r.HandleFunc("/", a.handleRoot).Methods(http.MethodGet)

	return a.cors(r)
}

type signUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func (a *API) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	if !validEmail(req.Email) || req.Password == "" {
		writeError(w, http.StatusUnprocessableEntity, CodeValidationError, "email and password are required")
		return
	}

	result, err := a.Auth.SignUp(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		a.writeAuthError(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{
		"user":   userResponse(result.User),
		"tokens": result.Tokens,
	})
}

type signInPasswordRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (a *API) handleSignInPassword(w http.ResponseWriter, r *http.Request) {
	var req signInPasswordRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	if !validEmail(req.Email) || req.Password == "" {
		writeError(w, http.StatusUnprocessableEntity, CodeValidationError, "email and password are required")
		return
	}

	result, err := a.Auth.SignInPassword(r.Context(), req.Email, req.Password)
	if err != nil {
		a.writeAuthError(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{
		"user":   userResponse(result.User),
		"tokens": result.Tokens,
	})
}

type oauth2SignInRequest struct {
	Provider    string `json:"provider"`
	Code        string `json:"code"`
	RedirectURI string `json:"redirect_uri"`
}

func (a *API) handleSignInOAuth2(w http.ResponseWriter, r *http.Request) {
	var req oauth2SignInRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	if req.Provider == "" || req.Code == "" {
		writeError(w, http.StatusUnprocessableEntity, CodeValidationError, "provider and code are required")
		return
	}

	result, err := a.Auth.SignInOAuth2(r.Context(), req.Provider, req.Code, req.RedirectURI)
	if err != nil {
		a.writeAuthError(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{
		"user":   userResponse(result.User),
		"tokens": result.Tokens,
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (a *API) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	if req.RefreshToken == "" {
		writeError(w, http.StatusUnprocessableEntity, CodeValidationError, "refresh_token is required")
		return
	}

	tokens, err := a.Auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		a.writeAuthError(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"tokens": tokens})
}

func (a *API) handleGetSession(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	writeData(w, http.StatusOK, map[string]any{"user": userResponse(user)})
}

func (a *API) handleSignOut(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if err := a.Auth.SignOut(r.Context(), user.ID); err != nil {
		a.writeAuthError(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"ok": true})
}

func (a *API) handleProviders(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, map[string]any{
		"providers": a.Auth.Providers.Enabled(),
	})
}

func (a *API) handleManifest(w http.ResponseWriter, r *http.Request) {
	providers := a.Auth.Providers.Enabled()
	names := make([]string, 0, len(providers))
	for _, p := range providers {
		names = append(names, p.Name)
	}

	plugins := []string{"password"}
	if len(providers) > 0 {
		plugins = append(plugins, "oauth2")
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"version":          a.Version,
		"plugins":          plugins,
		"oauth2_providers": names,
		"features": map[string]bool{
			"password":   true,
			"oauth2":     len(providers) > 0,
			"magic-link": false,
			"totp":       false,
		},
	})
}

func (a *API) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    a.AppName,
		"version": a.Version,
		"status":  "operational",
	})
}

// writeAuthError maps facade errors to the envelope. Tagged errors keep
// their code; anything else is an opaque internal error.
func (a *API) writeAuthError(w http.ResponseWriter, err error) {
	if ae, ok := AsAuthError(err); ok {
		writeError(w, http.StatusOK, ae.Code, ae.Message)
		return
	}
	slog.Error("internal error", "err", err)
	writeError(w, http.StatusInternalServerError, CodeInternalError, "An internal error occurred")
}

// Public user projection: never the hash or provider binding internals.
type userView struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

func userResponse(u *User) userView {
	return userView{ID: u.ID, Email: u.Email, Name: u.Name}
}

func decodeRequest(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusUnprocessableEntity, CodeValidationError, "Invalid request body")
		return false
	}
	return true
}

func validEmail(email string) bool {
	at := strings.Index(email, "@")
	return at > 0 && at < len(email)-1
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, APIResponse{OK: true, Data: data})
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, APIResponse{Error: &APIError{Code: code, Message: message}})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", "err", err)
	}
}

// cors handles preflight and sets the allow headers for configured origins.
func (a *API) cors(next http.Handler) http.Handler {
	allowed := make(map[string]bool, len(a.CORSOrigins))
	for _, origin := range a.CORSOrigins {
		allowed[origin] = true
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && (allowed[origin] || allowed["*"]) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Vary", "Origin")
		}

		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
