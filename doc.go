// Package uauth is a self-contained authentication backend for Go
// applications. It covers account sign-up, password and OAuth2 sign-in,
// session retrieval, token refresh, and sign-out over a small JSON HTTP
// surface.
//
// # Architecture
//
// User: an account record keyed by a stable ID, unique by email. A user
// either holds a bcrypt password hash or is bound to an OAuth2 provider;
// provider-bound accounts can never sign in with a password.
//
// Access token: a short-lived HS256 JWT carrying the user ID as its
// subject. Verified statelessly on every authenticated request.
//
// Refresh token: a long-lived opaque credential persisted by the Store.
// Presenting a valid one mints a fresh token pair; sign-out destroys all
// of a user's refresh tokens at once.
//
// # Basic Usage
//
// Build the facade from configuration and a store, then mount the HTTP
// surface:
//
//	cfg, err := uauth.ConfigFromEnv()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	store := uauth.NewMemStore() // or gormstore.New(db)
//	auth := uauth.NewAuth(cfg, store)
//	api := uauth.NewAPI(cfg, auth)
//
//	http.ListenAndServe(":8000", api.Handler())
//
// Every endpoint answers with the same envelope: {"ok": true, "data": ...}
// on success, {"ok": false, "error": {"code", "message"}} on failure.
// Expected business failures (wrong password, duplicate email) use the
// envelope with HTTP 200; only transport-level conditions change the
// status code.
//
// # Protecting Other Services
//
// The grpc subpackage verifies the same access tokens on gRPC calls:
//
//	ic := oauthgrpc.NewInterceptorConfig(auth.Issuer.VerifyAccessToken)
//	server := grpc.NewServer(grpc.UnaryInterceptor(oauthgrpc.UnaryAuthInterceptor(ic)))
package uauth
