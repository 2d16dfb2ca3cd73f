// Command authserver runs the uauth HTTP service.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Amsiam/uauth"
	gormstore "github.com/Amsiam/uauth/stores/gorm"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := uauth.ConfigFromEnv()
	if err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	var store uauth.Store
	if cfg.DatabaseURL != "" {
		db, err := gormstore.Open(cfg.DatabaseURL)
		if err != nil {
			slog.Error("failed to open database", "err", err)
			os.Exit(1)
		}
		store = gormstore.New(db)
		slog.Info("using postgres store")
	} else {
		store = uauth.NewMemStore()
		slog.Warn("no UAUTH_DATABASE_URL set, using in-memory store")
	}

	auth := uauth.NewAuth(cfg, store)
	api := uauth.NewAPI(cfg, auth)

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	go func() {
		slog.Info("listening", "addr", cfg.ListenAddr, "app", cfg.AppName, "version", cfg.Version)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	slog.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "err", err)
	}
}
