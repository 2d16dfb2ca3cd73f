package uauth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	oa "github.com/Amsiam/uauth"
)

func TestMemStoreUsers(t *testing.T) {
	ctx := context.Background()
	store := oa.NewMemStore()

	user := &oa.User{ID: oa.NewUserID(), Email: "alice@example.com", Name: "Alice"}
	if err := store.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if user.CreatedAt.IsZero() || user.UpdatedAt.IsZero() {
		t.Error("timestamps not set on create")
	}

	byEmail, err := store.GetUserByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	byID, err := store.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}
	if byEmail.ID != byID.ID || byEmail.Email != byID.Email {
		t.Errorf("lookups disagree: %+v vs %+v", byEmail, byID)
	}

	// Reads return copies; mutating them must not affect the store.
	byID.Name = "Mallory"
	fresh, _ := store.GetUserByID(ctx, user.ID)
	if fresh.Name != "Alice" {
		t.Error("store record mutated through a read copy")
	}

	if _, err := store.GetUserByEmail(ctx, "nobody@example.com"); !errors.Is(err, oa.ErrNotFound) {
		t.Errorf("missing email: got %v, want ErrNotFound", err)
	}
	if _, err := store.GetUserByID(ctx, "usr_missing"); !errors.Is(err, oa.ErrNotFound) {
		t.Errorf("missing id: got %v, want ErrNotFound", err)
	}
}

func TestMemStoreSaveUser(t *testing.T) {
	ctx := context.Background()
	store := oa.NewMemStore()

	user := &oa.User{ID: oa.NewUserID(), Email: "bob@example.com"}
	if err := store.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	user.OAuthProvider = "google"
	user.OAuthProviderUserID = "g-1"
	if err := store.SaveUser(ctx, user); err != nil {
		t.Fatalf("SaveUser failed: %v", err)
	}

	got, err := store.GetUserByEmail(ctx, "bob@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if got.OAuthProvider != "google" {
		t.Errorf("save not applied: %+v", got)
	}
	if got.CreatedAt.IsZero() || !got.UpdatedAt.After(got.CreatedAt) && !got.UpdatedAt.Equal(got.CreatedAt) {
		t.Errorf("timestamps wrong: created %v updated %v", got.CreatedAt, got.UpdatedAt)
	}

	ghost := &oa.User{ID: "usr_ghost", Email: "ghost@example.com"}
	if err := store.SaveUser(ctx, ghost); !errors.Is(err, oa.ErrNotFound) {
		t.Errorf("SaveUser of unknown user: got %v, want ErrNotFound", err)
	}
}

func TestMemStoreRefreshTokens(t *testing.T) {
	ctx := context.Background()
	store := oa.NewMemStore()

	mint := func(userID string) *oa.RefreshToken {
		t.Helper()
		rt := &oa.RefreshToken{
			ID:        oa.NewRefreshTokenID(),
			UserID:    userID,
			Token:     "ref_" + oa.NewRefreshTokenID(),
			ExpiresAt: time.Now().Add(time.Hour),
		}
		if err := store.CreateRefreshToken(ctx, rt); err != nil {
			t.Fatalf("CreateRefreshToken failed: %v", err)
		}
		return rt
	}

	a := mint("usr_a")
	b1 := mint("usr_b")
	b2 := mint("usr_b")

	got, err := store.GetRefreshToken(ctx, a.Token)
	if err != nil {
		t.Fatalf("GetRefreshToken failed: %v", err)
	}
	if got.UserID != "usr_a" {
		t.Errorf("UserID = %q", got.UserID)
	}

	deleted, err := store.DeleteRefreshToken(ctx, a.Token)
	if err != nil || !deleted {
		t.Fatalf("DeleteRefreshToken = %v, %v", deleted, err)
	}
	deleted, err = store.DeleteRefreshToken(ctx, a.Token)
	if err != nil || deleted {
		t.Errorf("second delete = %v, %v; want false, nil", deleted, err)
	}

	count, err := store.DeleteUserRefreshTokens(ctx, "usr_b")
	if err != nil {
		t.Fatalf("DeleteUserRefreshTokens failed: %v", err)
	}
	if count != 2 {
		t.Errorf("deleted %d tokens, want 2", count)
	}
	for _, token := range []string{b1.Token, b2.Token} {
		if _, err := store.GetRefreshToken(ctx, token); !errors.Is(err, oa.ErrNotFound) {
			t.Errorf("token %s survived bulk delete", token)
		}
	}
}
