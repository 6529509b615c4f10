package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/satwikgupta/backend-project/internal/models"
)

func newTestManager(t *testing.T) (*Manager, *InMemoryAccountStore) {
	t.Helper()
	store := NewInMemoryAccountStore()
	tokens := NewTokenService([]byte("access-secret"), []byte("refresh-secret"), time.Minute, time.Hour)
	return NewManager(store, tokens, BcryptHasher{Cost: bcrypt.MinCost}), store
}

func seedAccount(t *testing.T, store *InMemoryAccountStore, password string) models.Account {
	t.Helper()
	hash, err := BcryptHasher{Cost: bcrypt.MinCost}.Hash(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	account := models.Account{
		ID:           "acc-1",
		Username:     "alice",
		Email:        "alice@example.com",
		FullName:     "Alice Example",
		PasswordHash: hash,
	}
	if err := store.Create(context.Background(), account); err != nil {
		t.Fatalf("seed account: %v", err)
	}
	return account
}

func TestManagerLoginPersistsRefreshToken(t *testing.T) {
	manager, store := newTestManager(t)
	seeded := seedAccount(t, store, "correct horse")

	account, tokens, err := manager.Login(context.Background(), "alice@example.com", "correct horse")
	if err != nil {
		t.Fatalf("login by email: %v", err)
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		t.Fatalf("expected tokens, got %+v", tokens)
	}
	if stored := store.StoredRefreshToken(seeded.ID); stored != tokens.RefreshToken {
		t.Fatalf("stored refresh token %q does not match issued %q", stored, tokens.RefreshToken)
	}
	if account.PasswordHash != "" || account.RefreshToken != "" {
		t.Fatalf("credential fields leaked in projection: %+v", account)
	}

	// Login by username evicts the first session.
	_, second, err := manager.Login(context.Background(), "alice", "correct horse")
	if err != nil {
		t.Fatalf("login by username: %v", err)
	}
	if stored := store.StoredRefreshToken(seeded.ID); stored != second.RefreshToken {
		t.Fatal("second login should replace the stored refresh token")
	}
	if _, err := manager.Refresh(context.Background(), tokens.RefreshToken); !errors.Is(err, ErrStaleRefreshToken) {
		t.Fatalf("expected first session to be evicted, got %v", err)
	}
}

func TestManagerLoginFailures(t *testing.T) {
	manager, store := newTestManager(t)
	seedAccount(t, store, "correct horse")

	if _, _, err := manager.Login(context.Background(), "nobody", "whatever"); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
	if _, _, err := manager.Login(context.Background(), "alice", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestManagerRefreshRotatesAndDetectsReuse(t *testing.T) {
	manager, store := newTestManager(t)
	account := seedAccount(t, store, "correct horse")

	_, tokens, err := manager.Login(context.Background(), "alice", "correct horse")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	rotated, err := manager.Refresh(context.Background(), tokens.RefreshToken)
	if err != nil {
		t.Fatalf("first refresh: %v", err)
	}
	if rotated.RefreshToken == tokens.RefreshToken {
		t.Fatal("expected a new refresh token")
	}
	if stored := store.StoredRefreshToken(account.ID); stored != rotated.RefreshToken {
		t.Fatalf("stored token %q should be the rotated one", stored)
	}

	// Replaying the first token after rotation must fail.
	if _, err := manager.Refresh(context.Background(), tokens.RefreshToken); !errors.Is(err, ErrStaleRefreshToken) {
		t.Fatalf("expected ErrStaleRefreshToken on reuse, got %v", err)
	}

	// The rotated token still works.
	if _, err := manager.Refresh(context.Background(), rotated.RefreshToken); err != nil {
		t.Fatalf("refresh with rotated token: %v", err)
	}
}

func TestManagerRefreshRejectsForgedToken(t *testing.T) {
	manager, _ := newTestManager(t)

	if _, err := manager.Refresh(context.Background(), "forged"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestManagerLogoutInvalidatesSession(t *testing.T) {
	manager, store := newTestManager(t)
	account := seedAccount(t, store, "correct horse")

	_, tokens, err := manager.Login(context.Background(), "alice", "correct horse")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := manager.Logout(context.Background(), account.ID); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := manager.Refresh(context.Background(), tokens.RefreshToken); !errors.Is(err, ErrStaleRefreshToken) {
		t.Fatalf("expected refresh after logout to fail, got %v", err)
	}

	// Logout is idempotent.
	if err := manager.Logout(context.Background(), account.ID); err != nil {
		t.Fatalf("second logout: %v", err)
	}
}

func TestManagerChangePassword(t *testing.T) {
	manager, store := newTestManager(t)
	account := seedAccount(t, store, "old password")

	_, tokens, err := manager.Login(context.Background(), "alice", "old password")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := manager.ChangePassword(context.Background(), account.ID, "wrong", "new password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := manager.Login(context.Background(), "alice", "old password"); err != nil {
		t.Fatalf("hash must be unchanged after rejected change: %v", err)
	}

	if err := manager.ChangePassword(context.Background(), account.ID, "old password", "new password"); err != nil {
		t.Fatalf("change password: %v", err)
	}
	if _, _, err := manager.Login(context.Background(), "alice", "new password"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}

	// Changing the password revokes the session that predates it.
	if _, err := manager.Refresh(context.Background(), tokens.RefreshToken); !errors.Is(err, ErrStaleRefreshToken) {
		t.Fatalf("expected pre-change refresh token to be revoked, got %v", err)
	}
}
