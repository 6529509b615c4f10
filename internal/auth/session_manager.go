package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/satwikgupta/backend-project/internal/logging"
	"github.com/satwikgupta/backend-project/internal/models"
)

var (
	// ErrAccountNotFound indicates no account matches the given identifier.
	ErrAccountNotFound = errors.New("account not found")
	// ErrInvalidCredentials indicates a password check failed.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrStaleRefreshToken indicates the presented refresh token was already
	// rotated or revoked. Seeing it on an otherwise valid token is the replay
	// detection signal.
	ErrStaleRefreshToken = errors.New("refresh token is stale or already used")
)

// AccountStore persists account credentials and the single active refresh
// token per account.
type AccountStore interface {
	FindByUsernameOrEmail(ctx context.Context, identifier string) (models.Account, error)
	FindByID(ctx context.Context, id string) (models.Account, error)
	// SetRefreshToken unconditionally replaces the stored refresh token,
	// evicting any prior session.
	SetRefreshToken(ctx context.Context, id, token string) error
	// RotateRefreshToken replaces the stored token only if it still equals
	// expected. It returns ErrStaleRefreshToken when the conditional update
	// matches no row, which is what makes concurrent replay of the same
	// token a single-winner race.
	RotateRefreshToken(ctx context.Context, id, expected, next string) error
	// ClearRefreshToken removes the stored token. Clearing an account with
	// no active session is a no-op.
	ClearRefreshToken(ctx context.Context, id string) error
	// UpdatePassword replaces the password hash and revokes the stored
	// refresh token in the same write.
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

// Manager orchestrates login, logout, refresh rotation, and password changes
// against the account store and token service.
type Manager struct {
	store  AccountStore
	tokens *TokenService
	hasher Hasher
}

// NewManager constructs a session Manager.
func NewManager(store AccountStore, tokens *TokenService, hasher Hasher) *Manager {
	if store == nil || tokens == nil || hasher == nil {
		panic("auth: manager dependencies must not be nil")
	}
	return &Manager{store: store, tokens: tokens, hasher: hasher}
}

// Login authenticates an account by username or email and starts a new
// session, evicting any previous one. The returned account projection never
// includes the password hash or stored refresh token.
func (m *Manager) Login(ctx context.Context, identifier, password string) (models.Account, models.SessionTokens, error) {
	ctx, span := logging.StartSpan(ctx, "auth.login")
	defer span.End()

	account, err := m.store.FindByUsernameOrEmail(ctx, identifier)
	if err != nil {
		return models.Account{}, models.SessionTokens{}, err
	}

	if !m.hasher.Verify(password, account.PasswordHash) {
		return models.Account{}, models.SessionTokens{}, ErrInvalidCredentials
	}

	tokens, err := m.tokens.IssuePair(account)
	if err != nil {
		return models.Account{}, models.SessionTokens{}, fmt.Errorf("issue token pair: %w", err)
	}

	if err := m.store.SetRefreshToken(ctx, account.ID, tokens.RefreshToken); err != nil {
		return models.Account{}, models.SessionTokens{}, fmt.Errorf("persist refresh token: %w", err)
	}

	account.PasswordHash = ""
	account.RefreshToken = ""
	return account, tokens, nil
}

// Logout clears the account's refresh token. Logging out an account without
// an active session is not an error.
func (m *Manager) Logout(ctx context.Context, accountID string) error {
	return m.store.ClearRefreshToken(ctx, accountID)
}

// Refresh exchanges a valid, current refresh token for a fresh pair. The
// presented token must match the stored value byte for byte; the rotation
// itself is a conditional update so a replayed token loses the race exactly
// once and every later use fails.
func (m *Manager) Refresh(ctx context.Context, presented string) (models.SessionTokens, error) {
	ctx, span := logging.StartSpan(ctx, "auth.refresh")
	defer span.End()

	claims, err := m.tokens.Verify(presented, RefreshToken)
	if err != nil {
		return models.SessionTokens{}, err
	}

	account, err := m.store.FindByID(ctx, claims.AccountID)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return models.SessionTokens{}, ErrStaleRefreshToken
		}
		return models.SessionTokens{}, err
	}

	if subtle.ConstantTimeCompare([]byte(presented), []byte(account.RefreshToken)) != 1 {
		return models.SessionTokens{}, ErrStaleRefreshToken
	}

	tokens, err := m.tokens.IssuePair(account)
	if err != nil {
		return models.SessionTokens{}, fmt.Errorf("issue token pair: %w", err)
	}

	if err := m.store.RotateRefreshToken(ctx, account.ID, presented, tokens.RefreshToken); err != nil {
		return models.SessionTokens{}, err
	}

	return tokens, nil
}

// ChangePassword verifies the old password and replaces the stored hash. The
// store revokes the active refresh token in the same write, so existing
// sessions cannot outlive the credential they were created with.
func (m *Manager) ChangePassword(ctx context.Context, accountID, oldPassword, newPassword string) error {
	account, err := m.store.FindByID(ctx, accountID)
	if err != nil {
		return err
	}

	if !m.hasher.Verify(oldPassword, account.PasswordHash) {
		return ErrInvalidCredentials
	}

	hash, err := m.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash new password: %w", err)
	}

	return m.store.UpdatePassword(ctx, accountID, hash)
}
