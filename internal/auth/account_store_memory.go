package auth

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/satwikgupta/backend-project/internal/models"
)

// ErrAccountExists indicates a username or email is already taken.
var ErrAccountExists = errors.New("account already exists")

// NewInMemoryAccountStore returns an AccountStore backed by an in-memory map.
func NewInMemoryAccountStore() *InMemoryAccountStore {
	return &InMemoryAccountStore{accounts: make(map[string]models.Account)}
}

// InMemoryAccountStore implements AccountStore for tests and local development.
type InMemoryAccountStore struct {
	mu       sync.RWMutex
	accounts map[string]models.Account
}

// Create stores a new account, rejecting duplicate usernames or emails
// case-insensitively.
func (s *InMemoryAccountStore) Create(_ context.Context, account models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.accounts {
		if strings.EqualFold(existing.Username, account.Username) || strings.EqualFold(existing.Email, account.Email) {
			return ErrAccountExists
		}
	}
	s.accounts[account.ID] = account
	return nil
}

// FindByUsernameOrEmail resolves an account by either identifier.
func (s *InMemoryAccountStore) FindByUsernameOrEmail(_ context.Context, identifier string) (models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, account := range s.accounts {
		if strings.EqualFold(account.Username, identifier) || strings.EqualFold(account.Email, identifier) {
			return account, nil
		}
	}
	return models.Account{}, ErrAccountNotFound
}

// FindByID fetches an account by id.
func (s *InMemoryAccountStore) FindByID(_ context.Context, id string) (models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.accounts[id]
	if !ok {
		return models.Account{}, ErrAccountNotFound
	}
	return account, nil
}

// SetRefreshToken unconditionally replaces the stored refresh token.
func (s *InMemoryAccountStore) SetRefreshToken(_ context.Context, id, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[id]
	if !ok {
		return ErrAccountNotFound
	}
	account.RefreshToken = token
	s.accounts[id] = account
	return nil
}

// RotateRefreshToken performs the compare-and-swap rotation.
func (s *InMemoryAccountStore) RotateRefreshToken(_ context.Context, id, expected, next string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[id]
	if !ok || account.RefreshToken != expected {
		return ErrStaleRefreshToken
	}
	account.RefreshToken = next
	s.accounts[id] = account
	return nil
}

// ClearRefreshToken drops the stored token. Unknown ids and already-cleared
// accounts are no-ops.
func (s *InMemoryAccountStore) ClearRefreshToken(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if account, ok := s.accounts[id]; ok {
		account.RefreshToken = ""
		s.accounts[id] = account
	}
	return nil
}

// UpdatePassword replaces the hash and revokes the active session.
func (s *InMemoryAccountStore) UpdatePassword(_ context.Context, id, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[id]
	if !ok {
		return ErrAccountNotFound
	}
	account.PasswordHash = passwordHash
	account.RefreshToken = ""
	s.accounts[id] = account
	return nil
}

// UpdateProfile replaces the mutable profile fields.
func (s *InMemoryAccountStore) UpdateProfile(_ context.Context, id, fullName, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[id]
	if !ok {
		return ErrAccountNotFound
	}
	account.FullName = fullName
	account.Email = email
	s.accounts[id] = account
	return nil
}

// UpdateAvatar replaces the avatar reference.
func (s *InMemoryAccountStore) UpdateAvatar(_ context.Context, id, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[id]
	if !ok {
		return ErrAccountNotFound
	}
	account.AvatarURL = url
	s.accounts[id] = account
	return nil
}

// UpdateCoverImage replaces the cover image reference.
func (s *InMemoryAccountStore) UpdateCoverImage(_ context.Context, id, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[id]
	if !ok {
		return ErrAccountNotFound
	}
	account.CoverImageURL = url
	s.accounts[id] = account
	return nil
}

// StoredRefreshToken reports the current refresh token for an account.
// Useful for tests.
func (s *InMemoryAccountStore) StoredRefreshToken(id string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accounts[id].RefreshToken
}
