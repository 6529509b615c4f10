package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/satwikgupta/backend-project/internal/auth"
	"github.com/satwikgupta/backend-project/internal/media"
	"github.com/satwikgupta/backend-project/internal/models"
)

type fakeMediaStore struct {
	uploads int
	deleted []string
	failAll bool
}

func (s *fakeMediaStore) Upload(_ context.Context, localPath string) (media.Asset, error) {
	if s.failAll {
		return media.Asset{}, media.ErrUploadFailed
	}
	s.uploads++
	return media.Asset{URL: "https://cdn.test/" + filepath.Base(localPath), Size: 4}, nil
}

func (s *fakeMediaStore) DeleteByURL(_ context.Context, url string) error {
	s.deleted = append(s.deleted, url)
	return nil
}

type envelope struct {
	Status  int             `json:"status"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func decodeEnvelope(t *testing.T, body io.Reader) envelope {
	t.Helper()
	var env envelope
	if err := json.NewDecoder(body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return env
}

func multipartRequest(t *testing.T, method, target string, fields map[string]string, files map[string]string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, value := range fields {
		if err := mw.WriteField(name, value); err != nil {
			t.Fatalf("write field %s: %v", name, err)
		}
	}
	for field, filename := range files {
		part, err := mw.CreateFormFile(field, filename)
		if err != nil {
			t.Fatalf("create form file %s: %v", field, err)
		}
		if _, err := part.Write([]byte("data")); err != nil {
			t.Fatalf("write form file %s: %v", field, err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func authenticate(req *http.Request, accountID string) *http.Request {
	claims := auth.Claims{AccountID: accountID, Username: "alice", Email: "alice@example.com"}
	return req.WithContext(auth.WithClaims(req.Context(), claims))
}

func newAuthFixture(t *testing.T) (AuthHandler, *auth.InMemoryAccountStore, *fakeMediaStore) {
	t.Helper()

	store := auth.NewInMemoryAccountStore()
	tokens := auth.NewTokenService([]byte("access-secret"), []byte("refresh-secret"), time.Hour, 24*time.Hour)
	hasher := auth.BcryptHasher{Cost: bcrypt.MinCost}
	mediaStore := &fakeMediaStore{}

	handler := AuthHandler{
		Accounts: store,
		Sessions: auth.NewManager(store, tokens, hasher),
		Hasher:   hasher,
		Media:    mediaStore,
		TempDir:  t.TempDir(),
	}
	return handler, store, mediaStore
}

func seedAccount(t *testing.T, store *auth.InMemoryAccountStore, id, username, password string) models.Account {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	account := models.Account{
		ID:           id,
		Username:     username,
		Email:        username + "@example.com",
		FullName:     "Test User",
		PasswordHash: string(hashed),
	}
	if err := store.Create(context.Background(), account); err != nil {
		t.Fatalf("seed account: %v", err)
	}
	return account
}

func TestAuthHandlerRegister(t *testing.T) {
	handler, store, mediaStore := newAuthFixture(t)

	req := multipartRequest(t, http.MethodPost, "/api/v1/users/register",
		map[string]string{
			"fullName": "Alice Example",
			"email":    "alice@example.com",
			"username": "Alice",
			"password": "supersafe1",
		},
		map[string]string{"avatar": "avatar.png", "coverImage": "cover.png"},
	)
	rec := httptest.NewRecorder()

	handler.Register(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}
	if mediaStore.uploads != 2 {
		t.Fatalf("expected 2 uploads got %d", mediaStore.uploads)
	}

	env := decodeEnvelope(t, rec.Body)
	var created models.PublicAccount
	if err := json.Unmarshal(env.Data, &created); err != nil {
		t.Fatalf("decode account: %v", err)
	}
	if created.Username != "alice" {
		t.Fatalf("expected lowercased username got %q", created.Username)
	}

	stored, err := store.FindByUsernameOrEmail(context.Background(), "alice")
	if err != nil {
		t.Fatalf("expected account to be stored: %v", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("supersafe1")) != nil {
		t.Fatal("stored password is not hashed")
	}
	if stored.AvatarURL == "" || stored.CoverImageURL == "" {
		t.Fatalf("expected image urls to be persisted, got %+v", stored)
	}
}

func TestAuthHandlerRegisterDuplicate(t *testing.T) {
	handler, store, _ := newAuthFixture(t)
	seedAccount(t, store, "acc-1", "alice", "password123")

	req := multipartRequest(t, http.MethodPost, "/api/v1/users/register",
		map[string]string{
			"fullName": "Another Alice",
			"email":    "other@example.com",
			"username": "ALICE",
			"password": "password123",
		},
		map[string]string{"avatar": "avatar.png"},
	)
	rec := httptest.NewRecorder()

	handler.Register(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status %d got %d", http.StatusConflict, rec.Code)
	}
}

func TestAuthHandlerRegisterValidation(t *testing.T) {
	handler, _, _ := newAuthFixture(t)

	cases := []struct {
		name   string
		fields map[string]string
		files  map[string]string
	}{
		{
			name:   "missing avatar",
			fields: map[string]string{"fullName": "A", "email": "a@example.com", "username": "a", "password": "password123"},
			files:  map[string]string{},
		},
		{
			name:   "missing email",
			fields: map[string]string{"fullName": "A", "username": "a", "password": "password123"},
			files:  map[string]string{"avatar": "avatar.png"},
		},
		{
			name:   "invalid email",
			fields: map[string]string{"fullName": "A", "email": "not-an-email", "username": "a", "password": "password123"},
			files:  map[string]string{"avatar": "avatar.png"},
		},
		{
			name:   "short password",
			fields: map[string]string{"fullName": "A", "email": "a@example.com", "username": "a", "password": "short"},
			files:  map[string]string{"avatar": "avatar.png"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := multipartRequest(t, http.MethodPost, "/api/v1/users/register", tc.fields, tc.files)
			rec := httptest.NewRecorder()

			handler.Register(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected status %d got %d", http.StatusBadRequest, rec.Code)
			}
		})
	}
}

func TestAuthHandlerLogin(t *testing.T) {
	handler, store, _ := newAuthFixture(t)
	seedAccount(t, store, "acc-1", "alice", "password123")

	body, _ := json.Marshal(loginRequest{Username: "alice", Password: "password123"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Login(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	env := decodeEnvelope(t, rec.Body)
	var resp loginResponse
	if err := json.Unmarshal(env.Data, &resp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if resp.Tokens.AccessToken == "" || resp.Tokens.RefreshToken == "" {
		t.Fatalf("expected tokens to be issued, got %+v", resp.Tokens)
	}
	if store.StoredRefreshToken("acc-1") != resp.Tokens.RefreshToken {
		t.Fatal("expected refresh token to be persisted")
	}
}

func TestAuthHandlerLoginFailures(t *testing.T) {
	handler, store, _ := newAuthFixture(t)
	seedAccount(t, store, "acc-1", "alice", "password123")

	cases := []struct {
		name string
		body loginRequest
		want int
	}{
		{"wrong password", loginRequest{Username: "alice", Password: "wrong-pass"}, http.StatusUnauthorized},
		{"unknown account", loginRequest{Username: "nobody", Password: "password123"}, http.StatusNotFound},
		{"missing password", loginRequest{Username: "alice"}, http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body, _ := json.Marshal(tc.body)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/users/login", bytes.NewReader(body))
			rec := httptest.NewRecorder()

			handler.Login(rec, req)

			if rec.Code != tc.want {
				t.Fatalf("expected status %d got %d", tc.want, rec.Code)
			}
		})
	}
}

func TestAuthHandlerRefresh(t *testing.T) {
	handler, store, _ := newAuthFixture(t)
	seedAccount(t, store, "acc-1", "alice", "password123")

	_, issued, err := handler.Sessions.Login(context.Background(), "alice", "password123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	body, _ := json.Marshal(refreshRequest{RefreshToken: issued.RefreshToken})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/refresh-token", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Refresh(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	env := decodeEnvelope(t, rec.Body)
	var rotated models.SessionTokens
	if err := json.Unmarshal(env.Data, &rotated); err != nil {
		t.Fatalf("decode tokens: %v", err)
	}
	if rotated.RefreshToken == issued.RefreshToken {
		t.Fatal("expected refresh token to rotate")
	}
	if store.StoredRefreshToken("acc-1") != rotated.RefreshToken {
		t.Fatal("expected rotated token to be persisted")
	}

	// Replaying the superseded token must fail.
	body, _ = json.Marshal(refreshRequest{RefreshToken: issued.RefreshToken})
	req = httptest.NewRequest(http.MethodPost, "/api/v1/users/refresh-token", bytes.NewReader(body))
	rec = httptest.NewRecorder()

	handler.Refresh(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestAuthHandlerLogout(t *testing.T) {
	handler, store, _ := newAuthFixture(t)
	seedAccount(t, store, "acc-1", "alice", "password123")

	if _, _, err := handler.Sessions.Login(context.Background(), "alice", "password123"); err != nil {
		t.Fatalf("login: %v", err)
	}

	req := authenticate(httptest.NewRequest(http.MethodPost, "/api/v1/users/logout", nil), "acc-1")
	rec := httptest.NewRecorder()

	handler.Logout(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d", http.StatusOK, rec.Code)
	}
	if store.StoredRefreshToken("acc-1") != "" {
		t.Fatal("expected stored refresh token to be cleared")
	}
}

func TestAuthHandlerChangePassword(t *testing.T) {
	handler, store, _ := newAuthFixture(t)
	seedAccount(t, store, "acc-1", "alice", "password123")

	if _, _, err := handler.Sessions.Login(context.Background(), "alice", "password123"); err != nil {
		t.Fatalf("login: %v", err)
	}

	body, _ := json.Marshal(changePasswordRequest{OldPassword: "password123", NewPassword: "evenbetter1"})
	req := authenticate(httptest.NewRequest(http.MethodPost, "/api/v1/users/change-password", bytes.NewReader(body)), "acc-1")
	rec := httptest.NewRecorder()

	handler.ChangePassword(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	if store.StoredRefreshToken("acc-1") != "" {
		t.Fatal("expected password change to revoke the active session")
	}

	if _, _, err := handler.Sessions.Login(context.Background(), "alice", "evenbetter1"); err != nil {
		t.Fatalf("expected login with new password to succeed: %v", err)
	}
}

func TestAuthHandlerChangePasswordWrongOld(t *testing.T) {
	handler, store, _ := newAuthFixture(t)
	seedAccount(t, store, "acc-1", "alice", "password123")

	body, _ := json.Marshal(changePasswordRequest{OldPassword: "not-it", NewPassword: "evenbetter1"})
	req := authenticate(httptest.NewRequest(http.MethodPost, "/api/v1/users/change-password", bytes.NewReader(body)), "acc-1")
	rec := httptest.NewRecorder()

	handler.ChangePassword(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d got %d", http.StatusUnauthorized, rec.Code)
	}

	if _, _, err := handler.Sessions.Login(context.Background(), "alice", "password123"); err != nil {
		t.Fatalf("expected original password to still work: %v", err)
	}
}
