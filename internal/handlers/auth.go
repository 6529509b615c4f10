package handlers

import (
	"encoding/json"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/satwikgupta/backend-project/internal/auth"
	"github.com/satwikgupta/backend-project/internal/logging"
	"github.com/satwikgupta/backend-project/internal/media"
	"github.com/satwikgupta/backend-project/internal/models"
)

var registerUploads = media.Descriptor{Fields: []media.FieldSpec{
	{Name: "avatar", Required: true, MaxCount: 1},
	{Name: "coverImage", MaxCount: 1},
}}

// AuthHandler implements registration and session lifecycle endpoints.
type AuthHandler struct {
	Accounts AccountStore
	Sessions SessionManager
	Hasher   auth.Hasher
	Media    media.Store
	TempDir  string
	Limiter  RateLimiter
	NowFunc  func() time.Time
}

// Register handles POST /api/v1/users/register (multipart).
func (h AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Accounts == nil || h.Hasher == nil {
		logger.Error("registration dependencies unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, nil, "registration unavailable")
		return
	}
	if h.Media == nil {
		logger.Error("media store unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, nil, "media storage unavailable")
		return
	}

	if !allowRequest(h.Limiter, r, "register") {
		respondJSON(ctx, w, http.StatusTooManyRequests, nil, "too many requests")
		return
	}

	files, cleanup, err := spoolUploads(r, h.TempDir, registerUploads)
	if err != nil {
		logger.Warn("invalid register upload", "error", err)
		respondError(ctx, w, err)
		return
	}
	defer cleanup()

	fullName := strings.TrimSpace(r.FormValue("fullName"))
	email := strings.TrimSpace(strings.ToLower(r.FormValue("email")))
	username := strings.TrimSpace(strings.ToLower(r.FormValue("username")))
	password := r.FormValue("password")

	if fullName == "" || email == "" || username == "" || password == "" {
		respondJSON(ctx, w, http.StatusBadRequest, nil, "fullName, email, username, and password are required")
		return
	}
	if _, err := mail.ParseAddress(email); err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, nil, "invalid email address")
		return
	}
	if len(password) < 8 {
		respondJSON(ctx, w, http.StatusBadRequest, nil, "password must be at least 8 characters")
		return
	}

	hash, err := h.Hasher.Hash(password)
	if err != nil {
		logger.Error("hash password", "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, nil, "failed to secure password")
		return
	}

	avatarRef, _ := media.First(files, "avatar")
	avatar, err := h.Media.Upload(ctx, avatarRef.Path)
	if err != nil {
		logger.Error("upload avatar", "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, nil, "failed to store avatar")
		return
	}

	var coverURL string
	if coverRef, ok := media.First(files, "coverImage"); ok {
		cover, err := h.Media.Upload(ctx, coverRef.Path)
		if err != nil {
			logger.Error("upload cover image", "error", err)
			respondJSON(ctx, w, http.StatusInternalServerError, nil, "failed to store cover image")
			return
		}
		coverURL = cover.URL
	}

	now := h.now()
	account := models.Account{
		ID:            uuid.NewString(),
		Username:      username,
		Email:         email,
		FullName:      fullName,
		PasswordHash:  hash,
		AvatarURL:     avatar.URL,
		CoverImageURL: coverURL,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := h.Accounts.Create(ctx, account); err != nil {
		logger.Warn("create account failed", "username", username, "error", err)
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusCreated, account.Public(), "user registered successfully")
}

// Login handles POST /api/v1/users/login.
func (h AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Sessions == nil {
		logger.Error("session manager unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, nil, "authentication unavailable")
		return
	}

	if !allowRequest(h.Limiter, r, "login") {
		respondJSON(ctx, w, http.StatusTooManyRequests, nil, "too many requests")
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid login payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, nil, "invalid request body")
		return
	}

	identifier := strings.TrimSpace(req.Identifier)
	if identifier == "" {
		identifier = strings.TrimSpace(req.Username)
	}
	if identifier == "" {
		identifier = strings.TrimSpace(req.Email)
	}
	if identifier == "" || req.Password == "" {
		respondJSON(ctx, w, http.StatusBadRequest, nil, "username or email, and password are required")
		return
	}

	account, tokens, err := h.Sessions.Login(ctx, identifier, req.Password)
	if err != nil {
		logger.Warn("login failed", "identifier", identifier, "error", err)
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, loginResponse{User: account.Public(), Tokens: tokens}, "logged in successfully")
}

// Logout handles POST /api/v1/users/logout.
func (h AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	claims, ok := auth.ClaimsFromContext(ctx)
	if !ok {
		respondJSON(ctx, w, http.StatusUnauthorized, nil, "unauthorized")
		return
	}

	if err := h.Sessions.Logout(ctx, claims.AccountID); err != nil {
		logging.FromContext(ctx).Error("logout failed", "accountId", claims.AccountID, "error", err)
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, nil, "logged out")
}

// Refresh handles POST /api/v1/users/refresh-token.
func (h AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Sessions == nil {
		logger.Error("session manager unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, nil, "authentication unavailable")
		return
	}

	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid refresh payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, nil, "invalid request body")
		return
	}

	req.RefreshToken = strings.TrimSpace(req.RefreshToken)
	if req.RefreshToken == "" {
		respondJSON(ctx, w, http.StatusBadRequest, nil, "refresh token is required")
		return
	}

	tokens, err := h.Sessions.Refresh(ctx, req.RefreshToken)
	if err != nil {
		logger.Warn("refresh failed", "error", err)
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, tokens, "session refreshed")
}

// ChangePassword handles POST /api/v1/users/change-password.
func (h AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	claims, ok := auth.ClaimsFromContext(ctx)
	if !ok {
		respondJSON(ctx, w, http.StatusUnauthorized, nil, "unauthorized")
		return
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid change password payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, nil, "invalid request body")
		return
	}

	if req.OldPassword == "" || req.NewPassword == "" {
		respondJSON(ctx, w, http.StatusBadRequest, nil, "old and new passwords are required")
		return
	}
	if len(req.NewPassword) < 8 {
		respondJSON(ctx, w, http.StatusBadRequest, nil, "password must be at least 8 characters")
		return
	}

	if err := h.Sessions.ChangePassword(ctx, claims.AccountID, req.OldPassword, req.NewPassword); err != nil {
		logger.Warn("change password failed", "accountId", claims.AccountID, "error", err)
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, nil, "password changed")
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	Password   string `json:"password"`
}

type loginResponse struct {
	User   models.PublicAccount `json:"user"`
	Tokens models.SessionTokens `json:"tokens"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

func (h AuthHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
