package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/mail"
	"strings"

	"github.com/satwikgupta/backend-project/internal/auth"
	"github.com/satwikgupta/backend-project/internal/logging"
	"github.com/satwikgupta/backend-project/internal/media"
	"github.com/satwikgupta/backend-project/internal/models"
)

var (
	avatarUploads = media.Descriptor{Fields: []media.FieldSpec{
		{Name: "avatar", Required: true, MaxCount: 1},
	}}
	coverUploads = media.Descriptor{Fields: []media.FieldSpec{
		{Name: "coverImage", Required: true, MaxCount: 1},
	}}
)

// ProfileHandler serves the authenticated account's own profile endpoints.
type ProfileHandler struct {
	Accounts AccountStore
	Media    media.Store
	TempDir  string
}

// Me handles GET /api/v1/users/me.
func (h ProfileHandler) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	claims, ok := auth.ClaimsFromContext(ctx)
	if !ok {
		respondJSON(ctx, w, http.StatusUnauthorized, nil, "unauthorized")
		return
	}

	account, err := h.Accounts.FindByID(ctx, claims.AccountID)
	if err != nil {
		logging.FromContext(ctx).Error("load current account", "accountId", claims.AccountID, "error", err)
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, account.Public(), "current user")
}

// UpdateProfile handles PATCH /api/v1/users/me.
func (h ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	claims, ok := auth.ClaimsFromContext(ctx)
	if !ok {
		respondJSON(ctx, w, http.StatusUnauthorized, nil, "unauthorized")
		return
	}

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid profile payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, nil, "invalid request body")
		return
	}

	fullName := strings.TrimSpace(req.FullName)
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if fullName == "" || email == "" {
		respondJSON(ctx, w, http.StatusBadRequest, nil, "fullName and email are required")
		return
	}
	if _, err := mail.ParseAddress(email); err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, nil, "invalid email address")
		return
	}

	if err := h.Accounts.UpdateProfile(ctx, claims.AccountID, fullName, email); err != nil {
		logger.Warn("update profile failed", "accountId", claims.AccountID, "error", err)
		respondError(ctx, w, err)
		return
	}

	account, err := h.Accounts.FindByID(ctx, claims.AccountID)
	if err != nil {
		logger.Error("reload account after update", "accountId", claims.AccountID, "error", err)
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, account.Public(), "profile updated")
}

// UpdateAvatar handles PATCH /api/v1/users/me/avatar (multipart).
func (h ProfileHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	h.replaceImage(w, r, avatarUploads, "avatar",
		h.Accounts.UpdateAvatar,
		func(account models.Account) string { return account.AvatarURL },
		"avatar updated")
}

// UpdateCoverImage handles PATCH /api/v1/users/me/cover-image (multipart).
func (h ProfileHandler) UpdateCoverImage(w http.ResponseWriter, r *http.Request) {
	h.replaceImage(w, r, coverUploads, "coverImage",
		h.Accounts.UpdateCoverImage,
		func(account models.Account) string { return account.CoverImageURL },
		"cover image updated")
}

func (h ProfileHandler) replaceImage(
	w http.ResponseWriter,
	r *http.Request,
	d media.Descriptor,
	field string,
	update func(ctx context.Context, id, url string) error,
	current func(account models.Account) string,
	message string,
) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	claims, ok := auth.ClaimsFromContext(ctx)
	if !ok {
		respondJSON(ctx, w, http.StatusUnauthorized, nil, "unauthorized")
		return
	}
	if h.Media == nil {
		logger.Error("media store unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, nil, "media storage unavailable")
		return
	}

	files, cleanup, err := spoolUploads(r, h.TempDir, d)
	if err != nil {
		logger.Warn("invalid image upload", "field", field, "error", err)
		respondError(ctx, w, err)
		return
	}
	defer cleanup()

	account, err := h.Accounts.FindByID(ctx, claims.AccountID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	previous := current(account)

	ref, _ := media.First(files, field)
	asset, err := h.Media.Upload(ctx, ref.Path)
	if err != nil {
		logger.Error("upload image", "field", field, "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, nil, "failed to store image")
		return
	}

	if err := update(ctx, claims.AccountID, asset.URL); err != nil {
		logger.Error("persist image url", "field", field, "error", err)
		respondError(ctx, w, err)
		return
	}

	// Old asset removal is best effort: the record already points at the
	// replacement.
	if previous != "" {
		if err := h.Media.DeleteByURL(ctx, previous); err != nil {
			logger.Warn("delete previous image", "field", field, "url", previous, "error", err)
		}
	}

	account, err = h.Accounts.FindByID(ctx, claims.AccountID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, account.Public(), message)
}

type updateProfileRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}
