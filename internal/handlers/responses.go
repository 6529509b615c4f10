package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/satwikgupta/backend-project/internal/auth"
	"github.com/satwikgupta/backend-project/internal/channels"
	"github.com/satwikgupta/backend-project/internal/logging"
	"github.com/satwikgupta/backend-project/internal/media"
	"github.com/satwikgupta/backend-project/internal/repositories"
)

// apiResponse is the uniform envelope every endpoint responds with.
type apiResponse struct {
	Status  int    `json:"status"`
	Data    any    `json:"data"`
	Message string `json:"message"`
}

func respondJSON(ctx context.Context, w http.ResponseWriter, status int, data any, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload := apiResponse{Status: status, Data: data, Message: message}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.FromContext(ctx).Error("encode response body", "status", status, "error", err)
		return
	}

	logger := logging.FromContext(ctx)
	switch {
	case status >= http.StatusInternalServerError:
		logger.Error("request failed", "status", status, "message", message)
	case status >= http.StatusBadRequest:
		logger.Warn("request returned client error", "status", status, "message", message)
	}
}

// respondError translates domain sentinels into the observed status mapping:
// 400 invalid input, 401 auth failures, 404 missing records, 409 uniqueness
// conflicts, 500 everything else.
func respondError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, media.ErrInvalidUpload),
		errors.Is(err, channels.ErrInvalidPage),
		errors.Is(err, channels.ErrInvalidPageSize),
		errors.Is(err, channels.ErrInvalidSortField):
		respondJSON(ctx, w, http.StatusBadRequest, nil, err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrMalformedToken),
		errors.Is(err, auth.ErrStaleRefreshToken):
		respondJSON(ctx, w, http.StatusUnauthorized, nil, "unauthorized")
	case errors.Is(err, auth.ErrAccountNotFound),
		errors.Is(err, channels.ErrChannelNotFound),
		errors.Is(err, repositories.ErrNotFound):
		respondJSON(ctx, w, http.StatusNotFound, nil, "not found")
	case errors.Is(err, repositories.ErrConflict),
		errors.Is(err, auth.ErrAccountExists):
		respondJSON(ctx, w, http.StatusConflict, nil, "already exists")
	default:
		logging.FromContext(ctx).Error("unexpected error", "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, nil, "internal server error")
	}
}
