package handlers

import (
	"net/http"
	"strings"

	"github.com/satwikgupta/backend-project/internal/auth"
	"github.com/satwikgupta/backend-project/internal/logging"
)

// ChannelHandler serves channel profiles and subscription edges.
type ChannelHandler struct {
	Channels      ChannelReader
	Subscriptions SubscriptionStore
	Accounts      AccountStore
}

// Profile handles GET /api/v1/channels/{username}.
func (h ChannelHandler) Profile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	claims, ok := auth.ClaimsFromContext(ctx)
	if !ok {
		respondJSON(ctx, w, http.StatusUnauthorized, nil, "unauthorized")
		return
	}

	username := strings.TrimSpace(r.PathValue("username"))
	profile, err := h.Channels.ChannelProfile(ctx, claims.AccountID, username)
	if err != nil {
		logging.FromContext(ctx).Warn("channel profile lookup failed", "username", username, "error", err)
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, profile, "channel profile")
}

// Subscribe handles POST /api/v1/channels/{username}/subscribe.
func (h ChannelHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	claims, ok := auth.ClaimsFromContext(ctx)
	if !ok {
		respondJSON(ctx, w, http.StatusUnauthorized, nil, "unauthorized")
		return
	}

	channel, ok := h.resolveChannel(w, r, claims.AccountID)
	if !ok {
		return
	}

	if err := h.Subscriptions.Subscribe(ctx, claims.AccountID, channel); err != nil {
		logger.Warn("subscribe failed", "subscriberId", claims.AccountID, "channelId", channel, "error", err)
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusCreated, nil, "subscribed")
}

// Unsubscribe handles DELETE /api/v1/channels/{username}/subscribe.
func (h ChannelHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	claims, ok := auth.ClaimsFromContext(ctx)
	if !ok {
		respondJSON(ctx, w, http.StatusUnauthorized, nil, "unauthorized")
		return
	}

	channel, ok := h.resolveChannel(w, r, claims.AccountID)
	if !ok {
		return
	}

	if err := h.Subscriptions.Unsubscribe(ctx, claims.AccountID, channel); err != nil {
		logger.Warn("unsubscribe failed", "subscriberId", claims.AccountID, "channelId", channel, "error", err)
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, nil, "unsubscribed")
}

// resolveChannel maps the path username to an account id and rejects
// self-subscription before any edge mutation runs.
func (h ChannelHandler) resolveChannel(w http.ResponseWriter, r *http.Request, viewerID string) (string, bool) {
	ctx := r.Context()

	username := strings.TrimSpace(strings.ToLower(r.PathValue("username")))
	if username == "" {
		respondJSON(ctx, w, http.StatusBadRequest, nil, "channel username is required")
		return "", false
	}

	account, err := h.Accounts.FindByUsernameOrEmail(ctx, username)
	if err != nil {
		respondError(ctx, w, err)
		return "", false
	}
	if account.ID == viewerID {
		respondJSON(ctx, w, http.StatusBadRequest, nil, "cannot subscribe to your own channel")
		return "", false
	}

	return account.ID, true
}
